// Package gzipcodec provides gzip compression, readable by any browser or
// object store that honours Content-Encoding.
package gzipcodec

import (
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/pathwae/dashboard/internal/codec"
)

var _ codec.Codec = (*Codec)(nil)

// Codec implements gzip compression at a fixed level.
type Codec struct {
	level int
}

// New returns a gzip codec using gzip.DefaultCompression.
func New() *Codec {
	return &Codec{level: gzip.DefaultCompression}
}

// NewLevel returns a gzip codec using the given level
// (gzip.HuffmanOnly through gzip.BestCompression).
func NewLevel(level int) *Codec {
	return &Codec{level: level}
}

func (c *Codec) Name() string            { return "gzip" }
func (c *Codec) Extension() string       { return "gz" }
func (c *Codec) ContentEncoding() string { return "gzip" }

func (c *Codec) Reader(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

func (c *Codec) Writer(w io.Writer) (io.WriteCloser, error) {
	return gzip.NewWriterLevel(w, c.level)
}
