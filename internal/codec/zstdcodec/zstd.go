// Package zstdcodec provides zstd compression, the default for exported
// snapshots.
package zstdcodec

import (
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/pathwae/dashboard/internal/codec"
)

var _ codec.Codec = (*Codec)(nil)

// Codec implements zstd compression.
type Codec struct {
	level zstd.EncoderLevel
}

// New returns a zstd codec at the default speed.
func New() *Codec {
	return &Codec{level: zstd.SpeedDefault}
}

// NewLevel returns a zstd codec at the given encoder level.
func NewLevel(level zstd.EncoderLevel) *Codec {
	return &Codec{level: level}
}

func (c *Codec) Name() string            { return "zstd" }
func (c *Codec) Extension() string       { return "zst" }
func (c *Codec) ContentEncoding() string { return "zstd" }

func (c *Codec) Reader(r io.Reader) (io.ReadCloser, error) {
	decoder, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return decoder.IOReadCloser(), nil
}

func (c *Codec) Writer(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w, zstd.WithEncoderLevel(c.level))
}
