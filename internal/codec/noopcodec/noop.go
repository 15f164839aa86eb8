// Package noopcodec stores snapshots uncompressed.
package noopcodec

import (
	"io"

	"github.com/pathwae/dashboard/internal/codec"
)

var _ codec.Codec = Codec{}

// Codec passes data through untouched.
type Codec struct{}

// New returns the pass-through codec.
func New() Codec {
	return Codec{}
}

func (Codec) Name() string            { return "none" }
func (Codec) Extension() string       { return "" }
func (Codec) ContentEncoding() string { return "" }

func (Codec) Reader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}

func (Codec) Writer(w io.Writer) (io.WriteCloser, error) {
	return nopWriteCloser{w}, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
