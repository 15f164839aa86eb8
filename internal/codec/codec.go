// Package codec compresses exported snapshot files.
package codec

import (
	"bytes"
	"fmt"
	"io"
)

// Codec wraps readers and writers with one compression format.
type Codec interface {
	// Name identifies the codec in configuration ("zstd", "gzip", "none").
	Name() string
	// Extension returns the file extension without dot, or "" for none.
	Extension() string
	// ContentEncoding returns the HTTP Content-Encoding of compressed
	// objects, or "" when the data is stored as is.
	ContentEncoding() string
	// Reader wraps r to decompress data read from it.
	Reader(r io.Reader) (io.ReadCloser, error)
	// Writer wraps w to compress data written to it.
	Writer(w io.Writer) (io.WriteCloser, error)
}

// Compress returns data compressed with c.
func Compress(c Codec, data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := c.Writer(&buf)
	if err != nil {
		return nil, fmt.Errorf("%s writer: %w", c.Name(), err)
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, fmt.Errorf("%s compress: %w", c.Name(), err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%s flush: %w", c.Name(), err)
	}
	return buf.Bytes(), nil
}

// Decompress returns data decompressed with c.
func Decompress(c Codec, data []byte) ([]byte, error) {
	r, err := c.Reader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s reader: %w", c.Name(), err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s decompress: %w", c.Name(), err)
	}
	return out, nil
}

// FileName appends the codec extension to base.
func FileName(c Codec, base string) string {
	if ext := c.Extension(); ext != "" {
		return base + "." + ext
	}
	return base
}
