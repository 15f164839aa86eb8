// Package disksink writes snapshots under a local directory.
package disksink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pathwae/dashboard/internal/codec"
	"github.com/pathwae/dashboard/internal/sink"
)

var _ sink.Sink = (*Sink)(nil)

// Sink stores snapshots as files in <root>/snapshots.
type Sink struct {
	root  string
	codec codec.Codec
}

// New creates a disk sink rooted at root, creating the directory tree if
// needed.
func New(root string, c codec.Codec) (*Sink, error) {
	if err := os.MkdirAll(filepath.Join(root, sink.Dir), 0o755); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}
	return &Sink{root: root, codec: c}, nil
}

// Put writes the compressed document atomically: it is written to a
// temporary file first and renamed into place.
func (s *Sink) Put(ctx context.Context, name string, data []byte) (string, error) {
	if err := sink.CheckName(name); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	compressed, err := codec.Compress(s.codec, data)
	if err != nil {
		return "", err
	}

	path := s.path(name)
	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(compressed); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("renaming snapshot: %w", err)
	}
	return path, nil
}

func (s *Sink) Get(ctx context.Context, name string) ([]byte, error) {
	if err := sink.CheckName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	compressed, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, sink.ErrNotFound
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	return codec.Decompress(s.codec, compressed)
}

func (s *Sink) Close() error {
	return nil
}

// path returns the file path for a snapshot name.
func (s *Sink) path(name string) string {
	return filepath.Join(s.root, sink.Dir, codec.FileName(s.codec, name))
}
