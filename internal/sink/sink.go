// Package sink defines where exported fleet snapshots are written.
package sink

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a snapshot does not exist in the sink.
	ErrNotFound = errors.New("sink: snapshot not found")

	// ErrInvalidName is returned for snapshot names that are not a single
	// path element.
	ErrInvalidName = errors.New("sink: invalid snapshot name")
)

// Sink stores snapshot documents.
// Implementations compress with their codec and own the key layout.
type Sink interface {
	// Put stores data under name and returns the key it was written to.
	Put(ctx context.Context, name string, data []byte) (string, error)

	// Get returns the decompressed document stored under name.
	Get(ctx context.Context, name string) ([]byte, error)

	// Close releases any resources held by the sink.
	Close() error
}

// Dir is the directory, relative to a sink root, holding snapshots.
const Dir = "snapshots"

// NormalizePrefix turns a user supplied key prefix into "" or "a/b/".
func NormalizePrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}

// CheckName rejects snapshot names that would leave the snapshot directory
// or prefix: empty names, "." and "..", and names holding a path separator.
func CheckName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
