// Package memsink keeps snapshots in memory, for tests and dry runs.
package memsink

import (
	"context"
	"sync"

	"github.com/pathwae/dashboard/internal/sink"
)

var _ sink.Sink = (*Sink)(nil)

// Sink is an in-memory sink. Stored data is uncompressed.
type Sink struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// New creates an empty in-memory sink.
func New() *Sink {
	return &Sink{docs: make(map[string][]byte)}
}

// Put copies data so later caller mutations do not affect the sink.
func (s *Sink) Put(ctx context.Context, name string, data []byte) (string, error) {
	if err := sink.CheckName(name); err != nil {
		return "", err
	}
	copied := make([]byte, len(data))
	copy(copied, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[name] = copied
	return sink.Dir + "/" + name, nil
}

func (s *Sink) Get(ctx context.Context, name string) ([]byte, error) {
	if err := sink.CheckName(name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.docs[name]
	if !ok {
		return nil, sink.ErrNotFound
	}
	return data, nil
}

// Names returns the stored snapshot names in no particular order.
func (s *Sink) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.docs))
	for n := range s.docs {
		names = append(names, n)
	}
	return names
}

func (s *Sink) Close() error {
	return nil
}
