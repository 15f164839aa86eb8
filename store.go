package dashboard

import "sync"

// Store holds the dashboard state shared across views: the last-known
// backend list and a running hit counter.
//
// Create one at startup with NewStore and pass it to whatever needs it.
// Client never touches a Store; callers decide what to keep.
// A Store is safe for concurrent use. A read followed by a write is not
// atomic as a whole, so re-read after any intervening request.
type Store struct {
	mu       sync.RWMutex
	backends []Backend
	hits     int64
}

// NewStore returns an empty store with a zero hit count.
func NewStore() *Store {
	return &Store{backends: []Backend{}}
}

// Backends returns a copy of the cached backend list.
// Modifying the result does not affect the store.
func (s *Store) Backends() []Backend {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneBackends(s.backends)
}

// Backend returns the cached backend with the given name.
func (s *Store) Backend(name string) (Backend, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.backends {
		if b.Name == name {
			return b.clone(), true
		}
	}
	return Backend{}, false
}

// SetBackends replaces the cached list with a copy of backends.
// Later changes to the caller's slice are not seen by the store.
func (s *Store) SetBackends(backends []Backend) {
	copied := cloneBackends(backends)
	s.mu.Lock()
	s.backends = copied
	s.mu.Unlock()
}

// IncrementHits adds one to the hit counter.
func (s *Store) IncrementHits() {
	s.AddHits(1)
}

// AddHits adds n to the hit counter. The counter never drops below zero.
func (s *Store) AddHits(n int64) {
	s.mu.Lock()
	s.hits = max(s.hits+n, 0)
	s.mu.Unlock()
}

// Hits returns the hit counter.
func (s *Store) Hits() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hits
}

// SetHits sets the hit counter. Negative values are stored as zero.
func (s *Store) SetHits(n int64) {
	s.mu.Lock()
	s.hits = max(n, 0)
	s.mu.Unlock()
}

func cloneBackends(src []Backend) []Backend {
	dst := make([]Backend, len(src))
	for i, b := range src {
		dst[i] = b.clone()
	}
	return dst
}
