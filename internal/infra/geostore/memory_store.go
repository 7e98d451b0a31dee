package geostore

import (
	"context"
	"sort"
	"sync"

	"github.com/yanqian/bazi-report/internal/domain/geo"
)

// MemoryStore keeps resolutions in process memory for the lifetime of the server.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]geo.Resolution
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]geo.Resolution)}
}

// Get implements geo.Store.
func (s *MemoryStore) Get(_ context.Context, key string) (geo.Resolution, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.entries[key]
	return res, ok, nil
}

// Save implements geo.Store.
func (s *MemoryStore) Save(_ context.Context, key string, res geo.Resolution) error {
	if key == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = res
	return nil
}

// Delete implements geo.Store.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Clear implements geo.Store.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]geo.Resolution)
	return nil
}

// Keys returns the cached keys in sorted order.
func (s *MemoryStore) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

var _ geo.Store = (*MemoryStore)(nil)
