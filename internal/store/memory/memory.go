// Package memory provides an in-memory Store used by tests and dry runs.
package memory

import (
	"context"
	"sync"
)

// Store keeps entities in nested maps. Reads after Put observe the new
// value immediately; Flush is a no-op.
type Store struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

func NewStore() *Store {
	return &Store{data: make(map[string]map[string][]byte)}
}

func (s *Store) Get(_ context.Context, kind, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entities, ok := s.data[kind]
	if !ok {
		return nil, false, nil
	}
	data, ok := entities[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, true, nil
}

func (s *Store) Put(_ context.Context, kind, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entities, ok := s.data[kind]
	if !ok {
		entities = make(map[string][]byte)
		s.data[kind] = entities
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	entities[key] = stored
	return nil
}

func (s *Store) Flush(context.Context) error {
	return nil
}

// Count returns the number of stored entities of a kind.
func (s *Store) Count(kind string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data[kind])
}

// Keys returns the stored keys for a kind, for test assertions.
func (s *Store) Keys(kind string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data[kind]))
	for key := range s.data[kind] {
		keys = append(keys, key)
	}
	return keys
}
