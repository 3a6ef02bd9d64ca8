package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/vitae/internal/core/domain"
	"github.com/custodia-labs/vitae/internal/core/ports/driven"
)

// Ensure StateStore implements the interface.
var _ driven.StateStore = (*StateStore)(nil)

// StateStore is an in-memory implementation of driven.StateStore.
// Values are copied on the way in and out.
type StateStore struct {
	mu     sync.RWMutex
	values map[string][]byte
	puts   int
}

// NewStateStore creates a new in-memory state store.
func NewStateStore() *StateStore {
	return &StateStore{
		values: make(map[string][]byte),
	}
}

// Get returns the value stored under key.
func (s *StateStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Put stores value under key.
func (s *StateStore) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = append([]byte(nil), value...)
	s.puts++
	return nil
}

// Delete removes key.
func (s *StateStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// Puts returns the number of successful Put calls.
func (s *StateStore) Puts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.puts
}
