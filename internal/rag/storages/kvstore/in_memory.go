package kvstore

import (
	"DocuGraph/internal/rag/interfaces"
	"context"
	"sync"
)

// InMemoryKVStore is a thread-safe, in-memory implementation of the KVStore
// interface.
type InMemoryKVStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewInMemoryKVStore creates a new instance of InMemoryKVStore.
func NewInMemoryKVStore() *InMemoryKVStore {
	return &InMemoryKVStore{data: make(map[string][]byte)}
}

// Get retrieves the value stored under key.
func (s *InMemoryKVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	// Copy so callers cannot mutate the stored slice.
	out := make([]byte, len(val))
	copy(out, val)
	return out, true, nil
}

// Set stores value under key.
func (s *InMemoryKVStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	s.data[key] = stored
	return nil
}

// Delete removes key from the store.
func (s *InMemoryKVStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}

// compile-time check to ensure InMemoryKVStore implements the KVStore interface
var _ interfaces.KVStore = (*InMemoryKVStore)(nil)
