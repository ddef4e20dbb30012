package docstore

import (
	"DocuGraph/internal/models"
	"DocuGraph/internal/rag/interfaces"
	"context"
	"sync"
)

// InMemoryChunkStore is a thread-safe, in-memory implementation of the
// ChunkStore interface.
type InMemoryChunkStore struct {
	mu     sync.RWMutex
	chunks map[string]*models.Chunk
}

// NewInMemoryChunkStore creates a new instance of InMemoryChunkStore.
func NewInMemoryChunkStore() *InMemoryChunkStore {
	return &InMemoryChunkStore{chunks: make(map[string]*models.Chunk)}
}

// Upsert writes a batch of chunks keyed by chunk ID.
func (s *InMemoryChunkStore) Upsert(ctx context.Context, chunks map[string]*models.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, chunk := range chunks {
		c := *chunk
		s.chunks[id] = &c
	}
	return nil
}

// GetByID retrieves a single chunk, returning a nil chunk when it does not
// exist.
func (s *InMemoryChunkStore) GetByID(ctx context.Context, id string) (*models.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chunk, ok := s.chunks[id]
	if !ok {
		return nil, nil
	}
	c := *chunk
	return &c, nil
}

// GetByIDs retrieves a batch of chunks. Missing IDs are silently skipped.
func (s *InMemoryChunkStore) GetByIDs(ctx context.Context, ids []string) ([]*models.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Chunk
	for _, id := range ids {
		if chunk, ok := s.chunks[id]; ok {
			c := *chunk
			result = append(result, &c)
		}
	}
	return result, nil
}

// Flush is a no-op for the in-memory store.
func (s *InMemoryChunkStore) Flush(ctx context.Context) error {
	return nil
}

// Drop removes all chunks.
func (s *InMemoryChunkStore) Drop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chunks = make(map[string]*models.Chunk)
	return nil
}

// Len returns the number of stored chunks.
func (s *InMemoryChunkStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// compile-time check to ensure InMemoryChunkStore implements the ChunkStore interface
var _ interfaces.ChunkStore = (*InMemoryChunkStore)(nil)
