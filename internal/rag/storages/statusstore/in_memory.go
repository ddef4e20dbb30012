package statusstore

import (
	"DocuGraph/internal/models"
	"DocuGraph/internal/rag/interfaces"
	"context"
	"sync"
)

// InMemoryStatusStore is a thread-safe, in-memory implementation of the
// StatusStore interface.
type InMemoryStatusStore struct {
	mu       sync.RWMutex
	statuses map[string]*models.DocumentStatus
}

// NewInMemoryStatusStore creates a new instance of InMemoryStatusStore.
func NewInMemoryStatusStore() *InMemoryStatusStore {
	return &InMemoryStatusStore{statuses: make(map[string]*models.DocumentStatus)}
}

// Upsert writes the status record, replacing any existing record for the
// same document.
func (s *InMemoryStatusStore) Upsert(ctx context.Context, status *models.DocumentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := *status
	st.MultimodalChunkIDs = append([]string(nil), status.MultimodalChunkIDs...)
	s.statuses[status.DocID] = &st
	return nil
}

// GetByID retrieves the status record for a document.
func (s *InMemoryStatusStore) GetByID(ctx context.Context, docID string) (*models.DocumentStatus, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status, ok := s.statuses[docID]
	if !ok {
		return nil, false, nil
	}
	st := *status
	st.MultimodalChunkIDs = append([]string(nil), status.MultimodalChunkIDs...)
	return &st, true, nil
}

// Drop removes all status records.
func (s *InMemoryStatusStore) Drop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.statuses = make(map[string]*models.DocumentStatus)
	return nil
}

// compile-time check to ensure InMemoryStatusStore implements the StatusStore interface
var _ interfaces.StatusStore = (*InMemoryStatusStore)(nil)
