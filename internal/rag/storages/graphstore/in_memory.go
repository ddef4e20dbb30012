package graphstore

import (
	"DocuGraph/internal/models"
	"DocuGraph/internal/rag/interfaces"
	"context"
	"sync"
)

// InMemoryGraphStorage is a thread-safe, in-memory implementation of the
// GraphStorage interface.
type InMemoryGraphStorage struct {
	mu    sync.RWMutex
	nodes map[string]*models.Entity
	edges map[models.EdgeKey]*models.Relationship
}

// NewInMemoryGraphStorage creates a new instance of InMemoryGraphStorage.
func NewInMemoryGraphStorage() *InMemoryGraphStorage {
	return &InMemoryGraphStorage{
		nodes: make(map[string]*models.Entity),
		edges: make(map[models.EdgeKey]*models.Relationship),
	}
}

// UpsertNode writes an entity node, replacing the payload when the node
// already exists.
func (s *InMemoryGraphStorage) UpsertNode(ctx context.Context, entity *models.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := *entity
	s.nodes[entity.EntityID] = &e
	return nil
}

// UpsertEdge writes a directed edge, replacing the payload when the edge
// already exists.
func (s *InMemoryGraphStorage) UpsertEdge(ctx context.Context, rel *models.Relationship) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := *rel
	s.edges[models.EdgeKey{Src: rel.SrcID, Tgt: rel.TgtID}] = &r
	return nil
}

// GetNode retrieves an entity node by its key.
func (s *InMemoryGraphStorage) GetNode(ctx context.Context, entityID string) (*models.Entity, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entity, ok := s.nodes[entityID]
	if !ok {
		return nil, false, nil
	}
	e := *entity
	return &e, true, nil
}

// GetEdge retrieves a directed edge by its endpoints.
func (s *InMemoryGraphStorage) GetEdge(ctx context.Context, src, tgt string) (*models.Relationship, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rel, ok := s.edges[models.EdgeKey{Src: src, Tgt: tgt}]
	if !ok {
		return nil, false, nil
	}
	r := *rel
	return &r, true, nil
}

// Flush is a no-op for the in-memory storage.
func (s *InMemoryGraphStorage) Flush(ctx context.Context) error {
	return nil
}

// Drop removes all nodes and edges.
func (s *InMemoryGraphStorage) Drop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes = make(map[string]*models.Entity)
	s.edges = make(map[models.EdgeKey]*models.Relationship)
	return nil
}

// NodeCount returns the number of stored nodes.
func (s *InMemoryGraphStorage) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// EdgeCount returns the number of stored edges.
func (s *InMemoryGraphStorage) EdgeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.edges)
}

// compile-time check to ensure InMemoryGraphStorage implements the GraphStorage interface
var _ interfaces.GraphStorage = (*InMemoryGraphStorage)(nil)
