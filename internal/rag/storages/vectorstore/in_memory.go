package vectorstore

import (
	"DocuGraph/internal/embedding"
	"DocuGraph/internal/models"
	"DocuGraph/internal/rag/interfaces"
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// InMemoryVectorIndex is a thread-safe, in-memory implementation of the
// VectorIndex interface using brute-force cosine similarity.
type InMemoryVectorIndex struct {
	mu       sync.RWMutex
	embedder embedding.Embedding
	records  map[string]*models.VectorRecord
	vectors  map[string][]float32
}

// NewInMemoryVectorIndex creates a new instance of InMemoryVectorIndex.
func NewInMemoryVectorIndex(embedder embedding.Embedding) *InMemoryVectorIndex {
	return &InMemoryVectorIndex{
		embedder: embedder,
		records:  make(map[string]*models.VectorRecord),
		vectors:  make(map[string][]float32),
	}
}

// Upsert embeds and stores a batch of records keyed by record ID.
func (s *InMemoryVectorIndex) Upsert(ctx context.Context, records map[string]*models.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	ids := make([]string, 0, len(records))
	contents := make([]string, 0, len(records))
	for id, record := range records {
		ids = append(ids, id)
		contents = append(contents, record.Content)
	}

	vectors, err := s.embedder.EmbedBatch(ctx, contents)
	if err != nil {
		return fmt.Errorf("failed to embed records: %w", err)
	}
	if len(vectors) != len(ids) {
		return fmt.Errorf("embedder returned %d vectors for %d records", len(vectors), len(ids))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, id := range ids {
		r := *records[id]
		s.records[id] = &r
		s.vectors[id] = vectors[i]
	}
	return nil
}

// Query embeds the query text and returns the topK most similar records.
func (s *InMemoryVectorIndex) Query(ctx context.Context, query string, topK int) ([]*models.VectorRecord, error) {
	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		id    string
		score float32
	}
	scores := make([]scored, 0, len(s.vectors))
	for id, vec := range s.vectors {
		scores = append(scores, scored{id: id, score: cosine(queryVec, vec)})
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	if topK > len(scores) {
		topK = len(scores)
	}
	results := make([]*models.VectorRecord, 0, topK)
	for _, sc := range scores[:topK] {
		r := *s.records[sc.id]
		r.Score = sc.score
		results = append(results, &r)
	}
	return results, nil
}

// Flush is a no-op for the in-memory index.
func (s *InMemoryVectorIndex) Flush(ctx context.Context) error {
	return nil
}

// Drop removes all records.
func (s *InMemoryVectorIndex) Drop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*models.VectorRecord)
	s.vectors = make(map[string][]float32)
	return nil
}

// Len returns the number of stored records.
func (s *InMemoryVectorIndex) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Has reports whether a record with the given ID exists.
func (s *InMemoryVectorIndex) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[id]
	return ok
}

func cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// compile-time check to ensure InMemoryVectorIndex implements the VectorIndex interface
var _ interfaces.VectorIndex = (*InMemoryVectorIndex)(nil)
