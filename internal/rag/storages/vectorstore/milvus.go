package vectorstore

import (
	"DocuGraph/internal/database/milvus"
	"DocuGraph/internal/embedding"
	"DocuGraph/internal/models"
	"DocuGraph/internal/rag/interfaces"
	"context"
	"fmt"
	"sort"
)

// MilvusVectorIndex is a VectorIndex backed by one Milvus collection. Record
// content is embedded on write with the configured embedding model.
type MilvusVectorIndex struct {
	client   *milvus.MilvusClient
	embedder embedding.Embedding
	collName string
}

// NewMilvusVectorIndex creates a new MilvusVectorIndex on the given
// collection, creating the collection when missing.
func NewMilvusVectorIndex(ctx context.Context, client *milvus.MilvusClient, embedder embedding.Embedding, collName string) (*MilvusVectorIndex, error) {
	if err := client.EnsureCollection(ctx, collName); err != nil {
		return nil, err
	}
	return &MilvusVectorIndex{client: client, embedder: embedder, collName: collName}, nil
}

// Upsert embeds and writes a batch of records keyed by record ID.
func (s *MilvusVectorIndex) Upsert(ctx context.Context, records map[string]*models.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	// Stable ordering keeps ids, contents and vectors aligned.
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	contents := make([]string, len(ids))
	for i, id := range ids {
		contents[i] = records[id].Content
	}

	vectors, err := s.embedder.EmbedBatch(ctx, contents)
	if err != nil {
		return fmt.Errorf("failed to embed records: %w", err)
	}

	return s.client.Upsert(ctx, s.collName, ids, contents, vectors)
}

// Query embeds the query text and returns the topK most similar records.
func (s *MilvusVectorIndex) Query(ctx context.Context, query string, topK int) ([]*models.VectorRecord, error) {
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	hits, err := s.client.Search(ctx, s.collName, vector, topK)
	if err != nil {
		return nil, err
	}

	records := make([]*models.VectorRecord, 0, len(hits))
	for _, hit := range hits {
		records = append(records, &models.VectorRecord{
			ID:      hit.ID,
			Content: hit.Content,
			Score:   hit.Score,
		})
	}
	return records, nil
}

// Flush persists pending writes of the collection.
func (s *MilvusVectorIndex) Flush(ctx context.Context) error {
	return s.client.FlushCollection(ctx, s.collName)
}

// Drop removes the whole collection.
func (s *MilvusVectorIndex) Drop(ctx context.Context) error {
	return s.client.DropCollection(ctx, s.collName)
}

// compile-time check to ensure MilvusVectorIndex implements the VectorIndex interface
var _ interfaces.VectorIndex = (*MilvusVectorIndex)(nil)
