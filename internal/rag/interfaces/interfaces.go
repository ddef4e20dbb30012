package interfaces

import (
	"DocuGraph/internal/models"
	"context"
)

// KVStore is the interface for a generic key-value cache with JSON values.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// ChunkStore is the interface for storing and retrieving text chunks by ID.
type ChunkStore interface {
	Upsert(ctx context.Context, chunks map[string]*models.Chunk) error
	GetByID(ctx context.Context, id string) (*models.Chunk, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.Chunk, error)
	Flush(ctx context.Context) error
	Drop(ctx context.Context) error
}

// VectorIndex is the interface for an embedding-backed similarity index.
// Implementations embed record content themselves; callers never handle
// raw vectors.
type VectorIndex interface {
	Upsert(ctx context.Context, records map[string]*models.VectorRecord) error
	Query(ctx context.Context, query string, topK int) ([]*models.VectorRecord, error)
	Flush(ctx context.Context) error
	Drop(ctx context.Context) error
}

// GraphStorage is the interface for the knowledge graph. Upserts replace the
// node or edge payload under the given key.
type GraphStorage interface {
	UpsertNode(ctx context.Context, entity *models.Entity) error
	UpsertEdge(ctx context.Context, rel *models.Relationship) error
	GetNode(ctx context.Context, entityID string) (*models.Entity, bool, error)
	GetEdge(ctx context.Context, src, tgt string) (*models.Relationship, bool, error)
	Flush(ctx context.Context) error
	Drop(ctx context.Context) error
}

// StatusStore is the interface for per-document processing status records.
type StatusStore interface {
	Upsert(ctx context.Context, status *models.DocumentStatus) error
	GetByID(ctx context.Context, docID string) (*models.DocumentStatus, bool, error)
	Drop(ctx context.Context) error
}

// Tokenizer is the interface for converting text to token IDs and back.
type Tokenizer interface {
	Encode(text string) []int
	Decode(tokens []int) string
}

// Extractor is the interface for mining entities and relationships out of
// text chunks.
type Extractor interface {
	ExtractEntities(ctx context.Context, chunks map[string]*models.Chunk) ([]*models.ChunkExtraction, error)
}

// Storages bundles the five storage backends the document pipeline writes to.
// It is passed explicitly to every stage so the full set of side effects of a
// stage is visible at its call site.
type Storages struct {
	Chunks           ChunkStore
	ChunksVDB        VectorIndex
	EntitiesVDB      VectorIndex
	RelationshipsVDB VectorIndex
	Graph            GraphStorage
	Status           StatusStore
}
