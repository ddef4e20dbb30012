package docstore

import (
	"DocuGraph/internal/models"
	"DocuGraph/internal/rag/interfaces"
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoChunkStore is a ChunkStore backed by a MongoDB collection. The chunk
// ID is the document _id, so upserting the same chunk twice is a no-op
// overwrite.
type MongoChunkStore struct {
	coll *mongo.Collection
}

// NewMongoChunkStore creates a new MongoChunkStore on the given database and
// collection.
func NewMongoChunkStore(client *mongo.Client, database, collection string) *MongoChunkStore {
	return &MongoChunkStore{coll: client.Database(database).Collection(collection)}
}

// Upsert writes a batch of chunks keyed by chunk ID.
func (s *MongoChunkStore) Upsert(ctx context.Context, chunks map[string]*models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	writes := make([]mongo.WriteModel, 0, len(chunks))
	for id, chunk := range chunks {
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": id}).
			SetReplacement(chunk).
			SetUpsert(true))
	}

	if _, err := s.coll.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("failed to upsert chunks: %w", err)
	}
	return nil
}

// GetByID retrieves a single chunk, returning a nil chunk when it does not
// exist.
func (s *MongoChunkStore) GetByID(ctx context.Context, id string) (*models.Chunk, error) {
	var chunk models.Chunk
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&chunk)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chunk %s: %w", id, err)
	}
	return &chunk, nil
}

// GetByIDs retrieves a batch of chunks. Missing IDs are silently skipped.
func (s *MongoChunkStore) GetByIDs(ctx context.Context, ids []string) ([]*models.Chunk, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cursor, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to get chunks: %w", err)
	}
	defer cursor.Close(ctx)

	var chunks []*models.Chunk
	if err := cursor.All(ctx, &chunks); err != nil {
		return nil, fmt.Errorf("failed to decode chunks: %w", err)
	}
	return chunks, nil
}

// Flush is a no-op; MongoDB writes are durable on return.
func (s *MongoChunkStore) Flush(ctx context.Context) error {
	return nil
}

// Drop removes the whole collection.
func (s *MongoChunkStore) Drop(ctx context.Context) error {
	if err := s.coll.Drop(ctx); err != nil {
		return fmt.Errorf("failed to drop chunk collection: %w", err)
	}
	return nil
}

// compile-time check to ensure MongoChunkStore implements the ChunkStore interface
var _ interfaces.ChunkStore = (*MongoChunkStore)(nil)
