package statusstore

import (
	"DocuGraph/internal/models"
	"DocuGraph/internal/rag/interfaces"
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStatusStore is a StatusStore backed by a MongoDB collection, keyed by
// document ID.
type MongoStatusStore struct {
	coll *mongo.Collection
}

// NewMongoStatusStore creates a new MongoStatusStore on the given database
// and collection.
func NewMongoStatusStore(client *mongo.Client, database, collection string) *MongoStatusStore {
	return &MongoStatusStore{coll: client.Database(database).Collection(collection)}
}

// Upsert writes the status record, replacing any existing record for the
// same document.
func (s *MongoStatusStore) Upsert(ctx context.Context, status *models.DocumentStatus) error {
	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"_id": status.DocID},
		status,
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert document status: %w", err)
	}
	return nil
}

// GetByID retrieves the status record for a document. The second return
// value reports whether the record exists.
func (s *MongoStatusStore) GetByID(ctx context.Context, docID string) (*models.DocumentStatus, bool, error) {
	var status models.DocumentStatus
	err := s.coll.FindOne(ctx, bson.M{"_id": docID}).Decode(&status)
	if err == mongo.ErrNoDocuments {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get document status %s: %w", docID, err)
	}
	return &status, true, nil
}

// Drop removes the whole collection.
func (s *MongoStatusStore) Drop(ctx context.Context) error {
	if err := s.coll.Drop(ctx); err != nil {
		return fmt.Errorf("failed to drop status collection: %w", err)
	}
	return nil
}

// compile-time check to ensure MongoStatusStore implements the StatusStore interface
var _ interfaces.StatusStore = (*MongoStatusStore)(nil)
