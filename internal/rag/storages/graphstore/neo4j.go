package graphstore

import (
	"DocuGraph/internal/database/neo4j"
	"DocuGraph/internal/models"
	"DocuGraph/internal/rag/interfaces"
	"context"
	"fmt"

	neo4jdriver "github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jGraphStorage is a GraphStorage backed by Neo4j. Nodes carry the
// Entity label and are keyed by entity_id; edges use the RELATED relationship
// type with the payload stored as properties.
type Neo4jGraphStorage struct {
	client *neo4j.Neo4jClient
}

// NewNeo4jGraphStorage creates a new Neo4jGraphStorage.
func NewNeo4jGraphStorage(client *neo4j.Neo4jClient) *Neo4jGraphStorage {
	return &Neo4jGraphStorage{client: client}
}

// UpsertNode writes an entity node, replacing the payload when the node
// already exists.
func (s *Neo4jGraphStorage) UpsertNode(ctx context.Context, entity *models.Entity) error {
	_, err := s.client.ExecuteWrite(ctx, func(tx neo4jdriver.ManagedTransaction) (interface{}, error) {
		query := `
			MERGE (n:Entity {entity_id: $entity_id})
			SET n.entity_type = $entity_type,
			    n.description = $description,
			    n.source_id = $source_id,
			    n.file_path = $file_path,
			    n.created_at = $created_at`
		_, err := tx.Run(ctx, query, map[string]interface{}{
			"entity_id":   entity.EntityID,
			"entity_type": entity.EntityType,
			"description": entity.Description,
			"source_id":   entity.SourceID,
			"file_path":   entity.FilePath,
			"created_at":  entity.CreatedAt,
		})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("failed to upsert node %s: %w", entity.EntityID, err)
	}
	return nil
}

// UpsertEdge writes a directed edge, replacing the payload when the edge
// already exists. Both endpoints are created when missing so edge order never
// matters.
func (s *Neo4jGraphStorage) UpsertEdge(ctx context.Context, rel *models.Relationship) error {
	_, err := s.client.ExecuteWrite(ctx, func(tx neo4jdriver.ManagedTransaction) (interface{}, error) {
		query := `
			MERGE (src:Entity {entity_id: $src_id})
			MERGE (tgt:Entity {entity_id: $tgt_id})
			MERGE (src)-[r:RELATED]->(tgt)
			SET r.description = $description,
			    r.keywords = $keywords,
			    r.weight = $weight,
			    r.source_id = $source_id,
			    r.file_path = $file_path`
		_, err := tx.Run(ctx, query, map[string]interface{}{
			"src_id":      rel.SrcID,
			"tgt_id":      rel.TgtID,
			"description": rel.Description,
			"keywords":    rel.Keywords,
			"weight":      rel.Weight,
			"source_id":   rel.SourceID,
			"file_path":   rel.FilePath,
		})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("failed to upsert edge %s -> %s: %w", rel.SrcID, rel.TgtID, err)
	}
	return nil
}

// GetNode retrieves an entity node by its key.
func (s *Neo4jGraphStorage) GetNode(ctx context.Context, entityID string) (*models.Entity, bool, error) {
	result, err := s.client.ExecuteRead(ctx, func(tx neo4jdriver.ManagedTransaction) (interface{}, error) {
		query := `MATCH (n:Entity {entity_id: $entity_id}) RETURN n`
		res, err := tx.Run(ctx, query, map[string]interface{}{"entity_id": entityID})
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return nil, nil
		}
		nodeValue, ok := records[0].Get("n")
		if !ok {
			return nil, fmt.Errorf("missing node in result")
		}
		return nodeValue.(neo4jdriver.Node).Props, nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to get node %s: %w", entityID, err)
	}
	if result == nil {
		return nil, false, nil
	}

	props := result.(map[string]interface{})
	return entityFromProps(entityID, props), true, nil
}

// GetEdge retrieves a directed edge by its endpoints.
func (s *Neo4jGraphStorage) GetEdge(ctx context.Context, src, tgt string) (*models.Relationship, bool, error) {
	result, err := s.client.ExecuteRead(ctx, func(tx neo4jdriver.ManagedTransaction) (interface{}, error) {
		query := `
			MATCH (src:Entity {entity_id: $src_id})-[r:RELATED]->(tgt:Entity {entity_id: $tgt_id})
			RETURN r`
		res, err := tx.Run(ctx, query, map[string]interface{}{"src_id": src, "tgt_id": tgt})
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return nil, nil
		}
		relValue, ok := records[0].Get("r")
		if !ok {
			return nil, fmt.Errorf("missing relationship in result")
		}
		return relValue.(neo4jdriver.Relationship).Props, nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to get edge %s -> %s: %w", src, tgt, err)
	}
	if result == nil {
		return nil, false, nil
	}

	props := result.(map[string]interface{})
	rel := &models.Relationship{SrcID: src, TgtID: tgt}
	if v, ok := props["description"].(string); ok {
		rel.Description = v
	}
	if v, ok := props["keywords"].(string); ok {
		rel.Keywords = v
	}
	if v, ok := props["weight"].(float64); ok {
		rel.Weight = v
	}
	if v, ok := props["source_id"].(string); ok {
		rel.SourceID = v
	}
	if v, ok := props["file_path"].(string); ok {
		rel.FilePath = v
	}
	return rel, true, nil
}

// Flush is a no-op; Neo4j transactions are durable on commit.
func (s *Neo4jGraphStorage) Flush(ctx context.Context) error {
	return nil
}

// Drop removes all Entity nodes and their relationships.
func (s *Neo4jGraphStorage) Drop(ctx context.Context) error {
	_, err := s.client.ExecuteWrite(ctx, func(tx neo4jdriver.ManagedTransaction) (interface{}, error) {
		_, err := tx.Run(ctx, `MATCH (n:Entity) DETACH DELETE n`, nil)
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("failed to drop graph: %w", err)
	}
	return nil
}

func entityFromProps(entityID string, props map[string]interface{}) *models.Entity {
	entity := &models.Entity{EntityID: entityID}
	if v, ok := props["entity_type"].(string); ok {
		entity.EntityType = v
	}
	if v, ok := props["description"].(string); ok {
		entity.Description = v
	}
	if v, ok := props["source_id"].(string); ok {
		entity.SourceID = v
	}
	if v, ok := props["file_path"].(string); ok {
		entity.FilePath = v
	}
	if v, ok := props["created_at"].(int64); ok {
		entity.CreatedAt = v
	}
	return entity
}

// compile-time check to ensure Neo4jGraphStorage implements the GraphStorage interface
var _ interfaces.GraphStorage = (*Neo4jGraphStorage)(nil)
