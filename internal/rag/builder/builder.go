// Package builder materializes a synthesized modal description into durable
// storage records: a text chunk, a carrier entity node, vector-index entries
// and deferred entity/relationship extraction results.
package builder

import (
	"DocuGraph/internal/models"
	"DocuGraph/internal/rag/interfaces"
	"DocuGraph/pkg/logger"
	"DocuGraph/pkg/util"
	"context"
	"fmt"
	"time"
)

// Keywords and weight of the relationship linking a mined sub-entity back to
// its carrier entity.
const (
	BelongsToKeywords = "belongs_to,part_of,contained_in"
	BelongsToWeight   = 10.0
)

// Builder persists chunks and carrier entities and runs sub-entity
// extraction. It never merges extraction results itself; they are always
// returned deferred, and the caller decides whether to merge immediately or
// accumulate across a document.
type Builder struct {
	storages  *interfaces.Storages
	extractor interfaces.Extractor
	tokenizer interfaces.Tokenizer
	log       *logger.Logger
}

// New creates a Builder.
func New(storages *interfaces.Storages, extractor interfaces.Extractor, tokenizer interfaces.Tokenizer, log *logger.Logger) *Builder {
	return &Builder{
		storages:  storages,
		extractor: extractor,
		tokenizer: tokenizer,
		log:       log,
	}
}

// CreateEntityAndChunk persists the chunk text and its carrier entity, runs
// entity/relationship extraction over the chunk, and synthesizes belongs_to
// edges from every mined entity back to the carrier. The returned extraction
// results are deferred: nothing has been merged into the graph beyond the
// carrier node and the belongs_to edges' vector records.
func (b *Builder) CreateEntityAndChunk(ctx context.Context, chunkText string, entityInfo *models.EntityInfo, filePath string) (*models.EntityInfo, []*models.ChunkExtraction, error) {
	// Chunk identifiers are content-derived, so re-inserting identical
	// text overwrites the same record.
	chunkID := util.MDHashID(chunkText, util.ChunkIDPrefix)
	chunk := &models.Chunk{
		ID:              chunkID,
		Content:         chunkText,
		Tokens:          len(b.tokenizer.Encode(chunkText)),
		ChunkOrderIndex: 0,
		FullDocID:       chunkID,
		FilePath:        filePath,
	}

	if err := b.storages.Chunks.Upsert(ctx, map[string]*models.Chunk{chunkID: chunk}); err != nil {
		return nil, nil, fmt.Errorf("failed to store chunk: %w", err)
	}

	// Carrier entity node.
	carrier := &models.Entity{
		EntityID:    entityInfo.EntityName,
		EntityType:  entityInfo.EntityType,
		Description: entityInfo.Summary,
		SourceID:    chunkID,
		FilePath:    filePath,
		CreatedAt:   time.Now().Unix(),
	}
	if err := b.storages.Graph.UpsertNode(ctx, carrier); err != nil {
		return nil, nil, fmt.Errorf("failed to store carrier entity: %w", err)
	}

	// Carrier entity vector record.
	entityVDBID := util.MDHashID(entityInfo.EntityName, util.EntityIDPrefix)
	entityRecord := &models.VectorRecord{
		ID:      entityVDBID,
		Content: fmt.Sprintf("%s\n%s", entityInfo.EntityName, entityInfo.Summary),
		Meta: map[string]string{
			"entity_name": entityInfo.EntityName,
			"entity_type": entityInfo.EntityType,
			"source_id":   chunkID,
			"file_path":   filePath,
		},
	}
	if err := b.storages.EntitiesVDB.Upsert(ctx, map[string]*models.VectorRecord{entityVDBID: entityRecord}); err != nil {
		return nil, nil, fmt.Errorf("failed to store entity vector: %w", err)
	}

	// Chunk vector record.
	chunkRecord := &models.VectorRecord{
		ID:      chunkID,
		Content: chunkText,
		Meta: map[string]string{
			"full_doc_id": chunkID,
			"file_path":   filePath,
		},
	}
	if err := b.storages.ChunksVDB.Upsert(ctx, map[string]*models.VectorRecord{chunkID: chunkRecord}); err != nil {
		return nil, nil, fmt.Errorf("failed to store chunk vector: %w", err)
	}

	// Mine sub-entities and relationships from the chunk text.
	chunkResults, err := b.extractor.ExtractEntities(ctx, map[string]*models.Chunk{chunkID: chunk})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to extract entities: %w", err)
	}

	// Link every mined entity back to the carrier.
	for _, result := range chunkResults {
		if err := b.addBelongsToEdges(ctx, result, entityInfo.EntityName, chunkID, filePath); err != nil {
			return nil, nil, err
		}
	}

	info := &models.EntityInfo{
		EntityName: entityInfo.EntityName,
		EntityType: entityInfo.EntityType,
		Summary:    entityInfo.Summary,
		ChunkID:    chunkID,
	}
	return info, chunkResults, nil
}

// addBelongsToEdges synthesizes a belongs_to relationship from each mined
// entity to the carrier entity and records it both as a graph edge and as a
// relationship vector record. The edge is also appended to the deferred
// extraction result so the coordinated merge sees it.
func (b *Builder) addBelongsToEdges(ctx context.Context, result *models.ChunkExtraction, carrierName, chunkID, filePath string) error {
	for entityName := range result.Nodes {
		if entityName == carrierName {
			continue
		}

		rel := &models.Relationship{
			SrcID:       entityName,
			TgtID:       carrierName,
			Description: fmt.Sprintf("Entity %s belongs to %s", entityName, carrierName),
			Keywords:    BelongsToKeywords,
			Weight:      BelongsToWeight,
			SourceID:    chunkID,
			FilePath:    filePath,
		}
		if err := b.storages.Graph.UpsertEdge(ctx, rel); err != nil {
			return fmt.Errorf("failed to store belongs_to edge: %w", err)
		}

		relID := util.MDHashID(entityName+carrierName, util.RelationIDPrefix)
		relRecord := &models.VectorRecord{
			ID: relID,
			Content: fmt.Sprintf("%s\t%s\n%s\n%s",
				rel.Keywords, entityName, carrierName, rel.Description),
			Meta: map[string]string{
				"src_id":    entityName,
				"tgt_id":    carrierName,
				"source_id": chunkID,
				"file_path": filePath,
			},
		}
		if err := b.storages.RelationshipsVDB.Upsert(ctx, map[string]*models.VectorRecord{relID: relRecord}); err != nil {
			return fmt.Errorf("failed to store belongs_to vector: %w", err)
		}

		key := models.EdgeKey{Src: entityName, Tgt: carrierName}
		result.Edges[key] = append(result.Edges[key], rel)
	}
	return nil
}
