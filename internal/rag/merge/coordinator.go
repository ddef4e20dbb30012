// Package merge performs the coordinated merge of deferred extraction
// results into the knowledge graph and vector indices.
package merge

import (
	"DocuGraph/internal/models"
	"DocuGraph/internal/rag/interfaces"
	"DocuGraph/pkg/logger"
	"DocuGraph/pkg/util"
	"context"
	"fmt"
	"strings"
)

// Coordinator merges accumulated per-chunk extraction results in a single
// pass. Deferring and batching merges avoids one lock/merge cycle per modal
// item on the shared graph.
type Coordinator struct {
	storages *interfaces.Storages
	log      *logger.Logger
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(storages *interfaces.Storages, log *logger.Logger) *Coordinator {
	return &Coordinator{storages: storages, log: log}
}

// MergeAll merges every node and edge of the given extraction results into
// the graph, the entity vector index and the relationship vector index, then
// flushes storage. Called with no results it is a no-op. Once merging has
// begun, any storage error is fatal for the caller; a partially merged graph
// is never silently tolerated.
func (c *Coordinator) MergeAll(ctx context.Context, chunkResults []*models.ChunkExtraction, filePath string) error {
	if len(chunkResults) == 0 {
		return nil
	}

	nodes, edges := c.collect(chunkResults)

	for entityID, entity := range nodes {
		if err := c.storages.Graph.UpsertNode(ctx, entity); err != nil {
			return fmt.Errorf("merge failed on node %s: %w", entityID, err)
		}

		vdbID := util.MDHashID(entityID, util.EntityIDPrefix)
		record := &models.VectorRecord{
			ID:      vdbID,
			Content: fmt.Sprintf("%s\n%s", entityID, entity.Description),
			Meta: map[string]string{
				"entity_name": entityID,
				"entity_type": entity.EntityType,
				"source_id":   entity.SourceID,
				"file_path":   entity.FilePath,
			},
		}
		if err := c.storages.EntitiesVDB.Upsert(ctx, map[string]*models.VectorRecord{vdbID: record}); err != nil {
			return fmt.Errorf("merge failed on entity vector %s: %w", entityID, err)
		}
	}

	for key, rel := range edges {
		if err := c.storages.Graph.UpsertEdge(ctx, rel); err != nil {
			return fmt.Errorf("merge failed on edge %s -> %s: %w", key.Src, key.Tgt, err)
		}

		vdbID := util.MDHashID(key.Src+key.Tgt, util.RelationIDPrefix)
		record := &models.VectorRecord{
			ID: vdbID,
			Content: fmt.Sprintf("%s\t%s\n%s\n%s",
				rel.Keywords, key.Src, key.Tgt, rel.Description),
			Meta: map[string]string{
				"src_id":    key.Src,
				"tgt_id":    key.Tgt,
				"source_id": rel.SourceID,
				"file_path": rel.FilePath,
			},
		}
		if err := c.storages.RelationshipsVDB.Upsert(ctx, map[string]*models.VectorRecord{vdbID: record}); err != nil {
			return fmt.Errorf("merge failed on relationship vector %s -> %s: %w", key.Src, key.Tgt, err)
		}
	}

	if err := c.flush(ctx); err != nil {
		return err
	}

	c.log.WithFile(filePath).WithPayload(map[string]interface{}{
		"nodes": len(nodes),
		"edges": len(edges),
	}).Info("graph merge completed")
	return nil
}

// collect deduplicates nodes by entity ID and edges by endpoint pair.
// Duplicate node descriptions are concatenated; duplicate edge weights are
// summed, so an edge observed in several chunks grows stronger.
func (c *Coordinator) collect(chunkResults []*models.ChunkExtraction) (map[string]*models.Entity, map[models.EdgeKey]*models.Relationship) {
	nodes := make(map[string]*models.Entity)
	edges := make(map[models.EdgeKey]*models.Relationship)

	for _, result := range chunkResults {
		for entityID, candidates := range result.Nodes {
			for _, candidate := range candidates {
				existing, ok := nodes[entityID]
				if !ok {
					merged := *candidate
					nodes[entityID] = &merged
					continue
				}
				if candidate.Description != "" && !strings.Contains(existing.Description, candidate.Description) {
					if existing.Description == "" {
						existing.Description = candidate.Description
					} else {
						existing.Description = existing.Description + "; " + candidate.Description
					}
				}
			}
		}

		for key, candidates := range result.Edges {
			for _, candidate := range candidates {
				existing, ok := edges[key]
				if !ok {
					merged := *candidate
					edges[key] = &merged
					continue
				}
				existing.Weight += candidate.Weight
				if candidate.Description != "" && !strings.Contains(existing.Description, candidate.Description) {
					if existing.Description == "" {
						existing.Description = candidate.Description
					} else {
						existing.Description = existing.Description + "; " + candidate.Description
					}
				}
			}
		}
	}

	return nodes, edges
}

func (c *Coordinator) flush(ctx context.Context) error {
	if err := c.storages.Graph.Flush(ctx); err != nil {
		return fmt.Errorf("graph flush failed: %w", err)
	}
	if err := c.storages.EntitiesVDB.Flush(ctx); err != nil {
		return fmt.Errorf("entity index flush failed: %w", err)
	}
	if err := c.storages.RelationshipsVDB.Flush(ctx); err != nil {
		return fmt.Errorf("relationship index flush failed: %w", err)
	}
	if err := c.storages.Chunks.Flush(ctx); err != nil {
		return fmt.Errorf("chunk store flush failed: %w", err)
	}
	if err := c.storages.ChunksVDB.Flush(ctx); err != nil {
		return fmt.Errorf("chunk index flush failed: %w", err)
	}
	return nil
}
