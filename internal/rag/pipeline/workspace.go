package pipeline

import (
	"DocuGraph/internal/rag/interfaces"
	"context"
	"fmt"
)

// ResetWorkspace drops every storage backend: chunks, vector indices, graph
// and document status. All ingested knowledge is lost.
func ResetWorkspace(ctx context.Context, storages *interfaces.Storages) error {
	if err := storages.Chunks.Drop(ctx); err != nil {
		return fmt.Errorf("failed to drop chunk store: %w", err)
	}
	if err := storages.ChunksVDB.Drop(ctx); err != nil {
		return fmt.Errorf("failed to drop chunk index: %w", err)
	}
	if err := storages.EntitiesVDB.Drop(ctx); err != nil {
		return fmt.Errorf("failed to drop entity index: %w", err)
	}
	if err := storages.RelationshipsVDB.Drop(ctx); err != nil {
		return fmt.Errorf("failed to drop relationship index: %w", err)
	}
	if err := storages.Graph.Drop(ctx); err != nil {
		return fmt.Errorf("failed to drop graph: %w", err)
	}
	if err := storages.Status.Drop(ctx); err != nil {
		return fmt.Errorf("failed to drop status store: %w", err)
	}
	return nil
}
