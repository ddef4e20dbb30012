package merge

import (
	"DocuGraph/internal/models"
	"DocuGraph/internal/rag/interfaces"
	"DocuGraph/internal/rag/storages/docstore"
	"DocuGraph/internal/rag/storages/graphstore"
	"DocuGraph/internal/rag/storages/statusstore"
	"DocuGraph/internal/rag/storages/vectorstore"
	"DocuGraph/pkg/logger"
	"context"
	"strings"
	"testing"
)

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{float32(len(text)%5 + 1), 1}, nil
}

func (f fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i], _ = f.Embed(ctx, text)
	}
	return out, nil
}

func testStorages() *interfaces.Storages {
	return &interfaces.Storages{
		Chunks:           docstore.NewInMemoryChunkStore(),
		ChunksVDB:        vectorstore.NewInMemoryVectorIndex(fakeEmbedder{}),
		EntitiesVDB:      vectorstore.NewInMemoryVectorIndex(fakeEmbedder{}),
		RelationshipsVDB: vectorstore.NewInMemoryVectorIndex(fakeEmbedder{}),
		Graph:            graphstore.NewInMemoryGraphStorage(),
		Status:           statusstore.NewInMemoryStatusStore(),
	}
}

func extractionWith(chunkID string, nodes map[string]string, edges map[models.EdgeKey]float64) *models.ChunkExtraction {
	result := models.NewChunkExtraction(chunkID)
	for name, description := range nodes {
		result.Nodes[name] = append(result.Nodes[name], &models.Entity{
			EntityID:    name,
			EntityType:  "concept",
			Description: description,
			SourceID:    chunkID,
		})
	}
	for key, weight := range edges {
		result.Edges[key] = append(result.Edges[key], &models.Relationship{
			SrcID:    key.Src,
			TgtID:    key.Tgt,
			Weight:   weight,
			SourceID: chunkID,
		})
	}
	return result
}

func TestMergeAllEmptyIsNoOp(t *testing.T) {
	storages := testStorages()
	c := NewCoordinator(storages, logger.New("test", ""))

	if err := c.MergeAll(context.Background(), nil, "doc.pdf"); err != nil {
		t.Fatalf("MergeAll(nil) error = %v", err)
	}
	graph := storages.Graph.(*graphstore.InMemoryGraphStorage)
	if graph.NodeCount() != 0 || graph.EdgeCount() != 0 {
		t.Errorf("empty merge wrote to the graph")
	}
}

func TestMergeAllDeduplicatesNodes(t *testing.T) {
	storages := testStorages()
	c := NewCoordinator(storages, logger.New("test", ""))
	ctx := context.Background()

	results := []*models.ChunkExtraction{
		extractionWith("chunk-1", map[string]string{"Alice": "an engineer"}, nil),
		extractionWith("chunk-2", map[string]string{"Alice": "a manager"}, nil),
	}
	if err := c.MergeAll(ctx, results, "doc.pdf"); err != nil {
		t.Fatalf("MergeAll() error = %v", err)
	}

	graph := storages.Graph.(*graphstore.InMemoryGraphStorage)
	if graph.NodeCount() != 1 {
		t.Errorf("NodeCount = %d, want 1", graph.NodeCount())
	}

	node, found, err := storages.Graph.GetNode(ctx, "Alice")
	if err != nil || !found {
		t.Fatalf("merged node missing")
	}
	if !strings.Contains(node.Description, "an engineer") || !strings.Contains(node.Description, "a manager") {
		t.Errorf("descriptions not merged: %q", node.Description)
	}
}

func TestMergeAllSumsEdgeWeights(t *testing.T) {
	storages := testStorages()
	c := NewCoordinator(storages, logger.New("test", ""))
	ctx := context.Background()

	key := models.EdgeKey{Src: "Alice", Tgt: "Acme"}
	results := []*models.ChunkExtraction{
		extractionWith("chunk-1", nil, map[models.EdgeKey]float64{key: 1.5}),
		extractionWith("chunk-2", nil, map[models.EdgeKey]float64{key: 2.5}),
	}
	if err := c.MergeAll(ctx, results, "doc.pdf"); err != nil {
		t.Fatalf("MergeAll() error = %v", err)
	}

	rel, found, err := storages.Graph.GetEdge(ctx, "Alice", "Acme")
	if err != nil || !found {
		t.Fatalf("merged edge missing")
	}
	if rel.Weight != 4.0 {
		t.Errorf("Weight = %v, want 4.0", rel.Weight)
	}

	relVDB := storages.RelationshipsVDB.(*vectorstore.InMemoryVectorIndex)
	if relVDB.Len() != 1 {
		t.Errorf("relationship index holds %d records, want 1", relVDB.Len())
	}
}
