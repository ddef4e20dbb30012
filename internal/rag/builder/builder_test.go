package builder

import (
	"DocuGraph/internal/models"
	"DocuGraph/internal/rag/interfaces"
	"DocuGraph/internal/rag/storages/docstore"
	"DocuGraph/internal/rag/storages/graphstore"
	"DocuGraph/internal/rag/storages/statusstore"
	"DocuGraph/internal/rag/storages/vectorstore"
	"DocuGraph/pkg/logger"
	"DocuGraph/pkg/util"
	"context"
	"testing"
)

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	v := float32(len(text)%7 + 1)
	return []float32{v, 1, 1}, nil
}

func (f fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i], _ = f.Embed(ctx, text)
	}
	return out, nil
}

type fakeTokenizer struct{}

func (fakeTokenizer) Encode(text string) []int {
	ids := make([]int, len(text))
	for i := range text {
		ids[i] = int(text[i])
	}
	return ids
}

func (fakeTokenizer) Decode(tokens []int) string {
	out := make([]byte, len(tokens))
	for i, id := range tokens {
		out[i] = byte(id)
	}
	return string(out)
}

// scriptedExtractor returns a fixed set of mined entities per chunk.
type scriptedExtractor struct {
	entityNames []string
}

func (e *scriptedExtractor) ExtractEntities(ctx context.Context, chunks map[string]*models.Chunk) ([]*models.ChunkExtraction, error) {
	var results []*models.ChunkExtraction
	for chunkID, chunk := range chunks {
		result := models.NewChunkExtraction(chunkID)
		for _, name := range e.entityNames {
			result.Nodes[name] = append(result.Nodes[name], &models.Entity{
				EntityID:   name,
				EntityType: "concept",
				SourceID:   chunkID,
				FilePath:   chunk.FilePath,
			})
		}
		results = append(results, result)
	}
	return results, nil
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

func TestCreateEntityAndChunk(t *testing.T) {
	storages := testStorages()
	b := New(storages, &scriptedExtractor{entityNames: []string{"gradient descent"}}, fakeTokenizer{}, logger.New("test", ""))
	ctx := context.Background()

	info := &models.EntityInfo{
		EntityName: "fig1 (image)",
		EntityType: "image",
		Summary:    "a line chart",
	}
	got, chunkResults, err := b.CreateEntityAndChunk(ctx, "Image Content Analysis: a line chart", info, "paper.pdf")
	if err != nil {
		t.Fatalf("CreateEntityAndChunk() error = %v", err)
	}

	wantChunkID := util.MDHashID("Image Content Analysis: a line chart", util.ChunkIDPrefix)
	if got.ChunkID != wantChunkID {
		t.Errorf("ChunkID = %q, want %q", got.ChunkID, wantChunkID)
	}

	chunk, err := storages.Chunks.GetByID(ctx, wantChunkID)
	if err != nil || chunk == nil {
		t.Fatalf("chunk not stored: %v", err)
	}
	if chunk.FilePath != "paper.pdf" {
		t.Errorf("chunk FilePath = %q", chunk.FilePath)
	}

	carrier, found, err := storages.Graph.GetNode(ctx, "fig1 (image)")
	if err != nil || !found {
		t.Fatalf("carrier node not stored")
	}
	if carrier.SourceID != wantChunkID {
		t.Errorf("carrier SourceID = %q", carrier.SourceID)
	}

	entityVDB := storages.EntitiesVDB.(*vectorstore.InMemoryVectorIndex)
	if !entityVDB.Has(util.MDHashID("fig1 (image)", util.EntityIDPrefix)) {
		t.Errorf("carrier entity vector record missing")
	}
	chunksVDB := storages.ChunksVDB.(*vectorstore.InMemoryVectorIndex)
	if !chunksVDB.Has(wantChunkID) {
		t.Errorf("chunk vector record missing")
	}

	if len(chunkResults) != 1 {
		t.Fatalf("len(chunkResults) = %d, want 1", len(chunkResults))
	}
}

func TestBelongsToEdges(t *testing.T) {
	storages := testStorages()
	b := New(storages, &scriptedExtractor{entityNames: []string{"alpha", "beta"}}, fakeTokenizer{}, logger.New("test", ""))
	ctx := context.Background()

	info := &models.EntityInfo{EntityName: "tbl1 (table)", EntityType: "table", Summary: "s"}
	_, chunkResults, err := b.CreateEntityAndChunk(ctx, "table chunk", info, "doc.xlsx")
	if err != nil {
		t.Fatalf("CreateEntityAndChunk() error = %v", err)
	}

	for _, name := range []string{"alpha", "beta"} {
		rel, found, err := storages.Graph.GetEdge(ctx, name, "tbl1 (table)")
		if err != nil || !found {
			t.Fatalf("belongs_to edge %s -> carrier missing", name)
		}
		if rel.Keywords != BelongsToKeywords {
			t.Errorf("Keywords = %q, want %q", rel.Keywords, BelongsToKeywords)
		}
		if rel.Weight != BelongsToWeight {
			t.Errorf("Weight = %v, want %v", rel.Weight, BelongsToWeight)
		}
		if rel.Description != "Entity "+name+" belongs to tbl1 (table)" {
			t.Errorf("Description = %q", rel.Description)
		}

		relVDB := storages.RelationshipsVDB.(*vectorstore.InMemoryVectorIndex)
		if !relVDB.Has(util.MDHashID(name+"tbl1 (table)", util.RelationIDPrefix)) {
			t.Errorf("belongs_to vector record for %s missing", name)
		}

		key := models.EdgeKey{Src: name, Tgt: "tbl1 (table)"}
		if len(chunkResults[0].Edges[key]) != 1 {
			t.Errorf("belongs_to edge for %s not appended to deferred result", name)
		}
	}
}

func TestIdenticalContentSameChunkID(t *testing.T) {
	storages := testStorages()
	b := New(storages, &scriptedExtractor{}, fakeTokenizer{}, logger.New("test", ""))
	ctx := context.Background()

	info := &models.EntityInfo{EntityName: "e", EntityType: "image", Summary: "s"}
	first, _, err := b.CreateEntityAndChunk(ctx, "same text", info, "a.pdf")
	if err != nil {
		t.Fatalf("first call error = %v", err)
	}
	second, _, err := b.CreateEntityAndChunk(ctx, "same text", info, "a.pdf")
	if err != nil {
		t.Fatalf("second call error = %v", err)
	}
	if first.ChunkID != second.ChunkID {
		t.Errorf("identical content produced different chunk ids: %q vs %q", first.ChunkID, second.ChunkID)
	}

	store := storages.Chunks.(*docstore.InMemoryChunkStore)
	if store.Len() != 1 {
		t.Errorf("chunk store holds %d chunks, want 1", store.Len())
	}
}
