package pipeline

import (
	"DocuGraph/internal/models"
	"DocuGraph/internal/rag/interfaces"
	"DocuGraph/pkg/logger"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// echoModel records every prompt and answers with a fixed string.
type echoModel struct {
	prompts []string
	answer  string
}

func (m *echoModel) Complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	return m.answer, nil
}

type fakeVision struct {
	gotImageData string
}

func (v *fakeVision) Complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	return "a photo of a cat", nil
}

func (v *fakeVision) CompleteWithImage(ctx context.Context, systemPrompt, prompt, imageData string) (string, error) {
	v.gotImageData = imageData
	return "a photo of a cat", nil
}

func seedKnowledge(t *testing.T, storages *interfaces.Storages) {
	t.Helper()
	ctx := context.Background()

	chunks := map[string]*models.Chunk{
		"chunk-1": {ID: "chunk-1", Content: "Gradient descent minimizes loss."},
	}
	if err := storages.Chunks.Upsert(ctx, chunks); err != nil {
		t.Fatalf("chunk upsert error = %v", err)
	}
	records := map[string]*models.VectorRecord{
		"chunk-1": {ID: "chunk-1", Content: "Gradient descent minimizes loss."},
	}
	if err := storages.ChunksVDB.Upsert(ctx, records); err != nil {
		t.Fatalf("vector upsert error = %v", err)
	}
	entities := map[string]*models.VectorRecord{
		"ent-1": {ID: "ent-1", Content: "gradient descent: an optimization method"},
	}
	if err := storages.EntitiesVDB.Upsert(ctx, entities); err != nil {
		t.Fatalf("entity upsert error = %v", err)
	}
}

func TestQueryRetrievesAndAnswers(t *testing.T) {
	storages := testStorages()
	seedKnowledge(t, storages)
	model := &echoModel{answer: "the answer"}
	qp := NewQueryPipeline(storages, model, nil, logger.New("test", ""))

	answer, err := qp.Query(context.Background(), "what is gradient descent?", 5)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if answer != "the answer" {
		t.Errorf("answer = %q", answer)
	}

	if len(model.prompts) != 1 {
		t.Fatalf("model called %d times, want 1", len(model.prompts))
	}
	prompt := model.prompts[0]
	if !strings.Contains(prompt, "Gradient descent minimizes loss.") {
		t.Errorf("prompt missing chunk passage: %q", prompt)
	}
	if !strings.Contains(prompt, "Entity: gradient descent") {
		t.Errorf("prompt missing entity passage: %q", prompt)
	}
}

func TestQueryEmptyQuestion(t *testing.T) {
	qp := NewQueryPipeline(testStorages(), &echoModel{}, nil, logger.New("test", ""))
	if _, err := qp.Query(context.Background(), "   ", 5); err == nil {
		t.Errorf("expected error for empty question")
	}
}

func TestQueryNoKnowledge(t *testing.T) {
	qp := NewQueryPipeline(testStorages(), &echoModel{}, nil, logger.New("test", ""))
	if _, err := qp.Query(context.Background(), "anything", 5); err == nil {
		t.Errorf("expected error when nothing is ingested")
	}
}

func TestQueryWithMultimodalEnhancesQuestion(t *testing.T) {
	storages := testStorages()
	seedKnowledge(t, storages)
	model := &echoModel{answer: "ok"}
	qp := NewQueryPipeline(storages, model, nil, logger.New("test", ""))

	attachments := []models.ContentBlock{
		{Type: models.BlockTable, TableCaption: []string{"Results"}, TableBody: "| acc | 0.91 |"},
	}
	if _, err := qp.QueryWithMultimodal(context.Background(), "how accurate is it?", attachments, 5); err != nil {
		t.Fatalf("QueryWithMultimodal() error = %v", err)
	}

	// First call describes the table, second answers the enhanced question.
	if len(model.prompts) != 2 {
		t.Fatalf("model called %d times, want 2", len(model.prompts))
	}
	if !strings.Contains(model.prompts[0], "| acc | 0.91 |") {
		t.Errorf("describe prompt missing table body: %q", model.prompts[0])
	}
	if !strings.Contains(model.prompts[1], "Attached table content: ok") {
		t.Errorf("final prompt missing enhancement: %q", model.prompts[1])
	}
}

func TestQueryWithMultimodalImage(t *testing.T) {
	storages := testStorages()
	seedKnowledge(t, storages)
	model := &echoModel{answer: "ok"}
	vision := &fakeVision{}
	qp := NewQueryPipeline(storages, model, vision, logger.New("test", ""))

	imgPath := filepath.Join(t.TempDir(), "cat.png")
	if err := os.WriteFile(imgPath, []byte("png bytes"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	attachments := []models.ContentBlock{{Type: models.BlockImage, ImgPath: imgPath}}
	if _, err := qp.QueryWithMultimodal(context.Background(), "what animal is this?", attachments, 5); err != nil {
		t.Fatalf("QueryWithMultimodal() error = %v", err)
	}

	if vision.gotImageData == "" {
		t.Errorf("vision model did not receive image data")
	}
	if !strings.Contains(model.prompts[len(model.prompts)-1], "Attached image content: a photo of a cat") {
		t.Errorf("final prompt missing image description: %q", model.prompts[len(model.prompts)-1])
	}
}

func TestQueryWithMultimodalImageNeedsVision(t *testing.T) {
	storages := testStorages()
	seedKnowledge(t, storages)
	model := &echoModel{answer: "ok"}
	qp := NewQueryPipeline(storages, model, nil, logger.New("test", ""))

	attachments := []models.ContentBlock{{Type: models.BlockImage, ImgPath: "/x.png"}}
	if _, err := qp.QueryWithMultimodal(context.Background(), "what is shown?", attachments, 5); err != nil {
		t.Fatalf("QueryWithMultimodal() error = %v", err)
	}
	// The image attachment is skipped without a vision model; the plain
	// question still goes through.
	if len(model.prompts) != 1 {
		t.Fatalf("model called %d times, want 1", len(model.prompts))
	}
	if strings.Contains(model.prompts[0], "Attached") {
		t.Errorf("failed attachment should not enhance the question: %q", model.prompts[0])
	}
}
