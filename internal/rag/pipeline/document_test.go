package pipeline

import (
	"DocuGraph/internal/config"
	"DocuGraph/internal/database/kafka"
	"DocuGraph/internal/models"
	"DocuGraph/internal/parser"
	"DocuGraph/internal/rag/builder"
	"DocuGraph/internal/rag/classifier"
	"DocuGraph/internal/rag/contextual"
	"DocuGraph/internal/rag/interfaces"
	"DocuGraph/internal/rag/merge"
	"DocuGraph/internal/rag/processor"
	"DocuGraph/internal/rag/splitters"
	"DocuGraph/internal/rag/storages/docstore"
	"DocuGraph/internal/rag/storages/graphstore"
	"DocuGraph/internal/rag/storages/statusstore"
	"DocuGraph/internal/rag/storages/vectorstore"
	"DocuGraph/pkg/logger"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{float32(len(text)%3 + 1), 1}, nil
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

type emptyExtractor struct{}

func (emptyExtractor) ExtractEntities(ctx context.Context, chunks map[string]*models.Chunk) ([]*models.ChunkExtraction, error) {
	var results []*models.ChunkExtraction
	for chunkID := range chunks {
		results = append(results, models.NewChunkExtraction(chunkID))
	}
	return results, nil
}

// fixedParser returns the same block stream for every file.
type fixedParser struct {
	blocks []models.ContentBlock
	err    error
}

func (p *fixedParser) Parse(ctx context.Context, filePath string) ([]models.ContentBlock, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.blocks, nil
}

// recordingSink collects published events.
type recordingSink struct {
	mu     sync.Mutex
	events []*kafka.DocumentEvent
}

func (s *recordingSink) Publish(ctx context.Context, event *kafka.DocumentEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, e := range s.events {
		out = append(out, e.EventType)
	}
	return out
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

// captionCounter is a caption function returning a fixed valid analysis and
// counting its invocations.
type captionCounter struct {
	mu    sync.Mutex
	calls int
	name  string
	typ   string
}

func (c *captionCounter) fn(ctx context.Context, systemPrompt, prompt, imageData string) (string, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return `{"detailed_description": "described",
		"entity_info": {"entity_name": "` + c.name + `", "entity_type": "` + c.typ + `", "summary": "s"}}`, nil
}

func (c *captionCounter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func newTestPipeline(p parser.Parser, storages *interfaces.Storages, caption processor.CaptionFunc, sink EventSink) *DocumentPipeline {
	log := logger.New("test", "")
	ctxCfg := config.ContextConfig{Mode: "page", Window: 1, MaxTokens: 2000}
	b := builder.New(storages, emptyExtractor{}, fakeTokenizer{}, log)
	base := processor.NewBase(b, caption, contextual.New(ctxCfg, fakeTokenizer{}), log)
	processing := config.ProcessingConfig{
		ChunkSize:      1000,
		ChunkOverlap:   50,
		EnableImage:    true,
		EnableTable:    true,
		EnableEquation: true,
	}
	return NewDocumentPipeline(
		p,
		classifier.New(&ctxCfg),
		splitters.NewTokenSplitter(fakeTokenizer{}, 1000, 50),
		processor.NewRegistry(base),
		merge.NewCoordinator(storages, log),
		storages,
		processing,
		sink,
		nil,
		log,
	)
}

func docBlocks(t *testing.T) []models.ContentBlock {
	t.Helper()
	imgPath := filepath.Join(t.TempDir(), "fig1.png")
	if err := os.WriteFile(imgPath, []byte("png bytes"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return []models.ContentBlock{
		{Type: models.BlockText, Text: "Intro", PageIdx: 0},
		{Type: models.BlockImage, ImgPath: imgPath, PageIdx: 0},
		{Type: models.BlockText, Text: "Conclusion", PageIdx: 1},
	}
}

func TestProcessDocumentEndToEnd(t *testing.T) {
	storages := testStorages()
	caption := &captionCounter{name: "fig1", typ: "image"}
	sink := &recordingSink{}
	dp := newTestPipeline(&fixedParser{blocks: docBlocks(t)}, storages, caption.fn, sink)
	ctx := context.Background()

	status, err := dp.ProcessDocument(ctx, "/tmp/paper.pdf")
	if err != nil {
		t.Fatalf("ProcessDocument() error = %v", err)
	}

	if !strings.HasPrefix(status.DocID, "doc-") {
		t.Errorf("DocID = %q, want doc- prefix", status.DocID)
	}
	if status.ChunkCount != 1 {
		t.Errorf("ChunkCount = %d, want 1", status.ChunkCount)
	}
	if !status.MultimodalProcessed || status.MultimodalChunksCount != 1 {
		t.Errorf("multimodal status = (%v, %d), want (true, 1)",
			status.MultimodalProcessed, status.MultimodalChunksCount)
	}

	// The joined text stream became one chunk in store and index.
	chunks := storages.Chunks.(*docstore.InMemoryChunkStore)
	if chunks.Len() != 2 { // one text chunk + one modal chunk
		t.Errorf("chunk store holds %d chunks, want 2", chunks.Len())
	}

	if _, found, _ := storages.Graph.GetNode(ctx, "fig1 (image)"); !found {
		t.Errorf("carrier node fig1 (image) missing from graph")
	}

	types := sink.types()
	if len(types) < 2 || types[0] != kafka.EventDocumentStarted || types[len(types)-1] != kafka.EventDocumentCompleted {
		t.Errorf("event sequence = %v", types)
	}
}

func TestProcessDocumentResumption(t *testing.T) {
	storages := testStorages()
	caption := &captionCounter{name: "fig1", typ: "image"}
	dp := newTestPipeline(&fixedParser{blocks: docBlocks(t)}, storages, caption.fn, nil)
	ctx := context.Background()

	if _, err := dp.ProcessDocument(ctx, "/tmp/paper.pdf"); err != nil {
		t.Fatalf("first ProcessDocument() error = %v", err)
	}
	callsAfterFirst := caption.count()
	if callsAfterFirst == 0 {
		t.Fatalf("first run made no model calls")
	}

	status, err := dp.ProcessDocument(ctx, "/tmp/paper.pdf")
	if err != nil {
		t.Fatalf("second ProcessDocument() error = %v", err)
	}
	if caption.count() != callsAfterFirst {
		t.Errorf("resumed run made %d extra model calls", caption.count()-callsAfterFirst)
	}
	if !status.MultimodalProcessed {
		t.Errorf("resumed status not marked processed")
	}
}

func TestDocIDIndependentOfFileName(t *testing.T) {
	blocks := docBlocks(t)
	storages := testStorages()
	caption := &captionCounter{name: "fig1", typ: "image"}
	dp := newTestPipeline(&fixedParser{blocks: blocks}, storages, caption.fn, nil)
	ctx := context.Background()

	first, err := dp.ProcessDocument(ctx, "/tmp/a.pdf")
	if err != nil {
		t.Fatalf("ProcessDocument() error = %v", err)
	}
	second, err := dp.ProcessDocument(ctx, "/other/b.pdf")
	if err != nil {
		t.Fatalf("ProcessDocument() error = %v", err)
	}
	if first.DocID != second.DocID {
		t.Errorf("identical content under different names got different doc ids: %q vs %q",
			first.DocID, second.DocID)
	}
}

func TestProcessDocumentItemFailureIsolated(t *testing.T) {
	imgOK := filepath.Join(t.TempDir(), "ok.png")
	if err := os.WriteFile(imgOK, []byte("png"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	blocks := []models.ContentBlock{
		{Type: models.BlockText, Text: "Intro", PageIdx: 0},
		{Type: models.BlockImage, ImgPath: "/missing/image.png", PageIdx: 0},
		{Type: models.BlockImage, ImgPath: imgOK, PageIdx: 0},
	}

	storages := testStorages()
	caption := &captionCounter{name: "fig", typ: "image"}
	dp := newTestPipeline(&fixedParser{blocks: blocks}, storages, caption.fn, nil)

	status, err := dp.ProcessDocument(context.Background(), "/tmp/doc.pdf")
	if err != nil {
		t.Fatalf("ProcessDocument() error = %v, want per-item isolation", err)
	}
	if status.MultimodalChunksCount != 1 {
		t.Errorf("MultimodalChunksCount = %d, want 1", status.MultimodalChunksCount)
	}
}

func TestProcessDocumentDisabledTypesSkipped(t *testing.T) {
	blocks := []models.ContentBlock{
		{Type: models.BlockText, Text: "Intro", PageIdx: 0},
		{Type: models.BlockTable, TableBody: "| a |", PageIdx: 0},
	}
	storages := testStorages()
	caption := &captionCounter{name: "tbl", typ: "table"}
	dp := newTestPipeline(&fixedParser{blocks: blocks}, storages, caption.fn, nil)
	dp.processing.EnableTable = false

	status, err := dp.ProcessDocument(context.Background(), "/tmp/doc.pdf")
	if err != nil {
		t.Fatalf("ProcessDocument() error = %v", err)
	}
	if caption.count() != 0 {
		t.Errorf("disabled table type still made %d model calls", caption.count())
	}
	if status.MultimodalChunksCount != 0 {
		t.Errorf("MultimodalChunksCount = %d, want 0", status.MultimodalChunksCount)
	}
}

// mapParser returns a distinct block stream per file path.
type mapParser struct {
	byPath map[string][]models.ContentBlock
}

func (p *mapParser) Parse(ctx context.Context, filePath string) ([]models.ContentBlock, error) {
	blocks, ok := p.byPath[filePath]
	if !ok {
		return nil, os.ErrNotExist
	}
	return blocks, nil
}

func TestConcurrentDocumentsKeepOwnContext(t *testing.T) {
	tableDoc := func(marker, body1, body2 string) []models.ContentBlock {
		return []models.ContentBlock{
			{Type: models.BlockText, Text: marker, PageIdx: 0},
			{Type: models.BlockTable, TableBody: body1, PageIdx: 0},
			{Type: models.BlockTable, TableBody: body2, PageIdx: 0},
		}
	}
	p := &mapParser{byPath: map[string][]models.ContentBlock{
		"/tmp/a.pdf": tableDoc("ALPHA section text", "| tableA1 |", "| tableA2 |"),
		"/tmp/b.pdf": tableDoc("BRAVO section text", "| tableB1 |", "| tableB2 |"),
	}}

	var mu sync.Mutex
	var prompts []string
	caption := func(ctx context.Context, systemPrompt, prompt, imageData string) (string, error) {
		mu.Lock()
		prompts = append(prompts, prompt)
		mu.Unlock()
		return `{"detailed_description": "d",
			"entity_info": {"entity_name": "tbl", "entity_type": "table", "summary": "s"}}`, nil
	}

	dp := newTestPipeline(p, testStorages(), caption, nil)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, path := range []string{"/tmp/a.pdf", "/tmp/b.pdf"} {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			_, errs[i] = dp.ProcessDocument(context.Background(), path)
		}(i, path)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Fatalf("ProcessDocument(%d) error = %v", i, err)
		}
	}

	if len(prompts) != 4 {
		t.Fatalf("caption called %d times, want 4", len(prompts))
	}
	for _, prompt := range prompts {
		switch {
		case strings.Contains(prompt, "tableA"):
			if !strings.Contains(prompt, "ALPHA") || strings.Contains(prompt, "BRAVO") {
				t.Errorf("document A item lost its own context: %q", prompt)
			}
		case strings.Contains(prompt, "tableB"):
			if !strings.Contains(prompt, "BRAVO") || strings.Contains(prompt, "ALPHA") {
				t.Errorf("document B item lost its own context: %q", prompt)
			}
		default:
			t.Errorf("prompt for unknown item: %q", prompt)
		}
	}
}

func TestParseFailurePropagates(t *testing.T) {
	storages := testStorages()
	dp := newTestPipeline(&fixedParser{err: os.ErrNotExist}, storages, nil, nil)
	if _, err := dp.ProcessDocument(context.Background(), "/tmp/doc.pdf"); err == nil {
		t.Errorf("expected parse failure to propagate")
	}
}
