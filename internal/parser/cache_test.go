package parser

import (
	"DocuGraph/internal/config"
	"DocuGraph/internal/models"
	"DocuGraph/internal/rag/storages/kvstore"
	"DocuGraph/pkg/logger"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// countingParser records how often it is invoked.
type countingParser struct {
	calls  int
	blocks []models.ContentBlock
}

func (p *countingParser) Parse(ctx context.Context, filePath string) ([]models.ContentBlock, error) {
	p.calls++
	return p.blocks, nil
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestCachingParserHit(t *testing.T) {
	inner := &countingParser{blocks: []models.ContentBlock{{Type: models.BlockText, Text: "cached"}}}
	store := kvstore.NewInMemoryKVStore()
	cfg := &config.ParserConfig{Backend: "native", ParseMethod: "auto"}
	caching := NewCachingParser(inner, store, cfg, logger.New("test", ""))

	path := writeTempFile(t, "hello")
	ctx := context.Background()

	first, err := caching.Parse(ctx, path)
	if err != nil {
		t.Fatalf("first Parse() error = %v", err)
	}
	second, err := caching.Parse(ctx, path)
	if err != nil {
		t.Fatalf("second Parse() error = %v", err)
	}

	if inner.calls != 1 {
		t.Errorf("inner parser called %d times, want 1", inner.calls)
	}
	if len(first) != 1 || len(second) != 1 || second[0].Text != "cached" {
		t.Errorf("cached blocks differ: %v vs %v", first, second)
	}
}

func TestCachingParserInvalidatedByModTime(t *testing.T) {
	inner := &countingParser{blocks: []models.ContentBlock{{Type: models.BlockText, Text: "x"}}}
	store := kvstore.NewInMemoryKVStore()
	cfg := &config.ParserConfig{Backend: "native"}
	caching := NewCachingParser(inner, store, cfg, logger.New("test", ""))

	path := writeTempFile(t, "hello")
	ctx := context.Background()

	if _, err := caching.Parse(ctx, path); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	newTime := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, newTime, newTime); err != nil {
		t.Fatalf("Chtimes() error = %v", err)
	}

	if _, err := caching.Parse(ctx, path); err != nil {
		t.Fatalf("Parse() after touch error = %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("inner parser called %d times after mtime change, want 2", inner.calls)
	}
}

func TestCachingParserInvalidatedByConfigChange(t *testing.T) {
	inner := &countingParser{blocks: []models.ContentBlock{{Type: models.BlockText, Text: "x"}}}
	store := kvstore.NewInMemoryKVStore()
	log := logger.New("test", "")

	path := writeTempFile(t, "hello")
	ctx := context.Background()

	first := NewCachingParser(inner, store, &config.ParserConfig{ParseMethod: "auto"}, log)
	if _, err := first.Parse(ctx, path); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	second := NewCachingParser(inner, store, &config.ParserConfig{ParseMethod: "ocr"}, log)
	if _, err := second.Parse(ctx, path); err != nil {
		t.Fatalf("Parse() with new config error = %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("inner parser called %d times after config change, want 2", inner.calls)
	}

	// Each configuration keys its own entry, so returning to the original
	// configuration hits its earlier entry instead of re-parsing.
	if _, err := first.Parse(ctx, path); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if _, err := second.Parse(ctx, path); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("inner parser called %d times, want 2 with coexisting entries", inner.calls)
	}
}
