package pipeline

import (
	"DocuGraph/internal/config"
	"DocuGraph/internal/database/kafka"
	"DocuGraph/internal/models"
	"DocuGraph/pkg/logger"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// fileParser turns each file into a single text block holding its content, so
// every file gets a distinct document identifier. Files whose name contains
// "bad" fail to parse.
type fileParser struct{}

func (fileParser) Parse(ctx context.Context, filePath string) ([]models.ContentBlock, error) {
	if strings.Contains(filepath.Base(filePath), "bad") {
		return nil, fmt.Errorf("unreadable file")
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return []models.ContentBlock{{Type: models.BlockText, Text: string(data)}}, nil
}

// savingStore keeps the last saved report.
type savingStore struct {
	mu     sync.Mutex
	report *models.BatchReport
}

func (s *savingStore) Save(ctx context.Context, report *models.BatchReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.report = report
	return nil
}

func newBatchFixture(t *testing.T, cfg config.BatchConfig, sink EventSink, reports ReportStore) *BatchCoordinator {
	t.Helper()
	log := logger.New("test", "")
	dp := newTestPipeline(fileParser{}, testStorages(), nil, nil)
	bc, err := NewBatchCoordinator(dp, cfg, sink, reports, log)
	if err != nil {
		t.Fatalf("NewBatchCoordinator() error = %v", err)
	}
	return bc
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("content of "+name), 0o644); err != nil {
			t.Fatalf("WriteFile(%s) error = %v", name, err)
		}
	}
}

func TestProcessBatchIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "one.txt", "two.txt", "bad.txt", "three.txt")

	sink := &recordingSink{}
	reports := &savingStore{}
	cfg := config.BatchConfig{MaxConcurrentFiles: 2, SupportedExtensions: []string{"*.txt"}}
	bc := newBatchFixture(t, cfg, sink, reports)

	report, err := bc.ProcessBatch(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("ProcessBatch() error = %v", err)
	}

	if report.Total != 4 || report.Succeeded != 3 || report.Failed != 1 {
		t.Errorf("report = total %d succeeded %d failed %d, want 4/3/1",
			report.Total, report.Succeeded, report.Failed)
	}
	if len(report.Failures) != 1 || !strings.HasSuffix(report.Failures[0].FilePath, "bad.txt") {
		t.Errorf("Failures = %+v", report.Failures)
	}
	if report.RunID == "" {
		t.Errorf("RunID not set")
	}

	if reports.report == nil || reports.report.RunID != report.RunID {
		t.Errorf("report not persisted")
	}

	types := sink.types()
	if types[len(types)-1] != kafka.EventBatchCompleted {
		t.Errorf("last event = %v, want batch completed", types)
	}
}

func TestProcessBatchFiltersExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.txt", "b.png", "c.TXT")

	cfg := config.BatchConfig{SupportedExtensions: []string{"*.txt"}}
	bc := newBatchFixture(t, cfg, nil, nil)

	report, err := bc.ProcessBatch(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("ProcessBatch() error = %v", err)
	}
	// Matching is case-insensitive on the file name, so c.TXT counts.
	if report.Total != 2 {
		t.Errorf("Total = %d, want 2", report.Total)
	}
}

func TestProcessBatchRecursive(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("Mkdir() error = %v", err)
	}
	writeFiles(t, dir, "top.txt")
	writeFiles(t, sub, "deep.txt")

	flat := newBatchFixture(t, config.BatchConfig{SupportedExtensions: []string{"*.txt"}}, nil, nil)
	report, err := flat.ProcessBatch(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("ProcessBatch() error = %v", err)
	}
	if report.Total != 1 {
		t.Errorf("non-recursive Total = %d, want 1", report.Total)
	}

	deep := newBatchFixture(t, config.BatchConfig{Recursive: true, SupportedExtensions: []string{"*.txt"}}, nil, nil)
	report, err = deep.ProcessBatch(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("ProcessBatch() error = %v", err)
	}
	if report.Total != 2 {
		t.Errorf("recursive Total = %d, want 2", report.Total)
	}
}

func TestProcessBatchMissingPath(t *testing.T) {
	bc := newBatchFixture(t, config.BatchConfig{}, nil, nil)
	if _, err := bc.ProcessBatch(context.Background(), []string{"/does/not/exist"}); err == nil {
		t.Errorf("expected error for missing path")
	}
}

func TestProcessBatchExplicitFileList(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.txt", "b.txt")

	bc := newBatchFixture(t, config.BatchConfig{SupportedExtensions: []string{"*.txt"}}, nil, nil)
	report, err := bc.ProcessBatch(context.Background(), []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.txt"),
	})
	if err != nil {
		t.Fatalf("ProcessBatch() error = %v", err)
	}
	if report.Total != 2 || report.Succeeded != 2 {
		t.Errorf("report = %d/%d, want 2/2", report.Total, report.Succeeded)
	}
}

func TestNewBatchCoordinatorRejectsBadPattern(t *testing.T) {
	log := logger.New("test", "")
	dp := newTestPipeline(fileParser{}, testStorages(), nil, nil)
	cfg := config.BatchConfig{SupportedExtensions: []string{"[unclosed"}}
	if _, err := NewBatchCoordinator(dp, cfg, nil, nil, log); err == nil {
		t.Errorf("expected error for invalid pattern")
	}
}
