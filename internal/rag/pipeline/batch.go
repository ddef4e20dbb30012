package pipeline

import (
	"DocuGraph/internal/config"
	"DocuGraph/internal/database/kafka"
	"DocuGraph/internal/models"
	"DocuGraph/pkg/logger"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/glob"
	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
)

// ReportStore persists finished batch run reports. A nil store disables
// persistence.
type ReportStore interface {
	Save(ctx context.Context, report *models.BatchReport) error
}

// BatchCoordinator runs document ingestion over many files with bounded
// concurrency. A failing file never aborts the batch; failures are collected
// into the run report.
type BatchCoordinator struct {
	pipeline *DocumentPipeline
	cfg      config.BatchConfig
	events   EventSink
	reports  ReportStore
	log      *logger.Logger

	patterns []glob.Glob
}

// NewBatchCoordinator creates a BatchCoordinator. Invalid extension patterns
// in the configuration are rejected up front.
func NewBatchCoordinator(pipeline *DocumentPipeline, cfg config.BatchConfig, events EventSink, reports ReportStore, log *logger.Logger) (*BatchCoordinator, error) {
	patterns := make([]glob.Glob, 0, len(cfg.SupportedExtensions))
	for _, pattern := range cfg.SupportedExtensions {
		g, err := glob.Compile(strings.ToLower(pattern))
		if err != nil {
			return nil, fmt.Errorf("invalid extension pattern %q: %w", pattern, err)
		}
		patterns = append(patterns, g)
	}
	return &BatchCoordinator{
		pipeline: pipeline,
		cfg:      cfg,
		events:   events,
		reports:  reports,
		log:      log,
		patterns: patterns,
	}, nil
}

// ProcessBatch ingests every supported file under the given paths. Paths may
// be files or directories; directories are walked recursively when
// configured. The returned report always covers every discovered file, even
// when all of them fail.
func (bc *BatchCoordinator) ProcessBatch(ctx context.Context, paths []string) (*models.BatchReport, error) {
	files, err := bc.discover(paths)
	if err != nil {
		return nil, err
	}

	report := &models.BatchReport{
		RunID:     uuid.New().String(),
		Total:     len(files),
		StartedAt: time.Now(),
	}
	log := bc.log.WithPayload(map[string]interface{}{
		"run_id": report.RunID,
		"files":  len(files),
	})
	log.Info("batch ingestion started")

	workers := bc.cfg.MaxConcurrentFiles
	if workers <= 0 {
		workers = 1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, file := range files {
		file := file
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			err := bc.processOne(ctx, file)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed++
				report.Failures = append(report.Failures, models.FileFailure{
					FilePath: file,
					Error:    err.Error(),
				})
			} else {
				report.Succeeded++
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			report.Failed++
			report.Failures = append(report.Failures, models.FileFailure{
				FilePath: file,
				Error:    submitErr.Error(),
			})
			mu.Unlock()
		}
	}
	wg.Wait()

	report.FinishedAt = time.Now()
	bc.finish(ctx, report, log)
	return report, nil
}

// processOne runs one file through the document pipeline under the per-file
// timeout.
func (bc *BatchCoordinator) processOne(ctx context.Context, filePath string) error {
	if bc.cfg.FileTimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(bc.cfg.FileTimeoutSeconds)*time.Second)
		defer cancel()
	}
	_, err := bc.pipeline.ProcessDocument(ctx, filePath)
	if err != nil {
		bc.log.WithFile(filePath).Error(fmt.Sprintf("batch file failed: %v", err))
	}
	return err
}

// discover expands the given paths into the list of supported files. A
// missing path is a configuration error and aborts the batch before any work
// starts.
func (bc *BatchCoordinator) discover(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("path not found: %s: %w", path, err)
		}

		if !info.IsDir() {
			if bc.supported(path) {
				files = append(files, path)
			}
			continue
		}

		if !bc.cfg.Recursive {
			entries, err := os.ReadDir(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read directory %s: %w", path, err)
			}
			for _, entry := range entries {
				if entry.IsDir() {
					continue
				}
				full := filepath.Join(path, entry.Name())
				if bc.supported(full) {
					files = append(files, full)
				}
			}
			continue
		}

		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && bc.supported(p) {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk directory %s: %w", path, err)
		}
	}
	return files, nil
}

// supported matches the file name against the configured extension patterns.
// An empty pattern list accepts everything.
func (bc *BatchCoordinator) supported(path string) bool {
	if len(bc.patterns) == 0 {
		return true
	}
	name := strings.ToLower(filepath.Base(path))
	for _, g := range bc.patterns {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// finish publishes the batch event and persists the run report.
func (bc *BatchCoordinator) finish(ctx context.Context, report *models.BatchReport, log *logger.Logger) {
	log.WithPayload(map[string]interface{}{
		"run_id":    report.RunID,
		"total":     report.Total,
		"succeeded": report.Succeeded,
		"failed":    report.Failed,
	}).Info("batch ingestion finished")

	if bc.events != nil {
		event := &kafka.DocumentEvent{
			EventType: kafka.EventBatchCompleted,
			RunID:     report.RunID,
		}
		if err := bc.events.Publish(ctx, event); err != nil {
			log.Warn(fmt.Sprintf("failed to publish batch event: %v", err))
		}
	}
	if bc.reports != nil {
		if err := bc.reports.Save(ctx, report); err != nil {
			log.Warn(fmt.Sprintf("failed to persist batch report: %v", err))
		}
	}
}
