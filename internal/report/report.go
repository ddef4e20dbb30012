// Package report persists batch ingest run summaries to MySQL.
package report

import (
	"DocuGraph/internal/models"
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
)

// Store writes IngestRecord rows through GORM.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store and migrates the ingest record table.
func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&models.IngestRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate ingest records: %w", err)
	}
	return &Store{db: db}, nil
}

// Save persists one finished batch report.
func (s *Store) Save(ctx context.Context, report *models.BatchReport) error {
	failures, err := json.Marshal(report.Failures)
	if err != nil {
		return fmt.Errorf("failed to encode failures: %w", err)
	}

	record := &models.IngestRecord{
		RunID:      report.RunID,
		Total:      report.Total,
		Succeeded:  report.Succeeded,
		Failed:     report.Failed,
		Failures:   failures,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to save ingest record: %w", err)
	}
	return nil
}

// Recent returns the latest batch run records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]models.IngestRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var records []models.IngestRecord
	err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load ingest records: %w", err)
	}
	return records, nil
}
