package models

import (
	"time"

	"gorm.io/datatypes"
)

// IngestRecord is the persisted summary of one batch ingest run.
type IngestRecord struct {
	ID         uint   `gorm:"primaryKey"`
	RunID      string `gorm:"index;not null;size:64"`
	Total      int
	Succeeded  int
	Failed     int
	Failures   datatypes.JSON // serialized []FileFailure
	StartedAt  time.Time
	FinishedAt time.Time
	CreatedAt  time.Time
}
