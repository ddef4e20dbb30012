package models

import "time"

// FileFailure records one failed file of a batch run.
type FileFailure struct {
	FilePath string `json:"file_path"`
	Error    string `json:"error"`
}

// BatchReport is the aggregate result of a batch run. Batch operations always
// return a report rather than raising on partial failure.
type BatchReport struct {
	RunID      string        `json:"run_id"`
	Total      int           `json:"total"`
	Succeeded  int           `json:"succeeded"`
	Failed     int           `json:"failed"`
	Failures   []FileFailure `json:"failures,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
}
