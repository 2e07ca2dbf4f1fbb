package domain

import "time"

// CandidateItem is a feed entry considered for the daily digest. Never persisted.
type CandidateItem struct {
	Source      string    `json:"source"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Link        string    `json:"link"`
	PublishedAt time.Time `json:"date"`
}

// RunKind names the two pipelines recorded in run history.
type RunKind string

const (
	RunMetrics RunKind = "metrics"
	RunDigest  RunKind = "digest"
)

// RunStatus enumerates how a run ended.
type RunStatus string

const (
	StatusSucceeded RunStatus = "succeeded"
	StatusFailed    RunStatus = "failed"
	StatusSkipped   RunStatus = "skipped"
)

// RunRecord is one pipeline execution kept in the history database.
type RunRecord struct {
	ID         int64     `json:"id"`
	Kind       RunKind   `json:"kind"`
	Status     RunStatus `json:"status"`
	Detail     string    `json:"detail,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Filled when listing history.
	ActiveCount int     `json:"active_count,omitempty"`
	AluminaKg   float64 `json:"alumina_kg,omitempty"`
	Archived    int     `json:"archived,omitempty"`
}
