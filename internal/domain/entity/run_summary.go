package entity

import "time"

// Reconcile outcomes
const (
	OutcomeCreated     = "created"
	OutcomeCancelled   = "cancelled"
	OutcomeDuplicate   = "duplicate"
	OutcomeAmended     = "amended"
	OutcomeNoMatch     = "no_match"
	OutcomeInvalidDate = "invalid_date"
	OutcomeFailed      = "failed"
	OutcomePruned      = "pruned"
)

// Run status
const (
	RunCompleted = "COMPLETED"
	RunAborted   = "ABORTED"
	RunSkipped   = "SKIPPED"
)

// RunSummary records what one pipeline cycle did
type RunSummary struct {
	ID                uint
	StartedAt         time.Time
	FinishedAt        time.Time
	Status            string
	ErrorDetail       string
	EmailsFetched     int
	RecordsExtracted  int
	ExtractionFailed  int
	Outcomes          map[string]int
	NotificationsSent int
	NotificationsFail int
}

// NewRunSummary starts a summary at the given instant
func NewRunSummary(startedAt time.Time) *RunSummary {
	return &RunSummary{
		StartedAt: startedAt,
		Status:    RunCompleted,
		Outcomes:  make(map[string]int),
	}
}
