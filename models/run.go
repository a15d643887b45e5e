package models

import "time"

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusPartial   RunStatus = "partial" // listing fetch failed mid-run; early stop
	RunStatusFailed    RunStatus = "failed"
)

// ImportRun is the persisted record of one importer invocation.
type ImportRun struct {
	ID            int64      `json:"id" db:"id"`
	Selection     string     `json:"selection" db:"selection"` // e.g. "area=1 ct=39"
	StartedAt     time.Time  `json:"started_at" db:"started_at"`
	FinishedAt    *time.Time `json:"finished_at" db:"finished_at"`
	Status        RunStatus  `json:"status" db:"status"`
	Attempted     int        `json:"attempted" db:"attempted"`
	Created       int        `json:"created" db:"created"`
	Updated       int        `json:"updated" db:"updated"`
	Skipped       int        `json:"skipped" db:"skipped"`
	Failed        int        `json:"failed" db:"failed"`
	DetailsStored int        `json:"details_stored" db:"details_stored"`
	DryRun        bool       `json:"dry_run" db:"dry_run"`
}
