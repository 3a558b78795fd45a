// Package domain defines the core business entities and types for the
// closing-odds resolution service.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ──────────────────────────────────────────────────────────────────────────────
// Types & constants
// ──────────────────────────────────────────────────────────────────────────────

// JobStatus represents the lifecycle state of a batch job.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"     // created, awaiting a worker
	JobStatusProcessing JobStatus = "processing" // claimed by exactly one worker
	JobStatusCompleted  JobStatus = "completed"  // every bet carries a result
	JobStatusFailed     JobStatus = "failed"     // unrecoverable error mid-processing
)

// IsTerminal returns true for states the job can never leave.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// ──────────────────────────────────────────────────────────────────────────────
// Job
// ──────────────────────────────────────────────────────────────────────────────

// Job is one unit of batch work: a set of bet requests submitted together.
type Job struct {
	ID            uuid.UUID `json:"id"             db:"id"`
	Status        JobStatus `json:"status"         db:"status"`
	TotalBets     int       `json:"total_bets"     db:"total_bets"`
	ProcessedBets int       `json:"processed_bets" db:"processed_bets"`
	ErrorMessage  *string   `json:"error_message"  db:"error_message"`
	CreatedAt     time.Time `json:"created_at"     db:"created_at"`
}

// NewJob creates a queued job for the given batch size.
func NewJob(totalBets int) *Job {
	return &Job{
		ID:        uuid.New(),
		Status:    JobStatusQueued,
		TotalBets: totalBets,
		CreatedAt: time.Now().UTC(),
	}
}

// JobProgress is the API-safe progress view embedded in status responses.
type JobProgress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// Progress returns the job's current progress counters.
func (j *Job) Progress() JobProgress {
	return JobProgress{Current: j.ProcessedBets, Total: j.TotalBets}
}

// ──────────────────────────────────────────────────────────────────────────────
// FailureEvent
// ──────────────────────────────────────────────────────────────────────────────

// FailureEvent is a durable record of a job-fatal error, kept for the
// health endpoint's failure-rate computation.
type FailureEvent struct {
	ID        int64     `json:"id"         db:"id"`
	JobID     uuid.UUID `json:"job_id"     db:"job_id"`
	Kind      string    `json:"kind"       db:"kind"`
	Message   string    `json:"message"    db:"message"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
