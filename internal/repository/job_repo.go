package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/oddscope/clvserver/internal/domain"
)

// JobRepository handles all database operations for Jobs, BetRequests and
// BetResults. It is the only writer of their persisted state.
type JobRepository struct {
	db *sqlx.DB
}

// NewJobRepository creates a new JobRepository.
func NewJobRepository(db *sqlx.DB) *JobRepository {
	return &JobRepository{db: db}
}

// CreateWithBets persists a job and all of its bet requests atomically.
func (r *JobRepository) CreateWithBets(ctx context.Context, job *domain.Job, bets []domain.BetRequest) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("job_repo.CreateWithBets: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.NamedExecContext(ctx, `
		INSERT INTO jobs (id, status, total_bets, processed_bets, created_at)
		VALUES (:id, :status, :total_bets, :processed_bets, :created_at)`, job); err != nil {
		return fmt.Errorf("job_repo.CreateWithBets: insert job: %w", err)
	}

	for i := range bets {
		bets[i].JobID = job.ID
		if _, err = tx.NamedExecContext(ctx, `
			INSERT INTO bet_requests
				(job_id, bet_id, sport, home_team, away_team, market, event_date, bookmaker, tournament)
			VALUES
				(:job_id, :bet_id, :sport, :home_team, :away_team, :market, :event_date, :bookmaker, :tournament)`,
			&bets[i]); err != nil {
			return fmt.Errorf("job_repo.CreateWithBets: insert bet: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("job_repo.CreateWithBets: commit: %w", err)
	}
	return nil
}

// GetJob fetches a job by its identifier.
func (r *JobRepository) GetJob(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	var j domain.Job
	err := r.db.GetContext(ctx, &j, `SELECT * FROM jobs WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("job_repo.GetJob: %w", err)
	}
	return &j, nil
}

// ListByStatus returns all jobs in the given status, oldest first.
func (r *JobRepository) ListByStatus(ctx context.Context, status domain.JobStatus) ([]*domain.Job, error) {
	var jobs []*domain.Job
	err := r.db.SelectContext(ctx, &jobs,
		`SELECT * FROM jobs WHERE status = $1 ORDER BY created_at ASC`, string(status))
	if err != nil {
		return nil, fmt.Errorf("job_repo.ListByStatus: %w", err)
	}
	return jobs, nil
}

// CountPending returns the number of jobs still queued or processing.
func (r *JobRepository) CountPending(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM jobs WHERE status IN ($1, $2)`,
		string(domain.JobStatusQueued), string(domain.JobStatusProcessing))
	if err != nil {
		return 0, fmt.Errorf("job_repo.CountPending: %w", err)
	}
	return n, nil
}

// Claim performs the race-free queued→processing transition. The guarded
// UPDATE ensures a job is claimed by exactly one worker even if two
// coordinators race: only one caller sees a row affected.
func (r *JobRepository) Claim(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE jobs
		SET status = $1
		WHERE id = $2 AND status = $3`,
		string(domain.JobStatusProcessing), id, string(domain.JobStatusQueued))
	if err != nil {
		return fmt.Errorf("job_repo.Claim: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrJobAlreadyClaimed
	}
	return nil
}

// MarkCompleted moves a processing job to its terminal completed state.
func (r *JobRepository) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	return r.finish(ctx, id, domain.JobStatusCompleted, nil)
}

// MarkFailed moves a processing job to its terminal failed state, recording
// the captured message.
func (r *JobRepository) MarkFailed(ctx context.Context, id uuid.UUID, message string) error {
	return r.finish(ctx, id, domain.JobStatusFailed, &message)
}

func (r *JobRepository) finish(ctx context.Context, id uuid.UUID, status domain.JobStatus, message *string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE jobs
		SET status = $1, error_message = $2
		WHERE id = $3 AND status = $4`,
		string(status), message, id, string(domain.JobStatusProcessing))
	if err != nil {
		return fmt.Errorf("job_repo.finish: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrJobTerminal
	}
	return nil
}

// IncrementProgress bumps a job's processed-bet counter by one. The counter
// is monotonically non-decreasing; concurrent workers never write the same
// bet, so a relative UPDATE is sufficient for coherence.
func (r *JobRepository) IncrementProgress(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE jobs SET processed_bets = processed_bets + 1 WHERE id = $1`, id); err != nil {
		return fmt.Errorf("job_repo.IncrementProgress: %w", err)
	}
	return nil
}

// BetRequests returns all bet requests belonging to a job, in insertion order.
func (r *JobRepository) BetRequests(ctx context.Context, jobID uuid.UUID) ([]domain.BetRequest, error) {
	var bets []domain.BetRequest
	err := r.db.SelectContext(ctx, &bets,
		`SELECT * FROM bet_requests WHERE job_id = $1 ORDER BY id ASC`, jobID)
	if err != nil {
		return nil, fmt.Errorf("job_repo.BetRequests: %w", err)
	}
	return bets, nil
}

// CreateResult persists one bet's resolution outcome.
func (r *JobRepository) CreateResult(ctx context.Context, result *domain.BetResult) error {
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}
	if _, err := r.db.NamedExecContext(ctx, `
		INSERT INTO bet_results
			(job_id, bet_id, closing_odds, bookmaker_used, fallback_type, confidence, match_score, bookmaker_count, created_at)
		VALUES
			(:job_id, :bet_id, :closing_odds, :bookmaker_used, :fallback_type, :confidence, :match_score, :bookmaker_count, :created_at)`,
		result); err != nil {
		return fmt.Errorf("job_repo.CreateResult: %w", err)
	}
	return nil
}

// Results returns the results accumulated so far for a job.
func (r *JobRepository) Results(ctx context.Context, jobID uuid.UUID) ([]domain.BetResult, error) {
	var results []domain.BetResult
	err := r.db.SelectContext(ctx, &results,
		`SELECT * FROM bet_results WHERE job_id = $1 ORDER BY id ASC`, jobID)
	if err != nil {
		return nil, fmt.Errorf("job_repo.Results: %w", err)
	}
	return results, nil
}

// RecordFailure appends a durable failure event for health-rate computation.
func (r *JobRepository) RecordFailure(ctx context.Context, jobID uuid.UUID, kind, message string) error {
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO failure_events (job_id, kind, message) VALUES ($1, $2, $3)`,
		jobID, kind, message); err != nil {
		return fmt.Errorf("job_repo.RecordFailure: %w", err)
	}
	return nil
}

// FailureRate returns the share of jobs that failed within the window:
// failure events divided by jobs that reached a terminal state. Zero when no
// jobs finished in the window.
func (r *JobRepository) FailureRate(ctx context.Context, window time.Duration) (float64, error) {
	since := time.Now().UTC().Add(-window)

	var failures int
	if err := r.db.GetContext(ctx, &failures,
		`SELECT COUNT(*) FROM failure_events WHERE created_at >= $1`, since); err != nil {
		return 0, fmt.Errorf("job_repo.FailureRate: failures: %w", err)
	}

	var finished int
	if err := r.db.GetContext(ctx, &finished,
		`SELECT COUNT(*) FROM jobs WHERE status IN ($1, $2) AND created_at >= $3`,
		string(domain.JobStatusCompleted), string(domain.JobStatusFailed), since); err != nil {
		return 0, fmt.Errorf("job_repo.FailureRate: finished: %w", err)
	}

	if finished == 0 {
		return 0, nil
	}
	rate := float64(failures) / float64(finished)
	if rate > 1 {
		rate = 1
	}
	return rate, nil
}
