package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/oddscope/clvserver/internal/domain"
	"github.com/oddscope/clvserver/internal/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// JobService
// ──────────────────────────────────────────────────────────────────────────────

// JobService owns the batch-job lifecycle on the API side: accepting a batch
// and answering status queries. Processing itself belongs to the engine.
type JobService struct {
	jobRepo *repository.JobRepository
	logger  *slog.Logger
}

// NewJobService creates a JobService.
func NewJobService(jobRepo *repository.JobRepository, logger *slog.Logger) *JobService {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobService{jobRepo: jobRepo, logger: logger}
}

// SubmitBatch persists a new queued job with its bet requests. Submission
// always succeeds when the store accepts it; no per-bet validation beyond the
// request decode happens here, bad bets simply resolve as failed later.
func (s *JobService) SubmitBatch(ctx context.Context, bets []domain.BetRequest) (*domain.Job, error) {
	job := domain.NewJob(len(bets))
	if err := s.jobRepo.CreateWithBets(ctx, job, bets); err != nil {
		return nil, fmt.Errorf("job_service.SubmitBatch: %w", err)
	}
	s.logger.Info("job submitted", "job", job.ID, "bets", job.TotalBets)
	return job, nil
}

// JobStatus is the full status view for one job: the job row plus whatever
// results have accumulated so far. Results for a processing job are a
// partial, append-only snapshot.
type JobStatus struct {
	Job     *domain.Job
	Results []domain.BetResult
}

// Status returns the status view for a job, or domain.ErrJobNotFound.
func (s *JobService) Status(ctx context.Context, id uuid.UUID) (*JobStatus, error) {
	job, err := s.jobRepo.GetJob(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("job_service.Status: %w", err)
	}

	results, err := s.jobRepo.Results(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("job_service.Status: %w", err)
	}
	return &JobStatus{Job: job, Results: results}, nil
}
