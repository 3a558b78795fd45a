package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/oddscope/clvserver/internal/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Health model
// ──────────────────────────────────────────────────────────────────────────────

// HealthState is the coarse service condition reported by the health endpoint.
type HealthState string

const (
	HealthHealthy  HealthState = "healthy"
	HealthDegraded HealthState = "degraded"
	HealthCritical HealthState = "critical"
)

// Failure-rate thresholds for the health state.
const (
	degradedFailureRate = 0.1
	criticalFailureRate = 0.5
)

// failureRateWindow is the lookback for the failure-rate computation.
const failureRateWindow = 24 * time.Hour

// Metadata keys written by the engine's harvester probe.
const (
	MetaProbeStatus = "harvester_probe_status"
	MetaProbeAt     = "harvester_probe_at"
)

// ProbeOK and ProbeFailed are the stored probe outcomes.
const (
	ProbeOK     = "ok"
	ProbeFailed = "failed"
)

// ConcurrencyInfo is what the health endpoint needs from the job engine.
// Implemented by engine.Engine.
type ConcurrencyInfo interface {
	ActiveWorkers() int
	RecommendedWorkers() int
}

// HealthSnapshot is the health endpoint payload.
type HealthSnapshot struct {
	State              HealthState `json:"status"`
	PendingJobs        int         `json:"pendingJobs"`
	FailureRate        float64     `json:"failureRate"`
	DBSizeMB           float64     `json:"dbSizeMB"`
	CacheAgeHours      *float64    `json:"cacheAgeHours"`
	ActiveWorkers      int         `json:"activeWorkers"`
	RecommendedWorkers int         `json:"recommendedWorkers"`
	HarvesterProbe     string      `json:"harvesterProbe"`
	HarvesterProbedAt  string      `json:"harvesterProbedAt,omitempty"`
	Timestamp          time.Time   `json:"timestamp"`
}

// ──────────────────────────────────────────────────────────────────────────────
// HealthService
// ──────────────────────────────────────────────────────────────────────────────

// HealthService assembles the health snapshot from the store and the engine.
// Individual probe failures degrade the snapshot instead of failing it: the
// health endpoint itself must stay answerable while the service is sick.
type HealthService struct {
	jobRepo     *repository.JobRepository
	cacheRepo   *repository.CacheRepository
	mappingRepo *repository.MappingRepository
	engine      ConcurrencyInfo
	logger      *slog.Logger
}

// NewHealthService creates a HealthService. engine may be nil in tests.
func NewHealthService(
	jobRepo *repository.JobRepository,
	cacheRepo *repository.CacheRepository,
	mappingRepo *repository.MappingRepository,
	engine ConcurrencyInfo,
	logger *slog.Logger,
) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		jobRepo:     jobRepo,
		cacheRepo:   cacheRepo,
		mappingRepo: mappingRepo,
		engine:      engine,
		logger:      logger,
	}
}

// Snapshot builds the current health view. Always returns a snapshot; fields
// whose probe failed keep their zero value and the failure is logged.
func (s *HealthService) Snapshot(ctx context.Context) *HealthSnapshot {
	snap := &HealthSnapshot{
		State:          HealthHealthy,
		HarvesterProbe: ProbeOK,
		Timestamp:      time.Now().UTC(),
	}

	pending, err := s.jobRepo.CountPending(ctx)
	if err != nil {
		s.logger.Warn("health: pending count unavailable", "err", err)
	}
	snap.PendingJobs = pending

	rate, err := s.jobRepo.FailureRate(ctx, failureRateWindow)
	if err != nil {
		s.logger.Warn("health: failure rate unavailable", "err", err)
	}
	snap.FailureRate = rate

	if size, err := s.cacheRepo.DatabaseSizeMB(ctx); err != nil {
		s.logger.Warn("health: db size unavailable", "err", err)
	} else {
		snap.DBSizeMB = size
	}

	if stats, err := s.cacheRepo.Stats(ctx); err != nil {
		s.logger.Warn("health: cache stats unavailable", "err", err)
	} else if stats.NewestEntry != nil {
		age := time.Since(*stats.NewestEntry).Hours()
		snap.CacheAgeHours = &age
	}

	if s.engine != nil {
		snap.ActiveWorkers = s.engine.ActiveWorkers()
		snap.RecommendedWorkers = s.engine.RecommendedWorkers()
	}

	probe, err := s.mappingRepo.GetMetadata(ctx, MetaProbeStatus)
	if err != nil {
		s.logger.Warn("health: probe metadata unavailable", "err", err)
	} else if probe != "" {
		snap.HarvesterProbe = probe
	}
	if at, err := s.mappingRepo.GetMetadata(ctx, MetaProbeAt); err == nil {
		snap.HarvesterProbedAt = at
	}

	snap.State = healthState(snap.FailureRate, snap.HarvesterProbe)
	return snap
}

// healthState folds the failure rate and the last probe outcome into the
// coarse state. A failed probe alone is degraded, never critical: the engine
// may still drain jobs from cache.
func healthState(failureRate float64, probe string) HealthState {
	switch {
	case failureRate > criticalFailureRate:
		return HealthCritical
	case failureRate > degradedFailureRate:
		return HealthDegraded
	case probe == ProbeFailed:
		return HealthDegraded
	default:
		return HealthHealthy
	}
}
