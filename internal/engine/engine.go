// Package engine runs the batch-job machinery: a coordinator loop that claims
// queued jobs and dispatches them to workers, and a maintenance loop for cache
// eviction and the harvester health probe. Worker count adapts to available
// memory because each in-flight job may hold a headless-browser process.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v3/mem"
	"golang.org/x/sync/errgroup"

	"github.com/oddscope/clvserver/internal/config"
	"github.com/oddscope/clvserver/internal/domain"
	"github.com/oddscope/clvserver/internal/service"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dependencies — consumer-side interfaces
// ──────────────────────────────────────────────────────────────────────────────

// Store is what the engine needs from the job repository.
type Store interface {
	ListByStatus(ctx context.Context, status domain.JobStatus) ([]*domain.Job, error)
	Claim(ctx context.Context, id uuid.UUID) error
	MarkCompleted(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, message string) error
	IncrementProgress(ctx context.Context, id uuid.UUID) error
	BetRequests(ctx context.Context, jobID uuid.UUID) ([]domain.BetRequest, error)
	CreateResult(ctx context.Context, result *domain.BetResult) error
	RecordFailure(ctx context.Context, jobID uuid.UUID, kind, message string) error
}

// Cache is what the engine needs from the league-data cache.
type Cache interface {
	Get(ctx context.Context, key domain.CacheKey) (*domain.ScrapedLeagueData, error)
	Put(ctx context.Context, key domain.CacheKey, data *domain.ScrapedLeagueData) error
	EvictOlderThan(ctx context.Context, retentionDays int) (int, error)
}

// Fetcher is what the engine needs from the harvester.
type Fetcher interface {
	FetchLeague(ctx context.Context, key domain.CacheKey) (*domain.ScrapedLeagueData, error)
	Probe(ctx context.Context) error
}

// LeagueResolver classifies a bet's league; nil means unresolvable.
type LeagueResolver interface {
	Resolve(ctx context.Context, homeTeam, awayTeam, tournament, sport string) *domain.LeagueAssignment
}

// OddsResolver derives a closing price for one bet from scraped data.
type OddsResolver interface {
	ResolveClosingOdds(bet *domain.BetRequest, data *domain.ScrapedLeagueData) domain.BetResult
}

// MetadataStore receives the harvester probe outcome.
type MetadataStore interface {
	SetMetadata(ctx context.Context, key, value string) error
}

// ──────────────────────────────────────────────────────────────────────────────
// Engine
// ──────────────────────────────────────────────────────────────────────────────

// Engine owns the background processing of batch jobs. Create with NewEngine,
// launch with Start, and shut down by cancelling the context passed to Start.
type Engine struct {
	store   Store
	cache   Cache
	fetcher Fetcher
	leagues LeagueResolver
	odds    OddsResolver
	meta    MetadataStore
	cfg     *config.Config
	logger  *slog.Logger

	// availableGB is swappable in tests; defaults to a gopsutil probe.
	availableGB func() (float64, error)

	active      atomic.Int64
	recommended atomic.Int64

	group *errgroup.Group
}

// NewEngine creates an Engine.
func NewEngine(
	store Store,
	cache Cache,
	fetcher Fetcher,
	leagues LeagueResolver,
	odds OddsResolver,
	meta MetadataStore,
	cfg *config.Config,
	logger *slog.Logger,
) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		store:       store,
		cache:       cache,
		fetcher:     fetcher,
		leagues:     leagues,
		odds:        odds,
		meta:        meta,
		cfg:         cfg,
		logger:      logger,
		availableGB: systemAvailableGB,
	}
	e.recommended.Store(int64(cfg.Engine.MaxWorkers))
	return e
}

func systemAvailableGB() (float64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return float64(vm.Available) / (1 << 30), nil
}

// Start launches the coordinator and maintenance loops. It returns
// immediately; both loops run until ctx is cancelled. In-flight jobs are also
// supervised by the group, so Wait blocks until they drain.
func (e *Engine) Start(ctx context.Context) {
	e.group, ctx = errgroup.WithContext(ctx)
	e.group.Go(func() error {
		e.coordinatorLoop(ctx)
		return nil
	})
	e.group.Go(func() error {
		e.maintenanceLoop(ctx)
		return nil
	})
	e.logger.Info("engine started",
		"poll", e.cfg.Engine.PollInterval, "max_workers", e.cfg.Engine.MaxWorkers)
}

// Wait blocks until both loops and all dispatched jobs have returned.
func (e *Engine) Wait() error {
	if e.group == nil {
		return nil
	}
	return e.group.Wait()
}

// ActiveWorkers reports how many jobs are being processed right now.
func (e *Engine) ActiveWorkers() int { return int(e.active.Load()) }

// RecommendedWorkers reports the last memory-derived worker recommendation.
func (e *Engine) RecommendedWorkers() int { return int(e.recommended.Load()) }

// ──────────────────────────────────────────────────────────────────────────────
// Coordinator loop
// ──────────────────────────────────────────────────────────────────────────────

// coordinatorLoop polls for queued jobs on a fixed tick. A dispatch error
// switches the next wait to the longer error backoff so a sick store is not
// hammered at the poll rate.
func (e *Engine) coordinatorLoop(ctx context.Context) {
	for {
		wait := e.cfg.Engine.PollInterval
		if err := e.dispatch(ctx); err != nil {
			e.logger.Error("engine: dispatch failed", "err", err)
			wait = e.cfg.Engine.ErrorBackoff
		}

		select {
		case <-ctx.Done():
			e.logger.Info("engine: coordinator shutting down")
			return
		case <-time.After(wait):
		}
	}
}

// dispatch claims and launches queued jobs up to the free worker slots.
func (e *Engine) dispatch(ctx context.Context) error {
	slots := e.freeSlots()
	if slots <= 0 {
		return nil
	}

	queued, err := e.store.ListByStatus(ctx, domain.JobStatusQueued)
	if err != nil {
		return fmt.Errorf("engine.dispatch: list queued: %w", err)
	}

	for _, job := range queued {
		if slots <= 0 {
			return nil
		}
		if err := e.store.Claim(ctx, job.ID); err != nil {
			if errors.Is(err, domain.ErrJobAlreadyClaimed) {
				// Another coordinator won the race; not an error.
				continue
			}
			return fmt.Errorf("engine.dispatch: claim %s: %w", job.ID, err)
		}
		slots--

		job := job
		e.active.Add(1)
		// The worker outlives the stop signal so a claimed job always reaches
		// a terminal state; the scrape timeout bounds the drain.
		workCtx := context.WithoutCancel(ctx)
		e.group.Go(func() error {
			defer e.active.Add(-1)
			e.runJob(workCtx, job)
			return nil
		})
	}
	return nil
}

// freeSlots recomputes the memory-based worker recommendation and subtracts
// the jobs already in flight.
func (e *Engine) freeSlots() int {
	workers := e.cfg.Engine.MaxWorkers
	avail, err := e.availableGB()
	if err != nil {
		// An unreadable probe keeps the configured ceiling.
		e.logger.Warn("engine: memory probe failed, assuming configured max", "err", err)
	} else {
		byMemory := int(avail / e.cfg.Engine.PerWorkerGB)
		if byMemory < workers {
			workers = byMemory
		}
		if workers < 1 {
			workers = 1
		}
	}
	e.recommended.Store(int64(workers))
	return workers - int(e.active.Load())
}

// ──────────────────────────────────────────────────────────────────────────────
// Job processing
// ──────────────────────────────────────────────────────────────────────────────

// runJob processes one claimed job to a terminal state. Panics and store
// errors mark the job failed with a durable failure event; they never take
// the engine down.
func (e *Engine) runJob(ctx context.Context, job *domain.Job) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("engine: panic while processing job", "job", job.ID, "panic", r)
			e.failJob(ctx, job.ID, "panic", fmt.Sprintf("panic: %v", r))
		}
	}()

	e.logger.Info("engine: job started", "job", job.ID, "bets", job.TotalBets)
	start := time.Now()

	if err := e.processJob(ctx, job); err != nil {
		e.logger.Error("engine: job failed", "job", job.ID, "err", err)
		e.failJob(ctx, job.ID, "store", err.Error())
		return
	}

	e.logger.Info("engine: job completed",
		"job", job.ID, "elapsed", time.Since(start).Round(time.Second))
}

// betGroup keys bets sharing one scrape: same sport, resolved league, and
// event day.
type betGroup struct {
	Sport  string
	League string
	Day    string
}

// processJob resolves every bet of the job and moves it to completed.
// Returned errors are store errors only; scrape and resolution misses are
// folded into failed per-bet results instead.
func (e *Engine) processJob(ctx context.Context, job *domain.Job) error {
	bets, err := e.store.BetRequests(ctx, job.ID)
	if err != nil {
		return fmt.Errorf("engine.processJob: load bets: %w", err)
	}
	if len(bets) == 0 {
		if err := e.store.MarkCompleted(ctx, job.ID); err != nil {
			return fmt.Errorf("engine.processJob: complete empty job: %w", err)
		}
		return nil
	}

	// Group by (sport, league, event day) so each group needs at most one
	// scrape. Unresolvable leagues share the unknown group and skip scraping.
	groups := make(map[betGroup][]*domain.BetRequest)
	order := make([]betGroup, 0)
	for i := range bets {
		bet := &bets[i]
		league := domain.UnknownLeague
		if a := e.leagues.Resolve(ctx, bet.HomeTeam, bet.AwayTeam, bet.Tournament, bet.Sport); a != nil {
			league = a.League
		}
		g := betGroup{
			Sport:  strings.ToLower(bet.Sport),
			League: league,
			Day:    bet.EventDate.Format("2006-01-02"),
		}
		if _, seen := groups[g]; !seen {
			order = append(order, g)
		}
		groups[g] = append(groups[g], bet)
	}

	for _, g := range order {
		data := e.groupData(ctx, g, groups[g][0].EventDate)
		for _, bet := range groups[g] {
			result := e.odds.ResolveClosingOdds(bet, data)
			result.JobID = job.ID
			if err := e.store.CreateResult(ctx, &result); err != nil {
				return fmt.Errorf("engine.processJob: store result: %w", err)
			}
			if err := e.store.IncrementProgress(ctx, job.ID); err != nil {
				return fmt.Errorf("engine.processJob: progress: %w", err)
			}
		}
	}

	if err := e.store.MarkCompleted(ctx, job.ID); err != nil {
		return fmt.Errorf("engine.processJob: complete: %w", err)
	}
	return nil
}

// groupData supplies the scraped block for one group: cache first, harvester
// on a miss. A fetch failure returns nil so the group's bets resolve as
// failed while the rest of the job proceeds.
func (e *Engine) groupData(ctx context.Context, g betGroup, eventDate time.Time) *domain.ScrapedLeagueData {
	if g.League == domain.UnknownLeague {
		return nil
	}

	key := domain.CacheKey{
		Sport:  g.Sport,
		League: g.League,
		Season: domain.SeasonFromDate(eventDate),
	}

	data, err := e.cache.Get(ctx, key)
	if err == nil {
		return data
	}
	if !errors.Is(err, domain.ErrCacheMiss) {
		e.logger.Warn("engine: cache read failed, refetching", "key", key.String(), "err", err)
	}

	data, err = e.fetcher.FetchLeague(ctx, key)
	if err != nil {
		e.logger.Warn("engine: group fetch failed", "key", key.String(), "err", err)
		return nil
	}

	if err := e.cache.Put(ctx, key, data); err != nil {
		// The fetched data is still usable this round.
		e.logger.Warn("engine: cache write failed", "key", key.String(), "err", err)
	}
	return data
}

// failJob marks the job failed and records the durable failure event.
func (e *Engine) failJob(ctx context.Context, jobID uuid.UUID, kind, message string) {
	// The terminal transition must outlive whatever cancellation caused it.
	ctx = context.WithoutCancel(ctx)
	if err := e.store.MarkFailed(ctx, jobID, message); err != nil {
		e.logger.Error("engine: could not mark job failed", "job", jobID, "err", err)
	}
	if err := e.store.RecordFailure(ctx, jobID, kind, message); err != nil {
		e.logger.Error("engine: could not record failure event", "job", jobID, "err", err)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Maintenance loop
// ──────────────────────────────────────────────────────────────────────────────

// maintenanceLoop runs the daily cache sweep and the periodic harvester probe.
func (e *Engine) maintenanceLoop(ctx context.Context) {
	sweep := time.NewTicker(e.cfg.Cache.SweepInterval)
	defer sweep.Stop()
	probe := time.NewTicker(e.cfg.Cache.ProbeInterval)
	defer probe.Stop()

	// Probe once at startup so health reflects reality before the first tick.
	e.probeHarvester(ctx)

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("engine: maintenance shutting down")
			return
		case <-sweep.C:
			e.sweepCache(ctx)
		case <-probe.C:
			e.probeHarvester(ctx)
		}
	}
}

func (e *Engine) sweepCache(ctx context.Context) {
	n, err := e.cache.EvictOlderThan(ctx, e.cfg.Cache.RetentionDays)
	if err != nil {
		e.logger.Error("engine: cache sweep failed", "err", err)
		return
	}
	e.logger.Info("engine: cache sweep done",
		"evicted", n, "retention_days", e.cfg.Cache.RetentionDays)
}

func (e *Engine) probeHarvester(ctx context.Context) {
	status := service.ProbeOK
	if err := e.fetcher.Probe(ctx); err != nil {
		status = service.ProbeFailed
		e.logger.Warn("engine: harvester probe failed", "err", err)
	}
	if err := e.meta.SetMetadata(ctx, service.MetaProbeStatus, status); err != nil {
		e.logger.Error("engine: could not store probe status", "err", err)
	}
	if err := e.meta.SetMetadata(ctx, service.MetaProbeAt, time.Now().UTC().Format(time.RFC3339)); err != nil {
		e.logger.Error("engine: could not store probe time", "err", err)
	}
}
