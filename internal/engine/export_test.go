package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/oddscope/clvserver/internal/domain"
)

// Narrow seams so the engine's job machinery can be exercised from the
// external test package without its background loops.

func (e *Engine) ProcessJob(ctx context.Context, job *domain.Job) error {
	return e.processJob(ctx, job)
}

func (e *Engine) RunJob(ctx context.Context, job *domain.Job) {
	e.runJob(ctx, job)
}

func (e *Engine) FreeSlots() int { return e.freeSlots() }

func (e *Engine) SetAvailableGB(probe func() (float64, error)) { e.availableGB = probe }

func (e *Engine) SetActive(n int) { e.active.Store(int64(n)) }

// Dispatch runs one coordinator pass, creating the worker group on demand so
// Start (and its loops) stay out of the test.
func (e *Engine) Dispatch(ctx context.Context) error {
	if e.group == nil {
		e.group = &errgroup.Group{}
	}
	return e.dispatch(ctx)
}
