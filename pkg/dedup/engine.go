// Package dedup groups catalog records by identifier and plans which
// duplicates to remove.
package dedup

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/agentstation/skusweep/pkg/catalog"
	"github.com/agentstation/skusweep/pkg/constants"
	"github.com/agentstation/skusweep/pkg/errors"
	"github.com/agentstation/skusweep/pkg/logging"
)

// Result is the engine's output for one distinct identifier.
type Result struct {
	Identifier catalog.Identifier
	Group      Group
	// Plan is nil when the group has fewer than two records or the lookup failed.
	Plan *Plan
	// Err is a *errors.LookupError when the lookup failed.
	Err error
}

// Engine looks up each distinct identifier once and plans its resolution.
type Engine struct {
	finder  catalog.Finder
	workers int
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers sets how many identifiers are looked up concurrently.
// Values below 1 are treated as 1 and values above constants.MaxWorkers are capped.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		switch {
		case n < 1:
			e.workers = 1
		case n > constants.MaxWorkers:
			e.workers = constants.MaxWorkers
		default:
			e.workers = n
		}
	}
}

// New creates an engine backed by finder.
func New(finder catalog.Finder, opts ...Option) *Engine {
	e := &Engine{
		finder:  finder,
		workers: constants.DefaultWorkers,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Workers returns the configured concurrency.
func (e *Engine) Workers() int {
	return e.workers
}

// Resolve processes identifiers and returns one result per distinct
// identifier in order of first occurrence. On cancellation it returns the
// results completed so far with an error wrapping errors.ErrCanceled.
func (e *Engine) Resolve(ctx context.Context, identifiers []catalog.Identifier) ([]Result, error) {
	results := make([]Result, 0, len(identifiers))
	err := e.Stream(ctx, identifiers, func(r Result) {
		results = append(results, r)
	})
	return results, err
}

type job struct {
	seq int
	id  catalog.Identifier
}

type outcome struct {
	seq     int
	result  Result
	skipped bool
}

// Stream is Resolve with incremental delivery. emit is called from the
// calling goroutine, one result at a time, in order of first occurrence.
//
// Cancelling ctx stops new lookups; lookups already started run to
// completion and are delivered before Stream returns.
func (e *Engine) Stream(ctx context.Context, identifiers []catalog.Identifier, emit func(Result)) error {
	logger := logging.FromContext(ctx)
	seen := NewSeen()

	var stopped atomic.Bool
	jobs := make(chan job)
	outcomes := make(chan outcome, e.workers)

	var wg sync.WaitGroup
	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if ctx.Err() != nil {
					stopped.Store(true)
					outcomes <- outcome{seq: j.seq, skipped: true}
					continue
				}
				outcomes <- outcome{seq: j.seq, result: e.process(ctx, j.id)}
			}
		}()
	}

	go func() {
		defer close(jobs)
		seq := 0
		for _, id := range identifiers {
			if ctx.Err() != nil {
				stopped.Store(true)
				return
			}
			if id == "" {
				continue
			}
			if !seen.Claim(id) {
				logger.Debug().Str("sku", string(id)).Msg("Skipping identifier already processed")
				continue
			}
			select {
			case jobs <- job{seq: seq, id: id}:
				seq++
			case <-ctx.Done():
				stopped.Store(true)
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	// Reorder so results leave in input order whatever the worker timing.
	pending := make(map[int]outcome)
	next := 0
	for o := range outcomes {
		pending[o.seq] = o
		for {
			p, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			if !p.skipped {
				emit(p.result)
			}
		}
	}

	if err := ctx.Err(); err != nil && stopped.Load() {
		logger.Info().Int("processed", next).Msg("Stopped before processing all identifiers")
		return fmt.Errorf("%w: %w", errors.ErrCanceled, err)
	}
	return nil
}

// process looks up one identifier and plans its group. The lookup is
// detached from cancellation so a started identifier always completes.
func (e *Engine) process(ctx context.Context, id catalog.Identifier) Result {
	ctx = logging.WithIdentifier(ctx, string(id))
	logger := logging.FromContext(ctx)

	records, err := e.finder.FindByIdentifier(context.WithoutCancel(ctx), id)
	if err != nil {
		lookupErr := errors.NewLookupError(string(id), err)
		logger.Warn().Err(err).Msg("Lookup failed")
		return Result{Identifier: id, Group: Group{Identifier: id}, Err: lookupErr}
	}

	group := Group{Identifier: id, Records: records}
	if len(records) == 0 {
		logger.Warn().
			Err(&errors.GroupingAnomaly{Identifier: string(id)}).
			Msg("No catalog records for identifier")
	}

	plan := NewPlan(group)
	if plan != nil {
		logger.Info().
			Int("group_size", plan.GroupSize).
			Str("keep", plan.Keep).
			Strs("drop", plan.Drop).
			Str("reason", string(plan.Reason)).
			Msg("Duplicate group planned")
	}
	return Result{Identifier: id, Group: group, Plan: plan}
}
