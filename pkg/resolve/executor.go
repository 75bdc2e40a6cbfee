// Package resolve deletes the records a plan drops and reports per-record
// outcomes.
package resolve

import (
	"context"
	"sync"
	"time"

	"github.com/agentstation/skusweep/internal/retry"
	"github.com/agentstation/skusweep/pkg/catalog"
	"github.com/agentstation/skusweep/pkg/constants"
	"github.com/agentstation/skusweep/pkg/dedup"
	"github.com/agentstation/skusweep/pkg/logging"
)

// ReasonKeptRecord is reported when a plan lists its kept record as a drop.
const ReasonKeptRecord = "refusing to delete kept record"

// Executor carries out plans against a catalog.Deleter.
type Executor struct {
	deleter     catalog.Deleter
	maxRetries  int
	concurrency int
	dryRun      bool
	backoff     time.Duration
	maxBackoff  time.Duration
}

// Option configures an Executor.
type Option func(*Executor)

// WithMaxRetries sets how often a transient delete failure is retried.
func WithMaxRetries(n int) Option {
	return func(e *Executor) {
		if n >= 0 {
			e.maxRetries = n
		}
	}
}

// WithConcurrency deletes up to n records of one plan at a time.
func WithConcurrency(n int) Option {
	return func(e *Executor) {
		if n < 1 {
			n = 1
		}
		e.concurrency = n
	}
}

// WithDryRun makes Execute report StatusPlanned without deleting.
func WithDryRun(dryRun bool) Option {
	return func(e *Executor) {
		e.dryRun = dryRun
	}
}

// WithBackoff sets the initial and maximum delay between retries.
func WithBackoff(initial, max time.Duration) Option {
	return func(e *Executor) {
		e.backoff = initial
		e.maxBackoff = max
	}
}

// New creates an Executor.
func New(deleter catalog.Deleter, opts ...Option) *Executor {
	e := &Executor{
		deleter:     deleter,
		maxRetries:  constants.MaxRetries,
		concurrency: 1,
		backoff:     constants.RetryBackoff,
		maxBackoff:  constants.MaxRetryBackoff,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DryRun reports whether the executor only plans.
func (e *Executor) DryRun() bool {
	return e.dryRun
}

// Execute deletes every record in plan.Drop except plan.Keep. A failure on
// one record never stops the others.
func (e *Executor) Execute(ctx context.Context, plan dedup.Plan) Outcome {
	ctx = logging.WithIdentifier(ctx, string(plan.Identifier))
	out := Outcome{
		Identifier: plan.Identifier,
		Keep:       plan.Keep,
		Records:    make([]RecordOutcome, len(plan.Drop)),
	}

	if e.concurrency <= 1 || len(plan.Drop) < 2 {
		for i, id := range plan.Drop {
			out.Records[i] = e.deleteOne(ctx, plan.Keep, id)
		}
		return out
	}

	sem := make(chan struct{}, e.concurrency)
	var wg sync.WaitGroup
	for i, id := range plan.Drop {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, id string) {
			defer wg.Done()
			defer func() { <-sem }()
			out.Records[i] = e.deleteOne(ctx, plan.Keep, id)
		}(i, id)
	}
	wg.Wait()
	return out
}

// deleteOne handles one dropped record, retrying transient failures.
func (e *Executor) deleteOne(ctx context.Context, keep, id string) RecordOutcome {
	ctx = logging.WithRecord(ctx, id)
	logger := logging.FromContext(ctx)

	if id == keep {
		logger.Error().Msg("Plan lists kept record for deletion")
		return RecordOutcome{ID: id, Status: StatusFailed, Reason: ReasonKeptRecord}
	}
	if e.dryRun {
		logger.Info().Msg("Would delete record")
		return RecordOutcome{ID: id, Status: StatusPlanned}
	}

	var res catalog.DeleteResult
	attempts, err := retry.Do(ctx, e.policy(), func(int) error {
		var err error
		res, err = e.deleter.Delete(ctx, id)
		return err
	}, func(attempt int, err error, next time.Duration) {
		logger.Warn().Err(err).Int("attempt", attempt).Dur("backoff", next).Msg("Retrying delete")
	})

	switch {
	case err != nil:
		logger.Error().Err(err).Int("attempts", attempts).Msg("Delete failed")
		return RecordOutcome{ID: id, Status: StatusFailed, Reason: err.Error(), Attempts: attempts}
	case res == catalog.NotFound:
		logger.Info().Msg("Record already absent")
		return RecordOutcome{ID: id, Status: StatusAlreadyAbsent, Attempts: attempts}
	}
	logger.Info().Msg("Deleted record")
	return RecordOutcome{ID: id, Status: StatusDeleted, Attempts: attempts}
}

func (e *Executor) policy() retry.Policy {
	return retry.Policy{MaxRetries: e.maxRetries, Initial: e.backoff, Max: e.maxBackoff}
}
