package skusweep

import (
	"context"

	"github.com/agentstation/skusweep/pkg/catalog"
	"github.com/agentstation/skusweep/pkg/dedup"
	"github.com/agentstation/skusweep/pkg/errors"
	"github.com/agentstation/skusweep/pkg/logging"
	"github.com/agentstation/skusweep/pkg/report"
	"github.com/agentstation/skusweep/pkg/resolve"
)

// Run processes the identifiers from src against client and returns the
// finalized report.
//
// An extract that yields no identifiers because of an input error is fatal:
// nothing is looked up and the report is empty. An input error after some
// identifiers truncates the run to those identifiers. Lookup and delete
// failures are recorded per identifier and never stop the run. Cancelling ctx
// stops new identifiers from starting; deletes already under way complete.
// A sink failure also stops the run, since the audit trail can no longer be
// trusted.
func Run(ctx context.Context, client catalog.Client, src Source, opts ...Option) (*report.Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	options := Defaults().Apply(opts...)
	if err := options.Validate(); err != nil {
		return nil, err
	}

	var cancel context.CancelFunc
	if options.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	dryRun := options.DryRun && options.Mode == ModeResolve
	reporter := report.New(
		report.WithRunID(options.RunID),
		report.WithMode(options.Mode.String()),
		report.WithDryRun(dryRun),
		report.WithSink(options.Sinks...),
	)
	ctx = logging.WithRunID(ctx, reporter.RunID())
	logger := logging.FromContext(ctx)

	ids, inputErr := src.Identifiers()
	if inputErr != nil {
		if len(ids) == 0 {
			logger.Error().Err(inputErr).Msg("Extract unusable, nothing processed")
			rep, _ := reporter.Finalize()
			return rep, inputErr
		}
		logger.Warn().Err(inputErr).Int("identifiers", len(ids)).Msg("Extract truncated")
		_ = reporter.MarkIncomplete(inputErr.Error())
	}

	if checker, ok := client.(AccessChecker); ok && !options.SkipCheck {
		shop, err := checker.CheckAccess(ctx)
		if err != nil {
			rep, _ := reporter.Finalize()
			return rep, errors.NewConfigError("catalog", "access check failed: "+err.Error(), err)
		}
		logger.Info().Str("shop", shop).Msg("Connected to catalog")
	}

	logger.Info().
		Str("mode", options.Mode.String()).
		Bool("dry_run", dryRun).
		Int("identifiers", len(ids)).
		Int("workers", options.Workers).
		Msg("Starting run")

	engine := dedup.New(client, dedup.WithWorkers(options.Workers))
	executor := resolve.New(client,
		resolve.WithDryRun(dryRun),
		resolve.WithMaxRetries(options.MaxRetries),
		resolve.WithConcurrency(options.Concurrency),
	)
	// Deletes for an identifier finish even when the run is stopped.
	deleteCtx := context.WithoutCancel(ctx)

	var sinkErr error
	streamErr := engine.Stream(ctx, ids, func(res dedup.Result) {
		// In-flight results still arrive after cancel. Nothing is
		// deleted once the audit stops recording.
		if sinkErr != nil {
			return
		}
		var out *resolve.Outcome
		if res.Plan != nil && options.Mode == ModeResolve {
			o := executor.Execute(deleteCtx, *res.Plan)
			out = &o
		}
		if err := reporter.Record(report.EntryFor(res, out)); err != nil && sinkErr == nil {
			sinkErr = err
			logger.Error().Err(err).Msg("Audit write failed, stopping run")
			cancel()
		}
	})

	switch {
	case sinkErr != nil:
		_ = reporter.MarkIncomplete("audit write failed: " + sinkErr.Error())
		streamErr = nil
	case streamErr != nil:
		_ = reporter.MarkIncomplete("run stopped: " + streamErr.Error())
	}

	rep, finErr := reporter.Finalize()
	if rep != nil {
		logger.Info().
			Int("identifiers", rep.Summary.Identifiers).
			Int("duplicates", rep.Summary.Duplicates).
			Int("deleted", rep.Summary.Deleted).
			Int("failed", rep.Summary.Failed).
			Int("errored", rep.Summary.Errored).
			Msg("Run finished")
	}
	return rep, errors.Join(sinkErr, streamErr, finErr)
}
