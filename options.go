package skusweep

import (
	"time"

	"github.com/agentstation/skusweep/pkg/constants"
	"github.com/agentstation/skusweep/pkg/errors"
	"github.com/agentstation/skusweep/pkg/report"
)

// Options controls a run.
type Options struct {
	Mode        Mode          // What to do with duplicates
	DryRun      bool          // Plan deletions without making them
	Workers     int           // Identifiers looked up concurrently
	Concurrency int           // Deletes per plan run concurrently
	MaxRetries  int           // Retries of a transient delete failure
	Timeout     time.Duration // Timeout for the whole run, 0 for none
	RunID       string        // Run identifier, generated when empty
	Sinks       []report.Sink // Where entries are written as they are recorded
	SkipCheck   bool          // Skip the catalog access check before the first lookup
}

// Option is a function that configures a run.
type Option func(*Options)

// Defaults returns the default run options.
func Defaults() *Options {
	return &Options{
		Mode:        ModeFind,
		DryRun:      false,
		Workers:     constants.DefaultWorkers,
		Concurrency: 1,
		MaxRetries:  constants.MaxRetries,
		Timeout:     0,
	}
}

// Apply applies the given options.
func (o *Options) Apply(opts ...Option) *Options {
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Validate checks the options for consistency.
func (o *Options) Validate() error {
	switch o.Mode {
	case ModeFind, ModeResolve:
	default:
		return errors.NewValidationError("mode", o.Mode, "must be find or resolve")
	}
	if o.Workers < 1 || o.Workers > constants.MaxWorkers {
		return errors.NewValidationError("workers", o.Workers, "must be between 1 and 64")
	}
	if o.Concurrency < 1 {
		return errors.NewValidationError("concurrency", o.Concurrency, "must be positive")
	}
	if o.MaxRetries < 0 {
		return errors.NewValidationError("max_retries", o.MaxRetries, "must not be negative")
	}
	if o.Timeout < 0 {
		return errors.NewValidationError("timeout", o.Timeout, "must not be negative")
	}
	return nil
}

// WithMode selects detection-only or resolution.
func WithMode(mode Mode) Option {
	return func(o *Options) {
		o.Mode = mode
	}
}

// WithDryRun plans deletions without making them.
func WithDryRun(dryRun bool) Option {
	return func(o *Options) {
		o.DryRun = dryRun
	}
}

// WithWorkers sets how many identifiers are looked up concurrently.
func WithWorkers(n int) Option {
	return func(o *Options) {
		o.Workers = n
	}
}

// WithDeleteConcurrency sets how many deletes of one plan run at once.
func WithDeleteConcurrency(n int) Option {
	return func(o *Options) {
		o.Concurrency = n
	}
}

// WithMaxRetries sets how often a transient delete failure is retried.
func WithMaxRetries(n int) Option {
	return func(o *Options) {
		o.MaxRetries = n
	}
}

// WithTimeout bounds the whole run.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithRunID sets the run identifier.
func WithRunID(id string) Option {
	return func(o *Options) {
		o.RunID = id
	}
}

// WithSinks adds audit sinks.
func WithSinks(sinks ...report.Sink) Option {
	return func(o *Options) {
		o.Sinks = append(o.Sinks, sinks...)
	}
}

// WithSkipAccessCheck disables the access check made before the first lookup.
func WithSkipAccessCheck(skip bool) Option {
	return func(o *Options) {
		o.SkipCheck = skip
	}
}
