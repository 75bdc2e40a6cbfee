// Package report keeps the append-only audit trail of a run and renders its
// summary.
package report

import (
	"sync"

	"github.com/agentstation/utc"
	"github.com/google/uuid"

	"github.com/agentstation/skusweep/pkg/errors"
)

// Report is the finalized record of a run.
type Report struct {
	RunID      string   `json:"run_id" yaml:"run_id"`
	Mode       string   `json:"mode" yaml:"mode"`
	DryRun     bool     `json:"dry_run" yaml:"dry_run"`
	StartedAt  utc.Time `json:"started_at" yaml:"started_at"`
	FinishedAt utc.Time `json:"finished_at" yaml:"finished_at"`
	// Incomplete explains why the run stopped before the end of its input.
	Incomplete string  `json:"incomplete,omitempty" yaml:"incomplete,omitempty"`
	Summary    Summary `json:"summary" yaml:"summary"`
	Entries    []Entry `json:"entries" yaml:"entries"`
}

// Summary holds the run counters.
type Summary struct {
	Identifiers   int `json:"identifiers" yaml:"identifiers"`
	Duplicates    int `json:"duplicates" yaml:"duplicates"`
	Noop          int `json:"noop" yaml:"noop"`
	Resolved      int `json:"resolved" yaml:"resolved"`
	Detected      int `json:"detected" yaml:"detected"`
	Planned       int `json:"planned" yaml:"planned"`
	Errored       int `json:"errored" yaml:"errored"`
	Deleted       int `json:"deleted" yaml:"deleted"`
	AlreadyAbsent int `json:"already_absent" yaml:"already_absent"`
	Failed        int `json:"failed" yaml:"failed"`
}

func (s *Summary) add(e Entry) {
	s.Identifiers++
	if e.GroupSize > 1 {
		s.Duplicates++
	}
	switch e.Status {
	case StatusNoop:
		s.Noop++
	case StatusResolved:
		s.Resolved++
	case StatusDetected:
		s.Detected++
	case StatusPlanned:
		s.Planned++
	case StatusErrored:
		s.Errored++
	}
	s.Deleted += len(e.Deleted)
	s.AlreadyAbsent += len(e.AlreadyAbsent)
	for _, err := range e.Errors {
		if err.Kind == KindDeletion {
			s.Failed++
		}
	}
}

// Reporter collects entries during a run and forwards each to its sink as
// soon as it is recorded. It is safe for concurrent use.
type Reporter struct {
	mu         sync.Mutex
	runID      string
	mode       string
	dryRun     bool
	started    utc.Time
	entries    []Entry
	summary    Summary
	incomplete string
	sink       Sink
	finalized  bool
	now        func() utc.Time
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithRunID sets the run ID instead of generating one.
func WithRunID(id string) Option {
	return func(r *Reporter) {
		if id != "" {
			r.runID = id
		}
	}
}

// WithMode records the run mode, e.g. "find" or "resolve".
func WithMode(mode string) Option {
	return func(r *Reporter) {
		r.mode = mode
	}
}

// WithDryRun marks the report as a dry run.
func WithDryRun(dryRun bool) Option {
	return func(r *Reporter) {
		r.dryRun = dryRun
	}
}

// WithSink forwards entries to the given sinks.
func WithSink(sinks ...Sink) Option {
	return func(r *Reporter) {
		r.sink = MultiSink(append([]Sink{r.sink}, sinks...)...)
	}
}

// WithClock replaces the time source.
func WithClock(now func() utc.Time) Option {
	return func(r *Reporter) {
		if now != nil {
			r.now = now
		}
	}
}

// New creates a Reporter and stamps the run start.
func New(opts ...Option) *Reporter {
	r := &Reporter{
		runID: uuid.NewString(),
		now:   utc.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.started = r.now()
	return r
}

// RunID returns the run identifier.
func (r *Reporter) RunID() string {
	return r.runID
}

// Record appends an entry and writes it to the sink. The entry is kept even
// when the sink fails; the sink error is returned.
func (r *Reporter) Record(e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finalized {
		return errors.ErrReadOnly
	}
	if e.Time.IsZero() {
		e.Time = r.now()
	}
	r.entries = append(r.entries, e)
	r.summary.add(e)

	if r.sink != nil {
		if err := r.sink.Write(e); err != nil {
			return errors.WrapIO("write", "audit entry "+string(e.Identifier), err)
		}
	}
	return nil
}

// MarkIncomplete notes that the run stopped early.
func (r *Reporter) MarkIncomplete(reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finalized {
		return errors.ErrReadOnly
	}
	r.incomplete = reason
	return nil
}

// Len returns the number of recorded entries.
func (r *Reporter) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Finalize closes the sinks and returns the report. Later calls to Record
// fail with errors.ErrReadOnly; Finalize is not repeatable.
func (r *Reporter) Finalize() (*Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finalized {
		return nil, errors.ErrReadOnly
	}
	r.finalized = true

	rep := &Report{
		RunID:      r.runID,
		Mode:       r.mode,
		DryRun:     r.dryRun,
		StartedAt:  r.started,
		FinishedAt: r.now(),
		Incomplete: r.incomplete,
		Summary:    r.summary,
		Entries:    append([]Entry{}, r.entries...),
	}

	if r.sink != nil {
		if err := r.sink.Close(); err != nil {
			return rep, errors.WrapIO("close", "report sinks", err)
		}
	}
	return rep, nil
}
