// Package retry runs catalog calls again after transient failures, with
// exponential backoff from cenkalti/backoff.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/agentstation/skusweep/pkg/constants"
	"github.com/agentstation/skusweep/pkg/errors"
)

// Policy bounds how often and how slowly a call is retried.
type Policy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	Initial    time.Duration
	Max        time.Duration
}

// Default retries constants.MaxRetries times starting at constants.RetryBackoff.
func Default() Policy {
	return Policy{
		MaxRetries: constants.MaxRetries,
		Initial:    constants.RetryBackoff,
		Max:        constants.MaxRetryBackoff,
	}
}

// Hinter is implemented by errors that carry a server-requested delay,
// such as an HTTP Retry-After header.
type Hinter interface {
	RetryAfter() time.Duration
}

// Notify is called before each retry with the failed attempt number
// (1-based), its error and the delay before the next attempt.
type Notify func(attempt int, err error, next time.Duration)

// Stop wraps err so Do returns it without retrying.
func Stop(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}

// Do calls op until it succeeds, fails with an error errors.IsTransient
// rejects, runs out of retries, or ctx ends. It returns the number of
// attempts made and the last error. A canceled ctx yields ctx.Err().
func Do(ctx context.Context, p Policy, op func(attempt int) error, notify Notify) (int, error) {
	hinted := &hintBackOff{BackOff: p.exponential(), max: p.Max}
	b := backoff.WithContext(backoff.WithMaxRetries(hinted, uint64(max(p.MaxRetries, 0))), ctx)

	attempt := 0
	err := backoff.RetryNotify(func() error {
		attempt++
		err := op(attempt)
		if err == nil {
			return nil
		}
		if !errors.IsTransient(err) {
			return backoff.Permanent(err)
		}
		hinted.hint = hintOf(err)
		return err
	}, b, func(err error, next time.Duration) {
		if notify != nil {
			notify(attempt, err, next)
		}
	})
	return attempt, err
}

func (p Policy) exponential() *backoff.ExponentialBackOff {
	eb := backoff.NewExponentialBackOff()
	if p.Initial > 0 {
		eb.InitialInterval = p.Initial
	}
	if p.Max > 0 {
		eb.MaxInterval = p.Max
	}
	eb.Multiplier = 2
	eb.RandomizationFactor = 0
	eb.MaxElapsedTime = 0
	eb.Reset()
	return eb
}

// hintBackOff uses the last error's Retry-After hint, capped at max, in
// place of the exponential delay for one step.
type hintBackOff struct {
	backoff.BackOff
	max  time.Duration
	hint time.Duration
}

func (h *hintBackOff) NextBackOff() time.Duration {
	next := h.BackOff.NextBackOff()
	if next == backoff.Stop || h.hint <= 0 {
		return next
	}
	d := h.hint
	h.hint = 0
	if h.max > 0 && d > h.max {
		d = h.max
	}
	return d
}

func (h *hintBackOff) Reset() {
	h.hint = 0
	h.BackOff.Reset()
}

func hintOf(err error) time.Duration {
	var h Hinter
	if errors.As(err, &h) {
		return h.RetryAfter()
	}
	return 0
}
