// Package transport provides the rate-limited, retrying HTTP client used to
// talk to the catalog API.
package transport

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/agentstation/skusweep/internal/retry"
	"github.com/agentstation/skusweep/pkg/constants"
	"github.com/agentstation/skusweep/pkg/errors"
	"github.com/agentstation/skusweep/pkg/logging"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
var DefaultHTTPTimeout = constants.DefaultHTTPTimeout

// Client provides HTTP client functionality with authentication,
// client-side rate limiting and retry of transient failures.
type Client struct {
	http       *http.Client
	auth       Authenticator
	token      string
	provider   string
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration
	maxBackoff time.Duration
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the secret passed to the authenticator.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithProvider names the remote API in errors.
func WithProvider(name string) Option {
	return func(c *Client) {
		c.provider = name
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRateLimit limits requests to rps per second with the given burst.
// A non-positive rps disables client-side limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithRetries sets how many times a transient failure is retried.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithBackoff sets the initial and maximum retry delay.
func WithBackoff(initial, max time.Duration) Option {
	return func(c *Client) {
		c.backoff = initial
		c.maxBackoff = max
	}
}

// New creates a new transport client with the specified authenticator.
func New(auth Authenticator, opts ...Option) *Client {
	if auth == nil {
		auth = &NoAuth{}
	}
	c := &Client{
		http:       &http.Client{Timeout: DefaultHTTPTimeout},
		auth:       auth,
		provider:   "catalog",
		limiter:    rate.NewLimiter(rate.Limit(constants.DefaultRateLimit), constants.BurstSize),
		maxRetries: constants.MaxRetries,
		backoff:    constants.RetryBackoff,
		maxBackoff: constants.MaxRetryBackoff,
		userAgent:  "skusweep",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Provider returns the name used for the remote API in errors.
func (c *Client) Provider() string {
	return c.provider
}

// Do performs an HTTP request with authentication applied.
//
// Rate-limited (429), server (5xx) and network failures are retried with
// exponential backoff. The returned response has a 2xx or 4xx status; the
// caller owns its body. Exhausted retries yield an *errors.APIError for HTTP
// failures or the last network error.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if _, ok := c.auth.(*NoAuth); !ok && c.token == "" {
		return nil, &errors.AuthenticationError{
			Provider: c.provider,
			Method:   "access_token",
			Message:  "no access token configured",
			Err:      errors.ErrAccessTokenRequired,
		}
	}

	logger := logging.FromContext(ctx)

	var resp *http.Response
	_, err := retry.Do(ctx, c.RetryPolicy(), func(int) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return retry.Stop(err)
		}
		var err error
		resp, err = c.doOnce(ctx, req)
		return err
	}, func(attempt int, err error, next time.Duration) {
		logger.Debug().
			Err(err).
			Int("attempt", attempt).
			Dur("backoff", next).
			Str("url", req.URL.Redacted()).
			Msg("Retrying catalog request")
	})
	if err == nil {
		return resp, nil
	}
	if ctx.Err() != nil {
		return nil, c.contextError(ctx, ctx.Err())
	}

	var ra *retryAfterError
	if errors.As(err, &ra) {
		return nil, ra.APIError
	}
	return nil, err
}

// RetryPolicy is the backoff used for transient failures. Adapters reuse it
// for failures reported inside a successful response.
func (c *Client) RetryPolicy() retry.Policy {
	return retry.Policy{MaxRetries: c.maxRetries, Initial: c.backoff, Max: c.maxBackoff}
}

// doOnce executes a single request attempt.
func (c *Client) doOnce(ctx context.Context, req *http.Request) (*http.Response, error) {
	attempt := req.Clone(ctx)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, errors.WrapResource("rewind", "request body", req.URL.Path, err)
		}
		attempt.Body = body
	}

	c.auth.Apply(attempt, c.token)
	attempt.Header.Set("Accept", "application/json")
	attempt.Header.Set("User-Agent", c.userAgent)
	if req.Method == http.MethodPost || req.Method == http.MethodPut || req.Method == http.MethodPatch {
		attempt.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(attempt)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		apiErr := statusError(resp, c.provider, req.URL.Redacted())
		return nil, &retryAfterError{APIError: apiErr, after: retryAfter(resp)}
	}
	return resp, nil
}

func (c *Client) contextError(ctx context.Context, err error) error {
	if ctx.Err() == context.DeadlineExceeded {
		return &errors.TimeoutError{Operation: c.provider + " request", Message: err.Error()}
	}
	return errors.Join(errors.ErrCanceled, err)
}

// retryAfterError carries the server's Retry-After hint with the API error.
type retryAfterError struct {
	*errors.APIError
	after time.Duration
}

func (e *retryAfterError) Unwrap() error {
	return e.APIError
}

// RetryAfter implements retry.Hinter.
func (e *retryAfterError) RetryAfter() time.Duration {
	return e.after
}

func retryAfter(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > 0 {
		return time.Duration(secs * float64(time.Second))
	}
	return 0
}
