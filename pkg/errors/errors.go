// Package errors defines the error types skusweep returns.
//
// Errors scoped to one SKU (LookupError, DeletionError) are recorded in the
// report and the run continues. Errors about setup (ConfigError, InputError,
// IOError) stop the run. IsTransient decides what the retry loops retry.
package errors

import (
	"context"
	"errors"
	"net"
)

// Re-exported so callers import a single errors package.
var (
	New  = errors.New
	Is   = errors.Is
	As   = errors.As
	Join = errors.Join
)

// Sentinels matched with Is.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrLookupFailed        = errors.New("lookup failed")
	ErrDeletionFailed      = errors.New("deletion failed")
	ErrAccessTokenRequired = errors.New("access token required")
	ErrAccessTokenInvalid  = errors.New("access token invalid")
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrRateLimited         = errors.New("rate limited")
	ErrTimeout             = errors.New("operation timed out")
	ErrCanceled            = errors.New("operation canceled")

	// ErrReadOnly is returned when writing to a finalized report.
	ErrReadOnly = errors.New("read only")
)

// IsValidationError covers ValidationError, InputError and ErrInvalidInput.
func IsValidationError(err error) bool { return errors.Is(err, ErrInvalidInput) }

// IsAuthError reports a missing or rejected access token.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrAccessTokenRequired) || errors.Is(err, ErrAccessTokenInvalid)
}

// IsRateLimited checks if err is a rate limit error.
func IsRateLimited(err error) bool { return errors.Is(err, ErrRateLimited) }

// IsTimeout checks if err is a timeout error.
func IsTimeout(err error) bool { return errors.Is(err, ErrTimeout) }

// IsCanceled checks if err is a cancellation error.
func IsCanceled(err error) bool { return errors.Is(err, ErrCanceled) }

// IsProviderUnavailable checks if err means the catalog API is down.
func IsProviderUnavailable(err error) bool { return errors.Is(err, ErrProviderUnavailable) }

// IsIOError reports whether err came from a filesystem operation.
func IsIOError(err error) bool {
	var ioErr *IOError
	return errors.As(err, &ioErr)
}

// IsTransient reports whether retrying the failed call may succeed.
// Structured rejections, validation and auth failures never are, and
// neither is a canceled context.
func IsTransient(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrDeletionFailed), IsValidationError(err), IsAuthError(err):
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded), IsCanceled(err):
		return false
	case IsRateLimited(err), IsProviderUnavailable(err), IsTimeout(err):
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// WrapValidation returns nil for a nil err.
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapIO returns nil for a nil err.
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapResource returns nil for a nil err.
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return NewResourceError(operation, resource, id, err)
}

// WrapParse returns nil for a nil err.
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// WrapAPI returns nil for a nil err.
func WrapAPI(provider string, statusCode int, err error) error {
	if err == nil {
		return nil
	}
	return &APIError{Provider: provider, StatusCode: statusCode, Message: err.Error(), Err: err}
}

func messageOf(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
