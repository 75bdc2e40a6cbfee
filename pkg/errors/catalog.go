package errors

import (
	"fmt"
	"net/http"
)

// LookupError means finding the records for one SKU failed.
type LookupError struct {
	Identifier string
	Err        error
}

// Error implements the error interface.
func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup of %q failed: %v", e.Identifier, e.Err)
}

// Unwrap returns the underlying error.
func (e *LookupError) Unwrap() error { return e.Err }

// Is implements errors.Is support.
func (e *LookupError) Is(target error) bool { return target == ErrLookupFailed }

// NewLookupError creates a LookupError.
func NewLookupError(identifier string, err error) *LookupError {
	return &LookupError{Identifier: identifier, Err: err}
}

// GroupingAnomaly is an extract SKU that matched no catalog record.
// It is logged and never returned.
type GroupingAnomaly struct {
	Identifier string
}

// Error implements the error interface.
func (e *GroupingAnomaly) Error() string {
	return fmt.Sprintf("identifier %q matched no catalog records", e.Identifier)
}

// DeletionError is the catalog refusing a delete, e.g. a permission or
// referential constraint. Field names the input the catalog objected to.
type DeletionError struct {
	RecordID string
	Field    string
	Message  string
	Err      error
}

// Error implements the error interface.
func (e *DeletionError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("delete of %s rejected (%s): %s", e.RecordID, e.Field, e.Message)
	}
	return fmt.Sprintf("delete of %s rejected: %s", e.RecordID, e.Message)
}

// Unwrap returns the underlying error.
func (e *DeletionError) Unwrap() error { return e.Err }

// Is implements errors.Is support.
func (e *DeletionError) Is(target error) bool { return target == ErrDeletionFailed }

// NewDeletionError creates a DeletionError.
func NewDeletionError(recordID, field, message string) *DeletionError {
	return &DeletionError{RecordID: recordID, Field: field, Message: message}
}

// APIError is a non-success HTTP response. The status decides which
// sentinel it matches: 429 is rate limited, 5xx unavailable, 401/403 auth.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
	Endpoint   string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("API error from %s: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("API error from %s (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// Unwrap returns the underlying error.
func (e *APIError) Unwrap() error { return e.Err }

// Is implements errors.Is support.
func (e *APIError) Is(target error) bool {
	switch {
	case e.StatusCode == http.StatusTooManyRequests:
		return target == ErrRateLimited
	case e.StatusCode >= http.StatusInternalServerError:
		return target == ErrProviderUnavailable
	case e.StatusCode == http.StatusUnauthorized, e.StatusCode == http.StatusForbidden:
		return target == ErrAccessTokenInvalid
	}
	return false
}

// NewAPIError creates an APIError.
func NewAPIError(provider string, statusCode int, message string) *APIError {
	return &APIError{Provider: provider, StatusCode: statusCode, Message: message}
}

// AuthenticationError is a missing or rejected credential.
type AuthenticationError struct {
	Provider string
	Method   string
	Message  string
	Err      error
}

// Error implements the error interface.
func (e *AuthenticationError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("authentication error (%s): %s", e.Method, e.Message)
	}
	return fmt.Sprintf("authentication error for %s (%s): %s", e.Provider, e.Method, e.Message)
}

// Unwrap returns the underlying error.
func (e *AuthenticationError) Unwrap() error { return e.Err }

// Is implements errors.Is support.
func (e *AuthenticationError) Is(target error) bool {
	return target == ErrAccessTokenRequired || target == ErrAccessTokenInvalid
}

// TimeoutError is a request that ran past its deadline.
type TimeoutError struct {
	Operation string
	Duration  string
	Message   string
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	if e.Duration == "" {
		return fmt.Sprintf("operation %s timed out: %s", e.Operation, e.Message)
	}
	return fmt.Sprintf("operation %s timed out after %s: %s", e.Operation, e.Duration, e.Message)
}

// Is implements errors.Is support.
func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }
