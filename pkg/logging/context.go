package logging

import (
	"context"

	"github.com/rs/zerolog"
)

type ctxKey struct{ name string }

var (
	loggerKey = ctxKey{"logger"}
	runIDKey  = ctxKey{"run_id"}
)

// Field names shared by every component that logs about catalog work.
const (
	FieldRunID     = "run_id"
	FieldSKU       = "sku"
	FieldRecord    = "record_id"
	FieldOperation = "operation"
)

// WithLogger stores logger on ctx. A nil logger stores the default.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the context logger or the default.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && l != nil {
			return l
		}
	}
	return Default()
}

// Ctx is shorthand for FromContext.
func Ctx(ctx context.Context) *zerolog.Logger { return FromContext(ctx) }

// WithRunID tags the context logger with the run ID and keeps the ID
// retrievable through RunID.
func WithRunID(ctx context.Context, runID string) context.Context {
	ctx = context.WithValue(ctx, runIDKey, runID)
	return with(ctx, func(c zerolog.Context) zerolog.Context { return c.Str(FieldRunID, runID) })
}

// RunID returns the run ID set by WithRunID.
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey).(string)
	return id
}

// WithIdentifier tags the logger with the SKU under work.
func WithIdentifier(ctx context.Context, sku string) context.Context {
	return WithField(ctx, FieldSKU, sku)
}

// WithRecord tags the logger with a catalog record ID.
func WithRecord(ctx context.Context, recordID string) context.Context {
	return WithField(ctx, FieldRecord, recordID)
}

// WithOperation tags the logger with the current operation.
func WithOperation(ctx context.Context, operation string) context.Context {
	return WithField(ctx, FieldOperation, operation)
}

// WithError attaches err to the logger. A nil error returns ctx unchanged.
func WithError(ctx context.Context, err error) context.Context {
	if err == nil {
		return ctx
	}
	return with(ctx, func(c zerolog.Context) zerolog.Context { return c.Err(err) })
}

// WithField attaches one field.
func WithField(ctx context.Context, key string, value any) context.Context {
	return with(ctx, func(c zerolog.Context) zerolog.Context { return c.Interface(key, value) })
}

// WithFields attaches several fields.
func WithFields(ctx context.Context, fields map[string]any) context.Context {
	return with(ctx, func(c zerolog.Context) zerolog.Context { return c.Fields(fields) })
}

func with(ctx context.Context, fn func(zerolog.Context) zerolog.Context) context.Context {
	l := fn(FromContext(ctx).With()).Logger()
	return WithLogger(ctx, &l)
}
