// Package constants provides shared constants used throughout the skusweep codebase.
// This includes timeouts, limits, file permissions, and file names that should
// be consistent across the application.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for HTTP requests to the catalog API
	DefaultHTTPTimeout = 30 * time.Second

	// ShutdownTimeout bounds graceful shutdown after a signal
	ShutdownTimeout = 5 * time.Second

	// RetryBackoff is the base backoff duration for retries
	RetryBackoff = 500 * time.Millisecond

	// MaxRetryBackoff is the maximum backoff duration for retries
	MaxRetryBackoff = 30 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Limit constants define various limits and capacities
const (
	// MaxRetries is the maximum number of retry attempts for transient failures
	MaxRetries = 3

	// DefaultWorkers is the default number of identifiers processed concurrently
	DefaultWorkers = 4

	// MaxWorkers caps the worker pool regardless of configuration
	MaxWorkers = 64

	// DefaultPageSize is the number of products requested per catalog page
	DefaultPageSize = 100

	// MaxPages bounds pagination for a single identifier lookup
	MaxPages = 50

	// VariantsPerProduct is the number of variants requested per product
	VariantsPerProduct = 100
)

// Rate limiting constants
const (
	// DefaultRateLimit is the default number of catalog requests per second
	DefaultRateLimit = 2.0

	// BurstSize is the token bucket burst size for rate limiting
	BurstSize = 4
)

// Catalog API defaults
const (
	// DefaultShopifyAPIVersion is the Admin API version used when none is configured
	DefaultShopifyAPIVersion = "2024-10"

	// ProviderShopify is the provider name used in errors and logs
	ProviderShopify = "shopify"
)

// Extract column names
const (
	// ColumnVariantSKU is preferred when present in the first row of the extract
	ColumnVariantSKU = "Variant SKU"

	// ColumnSKU is the fallback identifier column
	ColumnSKU = "SKU"

	// ColumnCount is the group size column of the detection report
	ColumnCount = "Count"
)

// Output file names, relative to the output directory
const (
	// DuplicatesFile is written by detection runs and read by resolution runs
	DuplicatesFile = "duplicate_skus.csv"

	// AuditFile is the incremental JSON Lines audit trail of resolution runs
	AuditFile = "audit.jsonl"

	// LogFile is the default log file when an output directory is configured
	LogFile = "skusweep.log"

	// SummaryMarkdownFile is the optional human-readable run summary
	SummaryMarkdownFile = "summary.md"

	// SummaryYAMLFile is the optional machine-readable run summary
	SummaryYAMLFile = "summary.yaml"
)

// Format constants
const (
	// TimeFormatISO8601 is the ISO 8601 time format
	TimeFormatISO8601 = time.RFC3339

	// TimeFormatHuman is a human-readable time format
	TimeFormatHuman = "Jan 2, 2006 at 3:04pm MST"
)
