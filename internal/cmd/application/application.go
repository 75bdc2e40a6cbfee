// Package application defines what commands need from the running CLI. The
// App in cmd/skusweep/app implements it; tests use Mock.
package application

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/skusweep/pkg/catalog"
)

// Settings are the run defaults resolved from flags, environment, .env
// files and the config file.
type Settings struct {
	// InFile is the extract read by find (IN_FILE).
	InFile string
	// OutDir receives duplicate_skus.csv, audit.jsonl and summaries (OUT_FOLDER).
	OutDir string
	// Workers is the number of identifiers looked up concurrently.
	Workers int
	// MaxRetries bounds retries of transient failures.
	MaxRetries int
	// Timeout bounds a whole run. Zero means no limit.
	Timeout time.Duration
	// NoColor disables colored status output.
	NoColor bool
}

// Application is the dependency surface shared by all commands.
type Application interface {
	// Catalog returns the catalog client, creating it on first use.
	Catalog() (catalog.Client, error)

	// Settings returns the configured run defaults.
	Settings() Settings

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table, wide).
	OutputFormat() string

	Version() string
	Commit() string
	Date() string
	BuiltBy() string
}
