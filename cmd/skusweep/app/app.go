// Package app provides the application context and dependency management
// for the skusweep CLI. It centralizes configuration, logging and the
// catalog client so commands receive them through application.Application.
package app

import (
	"context"
	"io"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/skusweep/internal/cmd/application"
	"github.com/agentstation/skusweep/internal/shopify"
	"github.com/agentstation/skusweep/internal/transport"
	"github.com/agentstation/skusweep/pkg/catalog"
	"github.com/agentstation/skusweep/pkg/constants"
	"github.com/agentstation/skusweep/pkg/errors"
)

// App represents the skusweep application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger
	out    io.Writer

	// fixedLogger is set when the logger was injected and must not be
	// rebuilt from flags.
	fixedLogger bool

	// Catalog client (lazy-initialized, singleton)
	mu         sync.Mutex
	catalog    catalog.Client
	httpClient *http.Client
}

// New creates a new App instance with the given version information.
// Configuration is loaded from the environment and config files and
// can be replaced using functional options.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Settings returns the run defaults from the configuration.
func (a *App) Settings() application.Settings {
	return a.config.Settings()
}

// Catalog returns the Shopify catalog client, creating it on first use.
// The configuration is validated before the client is built.
func (a *App) Catalog() (catalog.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.catalog != nil {
		return a.catalog, nil
	}

	if err := a.config.Validate(); err != nil {
		return nil, err
	}

	endpoint, err := shopify.Endpoint(a.config.Shop, a.config.APIVersion)
	if err != nil {
		return nil, err
	}

	a.httpClient = &http.Client{Timeout: constants.DefaultHTTPTimeout}
	tr := transport.New(transport.ShopifyAuth(),
		transport.WithToken(a.config.AccessToken),
		transport.WithProvider(constants.ProviderShopify),
		transport.WithHTTPClient(a.httpClient),
		transport.WithRateLimit(a.config.RateLimit, a.config.Burst),
		transport.WithRetries(a.config.MaxRetries),
	)

	a.catalog = shopify.New(tr, endpoint)
	a.logger.Debug().
		Str("endpoint", endpoint).
		Float64("rate", a.config.RateLimit).
		Int("burst", a.config.Burst).
		Msg("Catalog client ready")

	return a.catalog, nil
}

// Shutdown releases resources held by the application.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.httpClient != nil {
		a.httpClient.CloseIdleConnections()
	}
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		a.fixedLogger = true
		return nil
	}
}

// WithCatalog sets the catalog client (useful for testing).
func WithCatalog(client catalog.Client) Option {
	return func(a *App) error {
		a.catalog = client
		return nil
	}
}

// WithOutput redirects command output, which defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(a *App) error {
		a.out = w
		return nil
	}
}

// Ensure App implements application.Application at compile time.
var _ application.Application = (*App)(nil)
