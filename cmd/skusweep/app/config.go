package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/skusweep/internal/cmd/application"
	"github.com/agentstation/skusweep/pkg/constants"
	"github.com/agentstation/skusweep/pkg/errors"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Catalog access
	Shop        string
	AccessToken string
	APIVersion  string
	RateLimit   float64
	Burst       int

	// Run defaults
	InFile     string
	OutDir     string
	Workers    int
	MaxRetries int
	Timeout    time.Duration

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// catalogEnv are the variables the original tooling used; they are bound
// explicitly so .env values reach viper.
var catalogEnv = []string{
	"SHOP",
	"SHOPIFY_ACCESS_TOKEN",
	"SHOPIFY_API_VERSION",
	"IN_FILE",
	"OUT_FOLDER",
}

// LoadConfig loads configuration from all sources in order of precedence:
//  1. Command-line flags (handled by cobra)
//  2. Environment variables
//  3. .env files
//  4. Config file (configFile, or ~/.skusweep.yaml, or ./.skusweep.yaml)
//  5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	// .env files must be loaded before viper reads the environment
	loadEnvFiles()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	for _, key := range catalogEnv {
		if err := v.BindEnv(key); err != nil {
			return nil, errors.NewConfigError("env", "failed to bind "+key, err)
		}
	}
	if err := v.BindEnv("config", "SKUSWEEP_CONFIG"); err != nil {
		return nil, errors.NewConfigError("env", "failed to bind SKUSWEEP_CONFIG", err)
	}

	v.SetDefault("shopify_api_version", constants.DefaultShopifyAPIVersion)
	v.SetDefault("rate", constants.DefaultRateLimit)
	v.SetDefault("burst", constants.BurstSize)
	v.SetDefault("workers", constants.DefaultWorkers)
	v.SetDefault("max_retries", constants.MaxRetries)
	v.SetDefault("out_folder", ".")
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")

	if configFile == "" {
		configFile = v.GetString("config")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WrapResource("read", "config", configFile, err)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".skusweep")
		// A missing config file is fine
		_ = v.ReadInConfig()
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		Shop:        v.GetString("shop"),
		AccessToken: v.GetString("shopify_access_token"),
		APIVersion:  v.GetString("shopify_api_version"),
		RateLimit:   v.GetFloat64("rate"),
		Burst:       v.GetInt("burst"),

		InFile:     v.GetString("in_file"),
		OutDir:     v.GetString("out_folder"),
		Workers:    v.GetInt("workers"),
		MaxRetries: v.GetInt("max_retries"),
		Timeout:    v.GetDuration("timeout"),

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
		LogOutput: v.GetString("log_output"),
	}

	return config, nil
}

// Validate checks that the catalog can be reached with this configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Shop) == "" {
		return errors.NewConfigError(constants.ProviderShopify, "SHOP is required", errors.ErrInvalidInput)
	}
	if strings.TrimSpace(c.AccessToken) == "" {
		return errors.NewConfigError(constants.ProviderShopify, "SHOPIFY_ACCESS_TOKEN is required", errors.ErrAccessTokenRequired)
	}
	if c.Workers < 1 || c.Workers > constants.MaxWorkers {
		return errors.NewConfigError("run", "workers must be between 1 and 64", errors.ErrInvalidInput)
	}
	if c.MaxRetries < 0 {
		return errors.NewConfigError("run", "max_retries must not be negative", errors.ErrInvalidInput)
	}
	return nil
}

// Settings returns the run defaults commands fall back to.
func (c *Config) Settings() application.Settings {
	return application.Settings{
		InFile:     c.InFile,
		OutDir:     c.OutDir,
		Workers:    c.Workers,
		MaxRetries: c.MaxRetries,
		Timeout:    c.Timeout,
		NoColor:    c.NoColor,
	}
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel, logFile string) {
	c.Verbose = c.Verbose || verbose
	c.Quiet = c.Quiet || quiet
	c.NoColor = c.NoColor || noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	if logFile != "" {
		c.LogOutput = logFile
	}
}

// loadEnvFiles loads environment variables from .env files.
// Variables already set in the environment are never overridden.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}
