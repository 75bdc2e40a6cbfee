package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/skusweep/pkg/constants"
	"github.com/agentstation/skusweep/pkg/errors"
)

// Config describes where a logger writes and what it keeps.
type Config struct {
	// Level is the minimum level written: trace, debug, info, warn, error or off.
	Level string

	// Format is json, console or auto. Auto picks console for terminals.
	Format string

	// Output is stderr, stdout, discard or a file path. Files are appended to.
	Output string

	// TimeFormat names a console timestamp layout (kitchen, rfc3339, stamp)
	// or gives a Go layout.
	TimeFormat string

	NoColor bool

	// AddCaller includes file:line. Always on at debug and below.
	AddCaller bool

	// Fields are attached to every event.
	Fields map[string]any
}

var timeFormats = map[string]string{
	"kitchen":     time.Kitchen,
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"stamp":       time.Stamp,
	"stampmilli":  time.StampMilli,
	"unix":        zerolog.TimeFormatUnix,
}

var levelAliases = map[string]zerolog.Level{
	"warning":  zerolog.WarnLevel,
	"off":      zerolog.Disabled,
	"none":     zerolog.Disabled,
	"disabled": zerolog.Disabled,
}

// DefaultConfig logs info and above to stderr.
func DefaultConfig() *Config {
	return &Config{
		Level:      "info",
		Format:     "auto",
		Output:     "stderr",
		TimeFormat: "kitchen",
		NoColor:    os.Getenv("NO_COLOR") != "",
	}
}

// ParseLevel accepts zerolog level names plus warning and off aliases.
func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	if l, ok := levelAliases[s]; ok {
		return l, nil
	}
	l, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.InfoLevel, errors.NewValidationError("log_level", s, "unknown log level")
	}
	return l, nil
}

// Open builds a logger from cfg. The returned closer releases a log file
// when Output names one and is a no-op otherwise.
func Open(cfg *Config) (zerolog.Logger, io.Closer, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}

	out, closer, err := openOutput(cfg.Output)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}

	logCtx := zerolog.New(cfg.encoder(out)).Level(level).With().Timestamp()
	if cfg.AddCaller || level <= zerolog.DebugLevel {
		logCtx = logCtx.Caller()
	}
	if len(cfg.Fields) > 0 {
		logCtx = logCtx.Fields(cfg.Fields)
	}
	return logCtx.Logger(), closer, nil
}

// NewLoggerFromConfig is Open for callers that keep the process-wide
// logger for the life of the program. Errors fall back to stderr at info.
func NewLoggerFromConfig(cfg *Config) zerolog.Logger {
	logger, _, err := Open(cfg)
	if err == nil {
		return logger
	}
	fallback := zerolog.New(os.Stderr).With().Timestamp().Logger()
	fallback.Warn().Err(err).Msg("Logger configuration rejected, using stderr")
	return fallback
}

// NewFileLogger appends JSON events to path. Fields are added to every event.
func NewFileLogger(path string, fields map[string]any) (zerolog.Logger, io.Closer, error) {
	return Open(&Config{
		Level:  "trace",
		Format: "json",
		Output: path,
		Fields: fields,
	})
}

// ConfigFromEnv reads LOG_LEVEL, LOG_FORMAT, LOG_OUTPUT, LOG_TIME_FORMAT,
// LOG_CALLER, LOG_FIELDS and NO_COLOR over the defaults.
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()
	cfg.Level = envOr("LOG_LEVEL", cfg.Level)
	cfg.Format = envOr("LOG_FORMAT", cfg.Format)
	cfg.Output = envOr("LOG_OUTPUT", cfg.Output)
	cfg.TimeFormat = envOr("LOG_TIME_FORMAT", cfg.TimeFormat)
	cfg.AddCaller = os.Getenv("LOG_CALLER") == "true"
	cfg.Fields = ParseFields(os.Getenv("LOG_FIELDS"))
	return cfg
}

// ParseFields reads comma separated key=value pairs. Malformed pairs are skipped.
func ParseFields(s string) map[string]any {
	fields := make(map[string]any)
	for _, pair := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			continue
		}
		fields[k] = strings.TrimSpace(v)
	}
	return fields
}

func (c *Config) encoder(out io.Writer) io.Writer {
	format := strings.ToLower(c.Format)
	if format == "" || format == "auto" {
		format = "json"
		if isTerminal(out) {
			format = "console"
		}
	}
	if format != "console" && format != "pretty" {
		return out
	}
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: consoleTimeFormat(c.TimeFormat),
		NoColor:    c.NoColor,
	}
}

func consoleTimeFormat(name string) string {
	if layout, ok := timeFormats[strings.ToLower(name)]; ok {
		return layout
	}
	if strings.Contains(name, "2006") || strings.Contains(name, "15:04") {
		return name
	}
	return time.Kitchen
}

func openOutput(output string) (io.Writer, io.Closer, error) {
	switch strings.ToLower(output) {
	case "", "stderr":
		return os.Stderr, nopCloser{}, nil
	case "stdout":
		return os.Stdout, nopCloser{}, nil
	case "discard", "none":
		return io.Discard, nopCloser{}, nil
	}
	f, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return nil, nil, errors.WrapIO("open", output, err)
	}
	return f, f, nil
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
