package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/skusweep/pkg/catalog"
)

// Mock is an Application for command tests. Nil funcs fall back to an
// empty in-memory catalog, a no-op logger, table output and a dev build.
//
//	app := &application.Mock{
//	    CatalogFunc:   func() (catalog.Client, error) { return catalog.NewMemory(records...), nil },
//	    SettingsValue: application.Settings{OutDir: t.TempDir(), Workers: 2},
//	}
//	cmd := find.NewCommand(app)
type Mock struct {
	CatalogFunc      func() (catalog.Client, error)
	SettingsValue    Settings
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	VersionFunc      func() string
	CommitFunc       func() string
	DateFunc         func() string
	BuiltByFunc      func() string
}

var _ Application = (*Mock)(nil)

func (m *Mock) Catalog() (catalog.Client, error) {
	if m.CatalogFunc == nil {
		return catalog.NewMemory(), nil
	}
	return m.CatalogFunc()
}

func (m *Mock) Settings() Settings { return m.SettingsValue }

func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return m.LoggerFunc()
}

func (m *Mock) OutputFormat() string { return call(m.OutputFormatFunc, "table") }
func (m *Mock) Version() string      { return call(m.VersionFunc, "dev") }
func (m *Mock) Commit() string       { return call(m.CommitFunc, "unknown") }
func (m *Mock) Date() string         { return call(m.DateFunc, "unknown") }
func (m *Mock) BuiltBy() string      { return call(m.BuiltByFunc, "test") }

func call(fn func() string, def string) string {
	if fn == nil {
		return def
	}
	return fn()
}
