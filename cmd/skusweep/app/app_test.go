package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/skusweep/internal/shopify"
	"github.com/agentstation/skusweep/pkg/catalog"
	"github.com/agentstation/skusweep/pkg/constants"
	"github.com/agentstation/skusweep/pkg/errors"
	"github.com/agentstation/skusweep/pkg/report"
)

func nopLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func TestAppNew(t *testing.T) {
	isolate(t)

	app, err := New("1.0.0", "abc123", "2024-01-01", "test")
	require.NoError(t, err)

	assert.Equal(t, "1.0.0", app.Version())
	assert.Equal(t, "abc123", app.Commit())
	assert.Equal(t, "2024-01-01", app.Date())
	assert.Equal(t, "test", app.BuiltBy())
	assert.NotNil(t, app.Logger())
	assert.NotNil(t, app.Config())
	assert.Equal(t, constants.DefaultWorkers, app.Settings().Workers)
}

func TestAppCatalogRequiresCredentials(t *testing.T) {
	isolate(t)

	app, err := New("dev", "", "", "", WithLogger(nopLogger()))
	require.NoError(t, err)

	_, err = app.Catalog()
	var cfgErr *errors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "SHOP is required")
}

func TestAppCatalogSingleton(t *testing.T) {
	isolate(t)
	config := &Config{Shop: "acme", AccessToken: "t", APIVersion: "2024-10", Workers: 4, MaxRetries: 1, RateLimit: 2, Burst: 1}

	app, err := New("dev", "", "", "", WithConfig(config), WithLogger(nopLogger()))
	require.NoError(t, err)

	const goroutines = 20
	results := make([]catalog.Client, goroutines)
	var wg sync.WaitGroup
	for i := range goroutines {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			c, err := app.Catalog()
			assert.NoError(t, err)
			results[idx] = c
		}(i)
	}
	wg.Wait()

	require.IsType(t, &shopify.Client{}, results[0])
	for _, c := range results[1:] {
		assert.Same(t, results[0], c)
	}
	assert.NoError(t, app.Shutdown(context.Background()))
}

func TestExecuteFindAndResolve(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "products.csv")
	require.NoError(t, os.WriteFile(in, []byte("Variant SKU\nA\nB\nA\n"), constants.FilePermissions))

	mem := catalog.NewMemory(
		catalog.Record{ID: "a1", IdentifierValue: "A", State: catalog.StateDraft},
		catalog.Record{ID: "a2", IdentifierValue: "A", State: catalog.StateActive},
		catalog.Record{ID: "b1", IdentifierValue: "B", State: catalog.StateActive},
	)
	var out bytes.Buffer
	app, err := New("dev", "", "", "", WithCatalog(mem), WithLogger(nopLogger()), WithOutput(&out))
	require.NoError(t, err)

	err = app.Execute(context.Background(), []string{"find", "--in", in, "--out-dir", dir, "-o", "json"})
	require.NoError(t, err)
	assert.Empty(t, mem.Deletes())

	dups, err := os.ReadFile(filepath.Join(dir, constants.DuplicatesFile))
	require.NoError(t, err)
	assert.Equal(t, "SKU,Count\nA,2\n", string(dups))

	out.Reset()
	err = app.Execute(context.Background(), []string{"resolve", "--out-dir", dir, "--yes", "-o", "json"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a1"}, mem.Deletes())

	var rep report.Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &rep))
	assert.Equal(t, "resolve", rep.Mode)
	assert.False(t, rep.DryRun)
	require.Len(t, rep.Entries, 1)
	assert.Equal(t, "a2", rep.Entries[0].Kept)
}

func TestExecuteVersion(t *testing.T) {
	isolate(t)
	var out bytes.Buffer
	app, err := New("1.2.3", "abc", "today", "make", WithLogger(nopLogger()), WithOutput(&out))
	require.NoError(t, err)

	require.NoError(t, app.Execute(context.Background(), []string{"version"}))
	assert.Contains(t, out.String(), "skusweep version 1.2.3")
	assert.Contains(t, out.String(), "commit: abc")
}

func TestExecuteUnknownCommand(t *testing.T) {
	isolate(t)
	app, err := New("dev", "", "", "", WithLogger(nopLogger()), WithOutput(&bytes.Buffer{}))
	require.NoError(t, err)

	assert.Error(t, app.Execute(context.Background(), []string{"sweep-everything"}))
}
