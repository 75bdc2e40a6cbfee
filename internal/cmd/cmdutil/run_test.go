package cmdutil

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/skusweep"
	"github.com/agentstation/skusweep/internal/cmd/application"
	"github.com/agentstation/skusweep/pkg/catalog"
	"github.com/agentstation/skusweep/pkg/constants"
	"github.com/agentstation/skusweep/pkg/errors"
	"github.com/agentstation/skusweep/pkg/report"
)

func record(id, sku string, state catalog.LifecycleState) catalog.Record {
	return catalog.Record{ID: id, IdentifierValue: sku, State: state, Title: "T", Description: "D", VariantCount: 1}
}

func newMock(t *testing.T, mem *catalog.Memory, settings application.Settings) *application.Mock {
	t.Helper()
	return &application.Mock{
		CatalogFunc:      func() (catalog.Client, error) { return mem, nil },
		SettingsValue:    settings,
		OutputFormatFunc: func() string { return "json" },
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), constants.FilePermissions))
}

func defaultRunFlags() *RunFlags {
	return &RunFlags{MaxRetries: -1}
}

func TestResolvePaths(t *testing.T) {
	settings := application.Settings{InFile: "products.csv", OutDir: "out"}

	t.Run("find", func(t *testing.T) {
		p, err := ResolvePaths(skusweep.ModeFind, defaultRunFlags(), settings)
		require.NoError(t, err)
		assert.Equal(t, "products.csv", p.Input)
		assert.Equal(t, filepath.Join("out", constants.DuplicatesFile), p.Report)
		assert.Equal(t, filepath.Join("out", constants.LogFile), p.Log)
	})

	t.Run("resolve reads duplicates report", func(t *testing.T) {
		p, err := ResolvePaths(skusweep.ModeResolve, defaultRunFlags(), settings)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("out", constants.DuplicatesFile), p.Input)
		assert.Equal(t, filepath.Join("out", constants.AuditFile), p.Report)
	})

	t.Run("flags win", func(t *testing.T) {
		flags := &RunFlags{Input: "x.csv", OutDir: "elsewhere"}
		p, err := ResolvePaths(skusweep.ModeResolve, flags, settings)
		require.NoError(t, err)
		assert.Equal(t, "x.csv", p.Input)
		assert.Equal(t, "elsewhere", p.OutDir)
	})

	t.Run("find without extract", func(t *testing.T) {
		_, err := ResolvePaths(skusweep.ModeFind, defaultRunFlags(), application.Settings{})
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("find refuses to overwrite its input", func(t *testing.T) {
		flags := &RunFlags{Input: filepath.Join("out", constants.DuplicatesFile)}
		_, err := ResolvePaths(skusweep.ModeFind, flags, settings)
		assert.True(t, errors.IsValidationError(err))
	})
}

func TestExecuteFindThenResolve(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "products.csv")
	writeFile(t, in, "Handle,Variant SKU\nshirt,A\nshirt-2,B\nhat,C\n")

	mem := catalog.NewMemory(
		record("a1", "A", catalog.StateActive),
		record("b1", "B", catalog.StateDraft),
		record("b2", "B", catalog.StateActive),
		record("c1", "C", catalog.StateActive),
	)
	app := newMock(t, mem, application.Settings{InFile: in, OutDir: dir, Workers: 2})

	var stdout bytes.Buffer
	err := Execute(context.Background(), app, Job{
		Mode:   skusweep.ModeFind,
		Run:    &RunFlags{MaxRetries: -1, SummaryMarkdown: true},
		Stdout: &stdout,
	})
	require.NoError(t, err)
	assert.Empty(t, mem.Deletes())

	dups, err := os.ReadFile(filepath.Join(dir, constants.DuplicatesFile))
	require.NoError(t, err)
	assert.Equal(t, "SKU,Count\nB,2\n", string(dups))
	assert.FileExists(t, filepath.Join(dir, constants.SummaryMarkdownFile))
	assert.FileExists(t, filepath.Join(dir, constants.LogFile))

	var printed report.Report
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &printed))
	assert.Equal(t, 1, printed.Summary.Duplicates)

	stdout.Reset()
	err = Execute(context.Background(), app, Job{
		Mode:    skusweep.ModeResolve,
		Run:     &RunFlags{MaxRetries: -1, SummaryYAML: true},
		Resolve: &ResolveFlags{Yes: true, Concurrency: 1},
		Stdout:  &stdout,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"b1"}, mem.Deletes())
	assert.FileExists(t, filepath.Join(dir, constants.SummaryYAMLFile))

	f, err := os.Open(filepath.Join(dir, constants.AuditFile))
	require.NoError(t, err)
	defer f.Close()
	var entries []report.Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e report.Entry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		entries = append(entries, e)
	}
	require.Len(t, entries, 1)
	assert.Equal(t, catalog.Identifier("B"), entries[0].Identifier)
	assert.Equal(t, []string{"b1"}, entries[0].Deleted)
}

func TestExecuteResolveWithoutConfirmationIsDryRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, constants.DuplicatesFile), "SKU,Count\nB,2\n")

	mem := catalog.NewMemory(
		record("b1", "B", catalog.StateDraft),
		record("b2", "B", catalog.StateActive),
	)
	app := newMock(t, mem, application.Settings{OutDir: dir})

	var stdout, stderr bytes.Buffer
	err := Execute(context.Background(), app, Job{
		Mode:    skusweep.ModeResolve,
		Run:     defaultRunFlags(),
		Resolve: &ResolveFlags{},
		Stdout:  &stdout,
		Stderr:  &stderr,
	})
	require.NoError(t, err)
	assert.Empty(t, mem.Deletes())
	assert.Contains(t, stderr.String(), "running as a dry run")
	assert.Contains(t, stderr.String(), "1 planned")

	var printed report.Report
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &printed))
	assert.True(t, printed.DryRun)
	assert.Equal(t, 1, printed.Summary.Planned)
}

func TestExecuteMissingInput(t *testing.T) {
	dir := t.TempDir()
	app := newMock(t, catalog.NewMemory(), application.Settings{OutDir: dir})

	err := Execute(context.Background(), app, Job{
		Mode:    skusweep.ModeResolve,
		Run:     defaultRunFlags(),
		Resolve: &ResolveFlags{},
	})
	require.Error(t, err)
	var ioErr *errors.IOError
	assert.ErrorAs(t, err, &ioErr)
}

func TestExecuteUnusableExtract(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "products.csv")
	writeFile(t, in, "Handle,Title\nshirt,Shirt\n")

	mem := catalog.NewMemory(record("a1", "A", catalog.StateActive))
	app := newMock(t, mem, application.Settings{InFile: in, OutDir: dir})

	var stdout bytes.Buffer
	err := Execute(context.Background(), app, Job{
		Mode:   skusweep.ModeFind,
		Run:    defaultRunFlags(),
		Stdout: &stdout,
	})
	var inputErr *errors.InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, 1, inputErr.Row)
	assert.Equal(t, 0, mem.Lookups("A"))
}

type deniedCatalog struct{ *catalog.Memory }

func (deniedCatalog) CheckAccess(context.Context) (string, error) {
	return "", errors.NewAPIError("shopify", 401, "invalid token")
}

func TestExecuteFailedAccessCheckKeepsDuplicatesReport(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "products.csv")
	writeFile(t, in, "Handle,Variant SKU\nshirt,A\n")
	dups := filepath.Join(dir, constants.DuplicatesFile)
	writeFile(t, dups, "SKU,Count\nB,2\n")

	mem := catalog.NewMemory(record("a1", "A", catalog.StateActive))
	app := newMock(t, mem, application.Settings{InFile: in, OutDir: dir})
	app.CatalogFunc = func() (catalog.Client, error) { return deniedCatalog{mem}, nil }

	var stdout, stderr bytes.Buffer
	err := Execute(context.Background(), app, Job{
		Mode:   skusweep.ModeFind,
		Run:    defaultRunFlags(),
		Stdout: &stdout,
		Stderr: &stderr,
	})
	require.Error(t, err)
	assert.True(t, errors.IsAuthError(err))

	data, err := os.ReadFile(dups)
	require.NoError(t, err)
	assert.Equal(t, "SKU,Count\nB,2\n", string(data))
}

func TestDescribe(t *testing.T) {
	find := &report.Report{Mode: "find", Summary: report.Summary{Identifiers: 3, Duplicates: 1}}
	assert.Equal(t, "3 SKUs checked, 1 duplicated", Describe(find))

	dry := &report.Report{Mode: "resolve", DryRun: true, Summary: report.Summary{Identifiers: 3, Duplicates: 1, Planned: 2}}
	assert.Equal(t, "3 SKUs checked, 1 duplicated, 2 planned", Describe(dry))

	live := &report.Report{Mode: "resolve", Summary: report.Summary{Identifiers: 3, Resolved: 1, Deleted: 2}}
	assert.Equal(t, "3 SKUs checked, 1 resolved, 2 deleted, 0 failed", Describe(live))
}

func TestNewRunFlagSet(t *testing.T) {
	flags := &RunFlags{}
	fs := NewRunFlagSet(flags)
	require.NoError(t, fs.Parse([]string{"--in", "x.csv", "-w", "8", "--max-retries", "0", "--summary-md"}))

	assert.Equal(t, "x.csv", flags.Input)
	assert.Equal(t, 8, flags.Workers)
	assert.Equal(t, 0, flags.MaxRetries)
	assert.True(t, flags.SummaryMarkdown)
	assert.False(t, flags.SummaryYAML)
}
