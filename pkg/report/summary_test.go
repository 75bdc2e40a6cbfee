package report_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/skusweep/pkg/report"
)

func sampleReport(t *testing.T) *report.Report {
	t.Helper()
	r := report.New(report.WithRunID("run-42"), report.WithMode("resolve"), report.WithClock(fixedClock()))
	require.NoError(t, r.Record(report.Entry{Identifier: "A", GroupSize: 1, Status: report.StatusNoop}))
	require.NoError(t, r.Record(report.Entry{
		Identifier: "B", GroupSize: 2, Status: report.StatusResolved, Kept: "b1", Deleted: []string{"b2"},
	}))
	require.NoError(t, r.Record(report.Entry{
		Identifier: "D", Status: report.StatusErrored,
		Errors: []report.EntryError{{Kind: report.KindLookup, Message: "a | b"}},
	}))
	rep, err := r.Finalize()
	require.NoError(t, err)
	return rep
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteYAML(&buf, sampleReport(t)))

	var decoded struct {
		RunID   string `yaml:"run_id"`
		Summary struct {
			Identifiers int `yaml:"identifiers"`
			Resolved    int `yaml:"resolved"`
		} `yaml:"summary"`
		Entries []struct {
			SKU    string `yaml:"sku"`
			Status string `yaml:"status"`
		} `yaml:"entries"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-42", decoded.RunID)
	assert.Equal(t, 3, decoded.Summary.Identifiers)
	assert.Equal(t, 1, decoded.Summary.Resolved)
	require.Len(t, decoded.Entries, 3)
	assert.Equal(t, "B", decoded.Entries[1].SKU)
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteMarkdown(&buf, sampleReport(t)))
	out := buf.String()

	assert.Contains(t, out, "# skusweep run run-42")
	assert.Contains(t, out, "## Summary")
	assert.Contains(t, out, "## Duplicates")
	assert.Contains(t, out, "`B`")
	assert.Contains(t, out, "a / b", "pipes are escaped in cells")
	assert.NotContains(t, out, "`A`", "no-op entries are left out")
}

func TestSaveSummaries(t *testing.T) {
	dir := t.TempDir()
	rep := sampleReport(t)

	require.NoError(t, report.SaveYAML(filepath.Join(dir, "summary.yaml"), rep))
	require.NoError(t, report.SaveMarkdown(filepath.Join(dir, "summary.md"), rep))

	for _, name := range []string{"summary.yaml", "summary.md"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}

	err := report.SaveYAML(filepath.Join(dir, "missing", "summary.yaml"), rep)
	assert.Error(t, err)
}
