package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/skusweep/internal/cmd/table"
	"github.com/agentstation/skusweep/pkg/report"
)

func testReport() *report.Report {
	started := utc.New(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	return &report.Report{
		RunID:      "run-1",
		Mode:       "resolve",
		StartedAt:  started,
		FinishedAt: started,
		Summary: report.Summary{
			Identifiers: 2,
			Duplicates:  1,
			Resolved:    1,
			Noop:        1,
			Deleted:     1,
		},
		Entries: []report.Entry{
			{Identifier: "A-1", GroupSize: 2, Status: report.StatusResolved, Kept: "P-1", Deleted: []string{"P-2"}},
			{Identifier: "B-2", GroupSize: 1, Status: report.StatusNoop, Kept: "P-3"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "table", want: FormatTable},
		{in: "JSON", want: FormatJSON},
		{in: "yaml", want: FormatYAML},
		{in: "wide", want: FormatWide},
		{in: "", want: ""},
		{in: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectFormatExplicit(t *testing.T) {
	assert.Equal(t, FormatYAML, DetectFormat("YAML"))
}

func TestNewFormatter(t *testing.T) {
	assert.IsType(t, &JSONFormatter{}, NewFormatter(FormatJSON))
	assert.IsType(t, &YAMLFormatter{}, NewFormatter(FormatYAML))
	assert.IsType(t, &TableFormatter{}, NewFormatter(FormatTable))
	assert.True(t, NewFormatter(FormatWide).(*TableFormatter).Wide)
	assert.IsType(t, &TableFormatter{}, NewFormatter("unknown"))
}

func TestFormatReportJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatReport(&buf, testReport(), FormatJSON))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-1", decoded["run_id"])
	entries, ok := decoded["entries"].([]any)
	require.True(t, ok)
	assert.Len(t, entries, 2)
}

func TestFormatReportYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatReport(&buf, testReport(), FormatYAML))

	var decoded struct {
		RunID   string `yaml:"run_id"`
		Summary struct {
			Deleted int `yaml:"deleted"`
		} `yaml:"summary"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-1", decoded.RunID)
	assert.Equal(t, 1, decoded.Summary.Deleted)
}

func TestFormatReportTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatReport(&buf, testReport(), FormatTable))

	out := buf.String()
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "A-1")
	assert.Contains(t, out, "P-1")
	// single-record SKUs only show up in the wide view
	assert.NotContains(t, out, "B-2")
}

func TestFormatReportWide(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatReport(&buf, testReport(), FormatWide))

	out := buf.String()
	assert.Contains(t, out, "B-2")
	assert.Contains(t, out, "P-2")
}

func TestTableFormatterFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	f := &TableFormatter{}
	require.NoError(t, f.Format(&buf, map[string]int{"count": 3}))
	assert.JSONEq(t, `{"count":3}`, buf.String())
}

func TestTableFormatterRendersRows(t *testing.T) {
	var buf bytes.Buffer
	f := &TableFormatter{}
	data := table.Data{
		Headers: []string{"SKU", "Count"},
		Rows:    [][]string{{"X", "3"}},
	}
	require.NoError(t, f.Format(&buf, data))
	assert.True(t, strings.Contains(strings.ToUpper(buf.String()), "COUNT"))
	assert.Contains(t, buf.String(), "X")
}
