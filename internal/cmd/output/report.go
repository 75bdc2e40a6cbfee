package output

import (
	"io"

	"github.com/agentstation/skusweep/internal/cmd/table"
	"github.com/agentstation/skusweep/pkg/report"
)

// FormatReport writes a run report. Table formats render the summary
// followed by one row per duplicate SKU; JSON and YAML emit the whole report.
func FormatReport(w io.Writer, r *report.Report, format Format) error {
	formatter := NewFormatter(format)

	var data any
	switch format {
	case FormatJSON, FormatYAML:
		data = r
	default:
		tables := []table.Data{table.SummaryToTableData(r)}
		entries := table.EntriesToTableData(r.Entries, format == FormatWide)
		if len(entries.Rows) > 0 {
			tables = append(tables, entries)
		}
		data = tables
	}

	return formatter.Format(w, data)
}
