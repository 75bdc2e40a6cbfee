// Package table converts run reports into rows for table output.
package table

import (
	"strconv"
	"strings"

	"github.com/agentstation/skusweep/pkg/constants"
	"github.com/agentstation/skusweep/pkg/report"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// SummaryToTableData converts the counters of a report into a two column table.
func SummaryToTableData(r *report.Report) Data {
	s := r.Summary
	rows := [][]string{
		{"Run", r.RunID},
		{"Mode", r.Mode},
		{"Dry run", strconv.FormatBool(r.DryRun)},
		{"Started", r.StartedAt.Format(constants.TimeFormatHuman)},
		{"Finished", r.FinishedAt.Format(constants.TimeFormatHuman)},
		{"SKUs", strconv.Itoa(s.Identifiers)},
		{"Duplicates", strconv.Itoa(s.Duplicates)},
		{"Resolved", strconv.Itoa(s.Resolved)},
		{"Detected", strconv.Itoa(s.Detected)},
		{"Planned", strconv.Itoa(s.Planned)},
		{"Errored", strconv.Itoa(s.Errored)},
		{"Deleted", strconv.Itoa(s.Deleted)},
		{"Already absent", strconv.Itoa(s.AlreadyAbsent)},
		{"Failed", strconv.Itoa(s.Failed)},
	}
	if r.Incomplete != "" {
		rows = append(rows, []string{"Incomplete", r.Incomplete})
	}

	return Data{
		Headers:         []string{"Property", "Value"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight},
	}
}

// EntriesToTableData converts report entries into one row per SKU. Entries
// with a single record are skipped unless wide is set.
func EntriesToTableData(entries []report.Entry, wide bool) Data {
	headers := []string{"SKU", "Count", "Status", "Kept"}
	align := []Align{AlignLeft, AlignRight, AlignLeft, AlignLeft}
	if wide {
		headers = append(headers, "Reason", "Deleted", "Errors")
		align = append(align, AlignLeft, AlignLeft, AlignLeft)
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		if !wide && e.GroupSize < 2 && e.Status != report.StatusErrored {
			continue
		}
		row := []string{
			string(e.Identifier),
			strconv.Itoa(e.GroupSize),
			string(e.Status),
			FormatValue(e.Kept),
		}
		if wide {
			row = append(row,
				FormatValue(string(e.Reason)),
				FormatList(append(append([]string{}, e.Deleted...), e.Planned...)),
				FormatErrors(e.Errors),
			)
		}
		rows = append(rows, row)
	}

	return Data{
		Headers:         headers,
		Rows:            rows,
		ColumnAlignment: align,
	}
}

// FormatValue returns a dash for empty values.
func FormatValue(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// FormatList joins values with commas, or returns a dash for none.
func FormatList(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}

// FormatErrors renders entry errors as "kind: message" pairs.
func FormatErrors(errs []report.EntryError) string {
	if len(errs) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		msg := e.Kind + ": " + e.Message
		if e.RecordID != "" {
			msg = e.Kind + " " + e.RecordID + ": " + e.Message
		}
		parts = append(parts, msg)
	}
	return strings.Join(parts, "; ")
}
