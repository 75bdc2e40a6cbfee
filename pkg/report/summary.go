package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	md "github.com/nao1215/markdown"

	"github.com/agentstation/skusweep/pkg/constants"
	"github.com/agentstation/skusweep/pkg/errors"
)

// WriteYAML renders the report as YAML.
func WriteYAML(w io.Writer, r *Report) error {
	data, err := yaml.MarshalWithOptions(r,
		yaml.Indent(2),
		yaml.IndentSequence(false),
	)
	if err != nil {
		return errors.WrapParse("yaml", "report", err)
	}
	_, err = w.Write(data)
	return err
}

// WriteMarkdown renders a human-readable run summary.
func WriteMarkdown(w io.Writer, r *Report) error {
	doc := md.NewMarkdown(w)

	mode := r.Mode
	if r.DryRun {
		mode += " (dry run)"
	}
	doc.H1("skusweep run " + r.RunID).
		BulletList(
			"Mode: "+mode,
			"Started: "+r.StartedAt.Format(constants.TimeFormatHuman),
			"Finished: "+r.FinishedAt.Format(constants.TimeFormatHuman),
		)
	if r.Incomplete != "" {
		doc.LF().PlainText(md.Bold("Incomplete:") + " " + r.Incomplete).LF()
	}

	s := r.Summary
	doc.H2("Summary").Table(md.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Identifiers", strconv.Itoa(s.Identifiers)},
			{"Duplicates", strconv.Itoa(s.Duplicates)},
			{"No-op", strconv.Itoa(s.Noop)},
			{"Resolved", strconv.Itoa(s.Resolved)},
			{"Detected", strconv.Itoa(s.Detected)},
			{"Planned", strconv.Itoa(s.Planned)},
			{"Errored", strconv.Itoa(s.Errored)},
			{"Records deleted", strconv.Itoa(s.Deleted)},
			{"Records already absent", strconv.Itoa(s.AlreadyAbsent)},
			{"Records failed", strconv.Itoa(s.Failed)},
		},
	})

	var rows [][]string
	for _, e := range r.Entries {
		if e.GroupSize < 2 && e.Status != StatusErrored {
			continue
		}
		rows = append(rows, []string{
			md.Code(string(e.Identifier)),
			strconv.Itoa(e.GroupSize),
			string(e.Status),
			e.Kept,
			strings.Join(append(append(append([]string{}, e.Deleted...), e.AlreadyAbsent...), e.Planned...), ", "),
			errorText(e.Errors),
		})
	}
	if len(rows) > 0 {
		doc.H2("Duplicates").Table(md.TableSet{
			Header: []string{"SKU", "Records", "Status", "Kept", "Removed", "Errors"},
			Rows:   rows,
		})
	}

	return doc.Build()
}

func errorText(errs []EntryError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		if e.RecordID != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", e.RecordID, e.Message))
			continue
		}
		parts = append(parts, e.Message)
	}
	// Pipes would split the table cell.
	return strings.ReplaceAll(strings.Join(parts, "; "), "|", "/")
}

// SaveYAML writes the YAML summary to path.
func SaveYAML(path string, r *Report) error {
	return save(path, r, WriteYAML)
}

// SaveMarkdown writes the Markdown summary to path.
func SaveMarkdown(path string, r *Report) error {
	return save(path, r, WriteMarkdown)
}

func save(path string, r *Report, render func(io.Writer, *Report) error) error {
	var buf bytes.Buffer
	if err := render(&buf, r); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
