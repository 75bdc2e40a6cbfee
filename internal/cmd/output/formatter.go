// Package output renders run reports for the terminal or for pipes.
package output

import (
	"encoding/json"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/skusweep/internal/cmd/table"
	"github.com/agentstation/skusweep/pkg/errors"
)

// Formatter writes data to w.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// NewFormatter returns the formatter for format. Unknown formats print tables.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: "  "}
	case FormatYAML:
		return &YAMLFormatter{}
	}
	return &TableFormatter{Wide: format == FormatWide}
}

type JSONFormatter struct {
	Indent string
}

func (f *JSONFormatter) Format(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	if f.Indent != "" {
		enc.SetIndent("", f.Indent)
	}
	return enc.Encode(data)
}

type YAMLFormatter struct{}

func (f *YAMLFormatter) Format(w io.Writer, data any) error {
	b, err := yaml.MarshalWithOptions(data, yaml.Indent(2), yaml.IndentSequence(false))
	if err != nil {
		return errors.WrapParse("yaml", "output", err)
	}
	_, err = w.Write(b)
	return err
}

// TableFormatter renders table.Data, or a blank-line separated list of
// them. Anything else is printed as JSON.
type TableFormatter struct {
	Wide bool
}

func (f *TableFormatter) Format(w io.Writer, data any) error {
	var tables []table.Data
	switch v := data.(type) {
	case table.Data:
		tables = []table.Data{v}
	case []table.Data:
		tables = v
	default:
		return (&JSONFormatter{Indent: "  "}).Format(w, data)
	}

	for i, d := range tables {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := render(w, d); err != nil {
			return err
		}
	}
	return nil
}

func render(w io.Writer, data table.Data) error {
	var cfg tablewriter.Config
	if n := len(data.ColumnAlignment); n > 0 {
		align := make([]tw.Align, n)
		for i, a := range data.ColumnAlignment {
			align[i] = twAlign(a)
		}
		cfg.Header.Alignment = tw.CellAlignment{PerColumn: align}
		cfg.Row.Alignment = tw.CellAlignment{PerColumn: align}
	}
	t := tablewriter.NewTable(w, tablewriter.WithConfig(cfg))

	if len(data.Headers) > 0 {
		t.Header(cells(data.Headers, cases.Title(language.English, cases.NoLower).String)...)
	}
	for _, row := range data.Rows {
		if err := t.Append(cells(row, nil)...); err != nil {
			return err
		}
	}
	return t.Render()
}

func cells(row []string, transform func(string) string) []any {
	out := make([]any, len(row))
	for i, c := range row {
		if transform != nil {
			c = transform(c)
		}
		out[i] = c
	}
	return out
}

func twAlign(a table.Align) tw.Align {
	switch a {
	case table.AlignLeft:
		return tw.AlignLeft
	case table.AlignCenter:
		return tw.AlignCenter
	case table.AlignRight:
		return tw.AlignRight
	}
	return tw.Skip
}
