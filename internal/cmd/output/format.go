package output

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/agentstation/skusweep/pkg/errors"
)

// Format selects how a report is printed.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	// FormatWide is a table with reasons, deleted IDs and errors.
	FormatWide Format = "wide"
)

// ParseFormat validates s. The empty string is accepted and means detect.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case "", FormatTable, FormatJSON, FormatYAML, FormatWide:
		return f, nil
	}
	return "", errors.NewValidationError("format", s, "must be one of: table, json, yaml, wide")
}

// DetectFormat returns explicit when set. Otherwise terminals get a table
// and pipes get JSON.
func DetectFormat(explicit string) Format {
	if explicit != "" {
		return Format(strings.ToLower(explicit))
	}
	fd := os.Stdout.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return FormatTable
	}
	return FormatJSON
}
