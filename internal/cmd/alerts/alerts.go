// Package alerts prints short status lines for humans at the end of a
// command, separate from the formatted report on stdout.
package alerts

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/agentstation/skusweep/pkg/report"
)

// Alert represents a status notification.
type Alert struct {
	Level   Level
	Message string
	Details []string
	Err     error
}

// New creates a new alert with the given level and message.
func New(level Level, message string) *Alert {
	return &Alert{Level: level, Message: message}
}

// WithError adds an underlying error to the alert.
func (a *Alert) WithError(err error) *Alert {
	a.Err = err
	return a
}

// WithDetails adds additional context details to the alert.
func (a *Alert) WithDetails(details ...string) *Alert {
	a.Details = append(a.Details, details...)
	return a
}

// String returns a string representation of the alert.
func (a *Alert) String() string {
	message := a.Level.Icon() + " " + a.Message
	if a.Err != nil {
		message += fmt.Sprintf(": %v", a.Err)
	}
	return message
}

// Writer prints alerts to a terminal or stream.
type Writer struct {
	w        io.Writer
	useColor bool
}

// NewWriter returns a Writer on w. Color is used when w is a terminal and
// noColor is false.
func NewWriter(w io.Writer, noColor bool) *Writer {
	return &Writer{w: w, useColor: !noColor && isTerminal(w)}
}

// Write prints the alert followed by its details, one per line.
func (w *Writer) Write(a *Alert) error {
	var b strings.Builder
	if w.useColor {
		b.WriteString(a.Level.Color())
		b.WriteString(a.String())
		b.WriteString(resetColor)
	} else {
		b.WriteString(a.String())
	}
	b.WriteString("\n")
	for _, d := range a.Details {
		b.WriteString("  ")
		b.WriteString(d)
		b.WriteString("\n")
	}
	_, err := io.WriteString(w.w, b.String())
	return err
}

// ForReport summarizes how a run went. describe renders the headline.
func ForReport(rep *report.Report, describe func(*report.Report) string) *Alert {
	s := rep.Summary
	switch {
	case rep.Incomplete != "":
		return New(LevelWarning, describe(rep)).WithDetails("run incomplete: " + rep.Incomplete)
	case s.Errored > 0 || s.Failed > 0:
		return New(LevelWarning, describe(rep)).
			WithDetails(fmt.Sprintf("%d SKUs errored, %d deletions failed; see the audit log", s.Errored, s.Failed))
	default:
		return New(LevelSuccess, describe(rep))
	}
}

func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}
