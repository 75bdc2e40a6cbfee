package report

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/skusweep/pkg/constants"
	"github.com/agentstation/skusweep/pkg/errors"
)

// Sink receives entries as they are recorded.
type Sink interface {
	Write(e Entry) error
	Close() error
}

// syncer is implemented by *os.File.
type syncer interface {
	Sync() error
}

// JSONLSink writes one JSON object per line and syncs after every entry, so
// a crash leaves every recorded entry on disk.
type JSONLSink struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
}

// NewJSONLSink opens path for appending, creating it if needed.
func NewJSONLSink(path string) (*JSONLSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	return &JSONLSink{w: f, closer: f}, nil
}

// NewJSONLWriter writes JSON lines to w. Close does not close w.
func NewJSONLWriter(w io.Writer) *JSONLSink {
	return &JSONLSink{w: w}
}

// Write implements Sink.
func (s *JSONLSink) Write(e Entry) error {
	line, err := json.Marshal(e)
	if err != nil {
		return errors.WrapParse("json", "audit entry", err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(line); err != nil {
		return err
	}
	if f, ok := s.w.(syncer); ok {
		return f.Sync()
	}
	return nil
}

// Close implements Sink.
func (s *JSONLSink) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// CSVSink writes the two-column SKU,Count file of duplicate identifiers. Only
// entries with more than one record are written.
type CSVSink struct {
	mu     sync.Mutex
	w      *csv.Writer
	closer io.Closer
	file   *pendingFile
	seen   int
}

// NewCSVSink writes the duplicate table to a temporary file next to path.
// Close moves it over path once at least one entry has been recorded, so a
// run that stops before its first identifier leaves an earlier file as it was.
func NewCSVSink(path string) (*CSVSink, error) {
	pf, err := createPending(path)
	if err != nil {
		return nil, err
	}
	s, err := newCSV(pf.f, pf.f)
	if err != nil {
		pf.discard()
		return nil, errors.WrapIO("write", path, err)
	}
	s.file = pf
	return s, nil
}

// NewCSVWriter writes the duplicate table to w. Close does not close w.
func NewCSVWriter(w io.Writer) (*CSVSink, error) {
	return newCSV(w, nil)
}

func newCSV(w io.Writer, closer io.Closer) (*CSVSink, error) {
	s := &CSVSink{w: csv.NewWriter(w), closer: closer}
	if err := s.writeRow(constants.ColumnSKU, constants.ColumnCount); err != nil {
		return nil, err
	}
	return s, nil
}

// Write implements Sink.
func (s *CSVSink) Write(e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen++
	if e.GroupSize < 2 {
		return nil
	}
	return s.writeRow(string(e.Identifier), strconv.Itoa(e.GroupSize))
}

func (s *CSVSink) writeRow(fields ...string) error {
	if err := s.w.Write(fields); err != nil {
		return err
	}
	s.w.Flush()
	return s.w.Error()
}

// Close implements Sink. Calling it again is a no-op.
func (s *CSVSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file != nil {
		pf := s.file
		s.file = nil
		s.w.Flush()
		if err := s.w.Error(); err != nil {
			pf.discard()
			return err
		}
		if s.seen == 0 {
			pf.discard()
			return nil
		}
		return pf.commit()
	}
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return err
	}
	if s.closer == nil {
		return nil
	}
	closer := s.closer
	s.closer = nil
	return closer.Close()
}

// pendingFile is a temporary file renamed over its target on commit.
type pendingFile struct {
	f      *os.File
	target string
}

func createPending(target string) (*pendingFile, error) {
	f, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return nil, errors.WrapIO("create", target, err)
	}
	if err := f.Chmod(constants.FilePermissions); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return nil, errors.WrapIO("create", target, err)
	}
	return &pendingFile{f: f, target: target}, nil
}

func (p *pendingFile) commit() error {
	if err := p.f.Close(); err != nil {
		_ = os.Remove(p.f.Name())
		return errors.WrapIO("close", p.target, err)
	}
	if err := os.Rename(p.f.Name(), p.target); err != nil {
		_ = os.Remove(p.f.Name())
		return errors.WrapIO("rename", p.target, err)
	}
	return nil
}

func (p *pendingFile) discard() {
	_ = p.f.Close()
	_ = os.Remove(p.f.Name())
}

// LogSink writes each entry as a structured log event.
type LogSink struct {
	logger *zerolog.Logger
}

// NewLogSink logs entries to logger.
func NewLogSink(logger *zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Write implements Sink.
func (s *LogSink) Write(e Entry) error {
	ev := s.logger.Info()
	if e.Status == StatusErrored {
		ev = s.logger.Warn()
	}
	ev = ev.Str("sku", string(e.Identifier)).
		Str("status", string(e.Status)).
		Int("group_size", e.GroupSize)
	if e.Kept != "" {
		ev = ev.Str("kept", e.Kept)
	}
	if len(e.Deleted) > 0 {
		ev = ev.Strs("deleted", e.Deleted)
	}
	if len(e.AlreadyAbsent) > 0 {
		ev = ev.Strs("already_absent", e.AlreadyAbsent)
	}
	if len(e.Planned) > 0 {
		ev = ev.Strs("planned", e.Planned)
	}
	if len(e.Errors) > 0 {
		msgs := make([]string, 0, len(e.Errors))
		for _, err := range e.Errors {
			msgs = append(msgs, err.Message)
		}
		ev = ev.Strs("errors", msgs)
	}
	ev.Msg("Recorded identifier")
	return nil
}

// Close implements Sink.
func (s *LogSink) Close() error {
	return nil
}

type multiSink []Sink

// MultiSink fans entries out to every non-nil sink. Errors from all sinks
// are joined.
func MultiSink(sinks ...Sink) Sink {
	var out multiSink
	for _, s := range sinks {
		switch v := s.(type) {
		case nil:
		case multiSink:
			out = append(out, v...)
		default:
			out = append(out, v)
		}
	}
	return out
}

func (m multiSink) Write(e Entry) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m multiSink) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
