// Package extract reads the ordered identifier sequence from a CSV extract.
//
// The identifier column is chosen from the header: "Variant SKU" when the
// extract has it, otherwise "SKU". Extraction stops at the first row without
// an identifier value; identifiers read before that row are still returned
// together with an *errors.InputError describing where reading stopped.
// Rows in errors are file lines: the header is row 1.
package extract

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/agentstation/skusweep/pkg/catalog"
	"github.com/agentstation/skusweep/pkg/constants"
	"github.com/agentstation/skusweep/pkg/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Reader reads identifiers from a CSV source.
type Reader struct {
	src    io.Reader
	path   string
	column string
	chosen string
}

// Option configures a Reader.
type Option func(*Reader)

// WithColumn forces the identifier column, bypassing the header fallback.
func WithColumn(name string) Option {
	return func(r *Reader) {
		r.column = name
	}
}

// WithPath names the source in error messages.
func WithPath(path string) Option {
	return func(r *Reader) {
		r.path = path
	}
}

// NewReader creates a Reader over src.
func NewReader(src io.Reader, opts ...Option) *Reader {
	r := &Reader{src: src}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReadFile reads all identifiers from the CSV file at path.
func ReadFile(path string, opts ...Option) ([]catalog.Identifier, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()

	opts = append([]Option{WithPath(path)}, opts...)
	return NewReader(f, opts...).Identifiers()
}

// Column returns the identifier column chosen by the last call to Identifiers.
func (r *Reader) Column() string {
	return r.chosen
}

// Identifiers returns the identifiers in extract order.
//
// An extract without any header yields no identifiers and no error. A header
// with neither identifier column is fatal: nothing is returned. A row with an
// empty identifier ends extraction at that row.
func (r *Reader) Identifiers() ([]catalog.Identifier, error) {
	br := bufio.NewReader(r.src)
	if peek, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(peek, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return []catalog.Identifier{}, nil
	}
	if err != nil {
		return nil, r.inputError(1, "", "cannot read header", err)
	}

	idx, column := r.pickColumn(header)
	if idx < 0 {
		return nil, r.inputError(1, column,
			"first row has neither a "+constants.ColumnVariantSKU+" nor a "+constants.ColumnSKU+" column", nil)
	}
	r.chosen = column

	ids := []catalog.Identifier{}
	for last := 1; ; {
		record, err := cr.Read()
		if err == io.EOF {
			return ids, nil
		}
		if err != nil {
			row := last + 1
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				row = perr.StartLine
			}
			return ids, r.inputError(row, column, "malformed row", err)
		}
		last, _ = cr.FieldPos(0)

		var value string
		if idx < len(record) {
			value = strings.TrimSpace(record[idx])
		}
		if value == "" {
			return ids, r.inputError(last, column, "missing "+column+" value", nil)
		}
		ids = append(ids, catalog.Identifier(value))
	}
}

// pickColumn returns the index of the identifier column in header, or -1.
func (r *Reader) pickColumn(header []string) (int, string) {
	candidates := []string{constants.ColumnVariantSKU, constants.ColumnSKU}
	if r.column != "" {
		candidates = []string{r.column}
	}

	for _, want := range candidates {
		for i, name := range header {
			if strings.TrimSpace(name) == want {
				return i, want
			}
		}
	}
	return -1, strings.Join(candidates, "|")
}

func (r *Reader) inputError(row int, column, msg string, err error) *errors.InputError {
	return &errors.InputError{
		Path:    r.path,
		Row:     row,
		Column:  column,
		Message: msg,
		Err:     err,
	}
}
