package plan

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	dberror "relalg/pkg/error"
	"relalg/pkg/iterator"
	"relalg/pkg/schema"
	"relalg/pkg/tuple"
	"relalg/pkg/types"
)

// CSVSource reads a table from a CSV file whose first record names the
// columns. Files ending in .zst are zstd-decompressed on the fly.
//
// Every key column must be present. Empty cells of value columns are left
// out of the tuple and so read as the attribute default; "null" is an
// explicit null.
type CSVSource struct {
	Path   string
	Schema *schema.Schema
}

func NewCSVSource(path string, s *schema.Schema) *CSVSource {
	return &CSVSource{Path: path, Schema: s}
}

// Iterator opens the file and streams its rows. The file is closed once
// the last row is read, a read fails or the iterator is closed.
func (c *CSVSource) Iterator() (iterator.TupleIterator, error) {
	f, err := os.Open(c.Path)
	if err != nil {
		return nil, dberror.Wrap(err, dberror.CodeSourceIO, "CSVSource", "plan")
	}

	closers := []io.Closer{f}
	var r io.Reader = f
	if strings.HasSuffix(c.Path, ".zst") {
		dec, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, dberror.Wrap(err, dberror.CodeSourceIO, "CSVSource", "plan")
		}
		closers = append(closers, dec.IOReadCloser())
		r = dec
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	cr.TrimLeadingSpace = true

	rr := &csvRows{path: c.Path, schema: c.Schema, cr: cr, closers: closers}
	if err := rr.readHeader(); err != nil {
		rr.close()
		return nil, err
	}
	return iterator.NewBaseIterator(rr.readNext).OnClose(rr.close), nil
}

type csvRows struct {
	path    string
	schema  *schema.Schema
	cr      *csv.Reader
	closers []io.Closer
	columns []schema.Attribute
	line    int
}

func (r *csvRows) readHeader() error {
	header, err := r.cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return r.errorf(dberror.ErrCategoryUser, dberror.CodeInvalidPlan, "missing header row")
		}
		return dberror.Wrap(err, dberror.CodeSourceIO, "CSVSource", "plan").WithDetail(r.path)
	}
	r.line = 1

	seen := make(map[string]bool, len(header))
	for _, name := range header {
		name = strings.TrimSpace(name)
		attr, ok := r.schema.Get(name)
		if !ok {
			return r.errorf(dberror.ErrCategoryUser, dberror.CodeUnknownAttribute,
				"column %q is not in schema %v", name, r.schema)
		}
		if seen[name] {
			return r.errorf(dberror.ErrCategoryUser, dberror.CodeDuplicateAttribute, "column %q appears twice", name)
		}
		seen[name] = true
		r.columns = append(r.columns, attr)
	}
	for _, k := range r.schema.KeyNames() {
		if !seen[k] {
			return r.errorf(dberror.ErrCategoryUser, dberror.CodeUnknownAttribute, "key column %q is missing", k)
		}
	}
	return nil
}

func (r *csvRows) readNext() (*tuple.Tuple, error) {
	record, err := r.cr.Read()
	if errors.Is(err, io.EOF) {
		r.close()
		return nil, nil
	}
	if err != nil {
		r.close()
		return nil, dberror.Wrap(err, dberror.CodeSourceIO, "CSVSource", "plan").WithDetail(r.path)
	}
	r.line++

	if len(record) != len(r.columns) {
		r.close()
		return nil, r.errorf(dberror.ErrCategoryUser, dberror.CodeInvalidPlan,
			"line %d has %d fields, header has %d", r.line, len(record), len(r.columns))
	}

	fields := make(map[string]types.Field, len(record))
	for i, cell := range record {
		attr := r.columns[i]
		if cell == "" {
			if r.schema.IsKey(attr.Name) {
				r.close()
				return nil, r.errorf(dberror.ErrCategoryUser, dberror.CodeInvalidPlan,
					"line %d: key %q is empty", r.line, attr.Name)
			}
			continue
		}
		f, err := types.ParseField(attr.Type, cell)
		if err != nil {
			r.close()
			return nil, r.errorf(dberror.ErrCategoryUser, dberror.CodeTypeMismatch,
				"line %d: column %q: %v", r.line, attr.Name, err)
		}
		fields[attr.Name] = f
	}
	return tuple.New(fields), nil
}

func (r *csvRows) close() error {
	var first error
	// Closed in reverse so the decoder goes before the file.
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	r.closers = nil
	return first
}

func (r *csvRows) errorf(cat dberror.ErrorCategory, code, format string, args ...any) error {
	return dberror.Newf(cat, code, format, args...).
		WithOperation("CSVSource", "plan").
		WithDetail(r.path)
}

// rowsSource converts inline plan rows to tuples of s.
func rowsSource(table string, s *schema.Schema, rows []map[string]any) ([]*tuple.Tuple, error) {
	out := make([]*tuple.Tuple, 0, len(rows))
	for i, row := range rows {
		b := tuple.ForSchema(s)
		for name, v := range row {
			attr, ok := s.Get(name)
			if !ok {
				return nil, invalidf("table %s row %d: attribute %q is not in %v", table, i, name, s)
			}
			text, ok := scalar(v)
			if !ok {
				continue
			}
			f, err := types.ParseField(attr.Type, text)
			if err != nil {
				return nil, invalidf("table %s row %d: attribute %q: %v", table, i, name, err).WithCause(err)
			}
			b.Field(name, f)
		}
		t, err := b.Build()
		if err != nil {
			return nil, invalidf("table %s row %d: %v", table, i, err).WithCause(err)
		}
		out = append(out, t)
	}
	return out, nil
}
