package output

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/dchest/siphash"

	"relalg/pkg/execution"
	"relalg/pkg/iterator"
	"relalg/pkg/schema"
	"relalg/pkg/tuple"
	"relalg/pkg/types"
)

// digestKey seeds the result digest. Changing it changes every digest.
var digestKey = []byte("relalg.digest.v1")

// QueryResult is the rendered output of one query run.
type QueryResult struct {
	Name    string
	RunID   string
	Columns []string
	Rows    [][]string
	// Total counts every produced tuple; Rows holds at most the limit.
	Total    int
	Digest   uint64
	Duration time.Duration
}

// Truncated reports whether rows were dropped by the limit.
func (r *QueryResult) Truncated() bool {
	return r.Total > len(r.Rows)
}

func (r *QueryResult) Message() string {
	if r.Truncated() {
		return fmt.Sprintf("%d row(s) returned, showing %d", r.Total, len(r.Rows))
	}
	return fmt.Sprintf("%d row(s) returned", r.Total)
}

// Collect runs op to completion. Columns are the result keys followed by
// the result values; absent values are shown as their default. At most
// limit rows are kept (all when limit <= 0), but the digest covers every
// row.
func Collect(name string, op execution.TupleOp, limit int) (*QueryResult, error) {
	start := time.Now()
	s := op.ResultSchema()

	it, err := op.Run()
	if err != nil {
		return nil, err
	}
	defer iterator.Close(it)

	res := &QueryResult{Name: name, Columns: s.Names()}
	h := siphash.New(digestKey)
	var sep [1]byte

	record := func(t *tuple.Tuple) ([]string, error) {
		row, err := formatRow(s, t)
		if err != nil {
			return nil, err
		}
		for _, cell := range row {
			h.Write([]byte(cell))
			sep[0] = 0x1f
			h.Write(sep[:])
		}
		sep[0] = 0x1e
		h.Write(sep[:])
		res.Total++
		return row, nil
	}

	if limit > 0 {
		head, err := iterator.Take(it, limit)
		if err != nil {
			return nil, err
		}
		for _, t := range head {
			row, err := record(t)
			if err != nil {
				return nil, err
			}
			res.Rows = append(res.Rows, row)
		}
	}

	// Rows past the limit only feed the digest.
	err = iterator.ForEach(it, func(t *tuple.Tuple) error {
		row, err := record(t)
		if err != nil {
			return err
		}
		if limit <= 0 {
			res.Rows = append(res.Rows, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], uint64(res.Total))
	h.Write(n[:])
	res.Digest = h.Sum64()
	res.Duration = time.Since(start)
	return res, nil
}

// formatRow reads every column through a schema-aware parser, so absent
// values come back as their defaults.
func formatRow(s *schema.Schema, t *tuple.Tuple) ([]string, error) {
	p := tuple.NewParser(t, s)
	row := make([]string, 0, s.NumKeys()+s.NumVals())
	for _, name := range s.Names() {
		f := p.ReadField(name)
		if err := p.Error(); err != nil {
			return nil, err
		}
		row = append(row, formatField(f))
	}
	return row, nil
}

func formatField(f types.Field) string {
	if types.IsNull(f) {
		return "NULL"
	}
	return f.String()
}
