package execution

import (
	"fmt"
	"sync/atomic"

	dberror "relalg/pkg/error"
	"relalg/pkg/iterator"
	"relalg/pkg/logging"
	"relalg/pkg/schema"
	"relalg/pkg/tuple"
)

// Load is a named placeholder for a table. It cannot run; it exists to be
// replaced by a data leaf, usually through Transform, before execution.
type Load struct {
	Table  string
	schema *schema.Schema
}

func NewLoad(table string, s *schema.Schema) *Load {
	l := &Load{Table: table, schema: s}
	logBuilt(l)
	return l
}

func (l *Load) ResultSchema() *schema.Schema { return l.schema }
func (l *Load) Parents() []TupleOp           { return nil }
func (l *Load) Kind() Kind                   { return KindLoad }

func (l *Load) Run() (iterator.TupleIterator, error) {
	return nil, dberror.Newf(dberror.ErrCategoryRuntime, dberror.CodeLoadNotBound,
		"cannot run Load of table %q; bind a data source first", l.Table).
		WithOperation("Load", "execution")
}

func (l *Load) String() string {
	return fmt.Sprintf("Load(%s)", l.Table)
}

func (l *Load) withParents([]TupleOp) (TupleOp, error) { return l, nil }

// Empty produces no tuples. It is the identity of MergeUnion.
type Empty struct {
	schema *schema.Schema
}

func NewEmpty(s *schema.Schema) *Empty {
	e := &Empty{schema: s}
	logBuilt(e)
	return e
}

func (e *Empty) ResultSchema() *schema.Schema         { return e.schema }
func (e *Empty) Parents() []TupleOp                   { return nil }
func (e *Empty) Kind() Kind                           { return KindEmpty }
func (e *Empty) Run() (iterator.TupleIterator, error) { return iterator.Empty(), nil }
func (e *Empty) String() string                       { return "Empty" }

func (e *Empty) withParents([]TupleOp) (TupleOp, error) { return e, nil }

// Source is a restartable supply of tuples. Each call to Iterator starts
// from the beginning.
type Source interface {
	Iterator() (iterator.TupleIterator, error)
}

// SliceSource is a Source over tuples held in memory.
type SliceSource []*tuple.Tuple

func (s SliceSource) Iterator() (iterator.TupleIterator, error) {
	return iterator.FromSlice(s), nil
}

// SourceFunc adapts a function to Source.
type SourceFunc func() (iterator.TupleIterator, error)

func (f SourceFunc) Iterator() (iterator.TupleIterator, error) {
	return f()
}

// LoadData is a leaf over a restartable Source. The source must produce
// tuples that conform to the schema, sorted by its keys.
type LoadData struct {
	Name   string
	schema *schema.Schema
	source Source
}

func NewLoadData(name string, s *schema.Schema, src Source) *LoadData {
	l := &LoadData{Name: name, schema: s, source: src}
	logBuilt(l)
	return l
}

// NewLoadTuples validates tuples against s and wraps them in a LoadData.
func NewLoadTuples(name string, s *schema.Schema, tuples ...*tuple.Tuple) (*LoadData, error) {
	for _, t := range tuples {
		if err := tuple.Validate(t, s); err != nil {
			return nil, dberror.Wrap(err, dberror.CodeTypeMismatch, "LoadData", "execution")
		}
	}
	return NewLoadData(name, s, SliceSource(tuples)), nil
}

func (l *LoadData) ResultSchema() *schema.Schema { return l.schema }
func (l *LoadData) Parents() []TupleOp           { return nil }
func (l *LoadData) Kind() Kind                   { return KindLoadData }

func (l *LoadData) Run() (iterator.TupleIterator, error) {
	it, err := l.source.Iterator()
	if err != nil {
		return nil, dberror.Wrap(err, dberror.CodeSourceIO, "LoadData", "execution")
	}
	return it, nil
}

func (l *LoadData) String() string {
	return fmt.Sprintf("LoadData(%s)", l.Name)
}

func (l *LoadData) withParents([]TupleOp) (TupleOp, error) { return l, nil }

// LoadOnce is a leaf over a single-use iterator. Running it a second time
// logs a warning and hands out the same, by then exhausted, iterator.
type LoadOnce struct {
	Name   string
	schema *schema.Schema
	iter   iterator.TupleIterator
	ran    atomic.Bool
}

func NewLoadOnce(name string, s *schema.Schema, it iterator.TupleIterator) *LoadOnce {
	l := &LoadOnce{Name: name, schema: s, iter: it}
	logBuilt(l)
	return l
}

func (l *LoadOnce) ResultSchema() *schema.Schema { return l.schema }
func (l *LoadOnce) Parents() []TupleOp           { return nil }
func (l *LoadOnce) Kind() Kind                   { return KindLoadOnce }

func (l *LoadOnce) Run() (iterator.TupleIterator, error) {
	if l.ran.Swap(true) {
		logging.WithOp("LoadOnce").Warn("single-use source run more than once", "source", l.Name)
	}
	return l.iter, nil
}

func (l *LoadOnce) String() string {
	return fmt.Sprintf("LoadOnce(%s)", l.Name)
}

func (l *LoadOnce) withParents([]TupleOp) (TupleOp, error) { return l, nil }
