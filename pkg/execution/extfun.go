package execution

import (
	"fmt"

	dberror "relalg/pkg/error"
	"relalg/pkg/iterator"
	"relalg/pkg/primitives"
	"relalg/pkg/schema"
	"relalg/pkg/tuple"
	"relalg/pkg/types"
)

// ExtFun is a flatmap over tuples. Schema declares the key and value
// attributes the function adds; every sub-tuple Apply emits must stay
// within them. The parent's keys are prepended by Ext and must not be
// emitted again.
type ExtFun interface {
	Schema() *schema.Schema
	Apply(t *tuple.Tuple) (iterator.TupleIterator, error)
}

type funcExt struct {
	name   string
	schema *schema.Schema
	fn     func(*tuple.Tuple) (iterator.TupleIterator, error)
}

func (f *funcExt) Schema() *schema.Schema { return f.schema }

func (f *funcExt) Apply(t *tuple.Tuple) (iterator.TupleIterator, error) {
	return f.fn(t)
}

func (f *funcExt) String() string {
	return fmt.Sprintf("%s%v", f.name, f.schema)
}

// NewExtFun builds an ExtFun whose sub-tuples are produced lazily.
func NewExtFun(s *schema.Schema, fn func(*tuple.Tuple) (iterator.TupleIterator, error)) ExtFun {
	return &funcExt{name: "ext", schema: s, fn: fn}
}

// NewFlatMap builds an ExtFun from a function returning a slice of
// sub-tuples.
func NewFlatMap(s *schema.Schema, fn func(*tuple.Tuple) ([]*tuple.Tuple, error)) ExtFun {
	return &funcExt{
		name:   "flatmap",
		schema: s,
		fn: func(t *tuple.Tuple) (iterator.TupleIterator, error) {
			subs, err := fn(t)
			if err != nil {
				return nil, err
			}
			return iterator.FromSlice(subs), nil
		},
	}
}

// NewMapFun builds an ExtFun that emits exactly one sub-tuple per input
// and adds no keys. fn should map default inputs to default outputs; this
// is not checked.
func NewMapFun(vals []schema.ValAttribute, fn func(*tuple.Tuple) (*tuple.Tuple, error)) (ExtFun, error) {
	s, err := schema.New(nil, vals)
	if err != nil {
		return nil, err
	}
	return &funcExt{
		name:   "map",
		schema: s,
		fn: func(t *tuple.Tuple) (iterator.TupleIterator, error) {
			out, err := fn(t)
			if err != nil {
				return nil, err
			}
			return iterator.FromSlice([]*tuple.Tuple{out}), nil
		},
	}, nil
}

// NewProjectFun is a MapFun keeping the named value attributes of parent
// unchanged.
func NewProjectFun(parent *schema.Schema, names ...string) (ExtFun, error) {
	vals := make([]schema.ValAttribute, 0, len(names))
	for _, name := range names {
		v, ok := parent.GetValue(name)
		if !ok {
			return nil, dberror.Newf(dberror.ErrCategorySchema, dberror.CodeUnknownAttribute,
				"cannot project %q: not a value of %v", name, parent)
		}
		vals = append(vals, v)
	}
	return NewMapFun(vals, func(t *tuple.Tuple) (*tuple.Tuple, error) {
		return t.Project(names...), nil
	})
}

// NewFilterFun builds an ExtFun that keeps the parent's value attributes
// and emits them only for tuples satisfying attr op operand. Ext over it
// acts as a selection.
func NewFilterFun(parent *schema.Schema, attr string, op primitives.Predicate, operand types.Field) (ExtFun, error) {
	pred, err := NewPredicate(parent, attr, op, operand)
	if err != nil {
		return nil, err
	}
	s, err := schema.New(nil, parent.Vals())
	if err != nil {
		return nil, err
	}
	valNames := parent.ValNames()

	return &funcExt{
		name:   "filter(" + pred.String() + ")",
		schema: s,
		fn: func(t *tuple.Tuple) (iterator.TupleIterator, error) {
			ok, err := pred.Filter(t)
			if err != nil {
				return nil, err
			}
			if !ok {
				return iterator.Empty(), nil
			}
			return iterator.FromSlice([]*tuple.Tuple{t.Project(valNames...)}), nil
		},
	}, nil
}
