package execution

import (
	"fmt"

	dberror "relalg/pkg/error"
	"relalg/pkg/iterator"
	"relalg/pkg/schema"
	"relalg/pkg/tuple"
)

// Ext applies an ExtFun to every parent tuple. The result keys are the
// parent's keys followed by the ExtFun's keys; the result values are the
// ExtFun's values.
type Ext struct {
	parent TupleOp
	fn     ExtFun
	schema *schema.Schema
}

func NewExt(parent TupleOp, fn ExtFun) (*Ext, error) {
	ps, es := parent.ResultSchema(), fn.Schema()

	keys := append(ps.Keys(), es.Keys()...)
	s, err := schema.New(keys, es.Vals())
	if err != nil {
		return nil, dberror.Wrap(err, dberror.CodeDuplicateAttribute, "Ext", "execution")
	}

	e := &Ext{parent: parent, fn: fn, schema: s}
	logBuilt(e)
	return e, nil
}

func (e *Ext) ResultSchema() *schema.Schema { return e.schema }
func (e *Ext) Parents() []TupleOp           { return []TupleOp{e.parent} }
func (e *Ext) Kind() Kind                   { return KindExt }
func (e *Ext) Fun() ExtFun                  { return e.fn }

func (e *Ext) String() string {
	return fmt.Sprintf("Ext(%v)", e.fn)
}

func (e *Ext) withParents(parents []TupleOp) (TupleOp, error) {
	return NewExt(parents[0], e.fn)
}

func (e *Ext) Run() (iterator.TupleIterator, error) {
	in, err := e.parent.Run()
	if err != nil {
		return nil, err
	}
	it := &extIterator{
		parent:     in,
		fn:         e.fn,
		parentKeys: e.parent.ResultSchema().KeyNames(),
	}
	return iterator.NewBaseIterator(it.readNext).OnClose(func() error {
		return iterator.Close(it.sub, it.parent)
	}), nil
}

// extIterator serves the sub-tuples of one parent tuple at a time,
// skipping parents whose sub-sequence is empty.
type extIterator struct {
	parent     iterator.TupleIterator
	fn         ExtFun
	parentKeys []string

	sub    iterator.TupleIterator
	prefix *tuple.Tuple
}

func (it *extIterator) readNext() (*tuple.Tuple, error) {
	for {
		if it.sub != nil {
			hasNext, err := it.sub.HasNext()
			if err != nil {
				return nil, err
			}
			if hasNext {
				st, err := it.sub.Next()
				if err != nil {
					return nil, err
				}
				return it.prepend(st)
			}
			it.sub = nil
		}

		hasNext, err := it.parent.HasNext()
		if err != nil || !hasNext {
			return nil, err
		}
		pt, err := it.parent.Next()
		if err != nil {
			return nil, err
		}

		sub, err := it.fn.Apply(pt)
		if err != nil {
			return nil, fmt.Errorf("ext function on %v: %w", pt, err)
		}
		it.sub = sub
		it.prefix = pt.Project(it.parentKeys...)
	}
}

// prepend strips any parent key names from st, checks the remainder
// against the declared ext schema and adds the parent's key fields.
func (it *extIterator) prepend(st *tuple.Tuple) (*tuple.Tuple, error) {
	st = st.Filter(func(name string) bool {
		return !it.prefix.Has(name)
	})
	if err := tuple.Validate(st, it.fn.Schema()); err != nil {
		return nil, dberror.Newf(dberror.ErrCategoryRuntime, dberror.CodeExtSchemaViolation,
			"sub-tuple %v emitted for parent keys %v violates the ext schema %v", st, it.prefix, it.fn.Schema()).
			WithOperation("Ext", "execution").
			WithCause(err)
	}
	return it.prefix.Merge(st), nil
}
