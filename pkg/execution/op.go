package execution

import (
	"relalg/pkg/iterator"
	"relalg/pkg/logging"
	"relalg/pkg/schema"
)

// Kind identifies the operator variant of a TupleOp.
type Kind int

const (
	KindLoad Kind = iota
	KindEmpty
	KindLoadData
	KindLoadOnce
	KindExt
	KindRename
	KindSort
	KindMergeUnion
	KindMergeAgg
	KindMergeJoin
)

func (k Kind) String() string {
	switch k {
	case KindLoad:
		return "Load"
	case KindEmpty:
		return "Empty"
	case KindLoadData:
		return "LoadData"
	case KindLoadOnce:
		return "LoadOnce"
	case KindExt:
		return "Ext"
	case KindRename:
		return "Rename"
	case KindSort:
		return "Sort"
	case KindMergeUnion:
		return "MergeUnion"
	case KindMergeAgg:
		return "MergeAgg"
	case KindMergeJoin:
		return "MergeJoin"
	default:
		return "Unknown"
	}
}

// TupleOp is a node of an operator tree. The set of implementations is
// closed: every TupleOp is one of the types in this package.
//
// Nodes are immutable. Parents are shared by reference and never mutated,
// so the same node may appear under several children.
type TupleOp interface {
	// ResultSchema is the schema of every tuple Run produces. It is
	// computed once, at construction, from the parents' schemas.
	ResultSchema() *schema.Schema

	// Run returns a fresh lazy iterator over the node's output, pulling
	// fresh iterators from the parents.
	Run() (iterator.TupleIterator, error)

	// Parents returns the node's inputs, left to right.
	Parents() []TupleOp

	Kind() Kind

	String() string

	// withParents rebuilds the node over new parents, re-running the
	// construction checks.
	withParents(parents []TupleOp) (TupleOp, error)
}

// Option configures the merge operators.
type Option func(*options)

type options struct {
	checkSorted bool
}

// WithSortCheck makes merge operators verify that each input is
// non-decreasing in key order, failing with UNSORTED_INPUT otherwise.
func WithSortCheck() Option {
	return func(o *options) {
		o.checkSorted = true
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) list() []Option {
	if o.checkSorted {
		return []Option{WithSortCheck()}
	}
	return nil
}

func logBuilt(op TupleOp) {
	logging.WithOp(op.Kind().String()).Debug("operator built", "schema", op.ResultSchema().String())
}
