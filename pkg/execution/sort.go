package execution

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"

	dberror "relalg/pkg/error"
	"relalg/pkg/iterator"
	"relalg/pkg/logging"
	"relalg/pkg/schema"
	"relalg/pkg/tuple"
)

// Sort reorders the parent's key attributes and sorts its output by the
// new order.
//
// Implementation:
//   - Materializes all tuples from the parent on the first pull
//   - Sorts them in memory, attribute by attribute, keeping equal tuples
//     in input order
//   - Streams the sorted tuples
//
// Sort is the only operator that holds its whole input: O(n log n)
// comparisons and O(n) space.
type Sort struct {
	parent TupleOp
	order  []string
	schema *schema.Schema
}

// NewSort creates a Sort by order, which must be a permutation of the
// parent's key names.
func NewSort(parent TupleOp, order []string) (*Sort, error) {
	ps := parent.ResultSchema()

	if !sameNames(order, ps.KeyNames()) {
		return nil, dberror.Newf(dberror.ErrCategorySchema, dberror.CodeSortKeys,
			"sort order %v is not a permutation of the keys of %v", order, ps).
			WithOperation("Sort", "execution")
	}

	keys := make([]schema.Attribute, len(order))
	for i, name := range order {
		keys[i] = ps.Key(ps.KeyIndex(name))
	}
	s, err := schema.New(keys, ps.Vals())
	if err != nil {
		return nil, err
	}

	so := &Sort{parent: parent, order: slices.Clone(order), schema: s}
	logBuilt(so)
	return so, nil
}

func sameNames(order, keys []string) bool {
	if len(order) != len(keys) {
		return false
	}
	seen := make(map[string]bool, len(order))
	for _, name := range order {
		if seen[name] {
			return false
		}
		seen[name] = true
	}
	for _, k := range keys {
		if !seen[k] {
			return false
		}
	}
	return true
}

func (s *Sort) ResultSchema() *schema.Schema { return s.schema }
func (s *Sort) Parents() []TupleOp           { return []TupleOp{s.parent} }
func (s *Sort) Kind() Kind                   { return KindSort }

func (s *Sort) String() string {
	return fmt.Sprintf("Sort(%s)", strings.Join(s.order, ", "))
}

func (s *Sort) withParents(parents []TupleOp) (TupleOp, error) {
	return NewSort(parents[0], s.order)
}

func (s *Sort) Run() (iterator.TupleIterator, error) {
	in, err := s.parent.Run()
	if err != nil {
		return nil, err
	}
	return sortedIterator(in, s.order), nil
}

// SortedSource wraps src so that every iterator it hands out is sorted by
// order. Like Sort, it materializes the whole source on the first pull.
func SortedSource(src Source, order []string) Source {
	order = slices.Clone(order)
	return SourceFunc(func() (iterator.TupleIterator, error) {
		in, err := src.Iterator()
		if err != nil {
			return nil, err
		}
		return sortedIterator(in, order), nil
	})
}

func sortedIterator(in iterator.TupleIterator, order []string) iterator.TupleIterator {
	var sorted *iterator.SliceIterator[*tuple.Tuple]
	return iterator.NewBaseIterator(func() (*tuple.Tuple, error) {
		if sorted == nil {
			tuples, err := iterator.Collect(in)
			if err != nil {
				return nil, fmt.Errorf("error fetching tuples to sort: %w", err)
			}
			cmp := tuple.NewKeyComparator(order)
			slices.SortStableFunc(tuples, cmp.Compare)
			logging.WithOp("Sort").Debug("materialized", "rows", len(tuples))
			sorted = iterator.NewSliceIterator(tuples)
		}
		if !sorted.HasNext() {
			return nil, nil
		}
		return sorted.Next()
	}).OnClose(func() error {
		return iterator.Close(in)
	})
}
