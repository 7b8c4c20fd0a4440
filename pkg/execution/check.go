package execution

import (
	dberror "relalg/pkg/error"
	"relalg/pkg/iterator"
	"relalg/pkg/tuple"
)

// sortChecked wraps in so that a tuple ordered before its predecessor
// under cmp fails with UNSORTED_INPUT.
func sortChecked(op string, side string, in iterator.TupleIterator, cmp tuple.KeyComparator) iterator.PeekingIterator {
	var prev *tuple.Tuple
	return iterator.NewBaseIterator(func() (*tuple.Tuple, error) {
		hasNext, err := in.HasNext()
		if err != nil || !hasNext {
			return nil, err
		}
		t, err := in.Next()
		if err != nil {
			return nil, err
		}
		if prev != nil && cmp.Compare(prev, t) > 0 {
			return nil, dberror.Newf(dberror.ErrCategoryRuntime, dberror.CodeUnsortedInput,
				"%s input %v follows %v, out of order on keys %v", side, t, prev, cmp.Names()).
				WithOperation(op, "execution")
		}
		prev = t
		return t, nil
	}).OnClose(func() error {
		return iterator.Close(in)
	})
}

// mergeInput prepares a parent iterator for a merge algorithm.
func mergeInput(op, side string, in iterator.TupleIterator, cmp tuple.KeyComparator, o options) iterator.PeekingIterator {
	if o.checkSorted {
		return sortChecked(op, side, in, cmp)
	}
	return iterator.Peeking(in)
}
