package iterator

import "relalg/pkg/tuple"

// Iterate drives iter until it is exhausted, fn returns false, or an error
// occurs.
func Iterate(iter TupleIterator, fn func(*tuple.Tuple) (continueLooping bool, err error)) error {
	for {
		hasNext, err := iter.HasNext()
		if err != nil || !hasNext {
			return err
		}

		tup, err := iter.Next()
		if err != nil {
			return err
		}

		more, err := fn(tup)
		if err != nil || !more {
			return err
		}
	}
}

// ForEach applies fn to each tuple, stopping at the first error.
func ForEach(iter TupleIterator, fn func(*tuple.Tuple) error) error {
	return Iterate(iter, func(tup *tuple.Tuple) (bool, error) {
		return true, fn(tup)
	})
}

// Take returns up to n tuples from the iterator.
func Take(iter TupleIterator, n int) ([]*tuple.Tuple, error) {
	if n <= 0 {
		return nil, nil
	}
	tuples := make([]*tuple.Tuple, 0, n)
	err := Iterate(iter, func(tup *tuple.Tuple) (bool, error) {
		tuples = append(tuples, tup)
		return len(tuples) < n, nil
	})
	return tuples, err
}

// Reduce folds every tuple into an accumulator.
func Reduce[T any](iter TupleIterator, initial T, accumulator func(T, *tuple.Tuple) (T, error)) (T, error) {
	result := initial
	err := Iterate(iter, func(tup *tuple.Tuple) (bool, error) {
		var err error
		result, err = accumulator(result, tup)
		return true, err
	})
	return result, err
}

// Collect consumes the iterator into a slice.
func Collect(iter TupleIterator) ([]*tuple.Tuple, error) {
	return Reduce(iter, []*tuple.Tuple(nil), func(acc []*tuple.Tuple, tup *tuple.Tuple) ([]*tuple.Tuple, error) {
		return append(acc, tup), nil
	})
}
