package iterator

import "relalg/pkg/tuple"

// TupleIterator is a lazy, single-pass sequence of tuples. Nothing is
// read from the underlying source until the caller asks for it.
type TupleIterator interface {
	// HasNext checks if there are more tuples available without consuming them.
	HasNext() (bool, error)

	// Next retrieves and returns the next tuple from the iterator.
	// Calling Next on an exhausted iterator is an error.
	Next() (*tuple.Tuple, error)
}

// PeekingIterator is a TupleIterator that can show its next tuple without
// consuming it. The merge algorithms compare the heads of their inputs
// through Peek.
type PeekingIterator interface {
	TupleIterator

	// Peek returns the tuple the next call to Next would return.
	Peek() (*tuple.Tuple, error)
}
