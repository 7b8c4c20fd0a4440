package iterator

import (
	"fmt"

	"relalg/pkg/tuple"
)

// SliceIterator provides a generic iterator over a slice of any type T.
// This encapsulates the common pattern of iterating through materialized data
// stored in a slice, eliminating duplicate slice+index logic across operators.
//
// The Sort operator and FromSlice are its users.
// Creating a new SliceIterator is cheap, so callers that need to replay a
// slice make a fresh one rather than rewinding.
type SliceIterator[T any] struct {
	data         []T
	currentIndex int
}

// NewSliceIterator creates a new iterator over the given slice.
func NewSliceIterator[T any](data []T) *SliceIterator[T] {
	return &SliceIterator[T]{data: data}
}

// HasNext checks if there are more elements available.
func (it *SliceIterator[T]) HasNext() bool {
	return it.currentIndex < len(it.data)
}

// Next returns the next element from the slice and advances the position.
func (it *SliceIterator[T]) Next() (T, error) {
	element, err := it.Peek()
	if err != nil {
		return element, err
	}
	it.currentIndex++
	return element, nil
}

// Peek returns the next element without advancing the position.
func (it *SliceIterator[T]) Peek() (T, error) {
	var zero T
	if it.currentIndex >= len(it.data) {
		return zero, fmt.Errorf("no more elements in slice iterator")
	}
	return it.data[it.currentIndex], nil
}

// Len returns the total number of elements in the slice.
func (it *SliceIterator[T]) Len() int {
	return len(it.data)
}

// Remaining returns the number of elements left to iterate.
func (it *SliceIterator[T]) Remaining() int {
	return len(it.data) - it.currentIndex
}

// tupleSlice adapts a SliceIterator of tuples to PeekingIterator.
type tupleSlice struct {
	*SliceIterator[*tuple.Tuple]
}

func (s tupleSlice) HasNext() (bool, error) {
	return s.SliceIterator.HasNext(), nil
}

// FromSlice returns a PeekingIterator over tuples. The slice is not copied
// and must not be modified while the iterator is in use.
func FromSlice(tuples []*tuple.Tuple) PeekingIterator {
	return tupleSlice{NewSliceIterator(tuples)}
}
