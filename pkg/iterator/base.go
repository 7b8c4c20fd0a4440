package iterator

import (
	"errors"
	"fmt"
	"io"

	"relalg/pkg/tuple"
)

// ReadNextFunc is the function signature for reading the next tuple from an iterator.
// Returns:
//   - *tuple.Tuple: Next tuple from the data source, or nil if no more tuples
//   - error: Error if reading fails, nil on success or end of data
type ReadNextFunc func() (*tuple.Tuple, error)

// BaseIterator implements the lookahead and end-of-data bookkeeping shared
// by every iterator in the engine. Concrete iterators only supply a
// ReadNextFunc.
//
// Once readNext reports end of data it is never called again, and the first
// error it returns is remembered and returned by every later call.
type BaseIterator struct {
	nextTuple    *tuple.Tuple
	done         bool
	closed       bool
	err          error
	readNextFunc ReadNextFunc
	closeFunc    func() error
}

// NewBaseIterator creates a new base iterator with the given readNext function.
func NewBaseIterator(readNextFunc ReadNextFunc) *BaseIterator {
	return &BaseIterator{readNextFunc: readNextFunc}
}

// OnClose registers fn to run the first time Close is called.
func (it *BaseIterator) OnClose(fn func() error) *BaseIterator {
	it.closeFunc = fn
	return it
}

// Close ends the iteration and releases what the iterator holds. Later
// calls to HasNext report no more tuples.
func (it *BaseIterator) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	it.done = true
	it.nextTuple = nil
	if it.closeFunc != nil {
		return it.closeFunc()
	}
	return nil
}

// fill caches the next tuple if nothing is cached yet.
func (it *BaseIterator) fill() error {
	if it.err != nil {
		return it.err
	}
	if it.nextTuple != nil || it.done {
		return nil
	}

	t, err := it.readNextFunc()
	if err != nil {
		it.err = err
		return err
	}
	if t == nil {
		it.done = true
		return nil
	}
	it.nextTuple = t
	return nil
}

// HasNext checks if there is a next tuple available without consuming it.
func (it *BaseIterator) HasNext() (bool, error) {
	if err := it.fill(); err != nil {
		return false, err
	}
	return it.nextTuple != nil, nil
}

// Peek returns the next tuple without consuming it.
func (it *BaseIterator) Peek() (*tuple.Tuple, error) {
	if err := it.fill(); err != nil {
		return nil, err
	}
	if it.nextTuple == nil {
		return nil, fmt.Errorf("no more tuples")
	}
	return it.nextTuple, nil
}

// Next returns the next tuple from the iterator and advances the iterator position.
func (it *BaseIterator) Next() (*tuple.Tuple, error) {
	result, err := it.Peek()
	if err != nil {
		return nil, err
	}
	it.nextTuple = nil
	return result, nil
}

// Peeking returns it as a PeekingIterator, wrapping it only when needed.
func Peeking(it TupleIterator) PeekingIterator {
	if p, ok := it.(PeekingIterator); ok {
		return p
	}
	return NewBaseIterator(func() (*tuple.Tuple, error) {
		hasNext, err := it.HasNext()
		if err != nil || !hasNext {
			return nil, err
		}
		return it.Next()
	}).OnClose(func() error {
		return Close(it)
	})
}

// Close closes every iterator that holds resources. Iterators that do
// not implement io.Closer are skipped.
func Close(its ...TupleIterator) error {
	var errs []error
	for _, it := range its {
		if c, ok := it.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}

// Empty returns an iterator with no tuples.
func Empty() PeekingIterator {
	return NewBaseIterator(func() (*tuple.Tuple, error) {
		return nil, nil
	})
}
