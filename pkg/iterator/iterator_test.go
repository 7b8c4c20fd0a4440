package iterator

import (
	"errors"
	"io"
	"testing"

	"relalg/pkg/tuple"
	"relalg/pkg/types"
)

func makeTuples(n int) []*tuple.Tuple {
	out := make([]*tuple.Tuple, n)
	for i := range out {
		out[i] = tuple.NewBuilder().Int("id", int32(i)).MustBuild() // #nosec G115
	}
	return out
}

func countingSource(tuples []*tuple.Tuple, calls *int) ReadNextFunc {
	i := 0
	return func() (*tuple.Tuple, error) {
		*calls++
		if i >= len(tuples) {
			return nil, nil
		}
		t := tuples[i]
		i++
		return t, nil
	}
}

func TestBaseIteratorLookahead(t *testing.T) {
	data := makeTuples(2)
	calls := 0
	it := NewBaseIterator(countingSource(data, &calls))

	for i := 0; i < 3; i++ {
		if ok, err := it.HasNext(); !ok || err != nil {
			t.Fatalf("HasNext = %v, %v", ok, err)
		}
	}
	if calls != 1 {
		t.Errorf("repeated HasNext read %d times, want 1", calls)
	}

	p, _ := it.Peek()
	n, _ := it.Next()
	if p != data[0] || n != data[0] {
		t.Errorf("Peek/Next returned %v and %v", p, n)
	}

	if _, err := it.Next(); err != nil {
		t.Fatalf("second Next failed: %v", err)
	}
	if ok, _ := it.HasNext(); ok {
		t.Error("iterator should be exhausted")
	}
	if _, err := it.Next(); err == nil {
		t.Error("Next past the end should fail")
	}

	before := calls
	_, _ = it.HasNext()
	if calls != before {
		t.Error("exhausted iterator must not call readNext again")
	}
}

func TestBaseIteratorStickyError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	it := NewBaseIterator(func() (*tuple.Tuple, error) {
		calls++
		return nil, boom
	})

	if _, err := it.HasNext(); !errors.Is(err, boom) {
		t.Fatalf("HasNext error = %v", err)
	}
	if _, err := it.Next(); !errors.Is(err, boom) {
		t.Fatalf("Next error = %v", err)
	}
	if calls != 1 {
		t.Errorf("readNext called %d times after failure", calls)
	}
}

func TestPeekingWrapsPlainIterators(t *testing.T) {
	data := makeTuples(3)
	calls := 0
	plain := struct{ TupleIterator }{NewBaseIterator(countingSource(data, &calls))}

	p := Peeking(plain)
	head, err := p.Peek()
	if err != nil || head != data[0] {
		t.Fatalf("Peek = %v, %v", head, err)
	}
	got, err := Collect(p)
	if err != nil || len(got) != 3 {
		t.Fatalf("Collect = %v, %v", got, err)
	}

	already := FromSlice(data)
	if Peeking(already) != already {
		t.Error("Peeking must not wrap an iterator that already peeks")
	}
}

func TestBaseIteratorClose(t *testing.T) {
	data := makeTuples(3)
	calls, closes := 0, 0
	it := NewBaseIterator(countingSource(data, &calls)).OnClose(func() error {
		closes++
		return nil
	})

	if _, err := it.Next(); err != nil {
		t.Fatal(err)
	}
	// Hide Peek so that Peeking has to wrap it.
	wrapped := Peeking(struct {
		TupleIterator
		io.Closer
	}{it, it})
	if err := Close(wrapped); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := it.Close(); err != nil || closes != 1 {
		t.Errorf("close func ran %d times, err %v", closes, err)
	}
	if ok, err := it.HasNext(); ok || err != nil {
		t.Errorf("HasNext after Close = %v, %v", ok, err)
	}
	if calls != 1 {
		t.Errorf("source read %d times after Close", calls)
	}

	boom := errors.New("close failed")
	failing := NewBaseIterator(countingSource(nil, &calls)).OnClose(func() error { return boom })
	if err := Close(FromSlice(data), failing); !errors.Is(err, boom) {
		t.Errorf("Close = %v, want %v", err, boom)
	}
}

func TestFromSlice(t *testing.T) {
	data := makeTuples(4)
	it := FromSlice(data)

	got, err := Take(it, 2)
	if err != nil || len(got) != 2 || got[1] != data[1] {
		t.Fatalf("Take = %v, %v", got, err)
	}
	rest, err := Collect(it)
	if err != nil || len(rest) != 2 {
		t.Errorf("Collect = %v, %v", rest, err)
	}
	if _, err := it.Peek(); err == nil {
		t.Error("Peek on exhausted slice should fail")
	}
}

func TestEmpty(t *testing.T) {
	it := Empty()
	if ok, err := it.HasNext(); ok || err != nil {
		t.Errorf("HasNext = %v, %v", ok, err)
	}
	got, err := Collect(it)
	if err != nil || len(got) != 0 {
		t.Errorf("Collect = %v, %v", got, err)
	}
}

func TestHelpers(t *testing.T) {
	data := makeTuples(5)

	seen := 0
	err := ForEach(FromSlice(data), func(*tuple.Tuple) error {
		seen++
		return nil
	})
	if err != nil || seen != 5 {
		t.Errorf("ForEach saw %d tuples, err %v", seen, err)
	}

	stop := errors.New("stop")
	seen = 0
	err = ForEach(FromSlice(data), func(*tuple.Tuple) error {
		seen++
		if seen == 2 {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) || seen != 2 {
		t.Errorf("ForEach stopped after %d tuples with %v", seen, err)
	}

	sum, err := Reduce(FromSlice(data), int32(0), func(acc int32, tup *tuple.Tuple) (int32, error) {
		f, _ := tup.Get("id")
		return acc + f.(*types.IntField).Value, nil
	})
	if err != nil || sum != 10 {
		t.Errorf("Reduce = %d, %v", sum, err)
	}

	if got, _ := Take(FromSlice(data), 0); len(got) != 0 {
		t.Errorf("Take(0) = %v", got)
	}
}

func TestSliceIteratorGeneric(t *testing.T) {
	it := NewSliceIterator([]string{"a", "b"})
	if it.Len() != 2 || it.Remaining() != 2 {
		t.Fatal("wrong length")
	}
	v, _ := it.Next()
	if v != "a" || it.Remaining() != 1 {
		t.Errorf("Next = %q, remaining %d", v, it.Remaining())
	}
	_, _ = it.Next()
	if it.HasNext() {
		t.Error("should be exhausted")
	}
	if _, err := it.Next(); err == nil {
		t.Error("Next past end should fail")
	}
}
