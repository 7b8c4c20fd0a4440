package execution

import (
	"fmt"
	"sort"
	"strings"

	dberror "relalg/pkg/error"
	"relalg/pkg/iterator"
	"relalg/pkg/monoid"
	"relalg/pkg/schema"
	"relalg/pkg/tuple"
	"relalg/pkg/types"
)

// MergeJoin is a sort-merge equi-join on the keys both inputs share.
//
// The result keys are the left keys followed by the right keys not on the
// left. The result values are the values present on both sides, each
// multiplied by its TimesFun. Groups of tuples with equal join keys are
// expanded into their Cartesian product.
//
// The common keys must be a prefix of the left keys and appear in the
// same relative order on the right.
type MergeJoin struct {
	p1, p2     TupleOp
	timesFuns  map[string]*monoid.TimesFun
	commonKeys []string
	schema     *schema.Schema
	opts       options
}

func NewMergeJoin(p1, p2 TupleOp, fns map[string]*monoid.TimesFun, opts ...Option) (*MergeJoin, error) {
	s1, s2 := p1.ResultSchema(), p2.ResultSchema()

	keys, common, err := unionKeys(s1.Keys(), s2.Keys())
	if err != nil {
		return nil, err.WithOperation("MergeJoin", "execution")
	}
	vals, err := intersectValues(s1.Vals(), s2.Vals(), fns)
	if err != nil {
		return nil, err.WithOperation("MergeJoin", "execution")
	}
	s, serr := schema.New(keys, vals)
	if serr != nil {
		return nil, dberror.Wrap(serr, dberror.CodeKeyValueOverlap, "MergeJoin", "execution")
	}

	cp := make(map[string]*monoid.TimesFun, len(fns))
	for name, f := range fns {
		cp[name] = f
	}

	j := &MergeJoin{
		p1:         p1,
		p2:         p2,
		timesFuns:  cp,
		commonKeys: common,
		schema:     s,
		opts:       buildOptions(opts),
	}
	logBuilt(j)
	return j, nil
}

// Join is NewMergeJoin returning a TupleOp.
func Join(p1, p2 TupleOp, fns map[string]*monoid.TimesFun, opts ...Option) (TupleOp, error) {
	return NewMergeJoin(p1, p2, fns, opts...)
}

// unionKeys returns a followed by the keys of b not in a, and the names
// both share.
func unionKeys(a, b []schema.Attribute) ([]schema.Attribute, []string, *dberror.DBError) {
	out := append([]schema.Attribute{}, a...)
	var common []string
	lastPos := -1

	for _, bk := range b {
		pos := -1
		for i, ak := range a {
			if ak.Name == bk.Name {
				pos = i
				break
			}
		}
		if pos < 0 {
			out = append(out, bk)
			continue
		}
		if !a[pos].Equals(bk) {
			return nil, nil, dberror.Newf(dberror.ErrCategorySchema, dberror.CodeKeyMismatch,
				"key %q has different types in parents: %s and %s", bk.Name, a[pos].Type, bk.Type)
		}
		if pos < lastPos {
			return nil, nil, dberror.Newf(dberror.ErrCategorySchema, dberror.CodeKeyMismatch,
				"common keys of %v and %v are not in the same relative order", a, b)
		}
		lastPos = pos
		common = append(common, bk.Name)
	}

	for i, name := range common {
		if a[i].Name != name {
			return nil, nil, dberror.Newf(dberror.ErrCategorySchema, dberror.CodeKeyMismatch,
				"common keys %v are not a prefix of the left keys %v", common, a)
		}
	}
	return out, common, nil
}

// intersectValues returns the values present on both sides, typed by the
// result type of their TimesFun and defaulting to its result zero.
func intersectValues(a, b []schema.ValAttribute, fns map[string]*monoid.TimesFun) ([]schema.ValAttribute, *dberror.DBError) {
	var out []schema.ValAttribute
	for _, av := range a {
		var bv *schema.ValAttribute
		for i := range b {
			if b[i].Name == av.Name {
				bv = &b[i]
				break
			}
		}
		if bv == nil {
			continue
		}

		f, ok := fns[av.Name]
		if !ok {
			return nil, dberror.Newf(dberror.ErrCategorySchema, dberror.CodeMissingFunction,
				"no times function for matching value attribute %v", av)
		}
		if !types.Equal(av.Default, f.LeftAnnihilator) {
			return nil, dberror.Newf(dberror.ErrCategorySchema, dberror.CodeAnnihilatorMismatch,
				"for attribute %q, left default %v != left annihilator %v", av.Name, av.Default, f.LeftAnnihilator)
		}
		if !types.Equal(bv.Default, f.RightAnnihilator) {
			return nil, dberror.Newf(dberror.ErrCategorySchema, dberror.CodeAnnihilatorMismatch,
				"for attribute %q, right default %v != right annihilator %v", av.Name, bv.Default, f.RightAnnihilator)
		}
		if err := f.VerifyAnnihilator(nil, nil); err != nil {
			return nil, dberror.Newf(dberror.ErrCategoryAlgebra, dberror.CodeAnnihilatorLaw,
				"times function for %q fails its annihilator check", av.Name).WithCause(err)
		}
		out = append(out, schema.NewValAttribute(av.Name, f.ResultType, f.ResultZero()))
	}

	if len(fns) != len(out) {
		return nil, dberror.Newf(dberror.ErrCategorySchema, dberror.CodeExtraFunction,
			"%d times functions given for %d matching value attributes %v", len(fns), len(out), out)
	}
	return out, nil
}

func (j *MergeJoin) ResultSchema() *schema.Schema { return j.schema }
func (j *MergeJoin) Parents() []TupleOp           { return []TupleOp{j.p1, j.p2} }
func (j *MergeJoin) Kind() Kind                   { return KindMergeJoin }

func (j *MergeJoin) String() string {
	names := make([]string, 0, len(j.timesFuns))
	for name, f := range j.timesFuns {
		names = append(names, fmt.Sprintf("%s=%s", name, f.Name))
	}
	sort.Strings(names)
	return fmt.Sprintf("MergeJoin(on=%s; %s)", strings.Join(j.commonKeys, ", "), strings.Join(names, ", "))
}

func (j *MergeJoin) withParents(parents []TupleOp) (TupleOp, error) {
	return NewMergeJoin(parents[0], parents[1], j.timesFuns, j.opts.list()...)
}

func (j *MergeJoin) Run() (iterator.TupleIterator, error) {
	in1, err := j.p1.Run()
	if err != nil {
		return nil, err
	}
	in2, err := j.p2.Run()
	if err != nil {
		return nil, err
	}

	cmp := tuple.NewKeyComparator(j.commonKeys)
	it := &mergeJoinIterator{
		i1:        mergeInput("MergeJoin", "left", in1, cmp, j.opts),
		i2:        mergeInput("MergeJoin", "right", in2, cmp, j.opts),
		cmp:       cmp,
		p1Keys:    j.p1.ResultSchema().KeyNames(),
		p2Keys:    j.p2.ResultSchema().KeyNames(),
		vals:      j.schema.ValNames(),
		timesFuns: j.timesFuns,
	}
	return iterator.NewBaseIterator(it.readNext).OnClose(func() error {
		return iterator.Close(it.i1, it.i2)
	}), nil
}

type mergeJoinIterator struct {
	i1, i2    iterator.PeekingIterator
	cmp       tuple.KeyComparator
	p1Keys    []string
	p2Keys    []string
	vals      []string
	timesFuns map[string]*monoid.TimesFun

	top *cartesianIterator
}

func (it *mergeJoinIterator) readNext() (*tuple.Tuple, error) {
	for {
		if it.top != nil {
			hasNext, err := it.top.HasNext()
			if err != nil {
				return nil, err
			}
			if hasNext {
				return it.top.Next()
			}
		}

		top, err := it.findTop()
		if err != nil || top == nil {
			return nil, err
		}
		it.top = top
	}
}

// findTop skips the side with the smaller key until both heads align, then
// sets up the Cartesian product of the aligned row groups. It returns nil
// once either side is exhausted, closing both.
func (it *mergeJoinIterator) findTop() (*cartesianIterator, error) {
	for {
		h1, err := it.i1.HasNext()
		if err != nil {
			return nil, err
		}
		h2, err := it.i2.HasNext()
		if err != nil {
			return nil, err
		}
		if !h1 || !h2 {
			// The other side may still hold an open source.
			return nil, iterator.Close(it.i1, it.i2)
		}

		t1, err := it.i1.Peek()
		if err != nil {
			return nil, err
		}
		t2, err := it.i2.Peek()
		if err != nil {
			return nil, err
		}

		switch sign(it.cmp.Compare(t1, t2)) {
		case -1:
			_, err = it.i1.Next()
		case 1:
			_, err = it.i2.Next()
		default:
			row, err := readRow(it.cmp, it.i2)
			if err != nil {
				return nil, err
			}
			one, err := newOneRowIterator(it.cmp, it.i1)
			if err != nil {
				return nil, err
			}
			return &cartesianIterator{first: one, second: row, times: it.times}, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// times multiplies the matching values of a pair and unions their keys.
// A value absent on one side takes that side's annihilator.
func (it *mergeJoinIterator) times(t1, t2 *tuple.Tuple) (*tuple.Tuple, error) {
	out := make(map[string]types.Field, len(it.vals)+len(it.p1Keys)+len(it.p2Keys))
	for _, name := range it.vals {
		f := it.timesFuns[name]
		a, inA := t1.Get(name)
		b, inB := t2.Get(name)
		if !inA && !inB {
			out[name] = f.ResultZero()
			continue
		}
		if !inA {
			a = f.LeftAnnihilator
		}
		if !inB {
			b = f.RightAnnihilator
		}
		r, err := f.Times(a, b)
		if err != nil {
			return nil, fmt.Errorf("multiply %s: %w", name, err)
		}
		out[name] = r
	}
	for _, name := range it.p2Keys {
		out[name], _ = t2.Get(name)
	}
	for _, name := range it.p1Keys {
		out[name], _ = t1.Get(name)
	}
	return tuple.New(out), nil
}

// readRow eagerly reads the row group starting at the head of iter.
func readRow(cmp tuple.KeyComparator, iter iterator.PeekingIterator) ([]*tuple.Tuple, error) {
	first, err := iter.Next()
	if err != nil {
		return nil, err
	}
	row := []*tuple.Tuple{first}
	for {
		hasNext, err := iter.HasNext()
		if err != nil {
			return nil, err
		}
		if !hasNext {
			return row, nil
		}
		t, err := iter.Peek()
		if err != nil {
			return nil, err
		}
		if cmp.Compare(first, t) != 0 {
			return row, nil
		}
		if _, err := iter.Next(); err != nil {
			return nil, err
		}
		row = append(row, t)
	}
}

// oneRowIterator lazily exposes the row group at the head of an iterator.
// It ends where the key changes; the underlying iterator is left positioned
// at the next group.
type oneRowIterator struct {
	cmp   tuple.KeyComparator
	iter  iterator.PeekingIterator
	first *tuple.Tuple
}

func newOneRowIterator(cmp tuple.KeyComparator, iter iterator.PeekingIterator) (*oneRowIterator, error) {
	first, err := iter.Peek()
	if err != nil {
		return nil, err
	}
	return &oneRowIterator{cmp: cmp, iter: iter, first: first}, nil
}

func (o *oneRowIterator) HasNext() (bool, error) {
	hasNext, err := o.iter.HasNext()
	if err != nil || !hasNext {
		return false, err
	}
	t, err := o.iter.Peek()
	if err != nil {
		return false, err
	}
	return o.cmp.Compare(o.first, t) == 0, nil
}

func (o *oneRowIterator) Peek() (*tuple.Tuple, error) {
	hasNext, err := o.HasNext()
	if err != nil {
		return nil, err
	}
	if !hasNext {
		return nil, o.pastRow()
	}
	return o.iter.Peek()
}

func (o *oneRowIterator) Next() (*tuple.Tuple, error) {
	hasNext, err := o.HasNext()
	if err != nil {
		return nil, err
	}
	if !hasNext {
		return nil, o.pastRow()
	}
	return o.iter.Next()
}

func (o *oneRowIterator) pastRow() error {
	return dberror.Newf(dberror.ErrCategoryRuntime, dberror.CodePastRow,
		"iterator is past the original row %v", o.first).
		WithOperation("MergeJoin", "execution")
}

// cartesianIterator pairs every tuple of first with every tuple of second,
// first-major. second is replayed once per tuple of first.
type cartesianIterator struct {
	first  iterator.PeekingIterator
	second []*tuple.Tuple
	idx    int
	times  func(a, b *tuple.Tuple) (*tuple.Tuple, error)
}

func (c *cartesianIterator) HasNext() (bool, error) {
	if len(c.second) == 0 {
		return false, nil
	}
	return c.first.HasNext()
}

func (c *cartesianIterator) Next() (*tuple.Tuple, error) {
	a, err := c.first.Peek()
	if err != nil {
		return nil, err
	}
	r, err := c.times(a, c.second[c.idx])
	if err != nil {
		return nil, err
	}
	c.idx++
	if c.idx == len(c.second) {
		c.idx = 0
		if _, err := c.first.Next(); err != nil {
			return nil, err
		}
	}
	return r, nil
}
