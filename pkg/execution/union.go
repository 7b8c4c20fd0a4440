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

// mergeCore is the schema and combination state shared by MergeUnion and
// MergeAgg.
type mergeCore struct {
	schema   *schema.Schema
	given    map[string]*monoid.PlusFun
	plusFuns map[string]*monoid.PlusFun
	opts     options
}

func newMergeCore(op string, s1, s2 *schema.Schema, fns map[string]*monoid.PlusFun, opts options) (*mergeCore, error) {
	keys, err := intersectKeys(s1.Keys(), s2.Keys())
	if err != nil {
		return nil, err.WithOperation(op, "execution")
	}
	vals, err := unionValues(s1.Vals(), s2.Vals())
	if err != nil {
		return nil, err.WithOperation(op, "execution")
	}
	s, serr := schema.New(keys, vals)
	if serr != nil {
		return nil, dberror.Wrap(serr, dberror.CodeKeyValueOverlap, op, "execution")
	}

	c := &mergeCore{
		schema:   s,
		given:    make(map[string]*monoid.PlusFun, len(fns)),
		plusFuns: make(map[string]*monoid.PlusFun, len(vals)),
		opts:     opts,
	}

	for name, pf := range fns {
		v, ok := s.GetValue(name)
		if !ok {
			return nil, dberror.Newf(dberror.ErrCategorySchema, dberror.CodeExtraFunction,
				"plus function given for %q, which is not a value of %v", name, s).
				WithOperation(op, "execution")
		}
		if err := pf.VerifyIdentity(v.Type.Examples()...); err != nil {
			return nil, dberror.Wrap(err, dberror.CodeIdentityLaw, op, "execution")
		}
		if !types.Equal(pf.Identity, v.Default) {
			return nil, dberror.Newf(dberror.ErrCategorySchema, dberror.CodeIdentityMismatch,
				"plus function for %q has identity %v, but the attribute default is %v", name, pf.Identity, v.Default).
				WithOperation(op, "execution")
		}
		c.given[name] = pf
	}

	for _, v := range vals {
		if pf, ok := c.given[v.Name]; ok {
			c.plusFuns[v.Name] = pf
		} else {
			c.plusFuns[v.Name] = monoid.ErrorPlus(v.Default)
		}
	}
	return c, nil
}

// intersectKeys returns the common key prefix of a and b: the longest
// leading run of equally named attributes. Equal names in the run must have
// equal types, and no name past the run may appear on both sides.
func intersectKeys(a, b []schema.Attribute) ([]schema.Attribute, *dberror.DBError) {
	n := min(len(a), len(b))
	i := 0
	var common []schema.Attribute
	for i < n && a[i].Name == b[i].Name {
		if !a[i].Equals(b[i]) {
			return nil, dberror.Newf(dberror.ErrCategorySchema, dberror.CodeKeyMismatch,
				"matching key %q has different types in parents: %s and %s", a[i].Name, a[i].Type, b[i].Type)
		}
		common = append(common, a[i])
		i++
	}

	seen := make(map[string]bool, len(a)+len(b)-2*i)
	for _, attr := range append(append([]schema.Attribute{}, a[i:]...), b[i:]...) {
		if seen[attr.Name] {
			return nil, dberror.Newf(dberror.ErrCategorySchema, dberror.CodeKeyMismatch,
				"key attributes %v and %v share %q outside their common prefix", a, b, attr.Name)
		}
		seen[attr.Name] = true
	}
	return common, nil
}

// unionValues returns a followed by the values of b not in a. A name on
// both sides must have the same type and default.
func unionValues(a, b []schema.ValAttribute) ([]schema.ValAttribute, *dberror.DBError) {
	out := append([]schema.ValAttribute{}, a...)
	for _, bv := range b {
		found := false
		for _, av := range a {
			if av.Name != bv.Name {
				continue
			}
			if !av.Equals(bv) {
				return nil, dberror.Newf(dberror.ErrCategorySchema, dberror.CodeValueMismatch,
					"value %q differs between parents: %v and %v", av.Name, av, bv)
			}
			found = true
			break
		}
		if !found {
			out = append(out, bv)
		}
	}
	return out, nil
}

func (c *mergeCore) run(op string, in1, in2 iterator.TupleIterator) iterator.TupleIterator {
	cmp := tuple.NewKeyComparator(c.schema.KeyNames())
	it := &mergeUnionIterator{
		i1:       mergeInput(op, "left", in1, cmp, c.opts),
		i2:       mergeInput(op, "right", in2, cmp, c.opts),
		cmp:      cmp,
		keyNames: c.schema.KeyNames(),
		vals:     c.schema.Vals(),
		plusFuns: c.plusFuns,
	}
	return iterator.NewBaseIterator(it.readNext).OnClose(func() error {
		return iterator.Close(it.i1, it.i2)
	})
}

func (c *mergeCore) funcsString() string {
	names := make([]string, 0, len(c.given))
	for name, pf := range c.given {
		names = append(names, fmt.Sprintf("%s=%s", name, pf.Name))
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// MergeUnion merges two key-sorted inputs on their common key prefix,
// emitting one tuple per distinct prefix value with all values combined.
type MergeUnion struct {
	p1, p2 TupleOp
	*mergeCore
}

// NewMergeUnion creates a MergeUnion. Values without a plus function get
// a combiner that fails if two non-default values ever meet.
func NewMergeUnion(p1, p2 TupleOp, fns map[string]*monoid.PlusFun, opts ...Option) (*MergeUnion, error) {
	core, err := newMergeCore("MergeUnion", p1.ResultSchema(), p2.ResultSchema(), fns, buildOptions(opts))
	if err != nil {
		return nil, err
	}
	u := &MergeUnion{p1: p1, p2: p2, mergeCore: core}
	logBuilt(u)
	return u, nil
}

func (u *MergeUnion) ResultSchema() *schema.Schema { return u.schema }
func (u *MergeUnion) Parents() []TupleOp           { return []TupleOp{u.p1, u.p2} }
func (u *MergeUnion) Kind() Kind                   { return KindMergeUnion }

func (u *MergeUnion) String() string {
	return fmt.Sprintf("MergeUnion(%s)", u.funcsString())
}

func (u *MergeUnion) withParents(parents []TupleOp) (TupleOp, error) {
	return NewMergeUnion(parents[0], parents[1], u.given, u.opts.list()...)
}

func (u *MergeUnion) Run() (iterator.TupleIterator, error) {
	in1, err := u.p1.Run()
	if err != nil {
		return nil, err
	}
	in2, err := u.p2.Run()
	if err != nil {
		return nil, err
	}
	return u.run("MergeUnion", in1, in2), nil
}

// MergeAgg groups its input by a prefix of its keys, folding the values
// of each group with plus functions. It is a MergeUnion against an Empty
// input whose keys are the kept ones.
type MergeAgg struct {
	parent   TupleOp
	keysKept []string
	*mergeCore
}

// NewMergeAgg creates a MergeAgg keeping the named keys of parent. The
// kept keys must form a prefix of the parent's keys.
func NewMergeAgg(parent TupleOp, keysKept []string, fns map[string]*monoid.PlusFun, opts ...Option) (*MergeAgg, error) {
	ps := parent.ResultSchema()

	kept := make(map[string]bool, len(keysKept))
	for _, name := range keysKept {
		if !ps.IsKey(name) {
			return nil, dberror.Newf(dberror.ErrCategorySchema, dberror.CodeUnknownAttribute,
				"kept key %q is not a key of %v", name, ps).
				WithOperation("MergeAgg", "execution")
		}
		kept[name] = true
	}

	var emptyKeys []schema.Attribute
	for _, k := range ps.Keys() {
		if kept[k.Name] {
			emptyKeys = append(emptyKeys, k)
		}
	}
	es, err := schema.New(emptyKeys, nil)
	if err != nil {
		return nil, err
	}

	core, err := newMergeCore("MergeAgg", ps, es, fns, buildOptions(opts))
	if err != nil {
		return nil, err
	}

	names := make([]string, len(emptyKeys))
	for i, k := range emptyKeys {
		names[i] = k.Name
	}
	a := &MergeAgg{parent: parent, keysKept: names, mergeCore: core}
	logBuilt(a)
	return a, nil
}

func (a *MergeAgg) ResultSchema() *schema.Schema { return a.schema }
func (a *MergeAgg) Parents() []TupleOp           { return []TupleOp{a.parent} }
func (a *MergeAgg) Kind() Kind                   { return KindMergeAgg }

func (a *MergeAgg) String() string {
	return fmt.Sprintf("MergeAgg(keys=%s; %s)", strings.Join(a.keysKept, ", "), a.funcsString())
}

func (a *MergeAgg) withParents(parents []TupleOp) (TupleOp, error) {
	return NewMergeAgg(parents[0], a.keysKept, a.given, a.opts.list()...)
}

func (a *MergeAgg) Run() (iterator.TupleIterator, error) {
	in, err := a.parent.Run()
	if err != nil {
		return nil, err
	}
	return a.run("MergeAgg", in, iterator.Empty()), nil
}

// Union merges p1 and p2. When p2 is an Empty whose schema MergeAgg would
// reproduce, the union is built as a MergeAgg of p1.
func Union(p1, p2 TupleOp, fns map[string]*monoid.PlusFun, opts ...Option) (TupleOp, error) {
	if e, ok := p2.(*Empty); ok && aggEquivalent(p1.ResultSchema(), e.ResultSchema()) {
		return NewMergeAgg(p1, e.ResultSchema().KeyNames(), fns, opts...)
	}
	return NewMergeUnion(p1, p2, fns, opts...)
}

// Agg is NewMergeAgg returning a TupleOp.
func Agg(p TupleOp, keysKept []string, fns map[string]*monoid.PlusFun, opts ...Option) (TupleOp, error) {
	return NewMergeAgg(p, keysKept, fns, opts...)
}

// aggEquivalent reports whether the empty schema e has exactly the keys
// of p that it names, in p's order, and only values p also has.
func aggEquivalent(p, e *schema.Schema) bool {
	ek := e.Keys()
	j := 0
	for _, k := range p.Keys() {
		if j < len(ek) && k.Name == ek[j].Name {
			if !k.Equals(ek[j]) {
				return false
			}
			j++
		} else if e.Has(k.Name) {
			return false
		}
	}
	if j != len(ek) {
		return false
	}
	for _, v := range e.Vals() {
		pv, ok := p.GetValue(v.Name)
		if !ok || !pv.Equals(v) {
			return false
		}
	}
	return true
}

// mergeUnionIterator merges two peeking inputs. Each readNext consumes a
// whole row group: every tuple on either side that ties with the first
// one under the common-key comparator.
type mergeUnionIterator struct {
	i1, i2   iterator.PeekingIterator
	cmp      tuple.KeyComparator
	keyNames []string
	vals     []schema.ValAttribute
	plusFuns map[string]*monoid.PlusFun
}

// compare returns -1 when the next tuple comes from i1, 1 when it comes
// from i2 and 0 when both heads tie. ok is false once both are exhausted.
func (it *mergeUnionIterator) compare() (c int, ok bool, err error) {
	h1, err := it.i1.HasNext()
	if err != nil {
		return 0, false, err
	}
	h2, err := it.i2.HasNext()
	if err != nil {
		return 0, false, err
	}
	switch {
	case h1 && h2:
		t1, err := it.i1.Peek()
		if err != nil {
			return 0, false, err
		}
		t2, err := it.i2.Peek()
		if err != nil {
			return 0, false, err
		}
		return sign(it.cmp.Compare(t1, t2)), true, nil
	case h1:
		return -1, true, nil
	case h2:
		return 1, true, nil
	default:
		return 0, false, nil
	}
}

func (it *mergeUnionIterator) head(c int) (*tuple.Tuple, error) {
	if c == 1 {
		return it.i2.Peek()
	}
	return it.i1.Peek()
}

// step consumes the head(s) selected by c and returns their values with
// absent attributes filled by identities.
func (it *mergeUnionIterator) step(c int) (map[string]types.Field, error) {
	switch c {
	case -1:
		t, err := it.i1.Next()
		if err != nil {
			return nil, err
		}
		return it.addValues(t, nil)
	case 1:
		t, err := it.i2.Next()
		if err != nil {
			return nil, err
		}
		return it.addValues(nil, t)
	default:
		t1, err := it.i1.Next()
		if err != nil {
			return nil, err
		}
		t2, err := it.i2.Next()
		if err != nil {
			return nil, err
		}
		return it.addValues(t1, t2)
	}
}

func (it *mergeUnionIterator) addValues(t1, t2 *tuple.Tuple) (map[string]types.Field, error) {
	out := make(map[string]types.Field, len(it.vals))
	for _, v := range it.vals {
		var a, b types.Field
		var inA, inB bool
		if t1 != nil {
			a, inA = t1.Get(v.Name)
		}
		if t2 != nil {
			b, inB = t2.Get(v.Name)
		}
		pf := it.plusFuns[v.Name]
		switch {
		case inA && inB:
			r, err := pf.Plus(a, b)
			if err != nil {
				return nil, fmt.Errorf("combine %s: %w", v.Name, err)
			}
			out[v.Name] = r
		case inA:
			out[v.Name] = a
		case inB:
			out[v.Name] = b
		default:
			out[v.Name] = pf.Identity
		}
	}
	return out, nil
}

func (it *mergeUnionIterator) accumulate(acc, next map[string]types.Field) error {
	for _, v := range it.vals {
		r, err := it.plusFuns[v.Name].Plus(acc[v.Name], next[v.Name])
		if err != nil {
			return fmt.Errorf("combine %s: %w", v.Name, err)
		}
		acc[v.Name] = r
	}
	return nil
}

func (it *mergeUnionIterator) readNext() (*tuple.Tuple, error) {
	c, ok, err := it.compare()
	if err != nil || !ok {
		return nil, err
	}
	first, err := it.head(c)
	if err != nil {
		return nil, err
	}
	result, err := it.step(c)
	if err != nil {
		return nil, err
	}

	for {
		c, ok, err = it.compare()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		cur, err := it.head(c)
		if err != nil {
			return nil, err
		}
		if it.cmp.Compare(first, cur) != 0 {
			break
		}
		next, err := it.step(c)
		if err != nil {
			return nil, err
		}
		if err := it.accumulate(result, next); err != nil {
			return nil, err
		}
	}

	for _, name := range it.keyNames {
		f, _ := first.Get(name)
		result[name] = f
	}
	return tuple.New(result), nil
}

func sign(c int) int {
	switch {
	case c < 0:
		return -1
	case c > 0:
		return 1
	default:
		return 0
	}
}
