package execution

import (
	"testing"

	dberror "relalg/pkg/error"
	"relalg/pkg/monoid"
	"relalg/pkg/schema"
	"relalg/pkg/tuple"
	"relalg/pkg/types"
)

func TestMergeUnionSums(t *testing.T) {
	s := idLong(t, "v", 0)
	a := mustLoad(t, "a", s, row(1, "v", 5), row(2, "v", 3))
	b := mustLoad(t, "b", s, row(1, "v", 10), row(3, "v", 7))

	u, err := Union(a, b, map[string]*monoid.PlusFun{"v": sumLong(t)})
	if err != nil {
		t.Fatalf("Union failed: %v", err)
	}
	if u.Kind() != KindMergeUnion {
		t.Errorf("Kind = %v, want MergeUnion", u.Kind())
	}
	if !u.ResultSchema().Equals(s) {
		t.Errorf("schema = %v, want %v", u.ResultSchema(), s)
	}

	assertTuples(t, collect(t, u), row(1, "v", 15), row(2, "v", 3), row(3, "v", 7))
	// Every Run starts over.
	assertTuples(t, collect(t, u), row(1, "v", 15), row(2, "v", 3), row(3, "v", 7))
}

func TestMergeUnionSumSkipsNull(t *testing.T) {
	s := idLong(t, "v", 0)
	a := mustLoad(t, "a", s, tuple.NewBuilder().Int("id", 1).Null("v", types.LongType).MustBuild())
	b := mustLoad(t, "b", s, row(1, "v", 10))

	u, err := Union(a, b, map[string]*monoid.PlusFun{"v": sumLong(t)})
	if err != nil {
		t.Fatalf("Union failed: %v", err)
	}
	assertTuples(t, collect(t, u), row(1, "v", 10))
}

func TestUnionWithEmptyIsIdentity(t *testing.T) {
	s := idLong(t, "v", 0)
	tuples := []*tuple.Tuple{row(1, "v", 5), row(2, "v", 3), row(4, "v", 0)}
	a := mustLoad(t, "a", s, tuples...)

	u, err := Union(a, NewEmpty(s), map[string]*monoid.PlusFun{"v": sumLong(t)})
	if err != nil {
		t.Fatalf("Union failed: %v", err)
	}
	if u.Kind() != KindMergeAgg {
		t.Errorf("Kind = %v, want MergeAgg", u.Kind())
	}
	assertTuples(t, collect(t, u), tuples...)

	// An Empty on the left is not rewritten, and is still the identity.
	u, err = Union(NewEmpty(s), a, nil)
	if err != nil {
		t.Fatalf("Union failed: %v", err)
	}
	if u.Kind() != KindMergeUnion {
		t.Errorf("Kind = %v, want MergeUnion", u.Kind())
	}
	assertTuples(t, collect(t, u), tuples...)
}

func TestMergeUnionFillsDefaults(t *testing.T) {
	a := mustLoad(t, "a", idLong(t, "v", 0), row(1, "v", 5))
	b := mustLoad(t, "b", idLong(t, "w", 0), row(1, "w", 2), row(2, "w", 7))

	u, err := NewMergeUnion(a, b, nil)
	if err != nil {
		t.Fatalf("NewMergeUnion failed: %v", err)
	}
	if got := u.ResultSchema().ValNames(); len(got) != 2 || got[0] != "v" || got[1] != "w" {
		t.Errorf("vals = %v, want [v w]", got)
	}

	want := []*tuple.Tuple{
		tuple.NewBuilder().Int("id", 1).Long("v", 5).Long("w", 2).MustBuild(),
		tuple.NewBuilder().Int("id", 2).Long("v", 0).Long("w", 7).MustBuild(),
	}
	assertTuples(t, collect(t, u), want...)
}

func TestMergeUnionCommonPrefix(t *testing.T) {
	left := mustSchema(t,
		[]schema.Attribute{key("id", types.IntType), key("l", types.IntType)},
		[]schema.ValAttribute{val("v", types.LongType, long(0))})
	right := mustSchema(t,
		[]schema.Attribute{key("id", types.IntType), key("r", types.IntType)},
		[]schema.ValAttribute{val("v", types.LongType, long(0))})

	lrow := func(id, l int32, v int64) *tuple.Tuple {
		return tuple.NewBuilder().Int("id", id).Int("l", l).Long("v", v).MustBuild()
	}
	rrow := func(id, r int32, v int64) *tuple.Tuple {
		return tuple.NewBuilder().Int("id", id).Int("r", r).Long("v", v).MustBuild()
	}

	a := mustLoad(t, "a", left, lrow(1, 1, 1), lrow(1, 2, 2), lrow(3, 1, 4))
	b := mustLoad(t, "b", right, rrow(1, 9, 10), rrow(2, 1, 20))

	u, err := NewMergeUnion(a, b, map[string]*monoid.PlusFun{"v": sumLong(t)})
	if err != nil {
		t.Fatalf("NewMergeUnion failed: %v", err)
	}
	if got := u.ResultSchema().KeyNames(); len(got) != 1 || got[0] != "id" {
		t.Fatalf("keys = %v, want [id]", got)
	}
	assertTuples(t, collect(t, u), row(1, "v", 13), row(2, "v", 20), row(3, "v", 4))
}

func TestMergeUnionNoPlusFunction(t *testing.T) {
	s := idLong(t, "v", 0)
	a := mustLoad(t, "a", s, row(1, "v", 5), row(2, "v", 0))
	b := mustLoad(t, "b", s, row(1, "v", 10), row(2, "v", 8))

	u, err := NewMergeUnion(a, b, nil)
	if err != nil {
		t.Fatalf("construction must succeed without plus functions: %v", err)
	}
	err = collectErr(u)
	assertCode(t, err, dberror.CodeNoPlusFunction)
	if cat, _ := dberror.CategoryOf(err); cat != dberror.ErrCategoryRuntime {
		t.Errorf("category = %v, want runtime", cat)
	}

	// Values meeting a default combine without a plus function.
	a = mustLoad(t, "a", s, row(2, "v", 0))
	u, _ = NewMergeUnion(a, b, nil)
	assertTuples(t, collect(t, u), row(1, "v", 10), row(2, "v", 8))
}

func TestMergeUnionConstructionErrors(t *testing.T) {
	ids := idLong(t, "v", 0)
	badIdentity := monoid.NewPlusFun(long(1), types.Add)
	constant := monoid.NewPlusFun(long(0), func(a, b types.Field) (types.Field, error) {
		return long(0), nil
	})

	tests := []struct {
		name string
		p1   *schema.Schema
		p2   *schema.Schema
		fns  map[string]*monoid.PlusFun
		code string
	}{
		{
			name: "key type mismatch",
			p1:   ids,
			p2: mustSchema(t, []schema.Attribute{key("id", types.LongType)},
				[]schema.ValAttribute{val("v", types.LongType, long(0))}),
			code: dberror.CodeKeyMismatch,
		},
		{
			name: "shared key outside prefix",
			p1: mustSchema(t, []schema.Attribute{key("a", types.IntType), key("b", types.IntType)}, nil),
			p2: mustSchema(t, []schema.Attribute{key("b", types.IntType)}, nil),
			code: dberror.CodeKeyMismatch,
		},
		{
			name: "value default mismatch",
			p1:   ids,
			p2:   idLong(t, "v", 1),
			code: dberror.CodeValueMismatch,
		},
		{
			name: "value type mismatch",
			p1:   ids,
			p2: mustSchema(t, []schema.Attribute{key("id", types.IntType)},
				[]schema.ValAttribute{val("v", types.IntType, nil)}),
			code: dberror.CodeValueMismatch,
		},
		{
			name: "function for unknown value",
			p1:   ids,
			p2:   ids,
			fns:  map[string]*monoid.PlusFun{"nope": sumLong(t)},
			code: dberror.CodeExtraFunction,
		},
		{
			name: "identity differs from default",
			p1:   idLong(t, "v", 1),
			p2:   idLong(t, "v", 1),
			fns:  map[string]*monoid.PlusFun{"v": sumLong(t)},
			code: dberror.CodeIdentityMismatch,
		},
		{
			name: "identity law",
			p1:   idLong(t, "v", 1),
			p2:   idLong(t, "v", 1),
			fns:  map[string]*monoid.PlusFun{"v": badIdentity},
			code: dberror.CodeIdentityLaw,
		},
		{
			name: "identity law on type examples",
			p1:   ids,
			p2:   ids,
			fns:  map[string]*monoid.PlusFun{"v": constant},
			code: dberror.CodeIdentityLaw,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMergeUnion(NewEmpty(tt.p1), NewEmpty(tt.p2), tt.fns)
			assertCode(t, err, tt.code)
		})
	}
}

func TestMergeAgg(t *testing.T) {
	s := mustSchema(t,
		[]schema.Attribute{key("g", types.IntType), key("id", types.IntType)},
		[]schema.ValAttribute{
			val("v", types.LongType, long(0)),
			val("m", types.LongType, nil),
		})
	grow := func(g, id int32, v, m int64) *tuple.Tuple {
		return tuple.NewBuilder().Int("g", g).Int("id", id).Long("v", v).Long("m", m).MustBuild()
	}
	in := mustLoad(t, "in", s, grow(1, 1, 5, 4), grow(1, 2, 3, 9), grow(2, 1, 4, 1))

	agg, err := Agg(in, []string{"g"}, map[string]*monoid.PlusFun{
		"v": sumLong(t),
		"m": monoid.Max(types.LongType),
	})
	if err != nil {
		t.Fatalf("Agg failed: %v", err)
	}
	if got := agg.ResultSchema().KeyNames(); len(got) != 1 || got[0] != "g" {
		t.Errorf("keys = %v, want [g]", got)
	}

	want := []*tuple.Tuple{
		tuple.NewBuilder().Int("g", 1).Long("v", 8).Long("m", 9).MustBuild(),
		tuple.NewBuilder().Int("g", 2).Long("v", 4).Long("m", 1).MustBuild(),
	}
	assertTuples(t, collect(t, agg), want...)

	total, err := Agg(in, nil, map[string]*monoid.PlusFun{"v": sumLong(t), "m": monoid.Max(types.LongType)})
	if err != nil {
		t.Fatalf("Agg over no keys failed: %v", err)
	}
	assertTuples(t, collect(t, total), tuple.NewBuilder().Long("v", 12).Long("m", 9).MustBuild())
}

func TestMergeAggErrors(t *testing.T) {
	s := mustSchema(t,
		[]schema.Attribute{key("g", types.IntType), key("id", types.IntType)},
		[]schema.ValAttribute{val("v", types.LongType, long(0))})
	in := NewEmpty(s)

	_, err := NewMergeAgg(in, []string{"v"}, nil)
	assertCode(t, err, dberror.CodeUnknownAttribute)

	_, err = NewMergeAgg(in, []string{"id"}, nil)
	assertCode(t, err, dberror.CodeKeyMismatch)
}

func TestSortCheck(t *testing.T) {
	s := idLong(t, "v", 0)
	unsorted := mustLoad(t, "a", s, row(2, "v", 1), row(1, "v", 1))
	b := mustLoad(t, "b", s, row(1, "v", 1))
	fns := map[string]*monoid.PlusFun{"v": sumLong(t)}

	u, err := Union(unsorted, b, fns, WithSortCheck())
	if err != nil {
		t.Fatal(err)
	}
	assertCode(t, collectErr(u), dberror.CodeUnsortedInput)

	u, _ = Union(unsorted, b, fns)
	if err := collectErr(u); err != nil {
		t.Errorf("unchecked merge should not fail: %v", err)
	}

	// The option survives a rebuild.
	rebuilt, err := u.(*MergeUnion).withParents([]TupleOp{b, unsorted})
	if err != nil {
		t.Fatal(err)
	}
	if rebuilt.(*MergeUnion).opts.checkSorted {
		t.Error("rebuild of an unchecked union must stay unchecked")
	}
}
