package execution

import (
	"testing"

	dberror "relalg/pkg/error"
	"relalg/pkg/iterator"
	"relalg/pkg/monoid"
	"relalg/pkg/schema"
	"relalg/pkg/tuple"
	"relalg/pkg/types"
)

func key(name string, t types.Type) schema.Attribute {
	return schema.NewAttribute(name, t)
}

func val(name string, t types.Type, def types.Field) schema.ValAttribute {
	return schema.NewValAttribute(name, t, def)
}

func long(v int64) types.Field {
	return types.NewLongField(v)
}

func mustSchema(t *testing.T, keys []schema.Attribute, vals []schema.ValAttribute) *schema.Schema {
	t.Helper()
	s, err := schema.New(keys, vals)
	if err != nil {
		t.Fatalf("failed to build schema: %v", err)
	}
	return s
}

// idLong is the schema [id:INT | name:LONG=def].
func idLong(t *testing.T, name string, def int64) *schema.Schema {
	return mustSchema(t,
		[]schema.Attribute{key("id", types.IntType)},
		[]schema.ValAttribute{val(name, types.LongType, long(def))})
}

func row(id int32, name string, v int64) *tuple.Tuple {
	return tuple.NewBuilder().Int("id", id).Long(name, v).MustBuild()
}

func mustLoad(t *testing.T, name string, s *schema.Schema, tuples ...*tuple.Tuple) *LoadData {
	t.Helper()
	l, err := NewLoadTuples(name, s, tuples...)
	if err != nil {
		t.Fatalf("failed to load %s: %v", name, err)
	}
	return l
}

func collect(t *testing.T, op TupleOp) []*tuple.Tuple {
	t.Helper()
	it, err := op.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	out, err := iterator.Collect(it)
	if err != nil {
		t.Fatalf("iteration failed: %v", err)
	}
	return out
}

// collectErr drains op and returns the first error.
func collectErr(op TupleOp) error {
	it, err := op.Run()
	if err != nil {
		return err
	}
	_, err = iterator.Collect(it)
	return err
}

func assertTuples(t *testing.T, got []*tuple.Tuple, want ...*tuple.Tuple) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d tuples %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if !got[i].Equals(want[i]) {
			t.Errorf("tuple %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if !dberror.HasCode(err, code) {
		t.Errorf("expected %s, got %v", code, err)
	}
}

func sumLong(t *testing.T) *monoid.PlusFun {
	t.Helper()
	p, err := monoid.Sum(types.LongType)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

// mulOne multiplies longs with 1 as both annihilators, so a value
// missing on one side passes the other through.
func mulOne(t *testing.T) *monoid.TimesFun {
	t.Helper()
	f, err := monoid.NewTimesFun(long(1), long(1), types.LongType, types.Mul)
	if err != nil {
		t.Fatal(err)
	}
	return f
}
