package output

import (
	"errors"
	"strings"
	"testing"

	"relalg/pkg/execution"
	"relalg/pkg/schema"
	"relalg/pkg/tuple"
	"relalg/pkg/types"
)

func testOp(t *testing.T, rows ...*tuple.Tuple) execution.TupleOp {
	t.Helper()
	s, err := schema.New(
		[]schema.Attribute{schema.NewAttribute("id", types.IntType)},
		[]schema.ValAttribute{
			schema.NewValAttribute("v", types.LongType, types.NewLongField(0)),
			schema.NewValAttribute("name", types.StringType, nil),
		})
	if err != nil {
		t.Fatal(err)
	}
	op, err := execution.NewLoadTuples("t", s, rows...)
	if err != nil {
		t.Fatal(err)
	}
	return op
}

func TestCollect(t *testing.T) {
	op := testOp(t,
		tuple.NewBuilder().Int("id", 1).Long("v", 5).String("name", "ann").MustBuild(),
		tuple.NewBuilder().Int("id", 2).MustBuild(),
		tuple.NewBuilder().Int("id", 3).Long("v", 7).MustBuild(),
	)

	res, err := Collect("q", op, 0)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if got := strings.Join(res.Columns, ","); got != "id,v,name" {
		t.Errorf("Columns = %s", got)
	}
	want := [][]string{{"1", "5", "ann"}, {"2", "0", "NULL"}, {"3", "7", "NULL"}}
	if len(res.Rows) != len(want) {
		t.Fatalf("Rows = %v", res.Rows)
	}
	for i := range want {
		if strings.Join(res.Rows[i], ",") != strings.Join(want[i], ",") {
			t.Errorf("row %d = %v, want %v", i, res.Rows[i], want[i])
		}
	}
	if res.Truncated() || res.Message() != "3 row(s) returned" {
		t.Errorf("Message = %q", res.Message())
	}
}

func TestCollectLimitAndDigest(t *testing.T) {
	rows := []*tuple.Tuple{
		tuple.NewBuilder().Int("id", 1).Long("v", 5).MustBuild(),
		tuple.NewBuilder().Int("id", 2).Long("v", 6).MustBuild(),
		tuple.NewBuilder().Int("id", 3).Long("v", 7).MustBuild(),
	}

	full, err := Collect("q", testOp(t, rows...), 0)
	if err != nil {
		t.Fatal(err)
	}
	limited, err := Collect("q", testOp(t, rows...), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited.Rows) != 2 || limited.Total != 3 || !limited.Truncated() {
		t.Errorf("limited = %d rows of %d", len(limited.Rows), limited.Total)
	}
	if limited.Message() != "3 row(s) returned, showing 2" {
		t.Errorf("Message = %q", limited.Message())
	}
	if full.Digest != limited.Digest {
		t.Error("the limit must not change the digest")
	}

	// An explicit default renders like an absent value.
	implicit, err := Collect("q", testOp(t, tuple.NewBuilder().Int("id", 1).MustBuild()), 0)
	if err != nil {
		t.Fatal(err)
	}
	explicit, err := Collect("q", testOp(t, tuple.NewBuilder().Int("id", 1).Long("v", 0).MustBuild()), 0)
	if err != nil {
		t.Fatal(err)
	}
	if implicit.Digest != explicit.Digest {
		t.Error("defaults must digest like absent values")
	}

	other, err := Collect("q", testOp(t, rows[:2]...), 0)
	if err != nil {
		t.Fatal(err)
	}
	if other.Digest == full.Digest {
		t.Error("different results should digest differently")
	}
}

func TestCollectRunError(t *testing.T) {
	s, _ := schema.New([]schema.Attribute{schema.NewAttribute("id", types.IntType)}, nil)
	if _, err := Collect("q", execution.NewLoad("t", s), 0); err == nil {
		t.Error("expected an error for an unbound load")
	}
}

func TestRender(t *testing.T) {
	res, err := Collect("totals", testOp(t, tuple.NewBuilder().Int("id", 42).Long("v", 99).MustBuild()), 0)
	if err != nil {
		t.Fatal(err)
	}
	res.RunID = "abc"

	rd := NewRenderer()
	out := rd.Result(res, 1)
	for _, want := range []string{"totals", "run abc", "id", "name", "42", "99", "1 row(s) returned", "digest"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered result missing %q:\n%s", want, out)
		}
	}
	if h, r := strings.Index(out, "name"), strings.Index(out, "42"); h < 0 || r < 0 || h > r {
		t.Errorf("header should come before the first row:\n%s", out)
	}

	plan := rd.Plan("q", "Sort(id) [id:INT | ]\n  Load(t) [id:INT | ]\n")
	if !strings.Contains(plan, "Load(t)") || !strings.Contains(plan, "Sort(id)") {
		t.Errorf("rendered plan:\n%s", plan)
	}

	if got := rd.Error(errors.New("boom")); !strings.Contains(got, "ERROR") || !strings.Contains(got, "boom") {
		t.Errorf("rendered error = %q", got)
	}
}
