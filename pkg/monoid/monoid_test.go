package monoid

import (
	"errors"
	"testing"

	dberror "relalg/pkg/error"
	"relalg/pkg/types"
)

func long(v int64) types.Field {
	return types.NewLongField(v)
}

func TestWithIdentity(t *testing.T) {
	calls := 0
	p := WithIdentity(long(0), func(a, b types.Field) (types.Field, error) {
		calls++
		return types.Add(a, b)
	})

	got, err := p.Plus(long(0), long(7))
	if err != nil || !types.Equal(got, long(7)) {
		t.Errorf("plus(0, 7) = %v, %v", got, err)
	}
	got, _ = p.Plus(long(7), long(0))
	if !types.Equal(got, long(7)) {
		t.Errorf("plus(7, 0) = %v", got)
	}
	if calls != 0 {
		t.Errorf("identity arguments must not reach the wrapped function, got %d calls", calls)
	}

	got, _ = p.Plus(long(2), long(3))
	if !types.Equal(got, long(5)) || calls != 1 {
		t.Errorf("plus(2, 3) = %v after %d calls", got, calls)
	}

	if err := p.VerifyIdentity(long(-4), long(9)); err != nil {
		t.Errorf("VerifyIdentity failed: %v", err)
	}
}

func TestWithNullIdentity(t *testing.T) {
	p := WithNullIdentity(types.LongType, func(a, b types.Field) (types.Field, error) {
		return types.Max(a, b), nil
	})

	if !types.IsNull(p.Identity) {
		t.Fatalf("identity = %v, want null", p.Identity)
	}
	got, _ := p.Plus(types.Null(types.LongType), long(-3))
	if !types.Equal(got, long(-3)) {
		t.Errorf("plus(null, -3) = %v", got)
	}
	got, _ = p.Plus(long(1), long(4))
	if !types.Equal(got, long(4)) {
		t.Errorf("plus(1, 4) = %v", got)
	}
	if err := p.VerifyIdentity(types.LongType.Examples()...); err != nil {
		t.Errorf("VerifyIdentity failed: %v", err)
	}
}

func TestErrorPlus(t *testing.T) {
	p := ErrorPlus(long(0))

	got, err := p.Plus(long(0), long(3))
	if err != nil || !types.Equal(got, long(3)) {
		t.Errorf("plus(0, 3) = %v, %v", got, err)
	}

	_, err = p.Plus(long(1), long(3))
	if err == nil {
		t.Fatal("expected error combining two non-identity values")
	}
	if !dberror.HasCode(err, dberror.CodeNoPlusFunction) {
		t.Errorf("error %v lacks NO_PLUS_FUNCTION", err)
	}
	if cat, _ := dberror.CategoryOf(err); cat != dberror.ErrCategoryRuntime {
		t.Errorf("category = %s, want runtime", cat)
	}
}

func TestVerifyIdentityFailure(t *testing.T) {
	// Identity 1 is wrong for addition.
	p := NewPlusFun(long(1), types.Add)
	err := p.VerifyIdentity()
	if !dberror.HasCode(err, dberror.CodeIdentityLaw) {
		t.Errorf("VerifyIdentity = %v, want IDENTITY_LAW", err)
	}

	failing := NewPlusFun(long(0), func(a, b types.Field) (types.Field, error) {
		return nil, errors.New("boom")
	})
	if err := failing.VerifyIdentity(); err == nil {
		t.Error("expected error from failing plus function")
	}
}

func TestTimesFun(t *testing.T) {
	f, err := NewTimesFun(long(1), long(1), types.LongType, types.Mul)
	if err != nil {
		t.Fatalf("NewTimesFun failed: %v", err)
	}
	if !types.Equal(f.ResultZero(), long(1)) {
		t.Errorf("ResultZero = %v, want 1", f.ResultZero())
	}
	got, _ := f.Times(long(2), long(5))
	if !types.Equal(got, long(10)) {
		t.Errorf("times(2, 5) = %v", got)
	}
	if err := f.VerifyAnnihilator(nil, nil); err != nil {
		t.Errorf("annihilators alone must pass: %v", err)
	}
	if err := f.VerifyAnnihilator([]types.Field{long(3)}, nil); !dberror.HasCode(err, dberror.CodeAnnihilatorLaw) {
		t.Errorf("times(3, 1) != 1 should violate the law, got %v", err)
	}

	if _, err := NewTimesFun(long(1), long(1), types.IntType, types.Mul); !dberror.HasCode(err, dberror.CodeTypeMismatch) {
		t.Errorf("result type mismatch not detected: %v", err)
	}
}

func TestWithAnnihilators(t *testing.T) {
	f, err := WithAnnihilators(long(0), long(0), types.LongType, types.Mul)
	if err != nil {
		t.Fatalf("WithAnnihilators failed: %v", err)
	}
	samples := types.LongType.Examples()
	if err := f.VerifyAnnihilator(samples, samples); err != nil {
		t.Errorf("VerifyAnnihilator failed: %v", err)
	}
	got, _ := f.Times(long(3), long(4))
	if !types.Equal(got, long(12)) {
		t.Errorf("times(3, 4) = %v", got)
	}
}

func TestWithNullAnnihilators(t *testing.T) {
	f := WithNullAnnihilators(types.LongType, types.DoubleType, types.DoubleType,
		func(a, b types.Field) (types.Field, error) {
			return types.NewDoubleField(float64(a.(*types.LongField).Value) * b.(*types.DoubleField).Value), nil
		})

	if !types.IsNull(f.ResultZero()) || f.ResultZero().Type() != types.DoubleType {
		t.Errorf("ResultZero = %v", f.ResultZero())
	}
	got, _ := f.Times(long(2), types.NewDoubleField(1.5))
	if !types.Equal(got, types.NewDoubleField(3)) {
		t.Errorf("times(2, 1.5) = %v", got)
	}
	got, _ = f.Times(types.Null(types.LongType), types.NewDoubleField(1.5))
	if !types.IsNull(got) {
		t.Errorf("times(null, 1.5) = %v", got)
	}
	if err := f.VerifyAnnihilator(types.LongType.Examples(), types.DoubleType.Examples()); err != nil {
		t.Errorf("VerifyAnnihilator failed: %v", err)
	}
}

func TestStockFunctions(t *testing.T) {
	tests := []struct {
		name string
		fn   string
		typ  types.Type
		a, b types.Field
		want types.Field
	}{
		{"sum long", "sum", types.LongType, long(2), long(3), long(5)},
		{"sum decimal", "sum", types.DecimalType, types.NewDecimalFromInt(2), types.NewDecimalFromInt(3), types.NewDecimalFromInt(5)},
		{"product", "product", types.IntType, types.NewIntField(4), types.NewIntField(3), types.NewIntField(12)},
		{"min", "min", types.StringType, types.NewStringField("b"), types.NewStringField("a"), types.NewStringField("a")},
		{"max", "MAX", types.DoubleType, types.NewDoubleField(1), types.NewDoubleField(2), types.NewDoubleField(2)},
		{"any", "any", types.LongType, long(8), long(9), long(8)},
		{"sum skips null", "sum", types.LongType, types.Null(types.LongType), long(10), long(10)},
		{"product skips null", "product", types.IntType, types.NewIntField(4), types.Null(types.IntType), types.NewIntField(4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := PlusByName(tt.fn, tt.typ)
			if err != nil {
				t.Fatalf("PlusByName failed: %v", err)
			}
			if err := p.VerifyIdentity(tt.typ.Examples()...); err != nil {
				t.Errorf("VerifyIdentity failed: %v", err)
			}
			got, err := p.Plus(tt.a, tt.b)
			if err != nil {
				t.Fatalf("Plus failed: %v", err)
			}
			if !types.Equal(got, tt.want) {
				t.Errorf("Plus(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}

	if _, err := PlusByName("sum", types.StringType); err == nil {
		t.Error("sum over STRING should fail")
	}
	if _, err := PlusByName("median", types.LongType); !dberror.HasCode(err, dberror.CodeMissingFunction) {
		t.Errorf("unknown function error = %v", err)
	}

	m, err := TimesByName("multiply", types.LongType)
	if err != nil {
		t.Fatalf("TimesByName failed: %v", err)
	}
	if !types.Equal(m.ResultZero(), long(0)) {
		t.Errorf("multiply result zero = %v", m.ResultZero())
	}
	if _, err := TimesByName("divide", types.LongType); err == nil {
		t.Error("unknown times function should fail")
	}
}
