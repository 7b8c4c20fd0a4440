package monoid

import (
	"strings"

	dberror "relalg/pkg/error"
	"relalg/pkg/types"
)

// Sum adds numeric values; its identity is zero. Nulls are skipped.
func Sum(t types.Type) (*PlusFun, error) {
	if !t.IsNumeric() {
		return nil, notNumeric("sum", t)
	}
	return WithIdentity(t.Zero(), skipNulls(types.Add)).Named("sum"), nil
}

// Product multiplies numeric values; its identity is one. Nulls are skipped.
func Product(t types.Type) (*PlusFun, error) {
	if !t.IsNumeric() {
		return nil, notNumeric("product", t)
	}
	return WithIdentity(t.One(), skipNulls(types.Mul)).Named("product"), nil
}

// skipNulls makes an explicit null behave like an absent value.
func skipNulls(fn PlusFunc) PlusFunc {
	return func(a, b types.Field) (types.Field, error) {
		switch {
		case types.IsNull(a):
			return b, nil
		case types.IsNull(b):
			return a, nil
		default:
			return fn(a, b)
		}
	}
}

// Min keeps the smallest non-null value; its identity is null.
func Min(t types.Type) *PlusFun {
	return WithNullIdentity(t, func(a, b types.Field) (types.Field, error) {
		return types.Min(a, b), nil
	}).Named("min")
}

// Max keeps the largest non-null value; its identity is null.
func Max(t types.Type) *PlusFun {
	return WithNullIdentity(t, func(a, b types.Field) (types.Field, error) {
		return types.Max(a, b), nil
	}).Named("max")
}

// Any keeps the first non-null value it sees.
func Any(t types.Type) *PlusFun {
	return WithNullIdentity(t, func(a, _ types.Field) (types.Field, error) {
		return a, nil
	}).Named("any")
}

// Multiply is numeric multiplication with zero as both annihilators.
func Multiply(t types.Type) (*TimesFun, error) {
	if !t.IsNumeric() {
		return nil, notNumeric("multiply", t)
	}
	f, err := WithAnnihilators(t.Zero(), t.Zero(), t, types.Mul)
	if err != nil {
		return nil, err
	}
	return f.Named("multiply"), nil
}

// PlusByName resolves a stock plus function for attributes of type t.
func PlusByName(name string, t types.Type) (*PlusFun, error) {
	switch strings.ToLower(name) {
	case "sum":
		return Sum(t)
	case "product":
		return Product(t)
	case "min":
		return Min(t), nil
	case "max":
		return Max(t), nil
	case "any":
		return Any(t), nil
	default:
		return nil, dberror.Newf(dberror.ErrCategoryUser, dberror.CodeMissingFunction,
			"unknown plus function %q", name)
	}
}

// TimesByName resolves a stock times function for attributes of type t.
func TimesByName(name string, t types.Type) (*TimesFun, error) {
	switch strings.ToLower(name) {
	case "multiply", "times":
		return Multiply(t)
	default:
		return nil, dberror.Newf(dberror.ErrCategoryUser, dberror.CodeMissingFunction,
			"unknown times function %q", name)
	}
}

func notNumeric(fn string, t types.Type) error {
	return dberror.Newf(dberror.ErrCategoryUser, dberror.CodeTypeMismatch,
		"%s needs a numeric type, got %s", fn, t)
}
