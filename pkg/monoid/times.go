package monoid

import (
	"fmt"

	dberror "relalg/pkg/error"
	"relalg/pkg/types"
)

// TimesFunc multiplies a left value by a right value.
type TimesFunc func(a, b types.Field) (types.Field, error)

// TimesFun is the multiplication applied to matching value attributes in
// a join. times(a, RightAnnihilator) and times(LeftAnnihilator, b) both
// equal ResultZero, which is computed once at construction.
type TimesFun struct {
	LeftAnnihilator  types.Field
	RightAnnihilator types.Field
	ResultType       types.Type
	Name             string
	times            TimesFunc
	resultZero       types.Field
}

// NewTimesFun wraps fn as is and computes the result zero.
func NewTimesFun(left, right types.Field, resultType types.Type, fn TimesFunc) (*TimesFun, error) {
	f := &TimesFun{
		LeftAnnihilator:  left,
		RightAnnihilator: right,
		ResultType:       resultType,
		Name:             "times",
		times:            fn,
	}

	zero, err := fn(left, right)
	if err != nil {
		return nil, dberror.Newf(dberror.ErrCategoryAlgebra, dberror.CodeAnnihilatorLaw,
			"cannot compute result zero of times(%v, %v)", left, right).WithCause(err)
	}
	if zero == nil {
		zero = types.Null(resultType)
	}
	if !types.CheckType(zero, resultType) {
		return nil, dberror.Newf(dberror.ErrCategoryAlgebra, dberror.CodeTypeMismatch,
			"result zero %v has type %s, want %s", zero, zero.Type(), resultType)
	}
	f.resultZero = zero
	return f, nil
}

// WithAnnihilators wraps fn so that either annihilator short-circuits to
// the result zero without calling fn.
func WithAnnihilators(left, right types.Field, resultType types.Type, fn TimesFunc) (*TimesFun, error) {
	zero, err := fn(left, right)
	if err != nil {
		return nil, dberror.Newf(dberror.ErrCategoryAlgebra, dberror.CodeAnnihilatorLaw,
			"cannot compute result zero of times(%v, %v)", left, right).WithCause(err)
	}
	return NewTimesFun(left, right, resultType, func(a, b types.Field) (types.Field, error) {
		if types.Equal(a, left) || types.Equal(b, right) {
			return zero, nil
		}
		return fn(a, b)
	})
}

// WithNullAnnihilators uses typed nulls as annihilators and as result
// zero. fn only ever sees non-null arguments.
func WithNullAnnihilators(left, right, resultType types.Type, fn TimesFunc) *TimesFun {
	zero := types.Null(resultType)
	return &TimesFun{
		LeftAnnihilator:  types.Null(left),
		RightAnnihilator: types.Null(right),
		ResultType:       resultType,
		Name:             "times",
		resultZero:       zero,
		times: func(a, b types.Field) (types.Field, error) {
			if types.IsNull(a) || types.IsNull(b) {
				return zero, nil
			}
			return fn(a, b)
		},
	}
}

// Named returns a copy of f labelled name.
func (f *TimesFun) Named(name string) *TimesFun {
	cp := *f
	cp.Name = name
	return &cp
}

func (f *TimesFun) Times(a, b types.Field) (types.Field, error) {
	return f.times(a, b)
}

// ResultZero is times(LeftAnnihilator, RightAnnihilator).
func (f *TimesFun) ResultZero() types.Field {
	return f.resultZero
}

// VerifyAnnihilator checks that every left sample times the right
// annihilator, and the left annihilator times every right sample, yields
// the result zero. The annihilators themselves are always checked.
func (f *TimesFun) VerifyAnnihilator(leftSamples, rightSamples []types.Field) error {
	lefts := append([]types.Field{f.LeftAnnihilator}, leftSamples...)
	rights := append([]types.Field{f.RightAnnihilator}, rightSamples...)

	for _, a := range lefts {
		r, err := f.times(a, f.RightAnnihilator)
		if err != nil || !types.Equal(r, f.resultZero) {
			return f.lawError(a, f.RightAnnihilator, err)
		}
	}
	for _, b := range rights {
		r, err := f.times(f.LeftAnnihilator, b)
		if err != nil || !types.Equal(r, f.resultZero) {
			return f.lawError(f.LeftAnnihilator, b, err)
		}
	}
	return nil
}

func (f *TimesFun) lawError(a, b types.Field, cause error) error {
	e := dberror.Newf(dberror.ErrCategoryAlgebra, dberror.CodeAnnihilatorLaw,
		"values %v and %v violate the annihilator requirement of %s for annihilators %v and %v",
		a, b, f.Name, f.LeftAnnihilator, f.RightAnnihilator)
	if cause != nil {
		e = e.WithCause(cause)
	}
	return e
}

func (f *TimesFun) String() string {
	return fmt.Sprintf("%s(annihilators=%v,%v -> %s)", f.Name, f.LeftAnnihilator, f.RightAnnihilator, f.ResultType)
}
