package monoid

import (
	"fmt"

	dberror "relalg/pkg/error"
	"relalg/pkg/types"
)

// PlusFunc combines two values of the same type.
type PlusFunc func(a, b types.Field) (types.Field, error)

// PlusFun is a commutative monoid operator: plus(identity, x) and
// plus(x, identity) both equal x.
type PlusFun struct {
	Identity types.Field
	Name     string
	plus     PlusFunc
}

// NewPlusFun wraps fn as is. fn is responsible for handling identity
// arguments itself.
func NewPlusFun(identity types.Field, fn PlusFunc) *PlusFun {
	return &PlusFun{Identity: identity, Name: "plus", plus: fn}
}

// WithIdentity wraps fn so that identity arguments short-circuit without
// calling fn.
func WithIdentity(identity types.Field, fn PlusFunc) *PlusFun {
	return &PlusFun{
		Identity: identity,
		Name:     "plus",
		plus: func(a, b types.Field) (types.Field, error) {
			switch {
			case types.Equal(a, identity):
				return b, nil
			case types.Equal(b, identity):
				return a, nil
			default:
				return fn(a, b)
			}
		},
	}
}

// WithNullIdentity wraps fn with the typed null of t as identity. fn only
// ever sees non-null arguments.
func WithNullIdentity(t types.Type, fn PlusFunc) *PlusFun {
	return &PlusFun{
		Identity: types.Null(t),
		Name:     "plus",
		plus: func(a, b types.Field) (types.Field, error) {
			switch {
			case types.IsNull(a):
				return b, nil
			case types.IsNull(b):
				return a, nil
			default:
				return fn(a, b)
			}
		},
	}
}

// ErrorPlus is the combiner for attributes that are never expected to
// collide. Combining with the identity passes the other side through;
// combining two non-identity values fails.
func ErrorPlus(identity types.Field) *PlusFun {
	return &PlusFun{
		Identity: identity,
		Name:     "error",
		plus: func(a, b types.Field) (types.Field, error) {
			switch {
			case types.Equal(a, identity):
				return b, nil
			case types.Equal(b, identity):
				return a, nil
			default:
				return nil, dberror.Newf(dberror.ErrCategoryRuntime, dberror.CodeNoPlusFunction,
					"no plus function defined, yet non-identity values must combine: %v and %v (identity %v)",
					a, b, identity)
			}
		},
	}
}

// Named returns a copy of p labelled name, used when printing plans.
func (p *PlusFun) Named(name string) *PlusFun {
	cp := *p
	cp.Name = name
	return &cp
}

// Plus combines a and b.
func (p *PlusFun) Plus(a, b types.Field) (types.Field, error) {
	return p.plus(a, b)
}

// VerifyIdentity checks plus(x, identity) == x == plus(identity, x) for
// the identity itself and every sample.
func (p *PlusFun) VerifyIdentity(samples ...types.Field) error {
	check := func(x types.Field) error {
		l, err := p.plus(x, p.Identity)
		if err != nil {
			return identityLawError(p, x, err)
		}
		r, err := p.plus(p.Identity, x)
		if err != nil {
			return identityLawError(p, x, err)
		}
		if !types.Equal(l, x) || !types.Equal(r, x) {
			return identityLawError(p, x, nil)
		}
		return nil
	}

	if err := check(p.Identity); err != nil {
		return err
	}
	for _, x := range samples {
		if err := check(x); err != nil {
			return err
		}
	}
	return nil
}

func identityLawError(p *PlusFun, x types.Field, cause error) error {
	e := dberror.Newf(dberror.ErrCategoryAlgebra, dberror.CodeIdentityLaw,
		"value %v violates the identity requirement of %s for identity %v", x, p.Name, p.Identity)
	if cause != nil {
		e = e.WithCause(cause)
	}
	return e
}

func (p *PlusFun) String() string {
	return fmt.Sprintf("%s(identity=%v)", p.Name, p.Identity)
}
