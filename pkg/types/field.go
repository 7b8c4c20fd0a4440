package types

import (
	"io"

	"relalg/pkg/primitives"
)

// Field is a single typed value stored in a tuple. Implementations are
// immutable and safe to share between tuples.
type Field interface {
	Serialize(w io.Writer) error

	Compare(op primitives.Predicate, other Field) (bool, error)

	Type() Type

	String() string

	Equals(other Field) bool

	Hash() (primitives.HashCode, error)
}

// Order is the canonical three-way comparison of two fields. A nil field
// and a NullField both sort before every non-null value. Fields of different
// types are ordered by type; the merge operators never compare such pairs
// because parent schemas are type-checked at construction.
func Order(a, b Field) int {
	aNull, bNull := IsNull(a), IsNull(b)
	switch {
	case aNull && bNull:
		return 0
	case aNull:
		return -1
	case bNull:
		return 1
	}

	if a.Type() != b.Type() {
		return compareOrdered(int(a.Type()), int(b.Type()))
	}

	switch av := a.(type) {
	case *IntField:
		return compareOrdered(av.Value, b.(*IntField).Value)
	case *LongField:
		return compareOrdered(av.Value, b.(*LongField).Value)
	case *FloatField:
		return compareOrdered(av.Value, b.(*FloatField).Value)
	case *DoubleField:
		return compareOrdered(av.Value, b.(*DoubleField).Value)
	case *StringField:
		return compareOrdered(av.Value, b.(*StringField).Value)
	case *BoolField:
		return compareBool(av.Value, b.(*BoolField).Value)
	case *DecimalField:
		return av.Value.Cmp(b.(*DecimalField).Value)
	default:
		return compareOrdered(a.String(), b.String())
	}
}

// Equal reports whether two possibly nil fields hold the same value.
func Equal(a, b Field) bool {
	if IsNull(a) || IsNull(b) {
		return IsNull(a) && IsNull(b)
	}
	return a.Equals(b)
}

// CheckType reports whether f may be stored in an attribute of type t.
// Nulls of the same type are accepted.
func CheckType(f Field, t Type) bool {
	return f != nil && f.Type() == t
}
