package types

import (
	"io"

	"relalg/pkg/primitives"
)

// NullField is the typed null value of a Type. It sorts before every
// non-null value of its type and is the natural identity for
// null-identity plus functions.
type NullField struct {
	T Type
}

// Null returns the null value of t.
func Null(t Type) *NullField {
	return &NullField{T: t}
}

// IsNull reports whether f is nil or a NullField.
func IsNull(f Field) bool {
	if f == nil {
		return true
	}
	_, ok := f.(*NullField)
	return ok
}

func (n *NullField) Serialize(w io.Writer) error {
	_, err := w.Write([]byte{0})
	return err
}

// Compare only supports equality tests; a null is never ordered against
// a predicate other than Equals and NotEqual.
func (n *NullField) Compare(op primitives.Predicate, other Field) (bool, error) {
	switch op {
	case primitives.Equals:
		return IsNull(other), nil
	case primitives.NotEqual, primitives.NotEqualsBracket:
		return !IsNull(other), nil
	default:
		return false, nil
	}
}

func (n *NullField) Type() Type {
	return n.T
}

func (n *NullField) String() string {
	return "null"
}

func (n *NullField) Equals(other Field) bool {
	return IsNull(other)
}

func (n *NullField) Hash() (primitives.HashCode, error) {
	return HashBytes(nil), nil
}
