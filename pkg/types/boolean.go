package types

import (
	"fmt"
	"io"
	"strconv"

	"relalg/pkg/primitives"
)

// BoolField represents a boolean field. false sorts before true.
type BoolField struct {
	Value bool
}

func NewBoolField(value bool) *BoolField {
	return &BoolField{Value: value}
}

func (b *BoolField) Serialize(w io.Writer) error {
	_, err := w.Write([]byte{b.byteValue()})
	return err
}

func (b *BoolField) byteValue() byte {
	if b.Value {
		return 1
	}
	return 0
}

func (b *BoolField) Compare(op primitives.Predicate, other Field) (bool, error) {
	if _, ok := other.(*BoolField); !ok {
		return false, fmt.Errorf("cannot compare BoolField with %T", other)
	}
	if op == primitives.Like {
		return false, fmt.Errorf("unsupported predicate for BoolField: %v", op)
	}
	return predicateHolds(op, b, other), nil
}

func (b *BoolField) Type() Type {
	return BoolType
}

func (b *BoolField) String() string {
	return strconv.FormatBool(b.Value)
}

func (b *BoolField) Equals(other Field) bool {
	o, ok := other.(*BoolField)
	if !ok {
		return false
	}
	return b.Value == o.Value
}

func (b *BoolField) Hash() (primitives.HashCode, error) {
	return HashBytes([]byte{b.byteValue()}), nil
}
