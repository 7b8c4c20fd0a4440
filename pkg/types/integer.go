package types

import (
	"io"
	"strconv"

	"relalg/pkg/primitives"
)

// IntField represents a 32-bit signed integer field (INT).
type IntField struct {
	Value int32
}

func NewIntField(value int32) *IntField {
	return &IntField{Value: value}
}

func (f *IntField) Serialize(w io.Writer) error {
	return serializeUint32(w, uint32(f.Value)) // #nosec G115
}

func (f *IntField) Compare(op primitives.Predicate, other Field) (bool, error) {
	if _, ok := other.(*IntField); !ok {
		return false, nil
	}
	return predicateHolds(op, f, other), nil
}

func (f *IntField) Type() Type {
	return IntType
}

func (f *IntField) String() string {
	return strconv.FormatInt(int64(f.Value), 10)
}

func (f *IntField) Equals(other Field) bool {
	otherField, ok := other.(*IntField)
	if !ok {
		return false
	}
	return f.Value == otherField.Value
}

func (f *IntField) Hash() (primitives.HashCode, error) {
	return HashBytes(toBytes32(uint32(f.Value))), nil // #nosec G115
}

// LongField represents a 64-bit signed integer field (LONG).
type LongField struct {
	Value int64
}

func NewLongField(value int64) *LongField {
	return &LongField{Value: value}
}

func (f *LongField) Serialize(w io.Writer) error {
	return serializeUint64(w, uint64(f.Value)) // #nosec G115
}

func (f *LongField) Compare(op primitives.Predicate, other Field) (bool, error) {
	if _, ok := other.(*LongField); !ok {
		return false, nil
	}
	return predicateHolds(op, f, other), nil
}

func (f *LongField) Type() Type {
	return LongType
}

func (f *LongField) String() string {
	return strconv.FormatInt(f.Value, 10)
}

func (f *LongField) Equals(other Field) bool {
	otherField, ok := other.(*LongField)
	if !ok {
		return false
	}
	return f.Value == otherField.Value
}

func (f *LongField) Hash() (primitives.HashCode, error) {
	return HashBytes(toBytes64(uint64(f.Value))), nil // #nosec G115
}
