package types

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"relalg/pkg/primitives"
)

// FloatField represents a 32-bit floating point field (FLOAT).
type FloatField struct {
	Value float32
}

func NewFloatField(value float32) *FloatField {
	return &FloatField{Value: value}
}

func (f *FloatField) Serialize(w io.Writer) error {
	return serializeUint32(w, math.Float32bits(f.Value))
}

func (f *FloatField) Compare(op primitives.Predicate, other Field) (bool, error) {
	if _, ok := other.(*FloatField); !ok {
		return false, fmt.Errorf("cannot compare FloatField with %T", other)
	}
	return predicateHolds(op, f, other), nil
}

func (f *FloatField) Type() Type {
	return FloatType
}

func (f *FloatField) String() string {
	return strconv.FormatFloat(float64(f.Value), 'f', -1, 32)
}

// Equals is exact so that it agrees with Order; NaN equals NaN.
func (f *FloatField) Equals(other Field) bool {
	o, ok := other.(*FloatField)
	if !ok {
		return false
	}
	return compareOrdered(f.Value, o.Value) == 0
}

func (f *FloatField) Hash() (primitives.HashCode, error) {
	return HashBytes(toBytes32(math.Float32bits(f.Value))), nil
}

// DoubleField represents a 64-bit floating point field (DOUBLE).
type DoubleField struct {
	Value float64
}

func NewDoubleField(value float64) *DoubleField {
	return &DoubleField{Value: value}
}

func (f *DoubleField) Serialize(w io.Writer) error {
	return serializeUint64(w, math.Float64bits(f.Value))
}

func (f *DoubleField) Compare(op primitives.Predicate, other Field) (bool, error) {
	if _, ok := other.(*DoubleField); !ok {
		return false, fmt.Errorf("cannot compare DoubleField with %T", other)
	}
	return predicateHolds(op, f, other), nil
}

func (f *DoubleField) Type() Type {
	return DoubleType
}

// String returns string representation of the float64
func (f *DoubleField) String() string {
	return strconv.FormatFloat(f.Value, 'f', -1, 64)
}

func (f *DoubleField) Equals(other Field) bool {
	o, ok := other.(*DoubleField)
	if !ok {
		return false
	}
	return compareOrdered(f.Value, o.Value) == 0
}

func (f *DoubleField) Hash() (primitives.HashCode, error) {
	return HashBytes(toBytes64(math.Float64bits(f.Value))), nil
}
