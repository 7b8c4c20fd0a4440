package types

import (
	"fmt"
)

// Add returns a+b for two numeric fields of the same type. Integer
// arithmetic wraps on overflow.
func Add(a, b Field) (Field, error) {
	if err := checkArith(a, b); err != nil {
		return nil, err
	}
	switch av := a.(type) {
	case *IntField:
		return NewIntField(av.Value + b.(*IntField).Value), nil
	case *LongField:
		return NewLongField(av.Value + b.(*LongField).Value), nil
	case *FloatField:
		return NewFloatField(av.Value + b.(*FloatField).Value), nil
	case *DoubleField:
		return NewDoubleField(av.Value + b.(*DoubleField).Value), nil
	case *DecimalField:
		return NewDecimalField(av.Value.Add(b.(*DecimalField).Value)), nil
	default:
		return nil, fmt.Errorf("cannot add %s values", a.Type())
	}
}

// Mul returns a*b for two numeric fields of the same type.
func Mul(a, b Field) (Field, error) {
	if err := checkArith(a, b); err != nil {
		return nil, err
	}
	switch av := a.(type) {
	case *IntField:
		return NewIntField(av.Value * b.(*IntField).Value), nil
	case *LongField:
		return NewLongField(av.Value * b.(*LongField).Value), nil
	case *FloatField:
		return NewFloatField(av.Value * b.(*FloatField).Value), nil
	case *DoubleField:
		return NewDoubleField(av.Value * b.(*DoubleField).Value), nil
	case *DecimalField:
		return NewDecimalField(av.Value.Mul(b.(*DecimalField).Value)), nil
	default:
		return nil, fmt.Errorf("cannot multiply %s values", a.Type())
	}
}

// Min returns the smaller of a and b under Order.
func Min(a, b Field) Field {
	if Order(b, a) < 0 {
		return b
	}
	return a
}

// Max returns the larger of a and b under Order.
func Max(a, b Field) Field {
	if Order(b, a) > 0 {
		return b
	}
	return a
}

func checkArith(a, b Field) error {
	if IsNull(a) || IsNull(b) {
		return fmt.Errorf("arithmetic on null value")
	}
	if a.Type() != b.Type() {
		return fmt.Errorf("type mismatch: %s and %s", a.Type(), b.Type())
	}
	if !a.Type().IsNumeric() {
		return fmt.Errorf("type %s is not numeric", a.Type())
	}
	return nil
}
