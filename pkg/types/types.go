package types

import (
	"fmt"
	"strings"
)

// Type is the value domain of an attribute. Every Type carries a canonical
// total order (see Order) which the sort-merge operators use as their
// comparator.
type Type int

const (
	IntType Type = iota
	LongType
	FloatType
	DoubleType
	StringType
	BoolType
	DecimalType
)

// String returns a string representation of the type
func (t Type) String() string {
	switch t {
	case IntType:
		return "INT"
	case LongType:
		return "LONG"
	case FloatType:
		return "FLOAT"
	case DoubleType:
		return "DOUBLE"
	case StringType:
		return "STRING"
	case BoolType:
		return "BOOLEAN"
	case DecimalType:
		return "DECIMAL"
	default:
		return "UNKNOWN_TYPE"
	}
}

// Valid reports whether t is one of the declared types.
func (t Type) Valid() bool {
	return t >= IntType && t <= DecimalType
}

// IsNumeric reports whether arithmetic is defined for t.
func (t Type) IsNumeric() bool {
	switch t {
	case IntType, LongType, FloatType, DoubleType, DecimalType:
		return true
	default:
		return false
	}
}

// Zero returns the additive identity of numeric types, the empty string,
// or false.
func (t Type) Zero() Field {
	switch t {
	case IntType:
		return NewIntField(0)
	case LongType:
		return NewLongField(0)
	case FloatType:
		return NewFloatField(0)
	case DoubleType:
		return NewDoubleField(0)
	case StringType:
		return NewStringField("")
	case BoolType:
		return NewBoolField(false)
	case DecimalType:
		return NewDecimalFromInt(0)
	default:
		return Null(t)
	}
}

// One returns the multiplicative identity of a numeric type and nil otherwise.
func (t Type) One() Field {
	switch t {
	case IntType:
		return NewIntField(1)
	case LongType:
		return NewLongField(1)
	case FloatType:
		return NewFloatField(1)
	case DoubleType:
		return NewDoubleField(1)
	case DecimalType:
		return NewDecimalFromInt(1)
	default:
		return nil
	}
}

// Examples returns a few sample values of t. The first is always the
// zero value; algebraic spot checks run over the whole list.
func (t Type) Examples() []Field {
	switch t {
	case IntType:
		return []Field{NewIntField(0), NewIntField(-1), NewIntField(1)}
	case LongType:
		return []Field{NewLongField(0), NewLongField(-1), NewLongField(1)}
	case FloatType:
		return []Field{NewFloatField(0), NewFloatField(-1.5), NewFloatField(1.5)}
	case DoubleType:
		return []Field{NewDoubleField(0), NewDoubleField(-1.5), NewDoubleField(1.5)}
	case StringType:
		return []Field{NewStringField(""), NewStringField("a"), NewStringField("z")}
	case BoolType:
		return []Field{NewBoolField(false), NewBoolField(true)}
	case DecimalType:
		return []Field{NewDecimalFromInt(0), NewDecimalFromInt(-1), NewDecimalFromInt(1)}
	default:
		return nil
	}
}

// ParseType maps a type name (case-insensitive) to a Type. Common aliases
// such as INTEGER, BIGINT and BOOL are accepted.
func ParseType(s string) (Type, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "INT", "INTEGER", "INT32":
		return IntType, nil
	case "LONG", "BIGINT", "INT64":
		return LongType, nil
	case "FLOAT", "FLOAT32", "REAL":
		return FloatType, nil
	case "DOUBLE", "FLOAT64":
		return DoubleType, nil
	case "STRING", "TEXT", "VARCHAR":
		return StringType, nil
	case "BOOLEAN", "BOOL":
		return BoolType, nil
	case "DECIMAL", "NUMERIC":
		return DecimalType, nil
	default:
		return 0, fmt.Errorf("unknown type %q", s)
	}
}
