package types

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// NullLiteral is the textual form of a null value accepted by ParseField.
const NullLiteral = "null"

// ParseField parses the textual form of a value of type t. The literal
// "null" yields Null(t); surrounding whitespace is ignored except for
// strings, which are taken verbatim.
func ParseField(t Type, constant string) (Field, error) {
	if constant == NullLiteral {
		return Null(t), nil
	}

	trimmed := strings.TrimSpace(constant)
	switch t {
	case IntType:
		v, err := strconv.ParseInt(trimmed, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("parse %s %q: %w", t, constant, err)
		}
		return NewIntField(int32(v)), nil

	case LongType:
		v, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %s %q: %w", t, constant, err)
		}
		return NewLongField(v), nil

	case FloatType:
		v, err := strconv.ParseFloat(trimmed, 32)
		if err != nil {
			return nil, fmt.Errorf("parse %s %q: %w", t, constant, err)
		}
		return NewFloatField(float32(v)), nil

	case DoubleType:
		v, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %s %q: %w", t, constant, err)
		}
		return NewDoubleField(v), nil

	case StringType:
		return NewStringField(constant), nil

	case BoolType:
		v, err := strconv.ParseBool(trimmed)
		if err != nil {
			return nil, fmt.Errorf("parse %s %q: %w", t, constant, err)
		}
		return NewBoolField(v), nil

	case DecimalType:
		v, err := decimal.NewFromString(trimmed)
		if err != nil {
			return nil, fmt.Errorf("parse %s %q: %w", t, constant, err)
		}
		return NewDecimalField(v), nil

	default:
		return nil, fmt.Errorf("unsupported field type: %v", t)
	}
}

// FromValue converts a plain Go value into a Field of type t. It accepts
// the Go type that backs t, any Go integer for the integral and decimal
// types, float64 for the floating types, a Field of type t (returned as is)
// and nil (Null(t)).
func FromValue(t Type, v any) (Field, error) {
	if v == nil {
		return Null(t), nil
	}
	if f, ok := v.(Field); ok {
		if f.Type() != t {
			return nil, fmt.Errorf("field %v has type %s, want %s", f, f.Type(), t)
		}
		return f, nil
	}

	switch t {
	case IntType:
		if n, ok := asInt64(v); ok {
			return NewIntField(int32(n)), nil // #nosec G115
		}
	case LongType:
		if n, ok := asInt64(v); ok {
			return NewLongField(n), nil
		}
	case FloatType:
		switch x := v.(type) {
		case float32:
			return NewFloatField(x), nil
		case float64:
			return NewFloatField(float32(x)), nil
		}
	case DoubleType:
		switch x := v.(type) {
		case float64:
			return NewDoubleField(x), nil
		case float32:
			return NewDoubleField(float64(x)), nil
		}
	case StringType:
		if s, ok := v.(string); ok {
			return NewStringField(s), nil
		}
	case BoolType:
		if b, ok := v.(bool); ok {
			return NewBoolField(b), nil
		}
	case DecimalType:
		switch x := v.(type) {
		case decimal.Decimal:
			return NewDecimalField(x), nil
		case string:
			return ParseField(DecimalType, x)
		}
		if n, ok := asInt64(v); ok {
			return NewDecimalFromInt(n), nil
		}
	}
	return nil, fmt.Errorf("cannot convert %T(%v) to %s", v, v, t)
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	default:
		return 0, false
	}
}
