package types

import (
	"testing"
)

func TestParseField(t *testing.T) {
	tests := []struct {
		typ     Type
		input   string
		want    Field
		wantErr bool
	}{
		{IntType, "42", NewIntField(42), false},
		{IntType, " -7 ", NewIntField(-7), false},
		{IntType, "3000000000", nil, true},
		{LongType, "3000000000", NewLongField(3000000000), false},
		{FloatType, "1.25", NewFloatField(1.25), false},
		{DoubleType, "-0.5", NewDoubleField(-0.5), false},
		{StringType, " padded ", NewStringField(" padded "), false},
		{BoolType, "true", NewBoolField(true), false},
		{BoolType, "maybe", nil, true},
		{DecimalType, "10.010", NewDecimalFromInt(0), false},
		{LongType, "null", Null(LongType), false},
		{LongType, "abc", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.typ.String()+"/"+tt.input, func(t *testing.T) {
			got, err := ParseField(tt.typ, tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Type() != tt.typ {
				t.Errorf("type = %s, want %s", got.Type(), tt.typ)
			}
			if tt.typ == DecimalType {
				if got.String() != "10.01" {
					t.Errorf("decimal = %s, want 10.01", got)
				}
				return
			}
			if !Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFromValue(t *testing.T) {
	f, err := FromValue(LongType, 5)
	if err != nil || !Equal(f, NewLongField(5)) {
		t.Errorf("FromValue(LONG, 5) = %v, %v", f, err)
	}

	f, err = FromValue(IntType, int32(9))
	if err != nil || !Equal(f, NewIntField(9)) {
		t.Errorf("FromValue(INT, 9) = %v, %v", f, err)
	}

	f, err = FromValue(StringType, nil)
	if err != nil || !IsNull(f) {
		t.Errorf("FromValue(STRING, nil) = %v, %v", f, err)
	}

	if _, err := FromValue(StringType, 5); err == nil {
		t.Error("expected error converting int to STRING")
	}
	if _, err := FromValue(LongType, NewIntField(1)); err == nil {
		t.Error("expected error passing INT field as LONG")
	}
}

func TestArithmetic(t *testing.T) {
	sum, err := Add(NewLongField(10), NewLongField(5))
	if err != nil || !Equal(sum, NewLongField(15)) {
		t.Errorf("Add = %v, %v", sum, err)
	}

	prod, err := Mul(NewDecimalFromInt(3), NewDecimalFromInt(4))
	if err != nil || !Equal(prod, NewDecimalFromInt(12)) {
		t.Errorf("Mul = %v, %v", prod, err)
	}

	if _, err := Add(NewLongField(1), NewIntField(1)); err == nil {
		t.Error("expected type mismatch error")
	}
	if _, err := Add(NewStringField("a"), NewStringField("b")); err == nil {
		t.Error("expected non-numeric error")
	}
	if _, err := Mul(Null(LongType), NewLongField(1)); err == nil {
		t.Error("expected null arithmetic error")
	}

	if got := Min(NewIntField(3), NewIntField(1)); !Equal(got, NewIntField(1)) {
		t.Errorf("Min = %v", got)
	}
	if got := Max(NewStringField("a"), NewStringField("b")); !Equal(got, NewStringField("b")) {
		t.Errorf("Max = %v", got)
	}
}
