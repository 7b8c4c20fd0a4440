package types

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"relalg/pkg/primitives"
)

// DecimalField represents an arbitrary-precision decimal field (DECIMAL).
// Values that differ only in trailing zeros (1.5 and 1.50) are equal.
type DecimalField struct {
	Value decimal.Decimal
}

func NewDecimalField(value decimal.Decimal) *DecimalField {
	return &DecimalField{Value: value}
}

// NewDecimalFromInt creates a decimal holding an integral value.
func NewDecimalFromInt(value int64) *DecimalField {
	return &DecimalField{Value: decimal.NewFromInt(value)}
}

// Serialize writes the canonical string form, length-prefixed. The form is
// normalized so that equal values serialize identically.
func (d *DecimalField) Serialize(w io.Writer) error {
	return serializeBytes(w, []byte(d.canonical()))
}

func (d *DecimalField) canonical() string {
	// String() drops trailing zeros of the fractional part.
	return d.Value.String()
}

func (d *DecimalField) Compare(op primitives.Predicate, other Field) (bool, error) {
	if _, ok := other.(*DecimalField); !ok {
		return false, fmt.Errorf("cannot compare DecimalField with %T", other)
	}
	return predicateHolds(op, d, other), nil
}

func (d *DecimalField) Type() Type {
	return DecimalType
}

func (d *DecimalField) String() string {
	return d.Value.String()
}

func (d *DecimalField) Equals(other Field) bool {
	o, ok := other.(*DecimalField)
	if !ok {
		return false
	}
	return d.Value.Equal(o.Value)
}

func (d *DecimalField) Hash() (primitives.HashCode, error) {
	return HashBytes([]byte(d.canonical())), nil
}
