package types

import (
	"io"
	"strings"

	"relalg/pkg/primitives"
)

// StringField represents a variable-length string field.
type StringField struct {
	Value string
}

func NewStringField(value string) *StringField {
	return &StringField{Value: value}
}

// Compare performs a comparison operation between this StringField and another Field
// using the specified predicate. String comparisons are lexicographic; Like
// tests for substring containment.
func (s *StringField) Compare(op primitives.Predicate, other Field) (bool, error) {
	o, ok := other.(*StringField)
	if !ok {
		return false, nil
	}

	if op == primitives.Like {
		return strings.Contains(s.Value, o.Value), nil
	}
	return op.Holds(strings.Compare(s.Value, o.Value)), nil
}

// Serialize writes a 4-byte big-endian length followed by the string bytes.
func (s *StringField) Serialize(w io.Writer) error {
	return serializeBytes(w, []byte(s.Value))
}

func (s *StringField) Type() Type {
	return StringType
}

func (s *StringField) String() string {
	return s.Value
}

func (s *StringField) Equals(other Field) bool {
	o, ok := other.(*StringField)
	if !ok {
		return false
	}
	return s.Value == o.Value
}

func (s *StringField) Hash() (primitives.HashCode, error) {
	return HashBytes([]byte(s.Value)), nil
}
