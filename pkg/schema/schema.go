package schema

import (
	"fmt"
	"strings"

	dberror "relalg/pkg/error"
	"relalg/pkg/types"
)

// Schema describes the tuples produced by an operator: an ordered list of
// key attributes, which fixes the sort order every merge algorithm relies
// on, and a list of value attributes whose order is presentation-only.
//
// A Schema is immutable once built. The constructor guarantees:
//   - key names are pairwise distinct
//   - value names are pairwise distinct
//   - key and value name sets are disjoint
//   - every value default is of its attribute's type
type Schema struct {
	keys  []Attribute
	vals  []ValAttribute
	index map[string]int
}

// New validates keys and vals and builds a Schema. The slices are copied.
func New(keys []Attribute, vals []ValAttribute) (*Schema, error) {
	s := &Schema{
		keys:  make([]Attribute, len(keys)),
		vals:  make([]ValAttribute, len(vals)),
		index: make(map[string]int, len(keys)+len(vals)),
	}
	copy(s.keys, keys)
	copy(s.vals, vals)

	for i, k := range s.keys {
		if !k.Type.Valid() {
			return nil, dberror.Newf(dberror.ErrCategorySchema, dberror.CodeTypeMismatch,
				"key %q has invalid type", k.Name)
		}
		if _, dup := s.index[k.Name]; dup {
			return nil, dberror.Newf(dberror.ErrCategorySchema, dberror.CodeDuplicateAttribute,
				"duplicate key attribute %q", k.Name)
		}
		s.index[k.Name] = i
	}

	for i, v := range s.vals {
		if !v.Type.Valid() {
			return nil, dberror.Newf(dberror.ErrCategorySchema, dberror.CodeTypeMismatch,
				"value %q has invalid type", v.Name)
		}
		if pos, dup := s.index[v.Name]; dup {
			if pos < 0 {
				return nil, dberror.Newf(dberror.ErrCategorySchema, dberror.CodeDuplicateAttribute,
					"duplicate value attribute %q", v.Name)
			}
			return nil, dberror.Newf(dberror.ErrCategorySchema, dberror.CodeKeyValueOverlap,
				"attribute %q is both a key and a value", v.Name)
		}
		if v.Default == nil {
			s.vals[i].Default = types.Null(v.Type)
		} else if !types.CheckType(v.Default, v.Type) {
			return nil, dberror.Newf(dberror.ErrCategorySchema, dberror.CodeTypeMismatch,
				"default %v of value %q is %s, want %s", v.Default, v.Name, v.Default.Type(), v.Type)
		}
		// Value positions are stored as -(i+1) so that they never collide
		// with key positions.
		s.index[v.Name] = -(i + 1)
	}

	return s, nil
}

// MustNew is New for schemas known to be valid; it panics on error.
func MustNew(keys []Attribute, vals []ValAttribute) *Schema {
	s, err := New(keys, vals)
	if err != nil {
		panic(err)
	}
	return s
}

// Keys returns a copy of the key attributes in sort order.
func (s *Schema) Keys() []Attribute {
	out := make([]Attribute, len(s.keys))
	copy(out, s.keys)
	return out
}

// Vals returns a copy of the value attributes.
func (s *Schema) Vals() []ValAttribute {
	out := make([]ValAttribute, len(s.vals))
	copy(out, s.vals)
	return out
}

func (s *Schema) NumKeys() int {
	return len(s.keys)
}

func (s *Schema) NumVals() int {
	return len(s.vals)
}

// Key returns the i-th key attribute.
func (s *Schema) Key(i int) Attribute {
	return s.keys[i]
}

// Val returns the i-th value attribute.
func (s *Schema) Val(i int) ValAttribute {
	return s.vals[i]
}

func (s *Schema) KeyNames() []string {
	names := make([]string, len(s.keys))
	for i, k := range s.keys {
		names[i] = k.Name
	}
	return names
}

func (s *Schema) ValNames() []string {
	names := make([]string, len(s.vals))
	for i, v := range s.vals {
		names[i] = v.Name
	}
	return names
}

// Names returns key names followed by value names.
func (s *Schema) Names() []string {
	return append(s.KeyNames(), s.ValNames()...)
}

// Get returns the attribute called name, key or value.
func (s *Schema) Get(name string) (Attribute, bool) {
	pos, ok := s.index[name]
	if !ok {
		return Attribute{}, false
	}
	if pos >= 0 {
		return s.keys[pos], true
	}
	return s.vals[-pos-1].Attribute, true
}

// GetValue returns the value attribute called name.
func (s *Schema) GetValue(name string) (ValAttribute, bool) {
	pos, ok := s.index[name]
	if !ok || pos >= 0 {
		return ValAttribute{}, false
	}
	return s.vals[-pos-1], true
}

// KeyIndex returns the position of the key called name, or -1.
func (s *Schema) KeyIndex(name string) int {
	pos, ok := s.index[name]
	if !ok || pos < 0 {
		return -1
	}
	return pos
}

func (s *Schema) IsKey(name string) bool {
	return s.KeyIndex(name) >= 0
}

func (s *Schema) IsValue(name string) bool {
	_, ok := s.GetValue(name)
	return ok
}

func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Equals reports whether both schemas have equal keys in the same order
// and equal values in the same order.
func (s *Schema) Equals(other *Schema) bool {
	if other == nil || len(s.keys) != len(other.keys) || len(s.vals) != len(other.vals) {
		return false
	}
	for i := range s.keys {
		if !s.keys[i].Equals(other.keys[i]) {
			return false
		}
	}
	for i := range s.vals {
		if !s.vals[i].Equals(other.vals[i]) {
			return false
		}
	}
	return true
}

// String renders the schema as "[k1:T, k2:T | v1:T=d]".
func (s *Schema) String() string {
	keys := make([]string, len(s.keys))
	for i, k := range s.keys {
		keys[i] = k.String()
	}
	vals := make([]string, len(s.vals))
	for i, v := range s.vals {
		vals[i] = v.String()
	}
	return fmt.Sprintf("[%s | %s]", strings.Join(keys, ", "), strings.Join(vals, ", "))
}
