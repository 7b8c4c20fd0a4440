package tuple

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"relalg/pkg/primitives"
	"relalg/pkg/types"
)

// Tuple is an immutable mapping from attribute name to value. Operators
// never modify a tuple in place; every transformation returns a new one
// that may share fields with its source.
//
// A tuple produced under a schema holds every key attribute and any subset
// of the value attributes. A missing value attribute stands for its
// schema default.
type Tuple struct {
	fields map[string]types.Field
}

var empty = &Tuple{fields: map[string]types.Field{}}

// Empty returns the tuple with no fields.
func Empty() *Tuple {
	return empty
}

// New creates a tuple from a name to field map. The map is copied and nil
// fields are dropped.
func New(fields map[string]types.Field) *Tuple {
	cp := make(map[string]types.Field, len(fields))
	for name, f := range fields {
		if f != nil {
			cp[name] = f
		}
	}
	return &Tuple{fields: cp}
}

// Get returns the field stored under name.
func (t *Tuple) Get(name string) (types.Field, bool) {
	f, ok := t.fields[name]
	return f, ok
}

// ValueOr returns the field stored under name, or def when it is absent.
func (t *Tuple) ValueOr(name string, def types.Field) types.Field {
	if f, ok := t.fields[name]; ok {
		return f
	}
	return def
}

func (t *Tuple) Has(name string) bool {
	_, ok := t.fields[name]
	return ok
}

func (t *Tuple) Len() int {
	return len(t.fields)
}

// Names returns the attribute names present in t, sorted.
func (t *Tuple) Names() []string {
	names := maps.Keys(t.fields)
	slices.Sort(names)
	return names
}

// With returns a copy of t with name set to f.
func (t *Tuple) With(name string, f types.Field) *Tuple {
	cp := make(map[string]types.Field, len(t.fields)+1)
	for k, v := range t.fields {
		cp[k] = v
	}
	if f == nil {
		delete(cp, name)
	} else {
		cp[name] = f
	}
	return &Tuple{fields: cp}
}

// Merge returns the union of t and other. Where both hold a name, the
// field of t wins.
func (t *Tuple) Merge(other *Tuple) *Tuple {
	if other.Len() == 0 {
		return t
	}
	if t.Len() == 0 {
		return other
	}
	cp := make(map[string]types.Field, len(t.fields)+len(other.fields))
	for k, v := range other.fields {
		cp[k] = v
	}
	for k, v := range t.fields {
		cp[k] = v
	}
	return &Tuple{fields: cp}
}

// Project keeps only the named fields that are present in t.
func (t *Tuple) Project(names ...string) *Tuple {
	cp := make(map[string]types.Field, len(names))
	for _, name := range names {
		if f, ok := t.fields[name]; ok {
			cp[name] = f
		}
	}
	return &Tuple{fields: cp}
}

// Filter keeps the fields whose name satisfies keep.
func (t *Tuple) Filter(keep func(name string) bool) *Tuple {
	cp := make(map[string]types.Field, len(t.fields))
	for name, f := range t.fields {
		if keep(name) {
			cp[name] = f
		}
	}
	return &Tuple{fields: cp}
}

// Rename applies mapping to every field name. Names absent from mapping
// are kept as they are.
func (t *Tuple) Rename(mapping map[string]string) *Tuple {
	if len(mapping) == 0 {
		return t
	}
	cp := make(map[string]types.Field, len(t.fields))
	for name, f := range t.fields {
		if to, ok := mapping[name]; ok {
			name = to
		}
		cp[name] = f
	}
	return &Tuple{fields: cp}
}

// Equals reports whether both tuples hold the same names with equal fields.
func (t *Tuple) Equals(other *Tuple) bool {
	if other == nil || len(t.fields) != len(other.fields) {
		return false
	}
	for name, f := range t.fields {
		o, ok := other.fields[name]
		if !ok || !types.Equal(f, o) {
			return false
		}
	}
	return true
}

// String renders the tuple as {a:1, b:x} with names sorted.
func (t *Tuple) String() string {
	parts := make([]string, 0, len(t.fields))
	for _, name := range t.Names() {
		parts = append(parts, fmt.Sprintf("%s:%s", name, t.fields[name]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Hash fingerprints the tuple. Names are visited in sorted order so that
// equal tuples hash identically.
func (t *Tuple) Hash() (primitives.HashCode, error) {
	var buf bytes.Buffer
	for _, name := range t.Names() {
		buf.WriteString(name)
		buf.WriteByte(0)
		if err := t.fields[name].Serialize(&buf); err != nil {
			return 0, fmt.Errorf("hash field %s: %w", name, err)
		}
	}
	return types.HashBytes(buf.Bytes()), nil
}
