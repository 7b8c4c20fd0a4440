package schema

import (
	"fmt"
	"strings"

	"relalg/pkg/types"
)

// Attribute is a named, typed column. Two attributes are equal when both
// name and type match; attributes are ordered by name.
type Attribute struct {
	Name string
	Type types.Type
}

func NewAttribute(name string, t types.Type) Attribute {
	return Attribute{Name: name, Type: t}
}

func (a Attribute) Equals(other Attribute) bool {
	return a.Name == other.Name && a.Type == other.Type
}

// WithName returns a copy of a carrying a different name.
func (a Attribute) WithName(name string) Attribute {
	return Attribute{Name: name, Type: a.Type}
}

func (a Attribute) String() string {
	return fmt.Sprintf("%s:%s", a.Name, a.Type)
}

// CompareByName orders attributes by name.
func CompareByName(a, b Attribute) int {
	return strings.Compare(a.Name, b.Name)
}

// ValAttribute is a value attribute together with its default, the value
// a tuple implicitly holds when the attribute is absent.
type ValAttribute struct {
	Attribute
	Default types.Field
}

// NewValAttribute creates a value attribute. A nil default is replaced by
// the typed null of t.
func NewValAttribute(name string, t types.Type, def types.Field) ValAttribute {
	if def == nil {
		def = types.Null(t)
	}
	return ValAttribute{Attribute: Attribute{Name: name, Type: t}, Default: def}
}

// Equals compares name, type and default.
func (v ValAttribute) Equals(other ValAttribute) bool {
	return v.Attribute.Equals(other.Attribute) && types.Equal(v.Default, other.Default)
}

func (v ValAttribute) WithName(name string) ValAttribute {
	return ValAttribute{Attribute: v.Attribute.WithName(name), Default: v.Default}
}

func (v ValAttribute) String() string {
	return fmt.Sprintf("%s:%s=%s", v.Name, v.Type, v.Default)
}
