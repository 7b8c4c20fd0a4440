package tuple

import (
	"fmt"

	"github.com/shopspring/decimal"

	"relalg/pkg/schema"
	"relalg/pkg/types"
)

// Builder provides a fluent interface for constructing tuples
type Builder struct {
	schema *schema.Schema
	fields map[string]types.Field
	err    error
}

// NewBuilder creates a builder that accepts any names.
func NewBuilder() *Builder {
	return &Builder{fields: make(map[string]types.Field)}
}

// ForSchema creates a builder whose Build validates the tuple against s.
func ForSchema(s *schema.Schema) *Builder {
	return &Builder{schema: s, fields: make(map[string]types.Field)}
}

func (b *Builder) Int(name string, value int32) *Builder {
	return b.Field(name, types.NewIntField(value))
}

func (b *Builder) Long(name string, value int64) *Builder {
	return b.Field(name, types.NewLongField(value))
}

func (b *Builder) Float(name string, value float32) *Builder {
	return b.Field(name, types.NewFloatField(value))
}

func (b *Builder) Double(name string, value float64) *Builder {
	return b.Field(name, types.NewDoubleField(value))
}

func (b *Builder) String(name, value string) *Builder {
	return b.Field(name, types.NewStringField(value))
}

func (b *Builder) Bool(name string, value bool) *Builder {
	return b.Field(name, types.NewBoolField(value))
}

func (b *Builder) Decimal(name string, value decimal.Decimal) *Builder {
	return b.Field(name, types.NewDecimalField(value))
}

// Null stores the typed null of t under name.
func (b *Builder) Null(name string, t types.Type) *Builder {
	return b.Field(name, types.Null(t))
}

// Field adds a generic field. Setting the same name twice is an error.
func (b *Builder) Field(name string, field types.Field) *Builder {
	if b.err != nil {
		return b
	}
	if field == nil {
		b.err = fmt.Errorf("field %s: nil value", name)
		return b
	}
	if _, dup := b.fields[name]; dup {
		b.err = fmt.Errorf("field %s set twice", name)
		return b
	}
	b.fields[name] = field
	return b
}

// Build returns the constructed tuple or the first error recorded.
func (b *Builder) Build() (*Tuple, error) {
	if b.err != nil {
		return nil, b.err
	}

	t := &Tuple{fields: b.fields}
	b.fields = make(map[string]types.Field)

	if b.schema != nil {
		if err := Validate(t, b.schema); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// MustBuild returns the tuple or panics on error (use only when errors are impossible)
func (b *Builder) MustBuild() *Tuple {
	t, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("tuple builder error: %v", err))
	}
	return t
}
