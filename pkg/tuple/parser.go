package tuple

import (
	"fmt"

	"relalg/pkg/schema"
	"relalg/pkg/types"
)

// Parser reads fields out of a tuple by name. It mirrors the Builder: the
// first failure is recorded and every later read returns nil.
//
// When a schema is supplied, reading an absent value attribute yields the
// attribute's default instead of failing.
type Parser struct {
	tuple  *Tuple
	schema *schema.Schema
	err    error
}

// NewParser creates a parser over t. s may be nil.
func NewParser(t *Tuple, s *schema.Schema) *Parser {
	return &Parser{tuple: t, schema: s}
}

// ReadField reads a generic field, falling back to the schema default for
// absent value attributes.
func (p *Parser) ReadField(name string) types.Field {
	if p.err != nil {
		return nil
	}
	if f, ok := p.tuple.Get(name); ok {
		return f
	}
	if p.schema != nil {
		if v, ok := p.schema.GetValue(name); ok {
			return v.Default
		}
	}
	p.err = fmt.Errorf("field %s not present in %v", name, p.tuple)
	return nil
}

// Error returns any accumulated parsing error
func (p *Parser) Error() error {
	return p.err
}
