package execution

import (
	"fmt"

	dberror "relalg/pkg/error"
	"relalg/pkg/primitives"
	"relalg/pkg/schema"
	"relalg/pkg/tuple"
	"relalg/pkg/types"
)

// Predicate compares one attribute of a tuple to a constant value.
// An absent value attribute is compared through its schema default.
type Predicate struct {
	attr    string
	op      primitives.Predicate
	operand types.Field
	def     types.Field
}

// NewPredicate creates a predicate over attribute attr of s. The operand
// must have the attribute's type or be null.
func NewPredicate(s *schema.Schema, attr string, op primitives.Predicate, operand types.Field) (*Predicate, error) {
	a, ok := s.Get(attr)
	if !ok {
		return nil, dberror.Newf(dberror.ErrCategorySchema, dberror.CodeUnknownAttribute,
			"predicate attribute %q not in schema %v", attr, s)
	}
	if operand == nil {
		operand = types.Null(a.Type)
	}
	if !types.CheckType(operand, a.Type) {
		return nil, dberror.Newf(dberror.ErrCategorySchema, dberror.CodeTypeMismatch,
			"predicate operand %v is %s, attribute %q is %s", operand, operand.Type(), attr, a.Type)
	}

	p := &Predicate{attr: attr, op: op, operand: operand}
	if v, ok := s.GetValue(attr); ok {
		p.def = v.Default
	}
	return p, nil
}

// Filter evaluates this predicate against a tuple.
func (p *Predicate) Filter(t *tuple.Tuple) (bool, error) {
	field := t.ValueOr(p.attr, p.def)

	if types.IsNull(field) || types.IsNull(p.operand) {
		both := types.IsNull(field) && types.IsNull(p.operand)
		switch p.op {
		case primitives.Equals:
			return both, nil
		case primitives.NotEqual, primitives.NotEqualsBracket:
			return !both, nil
		default:
			return false, nil
		}
	}
	return field.Compare(p.op, p.operand)
}

// String returns the predicate in "attr op operand" form, e.g. "v > 100".
func (p *Predicate) String() string {
	return fmt.Sprintf("%s %s %s", p.attr, p.op, p.operand)
}
