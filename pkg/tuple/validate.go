package tuple

import (
	dberror "relalg/pkg/error"
	"relalg/pkg/schema"
	"relalg/pkg/types"
)

// Validate checks that t conforms to s: every key attribute is present,
// every field name belongs to s and every field has its attribute's type.
func Validate(t *Tuple, s *schema.Schema) error {
	for _, k := range s.Keys() {
		if !t.Has(k.Name) {
			return dberror.Newf(dberror.ErrCategorySchema, dberror.CodeUnknownAttribute,
				"tuple %v is missing key %q", t, k.Name)
		}
	}
	for name, f := range t.fields {
		attr, ok := s.Get(name)
		if !ok {
			return dberror.Newf(dberror.ErrCategorySchema, dberror.CodeUnknownAttribute,
				"tuple %v has attribute %q outside schema %v", t, name, s)
		}
		if !types.CheckType(f, attr.Type) {
			return dberror.Newf(dberror.ErrCategorySchema, dberror.CodeTypeMismatch,
				"attribute %q holds %s value %v, want %s", name, f.Type(), f, attr.Type)
		}
	}
	return nil
}
