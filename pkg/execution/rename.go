package execution

import (
	"fmt"
	"sort"
	"strings"

	dberror "relalg/pkg/error"
	"relalg/pkg/iterator"
	"relalg/pkg/schema"
	"relalg/pkg/tuple"
)

// Rename substitutes attribute names in the schema and in every tuple.
// Names not present in the parent schema are ignored.
type Rename struct {
	parent  TupleOp
	mapping map[string]string
	schema  *schema.Schema
}

func NewRename(parent TupleOp, mapping map[string]string) (*Rename, error) {
	ps := parent.ResultSchema()

	keys := ps.Keys()
	for i, k := range keys {
		if to, ok := mapping[k.Name]; ok {
			keys[i] = k.WithName(to)
		}
	}
	vals := ps.Vals()
	for i, v := range vals {
		if to, ok := mapping[v.Name]; ok {
			vals[i] = v.WithName(to)
		}
	}

	s, err := schema.New(keys, vals)
	if err != nil {
		return nil, dberror.Wrap(err, dberror.CodeDuplicateAttribute, "Rename", "execution")
	}

	cp := make(map[string]string, len(mapping))
	for from, to := range mapping {
		cp[from] = to
	}

	r := &Rename{parent: parent, mapping: cp, schema: s}
	logBuilt(r)
	return r, nil
}

func (r *Rename) ResultSchema() *schema.Schema { return r.schema }
func (r *Rename) Parents() []TupleOp           { return []TupleOp{r.parent} }
func (r *Rename) Kind() Kind                   { return KindRename }

func (r *Rename) String() string {
	pairs := make([]string, 0, len(r.mapping))
	for from, to := range r.mapping {
		pairs = append(pairs, from+"->"+to)
	}
	sort.Strings(pairs)
	return fmt.Sprintf("Rename(%s)", strings.Join(pairs, ", "))
}

func (r *Rename) withParents(parents []TupleOp) (TupleOp, error) {
	return NewRename(parents[0], r.mapping)
}

func (r *Rename) Run() (iterator.TupleIterator, error) {
	in, err := r.parent.Run()
	if err != nil {
		return nil, err
	}
	return iterator.NewBaseIterator(func() (*tuple.Tuple, error) {
		hasNext, err := in.HasNext()
		if err != nil || !hasNext {
			return nil, err
		}
		t, err := in.Next()
		if err != nil {
			return nil, err
		}
		return t.Rename(r.mapping), nil
	}).OnClose(func() error {
		return iterator.Close(in)
	}), nil
}
