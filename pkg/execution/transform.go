package execution

import (
	"fmt"
	"strings"
)

// Transform rewrites a tree bottom-up. Parents are transformed first; a
// node whose parents came back unchanged is passed to f as is, otherwise
// it is rebuilt over the new parents (re-running its construction checks)
// before f sees it. f returns its argument to keep a node.
//
// Shared subtrees are transformed once per occurrence.
func Transform(op TupleOp, f func(TupleOp) (TupleOp, error)) (TupleOp, error) {
	parents := op.Parents()
	if len(parents) > 0 {
		changed := false
		next := make([]TupleOp, len(parents))
		for i, p := range parents {
			np, err := Transform(p, f)
			if err != nil {
				return nil, err
			}
			next[i] = np
			if np != p {
				changed = true
			}
		}
		if changed {
			rebuilt, err := op.withParents(next)
			if err != nil {
				return nil, fmt.Errorf("rebuild %s: %w", op.Kind(), err)
			}
			op = rebuilt
		}
	}
	return f(op)
}

// Fold reduces a tree bottom-up: f receives each node together with the
// folded values of its parents, left to right.
func Fold[T any](op TupleOp, f func(op TupleOp, parents []T) T) T {
	parents := op.Parents()
	vals := make([]T, len(parents))
	for i, p := range parents {
		vals[i] = Fold(p, f)
	}
	return f(op, vals)
}

// Visit calls fn for every node in pre-order. Returning false skips the
// node's parents.
func Visit(op TupleOp, fn func(TupleOp) bool) {
	if !fn(op) {
		return
	}
	for _, p := range op.Parents() {
		Visit(p, fn)
	}
}

// CountOps returns the number of nodes in the tree, counting shared
// subtrees once per occurrence.
func CountOps(op TupleOp) int {
	return Fold(op, func(_ TupleOp, parents []int) int {
		n := 1
		for _, c := range parents {
			n += c
		}
		return n
	})
}

// Loads returns the unbound Load leaves of the tree in pre-order.
func Loads(op TupleOp) []*Load {
	var loads []*Load
	Visit(op, func(o TupleOp) bool {
		if l, ok := o.(*Load); ok {
			loads = append(loads, l)
		}
		return true
	})
	return loads
}

// BindLoads replaces every Load whose table is in sources by a LoadData
// over that source.
func BindLoads(op TupleOp, sources map[string]Source) (TupleOp, error) {
	return Transform(op, func(o TupleOp) (TupleOp, error) {
		l, ok := o.(*Load)
		if !ok {
			return o, nil
		}
		src, ok := sources[l.Table]
		if !ok {
			return o, nil
		}
		return NewLoadData(l.Table, l.ResultSchema(), src), nil
	})
}

// Explain renders the tree one node per line, parents indented below
// their child.
func Explain(op TupleOp) string {
	var b strings.Builder
	explain(&b, op, 0)
	return b.String()
}

func explain(b *strings.Builder, op TupleOp, depth int) {
	fmt.Fprintf(b, "%s%s %s\n", strings.Repeat("  ", depth), op, op.ResultSchema())
	for _, p := range op.Parents() {
		explain(b, p, depth+1)
	}
}
