package tuple

import (
	"relalg/pkg/types"
)

// KeyComparator compares tuples attribute by attribute over an ordered
// list of key names, stopping at the first difference. A missing field
// compares like a null.
type KeyComparator struct {
	names []string
}

func NewKeyComparator(names []string) KeyComparator {
	cp := make([]string, len(names))
	copy(cp, names)
	return KeyComparator{names: cp}
}

func (c KeyComparator) Compare(a, b *Tuple) int {
	for _, name := range c.names {
		av, _ := a.Get(name)
		bv, _ := b.Get(name)
		if r := types.Order(av, bv); r != 0 {
			return r
		}
	}
	return 0
}

// Names returns the key names the comparator walks.
func (c KeyComparator) Names() []string {
	return c.names
}
