package graph

import (
	"iter"
	"slices"
)

// LabelSet is an immutable set of edge labels.
type LabelSet struct {
	s   *Store
	ids []ID
}

// Len returns the number of labels.
func (ls LabelSet) Len() int { return len(ls.ids) }

// IsEmpty reports whether the set has no labels.
func (ls LabelSet) IsEmpty() bool { return len(ls.ids) == 0 }

// Contains reports whether label is in the set.
func (ls LabelSet) Contains(label string) bool {
	if ls.s == nil {
		return false
	}
	id := ls.s.pool.IDOf(label)
	return id != 0 && slices.Contains(ls.ids, id)
}

// All yields the labels in no particular order.
func (ls LabelSet) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, id := range ls.ids {
			if !yield(ls.s.str(id)) {
				return
			}
		}
	}
}

// Strings returns the labels in sorted order.
func (ls LabelSet) Strings() []string {
	out := slices.Collect(ls.All())
	slices.Sort(out)
	return out
}
