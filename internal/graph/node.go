package graph

import (
	"cmp"
	"iter"
	"slices"
	"sync/atomic"
)

// Node is a node of a graph. Two nodes are equal when they come from the
// same store and have the same id.
type Node struct {
	s  *Store
	id ID
}

// ID returns the interned id of the node.
func (n Node) ID() ID { return n.id }

// IsZero reports whether n is the zero Node.
func (n Node) IsZero() bool { return n.s == nil }

// String returns the node's id string.
func (n Node) String() string {
	if n.s == nil {
		return ""
	}
	return n.s.str(n.id)
}

// NodeSet is an immutable set of nodes. The zero value is empty.
type NodeSet struct {
	s *Store
	l *nodeList
}

type nodeList struct {
	ids    []ID
	sorted atomic.Pointer[[]ID]
}

func newNodeSet(s *Store, ids []ID) NodeSet {
	if len(ids) == 0 {
		return NodeSet{}
	}
	return NodeSet{s: s, l: &nodeList{ids: ids}}
}

// newSortedNodeSet wraps ids that are already ascending and duplicate free.
func newSortedNodeSet(s *Store, ids []ID) NodeSet {
	set := newNodeSet(s, ids)
	if set.l != nil {
		set.l.sorted.Store(&ids)
	}
	return set
}

// sortedIDs returns the ids in ascending order. Concurrent first calls may
// each sort; the last store wins and all results are equal.
func (l *nodeList) sortedIDs() []ID {
	if p := l.sorted.Load(); p != nil {
		return *p
	}
	ids := slices.Clone(l.ids)
	slices.Sort(ids)
	l.sorted.Store(&ids)
	return ids
}

func (ns NodeSet) ids() []ID {
	if ns.l == nil {
		return nil
	}
	return ns.l.ids
}

func (ns NodeSet) sortedIDs() []ID {
	if ns.l == nil {
		return nil
	}
	return ns.l.sortedIDs()
}

// Len returns the number of nodes in the set.
func (ns NodeSet) Len() int { return len(ns.ids()) }

// IsEmpty reports whether the set has no nodes.
func (ns NodeSet) IsEmpty() bool { return ns.Len() == 0 }

// Contains reports whether the node with the given id string is in the set.
func (ns NodeSet) Contains(id string) bool {
	if ns.l == nil {
		return false
	}
	nid := ns.s.pool.IDOf(id)
	if nid == 0 {
		return false
	}
	_, found := slices.BinarySearch(ns.l.sortedIDs(), nid)
	return found
}

// ContainsNode reports whether n is in the set.
func (ns NodeSet) ContainsNode(n Node) bool {
	if ns.l == nil || n.s != ns.s {
		return false
	}
	_, found := slices.BinarySearch(ns.l.sortedIDs(), n.id)
	return found
}

// Intersect returns the nodes present in both sets.
func (ns NodeSet) Intersect(other NodeSet) NodeSet {
	if ns.IsEmpty() || other.IsEmpty() || ns.s != other.s {
		return NodeSet{}
	}
	a, b := ns.sortedIDs(), other.sortedIDs()
	var out []ID
	for i, j := 0, 0; i < len(a) && j < len(b); {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return newSortedNodeSet(ns.s, out)
}

// Union returns the nodes present in either set. Both sets must come from
// the same graph.
func (ns NodeSet) Union(other NodeSet) NodeSet {
	switch {
	case ns.IsEmpty():
		return other
	case other.IsEmpty():
		return ns
	case ns.s != other.s:
		panic("graph: union of node sets from different graphs")
	}
	a, b := ns.sortedIDs(), other.sortedIDs()
	out := make([]ID, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return newSortedNodeSet(ns.s, out)
}

// Filter returns the nodes for which keep returns true.
func (ns NodeSet) Filter(keep func(Node) bool) NodeSet {
	var out []ID
	for _, id := range ns.ids() {
		if keep(Node{s: ns.s, id: id}) {
			out = append(out, id)
		}
	}
	return newNodeSet(ns.s, out)
}

// All yields the nodes in no particular order.
func (ns NodeSet) All() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for _, id := range ns.ids() {
			if !yield(Node{s: ns.s, id: id}) {
				return
			}
		}
	}
}

// Sorted returns the nodes ordered by their id strings.
func (ns NodeSet) Sorted() []Node {
	out := make([]Node, 0, ns.Len())
	for n := range ns.All() {
		out = append(out, n)
	}
	slices.SortFunc(out, func(a, b Node) int {
		return cmp.Compare(a.String(), b.String())
	})
	return out
}

// Strings returns the sorted id strings of the nodes.
func (ns NodeSet) Strings() []string {
	out := make([]string, 0, ns.Len())
	for _, n := range ns.Sorted() {
		out = append(out, n.String())
	}
	return out
}
