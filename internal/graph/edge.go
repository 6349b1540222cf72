package graph

import (
	"cmp"
	"fmt"
	"iter"
	"slices"
	"sync/atomic"
)

// Edge is a directed, labeled edge of a graph.
type Edge struct {
	s *Store
	n int
}

// Index returns the position of the edge in its store.
func (e Edge) Index() int { return e.n }

// From returns the node the edge starts at.
func (e Edge) From() Node { return Node{s: e.s, id: e.s.FromID(e.n)} }

// To returns the node the edge points to.
func (e Edge) To() Node { return Node{s: e.s, id: e.s.ToID(e.n)} }

// Label returns the edge label, which may be empty.
func (e Edge) Label() string { return e.s.str(e.s.LabelID(e.n)) }

// LabelID returns the interned label.
func (e Edge) LabelID() ID { return e.s.LabelID(e.n) }

func (e Edge) String() string {
	return fmt.Sprintf("%s -[%s]-> %s", e.From(), e.Label(), e.To())
}

// compareEdges orders edges by from, label, then to.
func compareEdges(a, b Edge) int {
	if c := cmp.Compare(a.From().String(), b.From().String()); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Label(), b.Label()); c != 0 {
		return c
	}
	return cmp.Compare(a.To().String(), b.To().String())
}

// EdgeSet is an immutable set of edges. The zero value is empty. Edge
// numbers are kept ascending.
type EdgeSet struct {
	s *Store
	l *edgeList
}

type edgeList struct {
	ids    []int
	lookup atomic.Pointer[map[int]struct{}]
}

func newEdgeSet(s *Store, ids []int) EdgeSet {
	if len(ids) == 0 {
		return EdgeSet{}
	}
	return EdgeSet{s: s, l: &edgeList{ids: ids}}
}

// set returns a hash set of the edge numbers, built on first use.
func (l *edgeList) set() map[int]struct{} {
	if p := l.lookup.Load(); p != nil {
		return *p
	}
	m := make(map[int]struct{}, len(l.ids))
	for _, id := range l.ids {
		m[id] = struct{}{}
	}
	l.lookup.Store(&m)
	return m
}

func (es EdgeSet) ids() []int {
	if es.l == nil {
		return nil
	}
	return es.l.ids
}

// Len returns the number of edges in the set.
func (es EdgeSet) Len() int { return len(es.ids()) }

// IsEmpty reports whether the set has no edges.
func (es EdgeSet) IsEmpty() bool { return es.Len() == 0 }

// Contains reports whether e is in the set.
func (es EdgeSet) Contains(e Edge) bool {
	if es.l == nil || e.s != es.s {
		return false
	}
	_, ok := es.l.set()[e.n]
	return ok
}

// Intersect returns the edges present in both sets. The smaller set is
// hashed and the larger one walked.
func (es EdgeSet) Intersect(other EdgeSet) EdgeSet {
	if es.IsEmpty() || other.IsEmpty() || es.s != other.s {
		return EdgeSet{}
	}
	small, large := es, other
	if small.Len() > large.Len() {
		small, large = large, small
	}
	lookup := small.l.set()
	var out []int
	for _, id := range large.l.ids {
		if _, ok := lookup[id]; ok {
			out = append(out, id)
		}
	}
	return newEdgeSet(es.s, out)
}

// Union returns the edges present in either set. Both sets must come from
// the same graph.
func (es EdgeSet) Union(other EdgeSet) EdgeSet {
	switch {
	case es.IsEmpty():
		return other
	case other.IsEmpty():
		return es
	case es.s != other.s:
		panic("graph: union of edge sets from different graphs")
	}
	a, b := es.l.ids, other.l.ids
	out := make([]int, 0, len(a)+len(b))
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
	return newEdgeSet(es.s, out)
}

// Filter returns the edges for which keep returns true.
func (es EdgeSet) Filter(keep func(Edge) bool) EdgeSet {
	var out []int
	for _, id := range es.ids() {
		if keep(Edge{s: es.s, n: id}) {
			out = append(out, id)
		}
	}
	return newEdgeSet(es.s, out)
}

// All yields the edges in store order.
func (es EdgeSet) All() iter.Seq[Edge] {
	return func(yield func(Edge) bool) {
		for _, id := range es.ids() {
			if !yield(Edge{s: es.s, n: id}) {
				return
			}
		}
	}
}

// Sorted returns the edges ordered by from, label, then to.
func (es EdgeSet) Sorted() []Edge {
	out := make([]Edge, 0, es.Len())
	for e := range es.All() {
		out = append(out, e)
	}
	slices.SortFunc(out, compareEdges)
	return out
}

// fromNodes returns the distinct from-nodes of the set.
func (es EdgeSet) fromNodes() NodeSet {
	return es.project(func(e int) ID { return es.s.FromID(e) })
}

// toNodes returns the distinct to-nodes of the set.
func (es EdgeSet) toNodes() NodeSet {
	return es.project(func(e int) ID { return es.s.ToID(e) })
}

func (es EdgeSet) project(field func(int) ID) NodeSet {
	ids := es.ids()
	if len(ids) == 0 {
		return NodeSet{}
	}
	seen := make(map[ID]struct{}, len(ids))
	var out []ID
	for _, e := range ids {
		id := field(e)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return newNodeSet(es.s, out)
}

func (es EdgeSet) labels() LabelSet {
	ids := es.ids()
	seen := make(map[ID]struct{}, len(ids))
	var out []ID
	for _, e := range ids {
		id := es.s.LabelID(e)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return LabelSet{s: es.s, ids: out}
}
