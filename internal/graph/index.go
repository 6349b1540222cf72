package graph

import "sync"

// EdgeIndex maps a from-node, to-node or label id to the edges sharing it.
type EdgeIndex struct {
	s    *Store
	raw  map[ID][]int
	keys []ID
	memo sync.Map // ID -> EdgeSet
}

// buildIndices fills the from, to and label indices in one pass over the
// edges. Edge numbers within each entry are ascending.
func buildIndices(s *Store) (from, to, label *EdgeIndex) {
	from = &EdgeIndex{s: s, raw: make(map[ID][]int)}
	to = &EdgeIndex{s: s, raw: make(map[ID][]int)}
	label = &EdgeIndex{s: s, raw: make(map[ID][]int)}
	for e := 0; e < s.EdgeCount(); e++ {
		from.add(s.FromID(e), e)
		to.add(s.ToID(e), e)
		label.add(s.LabelID(e), e)
	}
	return from, to, label
}

func (ix *EdgeIndex) add(key ID, e int) {
	list, ok := ix.raw[key]
	if !ok {
		ix.keys = append(ix.keys, key)
	}
	ix.raw[key] = append(list, e)
}

// EdgesFor returns the edges with the given key. The None key yields an
// empty set without consulting the index.
func (ix *EdgeIndex) EdgesFor(key ID) EdgeSet {
	if key == 0 {
		return EdgeSet{}
	}
	if v, ok := ix.memo.Load(key); ok {
		return v.(EdgeSet)
	}
	list, ok := ix.raw[key]
	if !ok {
		return EdgeSet{}
	}
	set := newEdgeSet(ix.s, list)
	ix.memo.Store(key, set)
	return set
}

// Keys returns the populated keys in first-seen order. The slice must not be
// modified.
func (ix *EdgeIndex) Keys() []ID { return ix.keys }

// Len returns the number of populated keys.
func (ix *EdgeIndex) Len() int { return len(ix.keys) }
