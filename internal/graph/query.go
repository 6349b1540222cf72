package graph

import "slices"

type nodeResolver func(g *Graph, from, label, to string) NodeSet

const (
	comboQueryNullNull   = int(Query) + 3*int(Null) + 9*int(Null)
	comboNullNullQuery   = int(Null) + 3*int(Null) + 9*int(Query)
	comboQueryNullQuery  = int(Query) + 3*int(Null) + 9*int(Query)
	comboQueryNullBound  = int(Query) + 3*int(Null) + 9*int(Bound)
	comboBoundNullQuery  = int(Bound) + 3*int(Null) + 9*int(Query)
	comboQueryBoundBound = int(Query) + 3*int(Bound) + 9*int(Bound)
	comboBoundBoundQuery = int(Bound) + 3*int(Bound) + 9*int(Query)
	comboQueryBoundNull  = int(Query) + 3*int(Bound) + 9*int(Null)
	comboNullBoundQuery  = int(Null) + 3*int(Bound) + 9*int(Query)
	comboQueryBoundQuery = int(Query) + 3*int(Bound) + 9*int(Query)
)

// nodeResolvers is indexed by combination(from, label, to). Nil entries are
// unsupported.
var nodeResolvers = [27]nodeResolver{
	comboQueryNullNull: func(g *Graph, _, _, _ string) NodeSet {
		return g.FromNodes()
	},
	comboNullNullQuery: func(g *Graph, _, _, _ string) NodeSet {
		return g.ToNodes()
	},
	comboQueryNullQuery: func(g *Graph, _, _, _ string) NodeSet {
		return g.Nodes()
	},
	comboQueryNullBound: func(g *Graph, _, _, to string) NodeSet {
		return g.NodesToNode(to)
	},
	comboBoundNullQuery: func(g *Graph, from, _, _ string) NodeSet {
		return g.NodesFromNode(from)
	},
	comboQueryBoundBound: func(g *Graph, _, label, to string) NodeSet {
		return g.NodesViaToNode(label, to)
	},
	comboBoundBoundQuery: func(g *Graph, from, label, _ string) NodeSet {
		return g.NodesFromNodeVia(from, label)
	},
	comboQueryBoundNull: func(g *Graph, _, label, _ string) NodeSet {
		return g.EdgesLabeled(label).fromNodes()
	},
	comboNullBoundQuery: func(g *Graph, _, label, _ string) NodeSet {
		return g.EdgesLabeled(label).toNodes()
	},
	comboQueryBoundQuery: func(g *Graph, _, label, _ string) NodeSet {
		edges := g.EdgesLabeled(label)
		return edges.fromNodes().Union(edges.toNodes())
	},
}

// NodesMatching resolves a node query. A Query pattern marks the slot whose
// nodes are returned, Bound restricts to a literal and Any leaves a slot
// unconstrained. At least one of from and to must be a Query pattern.
//
// Supported combinations (from, label, to):
//
//	?  -  -    nodes that start an edge
//	-  -  ?    nodes that end an edge
//	?  -  ?    all nodes
//	?  -  b    nodes with an edge to b
//	a  -  ?    nodes a has an edge to
//	?  L  b    nodes with an L edge to b
//	a  L  ?    nodes a has an L edge to
//	?  L  -    nodes that start an L edge
//	-  L  ?    nodes that end an L edge
//	?  L  ?    nodes that start or end an L edge
func (g *Graph) NodesMatching(from, label, to Pattern) (NodeSet, error) {
	if from.kind != Query && to.kind != Query {
		return NodeSet{}, &InvalidQueryError{From: from, Label: label, To: to}
	}
	resolve := nodeResolvers[combination(from.kind, label.kind, to.kind)]
	if resolve == nil {
		return NodeSet{}, &UnsupportedQueryError{From: from, Label: label, To: to}
	}
	return resolve(g, from.text, label.text, to.text), nil
}

// EdgesMatching returns the edges matching every Bound pattern. Any and
// Query patterns leave their slot unconstrained.
func (g *Graph) EdgesMatching(from, label, to Pattern) EdgeSet {
	var ids [3]ID
	var sets []EdgeSet
	for i, slot := range []struct {
		p  Pattern
		ix *EdgeIndex
	}{{from, g.from}, {label, g.label}, {to, g.to}} {
		if slot.p.kind != Bound {
			continue
		}
		id := g.idOf(slot.p.text)
		if id == 0 {
			return EdgeSet{}
		}
		ids[i] = id
		sets = append(sets, slot.ix.EdgesFor(id))
	}

	switch len(sets) {
	case 0:
		return g.edges
	case 1:
		return sets[0]
	case 3:
		e, ok := g.findEdge(ids[0], ids[1], ids[2])
		if !ok {
			return EdgeSet{}
		}
		return newEdgeSet(g.s, []int{e})
	}
	slices.SortFunc(sets, func(a, b EdgeSet) int { return a.Len() - b.Len() })
	return sets[0].Intersect(sets[1])
}
