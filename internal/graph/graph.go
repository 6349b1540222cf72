// Package graph holds an immutable, string-labeled directed multigraph and
// answers neighbor, edge and property queries over it.
//
// Every string is interned into a dense integer id when the graph is built.
// A Graph wraps a Store with three edge indices (by from-node, to-node and
// label) built once at construction. Reads never fail for unknown strings;
// they return empty results instead.
package graph

// Graph answers queries over a Store. It is safe for concurrent use.
type Graph struct {
	s     *Store
	from  *EdgeIndex
	to    *EdgeIndex
	label *EdgeIndex
	nodes NodeSet
	edges EdgeSet
}

// New indexes s.
func New(s *Store) *Graph {
	from, to, label := buildIndices(s)
	all := make([]int, s.EdgeCount())
	for i := range all {
		all[i] = i
	}
	return &Graph{
		s:     s,
		from:  from,
		to:    to,
		label: label,
		nodes: newNodeSet(s, s.NodeIDs()),
		edges: newEdgeSet(s, all),
	}
}

// Store returns the underlying store.
func (g *Graph) Store() *Store { return g.s }

// FromIndex returns the index keyed by from-node.
func (g *Graph) FromIndex() *EdgeIndex { return g.from }

// ToIndex returns the index keyed by to-node.
func (g *Graph) ToIndex() *EdgeIndex { return g.to }

// LabelIndex returns the index keyed by label.
func (g *Graph) LabelIndex() *EdgeIndex { return g.label }

func (g *Graph) idOf(s string) ID { return g.s.pool.IDOf(s) }

// Nodes returns all nodes.
func (g *Graph) Nodes() NodeSet { return g.nodes }

// Edges returns all edges.
func (g *Graph) Edges() EdgeSet { return g.edges }

// Node returns the node with the given id string.
func (g *Graph) Node(id string) (Node, bool) {
	nid := g.idOf(id)
	if nid == 0 || !g.s.HasNodeID(nid) {
		return Node{}, false
	}
	return Node{s: g.s, id: nid}, true
}

// HasNode reports whether the graph has a node with the given id string.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.Node(id)
	return ok
}

// FromNodes returns the distinct nodes that start at least one edge.
func (g *Graph) FromNodes() NodeSet {
	return newNodeSet(g.s, g.from.Keys())
}

// ToNodes returns the distinct nodes that end at least one edge.
func (g *Graph) ToNodes() NodeSet {
	return newNodeSet(g.s, g.to.Keys())
}

// EdgeLabels returns the distinct labels of all edges.
func (g *Graph) EdgeLabels() LabelSet {
	return LabelSet{s: g.s, ids: g.label.Keys()}
}

// EdgesLabeled returns the edges with the given label.
func (g *Graph) EdgesLabeled(label string) EdgeSet {
	return g.label.EdgesFor(g.idOf(label))
}

// EdgesFromNode returns the edges starting at node.
func (g *Graph) EdgesFromNode(node string) EdgeSet {
	return g.from.EdgesFor(g.idOf(node))
}

// EdgesToNode returns the edges ending at node.
func (g *Graph) EdgesToNode(node string) EdgeSet {
	return g.to.EdgesFor(g.idOf(node))
}

// EdgesWith returns the edges for which keep returns true.
func (g *Graph) EdgesWith(keep func(Edge) bool) EdgeSet {
	return g.edges.Filter(keep)
}

// NodesFromNode returns the nodes that node has an edge to.
func (g *Graph) NodesFromNode(node string) NodeSet {
	return g.EdgesFromNode(node).toNodes()
}

// NodesToNode returns the nodes that have an edge to node.
func (g *Graph) NodesToNode(node string) NodeSet {
	return g.EdgesToNode(node).fromNodes()
}

// NodesFromNodeVia returns the nodes that node has an edge labeled label to.
func (g *Graph) NodesFromNodeVia(node, label string) NodeSet {
	return g.withLabel(g.EdgesFromNode(node), label).toNodes()
}

// NodesViaToNode returns the nodes that have an edge labeled label to node.
func (g *Graph) NodesViaToNode(label, node string) NodeSet {
	return g.withLabel(g.EdgesToNode(node), label).fromNodes()
}

// EdgeLabelsFromNode returns the labels of the edges starting at node.
func (g *Graph) EdgeLabelsFromNode(node string) LabelSet {
	return g.EdgesFromNode(node).labels()
}

// EdgeLabelsToNode returns the labels of the edges ending at node.
func (g *Graph) EdgeLabelsToNode(node string) LabelSet {
	return g.EdgesToNode(node).labels()
}

func (g *Graph) withLabel(edges EdgeSet, label string) EdgeSet {
	if edges.IsEmpty() {
		return EdgeSet{}
	}
	lid := g.idOf(label)
	if lid == 0 {
		return EdgeSet{}
	}
	return edges.Filter(func(e Edge) bool { return e.LabelID() == lid })
}

// HasEdge reports whether the graph has the edge (from, label, to).
func (g *Graph) HasEdge(from, label, to string) bool {
	_, ok := g.findEdge(g.idOf(from), g.idOf(label), g.idOf(to))
	return ok
}

// findEdge looks the triple up through the smaller of the from and to
// entries.
func (g *Graph) findEdge(from, label, to ID) (int, bool) {
	if from == 0 || label == 0 || to == 0 {
		return 0, false
	}
	candidates := g.from.EdgesFor(from)
	if other := g.to.EdgesFor(to); other.Len() < candidates.Len() {
		candidates = other
	}
	for _, e := range candidates.ids() {
		if g.s.FromID(e) == from && g.s.ToID(e) == to && g.s.LabelID(e) == label {
			return e, true
		}
	}
	return 0, false
}

// NodeProperties returns the properties of node. Unknown nodes have none.
func (g *Graph) NodeProperties(node string) Properties {
	list, ok := g.s.PropertiesOf(g.idOf(node))
	if !ok {
		return Properties{}
	}
	return Properties{s: g.s, ids: list}
}

// HasNodeProperty reports whether node has a property called name.
func (g *Graph) HasNodeProperty(node, name string) bool {
	_, ok := g.NodeProperties(node).Lookup(name)
	return ok
}

// NodeProperty returns the property of node called name.
func (g *Graph) NodeProperty(node, name string) (Property, error) {
	p, ok := g.NodeProperties(node).Lookup(name)
	if !ok {
		return Property{}, &NoSuchPropertyError{Node: node, Name: name}
	}
	return p, nil
}

// NodePropertyValue returns the value of the property of node called name.
func (g *Graph) NodePropertyValue(node, name string) (string, error) {
	p, err := g.NodeProperty(node, name)
	if err != nil {
		return "", err
	}
	return p.Value(), nil
}

// NodePropertyValueOr returns the value of the property of node called
// name, or def when there is no such property.
func (g *Graph) NodePropertyValueOr(node, name, def string) string {
	if p, ok := g.NodeProperties(node).Lookup(name); ok {
		return p.Value()
	}
	return def
}

// Replay feeds the graph's content into c.
func (g *Graph) Replay(c Constructing) error {
	return g.s.Replay(c)
}
