package graph

import (
	"fmt"

	"github.com/imyousuf/stringgraph/internal/strpool"
)

// Builder accumulates nodes, edges and properties and seals them into a
// Graph. Duplicate nodes and edges are dropped. A Builder is not safe for
// concurrent use and cannot be used after Build.
type Builder struct {
	in      *strpool.Interner
	nodes   []ID
	hasNode map[ID]struct{}
	edges   []ID
	hasEdge map[[3]ID]struct{}
	props   map[ID][]ID
	built   bool
}

var _ Constructing = (*Builder)(nil)

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		in:      strpool.NewInterner(),
		hasNode: make(map[ID]struct{}),
		hasEdge: make(map[[3]ID]struct{}),
		props:   make(map[ID][]ID),
	}
}

// AddNode adds a node.
func (b *Builder) AddNode(id string) {
	b.addNode(b.in.Intern(id))
}

func (b *Builder) addNode(id ID) {
	if _, ok := b.hasNode[id]; ok {
		return
	}
	b.hasNode[id] = struct{}{}
	b.nodes = append(b.nodes, id)
}

// AddEdge adds the edge (from, label, to) and both endpoints.
func (b *Builder) AddEdge(from, label, to string) {
	f := b.in.Intern(from)
	l := b.in.Intern(label)
	t := b.in.Intern(to)
	b.addNode(f)
	b.addNode(t)

	key := [3]ID{f, t, l}
	if _, ok := b.hasEdge[key]; ok {
		return
	}
	b.hasEdge[key] = struct{}{}
	b.edges = append(b.edges, f, t, l)
}

// SetNodeProperty sets the property name of node to value, replacing an
// earlier value. The node must already have been added.
func (b *Builder) SetNodeProperty(node, name, value string) error {
	nid := b.in.IDOf(node)
	if _, ok := b.hasNode[nid]; nid == 0 || !ok {
		return &NoSuchNodeError{Node: node}
	}
	n := b.in.Intern(name)
	v := b.in.Intern(value)

	list := b.props[nid]
	for i := 0; i < len(list); i += 2 {
		if list[i] == n {
			list[i+1] = v
			return nil
		}
	}
	b.props[nid] = append(list, n, v)
	return nil
}

// NodeCount returns the number of nodes added so far.
func (b *Builder) NodeCount() int { return len(b.nodes) }

// EdgeCount returns the number of distinct edges added so far.
func (b *Builder) EdgeCount() int { return len(b.edges) / 3 }

// Build seals the accumulated content into a Graph.
func (b *Builder) Build() *Graph {
	if b.built {
		panic("graph: Build called twice")
	}
	b.built = true
	s, err := NewStore(b.in.Freeze(), b.nodes, b.edges, b.props)
	if err != nil {
		panic(fmt.Sprintf("graph: builder produced an invalid store: %v", err))
	}
	b.hasNode, b.hasEdge, b.props = nil, nil, nil
	return New(s)
}
