package graph

import (
	"errors"
	"fmt"
	"slices"

	"github.com/imyousuf/stringgraph/internal/strpool"
)

// ID is the interned form of a node id, edge label or property string.
type ID = strpool.ID

// Constructing receives graph content. The Builder implements it, and so do
// the readers that rebuild graphs from persisted or textual forms.
type Constructing interface {
	// AddNode adds a node. Adding an existing node is a no-op.
	AddNode(id string)

	// AddEdge adds an edge and both of its endpoints. Adding an existing
	// (from, label, to) triple is a no-op.
	AddEdge(from, label, to string)

	// SetNodeProperty sets a property on a node that was already added.
	SetNodeProperty(node, name, value string) error
}

// Store is the immutable, fully-built representation of one graph. Every
// string is held as an id into the store's own pool.
type Store struct {
	pool      *strpool.Pool
	nodes     []ID
	nodeIndex map[ID]struct{}
	edges     []ID // from, to, label per edge
	props     map[ID][]ID
	propNodes []ID
}

// NewStore validates its inputs and wraps them in a Store. edgeTriples holds
// (from, to, label) per edge; props maps a node to its interleaved
// (name, value) ids. The store takes ownership of all slices.
func NewStore(pool *strpool.Pool, nodeIDs, edgeTriples []ID, props map[ID][]ID) (*Store, error) {
	if pool == nil {
		return nil, errors.New("graph: nil string pool")
	}
	if len(edgeTriples)%3 != 0 {
		return nil, fmt.Errorf("graph: edge array length %d is not a multiple of 3", len(edgeTriples))
	}

	s := &Store{
		pool:      pool,
		nodes:     nodeIDs,
		nodeIndex: make(map[ID]struct{}, len(nodeIDs)),
		edges:     edgeTriples,
		props:     make(map[ID][]ID, len(props)),
	}

	for _, id := range nodeIDs {
		if _, err := pool.Lookup(id); err != nil {
			return nil, fmt.Errorf("graph: node: %w", err)
		}
		if _, dup := s.nodeIndex[id]; dup {
			return nil, fmt.Errorf("graph: node %d listed twice", id)
		}
		s.nodeIndex[id] = struct{}{}
	}

	seen := make(map[[3]ID]struct{}, len(edgeTriples)/3)
	for e := 0; e < len(edgeTriples)/3; e++ {
		triple := [3]ID{edgeTriples[3*e], edgeTriples[3*e+1], edgeTriples[3*e+2]}
		for _, id := range triple {
			if _, err := pool.Lookup(id); err != nil {
				return nil, fmt.Errorf("graph: edge %d: %w", e, err)
			}
		}
		if !s.HasNodeID(triple[0]) || !s.HasNodeID(triple[1]) {
			return nil, fmt.Errorf("graph: edge %d references a node that is not in the node list", e)
		}
		if _, dup := seen[triple]; dup {
			return nil, fmt.Errorf("graph: edge %d duplicates an earlier edge", e)
		}
		seen[triple] = struct{}{}
	}

	for node, list := range props {
		if !s.HasNodeID(node) {
			return nil, fmt.Errorf("graph: properties for unknown node %d", node)
		}
		if len(list)%2 != 0 {
			return nil, fmt.Errorf("graph: property array of node %d has odd length %d", node, len(list))
		}
		if len(list) == 0 {
			continue
		}
		names := make(map[ID]struct{}, len(list)/2)
		for i, id := range list {
			if _, err := pool.Lookup(id); err != nil {
				return nil, fmt.Errorf("graph: property of node %d: %w", node, err)
			}
			if i%2 == 0 {
				if _, dup := names[id]; dup {
					return nil, fmt.Errorf("graph: node %d has property %d twice", node, id)
				}
				names[id] = struct{}{}
			}
		}
		s.props[node] = list
		s.propNodes = append(s.propNodes, node)
	}
	slices.Sort(s.propNodes)

	return s, nil
}

// Pool returns the store's string pool.
func (s *Store) Pool() *strpool.Pool { return s.pool }

// NodeIDs returns the ids of all nodes. The slice must not be modified.
func (s *Store) NodeIDs() []ID { return s.nodes }

// NodeCount returns the number of nodes.
func (s *Store) NodeCount() int { return len(s.nodes) }

// HasNodeID reports whether id is a node of the store.
func (s *Store) HasNodeID(id ID) bool {
	_, ok := s.nodeIndex[id]
	return ok
}

// EdgeCount returns the number of edges.
func (s *Store) EdgeCount() int { return len(s.edges) / 3 }

// FromID returns the from-node id of edge e.
func (s *Store) FromID(e int) ID { return s.edges[3*e] }

// ToID returns the to-node id of edge e.
func (s *Store) ToID(e int) ID { return s.edges[3*e+1] }

// LabelID returns the label id of edge e.
func (s *Store) LabelID(e int) ID { return s.edges[3*e+2] }

// PropertiesOf returns the interleaved (name, value) ids of node. The
// boolean is false for nodes without properties.
func (s *Store) PropertiesOf(node ID) ([]ID, bool) {
	list, ok := s.props[node]
	return list, ok
}

// NodesWithProperties returns, in ascending id order, the nodes that have at
// least one property.
func (s *Store) NodesWithProperties() []ID { return s.propNodes }

// Replay feeds the store's nodes, edges and properties into c.
func (s *Store) Replay(c Constructing) error {
	for _, id := range s.nodes {
		c.AddNode(s.str(id))
	}
	for e := 0; e < s.EdgeCount(); e++ {
		c.AddEdge(s.str(s.FromID(e)), s.str(s.LabelID(e)), s.str(s.ToID(e)))
	}
	for _, node := range s.propNodes {
		list := s.props[node]
		for i := 0; i < len(list); i += 2 {
			if err := c.SetNodeProperty(s.str(node), s.str(list[i]), s.str(list[i+1])); err != nil {
				return err
			}
		}
	}
	return nil
}

// str resolves an id that NewStore already validated.
func (s *Store) str(id ID) string {
	v, err := s.pool.Lookup(id)
	if err != nil {
		panic(err)
	}
	return v
}
