// Package interchange converts graphs to and from text documents:
// JSON-lines records, YAML and TOML.
package interchange

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/imyousuf/stringgraph/internal/graph"
)

// Document is the YAML and TOML form of a graph.
type Document struct {
	Nodes      []string      `json:"nodes,omitempty" yaml:"nodes,omitempty" toml:"nodes,omitempty"`
	Edges      []EdgeDoc     `json:"edges,omitempty" yaml:"edges,omitempty" toml:"edges,omitempty"`
	Properties []PropertyDoc `json:"properties,omitempty" yaml:"properties,omitempty" toml:"properties,omitempty"`
}

// EdgeDoc is one edge of a Document.
type EdgeDoc struct {
	From  string `json:"from" yaml:"from" toml:"from"`
	Label string `json:"label" yaml:"label" toml:"label"`
	To    string `json:"to" yaml:"to" toml:"to"`
}

// PropertyDoc is one node property of a Document.
type PropertyDoc struct {
	Node  string `json:"node" yaml:"node" toml:"node"`
	Name  string `json:"name" yaml:"name" toml:"name"`
	Value string `json:"value" yaml:"value" toml:"value"`
}

// FromGraph lists the content of g in a stable order: nodes by id, edges by
// from, label and to, properties by node and name. Nodes that only appear
// as edge endpoints are listed too.
func FromGraph(g *graph.Graph) Document {
	var d Document
	d.Nodes = g.Nodes().Strings()
	for _, e := range g.Edges().Sorted() {
		d.Edges = append(d.Edges, EdgeDoc{From: e.From().String(), Label: e.Label(), To: e.To().String()})
	}
	for _, node := range d.Nodes {
		props := g.NodeProperties(node)
		for p := range props.All() {
			d.Properties = append(d.Properties, PropertyDoc{Node: node, Name: p.Name(), Value: p.Value()})
		}
	}
	slices.SortStableFunc(d.Properties, func(a, b PropertyDoc) int {
		if c := cmp.Compare(a.Node, b.Node); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return d
}

// Apply adds the document's nodes and edges to c, then sets its
// properties.
func (d Document) Apply(c graph.Constructing) error {
	for _, n := range d.Nodes {
		c.AddNode(n)
	}
	for _, e := range d.Edges {
		c.AddEdge(e.From, e.Label, e.To)
	}
	for i, p := range d.Properties {
		if err := c.SetNodeProperty(p.Node, p.Name, p.Value); err != nil {
			return fmt.Errorf("property %d (%s.%s): %w", i, p.Node, p.Name, err)
		}
	}
	return nil
}
