// Package export renders graphs as text: DOT digraphs for Graphviz and a
// compact, human-readable dump.
package export

import (
	"bufio"
	"io"
	"slices"

	"github.com/imyousuf/stringgraph/internal/graph"
)

// DOTOptions configures WriteDOT.
type DOTOptions struct {
	// Name is the digraph name. It may be empty.
	Name string
	// SortEdges orders edges by from, label, then to. Otherwise edges are
	// written in store order.
	SortEdges bool
}

// WriteDOT writes g as a DOT digraph. Edges with an empty label have no
// label attribute.
func WriteDOT(w io.Writer, g *graph.Graph, opts DOTOptions) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("digraph ")
	bw.WriteString(Quote(opts.Name))
	bw.WriteString(" {\n")

	var edges []graph.Edge
	if opts.SortEdges {
		edges = g.Edges().Sorted()
	} else {
		edges = slices.Collect(g.Edges().All())
	}
	for _, e := range edges {
		bw.WriteString("    ")
		bw.WriteString(Quote(e.From().String()))
		bw.WriteString(" -> ")
		bw.WriteString(Quote(e.To().String()))
		if label := e.Label(); label != "" {
			bw.WriteString(" [label=")
			bw.WriteString(label)
			bw.WriteString("]")
		}
		bw.WriteString(";\n")
	}
	bw.WriteString("}\n")
	return bw.Flush()
}
