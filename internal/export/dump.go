package export

import (
	"bufio"
	"io"
	"slices"
	"strings"

	"github.com/imyousuf/stringgraph/internal/graph"
)

// DumpOptions configures WriteDump.
type DumpOptions struct {
	// IDToText maps node ids and edge labels to display text. Nil means
	// the identity.
	IDToText func(string) string
}

// WriteDump writes one statement per node, sorted case-insensitively by
// display text:
//
//	text{props} .                  no outgoing edges
//	text{props} label to .         one outgoing edge
//	text{props}                    several outgoing edges, one line each,
//		label to ;                 sorted by label then target
//		label to .
//
// Display text is quoted when it contains anything beyond word characters
// and common punctuation. The {props} part is omitted for nodes without
// properties.
func WriteDump(w io.Writer, g *graph.Graph, opts DumpOptions) error {
	toText := opts.IDToText
	if toText == nil {
		toText = func(s string) string { return s }
	}
	text := func(s string) string { return QuoteIfNeeded(toText(s)) }

	nodes := slices.Collect(g.Nodes().All())
	slices.SortFunc(nodes, func(a, b graph.Node) int {
		return compareFold(text(a.String()), text(b.String()))
	})

	bw := bufio.NewWriter(w)
	for _, n := range nodes {
		head := text(n.String()) + propertiesText(g, n.String())
		edges := slices.Collect(g.EdgesFromNode(n.String()).All())
		switch len(edges) {
		case 0:
			bw.WriteString(head + " .\n")
		case 1:
			e := edges[0]
			bw.WriteString(head + " " + text(e.Label()) + " " + text(e.To().String()) + " .\n")
		default:
			slices.SortFunc(edges, func(a, b graph.Edge) int {
				if c := compareFold(text(a.Label()), text(b.Label())); c != 0 {
					return c
				}
				return compareFold(text(a.To().String()), text(b.To().String()))
			})
			bw.WriteString(head + "\n")
			for i, e := range edges {
				end := " ;\n"
				if i == len(edges)-1 {
					end = " .\n"
				}
				bw.WriteString("\t" + text(e.Label()) + " " + text(e.To().String()) + end)
			}
		}
	}
	return bw.Flush()
}

func propertiesText(g *graph.Graph, node string) string {
	props := g.NodeProperties(node)
	if props.Len() == 0 {
		return ""
	}
	values := props.Map()
	parts := make([]string, 0, props.Len())
	for _, name := range props.Names() {
		parts = append(parts, name+": "+values[name])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
