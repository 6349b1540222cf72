package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/gobwas/glob"
	"github.com/spf13/cobra"

	"github.com/imyousuf/stringgraph/internal/graph"
	"github.com/imyousuf/stringgraph/internal/interchange"
	"github.com/imyousuf/stringgraph/internal/metrics"
)

// queryOptions are the flags shared by the query subcommands.
type queryOptions struct {
	graph   string
	match   string
	asJSON  bool
	matcher glob.Glob
}

func (o *queryOptions) compile() error {
	if o.match == "" {
		o.matcher = nil
		return nil
	}
	g, err := glob.Compile(o.match)
	if err != nil {
		return fmt.Errorf("bad --match pattern %q: %w", o.match, err)
	}
	o.matcher = g
	return nil
}

func (o *queryOptions) keep(s string) bool {
	return o.matcher == nil || o.matcher.Match(s)
}

// printStrings writes one value per line, or a JSON array.
func (o *queryOptions) printStrings(out io.Writer, values []string) error {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if o.keep(v) {
			kept = append(kept, v)
		}
	}
	if o.asJSON {
		return writeJSON(out, kept)
	}
	for _, v := range kept {
		fmt.Fprintln(out, v)
	}
	return nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newQueryCmd(a *app) *cobra.Command {
	opts := &queryOptions{}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query a stored graph",
		Long: `Query nodes, edges, edge labels and node properties of a stored graph.

Node queries take three patterns, from, label and to:
  ?name   the position to return
  -       any value
  text    exactly this value (use "" for the empty label)`,
	}

	cmd.PersistentFlags().StringVarP(&opts.graph, "graph", "g", "", "graph location (default: store.location)")
	cmd.PersistentFlags().StringVar(&opts.match, "match", "", "only print results matching this glob")
	cmd.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "print results as JSON")

	cmd.AddCommand(newQueryNodesCmd(a, opts))
	cmd.AddCommand(newQueryEdgesCmd(a, opts))
	cmd.AddCommand(newQueryLabelsCmd(a, opts))
	cmd.AddCommand(newQueryPropsCmd(a, opts))

	return cmd
}

func newQueryNodesCmd(a *app, opts *queryOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "nodes <from> <label> <to>",
		Short: "List the nodes matching a pattern triple",
		Example: `  stringgraph query nodes ?x calls db      # nodes with a "calls" edge to db
  stringgraph query nodes api - ?x         # every node api points to
  stringgraph query nodes ?x - -           # every node with an outgoing edge`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.compile(); err != nil {
				return err
			}
			g, err := a.readGraph(cmd.Context(), opts.graph)
			if err != nil {
				return err
			}
			nodes, err := g.NodesMatching(graph.ParsePattern(args[0]), graph.ParsePattern(args[1]), graph.ParsePattern(args[2]))
			if err != nil {
				return err
			}
			metrics.QueriesTotal.WithLabelValues("nodes").Inc()
			return opts.printStrings(cmd.OutOrStdout(), nodes.Strings())
		},
	}
}

func newQueryEdgesCmd(a *app, opts *queryOptions) *cobra.Command {
	var from, label, to string

	cmd := &cobra.Command{
		Use:   "edges",
		Short: "List the edges with the given from, label and to",
		Long: `List the edges with the given from node, label and to node. Omitted
flags (or "-") match anything. --match is applied to "from -[label]-> to".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.compile(); err != nil {
				return err
			}
			g, err := a.readGraph(cmd.Context(), opts.graph)
			if err != nil {
				return err
			}
			pattern := func(flag, value string) graph.Pattern {
				if !cmd.Flags().Changed(flag) {
					return graph.Any
				}
				return graph.ParsePattern(value)
			}
			edges := g.EdgesMatching(pattern("from", from), pattern("label", label), pattern("to", to))
			metrics.QueriesTotal.WithLabelValues("edges").Inc()

			out := cmd.OutOrStdout()
			var docs []interchange.EdgeDoc
			for _, e := range edges.Sorted() {
				if !opts.keep(e.String()) {
					continue
				}
				if opts.asJSON {
					docs = append(docs, interchange.EdgeDoc{From: e.From().String(), Label: e.Label(), To: e.To().String()})
					continue
				}
				fmt.Fprintln(out, e.String())
			}
			if opts.asJSON {
				if docs == nil {
					docs = []interchange.EdgeDoc{}
				}
				return writeJSON(out, docs)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "from node")
	cmd.Flags().StringVar(&label, "label", "", "edge label")
	cmd.Flags().StringVar(&to, "to", "", "to node")

	return cmd
}

func newQueryLabelsCmd(a *app, opts *queryOptions) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "labels",
		Short: "List edge labels, optionally of the edges from or to a node",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("from") && cmd.Flags().Changed("to") {
				return fmt.Errorf("--from and --to are mutually exclusive")
			}
			if err := opts.compile(); err != nil {
				return err
			}
			g, err := a.readGraph(cmd.Context(), opts.graph)
			if err != nil {
				return err
			}
			labels := g.EdgeLabels()
			switch {
			case cmd.Flags().Changed("from"):
				labels = g.EdgeLabelsFromNode(from)
			case cmd.Flags().Changed("to"):
				labels = g.EdgeLabelsToNode(to)
			}
			metrics.QueriesTotal.WithLabelValues("labels").Inc()
			return opts.printStrings(cmd.OutOrStdout(), labels.Strings())
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "only labels of edges from this node")
	cmd.Flags().StringVar(&to, "to", "", "only labels of edges to this node")

	return cmd
}

func newQueryPropsCmd(a *app, opts *queryOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "props <node> [name]",
		Short: "Print the properties of a node, or one property value",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.compile(); err != nil {
				return err
			}
			g, err := a.readGraph(cmd.Context(), opts.graph)
			if err != nil {
				return err
			}
			if !g.HasNode(args[0]) {
				return &graph.NoSuchNodeError{Node: args[0]}
			}
			metrics.QueriesTotal.WithLabelValues("props").Inc()

			out := cmd.OutOrStdout()
			if len(args) == 2 {
				v, err := g.NodePropertyValue(args[0], args[1])
				if err != nil {
					return err
				}
				if opts.asJSON {
					return writeJSON(out, v)
				}
				fmt.Fprintln(out, v)
				return nil
			}

			props := g.NodeProperties(args[0])
			kept := make(map[string]string, props.Len())
			for _, name := range props.Names() {
				if opts.keep(name) {
					p, _ := props.Lookup(name)
					kept[name] = p.Value()
				}
			}
			if opts.asJSON {
				return writeJSON(out, kept)
			}
			for _, name := range props.Names() {
				if v, ok := kept[name]; ok {
					fmt.Fprintf(out, "%s=%s\n", name, v)
				}
			}
			return nil
		},
	}
}
