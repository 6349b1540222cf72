package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/imyousuf/stringgraph/internal/export"
	"github.com/imyousuf/stringgraph/internal/graph"
	"github.com/imyousuf/stringgraph/internal/interchange"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		outFile   string
		name      string
		sortEdges bool
	)

	cmd := &cobra.Command{
		Use:   "export <dot|dump|jsonl|yaml|toml> [location]",
		Short: "Export a stored graph as text",
		Long: `Export a stored graph as a DOT digraph, the dump text format, or a
JSON-lines, YAML or TOML document that 'build' reads back.`,
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: []string{"dot", "dump", "jsonl", "yaml", "toml"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("name") {
				name = a.cfg.Export.GraphName
			}
			if !cmd.Flags().Changed("sort") {
				sortEdges = a.cfg.Export.SortEdges
			}
			write, err := exporter(args[0], export.DOTOptions{Name: name, SortEdges: sortEdges})
			if err != nil {
				return err
			}

			g, err := a.readGraph(cmd.Context(), argOrEmpty(args[1:]))
			if err != nil {
				return err
			}

			if outFile == "" || outFile == "-" {
				return write(cmd.OutOrStdout(), g)
			}
			f, err := os.Create(outFile)
			if err != nil {
				return fmt.Errorf("create %s: %w", outFile, err)
			}
			w := bufio.NewWriter(f)
			if err := write(w, g); err != nil {
				f.Close()
				return err
			}
			if err := w.Flush(); err != nil {
				f.Close()
				return fmt.Errorf("write %s: %w", outFile, err)
			}
			return f.Close()
		},
	}

	cmd.Flags().StringVarP(&outFile, "output", "o", "", "write to this file instead of stdout")
	cmd.Flags().StringVar(&name, "name", "", "DOT graph name (default: export.graph_name)")
	cmd.Flags().BoolVar(&sortEdges, "sort", false, "sort DOT edges (default: export.sort_edges)")

	return cmd
}

// exporter returns the writer for an export format name.
func exporter(format string, dot export.DOTOptions) (func(io.Writer, *graph.Graph) error, error) {
	switch format {
	case "dot":
		return func(w io.Writer, g *graph.Graph) error { return export.WriteDOT(w, g, dot) }, nil
	case "dump":
		return func(w io.Writer, g *graph.Graph) error { return export.WriteDump(w, g, export.DumpOptions{}) }, nil
	}
	f, err := interchange.ParseFormat(format)
	if err != nil {
		return nil, fmt.Errorf("unknown export format %q (want dot, dump, jsonl, yaml or toml)", format)
	}
	return func(w io.Writer, g *graph.Graph) error { return interchange.Write(w, g, f) }, nil
}
