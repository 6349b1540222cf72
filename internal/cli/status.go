package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/imyousuf/stringgraph/internal/codec"
	"github.com/imyousuf/stringgraph/internal/storage"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status [location]",
		Short: "Show the header, blocks and size of a stored graph",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(argOrEmpty(args))
			if err != nil {
				return err
			}
			g, err := s.Read(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printTitle(out, "Graph Status")
			printKV(out, "Location", s.Location())

			if fs, ok := s.(*storage.FileStore); ok {
				if err := printFileLayout(cmd, fs.Path()); err != nil {
					return err
				}
			}
			fmt.Fprintln(out)

			printSection(out, "Contents")
			printKV(out, "Nodes", strconv.Itoa(g.Nodes().Len()))
			printKV(out, "Edges", strconv.Itoa(g.Edges().Len()))
			printKV(out, "Labels", strconv.Itoa(g.EdgeLabels().Len()))
			printKV(out, "Sources", strconv.Itoa(g.FromNodes().Len()))
			printKV(out, "Targets", strconv.Itoa(g.ToNodes().Len()))
			printKV(out, "With properties", strconv.Itoa(len(g.Store().NodesWithProperties())))
			printKV(out, "Strings", strconv.Itoa(g.Store().Pool().Len()))
			fmt.Fprintln(out)
			return nil
		},
	}
}

func printFileLayout(cmd *cobra.Command, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}
	h, blocks, err := codec.Scan(f)
	if err != nil {
		return fmt.Errorf("scan %s: %w", path, err)
	}

	out := cmd.OutOrStdout()
	printKV(out, "Size", fmt.Sprintf("%d bytes", info.Size()))
	printKV(out, "Format", h.Format)
	printKV(out, "Version", fmt.Sprintf("%d.%d", h.Major, h.Minor))
	fmt.Fprintln(out)
	printSection(out, "Blocks")
	for _, b := range blocks {
		printKV(out, b.Tag, fmt.Sprintf("%d bytes", b.Size))
	}
	return nil
}
