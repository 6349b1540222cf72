package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/imyousuf/stringgraph/internal/storage"
)

func newCatalogCmd(a *app) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage named graphs in a BadgerDB catalog",
		Long: `Manage named graphs kept together in one BadgerDB directory. A catalog
graph can also be used anywhere a location is expected as
badger://<dir>?graph=<name>.`,
	}

	cmd.PersistentFlags().StringVar(&dir, "dir", "", "catalog directory (default: store.catalog_dir)")

	catalog := func() (*storage.Catalog, error) {
		d := dir
		if d == "" {
			d = a.cfg.Store.CatalogDir
		}
		if d == "" {
			return nil, fmt.Errorf("no catalog directory; use --dir or set store.catalog_dir")
		}
		return a.factory.Catalog(d)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "put <name> [location]",
		Short: "Copy a stored graph into the catalog",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog()
			if err != nil {
				return err
			}
			g, err := a.readGraph(cmd.Context(), argOrEmpty(args[1:]))
			if err != nil {
				return err
			}
			meta, err := c.Put(cmd.Context(), args[0], g)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored %q: %d nodes, %d edges, %d bytes\n",
				meta.Name, meta.Nodes, meta.Edges, meta.Bytes)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <name> <location>",
		Short: "Copy a catalog graph to a location",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog()
			if err != nil {
				return err
			}
			g, err := c.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			dst, err := a.open(args[1])
			if err != nil {
				return err
			}
			if err := dst.Write(cmd.Context(), g); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %q to %s\n", args[0], dst.Location())
			return nil
		},
	})

	var asJSON bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the graphs in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog()
			if err != nil {
				return err
			}
			metas, err := c.List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				if metas == nil {
					metas = []storage.Meta{}
				}
				return writeJSON(out, metas)
			}
			if len(metas) == 0 {
				fmt.Fprintln(out, "No graphs in catalog.")
				return nil
			}
			fmt.Fprintf(out, "%-24s  %8s  %8s  %8s  %10s  %s\n", "NAME", "NODES", "EDGES", "LABELS", "BYTES", "WRITTEN")
			for _, m := range metas {
				fmt.Fprintf(out, "%-24s  %8d  %8d  %8d  %10d  %s\n",
					m.Name, m.Nodes, m.Edges, m.Labels, m.Bytes, m.WrittenAt.Local().Format(time.DateTime))
			}
			return nil
		},
	}
	listCmd.Flags().BoolVar(&asJSON, "json", false, "print metadata as JSON")
	cmd.AddCommand(listCmd)

	cmd.AddCommand(&cobra.Command{
		Use:     "rm <name>",
		Aliases: []string{"delete"},
		Short:   "Delete a graph from the catalog",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog()
			if err != nil {
				return err
			}
			if err := c.Delete(cmd.Context(), args[0]); err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					return fmt.Errorf("no graph %q in catalog %s", args[0], c.Dir())
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q\n", args[0])
			return nil
		},
	})

	return cmd
}
