package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/imyousuf/stringgraph/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or initialize configuration",
		Long: `View stringgraph configuration.

By default, displays the effective configuration (file, environment and
defaults). Use 'config init' to write a configuration file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigView(cmd, a.cfg)
		},
	}

	cmd.AddCommand(newConfigInitCmd(a))

	return cmd
}

func runConfigView(cmd *cobra.Command, cfg *config.Config) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)

	fmt.Fprintln(out, headerStyle.Render("stringgraph Configuration"))
	fmt.Fprintln(out, headerStyle.Render(strings.Repeat("=", 25)))
	fmt.Fprintln(out)

	printSection(out, "Store")
	printKV(out, "Location", orNone(cfg.Store.Location))
	printKV(out, "Catalog dir", orNone(cfg.Store.CatalogDir))
	fmt.Fprintln(out)

	printSection(out, "Export")
	printKV(out, "Graph name", orNone(cfg.Export.GraphName))
	printKV(out, "Sort edges", boolYesNo(cfg.Export.SortEdges))
	fmt.Fprintln(out)

	printSection(out, "Logging")
	printKV(out, "Level", cfg.Log.Level)
	printKV(out, "Format", cfg.Log.Format)
	fmt.Fprintln(out)

	printSection(out, "Watch")
	printKV(out, "Debounce", cfg.Watch.Debounce.String())
	printKV(out, "Metrics addr", orNone(cfg.Metrics.Addr))
	fmt.Fprintln(out)

	if aliases := config.ListAliases(); len(aliases) > 0 {
		printSection(out, "Aliases")
		for _, al := range aliases {
			printKV(out, config.AliasPrefix+al.Name, al.Location)
		}
		fmt.Fprintln(out)
	}
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func newConfigInitCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a configuration file",
		Long: `Write the effective configuration to path (default: .stringgraph.yaml)
so it can be edited. An existing file is kept unless --force is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultConfigFile + "." + config.DefaultConfigType
			if len(args) == 1 {
				path = args[0]
			}
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists; use --force to overwrite", path)
				} else if !errors.Is(err, fs.ErrNotExist) {
					return err
				}
			}
			if err := config.WriteConfig(a.cfg, path); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration saved to %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	return cmd
}
