// Package cli implements the command-line interface for stringgraph.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/imyousuf/stringgraph/internal/config"
	"github.com/imyousuf/stringgraph/internal/graph"
	"github.com/imyousuf/stringgraph/internal/logging"
	"github.com/imyousuf/stringgraph/internal/storage"
)

// app is the state shared by the commands of one invocation.
type app struct {
	cfgFile string
	verbose bool

	cfg     *config.Config
	logger  *slog.Logger
	factory *storage.Factory
}

// Execute runs the root command.
func Execute() error {
	root, a := newRootCmd()
	return a.execute(context.Background(), root)
}

// execute runs root and releases the stores it opened.
func (a *app) execute(ctx context.Context, root *cobra.Command) error {
	err := root.ExecuteContext(ctx)
	if a.factory != nil {
		if cerr := a.factory.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}
	return err
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "stringgraph",
		Short: "stringgraph - compact string-labeled graphs you can build, store and query",
		Long: `stringgraph stores directed, labeled multigraphs whose node ids, edge
labels and properties are arbitrary strings, in a compact binary format.

Commands:
  build      Build a graph from JSON-lines, YAML or TOML documents
  query      Query nodes, edges, labels and properties
  export     Export a graph as DOT, dump text, JSON lines, YAML or TOML
  status     Show the header, blocks and size of a stored graph
  catalog    Manage named graphs in a BadgerDB catalog
  alias      Name graph locations for use as @name
  watch      Rebuild a graph whenever its sources change
  config     View or initialize configuration`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	// Persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: .stringgraph.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	if err := viper.BindPFlag("config_file", rootCmd.PersistentFlags().Lookup("config")); err != nil {
		panic(fmt.Sprintf("failed to bind config flag: %v", err))
	}

	rootCmd.AddCommand(newBuildCmd(a))
	rootCmd.AddCommand(newQueryCmd(a))
	rootCmd.AddCommand(newExportCmd(a))
	rootCmd.AddCommand(newStatusCmd(a))
	rootCmd.AddCommand(newCatalogCmd(a))
	rootCmd.AddCommand(newAliasCmd())
	rootCmd.AddCommand(newWatchCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd, a
}

// init loads configuration and sets up logging and the store factory.
func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	logger, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Writer: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.factory = storage.NewFactory(logger)
	return nil
}

// location resolves a location argument: empty means the configured
// default, "@name" an alias.
func (a *app) location(arg string) (string, error) {
	loc := arg
	if loc == "" {
		loc = a.cfg.Store.Location
	}
	if loc == "" {
		return "", fmt.Errorf("no graph location given and store.location is not configured")
	}
	return config.ResolveLocation(loc)
}

// open returns the store at a location argument.
func (a *app) open(arg string) (storage.Store, error) {
	loc, err := a.location(arg)
	if err != nil {
		return nil, err
	}
	return a.factory.Open(loc)
}

// readGraph reads the graph at a location argument.
func (a *app) readGraph(ctx context.Context, arg string) (*graph.Graph, error) {
	s, err := a.open(arg)
	if err != nil {
		return nil, err
	}
	g, err := s.Read(ctx)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("graph loaded", "location", s.Location(),
		"nodes", g.Nodes().Len(), "edges", g.Edges().Len())
	return g, nil
}

func argOrEmpty(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}
