package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/imyousuf/stringgraph/internal/config"
)

func newAliasCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alias",
		Short: "Name graph locations",
		Long: `Name graph locations in ~/.stringgraph.conf. Any command that takes a
location accepts @name for a registered alias.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <name> <location>",
		Short: "Register or replace an alias",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.SetAlias(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "@%s -> %s\n", args[0], args[1])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List aliases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			aliases := config.ListAliases()
			if len(aliases) == 0 {
				fmt.Fprintln(out, "No aliases.")
				return nil
			}
			for _, al := range aliases {
				fmt.Fprintf(out, "@%-20s %s\n", al.Name, al.Location)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <name>",
		Short: "Remove an alias",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := config.RemoveAlias(args[0])
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("no alias %q", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed @%s\n", args[0])
			return nil
		},
	})

	return cmd
}
