package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/imyousuf/stringgraph/internal/codec"
)

// Version information (set by ldflags during build).
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and binary format information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "stringgraph version %s\n", Version)
			fmt.Fprintf(out, "  commit: %s\n", Commit)
			fmt.Fprintf(out, "  built: %s\n", BuildDate)
			fmt.Fprintf(out, "  format: %s %d.%d (reads major %d)\n",
				codec.FormatName, codec.MajorVersion, codec.MinorVersion, codec.MajorVersion)
			fmt.Fprintf(out, "  go: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
