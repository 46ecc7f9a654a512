// clipflow: searchable clipboard history.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"go.klb.dev/clipflow/internal/logging"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "clipflow",
		Short: "Searchable clipboard history",
		Long: `clipflow watches the system clipboard and keeps a bounded, searchable
history of everything you copy. Recall an entry to put it back on the
clipboard.

Run "clipflow run" for the terminal UI or "clipflow daemon" to record in the
background. The list/copy/delete/clear/status/add commands talk to a running
daemon over a local socket.

Config file search order (first found wins):
  /etc/clipflow/clipflow.toml
  $HOME/.config/clipflow/clipflow.toml
  path supplied via --config

All flags can be set via CLIPFLOW_<FLAG> env vars or config-file keys.
Search behaviour lives in settings.toml; see "clipflow settings list".`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newRunCmd(),
		newDaemonCmd(),
		newListCmd(),
		newCopyCmd(),
		newDeleteCmd(),
		newClearCmd(),
		newStatusCmd(),
		newAddCmd(),
		newSettingsCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "clipflow %s\n", Version)
		},
	}
}

// resolveLogging sets up the global slog logger after flags are parsed.
func resolveLogging(verbose bool, formatStr, levelStr string, w io.Writer) {
	format := logging.ParseFormat(formatStr)
	level := logging.ParseLevel(levelStr)
	if levelStr == "" {
		if verbose {
			level = logging.ParseLevel("debug")
		} else {
			level = logging.ParseLevel("info")
		}
	}
	logging.Setup(format, level, w)
}
