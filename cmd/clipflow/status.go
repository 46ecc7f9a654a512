package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipflow/internal/ipc"
	"go.klb.dev/clipflow/internal/message"
)

func newStatusCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and history status",
		Long: `Reports whether a clipflow daemon is running on the IPC socket and, if so,
its history size, store and clipboard backend. Without a daemon the store is
read directly.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runStatus(cmd, v) },
	}

	cmd.Flags().Bool("json", false, "output raw JSON")
	addStoreCmdFlags(cmd)
	return cmd
}

func runStatus(cmd *cobra.Command, v *viper.Viper) error {
	setupCLILogging(v)

	var st *message.StatusInfo
	handled, err := withDaemon(func(c *ipc.Client) error {
		var err error
		st, err = c.Status()
		return err
	})
	if err != nil {
		return err
	}

	if !handled {
		o, err := openOffline(cmd.Context(), v)
		if err != nil {
			return err
		}
		defer o.Close()
		st = &message.StatusInfo{
			State:    "not running",
			Items:    o.history.Len(),
			MaxItems: o.history.MaxItems(),
			Store:    o.store.Kind(),
		}
	}

	out := cmd.OutOrStdout()
	if v.GetBool("json") {
		enc, _ := json.MarshalIndent(st, "", "  ")
		fmt.Fprintln(out, string(enc))
		return nil
	}
	printStatus(out, st, handled)
	return nil
}

func printStatus(out io.Writer, st *message.StatusInfo, daemon bool) {
	w := tabwriter.NewWriter(out, 1, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Daemon:\t%s\n", st.State)
	if daemon {
		fmt.Fprintf(w, "Socket:\t%s\n", ipc.SocketPath())
		if st.Version != "" {
			fmt.Fprintf(w, "Version:\t%s\n", st.Version)
		}
		if !st.Started.IsZero() {
			fmt.Fprintf(w, "Started:\t%s (up %s)\n", st.Started.Format(time.RFC3339), time.Since(st.Started).Round(time.Second))
		}
		fmt.Fprintf(w, "Clipboard:\t%s\n", st.Clipboard)
		if st.Query != "" {
			fmt.Fprintf(w, "Search:\t%q\n", st.Query)
		}
	}
	fmt.Fprintf(w, "Store:\t%s\n", st.Store)
	fmt.Fprintf(w, "Items:\t%d / %d\n", st.Items, st.MaxItems)
	_ = w.Flush()
}
