package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipflow/internal/ipc"
)

func newAddCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "add [text...]",
		Short: "Record text as if it had been copied",
		Long: `Adds the arguments, or stdin when there are none, to the history as a new
clipboard entry. The system clipboard itself is not touched.

Goes through the daemon when one is running, otherwise writes the store.`,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, args []string) error { return runAdd(cmd, v, args) },
	}

	addStoreCmdFlags(cmd)
	return cmd
}

func runAdd(cmd *cobra.Command, v *viper.Viper, args []string) error {
	setupCLILogging(v)

	content := strings.Join(args, " ")
	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		content = string(data)
	}
	if content == "" {
		return nil
	}

	handled, err := withDaemon(func(c *ipc.Client) error { return c.Add(content) })
	if err != nil || handled {
		return err
	}

	o, err := openOffline(cmd.Context(), v)
	if err != nil {
		return err
	}
	defer o.Close()
	o.history.Add(content)
	if err := o.store.Save(cmd.Context(), o.history.Snapshot()); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}
