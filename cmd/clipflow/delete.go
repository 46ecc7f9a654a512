package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipflow/internal/history"
	"go.klb.dev/clipflow/internal/ipc"
)

func newDeleteCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "delete <position> [query...]",
		Aliases: []string{"rm"},
		Short:   "Remove an item from the history",
		Long: `Deletes the item at <position> (as printed by "clipflow list" with the same
query). Works on the store directly when no daemon is running.`,
		Args:    cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, args []string) error { return runDelete(cmd, v, args) },
	}

	addStoreCmdFlags(cmd)
	return cmd
}

func runDelete(cmd *cobra.Command, v *viper.Viper, args []string) error {
	setupCLILogging(v)

	pos, err := parsePosition(args[0])
	if err != nil {
		return err
	}
	query := strings.Join(args[1:], " ")

	var content string
	handled, err := withDaemon(func(c *ipc.Client) error {
		var err error
		content, err = c.Delete(query, pos-1)
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
		it, err := o.pick(query, pos)
		if err != nil {
			return err
		}
		o.history.Remove(it.Content)
		if err := o.store.Save(cmd.Context(), o.history.Snapshot()); err != nil {
			return fmt.Errorf("save history: %w", err)
		}
		content = it.Content
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted: %s\n", history.Preview(content, 60))
	return nil
}
