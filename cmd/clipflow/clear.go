package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipflow/internal/ipc"
)

func newClearCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "clear",
		Short:   "Delete the whole history",
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runClear(cmd, v) },
	}

	cmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	addStoreCmdFlags(cmd)
	return cmd
}

func runClear(cmd *cobra.Command, v *viper.Viper) error {
	setupCLILogging(v)

	if !v.GetBool("yes") {
		fmt.Fprint(cmd.OutOrStdout(), "Clear the entire clipboard history? [y/N] ")
		line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if a := strings.ToLower(strings.TrimSpace(line)); a != "y" && a != "yes" {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
	}

	handled, err := withDaemon(func(c *ipc.Client) error { return c.Clear() })
	if err != nil {
		return err
	}
	if !handled {
		o, err := openOffline(cmd.Context(), v)
		if err != nil {
			return err
		}
		defer o.Close()
		if err := o.store.Clear(cmd.Context()); err != nil {
			return fmt.Errorf("clear store: %w", err)
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Clipboard history cleared!")
	return nil
}
