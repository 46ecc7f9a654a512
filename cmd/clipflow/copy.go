package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipflow/internal/clip"
	"go.klb.dev/clipflow/internal/ipc"
)

func newCopyCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "copy <position> [query...]",
		Short: "Put a history item back on the clipboard",
		Long: `Copies the item at <position> (as printed by "clipflow list" with the same
query) to the system clipboard.

If a daemon is running the copy goes through it, so the item moves to the
top of the history. Otherwise the clipboard is written directly.`,
		Args:    cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, args []string) error { return runCopy(cmd, v, args) },
	}

	cmd.Flags().String("clipboard", clip.KindAuto, "clipboard backend when no daemon runs: auto|native|exec|memory")
	cmd.Flags().BoolP("print", "p", false, "also print the copied text")
	addStoreCmdFlags(cmd)

	return cmd
}

func runCopy(cmd *cobra.Command, v *viper.Viper, args []string) error {
	setupCLILogging(v)

	pos, err := parsePosition(args[0])
	if err != nil {
		return err
	}
	query := strings.Join(args[1:], " ")

	var content string
	handled, err := withDaemon(func(c *ipc.Client) error {
		var err error
		content, err = c.Copy(query, pos-1)
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
		b, err := clip.New(v.GetString("clipboard"))
		if err != nil {
			return fmt.Errorf("clipboard: %w", err)
		}
		defer b.Close()
		if err := b.WriteText(it.Content); err != nil {
			return fmt.Errorf("write clipboard: %w", err)
		}
		content = it.Content
	}

	if v.GetBool("print") {
		fmt.Fprintln(cmd.OutOrStdout(), content)
	}
	return nil
}
