package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipflow/internal/history"
	"go.klb.dev/clipflow/internal/ipc"
	"go.klb.dev/clipflow/internal/settings"
)

func newListCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "list [query...]",
		Aliases: []string{"ls"},
		Short:   "List history items, newest first",
		Long: `Prints the history, optionally filtered by a search query using the
configured search mode. Positions printed here are the ones "clipflow copy"
and "clipflow delete" accept with the same query.

Uses the running daemon when there is one, otherwise reads the store.`,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, args []string) error { return runList(cmd, v, strings.Join(args, " ")) },
	}

	f := cmd.Flags()
	f.Bool("json", false, "output JSON")
	f.IntP("limit", "n", 0, "show at most n items (0 = all)")
	f.Int("width", 0, "preview width (default: ui.preview_length setting)")
	addStoreCmdFlags(cmd)

	return cmd
}

type listedItem struct {
	Position  int    `json:"position"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

func runList(cmd *cobra.Command, v *viper.Viper, query string) error {
	setupCLILogging(v)

	var items []history.Item
	handled, err := withDaemon(func(c *ipc.Client) error {
		var err error
		items, err = c.List(query)
		return err
	})
	if err != nil {
		return err
	}

	previewLen := v.GetInt("width")
	if !handled {
		o, err := openOffline(cmd.Context(), v)
		if err != nil {
			return err
		}
		defer o.Close()
		items = o.matches(query)
		if previewLen <= 0 {
			previewLen = int(o.settings.Float(settings.KeyPreviewLength))
		}
	}
	if previewLen <= 0 {
		previewLen = int(settings.Defaults().Float(settings.KeyPreviewLength))
	}

	if n := v.GetInt("limit"); n > 0 && len(items) > n {
		items = items[:n]
	}

	out := cmd.OutOrStdout()
	if v.GetBool("json") {
		list := make([]listedItem, len(items))
		for i, it := range items {
			list[i] = listedItem{Position: i + 1, Content: it.Content, CreatedAt: it.CreatedAt.Format(time.RFC3339Nano)}
		}
		enc, _ := json.MarshalIndent(list, "", "  ")
		fmt.Fprintln(out, string(enc))
		return nil
	}
	printItems(out, items, previewLen)
	return nil
}
