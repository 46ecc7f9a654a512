package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipflow/internal/config"
	"go.klb.dev/clipflow/internal/history"
	"go.klb.dev/clipflow/internal/ipc"
	"go.klb.dev/clipflow/internal/search"
	"go.klb.dev/clipflow/internal/settings"
	"go.klb.dev/clipflow/internal/store"
)

// loadSettings reads settings.toml, falling back to defaults.
func loadSettings(cfg *config.Config) (*settings.Settings, *settings.Repository) {
	s := settings.Defaults()
	repo := settings.NewRepository(filepath.Join(cfg.ConfigDir, settings.FileName))
	if err := repo.Load(s); err != nil {
		slog.Warn("using default settings", "err", err)
	}
	return s, repo
}

// withDaemon runs fn against a running daemon. It reports false without
// calling fn when no daemon is listening.
func withDaemon(fn func(*ipc.Client) error) (bool, error) {
	if !ipc.IsRunning() {
		return false, nil
	}
	c, err := ipc.Connect()
	if err != nil {
		if errors.Is(err, ipc.ErrNotRunning) {
			return false, nil
		}
		return true, err
	}
	defer c.Close()
	return true, fn(c)
}

// offline is the history store opened directly, used when no daemon runs.
type offline struct {
	cfg      *config.Config
	settings *settings.Settings
	store    store.HistoryStore
	history  *history.History
}

func openOffline(ctx context.Context, v *viper.Viper) (*offline, error) {
	cfg, err := loadConfig(v)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(cfg.Store, cfg.DataDir, cfg.MaxItems)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	s, _ := loadSettings(cfg)
	slog.Debug("no daemon running, using store directly", "store", st.Kind(), "data_dir", cfg.DataDir)
	return &offline{cfg: cfg, settings: s, store: st, history: st.Load(ctx)}, nil
}

func (o *offline) Close() error { return o.store.Close() }

// matches returns the history filtered by query with the configured matcher.
func (o *offline) matches(query string) []history.Item {
	return search.New(o.settings).Search(o.history.Items(), query)
}

// pick resolves a 1-based position among the matches for query.
func (o *offline) pick(query string, pos int) (history.Item, error) {
	m := o.matches(query)
	if pos < 1 || pos > len(m) {
		return history.Item{}, fmt.Errorf("no item at position %d (%d matches)", pos, len(m))
	}
	return m[pos-1], nil
}

// addStoreCmdFlags adds the flags of commands that read the history.
func addStoreCmdFlags(cmd *cobra.Command) {
	addStoreFlags(cmd)
	addConfigFlag(cmd)
	cmd.Flags().String("log-level", "warn", "log level: debug|info|warn|error")
}

// setupCLILogging configures quiet stderr logging for one-shot commands.
func setupCLILogging(v *viper.Viper) {
	resolveLogging(false, "auto", v.GetString("log-level"), nil)
}

// parsePosition parses a 1-based list position.
func parsePosition(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid position %q: want a number from 1", s)
	}
	return n, nil
}

func printItems(w io.Writer, items []history.Item, previewLen int) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No items.")
		return
	}
	width := len(strconv.Itoa(len(items)))
	for i, it := range items {
		fmt.Fprintf(w, "%*d  %-8s  %s\n", width, i+1, fmtAge(it.CreatedAt), it.Preview(previewLen))
	}
}

func fmtAge(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	age := time.Since(t).Round(time.Second)
	if age < time.Minute {
		return fmt.Sprintf("%ds ago", int(age.Seconds()))
	}
	if age < time.Hour {
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	}
	if age < 24*time.Hour {
		return t.Format("15:04:05")
	}
	return t.Format("Jan 02")
}
