package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"go.klb.dev/clipflow/internal/clip"
	"go.klb.dev/clipflow/internal/config"
	"go.klb.dev/clipflow/internal/ipc"
	"go.klb.dev/clipflow/internal/logging"
	"go.klb.dev/clipflow/internal/monitor"
	"go.klb.dev/clipflow/internal/search"
	"go.klb.dev/clipflow/internal/service"
	"go.klb.dev/clipflow/internal/store"
	"go.klb.dev/clipflow/internal/ui"
)

func newRunCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Record the clipboard and open the history UI",
		Long: `Starts clipboard monitoring and the history UI. With ui = "tui" (the
default) the terminal UI takes over the screen and logs go to
<data-dir>/clipflow.log; with ui = "headless" it behaves like "clipflow daemon".

Keys: type to search, up/down to select, enter to copy, ctrl+d to delete,
ctrl+x to clear, esc to reset the search or quit.

Precedence (lowest → highest): defaults → config file → CLIPFLOW_* env vars → flags`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runApp(cmd.Context(), v, false) },
	}

	cmd.Flags().String(config.KeyUI, config.Defaults().UI, "frontend: tui|headless")
	addRunFlags(cmd)
	return cmd
}

func newDaemonCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Record the clipboard in the background",
		Long: `Starts clipboard monitoring without a UI. The history is available to
"clipflow list", "clipflow copy" and friends through the local socket until
the process receives SIGINT or SIGTERM.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runApp(cmd.Context(), v, true) },
	}

	addRunFlags(cmd)
	return cmd
}

func runApp(parent context.Context, v *viper.Viper, headless bool) error {
	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}
	if headless {
		cfg.UI = "headless"
	}
	// A second instance would share the store and overwrite its saves.
	if ipc.IsRunning() {
		return fmt.Errorf("%w (socket %s)", ipc.ErrAlreadyRunning, ipc.SocketPath())
	}

	if cfg.UI == "tui" {
		f, err := logging.OpenFile(cfg.DataDir)
		if err != nil {
			return err
		}
		defer f.Close()
		setupLogging(v, f)
	} else {
		setupLogging(v, nil)
	}

	slog.Info("clipflow starting",
		"version", Version,
		"ui", cfg.UI,
		"store", cfg.Store,
		"max_items", cfg.MaxItems,
		"data_dir", cfg.DataDir,
	)

	s, repo := loadSettings(cfg)
	if err := repo.Watch(s); err != nil {
		slog.Warn("settings hot reload disabled", "err", err)
	}

	backend, err := clip.New(cfg.Clipboard)
	if err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	defer backend.Close()

	st, err := store.Open(cfg.Store, cfg.DataDir, cfg.MaxItems)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	var frontend ui.Frontend
	if cfg.UI == "tui" {
		frontend = ui.NewTUI(s)
	} else {
		frontend = ui.NewHeadless()
	}

	svc := service.New(service.Config{
		Monitor:   monitor.New(backend, monitor.WithInterval(cfg.PollInterval), monitor.WithBackoff(cfg.ErrorBackoff)),
		Store:     st,
		UI:        frontend,
		Matcher:   search.New(s),
		Clipboard: backend.Name(),
	})

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	// IPC socket for list/copy/delete/clear/status/add
	if ln, err := ipc.Listen(); errors.Is(err, ipc.ErrAlreadyRunning) {
		return err
	} else if err != nil {
		slog.Warn("IPC socket unavailable", "err", err)
	} else {
		slog.Info("IPC socket listening", "path", ipc.SocketPath())
		srv := ipc.NewServer(svc, Version)
		g.Go(func() error { return srv.Serve(gctx, ln) })
	}

	g.Go(func() error {
		// The UI exiting ends the whole process.
		defer stop()
		return svc.Start(gctx)
	})

	return g.Wait()
}
