package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipflow/internal/config"
)

// bindViper wires a command's flags into a viper instance with the standard
// config file search order and CLIPFLOW_* env var prefix.
//
// Precedence (lowest → highest): defaults → config file → CLIPFLOW_* env vars → flags
func bindViper(cmd *cobra.Command, v *viper.Viper) error {
	config.SetDefaults(v)

	configFlag, _ := cmd.Flags().GetString("config")
	if configFlag != "" {
		v.SetConfigFile(configFlag)
	} else {
		v.SetConfigName("clipflow")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc/clipflow/")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(fmt.Sprintf("%s/.config/clipflow", home))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("config: %w", err)
		}
	}

	v.SetEnvPrefix("CLIPFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	return nil
}

// addLoggingFlags adds the standard logging flags to a command.
func addLoggingFlags(cmd *cobra.Command) {
	cmd.Flags().String("log-format", "auto", "log format: auto|text|json")
	cmd.Flags().String("log-level", "", "log level: debug|info|warn|error (default: info, debug with --verbose)")
	cmd.Flags().BoolP("verbose", "v", false, "debug logging")
}

// addConfigFlag adds the --config flag to a command.
func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "path to config file (overrides auto-discovery)")
}

// addStoreFlags adds the flags needed to open the history store.
func addStoreFlags(cmd *cobra.Command) {
	d := config.Defaults()
	f := cmd.Flags()
	f.Int(config.KeyMaxItems, d.MaxItems, "maximum number of history items")
	f.String(config.KeyStore, d.Store, "history store: sqlite|json|bolt")
	f.String(config.KeyDataDir, d.DataDir, "directory holding the history store and log file")
	f.String(config.KeyConfigDir, d.ConfigDir, "directory holding settings.toml")
}

// addRunFlags adds the flags of the recording commands.
func addRunFlags(cmd *cobra.Command) {
	d := config.Defaults()
	f := cmd.Flags()
	f.Duration(config.KeyPollInterval, d.PollInterval, "clipboard poll interval")
	f.Duration(config.KeyErrorBackoff, d.ErrorBackoff, "wait after a clipboard read error")
	f.String(config.KeyClipboard, d.Clipboard, "clipboard backend: auto|native|exec|memory")
	addStoreFlags(cmd)
	addLoggingFlags(cmd)
	addConfigFlag(cmd)
}

// setupLogging reads logging flags from viper and configures slog. A nil w
// logs to stderr.
func setupLogging(v *viper.Viper, w io.Writer) {
	resolveLogging(v.GetBool("verbose"), v.GetString("log-format"), v.GetString("log-level"), w)
}

// loadConfig decodes and validates the runtime configuration.
func loadConfig(v *viper.Viper) (*config.Config, error) {
	return config.FromViper(v)
}
