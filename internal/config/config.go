// Package config holds the runtime configuration shared by clipflow
// commands. Values come from viper (defaults, config file, CLIPFLOW_* env,
// flags) and are checked with struct-tag validation before use.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"go.klb.dev/clipflow/internal/history"
	"go.klb.dev/clipflow/internal/monitor"
)

// Viper keys. They double as flag names and config-file keys.
const (
	KeyMaxItems     = "max-items"
	KeyPollInterval = "poll-interval"
	KeyErrorBackoff = "error-backoff"
	KeyStore        = "store"
	KeyUI           = "ui"
	KeyClipboard    = "clipboard"
	KeyDataDir      = "data-dir"
	KeyConfigDir    = "config-dir"
)

// AppName names the per-user data and config directories.
const AppName = "clipflow"

// Config is the validated runtime configuration.
type Config struct {
	MaxItems     int           `mapstructure:"max-items" validate:"min=1,max=100000"`
	PollInterval time.Duration `mapstructure:"poll-interval" validate:"gt=0"`
	ErrorBackoff time.Duration `mapstructure:"error-backoff" validate:"gt=0"`
	Store        string        `mapstructure:"store" validate:"oneof=sqlite json bolt"`
	UI           string        `mapstructure:"ui" validate:"oneof=tui headless"`
	Clipboard    string        `mapstructure:"clipboard" validate:"oneof=auto native exec memory"`
	DataDir      string        `mapstructure:"data-dir" validate:"required"`
	ConfigDir    string        `mapstructure:"config-dir" validate:"required"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		MaxItems:     history.DefaultMaxItems,
		PollInterval: monitor.DefaultInterval,
		ErrorBackoff: monitor.DefaultBackoff,
		Store:        "sqlite",
		UI:           "tui",
		Clipboard:    "auto",
		DataDir:      DefaultDataDir(),
		ConfigDir:    DefaultConfigDir(),
	}
}

// SetDefaults registers Defaults with v at the lowest precedence.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault(KeyMaxItems, d.MaxItems)
	v.SetDefault(KeyPollInterval, d.PollInterval)
	v.SetDefault(KeyErrorBackoff, d.ErrorBackoff)
	v.SetDefault(KeyStore, d.Store)
	v.SetDefault(KeyUI, d.UI)
	v.SetDefault(KeyClipboard, d.Clipboard)
	v.SetDefault(KeyDataDir, d.DataDir)
	v.SetDefault(KeyConfigDir, d.ConfigDir)
}

// FromViper decodes and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := Defaults()
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.DataDir = expandHome(cfg.DataDir)
	cfg.ConfigDir = expandHome(cfg.ConfigDir)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their config key, not the Go name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks every field, joining one error per invalid key.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config: %w", err)
	}
	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, fmt.Errorf("config: %s: %s", fe.Field(), describe(fe)))
	}
	return errors.Join(errs...)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%q is not one of %s", fe.Value(), strings.ReplaceAll(fe.Param(), " ", "|"))
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return "must be positive"
	case "required":
		return "must be set"
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

// DefaultDataDir returns $XDG_DATA_HOME/clipflow, falling back to
// ~/.local/share/clipflow.
func DefaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, AppName)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", AppName)
	}
	return filepath.Join(os.TempDir(), AppName)
}

// DefaultConfigDir returns the per-user config directory, where
// settings.toml lives.
func DefaultConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, AppName)
	}
	return filepath.Join(os.TempDir(), AppName)
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
