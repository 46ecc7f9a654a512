package settings

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// FileName is the settings file name inside the config directory.
const FileName = "settings.toml"

// Repository persists settings as a TOML file. Dotted keys become tables:
//
//	[fuzzy_search]
//	max_l_dist = 1
type Repository struct {
	path string

	mu      sync.Mutex
	watcher *viper.Viper
}

// NewRepository returns a repository backed by path.
func NewRepository(path string) *Repository {
	return &Repository{path: path}
}

// Path returns the settings file path.
func (r *Repository) Path() string { return r.path }

// Exists reports whether the settings file is present.
func (r *Repository) Exists() bool {
	_, err := os.Stat(r.path)
	return err == nil
}

// Load reads the file into s. A missing file leaves the defaults in place.
func (r *Repository) Load(s *Settings) error {
	if !r.Exists() {
		slog.Debug("settings file does not exist, using defaults", "path", r.path)
		return nil
	}
	v := r.newViper()
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("settings: read %s: %w", r.path, err)
	}
	s.Apply(flatten(v))
	slog.Debug("settings loaded", "path", r.path)
	return nil
}

// Save writes every value of s to the file, replacing its contents.
func (r *Repository) Save(s *Settings) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	v := r.newViper()
	for k, val := range s.Serialize() {
		v.Set(k, val)
	}
	if err := v.WriteConfigAs(r.path); err != nil {
		return fmt.Errorf("settings: write %s: %w", r.path, err)
	}
	slog.Debug("settings saved", "path", r.path)
	return nil
}

// Watch reloads s whenever the file changes on disk, so that
// "clipflow settings set" takes effect in a running daemon. It returns
// immediately; the watch lasts for the life of the process.
func (r *Repository) Watch(s *Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.watcher != nil {
		return errors.New("settings: already watching")
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return fmt.Errorf("settings: %w", err)
	}

	v := r.newViper()
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		s.Apply(flatten(v))
		slog.Info("settings reloaded", "path", e.Name)
	})
	v.WatchConfig()
	r.watcher = v
	return nil
}

func (r *Repository) newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigFile(r.path)
	v.SetConfigType("toml")
	return v
}

func flatten(v *viper.Viper) map[string]any {
	out := make(map[string]any)
	for _, k := range v.AllKeys() {
		out[k] = v.Get(k)
	}
	return out
}
