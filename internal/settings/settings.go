package settings

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
)

// Registry is an immutable set of descriptors indexed by key.
type Registry struct {
	byKey map[string]Descriptor
	keys  []string
}

// NewRegistry validates every descriptor's default and indexes them.
func NewRegistry(ds ...Descriptor) (*Registry, error) {
	r := &Registry{byKey: make(map[string]Descriptor, len(ds))}
	for _, d := range ds {
		if d.Key == "" {
			return nil, errors.New("settings: descriptor without key")
		}
		if _, dup := r.byKey[d.Key]; dup {
			return nil, fmt.Errorf("settings: duplicate key %q", d.Key)
		}
		if d.Kind == KindSlider && !d.HasBounds {
			return nil, fmt.Errorf("settings: slider %q requires bounds", d.Key)
		}
		def, err := d.Normalize(d.Default)
		if err != nil {
			return nil, fmt.Errorf("settings: default: %w", err)
		}
		d.Default = def
		r.byKey[d.Key] = d
		r.keys = append(r.keys, d.Key)
	}
	slices.Sort(r.keys)
	return r, nil
}

// Lookup returns the descriptor for key.
func (r *Registry) Lookup(key string) (Descriptor, bool) {
	d, ok := r.byKey[key]
	return d, ok
}

// Descriptors returns all descriptors sorted by key.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, len(r.keys))
	for i, k := range r.keys {
		out[i] = r.byKey[k]
	}
	return out
}

// Settings holds the current value of every registered setting. It is safe
// for concurrent use: the file watcher writes while the search engine reads.
type Settings struct {
	reg *Registry

	mu       sync.RWMutex
	values   map[string]any
	watchers []func()
}

// New returns settings populated with the registry's defaults.
func New(reg *Registry) *Settings {
	s := &Settings{reg: reg, values: make(map[string]any, len(reg.keys))}
	for _, k := range reg.keys {
		s.values[k] = reg.byKey[k].Default
	}
	return s
}

// Registry returns the descriptors backing s.
func (s *Settings) Registry() *Registry { return s.reg }

// OnChange registers fn to run after any successful mutation.
func (s *Settings) OnChange(fn func()) {
	s.mu.Lock()
	s.watchers = append(s.watchers, fn)
	s.mu.Unlock()
}

// Get returns the canonical value for key.
func (s *Settings) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Int returns an integer setting, or 0 when unset or of another kind.
func (s *Settings) Int(key string) int {
	n, _ := s.OptInt(key)
	return n
}

// OptInt returns an integer setting and whether it holds a value.
func (s *Settings) OptInt(key string) (int, bool) {
	v, _ := s.Get(key)
	n, ok := v.(int)
	return n, ok
}

// Float returns a float or slider setting.
func (s *Settings) Float(key string) float64 {
	v, _ := s.Get(key)
	f, _ := v.(float64)
	return f
}

// Bool returns a boolean setting.
func (s *Settings) Bool(key string) bool {
	v, _ := s.Get(key)
	b, _ := v.(bool)
	return b
}

// String returns a string or enum setting.
func (s *Settings) String(key string) string {
	v, _ := s.Get(key)
	str, _ := v.(string)
	return str
}

// Set validates and stores value under key.
func (s *Settings) Set(key string, value any) error {
	d, ok := s.reg.Lookup(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	v, err := d.Normalize(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.values[key] = v
	s.mu.Unlock()
	s.notify()
	return nil
}

// SetString parses raw according to key's descriptor and stores it.
func (s *Settings) SetString(key, raw string) error {
	d, ok := s.reg.Lookup(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	v, err := d.Parse(raw)
	if err != nil {
		return err
	}
	return s.Set(key, v)
}

// Reset restores key to its default.
func (s *Settings) Reset(key string) error {
	d, ok := s.reg.Lookup(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return s.Set(key, d.Default)
}

// Update applies every entry of values and returns the per-key failures.
// Valid entries are applied even when others fail.
func (s *Settings) Update(values map[string]any) map[string]error {
	failed := make(map[string]error)
	for k, v := range values {
		if err := s.Set(k, v); err != nil {
			failed[k] = err
		}
	}
	return failed
}

// Values returns a copy of all current values.
func (s *Settings) Values() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.values)
}

// Serialize returns the values in a form a TOML encoder accepts. Unset
// optional values are omitted.
func (s *Settings) Serialize() map[string]any {
	out := s.Values()
	for k, v := range out {
		if v == nil {
			delete(out, k)
		}
	}
	return out
}

// Apply loads persisted values over the current ones. Unknown keys and
// invalid values are skipped with a warning. Optional integers missing from
// data are reset to unset so that clearing one in the file takes effect.
func (s *Settings) Apply(data map[string]any) {
	next := s.Values()
	for _, d := range s.reg.Descriptors() {
		raw, present := data[d.Key]
		if !present {
			if d.Optional {
				next[d.Key] = nil
			}
			continue
		}
		v, err := d.Normalize(raw)
		if err != nil {
			slog.Warn("ignoring invalid setting", "key", d.Key, "err", err)
			continue
		}
		next[d.Key] = v
	}
	for k := range data {
		if _, ok := s.reg.Lookup(k); !ok {
			slog.Warn("ignoring unknown setting", "key", k)
		}
	}

	s.mu.Lock()
	s.values = next
	s.mu.Unlock()
	s.notify()
}

func (s *Settings) notify() {
	s.mu.RLock()
	ws := slices.Clone(s.watchers)
	s.mu.RUnlock()
	for _, fn := range ws {
		fn()
	}
}
