// Package settings implements a registry of typed setting descriptors and a
// validated value store keyed by dotted names such as
// "fuzzy_search.max_l_dist".
package settings

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

var (
	// ErrUnknownKey is returned for keys that have no descriptor.
	ErrUnknownKey = errors.New("settings: unknown key")

	// ErrInvalidValue is returned when a value fails its descriptor's rules.
	ErrInvalidValue = errors.New("settings: invalid value")
)

// Kind is the value type of a setting.
type Kind int

const (
	KindInteger Kind = iota
	KindFloat
	KindBoolean
	KindString
	KindSlider
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBoolean:
		return "boolean"
	case KindString:
		return "string"
	case KindSlider:
		return "slider"
	case KindEnum:
		return "enum"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Descriptor defines one setting. Canonical Go types per kind:
//
//	integer      int (nil when Optional and unset)
//	float/slider float64
//	boolean      bool
//	string/enum  string
type Descriptor struct {
	Key         string
	DisplayName string
	Description string
	Kind        Kind
	Default     any

	// Min and Max bound integer, float and slider values when HasBounds is set.
	// A positive Step further restricts them to Min + k*Step.
	HasBounds bool
	Min       float64
	Max       float64
	Step      float64

	// Options lists the allowed values of an enum.
	Options []string

	// Optional allows an integer setting to hold no value.
	Optional bool
}

// Group returns the key prefix before the first dot.
func (d Descriptor) Group() string {
	if i := strings.IndexByte(d.Key, '.'); i > 0 {
		return d.Key[:i]
	}
	return ""
}

// Normalize converts v to the descriptor's canonical type and validates it.
// It accepts the types produced by TOML and JSON decoders (int64, float64).
func (d Descriptor) Normalize(v any) (any, error) {
	if v == nil {
		if d.Kind == KindInteger && d.Optional {
			return nil, nil
		}
		return nil, d.invalid("value required")
	}

	switch d.Kind {
	case KindInteger:
		n, ok := toInt(v)
		if !ok {
			return nil, d.invalid("want integer, got %T", v)
		}
		if err := d.checkBounds(float64(n)); err != nil {
			return nil, err
		}
		return n, nil

	case KindFloat, KindSlider:
		f, ok := toFloat(v)
		if !ok {
			return nil, d.invalid("want number, got %T", v)
		}
		if err := d.checkBounds(f); err != nil {
			return nil, err
		}
		return f, nil

	case KindBoolean:
		b, ok := v.(bool)
		if !ok {
			return nil, d.invalid("want boolean, got %T", v)
		}
		return b, nil

	case KindString:
		s, ok := v.(string)
		if !ok {
			return nil, d.invalid("want string, got %T", v)
		}
		return s, nil

	case KindEnum:
		s, ok := v.(string)
		if !ok {
			return nil, d.invalid("want string, got %T", v)
		}
		if !slices.Contains(d.Options, s) {
			return nil, d.invalid("%q is not one of %s", s, strings.Join(d.Options, "|"))
		}
		return s, nil
	}
	return nil, d.invalid("unsupported kind %s", d.Kind)
}

// Parse converts a command-line string into the canonical value. For an
// optional integer, "" and "none" clear the value.
func (d Descriptor) Parse(raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch d.Kind {
	case KindInteger:
		if d.Optional && (raw == "" || strings.EqualFold(raw, "none")) {
			return nil, nil
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, d.invalid("%q is not an integer", raw)
		}
		return d.Normalize(n)
	case KindFloat, KindSlider:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, d.invalid("%q is not a number", raw)
		}
		return d.Normalize(f)
	case KindBoolean:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, d.invalid("%q is not a boolean", raw)
		}
		return b, nil
	default:
		return d.Normalize(raw)
	}
}

// Format renders a canonical value for display.
func (d Descriptor) Format(v any) string {
	if v == nil {
		return "none"
	}
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

func (d Descriptor) checkBounds(f float64) error {
	if !d.HasBounds {
		return nil
	}
	if f < d.Min || f > d.Max {
		return d.invalid("%v outside [%v, %v]", f, d.Min, d.Max)
	}
	if d.Step > 0 {
		k := (f - d.Min) / d.Step
		if math.Abs(k-math.Round(k)) > 1e-9 {
			return d.invalid("%v is not a multiple of %v from %v", f, d.Step, d.Min)
		}
	}
	return nil
}

func (d Descriptor) invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidValue, d.Key, fmt.Sprintf(format, args...))
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n == math.Trunc(n) {
			return int(n), true
		}
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	if i, ok := toInt(v); ok {
		return float64(i), true
	}
	return 0, false
}
