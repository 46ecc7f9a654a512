// Package clip reads and writes plain text on the system clipboard.
//
// Three backends exist:
//
//	native  golang.design/x/clipboard (X11, macOS, Windows)
//	exec    github.com/atotto/clipboard (xclip, xsel, wl-clipboard, pbcopy)
//	memory  in-process only, for headless servers and tests
//
// New("auto") tries them in that order.
package clip

import (
	"errors"
	"fmt"
	"log/slog"
)

// Backend kinds accepted by New.
const (
	KindAuto   = "auto"
	KindNative = "native"
	KindExec   = "exec"
	KindMemory = "memory"
)

// ErrUnavailable is returned when the requested backend cannot reach a
// clipboard on this machine.
var ErrUnavailable = errors.New("clipboard unavailable")

// Backend is the interface every clipboard implementation satisfies.
type Backend interface {
	// Name returns a human-readable name for the backend.
	Name() string

	// ReadText returns the current clipboard text. An empty clipboard, or
	// one holding only non-text data, yields "".
	ReadText() (string, error)

	// WriteText replaces the clipboard contents with text.
	WriteText(text string) error

	// Close releases any resources held by the backend.
	Close() error
}

// New returns the backend named by kind. For KindAuto it falls back through
// native and exec to an in-memory backend, so it never fails.
func New(kind string) (Backend, error) {
	switch kind {
	case KindNative:
		return newNative()
	case KindExec:
		return newExec()
	case KindMemory:
		return NewMemory(""), nil
	case KindAuto, "":
		b, err := newNative()
		if err == nil {
			return b, nil
		}
		slog.Debug("native clipboard unavailable", "err", err)
		if b, err = newExec(); err == nil {
			return b, nil
		}
		slog.Debug("clipboard tools unavailable", "err", err)
		slog.Warn("clipboard unavailable, running headless")
		return NewMemory(""), nil
	default:
		return nil, fmt.Errorf("unknown clipboard backend %q", kind)
	}
}
