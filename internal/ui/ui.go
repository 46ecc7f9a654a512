// Package ui defines the frontend boundary of the clipboard service and
// its two implementations: a Bubble Tea terminal UI and a headless
// frontend for daemons.
package ui

import "context"

// Severity classifies a user-facing message.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Handlers are the callbacks a frontend invokes on user actions. Indices
// refer to the list most recently passed to ShowHistory. Nil handlers are
// skipped.
type Handlers struct {
	Copy   func(index int)
	Search func(query string)
	Clear  func()
	Delete func(index int)
}

// Frontend displays history and relays user actions.
type Frontend interface {
	// Register installs the callbacks. Call before Run.
	Register(h Handlers)
	// ShowHistory replaces the displayed list. Safe from any goroutine.
	ShowHistory(items []string)
	// ShowMessage notifies the user. Safe from any goroutine.
	ShowMessage(text string, sev Severity)
	// Run blocks until the user quits, ctx is cancelled or Shutdown is called.
	Run(ctx context.Context) error
	// Shutdown makes Run return.
	Shutdown()
}
