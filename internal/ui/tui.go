package ui

import (
	"context"
	"errors"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"go.klb.dev/clipflow/internal/settings"
)

// TUI is the Bubble Tea frontend. Updates from other goroutines reach the
// program through tea.Program.Send.
type TUI struct {
	settings *settings.Settings
	opts     []tea.ProgramOption

	mu       sync.Mutex
	handlers Handlers
	items    []string
	program  *tea.Program
	stopped  bool
}

// NewTUI returns a terminal frontend reading display preferences from s.
// Extra program options (input/output overrides) are passed to Bubble Tea.
func NewTUI(s *settings.Settings, opts ...tea.ProgramOption) *TUI {
	return &TUI{settings: s, opts: opts}
}

func (t *TUI) Register(h Handlers) {
	t.mu.Lock()
	t.handlers = h
	t.mu.Unlock()
}

func (t *TUI) ShowHistory(items []string) {
	items = append([]string(nil), items...)
	t.mu.Lock()
	t.items = items
	p := t.program
	t.mu.Unlock()
	if p != nil {
		p.Send(historyMsg(items))
	}
}

func (t *TUI) ShowMessage(text string, sev Severity) {
	t.mu.Lock()
	p := t.program
	t.mu.Unlock()
	if p != nil {
		p.Send(statusMsg{text: text, sev: sev})
	}
}

// Run starts the program on the alternate screen and blocks until it exits.
// The list shown initially is the one most recently passed to ShowHistory.
func (t *TUI) Run(ctx context.Context) error {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return nil
	}
	actions := newDispatcher()
	m := newModel(t.handlers, t.settings)
	m.post = actions.post
	m.setItems(t.items)
	opts := append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, t.opts...)
	p := tea.NewProgram(m, opts...)
	t.program = p
	t.mu.Unlock()

	done := make(chan struct{})
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		actions.run(done)
	}()

	_, err := p.Run()
	close(done)
	<-drained
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("terminal ui: %w", err)
	}
	return nil
}

func (t *TUI) Shutdown() {
	t.mu.Lock()
	t.stopped = true
	p := t.program
	t.mu.Unlock()
	if p != nil {
		p.Quit()
	}
}
