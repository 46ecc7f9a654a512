// Package monitor polls a clipboard backend and reports content changes.
package monitor

import (
	"log/slog"
	"sync"
	"time"

	"go.klb.dev/clipflow/internal/clip"
	"go.klb.dev/clipflow/internal/logging"
)

const (
	DefaultInterval = time.Second
	DefaultBackoff  = 5 * time.Second
)

// Option configures a Monitor.
type Option func(*Monitor)

// WithInterval sets the delay between polls.
func WithInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithBackoff sets the delay after a failed read.
func WithBackoff(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.backoff = d
		}
	}
}

// Monitor watches a clipboard backend from a single background goroutine.
type Monitor struct {
	backend  clip.Backend
	interval time.Duration
	backoff  time.Duration

	mu   sync.Mutex
	done chan struct{}
	exit chan struct{}
}

// New returns a stopped Monitor reading from b.
func New(b clip.Backend, opts ...Option) *Monitor {
	m := &Monitor{
		backend:  b,
		interval: DefaultInterval,
		backoff:  DefaultBackoff,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Start launches the poll loop. If the clipboard already holds text,
// onChange is called once with it before polling begins. Afterwards
// onChange is called once per observed change, including a change to an
// empty clipboard. Calling Start on a running monitor logs and does nothing.
func (m *Monitor) Start(onChange func(content string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done != nil {
		slog.Warn("clipboard monitoring already running")
		return
	}
	m.done = make(chan struct{})
	m.exit = make(chan struct{})
	go m.run(onChange, m.done, m.exit)
	slog.Info("clipboard monitoring started", "backend", m.backend.Name(), "interval", m.interval)
}

// Stop signals the poll loop and waits for it to return. It is safe to call
// on a stopped monitor.
func (m *Monitor) Stop() {
	m.mu.Lock()
	done, exit := m.done, m.exit
	m.done, m.exit = nil, nil
	m.mu.Unlock()
	if done == nil {
		return
	}
	close(done)
	<-exit
	slog.Info("clipboard monitoring stopped")
}

// Running reports whether the poll loop is active.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.done != nil
}

// SetContent writes text to the clipboard.
func (m *Monitor) SetContent(text string) error {
	if err := m.backend.WriteText(text); err != nil {
		return err
	}
	slog.Debug("copied to clipboard", "content", logging.Preview(text))
	return nil
}

// Content returns the clipboard text, or "" if it can't be read.
func (m *Monitor) Content() string {
	s, err := m.backend.ReadText()
	if err != nil {
		slog.Warn("could not read clipboard", "err", err)
		return ""
	}
	return s
}

func (m *Monitor) run(onChange func(string), done <-chan struct{}, exit chan<- struct{}) {
	defer close(exit)

	last, err := m.backend.ReadText()
	if err != nil {
		slog.Warn("could not read initial clipboard content", "err", err)
		last = ""
	} else if last != "" {
		slog.Debug("initial clipboard content", "content", logging.Preview(last))
		onChange(last)
	}

	t := time.NewTimer(m.interval)
	defer t.Stop()
	for {
		select {
		case <-done:
			return
		case <-t.C:
		}

		current, err := m.backend.ReadText()
		if err != nil {
			slog.Warn("error monitoring clipboard", "err", err, "retry_in", m.backoff)
			t.Reset(m.backoff)
			continue
		}
		if current != last {
			slog.Debug("new clipboard value detected", "content", logging.Preview(current))
			last = current
			onChange(current)
		}
		t.Reset(m.interval)
	}
}
