package ui

import (
	"context"
	"log/slog"
	"sync"
)

// Headless is a frontend without a display. It logs what a UI would show
// and blocks in Run until stopped.
type Headless struct {
	mu       sync.Mutex
	handlers Handlers
	items    []string
	quit     chan struct{}
	once     sync.Once
}

// NewHeadless returns a headless frontend.
func NewHeadless() *Headless {
	return &Headless{quit: make(chan struct{})}
}

func (h *Headless) Register(hs Handlers) {
	h.mu.Lock()
	h.handlers = hs
	h.mu.Unlock()
}

// Handlers returns the registered callbacks.
func (h *Headless) Handlers() Handlers {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.handlers
}

func (h *Headless) ShowHistory(items []string) {
	h.mu.Lock()
	h.items = append(h.items[:0:0], items...)
	h.mu.Unlock()
	slog.Debug("history updated", "items", len(items))
}

// Items returns the list last passed to ShowHistory.
func (h *Headless) Items() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.items...)
}

func (h *Headless) ShowMessage(text string, sev Severity) {
	switch sev {
	case Error:
		slog.Error(text)
	case Warning:
		slog.Warn(text)
	default:
		slog.Info(text)
	}
}

func (h *Headless) Run(ctx context.Context) error {
	slog.Info("running headless")
	select {
	case <-ctx.Done():
	case <-h.quit:
	}
	return nil
}

func (h *Headless) Shutdown() {
	h.once.Do(func() { close(h.quit) })
}
