// Package service wires clipboard monitoring, history, persistence, search
// and the frontend together.
//
// All history mutation happens on one event-loop goroutine. Monitor
// callbacks, UI callbacks and IPC requests enqueue work and never touch the
// history directly.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"go.klb.dev/clipflow/internal/history"
	"go.klb.dev/clipflow/internal/search"
	"go.klb.dev/clipflow/internal/store"
	"go.klb.dev/clipflow/internal/ui"
)

// queueSize bounds pending events before producers block.
const queueSize = 64

var (
	// ErrNotRunning is returned by requests made while the service is stopped.
	ErrNotRunning = errors.New("service not running")
	// ErrIndexOutOfRange is returned for an index outside the matched list.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// State is the lifecycle state of a Service.
type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// Monitor is the clipboard side of the service: change notifications in,
// content out.
type Monitor interface {
	Start(onChange func(content string))
	Stop()
	SetContent(text string) error
}

// Config carries the service collaborators.
type Config struct {
	Monitor Monitor
	Store   store.HistoryStore
	UI      ui.Frontend
	Matcher search.Matcher
	// Clipboard names the clipboard backend in Status.
	Clipboard string
}

type event struct {
	name string
	fn   func()
}

// Service is the clipboard orchestrator.
type Service struct {
	monitor   Monitor
	store     store.HistoryStore
	ui        ui.Frontend
	matcher   search.Matcher
	clipboard string

	events chan event

	mu       sync.Mutex
	state    State
	started  time.Time
	quit     chan struct{}
	loopDone chan struct{}
	stopOnce *sync.Once

	// Owned by the event loop.
	ctx       context.Context
	history   *history.History
	displayed []string
	query     string
}

// New returns a stopped service and registers its handlers with cfg.UI.
func New(cfg Config) *Service {
	s := &Service{
		monitor:   cfg.Monitor,
		store:     cfg.Store,
		ui:        cfg.UI,
		matcher:   cfg.Matcher,
		clipboard: cfg.Clipboard,
		events:    make(chan event, queueSize),
		history:   history.MustNew(history.DefaultMaxItems),
	}
	s.ui.Register(ui.Handlers{
		Copy:   s.OnCopy,
		Search: s.OnSearch,
		Clear:  s.OnClear,
		Delete: s.OnDelete,
	})
	return s
}

// State returns the lifecycle state.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start loads history, starts monitoring and runs the UI until it exits,
// then stops the service.
func (s *Service) Start(ctx context.Context) error {
	if err := s.StartMonitoring(ctx); err != nil {
		return err
	}
	defer s.Stop()
	slog.Info("clipboard service started")
	if err := s.ui.Run(ctx); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

// StartMonitoring loads history, starts the event loop and the monitor and
// pushes the full list to the UI without running the UI loop.
func (s *Service) StartMonitoring(ctx context.Context) error {
	s.mu.Lock()
	if s.state == Running {
		s.mu.Unlock()
		return errors.New("service already running")
	}
	s.state = Running
	s.started = time.Now()
	s.quit = make(chan struct{})
	s.loopDone = make(chan struct{})
	s.stopOnce = &sync.Once{}
	quit, done := s.quit, s.loopDone
	s.mu.Unlock()

	// Persistence must outlive a cancelled caller so the final saves land.
	s.ctx = context.WithoutCancel(ctx)
	s.history = s.store.Load(s.ctx)
	s.displayed = s.history.Contents()
	s.query = ""
	slog.Info("loaded history", "items", s.history.Len(), "store", s.store.Kind())

	go s.loop(quit, done)

	s.monitor.Start(s.OnClipboardChange)
	s.enqueue("display", func() {
		s.displayed = s.history.Contents()
		s.ui.ShowHistory(s.displayed)
	})
	return nil
}

// Stop stops monitoring, drains the event queue and shuts the UI down.
// It is idempotent.
func (s *Service) Stop() {
	s.mu.Lock()
	if s.state != Running {
		s.mu.Unlock()
		return
	}
	once, quit, done := s.stopOnce, s.quit, s.loopDone
	s.mu.Unlock()

	once.Do(func() {
		s.monitor.Stop()
		close(quit)
		<-done
		s.discardLate()
		s.ui.Shutdown()

		s.mu.Lock()
		s.state = Stopped
		s.mu.Unlock()
		slog.Info("clipboard service stopped")
	})
}

func (s *Service) loop(quit <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case ev := <-s.events:
			s.dispatch(ev)
		case <-quit:
			for {
				select {
				case ev := <-s.events:
					s.dispatch(ev)
				default:
					return
				}
			}
		}
	}
}

// discardLate drops events that raced with shutdown so a restart doesn't
// replay them.
func (s *Service) discardLate() {
	for {
		select {
		case ev := <-s.events:
			slog.Debug("dropping event, service stopped", "event", ev.name)
		default:
			return
		}
	}
}

// dispatch runs one event, containing any panic.
func (s *Service) dispatch(ev event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("event handler panicked", "event", ev.name, "panic", r, "stack", string(debug.Stack()))
		}
	}()
	ev.fn()
}

// enqueue schedules fn on the event loop. It reports false when the
// service is not running. The returned channel closes when the loop exits.
func (s *Service) enqueue(name string, fn func()) (<-chan struct{}, bool) {
	s.mu.Lock()
	quit, loopDone := s.quit, s.loopDone
	running := s.state == Running
	s.mu.Unlock()
	if !running {
		slog.Debug("dropping event, service stopped", "event", name)
		return nil, false
	}
	select {
	case <-quit:
		return nil, false
	default:
	}
	select {
	case s.events <- event{name: name, fn: fn}:
		return loopDone, true
	case <-quit:
		return nil, false
	}
}

// call runs fn on the event loop and waits for it.
func (s *Service) call(ctx context.Context, name string, fn func()) error {
	done := make(chan struct{})
	loopDone, ok := s.enqueue(name, func() {
		defer close(done)
		fn()
	})
	if !ok {
		return ErrNotRunning
	}
	select {
	case <-done:
		return nil
	case <-loopDone:
		select {
		case <-done:
			return nil
		default:
			return ErrNotRunning
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// persist saves the current history, keeping the in-memory state on failure.
func (s *Service) persist() {
	if err := s.store.Save(s.ctx, s.history.Snapshot()); err != nil {
		slog.Error("error saving history", "store", s.store.Kind(), "err", err)
	}
}

// refresh re-applies the active query and pushes the result.
func (s *Service) refresh() {
	s.displayed = contents(s.matcher.Search(s.history.Items(), s.query))
	s.ui.ShowHistory(s.displayed)
}

func contents(items []history.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Content
	}
	return out
}
