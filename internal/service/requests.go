package service

import (
	"context"
	"fmt"
	"time"

	"go.klb.dev/clipflow/internal/history"
)

// Status describes a running service.
type Status struct {
	State     State
	Items     int
	MaxItems  int
	Store     string
	Clipboard string
	Query     string
	Started   time.Time
}

// List returns the history items matching query without changing what the
// UI displays.
func (s *Service) List(ctx context.Context, query string) ([]history.Item, error) {
	var out []history.Item
	err := s.call(ctx, "list", func() {
		out = s.matcher.Search(s.history.Items(), query)
	})
	return out, err
}

// CopyMatch copies the index-th item of the matches for query and returns
// its content.
func (s *Service) CopyMatch(ctx context.Context, query string, index int) (string, error) {
	var (
		content string
		opErr   error
	)
	err := s.call(ctx, "copy", func() {
		content, opErr = s.resolve(query, index)
		if opErr != nil {
			return
		}
		if !s.copyContent(content) {
			opErr = fmt.Errorf("write clipboard failed")
		}
	})
	if err != nil {
		return "", err
	}
	return content, opErr
}

// DeleteMatch deletes the index-th item of the matches for query and returns
// its content.
func (s *Service) DeleteMatch(ctx context.Context, query string, index int) (string, error) {
	var (
		content string
		opErr   error
	)
	err := s.call(ctx, "delete", func() {
		content, opErr = s.resolve(query, index)
		if opErr != nil {
			return
		}
		if !s.deleteContent(content) {
			opErr = fmt.Errorf("item %d vanished from history", index)
		}
	})
	if err != nil {
		return "", err
	}
	return content, opErr
}

// Clear empties history and storage.
func (s *Service) Clear(ctx context.Context) error {
	return s.call(ctx, "clear", s.clearHistory)
}

// Add records content as if it had been copied to the clipboard.
func (s *Service) Add(ctx context.Context, content string) error {
	return s.call(ctx, "add", func() { s.addContent(content) })
}

// Status reports the service state.
func (s *Service) Status(ctx context.Context) (Status, error) {
	var st Status
	err := s.call(ctx, "status", func() {
		st = Status{
			State:     Running,
			Items:     s.history.Len(),
			MaxItems:  s.history.MaxItems(),
			Store:     s.store.Kind(),
			Clipboard: s.clipboard,
			Query:     s.query,
		}
	})
	if err != nil {
		return Status{State: Stopped}, err
	}
	s.mu.Lock()
	st.Started = s.started
	s.mu.Unlock()
	return st, nil
}

func (s *Service) resolve(query string, index int) (string, error) {
	matches := s.matcher.Search(s.history.Items(), query)
	if index < 0 || index >= len(matches) {
		return "", fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(matches))
	}
	return matches[index].Content, nil
}
