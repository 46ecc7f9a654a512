package service

import (
	"fmt"
	"log/slog"

	"go.klb.dev/clipflow/internal/logging"
	"go.klb.dev/clipflow/internal/ui"
)

// OnClipboardChange is the monitor callback. Empty content is ignored.
func (s *Service) OnClipboardChange(content string) {
	s.enqueue("clipboard change", func() { s.addContent(content) })
}

// OnCopy copies the item at index in the displayed list to the clipboard.
func (s *Service) OnCopy(index int) {
	s.enqueue("copy", func() {
		if index < 0 || index >= len(s.displayed) {
			s.invalidIndex("copy", index)
			return
		}
		s.copyContent(s.displayed[index])
	})
}

// OnSearch filters the full history and displays the result.
func (s *Service) OnSearch(query string) {
	s.enqueue("search", func() {
		s.query = query
		s.refresh()
		slog.Debug("search", "query", logging.Preview(query), "results", len(s.displayed))
	})
}

// OnClear empties history and storage.
func (s *Service) OnClear() {
	s.enqueue("clear", s.clearHistory)
}

// OnDelete removes the item at index in the displayed list from history.
func (s *Service) OnDelete(index int) {
	s.enqueue("delete", func() {
		if index < 0 || index >= len(s.displayed) {
			s.invalidIndex("delete", index)
			return
		}
		if !s.deleteContent(s.displayed[index]) {
			slog.Warn("failed to delete item", "index", index)
		}
	})
}

func (s *Service) addContent(content string) {
	if content == "" {
		return
	}
	slog.Debug("clipboard changed", "content", logging.Preview(content))
	s.history.Add(content)
	s.persist()
	s.refresh()
}

func (s *Service) copyContent(content string) bool {
	if err := s.monitor.SetContent(content); err != nil {
		slog.Error("could not copy to clipboard", "err", err)
		s.ui.ShowMessage("Could not copy to clipboard", ui.Error)
		return false
	}
	slog.Info("copied item to clipboard")
	return true
}

// deleteContent resolves content to its history entry and removes it.
func (s *Service) deleteContent(content string) bool {
	i := s.history.IndexOf(content)
	if i < 0 || !s.history.RemoveAt(i) {
		return false
	}
	s.persist()
	s.refresh()
	slog.Info("deleted item", "history_index", i)
	return true
}

func (s *Service) clearHistory() {
	s.history.Clear()
	if err := s.store.Clear(s.ctx); err != nil {
		slog.Error("error clearing storage", "store", s.store.Kind(), "err", err)
	}
	s.displayed = nil
	s.ui.ShowHistory([]string{})
	s.ui.ShowMessage("Clipboard history cleared!", ui.Info)
	slog.Info("clipboard history cleared")
}

func (s *Service) invalidIndex(action string, index int) {
	slog.Warn("invalid index", "action", action, "index", index, "displayed", len(s.displayed))
	s.ui.ShowMessage(fmt.Sprintf("No item at position %d", index+1), ui.Info)
}
