package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.klb.dev/clipflow/internal/history"
)

// JSONFile is the history file name under the data directory.
const JSONFile = "history.json"

// JSON keeps history in a single indented JSON document.
type JSON struct {
	path     string
	maxItems int
	mu       sync.Mutex
}

type jsonDoc struct {
	MaxItems int          `json:"max_items"`
	Items    []jsonRecord `json:"items"`
}

// jsonRecord allows a missing created_at, which loads as the current time.
type jsonRecord struct {
	Content   *string `json:"content"`
	CreatedAt *string `json:"created_at"`
}

// NewJSON returns a store backed by dataDir/history.json.
func NewJSON(dataDir string, maxItems int) *JSON {
	return &JSON{path: filepath.Join(dataDir, JSONFile), maxItems: maxItems}
}

func (s *JSON) Kind() string { return KindJSON }

// Path returns the file path.
func (s *JSON) Path() string { return s.path }

func (s *JSON) Load(_ context.Context) *history.History {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Info("no existing history file, starting empty", "path", s.path)
		return empty(s.maxItems)
	}
	if err != nil {
		slog.Error("error loading history from file", "err", err)
		return empty(s.maxItems)
	}

	var doc jsonDoc
	if err := json.Unmarshal(b, &doc); err != nil {
		slog.Warn("invalid history file format, starting empty", "path", s.path, "err", err)
		return empty(s.maxItems)
	}
	if doc.MaxItems != 0 && doc.MaxItems != s.maxItems {
		slog.Debug("history file capacity differs from configuration", "file", doc.MaxItems, "configured", s.maxItems)
	}

	recs := make([]record, 0, len(doc.Items))
	for i, it := range doc.Items {
		if it.Content == nil {
			slog.Warn("skipping invalid history item", "store", KindJSON, "index", i, "err", "missing content")
			continue
		}
		r := record{Content: *it.Content, CreatedAt: formatTime(time.Now())}
		if it.CreatedAt != nil {
			r.CreatedAt = *it.CreatedAt
		}
		recs = append(recs, r)
	}
	return build(KindJSON, s.maxItems, recs)
}

// Save writes the snapshot to a temp file and renames it into place.
func (s *JSON) Save(_ context.Context, snap history.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := struct {
		MaxItems int      `json:"max_items"`
		Items    []record `json:"items"`
	}{MaxItems: snap.MaxItems, Items: toRecords(snap)}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".history-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace history file: %w", err)
	}
	slog.Debug("saved history", "store", KindJSON, "items", len(snap.Items))
	return nil
}

func (s *JSON) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete history file: %w", err)
	}
	slog.Info("history file deleted", "path", s.path)
	return nil
}

func (s *JSON) Close() error { return nil }
