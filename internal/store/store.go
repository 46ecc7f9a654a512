// Package store persists clipboard history snapshots.
//
// Every store replaces its whole contents on Save and rebuilds a fresh
// history on Load. Load never fails: missing or unreadable data yields an
// empty history, and individual records with a bad timestamp are skipped.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.klb.dev/clipflow/internal/history"
)

// Store kinds accepted by Open.
const (
	KindSQLite = "sqlite"
	KindJSON   = "json"
	KindBolt   = "bolt"
)

// HistoryStore is the persistence boundary of the orchestrator.
type HistoryStore interface {
	// Kind names the backend ("sqlite", "json", "bolt").
	Kind() string
	// Load returns the persisted history, or an empty one.
	Load(ctx context.Context) *history.History
	// Save replaces the persisted history with snap.
	Save(ctx context.Context, snap history.Snapshot) error
	// Clear removes all persisted items. A missing store is not an error.
	Clear(ctx context.Context) error
	Close() error
}

// Open returns the store of the given kind under dataDir. Loaded histories
// use maxItems as their capacity.
func Open(kind, dataDir string, maxItems int) (HistoryStore, error) {
	switch kind {
	case KindSQLite, "":
		return OpenSQLite(dataDir, maxItems)
	case KindJSON:
		return NewJSON(dataDir, maxItems), nil
	case KindBolt:
		return OpenBolt(dataDir, maxItems)
	default:
		return nil, fmt.Errorf("unknown store %q", kind)
	}
}

// record is the on-disk form of an item shared by all backends.
type record struct {
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

func toRecords(snap history.Snapshot) []record {
	out := make([]record, len(snap.Items))
	for i, it := range snap.Items {
		out[i] = record{Content: it.Content, CreatedAt: formatTime(it.CreatedAt)}
	}
	return out
}

// timeLayouts lists accepted timestamp forms, most specific first. Zoneless
// forms are read as local time.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// build turns records into a history, skipping invalid ones.
func build(kind string, maxItems int, recs []record) *history.History {
	items := make([]history.Item, 0, len(recs))
	for i, r := range recs {
		t, err := parseTime(r.CreatedAt)
		if err != nil {
			slog.Warn("skipping invalid history item", "store", kind, "index", i, "err", err)
			continue
		}
		it, err := history.NewItem(r.Content, t)
		if err != nil {
			slog.Warn("skipping invalid history item", "store", kind, "index", i, "err", err)
			continue
		}
		items = append(items, it)
	}
	h, err := history.New(maxItems, items)
	if err != nil {
		slog.Error("invalid history capacity, using default", "store", kind, "max_items", maxItems, "err", err)
		h = history.MustNew(history.DefaultMaxItems)
	}
	if n := len(items); n > h.Len() {
		slog.Info("dropped history items beyond capacity or duplicated", "store", kind, "loaded", n, "kept", h.Len())
	}
	slog.Info("loaded history", "store", kind, "items", h.Len())
	return h
}

func empty(maxItems int) *history.History {
	h, err := history.New(maxItems, nil)
	if err != nil {
		return history.MustNew(history.DefaultMaxItems)
	}
	return h
}
