// Package search filters clipboard history items against a user query.
//
// Every matcher keeps the input order and treats an empty query as matching
// everything. The fuzzy matcher finds the query inside an item's content
// allowing a bounded number of edits; queries of one or two characters fall
// back to plain containment, since nearly any text is within one edit of a
// one-character string.
package search

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"go.klb.dev/clipflow/internal/history"
	"go.klb.dev/clipflow/internal/settings"
)

// ShortQueryLen is the longest query matched by containment only.
const ShortQueryLen = 2

// Matcher decides which items match a query.
type Matcher interface {
	// Search returns the items matching query in their original order.
	Search(items []history.Item, query string) []history.Item
	// IsMatch reports whether a single item matches query.
	IsMatch(item history.Item, query string) bool
}

// filter is the shared Search implementation.
func filter(m Matcher, items []history.Item, query string) []history.Item {
	if query == "" {
		out := make([]history.Item, len(items))
		copy(out, items)
		return out
	}
	var out []history.Item
	for _, it := range items {
		if m.IsMatch(it, query) {
			out = append(out, it)
		}
	}
	slog.Debug("search", "query_len", utf8.RuneCountInString(query), "results", len(out), "of", len(items))
	return out
}

// normalize applies case folding when the search is case-insensitive.
func normalize(s string, caseSensitive bool) string {
	if caseSensitive {
		return s
	}
	return strings.ToLower(s)
}

// New returns the matcher selected by the search.mode setting. The returned
// matcher re-reads its thresholds from s on every call.
func New(s *settings.Settings) Matcher {
	return &Engine{settings: s}
}

// Engine dispatches to the matcher named by the current search.mode
// setting, so a settings reload switches modes without rebuilding the
// service.
type Engine struct {
	settings *settings.Settings
}

// Search implements Matcher.
func (e *Engine) Search(items []history.Item, query string) []history.Item {
	return e.current().Search(items, query)
}

// IsMatch implements Matcher.
func (e *Engine) IsMatch(item history.Item, query string) bool {
	return e.current().IsMatch(item, query)
}

func (e *Engine) current() Matcher {
	s := e.settings
	caseSensitive := s.Bool(settings.KeyCaseSensitive)
	switch s.String(settings.KeySearchMode) {
	case settings.ModeSubstring:
		return Substring{CaseSensitive: caseSensitive}
	case settings.ModeSubsequence:
		return Subsequence{CaseSensitive: caseSensitive}
	default:
		return NewFuzzy(OptionsFromSettings(s))
	}
}
