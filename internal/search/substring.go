package search

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"go.klb.dev/clipflow/internal/history"
)

// Substring matches items whose content contains the query.
type Substring struct {
	CaseSensitive bool
}

func (m Substring) Search(items []history.Item, query string) []history.Item {
	return filter(m, items, query)
}

func (m Substring) IsMatch(item history.Item, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(normalize(item.Content, m.CaseSensitive), normalize(query, m.CaseSensitive))
}

// Subsequence matches items containing every query character in order,
// not necessarily adjacent ("gcm" matches "git commit -m"). sahilm/fuzzy folds
// case itself, so case-sensitive mode re-checks each candidate verbatim.
type Subsequence struct {
	CaseSensitive bool
}

func (m Subsequence) Search(items []history.Item, query string) []history.Item {
	if query == "" {
		return filter(m, items, query)
	}
	data := make([]string, len(items))
	for i, it := range items {
		data[i] = it.Content
	}
	// FindNoSort keeps history order instead of ranking by score.
	var out []history.Item
	for _, mt := range fuzzy.FindNoSort(query, data) {
		if m.CaseSensitive && !inOrder(query, items[mt.Index].Content) {
			continue
		}
		out = append(out, items[mt.Index])
	}
	return out
}

func (m Subsequence) IsMatch(item history.Item, query string) bool {
	if query == "" {
		return true
	}
	if len(fuzzy.FindNoSort(query, []string{item.Content})) == 0 {
		return false
	}
	return !m.CaseSensitive || inOrder(query, item.Content)
}

// inOrder reports whether every rune of sub appears in s in order.
func inOrder(sub, s string) bool {
	rs := []rune(sub)
	i := 0
	for _, r := range s {
		if i == len(rs) {
			break
		}
		if r == rs[i] {
			i++
		}
	}
	return i == len(rs)
}
