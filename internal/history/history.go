package history

import (
	"slices"
	"time"
)

// DefaultMaxItems is the capacity used when none is configured.
const DefaultMaxItems = 1000

// History is an ordered, most-recent-first collection of items with unique
// content and a fixed capacity. It is not safe for concurrent use; the
// service serialises all access.
type History struct {
	items    []Item
	maxItems int
	now      func() time.Time
}

// Option configures a History.
type Option func(*History)

// WithClock overrides the timestamp source used by Add.
func WithClock(now func() time.Time) Option {
	return func(h *History) { h.now = now }
}

// New returns a history with capacity maxItems seeded with items, which must
// already be most-recent-first. Later duplicates of an item's content are
// dropped and the tail beyond maxItems is truncated.
func New(maxItems int, items []Item, opts ...Option) (*History, error) {
	if maxItems <= 0 {
		return nil, ErrInvalidCapacity
	}
	h := &History{
		items:    make([]Item, 0, min(len(items), maxItems)),
		maxItems: maxItems,
		now:      time.Now,
	}
	for _, o := range opts {
		o(h)
	}

	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if it.Content == "" {
			continue
		}
		if _, dup := seen[it.Content]; dup {
			continue
		}
		seen[it.Content] = struct{}{}
		h.items = append(h.items, it)
	}
	h.enforceLimit()
	return h, nil
}

// MustNew is New for callers that pass a known-good capacity.
func MustNew(maxItems int, opts ...Option) *History {
	h, err := New(maxItems, nil, opts...)
	if err != nil {
		panic(err)
	}
	return h
}

// Add records content as the most recent item. Empty content is ignored.
// An existing item with identical content is replaced, so the new item
// carries the current timestamp. It reports whether the history changed.
func (h *History) Add(content string) bool {
	if content == "" {
		return false
	}
	h.items = slices.DeleteFunc(h.items, func(it Item) bool { return it.Content == content })
	h.items = slices.Insert(h.items, 0, Item{Content: content, CreatedAt: h.now()})
	h.enforceLimit()
	return true
}

// RemoveAt deletes the item at index. It returns false, leaving the history
// untouched, when index is out of range.
func (h *History) RemoveAt(index int) bool {
	if index < 0 || index >= len(h.items) {
		return false
	}
	h.items = slices.Delete(h.items, index, index+1)
	return true
}

// Remove deletes the item whose content equals content and reports whether
// one was found.
func (h *History) Remove(content string) bool {
	i := h.IndexOf(content)
	if i < 0 {
		return false
	}
	return h.RemoveAt(i)
}

// IndexOf returns the position of the item with the given content, or -1.
func (h *History) IndexOf(content string) int {
	return slices.IndexFunc(h.items, func(it Item) bool { return it.Content == content })
}

// Clear removes every item. The capacity is unchanged.
func (h *History) Clear() {
	clear(h.items)
	h.items = h.items[:0]
}

// Len returns the number of retained items.
func (h *History) Len() int { return len(h.items) }

// MaxItems returns the capacity.
func (h *History) MaxItems() int { return h.maxItems }

// At returns the item at index.
func (h *History) At(index int) (Item, bool) {
	if index < 0 || index >= len(h.items) {
		return Item{}, false
	}
	return h.items[index], true
}

// Items returns a copy of the items, most recent first.
func (h *History) Items() []Item {
	return slices.Clone(h.items)
}

// Contents returns the content strings in current order.
func (h *History) Contents() []string {
	out := make([]string, len(h.items))
	for i, it := range h.items {
		out[i] = it.Content
	}
	return out
}

// Snapshot returns a deep copy suitable for handing to a store.
func (h *History) Snapshot() Snapshot {
	return Snapshot{Items: h.Items(), MaxItems: h.maxItems}
}

func (h *History) enforceLimit() {
	if len(h.items) > h.maxItems {
		clear(h.items[h.maxItems:])
		h.items = h.items[:h.maxItems]
	}
}

// Snapshot is a detached copy of a history's state.
type Snapshot struct {
	Items    []Item
	MaxItems int
}

// Contents returns the snapshot's content strings in order.
func (s Snapshot) Contents() []string {
	out := make([]string, len(s.Items))
	for i, it := range s.Items {
		out[i] = it.Content
	}
	return out
}
