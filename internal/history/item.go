// Package history implements the bounded, deduplicated, most-recent-first
// clipboard history and its items.
package history

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	// ErrEmptyContent is returned when an item is constructed without content.
	ErrEmptyContent = errors.New("history: item content cannot be empty")

	// ErrInvalidCapacity is returned when a history is constructed with a
	// non-positive capacity.
	ErrInvalidCapacity = errors.New("history: max items must be positive")
)

// Item is a single retained clipboard snapshot.
type Item struct {
	Content   string
	CreatedAt time.Time
}

// NewItem returns an Item for content stamped with createdAt.
func NewItem(content string, createdAt time.Time) (Item, error) {
	if content == "" {
		return Item{}, ErrEmptyContent
	}
	return Item{Content: content, CreatedAt: createdAt}, nil
}

// Preview returns a single-line rendering of the content no longer than
// maxLen runes. Newlines and carriage returns become spaces.
func (it Item) Preview(maxLen int) string {
	return Preview(it.Content, maxLen)
}

// Preview is Item.Preview for a bare string.
func Preview(s string, maxLen int) string {
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string([]rune(s)[:maxLen])
	}
	return string([]rune(s)[:maxLen-3]) + "..."
}
