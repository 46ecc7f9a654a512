package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepClock returns a clock that advances one second per call.
func stepClock() func() time.Time {
	t := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func TestNewItem_RejectsEmptyContent(t *testing.T) {
	_, err := NewItem("", time.Now())
	require.ErrorIs(t, err, ErrEmptyContent)

	it, err := NewItem("x", time.Unix(10, 0))
	require.NoError(t, err)
	assert.Equal(t, "x", it.Content)
	assert.Equal(t, time.Unix(10, 0), it.CreatedAt)
}

func TestNew_RejectsNonPositiveCapacity(t *testing.T) {
	for _, n := range []int{0, -1} {
		_, err := New(n, nil)
		require.ErrorIs(t, err, ErrInvalidCapacity, "max=%d", n)
	}
}

func TestNew_DedupesAndTruncates(t *testing.T) {
	now := time.Now()
	items := []Item{
		{Content: "a", CreatedAt: now},
		{Content: "b", CreatedAt: now},
		{Content: "a", CreatedAt: now.Add(-time.Hour)},
		{Content: "c", CreatedAt: now},
		{Content: "d", CreatedAt: now},
	}
	h, err := New(3, items)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, h.Contents())
	assert.Equal(t, now, h.items[0].CreatedAt)
}

func TestAdd_BoundedAfterEveryCall(t *testing.T) {
	h := MustNew(5)
	for i := 0; i < 50; i++ {
		h.Add(fmt.Sprintf("item-%d", i%13))
		require.LessOrEqual(t, h.Len(), h.MaxItems())
	}
	assert.Equal(t, 5, h.Len())
}

func TestAdd_EvictsOldest(t *testing.T) {
	h := MustNew(3)
	for _, c := range []string{"a", "b", "c", "d"} {
		h.Add(c)
	}
	assert.Equal(t, []string{"d", "c", "b"}, h.Contents())
}

func TestAdd_ReaddMovesToFrontWithNewTimestamp(t *testing.T) {
	h := MustNew(10, WithClock(stepClock()))
	h.Add("b")
	h.Add("a")
	first := h.items[0].CreatedAt

	h.Add("a")
	require.Equal(t, []string{"a", "b"}, h.Contents())
	assert.True(t, h.items[0].CreatedAt.After(first))

	h.Add("b")
	assert.Equal(t, []string{"b", "a"}, h.Contents())
}

func TestAdd_TwiceLeavesSingleItem(t *testing.T) {
	h := MustNew(10, WithClock(stepClock()))
	h.Add("x")
	h.Add("y")
	h.Add("x")
	second := h.items[0].CreatedAt
	h.Add("x")

	count := 0
	for _, c := range h.Contents() {
		if c == "x" {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Equal(t, 0, h.IndexOf("x"))
	assert.True(t, h.items[0].CreatedAt.After(second))
}

func TestAdd_EmptyIsNoop(t *testing.T) {
	h := MustNew(10)
	h.Add("a")
	before := h.Items()

	assert.False(t, h.Add(""))
	assert.Equal(t, before, h.Items())
}

func TestRemoveAt(t *testing.T) {
	h := MustNew(10)
	for _, c := range []string{"c", "b", "a"} {
		h.Add(c)
	}
	before := h.Contents()

	for _, i := range []int{-1, 3, 100} {
		assert.False(t, h.RemoveAt(i), "index %d", i)
		assert.Equal(t, before, h.Contents())
	}

	require.True(t, h.RemoveAt(1))
	assert.Equal(t, []string{"a", "c"}, h.Contents())
	assert.Equal(t, 2, h.Len())
}

func TestRemove_ByContent(t *testing.T) {
	h := MustNew(10)
	h.Add("x")
	h.Add("y")
	assert.True(t, h.Remove("x"))
	assert.False(t, h.Remove("x"))
	assert.Equal(t, []string{"y"}, h.Contents())
}

func TestClear_KeepsCapacity(t *testing.T) {
	h := MustNew(7)
	h.Add("a")
	h.Add("b")
	h.Clear()
	assert.Equal(t, 0, h.Len())
	assert.Equal(t, 7, h.MaxItems())
	assert.Empty(t, h.Contents())
}

func TestSnapshot_IsDetached(t *testing.T) {
	h := MustNew(10)
	h.Add("a")
	snap := h.Snapshot()
	h.Add("b")
	h.Clear()

	assert.Equal(t, []string{"a"}, snap.Contents())
	assert.Equal(t, 10, snap.MaxItems)
}

func TestAt(t *testing.T) {
	h := MustNew(2)
	h.Add("a")
	it, ok := h.At(0)
	require.True(t, ok)
	assert.Equal(t, "a", it.Content)
	_, ok = h.At(1)
	assert.False(t, ok)
}

func TestPreview(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 50, "short"},
		{"line1\nline2\r\nline3", 50, "line1 line2 line3"},
		{"abcdefghijkl", 8, "abcde..."},
		{"héllo wörld", 7, "héll..."},
		{"abcdef", 2, "ab"},
		{"anything", 0, "anything"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Preview(tt.in, tt.max), "Preview(%q, %d)", tt.in, tt.max)
	}
}
