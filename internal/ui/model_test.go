package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipflow/internal/settings"
)

type calls struct {
	copies   []int
	deletes  []int
	searches []string
	clears   int
}

func (c *calls) handlers() Handlers {
	return Handlers{
		Copy:   func(i int) { c.copies = append(c.copies, i) },
		Delete: func(i int) { c.deletes = append(c.deletes, i) },
		Search: func(q string) { c.searches = append(c.searches, q) },
		Clear:  func() { c.clears++ },
	}
}

// run executes cmd and any batched commands, returning non-batch messages.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func send(t *testing.T, m model, msg tea.Msg) (model, []tea.Msg) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(model)
	require.True(t, ok)
	return nm, run(cmd)
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+d":
		return tea.KeyMsg{Type: tea.KeyCtrlD}
	case "ctrl+x":
		return tea.KeyMsg{Type: tea.KeyCtrlX}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func isQuit(msgs []tea.Msg) bool {
	for _, m := range msgs {
		if _, ok := m.(tea.QuitMsg); ok {
			return true
		}
	}
	return false
}

func newTestModel(c *calls, items ...string) model {
	m := newModel(c.handlers(), settings.Defaults())
	m.setItems(items)
	return m
}

func TestModel_Navigation(t *testing.T) {
	var c calls
	m := newTestModel(&c, "a", "b", "c")

	m, _ = send(t, m, keyMsg("up"))
	assert.Equal(t, 0, m.cursor, "cannot move above the first item")

	m, _ = send(t, m, keyMsg("down"))
	m, _ = send(t, m, keyMsg("down"))
	m, _ = send(t, m, keyMsg("down"))
	assert.Equal(t, 2, m.cursor, "cannot move past the last item")

	m, _ = send(t, m, keyMsg("enter"))
	assert.Equal(t, []int{2}, c.copies)

	m, _ = send(t, m, keyMsg("ctrl+d"))
	assert.Equal(t, []int{2}, c.deletes)
}

func TestModel_ShowHistoryKeepsPosition(t *testing.T) {
	var c calls
	m := newTestModel(&c, "a", "b", "c")
	m, _ = send(t, m, keyMsg("down"))

	m, _ = send(t, m, historyMsg{"x", "y", "z", "w"})
	assert.Equal(t, 1, m.cursor)

	m, _ = send(t, m, keyMsg("down"))
	m, _ = send(t, m, keyMsg("down"))
	m, _ = send(t, m, historyMsg{"only"})
	assert.Equal(t, 0, m.cursor, "out-of-range selection resets to first")
}

func TestModel_TypingSearches(t *testing.T) {
	var c calls
	m := newTestModel(&c, "hello")

	m, _ = send(t, m, keyMsg("h"))
	m, _ = send(t, m, keyMsg("i"))
	assert.Equal(t, []string{"h", "hi"}, c.searches)

	m, _ = send(t, m, keyMsg("backspace"))
	assert.Equal(t, "h", c.searches[len(c.searches)-1])

	m, msgs := send(t, m, keyMsg("esc"))
	assert.False(t, isQuit(msgs), "esc with a query clears it")
	assert.Equal(t, "", m.input.Value())
	assert.Equal(t, "", c.searches[len(c.searches)-1])

	_, msgs = send(t, m, keyMsg("esc"))
	assert.True(t, isQuit(msgs), "esc on an empty query quits")
}

func TestModel_EmptyListIgnoresCopyAndDelete(t *testing.T) {
	var c calls
	m := newTestModel(&c)
	m, _ = send(t, m, keyMsg("enter"))
	_, _ = send(t, m, keyMsg("ctrl+d"))
	assert.Empty(t, c.copies)
	assert.Empty(t, c.deletes)
}

func TestModel_ClearConfirmation(t *testing.T) {
	var c calls
	m := newTestModel(&c, "a")

	m, _ = send(t, m, keyMsg("ctrl+x"))
	assert.True(t, m.confirming)
	assert.Zero(t, c.clears)

	m, _ = send(t, m, keyMsg("n"))
	assert.False(t, m.confirming)
	assert.Zero(t, c.clears)
	assert.Equal(t, "", m.input.Value(), "the answer is not typed into the query")

	m, _ = send(t, m, keyMsg("ctrl+x"))
	_, _ = send(t, m, keyMsg("y"))
	assert.Equal(t, 1, c.clears)
}

func TestModel_ClearWithoutConfirmation(t *testing.T) {
	var c calls
	s := settings.Defaults()
	require.NoError(t, s.Set(settings.KeyConfirmClear, false))
	m := newModel(c.handlers(), s)

	_, _ = send(t, m, keyMsg("ctrl+x"))
	assert.Equal(t, 1, c.clears)
}

func TestModel_QuitAndStatus(t *testing.T) {
	var c calls
	m := newTestModel(&c, "a")

	m, _ = send(t, m, statusMsg{text: "Clipboard history cleared!", sev: Info})
	assert.Contains(t, m.View(), "Clipboard history cleared!")

	_, msgs := send(t, m, keyMsg("ctrl+c"))
	assert.True(t, isQuit(msgs))
}

func TestModel_ViewScrollsAndTruncates(t *testing.T) {
	var c calls
	items := make([]string, 30)
	for i := range items {
		items[i] = strings.Repeat(string(rune('a'+i%26)), 200)
	}
	m := newTestModel(&c, items...)
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 40, Height: 12})

	for range 20 {
		m, _ = send(t, m, keyMsg("down"))
	}
	assert.Equal(t, 20, m.cursor)
	assert.LessOrEqual(t, m.offset, m.cursor)
	assert.Less(t, m.cursor, m.offset+m.listHeight())

	view := m.View()
	assert.Contains(t, view, "30 items")
	assert.Contains(t, view, "...")
	assert.NotContains(t, view, strings.Repeat("a", 60))
}

func TestModel_NilHandlers(t *testing.T) {
	m := newModel(Handlers{}, nil)
	m.setItems([]string{"a"})
	m, _ = send(t, m, keyMsg("enter"))
	m, _ = send(t, m, keyMsg("q"))
	_, _ = send(t, m, keyMsg("ctrl+x"))
}
