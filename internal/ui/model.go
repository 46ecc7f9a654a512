package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go.klb.dev/clipflow/internal/history"
	"go.klb.dev/clipflow/internal/settings"
)

type historyMsg []string

type statusMsg struct {
	text string
	sev  Severity
}

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Copy     key.Binding
	Delete   key.Binding
	Clear    key.Binding
	Back     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "ctrl+n"), key.WithHelp("↓", "down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
		Copy:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "copy")),
		Delete:   key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "delete")),
		Clear:    key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "clear all")),
		Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "reset/quit")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) help() string {
	parts := make([]string, 0, 6)
	for _, b := range []key.Binding{k.Copy, k.Delete, k.Clear, k.Back, k.Quit} {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	countStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	itemStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	emptyStyle    = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusStyles  = map[Severity]lipgloss.Style{
		Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
)

// chromeLines is the number of rows taken by everything except the list.
const chromeLines = 5

const defaultListHeight = 10

type model struct {
	handlers Handlers
	// post queues a handler call. Nil runs it inline.
	post     func(func())
	settings *settings.Settings
	keys     keyMap

	input  textinput.Model
	items  []string
	cursor int
	offset int

	width, height int

	status     string
	statusSev  Severity
	confirming bool
}

func newModel(h Handlers, s *settings.Settings) model {
	in := textinput.New()
	in.Placeholder = "Search clipboard history..."
	in.Prompt = "> "
	in.Cursor.SetMode(cursor.CursorStatic)
	in.Focus()
	return model{
		handlers: h,
		settings: s,
		keys:     defaultKeyMap(),
		input:    in,
	}
}

func (m model) Init() tea.Cmd { return nil }

// setItems replaces the list, keeping the cursor position when it is still
// valid and selecting the first item otherwise.
func (m *model) setItems(items []string) {
	m.items = items
	if m.cursor >= len(items) || m.cursor < 0 {
		m.cursor = 0
		m.offset = 0
	}
	m.scroll()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = max(msg.Width-len(m.input.Prompt)-1, 0)
		m.scroll()
		return m, nil

	case historyMsg:
		m.setItems(msg)
		return m, nil

	case statusMsg:
		m.status, m.statusSev = msg.text, msg.sev
		return m, nil

	case tea.KeyMsg:
		if m.confirming {
			m.confirming = false
			if s := strings.ToLower(msg.String()); s == "y" {
				m.status = ""
				m.clearHistory()
				return m, nil
			}
			m.status, m.statusSev = "Clear cancelled", Info
			return m, nil
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back):
			if m.input.Value() == "" {
				return m, tea.Quit
			}
			m.input.SetValue("")
			m.search("")
			return m, nil
		case key.Matches(msg, m.keys.Up):
			m.move(-1)
			return m, nil
		case key.Matches(msg, m.keys.Down):
			m.move(1)
			return m, nil
		case key.Matches(msg, m.keys.PageUp):
			m.move(-m.listHeight())
			return m, nil
		case key.Matches(msg, m.keys.PageDown):
			m.move(m.listHeight())
			return m, nil
		case key.Matches(msg, m.keys.Copy):
			if len(m.items) == 0 {
				return m, nil
			}
			m.status, m.statusSev = "Copied to clipboard", Info
			m.copyItem(m.cursor)
			return m, nil
		case key.Matches(msg, m.keys.Delete):
			if len(m.items) == 0 {
				return m, nil
			}
			m.deleteItem(m.cursor)
			return m, nil
		case key.Matches(msg, m.keys.Clear):
			if m.settings == nil || m.settings.Bool(settings.KeyConfirmClear) {
				m.confirming = true
				m.status, m.statusSev = "Clear all history? (y/n)", Warning
				return m, nil
			}
			m.clearHistory()
			return m, nil
		}

		before := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if q := m.input.Value(); q != before {
			m.search(q)
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) move(delta int) {
	if len(m.items) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.items)-1)
	m.scroll()
}

// scroll keeps the cursor inside the visible window.
func (m *model) scroll() {
	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	m.offset = max(min(m.offset, len(m.items)-h), 0)
}

func (m model) listHeight() int {
	if m.height <= 0 {
		return defaultListHeight
	}
	return max(m.height-chromeLines, 1)
}

func (m model) previewLen() int {
	n := 80
	if m.settings != nil {
		n = int(m.settings.Float(settings.KeyPreviewLength))
	}
	if m.width > 0 {
		n = min(n, max(m.width-3, 4))
	}
	return n
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("clipflow"))
	b.WriteString(countStyle.Render(fmt.Sprintf("  %d items", len(m.items))))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	h := m.listHeight()
	if len(m.items) == 0 {
		b.WriteString(emptyStyle.Render("  nothing here yet"))
		b.WriteString("\n")
		h--
	}
	n := m.previewLen()
	end := min(m.offset+h, len(m.items))
	for i := m.offset; i < end; i++ {
		line := history.Preview(m.items[i], n)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("▸ " + line))
		} else {
			b.WriteString(itemStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}
	for i := end - m.offset; i < h; i++ {
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString(statusStyles[m.statusSev].Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.keys.help()))
	return b.String()
}

// dispatch hands fn to the action queue so handler calls keep the order of
// the keystrokes that caused them.
func (m model) dispatch(fn func()) {
	if m.post == nil {
		fn()
		return
	}
	m.post(fn)
}

func (m model) copyItem(i int) {
	if h := m.handlers.Copy; h != nil {
		m.dispatch(func() { h(i) })
	}
}

func (m model) deleteItem(i int) {
	if h := m.handlers.Delete; h != nil {
		m.dispatch(func() { h(i) })
	}
}

func (m model) clearHistory() {
	if h := m.handlers.Clear; h != nil {
		m.dispatch(h)
	}
}

func (m model) search(q string) {
	if h := m.handlers.Search; h != nil {
		m.dispatch(func() { h(q) })
	}
}
