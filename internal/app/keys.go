package app

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type keyMap struct {
	Quit       key.Binding
	NextPane   key.Binding
	PrevPane   key.Binding
	Up         key.Binding
	Down       key.Binding
	Enter      key.Binding
	Back       key.Binding
	Search     key.Binding
	Samples    key.Binding
	QuickOpen  key.Binding
	NewFile    key.Binding
	NewDir     key.Binding
	Rename     key.Binding
	Delete     key.Binding
	Bookmark   key.Binding
	Hidden     key.Binding
	Refresh    key.Binding
	Stage      key.Binding
	Unstage    key.Binding
	Commit     key.Binding
	Init       key.Binding
	Case       key.Binding
	WholeWord  key.Binding
	Regex      key.Binding
	Dismiss    key.Binding
	PageDown   key.Binding
	PageUp     key.Binding
	PaneNumber key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "Quit")),
		NextPane:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("Tab", "Switch Pane")),
		PrevPane:   key.NewBinding(key.WithKeys("shift+tab")),
		Up:         key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("j/k", "Navigate")),
		Down:       key.NewBinding(key.WithKeys("j", "down")),
		Enter:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "Open")),
		Back:       key.NewBinding(key.WithKeys("h", "left")),
		Search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "Search")),
		Samples:    key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "Samples")),
		QuickOpen:  key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "Quick Open")),
		NewFile:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "New File")),
		NewDir:     key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "New Folder")),
		Rename:     key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "Rename")),
		Delete:     key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "Delete")),
		Bookmark:   key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "Bookmark")),
		Hidden:     key.NewBinding(key.WithKeys("."), key.WithHelp(".", "Hidden")),
		Refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "Refresh")),
		Stage:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "Stage")),
		Unstage:    key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "Unstage")),
		Commit:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "Commit")),
		Init:       key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "Init Repo")),
		Case:       key.NewBinding(key.WithKeys("alt+c"), key.WithHelp("alt+c", "Case")),
		WholeWord:  key.NewBinding(key.WithKeys("alt+w"), key.WithHelp("alt+w", "Word")),
		Regex:      key.NewBinding(key.WithKeys("alt+r"), key.WithHelp("alt+r", "Regex")),
		Dismiss:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "Dismiss")),
		PageDown:   key.NewBinding(key.WithKeys("ctrl+d", "pgdown")),
		PageUp:     key.NewBinding(key.WithKeys("ctrl+u", "pgup")),
		PaneNumber: key.NewBinding(key.WithKeys("1", "2", "3", "4")),
	}
}

// handleKey routes a key press: the input line first, then global keys,
// then the focused pane.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.input.active() {
		return m, m.handleInputKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.Close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Dismiss):
		m.banner = ""
		m.info = ""
		if m.view.focused == paneSamples && m.samples.showing {
			m.samples.showing = false
		}
		return m, nil
	case key.Matches(msg, m.keys.NextPane):
		m.focus((m.view.focused + 1) % paneCount)
		return m, nil
	case key.Matches(msg, m.keys.PrevPane):
		m.focus((m.view.focused + paneCount - 1) % paneCount)
		return m, nil
	case key.Matches(msg, m.keys.PaneNumber):
		m.focus(pane(msg.String()[0] - '1'))
		return m, nil
	case key.Matches(msg, m.keys.Search):
		m.focus(paneSearch)
		return m, m.openSearchInput()
	case key.Matches(msg, m.keys.Samples):
		m.focus(paneSamples)
		return m, nil
	case key.Matches(msg, m.keys.QuickOpen):
		return m, m.openQuickOpen()
	}

	switch m.view.focused {
	case paneGit:
		return m, m.handleGitKey(msg)
	case paneSearch:
		return m, m.handleSearchKey(msg)
	case paneSamples:
		return m, m.handleSamplesKey(msg)
	default:
		return m, m.handleExplorerKey(msg)
	}
}

func (m *Model) focus(p pane) {
	if p < 0 || p >= paneCount {
		return
	}
	m.view.focused = p
	if p == paneSearch || p == paneSamples {
		m.view.bottom = p
	}
}
