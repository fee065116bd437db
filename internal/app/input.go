package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/chmouel/codecanvas/internal/filetree"
	"github.com/chmouel/codecanvas/internal/models"
	"github.com/chmouel/codecanvas/internal/storage"
)

type inputMode int

const (
	inputNone inputMode = iota
	inputNewFile
	inputNewDir
	inputRename
	inputDelete
	inputCommit
	inputSearch
	inputQuickOpen
)

const quickOpenLimit = 10

// inputState is the single-line prompt shown above the panes.
type inputState struct {
	mode   inputMode
	label  string
	target string // path the prompt acts on
	field  textinput.Model
	err    string

	quick      []filetree.QuickMatch
	quickIndex int
}

func newInputState() inputState {
	field := textinput.New()
	field.Prompt = ""
	field.CharLimit = 256
	return inputState{field: field}
}

func (s *inputState) active() bool {
	return s.mode != inputNone
}

func (s *inputState) open(mode inputMode, label, target, value, placeholder string) tea.Cmd {
	s.mode = mode
	s.label = label
	s.target = target
	s.err = ""
	s.quick = nil
	s.quickIndex = 0
	s.field.Placeholder = placeholder
	s.field.SetValue(value)
	s.field.CursorEnd()
	return s.field.Focus()
}

func (s *inputState) close() {
	s.mode = inputNone
	s.label = ""
	s.target = ""
	s.err = ""
	s.quick = nil
	s.field.Blur()
	s.field.SetValue("")
}

func (s *inputState) value() string {
	return s.field.Value()
}

// handleInputKey feeds a key to the active prompt.
func (m *Model) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.input.close()
		return nil
	case tea.KeyEnter:
		return m.submitInput()
	}

	switch m.input.mode {
	case inputSearch:
		if cmd, ok := m.toggleSearchOption(msg); ok {
			return cmd
		}
	case inputQuickOpen:
		switch msg.String() {
		case "up", "ctrl+k":
			if m.input.quickIndex > 0 {
				m.input.quickIndex--
			}
			return nil
		case "down", "ctrl+j":
			if m.input.quickIndex < len(m.input.quick)-1 {
				m.input.quickIndex++
			}
			return nil
		}
	}

	before := m.input.value()
	var cmd tea.Cmd
	m.input.field, cmd = m.input.field.Update(msg)
	if m.input.value() == before {
		return cmd
	}
	m.input.err = ""

	switch m.input.mode {
	case inputSearch:
		m.search.query = m.input.value()
		return tea.Batch(cmd, m.scheduleSearch())
	case inputQuickOpen:
		m.updateQuickOpen()
	}
	return cmd
}

func (m *Model) submitInput() tea.Cmd {
	value := m.input.value()
	target := m.input.target

	switch m.input.mode {
	case inputNewFile, inputNewDir:
		kind := models.KindFile
		if m.input.mode == inputNewDir {
			kind = models.KindDirectory
		}
		return m.createEntry(target, value, kind)
	case inputRename:
		return m.renameEntry(target, value)
	case inputDelete:
		answer := strings.ToLower(strings.TrimSpace(value))
		m.input.close()
		if answer != "y" && answer != "yes" {
			return nil
		}
		return m.deleteEntry(target)
	case inputCommit:
		return m.commit(value)
	case inputSearch:
		m.search.query = value
		m.input.close()
		m.search.seq++
		return m.startSearch()
	case inputQuickOpen:
		if len(m.input.quick) == 0 {
			m.input.close()
			return nil
		}
		node := m.input.quick[m.input.quickIndex].Node
		m.input.close()
		m.revealInExplorer(node.Path)
		return m.openFile(node, 0)
	}
	m.input.close()
	return nil
}

func (m *Model) openQuickOpen() tea.Cmd {
	cmd := m.input.open(inputQuickOpen, "Open", "", "", "Type to fuzzy match a file...")
	m.updateQuickOpen()
	return cmd
}

func (m *Model) updateQuickOpen() {
	matches, err := m.tree.QuickOpen(m.ctx, m.input.value(), quickOpenLimit)
	if err != nil {
		m.showError(err)
		return
	}
	m.input.quick = matches
	if m.input.quickIndex >= len(matches) {
		m.input.quickIndex = 0
	}
}

// promptTarget returns the directory new entries are created in: the
// selected directory, or the parent of the selected file.
func (m *Model) promptTarget() string {
	node := m.selectedNode()
	if node == nil {
		return m.tree.Root().Path
	}
	if node.IsDir() {
		return node.Path
	}
	return storage.Dir(node.Path)
}

func (m *Model) openCommitInput() tea.Cmd {
	if !m.gitPane.isRepo {
		m.info = "Not a git repository, press i to initialise one"
		return nil
	}
	return m.input.open(inputCommit, "Commit", "", "", "Commit message")
}
