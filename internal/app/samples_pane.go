package app

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wrap"

	"github.com/chmouel/codecanvas/internal/apperr"
	"github.com/chmouel/codecanvas/internal/language"
	"github.com/chmouel/codecanvas/internal/models"
	"github.com/chmouel/codecanvas/internal/storage"
)

func (m *Model) selectedSample() (models.CodeSample, bool) {
	if m.samples.index < 0 || m.samples.index >= len(m.samples.list) {
		return models.CodeSample{}, false
	}
	return m.samples.list[m.samples.index], true
}

func (m *Model) handleSamplesKey(msg tea.KeyMsg) tea.Cmd {
	if m.samples.showing {
		switch {
		case key.Matches(msg, m.keys.Down):
			m.samples.code.ScrollDown(1)
		case key.Matches(msg, m.keys.Up):
			m.samples.code.ScrollUp(1)
		case key.Matches(msg, m.keys.PageDown):
			m.samples.code.HalfPageDown()
		case key.Matches(msg, m.keys.PageUp):
			m.samples.code.HalfPageUp()
		case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Enter):
			m.samples.showing = false
		case key.Matches(msg, m.keys.NewFile):
			return m.saveSample()
		}
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.samples.index > 0 {
			m.samples.index--
		}
	case key.Matches(msg, m.keys.Down):
		if m.samples.index < len(m.samples.list)-1 {
			m.samples.index++
		}
	case key.Matches(msg, m.keys.Enter):
		m.showSample()
	case key.Matches(msg, m.keys.NewFile):
		return m.saveSample()
	}
	return nil
}

func (m *Model) showSample() {
	sample, ok := m.selectedSample()
	if !ok {
		return
	}
	m.samples.showing = true
	m.samples.code.SetContent(m.sampleContent(sample))
	m.samples.code.GotoTop()
}

func (m *Model) sampleContent(sample models.CodeSample) string {
	width := m.samples.code.Width
	if width <= 0 {
		return sample.Code
	}
	return wrap.String(sample.Code, width)
}

// saveSample writes the selected sample into the storage root and opens it.
func (m *Model) saveSample() tea.Cmd {
	sample, ok := m.selectedSample()
	if !ok {
		return nil
	}
	root := m.tree.Root().Path
	name := fmt.Sprintf("%s.%s", sample.ID, language.Extension(sample.Language))
	path := storage.Join(root, name)
	if m.tree.FS().Exists(path) {
		m.showError(apperr.FileSystem(apperr.CodeAlreadyExists, "already exists: "+path, nil))
		return nil
	}
	if err := m.tree.SaveFile(m.ctx, path, sample.Code); err != nil {
		m.showError(err)
		return nil
	}
	if err := m.tree.Refresh(m.ctx, root); err != nil {
		m.showError(err)
	}
	m.revealInExplorer(path)
	cmds := []tea.Cmd{m.refreshStatus()}
	if node := m.tree.Find(path); node != nil {
		cmds = append(cmds, m.openFile(node, 0))
	}
	m.info = "Saved sample to " + path
	return tea.Batch(cmds...)
}
