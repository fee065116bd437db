package app

import (
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/chmouel/codecanvas/internal/apperr"
	"github.com/chmouel/codecanvas/internal/models"
	"github.com/chmouel/codecanvas/internal/search"
)

type (
	errMsg  struct{ err error }
	infoMsg string

	gitStatusMsg struct {
		isRepo bool
		branch string
		files  []models.GitFileStatus
		rows   []models.StatusRow
		err    error
	}
	gitActionMsg struct {
		action string
		path   string
		commit *models.CommitRecord
		err    error
	}
	diffLoadedMsg struct {
		path string
		text string
		err  error
	}

	searchDebounceMsg struct{ seq int }
	searchResultMsg   struct {
		token   search.Token
		query   string
		matches []models.SearchMatch
		err     error
	}

	editorClosedMsg struct {
		path string
		err  error
	}
	watchEventMsg      struct{}
	autoRefreshTickMsg struct{}
)

// showError routes validation errors to the input line and everything
// else to the banner.
func (m *Model) showError(err error) {
	if err == nil {
		return
	}
	if apperr.IsValidation(err) {
		m.input.err = errorText(err)
		return
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		logger.WithField("code", ae.Code).Debugf("ui error: %v", err)
		m.banner = ae.Message
		if ae.Cause != nil {
			m.banner += ": " + ae.Cause.Error()
		}
		return
	}
	m.banner = err.Error()
}

// errorText returns the message of an application error without its code.
func errorText(err error) string {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}

func (m *Model) startWatcher() tea.Cmd {
	if m.watcher == nil || m.store == nil {
		return nil
	}
	root, ok := m.store.LocalPath("/")
	if !ok {
		return nil
	}
	started, err := m.watcher.Start(root)
	if err != nil {
		logger.Warnf("start watcher: %v", err)
		return nil
	}
	if !started && !m.watcher.Started {
		return nil
	}
	return m.waitForWatch()
}

func (m *Model) waitForWatch() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	ch := m.watcher.NextEvent()
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return watchEventMsg{}
	}
}

func (m *Model) handleWatchEvent() tea.Cmd {
	m.watcher.ResetWaiting()
	var cmd tea.Cmd
	if m.watcher.ShouldRefresh(m.now()) {
		cmd = m.reloadAll()
	}
	return tea.Batch(cmd, m.waitForWatch())
}

func (m *Model) autoRefreshTick() tea.Cmd {
	interval := time.Duration(m.config.RefreshIntervalSec) * time.Second
	return tea.Tick(interval, func(time.Time) tea.Msg { return autoRefreshTickMsg{} })
}

func (m *Model) handleAutoRefreshTick() tea.Cmd {
	return tea.Batch(m.reloadAll(), m.autoRefreshTick())
}

// reloadAll re-lists the explorer, keeping expanded directories, and
// recomputes the git status.
func (m *Model) reloadAll() tea.Cmd {
	if err := m.tree.Reload(m.ctx); err != nil {
		m.showError(err)
	}
	m.rebuildExplorer()
	return m.refreshStatus()
}
