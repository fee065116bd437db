package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/chmouel/codecanvas/internal/app/services"
	"github.com/chmouel/codecanvas/internal/apperr"
	"github.com/chmouel/codecanvas/internal/diffview"
	"github.com/chmouel/codecanvas/internal/models"
	"github.com/chmouel/codecanvas/internal/storage"
)

const (
	actionStage   = "stage"
	actionUnstage = "unstage"
	actionCommit  = "commit"
	actionInit    = "init"
)

// refreshStatus re-queries the status matrix in the background.
func (m *Model) refreshStatus() tea.Cmd {
	engine := m.git
	repoPath := m.repoPath
	ctx := m.ctx
	return func() tea.Msg {
		if !engine.IsRepository(repoPath) {
			return gitStatusMsg{isRepo: false}
		}
		files, err := engine.RefreshStatus(ctx, repoPath)
		if err != nil {
			return gitStatusMsg{isRepo: true, err: err}
		}
		return gitStatusMsg{
			isRepo: true,
			branch: engine.CurrentBranch(ctx, repoPath),
			files:  files,
			rows:   engine.Matrix(),
		}
	}
}

func (m *Model) handleGitStatus(msg gitStatusMsg) tea.Cmd {
	m.gitPane.loaded = true
	m.gitPane.isRepo = msg.isRepo
	if msg.err != nil {
		if !errors.Is(msg.err, context.Canceled) {
			m.showError(msg.err)
		}
		return nil
	}
	m.gitPane.branch = msg.branch
	m.gitPane.status.SetFiles(services.StatusFiles(msg.files, msg.rows))

	if m.gitPane.diffPath != "" && m.statusFile(m.gitPane.diffPath) == nil {
		m.clearDiff()
	}
	return nil
}

func (m *Model) statusFile(path string) *services.StatusFile {
	if m.gitPane.status.Tree == nil {
		return nil
	}
	for _, f := range m.gitPane.status.Tree.CollectFiles() {
		if f.Path == path {
			return f
		}
	}
	return nil
}

func (m *Model) handleGitKey(msg tea.KeyMsg) tea.Cmd {
	status := m.gitPane.status
	selected := status.Selected()

	switch {
	case key.Matches(msg, m.keys.Up):
		status.Move(-1)
	case key.Matches(msg, m.keys.Down):
		status.Move(1)
	case key.Matches(msg, m.keys.PageDown):
		m.gitPane.diff.HalfPageDown()
	case key.Matches(msg, m.keys.PageUp):
		m.gitPane.diff.HalfPageUp()
	case key.Matches(msg, m.keys.Enter):
		if selected == nil {
			return nil
		}
		if selected.IsDir() {
			status.ToggleCollapse(selected.Path)
			status.ClampIndex()
			return nil
		}
		return m.loadDiff(selected.File.GitFileStatus)
	case key.Matches(msg, m.keys.Stage):
		if selected == nil {
			return nil
		}
		return m.stage(selected)
	case key.Matches(msg, m.keys.Unstage):
		if selected == nil {
			return nil
		}
		return m.unstage(selected)
	case key.Matches(msg, m.keys.Commit):
		return m.openCommitInput()
	case key.Matches(msg, m.keys.Init):
		if m.gitPane.isRepo {
			m.info = "Already a git repository"
			return nil
		}
		return m.initRepo()
	case key.Matches(msg, m.keys.Refresh):
		return m.refreshStatus()
	}
	return nil
}

// stageTargets lists the paths a stage or unstage of node touches. A
// rename moves two index entries.
func stageTargets(node *services.StatusTreeNode) []string {
	if node.IsDir() {
		return []string{node.Path}
	}
	paths := []string{node.File.Path}
	if node.File.Status == models.StatusRenamed && node.File.OldPath != "" {
		paths = append(paths, node.File.OldPath)
	}
	return paths
}

func (m *Model) stage(node *services.StatusTreeNode) tea.Cmd {
	engine, ctx := m.git, m.ctx
	paths := stageTargets(node)
	return func() tea.Msg {
		for _, p := range paths {
			if err := engine.Stage(ctx, p); err != nil {
				return gitActionMsg{action: actionStage, path: p, err: err}
			}
		}
		return gitActionMsg{action: actionStage, path: node.Path}
	}
}

func (m *Model) unstage(node *services.StatusTreeNode) tea.Cmd {
	engine, ctx := m.git, m.ctx
	var paths []string
	if node.IsDir() {
		for _, f := range node.CollectFiles() {
			if f.Staged {
				paths = append(paths, f.Path)
				if f.Status == models.StatusRenamed && f.OldPath != "" {
					paths = append(paths, f.OldPath)
				}
			}
		}
	} else {
		paths = stageTargets(node)
	}
	return func() tea.Msg {
		for _, p := range paths {
			if err := engine.Unstage(ctx, p); err != nil {
				return gitActionMsg{action: actionUnstage, path: p, err: err}
			}
		}
		return gitActionMsg{action: actionUnstage, path: node.Path}
	}
}

func (m *Model) commit(message string) tea.Cmd {
	engine, ctx := m.git, m.ctx
	return func() tea.Msg {
		record, err := engine.Commit(ctx, message, nil)
		if err != nil {
			return gitActionMsg{action: actionCommit, err: err}
		}
		return gitActionMsg{action: actionCommit, commit: &record}
	}
}

func (m *Model) initRepo() tea.Cmd {
	engine, ctx, repoPath := m.git, m.ctx, m.repoPath
	return func() tea.Msg {
		return gitActionMsg{action: actionInit, path: repoPath, err: engine.Init(ctx, repoPath)}
	}
}

// handleGitAction reports the outcome of a mutation and re-queries the
// status; mutations never update the pane directly.
func (m *Model) handleGitAction(msg gitActionMsg) tea.Cmd {
	if msg.err != nil {
		if msg.action == actionCommit && apperr.IsValidation(msg.err) && m.input.mode == inputCommit {
			m.input.err = errorText(msg.err)
			return nil
		}
		if m.input.mode == inputCommit {
			m.input.close()
		}
		m.showError(msg.err)
		return m.refreshStatus()
	}

	switch msg.action {
	case actionStage:
		m.info = "Staged " + displayRepoPath(msg.path)
	case actionUnstage:
		m.info = "Unstaged " + displayRepoPath(msg.path)
	case actionCommit:
		if m.input.mode == inputCommit {
			m.input.close()
		}
		m.gitPane.lastCommit = msg.commit
		m.clearDiff()
		if msg.commit != nil {
			m.info = fmt.Sprintf("Committed %s %s", msg.commit.ShortID(), firstLine(msg.commit.Message))
		}
	case actionInit:
		m.info = "Initialised repository in " + msg.path
	}
	return m.refreshStatus()
}

func displayRepoPath(p string) string {
	if p == "" {
		return "all changes"
	}
	return p
}

// loadDiff renders the change of one file against HEAD. Files with no
// committed version show as a pure addition.
func (m *Model) loadDiff(file models.GitFileStatus) tea.Cmd {
	engine, ctx, repoPath := m.git, m.ctx, m.repoPath
	tree := m.tree
	return func() tea.Msg {
		d, err := engine.Diff(ctx, repoPath, file.Path)
		if err == nil {
			return diffLoadedMsg{path: file.Path, text: diffview.Unified(d, diffview.DefaultContext)}
		}
		if !apperr.Is(err, apperr.CodeNotFound) {
			return diffLoadedMsg{path: file.Path, err: err}
		}
		data, readErr := tree.ReadFile(storage.Join(repoPath, file.Path))
		if readErr != nil {
			return diffLoadedMsg{path: file.Path, err: readErr}
		}
		return diffLoadedMsg{path: file.Path, text: diffview.NewFile(file.Path, string(data))}
	}
}

func (m *Model) handleDiffLoaded(msg diffLoadedMsg) {
	if msg.err != nil {
		m.showError(msg.err)
		return
	}
	m.gitPane.diffPath = msg.path
	m.gitPane.diffText = msg.text
	text := msg.text
	if text == "" {
		text = "No changes in " + msg.path
	} else {
		added, removed := diffview.Stats(text)
		m.info = fmt.Sprintf("%s: +%d -%d", msg.path, added, removed)
		text = diffview.Colorize(text, m.theme)
	}
	m.gitPane.diff.SetContent(text)
	m.gitPane.diff.GotoTop()
}

func (m *Model) clearDiff() {
	m.gitPane.diffPath = ""
	m.gitPane.diffText = ""
	m.gitPane.diff.SetContent("")
}
