package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chmouel/codecanvas/internal/apperr"
	"github.com/chmouel/codecanvas/internal/config"
	"github.com/chmouel/codecanvas/internal/filetree"
	"github.com/chmouel/codecanvas/internal/git"
	"github.com/chmouel/codecanvas/internal/models"
	"github.com/chmouel/codecanvas/internal/storage"
	"github.com/chmouel/codecanvas/internal/workspace"
)

var fixedTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store *storage.Store
	model *Model
}

func newFixture(t *testing.T, files map[string]string) *fixture {
	t.Helper()
	store := storage.NewMemory()
	for path, content := range files {
		require.NoError(t, store.Mkdir(storage.Dir(path), true))
		require.NoError(t, store.WriteFile(path, []byte(content)))
	}
	tree, err := filetree.New(context.Background(), store, "/")
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	cfg.AutoRefresh = false
	cfg.SearchDebounceMS = 0
	cfg.ShowIcons = false

	m := NewModel(cfg, Deps{
		Store: store,
		Tree:  tree,
		Git:   git.NewEngine(store, git.WithClock(func() time.Time { return fixedTime })),
		State: workspace.NewState(cfg.RecentFilesLimit),
	})
	t.Cleanup(m.Close)
	return &fixture{store: store, model: m}
}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var enterKey = tea.KeyMsg{Type: tea.KeyEnter}

// press sends a key and returns the command it produced.
func (f *fixture) press(t *testing.T, msg tea.KeyMsg) tea.Cmd {
	t.Helper()
	_, cmd := f.model.Update(msg)
	return cmd
}

// deliver runs cmd and feeds its message back into the model, following
// the chain of returned commands.
func (f *fixture) deliver(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil && i < 10; i++ {
		msg := cmd()
		if msg == nil {
			return
		}
		_, cmd = f.model.Update(msg)
	}
}

func (f *fixture) initRepo(t *testing.T) {
	t.Helper()
	require.NoError(t, f.model.git.Init(context.Background(), "/"))
	f.deliver(t, f.model.refreshStatus())
}

func explorerPaths(m *Model) []string {
	out := make([]string, 0, len(m.explorer.nodes))
	for _, v := range m.explorer.nodes {
		out = append(out, v.Node.Path)
	}
	return out
}

func TestExplorerNavigateAndExpand(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/src/main.go": "package main\n",
		"/README.md":   "# readme\n",
	})
	m := f.model

	assert.Equal(t, []string{"/src", "/README.md"}, explorerPaths(m))

	f.press(t, enterKey)
	assert.Equal(t, []string{"/src", "/src/main.go", "/README.md"}, explorerPaths(m))

	f.press(t, runeKey("j"))
	assert.Equal(t, "/src/main.go", m.selectedNode().Path)

	f.press(t, runeKey("h"))
	assert.Equal(t, "/src", m.selectedNode().Path)

	f.press(t, runeKey("h"))
	assert.Equal(t, []string{"/src", "/README.md"}, explorerPaths(m))
}

func TestExplorerOpenFileRecordsTabAndRecent(t *testing.T) {
	f := newFixture(t, map[string]string{"/notes.txt": "hello"})
	m := f.model

	f.press(t, enterKey)

	tab, ok := m.state.Tabs.Active()
	require.True(t, ok)
	assert.Equal(t, "/notes.txt", tab.Path)
	assert.Equal(t, "hello", tab.Content)
	assert.Equal(t, []string{"/notes.txt"}, m.state.Recent.List())
	assert.Equal(t, "Opened /notes.txt", m.info)
}

func TestCreateFileFromPrompt(t *testing.T) {
	f := newFixture(t, map[string]string{"/src/a.go": "package a\n"})
	m := f.model

	f.press(t, runeKey("n"))
	require.True(t, m.input.active())
	assert.Equal(t, "/src", m.input.target)

	m.input.field.SetValue("b.go")
	f.press(t, enterKey)

	assert.False(t, m.input.active())
	assert.True(t, f.store.Exists("/src/b.go"))
	assert.Equal(t, "/src/b.go", m.selectedNode().Path)
}

func TestCreateFileInvalidNameStaysInline(t *testing.T) {
	f := newFixture(t, nil)
	m := f.model

	f.press(t, runeKey("N"))
	m.input.field.SetValue("a/b")
	f.press(t, enterKey)

	assert.True(t, m.input.active())
	assert.Contains(t, m.input.err, "path separator")
	assert.Empty(t, m.banner)

	f.press(t, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.input.active())
}

func TestCreateExistingFileShowsBanner(t *testing.T) {
	f := newFixture(t, map[string]string{"/a.txt": ""})
	m := f.model

	f.press(t, runeKey("n"))
	m.input.field.SetValue("a.txt")
	f.press(t, enterKey)

	assert.False(t, m.input.active())
	assert.Contains(t, m.banner, "already exists")

	f.press(t, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Empty(t, m.banner)
}

func TestRenameAndDelete(t *testing.T) {
	f := newFixture(t, map[string]string{"/old.txt": "x"})
	m := f.model

	f.press(t, enterKey)
	f.press(t, runeKey("b"))
	require.True(t, m.state.Bookmarks.Has("/old.txt"))

	f.press(t, runeKey("R"))
	assert.Equal(t, "old.txt", m.input.value())
	m.input.field.SetValue("new.txt")
	f.press(t, enterKey)

	assert.False(t, f.store.Exists("/old.txt"))
	assert.True(t, f.store.Exists("/new.txt"))
	assert.Empty(t, m.state.Tabs.List())
	assert.False(t, m.state.Bookmarks.Has("/old.txt"))

	f.press(t, runeKey("D"))
	m.input.field.SetValue("n")
	f.press(t, enterKey)
	assert.True(t, f.store.Exists("/new.txt"))

	f.press(t, runeKey("D"))
	m.input.field.SetValue("y")
	f.press(t, enterKey)
	assert.False(t, f.store.Exists("/new.txt"))
	assert.Empty(t, explorerPaths(m))
}

func TestGitPaneNotARepository(t *testing.T) {
	f := newFixture(t, map[string]string{"/a.txt": "a"})
	m := f.model

	f.deliver(t, m.refreshStatus())
	assert.True(t, m.gitPane.loaded)
	assert.False(t, m.gitPane.isRepo)

	m.focus(paneGit)
	f.press(t, runeKey("c"))
	assert.False(t, m.input.active())

	f.deliver(t, f.press(t, runeKey("i")))
	assert.True(t, m.gitPane.isRepo)
	assert.Equal(t, "main", m.gitPane.branch)
	require.Len(t, m.gitPane.status.TreeFlat, 1)
}

func TestGitStageCommitFlow(t *testing.T) {
	f := newFixture(t, map[string]string{"/a.txt": "hello\n"})
	m := f.model
	f.initRepo(t)
	m.focus(paneGit)

	sel := m.gitPane.status.Selected()
	require.NotNil(t, sel)
	assert.Equal(t, models.StatusUntracked, sel.File.Status)
	assert.False(t, sel.File.Staged)

	f.deliver(t, f.press(t, runeKey("s")))
	sel = m.gitPane.status.Selected()
	require.NotNil(t, sel)
	assert.Equal(t, models.StatusAdded, sel.File.Status)
	assert.True(t, sel.File.Staged)

	f.press(t, runeKey("c"))
	require.Equal(t, inputCommit, m.input.mode)

	f.deliver(t, f.press(t, enterKey))
	assert.True(t, m.input.active(), "blank message keeps the prompt open")
	assert.Contains(t, m.input.err, "must not be empty")

	m.input.field.SetValue("initial import")
	f.deliver(t, f.press(t, enterKey))
	assert.False(t, m.input.active())
	require.NotNil(t, m.gitPane.lastCommit)
	assert.Equal(t, "initial import", m.gitPane.lastCommit.Message)
	assert.Empty(t, m.gitPane.status.TreeFlat)
}

func TestGitUnstageAndDiff(t *testing.T) {
	f := newFixture(t, map[string]string{"/a.txt": "one\n"})
	m := f.model
	f.initRepo(t)
	m.focus(paneGit)

	f.deliver(t, f.press(t, enterKey))
	assert.Equal(t, "a.txt", m.gitPane.diffPath)
	assert.Contains(t, m.gitPane.diffText, "+one")

	f.deliver(t, f.press(t, runeKey("s")))
	f.deliver(t, m.commit("first"))

	require.NoError(t, f.store.WriteFile("/a.txt", []byte("two\n")))
	f.deliver(t, m.refreshStatus())
	sel := m.gitPane.status.Selected()
	require.NotNil(t, sel)
	assert.Equal(t, models.StatusModified, sel.File.Status)

	f.deliver(t, f.press(t, enterKey))
	assert.Contains(t, m.gitPane.diffText, "-one")
	assert.Contains(t, m.gitPane.diffText, "+two")

	f.deliver(t, f.press(t, runeKey("s")))
	require.True(t, m.gitPane.status.Selected().File.Staged)
	f.deliver(t, f.press(t, runeKey("u")))
	assert.False(t, m.gitPane.status.Selected().File.Staged)
}

func TestSearchDeliversLatestOnly(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/a.txt": "needle here\n",
		"/b.txt": "nothing\n",
	})
	m := f.model

	m.search.query = "needle"
	stale := m.startSearch()
	latest := m.startSearch()

	m.Update(stale())
	assert.Empty(t, m.search.results)
	assert.True(t, m.search.running)

	m.Update(latest())
	assert.False(t, m.search.running)
	require.Len(t, m.search.results, 1)
	assert.Equal(t, "/a.txt", m.search.results[0].Path)
	require.Len(t, m.search.rows, 2)
	assert.Nil(t, m.search.rows[0].line)
	assert.Equal(t, 1, m.search.rows[1].line.Line)
	assert.Equal(t, "1 result in 1 file", m.searchSummary())
}

func TestSearchUsesTreeSettingsAtDispatch(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/a.txt":          "needle\n",
		"/.git/notes.txt": "needle\n",
	})
	m := f.model
	m.search.query = "needle"
	cmd := m.startSearch()

	m.tree.SetShowHidden(true)
	require.NoError(t, m.tree.Reload(m.ctx))
	m.Update(cmd())

	require.Len(t, m.search.results, 1)
	assert.Equal(t, "/a.txt", m.search.results[0].Path)
}

func TestSearchDebounceIgnoresOldTicks(t *testing.T) {
	f := newFixture(t, map[string]string{"/a.txt": "x"})
	m := f.model
	m.search.query = "x"
	m.search.seq = 3

	assert.Nil(t, m.handleSearchDebounce(searchDebounceMsg{seq: 2}))
	assert.NotNil(t, m.handleSearchDebounce(searchDebounceMsg{seq: 3}))
}

func TestSearchInvalidRegexShowsInline(t *testing.T) {
	f := newFixture(t, map[string]string{"/a.txt": "x"})
	m := f.model
	m.search.options.Regex = true
	m.search.query = "("

	f.deliver(t, m.startSearch())
	assert.NotEmpty(t, m.search.err)
	assert.Empty(t, m.banner)
	assert.Empty(t, m.search.rows)
}

func TestSearchToggleAndOpenResult(t *testing.T) {
	f := newFixture(t, map[string]string{"/dir/a.txt": "Foo\nfoo\n"})
	m := f.model
	m.focus(paneSearch)
	m.search.query = "foo"
	f.deliver(t, m.startSearch())
	require.Len(t, m.search.rows, 3)

	f.deliver(t, f.press(t, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c"), Alt: true}))
	assert.True(t, m.search.options.CaseSensitive)
	require.Len(t, m.search.rows, 2)
	assert.Equal(t, 2, m.search.rows[1].line.Line)

	f.press(t, runeKey("j"))
	f.press(t, enterKey)
	tab, ok := m.state.Tabs.Active()
	require.True(t, ok)
	assert.Equal(t, "/dir/a.txt", tab.Path)
	assert.Equal(t, "/dir/a.txt", m.selectedNode().Path)
}

func TestBlankSearchClearsResults(t *testing.T) {
	f := newFixture(t, map[string]string{"/a.txt": "x"})
	m := f.model
	m.search.query = "x"
	f.deliver(t, m.startSearch())
	require.NotEmpty(t, m.search.rows)

	m.search.query = "  "
	assert.Nil(t, m.startSearch())
	assert.Empty(t, m.search.rows)
}

func TestSamplesSaveAsFile(t *testing.T) {
	f := newFixture(t, nil)
	m := f.model

	f.press(t, runeKey("S"))
	require.Equal(t, paneSamples, m.view.focused)
	require.NotEmpty(t, m.samples.list)

	f.press(t, enterKey)
	assert.True(t, m.samples.showing)

	sample := m.samples.list[0]
	f.press(t, runeKey("n"))
	path := "/" + sample.ID + ".js"
	assert.True(t, f.store.Exists(path))
	data, err := f.store.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sample.Code, string(data))

	f.press(t, runeKey("n"))
	assert.Contains(t, m.banner, "already exists")
}

func TestQuickOpen(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/pkg/server/handler.go": "package server\n",
		"/main.go":               "package main\n",
	})
	m := f.model

	f.press(t, tea.KeyMsg{Type: tea.KeyCtrlP})
	require.Equal(t, inputQuickOpen, m.input.mode)
	assert.Len(t, m.input.quick, 2)

	f.press(t, runeKey("h"))
	f.press(t, runeKey("n"))
	f.press(t, runeKey("d"))
	require.NotEmpty(t, m.input.quick)
	assert.Equal(t, "pkg/server/handler.go", m.input.quick[0].Display)

	f.press(t, enterKey)
	assert.False(t, m.input.active())
	assert.Equal(t, "/pkg/server/handler.go", m.selectedNode().Path)
	tab, ok := m.state.Tabs.Active()
	require.True(t, ok)
	assert.Equal(t, "/pkg/server/handler.go", tab.Path)
}

func TestShowErrorRouting(t *testing.T) {
	f := newFixture(t, nil)
	m := f.model

	m.showError(apperr.Validation(apperr.CodeInvalidName, "bad name"))
	assert.Equal(t, "bad name", m.input.err)
	assert.Empty(t, m.banner)

	m.showError(apperr.FileSystem(apperr.CodeIOFailure, "write failed", errors.New("disk full")))
	assert.Equal(t, "write failed: disk full", m.banner)

	m.showError(errors.New("plain"))
	assert.Equal(t, "plain", m.banner)
}

func TestPaneSwitching(t *testing.T) {
	f := newFixture(t, nil)
	m := f.model

	f.press(t, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, paneGit, m.view.focused)
	f.press(t, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, paneExplorer, m.view.focused)
	f.press(t, runeKey("4"))
	assert.Equal(t, paneSamples, m.view.focused)
	assert.Equal(t, paneSamples, m.view.bottom)
	f.press(t, runeKey("3"))
	assert.Equal(t, paneSearch, m.view.bottom)
}

func TestViewRendersPanes(t *testing.T) {
	f := newFixture(t, map[string]string{"/a.txt": "x"})
	m := f.model

	assert.Equal(t, "Loading...", m.View())

	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	view := m.View()
	for _, want := range []string{"CodeCanvas", "Explorer", "Source Control", "Search", "a.txt"} {
		assert.Contains(t, view, want)
	}
	assert.LessOrEqual(t, len(strings.Split(view, "\n")), 40)
}

func TestVisibleWindow(t *testing.T) {
	start, end := visibleWindow(5, 2, 10)
	assert.Equal(t, 0, start)
	assert.Equal(t, 5, end)

	start, end = visibleWindow(100, 50, 10)
	assert.Equal(t, 45, start)
	assert.Equal(t, 55, end)

	start, end = visibleWindow(100, 99, 10)
	assert.Equal(t, 90, start)
	assert.Equal(t, 100, end)
}
