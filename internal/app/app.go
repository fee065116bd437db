// Package app implements the codecanvas terminal UI.
package app

import (
	"context"
	"os/exec"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/chmouel/codecanvas/internal/app/services"
	"github.com/chmouel/codecanvas/internal/config"
	"github.com/chmouel/codecanvas/internal/filetree"
	"github.com/chmouel/codecanvas/internal/git"
	"github.com/chmouel/codecanvas/internal/log"
	"github.com/chmouel/codecanvas/internal/models"
	"github.com/chmouel/codecanvas/internal/samples"
	"github.com/chmouel/codecanvas/internal/search"
	"github.com/chmouel/codecanvas/internal/storage"
	"github.com/chmouel/codecanvas/internal/theme"
	"github.com/chmouel/codecanvas/internal/watch"
	"github.com/chmouel/codecanvas/internal/workspace"
)

type pane int

const (
	paneExplorer pane = iota
	paneGit
	paneSearch
	paneSamples
	paneCount
)

func (p pane) title() string {
	switch p {
	case paneGit:
		return "Source Control"
	case paneSearch:
		return "Search"
	case paneSamples:
		return "Code Samples"
	default:
		return "Explorer"
	}
}

const (
	minLeftPaneWidth  = 28
	minRightPaneWidth = 40
)

// Deps are the collaborators the UI drives. Tree, Git and State are
// required; Store and Watcher are optional.
type Deps struct {
	Store    *storage.Store
	Tree     *filetree.Model
	Git      *git.Engine
	State    *workspace.State
	Watcher  *watch.Service
	RepoPath string
}

type viewState struct {
	focused      pane
	bottom       pane // which of search/samples owns the lower right pane
	windowWidth  int
	windowHeight int
}

type explorerState struct {
	nodes []filetree.VisibleNode
	index int
}

type gitState struct {
	isRepo     bool
	loaded     bool
	branch     string
	status     *services.StatusService
	diff       viewport.Model
	diffPath   string
	diffText   string // uncoloured unified diff
	lastCommit *models.CommitRecord
}

type searchState struct {
	options  search.Options
	searcher *search.Searcher
	seq      int
	query    string
	running  bool
	results  []models.SearchMatch
	rows     []searchRow
	index    int
	err      string
}

type samplesState struct {
	list    []models.CodeSample
	index   int
	showing bool
	code    viewport.Model
}

// Model is the root bubbletea model.
type Model struct {
	config *config.AppConfig
	theme  *theme.Theme
	keys   keyMap

	ctx    context.Context
	cancel context.CancelFunc

	store    *storage.Store
	tree     *filetree.Model
	git      *git.Engine
	state    *workspace.State
	watcher  *watch.Service
	repoPath string

	view     viewState
	explorer explorerState
	gitPane  gitState
	search   searchState
	samples  samplesState
	input    inputState

	banner string
	info   string

	commandRunner func(ctx context.Context, name string, args ...string) *exec.Cmd
	execProcess   func(*exec.Cmd, tea.ExecCallback) tea.Cmd
	now           func() time.Time

	quitting bool
}

var logger = log.Component("app")

// NewModel creates the UI model.
func NewModel(cfg *config.AppConfig, deps Deps) *Model {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	ctx, cancel := context.WithCancel(context.Background())

	repoPath := deps.RepoPath
	if repoPath == "" {
		repoPath = "/"
	}

	m := &Model{
		config:   cfg,
		theme:    theme.GetTheme(cfg.Theme),
		keys:     defaultKeyMap(),
		ctx:      ctx,
		cancel:   cancel,
		store:    deps.Store,
		tree:     deps.Tree,
		git:      deps.Git,
		state:    deps.State,
		watcher:  deps.Watcher,
		repoPath: repoPath,
		view:     viewState{focused: paneExplorer, bottom: paneSearch},
		gitPane: gitState{
			status: services.NewStatusService(),
			diff:   viewport.New(40, 5),
		},
		search: searchState{
			options:  searchOptions(cfg),
			searcher: &search.Searcher{},
		},
		samples: samplesState{
			list: samples.All(),
			code: viewport.New(40, 5),
		},
		input:         newInputState(),
		commandRunner: exec.CommandContext,
		execProcess:   tea.ExecProcess,
		now:           time.Now,
	}
	if m.state == nil {
		m.state = workspace.NewState(cfg.RecentFilesLimit)
	}
	m.rebuildExplorer()
	return m
}

func searchOptions(cfg *config.AppConfig) search.Options {
	return search.Options{
		CaseSensitive: cfg.SearchCaseSensitive,
		WholeWord:     cfg.SearchWholeWord,
		Regex:         cfg.SearchRegex,
		Include:       search.ParsePatterns(cfg.SearchInclude),
		Exclude:       search.ParsePatterns(cfg.SearchExclude),
		MaxFileSize:   cfg.SearchMaxFileSize,
	}
}

// Init loads the git status and starts background refresh sources.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.refreshStatus()}
	if m.config.AutoRefresh {
		cmds = append(cmds, m.startWatcher())
		if m.config.RefreshIntervalSec > 0 {
			cmds = append(cmds, m.autoRefreshTick())
		}
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setWindowSize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case errMsg:
		m.showError(msg.err)
		return m, nil
	case infoMsg:
		m.info = string(msg)
		return m, nil
	case gitStatusMsg:
		return m, m.handleGitStatus(msg)
	case gitActionMsg:
		return m, m.handleGitAction(msg)
	case diffLoadedMsg:
		m.handleDiffLoaded(msg)
		return m, nil
	case searchDebounceMsg:
		return m, m.handleSearchDebounce(msg)
	case searchResultMsg:
		m.handleSearchResult(msg)
		return m, nil
	case editorClosedMsg:
		return m, m.handleEditorClosed(msg)
	case watchEventMsg:
		return m, m.handleWatchEvent()
	case autoRefreshTickMsg:
		return m, m.handleAutoRefreshTick()
	}
	return m, nil
}

// Close releases the watcher and cancels in-flight work.
func (m *Model) Close() {
	m.cancel()
	if m.watcher != nil {
		m.watcher.Stop()
	}
}
