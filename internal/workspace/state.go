package workspace

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/chmouel/codecanvas/internal/log"
	"github.com/chmouel/codecanvas/internal/models"
	"github.com/chmouel/codecanvas/internal/utils"
)

// State file names inside the state directory.
const (
	TabsFilename       = "tabs.json"
	RecentFilename     = "recent.json"
	BookmarksFilename  = "bookmarks.json"
	SnippetsFilename   = "snippets.json"
	WorkspacesFilename = "workspaces.json"
)

// State bundles the containers owned by the composition root.
type State struct {
	Tabs       *Tabs
	Recent     *Recent
	Bookmarks  *Bookmarks
	Snippets   *Snippets
	Workspaces *Workspaces
}

// NewState returns fresh containers.
func NewState(recentLimit int) *State {
	return &State{
		Tabs:       NewTabs(),
		Recent:     NewRecent(recentLimit),
		Bookmarks:  NewBookmarks(),
		Snippets:   NewSnippets(),
		Workspaces: NewWorkspaces(),
	}
}

var logger = log.Component("workspace")

func readJSON(path string, v any) (bool, error) {
	// #nosec G304 -- path is built from the state directory and a constant filename
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, err
	}
	return true, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), utils.DefaultDirPerms); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, utils.DefaultFilePerms)
}

type tabsFile struct {
	Tabs   []models.FileTab `json:"tabs"`
	Active string           `json:"active,omitempty"`
}

type recentFile struct {
	Paths []string `json:"paths"`
}

type snippetsFile struct {
	Snippets []models.Snippet `json:"snippets"`
}

type workspacesFile struct {
	Workspaces []models.Workspace `json:"workspaces"`
	Current    string             `json:"current,omitempty"`
}

// Load restores state from dir. Missing files leave defaults in place; a
// corrupt file is logged and skipped so one bad file does not lose the rest.
func Load(dir string, recentLimit int) *State {
	st := NewState(recentLimit)

	var tabs tabsFile
	if ok, err := readJSON(filepath.Join(dir, TabsFilename), &tabs); err != nil {
		logger.Warnf("load tabs: %v", err)
	} else if ok {
		st.Tabs.tabs = tabs.Tabs
		st.Tabs.active = tabs.Active
	}

	var recent recentFile
	if ok, err := readJSON(filepath.Join(dir, RecentFilename), &recent); err != nil {
		logger.Warnf("load recent files: %v", err)
	} else if ok {
		for i := len(recent.Paths) - 1; i >= 0; i-- {
			st.Recent.Touch(recent.Paths[i])
		}
	}

	var bookmarks recentFile
	if ok, err := readJSON(filepath.Join(dir, BookmarksFilename), &bookmarks); err != nil {
		logger.Warnf("load bookmarks: %v", err)
	} else if ok {
		for _, p := range bookmarks.Paths {
			st.Bookmarks.paths[p] = struct{}{}
		}
	}

	var snippets snippetsFile
	if ok, err := readJSON(filepath.Join(dir, SnippetsFilename), &snippets); err != nil {
		logger.Warnf("load snippets: %v", err)
	} else if ok {
		st.Snippets.items = snippets.Snippets
	}

	var workspaces workspacesFile
	if ok, err := readJSON(filepath.Join(dir, WorkspacesFilename), &workspaces); err != nil {
		logger.Warnf("load workspaces: %v", err)
	} else if ok {
		st.Workspaces.items = workspaces.Workspaces
		st.Workspaces.current = workspaces.Current
	}
	return st
}

// Save writes every container to dir. Tabs persist without content.
func (s *State) Save(dir string) error {
	active, _ := s.Tabs.Active()
	var errs []error
	errs = append(errs,
		writeJSON(filepath.Join(dir, TabsFilename), tabsFile{Tabs: s.Tabs.List(), Active: active.ID}),
		writeJSON(filepath.Join(dir, RecentFilename), recentFile{Paths: s.Recent.List()}),
		writeJSON(filepath.Join(dir, BookmarksFilename), recentFile{Paths: s.Bookmarks.List()}),
		writeJSON(filepath.Join(dir, SnippetsFilename), snippetsFile{Snippets: s.Snippets.List()}),
	)
	current, _ := s.Workspaces.Current()
	errs = append(errs, writeJSON(filepath.Join(dir, WorkspacesFilename), workspacesFile{
		Workspaces: s.Workspaces.List(),
		Current:    current.ID,
	}))
	return errors.Join(errs...)
}
