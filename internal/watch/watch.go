// Package watch turns filesystem activity under the storage root into
// coalesced refresh signals.
package watch

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/chmouel/codecanvas/internal/log"
)

// Debounce is the minimum gap between two refreshes.
const Debounce = 600 * time.Millisecond

const gitDir = ".git"

// Service manages the watcher state.
type Service struct {
	Started     bool
	Waiting     bool
	Root        string
	Events      chan struct{}
	Done        chan struct{}
	Paths       map[string]struct{}
	Mu          sync.Mutex
	Watcher     *fsnotify.Watcher
	LastRefresh time.Time
}

var logger = log.Component("watch")

// New returns an idle service.
func New() *Service {
	return &Service{}
}

// Start watches every directory under root and starts the event loop.
// Inside .git only the directory itself is watched, so index and HEAD
// updates still signal.
func (w *Service) Start(root string) (bool, error) {
	if w.Started || root == "" {
		return false, nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return false, err
	}

	w.Started = true
	w.Watcher = watcher
	w.Root = filepath.Clean(root)
	w.Events = make(chan struct{}, 1)
	w.Done = make(chan struct{})
	w.Paths = make(map[string]struct{})
	w.addWatchTree(w.Root)

	go w.run()
	return true, nil
}

// Stop stops the watcher and closes channels.
func (w *Service) Stop() {
	if !w.Started {
		return
	}
	close(w.Done)
	w.Started = false
	if w.Watcher != nil {
		_ = w.Watcher.Close()
	}
}

// NextEvent returns the event channel if waiting is not already active.
func (w *Service) NextEvent() <-chan struct{} {
	if w.Events == nil || w.Waiting {
		return nil
	}
	w.Waiting = true
	return w.Events
}

// ResetWaiting clears the waiting flag after an event is processed.
func (w *Service) ResetWaiting() {
	w.Waiting = false
}

// ShouldRefresh checks debounce timing for watcher events.
func (w *Service) ShouldRefresh(now time.Time) bool {
	if !w.LastRefresh.IsZero() && now.Sub(w.LastRefresh) < Debounce {
		return false
	}
	w.LastRefresh = now
	return true
}

// Signal notifies listeners of watcher activity.
func (w *Service) Signal() {
	select {
	case <-w.Done:
		return
	default:
	}
	select {
	case w.Events <- struct{}{}:
	default:
	}
}

// Relevant reports whether an event on path should trigger a refresh.
// Git internals only count for the index and HEAD.
func Relevant(path string) bool {
	dir, base := filepath.Split(filepath.Clean(path))
	if base == gitDir {
		return true
	}
	if inGitDir(dir) {
		return filepath.Base(filepath.Clean(dir)) == gitDir && (base == "index" || base == "HEAD")
	}
	return true
}

func inGitDir(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == gitDir {
			return true
		}
	}
	return false
}

// MaybeWatchNewDir registers a directory created after Start.
func (w *Service) MaybeWatchNewDir(path string) {
	if inGitDir(filepath.Dir(path)) {
		return
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	w.addWatchTree(path)
}

func (w *Service) run() {
	for {
		select {
		case <-w.Done:
			return
		case event, ok := <-w.Watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				w.MaybeWatchNewDir(event.Name)
			}
			if Relevant(event.Name) {
				w.Signal()
			}
		case err, ok := <-w.Watcher.Errors:
			if !ok {
				return
			}
			logger.Debugf("watcher error: %v", err)
		}
	}
}

func (w *Service) addWatchDir(path string) {
	w.Mu.Lock()
	defer w.Mu.Unlock()

	if _, ok := w.Paths[path]; ok {
		return
	}
	if err := w.Watcher.Add(path); err != nil {
		logger.Debugf("watcher add failed for %s: %v", path, err)
		return
	}
	w.Paths[path] = struct{}{}
}

func (w *Service) addWatchTree(root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		w.addWatchDir(path)
		if d.Name() == gitDir {
			return filepath.SkipDir
		}
		return nil
	})
}

// Watched reports whether path is registered with the watcher.
func (w *Service) Watched(path string) bool {
	w.Mu.Lock()
	defer w.Mu.Unlock()
	_, ok := w.Paths[path]
	return ok
}
