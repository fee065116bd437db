package workspace

import (
	"sort"
	"sync"
)

// DefaultRecentLimit bounds the recent files list.
const DefaultRecentLimit = 20

// Recent is a most-recently-used list of file paths.
type Recent struct {
	mu    sync.RWMutex
	limit int
	paths []string
}

// NewRecent returns an empty list keeping at most limit paths.
func NewRecent(limit int) *Recent {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return &Recent{limit: limit}
}

// Touch moves path to the front of the list.
func (r *Recent) Touch(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(path)
	r.paths = append([]string{path}, r.paths...)
	if len(r.paths) > r.limit {
		r.paths = r.paths[:r.limit]
	}
}

// Remove drops path from the list.
func (r *Recent) Remove(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(path)
}

func (r *Recent) removeLocked(path string) {
	for i, p := range r.paths {
		if p == path {
			r.paths = append(r.paths[:i], r.paths[i+1:]...)
			return
		}
	}
}

// List returns the paths, most recent first.
func (r *Recent) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.paths...)
}

// Bookmarks is a set of bookmarked paths.
type Bookmarks struct {
	mu    sync.RWMutex
	paths map[string]struct{}
}

// NewBookmarks returns an empty set.
func NewBookmarks() *Bookmarks {
	return &Bookmarks{paths: make(map[string]struct{})}
}

// Toggle adds or removes path and reports whether it is now bookmarked.
func (b *Bookmarks) Toggle(path string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.paths[path]; ok {
		delete(b.paths, path)
		return false
	}
	b.paths[path] = struct{}{}
	return true
}

// Has reports whether path is bookmarked.
func (b *Bookmarks) Has(path string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.paths[path]
	return ok
}

// List returns the bookmarked paths sorted.
func (b *Bookmarks) List() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.paths))
	for p := range b.paths {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
