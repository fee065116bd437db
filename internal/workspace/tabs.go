// Package workspace holds the session state containers: open tabs, recent
// files, bookmarks, snippets and named workspaces. Each container is the
// only writer of its slice of state and is safe for concurrent use.
package workspace

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/chmouel/codecanvas/internal/apperr"
	"github.com/chmouel/codecanvas/internal/models"
	"github.com/chmouel/codecanvas/internal/storage"
)

// Tabs is the set of open editor tabs.
type Tabs struct {
	mu     sync.RWMutex
	tabs   []models.FileTab
	active string
}

// NewTabs returns an empty tab set.
func NewTabs() *Tabs {
	return &Tabs{}
}

func (t *Tabs) indexLocked(id string) int {
	for i := range t.tabs {
		if t.tabs[i].ID == id {
			return i
		}
	}
	return -1
}

func (t *Tabs) indexByPathLocked(path string) int {
	for i := range t.tabs {
		if t.tabs[i].Path == path {
			return i
		}
	}
	return -1
}

// Open activates the tab for doc.Path, creating it when needed. An
// existing clean tab takes the document's content; a dirty one keeps its
// unsaved edits.
func (t *Tabs) Open(doc models.Document) models.FileTab {
	t.mu.Lock()
	defer t.mu.Unlock()

	if i := t.indexByPathLocked(doc.Path); i >= 0 {
		if !t.tabs[i].Dirty {
			t.tabs[i].Content = doc.Content
			t.tabs[i].Language = doc.Language
		}
		t.active = t.tabs[i].ID
		return t.tabs[i]
	}
	tab := models.FileTab{
		ID:       uuid.NewString(),
		Name:     doc.Name,
		Path:     doc.Path,
		Language: doc.Language,
		Content:  doc.Content,
	}
	t.tabs = append(t.tabs, tab)
	t.active = tab.ID
	return tab
}

// Close removes a tab. Closing the active tab activates the first one left.
func (t *Tabs) Close(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.indexLocked(id)
	if i < 0 {
		return
	}
	t.tabs = append(t.tabs[:i], t.tabs[i+1:]...)
	if t.active == id {
		t.active = ""
		if len(t.tabs) > 0 {
			t.active = t.tabs[0].ID
		}
	}
}

// ClosePath closes the tab showing path, if any.
func (t *Tabs) ClosePath(path string) {
	t.mu.RLock()
	i := t.indexByPathLocked(path)
	var id string
	if i >= 0 {
		id = t.tabs[i].ID
	}
	t.mu.RUnlock()
	if id != "" {
		t.Close(id)
	}
}

// Activate makes id the active tab. Unknown ids are ignored.
func (t *Tabs) Activate(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.indexLocked(id) < 0 {
		return false
	}
	t.active = id
	return true
}

// Update replaces a tab's content and marks it dirty.
func (t *Tabs) Update(id, content string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.indexLocked(id)
	if i < 0 {
		return false
	}
	t.tabs[i].Content = content
	t.tabs[i].Dirty = true
	return true
}

// MarkDirty sets a tab's dirty flag.
func (t *Tabs) MarkDirty(id string, dirty bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.indexLocked(id)
	if i < 0 {
		return false
	}
	t.tabs[i].Dirty = dirty
	return true
}

// Active returns the active tab.
func (t *Tabs) Active() (models.FileTab, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if i := t.indexLocked(t.active); i >= 0 {
		return t.tabs[i], true
	}
	return models.FileTab{}, false
}

// Get returns a tab by id.
func (t *Tabs) Get(id string) (models.FileTab, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if i := t.indexLocked(id); i >= 0 {
		return t.tabs[i], true
	}
	return models.FileTab{}, false
}

// List returns the tabs in open order.
func (t *Tabs) List() []models.FileTab {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]models.FileTab, len(t.tabs))
	copy(out, t.tabs)
	return out
}

// Save writes a tab's content through fs and clears its dirty flag.
func (t *Tabs) Save(ctx context.Context, fs storage.FS, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tab, ok := t.Get(id)
	if !ok {
		return apperr.New(apperr.KindValidation, apperr.CodeNotFound, "no such tab: "+id)
	}
	if err := fs.WriteFile(tab.Path, []byte(tab.Content)); err != nil {
		return err
	}
	t.MarkDirty(id, false)
	return nil
}

// Reload re-reads the content of every tab, dropping tabs whose file is
// gone. Used after restoring persisted tabs, which carry no content.
func (t *Tabs) Reload(fs storage.FS) {
	t.mu.Lock()
	defer t.mu.Unlock()

	kept := t.tabs[:0]
	for _, tab := range t.tabs {
		data, err := fs.ReadFile(tab.Path)
		if err != nil {
			continue
		}
		tab.Content = string(data)
		tab.Dirty = false
		kept = append(kept, tab)
	}
	t.tabs = kept
	if t.indexLocked(t.active) < 0 {
		t.active = ""
		if len(t.tabs) > 0 {
			t.active = t.tabs[0].ID
		}
	}
}
