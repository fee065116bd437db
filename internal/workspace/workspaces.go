package workspace

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chmouel/codecanvas/internal/models"
	"github.com/chmouel/codecanvas/internal/utils"
)

// Workspaces is the list of named workspaces and the current selection.
type Workspaces struct {
	mu      sync.RWMutex
	items   []models.Workspace
	current string
	now     func() time.Time
}

// NewWorkspaces returns an empty list.
func NewWorkspaces() *Workspaces {
	return &Workspaces{now: time.Now}
}

// Add creates a workspace and makes it current. A blank name gets a
// generated one.
func (w *Workspaces) Add(name, currentPath string) string {
	if strings.TrimSpace(name) == "" {
		name = utils.RandomName()
	}
	ws := models.Workspace{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(name),
		CurrentPath: currentPath,
		CreatedAt:   w.now(),
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.items = append(w.items, ws)
	w.current = ws.ID
	return ws.ID
}

// Update changes a workspace's name and/or path. Empty values are kept.
func (w *Workspaces) Update(id, name, currentPath string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.items {
		if w.items[i].ID != id {
			continue
		}
		if strings.TrimSpace(name) != "" {
			w.items[i].Name = strings.TrimSpace(name)
		}
		if currentPath != "" {
			w.items[i].CurrentPath = currentPath
		}
		return true
	}
	return false
}

// Delete removes a workspace, clearing the selection when it was current.
func (w *Workspaces) Delete(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.items {
		if w.items[i].ID == id {
			w.items = append(w.items[:i], w.items[i+1:]...)
			break
		}
	}
	if w.current == id {
		w.current = ""
	}
}

// SetCurrent selects a workspace; "" clears the selection.
func (w *Workspaces) SetCurrent(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if id == "" {
		w.current = ""
		return true
	}
	for _, ws := range w.items {
		if ws.ID == id {
			w.current = id
			return true
		}
	}
	return false
}

// Current returns the selected workspace.
func (w *Workspaces) Current() (models.Workspace, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, ws := range w.items {
		if ws.ID == w.current {
			return ws, true
		}
	}
	return models.Workspace{}, false
}

// List returns the workspaces in creation order.
func (w *Workspaces) List() []models.Workspace {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]models.Workspace(nil), w.items...)
}
