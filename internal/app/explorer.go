package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/chmouel/codecanvas/internal/app/services"
	"github.com/chmouel/codecanvas/internal/models"
	"github.com/chmouel/codecanvas/internal/storage"
)

// rebuildExplorer re-flattens the tree, keeping the cursor on the same path
// when it is still visible.
func (m *Model) rebuildExplorer() {
	selected := ""
	if node := m.selectedNode(); node != nil {
		selected = node.Path
	}
	m.explorer.nodes = m.tree.Flatten()
	m.selectExplorerPath(selected)
	m.clampExplorer()
}

func (m *Model) selectExplorerPath(path string) bool {
	if path == "" {
		return false
	}
	for i, v := range m.explorer.nodes {
		if v.Node.Path == path {
			m.explorer.index = i
			return true
		}
	}
	return false
}

func (m *Model) clampExplorer() {
	if m.explorer.index >= len(m.explorer.nodes) {
		m.explorer.index = len(m.explorer.nodes) - 1
	}
	if m.explorer.index < 0 {
		m.explorer.index = 0
	}
}

func (m *Model) selectedNode() *models.FileNode {
	if m.explorer.index < 0 || m.explorer.index >= len(m.explorer.nodes) {
		return nil
	}
	return m.explorer.nodes[m.explorer.index].Node
}

// revealInExplorer expands the ancestors of path and moves the cursor to it.
func (m *Model) revealInExplorer(path string) {
	root := m.tree.Root().Path
	rel, ok := storage.Rel(root, storage.Dir(path))
	if ok && rel != "." {
		current := root
		for _, part := range strings.Split(rel, "/") {
			current = storage.Join(current, part)
			node := m.tree.Find(current)
			if node == nil {
				break
			}
			if err := m.tree.Expand(m.ctx, node); err != nil {
				m.showError(err)
				break
			}
		}
	}
	m.explorer.nodes = m.tree.Flatten()
	m.selectExplorerPath(path)
	m.clampExplorer()
}

func (m *Model) handleExplorerKey(msg tea.KeyMsg) tea.Cmd {
	node := m.selectedNode()

	switch {
	case key.Matches(msg, m.keys.Up):
		m.explorer.index--
		m.clampExplorer()
	case key.Matches(msg, m.keys.Down):
		m.explorer.index++
		m.clampExplorer()
	case key.Matches(msg, m.keys.PageUp):
		m.explorer.index -= m.pageSize()
		m.clampExplorer()
	case key.Matches(msg, m.keys.PageDown):
		m.explorer.index += m.pageSize()
		m.clampExplorer()
	case key.Matches(msg, m.keys.Enter):
		if node == nil {
			return nil
		}
		if node.IsDir() {
			if err := m.tree.ToggleExpand(m.ctx, node); err != nil {
				m.showError(err)
			}
			m.rebuildExplorer()
			return nil
		}
		return m.openFile(node, 0)
	case key.Matches(msg, m.keys.Back):
		if node == nil {
			return nil
		}
		if node.IsDir() && node.Expanded {
			m.tree.Collapse(node)
			m.rebuildExplorer()
			return nil
		}
		m.selectExplorerPath(storage.Dir(node.Path))
	case key.Matches(msg, m.keys.NewFile):
		target := m.promptTarget()
		return m.input.open(inputNewFile, "New file in "+target, target, "", "name")
	case key.Matches(msg, m.keys.NewDir):
		target := m.promptTarget()
		return m.input.open(inputNewDir, "New folder in "+target, target, "", "name")
	case key.Matches(msg, m.keys.Rename):
		if node == nil {
			return nil
		}
		return m.input.open(inputRename, "Rename "+node.Path, node.Path, node.Name, "new name")
	case key.Matches(msg, m.keys.Delete):
		if node == nil {
			return nil
		}
		return m.input.open(inputDelete, fmt.Sprintf("Delete %s? (y/N)", node.Path), node.Path, "", "")
	case key.Matches(msg, m.keys.Bookmark):
		if node == nil {
			return nil
		}
		if m.state.Bookmarks.Toggle(node.Path) {
			m.info = "Bookmarked " + node.Path
		} else {
			m.info = "Removed bookmark " + node.Path
		}
	case key.Matches(msg, m.keys.Hidden):
		m.tree.SetShowHidden(!m.tree.ShowHidden())
		return m.reloadAll()
	case key.Matches(msg, m.keys.Refresh):
		return m.reloadAll()
	}
	return nil
}

func (m *Model) pageSize() int {
	return max(1, m.computeLayout().leftInnerHeight-2)
}

func (m *Model) createEntry(parent, name string, kind models.NodeKind) tea.Cmd {
	node, err := m.tree.CreateEntry(m.ctx, parent, name, kind)
	if err != nil {
		m.showError(err)
		if m.input.err == "" {
			m.input.close()
		}
		return nil
	}
	m.input.close()
	m.revealInExplorer(node.Path)
	m.info = fmt.Sprintf("Created %s %s", kind, node.Path)
	return m.refreshStatus()
}

func (m *Model) renameEntry(oldPath, name string) tea.Cmd {
	newPath := storage.Join(storage.Dir(oldPath), strings.TrimSpace(name))
	if newPath == oldPath {
		m.input.close()
		return nil
	}
	if err := m.tree.Rename(m.ctx, oldPath, newPath); err != nil {
		m.showError(err)
		if m.input.err == "" {
			m.input.close()
		}
		return nil
	}
	m.input.close()
	m.forgetPath(oldPath)
	m.revealInExplorer(newPath)
	m.info = "Renamed to " + newPath
	return m.refreshStatus()
}

func (m *Model) deleteEntry(path string) tea.Cmd {
	if err := m.tree.Delete(m.ctx, path); err != nil {
		m.showError(err)
		return nil
	}
	m.forgetPath(path)
	m.rebuildExplorer()
	m.info = "Deleted " + path
	return m.refreshStatus()
}

// forgetPath drops tabs, recent entries and bookmarks at or below path.
func (m *Model) forgetPath(path string) {
	below := func(p string) bool {
		_, ok := storage.Rel(path, p)
		return ok
	}
	for _, tab := range m.state.Tabs.List() {
		if below(tab.Path) {
			m.state.Tabs.Close(tab.ID)
		}
	}
	for _, p := range m.state.Recent.List() {
		if below(p) {
			m.state.Recent.Remove(p)
		}
	}
	for _, p := range m.state.Bookmarks.List() {
		if below(p) {
			m.state.Bookmarks.Toggle(p)
		}
	}
}

// openFile loads node into a tab and, when the storage root is on disk and
// an editor is configured, hands the file to the editor.
func (m *Model) openFile(node *models.FileNode, line int) tea.Cmd {
	doc, err := m.tree.OpenFile(m.ctx, node)
	if err != nil {
		m.showError(err)
		return nil
	}
	m.state.Tabs.Open(doc)
	m.state.Recent.Touch(doc.Path)

	if m.store == nil {
		m.info = "Opened " + doc.Path
		return nil
	}
	localPath, ok := m.store.LocalPath(doc.Path)
	editor := services.EditorCommand(m.config)
	if !ok || editor == "" {
		m.info = "Opened " + doc.Path
		return nil
	}
	root, _ := m.store.LocalPath("/")

	env := services.BuildEditorEnv(root, localPath, doc.Path, doc.Language, line)
	cmdStr := services.ExpandWithEnv(editor, env)
	if !strings.Contains(editor, "CODECANVAS_FILE") {
		if line > 0 {
			cmdStr = fmt.Sprintf("%s +%d", cmdStr, line)
		}
		cmdStr = cmdStr + " " + services.ShellQuote(localPath)
	}

	// #nosec G204 -- editor is user-configured and trusted
	c := m.commandRunner(m.ctx, "bash", "-c", cmdStr)
	c.Dir = filepath.Dir(localPath)
	c.Env = append(os.Environ(), services.EnvMapToList(env)...)
	path := doc.Path
	logger.Debugf("launching editor: %s", cmdStr)
	return m.execProcess(c, func(err error) tea.Msg {
		return editorClosedMsg{path: path, err: err}
	})
}

func (m *Model) handleEditorClosed(msg editorClosedMsg) tea.Cmd {
	if msg.err != nil {
		m.banner = fmt.Sprintf("Editor failed for %s: %v", msg.path, msg.err)
	}
	m.state.Tabs.Reload(m.tree.FS())
	return m.reloadAll()
}
