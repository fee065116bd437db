package filetree

import (
	"context"
	"strings"

	"github.com/chmouel/codecanvas/internal/apperr"
	"github.com/chmouel/codecanvas/internal/models"
	"github.com/chmouel/codecanvas/internal/storage"
)

// ValidateName checks a single path segment for a new entry.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	switch {
	case trimmed == "":
		return apperr.Validation(apperr.CodeInvalidName, "name must not be empty")
	case strings.ContainsAny(name, "/\\"):
		return apperr.Validation(apperr.CodeInvalidName, "name must not contain a path separator")
	case trimmed == "." || trimmed == "..":
		return apperr.Validation(apperr.CodeInvalidName, "name must not be . or ..")
	}
	return nil
}

// CreateEntry creates an empty file or a directory named name inside
// parentPath, then invalidates the parent listing.
func (m *Model) CreateEntry(ctx context.Context, parentPath, name string, kind models.NodeKind) (*models.FileNode, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	parent, err := m.fs.Stat(parentPath)
	if err != nil {
		return nil, err
	}
	if parent.Kind != models.KindDirectory {
		return nil, apperr.FileSystem(apperr.CodeNotADirectory, "not a directory: "+storage.Clean(parentPath), nil)
	}
	full := storage.Join(parentPath, name)
	if m.fs.Exists(full) {
		return nil, apperr.FileSystem(apperr.CodeAlreadyExists, "already exists: "+full, nil)
	}

	if kind == models.KindDirectory {
		err = m.fs.Mkdir(full, false)
	} else {
		err = m.fs.WriteFile(full, nil)
	}
	if err != nil {
		return nil, err
	}
	logger.Debugf("created %s %s", kind, full)

	if err := m.Refresh(ctx, parentPath); err != nil {
		return nil, err
	}
	if node := m.Find(full); node != nil {
		return node, nil
	}
	return &models.FileNode{Name: name, Path: full, Kind: kind}, nil
}

// Delete removes path and invalidates its parent listing.
func (m *Model) Delete(ctx context.Context, path string) error {
	path = storage.Clean(path)
	if path == m.root.Path {
		return apperr.FileSystem(apperr.CodePermissionDenied, "refusing to delete the tree root", nil)
	}
	if err := m.fs.Delete(path); err != nil {
		return err
	}
	logger.Debugf("deleted %s", path)
	return m.Refresh(ctx, storage.Dir(path))
}

// Rename moves oldPath to newPath and invalidates both parent listings.
func (m *Model) Rename(ctx context.Context, oldPath, newPath string) error {
	oldPath, newPath = storage.Clean(oldPath), storage.Clean(newPath)
	if err := ValidateName(storage.Base(newPath)); err != nil {
		return err
	}
	if err := m.fs.Rename(oldPath, newPath); err != nil {
		return err
	}
	logger.Debugf("renamed %s -> %s", oldPath, newPath)
	if err := m.Refresh(ctx, storage.Dir(oldPath)); err != nil {
		return err
	}
	if storage.Dir(newPath) != storage.Dir(oldPath) {
		return m.Refresh(ctx, storage.Dir(newPath))
	}
	return nil
}

// SaveFile writes content to path.
func (m *Model) SaveFile(ctx context.Context, path, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.fs.WriteFile(path, []byte(content))
}

// Refresh rebuilds the children of a loaded directory wholesale. Rebuilt
// nodes do not keep the previous nodes' expanded state. Directories that
// were never listed, or are not in the tree, are left alone.
func (m *Model) Refresh(ctx context.Context, path string) error {
	node := m.Find(path)
	if node == nil || !node.IsDir() || !node.Loaded {
		return nil
	}
	children, err := m.ListChildren(ctx, node.Path)
	if err != nil {
		return err
	}
	node.Children = children
	return nil
}

// Reload rebuilds the whole tree and re-expands, by path, the directories
// that were expanded before. Directories that vanished are dropped.
func (m *Model) Reload(ctx context.Context) error {
	var expanded []string
	for _, v := range m.Flatten() {
		if v.Node.IsDir() && v.Node.Expanded {
			expanded = append(expanded, v.Node.Path)
		}
	}

	root := &models.FileNode{Name: m.root.Name, Path: m.root.Path, Kind: models.KindDirectory}
	children, err := m.ListChildren(ctx, root.Path)
	if err != nil {
		return err
	}
	root.Children = children
	root.Loaded = true
	root.Expanded = true
	m.root = root

	// expanded is in pre-order so parents are restored before children
	for _, p := range expanded {
		node := m.Find(p)
		if node == nil {
			continue
		}
		if err := m.Expand(ctx, node); err != nil {
			logger.WithField("path", p).Debugf("reload: could not re-expand: %v", err)
		}
	}
	return nil
}
