// Package filetree maintains a lazily expanded, ordered view of a storage root.
package filetree

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/chmouel/codecanvas/internal/apperr"
	"github.com/chmouel/codecanvas/internal/language"
	"github.com/chmouel/codecanvas/internal/log"
	"github.com/chmouel/codecanvas/internal/models"
	"github.com/chmouel/codecanvas/internal/storage"
)

// SkipDir may be returned by a WalkFunc to skip a directory's contents.
var SkipDir = errors.New("skip this directory")

// WalkFunc is called for every node visited by Walk.
type WalkFunc func(node *models.FileNode) error

// Opener receives documents produced by OpenFile.
type Opener interface {
	Open(doc models.Document)
}

// VisibleNode is a node annotated with its nesting depth.
type VisibleNode struct {
	Node  *models.FileNode
	Depth int
}

// Model is the in-memory tree over a storage capability.
type Model struct {
	fs         storage.FS
	root       *models.FileNode
	showHidden bool
	hidden     map[string]bool
	opener     Opener
}

// Option configures a Model.
type Option func(*Model)

// WithShowHidden controls whether names in the hidden set are listed.
func WithShowHidden(show bool) Option {
	return func(m *Model) { m.showHidden = show }
}

// WithHidden replaces the default hidden set.
func WithHidden(names ...string) Option {
	return func(m *Model) {
		m.hidden = make(map[string]bool, len(names))
		for _, n := range names {
			m.hidden[n] = true
		}
	}
}

// WithOpener sets the collaborator that receives opened documents.
func WithOpener(o Opener) Option {
	return func(m *Model) { m.opener = o }
}

var logger = log.Component("filetree")

// New builds a model rooted at rootPath. The root is expanded and its
// children are listed immediately.
func New(ctx context.Context, fsys storage.FS, rootPath string, opts ...Option) (*Model, error) {
	m := &Model{
		fs:     fsys,
		hidden: map[string]bool{".git": true},
	}
	for _, opt := range opts {
		opt(m)
	}

	rootPath = storage.Clean(rootPath)
	m.root = &models.FileNode{
		Name: storage.Base(rootPath),
		Path: rootPath,
		Kind: models.KindDirectory,
	}
	if err := m.ToggleExpand(ctx, m.root); err != nil {
		return nil, err
	}
	return m, nil
}

// Root returns the root node.
func (m *Model) Root() *models.FileNode {
	return m.root
}

// FS returns the storage capability backing the tree.
func (m *Model) FS() storage.FS {
	return m.fs
}

// Snapshot returns a detached model sharing the storage capability and the
// current root and hidden settings. Walk, Files and QuickOpen on it are safe
// to run off the UI goroutine while the original keeps changing.
func (m *Model) Snapshot() *Model {
	hidden := make(map[string]bool, len(m.hidden))
	for name, v := range m.hidden {
		hidden[name] = v
	}
	return &Model{
		fs: m.fs,
		root: &models.FileNode{
			Name: m.root.Name,
			Path: m.root.Path,
			Kind: m.root.Kind,
		},
		showHidden: m.showHidden,
		hidden:     hidden,
	}
}

// SetShowHidden changes the hidden filter. It applies to the next listing.
func (m *Model) SetShowHidden(show bool) {
	m.showHidden = show
}

// ShowHidden reports whether hidden names are listed.
func (m *Model) ShowHidden() bool {
	return m.showHidden
}

// ListChildren lists and stats the entries of a directory and returns them
// ordered directories first, then by name. It does not modify the tree.
func (m *Model) ListChildren(ctx context.Context, path string) ([]*models.FileNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path = storage.Clean(path)

	info, err := m.fs.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Kind != models.KindDirectory {
		return nil, apperr.FileSystem(apperr.CodeNotADirectory, "not a directory: "+path, nil)
	}

	entries, err := m.fs.List(path)
	if err != nil {
		return nil, err
	}

	nodes := make([]*models.FileNode, 0, len(entries))
	for _, entry := range entries {
		if !m.showHidden && m.hidden[entry.Name] {
			continue
		}
		childPath := storage.Join(path, entry.Name)
		childInfo, err := m.fs.Stat(childPath)
		if err != nil {
			if apperr.Is(err, apperr.CodeNotFound) {
				// removed between list and stat
				continue
			}
			return nil, err
		}
		nodes = append(nodes, &models.FileNode{
			Name:    entry.Name,
			Path:    childPath,
			Kind:    childInfo.Kind,
			Symlink: entry.Symlink,
		})
	}
	SortNodes(nodes)
	logger.Debugf("listed %s: %d entries", path, len(nodes))
	return nodes, nil
}

// SortNodes orders directories before files, then by byte-wise name.
func SortNodes(nodes []*models.FileNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if a.Kind != b.Kind {
			return a.Kind == models.KindDirectory
		}
		return a.Name < b.Name
	})
}

// ToggleExpand flips a directory's expanded state. Expanding a directory
// that was never listed lists it first; on failure it stays collapsed.
// Collapsing never lists.
func (m *Model) ToggleExpand(ctx context.Context, node *models.FileNode) error {
	if !node.IsDir() {
		return nil
	}
	if node.Expanded {
		node.Expanded = false
		return nil
	}
	if !node.Loaded {
		children, err := m.ListChildren(ctx, node.Path)
		if err != nil {
			return err
		}
		node.Children = children
		node.Loaded = true
	}
	node.Expanded = true
	return nil
}

// Expand expands node when it is collapsed.
func (m *Model) Expand(ctx context.Context, node *models.FileNode) error {
	if !node.IsDir() || node.Expanded {
		return nil
	}
	return m.ToggleExpand(ctx, node)
}

// Collapse collapses node. Collapsing an already collapsed node is a no-op.
func (m *Model) Collapse(node *models.FileNode) {
	if node.IsDir() {
		node.Expanded = false
	}
}

// Flatten returns the visible nodes of the model, root excluded.
func (m *Model) Flatten() []VisibleNode {
	return Flatten(m.root)
}

// Flatten returns the visible nodes below root in pre-order. A node is
// visible when every ancestor is expanded. Root's children have depth 0.
func Flatten(root *models.FileNode) []VisibleNode {
	if root == nil || !root.Expanded {
		return nil
	}
	var result []VisibleNode
	type frame struct {
		node  *models.FileNode
		depth int
	}
	stack := make([]frame, 0, len(root.Children))
	for i := len(root.Children) - 1; i >= 0; i-- {
		stack = append(stack, frame{root.Children[i], 0})
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		result = append(result, VisibleNode{Node: top.node, Depth: top.depth})
		if top.node.IsDir() && top.node.Expanded {
			for i := len(top.node.Children) - 1; i >= 0; i-- {
				stack = append(stack, frame{top.node.Children[i], top.depth + 1})
			}
		}
	}
	return result
}

// Find returns the loaded node at path, or nil.
func (m *Model) Find(path string) *models.FileNode {
	rel, ok := storage.Rel(m.root.Path, path)
	if !ok {
		return nil
	}
	if rel == "." {
		return m.root
	}
	node := m.root
	for _, part := range strings.Split(rel, "/") {
		var next *models.FileNode
		for _, child := range node.Children {
			if child.Name == part {
				next = child
				break
			}
		}
		if next == nil {
			return nil
		}
		node = next
	}
	return node
}

// OpenFile reads a file, classifies its language and hands the document to
// the configured opener.
func (m *Model) OpenFile(ctx context.Context, node *models.FileNode) (models.Document, error) {
	if err := ctx.Err(); err != nil {
		return models.Document{}, err
	}
	if node.IsDir() {
		return models.Document{}, apperr.FileSystem(apperr.CodeIOFailure, "is a directory: "+node.Path, nil)
	}
	data, err := m.fs.ReadFile(node.Path)
	if err != nil {
		return models.Document{}, err
	}
	doc := models.Document{
		Name:     node.Name,
		Path:     node.Path,
		Language: language.ID(node.Name),
		Content:  string(data),
	}
	if m.opener != nil {
		m.opener.Open(doc)
	}
	return doc, nil
}

// ReadFile reads raw bytes through the storage capability.
func (m *Model) ReadFile(path string) ([]byte, error) {
	return m.fs.ReadFile(path)
}

// Stat describes a path through the storage capability.
func (m *Model) Stat(path string) (storage.Info, error) {
	return m.fs.Stat(path)
}
