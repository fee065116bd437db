package services

import (
	"path"
	"sort"
	"strings"

	"github.com/chmouel/codecanvas/internal/models"
)

// StatusFile is one changed file shown in the git pane.
type StatusFile struct {
	models.GitFileStatus
	Staged bool
}

// StatusTreeNode is a directory or file in the changed-files tree.
type StatusTreeNode struct {
	Path        string            // Full path (e.g., "src/app" or "src/app/main.go")
	File        *StatusFile       // nil for directories
	Children    []*StatusTreeNode // nil for files
	Compression int               // Number of compressed path segments (e.g., "a/b" = 1)
	Depth       int
}

// StatusService holds the git pane tree and its selection.
type StatusService struct {
	Tree          *StatusTreeNode
	TreeFlat      []*StatusTreeNode
	CollapsedDirs map[string]bool
	Index         int
}

// NewStatusService creates a new StatusService.
func NewStatusService() *StatusService {
	return &StatusService{
		CollapsedDirs: make(map[string]bool),
	}
}

// StatusFiles joins the classified list with the raw rows to mark which
// files have staged changes.
func StatusFiles(files []models.GitFileStatus, rows []models.StatusRow) []StatusFile {
	staged := make(map[string]bool, len(rows))
	for _, r := range rows {
		staged[r.Path] = r.Staged()
	}
	out := make([]StatusFile, 0, len(files))
	for _, f := range files {
		out = append(out, StatusFile{GitFileStatus: f, Staged: staged[f.Path]})
	}
	return out
}

// BuildStatusTree groups files by directory, directories before files.
func BuildStatusTree(files []StatusFile) *StatusTreeNode {
	root := &StatusTreeNode{Path: ""}
	if len(files) == 0 {
		return root
	}
	byPath := make(map[string]*StatusTreeNode)

	for i := range files {
		file := &files[i]
		parts := strings.Split(file.Path, "/")

		current := root
		for j := range parts {
			soFar := strings.Join(parts[:j+1], "/")
			if existing, ok := byPath[soFar]; ok {
				current = existing
				continue
			}
			node := &StatusTreeNode{Path: soFar}
			if j == len(parts)-1 {
				node.File = file
			}
			current.Children = append(current.Children, node)
			byPath[soFar] = node
			current = node
		}
	}

	SortStatusTree(root)
	CompressStatusTree(root)
	return root
}

// SortStatusTree sorts tree nodes: directories first, then by path.
func SortStatusTree(node *StatusTreeNode) {
	if node == nil {
		return
	}
	sort.Slice(node.Children, func(i, j int) bool {
		iDir, jDir := node.Children[i].IsDir(), node.Children[j].IsDir()
		if iDir != jDir {
			return iDir
		}
		return node.Children[i].Path < node.Children[j].Path
	})
	for _, child := range node.Children {
		SortStatusTree(child)
	}
}

// CompressStatusTree squashes single-child directory chains (a/b/c becomes one node).
func CompressStatusTree(node *StatusTreeNode) {
	if node == nil {
		return
	}
	for _, child := range node.Children {
		CompressStatusTree(child)
	}
	for i, child := range node.Children {
		for child.IsDir() && len(child.Children) == 1 && child.Children[0].IsDir() {
			grandchild := child.Children[0]
			grandchild.Compression = child.Compression + 1
			node.Children[i] = grandchild
			child = grandchild
		}
	}
}

// FlattenStatusTree returns visible nodes respecting collapsed state.
func FlattenStatusTree(node *StatusTreeNode, collapsed map[string]bool, depth int) []*StatusTreeNode {
	if node == nil {
		return nil
	}

	var result []*StatusTreeNode
	childDepth := depth
	if node.Path != "" {
		nodeCopy := *node
		nodeCopy.Depth = depth
		result = append(result, &nodeCopy)
		if collapsed[node.Path] {
			return result
		}
		childDepth = depth + 1
	}
	for _, child := range node.Children {
		result = append(result, FlattenStatusTree(child, collapsed, childDepth)...)
	}
	return result
}

// IsDir returns true if this node is a directory.
func (n *StatusTreeNode) IsDir() bool {
	return n.File == nil
}

// Name returns the display name, keeping compressed segments.
func (n *StatusTreeNode) Name() string {
	if n.Compression == 0 {
		return path.Base(n.Path)
	}
	parts := strings.Split(n.Path, "/")
	keep := n.Compression + 1
	if keep > len(parts) {
		keep = len(parts)
	}
	return strings.Join(parts[len(parts)-keep:], "/")
}

// CollectFiles returns the files at or below n.
func (n *StatusTreeNode) CollectFiles() []*StatusFile {
	var files []*StatusFile
	if n.File != nil {
		files = append(files, n.File)
	}
	for _, child := range n.Children {
		files = append(files, child.CollectFiles()...)
	}
	return files
}

// SetFiles rebuilds the tree, keeping the selection on the same path when
// it still exists.
func (s *StatusService) SetFiles(files []StatusFile) {
	selected := s.SelectedPath()
	s.Tree = BuildStatusTree(files)
	s.RebuildFlat()
	s.RestoreSelection(selected)
	s.ClampIndex()
}

// RebuildFlat rebuilds the flattened tree representation.
func (s *StatusService) RebuildFlat() {
	if s.CollapsedDirs == nil {
		s.CollapsedDirs = make(map[string]bool)
	}
	s.TreeFlat = FlattenStatusTree(s.Tree, s.CollapsedDirs, 0)
}

// ToggleCollapse toggles a directory collapse state and rebuilds the flat
// list. A selection hidden by the collapse moves to the directory.
func (s *StatusService) ToggleCollapse(path string) {
	if path == "" {
		return
	}
	if s.CollapsedDirs == nil {
		s.CollapsedDirs = make(map[string]bool)
	}
	selected := s.SelectedPath()
	s.CollapsedDirs[path] = !s.CollapsedDirs[path]
	s.RebuildFlat()
	s.RestoreSelection(selected)
	if s.SelectedPath() != selected {
		// the selection was hidden by the collapse
		s.RestoreSelection(path)
	}
	s.ClampIndex()
}

// Selected returns the selected node.
func (s *StatusService) Selected() *StatusTreeNode {
	if s.Index >= 0 && s.Index < len(s.TreeFlat) {
		return s.TreeFlat[s.Index]
	}
	return nil
}

// SelectedPath returns the path of the currently selected node.
func (s *StatusService) SelectedPath() string {
	if n := s.Selected(); n != nil {
		return n.Path
	}
	return ""
}

// RestoreSelection sets Index based on the provided path if it exists.
func (s *StatusService) RestoreSelection(path string) {
	if path == "" {
		return
	}
	for i, node := range s.TreeFlat {
		if node.Path == path {
			s.Index = i
			return
		}
	}
}

// Move shifts the selection by delta within bounds.
func (s *StatusService) Move(delta int) {
	s.Index += delta
	s.ClampIndex()
}

// ClampIndex ensures Index is within the valid range for the flat list.
func (s *StatusService) ClampIndex() {
	if len(s.TreeFlat) == 0 || s.Index < 0 {
		s.Index = 0
		return
	}
	if s.Index >= len(s.TreeFlat) {
		s.Index = len(s.TreeFlat) - 1
	}
}
