package filetree

import (
	"context"
	"errors"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/chmouel/codecanvas/internal/apperr"
	"github.com/chmouel/codecanvas/internal/models"
	"github.com/chmouel/codecanvas/internal/storage"
)

// Walk visits every node below root depth-first, re-listing each directory
// regardless of its expansion state. The tree itself is not modified.
// Symlinked directories are visited but not entered. Only a failure to list
// root itself is returned; unreadable subdirectories are skipped.
func (m *Model) Walk(ctx context.Context, root string, fn WalkFunc) error {
	if root == "" {
		root = m.root.Path
	}
	root = storage.Clean(root)
	children, err := m.ListChildren(ctx, root)
	if err != nil {
		return err
	}
	return m.walkChildren(ctx, children, fn)
}

func (m *Model) walkDir(ctx context.Context, dir string, fn WalkFunc) error {
	children, err := m.ListChildren(ctx, dir)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		logger.WithField("code", apperr.CodeOf(err)).Warnf("skipping %s: %v", dir, err)
		return nil
	}
	return m.walkChildren(ctx, children, fn)
}

func (m *Model) walkChildren(ctx context.Context, children []*models.FileNode, fn WalkFunc) error {
	for _, child := range children {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := fn(child)
		if errors.Is(err, SkipDir) {
			continue
		}
		if err != nil {
			return err
		}
		if child.IsDir() && !child.Symlink {
			if err := m.walkDir(ctx, child.Path, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// Files returns every file below root, in walk order.
func (m *Model) Files(ctx context.Context, root string) ([]*models.FileNode, error) {
	var files []*models.FileNode
	err := m.Walk(ctx, root, func(node *models.FileNode) error {
		if !node.IsDir() {
			files = append(files, node)
		}
		return nil
	})
	return files, err
}

// QuickMatch is a quick-open result.
type QuickMatch struct {
	Node           *models.FileNode
	Display        string // path relative to the tree root
	Score          int
	MatchedIndexes []int
}

type nodeSource []*models.FileNode

func (ns nodeSource) String(i int) string { return strings.TrimPrefix(ns[i].Path, "/") }
func (ns nodeSource) Len() int            { return len(ns) }

// QuickOpen fuzzy matches query against every file path in the tree. An
// empty query returns the first files in walk order.
func (m *Model) QuickOpen(ctx context.Context, query string, limit int) ([]QuickMatch, error) {
	files, err := m.Files(ctx, "")
	if err != nil {
		return nil, err
	}
	src := nodeSource(files)

	var results []QuickMatch
	if strings.TrimSpace(query) == "" {
		for i := range src {
			results = append(results, QuickMatch{Node: src[i], Display: src.String(i)})
		}
	} else {
		for _, match := range fuzzy.FindFrom(query, src) {
			results = append(results, QuickMatch{
				Node:           src[match.Index],
				Display:        match.Str,
				Score:          match.Score,
				MatchedIndexes: match.MatchedIndexes,
			})
		}
	}
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
