package git

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/chmouel/codecanvas/internal/apperr"
	"github.com/chmouel/codecanvas/internal/models"
)

func (e *Engine) requireRepoLocked() error {
	if e.repo == nil {
		return apperr.New(apperr.KindVCS, apperr.CodeNoRepository, "no repository selected")
	}
	return nil
}

func writeBlob(s storer.EncodedObjectStorer, data []byte) (plumbing.Hash, error) {
	obj := s.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	obj.SetSize(int64(len(data)))
	w, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, err
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return plumbing.ZeroHash, err
	}
	if err := w.Close(); err != nil {
		return plumbing.ZeroHash, err
	}
	return s.SetEncodedObject(obj)
}

// isUnder reports whether name is prefix itself or lives below it.
func isUnder(name, prefix string) bool {
	return prefix == "" || name == prefix || strings.HasPrefix(name, prefix+"/")
}

func hasEntriesBelow(idx *index.Index, dir string) bool {
	for _, entry := range idx.Entries {
		if strings.HasPrefix(entry.Name, dir+"/") {
			return true
		}
	}
	return false
}

// Stage records the working content of path in the index. A path missing
// from disk is removed from the index. Directories stage every changed
// file below them; "" or "." stages everything.
func (e *Engine) Stage(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireRepoLocked(); err != nil {
		return err
	}

	rel := normalizePath(p)
	if rel == "." {
		rel = ""
	}
	idx, err := e.repo.Storer.Index()
	if err != nil {
		return vcsError(err, "read index")
	}

	fi, statErr := e.worktree.Lstat(rel)
	isDir := rel == "" || (statErr == nil && fi.IsDir()) || (statErr != nil && hasEntriesBelow(idx, rel))
	if isDir {
		snap, err := e.snapshotLocked(ctx)
		if err != nil {
			return err
		}
		staged := 0
		for _, row := range snap.rows() {
			if !isUnder(row.Path, rel) || row.Clean() {
				continue
			}
			if row.Workdir == models.WorkdirAbsent && row.Stage == models.StageAbsent {
				continue
			}
			if err := e.stageFile(idx, row.Path); err != nil {
				return err
			}
			staged++
		}
		e.debugf("staged %d files under %q", staged, rel)
		return vcsError(e.repo.Storer.SetIndex(idx), "write index")
	}

	if err := e.stageFile(idx, rel); err != nil {
		return err
	}
	e.debugf("staged %s", rel)
	return vcsError(e.repo.Storer.SetIndex(idx), "write index")
}

func (e *Engine) stageFile(idx *index.Index, rel string) error {
	fi, err := e.worktree.Lstat(rel)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return vcsError(err, "stat "+rel)
		}
		if _, err := idx.Remove(rel); err != nil {
			if errors.Is(err, index.ErrEntryNotFound) {
				return apperr.New(apperr.KindVCS, apperr.CodeNotFound, "path not found: "+rel)
			}
			return vcsError(err, "remove index entry "+rel)
		}
		return nil
	}

	data, mode, err := worktreeBlob(e.worktree, rel, fi)
	if err != nil {
		return vcsError(err, "read "+rel)
	}
	hash, err := writeBlob(e.repo.Storer, data)
	if err != nil {
		return vcsError(err, "write blob "+rel)
	}

	entry, err := idx.Entry(rel)
	if err != nil {
		entry = idx.Add(rel)
	}
	entry.Hash = hash
	entry.Mode = mode
	entry.Size = uint32(len(data)) //nolint:gosec
	entry.ModifiedAt = fi.ModTime()
	return nil
}

// Unstage restores the index entry of path to its HEAD blob, or removes the
// entry when HEAD has no blob for it.
func (e *Engine) Unstage(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireRepoLocked(); err != nil {
		return err
	}

	rel := normalizePath(p)
	if rel == "." {
		rel = ""
	}
	head, err := headFiles(e.repo)
	if err != nil {
		return vcsError(err, "read HEAD tree")
	}
	idx, err := e.repo.Storer.Index()
	if err != nil {
		return vcsError(err, "read index")
	}

	targets := make(map[string]struct{})
	for name := range head {
		if isUnder(name, rel) {
			targets[name] = struct{}{}
		}
	}
	for _, entry := range idx.Entries {
		if isUnder(entry.Name, rel) {
			targets[entry.Name] = struct{}{}
		}
	}
	if len(targets) == 0 {
		return apperr.New(apperr.KindVCS, apperr.CodeNotFound, "path not found: "+p)
	}

	for name := range targets {
		blob, inHead := head[name]
		if !inHead {
			if _, err := idx.Remove(name); err != nil && !errors.Is(err, index.ErrEntryNotFound) {
				return vcsError(err, "remove index entry "+name)
			}
			continue
		}
		entry, err := idx.Entry(name)
		if err != nil {
			entry = idx.Add(name)
		}
		entry.Hash = blob.Hash
		entry.Mode = blob.Mode
		entry.Size = uint32(blob.Size) //nolint:gosec
	}
	e.debugf("unstaged %d paths under %q", len(targets), rel)
	return vcsError(e.repo.Storer.SetIndex(idx), "write index")
}
