package git

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/chmouel/codecanvas/internal/apperr"
	"github.com/chmouel/codecanvas/internal/models"
)

// Commit records the index as a new commit on the current branch. A blank
// message fails before the repository is touched. A nil author uses the
// engine's fixed identity.
func (e *Engine) Commit(ctx context.Context, message string, author *models.Signature) (models.CommitRecord, error) {
	if strings.TrimSpace(message) == "" {
		return models.CommitRecord{}, apperr.Validation(apperr.CodeEmptyMessage, "commit message must not be empty")
	}
	if err := ctx.Err(); err != nil {
		return models.CommitRecord{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireRepoLocked(); err != nil {
		return models.CommitRecord{}, err
	}

	sig := e.author
	if author != nil {
		sig = *author
	}
	when := e.now()

	wt, err := e.repo.Worktree()
	if err != nil {
		return models.CommitRecord{}, vcsError(err, "open worktree")
	}
	hash, err := wt.Commit(message, &gogit.CommitOptions{
		Author: &object.Signature{Name: sig.Name, Email: sig.Email, When: when},
	})
	if err != nil {
		if errors.Is(err, gogit.ErrEmptyCommit) {
			return models.CommitRecord{}, apperr.Wrap(err, apperr.KindVCS, apperr.CodeNothingToCommit, "nothing to commit")
		}
		return models.CommitRecord{}, vcsError(err, "commit")
	}

	record := models.CommitRecord{
		ID:      hash.String(),
		Message: message,
		Author:  sig,
		When:    when,
	}
	e.commits = append(e.commits, record)
	e.debugf("committed %s on %s", record.ShortID(), e.repoPath)
	return record, nil
}

// Diff returns the HEAD blob and the working content of path. It fails with
// NOT_FOUND when the repository has no commits or HEAD has no blob for path;
// callers treat that as a file with no prior version. A path missing from
// disk has empty new content.
func (e *Engine) Diff(ctx context.Context, repoPath, p string) (models.FileDiff, error) {
	if err := ctx.Err(); err != nil {
		return models.FileDiff{}, err
	}
	e.mu.RLock()
	repo, wt := e.repo, e.worktree
	selected := e.repoPath == repoPath && repo != nil
	e.mu.RUnlock()
	if !selected {
		var err error
		repo, wt, err = e.open(repoPath)
		if err != nil {
			return models.FileDiff{}, err
		}
	}

	rel := normalizePath(p)
	head, err := headFiles(repo)
	if err != nil {
		return models.FileDiff{}, vcsError(err, "read HEAD tree")
	}
	entry, ok := head[rel]
	if !ok {
		return models.FileDiff{}, apperr.New(apperr.KindVCS, apperr.CodeNotFound, "no committed version of "+rel)
	}

	blob, err := repo.BlobObject(entry.Hash)
	if err != nil {
		return models.FileDiff{}, vcsError(err, "read blob "+rel)
	}
	r, err := blob.Reader()
	if err != nil {
		return models.FileDiff{}, vcsError(err, "read blob "+rel)
	}
	defer r.Close()
	old, err := io.ReadAll(r)
	if err != nil {
		return models.FileDiff{}, vcsError(err, "read blob "+rel)
	}

	var current []byte
	if fi, err := wt.Lstat(rel); err == nil {
		if current, _, err = worktreeBlob(wt, rel, fi); err != nil {
			return models.FileDiff{}, vcsError(err, "read "+rel)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return models.FileDiff{}, vcsError(err, "stat "+rel)
	}
	return models.FileDiff{Path: rel, Old: string(old), New: string(current)}, nil
}
