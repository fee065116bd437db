// Package git exposes a simplified staging workflow over an embedded git
// implementation: status classification, stage, unstage, commit and diff.
//
// Stage, Unstage and Commit never refresh status. Callers mutate first and
// then call RefreshStatus to observe the result.
package git

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/storage/filesystem"

	"github.com/chmouel/codecanvas/internal/apperr"
	"github.com/chmouel/codecanvas/internal/log"
	"github.com/chmouel/codecanvas/internal/models"
)

const (
	// DefaultBranch is reported when HEAD does not name a branch.
	DefaultBranch = "main"
	// DefaultAuthorName is the fixed commit identity.
	DefaultAuthorName = "Code Canvas User"
	// DefaultAuthorEmail is the fixed commit identity's email.
	DefaultAuthorEmail = "user@codecanvas.app"

	gitDirName = ".git"
)

// RepoFS hands out worktree filesystems for repository paths.
type RepoFS interface {
	Sub(path string) (billy.Filesystem, error)
}

// Engine computes status and applies index operations for one selected
// repository at a time. It is safe for concurrent use.
type Engine struct {
	store         RepoFS
	author        models.Signature
	defaultBranch string
	now           func() time.Time

	mu       sync.RWMutex
	repoPath string
	repo     *gogit.Repository
	worktree billy.Filesystem
	files    []models.GitFileStatus
	matrix   []models.StatusRow
	commits  []models.CommitRecord
}

// Option configures an Engine.
type Option func(*Engine)

// WithAuthor overrides the fixed commit identity.
func WithAuthor(name, email string) Option {
	return func(e *Engine) {
		if strings.TrimSpace(name) != "" {
			e.author.Name = name
		}
		if strings.TrimSpace(email) != "" {
			e.author.Email = email
		}
	}
}

// WithDefaultBranch sets the branch new repositories start on and the name
// reported when HEAD is detached or unreadable.
func WithDefaultBranch(name string) Option {
	return func(e *Engine) {
		if strings.TrimSpace(name) != "" {
			e.defaultBranch = strings.TrimSpace(name)
		}
	}
}

// WithClock sets the time source used for commit signatures.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

var logger = log.Component("git")

// NewEngine constructs an Engine over store.
func NewEngine(store RepoFS, opts ...Option) *Engine {
	e := &Engine{
		store:         store,
		author:        models.Signature{Name: DefaultAuthorName, Email: DefaultAuthorEmail},
		defaultBranch: DefaultBranch,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Author returns the configured commit identity.
func (e *Engine) Author() models.Signature {
	return e.author
}

// RepoPath returns the selected repository path, or "".
func (e *Engine) RepoPath() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.repoPath
}

func (e *Engine) debugf(format string, args ...any) {
	logger.Debugf(format, args...)
}

func vcsError(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	logger.WithField("code", apperr.CodeVCSFailure).Warnf("%s: %v", message, err)
	return apperr.VCS(err, message)
}

func noRepository(repoPath string) error {
	return apperr.New(apperr.KindVCS, apperr.CodeNoRepository, "not a repository: "+repoPath)
}

// storageFor builds go-git filesystem storage inside the worktree's .git.
func storageFor(wt billy.Filesystem) (*filesystem.Storage, error) {
	dot, err := wt.Chroot(gitDirName)
	if err != nil {
		return nil, err
	}
	return filesystem.NewStorage(dot, cache.NewObjectLRUDefault()), nil
}

func (e *Engine) open(repoPath string) (*gogit.Repository, billy.Filesystem, error) {
	wt, err := e.store.Sub(repoPath)
	if err != nil {
		return nil, nil, err
	}
	st, err := storageFor(wt)
	if err != nil {
		return nil, nil, vcsError(err, "open repository storage")
	}
	repo, err := gogit.Open(st, wt)
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, nil, noRepository(repoPath)
		}
		return nil, nil, vcsError(err, "open repository")
	}
	return repo, wt, nil
}

// selectLocked opens repoPath unless it is already selected.
func (e *Engine) selectLocked(repoPath string) error {
	if e.repo != nil && e.repoPath == repoPath {
		return nil
	}
	repo, wt, err := e.open(repoPath)
	if err != nil {
		return err
	}
	if e.repoPath != repoPath {
		e.files = nil
		e.matrix = nil
		e.commits = nil
	}
	e.repo, e.worktree, e.repoPath = repo, wt, repoPath
	e.debugf("selected repository %s", repoPath)
	return nil
}

// Select makes repoPath the repository later Stage, Unstage and Commit
// calls act on.
func (e *Engine) Select(ctx context.Context, repoPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selectLocked(repoPath)
}

// IsRepository reports whether repoPath holds a repository.
func (e *Engine) IsRepository(repoPath string) bool {
	_, _, err := e.open(repoPath)
	return err == nil
}

// Init creates a repository at repoPath whose HEAD points at the default
// branch, then selects it. Initialising an existing repository only selects it.
func (e *Engine) Init(ctx context.Context, repoPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	wt, err := e.store.Sub(repoPath)
	if err != nil {
		return err
	}
	st, err := storageFor(wt)
	if err != nil {
		return vcsError(err, "open repository storage")
	}
	_, err = gogit.InitWithOptions(st, wt, gogit.InitOptions{
		DefaultBranch: plumbing.NewBranchReferenceName(e.defaultBranch),
	})
	if err != nil && !errors.Is(err, gogit.ErrRepositoryAlreadyExists) {
		return vcsError(err, "init repository")
	}
	e.debugf("initialised repository %s on %s", repoPath, e.defaultBranch)
	e.repo = nil
	return e.selectLocked(repoPath)
}

// CurrentBranch returns the branch HEAD points at. Detached, missing or
// unreadable HEADs report the default branch.
func (e *Engine) CurrentBranch(ctx context.Context, repoPath string) string {
	if ctx.Err() != nil {
		return e.defaultBranch
	}
	repo, _, err := e.open(repoPath)
	if err != nil {
		return e.defaultBranch
	}
	ref, err := repo.Storer.Reference(plumbing.HEAD)
	if err != nil || ref.Type() != plumbing.SymbolicReference {
		return e.defaultBranch
	}
	if !ref.Target().IsBranch() {
		return e.defaultBranch
	}
	return ref.Target().Short()
}

// Files returns a copy of the last computed status list.
func (e *Engine) Files() []models.GitFileStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]models.GitFileStatus, len(e.files))
	copy(out, e.files)
	return out
}

// Matrix returns a copy of the last computed raw status rows.
func (e *Engine) Matrix() []models.StatusRow {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]models.StatusRow, len(e.matrix))
	copy(out, e.matrix)
	return out
}

// Commits returns the commits recorded since the repository was selected.
func (e *Engine) Commits() []models.CommitRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]models.CommitRecord, len(e.commits))
	copy(out, e.commits)
	return out
}

// normalizePath turns a storage-style path into a repository-relative one.
func normalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(p, "./")
	return strings.Trim(p, "/")
}
