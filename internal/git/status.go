package git

import (
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/chmouel/codecanvas/internal/models"
)

// headEntry is a blob recorded in the HEAD tree.
type headEntry struct {
	Hash plumbing.Hash
	Mode filemode.FileMode
	Size int64
}

// snapshot holds the three views a status matrix compares.
type snapshot struct {
	head    map[string]headEntry
	index   map[string]plumbing.Hash
	workdir map[string]plumbing.Hash
}

// headFiles returns the blobs of HEAD's tree, or an empty map when the
// repository has no commits.
func headFiles(repo *gogit.Repository) (map[string]headEntry, error) {
	files := make(map[string]headEntry)
	ref, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return files, nil
		}
		return nil, err
	}
	commit, err := repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, err
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, err
	}
	err = tree.Files().ForEach(func(f *object.File) error {
		files[f.Name] = headEntry{Hash: f.Hash, Mode: f.Mode, Size: f.Size}
		return nil
	})
	return files, err
}

func indexFiles(idx *index.Index) map[string]plumbing.Hash {
	files := make(map[string]plumbing.Hash, len(idx.Entries))
	for _, entry := range idx.Entries {
		// conflict stages are not part of the status
		if entry.Stage != 0 {
			continue
		}
		files[entry.Name] = entry.Hash
	}
	return files
}

// workdirFiles hashes every file of the worktree. Untracked files matched
// by .gitignore are left out; the .git directory is never entered.
func workdirFiles(ctx context.Context, wt billy.Filesystem, tracked func(string) bool) (map[string]plumbing.Hash, error) {
	patterns, err := gitignore.ReadPatterns(wt, nil)
	if err != nil {
		return nil, err
	}
	matcher := gitignore.NewMatcher(patterns)
	files := make(map[string]plumbing.Hash)

	var walk func(dir string) error
	walk = func(dir string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		readPath := dir
		if readPath == "" {
			readPath = "."
		}
		infos, err := wt.ReadDir(readPath)
		if err != nil {
			return err
		}
		for _, fi := range infos {
			name := fi.Name()
			rel := name
			if dir != "" {
				rel = path.Join(dir, name)
			}
			if fi.IsDir() {
				if name == gitDirName {
					continue
				}
				if matcher.Match(strings.Split(rel, "/"), true) && !hasTrackedBelow(rel, tracked) {
					continue
				}
				if err := walk(rel); err != nil {
					return err
				}
				continue
			}
			if !tracked(rel) && matcher.Match(strings.Split(rel, "/"), false) {
				continue
			}
			data, _, err := worktreeBlob(wt, rel, fi)
			if err != nil {
				return err
			}
			files[rel] = plumbing.ComputeHash(plumbing.BlobObject, data)
		}
		return nil
	}
	return files, walk("")
}

// worktreeBlob returns the blob content and mode git records for rel.
// Symlinks are stored as their target text and never followed.
func worktreeBlob(wt billy.Filesystem, rel string, fi os.FileInfo) ([]byte, filemode.FileMode, error) {
	if fi.Mode()&os.ModeSymlink != 0 {
		target, err := wt.Readlink(rel)
		if err != nil {
			return nil, filemode.Empty, err
		}
		return []byte(filepath.ToSlash(target)), filemode.Symlink, nil
	}
	data, err := util.ReadFile(wt, rel)
	if err != nil {
		return nil, filemode.Empty, err
	}
	mode, err := filemode.NewFromOSFileMode(fi.Mode())
	if err != nil || mode == filemode.Dir || mode == filemode.Symlink {
		mode = filemode.Regular
	}
	return data, mode, nil
}

// hasTrackedBelow is a cheap probe so ignored directories holding tracked
// files are still walked.
func hasTrackedBelow(dir string, tracked func(string) bool) bool {
	return tracked(dir + "/")
}

func (e *Engine) snapshotLocked(ctx context.Context) (*snapshot, error) {
	head, err := headFiles(e.repo)
	if err != nil {
		return nil, vcsError(err, "read HEAD tree")
	}
	idx, err := e.repo.Storer.Index()
	if err != nil {
		return nil, vcsError(err, "read index")
	}
	stage := indexFiles(idx)

	tracked := func(p string) bool {
		if strings.HasSuffix(p, "/") {
			for name := range head {
				if strings.HasPrefix(name, p) {
					return true
				}
			}
			for name := range stage {
				if strings.HasPrefix(name, p) {
					return true
				}
			}
			return false
		}
		_, inHead := head[p]
		_, inIndex := stage[p]
		return inHead || inIndex
	}
	workdir, err := workdirFiles(ctx, e.worktree, tracked)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, vcsError(err, "read working tree")
	}
	return &snapshot{head: head, index: stage, workdir: workdir}, nil
}

// rows builds the status matrix for every path in HEAD, index or worktree,
// sorted by path.
func (s *snapshot) rows() []models.StatusRow {
	seen := make(map[string]struct{}, len(s.head)+len(s.workdir))
	for p := range s.head {
		seen[p] = struct{}{}
	}
	for p := range s.index {
		seen[p] = struct{}{}
	}
	for p := range s.workdir {
		seen[p] = struct{}{}
	}
	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	rows := make([]models.StatusRow, 0, len(paths))
	for _, p := range paths {
		headEntry, inHead := s.head[p]
		workHash, inWork := s.workdir[p]
		stageHash, inStage := s.index[p]

		row := models.StatusRow{Path: p}
		if inHead {
			row.Head = models.HeadPresent
		}
		switch {
		case !inWork:
			row.Workdir = models.WorkdirAbsent
		case inHead && workHash == headEntry.Hash:
			row.Workdir = models.WorkdirUnchanged
		default:
			row.Workdir = models.WorkdirChanged
		}
		switch {
		case !inStage:
			row.Stage = models.StageAbsent
		case inHead && stageHash == headEntry.Hash:
			row.Stage = models.StageHead
		case inWork && stageHash == workHash:
			row.Stage = models.StageWorkdir
		default:
			row.Stage = models.StageDifferent
		}
		rows = append(rows, row)
	}
	return rows
}

// classifyRow maps one matrix row to a status. Clean rows report ok=false.
func classifyRow(row models.StatusRow) (models.FileStatus, bool) {
	switch {
	case row.Clean():
		return "", false
	case row.Head == models.HeadAbsent && row.Workdir != models.WorkdirAbsent && row.Stage == models.StageAbsent:
		return models.StatusUntracked, true
	case row.Head == models.HeadAbsent && row.Stage != models.StageAbsent:
		return models.StatusAdded, true
	case row.Head == models.HeadPresent && row.Workdir == models.WorkdirAbsent:
		return models.StatusDeleted, true
	case row.Head == models.HeadPresent && row.Workdir == models.WorkdirChanged:
		return models.StatusModified, true
	default:
		return models.StatusModified, true
	}
}

// classify maps matrix rows to file statuses and collapses exact renames:
// a path whose deletion is staged and whose HEAD blob is staged, unchanged,
// under a new path is reported once as renamed.
func classify(rows []models.StatusRow, s *snapshot) []models.GitFileStatus {
	result := make([]models.GitFileStatus, 0, len(rows))
	addedByHash := make(map[plumbing.Hash][]int)
	var deleted []int
	for _, row := range rows {
		status, ok := classifyRow(row)
		if !ok {
			continue
		}
		switch {
		case status == models.StatusAdded:
			if h, ok := s.index[row.Path]; ok {
				addedByHash[h] = append(addedByHash[h], len(result))
			}
		case status == models.StatusDeleted && row.Stage == models.StageAbsent:
			deleted = append(deleted, len(result))
		}
		result = append(result, models.GitFileStatus{Path: row.Path, Status: status})
	}

	drop := make(map[int]bool)
	for _, i := range deleted {
		hash := s.head[result[i].Path].Hash
		candidates := addedByHash[hash]
		if len(candidates) == 0 {
			continue
		}
		target := candidates[0]
		addedByHash[hash] = candidates[1:]
		result[target].Status = models.StatusRenamed
		result[target].OldPath = result[i].Path
		drop[i] = true
	}
	if len(drop) == 0 {
		return result
	}
	kept := make([]models.GitFileStatus, 0, len(result)-len(drop))
	for i, f := range result {
		if !drop[i] {
			kept = append(kept, f)
		}
	}
	return kept
}

// StatusMatrix computes the raw status rows of repoPath without changing
// the engine's status list.
func (e *Engine) StatusMatrix(ctx context.Context, repoPath string) ([]models.StatusRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.selectLocked(repoPath); err != nil {
		return nil, err
	}
	snap, err := e.snapshotLocked(ctx)
	if err != nil {
		return nil, err
	}
	return snap.rows(), nil
}

// RefreshStatus selects repoPath, recomputes its status matrix and replaces
// the status list wholesale.
func (e *Engine) RefreshStatus(ctx context.Context, repoPath string) ([]models.GitFileStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.selectLocked(repoPath); err != nil {
		return nil, err
	}
	snap, err := e.snapshotLocked(ctx)
	if err != nil {
		return nil, err
	}
	rows := snap.rows()
	files := classify(rows, snap)

	e.matrix = rows
	e.files = files
	e.debugf("status %s: %d rows, %d changed", repoPath, len(rows), len(files))

	out := make([]models.GitFileStatus, len(files))
	copy(out, files)
	return out, nil
}
