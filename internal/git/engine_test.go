package git

import (
	"context"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chmouel/codecanvas/internal/apperr"
	"github.com/chmouel/codecanvas/internal/models"
	"github.com/chmouel/codecanvas/internal/storage"
)

var fixedTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newRepo(t *testing.T, opts ...Option) (*storage.Store, *Engine) {
	t.Helper()
	s := storage.NewMemory()
	require.NoError(t, s.Mkdir("/repo", false))
	opts = append([]Option{WithClock(func() time.Time { return fixedTime })}, opts...)
	e := NewEngine(s, opts...)
	require.NoError(t, e.Init(context.Background(), "/repo"))
	return s, e
}

func write(t *testing.T, s *storage.Store, path, content string) {
	t.Helper()
	require.NoError(t, s.WriteFile(path, []byte(content)))
}

func refresh(t *testing.T, e *Engine) []models.GitFileStatus {
	t.Helper()
	files, err := e.RefreshStatus(context.Background(), "/repo")
	require.NoError(t, err)
	return files
}

func rowFor(t *testing.T, e *Engine, path string) models.StatusRow {
	t.Helper()
	for _, row := range e.Matrix() {
		if row.Path == path {
			return row
		}
	}
	t.Fatalf("no matrix row for %s", path)
	return models.StatusRow{}
}

func commitAll(t *testing.T, e *Engine, msg string) models.CommitRecord {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, e.Stage(ctx, "."))
	rec, err := e.Commit(ctx, msg, nil)
	require.NoError(t, err)
	return rec
}

func TestUntrackedThenAdded(t *testing.T) {
	s, e := newRepo(t)
	ctx := context.Background()
	write(t, s, "/repo/new.txt", "hello")

	files := refresh(t, e)
	assert.Equal(t, []models.GitFileStatus{{Path: "new.txt", Status: models.StatusUntracked}}, files)
	assert.Equal(t, models.StatusRow{Path: "new.txt", Head: 0, Workdir: 2, Stage: 0}, rowFor(t, e, "new.txt"))

	require.NoError(t, e.Stage(ctx, "new.txt"))
	// staging alone does not refresh
	assert.Equal(t, models.StatusUntracked, e.Files()[0].Status)

	files = refresh(t, e)
	assert.Equal(t, []models.GitFileStatus{{Path: "new.txt", Status: models.StatusAdded}}, files)
	assert.Equal(t, models.StatusRow{Path: "new.txt", Head: 0, Workdir: 2, Stage: 2}, rowFor(t, e, "new.txt"))
}

func TestModifyStageCommitScenario(t *testing.T) {
	s, e := newRepo(t)
	ctx := context.Background()
	write(t, s, "/repo/a.txt", "1")
	commitAll(t, e, "initial")

	assert.Empty(t, refresh(t, e))

	write(t, s, "/repo/a.txt", "2")
	files := refresh(t, e)
	assert.Equal(t, []models.GitFileStatus{{Path: "a.txt", Status: models.StatusModified}}, files)
	assert.Equal(t, models.StatusRow{Path: "a.txt", Head: 1, Workdir: 2, Stage: 1}, rowFor(t, e, "a.txt"))

	require.NoError(t, e.Stage(ctx, "a.txt"))
	refresh(t, e)
	row := rowFor(t, e, "a.txt")
	assert.Equal(t, models.StageWorkdir, row.Stage)
	assert.True(t, row.Staged())

	rec, err := e.Commit(ctx, "update", nil)
	require.NoError(t, err)
	assert.Len(t, rec.ID, 40)
	assert.Equal(t, "update", rec.Message)
	assert.Equal(t, models.Signature{Name: DefaultAuthorName, Email: DefaultAuthorEmail}, rec.Author)
	assert.Equal(t, fixedTime, rec.When)

	// commit does not refresh on its own
	assert.Len(t, e.Files(), 1)
	assert.Empty(t, refresh(t, e))
	assert.Len(t, e.Commits(), 2)
}

func TestCommitValidation(t *testing.T) {
	ctx := context.Background()
	e := NewEngine(storage.NewMemory())

	_, err := e.Commit(ctx, "   ", nil)
	assert.True(t, apperr.Is(err, apperr.CodeEmptyMessage))
	assert.True(t, apperr.IsValidation(err))

	_, err = e.Commit(ctx, "msg", nil)
	assert.True(t, apperr.Is(err, apperr.CodeNoRepository))
	assert.True(t, apperr.Is(e.Stage(ctx, "a"), apperr.CodeNoRepository))
	assert.True(t, apperr.Is(e.Unstage(ctx, "a"), apperr.CodeNoRepository))
}

func TestCommitCustomAuthorAndNothingToCommit(t *testing.T) {
	s, e := newRepo(t, WithAuthor("Ada", "ada@example.com"))
	ctx := context.Background()
	write(t, s, "/repo/a.txt", "1")
	require.NoError(t, e.Stage(ctx, "a.txt"))

	rec, err := e.Commit(ctx, "first", &models.Signature{Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Bob", rec.Author.Name)
	assert.Equal(t, "Ada", e.Author().Name)

	_, err = e.Commit(ctx, "again", nil)
	assert.True(t, apperr.Is(err, apperr.CodeNothingToCommit))
}

func TestDeletedAndStagedDeletion(t *testing.T) {
	s, e := newRepo(t)
	ctx := context.Background()
	write(t, s, "/repo/gone.txt", "bye")
	commitAll(t, e, "initial")

	require.NoError(t, s.Delete("/repo/gone.txt"))
	files := refresh(t, e)
	assert.Equal(t, []models.GitFileStatus{{Path: "gone.txt", Status: models.StatusDeleted}}, files)
	assert.Equal(t, models.StatusRow{Path: "gone.txt", Head: 1, Workdir: 0, Stage: 1}, rowFor(t, e, "gone.txt"))

	require.NoError(t, e.Stage(ctx, "gone.txt"))
	files = refresh(t, e)
	assert.Equal(t, models.StatusDeleted, files[0].Status)
	assert.Equal(t, models.StatusRow{Path: "gone.txt", Head: 1, Workdir: 0, Stage: 0}, rowFor(t, e, "gone.txt"))

	err := e.Stage(ctx, "never-existed.txt")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestExactRenameDetection(t *testing.T) {
	s, e := newRepo(t)
	ctx := context.Background()
	write(t, s, "/repo/old.txt", "same content")
	write(t, s, "/repo/keep.txt", "keep")
	commitAll(t, e, "initial")

	require.NoError(t, s.Rename("/repo/old.txt", "/repo/new.txt"))

	// unstaged: a deletion and an untracked file
	files := refresh(t, e)
	assert.Equal(t, []models.GitFileStatus{
		{Path: "new.txt", Status: models.StatusUntracked},
		{Path: "old.txt", Status: models.StatusDeleted},
	}, files)

	require.NoError(t, e.Stage(ctx, "old.txt"))
	require.NoError(t, e.Stage(ctx, "new.txt"))
	files = refresh(t, e)
	assert.Equal(t, []models.GitFileStatus{
		{Path: "new.txt", Status: models.StatusRenamed, OldPath: "old.txt"},
	}, files)
}

func TestRenameWithEditIsNotARename(t *testing.T) {
	s, e := newRepo(t)
	ctx := context.Background()
	write(t, s, "/repo/old.txt", "v1")
	commitAll(t, e, "initial")

	require.NoError(t, s.Delete("/repo/old.txt"))
	write(t, s, "/repo/new.txt", "v2")
	require.NoError(t, e.Stage(ctx, "."))

	files := refresh(t, e)
	assert.Equal(t, []models.GitFileStatus{
		{Path: "new.txt", Status: models.StatusAdded},
		{Path: "old.txt", Status: models.StatusDeleted},
	}, files)
}

func TestUnstage(t *testing.T) {
	s, e := newRepo(t)
	ctx := context.Background()
	write(t, s, "/repo/a.txt", "1")
	commitAll(t, e, "initial")

	write(t, s, "/repo/a.txt", "2")
	write(t, s, "/repo/b.txt", "new")
	require.NoError(t, e.Stage(ctx, "a.txt"))
	require.NoError(t, e.Stage(ctx, "b.txt"))
	refresh(t, e)
	assert.Equal(t, models.StageWorkdir, rowFor(t, e, "a.txt").Stage)
	assert.Equal(t, models.StageWorkdir, rowFor(t, e, "b.txt").Stage)

	require.NoError(t, e.Unstage(ctx, "a.txt"))
	require.NoError(t, e.Unstage(ctx, "/b.txt"))
	files := refresh(t, e)
	assert.Equal(t, []models.GitFileStatus{
		{Path: "a.txt", Status: models.StatusModified},
		{Path: "b.txt", Status: models.StatusUntracked},
	}, files)
	assert.Equal(t, models.StageHead, rowFor(t, e, "a.txt").Stage)

	err := e.Unstage(ctx, "nope.txt")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestUnstageRestoresStagedDeletion(t *testing.T) {
	s, e := newRepo(t)
	ctx := context.Background()
	write(t, s, "/repo/a.txt", "1")
	commitAll(t, e, "initial")

	require.NoError(t, s.Delete("/repo/a.txt"))
	require.NoError(t, e.Stage(ctx, "a.txt"))
	require.NoError(t, e.Unstage(ctx, "a.txt"))
	refresh(t, e)
	assert.Equal(t, models.StatusRow{Path: "a.txt", Head: 1, Workdir: 0, Stage: 1}, rowFor(t, e, "a.txt"))
}

func TestStageDirectory(t *testing.T) {
	s, e := newRepo(t)
	ctx := context.Background()
	write(t, s, "/repo/src/a.go", "package a")
	write(t, s, "/repo/src/b.go", "package b")
	write(t, s, "/repo/top.txt", "top")

	require.NoError(t, e.Stage(ctx, "src"))
	files := refresh(t, e)
	assert.Equal(t, []models.GitFileStatus{
		{Path: "src/a.go", Status: models.StatusAdded},
		{Path: "src/b.go", Status: models.StatusAdded},
		{Path: "top.txt", Status: models.StatusUntracked},
	}, files)
}

func TestGitignoreHonoured(t *testing.T) {
	s, e := newRepo(t)
	write(t, s, "/repo/.gitignore", "*.log\nbuild/\n")
	write(t, s, "/repo/debug.log", "noise")
	write(t, s, "/repo/build/out.bin", "bin")
	write(t, s, "/repo/main.go", "package main")

	files := refresh(t, e)
	assert.Equal(t, []models.GitFileStatus{
		{Path: ".gitignore", Status: models.StatusUntracked},
		{Path: "main.go", Status: models.StatusUntracked},
	}, files)
}

func TestDiff(t *testing.T) {
	s, e := newRepo(t)
	ctx := context.Background()
	write(t, s, "/repo/a.txt", "1")

	// no commits yet
	_, err := e.Diff(ctx, "/repo", "a.txt")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))

	commitAll(t, e, "initial")
	write(t, s, "/repo/a.txt", "2")
	write(t, s, "/repo/fresh.txt", "new")

	d, err := e.Diff(ctx, "/repo", "a.txt")
	require.NoError(t, err)
	assert.Equal(t, models.FileDiff{Path: "a.txt", Old: "1", New: "2"}, d)

	_, err = e.Diff(ctx, "/repo", "fresh.txt")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
	assert.Equal(t, apperr.KindVCS, apperr.KindOf(err))

	require.NoError(t, s.Delete("/repo/a.txt"))
	d, err = e.Diff(ctx, "/repo", "/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "1", d.Old)
	assert.Equal(t, "", d.New)
}

func TestStatusOnDiskRepository(t *testing.T) {
	ctx := context.Background()
	s, err := storage.NewOS(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.Mkdir("/repo", false))
	e := NewEngine(s, WithClock(func() time.Time { return fixedTime }))
	require.NoError(t, e.Init(ctx, "/repo"))

	write(t, s, "/repo/a.txt", "1")
	require.NoError(t, e.Stage(ctx, "a.txt"))
	files := refresh(t, e)
	assert.Equal(t, []models.GitFileStatus{{Path: "a.txt", Status: models.StatusAdded}}, files)
	assert.Equal(t, models.StatusRow{Path: "a.txt", Head: 0, Workdir: 2, Stage: 2}, rowFor(t, e, "a.txt"))

	_, err = e.Commit(ctx, "initial", nil)
	require.NoError(t, err)
	assert.Empty(t, refresh(t, e))
	assert.Equal(t, models.StatusRow{Path: "a.txt", Head: 1, Workdir: 1, Stage: 1}, rowFor(t, e, "a.txt"))
}

func TestSymlinksAreRecordedByTarget(t *testing.T) {
	ctx := context.Background()
	bfs := memfs.New()
	s := storage.New(bfs)
	require.NoError(t, s.Mkdir("/repo/src", true))
	write(t, s, "/repo/src/main.go", "package main")
	require.NoError(t, bfs.Symlink("src", "/repo/link"))
	require.NoError(t, bfs.Symlink("src/main.go", "/repo/main-link"))
	e := NewEngine(s, WithClock(func() time.Time { return fixedTime }))
	require.NoError(t, e.Init(ctx, "/repo"))

	files := refresh(t, e)
	assert.Equal(t, []models.GitFileStatus{
		{Path: "link", Status: models.StatusUntracked},
		{Path: "main-link", Status: models.StatusUntracked},
		{Path: "src/main.go", Status: models.StatusUntracked},
	}, files)

	commitAll(t, e, "initial")
	assert.Empty(t, refresh(t, e))

	d, err := e.Diff(ctx, "/repo", "link")
	require.NoError(t, err)
	assert.Equal(t, models.FileDiff{Path: "link", Old: "src", New: "src"}, d)
	d, err = e.Diff(ctx, "/repo", "main-link")
	require.NoError(t, err)
	assert.Equal(t, "src/main.go", d.Old)
}

func TestCurrentBranch(t *testing.T) {
	ctx := context.Background()
	_, e := newRepo(t)
	assert.Equal(t, "main", e.CurrentBranch(ctx, "/repo"))
	assert.Equal(t, "main", e.CurrentBranch(ctx, "/not-a-repo"))

	_, trunk := newRepo(t, WithDefaultBranch("trunk"))
	assert.Equal(t, "trunk", trunk.CurrentBranch(ctx, "/repo"))
}

func TestNotARepository(t *testing.T) {
	s := storage.NewMemory()
	require.NoError(t, s.Mkdir("/plain", false))
	e := NewEngine(s)

	_, err := e.RefreshStatus(context.Background(), "/plain")
	assert.True(t, apperr.Is(err, apperr.CodeNoRepository))
	assert.False(t, e.IsRepository("/plain"))

	_, err = e.RefreshStatus(context.Background(), "/missing")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestInitIsIdempotent(t *testing.T) {
	s, e := newRepo(t)
	write(t, s, "/repo/a.txt", "1")
	commitAll(t, e, "initial")

	require.NoError(t, e.Init(context.Background(), "/repo"))
	assert.Empty(t, refresh(t, e))
	assert.True(t, e.IsRepository("/repo"))
	assert.Equal(t, "/repo", e.RepoPath())
}

func TestClassifyRow(t *testing.T) {
	tests := []struct {
		row    models.StatusRow
		status models.FileStatus
		ok     bool
	}{
		{models.StatusRow{Head: 1, Workdir: 1, Stage: 1}, "", false},
		{models.StatusRow{Head: 0, Workdir: 2, Stage: 0}, models.StatusUntracked, true},
		{models.StatusRow{Head: 0, Workdir: 2, Stage: 2}, models.StatusAdded, true},
		{models.StatusRow{Head: 0, Workdir: 2, Stage: 3}, models.StatusAdded, true},
		{models.StatusRow{Head: 0, Workdir: 0, Stage: 3}, models.StatusAdded, true},
		{models.StatusRow{Head: 1, Workdir: 0, Stage: 1}, models.StatusDeleted, true},
		{models.StatusRow{Head: 1, Workdir: 0, Stage: 0}, models.StatusDeleted, true},
		{models.StatusRow{Head: 1, Workdir: 2, Stage: 1}, models.StatusModified, true},
		{models.StatusRow{Head: 1, Workdir: 2, Stage: 2}, models.StatusModified, true},
		{models.StatusRow{Head: 1, Workdir: 1, Stage: 3}, models.StatusModified, true},
		{models.StatusRow{Head: 1, Workdir: 1, Stage: 0}, models.StatusModified, true},
	}
	for _, tt := range tests {
		status, ok := classifyRow(tt.row)
		assert.Equal(t, tt.ok, ok, "%+v", tt.row)
		assert.Equal(t, tt.status, status, "%+v", tt.row)
	}
}
