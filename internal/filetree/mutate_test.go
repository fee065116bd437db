package filetree

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chmouel/codecanvas/internal/apperr"
	"github.com/chmouel/codecanvas/internal/models"
)

func TestCreateEntryRoundTrip(t *testing.T) {
	ctx := context.Background()
	fsys := newFixture(t)
	m, err := New(ctx, fsys, "/")
	require.NoError(t, err)

	node, err := m.CreateEntry(ctx, "/", "x.txt", models.KindFile)
	require.NoError(t, err)
	assert.Equal(t, "/x.txt", node.Path)
	assert.Equal(t, 2, fsys.lists["/"], "parent must be re-listed")

	nodes, err := m.ListChildren(ctx, "/")
	require.NoError(t, err)
	var found *models.FileNode
	for _, n := range nodes {
		if n.Name == "x.txt" {
			found = n
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, models.KindFile, found.Kind)
	assert.Contains(t, names(m.Root().Children), "x.txt")

	dir, err := m.CreateEntry(ctx, "/", "newdir", models.KindDirectory)
	require.NoError(t, err)
	assert.True(t, dir.IsDir())
}

func TestCreateEntryErrors(t *testing.T) {
	ctx := context.Background()
	m, err := New(ctx, newFixture(t), "/")
	require.NoError(t, err)

	_, err = m.CreateEntry(ctx, "/", "A.txt", models.KindFile)
	assert.True(t, apperr.Is(err, apperr.CodeAlreadyExists))

	for _, bad := range []string{"", "  ", "a/b", "..", "."} {
		_, err = m.CreateEntry(ctx, "/", bad, models.KindFile)
		assert.True(t, apperr.IsValidation(err), "name %q", bad)
	}

	for _, kind := range []models.NodeKind{models.KindFile, models.KindDirectory} {
		_, err = m.CreateEntry(ctx, "/missing", "x", kind)
		assert.True(t, apperr.Is(err, apperr.CodeNotFound), "kind %s", kind)
		_, err = m.CreateEntry(ctx, "/A.txt", "x", kind)
		assert.True(t, apperr.Is(err, apperr.CodeNotADirectory), "kind %s", kind)
	}
	assert.False(t, m.FS().Exists("/missing"))
}

func TestCreateEntryInUnloadedDirectory(t *testing.T) {
	ctx := context.Background()
	fsys := newFixture(t)
	m, err := New(ctx, fsys, "/")
	require.NoError(t, err)

	node, err := m.CreateEntry(ctx, "/src", "new.go", models.KindFile)
	require.NoError(t, err)
	assert.Equal(t, "/src/new.go", node.Path)
	assert.Equal(t, 0, fsys.lists["/src"])

	require.NoError(t, m.ToggleExpand(ctx, m.Find("/src")))
	assert.Contains(t, names(m.Find("/src").Children), "new.go")
}

func TestRefreshDiscardsExpandedState(t *testing.T) {
	ctx := context.Background()
	m, err := New(ctx, newFixture(t), "/")
	require.NoError(t, err)

	src := m.Find("/src")
	require.NoError(t, m.ToggleExpand(ctx, src))
	require.NoError(t, m.Refresh(ctx, "/"))

	rebuilt := m.Find("/src")
	assert.NotSame(t, src, rebuilt)
	assert.False(t, rebuilt.Expanded)
	assert.False(t, rebuilt.Loaded)
}

func TestReloadKeepsExpandedPaths(t *testing.T) {
	ctx := context.Background()
	fsys := newFixture(t)
	m, err := New(ctx, fsys, "/")
	require.NoError(t, err)

	require.NoError(t, m.ToggleExpand(ctx, m.Find("/src")))
	require.NoError(t, m.ToggleExpand(ctx, m.Find("/src/pkg")))
	require.NoError(t, fsys.WriteFile("/src/pkg/extra.go", []byte("package pkg")))

	require.NoError(t, m.Reload(ctx))
	pkg := m.Find("/src/pkg")
	require.NotNil(t, pkg)
	assert.True(t, pkg.Expanded)
	assert.Equal(t, []string{"extra.go", "util.go"}, names(pkg.Children))
}

func TestDeleteAndRename(t *testing.T) {
	ctx := context.Background()
	m, err := New(ctx, newFixture(t), "/")
	require.NoError(t, err)

	require.NoError(t, m.Rename(ctx, "/A.txt", "/src/A.txt"))
	assert.Nil(t, m.Find("/A.txt"))
	assert.True(t, m.FS().Exists("/src/A.txt"))

	require.NoError(t, m.Delete(ctx, "/b.txt"))
	assert.Nil(t, m.Find("/b.txt"))

	err = m.Delete(ctx, "/b.txt")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
	err = m.Delete(ctx, "/")
	assert.True(t, apperr.Is(err, apperr.CodePermissionDenied))
	err = m.Rename(ctx, "/src", "/Zdir")
	assert.True(t, apperr.Is(err, apperr.CodeAlreadyExists))
}

func TestSaveFile(t *testing.T) {
	ctx := context.Background()
	m, err := New(ctx, newFixture(t), "/")
	require.NoError(t, err)
	require.NoError(t, m.SaveFile(ctx, "/A.txt", "updated"))
	data, err := m.ReadFile("/A.txt")
	require.NoError(t, err)
	assert.Equal(t, "updated", string(data))
}
