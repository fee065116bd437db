package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chmouel/codecanvas/internal/models"
)

func sf(path string, status models.FileStatus) StatusFile {
	return StatusFile{GitFileStatus: models.GitFileStatus{Path: path, Status: status}}
}

func flatPaths(nodes []*StatusTreeNode) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Path)
	}
	return out
}

func TestStatusFilesMarksStaged(t *testing.T) {
	files := []models.GitFileStatus{
		{Path: "a.txt", Status: models.StatusModified},
		{Path: "b.txt", Status: models.StatusAdded},
		{Path: "c.txt", Status: models.StatusUntracked},
	}
	rows := []models.StatusRow{
		{Path: "a.txt", Head: 1, Workdir: 2, Stage: 1},
		{Path: "b.txt", Head: 0, Workdir: 2, Stage: 2},
		{Path: "c.txt", Head: 0, Workdir: 2, Stage: 0},
	}
	got := StatusFiles(files, rows)
	require.Len(t, got, 3)
	assert.False(t, got[0].Staged)
	assert.True(t, got[1].Staged)
	assert.False(t, got[2].Staged)
}

func TestBuildStatusTree(t *testing.T) {
	root := BuildStatusTree([]StatusFile{
		sf("src/app/main.go", models.StatusModified),
		sf("README.md", models.StatusAdded),
		sf("src/app/util.go", models.StatusUntracked),
		sf("docs/guide/intro.md", models.StatusDeleted),
	})

	flat := FlattenStatusTree(root, map[string]bool{}, 0)
	assert.Equal(t, []string{
		"docs/guide",
		"docs/guide/intro.md",
		"src/app",
		"src/app/main.go",
		"src/app/util.go",
		"README.md",
	}, flatPaths(flat))
	assert.Equal(t, "docs/guide", flat[0].Name())
	assert.Equal(t, 1, flat[1].Depth)
	assert.Len(t, flat[2].CollectFiles(), 2)
}

func TestToggleCollapseMovesHiddenSelectionToDirectory(t *testing.T) {
	s := NewStatusService()
	s.SetFiles([]StatusFile{
		sf("a/x.txt", models.StatusModified),
		sf("a/y.txt", models.StatusModified),
		sf("b.txt", models.StatusAdded),
	})
	s.Move(2)
	require.Equal(t, "a/y.txt", s.SelectedPath())

	s.ToggleCollapse("a")
	assert.Equal(t, "a", s.SelectedPath())

	s.ToggleCollapse("a")
	assert.Equal(t, "a", s.SelectedPath())
	assert.Len(t, s.TreeFlat, 4)
}

func TestBuildStatusTreeEmpty(t *testing.T) {
	root := BuildStatusTree(nil)
	assert.Empty(t, FlattenStatusTree(root, nil, 0))
}

func TestStatusServiceSelection(t *testing.T) {
	s := NewStatusService()
	s.SetFiles([]StatusFile{
		sf("a/x.txt", models.StatusModified),
		sf("b.txt", models.StatusAdded),
	})
	require.Len(t, s.TreeFlat, 3)

	s.Move(2)
	assert.Equal(t, "b.txt", s.SelectedPath())
	s.Move(5)
	assert.Equal(t, "b.txt", s.SelectedPath())

	s.ToggleCollapse("a")
	assert.Equal(t, []string{"a", "b.txt"}, flatPaths(s.TreeFlat))
	assert.Equal(t, "b.txt", s.SelectedPath())

	s.SetFiles([]StatusFile{sf("b.txt", models.StatusAdded), sf("c.txt", models.StatusAdded)})
	assert.Equal(t, "b.txt", s.SelectedPath())

	s.SetFiles(nil)
	assert.Nil(t, s.Selected())
	assert.Zero(t, s.Index)
}
