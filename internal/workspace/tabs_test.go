package workspace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chmouel/codecanvas/internal/apperr"
	"github.com/chmouel/codecanvas/internal/models"
	"github.com/chmouel/codecanvas/internal/storage"
)

func doc(path, content string) models.Document {
	return models.Document{Name: storage.Base(path), Path: path, Language: "plaintext", Content: content}
}

func TestTabsOpenReusesPath(t *testing.T) {
	tabs := NewTabs()
	first := tabs.Open(doc("/a.txt", "one"))
	second := tabs.Open(doc("/b.txt", "two"))
	assert.NotEqual(t, first.ID, second.ID)

	again := tabs.Open(doc("/a.txt", "fresh"))
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, "fresh", again.Content)
	assert.Len(t, tabs.List(), 2)

	active, ok := tabs.Active()
	require.True(t, ok)
	assert.Equal(t, first.ID, active.ID)
}

func TestTabsOpenKeepsDirtyContent(t *testing.T) {
	tabs := NewTabs()
	tab := tabs.Open(doc("/a.txt", "one"))
	require.True(t, tabs.Update(tab.ID, "edited"))

	again := tabs.Open(doc("/a.txt", "disk"))
	assert.Equal(t, "edited", again.Content)
	assert.True(t, again.Dirty)
}

func TestTabsCloseActivatesFirst(t *testing.T) {
	tabs := NewTabs()
	a := tabs.Open(doc("/a.txt", ""))
	tabs.Open(doc("/b.txt", ""))
	c := tabs.Open(doc("/c.txt", ""))

	tabs.Close(c.ID)
	active, ok := tabs.Active()
	require.True(t, ok)
	assert.Equal(t, a.ID, active.ID)

	tabs.ClosePath("/a.txt")
	tabs.ClosePath("/b.txt")
	_, ok = tabs.Active()
	assert.False(t, ok)
	assert.Empty(t, tabs.List())

	tabs.Close("missing")
}

func TestTabsActivateUnknown(t *testing.T) {
	tabs := NewTabs()
	a := tabs.Open(doc("/a.txt", ""))
	assert.False(t, tabs.Activate("nope"))
	assert.False(t, tabs.Update("nope", "x"))
	active, _ := tabs.Active()
	assert.Equal(t, a.ID, active.ID)
}

func TestTabsSave(t *testing.T) {
	ctx := context.Background()
	fs := storage.NewMemory()
	tabs := NewTabs()
	tab := tabs.Open(doc("/a.txt", ""))
	tabs.Update(tab.ID, "saved")

	require.NoError(t, tabs.Save(ctx, fs, tab.ID))
	data, err := fs.ReadFile("/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "saved", string(data))

	got, _ := tabs.Get(tab.ID)
	assert.False(t, got.Dirty)

	err = tabs.Save(ctx, fs, "missing")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestTabsReload(t *testing.T) {
	fs := storage.NewMemory()
	require.NoError(t, fs.WriteFile("/keep.txt", []byte("kept")))

	tabs := NewTabs()
	tabs.Open(doc("/keep.txt", ""))
	gone := tabs.Open(doc("/gone.txt", ""))
	require.True(t, tabs.Activate(gone.ID))

	tabs.Reload(fs)
	list := tabs.List()
	require.Len(t, list, 1)
	assert.Equal(t, "kept", list[0].Content)

	active, ok := tabs.Active()
	require.True(t, ok)
	assert.Equal(t, "/keep.txt", active.Path)
}
