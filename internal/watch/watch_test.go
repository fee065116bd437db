package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelevant(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/root/a.txt", true},
		{"/root/src/main.go", true},
		{"/root/.git", true},
		{"/root/.git/index", true},
		{"/root/.git/HEAD", true},
		{"/root/.git/index.lock", false},
		{"/root/.git/objects/ab/cdef", false},
		{"/root/.git/refs/heads/main", false},
		{"/root/repo/.git/index", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Relevant(tt.path))
		})
	}
}

func TestShouldRefreshDebounce(t *testing.T) {
	w := New()
	now := time.Now()
	assert.True(t, w.ShouldRefresh(now))
	assert.False(t, w.ShouldRefresh(now.Add(Debounce/2)))
	assert.True(t, w.ShouldRefresh(now.Add(Debounce)))
}

func TestSignalCoalesces(t *testing.T) {
	w := &Service{Events: make(chan struct{}, 1), Done: make(chan struct{})}
	w.Signal()
	w.Signal()
	assert.Len(t, w.Events, 1)

	ch := w.NextEvent()
	require.NotNil(t, ch)
	assert.Nil(t, w.NextEvent())
	<-ch
	w.ResetWaiting()
	assert.NotNil(t, w.NextEvent())

	close(w.Done)
	w.Signal()
	assert.Empty(t, w.Events)
}

func TestStartWatchesTree(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src", "pkg"), 0o750))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git", "objects"), 0o750))

	w := New()
	started, err := w.Start(root)
	require.NoError(t, err)
	require.True(t, started)
	t.Cleanup(w.Stop)

	assert.True(t, w.Watched(filepath.Join(root, "src", "pkg")))
	assert.True(t, w.Watched(filepath.Join(root, ".git")))
	assert.False(t, w.Watched(filepath.Join(root, ".git", "objects")))

	again, err := w.Start(root)
	require.NoError(t, err)
	assert.False(t, again)

	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "a.txt"), []byte("x"), 0o600))
	select {
	case <-w.NextEvent():
	case <-time.After(5 * time.Second):
		t.Fatal("expected a watcher event")
	}
}

func TestStartWithoutRoot(t *testing.T) {
	w := New()
	started, err := w.Start("")
	require.NoError(t, err)
	assert.False(t, started)
	w.Stop()
}
