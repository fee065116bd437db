package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandPath("~/docs")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "docs"), got)

	t.Setenv("CODECANVAS_TEST_DIR", "/tmp/cc")
	got, err = ExpandPath("$CODECANVAS_TEST_DIR/state")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/cc/state", got)
}

func TestIsPathWithin(t *testing.T) {
	tests := []struct {
		base   string
		target string
		want   bool
	}{
		{"/a/b", "/a/b", true},
		{"/a/b", "/a/b/c", true},
		{"/a/b", "/a/bc", false},
		{"/a/b", "/a", false},
		{"/a/b", "/a/b/../../etc", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsPathWithin(tt.base, tt.target), "%s in %s", tt.target, tt.base)
	}
}

func TestRandomName(t *testing.T) {
	name := RandomName()
	assert.Regexp(t, `^[a-z]+-[a-z]+$`, name)
}
