package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, DefaultStorageRoot, cfg.StorageRoot)
	assert.Equal(t, "dracula", cfg.Theme)
	assert.True(t, cfg.ShowIcons)
	assert.False(t, cfg.ShowHidden)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "Code Canvas User", cfg.GitAuthorName)
	assert.Equal(t, "user@codecanvas.app", cfg.GitAuthorEmail)
	assert.Equal(t, "main", cfg.DefaultBranch)
	assert.Equal(t, "node_modules,dist,build", cfg.SearchExclude)
	assert.Equal(t, 300, cfg.SearchDebounceMS)
	assert.Equal(t, int64(1<<20), cfg.SearchMaxFileSize)
	assert.True(t, cfg.AutoRefresh)
	assert.Zero(t, cfg.RefreshIntervalSec)
	assert.Equal(t, 20, cfg.RecentFilesLimit)
	assert.Empty(t, cfg.Editor)
	assert.Empty(t, cfg.DebugLog)
}

func TestCoerceBool(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		def      bool
		expected bool
	}{
		{"nil keeps default", nil, true, true},
		{"bool", false, true, false},
		{"int", 1, false, true},
		{"yes", "yes", false, true},
		{"off", "OFF", true, false},
		{"garbage", "maybe", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, coerceBool(tt.input, tt.def))
		})
	}
}

func TestCoerceInt(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected int
	}{
		{"nil", nil, 7},
		{"int", 42, 42},
		{"string", " 12 ", 12},
		{"empty string", "", 7},
		{"bad string", "twelve", 7},
		{"bool", true, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, coerceInt(tt.input, 7))
		})
	}
}

func TestParseConfig(t *testing.T) {
	cfg := parseConfig(map[string]any{
		"storage_root":          "/srv/code",
		"theme":                 " Nord ",
		"show_icons":            false,
		"show_hidden":           "yes",
		"log_format":            "JSON",
		"git_author_name":       "Ada",
		"git_author_email":      "ada@example.com",
		"default_branch":        "trunk",
		"search_exclude":        "",
		"search_include":        "src",
		"search_case_sensitive": true,
		"search_whole_word":     1,
		"search_regex":          "on",
		"search_debounce_ms":    150,
		"search_max_file_size":  2048,
		"auto_refresh":          false,
		"refresh_interval":      5,
		"recent_files_limit":    3,
		"editor":                "vim",
		"pager":                 "less -R",
		"unknown_key":           "ignored",
	})

	assert.Equal(t, "/srv/code", cfg.StorageRoot)
	assert.Equal(t, "nord", cfg.Theme)
	assert.False(t, cfg.ShowIcons)
	assert.True(t, cfg.ShowHidden)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "Ada", cfg.GitAuthorName)
	assert.Equal(t, "ada@example.com", cfg.GitAuthorEmail)
	assert.Equal(t, "trunk", cfg.DefaultBranch)
	assert.Empty(t, cfg.SearchExclude)
	assert.Equal(t, "src", cfg.SearchInclude)
	assert.True(t, cfg.SearchCaseSensitive)
	assert.True(t, cfg.SearchWholeWord)
	assert.True(t, cfg.SearchRegex)
	assert.Equal(t, 150, cfg.SearchDebounceMS)
	assert.Equal(t, int64(2048), cfg.SearchMaxFileSize)
	assert.False(t, cfg.AutoRefresh)
	assert.Equal(t, 5, cfg.RefreshIntervalSec)
	assert.Equal(t, 3, cfg.RecentFilesLimit)
	assert.Equal(t, "vim", cfg.Editor)
	assert.Equal(t, "less -R", cfg.Pager)
}

func TestParseConfigInvalidValuesKeepDefaults(t *testing.T) {
	cfg := parseConfig(map[string]any{
		"theme":                "no-such-theme",
		"log_format":           "xml",
		"search_max_file_size": -1,
		"recent_files_limit":   0,
		"refresh_interval":     -3,
		"storage_root":         "   ",
	})
	def := DefaultConfig()
	assert.Equal(t, def.Theme, cfg.Theme)
	assert.Equal(t, def.LogFormat, cfg.LogFormat)
	assert.Equal(t, def.SearchMaxFileSize, cfg.SearchMaxFileSize)
	assert.Equal(t, def.RecentFilesLimit, cfg.RecentFilesLimit)
	assert.Zero(t, cfg.RefreshIntervalSec)
	assert.Equal(t, def.StorageRoot, cfg.StorageRoot)
}

func TestLoadConfig(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	dir := filepath.Join(xdg, "codecanvas")
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte("theme: gruvbox-dark\nrecent_files_limit: 5\n"), 0o600))

	cfg, err = LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "gruvbox-dark", cfg.Theme)
	assert.Equal(t, 5, cfg.RecentFilesLimit)

	custom := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(custom, []byte("editor: nano\n"), 0o600))
	cfg, err = LoadConfig(custom)
	require.NoError(t, err)
	assert.Equal(t, "nano", cfg.Editor)

	outside := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(outside, []byte("editor: nano\n"), 0o600))
	_, err = LoadConfig(outside)
	assert.ErrorContains(t, err, "must reside inside")
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	dir := filepath.Join(xdg, "codecanvas")
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("theme: [unclosed"), 0o600))

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestStateDir(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/state")
	assert.Equal(t, filepath.Join("/tmp/state", "codecanvas"), StateDir())
}

func TestResolvedStorageRoot(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	cfg := DefaultConfig()
	root, err := cfg.ResolvedStorageRoot()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "Documents", "codecanvas"), root)
}
