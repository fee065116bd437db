// Package config loads the application configuration from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/chmouel/codecanvas/internal/theme"
	"github.com/chmouel/codecanvas/internal/utils"
)

const appName = "codecanvas"

// Defaults shared with the packages that consume them.
const (
	DefaultStorageRoot      = "~/Documents/codecanvas"
	DefaultAuthorName       = "Code Canvas User"
	DefaultAuthorEmail      = "user@codecanvas.app"
	DefaultBranch           = "main"
	DefaultSearchExclude    = "node_modules,dist,build"
	DefaultSearchDebounceMS = 300
	DefaultMaxFileSize      = 1 << 20
	DefaultRecentFilesLimit = 20
)

// AppConfig defines the global codecanvas configuration options.
type AppConfig struct {
	StorageRoot         string
	Theme               string // Theme name: see AvailableThemes in internal/theme
	ShowIcons           bool   // Render Nerd Font icons in the explorer (default: true)
	ShowHidden          bool
	DebugLog            string
	LogFormat           string // "text" or "json"
	GitAuthorName       string
	GitAuthorEmail      string
	DefaultBranch       string
	SearchExclude       string
	SearchInclude       string
	SearchCaseSensitive bool
	SearchWholeWord     bool
	SearchRegex         bool
	SearchDebounceMS    int
	SearchMaxFileSize   int64
	AutoRefresh         bool
	RefreshIntervalSec  int // 0 relies on the watcher alone
	RecentFilesLimit    int
	Editor              string
	Pager               string
}

// DefaultConfig returns the default configuration values.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		StorageRoot:       DefaultStorageRoot,
		Theme:             theme.DraculaName,
		ShowIcons:         true,
		LogFormat:         "text",
		GitAuthorName:     DefaultAuthorName,
		GitAuthorEmail:    DefaultAuthorEmail,
		DefaultBranch:     DefaultBranch,
		SearchExclude:     DefaultSearchExclude,
		SearchDebounceMS:  DefaultSearchDebounceMS,
		SearchMaxFileSize: DefaultMaxFileSize,
		AutoRefresh:       true,
		RecentFilesLimit:  DefaultRecentFilesLimit,
	}
}

func coerceBool(value any, defaultVal bool) bool {
	if value == nil {
		return defaultVal
	}

	switch v := value.(type) {
	case bool:
		return v
	case int:
		return v != 0
	case string:
		text := strings.ToLower(strings.TrimSpace(v))
		switch text {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return defaultVal
}

func coerceInt(value any, defaultVal int) int {
	if value == nil {
		return defaultVal
	}

	switch v := value.(type) {
	case bool:
		return defaultVal
	case int:
		return v
	case int64:
		return int(v)
	case string:
		text := strings.TrimSpace(v)
		if text == "" {
			return defaultVal
		}
		if i, err := strconv.Atoi(text); err == nil {
			return i
		}
	}
	return defaultVal
}

func coerceString(value any, defaultVal string) string {
	text, ok := value.(string)
	if !ok {
		return defaultVal
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return defaultVal
	}
	return text
}

// apply overlays data onto cfg. Unknown keys are ignored and invalid
// values keep what cfg already holds.
func (cfg *AppConfig) apply(data map[string]any) {
	cfg.StorageRoot = coerceString(data["storage_root"], cfg.StorageRoot)
	cfg.DebugLog = coerceString(data["debug_log"], cfg.DebugLog)
	cfg.GitAuthorName = coerceString(data["git_author_name"], cfg.GitAuthorName)
	cfg.GitAuthorEmail = coerceString(data["git_author_email"], cfg.GitAuthorEmail)
	cfg.DefaultBranch = coerceString(data["default_branch"], cfg.DefaultBranch)
	cfg.Editor = coerceString(data["editor"], cfg.Editor)
	cfg.Pager = coerceString(data["pager"], cfg.Pager)

	if themeName, ok := data["theme"].(string); ok {
		if normalized := NormalizeThemeName(themeName); normalized != "" {
			cfg.Theme = normalized
		}
	}
	if format, ok := data["log_format"].(string); ok {
		format = strings.ToLower(strings.TrimSpace(format))
		if format == "text" || format == "json" {
			cfg.LogFormat = format
		}
	}

	// search patterns may be set to empty on purpose
	if v, ok := data["search_exclude"].(string); ok {
		cfg.SearchExclude = strings.TrimSpace(v)
	}
	if v, ok := data["search_include"].(string); ok {
		cfg.SearchInclude = strings.TrimSpace(v)
	}

	cfg.ShowIcons = coerceBool(data["show_icons"], cfg.ShowIcons)
	cfg.ShowHidden = coerceBool(data["show_hidden"], cfg.ShowHidden)
	cfg.SearchCaseSensitive = coerceBool(data["search_case_sensitive"], cfg.SearchCaseSensitive)
	cfg.SearchWholeWord = coerceBool(data["search_whole_word"], cfg.SearchWholeWord)
	cfg.SearchRegex = coerceBool(data["search_regex"], cfg.SearchRegex)
	cfg.AutoRefresh = coerceBool(data["auto_refresh"], cfg.AutoRefresh)

	if v := coerceInt(data["search_debounce_ms"], cfg.SearchDebounceMS); v >= 0 {
		cfg.SearchDebounceMS = v
	}
	if v := coerceInt(data["search_max_file_size"], int(cfg.SearchMaxFileSize)); v > 0 {
		cfg.SearchMaxFileSize = int64(v)
	}
	if v := coerceInt(data["refresh_interval"], cfg.RefreshIntervalSec); v >= 0 {
		cfg.RefreshIntervalSec = v
	}
	if v := coerceInt(data["recent_files_limit"], cfg.RecentFilesLimit); v > 0 {
		cfg.RecentFilesLimit = v
	}
}

func parseConfig(data map[string]any) *AppConfig {
	cfg := DefaultConfig()
	cfg.apply(data)
	return cfg
}

func getConfigDir() string {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return xdgConfigHome
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}

// StateDir is where persisted session state lives.
func StateDir() string {
	if xdgStateHome := os.Getenv("XDG_STATE_HOME"); xdgStateHome != "" {
		return filepath.Join(xdgStateHome, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", appName)
}

// LoadConfig reads the application configuration from a YAML file.
func LoadConfig(configPath string) (*AppConfig, error) {
	configBase := filepath.Join(getConfigDir(), appName)
	configBase = filepath.Clean(configBase)

	var paths []string

	if configPath != "" {
		expanded, err := utils.ExpandPath(configPath)
		if err != nil {
			return DefaultConfig(), err
		}
		absPath, err := filepath.Abs(expanded)
		if err != nil {
			return DefaultConfig(), err
		}
		if !utils.IsPathWithin(configBase, absPath) {
			return DefaultConfig(), fmt.Errorf("config path must reside inside %s", configBase)
		}
		paths = []string{absPath}
	} else {
		paths = []string{
			filepath.Join(configBase, "config.yaml"),
			filepath.Join(configBase, "config.yml"),
		}
	}

	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		// #nosec G304 -- path is constrained to the config directory after validation
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var yamlData map[string]any
		if err := yaml.Unmarshal(data, &yamlData); err != nil {
			return DefaultConfig(), nil
		}
		return parseConfig(yamlData), nil
	}

	return DefaultConfig(), nil
}

// ResolvedStorageRoot expands ~ and environment variables in StorageRoot.
func (cfg *AppConfig) ResolvedStorageRoot() (string, error) {
	root, err := utils.ExpandPath(cfg.StorageRoot)
	if err != nil {
		return "", err
	}
	return filepath.Abs(root)
}

// NormalizeThemeName returns the canonical theme name if it is supported.
func NormalizeThemeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if theme.Exists(name) {
		return name
	}
	return ""
}
