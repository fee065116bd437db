// Package utils holds small helpers shared across codecanvas packages.
package utils

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultDirPerms is used for directories created by the application.
	DefaultDirPerms = 0o750
	// DefaultFilePerms is used for state files written by the application.
	DefaultFilePerms = 0o600
)

// ExpandPath expands a leading ~ and environment variables in path.
func ExpandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[1:])
	}
	return os.ExpandEnv(path), nil
}

// IsPathWithin reports whether target is base or lives below it.
func IsPathWithin(base, target string) bool {
	base = filepath.Clean(base)
	target = filepath.Clean(target)

	rel, err := filepath.Rel(base, target)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return false
	}
	return true
}
