// Package buildinfo holds the build metadata of the codecanvas binary.
// The linker injects values into cmd/codecanvas/main.go, which forwards them
// with Set.
package buildinfo

import (
	"fmt"
	"runtime/debug"
	"strings"
)

const (
	unsetVersion = "dev"
	unsetValue   = "unknown"
)

// Info is a snapshot of the build metadata.
type Info struct {
	Version string
	Commit  string
	Date    string
	BuiltBy string
}

var current = Info{
	Version: unsetVersion,
	Commit:  unsetValue,
	Date:    unsetValue,
	BuiltBy: unsetValue,
}

// Set stores the build metadata received from linker-injected variables.
// Empty values keep the defaults.
func Set(version, commit, date, builtBy string) {
	current = Info{
		Version: orDefault(version, unsetVersion),
		Commit:  orDefault(commit, unsetValue),
		Date:    orDefault(date, unsetValue),
		BuiltBy: orDefault(builtBy, unsetValue),
	}
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" || v == "none" {
		return def
	}
	return v
}

// Get returns the current metadata.
func Get() Info { return current }

// Version returns the build version string.
func Version() string { return current.Version }

// Enrich fills the commit and builder from the module build info when the
// linker did not provide them.
func Enrich() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if current.Commit == unsetValue {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" && setting.Value != "" {
				current.Commit = setting.Value
			}
		}
	}
	if current.BuiltBy == unsetValue {
		current.BuiltBy = info.GoVersion
	}
	if current.Version == unsetVersion && info.Main.Version != "" && info.Main.Version != "(devel)" {
		current.Version = info.Main.Version
	}
}

// String renders the metadata for the version command.
func (i Info) String() string {
	commit := i.Commit
	if len(commit) > 12 {
		commit = commit[:12]
	}
	return fmt.Sprintf("codecanvas %s (commit %s, built %s by %s)", i.Version, commit, i.Date, i.BuiltBy)
}
