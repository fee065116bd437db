// Package completion generates shell completion scripts for codecanvas.
package completion

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chmouel/codecanvas/internal/theme"
)

// FlagInfo contains metadata about a command-line flag for completion generation.
type FlagInfo struct {
	Name        string   // Flag name without dashes
	Description string   // Human-readable description
	HasValue    bool     // true for string flags, false for bool flags
	ValueHint   string   // Hint for value type (e.g., "DIR", "PATH", "NAME")
	Values      []string // Enumerated values for completion (e.g., theme names)
}

// GetFlags returns metadata for the global codecanvas flags.
func GetFlags() []FlagInfo {
	return []FlagInfo{
		{
			Name:        "storage-root",
			Description: "Override the workspace directory",
			HasValue:    true,
			ValueHint:   "DIR",
		},
		{
			Name:        "debug-log",
			Description: "Path to debug log file",
			HasValue:    true,
			ValueHint:   "PATH",
		},
		{
			Name:        "theme",
			Description: "Override UI theme",
			HasValue:    true,
			ValueHint:   "NAME",
			Values:      theme.AvailableThemes(),
		},
		{
			Name:        "config-file",
			Description: "Path to configuration file",
			HasValue:    true,
			ValueHint:   "FILE",
		},
		{
			Name:        "config",
			Description: "Override a config value",
			HasValue:    true,
			ValueHint:   "cc.KEY=VALUE",
			Values:      ConfigKeys(),
		},
		{
			Name:        "version",
			Description: "Print version information",
			HasValue:    false,
		},
		{
			Name:        "help",
			Description: "Show help",
			HasValue:    false,
		},
	}
}

// ConfigKeys returns the cc.key= prefixes accepted by --config.
func ConfigKeys() []string {
	keys := []string{
		"storage_root", "theme", "show_icons", "show_hidden", "debug_log", "log_format",
		"git_author_name", "git_author_email", "default_branch",
		"search_exclude", "search_include", "search_case_sensitive", "search_whole_word",
		"search_regex", "search_debounce_ms", "search_max_file_size",
		"auto_refresh", "refresh_interval", "recent_files_limit", "editor", "pager",
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, "cc."+k+"=")
	}
	return out
}

// Shells lists the shells Script supports.
func Shells() []string {
	return []string{"bash", "zsh", "fish"}
}

// Script returns the completion script for shell, completing the given
// subcommand names and the global flags.
func Script(shell string, commands []string) (string, error) {
	commands = append([]string(nil), commands...)
	sort.Strings(commands)
	flags := GetFlags()
	switch shell {
	case "bash":
		return bashScript(commands, flags), nil
	case "zsh":
		return zshScript(commands, flags), nil
	case "fish":
		return fishScript(commands, flags), nil
	default:
		return "", fmt.Errorf("unsupported shell: %s (supported: %s)", shell, strings.Join(Shells(), ", "))
	}
}

func flagWords(flags []FlagInfo) []string {
	words := make([]string, 0, len(flags))
	for _, f := range flags {
		words = append(words, "--"+f.Name)
	}
	return words
}

func bashScript(commands []string, flags []FlagInfo) string {
	var b strings.Builder
	b.WriteString("# bash completion for codecanvas\n")
	b.WriteString("_codecanvas() {\n")
	b.WriteString("  local cur prev\n")
	b.WriteString("  cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("  prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("  case \"$prev\" in\n")
	for _, f := range flags {
		if !f.HasValue {
			continue
		}
		if len(f.Values) > 0 {
			fmt.Fprintf(&b, "    --%s) COMPREPLY=($(compgen -W %q -- \"$cur\")); return ;;\n", f.Name, strings.Join(f.Values, " "))
			continue
		}
		switch f.ValueHint {
		case "DIR":
			fmt.Fprintf(&b, "    --%s) COMPREPLY=($(compgen -d -- \"$cur\")); return ;;\n", f.Name)
		default:
			fmt.Fprintf(&b, "    --%s) COMPREPLY=($(compgen -f -- \"$cur\")); return ;;\n", f.Name)
		}
	}
	b.WriteString("  esac\n")
	b.WriteString("  if [[ \"$cur\" == -* ]]; then\n")
	fmt.Fprintf(&b, "    COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(flagWords(flags), " "))
	b.WriteString("    return\n")
	b.WriteString("  fi\n")
	fmt.Fprintf(&b, "  COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(commands, " "))
	b.WriteString("}\n")
	b.WriteString("complete -F _codecanvas codecanvas\n")
	return b.String()
}

func zshScript(commands []string, flags []FlagInfo) string {
	var b strings.Builder
	b.WriteString("#compdef codecanvas\n\n")
	b.WriteString("_codecanvas() {\n")
	b.WriteString("  _arguments \\\n")
	for _, f := range flags {
		desc := strings.ReplaceAll(f.Description, "'", "")
		switch {
		case len(f.Values) > 0:
			fmt.Fprintf(&b, "    '--%s[%s]:%s:(%s)' \\\n", f.Name, desc, strings.ToLower(f.ValueHint), strings.Join(f.Values, " "))
		case f.ValueHint == "DIR":
			fmt.Fprintf(&b, "    '--%s[%s]:%s:_files -/' \\\n", f.Name, desc, strings.ToLower(f.ValueHint))
		case f.HasValue:
			fmt.Fprintf(&b, "    '--%s[%s]:%s:_files' \\\n", f.Name, desc, strings.ToLower(f.ValueHint))
		default:
			fmt.Fprintf(&b, "    '--%s[%s]' \\\n", f.Name, desc)
		}
	}
	fmt.Fprintf(&b, "    '1:command:(%s)' \\\n", strings.Join(commands, " "))
	b.WriteString("    '*::arg:_files'\n")
	b.WriteString("}\n\n")
	b.WriteString("compdef _codecanvas codecanvas\n")
	return b.String()
}

func fishScript(commands []string, flags []FlagInfo) string {
	var b strings.Builder
	b.WriteString("# fish completion for codecanvas\n")
	fmt.Fprintf(&b, "complete -c codecanvas -n '__fish_use_subcommand' -f -a '%s'\n", strings.Join(commands, " "))
	for _, f := range flags {
		desc := strings.ReplaceAll(f.Description, "'", "")
		line := fmt.Sprintf("complete -c codecanvas -l %s -d '%s'", f.Name, desc)
		if f.HasValue {
			line += " -r"
		}
		if len(f.Values) > 0 {
			line += fmt.Sprintf(" -a '%s'", strings.Join(f.Values, " "))
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
