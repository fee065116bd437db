// Package language maps file names to editor language ids, display names and
// icons. Detection is a static extension lookup; content is never sniffed.
package language

import (
	"os"
	"path"
	"strings"
	"time"

	devicons "github.com/epilande/go-devicons"
)

// PlainText is the id used when no mapping exists.
const PlainText = "plaintext"

// Language describes one entry of the lookup table.
type Language struct {
	ID    string // editor language id, e.g. "typescript"
	Name  string // display name, e.g. "React TSX"
	Color string // hex colour used for the tab marker
}

var plain = Language{ID: PlainText, Name: "Plain Text", Color: "#666666"}

var byExtension = map[string]Language{
	"ts":    {ID: "typescript", Name: "TypeScript", Color: "#3178c6"},
	"tsx":   {ID: "typescript", Name: "React TSX", Color: "#3178c6"},
	"js":    {ID: "javascript", Name: "JavaScript", Color: "#f7df1e"},
	"jsx":   {ID: "javascript", Name: "React JSX", Color: "#f7df1e"},
	"mjs":   {ID: "javascript", Name: "JavaScript", Color: "#f7df1e"},
	"css":   {ID: "css", Name: "CSS", Color: "#264de4"},
	"scss":  {ID: "scss", Name: "SCSS", Color: "#cc6699"},
	"html":  {ID: "html", Name: "HTML", Color: "#e34c26"},
	"json":  {ID: "json", Name: "JSON", Color: "#292929"},
	"md":    {ID: "markdown", Name: "Markdown", Color: "#083fa1"},
	"go":    {ID: "go", Name: "Go", Color: "#00add8"},
	"py":    {ID: "python", Name: "Python", Color: "#3572a5"},
	"java":  {ID: "java", Name: "Java", Color: "#b07219"},
	"kt":    {ID: "kotlin", Name: "Kotlin", Color: "#a97bff"},
	"scala": {ID: "scala", Name: "Scala", Color: "#c22d40"},
	"c":     {ID: "c", Name: "C", Color: "#555555"},
	"h":     {ID: "c", Name: "C", Color: "#555555"},
	"cpp":   {ID: "cpp", Name: "C++", Color: "#f34b7d"},
	"hpp":   {ID: "cpp", Name: "C++", Color: "#f34b7d"},
	"cs":    {ID: "csharp", Name: "C#", Color: "#178600"},
	"rs":    {ID: "rust", Name: "Rust", Color: "#dea584"},
	"rb":    {ID: "ruby", Name: "Ruby", Color: "#701516"},
	"ex":    {ID: "elixir", Name: "Elixir", Color: "#6e4a7e"},
	"exs":   {ID: "elixir", Name: "Elixir", Color: "#6e4a7e"},
	"hs":    {ID: "haskell", Name: "Haskell", Color: "#5e5086"},
	"sql":   {ID: "sql", Name: "SQL", Color: "#e38c00"},
	"sh":    {ID: "shell", Name: "Shell", Color: "#89e051"},
	"yaml":  {ID: "yaml", Name: "YAML", Color: "#cb171e"},
	"yml":   {ID: "yaml", Name: "YAML", Color: "#cb171e"},
	"toml":  {ID: "toml", Name: "TOML", Color: "#9c4221"},
}

// Detect returns the language for a file name or path.
func Detect(name string) Language {
	base := path.Base(name)
	idx := strings.LastIndex(base, ".")
	if idx < 0 || idx == len(base)-1 {
		return plain
	}
	if lang, ok := byExtension[strings.ToLower(base[idx+1:])]; ok {
		return lang
	}
	return plain
}

// ID is a shortcut for Detect(name).ID.
func ID(name string) string {
	return Detect(name).ID
}

// Extension returns a conventional file extension for a language id, used when
// saving a sample to disk.
func Extension(id string) string {
	switch id {
	case "typescript":
		return "ts"
	case "javascript":
		return "js"
	case "markdown":
		return "md"
	case "python":
		return "py"
	case "kotlin":
		return "kt"
	case "csharp":
		return "cs"
	case "rust":
		return "rs"
	case "ruby":
		return "rb"
	case "elixir":
		return "ex"
	case "haskell":
		return "hs"
	case "shell":
		return "sh"
	case "react":
		return "jsx"
	case "", PlainText:
		return "txt"
	default:
		return id
	}
}

type iconFileInfo struct {
	name  string
	isDir bool
}

func (i iconFileInfo) Name() string { return i.name }

func (i iconFileInfo) Size() int64 { return 0 }

func (i iconFileInfo) Mode() os.FileMode {
	if i.isDir {
		return os.ModeDir | 0o755
	}
	return 0
}

func (i iconFileInfo) ModTime() time.Time { return time.Time{} }

func (i iconFileInfo) IsDir() bool { return i.isDir }

func (i iconFileInfo) Sys() any { return nil }

// Icon returns the nerd-font glyph for a file or directory name.
func Icon(name string, isDir bool) string {
	if name == "" {
		return ""
	}
	return devicons.IconForInfo(iconFileInfo{name: name, isDir: isDir}).Icon
}

// FolderIcon returns the glyph for an expanded or collapsed directory.
func FolderIcon(expanded bool) string {
	if expanded {
		return "\uf07c" // nf-fa-folder_open
	}
	return "\uf07b" // nf-fa-folder
}
