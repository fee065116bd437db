// Package diffview renders the full-text old/new pair returned by the VCS
// engine as a unified diff.
package diffview

import (
	"strings"

	"github.com/aymanbagabas/go-udiff"
	"github.com/charmbracelet/lipgloss"

	"github.com/chmouel/codecanvas/internal/models"
	"github.com/chmouel/codecanvas/internal/theme"
)

// DefaultContext is the number of unchanged lines around each hunk.
const DefaultContext = udiff.DefaultContextLines

// Unified renders d as a unified diff with a/ and b/ labels. Identical
// contents render as "".
func Unified(d models.FileDiff, contextLines int) string {
	if contextLines < 0 {
		contextLines = DefaultContext
	}
	path := strings.TrimPrefix(d.Path, "/")
	edits := udiff.Strings(d.Old, d.New)
	out, err := udiff.ToUnified("a/"+path, "b/"+path, d.Old, edits, contextLines)
	if err != nil {
		return ""
	}
	return out
}

// NewFile renders content as an addition with no prior version.
func NewFile(path, content string) string {
	path = strings.TrimPrefix(path, "/")
	edits := udiff.Strings("", content)
	out, err := udiff.ToUnified("/dev/null", "b/"+path, "", edits, DefaultContext)
	if err != nil {
		return ""
	}
	return out
}

// Stats counts added and removed lines in a unified diff.
func Stats(unified string) (added, removed int) {
	for _, line := range strings.Split(unified, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			added++
		case strings.HasPrefix(line, "-"):
			removed++
		}
	}
	return added, removed
}

// Colorize styles the header, hunk and change lines of a unified diff.
func Colorize(unified string, th *theme.Theme) string {
	if unified == "" {
		return ""
	}
	addStyle := lipgloss.NewStyle().Foreground(th.SuccessFg)
	delStyle := lipgloss.NewStyle().Foreground(th.ErrorFg)
	hunkStyle := lipgloss.NewStyle().Foreground(th.Cyan)
	headStyle := lipgloss.NewStyle().Foreground(th.MutedFg).Bold(true)

	lines := strings.Split(strings.TrimSuffix(unified, "\n"), "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			lines[i] = headStyle.Render(line)
		case strings.HasPrefix(line, "@@"):
			lines[i] = hunkStyle.Render(line)
		case strings.HasPrefix(line, "+"):
			lines[i] = addStyle.Render(line)
		case strings.HasPrefix(line, "-"):
			lines[i] = delStyle.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}
