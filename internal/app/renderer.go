package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// View renders the UI for the Bubble Tea program.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	// Wait for window size before rendering full UI
	if m.view.windowWidth == 0 || m.view.windowHeight == 0 {
		return "Loading..."
	}

	layout := m.computeLayout()
	m.applyLayout(layout)

	sections := []string{m.renderHeader(layout)}
	if layout.bannerHeight > 0 {
		sections = append(sections, m.renderBanner(layout))
	}
	if layout.inputHeight > 0 {
		sections = append(sections, m.renderInput(layout))
	}

	maxBodyLines := m.view.windowHeight - layout.headerHeight - layout.footerHeight - layout.bannerHeight - layout.inputHeight
	sections = append(sections,
		truncateToHeight(m.renderBody(layout), max(1, maxBodyLines)),
		m.renderFooter(layout),
	)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// truncateToHeight ensures output doesn't exceed maxLines.
func truncateToHeight(s string, maxLines int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return strings.Join(lines, "\n")
}

// truncateToWidth cuts an ANSI-styled line to width cells.
func truncateToWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, "…")
}

func firstLine(s string) string {
	if idx := strings.IndexAny(s, "\r\n"); idx >= 0 {
		return s[:idx]
	}
	return s
}
