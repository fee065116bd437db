package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the application header.
func (m *Model) renderHeader(layout layoutDims) string {
	headerStyle := lipgloss.NewStyle().
		Background(m.theme.AccentDim).
		Foreground(m.theme.TextFg).
		Bold(true).
		Width(layout.width).
		Padding(0, 2).Align(lipgloss.Center)

	content := "CodeCanvas"
	if m.gitPane.isRepo && m.gitPane.branch != "" {
		content = fmt.Sprintf("%s  •  %s", content, m.gitPane.branch)
	}
	if tab, ok := m.state.Tabs.Active(); ok {
		content = fmt.Sprintf("%s  •  %s", content, tab.Path)
	}
	return headerStyle.Render(truncateToWidth(content, max(1, layout.width-4)))
}

// renderBanner renders the error banner, or the last info message.
func (m *Model) renderBanner(layout layoutDims) string {
	style := lipgloss.NewStyle().Padding(0, 1).Width(layout.width)
	text := m.info
	if m.banner != "" {
		style = style.Foreground(m.theme.AccentFg).Background(m.theme.ErrorFg).Bold(true)
		text = m.banner + "  (Esc to dismiss)"
	} else {
		style = style.Foreground(m.theme.SuccessFg)
	}
	return style.Render(truncateToWidth(text, max(1, layout.width-2)))
}

// renderInput renders the prompt line with its error and quick-open matches.
func (m *Model) renderInput(layout layoutDims) string {
	labelStyle := lipgloss.NewStyle().
		Foreground(m.theme.AccentFg).
		Background(m.theme.Accent).
		Bold(true).
		Padding(0, 1)
	lineStyle := lipgloss.NewStyle().
		Foreground(m.theme.TextFg).
		Padding(0, 1)

	label := m.input.label
	if m.input.mode == inputSearch {
		label += " " + m.searchFlags()
	}
	lines := []string{lineStyle.Width(layout.width).Render(
		fmt.Sprintf("%s %s", labelStyle.Render(label), m.input.field.View()))}

	if m.input.err != "" {
		errStyle := lipgloss.NewStyle().Foreground(m.theme.ErrorFg).Padding(0, 1)
		lines = append(lines, errStyle.Render(truncateToWidth(m.input.err, max(1, layout.width-2))))
	}

	if m.input.mode == inputQuickOpen {
		if len(m.input.quick) == 0 {
			lines = append(lines, lineStyle.Foreground(m.theme.MutedFg).Render("No matching files"))
		}
		for i, match := range m.input.quick {
			lines = append(lines, m.renderQuickMatch(match.Display, match.MatchedIndexes, i == m.input.quickIndex, layout.width))
		}
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderQuickMatch(display string, matched []int, selected bool, width int) string {
	base := lipgloss.NewStyle().Foreground(m.theme.TextFg)
	hit := lipgloss.NewStyle().Foreground(m.theme.Accent).Bold(true)
	if selected {
		base = base.Background(m.theme.AccentDim)
		hit = hit.Background(m.theme.AccentDim)
	}
	marks := make(map[int]bool, len(matched))
	for _, idx := range matched {
		marks[idx] = true
	}
	var b strings.Builder
	b.WriteString(base.Render("  "))
	for i, r := range display {
		if marks[i] {
			b.WriteString(hit.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}
	return truncateToWidth(b.String(), width)
}

// searchFlags shows the active search options, e.g. "[Aa ab .*]".
func (m *Model) searchFlags() string {
	flag := func(on bool, s string) string {
		if on {
			return s
		}
		return strings.Repeat("-", len(s))
	}
	opts := m.search.options
	return fmt.Sprintf("[%s %s %s]", flag(opts.CaseSensitive, "Aa"), flag(opts.WholeWord, "ab"), flag(opts.Regex, ".*"))
}

// renderFooter renders the application footer with context-aware hints.
func (m *Model) renderFooter(layout layoutDims) string {
	footerStyle := lipgloss.NewStyle().
		Foreground(m.theme.TextFg).
		Background(m.theme.Border).
		Padding(0, 1)

	var hints []string
	switch {
	case m.input.active():
		hints = []string{
			m.renderKeyHint("Enter", "Confirm"),
			m.renderKeyHint("Esc", "Cancel"),
		}
		if m.input.mode == inputSearch {
			hints = append(hints,
				m.renderKeyHint("alt+c", "Case"),
				m.renderKeyHint("alt+w", "Word"),
				m.renderKeyHint("alt+r", "Regex"),
			)
		}

	case m.view.focused == paneGit:
		hints = []string{m.renderKeyHint("j/k", "Navigate")}
		if !m.gitPane.isRepo {
			hints = append(hints, m.renderKeyHint("i", "Init Repo"))
		} else {
			if len(m.gitPane.status.TreeFlat) > 0 {
				hints = append(hints,
					m.renderKeyHint("Enter", "Show Diff"),
					m.renderKeyHint("s", "Stage"),
					m.renderKeyHint("u", "Unstage"),
				)
			}
			hints = append(hints, m.renderKeyHint("c", "Commit"))
		}
		hints = append(hints, m.renderKeyHint("r", "Refresh"))

	case m.view.focused == paneSearch:
		hints = []string{
			m.renderKeyHint("/", "Search"),
			m.renderKeyHint("Enter", "Open"),
			m.renderKeyHint("alt+c", "Case"),
			m.renderKeyHint("alt+w", "Word"),
			m.renderKeyHint("alt+r", "Regex"),
		}

	case m.view.focused == paneSamples:
		if m.samples.showing {
			hints = []string{
				m.renderKeyHint("j/k", "Scroll"),
				m.renderKeyHint("n", "Save As File"),
				m.renderKeyHint("Esc", "Back"),
			}
		} else {
			hints = []string{
				m.renderKeyHint("j/k", "Navigate"),
				m.renderKeyHint("Enter", "View"),
				m.renderKeyHint("n", "Save As File"),
			}
		}

	default:
		hints = []string{
			m.renderKeyHint("1-4", "Pane"),
			m.renderKeyHint("Enter", "Open"),
			m.renderKeyHint("n", "New File"),
			m.renderKeyHint("N", "New Folder"),
			m.renderKeyHint("R", "Rename"),
			m.renderKeyHint("D", "Delete"),
			m.renderKeyHint("ctrl+p", "Quick Open"),
		}
	}
	if !m.input.active() {
		hints = append(hints,
			m.renderKeyHint("Tab", "Switch Pane"),
			m.renderKeyHint("q", "Quit"),
		)
	}

	content := strings.Join(hints, "  ")
	return footerStyle.Width(layout.width).Render(truncateToWidth(content, max(1, layout.width-2)))
}

// renderKeyHint renders a single key hint with enhanced styling.
func (m *Model) renderKeyHint(key, label string) string {
	keyStyle := lipgloss.NewStyle().
		Foreground(m.theme.AccentFg).
		Background(m.theme.Accent).
		Bold(true).
		Padding(0, 1)
	labelStyle := lipgloss.NewStyle().Foreground(m.theme.Accent)
	return fmt.Sprintf("%s %s", keyStyle.Render(key), labelStyle.Render(label))
}

// renderPaneTitle renders a pane title with focus indicators.
func (m *Model) renderPaneTitle(p pane, extra string, width int) string {
	focused := m.view.focused == p
	numStyle := lipgloss.NewStyle().Foreground(m.theme.MutedFg)
	titleStyle := lipgloss.NewStyle().Foreground(m.theme.MutedFg)
	if focused {
		numStyle = numStyle.Foreground(m.theme.Accent).Bold(true)
		titleStyle = titleStyle.Foreground(m.theme.TextFg).Bold(true)
	}
	num := numStyle.Render(fmt.Sprintf("[%d]", int(p)+1))
	if m.config.ShowIcons {
		num = numStyle.Render(fmt.Sprintf("(%d)", int(p)+1))
	}
	line := fmt.Sprintf("%s %s", num, titleStyle.Render(p.title()))
	if extra != "" {
		line += " " + lipgloss.NewStyle().Foreground(m.theme.MutedFg).Render(extra)
	}
	return lipgloss.NewStyle().Width(width).Render(truncateToWidth(line, width))
}

// basePaneStyle returns the base style for panes.
func (m *Model) basePaneStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Border).
		Padding(0, 1)
}

// paneStyle returns a pane style with focus indication.
func (m *Model) paneStyle(focused bool) lipgloss.Style {
	borderColor := m.theme.Border
	borderStyle := lipgloss.NormalBorder()
	if focused {
		borderColor = m.theme.Accent
		borderStyle = lipgloss.RoundedBorder()
	}
	return lipgloss.NewStyle().
		Border(borderStyle).
		BorderForeground(borderColor).
		Padding(0, 1)
}

// selectedStyle highlights the cursor row of a focused pane.
func (m *Model) selectedStyle(focused bool) lipgloss.Style {
	style := lipgloss.NewStyle().Foreground(m.theme.TextFg).Bold(true)
	if focused {
		return style.Background(m.theme.AccentDim)
	}
	return style.Underline(true)
}
