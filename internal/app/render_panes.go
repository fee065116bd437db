package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/chmouel/codecanvas/internal/language"
	"github.com/chmouel/codecanvas/internal/models"
	"github.com/chmouel/codecanvas/internal/storage"
)

// renderBody renders the main body area with panes.
func (m *Model) renderBody(layout layoutDims) string {
	left := m.renderLeftPane(layout)
	right := m.renderRightPane(layout)
	gap := lipgloss.NewStyle().
		Width(layout.gapX).
		Render(strings.Repeat(" ", layout.gapX))
	return lipgloss.JoinHorizontal(lipgloss.Top, left, gap, right)
}

// visibleWindow returns the [start, end) slice of total rows that keeps
// index on screen within height rows.
func visibleWindow(total, index, height int) (int, int) {
	if height <= 0 || total <= height {
		return 0, total
	}
	start := index - height/2
	start = max(0, min(start, total-height))
	return start, start + height
}

// renderLeftPane renders the explorer.
func (m *Model) renderLeftPane(layout layoutDims) string {
	focused := m.view.focused == paneExplorer
	extra := ""
	if m.tree.ShowHidden() {
		extra = "(hidden shown)"
	}
	title := m.renderPaneTitle(paneExplorer, extra, layout.leftInnerWidth)

	height := max(1, layout.leftInnerHeight-1)
	var lines []string
	if len(m.explorer.nodes) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(m.theme.MutedFg).Render("Empty folder. Press n to create a file."))
	}

	statuses := m.statusByStoragePath()
	start, end := visibleWindow(len(m.explorer.nodes), m.explorer.index, height)
	for i := start; i < end; i++ {
		v := m.explorer.nodes[i]
		lines = append(lines, m.renderExplorerRow(v.Node, v.Depth, statuses, i == m.explorer.index, focused, layout.leftInnerWidth))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(lines, "\n"))
	return m.paneStyle(focused).
		Width(layout.leftWidth).
		Height(layout.bodyHeight).
		MaxHeight(layout.bodyHeight).
		Render(content)
}

func (m *Model) renderExplorerRow(node *models.FileNode, depth int, statuses map[string]models.FileStatus, selected, focused bool, width int) string {
	indent := strings.Repeat("  ", depth)
	marker := " "
	icon := ""
	if node.IsDir() {
		marker = "▸"
		if node.Expanded {
			marker = "▾"
		}
		if m.config.ShowIcons {
			icon = language.FolderIcon(node.Expanded) + " "
		}
	} else if m.config.ShowIcons {
		icon = language.Icon(node.Name, false) + " "
	}

	name := node.Name
	if m.state.Bookmarks.Has(node.Path) {
		name += " ★"
	}
	line := fmt.Sprintf("%s%s %s%s", indent, marker, icon, name)

	style := lipgloss.NewStyle().Foreground(m.theme.TextFg)
	if node.IsDir() {
		style = style.Foreground(m.theme.Cyan)
	}
	suffix := ""
	if status, ok := statuses[node.Path]; ok {
		style = style.Foreground(m.theme.StatusColor(status))
		suffix = " " + status.Short()
	}
	if selected {
		style = m.selectedStyle(focused)
	}
	line = truncateToWidth(line, max(1, width-len(suffix)))
	return style.Render(line + suffix)
}

// statusByStoragePath maps the changed files to explorer paths.
func (m *Model) statusByStoragePath() map[string]models.FileStatus {
	out := make(map[string]models.FileStatus)
	if m.gitPane.status.Tree == nil {
		return out
	}
	for _, f := range m.gitPane.status.Tree.CollectFiles() {
		out[storage.Join(m.repoPath, f.Path)] = f.Status
	}
	return out
}

// renderRightPane renders the right pane container.
func (m *Model) renderRightPane(layout layoutDims) string {
	top := m.renderGitPane(layout)
	var bottom string
	if m.view.bottom == paneSamples {
		bottom = m.renderSamplesPane(layout)
	} else {
		bottom = m.renderSearchPane(layout)
	}
	gap := strings.Repeat("\n", layout.gapY)
	return lipgloss.JoinVertical(lipgloss.Left, top, gap, bottom)
}

// renderGitPane renders the changed files and the selected diff.
func (m *Model) renderGitPane(layout layoutDims) string {
	focused := m.view.focused == paneGit
	muted := lipgloss.NewStyle().Foreground(m.theme.MutedFg)

	extra := ""
	switch {
	case !m.gitPane.loaded:
		extra = "loading..."
	case m.gitPane.isRepo:
		extra = "on " + m.gitPane.branch
	}
	title := m.renderPaneTitle(paneGit, extra, layout.rightInnerWidth)

	var lines []string
	switch {
	case !m.gitPane.loaded:
	case !m.gitPane.isRepo:
		lines = append(lines, muted.Render("Not a git repository. Press i to initialise one."))
	case len(m.gitPane.status.TreeFlat) == 0:
		msg := "Working tree clean."
		if c := m.gitPane.lastCommit; c != nil {
			msg = fmt.Sprintf("Working tree clean. Last commit %s %s", c.ShortID(), firstLine(c.Message))
		}
		lines = append(lines, muted.Render(msg))
	default:
		height := m.statusListHeight(layout)
		flat := m.gitPane.status.TreeFlat
		start, end := visibleWindow(len(flat), m.gitPane.status.Index, height)
		for i := start; i < end; i++ {
			lines = append(lines, m.renderStatusRow(i, focused, layout.rightInnerWidth))
		}
	}

	sections := []string{title, strings.Join(lines, "\n")}
	if m.gitPane.diffPath != "" {
		sections = append(sections, m.gitPane.diff.View())
	}
	return m.paneStyle(focused).
		Width(layout.rightWidth).
		Height(layout.rightTopHeight).
		MaxHeight(layout.rightTopHeight).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) renderStatusRow(i int, focused bool, width int) string {
	node := m.gitPane.status.TreeFlat[i]
	indent := strings.Repeat("  ", node.Depth)
	var line string
	style := lipgloss.NewStyle().Foreground(m.theme.TextFg)
	if node.IsDir() {
		marker := "▾"
		if m.gitPane.status.CollapsedDirs[node.Path] {
			marker = "▸"
		}
		line = fmt.Sprintf("%s%s %s/", indent, marker, node.Name())
		style = style.Foreground(m.theme.Cyan)
	} else {
		f := node.File
		staged := " "
		if f.Staged {
			staged = "●"
		}
		name := node.Name()
		if f.Status == models.StatusRenamed && f.OldPath != "" {
			name = fmt.Sprintf("%s → %s", f.OldPath, name)
		}
		line = fmt.Sprintf("%s%s %s %s", indent, staged, f.Status.Short(), name)
		style = style.Foreground(m.theme.StatusColor(f.Status))
	}
	if i == m.gitPane.status.Index {
		style = m.selectedStyle(focused)
	}
	return style.Render(truncateToWidth(line, width))
}

// renderSearchPane renders the search query state and results.
func (m *Model) renderSearchPane(layout layoutDims) string {
	focused := m.view.focused == paneSearch
	muted := lipgloss.NewStyle().Foreground(m.theme.MutedFg)

	extra := m.searchFlags()
	if m.search.running {
		extra += " searching..."
	}
	title := m.renderPaneTitle(paneSearch, extra, layout.rightInnerWidth)

	var lines []string
	switch {
	case m.search.err != "":
		lines = append(lines, lipgloss.NewStyle().Foreground(m.theme.ErrorFg).Render(truncateToWidth(m.search.err, layout.rightInnerWidth)))
	case strings.TrimSpace(m.search.query) == "":
		lines = append(lines, muted.Render("Press / to search file contents."))
	case len(m.search.rows) == 0 && !m.search.running:
		lines = append(lines, muted.Render(fmt.Sprintf("No results for %q", m.search.query)))
	default:
		lines = append(lines, muted.Render(fmt.Sprintf("%q: %s", m.search.query, m.searchSummary())))
		height := max(1, layout.rightBottomInnerHeight-2)
		start, end := visibleWindow(len(m.search.rows), m.search.index, height)
		for i := start; i < end; i++ {
			lines = append(lines, m.renderSearchRow(i, focused, layout.rightInnerWidth))
		}
	}

	return m.paneStyle(focused).
		Width(layout.rightWidth).
		Height(layout.rightBottomHeight).
		MaxHeight(layout.rightBottomHeight).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(lines, "\n")))
}

func (m *Model) renderSearchRow(i int, focused bool, width int) string {
	row := m.search.rows[i]
	selected := i == m.search.index
	if row.line == nil {
		style := lipgloss.NewStyle().Foreground(m.theme.Cyan).Bold(true)
		if selected {
			style = m.selectedStyle(focused)
		}
		return style.Render(truncateToWidth(strings.TrimPrefix(row.path, "/"), width))
	}

	base := lipgloss.NewStyle().Foreground(m.theme.TextFg)
	if selected {
		base = m.selectedStyle(focused)
	}
	hit := base.Foreground(m.theme.Yellow).Bold(true)
	num := lipgloss.NewStyle().Foreground(m.theme.MutedFg).Render(fmt.Sprintf("  %4d: ", row.line.Line))

	content := row.line.Content
	var b strings.Builder
	pos := 0
	for _, span := range row.line.Spans {
		if span.Start < pos || span.End > len(content) {
			continue
		}
		b.WriteString(base.Render(content[pos:span.Start]))
		b.WriteString(hit.Render(content[span.Start:span.End]))
		pos = span.End
	}
	b.WriteString(base.Render(content[pos:]))
	return truncateToWidth(num+b.String(), width)
}

// renderSamplesPane renders the sample catalog or the selected sample.
func (m *Model) renderSamplesPane(layout layoutDims) string {
	focused := m.view.focused == paneSamples
	muted := lipgloss.NewStyle().Foreground(m.theme.MutedFg)

	sample, ok := m.selectedSample()
	extra := fmt.Sprintf("%d samples", len(m.samples.list))
	if m.samples.showing && ok {
		extra = fmt.Sprintf("%s • %s", sample.Title, sample.Language)
	}
	title := m.renderPaneTitle(paneSamples, extra, layout.rightInnerWidth)

	var body string
	if m.samples.showing && ok {
		body = lipgloss.JoinVertical(lipgloss.Left,
			muted.Render(truncateToWidth(sample.Description, layout.rightInnerWidth)),
			m.samples.code.View())
	} else {
		height := max(1, layout.rightBottomInnerHeight-1)
		start, end := visibleWindow(len(m.samples.list), m.samples.index, height)
		var lines []string
		for i := start; i < end; i++ {
			s := m.samples.list[i]
			style := lipgloss.NewStyle().Foreground(m.theme.TextFg)
			if i == m.samples.index {
				style = m.selectedStyle(focused)
			}
			line := fmt.Sprintf("%-12s %-10s %s", s.Category, s.Language, s.Title)
			lines = append(lines, style.Render(truncateToWidth(line, layout.rightInnerWidth)))
		}
		body = strings.Join(lines, "\n")
	}

	return m.paneStyle(focused).
		Width(layout.rightWidth).
		Height(layout.rightBottomHeight).
		MaxHeight(layout.rightBottomHeight).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, body))
}
