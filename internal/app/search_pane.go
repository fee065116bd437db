package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/chmouel/codecanvas/internal/apperr"
	"github.com/chmouel/codecanvas/internal/models"
	"github.com/chmouel/codecanvas/internal/search"
)

// searchRow is one selectable line of the results list: a file header
// (line nil) or one matching line below it.
type searchRow struct {
	path string
	line *models.LineMatch
}

func (m *Model) openSearchInput() tea.Cmd {
	return m.input.open(inputSearch, "Search", "", m.search.query, "Search files...")
}

// scheduleSearch starts the debounce window for the current query. Only
// the tick carrying the latest sequence number runs a search.
func (m *Model) scheduleSearch() tea.Cmd {
	m.search.seq++
	seq := m.search.seq
	delay := time.Duration(m.config.SearchDebounceMS) * time.Millisecond
	if delay <= 0 {
		return m.startSearch()
	}
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return searchDebounceMsg{seq: seq}
	})
}

func (m *Model) handleSearchDebounce(msg searchDebounceMsg) tea.Cmd {
	if msg.seq != m.search.seq {
		return nil
	}
	return m.startSearch()
}

// startSearch issues a search for the current query, superseding any
// search still in flight.
func (m *Model) startSearch() tea.Cmd {
	query := m.search.query
	m.search.err = ""
	if strings.TrimSpace(query) == "" {
		m.search.searcher.Reset()
		m.search.running = false
		m.setSearchResults(nil)
		return nil
	}

	ctx, token := m.search.searcher.Begin(m.ctx)
	opts := m.search.options
	tree := m.tree.Snapshot()
	m.search.running = true
	return func() tea.Msg {
		matches, err := search.Run(ctx, tree, query, opts)
		return searchResultMsg{token: token, query: query, matches: matches, err: err}
	}
}

func (m *Model) handleSearchResult(msg searchResultMsg) {
	if !m.search.searcher.Accept(msg.token) {
		logger.Debugf("dropping stale results for %q", msg.query)
		return
	}
	m.search.running = false
	if msg.err != nil {
		if errors.Is(msg.err, context.Canceled) {
			return
		}
		if apperr.IsValidation(msg.err) {
			m.search.err = errorText(msg.err)
			m.setSearchResults(nil)
			return
		}
		m.showError(msg.err)
		return
	}
	m.setSearchResults(msg.matches)
}

func (m *Model) setSearchResults(matches []models.SearchMatch) {
	m.search.results = matches
	m.search.rows = m.search.rows[:0]
	for _, match := range matches {
		m.search.rows = append(m.search.rows, searchRow{path: match.Path})
		for i := range match.Lines {
			m.search.rows = append(m.search.rows, searchRow{path: match.Path, line: &match.Lines[i]})
		}
	}
	if m.search.index >= len(m.search.rows) {
		m.search.index = 0
	}
}

// searchSummary describes the result set, e.g. "12 results in 3 files".
func (m *Model) searchSummary() string {
	total := 0
	for _, match := range m.search.results {
		total += match.Count()
	}
	return fmt.Sprintf("%d %s in %d %s",
		total, plural(total, "result", "results"),
		len(m.search.results), plural(len(m.search.results), "file", "files"))
}

// toggleSearchOption flips case, whole word or regex matching and reruns
// the current query.
func (m *Model) toggleSearchOption(msg tea.KeyMsg) (tea.Cmd, bool) {
	opts := &m.search.options
	switch {
	case key.Matches(msg, m.keys.Case):
		opts.CaseSensitive = !opts.CaseSensitive
	case key.Matches(msg, m.keys.WholeWord):
		opts.WholeWord = !opts.WholeWord
	case key.Matches(msg, m.keys.Regex):
		opts.Regex = !opts.Regex
	default:
		return nil, false
	}
	m.search.seq++
	return m.startSearch(), true
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	if cmd, ok := m.toggleSearchOption(msg); ok {
		return cmd
	}
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.search.index > 0 {
			m.search.index--
		}
	case key.Matches(msg, m.keys.Down):
		if m.search.index < len(m.search.rows)-1 {
			m.search.index++
		}
	case key.Matches(msg, m.keys.PageUp):
		m.search.index = max(0, m.search.index-m.pageSize())
	case key.Matches(msg, m.keys.PageDown):
		m.search.index = max(0, min(len(m.search.rows)-1, m.search.index+m.pageSize()))
	case key.Matches(msg, m.keys.Enter):
		if m.search.index >= len(m.search.rows) {
			return nil
		}
		row := m.search.rows[m.search.index]
		line := 0
		if row.line != nil {
			line = row.line.Line
		}
		m.revealInExplorer(row.path)
		node := m.tree.Find(row.path)
		if node == nil {
			m.showError(apperr.FileSystem(apperr.CodeNotFound, "no such file: "+row.path, nil))
			return nil
		}
		return m.openFile(node, line)
	case key.Matches(msg, m.keys.Refresh):
		m.search.seq++
		return m.startSearch()
	}
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
