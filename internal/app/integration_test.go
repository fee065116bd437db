package app

import (
	"bytes"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgramSession(t *testing.T) {
	f := newFixture(t, map[string]string{
		"/docs/guide.md": "# guide\n",
		"/main.go":       "package main\n",
	})

	tm := teatest.NewTestModel(t, f.model, teatest.WithInitialTermSize(120, 40))

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("Explorer")) && bytes.Contains(out, []byte("main.go"))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	tm.Send(tea.KeyMsg{Type: tea.KeyTab})
	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	tm.WaitFinished(t, teatest.WithFinalTimeout(3*time.Second))

	m, ok := tm.FinalModel(t).(*Model)
	require.True(t, ok)
	assert.True(t, m.quitting)
	assert.Equal(t, paneGit, m.view.focused)
	assert.Equal(t, []string{"/docs", "/docs/guide.md", "/main.go"}, explorerPaths(m))
	assert.False(t, m.gitPane.isRepo)
}
