package cli

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/grovetools/remux/pkg/naming"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinePrompterDecideCollision(t *testing.T) {
	tests := []struct {
		input string
		want  naming.Decision
	}{
		{"reuse\n", naming.Reuse},
		{"s\n", naming.Suffix},
		{"2\n", naming.Suffix},
		{"3\n", naming.Abort},
		{"nonsense\n", naming.Abort},
		{"", naming.Abort},
	}
	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			p := NewLinePrompter(strings.NewReader(tt.input), &out)

			got := p.DecideCollision(naming.Resolution{Name: "demo", HasRecord: true, IsLive: true})

			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Session 'demo' already exists (a running session and a saved record)")
			assert.Contains(t, out.String(), "1) reuse")
		})
	}
}

func TestLinePrompterConfirm(t *testing.T) {
	for input, want := range map[string]bool{"y\n": true, "YES\n": true, "n\n": false, "\n": false, "": false} {
		p := NewLinePrompter(strings.NewReader(input), &bytes.Buffer{})
		assert.Equal(t, want, p.ConfirmStop("demo"), "input %q", input)
	}
}

func TestLinePrompterReadsSuccessiveAnswers(t *testing.T) {
	p := NewLinePrompter(strings.NewReader("n\ny\n"), &bytes.Buffer{})
	assert.False(t, p.ConfirmStop("a"))
	assert.True(t, p.ConfirmStop("b"))
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func runKeys(m choiceModel, keys ...string) (choiceModel, bool) {
	quit := false
	for _, k := range keys {
		next, cmd := m.Update(keyMsg(k))
		m = next.(choiceModel)
		if cmd != nil {
			quit = true
		}
	}
	return m, quit
}

func TestChoiceModel(t *testing.T) {
	tests := []struct {
		name   string
		keys   []string
		chosen int
	}{
		{"enter picks first", []string{"enter"}, 0},
		{"down then enter", []string{"down", "enter"}, 1},
		{"cursor stops at end", []string{"down", "down", "down", "down", "enter"}, 2},
		{"cursor stops at start", []string{"up", "enter"}, 0},
		{"shortcut key", []string{"s"}, 1},
		{"escape cancels", []string{"down", "esc"}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, quit := runKeys(newChoiceModel("?", CollisionChoices), tt.keys...)
			assert.True(t, quit)
			assert.Equal(t, tt.chosen, m.chosen)
			assert.True(t, m.done)
		})
	}
}

func TestChoiceModelView(t *testing.T) {
	m := newChoiceModel("Session 'demo' already exists", CollisionChoices)
	view := m.View()
	require.Contains(t, view, "Session 'demo' already exists")
	for _, c := range CollisionChoices {
		assert.Contains(t, view, c.Label)
	}
	assert.Contains(t, view, "enter select")

	m, _ = runKeys(m, "enter")
	assert.Empty(t, m.View())
}
