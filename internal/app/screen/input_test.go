package screen

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neontowel/gitix/internal/theme"
)

func typeText(s Screen, text string) Screen {
	for _, r := range text {
		s, _ = s.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return s
}

func TestInputScreenSubmit(t *testing.T) {
	var submitted string
	in := NewInputScreen("Commit message", "describe the change", theme.Dracula())
	in.OnSubmit = func(value string) tea.Cmd {
		submitted = value
		return nil
	}

	s := typeText(in, "fix typo")
	require.NotNil(t, s)
	assert.Equal(t, TypeInput, s.Type())

	next, _ := s.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, next)
	assert.Equal(t, "fix typo", submitted)
}

func TestInputScreenValidationKeepsPromptOpen(t *testing.T) {
	called := false
	in := NewInputScreen("Commit message", "", theme.Dracula())
	in.Validate = func(v string) string {
		if v == "" {
			return "message required"
		}
		return ""
	}
	in.OnSubmit = func(string) tea.Cmd {
		called = true
		return nil
	}

	next, _ := in.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, next)
	assert.False(t, called)
	assert.Equal(t, "message required", in.ErrorMsg)
	assert.Contains(t, in.View(), "message required")
}

func TestInputScreenCancel(t *testing.T) {
	cancelled := false
	in := NewInputScreen("Commit message", "", theme.Nord())
	in.OnCancel = func() tea.Cmd {
		cancelled = true
		return nil
	}
	next, _ := in.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, next)
	assert.True(t, cancelled)
}

func TestInputScreenHistory(t *testing.T) {
	in := NewInputScreen("Commit message", "", theme.Light())
	in.History = []string{"newest", "older"}
	typeText(in, "draft")

	in.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "newest", in.Value())
	in.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "older", in.Value())
	in.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "older", in.Value())

	in.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "newest", in.Value())
	in.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "draft", in.Value())
	assert.Contains(t, in.View(), "history")
}

func TestInputScreenTemplateCycle(t *testing.T) {
	in := NewInputScreen("Commit message", "", theme.Dracula())
	in.Templates = []string{"feat: ", "fix: "}
	assert.Contains(t, in.View(), "Ctrl+T template")

	s := typeText(in, "add login")
	s, _ = s.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	require.NotNil(t, s)
	assert.Equal(t, "feat: add login", in.Value())

	s, _ = s.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.Equal(t, "fix: add login", in.Value())

	// Wraps around to the first template.
	s.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.Equal(t, "feat: add login", in.Value())
}

func TestInputScreenWithoutTemplatesIgnoresCtrlT(t *testing.T) {
	in := NewInputScreen("Branch", "", theme.Dracula())
	s := typeText(in, "main")
	s, _ = s.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	require.NotNil(t, s)
	assert.Equal(t, "main", in.Value())
	assert.NotContains(t, in.View(), "Ctrl+T")
}
