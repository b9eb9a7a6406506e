package screen

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/neontowel/gitix/internal/theme"
)

// ConventionalCommitPrefixes are the conventional commit types offered by
// the template key of the commit prompt.
var ConventionalCommitPrefixes = []string{
	"feat: ", "fix: ", "docs: ", "style: ", "refactor: ", "test: ", "chore: ",
}

// InputScreen is a single line prompt with validation and history.
type InputScreen struct {
	Prompt   string
	Input    textinput.Model
	ErrorMsg string
	Thm      *theme.Theme

	// Validate returns a non-empty message to keep the prompt open.
	Validate func(string) string
	OnSubmit func(value string) tea.Cmd
	OnCancel func() tea.Cmd

	// History is browsed with up/down, newest first.
	History       []string
	HistoryIndex  int // -1 when not browsing
	OriginalInput string

	// Templates are cycled with ctrl+t, replacing a template already at the
	// start of the input.
	Templates     []string
	templateIndex int

	boxWidth int
}

// NewInputScreen creates a focused prompt.
func NewInputScreen(prompt, placeholder string, thm *theme.Theme) *InputScreen {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()
	ti.CharLimit = 500
	ti.Prompt = ""
	ti.TextStyle = lipgloss.NewStyle().Foreground(thm.TextFg)
	ti.Width = 52

	return &InputScreen{
		Prompt:       prompt,
		Input:        ti,
		Thm:          thm,
		HistoryIndex: -1,
		boxWidth:     60,
	}
}

// Type returns the screen type.
func (s *InputScreen) Type() Type { return TypeInput }

// Value returns the current text.
func (s *InputScreen) Value() string { return s.Input.Value() }

// Update handles keyboard input for the prompt.
func (s *InputScreen) Update(msg tea.KeyMsg) (Screen, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.String() {
	case keyEnter:
		value := s.Input.Value()
		if s.Validate != nil {
			if errMsg := strings.TrimSpace(s.Validate(value)); errMsg != "" {
				s.ErrorMsg = errMsg
				return s, nil
			}
		}
		s.ErrorMsg = ""
		if s.OnSubmit != nil {
			cmd = s.OnSubmit(value)
		}
		return nil, cmd

	case keyEsc, keyCtrlC:
		if s.OnCancel != nil {
			return nil, s.OnCancel()
		}
		return nil, nil

	case "up":
		if len(s.History) > 0 {
			if s.HistoryIndex == -1 {
				s.OriginalInput = s.Input.Value()
			}
			if s.HistoryIndex < len(s.History)-1 {
				s.HistoryIndex++
			}
			s.Input.SetValue(s.History[s.HistoryIndex])
			s.Input.CursorEnd()
			return s, nil
		}

	case keyCtrlT:
		if len(s.Templates) > 0 {
			s.applyNextTemplate()
			return s, nil
		}

	case "down":
		if s.HistoryIndex >= 0 {
			s.HistoryIndex--
			if s.HistoryIndex == -1 {
				s.Input.SetValue(s.OriginalInput)
			} else {
				s.Input.SetValue(s.History[s.HistoryIndex])
			}
			s.Input.CursorEnd()
			return s, nil
		}
	}

	if msg.Type == tea.KeyRunes || msg.Type == tea.KeyBackspace || msg.Type == tea.KeyDelete {
		s.HistoryIndex = -1
	}
	s.Input, cmd = s.Input.Update(msg)
	return s, cmd
}

func (s *InputScreen) applyNextTemplate() {
	value := s.Input.Value()
	for _, t := range s.Templates {
		if strings.HasPrefix(value, t) {
			value = strings.TrimPrefix(value, t)
			break
		}
	}
	s.Input.SetValue(s.Templates[s.templateIndex] + value)
	s.Input.CursorEnd()
	s.templateIndex = (s.templateIndex + 1) % len(s.Templates)
	s.HistoryIndex = -1
}

// View renders the prompt as a centred box.
func (s *InputScreen) View() string {
	width := s.boxWidth
	inner := width - 6

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.Thm.Accent).
		Padding(1, 2).
		Width(width)
	promptStyle := lipgloss.NewStyle().
		Foreground(s.Thm.Accent).
		Bold(true).
		Width(inner).
		Align(lipgloss.Center)
	inputStyle := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(s.Thm.Border).
		Padding(0, 1).
		Width(inner)
	footerStyle := lipgloss.NewStyle().
		Foreground(s.Thm.MutedFg).
		Width(inner).
		Align(lipgloss.Center)

	lines := []string{
		promptStyle.Render(s.Prompt),
		inputStyle.Render(s.Input.View()),
	}
	if s.ErrorMsg != "" {
		lines = append(lines, lipgloss.NewStyle().
			Foreground(s.Thm.ErrorFg).
			Width(inner).
			Align(lipgloss.Center).
			Render(s.ErrorMsg))
	}
	footer := "Enter to confirm • Esc to cancel"
	if len(s.Templates) > 0 {
		footer = fmt.Sprintf("Ctrl+T template • %s", footer)
	}
	if len(s.History) > 0 {
		footer = fmt.Sprintf("↑↓ history • %s", footer)
	}
	lines = append(lines, footerStyle.Render(footer))

	return boxStyle.Render(strings.Join(lines, "\n\n"))
}
