// Package screen provides the modal overlays drawn on top of the status view.
package screen

import tea "github.com/charmbracelet/bubbletea"

// Screen is a modal overlay that handles keys and renders itself.
type Screen interface {
	// Update processes a key. Returning a nil Screen closes the overlay.
	Update(msg tea.KeyMsg) (Screen, tea.Cmd)
	View() string
	Type() Type
}

// Type identifies the kind of overlay.
type Type int

// Overlay kinds.
const (
	TypeNone Type = iota
	TypeInput
	TypeHelp
)

func (t Type) String() string {
	switch t {
	case TypeInput:
		return "input"
	case TypeHelp:
		return "help"
	default:
		return "none"
	}
}

const (
	keyEnter = "enter"
	keyEsc   = "esc"
	keyCtrlC = "ctrl+c"
	keyCtrlT = "ctrl+t"
)
