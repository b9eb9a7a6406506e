// Package theme holds the colour palettes used by the gitix TUI.
package theme

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// Theme is the set of colours the TUI draws with.
type Theme struct {
	Accent    lipgloss.Color
	AccentFg  lipgloss.Color // text drawn on Accent
	AccentDim lipgloss.Color
	Border    lipgloss.Color
	BorderDim lipgloss.Color
	MutedFg   lipgloss.Color
	TextFg    lipgloss.Color
	SuccessFg lipgloss.Color
	WarnFg    lipgloss.Color
	ErrorFg   lipgloss.Color

	Staged    lipgloss.Color
	Unstaged  lipgloss.Color
	Untracked lipgloss.Color
}

// Theme names accepted by the theme configuration key.
const (
	DraculaName = "dracula"
	NordName    = "nord"
	LightName   = "light"
)

// DefaultName is used when no theme is configured.
const DefaultName = DraculaName

// Dracula is the default dark palette.
func Dracula() *Theme {
	return &Theme{
		Accent:    lipgloss.Color("#BD93F9"),
		AccentFg:  lipgloss.Color("#282A36"),
		AccentDim: lipgloss.Color("#44475A"),
		Border:    lipgloss.Color("#6272A4"),
		BorderDim: lipgloss.Color("#44475A"),
		MutedFg:   lipgloss.Color("#6272A4"),
		TextFg:    lipgloss.Color("#F8F8F2"),
		SuccessFg: lipgloss.Color("#50FA7B"),
		WarnFg:    lipgloss.Color("#FFB86C"),
		ErrorFg:   lipgloss.Color("#FF5555"),
		Staged:    lipgloss.Color("#50FA7B"),
		Unstaged:  lipgloss.Color("#FFB86C"),
		Untracked: lipgloss.Color("#8BE9FD"),
	}
}

// Nord is a muted dark palette.
func Nord() *Theme {
	return &Theme{
		Accent:    lipgloss.Color("#88C0D0"),
		AccentFg:  lipgloss.Color("#2E3440"),
		AccentDim: lipgloss.Color("#3B4252"),
		Border:    lipgloss.Color("#4C566A"),
		BorderDim: lipgloss.Color("#3B4252"),
		MutedFg:   lipgloss.Color("#616E88"),
		TextFg:    lipgloss.Color("#ECEFF4"),
		SuccessFg: lipgloss.Color("#A3BE8C"),
		WarnFg:    lipgloss.Color("#EBCB8B"),
		ErrorFg:   lipgloss.Color("#BF616A"),
		Staged:    lipgloss.Color("#A3BE8C"),
		Unstaged:  lipgloss.Color("#EBCB8B"),
		Untracked: lipgloss.Color("#81A1C1"),
	}
}

// Light is a palette for light terminal backgrounds.
func Light() *Theme {
	return &Theme{
		Accent:    lipgloss.Color("#0969DA"),
		AccentFg:  lipgloss.Color("#FFFFFF"),
		AccentDim: lipgloss.Color("#DDF4FF"),
		Border:    lipgloss.Color("#D0D7DE"),
		BorderDim: lipgloss.Color("#E8E8E8"),
		MutedFg:   lipgloss.Color("#6E7781"),
		TextFg:    lipgloss.Color("#24292F"),
		SuccessFg: lipgloss.Color("#1A7F37"),
		WarnFg:    lipgloss.Color("#9A6700"),
		ErrorFg:   lipgloss.Color("#CF222E"),
		Staged:    lipgloss.Color("#1A7F37"),
		Unstaged:  lipgloss.Color("#9A6700"),
		Untracked: lipgloss.Color("#0550AE"),
	}
}

var themes = map[string]func() *Theme{
	DraculaName: Dracula,
	NordName:    Nord,
	LightName:   Light,
}

// GetTheme returns the named palette, falling back to the default one.
func GetTheme(name string) *Theme {
	if fn, ok := themes[name]; ok {
		return fn()
	}
	return themes[DefaultName]()
}

// IsKnown reports whether name is a built in theme.
func IsKnown(name string) bool {
	_, ok := themes[name]
	return ok
}

// AvailableThemes lists the theme names in sorted order.
func AvailableThemes() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
