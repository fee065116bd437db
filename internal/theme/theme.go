// Package theme provides the colour palettes of the TUI.
package theme

import (
	"sort"

	"github.com/charmbracelet/lipgloss"

	"github.com/chmouel/codecanvas/internal/models"
)

// Theme defines all colors used in the application UI.
type Theme struct {
	Name       string
	Light      bool
	Background lipgloss.Color
	Accent     lipgloss.Color
	AccentFg   lipgloss.Color // Foreground color for text on Accent background
	AccentDim  lipgloss.Color
	Border     lipgloss.Color
	MutedFg    lipgloss.Color
	TextFg     lipgloss.Color
	SuccessFg  lipgloss.Color
	WarnFg     lipgloss.Color
	ErrorFg    lipgloss.Color
	Cyan       lipgloss.Color
	Pink       lipgloss.Color
	Yellow     lipgloss.Color
}

// Theme names.
const (
	DraculaName        = "dracula"
	DraculaLightName   = "dracula-light"
	NarnaName          = "narna"
	NordName           = "nord"
	GruvboxDarkName    = "gruvbox-dark"
	SolarizedLightName = "solarized-light"
)

var registry = map[string]func() *Theme{
	DraculaName: func() *Theme {
		return &Theme{
			Background: "#282A36",
			Accent:     "#BD93F9",
			AccentFg:   "#282A36",
			AccentDim:  "#44475A",
			Border:     "#6272A4",
			MutedFg:    "#6272A4",
			TextFg:     "#F8F8F2",
			SuccessFg:  "#50FA7B",
			WarnFg:     "#FFB86C",
			ErrorFg:    "#FF5555",
			Cyan:       "#8BE9FD",
			Pink:       "#FF79C6",
			Yellow:     "#F1FA8C",
		}
	},
	DraculaLightName: func() *Theme {
		return &Theme{
			Light:      true,
			Background: "#FFFFFF",
			Accent:     "#C6DBE5",
			AccentFg:   "#24292F",
			AccentDim:  "#F3E8FF",
			Border:     "#D0D7DE",
			MutedFg:    "#6E7781",
			TextFg:     "#24292F",
			SuccessFg:  "#059669",
			WarnFg:     "#D97706",
			ErrorFg:    "#DC2626",
			Cyan:       "#0891B2",
			Pink:       "#DB2777",
			Yellow:     "#CA8A04",
		}
	},
	NarnaName: func() *Theme {
		return &Theme{
			Background: "#0D1117",
			Accent:     "#41ADFF",
			AccentFg:   "#0D1117",
			AccentDim:  "#1A2230",
			Border:     "#30363D",
			MutedFg:    "#8B949E",
			TextFg:     "#E6EDF3",
			SuccessFg:  "#3FB950",
			WarnFg:     "#E3B341",
			ErrorFg:    "#F47067",
			Cyan:       "#7CE0F3",
			Pink:       "#D2A8FF",
			Yellow:     "#F2CC60",
		}
	},
	NordName: func() *Theme {
		return &Theme{
			Background: "#2E3440",
			Accent:     "#88C0D0",
			AccentFg:   "#2E3440",
			AccentDim:  "#3B4252",
			Border:     "#4C566A",
			MutedFg:    "#616E88",
			TextFg:     "#ECEFF4",
			SuccessFg:  "#A3BE8C",
			WarnFg:     "#D08770",
			ErrorFg:    "#BF616A",
			Cyan:       "#8FBCBB",
			Pink:       "#B48EAD",
			Yellow:     "#EBCB8B",
		}
	},
	GruvboxDarkName: func() *Theme {
		return &Theme{
			Background: "#282828",
			Accent:     "#FABD2F",
			AccentFg:   "#282828",
			AccentDim:  "#3C3836",
			Border:     "#504945",
			MutedFg:    "#928374",
			TextFg:     "#EBDBB2",
			SuccessFg:  "#B8BB26",
			WarnFg:     "#FE8019",
			ErrorFg:    "#FB4934",
			Cyan:       "#8EC07C",
			Pink:       "#D3869B",
			Yellow:     "#FABD2F",
		}
	},
	SolarizedLightName: func() *Theme {
		return &Theme{
			Light:      true,
			Background: "#FDF6E3",
			Accent:     "#268BD2",
			AccentFg:   "#FDF6E3",
			AccentDim:  "#EEE8D5",
			Border:     "#93A1A1",
			MutedFg:    "#93A1A1",
			TextFg:     "#586E75",
			SuccessFg:  "#859900",
			WarnFg:     "#CB4B16",
			ErrorFg:    "#DC322F",
			Cyan:       "#2AA198",
			Pink:       "#D33682",
			Yellow:     "#B58900",
		}
	},
}

// GetTheme returns a theme by name, or Dracula if not found.
func GetTheme(name string) *Theme {
	build, ok := registry[name]
	if !ok {
		name = DraculaName
		build = registry[DraculaName]
	}
	t := build()
	t.Name = name
	return t
}

// Exists reports whether name is a known theme.
func Exists(name string) bool {
	_, ok := registry[name]
	return ok
}

// AvailableThemes returns the sorted theme names.
func AvailableThemes() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StatusColor returns the colour used for a file status marker.
func (t *Theme) StatusColor(status models.FileStatus) lipgloss.Color {
	switch status {
	case models.StatusAdded:
		return t.SuccessFg
	case models.StatusModified:
		return t.WarnFg
	case models.StatusDeleted:
		return t.ErrorFg
	case models.StatusRenamed:
		return t.Cyan
	case models.StatusUntracked:
		return t.Pink
	default:
		return t.TextFg
	}
}
