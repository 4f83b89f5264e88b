package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines color scheme for the player chrome. Mono animations are
// drawn in Foreground; colored ones keep their own cell colors.
type Theme struct {
	Name       string
	Foreground lipgloss.Color
	Border     lipgloss.Color
	Title      lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Playing    lipgloss.Color
	Paused     lipgloss.Color
	Stopped    lipgloss.Color
}

var (
	ThemeDefault = Theme{
		Name:       "default",
		Foreground: lipgloss.Color("252"),
		Border:     lipgloss.Color("240"),
		Title:      lipgloss.Color("86"),
		Accent:     lipgloss.Color("205"),
		Muted:      lipgloss.Color("245"),
		Playing:    lipgloss.Color("#00ff88"),
		Paused:     lipgloss.Color("#ffaa00"),
		Stopped:    lipgloss.Color("#ff4444"),
	}

	ThemePhosphor = Theme{
		Name:       "phosphor",
		Foreground: lipgloss.Color("#33ff33"), // P1 green
		Border:     lipgloss.Color("#005500"),
		Title:      lipgloss.Color("#88ff88"),
		Accent:     lipgloss.Color("#ccffcc"),
		Muted:      lipgloss.Color("#228822"),
		Playing:    lipgloss.Color("#88ff88"),
		Paused:     lipgloss.Color("#ffff00"),
		Stopped:    lipgloss.Color("#ff0000"),
	}

	ThemeAmber = Theme{
		Name:       "amber",
		Foreground: lipgloss.Color("#ffb000"), // P3 amber
		Border:     lipgloss.Color("#664400"),
		Title:      lipgloss.Color("#ffcc00"),
		Accent:     lipgloss.Color("#ffe680"),
		Muted:      lipgloss.Color("#996600"),
		Playing:    lipgloss.Color("#ffcc00"),
		Paused:     lipgloss.Color("#ff8800"),
		Stopped:    lipgloss.Color("#ff4400"),
	}

	ThemePaper = Theme{
		Name:       "paper",
		Foreground: lipgloss.Color("#222222"),
		Border:     lipgloss.Color("#aaaaaa"),
		Title:      lipgloss.Color("#0055aa"),
		Accent:     lipgloss.Color("#aa0055"),
		Muted:      lipgloss.Color("#777777"),
		Playing:    lipgloss.Color("#008800"),
		Paused:     lipgloss.Color("#aa6600"),
		Stopped:    lipgloss.Color("#aa0000"),
	}

	ThemeOcean = Theme{
		Name:       "ocean",
		Foreground: lipgloss.Color("#e0f0ff"),
		Border:     lipgloss.Color("#4488aa"),
		Title:      lipgloss.Color("#00a8cc"),
		Accent:     lipgloss.Color("#ffd700"),
		Muted:      lipgloss.Color("#4488aa"),
		Playing:    lipgloss.Color("#00ff88"),
		Paused:     lipgloss.Color("#ffcc00"),
		Stopped:    lipgloss.Color("#ff4444"),
	}

	Themes = []Theme{
		ThemeDefault,
		ThemePhosphor,
		ThemeAmber,
		ThemePaper,
		ThemeOcean,
	}
)

// GetTheme returns a theme by name, falling back to the default.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeDefault
}

// NextTheme returns the theme after t in Themes.
func NextTheme(t Theme) Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return ThemeDefault
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
