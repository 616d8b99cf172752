package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines the color scheme for tables and the browser.
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Border    lipgloss.Color
	Stable    lipgloss.Color
	Unstable  lipgloss.Color
}

var (
	ThemeOcean = Theme{
		Name:      "ocean",
		Primary:   lipgloss.Color("#00a8cc"),
		Secondary: lipgloss.Color("#0077be"),
		Accent:    lipgloss.Color("#ffd700"),
		Text:      lipgloss.Color("#e0f0ff"),
		Muted:     lipgloss.Color("#4488aa"),
		Border:    lipgloss.Color("#444466"),
		Stable:    lipgloss.Color("#00ff88"),
		Unstable:  lipgloss.Color("#ff4444"),
	}

	ThemeCyberpunk = Theme{
		Name:      "cyberpunk",
		Primary:   lipgloss.Color("#00ffff"),
		Secondary: lipgloss.Color("#ff00ff"),
		Accent:    lipgloss.Color("#ffff00"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#666688"),
		Border:    lipgloss.Color("#444466"),
		Stable:    lipgloss.Color("#00ff00"),
		Unstable:  lipgloss.Color("#ff0000"),
	}

	ThemeMinimal = Theme{
		Name:      "minimal",
		Primary:   lipgloss.Color("#ffffff"),
		Secondary: lipgloss.Color("#cccccc"),
		Accent:    lipgloss.Color("#0088ff"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#888888"),
		Border:    lipgloss.Color("#555555"),
		Stable:    lipgloss.Color("#00ff00"),
		Unstable:  lipgloss.Color("#ff0000"),
	}

	Themes = []Theme{ThemeOcean, ThemeCyberpunk, ThemeMinimal}
)

// GetTheme returns a theme by name, falling back to the first one.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
