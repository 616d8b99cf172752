package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles is the set of lipgloss styles derived from a Theme.
type Styles struct {
	Title    lipgloss.Style
	Header   lipgloss.Style
	Cell     lipgloss.Style
	Selected lipgloss.Style
	Muted    lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Stable   lipgloss.Style
	Unstable lipgloss.Style
	Border   lipgloss.Style
	KeyHint  lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Header:   lipgloss.NewStyle().Bold(true).Foreground(t.Secondary).Padding(0, 1),
		Cell:     lipgloss.NewStyle().Foreground(t.Text).Padding(0, 1),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(t.Accent).Padding(0, 1),
		Muted:    lipgloss.NewStyle().Foreground(t.Muted),
		Label:    lipgloss.NewStyle().Foreground(t.Muted),
		Value:    lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Stable:   lipgloss.NewStyle().Bold(true).Foreground(t.Stable),
		Unstable: lipgloss.NewStyle().Bold(true).Foreground(t.Unstable),
		Border:   lipgloss.NewStyle().Foreground(t.Border),
		KeyHint:  lipgloss.NewStyle().Foreground(t.Muted).Italic(true),
	}
}

func (s Styles) Stability(stable bool) string {
	if stable {
		return s.Stable.Render("stable")
	}
	return s.Unstable.Render("unstable")
}

func (s Styles) Field(label, value string) string {
	return s.Label.Render(label+": ") + s.Value.Render(value)
}

// Separator draws a muted rule with a diamond in the middle.
func (s Styles) Separator(width int) string {
	if width < 8 {
		width = 8
	}
	mid := width / 2
	return s.Muted.Render(strings.Repeat("─", mid-3) + " ◆ " + strings.Repeat("─", width-mid-3))
}

func (s Styles) Keys(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(s.Title.Render(pairs[i]))
		b.WriteString(s.KeyHint.Render(" " + pairs[i+1]))
	}
	return b.String()
}
