package viz

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/linmodal/internal/analysis"
	"github.com/san-kum/linmodal/internal/modal"
)

// Browser is a Bubble Tea model for stepping through the modes of a
// report and inspecting their eigenvectors.
type Browser struct {
	report  *analysis.Report
	orig    []modal.Mode
	modes   []modal.Mode
	sortKey modal.SortKey
	cursor  int
	theme   int
	styles  Styles
	width   int
	height  int
}

func NewBrowser(r *analysis.Report) Browser {
	b := Browser{
		report:  r,
		orig:    slices.Clone(r.Modes),
		sortKey: r.Options.SortBy,
		styles:  NewStyles(Themes[0]),
		width:   80,
		height:  24,
	}
	b.resort()
	return b
}

func (b *Browser) resort() {
	b.modes = slices.Clone(b.orig)
	modal.Sort(b.modes, b.sortKey)
	if b.cursor >= len(b.modes) {
		b.cursor = max(len(b.modes)-1, 0)
	}
}

func nextSortKey(k modal.SortKey) modal.SortKey {
	switch k {
	case modal.SortNone:
		return modal.SortFrequency
	case modal.SortFrequency:
		return modal.SortDamping
	}
	return modal.SortNone
}

func (b Browser) Init() tea.Cmd { return nil }

func (b Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width, b.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return b, tea.Quit
		case "up", "k":
			if b.cursor > 0 {
				b.cursor--
			}
		case "down", "j":
			if b.cursor < len(b.modes)-1 {
				b.cursor++
			}
		case "home", "g":
			b.cursor = 0
		case "end", "G":
			b.cursor = max(len(b.modes)-1, 0)
		case "s":
			b.sortKey = nextSortKey(b.sortKey)
			b.resort()
		case "t":
			b.theme = (b.theme + 1) % len(Themes)
			b.styles = NewStyles(Themes[b.theme])
		}
	}
	return b, nil
}

func (b Browser) View() string {
	s := b.styles
	var out strings.Builder
	out.WriteString("\n  " + s.Title.Render(strings.ToUpper(b.report.System)) + "  " + s.Stability(b.report.Stable()) + "\n")
	out.WriteString("  " + s.Field("sort", b.sortKey.String()) + "  " + s.Field("theme", Themes[b.theme].Name) + "\n")
	out.WriteString("  " + s.Separator(min(b.width-4, 60)) + "\n\n")

	if len(b.modes) == 0 {
		out.WriteString("  " + s.Muted.Render("no modes") + "\n")
	} else {
		out.WriteString(indent(ModeTable(b.modes, s, b.cursor), "  "))
		out.WriteString("\n\n")
		m := b.modes[b.cursor]
		out.WriteString("  " + s.Title.Render(fmt.Sprintf("mode %d", m.Index)) + "  " + s.Muted.Render(FormatEigenvalue(m)) + "\n")
		out.WriteString(indent(VectorTable(b.report.States, m, s), "  "))
		out.WriteString("\n")
	}

	out.WriteString("\n  " + s.Keys("j/k", "move", "s", "sort", "t", "theme", "q", "quit") + "\n")
	return out.String()
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// RunBrowser opens the browser full screen and blocks until it quits.
func RunBrowser(r *analysis.Report) error {
	_, err := tea.NewProgram(NewBrowser(r), tea.WithAltScreen()).Run()
	return err
}
