package viz

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/san-kum/linmodal/internal/analysis"
	"github.com/san-kum/linmodal/internal/modal"
	"github.com/san-kum/linmodal/internal/symbolic"
)

var modeHeaders = []string{"#", "EIGENVALUE", "FREQ (Hz)", "DAMPING", "KIND"}

// FormatEigenvalue prints a+bi with four significant decimals, showing
// only the positive member of a conjugate pair.
func FormatEigenvalue(m modal.Mode) string {
	if !m.Oscillatory() {
		return formatNumber(m.Real)
	}
	return fmt.Sprintf("%s ± %si", formatNumber(m.Real), formatNumber(math.Abs(m.Imag)))
}

func formatNumber(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return strconv.FormatFloat(v, 'g', 5, 64)
}

func modeRow(m modal.Mode) []string {
	kind := "oscillatory"
	if !m.Oscillatory() {
		kind = "aperiodic"
	}
	freq := "-"
	if m.Oscillatory() {
		freq = formatNumber(m.Frequency)
	}
	return []string{
		strconv.Itoa(m.Index),
		FormatEigenvalue(m),
		freq,
		formatNumber(m.Damping),
		kind,
	}
}

// ModeTable renders modes as a bordered table. selected highlights one
// row; pass -1 for none.
func ModeTable(modes []modal.Mode, s Styles, selected int) string {
	rows := make([][]string, len(modes))
	for i, m := range modes {
		rows[i] = modeRow(m)
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(s.Border).
		Headers(modeHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return s.Header
			case row == selected:
				return s.Selected
			}
			return s.Cell
		})
	return t.Render()
}

// VectorTable shows the magnitude and phase of each eigenvector
// component next to its state.
func VectorTable(states []string, m modal.Mode, s Styles) string {
	rows := make([][]string, len(m.Vector))
	for i, c := range m.Vector {
		name := fmt.Sprintf("x%d", i)
		if i < len(states) {
			name = states[i]
		}
		rows[i] = []string{
			name,
			formatNumber(cmplx.Abs(c)),
			formatNumber(cmplx.Phase(c) * 180 / math.Pi),
		}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(s.Border).
		Headers("STATE", "|v|", "PHASE (deg)").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.Header
			}
			return s.Cell
		}).
		Render()
}

// MatrixView renders a symbolic matrix, one row per line.
func MatrixView(m *symbolic.Matrix, s Styles) string {
	rows := make([][]string, m.Rows())
	for i := range rows {
		rows[i] = make([]string, m.Cols())
		for j := range rows[i] {
			rows[i][j] = m.Get(i, j).String()
		}
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.Border).
		BorderRow(false).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style { return s.Cell }).
		Render()
}

// ReportView renders the header, summary and mode table of a report.
func ReportView(r *analysis.Report, s Styles) string {
	var b strings.Builder
	b.WriteString(s.Title.Render(strings.ToUpper(r.System)))
	b.WriteString("  ")
	b.WriteString(s.Stability(r.Stable()))
	b.WriteString("\n")

	point := make([]string, len(r.FixedPoint))
	for i, e := range r.FixedPoint {
		name := fmt.Sprintf("x%d", i)
		if i < len(r.States) {
			name = r.States[i]
		}
		point[i] = name + "=" + e.String()
	}
	b.WriteString(s.Field("fixed point", strings.Join(point, ", ")))
	b.WriteString("\n")
	b.WriteString(s.Field("params", formatParams(r.Params)))
	b.WriteString("\n")
	b.WriteString(s.Field("modes", fmt.Sprintf("%d (%d oscillatory, %d aperiodic)",
		r.Summary.Modes, r.Summary.Oscillatory, r.Summary.Aperiodic)))
	b.WriteString("\n")
	if r.Summary.Modes > 0 {
		b.WriteString(s.Field("max real part", formatNumber(r.Summary.MaxReal)))
		b.WriteString("\n")
	}
	if ld := r.Summary.LeastDamped; ld != nil {
		b.WriteString(s.Field("least damped", fmt.Sprintf("mode %d, %s Hz, damping %s",
			ld.Index, formatNumber(ld.Frequency), formatNumber(ld.Damping))))
		b.WriteString("\n")
	}
	b.WriteString(ModeTable(r.Modes, s, -1))
	b.WriteString("\n")
	return b.String()
}

func formatParams(params map[string]float64) string {
	names := make([]string, 0, len(params))
	for k := range params {
		names = append(names, k)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, k := range names {
		parts[i] = k + "=" + formatNumber(params[k])
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}
