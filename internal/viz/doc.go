// Package viz renders modal reports in the terminal.
//
//   - [ModeTable] and [ReportView]: static lipgloss tables for CLI output
//   - [SweepPlot], [FrequencyPlot] and [SpectrumPlot]: asciigraph charts
//   - [Browser]: an interactive Bubble Tea mode browser
//
// # Key Bindings
//
//	j/k   - Move between modes
//	s     - Cycle sort order (none, frequency, damping)
//	t     - Cycle color themes
//	q     - Quit
package viz
