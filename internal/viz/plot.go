package viz

import (
	"fmt"
	"math"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/linmodal/internal/analysis"
)

const (
	plotWidth  = 70
	plotHeight = 12
)

// SweepPlot charts the largest real part against the swept parameter.
// Points above zero are unstable.
func SweepPlot(points []analysis.SweepPoint, param string) string {
	if len(points) == 0 {
		return ""
	}
	data := analysis.Series(points, analysis.MaxReal)
	caption := fmt.Sprintf("max Re(λ) for %s in [%g, %g]",
		param, points[0].Value, points[len(points)-1].Value)
	return asciigraph.Plot(data,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(caption),
	)
}

// FrequencyPlot charts the lowest modal frequency across a sweep. Points
// without an oscillatory mode are left as gaps.
func FrequencyPlot(points []analysis.SweepPoint, param string) string {
	if len(points) == 0 {
		return ""
	}
	data := analysis.Series(points, lowestFrequency)
	if allNaN(data) {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption("lowest modal frequency (Hz) vs "+param),
	)
}

func lowestFrequency(r *analysis.Report) float64 {
	f := math.NaN()
	for _, m := range r.Modes {
		if m.Oscillatory() && (math.IsNaN(f) || m.Frequency < f) {
			f = m.Frequency
		}
	}
	return f
}

// SpectrumPlot charts power against frequency up to maxHz. A maxHz of
// zero plots every bin.
func SpectrumPlot(freqs, power []float64, maxHz float64) string {
	n := len(freqs)
	if maxHz > 0 {
		for n > 0 && freqs[n-1] > maxHz {
			n--
		}
	}
	if n == 0 {
		return ""
	}
	caption := fmt.Sprintf("power spectrum, 0 to %.3g Hz", freqs[n-1])
	return asciigraph.Plot(power[:n],
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(caption),
	)
}

func allNaN(data []float64) bool {
	for _, v := range data {
		if !math.IsNaN(v) {
			return false
		}
	}
	return true
}
