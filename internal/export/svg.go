// Package export writes eigenvalue plots as standalone SVG.
package export

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/san-kum/linmodal/internal/analysis"
	"github.com/san-kum/linmodal/internal/modal"
)

// Point is a location in the complex plane.
type Point struct {
	X, Y float64
}

// EigenPoints returns every eigenvalue represented by modes, restoring the
// conjugate each oscillatory mode stands for.
func EigenPoints(modes []modal.Mode) []Point {
	pts := make([]Point, 0, 2*len(modes))
	for _, m := range modes {
		pts = append(pts, Point{m.Real, m.Imag})
		if m.Oscillatory() {
			pts = append(pts, Point{m.Real, -m.Imag})
		}
	}
	return pts
}

// Locus collects the modes of each sweep point in order.
func Locus(points []analysis.SweepPoint) [][]modal.Mode {
	frames := make([][]modal.Mode, len(points))
	for i, p := range points {
		frames[i] = p.Report.Modes
	}
	return frames
}

type bounds struct {
	minX, maxX, minY, maxY float64
}

func boundsOf(frames [][]Point) bounds {
	// The imaginary axis is always in view.
	b := bounds{minX: 0, maxX: 0, minY: 0, maxY: 0}
	for _, f := range frames {
		for _, p := range f {
			if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
				continue
			}
			b.minX, b.maxX = math.Min(b.minX, p.X), math.Max(b.maxX, p.X)
			b.minY, b.maxY = math.Min(b.minY, p.Y), math.Max(b.maxY, p.Y)
		}
	}
	rangeX, rangeY := b.maxX-b.minX, b.maxY-b.minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	b.minX -= rangeX * 0.1
	b.maxX += rangeX * 0.1
	b.minY -= rangeY * 0.1
	b.maxY += rangeY * 0.1
	return b
}

func (b bounds) project(p Point, width, height int) (float64, float64) {
	x := (p.X - b.minX) / (b.maxX - b.minX) * float64(width)
	y := float64(height) - (p.Y-b.minY)/(b.maxY-b.minY)*float64(height)
	return x, y
}

// SPlaneSVG plots the eigenvalues of each frame in the complex plane. With
// several frames, as from a sweep, markers shade from cyan for the first
// frame to magenta for the last.
func SPlaneSVG(frames [][]modal.Mode, width, height int) string {
	pts := make([][]Point, len(frames))
	for i, f := range frames {
		pts[i] = EigenPoints(f)
	}
	b := boundsOf(pts)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	x0, y0 := b.project(Point{0, 0}, width, height)
	fmt.Fprintf(&sb, `<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="#444466" stroke-width="1"/>
`, y0, width, y0)
	fmt.Fprintf(&sb, `<line x1="%.1f" y1="0" x2="%.1f" y2="%d" stroke="#ff4444" stroke-width="1" stroke-dasharray="4 3"/>
`, x0, x0, height)

	for i, f := range pts {
		t := 0.0
		if len(pts) > 1 {
			t = float64(i) / float64(len(pts)-1)
		}
		color := lerpColor(0x00ffff, 0xff00ff, t)
		fmt.Fprintf(&sb, `<g fill="%s">
`, color)
		for _, p := range f {
			if math.IsNaN(p.X) || math.IsNaN(p.Y) {
				continue
			}
			x, y := b.project(p, width, height)
			fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="3"/>
`, x, y)
		}
		sb.WriteString("</g>\n")
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

func lerpColor(from, to int, t float64) string {
	ch := func(c, shift int) float64 { return float64((c >> shift) & 0xff) }
	mix := func(shift int) int {
		return int(math.Round(ch(from, shift) + t*(ch(to, shift)-ch(from, shift))))
	}
	return fmt.Sprintf("#%02x%02x%02x", mix(16), mix(8), mix(0))
}

func WriteSVG(path string, frames [][]modal.Mode, width, height int) error {
	return os.WriteFile(path, []byte(SPlaneSVG(frames, width, height)), 0644)
}
