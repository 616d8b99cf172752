// Package modal turns the eigen-decomposition of a linear system into a
// list of physical modes.
//
// Complex eigenvalues of a real system come in conjugate pairs that describe
// one oscillation, so [ExtractModes] keeps only the first member of each
// pair. Each surviving eigenvalue λ = σ + jω becomes a [Mode] with
//
//	Frequency = |λ| / 2π     (0 for real λ)
//	Damping   = cos(arg λ)   (NaN for real λ)
//
// and a Stable flag that is shared by every mode of the call: it is true
// when no eigenvalue has a real part above the stability margin.
package modal

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// SortKey selects the presentation order of modes.
type SortKey int

const (
	// SortNone keeps discovery order.
	SortNone SortKey = iota
	// SortFrequency orders by ascending frequency.
	SortFrequency
	// SortDamping orders by ascending damping; real modes (NaN) go last.
	SortDamping
)

func (k SortKey) String() string {
	switch k {
	case SortFrequency:
		return "F"
	case SortDamping:
		return "D"
	default:
		return "none"
	}
}

// ParseSortKey accepts "F", "D", "none" or the empty string, case-insensitively.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return SortNone, nil
	case "f", "freq", "frequency":
		return SortFrequency, nil
	case "d", "damp", "damping":
		return SortDamping, nil
	}
	return SortNone, fmt.Errorf("%w: %q", ErrUnknownSortKey, s)
}

// Options tunes ExtractModes.
type Options struct {
	// Margin is the largest real part still considered stable.
	Margin float64
	SortBy SortKey
	// ConjugateRTol and ConjugateATol decide when two eigenvalues are a
	// conjugate pair: |a - conj(b)| <= ATol + RTol*|b|.
	ConjugateRTol float64
	ConjugateATol float64
}

// DefaultOptions returns a margin of 1e-9, discovery order and the usual
// floating-point closeness tolerances.
func DefaultOptions() Options {
	return Options{
		Margin:        1e-9,
		SortBy:        SortNone,
		ConjugateRTol: 1e-5,
		ConjugateATol: 1e-8,
	}
}

// Mode is one unique eigenvalue with its derived metrics.
type Mode struct {
	Index     int
	Real      float64
	Imag      float64
	Frequency float64
	Damping   float64
	Stable    bool
	Vector    []complex128
}

// Eigenvalue returns Real + j*Imag.
func (m Mode) Eigenvalue() complex128 { return complex(m.Real, m.Imag) }

// Oscillatory reports whether the mode has a nonzero imaginary part.
func (m Mode) Oscillatory() bool { return m.Imag != 0 }

// ExtractModes deduplicates conjugate pairs in evals and derives a Mode for
// every remaining eigenvalue. Column i of evecs is the eigenvector of
// evals[i]. The result is ordered by opts.SortBy, ties keeping discovery
// order, and indexed 0..n-1 in that order.
func ExtractModes(evals []complex128, evecs mat.CMatrix, opts Options) ([]Mode, error) {
	if len(evals) == 0 {
		return []Mode{}, nil
	}
	if cd, ok := evecs.(*mat.CDense); evecs == nil || (ok && cd == nil) {
		return nil, fmt.Errorf("%w: %d eigenvalues but no eigenvectors", ErrInvalidInput, len(evals))
	}
	rows, cols := evecs.Dims()
	if cols != len(evals) {
		return nil, fmt.Errorf("%w: %d eigenvalues but %d eigenvector columns", ErrInvalidInput, len(evals), cols)
	}

	var unique []Mode
	for i, v := range evals {
		if imag(v) != 0 && hasConjugate(unique, v, opts) {
			continue
		}
		unique = append(unique, newMode(v, column(evecs, rows, i)))
	}

	maxReal := math.Inf(-1)
	for _, m := range unique {
		maxReal = math.Max(maxReal, m.Real)
	}
	stable := maxReal <= opts.Margin

	Sort(unique, opts.SortBy)
	for i := range unique {
		unique[i].Stable = stable
	}
	return unique, nil
}

// Sort orders modes in place by key, ties keeping their current order, and
// renumbers Index to match.
func Sort(modes []Mode, key SortKey) {
	switch key {
	case SortFrequency:
		sort.SliceStable(modes, func(i, j int) bool {
			return modes[i].Frequency < modes[j].Frequency
		})
	case SortDamping:
		sort.SliceStable(modes, func(i, j int) bool {
			return dampingLess(modes[i].Damping, modes[j].Damping)
		})
	}
	for i := range modes {
		modes[i].Index = i
	}
}

func hasConjugate(accepted []Mode, v complex128, opts Options) bool {
	c := cmplx.Conj(v)
	for _, m := range accepted {
		b := m.Eigenvalue()
		if cmplx.Abs(c-b) <= opts.ConjugateATol+opts.ConjugateRTol*cmplx.Abs(b) {
			return true
		}
	}
	return false
}

func newMode(v complex128, vec []complex128) Mode {
	m := Mode{
		Real:    real(v),
		Imag:    imag(v),
		Damping: math.NaN(),
		Vector:  vec,
	}
	if imag(v) != 0 {
		m.Frequency = cmplx.Abs(v) / (2 * math.Pi)
		m.Damping = math.Cos(cmplx.Phase(v))
	}
	return m
}

func column(evecs mat.CMatrix, rows, j int) []complex128 {
	vec := make([]complex128, rows)
	for i := range vec {
		vec[i] = evecs.At(i, j)
	}
	return vec
}

// dampingLess orders NaN after every number.
func dampingLess(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	return a < b
}
