package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/linmodal/internal/modal"
)

// FreeResponse samples y(t) = Σ Re(exp(λ_k t)) over the modes at n points
// spaced dt apart. Each mode contributes with unit amplitude, so the signal
// carries every modal frequency with its own decay.
func FreeResponse(modes []modal.Mode, dt float64, n int) []float64 {
	y := make([]float64, n)
	for _, m := range modes {
		lambda := m.Eigenvalue()
		for i := range y {
			y[i] += real(cmplx.Exp(lambda * complex(float64(i)*dt, 0)))
		}
	}
	return y
}

// PowerSpectrum returns the one-sided magnitude spectrum of a signal
// sampled every dt, and the frequency in Hz of each bin.
func PowerSpectrum(signal []float64, dt float64) (freqs, power []float64) {
	n := len(signal)
	if n == 0 || dt <= 0 {
		return nil, nil
	}
	spectrum := fft.FFTReal(signal)

	half := n/2 + 1
	freqs = make([]float64, half)
	power = make([]float64, half)
	for k := 0; k < half; k++ {
		freqs[k] = float64(k) / (float64(n) * dt)
		power[k] = cmplx.Abs(spectrum[k]) / float64(n)
	}
	return freqs, power
}

// PeakFrequency returns the frequency of the strongest bin above minHz.
func PeakFrequency(freqs, power []float64, minHz float64) float64 {
	best, peak := math.Inf(-1), math.NaN()
	for i, f := range freqs {
		if f < minHz {
			continue
		}
		if power[i] > best {
			best, peak = power[i], f
		}
	}
	return peak
}
