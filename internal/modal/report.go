package modal

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"
)

// Summary condenses a mode list.
type Summary struct {
	Modes       int
	Oscillatory int
	Aperiodic   int
	Stable      bool
	MaxReal     float64
	// LeastDamped is the oscillatory mode with the largest Damping value,
	// the one closest to instability, or nil when there is none.
	LeastDamped *Mode
	// Dominant is the mode whose real part is largest: the slowest decay or
	// the fastest growth.
	Dominant *Mode
}

// Summarize computes a Summary. An empty list is reported as stable.
func Summarize(modes []Mode) Summary {
	s := Summary{Modes: len(modes), Stable: true, MaxReal: math.Inf(-1)}
	for i := range modes {
		m := &modes[i]
		if m.Oscillatory() {
			s.Oscillatory++
			if s.LeastDamped == nil || m.Damping > s.LeastDamped.Damping {
				s.LeastDamped = m
			}
		} else {
			s.Aperiodic++
		}
		if m.Real > s.MaxReal {
			s.MaxReal = m.Real
			s.Dominant = m
		}
		s.Stable = m.Stable
	}
	return s
}

var csvHeader = []string{"mode", "real", "imag", "frequency_hz", "damping", "stable", "vector"}

// WriteCSV writes one row per mode. Eigenvector components are joined with
// ';' in the vector column.
func WriteCSV(w io.Writer, modes []Mode) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, m := range modes {
		row := []string{
			strconv.Itoa(m.Index),
			formatFloat(m.Real),
			formatFloat(m.Imag),
			formatFloat(m.Frequency),
			formatFloat(m.Damping),
			strconv.FormatBool(m.Stable),
			formatVector(m.Vector),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses the output of WriteCSV.
func ReadCSV(r io.Reader) ([]Mode, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []Mode{}, nil
	}

	modes := make([]Mode, 0, len(records)-1)
	for _, rec := range records[1:] {
		var m Mode
		if m.Index, err = strconv.Atoi(rec[0]); err != nil {
			return nil, err
		}
		floats := []*float64{&m.Real, &m.Imag, &m.Frequency, &m.Damping}
		for i, dst := range floats {
			if *dst, err = strconv.ParseFloat(rec[i+1], 64); err != nil {
				return nil, err
			}
		}
		if m.Stable, err = strconv.ParseBool(rec[5]); err != nil {
			return nil, err
		}
		if m.Vector, err = parseVector(rec[6]); err != nil {
			return nil, err
		}
		modes = append(modes, m)
	}
	return modes, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatVector(vec []complex128) string {
	parts := make([]string, len(vec))
	for i, c := range vec {
		parts[i] = strconv.FormatComplex(c, 'g', -1, 128)
	}
	return strings.Join(parts, ";")
}

func parseVector(s string) ([]complex128, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ";")
	vec := make([]complex128, len(parts))
	for i, p := range parts {
		c, err := strconv.ParseComplex(p, 128)
		if err != nil {
			return nil, err
		}
		vec[i] = c
	}
	return vec, nil
}
