package storage

import (
	"encoding/json"
	"io"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/linmodal/internal/analysis"
)

// ExportData is the JSON form of a report. Values JSON cannot carry,
// such as the NaN damping of a real pole, become null.
type ExportData struct {
	System     string             `json:"system"`
	States     []string           `json:"states"`
	FixedPoint []string           `json:"fixed_point"`
	Params     map[string]float64 `json:"params"`
	A          [][]float64        `json:"a"`
	Stable     bool               `json:"stable"`
	MaxReal    *float64           `json:"max_real"`
	Modes      []ExportMode       `json:"modes"`
}

type ExportMode struct {
	Index     int      `json:"index"`
	Real      *float64 `json:"real"`
	Imag      *float64 `json:"imag"`
	Frequency *float64 `json:"frequency_hz"`
	Damping   *float64 `json:"damping"`
	Stable    bool     `json:"stable"`
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func NewExportData(r *analysis.Report) ExportData {
	data := ExportData{
		System:  r.System,
		States:  r.States,
		Params:  r.Params,
		Stable:  r.Stable(),
		MaxReal: finite(r.Summary.MaxReal),
		Modes:   make([]ExportMode, len(r.Modes)),
	}
	for _, e := range r.FixedPoint {
		data.FixedPoint = append(data.FixedPoint, e.String())
	}
	if r.A != nil {
		data.A = denseRows(r.A)
	}
	for i, m := range r.Modes {
		data.Modes[i] = ExportMode{
			Index:     m.Index,
			Real:      finite(m.Real),
			Imag:      finite(m.Imag),
			Frequency: finite(m.Frequency),
			Damping:   finite(m.Damping),
			Stable:    m.Stable,
		}
	}
	return data
}

func denseRows(a *mat.Dense) [][]float64 {
	rows, _ := a.Dims()
	out := make([][]float64, rows)
	for i := range out {
		out[i] = mat.Row(nil, i, a)
	}
	return out
}

func ExportJSON(path string, r *analysis.Report) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := WriteJSON(file, r); err != nil {
		return err
	}
	return file.Close()
}

func WriteJSON(w io.Writer, r *analysis.Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(r))
}
