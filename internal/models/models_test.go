package models

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/linmodal/internal/analysis"
	"github.com/san-kum/linmodal/internal/config"
	"github.com/san-kum/linmodal/internal/symbolic"
)

func analyze(t *testing.T, name, point string) *analysis.Report {
	t.Helper()
	m, err := NewRegistry().Get(name)
	if err != nil {
		t.Fatal(err)
	}
	sys, err := m.System()
	if err != nil {
		t.Fatalf("%s: %v", name, err)
	}
	xf, err := m.Point(point)
	if err != nil {
		t.Fatalf("%s: %v", name, err)
	}
	r, err := analysis.NewAnalyzer().Analyze(context.Background(), sys, xf)
	if err != nil {
		t.Fatalf("%s at %s: %v", name, point, err)
	}
	return r
}

func TestBuiltinsParse(t *testing.T) {
	reg := NewRegistry()
	for _, name := range reg.List() {
		m, _ := reg.Get(name)
		if _, err := m.System(); err != nil {
			t.Errorf("%s: %v", name, err)
		}
		for _, p := range m.PointNames() {
			xf, err := m.Point(p)
			if err != nil {
				t.Errorf("%s point %s: %v", name, p, err)
				continue
			}
			if len(xf) != len(m.States) {
				t.Errorf("%s point %s: expected %d coordinates, got %d", name, p, len(m.States), len(xf))
			}
		}
	}
}

func TestPendulumPoints(t *testing.T) {
	down := analyze(t, "pendulum", "")
	if !down.Stable() {
		t.Error("hanging pendulum should be stable")
	}
	if len(down.Modes) != 1 {
		t.Fatalf("expected 1 mode, got %d", len(down.Modes))
	}
	if math.Abs(down.Modes[0].Frequency-math.Sqrt(9.81)/(2*math.Pi)) > 1e-9 {
		t.Errorf("unexpected frequency %f", down.Modes[0].Frequency)
	}

	up := analyze(t, "pendulum", "inverted")
	if up.Stable() {
		t.Error("inverted pendulum should be unstable")
	}
}

func TestSpringMassFrequency(t *testing.T) {
	r := analyze(t, "spring_mass", Origin)
	if len(r.Modes) != 1 {
		t.Fatalf("expected 1 mode, got %d", len(r.Modes))
	}
	m := r.Modes[0]
	if math.Abs(m.Frequency-2/(2*math.Pi)) > 1e-9 {
		t.Errorf("expected natural frequency 2 rad/s, got %f Hz", m.Frequency)
	}
	if math.Abs(m.Real+0.1) > 1e-9 {
		t.Errorf("expected real part -0.1, got %f", m.Real)
	}
}

func TestCartPoleUprightUnstable(t *testing.T) {
	r := analyze(t, "cartpole", Origin)
	if r.Stable() {
		t.Error("upright pole should be unstable")
	}
	mc, mp, l, g := 1.0, 0.1, 1.0, 9.81
	want := math.Sqrt(g / (l * (4.0/3.0 - mp/(mc+mp))))
	if math.Abs(r.Summary.MaxReal-want) > 1e-6 {
		t.Errorf("expected growth rate %f, got %f", want, r.Summary.MaxReal)
	}
}

func TestDuffingWells(t *testing.T) {
	origin := analyze(t, "duffing", Origin)
	if origin.Stable() {
		t.Error("the hump of the double well should be unstable")
	}
	for _, p := range []string{"right_well", "left_well"} {
		r := analyze(t, "duffing", p)
		if !r.Stable() {
			t.Errorf("%s should be stable", p)
		}
		if len(r.Modes) != 1 {
			t.Fatalf("%s: expected 1 mode, got %d", p, len(r.Modes))
		}
		if math.Abs(r.Modes[0].Real+0.15) > 1e-9 {
			t.Errorf("%s: expected real part -0.15, got %f", p, r.Modes[0].Real)
		}
		if math.Abs(r.Modes[0].Frequency-math.Sqrt2/(2*math.Pi)) > 1e-9 {
			t.Errorf("%s: unexpected frequency %f", p, r.Modes[0].Frequency)
		}
	}
}

func TestVanDerPolOrigin(t *testing.T) {
	r := analyze(t, "vanderpol", Origin)
	if r.Stable() {
		t.Error("origin should be an unstable focus")
	}
	if len(r.Modes) != 1 {
		t.Fatalf("expected 1 mode, got %d", len(r.Modes))
	}
	if math.Abs(r.Modes[0].Damping-0.5) > 1e-9 {
		t.Errorf("expected damping 0.5, got %f", r.Modes[0].Damping)
	}
}

func TestDoublePendulumNormalModes(t *testing.T) {
	r := analyze(t, "double_pendulum", Origin)
	if len(r.Modes) != 2 {
		t.Fatalf("expected 2 modes, got %d", len(r.Modes))
	}
	g := 9.81
	lo := math.Sqrt(g*(2-math.Sqrt2)) / (2 * math.Pi)
	hi := math.Sqrt(g*(2+math.Sqrt2)) / (2 * math.Pi)
	f0, f1 := r.Modes[0].Frequency, r.Modes[1].Frequency
	if f0 > f1 {
		f0, f1 = f1, f0
	}
	if math.Abs(f0-lo) > 1e-6 || math.Abs(f1-hi) > 1e-6 {
		t.Errorf("expected %f and %f Hz, got %f and %f", lo, hi, f0, f1)
	}
}

func TestPointErrors(t *testing.T) {
	m, _ := NewRegistry().Get("pendulum")
	if _, err := m.Point("sideways"); !errors.Is(err, ErrUnknownPoint) {
		t.Errorf("expected ErrUnknownPoint, got %v", err)
	}

	bad := *m
	bad.Points = map[string][]string{"odd": {"z", "0"}}
	if _, err := bad.Point("odd"); !errors.Is(err, ErrInvalidModel) {
		t.Errorf("expected ErrInvalidModel for unknown symbol, got %v", err)
	}
	bad.Points = map[string][]string{"short": {"0"}}
	if _, err := bad.Point("short"); !errors.Is(err, ErrInvalidModel) {
		t.Errorf("expected ErrInvalidModel for wrong length, got %v", err)
	}
	bad.Points = map[string][]string{"broken": {"(", "0"}}
	if _, err := bad.Point("broken"); !errors.Is(err, symbolic.ErrParse) {
		t.Errorf("expected ErrParse, got %v", err)
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	names := reg.List()
	if len(names) != 6 {
		t.Errorf("expected 6 built-in models, got %v", names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("models not sorted: %v", names)
		}
	}

	if _, err := reg.Get("nbody"); !errors.Is(err, ErrUnknownModel) {
		t.Errorf("expected ErrUnknownModel, got %v", err)
	}

	lorenz := &Model{
		Name:      "lorenz",
		States:    []string{"x", "y", "z"},
		Params:    map[string]float64{"sigma": 10, "rho": 28, "beta": 8.0 / 3.0},
		Equations: []string{"sigma*(y - x)", "x*(rho - z) - y", "x*y - beta*z"},
	}
	if err := reg.Register(lorenz); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := reg.Register(lorenz); !errors.Is(err, ErrDuplicateModel) {
		t.Errorf("expected ErrDuplicateModel, got %v", err)
	}
	if err := reg.Register(&Model{Name: "broken", States: []string{"x"}, Equations: []string{"k*x"}}); !errors.Is(err, analysis.ErrInvalidSystem) {
		t.Errorf("expected ErrInvalidSystem for unbound symbol, got %v", err)
	}
}

func TestFromConfigRoundTrip(t *testing.T) {
	mf := &config.ModelFile{
		Name:      "oscillator",
		States:    []string{"x", "v"},
		Params:    map[string]float64{"k": 1},
		Equations: []string{"v", "-k*x"},
		Points:    map[string][]string{"shifted": {"0", "0"}},
	}
	m := FromConfig(mf)
	mf.Params["k"] = 5

	if m.Params["k"] != 1 {
		t.Error("FromConfig should copy parameters")
	}
	if got := m.PointNames(); len(got) != 2 || got[0] != Origin || got[1] != "shifted" {
		t.Errorf("unexpected point names %v", got)
	}
	back := m.File()
	if back.Name != "oscillator" || back.Equations[1] != "-k*x" {
		t.Errorf("unexpected file %+v", back)
	}
}

func TestFileCopiesPoints(t *testing.T) {
	m := FromConfig(&config.ModelFile{
		Name:      "oscillator",
		States:    []string{"x", "v"},
		Params:    map[string]float64{"k": 1},
		Equations: []string{"v", "-k*x"},
		Points:    map[string][]string{"shifted": {"1", "0"}},
	})

	mf := m.File()
	mf.Points["shifted"][0] = "42"
	mf.Points["extra"] = []string{"0", "0"}

	if got := m.Points["shifted"][0]; got != "1" {
		t.Errorf("File shares point slices with the model: shifted[0] = %q", got)
	}
	if _, ok := m.Points["extra"]; ok {
		t.Error("File shares the point map with the model")
	}
}
