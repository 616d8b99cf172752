package linearize

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/linmodal/internal/symbolic"
)

var (
	q = symbolic.S("q")
	w = symbolic.S("w")
)

func mustMatrix(t *testing.T, rows, cols int, src ...string) *symbolic.Matrix {
	t.Helper()
	entries := make([]symbolic.Expr, len(src))
	for i, s := range src {
		e, err := symbolic.Parse(s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		entries[i] = e
	}
	m, err := symbolic.NewMatrix(rows, cols, entries...)
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}
	return m
}

func evalMatrix(t *testing.T, m *symbolic.Matrix, env map[string]float64) [][]float64 {
	t.Helper()
	vals, err := m.Eval(env)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	return vals
}

func TestLinearizeMatchesAtFixedPoint(t *testing.T) {
	m := mustMatrix(t, 2, 2,
		"sin(q)*w", "q^2",
		"cos(q)", "w*q + exp(w)")
	xf := []symbolic.Expr{symbolic.F(1, 2), symbolic.N(3)}

	lin, err := Linearize(m, []*symbolic.Sym{q, w}, xf)
	if err != nil {
		t.Fatalf("Linearize: %v", err)
	}
	if lin.Rows() != 2 || lin.Cols() != 2 {
		t.Fatalf("shape = %dx%d, want 2x2", lin.Rows(), lin.Cols())
	}

	at := map[string]float64{"q": 0.5, "w": 3}
	got := evalMatrix(t, lin, at)
	want := evalMatrix(t, m, at)
	for i := range want {
		for j := range want[i] {
			if math.Abs(got[i][j]-want[i][j]) > 1e-12 {
				t.Errorf("entry (%d,%d) = %v, want %v", i, j, got[i][j], want[i][j])
			}
		}
	}
}

func TestLinearizeIsLinear(t *testing.T) {
	m := mustMatrix(t, 1, 3, "q^3*w", "sin(q*w)", "w^2/q")
	states := []*symbolic.Sym{q, w}
	lin, err := Linearize(m, states, []symbolic.Expr{symbolic.N(1), symbolic.N(2)})
	if err != nil {
		t.Fatalf("Linearize: %v", err)
	}

	for _, a := range states {
		for _, b := range states {
			d1, err := lin.Diff(a)
			if err != nil {
				t.Fatalf("Diff: %v", err)
			}
			d2, err := d1.Diff(b)
			if err != nil {
				t.Fatalf("Diff: %v", err)
			}
			if !d2.Equal(symbolic.Zeros(1, 3)) {
				t.Errorf("d2/d%s d%s = %v, want zeros", a.Name(), b.Name(), d2)
			}
		}
	}
}

func TestLinearizeFirstOrderTerms(t *testing.T) {
	// q*w^2 about (1, 2): 4 + 4(q-1) + 4(w-2)
	m := mustMatrix(t, 1, 1, "q*w^2")
	lin, err := Linearize(m, []*symbolic.Sym{q, w}, []symbolic.Expr{symbolic.N(1), symbolic.N(2)})
	if err != nil {
		t.Fatalf("Linearize: %v", err)
	}

	for _, pt := range [][2]float64{{0, 0}, {1, 2}, {1.5, -0.25}, {-3, 7}} {
		got := evalMatrix(t, lin, map[string]float64{"q": pt[0], "w": pt[1]})[0][0]
		want := 4 + 4*(pt[0]-1) + 4*(pt[1]-2)
		if math.Abs(got-want) > 1e-12 {
			t.Errorf("at %v: got %v, want %v", pt, got, want)
		}
	}
}

func TestLinearizeReverseOrderStates(t *testing.T) {
	// Velocities listed before coordinates must give the same expansion.
	m := mustMatrix(t, 2, 1, "w", "-sin(q) - w*q")
	xf := map[string]symbolic.Expr{"q": symbolic.F(1, 3), "w": symbolic.N(-1)}

	fwd, err := Linearize(m, []*symbolic.Sym{q, w}, []symbolic.Expr{xf["q"], xf["w"]})
	if err != nil {
		t.Fatalf("Linearize: %v", err)
	}
	rev, err := Linearize(m, []*symbolic.Sym{w, q}, []symbolic.Expr{xf["w"], xf["q"]})
	if err != nil {
		t.Fatalf("Linearize: %v", err)
	}

	env := map[string]float64{"q": 0.7, "w": 0.2}
	a, b := evalMatrix(t, fwd, env), evalMatrix(t, rev, env)
	for i := range a {
		if math.Abs(a[i][0]-b[i][0]) > 1e-12 {
			t.Errorf("row %d: forward %v, reversed %v", i, a[i][0], b[i][0])
		}
	}
}

func TestLinearizeSymbolicFixedPoint(t *testing.T) {
	m := mustMatrix(t, 1, 1, "q^2")
	lin, err := Linearize(m, []*symbolic.Sym{q}, []symbolic.Expr{symbolic.S("q0")})
	if err != nil {
		t.Fatalf("Linearize: %v", err)
	}
	// q0^2 + 2*q0*(q - q0)
	got := evalMatrix(t, lin, map[string]float64{"q": 5, "q0": 2})[0][0]
	if got != 16 {
		t.Errorf("got %v, want 16", got)
	}
}

func TestLinearizeDoesNotMutateInput(t *testing.T) {
	m := mustMatrix(t, 1, 1, "sin(q)")
	before := m.String()
	if _, err := Linearize(m, []*symbolic.Sym{q}, []symbolic.Expr{symbolic.N(0)}); err != nil {
		t.Fatalf("Linearize: %v", err)
	}
	if m.String() != before {
		t.Errorf("input changed: %s -> %s", before, m.String())
	}
}

func TestLinearizeErrors(t *testing.T) {
	m := mustMatrix(t, 1, 1, "q*w")

	tests := []struct {
		name string
		x    []*symbolic.Sym
		xf   []symbolic.Expr
		want error
	}{
		{"length mismatch", []*symbolic.Sym{q, w}, []symbolic.Expr{symbolic.N(0)}, ErrInvalidInput},
		{"duplicate state", []*symbolic.Sym{q, q}, []symbolic.Expr{symbolic.N(0), symbolic.N(1)}, ErrInvalidInput},
		{"nil value", []*symbolic.Sym{q}, []symbolic.Expr{nil}, ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lin, err := Linearize(m, tt.x, tt.xf)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if lin != nil {
				t.Errorf("got partial result %v", lin)
			}
		})
	}
}

func TestLinearizePropagatesUnsupported(t *testing.T) {
	m := mustMatrix(t, 1, 1, "friction(w) + q")
	_, err := Linearize(m, []*symbolic.Sym{q, w}, []symbolic.Expr{symbolic.N(0), symbolic.N(0)})
	if !errors.Is(err, symbolic.ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
}

func TestStateMatrixPendulum(t *testing.T) {
	f := mustMatrix(t, 2, 1, "w", "-g/l*sin(q) - c*w")
	a, err := StateMatrix(f, []*symbolic.Sym{q, w}, []symbolic.Expr{symbolic.N(0), symbolic.N(0)})
	if err != nil {
		t.Fatalf("StateMatrix: %v", err)
	}

	got := evalMatrix(t, a, map[string]float64{"g": 9.81, "l": 2, "c": 0.3})
	want := [][]float64{{0, 1}, {-9.81 / 2, -0.3}}
	for i := range want {
		for j := range want[i] {
			if math.Abs(got[i][j]-want[i][j]) > 1e-12 {
				t.Errorf("A[%d][%d] = %v, want %v", i, j, got[i][j], want[i][j])
			}
		}
	}
}

func TestStateMatrixRejectsNonColumn(t *testing.T) {
	f := mustMatrix(t, 1, 2, "q", "w")
	if _, err := StateMatrix(f, []*symbolic.Sym{q, w}, []symbolic.Expr{symbolic.N(0), symbolic.N(0)}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}
