package symbolic

import (
	"fmt"
	"strings"
)

// Matrix is an immutable rows×cols grid of expressions stored row-major.
// Every operation returns a new matrix.
type Matrix struct {
	rows, cols int
	data       []Expr
}

// NewMatrix builds a matrix from row-major entries. Nil entries become 0.
func NewMatrix(rows, cols int, entries ...Expr) (*Matrix, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrShape, rows, cols)
	}
	if len(entries) != rows*cols {
		return nil, fmt.Errorf("%w: %dx%d needs %d entries, got %d", ErrShape, rows, cols, rows*cols, len(entries))
	}
	data := make([]Expr, len(entries))
	for i, e := range entries {
		if e == nil {
			e = zero()
		}
		data[i] = e
	}
	return &Matrix{rows: rows, cols: cols, data: data}, nil
}

// Column builds an n×1 matrix.
func Column(entries ...Expr) *Matrix {
	m, err := NewMatrix(len(entries), 1, entries...)
	if err != nil {
		panic(err)
	}
	return m
}

// Zeros returns a rows×cols zero matrix.
func Zeros(rows, cols int) *Matrix {
	m, err := NewMatrix(rows, cols, make([]Expr, rows*cols)...)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Matrix) Rows() int { return m.rows }
func (m *Matrix) Cols() int { return m.cols }

// Get returns the entry at (row, col). It panics when out of range.
func (m *Matrix) Get(row, col int) Expr {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		panic(fmt.Sprintf("symbolic: index (%d,%d) out of range for %dx%d", row, col, m.rows, m.cols))
	}
	return m.data[row*m.cols+col]
}

// Entries returns a row-major copy of the entries.
func (m *Matrix) Entries() []Expr { return append([]Expr(nil), m.data...) }

// Map applies fn to every entry, stopping at the first error.
func (m *Matrix) Map(fn func(Expr) (Expr, error)) (*Matrix, error) {
	out := make([]Expr, len(m.data))
	for i, e := range m.data {
		r, err := fn(e)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return &Matrix{rows: m.rows, cols: m.cols, data: out}, nil
}

func (m *Matrix) mapPure(fn func(Expr) Expr) *Matrix {
	out := make([]Expr, len(m.data))
	for i, e := range m.data {
		out[i] = fn(e)
	}
	return &Matrix{rows: m.rows, cols: m.cols, data: out}
}

// Add returns m + o.
func (m *Matrix) Add(o *Matrix) (*Matrix, error) {
	if m.rows != o.rows || m.cols != o.cols {
		return nil, fmt.Errorf("%w: %dx%d + %dx%d", ErrShape, m.rows, m.cols, o.rows, o.cols)
	}
	out := make([]Expr, len(m.data))
	for i := range m.data {
		out[i] = AddOf(m.data[i], o.data[i])
	}
	return &Matrix{rows: m.rows, cols: m.cols, data: out}, nil
}

// Scale multiplies every entry by s.
func (m *Matrix) Scale(s Expr) *Matrix {
	return m.mapPure(func(e Expr) Expr { return MulOf(s, e) })
}

// Subs substitutes simultaneously into every entry.
func (m *Matrix) Subs(repl map[string]Expr) *Matrix {
	return m.mapPure(func(e Expr) Expr { return Subs(e, repl) })
}

// Diff differentiates every entry with respect to x.
func (m *Matrix) Diff(x *Sym) (*Matrix, error) {
	return m.Map(func(e Expr) (Expr, error) { return Diff(e, x) })
}

// Eval evaluates every entry, returning rows of values.
func (m *Matrix) Eval(env map[string]float64) ([][]float64, error) {
	out := make([][]float64, m.rows)
	for i := range out {
		out[i] = make([]float64, m.cols)
		for j := range out[i] {
			v, err := Eval(m.data[i*m.cols+j], env)
			if err != nil {
				return nil, fmt.Errorf("entry (%d,%d): %w", i, j, err)
			}
			out[i][j] = v
		}
	}
	return out, nil
}

// Equal reports whether both matrices have the same shape and entries.
func (m *Matrix) Equal(o *Matrix) bool {
	if m.rows != o.rows || m.cols != o.cols {
		return false
	}
	for i := range m.data {
		if !Equal(m.data[i], o.data[i]) {
			return false
		}
	}
	return true
}

func (m *Matrix) String() string {
	var b strings.Builder
	b.WriteString("[")
	for i := 0; i < m.rows; i++ {
		if i > 0 {
			b.WriteString(",\n ")
		}
		b.WriteString("[")
		for j := 0; j < m.cols; j++ {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(m.data[i*m.cols+j].String())
		}
		b.WriteString("]")
	}
	b.WriteString("]")
	return b.String()
}
