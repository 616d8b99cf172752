// Package linearize expands symbolic matrices to first order about an
// operating point.
package linearize

import (
	"fmt"

	"github.com/san-kum/linmodal/internal/symbolic"
)

// Linearize returns the first-order Taylor expansion of m about xf:
//
//	M(xf) + Σ_i ∂M/∂x_i(xf) · (x_i − xf_i)
//
// Every partial derivative is taken on the original m, and the fixed point
// is substituted for all states in a single simultaneous pass, so no state
// is replaced before the derivatives with respect to the others exist.
// Differentiation errors from the symbolic engine are returned unchanged.
func Linearize(m *symbolic.Matrix, x []*symbolic.Sym, xf []symbolic.Expr) (*symbolic.Matrix, error) {
	at, err := fixedPoint(x, xf)
	if err != nil {
		return nil, err
	}

	result := m.Subs(at)
	for i, xi := range x {
		d, err := m.Diff(xi)
		if err != nil {
			return nil, err
		}
		term := d.Subs(at).Scale(symbolic.SubOf(xi, xf[i]))
		if result, err = result.Add(term); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// StateMatrix returns the Jacobian of the column vector f with respect to x,
// evaluated at xf. Column j holds the coefficients of (x_j − xf_j) in the
// expansion Linearize produces for f.
func StateMatrix(f *symbolic.Matrix, x []*symbolic.Sym, xf []symbolic.Expr) (*symbolic.Matrix, error) {
	if f.Cols() != 1 {
		return nil, fmt.Errorf("%w: expected a column vector, got %dx%d", ErrInvalidInput, f.Rows(), f.Cols())
	}
	at, err := fixedPoint(x, xf)
	if err != nil {
		return nil, err
	}

	n := f.Rows()
	entries := make([]symbolic.Expr, n*len(x))
	for j, xj := range x {
		d, err := f.Diff(xj)
		if err != nil {
			return nil, err
		}
		d = d.Subs(at)
		for i := 0; i < n; i++ {
			entries[i*len(x)+j] = d.Get(i, 0)
		}
	}
	return symbolic.NewMatrix(n, len(x), entries...)
}

func fixedPoint(x []*symbolic.Sym, xf []symbolic.Expr) (map[string]symbolic.Expr, error) {
	if len(x) != len(xf) {
		return nil, fmt.Errorf("%w: %d states but %d fixed-point values", ErrInvalidInput, len(x), len(xf))
	}
	at := make(map[string]symbolic.Expr, len(x))
	for i, xi := range x {
		if xi == nil || xf[i] == nil {
			return nil, fmt.Errorf("%w: nil entry at index %d", ErrInvalidInput, i)
		}
		if _, dup := at[xi.Name()]; dup {
			return nil, fmt.Errorf("%w: state %s listed twice", ErrInvalidInput, xi.Name())
		}
		at[xi.Name()] = xf[i]
	}
	return at, nil
}
