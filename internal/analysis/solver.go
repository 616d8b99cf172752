package analysis

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// EigenSolver computes eigenvalues and right eigenvectors of a square
// matrix. Column i of the vectors belongs to eigenvalue i.
type EigenSolver interface {
	Eigen(a mat.Matrix) ([]complex128, *mat.CDense, error)
}

// GonumSolver solves general real eigenproblems with gonum's LAPACK port.
type GonumSolver struct{}

func (GonumSolver) Eigen(a mat.Matrix) ([]complex128, *mat.CDense, error) {
	r, c := a.Dims()
	if r != c {
		return nil, nil, fmt.Errorf("%w: matrix is %dx%d", ErrSolverFailed, r, c)
	}
	var eig mat.Eigen
	if ok := eig.Factorize(a, mat.EigenRight); !ok {
		return nil, nil, fmt.Errorf("%w: factorization did not converge", ErrSolverFailed)
	}
	vals := eig.Values(nil)
	vecs := new(mat.CDense)
	eig.VectorsTo(vecs)
	return vals, vecs, nil
}
