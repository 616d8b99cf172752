package analysis

import "errors"

var (
	// ErrInvalidSystem indicates dynamics that do not match the state vector.
	ErrInvalidSystem = errors.New("analysis: invalid system")

	// ErrUnknownParameter indicates a sweep over a parameter the system lacks.
	ErrUnknownParameter = errors.New("analysis: unknown parameter")

	// ErrSolverFailed indicates the eigen-solver could not factorize A.
	ErrSolverFailed = errors.New("analysis: eigen-solver failed")
)
