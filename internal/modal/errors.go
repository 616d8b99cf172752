package modal

import "errors"

var (
	// ErrInvalidInput indicates eigenvalues and eigenvectors that are not index-aligned.
	ErrInvalidInput = errors.New("modal: invalid input")

	// ErrUnknownSortKey indicates a sort key other than F, D or none.
	ErrUnknownSortKey = errors.New("modal: unknown sort key")
)
