package linearize

import "errors"

// ErrInvalidInput indicates a state vector and fixed point that do not line up.
var ErrInvalidInput = errors.New("linearize: invalid input")
