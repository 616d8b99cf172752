package optim

import "errors"

// ErrInvalidGrid indicates a malformed axis or a parameter without values.
var ErrInvalidGrid = errors.New("optim: invalid grid")
