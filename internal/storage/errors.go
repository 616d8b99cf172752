package storage

import "errors"

// ErrNotFound indicates a run ID with no directory in the store.
var ErrNotFound = errors.New("storage: run not found")
