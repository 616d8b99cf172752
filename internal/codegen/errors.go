package codegen

import "errors"

var (
	// ErrInvalidInput indicates a bad function name, argument list or call.
	ErrInvalidInput = errors.New("codegen: invalid input")

	// ErrInterpret indicates generated source the interpreter rejected.
	ErrInterpret = errors.New("codegen: interpreter failed")
)
