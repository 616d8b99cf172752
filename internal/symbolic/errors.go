package symbolic

import "errors"

var (
	// ErrUnsupported indicates an operation the engine cannot perform on an
	// expression, such as differentiating an opaque function.
	ErrUnsupported = errors.New("symbolic: unsupported expression")

	// ErrUnboundSymbol indicates evaluation met a symbol with no value.
	ErrUnboundSymbol = errors.New("symbolic: unbound symbol")

	// ErrParse indicates malformed expression text.
	ErrParse = errors.New("symbolic: parse error")

	// ErrShape indicates incompatible or invalid matrix dimensions.
	ErrShape = errors.New("symbolic: invalid matrix shape")
)
