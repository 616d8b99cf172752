package symbolic

import (
	"math"
	"sort"
)

type builtin struct {
	eval func(float64) float64
	// deriv returns d/du f(u); nil marks f as not differentiable.
	deriv func(u Expr) Expr
}

var builtins = map[string]builtin{
	"sin": {math.Sin, func(u Expr) Expr { return CosOf(u) }},
	"cos": {math.Cos, func(u Expr) Expr { return NegOf(SinOf(u)) }},
	"tan": {math.Tan, func(u Expr) Expr { return AddOf(one(), PowOf(TanOf(u), N(2))) }},
	"exp": {math.Exp, func(u Expr) Expr { return ExpOf(u) }},
	"log": {math.Log, func(u Expr) Expr { return PowOf(u, N(-1)) }},
	"asin": {math.Asin, func(u Expr) Expr {
		return PowOf(SubOf(one(), PowOf(u, N(2))), F(-1, 2))
	}},
	"acos": {math.Acos, func(u Expr) Expr {
		return NegOf(PowOf(SubOf(one(), PowOf(u, N(2))), F(-1, 2)))
	}},
	"atan": {math.Atan, func(u Expr) Expr {
		return PowOf(AddOf(one(), PowOf(u, N(2))), N(-1))
	}},
	"sinh":  {math.Sinh, func(u Expr) Expr { return FuncOf("cosh", u) }},
	"cosh":  {math.Cosh, func(u Expr) Expr { return FuncOf("sinh", u) }},
	"tanh":  {math.Tanh, func(u Expr) Expr { return SubOf(one(), PowOf(FuncOf("tanh", u), N(2))) }},
	"abs":   {math.Abs, nil},
	"floor": {math.Floor, nil},
	"ceil":  {math.Ceil, nil},
}

// IsBuiltin reports whether name is a function the engine can evaluate.
func IsBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}

// BuiltinFunc returns the float64 implementation of a built-in function.
func BuiltinFunc(name string) (func(float64) float64, bool) {
	b, ok := builtins[name]
	if !ok {
		return nil, false
	}
	return b.eval, true
}

// Builtins lists the evaluable function names in sorted order.
func Builtins() []string {
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
