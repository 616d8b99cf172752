// Package symbolic is the expression engine behind linearization and code
// generation.
//
// It is deliberately small. Expressions are immutable trees built through
// simplifying constructors, so two expressions that are equal up to operand
// order and like-term collection share the same [Expr.Key]:
//
//   - [Num]: exact rational constant (math/big)
//   - [Sym]: named variable
//   - [Const]: named mathematical constant (pi, e)
//   - [Add], [Mul], [Pow]: n-ary sum, n-ary product, power
//   - [Func]: function application (sin, cos, exp, ... or an opaque name)
//
// The operations consumed by the rest of the module are [Subs]
// (simultaneous substitution), [Diff], [Eval], [CSE] and [Parse]. [Matrix]
// lifts them element-wise.
//
// # Example
//
//	x, v := symbolic.S("x"), symbolic.S("v")
//	f, _ := symbolic.Parse("-k*sin(x) - c*v")
//	df, _ := symbolic.Diff(f, x)
//	at := symbolic.Subs(df, map[string]symbolic.Expr{"x": symbolic.N(0), "v": symbolic.N(0)})
//
// All values are safe for concurrent use; nothing in the package mutates an
// expression after construction.
package symbolic
