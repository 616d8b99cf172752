package codegen

import (
	"fmt"
	"math"

	"github.com/san-kum/linmodal/internal/symbolic"
)

// evalFn computes one expression from a slot vector holding the argument
// leaves followed by the CSE bindings.
type evalFn func(slots []float64) float64

// lower turns e into a closure. It performs the same operations, in the same
// order, as the Go source the printer emits for e.
func lower(e symbolic.Expr, slots map[string]int) (evalFn, error) {
	switch t := e.(type) {
	case *symbolic.Num:
		v := t.Float64()
		return func([]float64) float64 { return v }, nil

	case *symbolic.Sym:
		i, ok := slots[t.Name()]
		if !ok {
			return nil, fmt.Errorf("%w: symbol %s is not bound by any argument", ErrInvalidInput, t.Name())
		}
		return func(s []float64) float64 { return s[i] }, nil

	case *symbolic.Const:
		v := t.Value()
		return func([]float64) float64 { return v }, nil

	case *symbolic.Add:
		terms := t.Terms()
		fns := make([]evalFn, len(terms))
		signs := make([]float64, len(terms))
		for i, term := range terms {
			signs[i] = 1
			if i > 0 && isNegative(term) {
				term, signs[i] = symbolic.NegOf(term), -1
			}
			fn, err := lower(term, slots)
			if err != nil {
				return nil, err
			}
			fns[i] = fn
		}
		return func(s []float64) float64 {
			acc := fns[0](s)
			for i := 1; i < len(fns); i++ {
				if signs[i] < 0 {
					acc -= fns[i](s)
				} else {
					acc += fns[i](s)
				}
			}
			return acc
		}, nil

	case *symbolic.Mul:
		return lowerProduct(splitProduct(t), slots)

	case *symbolic.Pow:
		return lowerPow(t, slots)

	case *symbolic.Func:
		f, ok := symbolic.BuiltinFunc(t.Name())
		if !ok {
			return nil, fmt.Errorf("%w: function %s has no Go equivalent", symbolic.ErrUnsupported, t.Name())
		}
		arg, err := lower(t.Args()[0], slots)
		if err != nil {
			return nil, err
		}
		return func(s []float64) float64 { return f(arg(s)) }, nil
	}
	return nil, fmt.Errorf("%w: %T", symbolic.ErrUnsupported, e)
}

func lowerAll(es []symbolic.Expr, slots map[string]int) ([]evalFn, error) {
	fns := make([]evalFn, len(es))
	for i, e := range es {
		fn, err := lower(e, slots)
		if err != nil {
			return nil, err
		}
		fns[i] = fn
	}
	return fns, nil
}

func lowerProduct(pr product, slots map[string]int) (evalFn, error) {
	num, err := lowerAll(pr.num, slots)
	if err != nil {
		return nil, err
	}
	den, err := lowerAll(pr.den, slots)
	if err != nil {
		return nil, err
	}
	hasCoef := pr.coef != nil
	var coef float64
	if hasCoef {
		coef = pr.coef.Float64()
	}
	neg := pr.neg

	return func(s []float64) float64 {
		var acc float64
		switch {
		case hasCoef:
			acc = coef
			for _, f := range num {
				acc *= f(s)
			}
		case len(num) > 0:
			acc = num[0](s)
			for _, f := range num[1:] {
				acc *= f(s)
			}
		default:
			acc = 1
		}
		if len(den) > 0 {
			d := den[0](s)
			for _, f := range den[1:] {
				d *= f(s)
			}
			acc /= d
		}
		if neg {
			acc = -acc
		}
		return acc
	}, nil
}

func lowerPow(pw *symbolic.Pow, slots map[string]int) (evalFn, error) {
	base, exp := pw.Base(), pw.Exp()
	if n, ok := exp.(*symbolic.Num); ok && n.Sign() < 0 {
		inner, err := lower(symbolic.PowOf(base, symbolic.NegOf(n)), slots)
		if err != nil {
			return nil, err
		}
		return func(s []float64) float64 { return 1 / inner(s) }, nil
	}
	if c, ok := base.(*symbolic.Const); ok && c.Name() == "e" {
		x, err := lower(exp, slots)
		if err != nil {
			return nil, err
		}
		return func(s []float64) float64 { return math.Exp(x(s)) }, nil
	}
	b, err := lower(base, slots)
	if err != nil {
		return nil, err
	}
	if n, ok := exp.(*symbolic.Num); ok && n.Rat().Cmp(half) == 0 {
		return func(s []float64) float64 { return math.Sqrt(b(s)) }, nil
	}
	x, err := lower(exp, slots)
	if err != nil {
		return nil, err
	}
	return func(s []float64) float64 { return math.Pow(b(s), x(s)) }, nil
}
