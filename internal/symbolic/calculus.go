package symbolic

import (
	"fmt"
	"math"
	"sort"
)

// Diff returns the partial derivative of e with respect to x.
func Diff(e Expr, x *Sym) (Expr, error) { return diff(e, x.name) }

func diff(e Expr, v string) (Expr, error) {
	if !dependsOn(e, v) {
		return zero(), nil
	}
	switch t := e.(type) {
	case *Sym:
		return one(), nil

	case *Add:
		terms := make([]Expr, len(t.terms))
		for i, u := range t.terms {
			d, err := diff(u, v)
			if err != nil {
				return nil, err
			}
			terms[i] = d
		}
		return AddOf(terms...), nil

	case *Mul:
		terms := make([]Expr, 0, len(t.factors))
		for i, fi := range t.factors {
			if !dependsOn(fi, v) {
				continue
			}
			d, err := diff(fi, v)
			if err != nil {
				return nil, err
			}
			prod := make([]Expr, 0, len(t.factors))
			prod = append(prod, d)
			for j, fj := range t.factors {
				if j != i {
					prod = append(prod, fj)
				}
			}
			terms = append(terms, MulOf(prod...))
		}
		return AddOf(terms...), nil

	case *Pow:
		baseDep, expDep := dependsOn(t.base, v), dependsOn(t.exp, v)
		switch {
		case !expDep:
			db, err := diff(t.base, v)
			if err != nil {
				return nil, err
			}
			return MulOf(t.exp, PowOf(t.base, SubOf(t.exp, one())), db), nil
		case !baseDep:
			de, err := diff(t.exp, v)
			if err != nil {
				return nil, err
			}
			return MulOf(t, LogOf(t.base), de), nil
		default:
			db, err := diff(t.base, v)
			if err != nil {
				return nil, err
			}
			de, err := diff(t.exp, v)
			if err != nil {
				return nil, err
			}
			inner := AddOf(MulOf(de, LogOf(t.base)), MulOf(t.exp, db, PowOf(t.base, N(-1))))
			return MulOf(t, inner), nil
		}

	case *Func:
		b, ok := builtins[t.name]
		if !ok || b.deriv == nil || len(t.args) != 1 {
			return nil, fmt.Errorf("%w: cannot differentiate %s with respect to %s", ErrUnsupported, t, v)
		}
		da, err := diff(t.args[0], v)
		if err != nil {
			return nil, err
		}
		return MulOf(b.deriv(t.args[0]), da), nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupported, e)
}

func dependsOn(e Expr, v string) bool {
	switch t := e.(type) {
	case *Sym:
		return t.name == v
	case *Num, *Const:
		return false
	}
	for _, a := range e.Args() {
		if dependsOn(a, v) {
			return true
		}
	}
	return false
}

// Subs replaces every symbol named in repl simultaneously. Replacement
// values are inserted as-is and never scanned again, so a mapping such as
// {x: y, y: x} swaps the two symbols.
func Subs(e Expr, repl map[string]Expr) Expr {
	if len(repl) == 0 {
		return e
	}
	return subs(e, repl, map[string]Expr{})
}

func subs(e Expr, repl map[string]Expr, memo map[string]Expr) Expr {
	switch t := e.(type) {
	case *Sym:
		if r, ok := repl[t.name]; ok {
			return r
		}
		return t
	case *Num, *Const:
		return e
	}
	k := e.Key()
	if r, ok := memo[k]; ok {
		return r
	}
	args := e.Args()
	changed := false
	for i, a := range args {
		na := subs(a, repl, memo)
		if na != a {
			args[i] = na
			changed = true
		}
	}
	r := e
	if changed {
		r = e.rebuild(args)
	}
	memo[k] = r
	return r
}

// FreeSymbols returns the sorted names of all symbols in e.
func FreeSymbols(e Expr) []string {
	set := map[string]struct{}{}
	collectSymbols(e, set)
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func collectSymbols(e Expr, out map[string]struct{}) {
	if s, ok := e.(*Sym); ok {
		out[s.name] = struct{}{}
		return
	}
	for _, a := range e.Args() {
		collectSymbols(a, out)
	}
}

// Eval evaluates e numerically with symbol values taken from env.
func Eval(e Expr, env map[string]float64) (float64, error) {
	switch t := e.(type) {
	case *Num:
		return t.Float64(), nil
	case *Const:
		return t.value, nil
	case *Sym:
		v, ok := env[t.name]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrUnboundSymbol, t.name)
		}
		return v, nil
	case *Add:
		sum := 0.0
		for _, u := range t.terms {
			x, err := Eval(u, env)
			if err != nil {
				return 0, err
			}
			sum += x
		}
		return sum, nil
	case *Mul:
		prod := 1.0
		for _, u := range t.factors {
			x, err := Eval(u, env)
			if err != nil {
				return 0, err
			}
			prod *= x
		}
		return prod, nil
	case *Pow:
		b, err := Eval(t.base, env)
		if err != nil {
			return 0, err
		}
		x, err := Eval(t.exp, env)
		if err != nil {
			return 0, err
		}
		return math.Pow(b, x), nil
	case *Func:
		b, ok := builtins[t.name]
		if !ok || len(t.args) != 1 {
			return 0, fmt.Errorf("%w: cannot evaluate %s", ErrUnsupported, t)
		}
		x, err := Eval(t.args[0], env)
		if err != nil {
			return 0, err
		}
		return b.eval(x), nil
	}
	return 0, fmt.Errorf("%w: %T", ErrUnsupported, e)
}
