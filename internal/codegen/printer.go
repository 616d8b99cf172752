package codegen

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/san-kum/linmodal/internal/symbolic"
)

// Go operator precedence, lowest first.
const (
	precSum = iota + 1
	precProd
	precUnary
	precAtom
)

var goFuncs = map[string]string{
	"sin":   "math.Sin",
	"cos":   "math.Cos",
	"tan":   "math.Tan",
	"exp":   "math.Exp",
	"log":   "math.Log",
	"asin":  "math.Asin",
	"acos":  "math.Acos",
	"atan":  "math.Atan",
	"sinh":  "math.Sinh",
	"cosh":  "math.Cosh",
	"tanh":  "math.Tanh",
	"abs":   "math.Abs",
	"floor": "math.Floor",
	"ceil":  "math.Ceil",
}

var goConsts = map[string]string{"pi": "math.Pi", "e": "math.E"}

var half = big.NewRat(1, 2)

// product is a Mul split into the shape both the printer and the native
// evaluator follow: neg * coef * num[0] * num[1] ... / (den[0] * den[1] ...).
type product struct {
	neg  bool
	coef *symbolic.Num
	num  []symbolic.Expr
	den  []symbolic.Expr
}

func splitProduct(m *symbolic.Mul) product {
	var p product
	for _, f := range m.Factors() {
		if n, ok := f.(*symbolic.Num); ok {
			switch {
			case n.Is(-1):
				p.neg = true
			case !n.IsOne():
				p.coef = n
			}
			continue
		}
		if pw, ok := f.(*symbolic.Pow); ok {
			if e, ok := pw.Exp().(*symbolic.Num); ok && e.Sign() < 0 {
				p.den = append(p.den, symbolic.PowOf(pw.Base(), symbolic.NegOf(e)))
				continue
			}
		}
		p.num = append(p.num, f)
	}
	return p
}

// isNegative reports whether a sum term prints with a leading minus.
func isNegative(e symbolic.Expr) bool {
	switch t := e.(type) {
	case *symbolic.Num:
		return t.Sign() < 0
	case *symbolic.Mul:
		if n, ok := t.Factors()[0].(*symbolic.Num); ok {
			return n.Sign() < 0
		}
	}
	return false
}

// printer renders expressions as Go source using the identifiers in names.
type printer struct {
	names    map[string]string
	usesMath bool
}

func (p *printer) expr(e symbolic.Expr) (string, error) {
	s, _, err := p.print(e)
	return s, err
}

func (p *printer) wrapped(e symbolic.Expr, level int) (string, error) {
	s, prec, err := p.print(e)
	if err != nil {
		return "", err
	}
	if prec < level {
		return "(" + s + ")", nil
	}
	return s, nil
}

func (p *printer) print(e symbolic.Expr) (string, int, error) {
	switch t := e.(type) {
	case *symbolic.Num:
		return p.number(t.Float64())

	case *symbolic.Sym:
		id, ok := p.names[t.Name()]
		if !ok {
			return "", 0, fmt.Errorf("%w: symbol %s is not bound by any argument", ErrInvalidInput, t.Name())
		}
		return id, precAtom, nil

	case *symbolic.Const:
		c, ok := goConsts[t.Name()]
		if !ok {
			return p.number(t.Value())
		}
		p.usesMath = true
		return c, precAtom, nil

	case *symbolic.Add:
		var b strings.Builder
		for i, term := range t.Terms() {
			if i > 0 && isNegative(term) {
				s, err := p.wrapped(symbolic.NegOf(term), precProd)
				if err != nil {
					return "", 0, err
				}
				b.WriteString(" - " + s)
				continue
			}
			s, err := p.wrapped(term, precSum)
			if err != nil {
				return "", 0, err
			}
			if i > 0 {
				b.WriteString(" + ")
			}
			b.WriteString(s)
		}
		return b.String(), precSum, nil

	case *symbolic.Mul:
		return p.product(splitProduct(t))

	case *symbolic.Pow:
		return p.power(t)

	case *symbolic.Func:
		fn, ok := goFuncs[t.Name()]
		if !ok {
			return "", 0, fmt.Errorf("%w: function %s has no Go equivalent", symbolic.ErrUnsupported, t.Name())
		}
		args := t.Args()
		parts := make([]string, len(args))
		for i, a := range args {
			s, err := p.expr(a)
			if err != nil {
				return "", 0, err
			}
			parts[i] = s
		}
		p.usesMath = true
		return fn + "(" + strings.Join(parts, ", ") + ")", precAtom, nil
	}
	return "", 0, fmt.Errorf("%w: %T", symbolic.ErrUnsupported, e)
}

func (p *printer) number(v float64) (string, int, error) {
	switch {
	case math.IsInf(v, 1):
		p.usesMath = true
		return "math.Inf(1)", precAtom, nil
	case math.IsInf(v, -1):
		p.usesMath = true
		return "math.Inf(-1)", precAtom, nil
	}
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if v < 0 {
		return s, precUnary, nil
	}
	return s, precAtom, nil
}

func (p *printer) product(pr product) (string, int, error) {
	var num []string
	if pr.coef != nil {
		s, _, err := p.number(pr.coef.Float64())
		if err != nil {
			return "", 0, err
		}
		num = append(num, s)
	}
	for _, f := range pr.num {
		s, err := p.wrapped(f, precUnary)
		if err != nil {
			return "", 0, err
		}
		num = append(num, s)
	}
	if len(num) == 0 {
		num = append(num, "1")
	}
	text := strings.Join(num, " * ")

	if len(pr.den) > 0 {
		den := make([]string, len(pr.den))
		for i, f := range pr.den {
			s, err := p.wrapped(f, precUnary)
			if err != nil {
				return "", 0, err
			}
			den[i] = s
		}
		d := strings.Join(den, " * ")
		if len(den) > 1 {
			d = "(" + d + ")"
		}
		text += " / " + d
	}
	if pr.neg {
		text = "-" + text
	}
	return text, precProd, nil
}

func (p *printer) power(pw *symbolic.Pow) (string, int, error) {
	base, exp := pw.Base(), pw.Exp()
	if n, ok := exp.(*symbolic.Num); ok && n.Sign() < 0 {
		s, err := p.wrapped(symbolic.PowOf(base, symbolic.NegOf(n)), precUnary)
		if err != nil {
			return "", 0, err
		}
		return "1 / " + s, precProd, nil
	}

	p.usesMath = true
	if c, ok := base.(*symbolic.Const); ok && c.Name() == "e" {
		s, err := p.expr(exp)
		if err != nil {
			return "", 0, err
		}
		return "math.Exp(" + s + ")", precAtom, nil
	}
	b, err := p.expr(base)
	if err != nil {
		return "", 0, err
	}
	if n, ok := exp.(*symbolic.Num); ok && n.Rat().Cmp(half) == 0 {
		return "math.Sqrt(" + b + ")", precAtom, nil
	}
	x, err := p.expr(exp)
	if err != nil {
		return "", 0, err
	}
	return "math.Pow(" + b + ", " + x + ")", precAtom, nil
}
