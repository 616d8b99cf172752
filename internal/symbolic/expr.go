package symbolic

import (
	"math"
	"math/big"
	"sort"
	"strings"
)

// Expr is an immutable symbolic expression.
//
// Key returns a canonical structural encoding: two expressions are
// considered equal exactly when their keys match.
type Expr interface {
	String() string
	Key() string
	Args() []Expr
	rebuild(args []Expr) Expr
}

// Equal reports whether a and b are structurally identical.
func Equal(a, b Expr) bool { return a.Key() == b.Key() }

// ============================================================
// Num
// ============================================================

// Num is an exact rational constant.
type Num struct{ val *big.Rat }

func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }

// F returns the rational p/q. It panics when q is zero.
func F(p, q int64) *Num {
	if q == 0 {
		panic("symbolic: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac64(p, q)}
}

// NFloat converts a finite float64 exactly. It panics on NaN or Inf.
func NFloat(f float64) *Num {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		panic("symbolic: non-finite constant")
	}
	return &Num{val: new(big.Rat).SetFloat64(f)}
}

// NRat copies r into a constant.
func NRat(r *big.Rat) *Num { return &Num{val: new(big.Rat).Set(r)} }

func (n *Num) Rat() *big.Rat    { return new(big.Rat).Set(n.val) }
func (n *Num) Float64() float64 { f, _ := n.val.Float64(); return f }
func (n *Num) IsZero() bool     { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool      { return n.val.Cmp(big.NewRat(1, 1)) == 0 }
func (n *Num) IsInt() bool      { return n.val.IsInt() }
func (n *Num) Sign() int        { return n.val.Sign() }
func (n *Num) Args() []Expr     { return nil }
func (n *Num) Key() string      { return "#" + n.val.RatString() }

func (n *Num) rebuild([]Expr) Expr { return n }

func (n *Num) String() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

func zero() *Num { return N(0) }
func one() *Num  { return N(1) }

// ============================================================
// Sym
// ============================================================

// Sym is a named variable.
type Sym struct{ name string }

func S(name string) *Sym { return &Sym{name: name} }

// Symbols returns one symbol per name, in order.
func Symbols(names ...string) []*Sym {
	out := make([]*Sym, len(names))
	for i, n := range names {
		out[i] = S(n)
	}
	return out
}

func (s *Sym) Name() string        { return s.name }
func (s *Sym) String() string      { return s.name }
func (s *Sym) Key() string         { return "$" + s.name }
func (s *Sym) Args() []Expr        { return nil }
func (s *Sym) rebuild([]Expr) Expr { return s }

// ============================================================
// Const
// ============================================================

// Const is a named irrational constant.
type Const struct {
	name  string
	value float64
}

var (
	Pi = &Const{name: "pi", value: math.Pi}
	E  = &Const{name: "e", value: math.E}
)

func (c *Const) Name() string        { return c.name }
func (c *Const) Value() float64      { return c.value }
func (c *Const) String() string      { return c.name }
func (c *Const) Key() string         { return "@" + c.name }
func (c *Const) Args() []Expr        { return nil }
func (c *Const) rebuild([]Expr) Expr { return c }

// ============================================================
// Add
// ============================================================

// Add is a sum of at least two terms in canonical order.
type Add struct {
	terms []Expr
	key   string
}

func newAdd(terms []Expr) *Add { return &Add{terms: terms, key: joinKeys("+", terms)} }

// AddOf returns the simplified sum of terms. Like terms are collected and
// numeric terms folded into a single trailing constant.
func AddOf(terms ...Expr) Expr {
	type group struct {
		coeff *big.Rat
		rest  Expr
	}
	constant := new(big.Rat)
	groups := map[string]*group{}
	var order []string

	var walk func(Expr)
	walk = func(t Expr) {
		switch v := t.(type) {
		case *Add:
			for _, u := range v.terms {
				walk(u)
			}
		case *Num:
			constant.Add(constant, v.val)
		default:
			c, rest := splitCoeff(t)
			k := rest.Key()
			g, ok := groups[k]
			if !ok {
				g = &group{coeff: new(big.Rat), rest: rest}
				groups[k] = g
				order = append(order, k)
			}
			g.coeff.Add(g.coeff, c)
		}
	}
	for _, t := range terms {
		walk(t)
	}

	sort.Strings(order)
	out := make([]Expr, 0, len(order)+1)
	for _, k := range order {
		g := groups[k]
		if g.coeff.Sign() == 0 {
			continue
		}
		out = append(out, scaled(g.coeff, g.rest))
	}
	if constant.Sign() != 0 {
		out = append(out, &Num{val: constant})
	}
	switch len(out) {
	case 0:
		return zero()
	case 1:
		return out[0]
	}
	return newAdd(out)
}

func (a *Add) Terms() []Expr             { return append([]Expr(nil), a.terms...) }
func (a *Add) Args() []Expr              { return a.Terms() }
func (a *Add) Key() string               { return a.key }
func (a *Add) rebuild(args []Expr) Expr { return AddOf(args...) }

// splitCoeff separates the leading rational coefficient of a product.
func splitCoeff(e Expr) (*big.Rat, Expr) {
	m, ok := e.(*Mul)
	if !ok {
		return big.NewRat(1, 1), e
	}
	c, ok := m.factors[0].(*Num)
	if !ok {
		return big.NewRat(1, 1), e
	}
	rest := m.factors[1:]
	if len(rest) == 1 {
		return new(big.Rat).Set(c.val), rest[0]
	}
	return new(big.Rat).Set(c.val), newMul(append([]Expr(nil), rest...))
}

// scaled rebuilds c*rest where rest carries no coefficient of its own.
func scaled(c *big.Rat, rest Expr) Expr {
	if c.Cmp(big.NewRat(1, 1)) == 0 {
		return rest
	}
	coeff := &Num{val: new(big.Rat).Set(c)}
	if m, ok := rest.(*Mul); ok {
		return newMul(append([]Expr{coeff}, m.factors...))
	}
	return newMul([]Expr{coeff, rest})
}

// ============================================================
// Mul
// ============================================================

// Mul is a product of at least two factors. A rational coefficient, when
// present, is always the first factor.
type Mul struct {
	factors []Expr
	key     string
}

func newMul(factors []Expr) *Mul { return &Mul{factors: factors, key: joinKeys("*", factors)} }

// MulOf returns the simplified product of factors. Powers of a common base
// are merged by adding exponents.
func MulOf(factors ...Expr) Expr {
	type group struct {
		base Expr
		exps []Expr
	}
	coeff := big.NewRat(1, 1)
	groups := map[string]*group{}
	var order []string

	var walk func(Expr)
	walk = func(f Expr) {
		switch v := f.(type) {
		case *Mul:
			for _, u := range v.factors {
				walk(u)
			}
		case *Num:
			coeff.Mul(coeff, v.val)
		default:
			base, exp := f, Expr(one())
			if p, ok := f.(*Pow); ok {
				base, exp = p.base, p.exp
			}
			k := base.Key()
			g, ok := groups[k]
			if !ok {
				g = &group{base: base}
				groups[k] = g
				order = append(order, k)
			}
			g.exps = append(g.exps, exp)
		}
	}
	for _, f := range factors {
		walk(f)
	}
	if coeff.Sign() == 0 {
		return zero()
	}

	rest := make([]Expr, 0, len(order))
	regroup := false
	for _, k := range order {
		g := groups[k]
		var p Expr
		if len(g.exps) == 1 {
			p = PowOf(g.base, g.exps[0])
		} else {
			p = PowOf(g.base, AddOf(g.exps...))
		}
		switch pv := p.(type) {
		case *Num:
			coeff.Mul(coeff, pv.val)
		case *Mul:
			regroup = true
			rest = append(rest, pv)
		default:
			rest = append(rest, p)
		}
	}
	if regroup {
		return MulOf(append([]Expr{&Num{val: coeff}}, rest...)...)
	}
	if coeff.Sign() == 0 {
		return zero()
	}

	sortByKey(rest)
	isOne := coeff.Cmp(big.NewRat(1, 1)) == 0
	switch {
	case len(rest) == 0:
		return &Num{val: coeff}
	case len(rest) == 1 && isOne:
		return rest[0]
	case isOne:
		return newMul(rest)
	}
	return newMul(append([]Expr{&Num{val: coeff}}, rest...))
}

func (m *Mul) Factors() []Expr          { return append([]Expr(nil), m.factors...) }
func (m *Mul) Args() []Expr             { return m.Factors() }
func (m *Mul) Key() string              { return m.key }
func (m *Mul) rebuild(args []Expr) Expr { return MulOf(args...) }

// ============================================================
// Pow
// ============================================================

// Pow is base^exp.
type Pow struct {
	base, exp Expr
	key       string
}

func newPow(base, exp Expr) *Pow {
	return &Pow{base: base, exp: exp, key: "^(" + base.Key() + "," + exp.Key() + ")"}
}

// maxExactExponent bounds exact rational exponentiation of constants.
const maxExactExponent = 64

// PowOf returns the simplified power base^exp.
func PowOf(base, exp Expr) Expr {
	if e, ok := exp.(*Num); ok {
		if e.IsZero() {
			return one()
		}
		if e.IsOne() {
			return base
		}
	}
	if b, ok := base.(*Num); ok {
		if b.IsOne() {
			return one()
		}
		if e, ok := exp.(*Num); ok {
			if b.IsZero() && e.Sign() > 0 {
				return zero()
			}
			if e.IsInt() && !b.IsZero() {
				if r, ok := ratPow(b.val, e.val.Num()); ok {
					return &Num{val: r}
				}
			}
		}
	}
	if p, ok := base.(*Pow); ok {
		if e, ok := exp.(*Num); ok && e.IsInt() {
			return PowOf(p.base, MulOf(p.exp, e))
		}
	}
	return newPow(base, exp)
}

func ratPow(base *big.Rat, n *big.Int) (*big.Rat, bool) {
	if !n.IsInt64() {
		return nil, false
	}
	k := n.Int64()
	neg := k < 0
	if neg {
		k = -k
	}
	if k > maxExactExponent {
		return nil, false
	}
	e := big.NewInt(k)
	num := new(big.Int).Exp(base.Num(), e, nil)
	den := new(big.Int).Exp(base.Denom(), e, nil)
	if neg {
		num, den = den, num
	}
	if den.Sign() < 0 {
		num.Neg(num)
		den.Neg(den)
	}
	return new(big.Rat).SetFrac(num, den), true
}

func (p *Pow) Base() Expr               { return p.base }
func (p *Pow) Exp() Expr                { return p.exp }
func (p *Pow) Args() []Expr             { return []Expr{p.base, p.exp} }
func (p *Pow) Key() string              { return p.key }
func (p *Pow) rebuild(args []Expr) Expr { return PowOf(args[0], args[1]) }

// ============================================================
// Func
// ============================================================

// Func is a named function application. Names outside the built-in table
// are opaque: they print and substitute but cannot be evaluated or
// differentiated.
type Func struct {
	name string
	args []Expr
	key  string
}

func newFunc(name string, args []Expr) *Func {
	return &Func{name: name, args: args, key: "f:" + name + joinKeys("", args)}
}

// FuncOf applies name to args, folding the obvious identities of the
// built-in functions.
func FuncOf(name string, args ...Expr) Expr {
	if len(args) == 1 {
		if s, ok := foldFunc(name, args[0]); ok {
			return s
		}
	}
	return newFunc(name, append([]Expr(nil), args...))
}

func foldFunc(name string, arg Expr) (Expr, bool) {
	if n, ok := arg.(*Num); ok {
		switch {
		case n.IsZero():
			switch name {
			case "sin", "tan", "sinh", "tanh", "asin", "atan", "abs":
				return zero(), true
			case "cos", "cosh", "exp":
				return one(), true
			}
		case n.IsOne() && name == "log":
			return zero(), true
		}
		switch name {
		case "abs":
			return &Num{val: new(big.Rat).Abs(n.val)}, true
		case "floor", "ceil":
			if n.IsInt() {
				return n, true
			}
		}
	}
	if arg == Expr(E) && name == "log" {
		return one(), true
	}
	if f, ok := arg.(*Func); ok && len(f.args) == 1 {
		if (name == "log" && f.name == "exp") || (name == "exp" && f.name == "log") {
			return f.args[0], true
		}
	}
	return nil, false
}

func SinOf(x Expr) Expr  { return FuncOf("sin", x) }
func CosOf(x Expr) Expr  { return FuncOf("cos", x) }
func TanOf(x Expr) Expr  { return FuncOf("tan", x) }
func ExpOf(x Expr) Expr  { return FuncOf("exp", x) }
func LogOf(x Expr) Expr  { return FuncOf("log", x) }
func SqrtOf(x Expr) Expr { return PowOf(x, F(1, 2)) }
func AbsOf(x Expr) Expr  { return FuncOf("abs", x) }

func NegOf(x Expr) Expr    { return MulOf(N(-1), x) }
func SubOf(a, b Expr) Expr { return AddOf(a, NegOf(b)) }
func DivOf(a, b Expr) Expr { return MulOf(a, PowOf(b, N(-1))) }

func (f *Func) Name() string             { return f.name }
func (f *Func) Args() []Expr             { return append([]Expr(nil), f.args...) }
func (f *Func) Key() string              { return f.key }
func (f *Func) rebuild(args []Expr) Expr { return FuncOf(f.name, args...) }

// ============================================================
// helpers
// ============================================================

func joinKeys(op string, xs []Expr) string {
	var b strings.Builder
	b.WriteString(op)
	b.WriteByte('(')
	for i, x := range xs {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(x.Key())
	}
	b.WriteByte(')')
	return b.String()
}

func sortByKey(xs []Expr) {
	sort.SliceStable(xs, func(i, j int) bool { return xs[i].Key() < xs[j].Key() })
}

// isAtom reports whether e has no sub-expressions.
func isAtom(e Expr) bool {
	switch e.(type) {
	case *Num, *Sym, *Const:
		return true
	}
	return false
}
