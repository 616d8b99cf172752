package symbolic

import "strings"

// Printing precedence, lowest binds loosest.
const (
	precAdd = iota + 1
	precMul
	precPow
	precAtom
)

func precOf(e Expr) int {
	switch v := e.(type) {
	case *Add:
		return precAdd
	case *Mul:
		if c, ok := v.factors[0].(*Num); ok && c.Sign() < 0 {
			return precAdd
		}
		return precMul
	case *Pow:
		return precPow
	case *Num:
		if v.Sign() < 0 {
			return precAdd
		}
		if !v.IsInt() {
			return precMul
		}
	}
	return precAtom
}

func wrap(e Expr, min int) string {
	if precOf(e) < min {
		return "(" + e.String() + ")"
	}
	return e.String()
}

func (a *Add) String() string {
	var b strings.Builder
	for i, t := range a.terms {
		s := t.String()
		switch {
		case i == 0:
			b.WriteString(s)
		case strings.HasPrefix(s, "-"):
			b.WriteString(" - ")
			b.WriteString(s[1:])
		default:
			b.WriteString(" + ")
			b.WriteString(s)
		}
	}
	return b.String()
}

func (m *Mul) String() string {
	factors := m.factors
	prefix := ""
	if c, ok := factors[0].(*Num); ok {
		factors = factors[1:]
		switch {
		case c.Is(-1):
			prefix = "-"
		default:
			prefix = c.String() + "*"
		}
	}
	parts := make([]string, len(factors))
	for i, f := range factors {
		parts[i] = wrap(f, precMul)
	}
	return prefix + strings.Join(parts, "*")
}

func (p *Pow) String() string {
	return wrap(p.base, precAtom) + "^" + wrap(p.exp, precAtom)
}

func (f *Func) String() string {
	parts := make([]string, len(f.args))
	for i, a := range f.args {
		parts[i] = a.String()
	}
	return f.name + "(" + strings.Join(parts, ", ") + ")"
}

// Is reports whether n equals the integer v.
func (n *Num) Is(v int64) bool { return n.val.IsInt() && n.val.Num().IsInt64() && n.val.Num().Int64() == v }
