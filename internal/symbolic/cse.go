package symbolic

import (
	"iter"
	"strconv"
)

// Binding names one eliminated subexpression.
type Binding struct {
	Sym  *Sym
	Expr Expr
}

// NumberedSymbols yields prefix0, prefix1, ... without bound.
func NumberedSymbols(prefix string) iter.Seq[*Sym] {
	return func(yield func(*Sym) bool) {
		for i := 0; ; i++ {
			if !yield(S(prefix + strconv.Itoa(i))) {
				return
			}
		}
	}
}

// CSE performs common-subexpression elimination jointly over exprs.
//
// Every compound subexpression occurring more than once is bound to a fresh
// symbol drawn from names; names already free in exprs are skipped. Bindings
// come back in dependency order: each refers only to free symbols of the
// input and to earlier bindings. The reduced expressions keep the order of
// exprs. If names runs dry, the remaining repeats are left inline.
//
// Operands shared by several sums or several products are factored first,
// so k*l*sin(x) and k*l*cos(x) compute k*l once.
func CSE(exprs []Expr, names iter.Seq[*Sym]) ([]Binding, []Expr) {
	exprs, nested := shareOperands(exprs)
	taken := map[string]struct{}{}
	seen := map[string]bool{}
	repeated := map[string]bool{}

	var count func(Expr)
	count = func(e Expr) {
		if isAtom(e) {
			return
		}
		k := e.Key()
		if seen[k] {
			repeated[k] = true
			return
		}
		seen[k] = true
		for _, a := range e.Args() {
			count(a)
		}
	}
	for _, e := range exprs {
		collectSymbols(e, taken)
		count(e)
	}

	next, stop := iter.Pull(names)
	defer stop()
	fresh := func() *Sym {
		for {
			s, ok := next()
			if !ok {
				return nil
			}
			if _, clash := taken[s.name]; !clash {
				taken[s.name] = struct{}{}
				return s
			}
		}
	}

	var bindings []Binding
	done := map[string]Expr{}

	var rebuild func(Expr) Expr
	rebuild = func(e Expr) Expr {
		if isAtom(e) {
			return e
		}
		k := e.Key()
		if r, ok := done[k]; ok {
			return r
		}
		args := e.Args()
		changed := nested[k]
		for i, a := range args {
			na := rebuild(a)
			if na != a {
				args[i] = na
				changed = true
			}
		}
		r := e
		if changed {
			r = e.rebuild(args)
		}
		if repeated[k] && !isTrivial(r) {
			if s := fresh(); s != nil {
				bindings = append(bindings, Binding{Sym: s, Expr: r})
				r = s
			}
		}
		done[k] = r
		return r
	}

	reduced := make([]Expr, len(exprs))
	for i, e := range exprs {
		reduced[i] = rebuild(e)
	}
	return bindings, reduced
}

// shareOperands rewrites exprs so that an operand subset common to two or
// more sums, or to two or more products, becomes one explicit nested node
// that the repeat count can see. Each pair of nodes is intersected in turn
// and every later node holding the whole subset takes it too. The returned
// set holds the keys of rewritten nodes, which are not canonical and must be
// rebuilt.
func shareOperands(exprs []Expr) ([]Expr, map[string]bool) {
	type plan struct {
		loose  []Expr
		shared []Expr
	}
	plans := map[string]*plan{}
	visited := map[string]bool{}
	var sums, products []*plan

	var collect func(Expr)
	collect = func(e Expr) {
		if isAtom(e) || visited[e.Key()] {
			return
		}
		visited[e.Key()] = true
		for _, a := range e.Args() {
			collect(a)
		}
		switch e.(type) {
		case *Add:
			p := &plan{loose: e.Args()}
			plans[e.Key()] = p
			sums = append(sums, p)
		case *Mul:
			p := &plan{loose: e.Args()}
			plans[e.Key()] = p
			products = append(products, p)
		}
	}
	for _, e := range exprs {
		collect(e)
	}

	take := func(p *plan, common []Expr, node Expr) {
		drop := make(map[string]bool, len(common))
		for _, c := range common {
			drop[c.Key()] = true
		}
		kept := p.loose[:0]
		for _, a := range p.loose {
			if !drop[a.Key()] {
				kept = append(kept, a)
			}
		}
		p.loose = kept
		p.shared = append(p.shared, node)
	}
	match := func(group []*plan, build func(...Expr) Expr) {
		for i, pi := range group {
			for j := i + 1; j < len(group); j++ {
				common := intersect(pi.loose, group[j].loose)
				if len(common) < 2 {
					continue
				}
				node := build(common...)
				take(pi, common, node)
				take(group[j], common, node)
				for _, pk := range group[j+1:] {
					if len(intersect(common, pk.loose)) == len(common) {
						take(pk, common, node)
					}
				}
			}
		}
	}
	match(sums, AddOf)
	match(products, MulOf)

	nested := map[string]bool{}
	memo := map[string]Expr{}
	var rewrite func(Expr) Expr
	rewrite = func(e Expr) Expr {
		if isAtom(e) {
			return e
		}
		k := e.Key()
		if r, ok := memo[k]; ok {
			return r
		}
		var r Expr
		// A node whose operands all went into one shared node is that node.
		if p := plans[k]; p != nil && len(p.shared) > 0 && (len(p.loose) > 0 || len(p.shared) > 1) {
			ops := make([]Expr, 0, len(p.shared)+len(p.loose))
			for _, s := range p.shared {
				ops = append(ops, rewrite(s))
			}
			for _, a := range p.loose {
				ops = append(ops, rewrite(a))
			}
			if _, ok := e.(*Add); ok {
				r = newAdd(ops)
			} else {
				r = newMul(ops)
			}
			nested[r.Key()] = true
		} else {
			args := e.Args()
			changed := false
			for i, a := range args {
				if na := rewrite(a); na != a {
					args[i] = na
					changed = true
				}
			}
			r = e
			if changed {
				r = rebuildRaw(e, args)
				nested[r.Key()] = true
			}
		}
		memo[k] = r
		return r
	}

	out := make([]Expr, len(exprs))
	for i, e := range exprs {
		out[i] = rewrite(e)
	}
	return out, nested
}

// intersect returns the elements of a whose keys also occur in b, in the
// order of a.
func intersect(a, b []Expr) []Expr {
	in := make(map[string]bool, len(b))
	for _, e := range b {
		in[e.Key()] = true
	}
	var out []Expr
	for _, e := range a {
		if in[e.Key()] {
			out = append(out, e)
		}
	}
	return out
}

// rebuildRaw replaces the operands of e without simplifying.
func rebuildRaw(e Expr, args []Expr) Expr {
	switch v := e.(type) {
	case *Add:
		return newAdd(args)
	case *Mul:
		return newMul(args)
	case *Pow:
		return newPow(args[0], args[1])
	case *Func:
		return newFunc(v.name, args)
	}
	return e.rebuild(args)
}

// isTrivial marks expressions not worth a binding: atoms and a constant
// times an atom.
func isTrivial(e Expr) bool {
	if isAtom(e) {
		return true
	}
	m, ok := e.(*Mul)
	if !ok || len(m.factors) != 2 {
		return false
	}
	_, isNum := m.factors[0].(*Num)
	return isNum && isAtom(m.factors[1])
}
