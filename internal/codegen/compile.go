// Package codegen compiles symbolic expressions into numeric functions.
//
// [Compile] eliminates common subexpressions across all outputs, then emits
// a Go function that unpacks its arguments, computes each shared
// subexpression once and returns the outputs as a []float64:
//
//	func spring(k float64, state []float64) []float64 {
//		x, v := state[0], state[1]
//		x0 := math.Sin(x)
//		return []float64{v, -k * x0, x0 * v}
//	}
//
// A generated function always returns a slice, even for a single
// expression, so every caller unpacks results the same way.
//
// The resulting [Function] carries the formatted source, a native
// evaluator built from the same bindings, and [Function.Interpret], which
// runs the source itself through an embedded Go interpreter.
package codegen

import (
	"fmt"
	"go/format"
	"go/token"
	"iter"
	"strings"

	"github.com/san-kum/linmodal/internal/symbolic"
)

// Function is a compiled set of expressions.
type Function struct {
	Name string
	Args []Arg
	// Bindings are the eliminated subexpressions in evaluation order.
	Bindings []symbolic.Binding
	// Outputs are the returned expressions, rewritten over Bindings, in the
	// order they were given.
	Outputs []symbolic.Expr
	// Rows and Cols give the output shape: len(Outputs)×1 for Compile, the
	// matrix shape for CompileMatrix. Outputs are row-major.
	Rows, Cols int
	// Source is the gofmt-formatted function declaration.
	Source string

	sig      *signature
	usesMath bool
	bindFns  []evalFn
	outFns   []evalFn
}

// Compile builds a Function named name over args returning exprs. Unused
// arguments are allowed; a symbol no argument binds is not.
func Compile(name string, args []Arg, exprs ...symbolic.Expr) (*Function, error) {
	f, err := compile(name, args, exprs)
	if err != nil {
		return nil, err
	}
	f.Rows, f.Cols = len(exprs), 1
	return f, nil
}

// CompileMatrix compiles every entry of m, row-major.
func CompileMatrix(name string, args []Arg, m *symbolic.Matrix) (*Function, error) {
	f, err := compile(name, args, m.Entries())
	if err != nil {
		return nil, err
	}
	f.Rows, f.Cols = m.Rows(), m.Cols()
	return f, nil
}

func compile(name string, args []Arg, exprs []symbolic.Expr) (*Function, error) {
	if _, reserved := reservedIdents[name]; reserved || !token.IsIdentifier(name) || name == "init" {
		return nil, fmt.Errorf("%w: %q is not a valid function name", ErrInvalidInput, name)
	}
	if len(exprs) == 0 {
		return nil, fmt.Errorf("%w: no expressions to compile", ErrInvalidInput)
	}
	sig, err := normalize(args)
	if err != nil {
		return nil, err
	}
	for _, e := range exprs {
		if e == nil {
			return nil, fmt.Errorf("%w: nil expression", ErrInvalidInput)
		}
		for _, s := range symbolic.FreeSymbols(e) {
			if _, ok := sig.idents[s]; !ok {
				return nil, fmt.Errorf("%w: symbol %s is not bound by any argument", ErrInvalidInput, s)
			}
		}
	}

	bindings, reduced := symbolic.CSE(exprs, freshNames(sig))

	f := &Function{
		Name:     name,
		Args:     append([]Arg(nil), args...),
		Bindings: bindings,
		Outputs:  reduced,
		sig:      sig,
	}

	// Bindings occupy the slots after the argument leaves.
	names := make(map[string]string, len(sig.idents)+len(bindings))
	slots := make(map[string]int, len(sig.slots)+len(bindings))
	for k, v := range sig.idents {
		names[k] = v
	}
	for k, v := range sig.slots {
		slots[k] = v
	}

	f.bindFns = make([]evalFn, len(bindings))
	for i, b := range bindings {
		fn, err := lower(b.Expr, slots)
		if err != nil {
			return nil, err
		}
		f.bindFns[i] = fn
		names[b.Sym.Name()] = b.Sym.Name()
		slots[b.Sym.Name()] = sig.nleaf + i
	}
	if f.outFns, err = lowerAll(reduced, slots); err != nil {
		return nil, err
	}

	src, usesMath, err := emit(name, sig, bindings, reduced, names)
	if err != nil {
		return nil, err
	}
	f.Source, f.usesMath = src, usesMath
	return f, nil
}

// freshNames yields x0, x1, ... skipping every identifier the signature
// already uses, including symbols of unused arguments.
func freshNames(sig *signature) iter.Seq[*symbolic.Sym] {
	return func(yield func(*symbolic.Sym) bool) {
		for s := range symbolic.NumberedSymbols("x") {
			if _, taken := sig.used[s.Name()]; taken {
				continue
			}
			if _, taken := sig.idents[s.Name()]; taken {
				continue
			}
			if !yield(s) {
				return
			}
		}
	}
}

func emit(name string, sig *signature, bindings []symbolic.Binding, outputs []symbolic.Expr, names map[string]string) (string, bool, error) {
	p := &printer{names: names}

	referenced := map[string]bool{}
	for _, b := range bindings {
		for _, s := range symbolic.FreeSymbols(b.Expr) {
			referenced[s] = true
		}
	}
	for _, e := range outputs {
		for _, s := range symbolic.FreeSymbols(e) {
			referenced[s] = true
		}
	}

	var b strings.Builder
	params := make([]string, len(sig.params))
	for i, prm := range sig.params {
		typ := "float64"
		if prm.group {
			typ = "[]float64"
		}
		params[i] = prm.ident + " " + typ
	}
	fmt.Fprintf(&b, "func %s(%s) []float64 {\n", name, strings.Join(params, ", "))

	for _, prm := range sig.params {
		if !prm.group || len(prm.leaves) == 0 {
			continue
		}
		lhs := make([]string, len(prm.leaves))
		rhs := make([]string, len(prm.leaves))
		var unused []string
		for i, l := range prm.leaves {
			lhs[i] = l.ident
			rhs[i] = fmt.Sprintf("%s[%d]", prm.ident, i)
			if !referenced[l.sym] {
				unused = append(unused, l.ident)
			}
		}
		fmt.Fprintf(&b, "%s := %s\n", strings.Join(lhs, ", "), strings.Join(rhs, ", "))
		for _, u := range unused {
			fmt.Fprintf(&b, "_ = %s\n", u)
		}
	}

	for _, bind := range bindings {
		text, err := p.expr(bind.Expr)
		if err != nil {
			return "", false, err
		}
		fmt.Fprintf(&b, "%s := %s\n", bind.Sym.Name(), text)
		if !referenced[bind.Sym.Name()] {
			fmt.Fprintf(&b, "_ = %s\n", bind.Sym.Name())
		}
	}

	results := make([]string, len(outputs))
	for i, e := range outputs {
		text, err := p.expr(e)
		if err != nil {
			return "", false, err
		}
		results[i] = text
	}
	fmt.Fprintf(&b, "return []float64{%s}\n}\n", strings.Join(results, ", "))

	src, err := format.Source([]byte(b.String()))
	if err != nil {
		return "", false, fmt.Errorf("codegen: formatting %s: %w", name, err)
	}
	return string(src), p.usesMath, nil
}

// File returns a complete Go source file declaring the function in package
// pkg.
func (f *Function) File(pkg string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "// Code generated by linmodal. DO NOT EDIT.\n\npackage %s\n\n", pkg)
	if f.usesMath {
		b.WriteString("import \"math\"\n\n")
	}
	b.WriteString(f.Source)
	return b.String()
}

// Arity is the number of parameters Call expects.
func (f *Function) Arity() int { return len(f.sig.params) }

// Call evaluates the function natively. Scalar arguments are float64,
// grouped arguments []float64 of the group's length. Each binding is
// computed once per call.
func (f *Function) Call(args ...any) ([]float64, error) {
	slots := make([]float64, f.sig.nleaf+len(f.bindFns))
	if err := f.load(slots, args); err != nil {
		return nil, err
	}
	for i, fn := range f.bindFns {
		slots[f.sig.nleaf+i] = fn(slots)
	}
	out := make([]float64, len(f.outFns))
	for i, fn := range f.outFns {
		out[i] = fn(slots)
	}
	return out, nil
}

// load checks args against the signature and copies them into slots.
func (f *Function) load(slots []float64, args []any) error {
	if len(args) != len(f.sig.params) {
		return fmt.Errorf("%w: %s takes %d arguments, got %d", ErrInvalidInput, f.Name, len(f.sig.params), len(args))
	}
	for i, prm := range f.sig.params {
		if !prm.group {
			v, ok := args[i].(float64)
			if !ok {
				return fmt.Errorf("%w: argument %d (%s) must be float64, got %T", ErrInvalidInput, i, prm.ident, args[i])
			}
			slots[prm.leaves[0].slot] = v
			continue
		}
		vs, ok := args[i].([]float64)
		if !ok {
			return fmt.Errorf("%w: argument %d (%s) must be []float64, got %T", ErrInvalidInput, i, prm.ident, args[i])
		}
		if len(vs) != len(prm.leaves) {
			return fmt.Errorf("%w: argument %d (%s) needs %d values, got %d", ErrInvalidInput, i, prm.ident, len(prm.leaves), len(vs))
		}
		for j, l := range prm.leaves {
			slots[l.slot] = vs[j]
		}
	}
	return nil
}
