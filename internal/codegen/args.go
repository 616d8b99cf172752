package codegen

import (
	"fmt"
	"go/token"
	"strings"
	"unicode"

	"github.com/san-kum/linmodal/internal/symbolic"
)

// Arg is one parameter of a generated function. A scalar Arg binds the
// symbol Name to a float64 parameter. A group Arg is passed as a single
// []float64 whose elements are bound, depth-first, to the leaves of Group;
// its Name, if set, names the slice parameter.
type Arg struct {
	Name  string
	Group []Arg
}

// Scalar returns a float64 parameter bound to the symbol name.
func Scalar(name string) Arg { return Arg{Name: name} }

// Scalars returns one scalar Arg per name.
func Scalars(names ...string) []Arg {
	out := make([]Arg, len(names))
	for i, n := range names {
		out[i] = Scalar(n)
	}
	return out
}

// Group returns an unnamed grouped parameter.
func Group(args ...Arg) Arg { return Arg{Group: append([]Arg{}, args...)} }

// SymbolGroup groups syms under the parameter name.
func SymbolGroup(name string, syms ...*symbolic.Sym) Arg {
	g := Arg{Name: name, Group: make([]Arg, len(syms))}
	for i, s := range syms {
		g.Group[i] = Scalar(s.Name())
	}
	return g
}

// IsGroup reports whether a is passed as a slice.
func (a Arg) IsGroup() bool { return a.Group != nil }

// Len is the number of values a carries: 1 for a scalar, the leaf count for
// a group.
func (a Arg) Len() int {
	if !a.IsGroup() {
		return 1
	}
	n := 0
	for _, g := range a.Group {
		n += g.Len()
	}
	return n
}

func (a Arg) String() string {
	if !a.IsGroup() {
		return a.Name
	}
	parts := make([]string, len(a.Group))
	for i, g := range a.Group {
		parts[i] = g.String()
	}
	return a.Name + "[" + strings.Join(parts, ", ") + "]"
}

type leaf struct {
	sym   string
	ident string
	slot  int
}

type param struct {
	ident  string
	group  bool
	leaves []leaf
}

// signature is the normalized argument list.
type signature struct {
	params []param
	// idents maps symbol names to Go identifiers.
	idents map[string]string
	slots  map[string]int
	used   map[string]struct{}
	nleaf  int
}

// reservedIdents would shadow names the generated body relies on.
var reservedIdents = map[string]struct{}{"_": {}, "math": {}, "float64": {}}

func normalize(args []Arg) (*signature, error) {
	sig := &signature{
		idents: map[string]string{},
		slots:  map[string]int{},
		used:   map[string]struct{}{},
	}
	for r := range reservedIdents {
		sig.used[r] = struct{}{}
	}

	// Symbol identifiers first, so slice parameter names never take them.
	var walk func(a Arg) error
	walk = func(a Arg) error {
		if a.IsGroup() {
			for _, g := range a.Group {
				if err := walk(g); err != nil {
					return err
				}
			}
			return nil
		}
		if a.Name == "" {
			return fmt.Errorf("%w: empty argument name", ErrInvalidInput)
		}
		if _, dup := sig.idents[a.Name]; dup {
			return fmt.Errorf("%w: symbol %s bound twice", ErrInvalidInput, a.Name)
		}
		sig.idents[a.Name] = sig.claim(sanitize(a.Name))
		sig.slots[a.Name] = sig.nleaf
		sig.nleaf++
		return nil
	}
	for _, a := range args {
		if err := walk(a); err != nil {
			return nil, err
		}
	}

	for i, a := range args {
		if !a.IsGroup() {
			sig.params = append(sig.params, param{
				ident:  sig.idents[a.Name],
				leaves: []leaf{{sym: a.Name, ident: sig.idents[a.Name], slot: sig.slots[a.Name]}},
			})
			continue
		}
		base := fmt.Sprintf("arg%d", i)
		if a.Name != "" {
			base = sanitize(a.Name)
		}
		p := param{ident: sig.claim(base), group: true}
		for _, name := range leafNames(a) {
			p.leaves = append(p.leaves, leaf{sym: name, ident: sig.idents[name], slot: sig.slots[name]})
		}
		sig.params = append(sig.params, p)
	}
	return sig, nil
}

func leafNames(a Arg) []string {
	if !a.IsGroup() {
		return []string{a.Name}
	}
	var out []string
	for _, g := range a.Group {
		out = append(out, leafNames(g)...)
	}
	return out
}

// claim reserves the first free identifier among base, base_, base__, ...
func (s *signature) claim(base string) string {
	id := base
	for {
		if _, taken := s.used[id]; !taken && !token.IsKeyword(id) {
			s.used[id] = struct{}{}
			return id
		}
		id += "_"
	}
}

// sanitize maps an arbitrary symbol name onto a Go identifier.
func sanitize(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case unicode.IsLetter(r) || r == '_':
			b.WriteRune(r)
		case unicode.IsDigit(r):
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_v"
	}
	return b.String()
}
