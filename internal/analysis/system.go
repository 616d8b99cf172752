package analysis

import (
	"fmt"
	"sort"

	"github.com/san-kum/linmodal/internal/symbolic"
)

// System is a nonlinear model x' = f(x, p).
type System struct {
	Name string
	// States is the state vector; Dynamics[i] is the time derivative of
	// States[i].
	States   []*symbolic.Sym
	Dynamics []symbolic.Expr
	// Params holds the numeric value of every parameter symbol.
	Params map[string]float64
}

// Validate checks the shape of the system and that every free symbol of
// the dynamics is either a state or a parameter.
func (s *System) Validate() error {
	if len(s.States) == 0 {
		return fmt.Errorf("%w: %s has no states", ErrInvalidSystem, s.Name)
	}
	if len(s.States) != len(s.Dynamics) {
		return fmt.Errorf("%w: %s has %d states but %d equations", ErrInvalidSystem, s.Name, len(s.States), len(s.Dynamics))
	}
	known := make(map[string]bool, len(s.States)+len(s.Params))
	for _, x := range s.States {
		if known[x.Name()] {
			return fmt.Errorf("%w: state %s listed twice", ErrInvalidSystem, x.Name())
		}
		known[x.Name()] = true
	}
	for p := range s.Params {
		if known[p] {
			return fmt.Errorf("%w: %s is both a state and a parameter", ErrInvalidSystem, p)
		}
		known[p] = true
	}
	for i, f := range s.Dynamics {
		if f == nil {
			return fmt.Errorf("%w: equation %d is empty", ErrInvalidSystem, i)
		}
		for _, sym := range symbolic.FreeSymbols(f) {
			if !known[sym] {
				return fmt.Errorf("%w: symbol %s in d%s/dt is neither a state nor a parameter", ErrInvalidSystem, sym, s.States[i].Name())
			}
		}
	}
	return nil
}

// ParamNames returns the parameter names in sorted order. This is the
// argument order of every function compiled for the system.
func (s *System) ParamNames() []string {
	names := make([]string, 0, len(s.Params))
	for n := range s.Params {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// StateNames returns the state names in order.
func (s *System) StateNames() []string {
	names := make([]string, len(s.States))
	for i, x := range s.States {
		names[i] = x.Name()
	}
	return names
}

// WithParam returns a copy of s with one parameter replaced.
func (s *System) WithParam(name string, value float64) *System {
	cp := *s
	cp.Params = make(map[string]float64, len(s.Params))
	for k, v := range s.Params {
		cp.Params[k] = v
	}
	cp.Params[name] = value
	return &cp
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}
