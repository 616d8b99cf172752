package codegen

import (
	"fmt"
	"reflect"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// Interpreted is a Function whose emitted source runs in a Go interpreter.
type Interpreted struct {
	fn   *Function
	call reflect.Value
}

// Interpret loads f.Source into a fresh interpreter that can reach the
// standard library only, and resolves the generated function.
func (f *Function) Interpret() (*Interpreted, error) {
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("%w: loading stdlib: %v", ErrInterpret, err)
	}
	if f.usesMath {
		if _, err := i.Eval(`import "math"`); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInterpret, err)
		}
	}
	if _, err := i.Eval(f.Source); err != nil {
		return nil, fmt.Errorf("%w: evaluating %s: %v", ErrInterpret, f.Name, err)
	}
	v, err := i.Eval(f.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving %s: %v", ErrInterpret, f.Name, err)
	}
	if v.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: %s is a %s, not a function", ErrInterpret, f.Name, v.Kind())
	}
	return &Interpreted{fn: f, call: v}, nil
}

// Call runs the interpreted function with the same argument rules as
// Function.Call.
func (p *Interpreted) Call(args ...any) ([]float64, error) {
	slots := make([]float64, p.fn.sig.nleaf+len(p.fn.bindFns))
	if err := p.fn.load(slots, args); err != nil {
		return nil, err
	}
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		in[i] = reflect.ValueOf(a)
	}
	out := p.call.Call(in)
	res, ok := out[0].Interface().([]float64)
	if !ok {
		return nil, fmt.Errorf("%w: %s returned %s", ErrInterpret, p.fn.Name, out[0].Type())
	}
	return res, nil
}
