// Package models holds symbolic system definitions and a registry of
// built-in ones.
package models

import (
	"fmt"
	"maps"
	"slices"

	"github.com/san-kum/linmodal/internal/analysis"
	"github.com/san-kum/linmodal/internal/config"
	"github.com/san-kum/linmodal/internal/symbolic"
)

// Origin names the all-zero fixed point every model has.
const Origin = "origin"

// Model is a system written as infix equations, one per state.
type Model struct {
	Name        string
	Description string
	States      []string
	Params      map[string]float64
	Equations   []string
	// Points maps a name to one expression per state. Expressions may
	// use parameters.
	Points map[string][]string
}

func FromConfig(mf *config.ModelFile) *Model {
	m := &Model{
		Name:        mf.Name,
		Description: mf.Description,
		States:      slices.Clone(mf.States),
		Params:      maps.Clone(mf.Params),
		Equations:   slices.Clone(mf.Equations),
		Points:      make(map[string][]string, len(mf.Points)),
	}
	for k, v := range mf.Points {
		m.Points[k] = slices.Clone(v)
	}
	return m
}

func (m *Model) File() *config.ModelFile {
	mf := &config.ModelFile{
		Name:        m.Name,
		Description: m.Description,
		States:      slices.Clone(m.States),
		Params:      maps.Clone(m.Params),
		Equations:   slices.Clone(m.Equations),
		Points:      make(map[string][]string, len(m.Points)),
	}
	for k, v := range m.Points {
		mf.Points[k] = slices.Clone(v)
	}
	return mf
}

// System parses the equations. Each call returns a fresh System, so
// callers may change its parameters.
func (m *Model) System() (*analysis.System, error) {
	if len(m.Equations) != len(m.States) {
		return nil, fmt.Errorf("%w: %s has %d equations for %d states",
			ErrInvalidModel, m.Name, len(m.Equations), len(m.States))
	}
	dyn := make([]symbolic.Expr, len(m.Equations))
	for i, eq := range m.Equations {
		e, err := symbolic.Parse(eq)
		if err != nil {
			return nil, fmt.Errorf("%s: d%s/dt: %w", m.Name, m.States[i], err)
		}
		dyn[i] = e
	}
	params := maps.Clone(m.Params)
	if params == nil {
		params = map[string]float64{}
	}
	sys := &analysis.System{
		Name:     m.Name,
		States:   symbolic.Symbols(m.States...),
		Dynamics: dyn,
		Params:   params,
	}
	if err := sys.Validate(); err != nil {
		return nil, err
	}
	return sys, nil
}

// Point parses the named fixed point. An empty name means Origin, which
// is all zeros unless the model defines it.
func (m *Model) Point(name string) ([]symbolic.Expr, error) {
	if name == "" {
		name = Origin
	}
	texts, ok := m.Points[name]
	if !ok {
		if name != Origin {
			return nil, fmt.Errorf("%w: %s has no point %q", ErrUnknownPoint, m.Name, name)
		}
		xf := make([]symbolic.Expr, len(m.States))
		for i := range xf {
			xf[i] = symbolic.N(0)
		}
		return xf, nil
	}
	if len(texts) != len(m.States) {
		return nil, fmt.Errorf("%w: point %q of %s has %d coordinates for %d states",
			ErrInvalidModel, name, m.Name, len(texts), len(m.States))
	}
	xf := make([]symbolic.Expr, len(texts))
	for i, text := range texts {
		e, err := symbolic.Parse(text)
		if err != nil {
			return nil, fmt.Errorf("%s: point %q: %w", m.Name, name, err)
		}
		for _, s := range symbolic.FreeSymbols(e) {
			if _, ok := m.Params[s]; !ok {
				return nil, fmt.Errorf("%w: point %q of %s uses unknown symbol %q",
					ErrInvalidModel, name, m.Name, s)
			}
		}
		xf[i] = e
	}
	return xf, nil
}

// PointNames lists the named points, Origin first.
func (m *Model) PointNames() []string {
	names := []string{Origin}
	for _, k := range slices.Sorted(maps.Keys(m.Points)) {
		if k != Origin {
			names = append(names, k)
		}
	}
	return names
}
