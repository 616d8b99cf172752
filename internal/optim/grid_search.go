// Package optim searches parameter grids for the most stable design.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/san-kum/linmodal/internal/analysis"
	"github.com/san-kum/linmodal/internal/symbolic"
)

// Objective scores a report; lower is better.
type Objective func(*analysis.Report) float64

// MaxReal favors the fastest slowest decay.
func MaxReal(r *analysis.Report) float64 { return r.Summary.MaxReal }

// MinusLeastDamping favors the best-damped system. The score is the
// largest cos(arg λ) over all modes, so it stays in [-1, 1]: a decaying real
// pole counts as -1, like an overdamped pair, and a real pole at or right of
// the origin counts as 1.
func MinusLeastDamping(r *analysis.Report) float64 {
	score := math.Inf(-1)
	for _, m := range r.Modes {
		d := m.Damping
		if !m.Oscillatory() {
			d = 1
			if m.Real < 0 {
				d = -1
			}
		}
		score = math.Max(score, d)
	}
	return score
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) == 0 || len(params) != len(ranges) {
		return nil, fmt.Errorf("%w: %d parameters, %d ranges", ErrInvalidGrid, len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("%w: no values for %s", ErrInvalidGrid, params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// ParseAxis reads "name=lo:hi:n" into a parameter and n evenly spaced
// values.
func ParseAxis(spec string) (string, []float64, error) {
	name, rng, ok := strings.Cut(spec, "=")
	parts := strings.Split(rng, ":")
	if !ok || name == "" || len(parts) != 3 {
		return "", nil, fmt.Errorf("%w: %q, want name=lo:hi:n", ErrInvalidGrid, spec)
	}
	lo, err1 := strconv.ParseFloat(parts[0], 64)
	hi, err2 := strconv.ParseFloat(parts[1], 64)
	n, err3 := strconv.Atoi(parts[2])
	if err := errors.Join(err1, err2, err3); err != nil || n < 1 {
		return "", nil, fmt.Errorf("%w: %q", ErrInvalidGrid, spec)
	}
	return name, analysis.Linspace(lo, hi, n), nil
}

// Result is the best grid point found.
type Result struct {
	Params map[string]float64
	Score  float64
	Report *analysis.Report
	Points int
}

// Search analyzes sys at xf for every combination of grid values and
// returns the one with the lowest objective. Ties keep the first
// combination in grid order. The state matrix compiles once through the
// analyzer's cache.
func (g *GridSearch) Search(
	ctx context.Context,
	a *analysis.Analyzer,
	sys *analysis.System,
	xf []symbolic.Expr,
	objective Objective,
) (*Result, error) {
	for _, name := range g.paramNames {
		if _, ok := sys.Params[name]; !ok {
			return nil, fmt.Errorf("%w: %s has no parameter %q", analysis.ErrUnknownParameter, sys.Name, name)
		}
	}

	best := &Result{Score: math.Inf(1)}
	if err := g.searchRecursive(ctx, 0, sys, a, xf, objective, best); err != nil {
		return nil, err
	}
	return best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current *analysis.System,
	a *analysis.Analyzer,
	xf []symbolic.Expr,
	objective Objective,
	best *Result,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		r, err := a.Analyze(ctx, current, xf)
		if err != nil {
			return err
		}
		best.Points++

		val := objective(r)
		if val < best.Score || best.Report == nil && !math.IsNaN(val) {
			best.Score = val
			best.Report = r
			best.Params = make(map[string]float64, len(g.paramNames))
			for _, k := range g.paramNames {
				best.Params[k] = current.Params[k]
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := current.WithParam(paramName, val)
		if err := g.searchRecursive(ctx, depth+1, next, a, xf, objective, best); err != nil {
			return err
		}
	}
	return nil
}
