package analysis

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/linmodal/internal/symbolic"
)

// SweepSpec varies one parameter over Values.
type SweepSpec struct {
	Param  string
	Values []float64
	// Workers bounds the parallelism; zero means GOMAXPROCS.
	Workers int
}

// SweepPoint is the report for one parameter value.
type SweepPoint struct {
	Value  float64
	Report *Report
}

// Sweep analyzes sys at xf once per value of spec.Param. The symbolic
// stages run once; eigen-solves run in parallel. Points come back in the
// order of spec.Values. The first failure cancels the remaining points.
func (a *Analyzer) Sweep(ctx context.Context, sys *System, xf []symbolic.Expr, spec SweepSpec) ([]SweepPoint, error) {
	if _, ok := sys.Params[spec.Param]; !ok {
		return nil, fmt.Errorf("%w: %s has no parameter %q", ErrUnknownParameter, sys.Name, spec.Param)
	}
	start := time.Now()

	p, err := a.prepare(ctx, sys, xf)
	if err != nil {
		return nil, err
	}

	workers := spec.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	points := make([]SweepPoint, len(spec.Values))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, v := range spec.Values {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := a.evaluate(p, sys.WithParam(spec.Param, v).Params)
			if err != nil {
				return fmt.Errorf("sweep %s=%g: %w", spec.Param, v, err)
			}
			points[i] = SweepPoint{Value: v, Report: r}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	a.logger.Info("sweep complete",
		zap.String("system", sys.Name),
		zap.String("param", spec.Param),
		zap.Int("points", len(points)),
		zap.Int("workers", workers),
		zap.Duration("elapsed", time.Since(start)))
	return points, nil
}

// Series extracts one value per sweep point, for plotting.
func Series(points []SweepPoint, pick func(*Report) float64) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = pick(p.Report)
	}
	return out
}

// MaxReal picks the largest real part of the report's modes.
func MaxReal(r *Report) float64 { return r.Summary.MaxReal }
