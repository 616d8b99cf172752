package analysis

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/linmodal/internal/codegen"
	"github.com/san-kum/linmodal/internal/linearize"
	"github.com/san-kum/linmodal/internal/modal"
	"github.com/san-kum/linmodal/internal/symbolic"
)

// Report is the outcome of one modal analysis.
type Report struct {
	System     string
	States     []string
	FixedPoint []symbolic.Expr
	Params     map[string]float64
	// Linearized is the first-order expansion of the dynamics.
	Linearized *symbolic.Matrix
	// StateMatrix is ∂f/∂x at the fixed point, still symbolic in the
	// parameters.
	StateMatrix *symbolic.Matrix
	A           *mat.Dense
	Eigenvalues []complex128
	Modes       []modal.Mode
	Summary     modal.Summary
	Options     modal.Options
	CreatedAt   time.Time
	Elapsed     time.Duration
}

// Stable reports the global stability flag of the modes.
func (r *Report) Stable() bool { return r.Summary.Stable }

// Analyzer runs the linearize → compile → solve → extract pipeline.
type Analyzer struct {
	solver EigenSolver
	cache  *FunctionCache
	opts   modal.Options
	logger *zap.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

func WithSolver(s EigenSolver) Option { return func(a *Analyzer) { a.solver = s } }

func WithCache(c *FunctionCache) Option { return func(a *Analyzer) { a.cache = c } }

func WithModalOptions(o modal.Options) Option { return func(a *Analyzer) { a.opts = o } }

func WithLogger(l *zap.Logger) Option { return func(a *Analyzer) { a.logger = l } }

// NewAnalyzer returns an Analyzer using gonum, a private cache, default
// modal options and no logging unless overridden.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		solver: GonumSolver{},
		cache:  NewFunctionCache(),
		opts:   modal.DefaultOptions(),
		logger: zap.NewNop(),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Cache exposes the compiled-function cache.
func (a *Analyzer) Cache() *FunctionCache { return a.cache }

// prepared holds the symbolic half of the pipeline, shared by every
// numeric evaluation at the same fixed point.
type prepared struct {
	sys        *System
	xf         []symbolic.Expr
	linearized *symbolic.Matrix
	stateMat   *symbolic.Matrix
	fn         *codegen.Function
	params     []string
}

func (a *Analyzer) prepare(ctx context.Context, sys *System, xf []symbolic.Expr) (*prepared, error) {
	if err := sys.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	f := symbolic.Column(sys.Dynamics...)
	lin, err := linearize.Linearize(f, sys.States, xf)
	if err != nil {
		return nil, fmt.Errorf("linearizing %s: %w", sys.Name, err)
	}
	am, err := linearize.StateMatrix(f, sys.States, xf)
	if err != nil {
		return nil, fmt.Errorf("state matrix of %s: %w", sys.Name, err)
	}
	a.logger.Debug("linearized",
		zap.String("system", sys.Name),
		zap.Int("states", len(sys.States)),
		zap.Duration("elapsed", time.Since(start)))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	params := sys.ParamNames()
	fn, err := a.cache.Matrix("stateMatrix", codegen.Scalars(params...), am)
	if err != nil {
		return nil, fmt.Errorf("compiling state matrix of %s: %w", sys.Name, err)
	}
	a.logger.Debug("compiled state matrix",
		zap.String("system", sys.Name),
		zap.Int("bindings", len(fn.Bindings)))

	return &prepared{
		sys:        sys,
		xf:         xf,
		linearized: lin,
		stateMat:   am,
		fn:         fn,
		params:     params,
	}, nil
}

// evaluate runs the numeric half for one set of parameter values.
func (a *Analyzer) evaluate(p *prepared, params map[string]float64) (*Report, error) {
	start := time.Now()

	args := make([]any, len(p.params))
	for i, name := range p.params {
		v, ok := params[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownParameter, name)
		}
		args[i] = v
	}
	vals, err := p.fn.Call(args...)
	if err != nil {
		return nil, err
	}
	n := len(p.sys.States)
	am := mat.NewDense(n, n, vals)

	evals, evecs, err := a.solver.Eigen(am)
	if err != nil {
		return nil, err
	}
	modes, err := modal.ExtractModes(evals, evecs, a.opts)
	if err != nil {
		return nil, err
	}

	cp := make(map[string]float64, len(params))
	for k, v := range params {
		cp[k] = v
	}
	r := &Report{
		System:      p.sys.Name,
		States:      p.sys.StateNames(),
		FixedPoint:  p.xf,
		Params:      cp,
		Linearized:  p.linearized,
		StateMatrix: p.stateMat,
		A:           am,
		Eigenvalues: evals,
		Modes:       modes,
		Summary:     modal.Summarize(modes),
		Options:     a.opts,
		CreatedAt:   time.Now(),
		Elapsed:     time.Since(start),
	}
	return r, nil
}

// Analyze linearizes sys about xf and reports its modes.
func (a *Analyzer) Analyze(ctx context.Context, sys *System, xf []symbolic.Expr) (*Report, error) {
	start := time.Now()
	p, err := a.prepare(ctx, sys, xf)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, err := a.evaluate(p, sys.Params)
	if err != nil {
		return nil, fmt.Errorf("analyzing %s: %w", sys.Name, err)
	}
	r.Elapsed = time.Since(start)

	a.logger.Info("analysis complete",
		zap.String("system", sys.Name),
		zap.Int("modes", len(r.Modes)),
		zap.Bool("stable", r.Stable()),
		zap.Duration("elapsed", r.Elapsed))
	return r, nil
}
