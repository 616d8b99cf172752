package analysis_test

import (
	"context"
	"math"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/linmodal/internal/analysis"
	"github.com/san-kum/linmodal/internal/codegen"
	"github.com/san-kum/linmodal/internal/modal"
	"github.com/san-kum/linmodal/internal/symbolic"
)

func pendulum(c float64) *analysis.System {
	return &analysis.System{
		Name:   "pendulum",
		States: symbolic.Symbols("q", "w"),
		Dynamics: []symbolic.Expr{
			symbolic.MustParse("w"),
			symbolic.MustParse("-g/l*sin(q) - c*w"),
		},
		Params: map[string]float64{"g": 9.81, "l": 1, "c": c},
	}
}

var (
	hanging  = []symbolic.Expr{symbolic.N(0), symbolic.N(0)}
	inverted = []symbolic.Expr{symbolic.Pi, symbolic.N(0)}
)

type failingSolver struct{}

func (failingSolver) Eigen(mat.Matrix) ([]complex128, *mat.CDense, error) {
	return nil, nil, analysis.ErrSolverFailed
}

// vectorlessSolver returns eigenvalues with no eigenvector matrix.
type vectorlessSolver struct{}

func (vectorlessSolver) Eigen(mat.Matrix) ([]complex128, *mat.CDense, error) {
	return []complex128{-1, -2}, nil, nil
}

var _ = Describe("Analyzer", func() {
	var (
		a   *analysis.Analyzer
		ctx context.Context
	)

	BeforeEach(func() {
		a = analysis.NewAnalyzer()
		ctx = context.Background()
	})

	It("finds the damped pendulum's oscillatory mode", func() {
		r, err := a.Analyze(ctx, pendulum(0.5), hanging)
		Expect(err).NotTo(HaveOccurred())

		Expect(r.Modes).To(HaveLen(1))
		m := r.Modes[0]
		Expect(m.Real).To(BeNumerically("~", -0.25, 1e-9))
		Expect(math.Abs(m.Imag)).To(BeNumerically("~", math.Sqrt(9.81-0.0625), 1e-9))
		Expect(m.Frequency).To(BeNumerically("~", math.Sqrt(9.81)/(2*math.Pi), 1e-9))
		Expect(m.Damping).To(BeNumerically("~", -0.25/math.Sqrt(9.81), 1e-9))
		Expect(r.Stable()).To(BeTrue())
		Expect(r.Eigenvalues).To(HaveLen(2))
	})

	It("keeps the symbolic stages in the report", func() {
		r, err := a.Analyze(ctx, pendulum(0.5), hanging)
		Expect(err).NotTo(HaveOccurred())

		Expect(r.StateMatrix.Rows()).To(Equal(2))
		Expect(r.StateMatrix.Cols()).To(Equal(2))
		Expect(symbolic.Equal(r.StateMatrix.Get(0, 1), symbolic.N(1))).To(BeTrue())
		Expect(r.Linearized.Rows()).To(Equal(2))
		Expect(r.Linearized.Cols()).To(Equal(1))
		Expect(r.A.At(1, 0)).To(BeNumerically("~", -9.81, 1e-12))
		Expect(r.A.At(1, 1)).To(BeNumerically("~", -0.5, 1e-12))
	})

	It("reports the inverted pendulum as unstable", func() {
		r, err := a.Analyze(ctx, pendulum(0.5), inverted)
		Expect(err).NotTo(HaveOccurred())

		Expect(r.Modes).To(HaveLen(2))
		Expect(r.Stable()).To(BeFalse())
		for _, m := range r.Modes {
			Expect(m.Stable).To(BeFalse())
			Expect(m.Frequency).To(BeZero())
			Expect(math.IsNaN(m.Damping)).To(BeTrue())
		}
		Expect(r.Summary.MaxReal).To(BeNumerically("~", (-0.5+math.Sqrt(0.25+4*9.81))/2, 1e-9))
	})

	It("compiles the state matrix once per system", func() {
		_, err := a.Analyze(ctx, pendulum(0.5), hanging)
		Expect(err).NotTo(HaveOccurred())
		_, err = a.Analyze(ctx, pendulum(0.9), hanging)
		Expect(err).NotTo(HaveOccurred())

		stats := a.Cache().Stats()
		Expect(stats.Compiles).To(Equal(int64(1)))
		Expect(stats.Hits).To(BeNumerically(">=", 1))
	})

	It("applies the configured sort order", func() {
		opts := modal.DefaultOptions()
		opts.SortBy = modal.SortFrequency
		a = analysis.NewAnalyzer(analysis.WithModalOptions(opts))

		sys := &analysis.System{
			Name:   "two-mass",
			States: symbolic.Symbols("x1", "x2", "v1", "v2"),
			Dynamics: []symbolic.Expr{
				symbolic.MustParse("v1"),
				symbolic.MustParse("v2"),
				symbolic.MustParse("(-2*k*x1 + k*x2 - c*v1)/m"),
				symbolic.MustParse("(k*x1 - 2*k*x2 - c*v2)/m"),
			},
			Params: map[string]float64{"k": 4, "m": 1, "c": 0.1},
		}
		zero := []symbolic.Expr{symbolic.N(0), symbolic.N(0), symbolic.N(0), symbolic.N(0)}
		r, err := a.Analyze(ctx, sys, zero)
		Expect(err).NotTo(HaveOccurred())

		Expect(r.Modes).To(HaveLen(2))
		Expect(r.Modes[0].Frequency).To(BeNumerically("<", r.Modes[1].Frequency))
		// Undamped natural frequencies sqrt(k/m) and sqrt(3k/m).
		Expect(r.Modes[0].Frequency).To(BeNumerically("~", 2/(2*math.Pi), 1e-9))
		Expect(r.Modes[1].Frequency).To(BeNumerically("~", math.Sqrt(12)/(2*math.Pi), 1e-9))
		Expect(r.Modes[0].Index).To(Equal(0))
		Expect(r.Modes[1].Index).To(Equal(1))
	})

	It("rejects systems whose equations do not match the states", func() {
		sys := pendulum(0.5)
		sys.Dynamics = sys.Dynamics[:1]
		_, err := a.Analyze(ctx, sys, hanging)
		Expect(err).To(MatchError(analysis.ErrInvalidSystem))
	})

	It("rejects symbols that are neither states nor parameters", func() {
		sys := pendulum(0.5)
		delete(sys.Params, "g")
		_, err := a.Analyze(ctx, sys, hanging)
		Expect(err).To(MatchError(analysis.ErrInvalidSystem))
	})

	It("propagates expressions it cannot differentiate", func() {
		sys := pendulum(0.5)
		sys.Dynamics[1] = symbolic.MustParse("-friction(w)")
		_, err := a.Analyze(ctx, sys, hanging)
		Expect(err).To(MatchError(symbolic.ErrUnsupported))
	})

	It("surfaces solver failures", func() {
		a = analysis.NewAnalyzer(analysis.WithSolver(failingSolver{}))
		_, err := a.Analyze(ctx, pendulum(0.5), hanging)
		Expect(err).To(MatchError(analysis.ErrSolverFailed))
	})

	It("rejects a solver that returns no eigenvectors", func() {
		a = analysis.NewAnalyzer(analysis.WithSolver(vectorlessSolver{}))
		var r *analysis.Report
		Expect(func() {
			var err error
			r, err = a.Analyze(ctx, pendulum(0.5), hanging)
			Expect(err).To(MatchError(modal.ErrInvalidInput))
		}).NotTo(Panic())
		Expect(r).To(BeNil())
	})

	It("stops on a cancelled context", func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := a.Analyze(cctx, pendulum(0.5), hanging)
		Expect(err).To(MatchError(context.Canceled))
	})
})

var _ = Describe("Sweep", func() {
	var a *analysis.Analyzer

	BeforeEach(func() {
		a = analysis.NewAnalyzer()
	})

	It("returns points in input order and detects overdamping", func() {
		values := []float64{7, 0.1, 1, 0.5}
		points, err := a.Sweep(context.Background(), pendulum(0), hanging, analysis.SweepSpec{
			Param:   "c",
			Values:  values,
			Workers: 2,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(points).To(HaveLen(len(values)))

		for i, p := range points {
			Expect(p.Value).To(Equal(values[i]))
			Expect(p.Report.Params["c"]).To(Equal(values[i]))
		}
		// c = 7 exceeds 2*sqrt(g/l), so both poles are real.
		Expect(points[0].Report.Modes).To(HaveLen(2))
		Expect(points[1].Report.Modes).To(HaveLen(1))

		maxReal := analysis.Series(points, analysis.MaxReal)
		Expect(maxReal[1]).To(BeNumerically("~", -0.05, 1e-9))
		Expect(maxReal[3]).To(BeNumerically("~", -0.25, 1e-9))
		Expect(a.Cache().Stats().Compiles).To(Equal(int64(1)))
	})

	It("rejects an unknown parameter", func() {
		_, err := a.Sweep(context.Background(), pendulum(0), hanging, analysis.SweepSpec{
			Param:  "mass",
			Values: []float64{1},
		})
		Expect(err).To(MatchError(analysis.ErrUnknownParameter))
	})

	It("stops when a point fails", func() {
		a = analysis.NewAnalyzer(analysis.WithSolver(failingSolver{}))
		_, err := a.Sweep(context.Background(), pendulum(0), hanging, analysis.SweepSpec{
			Param:  "c",
			Values: analysis.Linspace(0, 1, 20),
		})
		Expect(err).To(MatchError(analysis.ErrSolverFailed))
	})
})

var _ = Describe("FunctionCache", func() {
	It("compiles a matrix once under concurrent requests", func() {
		cache := analysis.NewFunctionCache()
		m := symbolic.Column(symbolic.MustParse("sin(a)*b + sin(a)"), symbolic.MustParse("b^2"))
		args := codegen.Scalars("a", "b")

		var wg sync.WaitGroup
		fns := make([]*codegen.Function, 16)
		for i := range fns {
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer GinkgoRecover()
				fn, err := cache.Matrix("f", args, m)
				Expect(err).NotTo(HaveOccurred())
				fns[i] = fn
			}()
		}
		wg.Wait()

		for _, fn := range fns {
			Expect(fn).To(BeIdenticalTo(fns[0]))
		}
		stats := cache.Stats()
		Expect(stats.Compiles).To(Equal(int64(1)))
		Expect(stats.Entries).To(Equal(1))
	})

	It("keys on the expressions", func() {
		cache := analysis.NewFunctionCache()
		args := codegen.Scalars("a")
		f1, err := cache.Matrix("f", args, symbolic.Column(symbolic.MustParse("a + 1")))
		Expect(err).NotTo(HaveOccurred())
		f2, err := cache.Matrix("f", args, symbolic.Column(symbolic.MustParse("a + 2")))
		Expect(err).NotTo(HaveOccurred())
		Expect(f1).NotTo(BeIdenticalTo(f2))
		Expect(cache.Stats().Compiles).To(Equal(int64(2)))
	})
})

var _ = Describe("Spectrum", func() {
	It("peaks at the modal frequency", func() {
		modes := []modal.Mode{{Real: -0.05, Imag: 2 * math.Pi * 5}}
		signal := analysis.FreeResponse(modes, 0.01, 1024)
		freqs, power := analysis.PowerSpectrum(signal, 0.01)

		Expect(freqs).To(HaveLen(513))
		Expect(analysis.PeakFrequency(freqs, power, 0.5)).To(BeNumerically("~", 5, 0.1))
	})

	It("handles an empty signal", func() {
		freqs, power := analysis.PowerSpectrum(nil, 0.01)
		Expect(freqs).To(BeEmpty())
		Expect(power).To(BeEmpty())
	})
})

var _ = Describe("Linspace", func() {
	It("includes both ends", func() {
		Expect(analysis.Linspace(0, 1, 5)).To(Equal([]float64{0, 0.25, 0.5, 0.75, 1}))
		Expect(analysis.Linspace(2, 3, 1)).To(Equal([]float64{2}))
		Expect(analysis.Linspace(2, 3, 0)).To(BeEmpty())
	})
})
