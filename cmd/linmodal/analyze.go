package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/linmodal/internal/analysis"
	"github.com/san-kum/linmodal/internal/codegen"
	"github.com/san-kum/linmodal/internal/export"
	"github.com/san-kum/linmodal/internal/linearize"
	"github.com/san-kum/linmodal/internal/modal"
	"github.com/san-kum/linmodal/internal/optim"
	"github.com/san-kum/linmodal/internal/storage"
	"github.com/san-kum/linmodal/internal/symbolic"
	"github.com/san-kum/linmodal/internal/viz"
)

const (
	svgWidth  = 640
	svgHeight = 480
)

func runModes(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	m, sys, err := a.resolve(args)
	if err != nil {
		return err
	}
	xf, err := m.Point(point)
	if err != nil {
		return err
	}
	an, err := a.analyzer()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	r, err := an.Analyze(ctx, sys, xf)
	if err != nil {
		return err
	}

	if save {
		st := a.store()
		if err := st.Init(); err != nil {
			return err
		}
		id, err := st.Save(m.Name, point, r)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "saved: %s\n", id)
	}

	if svgFile != "" {
		if err := export.WriteSVG(svgFile, [][]modal.Mode{r.Modes}, svgWidth, svgHeight); err != nil {
			return err
		}
	}

	switch {
	case jsonOut:
		return storage.WriteJSON(os.Stdout, r)
	case browse:
		return viz.RunBrowser(r)
	}
	fmt.Print(viz.ReportView(r, a.styles))
	return nil
}

func runLinearize(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	m, sys, err := a.resolve(args)
	if err != nil {
		return err
	}
	xf, err := m.Point(point)
	if err != nil {
		return err
	}
	f := symbolic.Column(sys.Dynamics...)
	lin, err := linearize.Linearize(f, sys.States, xf)
	if err != nil {
		return err
	}
	am, err := linearize.StateMatrix(f, sys.States, xf)
	if err != nil {
		return err
	}

	s := a.styles
	fmt.Println(s.Title.Render(fmt.Sprintf("%s about %s", m.Name, point)))
	fmt.Println()
	for i, x := range sys.StateNames() {
		fmt.Printf("  d%s/dt = %s\n", x, lin.Get(i, 0))
	}
	fmt.Println()
	fmt.Println(s.Field("state matrix", strings.Join(sys.StateNames(), ", ")))
	fmt.Println(viz.MatrixView(am, s))
	return nil
}

func runCodegen(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	m, sys, err := a.resolve(args)
	if err != nil {
		return err
	}
	xf, err := m.Point(point)
	if err != nil {
		return err
	}
	f := symbolic.Column(sys.Dynamics...)
	params := sys.ParamNames()

	var fn *codegen.Function
	var callArgs []any
	for _, p := range params {
		callArgs = append(callArgs, sys.Params[p])
	}
	if linearized {
		lin, err := linearize.Linearize(f, sys.States, xf)
		if err != nil {
			return err
		}
		fnArgs := append([]codegen.Arg{codegen.SymbolGroup("x", sys.States...)}, codegen.Scalars(params...)...)
		if fn, err = codegen.CompileMatrix("linearized", fnArgs, lin); err != nil {
			return err
		}
		callArgs = append([]any{make([]float64, len(sys.States))}, callArgs...)
	} else {
		am, err := linearize.StateMatrix(f, sys.States, xf)
		if err != nil {
			return err
		}
		if fn, err = codegen.CompileMatrix("stateMatrix", codegen.Scalars(params...), am); err != nil {
			return err
		}
	}
	a.logger.Debug("generated",
		zap.String("function", fn.Name),
		zap.Int("bindings", len(fn.Bindings)),
		zap.Int("outputs", len(fn.Outputs)))

	if interpret {
		if err := checkInterpreted(fn, callArgs); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "interpreted output matches native evaluation")
	}

	src := fn.File(pkgName)
	if outFile == "" {
		fmt.Print(src)
		return nil
	}
	return os.WriteFile(outFile, []byte(src), 0644)
}

func checkInterpreted(fn *codegen.Function, args []any) error {
	native, err := fn.Call(args...)
	if err != nil {
		return err
	}
	ip, err := fn.Interpret()
	if err != nil {
		return err
	}
	got, err := ip.Call(args...)
	if err != nil {
		return err
	}
	for i := range native {
		if d := math.Abs(native[i] - got[i]); d > 1e-12*math.Max(1, math.Abs(native[i])) {
			return fmt.Errorf("output %d: native %g, interpreted %g", i, native[i], got[i])
		}
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	m, sys, err := a.resolve(args)
	if err != nil {
		return err
	}
	xf, err := m.Point(point)
	if err != nil {
		return err
	}
	an, err := a.analyzer()
	if err != nil {
		return err
	}

	n := a.cfg.Sweep.Points
	if sweepN > 0 {
		n = sweepN
	}
	w := a.cfg.Sweep.Workers
	if workers > 0 {
		w = workers
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	points, err := an.Sweep(ctx, sys, xf, analysis.SweepSpec{
		Param:   sweepParam,
		Values:  analysis.Linspace(sweepFrom, sweepTo, n),
		Workers: w,
	})
	if err != nil {
		return err
	}

	fmt.Println(a.styles.Title.Render(fmt.Sprintf("%s about %s, sweeping %s", m.Name, point, sweepParam)))
	fmt.Println()
	fmt.Println(viz.SweepPlot(points, sweepParam))
	fmt.Println()
	if plot := viz.FrequencyPlot(points, sweepParam); plot != "" {
		fmt.Println(plot)
		fmt.Println()
	}

	if svgFile != "" {
		if err := export.WriteSVG(svgFile, export.Locus(points), svgWidth, svgHeight); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", svgFile)
	}

	// Report where stability changes along the sweep.
	for i := 1; i < len(points); i++ {
		prev, cur := points[i-1].Report.Stable(), points[i].Report.Stable()
		if prev != cur {
			fmt.Printf("  %s between %s=%g and %g\n",
				a.styles.Stability(cur), sweepParam, points[i-1].Value, points[i].Value)
		}
	}
	return nil
}

func runSpectrum(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	m, sys, err := a.resolve(args)
	if err != nil {
		return err
	}
	xf, err := m.Point(point)
	if err != nil {
		return err
	}
	an, err := a.analyzer()
	if err != nil {
		return err
	}
	r, err := an.Analyze(context.Background(), sys, xf)
	if err != nil {
		return err
	}

	dt := a.cfg.Spectrum.Dt
	if specDt > 0 {
		dt = specDt
	}
	n := a.cfg.Spectrum.Samples
	if specN > 0 {
		n = specN
	}
	freqs, power := analysis.PowerSpectrum(analysis.FreeResponse(r.Modes, dt, n), dt)

	fmt.Println(a.styles.Title.Render(fmt.Sprintf("%s about %s", m.Name, point)))
	fmt.Println()
	fmt.Println(viz.SpectrumPlot(freqs, power, maxHz))
	fmt.Println()
	if peak := analysis.PeakFrequency(freqs, power, freqs[min(1, len(freqs)-1)]); !math.IsNaN(peak) {
		fmt.Println(a.styles.Field("peak", fmt.Sprintf("%.4g Hz", peak)))
	}
	for _, md := range r.Modes {
		if md.Oscillatory() {
			fmt.Println(a.styles.Field(fmt.Sprintf("mode %d", md.Index), fmt.Sprintf("%.4g Hz", md.Frequency)))
		}
	}
	return nil
}

func runTune(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	m, sys, err := a.resolve(args)
	if err != nil {
		return err
	}
	xf, err := m.Point(point)
	if err != nil {
		return err
	}
	an, err := a.analyzer()
	if err != nil {
		return err
	}

	var names []string
	var ranges [][]float64
	for _, axis := range gridAxes {
		name, values, err := optim.ParseAxis(axis)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}
	g, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	obj := optim.MaxReal
	switch objective {
	case "decay":
	case "damping":
		obj = optim.MinusLeastDamping
	default:
		return fmt.Errorf("unknown objective: %s", objective)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	res, err := g.Search(ctx, an, sys, xf, obj)
	if err != nil {
		return err
	}
	if res.Report == nil {
		return fmt.Errorf("no grid point produced a finite score")
	}

	best := make([]string, len(names))
	for i, n := range names {
		best[i] = fmt.Sprintf("%s=%g", n, res.Params[n])
	}
	fmt.Println(a.styles.Field("searched", fmt.Sprintf("%d points", res.Points)))
	fmt.Println(a.styles.Field("best", strings.Join(best, ", ")))
	fmt.Println(a.styles.Field("score", fmt.Sprintf("%.6g", res.Score)))
	fmt.Println()
	fmt.Print(viz.ReportView(res.Report, a.styles))
	return nil
}
