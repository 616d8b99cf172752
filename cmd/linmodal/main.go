package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/linmodal/internal/analysis"
	"github.com/san-kum/linmodal/internal/config"
	"github.com/san-kum/linmodal/internal/models"
	"github.com/san-kum/linmodal/internal/storage"
	"github.com/san-kum/linmodal/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	theme      string
	modelFile  string
	point      string
	sortBy     string
	setParams  map[string]string
	jsonOut    bool
	save       bool
	browse     bool
	pkgName    string
	outFile    string
	linearized bool
	interpret  bool
	sweepParam string
	sweepFrom  float64
	sweepTo    float64
	sweepN     int
	workers    int
	specDt     float64
	specN      int
	maxHz      float64
	svgFile    string
	gridAxes   []string
	objective  string
)

// app carries what every command needs once flags are parsed.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *models.Registry
	styles   viz.Styles
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "linmodal",
		Short:         "linearize nonlinear systems and report their modes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", "ocean", "color theme")

	modelFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVarP(&modelFile, "file", "f", "", "model definition file (yaml)")
		cmd.Flags().StringVarP(&point, "point", "p", models.Origin, "fixed point name")
		cmd.Flags().StringToStringVar(&setParams, "set", nil, "override parameters, e.g. --set c=0.5,l=2")
	}

	modesCmd := &cobra.Command{
		Use:   "modes [model]",
		Short: "report the modes of a model about a fixed point",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runModes,
	}
	modelFlags(modesCmd)
	modesCmd.Flags().StringVar(&sortBy, "sort", "", "sort modes by F (frequency), D (damping) or none")
	modesCmd.Flags().BoolVar(&jsonOut, "json", false, "print the report as JSON")
	modesCmd.Flags().BoolVar(&save, "save", false, "save the report to the data directory")
	modesCmd.Flags().BoolVarP(&browse, "interactive", "i", false, "open the mode browser")
	modesCmd.Flags().StringVar(&svgFile, "svg", "", "write the eigenvalues to an svg file")

	linearizeCmd := &cobra.Command{
		Use:   "linearize [model]",
		Short: "print the linearized dynamics and state matrix",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLinearize,
	}
	modelFlags(linearizeCmd)

	codegenCmd := &cobra.Command{
		Use:   "codegen [model]",
		Short: "generate Go source for the state matrix",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCodegen,
	}
	modelFlags(codegenCmd)
	codegenCmd.Flags().StringVar(&pkgName, "package", "model", "package name of the generated file")
	codegenCmd.Flags().StringVarP(&outFile, "out", "o", "", "write to file instead of stdout")
	codegenCmd.Flags().BoolVar(&linearized, "linearized", false, "generate the linearized dynamics f(x) instead")
	codegenCmd.Flags().BoolVar(&interpret, "check", false, "run the generated source in an interpreter and compare")

	sweepCmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "sweep one parameter and plot stability",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	modelFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "", "parameter to sweep")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 1, "last value")
	sweepCmd.Flags().IntVarP(&sweepN, "points", "n", 0, "number of values (overrides config)")
	sweepCmd.Flags().IntVarP(&workers, "workers", "w", 0, "parallel workers (overrides config)")
	sweepCmd.Flags().StringVar(&svgFile, "svg", "", "write the root locus to an svg file")
	sweepCmd.MarkFlagRequired("param")

	tuneCmd := &cobra.Command{
		Use:   "tune [model]",
		Short: "grid-search parameters for the most stable fixed point",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTune,
	}
	modelFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVarP(&gridAxes, "grid", "g", nil, "grid axis name=lo:hi:n (repeatable)")
	tuneCmd.Flags().StringVar(&objective, "objective", "decay", "decay (max real part) or damping (least damped mode)")
	tuneCmd.MarkFlagRequired("grid")

	spectrumCmd := &cobra.Command{
		Use:   "spectrum [model]",
		Short: "plot the power spectrum of the modal free response",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSpectrum,
	}
	modelFlags(spectrumCmd)
	spectrumCmd.Flags().Float64Var(&specDt, "dt", 0, "sample spacing (overrides config)")
	spectrumCmd.Flags().IntVar(&specN, "samples", 0, "number of samples (overrides config)")
	spectrumCmd.Flags().Float64Var(&maxHz, "max-hz", 0, "highest frequency to plot")

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list built-in models",
		Args:  cobra.NoArgs,
		RunE:  listModels,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list configuration presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range config.ListPresets() {
				c := config.Presets[p]
				fmt.Printf("  %-10s sort=%s margin=%g rtol=%g atol=%g\n",
					p, c.Modal.Sort, c.Modal.Margin, c.Modal.ConjugateRTol, c.Modal.ConjugateATol)
			}
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a config file with the current settings",
		Args:  cobra.MaximumNArgs(1),
		RunE:  writeConfig,
	}

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run the analyses listed in a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved reports",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a saved report",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	rootCmd.AddCommand(modesCmd, linearizeCmd, codegenCmd, sweepCmd, tuneCmd, spectrumCmd,
		batchCmd, modelsCmd, presetsCmd, initCmd, listCmd, showCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// setup loads the config, applies flag overrides and builds the logger.
func setup() (*app, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", preset)
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if sortBy != "" {
		cfg.Modal.Sort = sortBy
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:      cfg,
		logger:   logger,
		registry: models.NewRegistry(),
		styles:   viz.NewStyles(viz.GetTheme(theme)),
	}, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	lvl, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.Encoding = "console"
	zc.OutputPaths = []string{"stderr"}
	zc.DisableStacktrace = true
	return zc.Build()
}

func (a *app) analyzer() (*analysis.Analyzer, error) {
	opts, err := a.cfg.ModalOptions()
	if err != nil {
		return nil, err
	}
	return analysis.NewAnalyzer(
		analysis.WithModalOptions(opts),
		analysis.WithLogger(a.logger),
	), nil
}

func (a *app) store() *storage.Store {
	return storage.New(a.cfg.DataDir, storage.WithLogger(a.logger))
}

// resolve picks the model from --file or the registry and applies --set.
func (a *app) resolve(args []string) (*models.Model, *analysis.System, error) {
	var m *models.Model
	switch {
	case modelFile != "":
		mf, err := config.LoadModel(modelFile)
		if err != nil {
			return nil, nil, err
		}
		m = models.FromConfig(mf)
	case len(args) == 1:
		var err error
		if m, err = a.registry.Get(args[0]); err != nil {
			return nil, nil, err
		}
	default:
		return nil, nil, fmt.Errorf("name a model or pass --file")
	}

	sys, err := m.System()
	if err != nil {
		return nil, nil, err
	}
	for name, text := range setParams {
		if _, ok := sys.Params[name]; !ok {
			return nil, nil, fmt.Errorf("%w: %s has no parameter %q", analysis.ErrUnknownParameter, m.Name, name)
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("--set %s: %w", name, err)
		}
		sys = sys.WithParam(name, v)
	}
	return m, sys, nil
}
