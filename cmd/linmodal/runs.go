package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/linmodal/internal/automation"
	"github.com/san-kum/linmodal/internal/config"
	"github.com/san-kum/linmodal/internal/symbolic"
	"github.com/san-kum/linmodal/internal/viz"
)

func listModels(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tSTATES\tPOINTS\tDESCRIPTION")
	for _, name := range a.registry.List() {
		m, err := a.registry.Get(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			m.Name,
			strings.Join(m.States, ","),
			strings.Join(m.PointNames(), ","),
			m.Description,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nfunctions: %s\n", strings.Join(symbolic.Builtins(), ", "))
	return nil
}

func writeConfig(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	path := "linmodal.yaml"
	if len(args) == 1 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := config.Save(path, a.cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	runs, err := a.store().List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tPOINT\tTIME\tMODES\tSORT\tSTABLE")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%t\n",
			run.ID,
			run.Model,
			run.Point,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Modes,
			run.Sort,
			run.Stable,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	st := a.store()
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	modes, err := st.LoadModes(args[0])
	if err != nil {
		return err
	}

	s := a.styles
	fmt.Println(s.Title.Render(strings.ToUpper(meta.Model)) + "  " + s.Stability(meta.Stable))
	fmt.Println(s.Field("run", meta.ID))
	fmt.Println(s.Field("saved", meta.Timestamp.Format("2006-01-02 15:04:05")))
	fmt.Println(s.Field("point", fmt.Sprintf("%s (%s)", meta.Point, strings.Join(meta.FixedPoint, ", "))))
	if meta.MaxReal != nil {
		fmt.Println(s.Field("max real part", fmt.Sprintf("%.6g", *meta.MaxReal)))
	}
	fmt.Println(viz.ModeTable(modes, s, -1))
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	an, err := a.analyzer()
	if err != nil {
		return err
	}
	st := a.store()
	if err := st.Init(); err != nil {
		return err
	}
	runner := &automation.Runner{
		Registry: a.registry,
		Analyzer: an,
		Store:    st,
		Logger:   a.logger,
	}
	results, runErr := runner.RunScenario(context.Background(), sc)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tMODEL\tPOINT\tMODES\tMAX REAL\tSTABLE\tRUN")
	for i, r := range results {
		pt := r.Step.Point
		if pt == "" {
			pt = "origin"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%.4g\t%t\t%s\n",
			i+1, r.Model, pt, r.Report.Summary.Modes, r.Report.Summary.MaxReal, r.Report.Stable(), r.RunID)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}
