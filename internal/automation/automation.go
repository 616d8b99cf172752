// Package automation runs scripted batches of modal analyses.
package automation

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/linmodal/internal/analysis"
	"github.com/san-kum/linmodal/internal/config"
	"github.com/san-kum/linmodal/internal/models"
	"github.com/san-kum/linmodal/internal/storage"
)

// Scenario is a list of analyses read from YAML:
//
//	name: damping study
//	steps:
//	  - model: pendulum
//	    point: inverted
//	    params: {c: 0.5}
//	    save: true
//	  - file: models/rotor.yaml
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep names a model from the registry or a model file, a fixed
// point and parameter overrides.
type ScenarioStep struct {
	Model  string             `yaml:"model"`
	File   string             `yaml:"file"`
	Point  string             `yaml:"point"`
	Params map[string]float64 `yaml:"params"`
	Save   bool               `yaml:"save"`
}

// StepResult pairs a step with its report and, when saved, its run ID.
type StepResult struct {
	Step   ScenarioStep
	Model  string
	Report *analysis.Report
	RunID  string
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("%s: scenario has no steps", path)
	}
	return &scenario, nil
}

// Runner executes scenarios. Store may be nil when no step saves.
type Runner struct {
	Registry *models.Registry
	Analyzer *analysis.Analyzer
	Store    *storage.Store
	Logger   *zap.Logger
}

// RunScenario executes the steps in order and stops at the first failure,
// returning the results so far.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) ([]StepResult, error) {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		m, err := r.model(step)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		logger.Info("running step",
			zap.String("scenario", scenario.Name),
			zap.Int("step", i+1),
			zap.Int("of", len(scenario.Steps)),
			zap.String("model", m.Name))

		sys, err := m.System()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		for k, v := range step.Params {
			if _, ok := sys.Params[k]; !ok {
				return results, fmt.Errorf("step %d: %w: %s has no parameter %q",
					i+1, analysis.ErrUnknownParameter, m.Name, k)
			}
			sys = sys.WithParam(k, v)
		}
		xf, err := m.Point(step.Point)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		report, err := r.Analyzer.Analyze(ctx, sys, xf)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		res := StepResult{Step: step, Model: m.Name, Report: report}

		if step.Save {
			if r.Store == nil {
				return results, fmt.Errorf("step %d: save requested without a store", i+1)
			}
			point := step.Point
			if point == "" {
				point = models.Origin
			}
			if res.RunID, err = r.Store.Save(m.Name, point, report); err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, res)
	}

	return results, nil
}

func (r *Runner) model(step ScenarioStep) (*models.Model, error) {
	switch {
	case step.File != "":
		mf, err := config.LoadModel(step.File)
		if err != nil {
			return nil, err
		}
		return models.FromConfig(mf), nil
	case step.Model != "":
		return r.Registry.Get(step.Model)
	}
	return nil, fmt.Errorf("step names neither a model nor a file")
}
