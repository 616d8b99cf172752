package automation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/linmodal/internal/analysis"
	"github.com/san-kum/linmodal/internal/models"
	"github.com/san-kum/linmodal/internal/storage"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func newRunner(t *testing.T) *Runner {
	return &Runner{
		Registry: models.NewRegistry(),
		Analyzer: analysis.NewAnalyzer(),
		Store:    storage.New(t.TempDir()),
	}
}

func TestRunScenario(t *testing.T) {
	dir := t.TempDir()
	modelPath := writeFile(t, dir, "osc.yaml", `name: osc
states: [x, v]
params: {k: 9}
equations: [v, -k*x]
`)
	scenarioPath := writeFile(t, dir, "scenario.yaml", `name: study
steps:
  - model: pendulum
    point: inverted
    params: {c: 0.5}
    save: true
  - file: `+modelPath+`
`)

	sc, err := LoadScenario(scenarioPath)
	require.NoError(t, err)
	require.Len(t, sc.Steps, 2)

	r := newRunner(t)
	results, err := r.RunScenario(context.Background(), sc)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "pendulum", results[0].Model)
	assert.False(t, results[0].Report.Stable())
	assert.Equal(t, 0.5, results[0].Report.Params["c"])
	require.NotEmpty(t, results[0].RunID)
	meta, err := r.Store.Load(results[0].RunID)
	require.NoError(t, err)
	assert.Equal(t, "inverted", meta.Point)

	assert.Equal(t, "osc", results[1].Model)
	assert.Empty(t, results[1].RunID)
	require.Len(t, results[1].Report.Modes, 1)
	assert.InDelta(t, 3/(2*3.141592653589793), results[1].Report.Modes[0].Frequency, 1e-9)
}

func TestRunScenarioStopsOnFailure(t *testing.T) {
	sc := &Scenario{Name: "bad", Steps: []ScenarioStep{
		{Model: "spring_mass"},
		{Model: "pendulum", Params: map[string]float64{"mass": 1}},
		{Model: "vanderpol"},
	}}
	results, err := newRunner(t).RunScenario(context.Background(), sc)
	assert.ErrorIs(t, err, analysis.ErrUnknownParameter)
	assert.Len(t, results, 1)

	sc.Steps = []ScenarioStep{{Model: "nbody"}}
	_, err = newRunner(t).RunScenario(context.Background(), sc)
	assert.ErrorIs(t, err, models.ErrUnknownModel)

	sc.Steps = []ScenarioStep{{}}
	_, err = newRunner(t).RunScenario(context.Background(), sc)
	assert.Error(t, err)

	r := newRunner(t)
	r.Store = nil
	sc.Steps = []ScenarioStep{{Model: "pendulum", Save: true}}
	_, err = r.RunScenario(context.Background(), sc)
	assert.Error(t, err)
}

func TestRunScenarioCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sc := &Scenario{Steps: []ScenarioStep{{Model: "pendulum"}}}
	_, err := newRunner(t).RunScenario(ctx, sc)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestLoadScenarioRejectsEmpty(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.yaml", "name: nothing\n")
	_, err := LoadScenario(path)
	assert.Error(t, err)
}
