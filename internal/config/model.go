package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ModelFile is a user-defined system in YAML:
//
//	name: pendulum
//	states: [q, w]
//	params: {g: 9.81, l: 1, c: 0.1}
//	equations:
//	  - w
//	  - -g/l*sin(q) - c*w
//	points:
//	  hanging: ["0", "0"]
//	  inverted: [pi, "0"]
type ModelFile struct {
	Name        string              `yaml:"name"`
	Description string              `yaml:"description,omitempty"`
	States      []string            `yaml:"states"`
	Params      map[string]float64  `yaml:"params,omitempty"`
	Equations   []string            `yaml:"equations"`
	Points      map[string][]string `yaml:"points,omitempty"`
}

func LoadModel(path string) (*ModelFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var mf ModelFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	if mf.Name == "" {
		return nil, fmt.Errorf("%w: %s: model has no name", ErrInvalidConfig, path)
	}
	if len(mf.States) == 0 {
		return nil, fmt.Errorf("%w: %s: model has no states", ErrInvalidConfig, path)
	}
	if len(mf.Equations) != len(mf.States) {
		return nil, fmt.Errorf("%w: %s: %d equations for %d states",
			ErrInvalidConfig, path, len(mf.Equations), len(mf.States))
	}
	return &mf, nil
}

func SaveModel(path string, mf *ModelFile) error {
	data, err := yaml.Marshal(mf)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
