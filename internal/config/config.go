package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/linmodal/internal/modal"
)

const (
	DefaultLogLevel = "info"
	DefaultDataDir  = "data"
	DefaultMargin   = 1e-9
	DefaultSort     = "none"
	DefaultPoints   = 50
	DefaultDt       = 0.01
	DefaultSamples  = 1024
)

type Config struct {
	LogLevel string         `yaml:"log_level"`
	DataDir  string         `yaml:"data_dir"`
	Modal    ModalConfig    `yaml:"modal"`
	Sweep    SweepConfig    `yaml:"sweep"`
	Spectrum SpectrumConfig `yaml:"spectrum"`
}

type ModalConfig struct {
	Margin        float64 `yaml:"margin"`
	Sort          string  `yaml:"sort"`
	ConjugateRTol float64 `yaml:"conjugate_rtol"`
	ConjugateATol float64 `yaml:"conjugate_atol"`
}

type SweepConfig struct {
	Workers int `yaml:"workers"`
	Points  int `yaml:"points"`
}

type SpectrumConfig struct {
	Dt      float64 `yaml:"dt"`
	Samples int     `yaml:"samples"`
}

func DefaultConfig() *Config {
	opts := modal.DefaultOptions()
	return &Config{
		LogLevel: DefaultLogLevel,
		DataDir:  DefaultDataDir,
		Modal: ModalConfig{
			Margin:        DefaultMargin,
			Sort:          DefaultSort,
			ConjugateRTol: opts.ConjugateRTol,
			ConjugateATol: opts.ConjugateATol,
		},
		Sweep: SweepConfig{Points: DefaultPoints},
		Spectrum: SpectrumConfig{
			Dt:      DefaultDt,
			Samples: DefaultSamples,
		},
	}
}

// Load reads a YAML config. Fields missing from the file keep their
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := modal.ParseSortKey(c.Modal.Sort); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	switch {
	case c.Modal.Margin < 0:
		return fmt.Errorf("%w: negative margin %g", ErrInvalidConfig, c.Modal.Margin)
	case c.Modal.ConjugateRTol < 0 || c.Modal.ConjugateATol < 0:
		return fmt.Errorf("%w: negative conjugate tolerance", ErrInvalidConfig)
	case c.Sweep.Workers < 0:
		return fmt.Errorf("%w: negative worker count %d", ErrInvalidConfig, c.Sweep.Workers)
	case c.Sweep.Points < 1:
		return fmt.Errorf("%w: sweep needs at least one point", ErrInvalidConfig)
	case c.Spectrum.Dt <= 0:
		return fmt.Errorf("%w: spectrum dt must be positive", ErrInvalidConfig)
	case c.Spectrum.Samples < 2:
		return fmt.Errorf("%w: spectrum needs at least two samples", ErrInvalidConfig)
	}
	return nil
}

// Level parses LogLevel into a zap level.
func (c *Config) Level() (zapcore.Level, error) {
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return lvl, fmt.Errorf("%w: log level %q", ErrInvalidConfig, c.LogLevel)
	}
	return lvl, nil
}

// ModalOptions converts the modal section for modal.ExtractModes.
func (c *Config) ModalOptions() (modal.Options, error) {
	key, err := modal.ParseSortKey(c.Modal.Sort)
	if err != nil {
		return modal.Options{}, err
	}
	return modal.Options{
		Margin:        c.Modal.Margin,
		SortBy:        key,
		ConjugateRTol: c.Modal.ConjugateRTol,
		ConjugateATol: c.Modal.ConjugateATol,
	}, nil
}
