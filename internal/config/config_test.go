package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/san-kum/linmodal/internal/modal"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Modal.Margin != DefaultMargin {
		t.Errorf("expected margin %g, got %g", DefaultMargin, cfg.Modal.Margin)
	}
	opts, err := cfg.ModalOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts != modal.DefaultOptions() {
		t.Errorf("expected default modal options, got %+v", opts)
	}
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linmodal.yaml")
	data := "log_level: debug\nmodal:\n  sort: frequency\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if lvl, _ := cfg.Level(); lvl != zapcore.DebugLevel {
		t.Errorf("expected debug level, got %v", lvl)
	}
	opts, err := cfg.ModalOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts.SortBy != modal.SortFrequency {
		t.Errorf("expected frequency sort, got %v", opts.SortBy)
	}
	if cfg.Modal.Margin != DefaultMargin {
		t.Errorf("margin should keep its default, got %g", cfg.Modal.Margin)
	}
	if cfg.Spectrum.Samples != DefaultSamples {
		t.Errorf("samples should keep its default, got %d", cfg.Spectrum.Samples)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cfg.yaml")
	cfg := DefaultConfig()
	cfg.Sweep.Workers = 3
	cfg.Modal.Sort = "damping"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if *got != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"log level", func(c *Config) { c.LogLevel = "loud" }},
		{"sort", func(c *Config) { c.Modal.Sort = "size" }},
		{"margin", func(c *Config) { c.Modal.Margin = -1 }},
		{"tolerance", func(c *Config) { c.Modal.ConjugateRTol = -1 }},
		{"workers", func(c *Config) { c.Sweep.Workers = -2 }},
		{"points", func(c *Config) { c.Sweep.Points = 0 }},
		{"dt", func(c *Config) { c.Spectrum.Dt = 0 }},
		{"samples", func(c *Config) { c.Spectrum.Samples = 1 }},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", tt.name, err)
		}
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("modal: [1, 2"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("frequency")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Modal.Sort != "frequency" {
		t.Errorf("expected frequency sort, got %s", cfg.Modal.Sort)
	}

	cfg.Modal.Sort = "damping"
	if Presets["frequency"].Modal.Sort != "frequency" {
		t.Error("GetPreset should return a copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	if len(presets) != len(Presets) {
		t.Fatalf("expected %d presets, got %d", len(Presets), len(presets))
	}
	for i := 1; i < len(presets); i++ {
		if presets[i-1] > presets[i] {
			t.Errorf("presets not sorted: %v", presets)
		}
	}
	for _, name := range presets {
		if err := Presets[name].Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}

func TestLoadModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pendulum.yaml")
	data := `name: pendulum
states: [q, w]
params: {g: 9.81, l: 1, c: 0.1}
equations:
  - w
  - -g/l*sin(q) - c*w
points:
  inverted: [pi, "0"]
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	mf, err := LoadModel(path)
	if err != nil {
		t.Fatalf("load model failed: %v", err)
	}
	if mf.Name != "pendulum" || len(mf.States) != 2 {
		t.Errorf("unexpected model %+v", mf)
	}
	if mf.Equations[1] != "-g/l*sin(q) - c*w" {
		t.Errorf("unexpected equation %q", mf.Equations[1])
	}
	if p := mf.Points["inverted"]; len(p) != 2 || p[0] != "pi" {
		t.Errorf("unexpected point %v", p)
	}
}

func TestLoadModelRejectsMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	data := "name: bad\nstates: [x, v]\nequations: [v]\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadModel(path); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}
