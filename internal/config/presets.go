package config

import "sort"

// Presets are named overrides of the default analysis settings.
var Presets = map[string]*Config{
	"default": DefaultConfig(),
	"frequency": withModal(func(m *ModalConfig) {
		m.Sort = "frequency"
	}),
	"damping": withModal(func(m *ModalConfig) {
		m.Sort = "damping"
	}),
	"strict": withModal(func(m *ModalConfig) {
		m.Margin = 0
		m.ConjugateRTol = 1e-9
		m.ConjugateATol = 1e-12
	}),
	"loose": withModal(func(m *ModalConfig) {
		m.Margin = 1e-6
		m.ConjugateRTol = 1e-3
		m.ConjugateATol = 1e-6
	}),
}

func withModal(fn func(*ModalConfig)) *Config {
	cfg := DefaultConfig()
	fn(&cfg.Modal)
	return cfg
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
