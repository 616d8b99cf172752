package models

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

type Registry struct {
	mu     sync.RWMutex
	models map[string]*Model
}

// NewRegistry returns a registry holding the built-in models.
func NewRegistry() *Registry {
	r := &Registry{models: make(map[string]*Model)}
	for _, m := range builtins() {
		r.models[m.Name] = m
	}
	return r
}

func (r *Registry) Register(m *Model) error {
	if m.Name == "" {
		return fmt.Errorf("%w: model has no name", ErrInvalidModel)
	}
	if _, err := m.System(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.models[m.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateModel, m.Name)
	}
	r.models[m.Name] = m
	return nil
}

func (r *Registry) Get(name string) (*Model, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, name)
	}
	return m, nil
}

func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.models))
}
