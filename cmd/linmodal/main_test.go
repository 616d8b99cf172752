package main

import (
	"errors"
	"testing"

	"github.com/san-kum/linmodal/internal/analysis"
	"github.com/san-kum/linmodal/internal/codegen"
	"github.com/san-kum/linmodal/internal/symbolic"
)

func TestResolveAppliesOverrides(t *testing.T) {
	a, err := setup()
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	setParams = map[string]string{"c": "0.75"}
	defer func() { setParams = nil }()

	m, sys, err := a.resolve([]string{"pendulum"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if m.Name != "pendulum" {
		t.Errorf("expected pendulum, got %s", m.Name)
	}
	if sys.Params["c"] != 0.75 {
		t.Errorf("expected c=0.75, got %g", sys.Params["c"])
	}
	if m.Params["c"] == 0.75 {
		t.Error("override leaked into the registry model")
	}

	setParams = map[string]string{"mass": "1"}
	if _, _, err := a.resolve([]string{"pendulum"}); !errors.Is(err, analysis.ErrUnknownParameter) {
		t.Errorf("expected ErrUnknownParameter, got %v", err)
	}
}

func TestResolveNeedsModel(t *testing.T) {
	a, err := setup()
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if _, _, err := a.resolve(nil); err == nil {
		t.Error("expected an error without a model")
	}
}

func TestCheckInterpreted(t *testing.T) {
	fn, err := codegen.Compile("f", codegen.Scalars("a", "b"), symbolic.MustParse("sin(a)*b + a^2"))
	if err != nil {
		t.Fatal(err)
	}
	if err := checkInterpreted(fn, []any{0.3, 2.0}); err != nil {
		t.Errorf("checkInterpreted: %v", err)
	}
}

func TestSetupRejectsUnknownPreset(t *testing.T) {
	preset = "nope"
	defer func() { preset = "" }()
	if _, err := setup(); err == nil {
		t.Error("expected error for unknown preset")
	}
}
