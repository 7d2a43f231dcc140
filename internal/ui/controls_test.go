package ui

import (
	"testing"

	"sandfall/internal/core"
)

type fakeSetter struct {
	key   string
	value int
}

func (f *fakeSetter) SetIntParameter(key string, value int) bool {
	f.key, f.value = key, value
	return true
}

func TestRefreshAndAdjust(t *testing.T) {
	states := []controlState{
		{control: core.ParameterControl{Key: "spray", Label: "Spray", Step: 5, Min: 0, Max: 12}},
		{control: core.ParameterControl{Key: "missing", Label: "Missing", Step: 1}},
	}
	snap := core.ParameterSnapshot{Groups: []core.ParameterGroup{{
		Name:   "Input",
		Params: []core.Parameter{{Key: "spray", Type: core.ParamTypeInt, Value: "10"}},
	}}}
	refreshControls(states, snap)
	if !states[0].hasValue || states[0].value != 10 {
		t.Fatalf("spray state = %+v", states[0])
	}
	if states[1].hasValue || states[1].label() != "Missing: --" {
		t.Fatal("missing parameter should have no value")
	}

	setter := &fakeSetter{}
	if !applyAdjustment(&states[0], setter, 1) {
		t.Fatal("increment should apply")
	}
	if setter.key != "spray" || setter.value != 12 || states[0].value != 12 {
		t.Fatalf("increment should clamp to max, got %d", setter.value)
	}
	if applyAdjustment(&states[0], setter, 1) {
		t.Fatal("increment at max must be a no-op")
	}
	if applyAdjustment(&states[1], setter, 1) {
		t.Fatal("control without value must not adjust")
	}
	if applyAdjustment(&states[0], nil, -1) {
		t.Fatal("nil setter must not adjust")
	}
}
