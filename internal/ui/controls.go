package ui

import (
	"strconv"

	"sandfall/internal/core"
)

type parameterProvider interface {
	Parameters() core.ParameterSnapshot
}

type statusProvider interface {
	Status() []string
}

// controlState tracks one HUD row: the control, its last known value and
// the hit boxes of its buttons.
type controlState struct {
	control  core.ParameterControl
	value    int
	hasValue bool

	top              int
	minusX0, minusX1 int
	plusX0, plusX1   int
	y0, y1           int
}

func newControlStates(sim core.Sim) []controlState {
	provider, ok := sim.(core.ParameterControlsProvider)
	if !ok {
		return nil
	}
	controls := provider.ParameterControls()
	states := make([]controlState, len(controls))
	for i, c := range controls {
		states[i] = controlState{control: c}
	}
	return states
}

// refreshControls copies current values from snap into states.
func refreshControls(states []controlState, snap core.ParameterSnapshot) {
	for i := range states {
		s := &states[i]
		s.hasValue = false
		p, ok := snap.Lookup(s.control.Key)
		if !ok || p.Type != core.ParamTypeInt {
			continue
		}
		v, err := strconv.Atoi(p.Value)
		if err != nil {
			continue
		}
		s.value = v
		s.hasValue = true
	}
}

// adjustTarget returns the value one step in direction, clamped to the
// control's bounds, and whether it differs from the current value.
func adjustTarget(s *controlState, direction int) (int, bool) {
	if !s.hasValue || direction == 0 {
		return s.value, false
	}
	step := s.control.Step
	if step <= 0 {
		step = 1
	}
	target := s.control.Clamp(s.value + direction*step)
	return target, target != s.value
}

// applyAdjustment steps the control and pushes the value into setter.
func applyAdjustment(s *controlState, setter core.IntParameterSetter, direction int) bool {
	if setter == nil {
		return false
	}
	target, ok := adjustTarget(s, direction)
	if !ok || !setter.SetIntParameter(s.control.Key, target) {
		return false
	}
	s.value = target
	return true
}

func (s *controlState) label() string {
	if !s.hasValue {
		return s.control.Label + ": --"
	}
	return s.control.Label + ": " + strconv.Itoa(s.value)
}
