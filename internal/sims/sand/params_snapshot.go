package sand

import (
	"strconv"

	"sandfall/internal/core"
)

func (w *World) Parameters() core.ParameterSnapshot {
	p := w.cfg.Params
	groups := []core.ParameterGroup{
		{
			Name: "World",
			Params: []core.Parameter{
				intParam("w", "Width", w.cfg.Width),
				intParam("h", "Height", w.cfg.Height),
				int64Param("seed", "Seed", w.cfg.Seed),
				{Key: "layout", Label: "Layout", Type: core.ParamTypeString, Value: w.cfg.Layout},
			},
		},
		{
			Name: "Scheduling",
			Params: []core.Parameter{
				intParam("chunk", "Chunk size", p.ChunkSize),
				intParam("workers", "Workers", w.sched.Workers()),
				intParam("linger", "Region linger", p.RegionLinger),
			},
		},
		{
			Name: "Fluids",
			Params: []core.Parameter{
				intParam("reach", "Liquid reach", p.LiquidReach),
				intParam("spread_limit", "Spread limit", p.SpreadLimit),
			},
		},
		{
			Name: "Input",
			Params: []core.Parameter{
				intParam("brush", "Brush radius", p.BrushRadius),
				intParam("spray", "Spray tries", p.SprayTries),
				boolParam("drain", "Drain open", w.Drain()),
				intParam("drain_half", "Drain half width", p.DrainHalfWidth),
				intParam("drain_depth", "Drain depth", p.DrainDepth),
			},
		},
	}
	return core.ParameterSnapshot{Groups: groups}
}

// ParameterControls lists the values adjustable while the world runs.
func (w *World) ParameterControls() []core.ParameterControl {
	return []core.ParameterControl{
		{Key: "brush", Label: "Brush", Step: 1, Min: 0, Max: 32},
		{Key: "spray", Label: "Spray", Step: 5, Min: 0, Max: 200},
		{Key: "workers", Label: "Workers", Step: 1, Min: 1, Max: 64},
		{Key: "linger", Label: "Linger", Step: 1, Min: 1, Max: 30},
	}
}

// SetIntParameter updates one of the controls returned by ParameterControls.
func (w *World) SetIntParameter(key string, value int) bool {
	for _, c := range w.ParameterControls() {
		if c.Key != key {
			continue
		}
		value = c.Clamp(value)
		switch key {
		case "brush":
			w.cfg.Params.BrushRadius = value
		case "spray":
			w.cfg.Params.SprayTries = value
		case "workers":
			w.cfg.Params.Workers = value
			w.sched.SetWorkers(value)
		case "linger":
			w.cfg.Params.RegionLinger = value
			w.tracker.SetLinger(value)
		}
		return true
	}
	return false
}

func intParam(key, label string, value int) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.Itoa(value),
	}
}

func int64Param(key, label string, value int64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.FormatInt(value, 10),
	}
}

func boolParam(key, label string, value bool) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeBool,
		Value: strconv.FormatBool(value),
	}
}
