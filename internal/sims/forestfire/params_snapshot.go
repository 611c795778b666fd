package forestfire

import (
	"strconv"

	"forest-ca/internal/core"
)

// Parameters reports the run configuration and live counters.
func (f *Forest) Parameters() core.ParameterSnapshot {
	cfg := f.cfg
	d := f.driver
	peak, peakStep := d.series.Peak()
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{
		{
			Name: "Forest",
			Params: []core.Parameter{
				intParam("w", "Width", cfg.Width),
				intParam("h", "Height", cfg.Height),
				int64Param("seed", "Seed", cfg.Seed),
				intParam("steps", "Steps", cfg.Steps),
			},
		},
		{
			Name: "Probabilities",
			Params: []core.Parameter{
				floatParam("grow_start", "Initial trees", cfg.InitialTreeProbability),
				floatParam("grow", "Growth", cfg.GrowProbability),
				floatParam("lightning", "Lightning", cfg.LightningProbability),
			},
		},
		{
			Name:    "Run",
			Summary: d.phase.String(),
			Params: []core.Parameter{
				intParam("step", "Step", d.step),
				intParam("burning", "Burning", d.series.At(d.step)),
				intParam("peak", "Peak burning", peak),
				intParam("peak_step", "Peak step", peakStep),
			},
		},
	}}
}

func intParam(key, label string, value int) core.Parameter {
	return core.Parameter{Key: key, Label: label, Type: core.ParamTypeInt, Value: strconv.Itoa(value)}
}

func int64Param(key, label string, value int64) core.Parameter {
	return core.Parameter{Key: key, Label: label, Type: core.ParamTypeInt, Value: strconv.FormatInt(value, 10)}
}

func floatParam(key, label string, value float64) core.Parameter {
	return core.Parameter{Key: key, Label: label, Type: core.ParamTypeFloat, Value: strconv.FormatFloat(value, 'f', -1, 64)}
}
