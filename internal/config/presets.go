package config

import (
	"sort"

	"github.com/san-kum/adexsim/internal/adexp"
	"github.com/san-kum/adexsim/internal/integrators"
)

var Presets = map[string]*Config{
	"single": {
		Integrator: integrators.NameRK4, Controller: ControllerNone, Dt: 1e-5, Duration: 0.05,
		ETar: integrators.DefaultETar, MaxSpikes: 1, Params: adexp.DefaultParameters(),
		Spikes: []SpikeConfig{{T: 0.005, W: 5}},
	},
	"burst": {
		Integrator: integrators.NameDormandPrince, Controller: ControllerNone, Duration: 0.2,
		ETar: integrators.DefaultETar, MaxSpikes: 1, Params: adexp.DefaultParameters(),
		Train: &TrainConfig{Start: 0.01, Interval: 0.002, Count: 20, W: 1.5},
	},
	"inhibited": {
		Integrator: integrators.NameDormandPrince, Controller: ControllerNone, Duration: 0.2,
		ETar: integrators.DefaultETar, MaxSpikes: 1, Params: adexp.DefaultParameters(),
		Spikes: []SpikeConfig{{T: 0.045, W: -3}, {T: 0.095, W: -3}},
		Train:  &TrainConfig{Start: 0.01, Interval: 0.01, Count: 15, W: 3, Jitter: 0.001, Seed: 7},
	},
	"max-potential": {
		Model:      []string{"clamp-ith", "disable-spiking"},
		Integrator: integrators.NameDormandPrince, Controller: ControllerQuiescence, Duration: 0.1,
		ETar: integrators.DefaultETar, MaxSpikes: 1, Params: adexp.DefaultParameters(),
		Spikes: []SpikeConfig{{T: 0.005, W: 3}},
	},
	"lif": {
		Model:      []string{"if-cond-exp"},
		Integrator: integrators.NameRK4, Controller: ControllerNone, Dt: 1e-5, Duration: 0.1,
		ETar: integrators.DefaultETar, MaxSpikes: 1, Params: lifParameters(),
		Train: &TrainConfig{Start: 0.005, Interval: 0.02, Count: 5, W: 4},
	},
}

func lifParameters() adexp.Parameters {
	p := adexp.DefaultParameters()
	p.TauRef = 2e-3
	return p
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
