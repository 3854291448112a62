package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/adexsim/internal/adexp"
	"github.com/san-kum/adexsim/internal/config"
	"github.com/san-kum/adexsim/internal/control"
	"github.com/san-kum/adexsim/internal/dynamo"
	"github.com/san-kum/adexsim/internal/integrators"
	"github.com/san-kum/adexsim/internal/metrics"
	"github.com/san-kum/adexsim/internal/sim"
)

type Registry struct {
	integrators map[string]func(eTar float64) sim.Integrator
	controllers map[string]func(cfg *config.Config) sim.Controller
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func(float64) sim.Integrator),
		controllers: make(map[string]func(*config.Config) sim.Controller),
	}

	r.integrators[integrators.NameEuler] = func(float64) sim.Integrator { return integrators.NewEuler() }
	r.integrators[integrators.NameMidpoint] = func(float64) sim.Integrator { return integrators.NewMidpoint() }
	r.integrators[integrators.NameRK4] = func(float64) sim.Integrator { return integrators.NewRK4() }
	r.integrators[integrators.NameDormandPrince] = func(eTar float64) sim.Integrator {
		return integrators.NewDormandPrince(eTar)
	}

	r.controllers[config.ControllerNone] = func(*config.Config) sim.Controller { return control.Null{} }
	r.controllers[config.ControllerMaxSpikes] = func(cfg *config.Config) sim.Controller {
		return control.NewMaxOutputSpikeCount(cfg.MaxSpikes)
	}
	r.controllers[config.ControllerQuiescence] = func(*config.Config) sim.Controller {
		return control.NewQuiescence()
	}

	return r
}

func (r *Registry) GetIntegrator(name string, eTar float64) (sim.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dynamo.ErrUnknownIntegrator, name)
	}
	return fn(eTar), nil
}

func (r *Registry) GetController(name string, cfg *config.Config) (sim.Controller, error) {
	fn, ok := r.controllers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dynamo.ErrUnknownController, name)
	}
	return fn(cfg), nil
}

func (r *Registry) ListIntegrators() []string {
	return sortedKeys(r.integrators)
}

func (r *Registry) ListControllers() []string {
	return sortedKeys(r.controllers)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns fresh instances of the metrics every run reports.
func (r *Registry) DefaultMetrics(params adexp.Parameters) []metrics.Metric {
	return []metrics.Metric{
		metrics.NewMaxVoltage(params.EL),
		metrics.NewOutputSpikes(),
		metrics.NewInputSpikes(),
		metrics.NewStability(),
	}
}
