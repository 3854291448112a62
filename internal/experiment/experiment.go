package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/san-kum/adexsim/internal/adexp"
	"github.com/san-kum/adexsim/internal/config"
	"github.com/san-kum/adexsim/internal/integrators"
	"github.com/san-kum/adexsim/internal/metrics"
	"github.com/san-kum/adexsim/internal/recorder"
	"github.com/san-kum/adexsim/internal/sim"
)

type Experiment struct {
	cfg      *config.Config
	registry *Registry
	log      *slog.Logger
}

type Option func(*Experiment)

func WithLogger(l *slog.Logger) Option {
	return func(e *Experiment) { e.log = l }
}

func WithRegistry(r *Registry) Option {
	return func(e *Experiment) { e.registry = r }
}

func New(cfg *config.Config, opts ...Option) *Experiment {
	e := &Experiment{
		cfg:      cfg,
		registry: NewRegistry(),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Outcome is everything a run produced.
type Outcome struct {
	Result  sim.Result
	Model   adexp.Model
	Spikes  sim.SpikeVec
	Trace   *recorder.Vector
	Metrics map[string]float64
	Elapsed time.Duration

	// Adaptive step statistics, zero for fixed step integrators.
	Accepted int
	Rejected int
}

// Run validates the configuration and simulates it once. Extra recorders
// receive every call the trace recorder does.
func (e *Experiment) Run(ctx context.Context, extra ...sim.Recorder) (*Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := e.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("experiment: %w", err)
	}

	model, err := e.cfg.ModelFlags()
	if err != nil {
		return nil, err
	}
	spikes, err := e.cfg.SpikeTrain()
	if err != nil {
		return nil, err
	}
	integ, err := e.registry.GetIntegrator(e.cfg.Integrator, e.cfg.ETar)
	if err != nil {
		return nil, err
	}
	ctrl, err := e.registry.GetController(e.cfg.Controller, e.cfg)
	if err != nil {
		return nil, err
	}

	p := adexp.NewWorkingParameters(e.cfg.Params)
	trace := recorder.NewVector(recorder.UnitsOf(e.cfg.Params), e.cfg.RecordEvery())
	ms := e.registry.DefaultMetrics(e.cfg.Params)

	recs := recorder.Multi{trace}
	for _, m := range ms {
		recs = append(recs, m)
	}
	recs = append(recs, extra...)

	simCfg := sim.Config{
		Model:  model,
		TDelta: e.cfg.TDelta(),
		TEnd:   e.cfg.TEnd(),
	}

	e.log.Debug("starting run",
		"integrator", e.cfg.Integrator,
		"model", model.String(),
		"spikes", len(spikes),
		"e_spike_eff", p.ESpikeEff(),
		"t_delta", simCfg.TDelta.String(),
	)

	start := time.Now()
	res := sim.Simulate(spikes, recs, ctrl, integ, p, simCfg)
	elapsed := time.Since(start)

	out := &Outcome{
		Result:  res,
		Model:   model,
		Spikes:  spikes,
		Trace:   trace,
		Metrics: metrics.Collect(ms...),
		Elapsed: elapsed,
	}
	if dp, ok := integ.(*integrators.DormandPrince); ok {
		out.Accepted = dp.Accepted()
		out.Rejected = dp.Rejected()
	}

	e.log.Info("run finished",
		"integrator", e.cfg.Integrator,
		"model", model.String(),
		"steps", res.Steps,
		"output_spikes", res.OutputSpikes,
		"elapsed", elapsed,
	)
	return out, nil
}
