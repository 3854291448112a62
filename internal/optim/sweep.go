package optim

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/san-kum/adexsim/internal/adexp"
	"github.com/san-kum/adexsim/internal/config"
	"github.com/san-kum/adexsim/internal/experiment"
	"github.com/san-kum/adexsim/internal/metrics"
	"github.com/san-kum/adexsim/internal/recorder"
	"github.com/san-kum/adexsim/internal/sim"
)

var ErrUnknownParameter = errors.New("unknown parameter")

// ReasonCanceled is the skip reason of points the sweep never simulated
// because its context ended.
const ReasonCanceled = "canceled"

// Sweep varies one physical parameter of a base configuration and
// simulates every resulting parameter set.
type Sweep struct {
	Param   string
	Values  []float64
	Workers int

	registry *experiment.Registry
}

func NewSweep(param string, values []float64) *Sweep {
	return &Sweep{
		Param:    param,
		Values:   values,
		Workers:  runtime.NumCPU(),
		registry: experiment.NewRegistry(),
	}
}

// Point is the outcome for one swept value. Skipped points carry the reason
// they were not simulated (rejected working parameters or ReasonCanceled)
// and no simulation results.
type Point struct {
	Value   float64
	Skipped bool
	Reason  string

	OutputSpikes int
	MaxVoltage   float64
	FirstSpike   float64
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

type probe struct {
	max *metrics.MaxVoltage
	out *metrics.OutputSpikes
}

// Run evaluates every value of the sweep. Values producing invalid working
// parameters are reported as skipped. On cancellation the points simulated
// so far are returned with ctx.Err() and the rest are skipped with
// ReasonCanceled.
func (s *Sweep) Run(ctx context.Context, base *config.Config) ([]Point, error) {
	probeParams := base.Params
	if !probeParams.SetParam(s.Param, 0) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownParameter, s.Param)
	}

	model, err := base.ModelFlags()
	if err != nil {
		return nil, err
	}
	spikes, err := base.SpikeTrain()
	if err != nil {
		return nil, err
	}

	points := make([]Point, len(s.Values))
	var jobs []sim.Job
	var probes []probe
	var index []int

	for i, v := range s.Values {
		points[i].Value = v

		params := base.Params
		params.SetParam(s.Param, v)
		wp := adexp.NewWorkingParameters(params)
		if err := wp.Validate(); err != nil {
			points[i].Skipped = true
			points[i].Reason = err.Error()
			continue
		}

		integ, err := s.registry.GetIntegrator(base.Integrator, base.ETar)
		if err != nil {
			return nil, err
		}
		ctrl, err := s.registry.GetController(base.Controller, base)
		if err != nil {
			return nil, err
		}

		pr := probe{max: metrics.NewMaxVoltage(params.EL), out: metrics.NewOutputSpikes()}
		jobs = append(jobs, sim.Job{
			Spikes:     spikes,
			Recorder:   recorder.Multi{pr.max, pr.out},
			Controller: ctrl,
			Integrator: integ,
			Params:     wp,
			Config: sim.Config{
				Model:  model,
				TDelta: base.TDelta(),
				TEnd:   base.TEnd(),
			},
		})
		probes = append(probes, pr)
		index = append(index, i)
	}

	if len(jobs) == 0 {
		return points, ctx.Err()
	}

	results, err := sim.RunBatch(ctx, jobs, s.Workers)
	for j, pr := range probes {
		pt := &points[index[j]]
		// a simulated job takes at least one step
		if results[j].Steps == 0 {
			pt.Skipped = true
			pt.Reason = ReasonCanceled
			continue
		}
		pt.OutputSpikes = results[j].OutputSpikes
		pt.MaxVoltage = pr.max.Value()
		pt.FirstSpike = -1
		if pr.out.Count() > 0 {
			pt.FirstSpike = pr.out.Spikes[0].T.Sec()
		}
	}
	return points, err
}

// Threshold returns the first point at which the output spike count
// reaches n, or false when no point does.
func Threshold(points []Point, n int) (Point, bool) {
	for _, pt := range points {
		if !pt.Skipped && pt.OutputSpikes >= n {
			return pt, true
		}
	}
	return Point{}, false
}
