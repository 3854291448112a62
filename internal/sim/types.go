package sim

import (
	"sort"

	"github.com/san-kum/adexsim/internal/adexp"
	"github.com/san-kum/adexsim/internal/dynamo"
)

type SpikeKind uint8

const (
	// Normal spikes add W*wSpike to the excitatory rate when W > 0 and
	// -W*wSpike to the inhibitory rate otherwise.
	Normal SpikeKind = iota

	// ForceOutput triggers an output spike at the arrival time.
	ForceOutput

	// SetVoltage sets the membrane potential to W (working units, relative
	// to eL).
	SetVoltage
)

func (k SpikeKind) String() string {
	switch k {
	case ForceOutput:
		return "force-output"
	case SetVoltage:
		return "set-voltage"
	}
	return "normal"
}

// Spike is an input event. Special kinds are only honored by models with
// adexp.ProcessSpecial and are applied as Normal spikes otherwise.
type Spike struct {
	T    dynamo.Time
	W    float64
	Kind SpikeKind
}

// SpikeVec is a time-sorted sequence of input spikes.
type SpikeVec []Spike

// Validate reports the first spike that precedes its predecessor.
func (v SpikeVec) Validate() error {
	for i := 1; i < len(v); i++ {
		if v[i].T < v[i-1].T {
			return &dynamo.SpikeOrderError{Index: i, Prev: v[i-1].T, Next: v[i].T}
		}
	}
	return nil
}

// Sort orders v by time, keeping the relative order of simultaneous spikes.
func (v SpikeVec) Sort() {
	sort.SliceStable(v, func(i, j int) bool { return v[i].T < v[j].T })
}

// Recorder receives sampled states. Forced calls mark discrete events and
// must never be dropped.
type Recorder interface {
	Record(t dynamo.Time, s adexp.State, as adexp.AuxiliaryState, forced bool)
	InputSpike(t dynamo.Time, s adexp.State)
	OutputSpike(t dynamo.Time, s adexp.State)
}

type ControlResult uint8

const (
	Continue ControlResult = iota
	// MayContinue allows stopping once no input spikes are pending.
	MayContinue
	Abort
)

func (r ControlResult) String() string {
	switch r {
	case MayContinue:
		return "may-continue"
	case Abort:
		return "abort"
	}
	return "continue"
}

// Controller is queried once per accepted integration step.
type Controller interface {
	Control(t dynamo.Time, s adexp.State, as adexp.AuxiliaryState, p *adexp.WorkingParameters, inRefractory bool) ControlResult
}

// OutputSpikeObserver is implemented by controllers that track output spikes.
type OutputSpikeObserver interface {
	OutputSpike(t dynamo.Time, s adexp.State)
}

type Integrator interface {
	Integrate(tDelta, tDeltaMax dynamo.Time, s adexp.State, f adexp.Derivative) (adexp.State, dynamo.Time)
}

// Resetter is implemented by integrators that carry state between steps.
type Resetter interface {
	Reset()
}

type Config struct {
	Model adexp.Model

	// TDelta is the requested step; zero selects the parameter set's
	// recommended step.
	TDelta dynamo.Time

	// TEnd bounds the simulated time. Zero means unbounded, in which case
	// the controller has to end the run.
	TEnd dynamo.Time

	// S0 is the initial state; the zero value is the resting state.
	S0 adexp.State

	// LastSpike resumes a refractory window from a previous run.
	LastSpike *dynamo.Time
}

func DefaultConfig() Config {
	return Config{TEnd: dynamo.MaxTime}
}

type Result struct {
	T         dynamo.Time
	State     adexp.State
	LastSpike dynamo.Time

	Steps        int
	InputSpikes  int
	OutputSpikes int
}
