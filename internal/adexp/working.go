package adexp

import (
	"fmt"
	"math"

	"github.com/san-kum/adexsim/internal/dynamo"
)

// Indices into the working parameter Vector.
const (
	IdxLL      = iota // leak rate gL/cM [1/s]
	IdxLE             // excitatory decay rate 1/tauE [1/s]
	IdxLI             // inhibitory decay rate 1/tauI [1/s]
	IdxLW             // adaptation decay rate 1/tauW [1/s]
	IdxLA             // subthreshold adaptation a/cM [1/s]
	IdxLB             // spike-triggered adaptation b/cM [V/s]
	IdxEE             // excitatory reversal potential minus eL [V]
	IdxEI             // inhibitory reversal potential minus eL [V]
	IdxETh            // threshold potential minus eL [V]
	IdxESpike         // spike potential minus eL [V]
	IdxEReset         // reset potential minus eL [V]
	IdxDeltaTh        // slope factor [V]
	IdxWSpike         // synaptic weight w/cM [1/s]
	NumWorking
)

var workingNames = [NumWorking]string{
	"lL", "lE", "lI", "lW", "lA", "lB", "eE", "eI", "eTh", "eSpike", "eReset", "deltaTh", "wSpike",
}

// Vector is the raw, rescaled parameter vector.
type Vector [NumWorking]float64

// Name returns the short name of component i.
func (v Vector) Name(i int) string {
	return workingNames[i]
}

const (
	// MinDeltaT is the shortest time span the exponential current must not
	// overflow within.
	MinDeltaT = 1e-7

	// DefaultTDelta is the upper bound of the recommended fixed step.
	DefaultTDelta = 1e-4
)

// WorkingParameters are the capacitance-normalized parameters used by the
// simulation. Derived scalars are computed at construction; the type has no
// mutators, so they can never go stale. Use With to derive a changed copy.
type WorkingParameters struct {
	vec    Vector
	tauRef dynamo.Time

	invDeltaTh     float64
	maxIThExponent float64
	eSpikeEff      float64
	eSpikeEffRed   float64
	tDelta         dynamo.Time
	thresholdErr   error
}

// NewWorkingParameters rescales physical parameters.
func NewWorkingParameters(p Parameters) WorkingParameters {
	var v Vector
	v[IdxLL] = p.GL / p.CM
	v[IdxLE] = 1.0 / p.TauE
	v[IdxLI] = 1.0 / p.TauI
	v[IdxLW] = 1.0 / p.TauW
	v[IdxLA] = p.A / p.CM
	v[IdxLB] = p.B / p.CM
	v[IdxEE] = p.EE - p.EL
	v[IdxEI] = p.EI - p.EL
	v[IdxETh] = p.ETh - p.EL
	v[IdxESpike] = p.ESpike - p.EL
	v[IdxEReset] = p.EReset - p.EL
	v[IdxDeltaTh] = p.DeltaTh
	v[IdxWSpike] = p.W / p.CM
	return FromVector(v, dynamo.FromSec(p.TauRef))
}

// FromVector builds working parameters from a raw vector.
func FromVector(v Vector, tauRef dynamo.Time) WorkingParameters {
	wp := WorkingParameters{vec: v, tauRef: tauRef}
	wp.derive()
	return wp
}

func (p *WorkingParameters) derive() {
	v := &p.vec
	p.invDeltaTh = 1.0 / v[IdxDeltaTh]
	p.maxIThExponent = math.Log((v[IdxESpike] - v[IdxEReset]) /
		(MinDeltaT * v[IdxDeltaTh] * v[IdxLL]))
	p.eSpikeEff, p.thresholdErr = ESpikeEff(v[IdxETh], v[IdxDeltaTh])
	p.eSpikeEffRed = p.eSpikeEff - ESpikeEffReduction
	if p.thresholdErr != nil {
		p.eSpikeEffRed = Lowest
	}
	p.tDelta = recommendedStep(v)
}

// recommendedStep is a tenth of the shortest time constant, capped at DefaultTDelta.
func recommendedStep(v *Vector) dynamo.Time {
	maxRate := math.Max(math.Max(v[IdxLL], v[IdxLE]), math.Max(v[IdxLI], v[IdxLW]))
	step := DefaultTDelta
	if maxRate > 0 && !math.IsInf(maxRate, 0) {
		step = math.Min(step, 0.1/maxRate)
	}
	return dynamo.FromSec(math.Max(step, MinDeltaT))
}

// Recompute rebuilds the derived scalars from the raw vector.
func (p WorkingParameters) Recompute() WorkingParameters {
	return FromVector(p.vec, p.tauRef)
}

// With returns a copy with fn applied to the raw vector and all derived
// scalars recomputed.
func (p WorkingParameters) With(fn func(v *Vector)) WorkingParameters {
	v := p.vec
	fn(&v)
	return FromVector(v, p.tauRef)
}

// WithTauRef returns a copy with a different refractory period.
func (p WorkingParameters) WithTauRef(tauRef dynamo.Time) WorkingParameters {
	q := p
	q.tauRef = tauRef
	return q
}

// Parameters converts back to physical units, given the capacitance and leak
// potential which the working representation factors out.
func (p WorkingParameters) Parameters(cM, eL float64) Parameters {
	v := &p.vec
	return Parameters{
		CM:      cM,
		GL:      v[IdxLL] * cM,
		EL:      eL,
		EE:      v[IdxEE] + eL,
		EI:      v[IdxEI] + eL,
		ETh:     v[IdxETh] + eL,
		ESpike:  v[IdxESpike] + eL,
		EReset:  v[IdxEReset] + eL,
		DeltaTh: v[IdxDeltaTh],
		TauE:    1.0 / v[IdxLE],
		TauI:    1.0 / v[IdxLI],
		TauW:    1.0 / v[IdxLW],
		A:       v[IdxLA] * cM,
		B:       v[IdxLB] * cM,
		W:       v[IdxWSpike] * cM,
		TauRef:  p.tauRef.Sec(),
	}
}

// Vector returns a copy of the raw vector: rates in 1/s, potentials in V
// relative to eL.
func (p WorkingParameters) Vector() Vector   { return p.vec }
func (p WorkingParameters) LL() float64      { return p.vec[IdxLL] }
func (p WorkingParameters) LE() float64      { return p.vec[IdxLE] }
func (p WorkingParameters) LI() float64      { return p.vec[IdxLI] }
func (p WorkingParameters) LW() float64      { return p.vec[IdxLW] }
func (p WorkingParameters) LA() float64      { return p.vec[IdxLA] }
func (p WorkingParameters) LB() float64      { return p.vec[IdxLB] }
func (p WorkingParameters) EE() float64      { return p.vec[IdxEE] }
func (p WorkingParameters) EI() float64      { return p.vec[IdxEI] }
func (p WorkingParameters) ETh() float64     { return p.vec[IdxETh] }
func (p WorkingParameters) ESpike() float64  { return p.vec[IdxESpike] }
func (p WorkingParameters) EReset() float64  { return p.vec[IdxEReset] }
func (p WorkingParameters) DeltaTh() float64 { return p.vec[IdxDeltaTh] }
func (p WorkingParameters) WSpike() float64  { return p.vec[IdxWSpike] }

// TauRef is the refractory period as a Time duration.
func (p WorkingParameters) TauRef() dynamo.Time     { return p.tauRef }
func (p WorkingParameters) InvDeltaTh() float64     { return p.invDeltaTh }
func (p WorkingParameters) MaxIThExponent() float64 { return p.maxIThExponent }
func (p WorkingParameters) ESpikeEff() float64      { return p.eSpikeEff }
func (p WorkingParameters) ESpikeEffRed() float64   { return p.eSpikeEffRed }
func (p WorkingParameters) TDelta() dynamo.Time     { return p.tDelta }

// Valid reports whether the parameters may be simulated. Callers must check
// this before sim.Simulate, which does not validate.
func (p WorkingParameters) Valid() bool {
	v := &p.vec
	return v[IdxLL] > 0 && v[IdxLE] > 0 && v[IdxLI] > 0 && v[IdxLW] > 0 &&
		v[IdxLA] > 0 && v[IdxLB] > 0 &&
		v[IdxDeltaTh] > 0 &&
		v[IdxEE] > v[IdxEI] && v[IdxEE] > v[IdxETh] && v[IdxEE] > 0 &&
		v[IdxESpike] > v[IdxEReset] &&
		p.tauRef >= 0 &&
		p.thresholdErr == nil
}

// Validate is Valid with a reason.
func (p WorkingParameters) Validate() error {
	v := &p.vec
	for _, i := range []int{IdxLL, IdxLE, IdxLI, IdxLW, IdxLA, IdxLB, IdxDeltaTh} {
		if !(v[i] > 0) {
			return fmt.Errorf("%w: %s = %g must be positive", dynamo.ErrInvalidParameters, v.Name(i), v[i])
		}
	}
	switch {
	case !(v[IdxEE] > v[IdxEI]):
		return fmt.Errorf("%w: eE must exceed eI", dynamo.ErrInvalidParameters)
	case !(v[IdxEE] > v[IdxETh]):
		return fmt.Errorf("%w: eE must exceed eTh", dynamo.ErrInvalidParameters)
	case !(v[IdxEE] > 0):
		return fmt.Errorf("%w: eE must exceed eL", dynamo.ErrInvalidParameters)
	case !(v[IdxESpike] > v[IdxEReset]):
		return fmt.Errorf("%w: eSpike must exceed eReset", dynamo.ErrInvalidParameters)
	case p.tauRef < 0:
		return fmt.Errorf("%w: negative refractory period", dynamo.ErrInvalidParameters)
	case p.thresholdErr != nil:
		return fmt.Errorf("%w: %w", dynamo.ErrInvalidParameters, p.thresholdErr)
	}
	return nil
}
