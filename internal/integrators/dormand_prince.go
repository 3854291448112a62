package integrators

import (
	"math"

	"github.com/san-kum/adexsim/internal/adexp"
	"github.com/san-kum/adexsim/internal/dynamo"
)

// Dormand-Prince coefficients (RK45)
var (
	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

const (
	// DefaultETar is the default target relative error per step.
	DefaultETar = 1e-3

	minStepSec = 1e-6
	maxStepSec = 10e-3
)

// Per-component lower bounds of the error scale. Voltage and adaptation are
// in volts, the channel rates in 1/s.
var errorFloor = adexp.State{1e-3, 1, 1, 1e-3}

// DormandPrince is an adaptive embedded 5(4) Runge-Kutta integrator. It
// remembers the last successful step size between calls; call Reset before
// reusing it for an unrelated run.
type DormandPrince struct {
	eTar     float64
	safety   float64
	minScale float64
	maxScale float64

	hOld     dynamo.Time
	accepted int
	rejected int
}

func NewDormandPrince(eTar float64) *DormandPrince {
	if !(eTar > 0) {
		eTar = DefaultETar
	}
	return &DormandPrince{
		eTar:     eTar,
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

func (d *DormandPrince) Name() string { return NameDormandPrince }

func (d *DormandPrince) ETar() float64 { return d.eTar }

func (d *DormandPrince) Accepted() int { return d.accepted }

func (d *DormandPrince) Rejected() int { return d.rejected }

func (d *DormandPrince) Reset() {
	d.hOld = 0
	d.accepted = 0
	d.rejected = 0
}

// Integrate takes one accepted step no longer than tDeltaMax. The first
// step after Reset starts from tDelta.
func (d *DormandPrince) Integrate(tDelta, tDeltaMax dynamo.Time, s adexp.State, f adexp.Derivative) (adexp.State, dynamo.Time) {
	hMin := dynamo.FromSec(minStepSec)
	hMax := min(dynamo.FromSec(maxStepSec), tDeltaMax)
	if hMax < hMin {
		hMin = hMax
	}

	h := d.hOld
	if h <= 0 {
		h = tDelta
	}
	h = clampTime(h, hMin, hMax)

	for {
		next, errVec := d.Step(h.Sec(), s, f)
		e := d.errorNorm(s, errVec)
		scale := clamp(d.safety/e, d.minScale, d.maxScale)

		if e < 1 || h <= hMin {
			d.accepted++
			d.hOld = clampTime(h.Scale(scale), dynamo.FromSec(minStepSec), dynamo.FromSec(maxStepSec))
			return next, h
		}

		d.rejected++
		h = max(h.Scale(scale), hMin)
	}
}

// Step advances s by dt seconds and returns the fifth order solution and
// the difference to the embedded fourth order solution.
func (d *DormandPrince) Step(dt float64, s adexp.State, f adexp.Derivative) (adexp.State, adexp.State) {
	k1 := f(s)

	var x adexp.State
	for i := range s {
		x[i] = s[i] + dt*b21*k1[i]
	}
	k2 := f(x)

	for i := range s {
		x[i] = s[i] + dt*(b31*k1[i]+b32*k2[i])
	}
	k3 := f(x)

	for i := range s {
		x[i] = s[i] + dt*(b41*k1[i]+b42*k2[i]+b43*k3[i])
	}
	k4 := f(x)

	for i := range s {
		x[i] = s[i] + dt*(b51*k1[i]+b52*k2[i]+b53*k3[i]+b54*k4[i])
	}
	k5 := f(x)

	for i := range s {
		x[i] = s[i] + dt*(b61*k1[i]+b62*k2[i]+b63*k3[i]+b64*k4[i]+b65*k5[i])
	}
	k6 := f(x)

	var next adexp.State
	for i := range s {
		next[i] = s[i] + dt*(c1*k1[i]+c3*k3[i]+c4*k4[i]+c5*k5[i]+c6*k6[i])
	}

	k7 := f(next)

	var errVec adexp.State
	for i := range s {
		errVec[i] = dt * (dc1*k1[i] + dc3*k3[i] + dc4*k4[i] + dc5*k5[i] + dc6*k6[i] + dc7*k7[i])
	}
	return next, errVec
}

// errorNorm is the RMS of the error relative to the pre-step state. A NaN
// norm counts as an infinitely bad step.
func (d *DormandPrince) errorNorm(s, errVec adexp.State) float64 {
	sum := 0.0
	for i := range s {
		r := errVec[i] / (d.eTar * math.Max(math.Abs(s[i]), errorFloor[i]))
		sum += r * r
	}
	e := math.Sqrt(sum / float64(len(s)))
	if math.IsNaN(e) {
		return math.Inf(1)
	}
	return e
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func clampTime(t, lo, hi dynamo.Time) dynamo.Time {
	return max(lo, min(hi, t))
}
