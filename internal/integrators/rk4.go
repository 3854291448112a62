package integrators

import (
	"github.com/san-kum/adexsim/internal/adexp"
	"github.com/san-kum/adexsim/internal/dynamo"
)

// RK4 is the classic fourth-order Runge-Kutta method with a fixed step.
type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Name() string { return NameRK4 }

func (r *RK4) Integrate(tDelta, tDeltaMax dynamo.Time, s adexp.State, f adexp.Derivative) (adexp.State, dynamo.Time) {
	h := min(tDelta, tDeltaMax)
	return r.Step(h.Sec(), s, f), h
}

// Step advances s by dt seconds.
func (r *RK4) Step(dt float64, s adexp.State, f adexp.Derivative) adexp.State {
	k1 := f(s)
	k2 := f(s.AddScaled(dt*0.5, k1))
	k3 := f(s.AddScaled(dt*0.5, k2))
	k4 := f(s.AddScaled(dt, k3))

	dt6 := dt / 6.0
	var result adexp.State
	for i := range s {
		result[i] = s[i] + dt6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	return result
}
