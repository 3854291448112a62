package integrators

import (
	"github.com/san-kum/adexsim/internal/adexp"
	"github.com/san-kum/adexsim/internal/dynamo"
)

// Midpoint is the explicit second-order midpoint method.
type Midpoint struct{}

func NewMidpoint() *Midpoint {
	return &Midpoint{}
}

func (m *Midpoint) Name() string { return NameMidpoint }

func (m *Midpoint) Integrate(tDelta, tDeltaMax dynamo.Time, s adexp.State, f adexp.Derivative) (adexp.State, dynamo.Time) {
	h := min(tDelta, tDeltaMax)
	dt := h.Sec()
	half := s.AddScaled(0.5*dt, f(s))
	return s.AddScaled(dt, f(half)), h
}
