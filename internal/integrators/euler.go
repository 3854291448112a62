package integrators

import (
	"github.com/san-kum/adexsim/internal/adexp"
	"github.com/san-kum/adexsim/internal/dynamo"
)

// Euler is the explicit first-order method.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return NameEuler }

func (e *Euler) Integrate(tDelta, tDeltaMax dynamo.Time, s adexp.State, f adexp.Derivative) (adexp.State, dynamo.Time) {
	h := min(tDelta, tDeltaMax)
	return s.AddScaled(h.Sec(), f(s)), h
}
