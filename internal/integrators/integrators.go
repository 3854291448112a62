// Package integrators provides the fixed and adaptive step methods that
// advance the neuron state between events.
package integrators

import (
	"fmt"

	"github.com/san-kum/adexsim/internal/adexp"
	"github.com/san-kum/adexsim/internal/dynamo"
)

const (
	NameEuler         = "euler"
	NameMidpoint      = "midpoint"
	NameRK4           = "rk4"
	NameDormandPrince = "dormand-prince"
)

// Integrator advances s by at most tDeltaMax and reports the step taken.
type Integrator interface {
	Name() string
	Integrate(tDelta, tDeltaMax dynamo.Time, s adexp.State, f adexp.Derivative) (adexp.State, dynamo.Time)
}

var _ Integrator = (*Euler)(nil)
var _ Integrator = (*Midpoint)(nil)
var _ Integrator = (*RK4)(nil)
var _ Integrator = (*DormandPrince)(nil)

// New constructs an integrator by name. eTar only applies to the adaptive
// method.
func New(name string, eTar float64) (Integrator, error) {
	switch name {
	case NameEuler:
		return NewEuler(), nil
	case NameMidpoint:
		return NewMidpoint(), nil
	case NameRK4, "":
		return NewRK4(), nil
	case NameDormandPrince, "rk45":
		return NewDormandPrince(eTar), nil
	}
	return nil, fmt.Errorf("%w: %q", dynamo.ErrUnknownIntegrator, name)
}

func Names() []string {
	return []string{NameEuler, NameMidpoint, NameRK4, NameDormandPrince}
}
