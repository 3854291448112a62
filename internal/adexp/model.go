package adexp

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/adexsim/internal/dynamo"
)

// Model is a set of orthogonal behavior options. The zero value is the full
// AdExp model with exact exponential, reset on spike and refractory period.
type Model uint32

const (
	// DisableITh removes the exponential threshold current (linear LIF dynamics).
	DisableITh Model = 1 << iota

	// ClampITh clamps the potential entering the threshold current at
	// eSpikeEffRed so it cannot run away. Combine with DisableSpiking to probe
	// the maximum potential reached without spiking.
	ClampITh

	// FastExp evaluates the threshold current with the approximate exponential.
	FastExp

	// IfCondExp selects the reduced conductance-based LIF model: no threshold
	// current, no adaptation, output spike when v exceeds eTh.
	IfCondExp

	// DisableSpiking suppresses the reset on threshold crossing.
	DisableSpiking

	// DisableRefractory suppresses the refractory window after output spikes.
	DisableRefractory

	// ProcessSpecial honors special input spikes (forced output, set voltage).
	ProcessSpecial
)

var modelNames = []struct {
	flag Model
	name string
}{
	{DisableITh, "disable-ith"},
	{ClampITh, "clamp-ith"},
	{FastExp, "fast-exp"},
	{IfCondExp, "if-cond-exp"},
	{DisableSpiking, "disable-spiking"},
	{DisableRefractory, "disable-refractory"},
	{ProcessSpecial, "process-special"},
}

func (m Model) Has(f Model) bool {
	return m&f == f
}

// Names returns the option names set in m.
func (m Model) Names() []string {
	names := make([]string, 0, len(modelNames))
	for _, n := range modelNames {
		if m.Has(n.flag) {
			names = append(names, n.name)
		}
	}
	return names
}

func (m Model) String() string {
	if m == 0 {
		return "adexp"
	}
	return strings.Join(m.Names(), "|")
}

// ParseModel combines option names into a Model.
func ParseModel(names []string) (Model, error) {
	var m Model
	for _, name := range names {
		found := false
		for _, n := range modelNames {
			if n.name == name {
				m |= n.flag
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("%w: %q", dynamo.ErrUnknownModelOption, name)
		}
	}
	return m, nil
}

// OptionNames lists every known option name.
func OptionNames() []string {
	names := make([]string, len(modelNames))
	for i, n := range modelNames {
		names[i] = n.name
	}
	return names
}

// SpikePotential is the potential above which an output spike is generated.
func (m Model) SpikePotential(p *WorkingParameters) float64 {
	if m.Has(IfCondExp) {
		return p.ETh()
	}
	return p.ESpike()
}

// Aux computes the voltage rate contributions of the four currents.
func (m Model) Aux(s State, p *WorkingParameters) AuxiliaryState {
	v := s.V()
	var dvTh float64
	if !m.Has(DisableITh) && !m.Has(IfCondExp) {
		x := v
		if m.Has(ClampITh) {
			x = math.Min(x, p.ESpikeEffRed())
		}
		arg := math.Min((x-p.ETh())*p.InvDeltaTh(), p.MaxIThExponent())
		if m.Has(FastExp) {
			dvTh = p.LL() * p.DeltaTh() * ApproxExp(arg)
		} else {
			dvTh = p.LL() * p.DeltaTh() * Exp(arg)
		}
	}
	return AuxiliaryState{
		-p.LL() * v,
		s.LE() * (p.EE() - v),
		s.LI() * (p.EI() - v),
		dvTh,
	}
}

// Df computes the state derivative from a state and its auxiliary state.
func (m Model) Df(s State, as AuxiliaryState, p *WorkingParameters, inRefractory bool) State {
	var dv float64
	if !inRefractory || m.Has(DisableRefractory) {
		dv = as.Sum() - s.DvW()
	}
	var dDvW float64
	if !m.Has(IfCondExp) {
		dDvW = p.LW() * (p.LA()*s.V() - s.DvW())
	}
	return State{
		dv,
		-p.LE() * s.LE(),
		-p.LI() * s.LI(),
		dDvW,
	}
}

// Derivative binds m, p and the refractory flag into a Derivative.
func (m Model) Derivative(p *WorkingParameters, inRefractory bool) Derivative {
	return func(s State) State {
		return m.Df(s, m.Aux(s, p), p, inRefractory)
	}
}
