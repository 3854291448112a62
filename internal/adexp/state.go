package adexp

import "math"

// State is the integrated model state: membrane potential relative to eL,
// excitatory and inhibitory conductance rates and the adaptation rate.
type State [4]float64

func (s State) V() float64   { return s[0] }
func (s State) LE() float64  { return s[1] }
func (s State) LI() float64  { return s[2] }
func (s State) DvW() float64 { return s[3] }

func (s State) Add(o State) State {
	return State{s[0] + o[0], s[1] + o[1], s[2] + o[2], s[3] + o[3]}
}

func (s State) Sub(o State) State {
	return State{s[0] - o[0], s[1] - o[1], s[2] - o[2], s[3] - o[3]}
}

func (s State) Scale(f float64) State {
	return State{s[0] * f, s[1] * f, s[2] * f, s[3] * f}
}

// AddScaled returns s + f*o.
func (s State) AddScaled(f float64, o State) State {
	return State{s[0] + f*o[0], s[1] + f*o[1], s[2] + f*o[2], s[3] + f*o[3]}
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// AuxiliaryState holds the additive voltage rates of the leak, excitatory,
// inhibitory and threshold currents at a given State.
type AuxiliaryState [4]float64

func (a AuxiliaryState) DvL() float64  { return a[0] }
func (a AuxiliaryState) DvE() float64  { return a[1] }
func (a AuxiliaryState) DvI() float64  { return a[2] }
func (a AuxiliaryState) DvTh() float64 { return a[3] }

// Sum is the total voltage rate excluding adaptation.
func (a AuxiliaryState) Sum() float64 {
	return a[0] + a[1] + a[2] + a[3]
}

// Derivative maps a state to its time derivative.
type Derivative func(s State) State
