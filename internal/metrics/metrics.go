// Package metrics provides statistics recorders for simulation runs.
package metrics

import (
	"math"

	"github.com/san-kum/adexsim/internal/adexp"
	"github.com/san-kum/adexsim/internal/dynamo"
	"github.com/san-kum/adexsim/internal/sim"
)

// Metric is a recorder that reduces a run to one number.
type Metric interface {
	sim.Recorder
	Name() string
	Value() float64
	Reset()
}

// Collect returns the current value of every metric keyed by name.
func Collect(ms ...Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}

// MaxVoltage tracks the highest membrane potential seen, in volts.
type MaxVoltage struct {
	name string
	eL   float64
	max  float64
	at   dynamo.Time
}

func NewMaxVoltage(eL float64) *MaxVoltage {
	m := &MaxVoltage{name: "max_voltage", eL: eL}
	m.Reset()
	return m
}

func (m *MaxVoltage) Name() string { return m.name }

func (m *MaxVoltage) Record(t dynamo.Time, s adexp.State, _ adexp.AuxiliaryState, _ bool) {
	if s.V() > m.max {
		m.max = s.V()
		m.at = t
	}
}

func (m *MaxVoltage) InputSpike(dynamo.Time, adexp.State)  {}
func (m *MaxVoltage) OutputSpike(dynamo.Time, adexp.State) {}

func (m *MaxVoltage) Value() float64 { return m.max + m.eL }

// At is the time the maximum was reached.
func (m *MaxVoltage) At() dynamo.Time { return m.at }

func (m *MaxVoltage) Reset() {
	m.max = math.Inf(-1)
	m.at = 0
}

// SpikeState is the state at which an output spike was generated.
type SpikeState struct {
	T     dynamo.Time
	State adexp.State
}

// OutputSpikes counts output spikes and keeps the state of each.
type OutputSpikes struct {
	name   string
	Spikes []SpikeState
}

func NewOutputSpikes() *OutputSpikes {
	return &OutputSpikes{name: "output_spikes"}
}

func (o *OutputSpikes) Name() string { return o.name }

func (o *OutputSpikes) Record(dynamo.Time, adexp.State, adexp.AuxiliaryState, bool) {}
func (o *OutputSpikes) InputSpike(dynamo.Time, adexp.State)                         {}

func (o *OutputSpikes) OutputSpike(t dynamo.Time, s adexp.State) {
	o.Spikes = append(o.Spikes, SpikeState{T: t, State: s})
}

func (o *OutputSpikes) Value() float64 { return float64(len(o.Spikes)) }

func (o *OutputSpikes) Count() int { return len(o.Spikes) }

func (o *OutputSpikes) Reset() { o.Spikes = o.Spikes[:0] }

// InputSpikes counts applied input spikes.
type InputSpikes struct {
	name  string
	count int
}

func NewInputSpikes() *InputSpikes {
	return &InputSpikes{name: "input_spikes"}
}

func (i *InputSpikes) Name() string { return i.name }

func (i *InputSpikes) Record(dynamo.Time, adexp.State, adexp.AuxiliaryState, bool) {}
func (i *InputSpikes) InputSpike(dynamo.Time, adexp.State)                         { i.count++ }
func (i *InputSpikes) OutputSpike(dynamo.Time, adexp.State)                        {}

func (i *InputSpikes) Value() float64 { return float64(i.count) }

func (i *InputSpikes) Reset() { i.count = 0 }
