package control

import (
	"github.com/san-kum/adexsim/internal/adexp"
	"github.com/san-kum/adexsim/internal/dynamo"
	"github.com/san-kum/adexsim/internal/sim"
)

// DefaultRateTol is the excitatory rate (1/s) below which the synaptic
// drive counts as decayed.
const DefaultRateTol = 1.0

// Quiescent reports whether the neuron cannot spike again without further
// input: it sits below the reduced effective threshold and the excitatory
// drive has decayed below rateTol.
func Quiescent(s adexp.State, p *adexp.WorkingParameters, rateTol float64) bool {
	return s.V() < p.ESpikeEffRed() && s.LE() < rateTol
}

type Null struct{}

func (Null) Control(dynamo.Time, adexp.State, adexp.AuxiliaryState, *adexp.WorkingParameters, bool) sim.ControlResult {
	return sim.Continue
}

// MaxOutputSpikeCount aborts once limit output spikes were generated and
// allows an early stop when the neuron is quiescent.
type MaxOutputSpikeCount struct {
	limit   int
	count   int
	rateTol float64
}

func NewMaxOutputSpikeCount(limit int) *MaxOutputSpikeCount {
	return &MaxOutputSpikeCount{limit: limit, rateTol: DefaultRateTol}
}

func (c *MaxOutputSpikeCount) OutputSpike(dynamo.Time, adexp.State) {
	c.count++
}

func (c *MaxOutputSpikeCount) Control(_ dynamo.Time, s adexp.State, _ adexp.AuxiliaryState, p *adexp.WorkingParameters, inRefractory bool) sim.ControlResult {
	if c.count >= c.limit {
		return sim.Abort
	}
	if !inRefractory && Quiescent(s, p, c.rateTol) {
		return sim.MayContinue
	}
	return sim.Continue
}

func (c *MaxOutputSpikeCount) Count() int { return c.count }

func (c *MaxOutputSpikeCount) Reset() { c.count = 0 }

// Quiescence allows an early stop once the neuron has settled.
type Quiescence struct {
	RateTol float64
}

func NewQuiescence() *Quiescence {
	return &Quiescence{RateTol: DefaultRateTol}
}

func (q *Quiescence) Control(_ dynamo.Time, s adexp.State, _ adexp.AuxiliaryState, p *adexp.WorkingParameters, inRefractory bool) sim.ControlResult {
	if !inRefractory && Quiescent(s, p, q.RateTol) {
		return sim.MayContinue
	}
	return sim.Continue
}

var (
	_ sim.Controller          = Null{}
	_ sim.Controller          = (*MaxOutputSpikeCount)(nil)
	_ sim.OutputSpikeObserver = (*MaxOutputSpikeCount)(nil)
	_ sim.Controller          = (*Quiescence)(nil)
)
