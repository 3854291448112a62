package recorder

import (
	"github.com/san-kum/adexsim/internal/adexp"
	"github.com/san-kum/adexsim/internal/dynamo"
)

// Row is one recorded instant in physical units: potential in V,
// conductances in S, adaptation and currents in A.
type Row struct {
	T   dynamo.Time
	V   float64
	GE  float64
	GI  float64
	W   float64
	IL  float64
	IE  float64
	II  float64
	ITh float64
}

// Units converts working states back to physical units.
type Units struct {
	CM float64
	EL float64
}

func UnitsOf(p adexp.Parameters) Units {
	return Units{CM: p.CM, EL: p.EL}
}

func (u Units) Row(t dynamo.Time, s adexp.State, as adexp.AuxiliaryState) Row {
	return Row{
		T:   t,
		V:   s.V() + u.EL,
		GE:  s.LE() * u.CM,
		GI:  s.LI() * u.CM,
		W:   s.DvW() * u.CM,
		IL:  as.DvL() * u.CM,
		IE:  as.DvE() * u.CM,
		II:  as.DvI() * u.CM,
		ITh: as.DvTh() * u.CM,
	}
}

// Vector keeps every emitted row and the spike times in memory.
type Vector struct {
	Base
	units Units

	Rows         []Row
	InputSpikes  []dynamo.Time
	OutputSpikes []dynamo.Time
}

func NewVector(units Units, interval dynamo.Time) *Vector {
	return &Vector{Base: NewBase(interval), units: units}
}

func (v *Vector) Record(t dynamo.Time, s adexp.State, as adexp.AuxiliaryState, forced bool) {
	t, ok := v.Accept(t, forced)
	if !ok {
		return
	}
	v.Rows = append(v.Rows, v.units.Row(t, s, as))
}

func (v *Vector) InputSpike(t dynamo.Time, _ adexp.State) {
	v.InputSpikes = append(v.InputSpikes, t)
}

func (v *Vector) OutputSpike(t dynamo.Time, _ adexp.State) {
	v.OutputSpikes = append(v.OutputSpikes, t)
}

// Reset clears the recorded data for another run.
func (v *Vector) Reset() {
	v.Base.Reset()
	v.Rows = v.Rows[:0]
	v.InputSpikes = v.InputSpikes[:0]
	v.OutputSpikes = v.OutputSpikes[:0]
}

// Times returns the row timestamps in seconds.
func (v *Vector) Times() []float64 {
	out := make([]float64, len(v.Rows))
	for i, r := range v.Rows {
		out[i] = r.T.Sec()
	}
	return out
}

// Voltages returns the membrane potential column.
func (v *Vector) Voltages() []float64 {
	out := make([]float64, len(v.Rows))
	for i, r := range v.Rows {
		out[i] = r.V
	}
	return out
}

// OutputSpikeTimes returns the output spike times in seconds.
func (v *Vector) OutputSpikeTimes() []float64 {
	out := make([]float64, len(v.OutputSpikes))
	for i, t := range v.OutputSpikes {
		out[i] = t.Sec()
	}
	return out
}
