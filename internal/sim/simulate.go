package sim

import (
	"github.com/san-kum/adexsim/internal/adexp"
	"github.com/san-kum/adexsim/internal/dynamo"
)

// Simulate runs the event loop: input spikes are applied at their arrival
// time, the ODE is integrated between events and threshold crossings reset
// the neuron. No integration step crosses an input spike, the end of a
// refractory window or cfg.TEnd.
//
// p must be valid; Simulate does not check it.
func Simulate(spikes SpikeVec, rec Recorder, ctrl Controller, integ Integrator, p adexp.WorkingParameters, cfg Config) Result {
	assertSorted(spikes)

	if r, ok := integ.(Resetter); ok {
		r.Reset()
	}
	observer, _ := ctrl.(OutputSpikeObserver)

	m := cfg.Model
	tDelta := cfg.TDelta
	if tDelta <= 0 {
		tDelta = p.TDelta()
	}
	tEnd := cfg.TEnd
	if tEnd <= 0 {
		tEnd = dynamo.MaxTime
	}
	tauRef := p.TauRef()
	lastSpike := dynamo.MinTime
	if cfg.LastSpike != nil {
		lastSpike = *cfg.LastSpike
	}
	spikeV := m.SpikePotential(&p)

	inRefractory := func(t dynamo.Time) bool {
		return !m.Has(adexp.DisableRefractory) && t.Sub(lastSpike) < tauRef
	}

	var res Result
	t := dynamo.Time(0)
	s := cfg.S0

	fire := func() {
		s[0] = spikeV
		rec.Record(t, s, m.Aux(s, &p), true)
		rec.OutputSpike(t, s)
		if observer != nil {
			observer.OutputSpike(t, s)
		}

		s[0] = p.EReset()
		if !m.Has(adexp.IfCondExp) {
			s[3] += p.LB()
		}
		rec.Record(t, s, m.Aux(s, &p), true)

		if !m.Has(adexp.DisableRefractory) {
			lastSpike = t
		}
		res.OutputSpikes++
	}

	rec.Record(t, s, m.Aux(s, &p), true)

	k := 0
loop:
	for t < tEnd {
		if k < len(spikes) && spikes[k].T <= t {
			sp := spikes[k]
			k++
			res.InputSpikes++

			rec.Record(t, s, m.Aux(s, &p), true)
			kind := Normal
			if m.Has(adexp.ProcessSpecial) {
				kind = sp.Kind
			}
			switch kind {
			case ForceOutput:
				rec.InputSpike(t, s)
				fire()
				continue
			case SetVoltage:
				s[0] = sp.W
			default:
				if sp.W > 0 {
					s[1] += sp.W * p.WSpike()
				} else {
					s[2] -= sp.W * p.WSpike()
				}
			}
			rec.InputSpike(t, s)
			rec.Record(t, s, m.Aux(s, &p), true)
			continue
		}

		refractory := inRefractory(t)
		tDeltaMax := tEnd.Sub(t)
		if k < len(spikes) {
			tDeltaMax = min(tDeltaMax, spikes[k].T.Sub(t))
		}
		if refractory {
			tDeltaMax = min(tDeltaMax, lastSpike.Add(tauRef).Sub(t))
		}

		var h dynamo.Time
		s, h = integ.Integrate(tDelta, tDeltaMax, s, m.Derivative(&p, refractory))
		t = t.Add(h)
		res.Steps++

		if !m.Has(adexp.DisableSpiking) && s.V() > spikeV {
			fire()
		}

		as := m.Aux(s, &p)
		rec.Record(t, s, as, false)

		switch ctrl.Control(t, s, as, &p, inRefractory(t)) {
		case Abort:
			break loop
		case MayContinue:
			if k >= len(spikes) {
				break loop
			}
		}
	}

	res.T = t
	res.State = s
	res.LastSpike = lastSpike
	return res
}
