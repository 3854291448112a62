// Package recorder provides sinks for simulated neuron trajectories.
package recorder

import (
	"github.com/san-kum/adexsim/internal/adexp"
	"github.com/san-kum/adexsim/internal/dynamo"
	"github.com/san-kum/adexsim/internal/sim"
)

// Base rate-limits non-forced records to one per interval and keeps the
// emitted timestamps strictly increasing. Embed it and call Accept first.
type Base struct {
	interval dynamo.Time
	last     dynamo.Time
	started  bool
}

func NewBase(interval dynamo.Time) Base {
	return Base{interval: interval}
}

// Accept reports whether a record at t is emitted and the timestamp to
// emit it with. A timestamp at or before the last emitted one is moved one
// Tick past it.
func (b *Base) Accept(t dynamo.Time, forced bool) (dynamo.Time, bool) {
	if b.started {
		if !forced && t.Sub(b.last) < b.interval {
			return t, false
		}
		if t <= b.last {
			t = b.last.Add(dynamo.Tick)
		}
	}
	b.started = true
	b.last = t
	return t, true
}

func (b *Base) Interval() dynamo.Time { return b.interval }

func (b *Base) Reset() {
	b.last = 0
	b.started = false
}

// Null discards everything.
type Null struct{}

func (Null) Record(dynamo.Time, adexp.State, adexp.AuxiliaryState, bool) {}
func (Null) InputSpike(dynamo.Time, adexp.State)                         {}
func (Null) OutputSpike(dynamo.Time, adexp.State)                        {}

// Multi forwards every call to each recorder in order.
type Multi []sim.Recorder

func (m Multi) Record(t dynamo.Time, s adexp.State, as adexp.AuxiliaryState, forced bool) {
	for _, r := range m {
		r.Record(t, s, as, forced)
	}
}

func (m Multi) InputSpike(t dynamo.Time, s adexp.State) {
	for _, r := range m {
		r.InputSpike(t, s)
	}
}

func (m Multi) OutputSpike(t dynamo.Time, s adexp.State) {
	for _, r := range m {
		r.OutputSpike(t, s)
	}
}

var (
	_ sim.Recorder = Null{}
	_ sim.Recorder = Multi(nil)
	_ sim.Recorder = (*Vector)(nil)
	_ sim.Recorder = (*CSV)(nil)
)
