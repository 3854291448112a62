// Package dynamo provides the primitives shared by the neuron simulation
// packages.
//
//   - [Time]: fixed-point timestamps and durations in 2^-48 s ticks
//   - sentinel errors such as [ErrInvalidParameters] and [ErrUnsortedSpikes]
//   - [SpikeOrderError]: the detailed form of [ErrUnsortedSpikes]
//
// Event times are compared as integers so that an integration step can end
// exactly on an input spike without floating point drift.
//
// # Example
//
//	p := adexp.NewWorkingParameters(adexp.DefaultParameters())
//	spikes := sim.SpikeVec{{T: dynamo.FromSec(0.01), W: 4}}
//	cfg := sim.Config{TEnd: dynamo.FromSec(0.05)}
//	res := sim.Simulate(spikes, recorder.Null{}, control.Null{}, integrators.NewRK4(), p, cfg)
package dynamo
