// Package control provides early-termination predicates for simulation
// runs.
//
// Controllers implement [sim.Controller] and are queried once per accepted
// integration step:
//
//   - [Null]: always continue until tEnd
//   - [MaxOutputSpikeCount]: abort after a number of output spikes
//   - [Quiescence]: allow stopping once the neuron has settled
//
// # Usage
//
//	ctrl := control.NewMaxOutputSpikeCount(1)
//	res := sim.Simulate(spikes, rec, ctrl, integ, p, cfg)
//	fired := ctrl.Count() > 0
package control
