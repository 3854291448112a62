// Package analysis characterizes recorded neuron runs.
//
// The package works on plain slices so it can consume a live
// [recorder.Vector] as well as a trajectory loaded back from storage:
//
//   - [SpikeStats]: firing rate, interspike interval statistics and
//     first spike latency of an output spike train
//   - [Resample]: linear resampling of an irregular trace onto a uniform grid
//   - [PowerSpectrum]: one sided power spectrum of a uniformly sampled trace
//
// # Spectrum of the membrane potential
//
//	v, dt := analysis.Resample(trace.Times(), trace.Voltages(), 4096)
//	ps := analysis.PowerSpectrum(v, 1/dt)
//	f, _ := ps.Peak()
package analysis
