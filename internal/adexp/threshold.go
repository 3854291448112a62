package adexp

import (
	"errors"
	"math"
)

const (
	// ThresholdEpsilon is the Newton convergence tolerance in volts.
	ThresholdEpsilon = 1e-9

	// MaxThresholdIterations bounds the Newton iteration for pathological inputs.
	MaxThresholdIterations = 100

	// ESpikeEffReduction is subtracted from eSpikeEff to stay clear of the
	// metastable equilibrium at the effective threshold.
	ESpikeEffReduction = 1e-4
)

// Lowest is returned as the effective threshold of unusable parameters.
const Lowest = -math.MaxFloat64

var (
	// ErrThresholdDegenerate indicates deltaTh <= ε or eTh <= deltaTh.
	ErrThresholdDegenerate = errors.New("adexp: degenerate threshold parameters")

	// ErrThresholdNoConvergence indicates the Newton iteration did not settle.
	ErrThresholdNoConvergence = errors.New("adexp: effective threshold did not converge")
)

// ESpikeEff computes the effective spike potential, the potential above which
// the exponential current exceeds the leak and a spike becomes inevitable. It
// is the larger fixed point of
//
//	log(deltaTh) + (x - eTh) / deltaTh = log(x)
//
// with all potentials relative to eL. Unusable inputs return Lowest together
// with ErrThresholdDegenerate or ErrThresholdNoConvergence.
func ESpikeEff(eTh, deltaTh float64) (float64, error) {
	if !(deltaTh > ThresholdEpsilon) || !(eTh > deltaTh) {
		return Lowest, ErrThresholdDegenerate
	}

	logDeltaTh := math.Log(deltaTh)
	invDeltaTh := 1.0 / deltaTh

	x := eTh + ThresholdEpsilon
	for i := 0; i < MaxThresholdIterations; i++ {
		f := logDeltaTh + (x-eTh)*invDeltaTh - math.Log(x)
		df := invDeltaTh - 1.0/x
		dx := f / df
		x -= dx
		if !(x > 0) || math.IsInf(x, 0) {
			return Lowest, ErrThresholdNoConvergence
		}
		if math.Abs(dx) < ThresholdEpsilon {
			return x, nil
		}
	}
	return Lowest, ErrThresholdNoConvergence
}
