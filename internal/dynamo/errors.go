package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors shared by the simulation packages.
var (
	// ErrInvalidParameters indicates a parameter set that must not be simulated.
	ErrInvalidParameters = errors.New("dynamo: invalid parameter set")

	// ErrUnsortedSpikes indicates an input spike train that is not in ascending time order.
	ErrUnsortedSpikes = errors.New("dynamo: input spikes not sorted by time")

	// ErrUnknownIntegrator indicates an integrator name with no registered constructor.
	ErrUnknownIntegrator = errors.New("dynamo: unknown integrator")

	// ErrUnknownController indicates a controller name with no registered constructor.
	ErrUnknownController = errors.New("dynamo: unknown controller")

	// ErrUnknownModelOption indicates a model option name that is not defined.
	ErrUnknownModelOption = errors.New("dynamo: unknown model option")
)

// SpikeOrderError reports the first out-of-order spike of an input train.
type SpikeOrderError struct {
	Index int
	Prev  Time
	Next  Time
}

func (e *SpikeOrderError) Error() string {
	return fmt.Sprintf("dynamo: spike %d at %v precedes previous spike at %v", e.Index, e.Next, e.Prev)
}

func (e *SpikeOrderError) Unwrap() error {
	return ErrUnsortedSpikes
}
