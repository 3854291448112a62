package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Stats summarizes an output spike train.
type Stats struct {
	Count int

	// Rate is Count divided by the observed duration [Hz].
	Rate float64

	// ISIMean and ISICV are NaN with fewer than two and three spikes
	// respectively.
	ISIMean float64
	ISICV   float64

	// Latency is the delay from the first input spike to the first output
	// spike. NaN when either is missing or the output precedes the input.
	Latency float64
}

// SpikeStats computes Stats for sorted output spike times observed over
// duration seconds. firstInput is the time of the first input spike, or NaN.
func SpikeStats(out []float64, duration, firstInput float64) Stats {
	st := Stats{
		Count:   len(out),
		ISIMean: math.NaN(),
		ISICV:   math.NaN(),
		Latency: math.NaN(),
	}
	if duration > 0 {
		st.Rate = float64(len(out)) / duration
	}

	if len(out) > 0 && !math.IsNaN(firstInput) {
		for _, t := range out {
			if t >= firstInput {
				st.Latency = t - firstInput
				break
			}
		}
	}

	isi := Intervals(out)
	if len(isi) == 0 {
		return st
	}
	if len(isi) == 1 {
		st.ISIMean = isi[0]
		return st
	}
	m, sd := stat.MeanStdDev(isi, nil)
	st.ISIMean = m
	if m > 0 {
		st.ISICV = sd / m
	}
	return st
}

// Intervals returns the differences between consecutive spike times.
func Intervals(times []float64) []float64 {
	if len(times) < 2 {
		return nil
	}
	isi := make([]float64, len(times)-1)
	for i := 1; i < len(times); i++ {
		isi[i-1] = times[i] - times[i-1]
	}
	return isi
}
