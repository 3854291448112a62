package analysis

import (
	"math"
	"math/cmplx"
	"sort"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/stat"
)

// Resample linearly interpolates the trace (times, values) onto n equally
// spaced points spanning [times[0], times[len-1]] and returns them together
// with the sample spacing. times must be non-decreasing; of samples sharing
// a timestamp the last one is kept.
func Resample(times, values []float64, n int) ([]float64, float64) {
	if len(times) == 0 || len(times) != len(values) || n < 2 {
		return nil, 0
	}
	xs, ys := increasing(times, values)
	if len(xs) < 2 {
		return nil, 0
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
		return nil, 0
	}

	t0, t1 := xs[0], xs[len(xs)-1]
	dt := (t1 - t0) / float64(n-1)
	out := make([]float64, n)
	for i := range out {
		out[i] = pl.Predict(t0 + float64(i)*dt)
	}
	out[n-1] = ys[len(ys)-1]
	return out, dt
}

// increasing drops samples that do not advance in time. A repeated
// timestamp replaces the value recorded before it.
func increasing(times, values []float64) ([]float64, []float64) {
	xs := make([]float64, 0, len(times))
	ys := make([]float64, 0, len(values))
	for i, t := range times {
		if k := len(xs); k > 0 && t <= xs[k-1] {
			if t == xs[k-1] {
				ys[k-1] = values[i]
			}
			continue
		}
		xs = append(xs, t)
		ys = append(ys, values[i])
	}
	return xs, ys
}

// Spectrum is a one sided power spectrum.
type Spectrum struct {
	Freqs []float64
	Power []float64
}

// PowerSpectrum returns the power of samples taken at sampleRate [Hz]. The
// mean is removed and a Hann window applied before the transform.
func PowerSpectrum(samples []float64, sampleRate float64) Spectrum {
	n := len(samples)
	if n < 2 || sampleRate <= 0 {
		return Spectrum{}
	}

	m := stat.Mean(samples, nil)
	windowed := make([]float64, n)
	for i, v := range samples {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		windowed[i] = (v - m) * w
	}

	coeffs := fft.FFTReal(windowed)
	half := n/2 + 1
	ps := Spectrum{
		Freqs: make([]float64, half),
		Power: make([]float64, half),
	}
	for k := 0; k < half; k++ {
		mag := cmplx.Abs(coeffs[k])
		ps.Freqs[k] = float64(k) * sampleRate / float64(n)
		ps.Power[k] = mag * mag / float64(n)
	}
	return ps
}

// Peak returns the frequency and power of the strongest non-DC bin.
func (s Spectrum) Peak() (float64, float64) {
	best := -1
	for k := 1; k < len(s.Power); k++ {
		if best < 0 || s.Power[k] > s.Power[best] {
			best = k
		}
	}
	if best < 0 {
		return 0, 0
	}
	return s.Freqs[best], s.Power[best]
}

// Top returns the indices of the n strongest non-DC bins, strongest first.
func (s Spectrum) Top(n int) []int {
	idx := make([]int, 0, len(s.Power))
	for k := 1; k < len(s.Power); k++ {
		idx = append(idx, k)
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return s.Power[idx[i]] > s.Power[idx[j]]
	})
	if n = max(n, 0); n < len(idx) {
		idx = idx[:n]
	}
	return idx
}
