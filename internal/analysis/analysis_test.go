package analysis

import (
	"math"
	"testing"

	"github.com/san-kum/adexsim/internal/adexp"
	"github.com/san-kum/adexsim/internal/control"
	"github.com/san-kum/adexsim/internal/dynamo"
	"github.com/san-kum/adexsim/internal/integrators"
	"github.com/san-kum/adexsim/internal/recorder"
	"github.com/san-kum/adexsim/internal/sim"
)

func TestSpikeStats(t *testing.T) {
	tests := []struct {
		name       string
		out        []float64
		duration   float64
		firstInput float64
		count      int
		rate       float64
		isiMean    float64
		cv         float64
		latency    float64
	}{
		{"empty", nil, 1, 0.01, 0, 0, math.NaN(), math.NaN(), math.NaN()},
		{"single", []float64{0.015}, 0.5, 0.01, 1, 2, math.NaN(), math.NaN(), 0.005},
		{"two", []float64{0.1, 0.3}, 1, math.NaN(), 2, 2, 0.2, math.NaN(), math.NaN()},
		{"regular", []float64{0.1, 0.2, 0.3, 0.4}, 2, 0.05, 4, 2, 0.1, 0, 0.05},
		{"before input", []float64{0.01, 0.05}, 1, 0.02, 2, 2, 0.04, math.NaN(), 0.03},
	}

	eq := func(a, b float64) bool {
		if math.IsNaN(b) {
			return math.IsNaN(a)
		}
		return math.Abs(a-b) < 1e-12
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := SpikeStats(tt.out, tt.duration, tt.firstInput)
			if st.Count != tt.count {
				t.Errorf("Count = %d, want %d", st.Count, tt.count)
			}
			if !eq(st.Rate, tt.rate) {
				t.Errorf("Rate = %v, want %v", st.Rate, tt.rate)
			}
			if !eq(st.ISIMean, tt.isiMean) {
				t.Errorf("ISIMean = %v, want %v", st.ISIMean, tt.isiMean)
			}
			if !eq(st.ISICV, tt.cv) {
				t.Errorf("ISICV = %v, want %v", st.ISICV, tt.cv)
			}
			if !eq(st.Latency, tt.latency) {
				t.Errorf("Latency = %v, want %v", st.Latency, tt.latency)
			}
		})
	}
}

func TestSpikeStats_IrregularCV(t *testing.T) {
	// intervals 0.1 and 0.3: mean 0.2, sample stddev 0.1414
	st := SpikeStats([]float64{0, 0.1, 0.4}, 1, 0)
	want := math.Sqrt(0.02) / 0.2
	if math.Abs(st.ISICV-want) > 1e-9 {
		t.Errorf("ISICV = %v, want %v", st.ISICV, want)
	}
}

func TestResample(t *testing.T) {
	times := []float64{0, 0.1, 0.25, 0.25, 1}
	values := make([]float64, len(times))
	for i, x := range times {
		values[i] = 3*x - 1
	}

	out, dt := Resample(times, values, 11)
	if math.Abs(dt-0.1) > 1e-12 {
		t.Errorf("dt = %v, want 0.1", dt)
	}
	if len(out) != 11 {
		t.Fatalf("len = %d", len(out))
	}
	for i, v := range out {
		want := 3*float64(i)*0.1 - 1
		if math.Abs(v-want) > 1e-9 {
			t.Errorf("out[%d] = %v, want %v", i, v, want)
		}
	}

	if out, _ := Resample([]float64{1}, []float64{2}, 8); out != nil {
		t.Errorf("single sample resampled to %v", out)
	}
	if out, _ := Resample(times, values[:2], 8); out != nil {
		t.Error("mismatched lengths accepted")
	}
}

func TestResample_RepeatedTimestamp(t *testing.T) {
	// the later of two samples at 0.5 wins, as after a reset
	out, _ := Resample([]float64{0, 0.5, 0.5, 1}, []float64{0, 1, -1, 0}, 3)
	want := []float64{0, -1, 0}
	for i := range want {
		if math.Abs(out[i]-want[i]) > 1e-12 {
			t.Errorf("out = %v, want %v", out, want)
			break
		}
	}

	if out, _ := Resample([]float64{0.2, 0.2}, []float64{1, 2}, 4); out != nil {
		t.Errorf("zero span resampled to %v", out)
	}
}

func TestResample_SimulatedTrace(t *testing.T) {
	params := adexp.DefaultParameters()
	p := adexp.NewWorkingParameters(params)
	rec := recorder.NewVector(recorder.UnitsOf(params), 0)
	spikes := sim.SpikeVec{{T: dynamo.FromSec(0.002), W: 4}, {T: dynamo.FromSec(0.02), W: 4}}
	cfg := sim.Config{
		Model:  adexp.IfCondExp | adexp.DisableITh,
		TDelta: dynamo.FromSec(1e-5),
		TEnd:   dynamo.FromSec(0.05),
	}
	sim.Simulate(spikes, rec, control.Null{}, integrators.NewRK4(), p, cfg)
	if len(rec.OutputSpikes) == 0 {
		t.Fatal("trace without output spikes")
	}

	times, volts := rec.Times(), rec.Voltages()
	for i := 1; i < len(times); i++ {
		if !(times[i] > times[i-1]) {
			t.Fatalf("times not strictly increasing at %d: %v, %v", i, times[i-1], times[i])
		}
	}

	out, dt := Resample(times, volts, 512)
	if len(out) != 512 || !(dt > 0) {
		t.Fatalf("len = %d, dt = %v", len(out), dt)
	}
	lo, hi := volts[0], volts[0]
	for _, v := range volts {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	for i, v := range out {
		if v < lo || v > hi {
			t.Fatalf("out[%d] = %v outside [%v, %v]", i, v, lo, hi)
		}
	}
	if out[0] != volts[0] || out[511] != volts[len(volts)-1] {
		t.Errorf("endpoints %v, %v want %v, %v", out[0], out[511], volts[0], volts[len(volts)-1])
	}
}

func TestPowerSpectrum_Peak(t *testing.T) {
	tests := []struct {
		freq, rate float64
		n          int
	}{
		{50, 1000, 1000},
		{120, 4096, 4096},
		{10, 200, 256},
	}

	for _, tt := range tests {
		samples := make([]float64, tt.n)
		for i := range samples {
			samples[i] = 0.5 + math.Sin(2*math.Pi*tt.freq*float64(i)/tt.rate)
		}
		ps := PowerSpectrum(samples, tt.rate)

		if len(ps.Freqs) != tt.n/2+1 {
			t.Errorf("bins = %d, want %d", len(ps.Freqs), tt.n/2+1)
		}
		f, p := ps.Peak()
		binWidth := tt.rate / float64(tt.n)
		if math.Abs(f-tt.freq) > binWidth {
			t.Errorf("peak at %v Hz, want %v", f, tt.freq)
		}
		if p <= 0 {
			t.Errorf("peak power %v", p)
		}
		// mean removal keeps the DC bin far below the peak
		if ps.Power[0] > 1e-2*p {
			t.Errorf("DC power %v vs peak %v", ps.Power[0], p)
		}
		if top := ps.Top(1); len(top) != 1 || ps.Freqs[top[0]] != f {
			t.Errorf("Top(1) = %v, peak %v", top, f)
		}
	}
}

func TestPowerSpectrum_Degenerate(t *testing.T) {
	if s := PowerSpectrum([]float64{1}, 10); len(s.Power) != 0 {
		t.Errorf("spectrum of one sample = %v", s)
	}
	if f, p := (Spectrum{}).Peak(); f != 0 || p != 0 {
		t.Errorf("empty peak = %v, %v", f, p)
	}

	ps := Spectrum{Freqs: []float64{0, 1, 2}, Power: []float64{5, 1, 3}}
	for _, n := range []int{-1, 0} {
		if top := ps.Top(n); len(top) != 0 {
			t.Errorf("Top(%d) = %v", n, top)
		}
	}
	if top := ps.Top(10); len(top) != 2 || top[0] != 2 {
		t.Errorf("Top(10) = %v", top)
	}
}
