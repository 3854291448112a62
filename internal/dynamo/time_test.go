package dynamo

import (
	"errors"
	"math"
	"testing"
)

func TestTime_FromSec(t *testing.T) {
	tests := []struct {
		name string
		sec  float64
		want Time
	}{
		{"zero", 0, 0},
		{"one second", 1, TicksPerSecond},
		{"negative", -0.5, -TicksPerSecond / 2},
		{"huge", 1e9, MaxTime},
		{"huge negative", -1e9, MinTime},
		{"inf", math.Inf(1), MaxTime},
		{"nan", math.NaN(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromSec(tt.sec); got != tt.want {
				t.Errorf("FromSec(%v) = %d, want %d", tt.sec, got, tt.want)
			}
		})
	}
}

func TestTime_RoundTrip(t *testing.T) {
	for _, s := range []float64{1e-6, 1e-5, 0.05, 0.1, 12.5} {
		got := FromSec(s).Sec()
		if math.Abs(got-s) > 1.0/TicksPerSecond {
			t.Errorf("round trip of %v gave %v", s, got)
		}
	}
}

func TestTime_Saturation(t *testing.T) {
	if got := MaxTime.Add(Tick); got != MaxTime {
		t.Errorf("MaxTime+Tick = %d, want MaxTime", got)
	}
	if got := MinTime.Sub(Tick); got != MinTime {
		t.Errorf("MinTime-Tick = %d, want MinTime", got)
	}
	if got := FromSec(1).Sub(MinTime); got != MaxTime {
		t.Errorf("1s-MinTime = %d, want MaxTime", got)
	}
	if got := Time(0).Sub(MaxTime); got != -MaxTime {
		t.Errorf("0-MaxTime = %d, want %d", got, -MaxTime)
	}
	if got := MaxTime.Scale(2); got != MaxTime {
		t.Errorf("MaxTime*2 = %d, want MaxTime", got)
	}
}

func TestTime_Arithmetic(t *testing.T) {
	a := FromSec(0.25)
	b := FromSec(0.5)

	if a.Add(a) != b {
		t.Errorf("0.25+0.25 != 0.5")
	}
	if b.Sub(a) != a {
		t.Errorf("0.5-0.25 != 0.25")
	}
	if a.Scale(2) != b {
		t.Errorf("0.25*2 != 0.5")
	}
	if !(a < b) {
		t.Errorf("ordering broken")
	}
}

func TestSpikeOrderError(t *testing.T) {
	err := &SpikeOrderError{Index: 3, Prev: FromSec(0.5), Next: FromSec(0.25)}
	if !errors.Is(err, ErrUnsortedSpikes) {
		t.Error("SpikeOrderError does not unwrap to ErrUnsortedSpikes")
	}
	want := "dynamo: spike 3 at 0.25s precedes previous spike at 0.5s"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
