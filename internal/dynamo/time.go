package dynamo

import (
	"fmt"
	"math"
)

// TimeBits is the number of fractional bits of a Time value.
const TimeBits = 48

// TicksPerSecond is the number of Time ticks in one second.
const TicksPerSecond = 1 << TimeBits

// Time is a fixed-point timestamp or duration measured in 2^-48 s ticks.
// Arithmetic saturates at MinTime and MaxTime instead of wrapping.
type Time int64

const (
	MinTime Time = math.MinInt64
	MaxTime Time = math.MaxInt64
	Tick    Time = 1
)

// limits of the float64 -> int64 conversion, kept strictly inside the int64 range
const (
	maxTicks = float64(math.MaxInt64)
	minTicks = float64(math.MinInt64)
)

// FromSec converts seconds to Time, saturating outside the representable range.
// NaN converts to zero.
func FromSec(s float64) Time {
	return fromTicks(s * TicksPerSecond)
}

func fromTicks(v float64) Time {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= maxTicks:
		return MaxTime
	case v <= minTicks:
		return MinTime
	}
	return Time(math.Round(v))
}

// Sec returns t in seconds.
func (t Time) Sec() float64 {
	return float64(t) / TicksPerSecond
}

func (t Time) Add(o Time) Time {
	s := t + o
	if o > 0 && s < t {
		return MaxTime
	}
	if o < 0 && s > t {
		return MinTime
	}
	return s
}

func (t Time) Sub(o Time) Time {
	s := t - o
	if o < 0 && s < t {
		return MaxTime
	}
	if o > 0 && s > t {
		return MinTime
	}
	return s
}

// Scale multiplies t by f, rounding to the nearest tick.
func (t Time) Scale(f float64) Time {
	return fromTicks(float64(t) * f)
}

func (t Time) String() string {
	switch t {
	case MaxTime:
		return "+inf"
	case MinTime:
		return "-inf"
	}
	return fmt.Sprintf("%gs", t.Sec())
}
