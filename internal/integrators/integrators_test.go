package integrators

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/san-kum/adexsim/internal/adexp"
	"github.com/san-kum/adexsim/internal/dynamo"
)

func decay(s adexp.State) adexp.State {
	return s.Scale(-1)
}

// globalError integrates dv/dt = -v from v=1 over one second.
func globalError(integ Integrator, h float64) float64 {
	tEnd := dynamo.FromSec(1)
	step := dynamo.FromSec(h)
	s := adexp.State{1, 1, 1, 1}

	var t dynamo.Time
	for t < tEnd {
		var dt dynamo.Time
		s, dt = integ.Integrate(step, tEnd.Sub(t), s, decay)
		t = t.Add(dt)
	}
	return math.Abs(s.V() - math.Exp(-t.Sec()))
}

func TestFixedStep_Order(t *testing.T) {
	tests := []struct {
		integ Integrator
		h     float64
		ratio float64
	}{
		{NewEuler(), 0.01, 2},
		{NewMidpoint(), 0.01, 4},
		{NewRK4(), 0.1, 16},
	}

	for _, tt := range tests {
		t.Run(tt.integ.Name(), func(t *testing.T) {
			coarse := globalError(tt.integ, tt.h)
			fine := globalError(tt.integ, tt.h/2)
			ratio := coarse / fine
			if ratio < 0.75*tt.ratio || ratio > 1.25*tt.ratio {
				t.Errorf("error ratio %.3f, want about %.0f (coarse %e, fine %e)", ratio, tt.ratio, coarse, fine)
			}
		})
	}
}

func TestDormandPrince_StepOrder(t *testing.T) {
	dp := NewDormandPrince(DefaultETar)
	run := func(h float64) float64 {
		s := adexp.State{1, 1, 1, 1}
		n := int(math.Round(1 / h))
		for i := 0; i < n; i++ {
			s, _ = dp.Step(h, s, decay)
		}
		return math.Abs(s.V() - math.Exp(-1))
	}

	ratio := run(0.1) / run(0.05)
	if ratio < 24 || ratio > 45 {
		t.Errorf("error ratio %.2f, want about 32", ratio)
	}
}

func TestDormandPrince_GrowsToCeiling(t *testing.T) {
	dp := NewDormandPrince(DefaultETar)
	tEnd := dynamo.FromSec(1)
	s := adexp.State{1, 0, 0, 0}

	var t0 dynamo.Time
	steps := 0
	maxStep := dynamo.Time(0)
	for t0 < tEnd {
		var h dynamo.Time
		s, h = dp.Integrate(dynamo.FromSec(1e-4), tEnd.Sub(t0), s, decay)
		t0 = t0.Add(h)
		maxStep = max(maxStep, h)
		steps++
	}

	if steps > 150 {
		t.Errorf("took %d steps, want step size to grow towards 10ms", steps)
	}
	if maxStep > dynamo.FromSec(maxStepSec) {
		t.Errorf("step %v exceeds ceiling", maxStep)
	}
	if rel := math.Abs(s.V()-math.Exp(-t0.Sec())) / math.Exp(-t0.Sec()); rel > 1e-6 {
		t.Errorf("relative error %e", rel)
	}
	if dp.Accepted() != steps {
		t.Errorf("accepted %d, want %d", dp.Accepted(), steps)
	}
}

func TestDormandPrince_RejectsStiffStep(t *testing.T) {
	dp := NewDormandPrince(DefaultETar)
	stiff := func(s adexp.State) adexp.State { return s.Scale(-1e5) }

	s, h := dp.Integrate(dynamo.FromSec(maxStepSec), dynamo.MaxTime, adexp.State{1, 1, 1, 1}, stiff)
	if dp.Rejected() == 0 {
		t.Error("expected rejected trial steps")
	}
	if h >= dynamo.FromSec(maxStepSec) || h < dynamo.FromSec(minStepSec) {
		t.Errorf("accepted step %v out of range", h)
	}
	if !s.IsValid() || s.V() >= 1 || s.V() < 0 {
		t.Errorf("state after stiff step = %v", s)
	}
}

func TestDormandPrince_Reset(t *testing.T) {
	dp := NewDormandPrince(DefaultETar)
	s := adexp.State{1, 0, 0, 0}
	for i := 0; i < 5; i++ {
		s, _ = dp.Integrate(dynamo.FromSec(1e-4), dynamo.MaxTime, s, decay)
	}

	dp.Reset()
	if dp.Accepted() != 0 || dp.Rejected() != 0 {
		t.Error("counters not cleared")
	}
	if _, h := dp.Integrate(dynamo.FromSec(1e-4), dynamo.MaxTime, s, decay); h != dynamo.FromSec(1e-4) {
		t.Errorf("first step after Reset = %v, want 1e-4s", h)
	}
}

func TestIntegrate_RespectsCeiling(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	limit := int64(dynamo.FromSec(20e-3))

	for _, name := range Names() {
		integ, err := New(name, DefaultETar)
		if err != nil {
			t.Fatal(err)
		}
		s := adexp.State{0.01, 10, 5, 0}
		for i := 0; i < 500; i++ {
			ceiling := dynamo.Time(rng.Int64N(limit) + 1)
			var h dynamo.Time
			s, h = integ.Integrate(dynamo.FromSec(1e-4), ceiling, s, decay)
			if h <= 0 || h > ceiling {
				t.Fatalf("%s: step %v outside (0, %v]", name, h, ceiling)
			}
		}
	}
}

func TestDormandPrince_SubFloorCeilings(t *testing.T) {
	stiff := func(s adexp.State) adexp.State { return s.Scale(-1e7) }
	floor := dynamo.FromSec(minStepSec)

	tests := []struct {
		name    string
		ceiling dynamo.Time
		want    dynamo.Time
	}{
		{"one tick", dynamo.Tick, dynamo.Tick},
		{"seven ticks", 7 * dynamo.Tick, 7 * dynamo.Tick},
		{"half the floor", dynamo.FromSec(0.5e-6), dynamo.FromSec(0.5e-6)},
		{"at the floor", floor, floor},
		{"above the floor", dynamo.FromSec(1.5e-6), floor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dp := NewDormandPrince(DefaultETar)
			s, h := dp.Integrate(dynamo.FromSec(1e-4), tt.ceiling, adexp.State{0.01, 10, 5, 0.001}, stiff)
			if h != tt.want {
				t.Errorf("step = %v, want %v", h, tt.want)
			}
			if h <= 0 || h > tt.ceiling {
				t.Errorf("step %v outside (0, %v]", h, tt.ceiling)
			}
			if dp.Accepted() != 1 {
				t.Errorf("accepted = %d, want 1", dp.Accepted())
			}
			if !s.IsValid() {
				t.Errorf("state = %v", s)
			}
		})
	}
}

func TestNew(t *testing.T) {
	for _, name := range Names() {
		integ, err := New(name, 1e-4)
		if err != nil {
			t.Fatalf("New(%q): %v", name, err)
		}
		if integ.Name() != name {
			t.Errorf("New(%q).Name() = %q", name, integ.Name())
		}
	}

	if dp, _ := New(NameDormandPrince, 0); dp.(*DormandPrince).ETar() != DefaultETar {
		t.Error("non-positive eTar should fall back to the default")
	}

	if _, err := New("verlet", 0); !errors.Is(err, dynamo.ErrUnknownIntegrator) {
		t.Errorf("New(verlet) error = %v", err)
	}
}
