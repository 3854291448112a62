package metrics

import (
	"github.com/san-kum/adexsim/internal/adexp"
	"github.com/san-kum/adexsim/internal/dynamo"
)

// Stability is the fraction of recorded states that are finite. Anything
// below 1 means the run blew up, usually because of invalid parameters.
type Stability struct {
	name       string
	violations int
	samples    int
}

func NewStability() *Stability {
	return &Stability{
		name: "stability",
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Record(_ dynamo.Time, x adexp.State, _ adexp.AuxiliaryState, _ bool) {
	s.samples++
	if !x.IsValid() {
		s.violations++
	}
}

func (s *Stability) InputSpike(dynamo.Time, adexp.State)  {}
func (s *Stability) OutputSpike(dynamo.Time, adexp.State) {}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
