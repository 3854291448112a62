package sim_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/adexsim/internal/adexp"
	"github.com/san-kum/adexsim/internal/control"
	"github.com/san-kum/adexsim/internal/dynamo"
	"github.com/san-kum/adexsim/internal/integrators"
	"github.com/san-kum/adexsim/internal/recorder"
	"github.com/san-kum/adexsim/internal/sim"
)

var _ = Describe("RunBatch", func() {
	weights := []float64{0, 4, 0, 4, 4}

	jobs := func() []sim.Job {
		params := adexp.DefaultParameters()
		out := make([]sim.Job, len(weights))
		for i, w := range weights {
			out[i] = sim.Job{
				Spikes:     sim.SpikeVec{{T: ms(1), W: w}},
				Recorder:   recorder.Null{},
				Controller: control.Null{},
				Integrator: integrators.NewRK4(),
				Params:     adexp.NewWorkingParameters(params),
				Config: sim.Config{
					Model:  adexp.IfCondExp | adexp.DisableITh,
					TDelta: dynamo.FromSec(1e-5),
					TEnd:   ms(20),
				},
			}
		}
		return out
	}

	It("matches sequential runs in job order", func() {
		res, err := sim.RunBatch(context.Background(), jobs(), 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(res).To(HaveLen(len(weights)))

		for i, j := range jobs() {
			want := sim.Simulate(j.Spikes, j.Recorder, j.Controller, j.Integrator, j.Params, j.Config)
			Expect(res[i]).To(Equal(want))
			if weights[i] > 0 {
				Expect(res[i].OutputSpikes).To(Equal(1))
			} else {
				Expect(res[i].OutputSpikes).To(BeZero())
			}
		}
	})

	It("skips every job once the context is canceled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		res, err := sim.RunBatch(ctx, jobs(), 0)
		Expect(err).To(MatchError(context.Canceled))
		Expect(res).To(HaveLen(len(weights)))
		for _, r := range res {
			Expect(r.Steps).To(BeZero())
		}
	})
})
