package sim_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/adexsim/internal/adexp"
	"github.com/san-kum/adexsim/internal/control"
	"github.com/san-kum/adexsim/internal/dynamo"
	"github.com/san-kum/adexsim/internal/integrators"
	"github.com/san-kum/adexsim/internal/recorder"
	"github.com/san-kum/adexsim/internal/sim"
)

var _ = Describe("SpikeVec", func() {
	It("accepts sorted trains including simultaneous spikes", func() {
		v := sim.SpikeVec{{T: 0}, {T: ms(1)}, {T: ms(1)}, {T: ms(2)}}
		Expect(v.Validate()).To(Succeed())
	})

	It("reports the first out-of-order spike", func() {
		v := sim.SpikeVec{{T: ms(1)}, {T: ms(3)}, {T: ms(2)}}
		err := v.Validate()
		Expect(errors.Is(err, dynamo.ErrUnsortedSpikes)).To(BeTrue())

		var orderErr *dynamo.SpikeOrderError
		Expect(errors.As(err, &orderErr)).To(BeTrue())
		Expect(orderErr.Index).To(Equal(2))

		v.Sort()
		Expect(v.Validate()).To(Succeed())
	})
})

var _ = Describe("Simulate", func() {
	var params adexp.Parameters

	BeforeEach(func() {
		params = adexp.DefaultParameters()
	})

	Context("with a single strong excitatory spike", func() {
		var (
			res sim.Result
			vec *recorder.Vector
		)

		BeforeEach(func() {
			cfg := sim.Config{
				Model:  adexp.IfCondExp | adexp.DisableITh,
				TDelta: dynamo.FromSec(1e-5),
				TEnd:   ms(50),
			}
			res, vec = run(params, sim.SpikeVec{{T: 0, W: 4}}, control.Null{}, integrators.NewRK4(), cfg)
		})

		It("fires exactly one output spike", func() {
			Expect(res.OutputSpikes).To(Equal(1))
			Expect(res.InputSpikes).To(Equal(1))
			Expect(vec.OutputSpikes).To(HaveLen(1))
		})

		It("resets v to eReset and lets lE decay monotonically", func() {
			spikeAt := vec.OutputSpikes[0]
			idx := -1
			for i, row := range vec.Rows {
				if row.T == spikeAt {
					idx = i
					break
				}
			}
			Expect(idx).To(BeNumerically(">=", 0))

			Expect(vec.Rows[idx].V).To(BeNumerically("~", params.ETh, 1e-12))
			Expect(vec.Rows[idx+1].V).To(BeNumerically("~", params.EReset, 1e-12))

			for i := idx + 1; i < len(vec.Rows); i++ {
				Expect(vec.Rows[i].GE).To(BeNumerically("<=", vec.Rows[i-1].GE))
			}
		})

		It("ends exactly at tEnd", func() {
			Expect(res.T).To(Equal(ms(50)))
		})
	})

	DescribeTable("stays at rest without input",
		func(integ sim.Integrator) {
			cfg := sim.Config{TDelta: dynamo.FromSec(1e-5), TEnd: ms(100)}
			res, vec := run(params, nil, control.Null{}, integ, cfg)

			Expect(res.OutputSpikes).To(BeZero())
			Expect(res.T).To(Equal(ms(100)))
			for _, v := range vec.Voltages() {
				Expect(v).To(BeNumerically("~", params.EL, 1e-5))
			}
		},
		Entry("euler", integrators.NewEuler()),
		Entry("midpoint", integrators.NewMidpoint()),
		Entry("rk4", integrators.NewRK4()),
		Entry("dormand-prince", integrators.NewDormandPrince(integrators.DefaultETar)),
	)

	Describe("event ordering", func() {
		spikes := sim.SpikeVec{
			{T: ms(1.3), W: 1.5},
			{T: ms(4.7), W: -1},
			{T: ms(10.1), W: 2},
			{T: ms(10.2), W: 1},
			{T: ms(30), W: 3},
		}

		DescribeTable("never integrates across an input spike",
			func(inner sim.Integrator) {
				integ := &spanIntegrator{Integrator: inner}
				res, vec := run(params, spikes, control.Null{}, integ, sim.Config{TEnd: ms(50)})

				Expect(res.InputSpikes).To(Equal(len(spikes)))
				for _, span := range integ.spans {
					for _, sp := range spikes {
						Expect(sp.T > span[0] && sp.T < span[1]).To(BeFalse(),
							"span %v-%v crosses spike at %v", span[0], span[1], sp.T)
					}
				}

				By("applying each spike exactly at its arrival time")
				Expect(vec.InputSpikes).To(HaveLen(len(spikes)))
				for i, sp := range spikes {
					Expect(vec.InputSpikes[i]).To(Equal(sp.T))
				}

				By("keeping the recorded time axis strictly increasing")
				for i := 1; i < len(vec.Rows); i++ {
					Expect(vec.Rows[i].T).To(BeNumerically(">", vec.Rows[i-1].T))
				}
			},
			Entry("rk4", integrators.NewRK4()),
			Entry("dormand-prince", integrators.NewDormandPrince(integrators.DefaultETar)),
		)

		It("adds positive weights to lE and negative weights to lI", func() {
			p := adexp.NewWorkingParameters(params)
			cfg := sim.Config{TEnd: dynamo.Tick}
			res := sim.Simulate(sim.SpikeVec{{T: 0, W: 2}, {T: 0, W: -3}}, nullRecorder{}, control.Null{}, integrators.NewEuler(), p, cfg)

			Expect(res.State.LE()).To(BeNumerically("~", 2*p.WSpike(), 1e-9))
			Expect(res.State.LI()).To(BeNumerically("~", 3*p.WSpike(), 1e-9))
		})
	})

	Describe("refractory period", func() {
		BeforeEach(func() {
			params.TauRef = 2e-3
		})

		cfg := sim.Config{
			Model:  adexp.IfCondExp,
			TDelta: dynamo.FromSec(1e-5),
			TEnd:   ms(50),
		}

		It("spaces output spikes by at least tauRef", func() {
			_, vec := run(params, sim.SpikeVec{{T: 0, W: 20}}, control.Null{}, integrators.NewRK4(), cfg)

			Expect(len(vec.OutputSpikes)).To(BeNumerically(">=", 2))
			for i := 1; i < len(vec.OutputSpikes); i++ {
				Expect(vec.OutputSpikes[i].Sub(vec.OutputSpikes[i-1])).To(BeNumerically(">=", ms(2)))
			}

			By("holding v at eReset inside the window")
			first := vec.OutputSpikes[0]
			for _, row := range vec.Rows {
				if row.T > first+2*dynamo.Tick && row.T < first+ms(2) {
					Expect(row.V).To(BeNumerically("~", params.EReset, 1e-12))
				}
			}
		})

		It("re-fires sooner when disabled", func() {
			cfg := cfg
			cfg.Model |= adexp.DisableRefractory
			_, vec := run(params, sim.SpikeVec{{T: 0, W: 20}}, control.Null{}, integrators.NewRK4(), cfg)

			shortest := dynamo.MaxTime
			for i := 1; i < len(vec.OutputSpikes); i++ {
				shortest = min(shortest, vec.OutputSpikes[i].Sub(vec.OutputSpikes[i-1]))
			}
			Expect(shortest).To(BeNumerically("<", ms(2)))
		})

		It("resumes a refractory window from a checkpoint", func() {
			spikes := sim.SpikeVec{{T: 0, W: 20}}
			_, full := run(params, spikes, control.Null{}, integrators.NewRK4(), cfg)

			split := ms(10)
			first := cfg
			first.TEnd = split
			resA, vecA := run(params, spikes, control.Null{}, integrators.NewRK4(), first)
			Expect(resA.T).To(Equal(split))

			last := resA.LastSpike.Sub(split)
			second := cfg
			second.TEnd = cfg.TEnd.Sub(split)
			second.S0 = resA.State
			second.LastSpike = &last
			_, vecB := run(params, nil, control.Null{}, integrators.NewRK4(), second)

			var joined []float64
			for _, t := range vecA.OutputSpikes {
				joined = append(joined, t.Sec())
			}
			for _, t := range vecB.OutputSpikes {
				joined = append(joined, t.Add(split).Sec())
			}

			want := full.OutputSpikeTimes()
			Expect(joined).To(HaveLen(len(want)))
			for i := range want {
				Expect(joined[i]).To(BeNumerically("~", want[i], 1.1e-5))
			}
		})
	})

	Describe("controllers", func() {
		It("stops immediately on Abort", func() {
			cfg := sim.Config{Model: adexp.IfCondExp, TDelta: dynamo.FromSec(1e-5), TEnd: ms(50)}
			ctrl := control.NewMaxOutputSpikeCount(1)
			res, vec := run(params, sim.SpikeVec{{T: 0, W: 20}, {T: ms(40), W: 20}}, ctrl, integrators.NewRK4(), cfg)

			Expect(res.OutputSpikes).To(Equal(1))
			Expect(ctrl.Count()).To(Equal(1))
			Expect(res.T).To(Equal(vec.OutputSpikes[0]))
			Expect(res.InputSpikes).To(Equal(1))
		})

		It("only honors MayContinue once no input spikes are pending", func() {
			spikes := sim.SpikeVec{{T: 0, W: 1}, {T: ms(20), W: 1}}
			res, _ := run(params, spikes, control.NewQuiescence(), integrators.NewDormandPrince(integrators.DefaultETar), sim.Config{TEnd: dynamo.FromSec(1)})

			Expect(res.InputSpikes).To(Equal(2))
			Expect(res.T).To(BeNumerically(">", ms(20)))
			Expect(res.T).To(BeNumerically("<", ms(100)))
		})

		It("stops after the first step when resting with nothing pending", func() {
			res, _ := run(params, nil, control.NewQuiescence(), integrators.NewRK4(), sim.Config{})
			Expect(res.Steps).To(Equal(1))
		})

		It("is queried once per accepted step", func() {
			ctrl := &countingController{}
			integ := integrators.NewDormandPrince(integrators.DefaultETar)
			res, _ := run(params, sim.SpikeVec{{T: 0, W: 5}}, ctrl, integ, sim.Config{TEnd: ms(50)})

			Expect(ctrl.calls).To(Equal(res.Steps))
			Expect(integ.Accepted()).To(Equal(res.Steps))
		})
	})

	Describe("special spikes", func() {
		It("forces an output spike and sets the voltage when enabled", func() {
			cfg := sim.Config{Model: adexp.ProcessSpecial, TEnd: ms(20)}
			spikes := sim.SpikeVec{
				{T: ms(5), W: 0.005, Kind: sim.SetVoltage},
				{T: ms(10), Kind: sim.ForceOutput},
			}
			res, vec := run(params, spikes, control.Null{}, integrators.NewRK4(), cfg)

			Expect(res.OutputSpikes).To(Equal(1))
			Expect(vec.OutputSpikes).To(Equal([]dynamo.Time{ms(10)}))

			afterSet := ms(5) + 2*dynamo.Tick
			found := false
			for _, row := range vec.Rows {
				if row.T == afterSet {
					Expect(row.V).To(BeNumerically("~", params.EL+0.005, 1e-12))
					found = true
				}
			}
			Expect(found).To(BeTrue())
		})

		It("treats special spikes as normal ones when disabled", func() {
			spikes := sim.SpikeVec{{T: ms(10), Kind: sim.ForceOutput}}
			res, _ := run(params, spikes, control.Null{}, integrators.NewRK4(), sim.Config{TEnd: ms(20)})
			Expect(res.OutputSpikes).To(BeZero())
			Expect(res.InputSpikes).To(Equal(1))
		})
	})

	It("probes the maximum potential with clamp-ith and disable-spiking", func() {
		p := adexp.NewWorkingParameters(params)
		cfg := sim.Config{Model: adexp.ClampITh | adexp.DisableSpiking, TEnd: ms(50)}
		res, vec := run(params, sim.SpikeVec{{T: 0, W: 20}}, control.Null{}, integrators.NewDormandPrince(integrators.DefaultETar), cfg)

		Expect(res.OutputSpikes).To(BeZero())
		for _, v := range vec.Voltages() {
			Expect(math.IsNaN(v)).To(BeFalse())
		}
		Expect(res.State.IsValid()).To(BeTrue())
		Expect(p.Valid()).To(BeTrue())
	})
})

type nullRecorder struct{}

func (nullRecorder) Record(dynamo.Time, adexp.State, adexp.AuxiliaryState, bool) {}
func (nullRecorder) InputSpike(dynamo.Time, adexp.State)                         {}
func (nullRecorder) OutputSpike(dynamo.Time, adexp.State)                        {}

type countingController struct{ calls int }

func (c *countingController) Control(dynamo.Time, adexp.State, adexp.AuxiliaryState, *adexp.WorkingParameters, bool) sim.ControlResult {
	c.calls++
	return sim.Continue
}
