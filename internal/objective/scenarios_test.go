package objective_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/wavebuoy/internal/analysis"
	"github.com/san-kum/wavebuoy/internal/objective"
)

var _ = Describe("Buoy optimization objective", func() {
	var (
		ctx context.Context
		cfg objective.Config
	)

	BeforeEach(func() {
		ctx = context.Background()
		cfg = objective.DefaultConfig()
	})

	Context("with a flat sea", func() {
		It("stays at rest, makes no power and has no acceleration peak", func() {
			ev := newEvaluator(cfg, sineSeries(0, 10, 200, 0.1))
			c := objective.Candidate{Mass: 1e5, Damping: 2e5}

			got := ev.Inspect(ctx, c)
			Expect(got.Reason).To(Equal(objective.Accepted))
			Expect(got.PowerW).To(BeZero())
			for _, x := range got.States {
				Expect(x[0]).To(BeZero())
				Expect(x[1]).To(BeZero())
			}

			vs := make([]float64, len(got.States))
			zs := make([]float64, len(got.States))
			for i, x := range got.States {
				zs[i], vs[i] = x[0], x[1]
			}
			_, ok := analysis.FindMaxAcceleration(got.Times, zs, vs, ev.Buoy(c), cfg.SteadyStateCutoff)
			Expect(ok).To(BeFalse())
		})
	})

	Context("with a 1 m, 10 s sinusoid", func() {
		It("scores a feasible candidate with negative power above the negated penalty", func() {
			ev := newEvaluator(cfg, sineSeries(1, 10, 200, 0.1))

			score := ev.Evaluate(ctx, objective.Candidate{Mass: 1e5, Damping: 2e5})
			Expect(score).To(BeNumerically("<", 0))
			Expect(score).To(BeNumerically(">", -cfg.Penalty))
		})

		It("finds the acceleration peak after the transient", func() {
			ev := newEvaluator(cfg, sineSeries(1, 10, 200, 0.1))
			c := objective.Candidate{Mass: 1e5, Damping: 2e5}
			got := ev.Inspect(ctx, c)
			Expect(got.Feasible()).To(BeTrue())

			zs := make([]float64, len(got.States))
			vs := make([]float64, len(got.States))
			for i, x := range got.States {
				zs[i], vs[i] = x[0], x[1]
			}
			peak, ok := analysis.FindMaxAcceleration(got.Times, zs, vs, ev.Buoy(c), cfg.SteadyStateCutoff)
			Expect(ok).To(BeTrue())
			Expect(peak.Time).To(BeNumerically(">", got.Times[0]+cfg.SteadyStateCutoff))
			Expect(peak.Accel).NotTo(BeZero())
		})

		It("returns exactly the penalty when the PTO force limit is exceeded", func() {
			cfg.MaxPTOForce = 5e4
			ev := newEvaluator(cfg, sineSeries(1, 10, 200, 0.1))

			c := objective.Candidate{Mass: 1e5, Damping: 2e5}
			Expect(ev.Evaluate(ctx, c)).To(Equal(cfg.Penalty))
			Expect(ev.Inspect(ctx, c).Reason).To(Equal(objective.PTOForceExceeded))
		})
	})
})
