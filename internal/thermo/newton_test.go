package thermo_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/san-kum/numerix/internal/config"
	"github.com/san-kum/numerix/internal/equation"
	"github.com/san-kum/numerix/internal/integrators"
	"github.com/san-kum/numerix/internal/thermo"
)

// air-like cv(T) = 700 + 0.05 T
var cvCoeffs = []float64{700, 0.05}

var _ = Describe("Newton", func() {
	var newton *thermo.Newton

	BeforeEach(func() {
		newton = thermo.NewNewton(thermo.DefaultSettings())
	})

	It("solves a linear property in one step", func() {
		F := func(_, T float64, _ int) float64 { return 3 * T }
		dF := func(_, _ float64, _ int) float64 { return 3 }
		limit := func(T float64, _ int) float64 { return T }

		T, err := newton.Solve("f", 12, 1, 0, F, dF, limit, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(T).To(BeNumerically("~", 4, 1e-12))
	})

	It("clamps every iterate", func() {
		F := func(_, T float64, _ int) float64 { return T * T }
		dF := func(_, T float64, _ int) float64 { return 2 * T }
		seen := []float64{}
		limit := func(T float64, _ int) float64 {
			T = math.Max(T, 0.5)
			seen = append(seen, T)
			return T
		}

		T, err := newton.Solve("f", 2, 1, -10, F, dF, limit, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(T).To(BeNumerically("~", math.Sqrt2, 1e-10))
		for _, s := range seen {
			Expect(s).To(BeNumerically(">=", 0.5))
		}
	})

	Context("when the iteration cannot converge", func() {
		var (
			logger *logrus.Logger
			hook   *test.Hook
		)

		BeforeEach(func() {
			logger, hook = test.NewNullLogger()
			newton = thermo.NewNewton(thermo.Settings{AbsTol: 1e-12, RelTol: 0, MaxIter: 8})
			newton.SetLogger(logger)
		})

		It("returns a ConvergenceError after logging every iterate", func() {
			// T^2 = -1 has no real root.
			F := func(_, T float64, _ int) float64 { return T * T }
			dF := func(_, T float64, _ int) float64 { return 2 * T }
			limit := func(T float64, _ int) float64 { return T }

			_, err := newton.Solve("e", -1, 2.5, 1, F, dF, limit, 3)
			Expect(err).To(MatchError(thermo.ErrMaxIterations))

			var ce *thermo.ConvergenceError
			Expect(err).To(BeAssignableToTypeOf(ce))
			ce = err.(*thermo.ConvergenceError)
			Expect(ce.Iterates).To(HaveLen(8))
			Expect(ce.Property).To(Equal("e"))
			Expect(ce.Rho).To(Equal(2.5))

			warnings := 0
			for _, entry := range hook.AllEntries() {
				if entry.Level == logrus.WarnLevel {
					warnings++
				}
			}
			Expect(warnings).To(Equal(8))
			Expect(hook.LastEntry().Level).To(Equal(logrus.ErrorLevel))
		})
	})

	It("reads its settings from a dictionary", func() {
		d := config.NewDict("thermo", map[string]any{"TAbsTolerance": 1e-6, "maxIter": 5})
		set := thermo.SettingsFromDict(d)
		Expect(set.AbsTol).To(Equal(1e-6))
		Expect(set.MaxIter).To(Equal(5))
		Expect(set.RelTol).To(Equal(thermo.DefaultRelTol))
	})
})

var _ = Describe("PolynomialCv", func() {
	var (
		model  *thermo.PolynomialCv
		newton *thermo.Newton
	)

	BeforeEach(func() {
		model = thermo.NewPolynomialCv(cvCoeffs, 287, 298.15, 0, thermo.Range{TLow: 50, THigh: 5000})
		newton = thermo.NewNewton(thermo.DefaultSettings())
	})

	It("has zero energy at the reference temperature", func() {
		Expect(model.E(1, 298.15, 0)).To(BeNumerically("~", 0, 1e-9))
	})

	It("matches cv to the energy slope", func() {
		h := 1e-3
		slope := (model.E(1, 1000+h, 0) - model.E(1, 1000-h, 0)) / (2 * h)
		Expect(slope).To(BeNumerically("~", model.Cv(1, 1000, 0), 1e-6))
		Expect(model.Cp(1, 1000, 0) - model.Cv(1, 1000, 0)).To(BeNumerically("~", 287, 1e-12))
	})

	DescribeTable("round-trips e -> T -> e",
		func(T float64) {
			e := model.E(1.2, T, 0)
			got, err := thermo.TRhoE(newton, model, e, 1.2, 300, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(BeNumerically("~", T, 1e-8))
			Expect(model.E(1.2, got, 0)).To(BeNumerically("~", e, 1e-6))
		},
		Entry("cold", 120.0),
		Entry("ambient", 300.0),
		Entry("hot", 2500.0),
	)

	It("round-trips h -> T", func() {
		h := model.H(1, 1500, 0)
		got, err := thermo.THE(newton, model, h, 1, 300, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(BeNumerically("~", 1500, 1e-8))
	})

	It("clamps to the valid range", func() {
		Expect(model.Limit(10, 0)).To(Equal(50.0))
		Expect(model.Limit(1e5, 0)).To(Equal(5000.0))
	})
})

var _ = Describe("IntegratedCv", func() {
	It("agrees with the analytic model", func() {
		dom := equation.NewInterval(50, 5000)
		cv := equation.NewPolynomial(dom, cvCoeffs...)
		integrated, err := thermo.NewIntegratedCv(cv, integrators.DefaultSettings(), 287, 298.15, 0)
		Expect(err).NotTo(HaveOccurred())
		analytic := thermo.NewPolynomialCv(cvCoeffs, 287, 298.15, 0, thermo.Range{TLow: 50, THigh: 5000})

		for _, T := range []float64{100, 298.15, 800, 4000} {
			Expect(integrated.E(1, T, 0)).To(BeNumerically("~", analytic.E(1, T, 0), 1e-6))
		}

		e := analytic.E(1, 1800, 0)
		T, err := thermo.TRhoE(thermo.NewNewton(thermo.DefaultSettings()), integrated, e, 1, 300, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(T).To(BeNumerically("~", 1800, 1e-6))
	})
})

var _ = Describe("ModelFromDict", func() {
	It("builds the registered models", func() {
		for _, name := range []string{"polynomialCv", "integratedCv"} {
			d := config.NewDict(name, map[string]any{
				"model":    name,
				"cvCoeffs": []any{700.0, 0.05},
			})
			m, err := thermo.ModelFromDict(d)
			Expect(err).NotTo(HaveOccurred())
			Expect(m.Name()).To(Equal(name))
		}
	})

	It("rejects unknown models with the valid names", func() {
		d := config.NewDict("bad", map[string]any{"model": "MieGruneisen"})
		_, err := thermo.ModelFromDict(d)
		Expect(err).To(MatchError(thermo.ErrUnknownModel))
		Expect(err).To(MatchError(config.ErrUnknownScheme))
		Expect(err.Error()).To(ContainSubstring("polynomialCv"))
	})

	It("requires cv coefficients", func() {
		_, err := thermo.ModelFromDict(config.NewDict("empty", nil))
		Expect(err).To(MatchError(config.ErrMissingKey))
	})
})
