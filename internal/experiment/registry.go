package experiment

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/numerix/internal/config"
	"github.com/san-kum/numerix/internal/equation"
	"github.com/san-kum/numerix/internal/integrators"
	"github.com/san-kum/numerix/internal/lsq"
	"github.com/san-kum/numerix/internal/optim"
	"github.com/san-kum/numerix/internal/thermo"
)

// Runner executes a validated case of one kind.
type Runner func(c *config.Case, log logrus.FieldLogger) (*Result, error)

var Runners = config.NewRegistry[config.Kind, Runner]("case kind")

func init() {
	Runners.Register(config.KindIntegrate, runIntegrate)
	Runners.Register(config.KindMinimize, runMinimize)
	Runners.Register(config.KindRoot, runRoot)
	Runners.Register(config.KindFit, runFit)
	Runners.Register(config.KindInvert, runInvert)
}

// TraceSamples is the number of integrand samples kept for plotting.
const TraceSamples = 64

const (
	outcomeConverged   = "converged"
	outcomeUnconverged = "did not converge"
)

func outcome(ok bool) string {
	if ok {
		return outcomeConverged
	}
	return outcomeUnconverged
}

// Functions lists the library equations usable in a case of kind k.
func Functions(k config.Kind) []string {
	switch k {
	case config.KindIntegrate, config.KindMinimize:
		return union(equation.ScalarFunctions.Names(), equation.FieldFunctions.Names())
	case config.KindRoot:
		return equation.ScalarFunctions.Names()
	case config.KindFit:
		return equation.CoefficientModels.Names()
	case config.KindInvert:
		return thermo.Models.Names()
	}
	return nil
}

func union(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, s := range append(a, b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// scalar resolves the function as a scalar-input equation when it is one
// and the case is one dimensional.
func scalar(c *config.Case) (equation.TwiceDifferentiable[float64], bool, error) {
	if len(c.Lower) != 1 {
		return nil, false, nil
	}
	ctor, err := equation.ScalarFunctions.Get(c.Function)
	if err != nil {
		return nil, false, nil
	}
	eqn, err := ctor(c.EquationDict())
	return eqn, err == nil, err
}

func field(c *config.Case) (equation.UnivariateEquation[float64], error) {
	ctor, err := equation.FieldFunctions.Get(c.Function)
	if err != nil {
		return nil, &config.UnknownSchemeError{Kind: "function", Name: c.Function, Valid: Functions(c.Kind)}
	}
	return ctor(c.EquationDict())
}

func runIntegrate(c *config.Case, log logrus.FieldLogger) (*Result, error) {
	f, ok, err := scalar(c)
	if err != nil {
		return nil, err
	}
	if ok {
		integ, err := integrators.FromDict(equation.Scalar, equation.Equation[float64](f), c.SolverDict())
		if err != nil {
			return nil, err
		}
		integ.SetLogger(log)
		v, st := integ.Integrate(c.Lower[0], c.Upper[0], c.Index)
		return &Result{
			Value:       []float64{v},
			Evaluations: st.Evaluations,
			Steps:       st.Splits,
			Converged:   st.Converged(),
			Outcome:     outcome(st.Converged()),
			Trace:       samples(f, c.Lower[0], c.Upper[0], c.Index),
		}, nil
	}

	g, err := field(c)
	if err != nil {
		return nil, err
	}
	integ, err := integrators.MultivariateFromDict(equation.Scalar, g, c.SolverDict())
	if err != nil {
		return nil, err
	}
	integ.SetLogger(log)
	v, st, err := integ.Integrate(c.Lower, c.Upper, c.Index)
	if err != nil {
		return nil, err
	}
	return &Result{
		Value:       []float64{v},
		Evaluations: st.Evaluations,
		Steps:       st.Splits,
		Converged:   st.Converged(),
		Outcome:     outcome(st.Converged()),
	}, nil
}

func samples(f equation.Equation[float64], lo, hi float64, li int) []float64 {
	out := make([]float64, TraceSamples)
	h := (hi - lo) / float64(TraceSamples-1)
	for i := range out {
		out[i] = equation.EvalLimited(f, lo+float64(i)*h, li)
	}
	return out
}

func runMinimize(c *config.Case, log logrus.FieldLogger) (*Result, error) {
	x0 := c.StartPoint()
	f, ok, err := scalar(c)
	if err != nil {
		return nil, err
	}
	if ok {
		m, err := optim.UnivariateFromDict(f, c.SolverDict())
		if err != nil {
			return nil, err
		}
		m.SetLogger(log)
		x, st := m.Minimize(x0[0], c.Lower[0], c.Upper[0], c.Index)
		return statusResult([]float64{x}, f.FX(x, c.Index), st), nil
	}

	g, err := field(c)
	if err != nil {
		return nil, err
	}
	m, err := optim.MultivariateFromDict(g, c.SolverDict())
	if err != nil {
		return nil, err
	}
	m.SetLogger(log)
	x, st, err := m.Minimize(x0, c.Lower, c.Upper, c.Index)
	if err != nil {
		return nil, err
	}
	return statusResult(x, g.FX(x, c.Index), st), nil
}

func statusResult(x []float64, fx float64, st optim.Status) *Result {
	return &Result{
		Value:       x,
		Objective:   fx,
		Evaluations: st.Evaluations,
		Steps:       st.Steps,
		Converged:   st.Converged(),
		Outcome:     st.Outcome.String(),
		Trace:       st.Widths,
	}
}

// runRoot brackets a sign change with bisection.
func runRoot(c *config.Case, log logrus.FieldLogger) (*Result, error) {
	f, ok, err := scalar(c)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &config.UnknownSchemeError{Kind: "scalar function", Name: c.Function, Valid: Functions(c.Kind)}
	}
	set, err := optim.SettingsFromDict(c.SolverDict(), 1)
	if err != nil {
		return nil, err
	}
	b := optim.NewBisection(f, set, optim.Root)
	b.SetLogger(log)
	x, st := b.Minimize(c.StartPoint()[0], c.Lower[0], c.Upper[0], c.Index)
	return statusResult([]float64{x}, f.FX(x, c.Index), st), nil
}

func runFit(c *config.Case, log logrus.FieldLogger) (*Result, error) {
	ctor, err := equation.CoefficientModels.Get(c.Function)
	if err != nil {
		return nil, err
	}
	eqn, err := ctor(c.EquationDict())
	if err != nil {
		return nil, err
	}
	fitter := lsq.FromDict(c.SolverDict())
	fitter.SetLogger(log)

	var res lsq.Result
	if len(c.Data.W) > 0 {
		res, err = fitter.FindCoeffsWeighted(eqn, c.Data.X, c.Data.Y, c.Data.W, c.Index)
	} else {
		res, err = fitter.FindCoeffs(eqn, c.Data.X, c.Data.Y, c.Index)
	}
	if err != nil {
		return nil, err
	}
	return &Result{
		Value:     res.Coeffs,
		Objective: res.R2,
		Steps:     res.Steps,
		Converged: res.Converged,
		Outcome:   outcome(res.Converged),
		Trace:     res.Residuals,
	}, nil
}

// DefaultT0 is the starting temperature of an inversion without a start
// point.
const DefaultT0 = 300.0

func runInvert(c *config.Case, log logrus.FieldLogger) (*Result, error) {
	d := c.EquationDict()
	if !d.Has("model") {
		d.Set("model", c.Function)
	}
	m, err := thermo.ModelFromDict(d)
	if err != nil {
		return nil, err
	}

	solver := c.SolverDict()
	n := thermo.NewNewton(thermo.SettingsFromDict(solver))
	n.SetLogger(log)

	T0 := DefaultT0
	if len(c.Start) > 0 {
		T0 = c.Start[0]
	}
	var (
		T        float64
		residual func(T float64) float64
	)
	switch prop := solver.String("property", "e"); prop {
	case "e":
		T, err = thermo.TRhoE(n, m, c.Target, c.Rho, T0, c.Index)
		residual = func(t float64) float64 { return m.E(c.Rho, t, c.Index) - c.Target }
	case "h":
		T, err = thermo.THE(n, m, c.Target, c.Rho, T0, c.Index)
		residual = func(t float64) float64 { return m.H(c.Rho, t, c.Index) - c.Target }
	default:
		return nil, &config.UnknownSchemeError{Kind: "property", Name: prop, Valid: []string{"e", "h"}}
	}
	if err != nil {
		return nil, err
	}
	return &Result{
		Value:     []float64{T},
		Objective: residual(T),
		Converged: true,
		Outcome:   outcomeConverged,
	}, nil
}
