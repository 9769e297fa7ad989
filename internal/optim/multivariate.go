package optim

import (
	"github.com/sirupsen/logrus"

	"github.com/san-kum/numerix/internal/config"
	"github.com/san-kum/numerix/internal/equation"
)

// Multivariate minimizes a field from x0 inside the box [xLow, xHigh]. The
// only error is a dimension mismatch.
type Multivariate interface {
	Minimize(x0, xLow, xHigh []float64, li int) ([]float64, Status, error)
	SetLogger(l logrus.FieldLogger)
}

type MultivariateScheme string

const (
	GradientDescent MultivariateScheme = "gradientDescent"
	NelderMead      MultivariateScheme = "NelderMead"
	ParticleSwarm   MultivariateScheme = "particleSwarm"
)

type MultivariateCtor func(eqn equation.UnivariateEquation[float64], d *config.Dict) (Multivariate, error)

// MultivariateSchemes is the registry of several-variable schemes.
var MultivariateSchemes = config.NewRegistry[MultivariateScheme, MultivariateCtor]("multivariate minimization scheme")

func init() {
	MultivariateSchemes.Register(GradientDescent, func(eqn equation.UnivariateEquation[float64], d *config.Dict) (Multivariate, error) {
		set, err := SettingsFromDict(d, eqn.Domain().NVar())
		if err != nil {
			return nil, err
		}
		return NewGradientDescent(eqn, set, d.Float("step", 1, "initialStep")), nil
	})
	MultivariateSchemes.Register(NelderMead, func(eqn equation.UnivariateEquation[float64], d *config.Dict) (Multivariate, error) {
		set, err := SettingsFromDict(d, eqn.Domain().NVar())
		if err != nil {
			return nil, err
		}
		return NewNelderMead(eqn, set), nil
	})
	MultivariateSchemes.Register(ParticleSwarm, func(eqn equation.UnivariateEquation[float64], d *config.Dict) (Multivariate, error) {
		set, err := SettingsFromDict(d, eqn.Domain().NVar())
		if err != nil {
			return nil, err
		}
		def := DefaultSwarm()
		return NewParticleSwarm(eqn, set, SwarmParams{
			Particles: d.Int("nParticles", def.Particles),
			CLocal:    d.Float("cLocal", def.CLocal),
			CGlobal:   d.Float("cGlobal", def.CGlobal),
			VWeight:   d.Float("vWeight", def.VWeight),
			Patience:  d.Int("patience", def.Patience),
			Seed:      int64(d.Int("seed", int(def.Seed))),
		}), nil
	})
}

// MultivariateFromDict builds the scheme named by minimizationScheme,
// Nelder-Mead by default.
func MultivariateFromDict(eqn equation.UnivariateEquation[float64], d *config.Dict) (Multivariate, error) {
	ctor, err := MultivariateSchemes.Get(d.String("minimizationScheme", string(NelderMead), "scheme"))
	if err != nil {
		return nil, err
	}
	return ctor(eqn, d)
}

// GradientDescentScheme steps down the gradient with a backtracking line
// search. Gradients are analytic when the equation has them and central
// differences otherwise.
type GradientDescentScheme struct {
	field
	step float64
}

func NewGradientDescent(eqn equation.UnivariateEquation[float64], set Settings, step float64) *GradientDescentScheme {
	if step <= 0 {
		step = 1
	}
	return &GradientDescentScheme{field: newField(string(GradientDescent), eqn, set), step: step}
}

func (g *GradientDescentScheme) gradient(x []float64, li int) []float64 {
	if _, ok := g.eqn.(equation.WithGradient[float64]); ok {
		g.st.Evaluations++
	} else {
		g.st.Evaluations += 2 * len(x)
	}
	return equation.Gradient(equation.Scalar, g.eqn, x, li)
}

func (g *GradientDescentScheme) Minimize(x0, xLow, xHigh []float64, li int) ([]float64, Status, error) {
	g.reset()
	x, lo, hi, err := g.bounds(x0, xLow, xHigh)
	if err != nil {
		return nil, Status{}, err
	}
	x = g.sample(x, lo, hi, li)
	fx := g.f(x, li)

	t := g.step
	converged := false
	dx := make([]float64, len(x))
	for g.st.Steps < g.set.MaxSteps {
		g.st.Steps++

		dir := g.gradient(x, li)
		stationary := true
		for i := range dir {
			// Drop components that push out of the box.
			if (x[i] <= lo[i] && dir[i] > 0) || (x[i] >= hi[i] && dir[i] < 0) {
				dir[i] = 0
			}
			dir[i] = -dir[i]
			stationary = stationary && dir[i] == 0
		}
		if stationary {
			converged = true
			break
		}

		next, fn, tk, ok := g.lineSearch(x, dir, fx, t, lo, hi, li)
		if !ok {
			// No step along the descent direction improves.
			converged = true
			break
		}
		for i := range x {
			dx[i] = next[i] - x[i]
		}
		x, fx = next, fn
		t = tk / g.set.Tau

		if g.ConvergedX(dx, x) {
			converged = true
			break
		}
	}
	return x, g.finish(converged, onBox(x, lo, hi)), nil
}
