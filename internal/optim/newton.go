package optim

import (
	"math"

	"github.com/san-kum/numerix/internal/equation"
)

// NewtonRaphsonScheme iterates x - f'(x)/f''(x) inside the bracket.
type NewtonRaphsonScheme struct {
	scalar
	d2 equation.TwiceDifferentiable[float64]
}

// NewNewtonRaphson fails with a *equation.NotImplementedError when eqn has
// no analytic second derivative.
func NewNewtonRaphson(eqn equation.Equation[float64], set Settings) (*NewtonRaphsonScheme, error) {
	d2, ok := eqn.(equation.TwiceDifferentiable[float64])
	if !ok {
		_, err := equation.D2FDX2(eqn, 0, 0)
		return nil, err
	}
	return &NewtonRaphsonScheme{scalar: newScalar(string(NewtonRaphson), eqn, set), d2: d2}, nil
}

func (n *NewtonRaphsonScheme) Minimize(x0, xLow, xHigh float64, li int) (float64, Status) {
	n.reset()
	x, lo, hi := n.bracket(x0, xLow, xHigh)
	x, _, _ = n.sample(x, lo, hi, li)

	converged := false
	for n.st.Steps < n.set.MaxSteps {
		n.st.Steps++
		n.st.Evaluations += 2
		g := n.d2.DFDX(x, li)
		h := n.d2.D2FDX2(x, li)
		if math.Abs(g) < at(n.set.YTol, 0) {
			converged = true
			break
		}
		if h == 0 {
			break
		}
		next := math.Min(math.Max(x-g/h, lo), hi)
		dx := next - x
		x = next
		if n.ConvergedX([]float64{dx}, []float64{x}) {
			converged = true
			break
		}
	}
	return x, n.finish(converged, x <= lo || x >= hi)
}
