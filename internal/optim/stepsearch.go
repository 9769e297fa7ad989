package optim

import (
	"math"

	"github.com/san-kum/numerix/internal/equation"
)

// StepSearchScheme walks from x0 in steps of dx. A step that improves
// keeps the direction and widens the step; one that does not reverses
// direction and shrinks the step by Tau.
type StepSearchScheme struct {
	scalar
	step float64
}

// NewStepSearch takes the initial step; <= 0 picks a tenth of the bracket.
func NewStepSearch(eqn equation.Equation[float64], set Settings, step float64) *StepSearchScheme {
	return &StepSearchScheme{scalar: newScalar(string(StepSearch), eqn, set), step: step}
}

func (s *StepSearchScheme) Minimize(x0, xLow, xHigh float64, li int) (float64, Status) {
	s.reset()
	x, lo, hi := s.bracket(x0, xLow, xHigh)
	x, _, _ = s.sample(x, lo, hi, li)

	dx := s.step
	if dx <= 0 {
		if math.IsInf(hi-lo, 0) {
			dx = 0.1 * math.Max(1, math.Abs(x))
		} else {
			dx = 0.1 * (hi - lo)
		}
	}

	fx := s.f(x, li)
	dir := 1.0
	converged := false
	for s.st.Steps < s.set.MaxSteps {
		s.st.Steps++
		next := math.Min(math.Max(x+dir*dx, lo), hi)
		if next != x {
			if fn := s.f(next, li); fn < fx {
				x, fx = next, fn
				dx /= s.set.Tau
				continue
			}
		}
		dir = -dir
		dx *= s.set.Tau
		if s.ConvergedX([]float64{dx}, []float64{x}) {
			converged = true
			break
		}
	}
	return x, s.finish(converged, x <= lo || x >= hi)
}
