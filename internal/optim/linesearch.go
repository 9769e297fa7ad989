package optim

import (
	"github.com/san-kum/numerix/internal/equation"
)

// lineSearch backtracks along dir from x, starting at step t0 and shrinking
// by Tau, until the objective drops below fx. It gives up after MaxSteps
// attempts and then returns x unchanged.
func (m *field) lineSearch(x, dir []float64, fx, t0 float64, lo, hi []float64, li int) ([]float64, float64, float64, bool) {
	line := equation.NewLine(m.eqn, x, dir, 0, t0)
	next := make([]float64, len(x))
	t := t0
	for k := 0; k < m.set.MaxSteps; k++ {
		line.Point(t, next)
		clampTo(next, lo, hi)
		if fn := m.f(next, li); fn < fx {
			return next, fn, t, true
		}
		t *= m.set.Tau
	}
	return x, fx, t, false
}
