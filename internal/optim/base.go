package optim

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/numerix/internal/equation"
	"github.com/san-kum/numerix/internal/logging"
)

// base carries what every scheme shares: settings, the evaluation counter
// and the end-of-run report.
type base struct {
	name string
	set  Settings
	log  logrus.FieldLogger
	st   Status
}

func newBase(name string, set Settings) base {
	return base{name: name, set: set, log: logging.Discard()}
}

func (b *base) SetLogger(l logrus.FieldLogger) { b.log = logging.OrDiscard(l) }

func (b *base) Settings() Settings { return b.set }

func (b *base) reset() { b.st = Status{} }

// ConvergedX tests per-dimension changes dx at the point x.
func (b *base) ConvergedX(dx, x []float64) bool {
	for i := range dx {
		if !b.within(dx[i], x[i], at(b.set.XTol, i), at(b.set.XRelTol, i)) {
			return false
		}
	}
	return true
}

// ConvergedY tests a change dy in the objective value y.
func (b *base) ConvergedY(dy, y float64) bool {
	return b.within(dy, y, at(b.set.YTol, 0), at(b.set.YRelTol, 0))
}

func (b *base) within(delta, ref, tol, relTol float64) bool {
	if math.Abs(delta) < tol {
		return true
	}
	return b.set.Normalise && equation.RelativeError(delta, ref) < relTol
}

// at returns s[i], or the last entry when s is shorter.
func at(s []float64, i int) float64 {
	if len(s) == 0 {
		return 0
	}
	if i >= len(s) {
		return s[len(s)-1]
	}
	return s[i]
}

func (b *base) finish(converged, onBounds bool) Status {
	switch {
	case converged:
		b.st.Outcome = Converged
	case onBounds:
		b.st.Outcome = HitBounds
	default:
		b.st.Outcome = HitIterationCap
	}
	if b.set.Debug {
		entry := b.log.WithFields(logrus.Fields{
			"scheme":      b.name,
			"steps":       b.st.Steps,
			"evaluations": b.st.Evaluations,
		})
		if converged {
			entry.Info(b.st.Outcome.String())
		} else {
			entry.Warn(b.st.Outcome.String())
		}
	}
	return b.st
}

// scalar evaluates a scalar-input equation with clamping.
type scalar struct {
	base
	eqn equation.Equation[float64]
	dom *equation.Domain
}

func newScalar(name string, eqn equation.Equation[float64], set Settings) scalar {
	return scalar{base: newBase(name, set), eqn: eqn, dom: eqn.Domain()}
}

func (s *scalar) f(x float64, li int) float64 {
	s.st.Evaluations++
	return s.eqn.FX(s.dom.LimitScalar(x), li)
}

// bracket orders and clamps [lo, hi] and puts x0 inside it.
func (s *scalar) bracket(x0, lo, hi float64) (float64, float64, float64) {
	if hi < lo {
		lo, hi = hi, lo
	}
	lo, hi = s.dom.LimitScalar(lo), s.dom.LimitScalar(hi)
	return math.Min(math.Max(x0, lo), hi), lo, hi
}

func (s *scalar) onBounds(x float64) bool {
	return s.dom.OnBoundary([]float64{x})
}

// sample narrows [lo, hi] to the neighbourhood of the best of NSamples
// cell midpoints.
func (s *scalar) sample(x0, lo, hi float64, li int) (float64, float64, float64) {
	n := s.set.NSamples
	if n <= 0 {
		return x0, lo, hi
	}
	grid := NewGridSearch([]float64{lo}, []float64{hi}, n)
	best, _ := grid.Search(func(x []float64) float64 { return s.f(x[0], li) })
	h := (hi - lo) / float64(n)
	return best[0], math.Max(lo, best[0]-h), math.Min(hi, best[0]+h)
}

// field evaluates a several-variable equation with clamping.
type field struct {
	base
	eqn equation.UnivariateEquation[float64]
	dom *equation.Domain
}

func newField(name string, eqn equation.UnivariateEquation[float64], set Settings) field {
	return field{base: newBase(name, set), eqn: eqn, dom: eqn.Domain()}
}

// f evaluates at a clamped copy of x.
func (m *field) f(x []float64, li int) float64 {
	m.st.Evaluations++
	y := append([]float64(nil), x...)
	m.dom.Limit(y)
	return m.eqn.FX(y, li)
}

// bounds returns the search box: the intersection of [lo, hi] with the
// domain, and x0 clamped into it.
func (m *field) bounds(x0, lo, hi []float64) (x, l, h []float64, err error) {
	n := m.dom.NVar()
	if len(x0) != n || len(lo) != n || len(hi) != n {
		return nil, nil, nil, dimensionError(n, len(x0), len(lo), len(hi))
	}
	x = make([]float64, n)
	l = make([]float64, n)
	h = make([]float64, n)
	for i := 0; i < n; i++ {
		a, b := lo[i], hi[i]
		if b < a {
			a, b = b, a
		}
		l[i] = math.Max(a, m.dom.Lower(i))
		h[i] = math.Min(b, m.dom.Upper(i))
		x[i] = math.Min(math.Max(x0[i], l[i]), h[i])
	}
	return x, l, h, nil
}

// sample starts from the best grid cell when NSamples is set. Unbounded
// axes are not sampled.
func (m *field) sample(x0, lo, hi []float64, li int) []float64 {
	if m.set.NSamples <= 0 {
		return x0
	}
	for i := range lo {
		if math.IsInf(lo[i], 0) || math.IsInf(hi[i], 0) {
			return x0
		}
	}
	grid := NewGridSearch(lo, hi, m.set.NSamples)
	best, fBest := grid.Search(func(x []float64) float64 { return m.f(x, li) })
	if fBest < m.f(x0, li) {
		return best
	}
	return x0
}

func clampTo(x, lo, hi []float64) {
	for i := range x {
		x[i] = math.Min(math.Max(x[i], lo[i]), hi[i])
	}
}

func onBox(x, lo, hi []float64) bool {
	for i := range x {
		if x[i] <= lo[i] || x[i] >= hi[i] {
			return true
		}
	}
	return false
}
