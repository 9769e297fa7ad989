package integrators

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/numerix/internal/config"
	"github.com/san-kum/numerix/internal/equation"
	"github.com/san-kum/numerix/internal/logging"
)

// Stats are the running counters of one top-level Integrate call.
type Stats struct {
	Evaluations int
	MinStep     float64
	Splits      int

	// Unconverged counts pieces accepted because the split cap or the
	// minimum step was reached before the tolerance was met.
	Unconverged int
}

func (s Stats) Converged() bool { return s.Unconverged == 0 }

func newStats() *Stats {
	return &Stats{MinStep: math.Inf(1)}
}

func (s *Stats) step(dx float64) {
	s.MinStep = math.Min(s.MinStep, math.Abs(dx))
}

// Integrator computes definite integrals of a scalar-input equation.
type Integrator[T any] interface {
	Integrate(x0, x1 float64, li int) (T, Stats)
}

// Adaptive integrates an equation with a fixed-order rule, bisecting
// intervals until the whole and split estimates agree.
type Adaptive[T any] struct {
	alg     equation.Algebra[T]
	eqn     equation.Equation[T]
	set     Settings
	rule    Rule
	fine    Rule
	pRefine bool
	log     logrus.FieldLogger
}

// New builds an integrator for eqn. The equation is referenced, not owned.
func New[T any](alg equation.Algebra[T], eqn equation.Equation[T], set Settings) (*Adaptive[T], error) {
	info, err := Schemes.Get(string(set.Scheme))
	if err != nil {
		return nil, err
	}
	rule, err := info.rule(set)
	if err != nil {
		return nil, err
	}
	a := &Adaptive[T]{
		alg:     alg,
		eqn:     eqn,
		set:     set,
		rule:    rule,
		pRefine: info.pRefine,
		log:     logging.Discard(),
	}
	if a.pRefine {
		if a.fine, err = GaussLegendre(2 * rule.Order()); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// FromDict builds an integrator from a configuration dictionary.
func FromDict[T any](alg equation.Algebra[T], eqn equation.Equation[T], d *config.Dict) (*Adaptive[T], error) {
	set, err := SettingsFromDict(d)
	if err != nil {
		return nil, err
	}
	return New(alg, eqn, set)
}

func (a *Adaptive[T]) SetLogger(l logrus.FieldLogger) { a.log = logging.OrDiscard(l) }

func (a *Adaptive[T]) Settings() Settings { return a.set }
func (a *Adaptive[T]) Rule() Rule { return a.rule }

// adaptive combines the configured switch with the output type trait.
func (a *Adaptive[T]) adaptive() bool {
	return a.set.Adaptive && a.alg.Adaptive()
}

// Integrate returns the integral of the equation over [x0, x1]. It always
// returns an estimate; Stats tells whether every piece met the tolerance.
func (a *Adaptive[T]) Integrate(x0, x1 float64, li int) (T, Stats) {
	st := newStats()
	if x0 == x1 {
		st.MinStep = 0
		return a.alg.Zero(), *st
	}
	sign := 1.0
	if x1 < x0 {
		x0, x1 = x1, x0
		sign = -1
	}

	n := max(1, a.set.NIntervals)
	h := (x1 - x0) / float64(n)
	total := a.alg.Zero()

	var carry T
	haveCarry := false
	for k := 0; k < n; k++ {
		lo := x0 + float64(k)*h
		hi := lo + h
		if k == n-1 {
			hi = x1
		}
		st.step(hi - lo)

		var q T
		if a.pRefine {
			q = a.refineOrder(lo, hi, 0, li, st)
		} else {
			var s []T
			if haveCarry {
				s = a.sampleFrom(lo, hi, carry, li, st)
			} else {
				s = a.sample(lo, hi, li, st)
			}
			if a.rule.Closed {
				carry, haveCarry = s[len(s)-1], true
			}
			q = a.estimate(s, hi-lo)
			if a.adaptive() {
				q = a.refine(lo, hi, q, s, 0, li, st)
			}
		}
		total = a.alg.Add(total, q)
	}

	a.log.WithFields(logrus.Fields{
		"scheme":      a.set.Scheme,
		"evaluations": st.Evaluations,
		"minStep":     st.MinStep,
		"unconverged": st.Unconverged,
	}).Debug("integrated")

	return a.alg.Scale(total, sign), *st
}

func (a *Adaptive[T]) eval(x float64, li int, st *Stats) T {
	st.Evaluations++
	return a.eqn.FX(a.eqn.Domain().LimitScalar(x), li)
}

func (a *Adaptive[T]) sample(lo, hi float64, li int, st *Stats) []T {
	return sampleRule(a, a.rule, lo, hi, li, st)
}

// sampleFrom reuses the left end point value of a closed rule.
func (a *Adaptive[T]) sampleFrom(lo, hi float64, left T, li int, st *Stats) []T {
	s := make([]T, a.rule.Order())
	s[0] = left
	for i := 1; i < len(s); i++ {
		s[i] = a.eval(lo+a.rule.Nodes[i]*(hi-lo), li, st)
	}
	return s
}

func sampleRule[T any](a *Adaptive[T], r Rule, lo, hi float64, li int, st *Stats) []T {
	s := make([]T, r.Order())
	for i, t := range r.Nodes {
		s[i] = a.eval(lo+t*(hi-lo), li, st)
	}
	return s
}

func (a *Adaptive[T]) estimate(s []T, width float64) T {
	return weighted(a.alg, a.rule, s, width)
}

func weighted[T any](alg equation.Algebra[T], r Rule, s []T, width float64) T {
	sum := alg.Zero()
	for i, w := range r.Weights {
		sum = alg.Add(sum, alg.Scale(s[i], w))
	}
	return alg.Scale(sum, width)
}

// split returns the samples of the two halves of [lo, hi]. Closed rules
// keep every parent sample and only evaluate the new in-between nodes.
func (a *Adaptive[T]) split(lo, hi float64, s []T, li int, st *Stats) ([]T, []T) {
	mid := 0.5 * (lo + hi)
	if !a.rule.Closed {
		return a.sample(lo, mid, li, st), a.sample(mid, hi, li, st)
	}

	p := a.rule.Order() - 1
	fine := make([]T, 2*p+1)
	for i := 0; i <= p; i++ {
		fine[2*i] = s[i]
	}
	for i := 0; i < p; i++ {
		t := float64(2*i+1) / float64(2*p)
		fine[2*i+1] = a.eval(lo+t*(hi-lo), li, st)
	}
	return fine[:p+1], fine[p:]
}

// converged reports whether the split estimate can be accepted and whether
// that happened because a cap was reached rather than the tolerance.
func (a *Adaptive[T]) converged(whole, split T, dx float64, depth int) (stop, capped bool) {
	if a.withinTolerance(whole, split) {
		return true, false
	}
	if dx < a.set.MinStep || depth >= a.set.MaxSplits {
		return true, true
	}
	return false, false
}

func (a *Adaptive[T]) withinTolerance(whole, split T) bool {
	diff := a.alg.Mag(a.alg.Sub(whole, split))
	return diff < a.set.RelTol*math.Max(a.alg.Mag(whole), a.set.AbsTol)
}

func (a *Adaptive[T]) refine(lo, hi float64, whole T, s []T, depth int, li int, st *Stats) T {
	mid := 0.5 * (lo + hi)
	ls, rs := a.split(lo, hi, s, li, st)
	left := a.estimate(ls, mid-lo)
	right := a.estimate(rs, hi-mid)
	split := a.alg.Add(left, right)

	st.Splits++
	st.step(mid - lo)

	if stop, capped := a.converged(whole, split, mid-lo, depth+1); stop {
		if capped {
			st.Unconverged++
		}
		return split
	}

	return a.alg.Add(
		a.refine(lo, mid, left, ls, depth+1, li, st),
		a.refine(mid, hi, right, rs, depth+1, li, st),
	)
}

// refineOrder compares the n and 2n node Gaussian estimates on [lo, hi]
// and only bisects when they disagree.
func (a *Adaptive[T]) refineOrder(lo, hi float64, depth int, li int, st *Stats) T {
	fine := weighted(a.alg, a.fine, sampleRule(a, a.fine, lo, hi, li, st), hi-lo)
	if !a.adaptive() {
		return fine
	}
	coarse := weighted(a.alg, a.rule, sampleRule(a, a.rule, lo, hi, li, st), hi-lo)

	if stop, capped := a.converged(coarse, fine, hi-lo, depth); stop {
		if capped {
			st.Unconverged++
		}
		return fine
	}

	mid := 0.5 * (lo + hi)
	st.Splits++
	st.step(mid - lo)
	return a.alg.Add(
		a.refineOrder(lo, mid, depth+1, li, st),
		a.refineOrder(mid, hi, depth+1, li, st),
	)
}
