package integrators

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/numerix/internal/config"
	"github.com/san-kum/numerix/internal/equation"
	"github.com/san-kum/numerix/internal/logging"
)

// Multivariate integrates a field over a hyper-rectangle with the tensor
// product of a one dimensional rule. Boxes are bisected one axis at a time
// and accepted only once every axis has converged on the current path.
type Multivariate[T any] struct {
	alg  equation.Algebra[T]
	eqn  equation.UnivariateEquation[T]
	set  Settings
	rule Rule
	log  logrus.FieldLogger
}

func NewMultivariate[T any](alg equation.Algebra[T], eqn equation.UnivariateEquation[T], set Settings) (*Multivariate[T], error) {
	info, err := Schemes.Get(string(set.Scheme))
	if err != nil {
		return nil, err
	}
	rule, err := info.rule(set)
	if err != nil {
		return nil, err
	}
	return &Multivariate[T]{
		alg:  alg,
		eqn:  eqn,
		set:  set,
		rule: rule,
		log:  logging.Discard(),
	}, nil
}

func MultivariateFromDict[T any](alg equation.Algebra[T], eqn equation.UnivariateEquation[T], d *config.Dict) (*Multivariate[T], error) {
	set, err := SettingsFromDict(d)
	if err != nil {
		return nil, err
	}
	return NewMultivariate(alg, eqn, set)
}

func (m *Multivariate[T]) SetLogger(l logrus.FieldLogger) { m.log = logging.OrDiscard(l) }

type box struct {
	lo, hi []float64
}

func (b box) halves(dir int) (box, box) {
	mid := 0.5 * (b.lo[dir] + b.hi[dir])
	left := box{lo: append([]float64(nil), b.lo...), hi: append([]float64(nil), b.hi...)}
	right := box{lo: append([]float64(nil), b.lo...), hi: append([]float64(nil), b.hi...)}
	left.hi[dir] = mid
	right.lo[dir] = mid
	return left, right
}

func (b box) volume() float64 {
	v := 1.0
	for i := range b.lo {
		v *= b.hi[i] - b.lo[i]
	}
	return v
}

// Integrate returns the integral over the box [lower, upper].
func (m *Multivariate[T]) Integrate(lower, upper []float64, li int) (T, Stats, error) {
	st := newStats()
	n := m.eqn.Domain().NVar()
	if len(lower) != n || len(upper) != n {
		return m.alg.Zero(), *st, fmt.Errorf("%w: box has %d/%d bounds, equation has %d variables",
			equation.ErrDimension, len(lower), len(upper), n)
	}

	lo := append([]float64(nil), lower...)
	hi := append([]float64(nil), upper...)
	sign := 1.0
	for i := range lo {
		if lo[i] == hi[i] {
			st.MinStep = 0
			return m.alg.Zero(), *st, nil
		}
		if hi[i] < lo[i] {
			lo[i], hi[i] = hi[i], lo[i]
			sign = -sign
		}
	}

	total := m.alg.Zero()
	for _, cell := range m.grid(box{lo: lo, hi: hi}) {
		for i := range cell.lo {
			st.step(cell.hi[i] - cell.lo[i])
		}
		s := m.sample(cell, li, st)
		q := m.estimate(cell, s)
		if m.set.Adaptive && m.alg.Adaptive() {
			q = m.refine(cell, s, q, 0, make([]bool, n), 0, li, st)
		}
		total = m.alg.Add(total, q)
	}

	m.log.WithFields(logrus.Fields{
		"scheme":      m.set.Scheme,
		"dimensions":  n,
		"evaluations": st.Evaluations,
		"unconverged": st.Unconverged,
	}).Debug("integrated box")

	return m.alg.Scale(total, sign), *st, nil
}

// grid cuts the box into NIntervals cells per axis.
func (m *Multivariate[T]) grid(b box) []box {
	k := max(1, m.set.NIntervals)
	cells := []box{b}
	for dir := range b.lo {
		next := make([]box, 0, len(cells)*k)
		for _, c := range cells {
			h := (c.hi[dir] - c.lo[dir]) / float64(k)
			for j := 0; j < k; j++ {
				cell := box{lo: append([]float64(nil), c.lo...), hi: append([]float64(nil), c.hi...)}
				cell.lo[dir] = c.lo[dir] + float64(j)*h
				if j < k-1 {
					cell.hi[dir] = cell.lo[dir] + h
				}
				next = append(next, cell)
			}
		}
		cells = next
	}
	return cells
}

// flat maps a multi-index to its slot, axis 0 varying fastest.
func flat(idx, dims []int) int {
	k, stride := 0, 1
	for d := range idx {
		k += idx[d] * stride
		stride *= dims[d]
	}
	return k
}

// advance steps idx to the next multi-index and reports false after the last.
func advance(idx, dims []int) bool {
	for d := range idx {
		idx[d]++
		if idx[d] < dims[d] {
			return true
		}
		idx[d] = 0
	}
	return false
}

func size(dims []int) int {
	k := 1
	for _, d := range dims {
		k *= d
	}
	return k
}

func (m *Multivariate[T]) dims(n int) []int {
	dims := make([]int, n)
	for d := range dims {
		dims[d] = m.rule.Order()
	}
	return dims
}

func (m *Multivariate[T]) eval(x []float64, li int, st *Stats) T {
	m.eqn.Domain().Limit(x)
	st.Evaluations++
	return m.eqn.FX(x, li)
}

// sample evaluates the equation on the tensor-product nodes of b.
func (m *Multivariate[T]) sample(b box, li int, st *Stats) []T {
	n := len(b.lo)
	dims := m.dims(n)
	s := make([]T, size(dims))
	idx := make([]int, n)
	x := make([]float64, n)
	for {
		for d := range x {
			x[d] = b.lo[d] + m.rule.Nodes[idx[d]]*(b.hi[d]-b.lo[d])
		}
		s[flat(idx, dims)] = m.eval(x, li, st)
		if !advance(idx, dims) {
			break
		}
	}
	return s
}

// estimate applies the tensor-product rule to the samples of b.
func (m *Multivariate[T]) estimate(b box, s []T) T {
	n := len(b.lo)
	dims := m.dims(n)
	idx := make([]int, n)
	sum := m.alg.Zero()
	for {
		w := 1.0
		for d := range idx {
			w *= m.rule.Weights[idx[d]]
		}
		sum = m.alg.Add(sum, m.alg.Scale(s[flat(idx, dims)], w))
		if !advance(idx, dims) {
			break
		}
	}
	return m.alg.Scale(sum, b.volume())
}

// split halves b along dir and returns both halves with their samples.
// Closed rules keep every parent sample and only evaluate the new node
// layers along dir, the shared mid face included once.
func (m *Multivariate[T]) split(b box, s []T, dir int, li int, st *Stats) (box, []T, box, []T) {
	left, right := b.halves(dir)
	if !m.rule.Closed {
		return left, m.sample(left, li, st), right, m.sample(right, li, st)
	}

	n := len(b.lo)
	p := m.rule.Order() - 1
	dims := m.dims(n)
	fineDims := m.dims(n)
	fineDims[dir] = 2*p + 1

	fine := make([]T, size(fineDims))
	idx := make([]int, n)
	x := make([]float64, n)
	for {
		k := flat(idx, fineDims)
		j := idx[dir]
		if j%2 == 0 {
			idx[dir] = j / 2
			fine[k] = s[flat(idx, dims)]
			idx[dir] = j
		} else {
			for d := range x {
				if d != dir {
					x[d] = b.lo[d] + m.rule.Nodes[idx[d]]*(b.hi[d]-b.lo[d])
				}
			}
			x[dir] = b.lo[dir] + float64(j)/float64(2*p)*(b.hi[dir]-b.lo[dir])
			fine[k] = m.eval(x, li, st)
		}
		if !advance(idx, fineDims) {
			break
		}
	}

	half := func(offset int) []T {
		c := make([]T, size(dims))
		idx := make([]int, n)
		for {
			k := flat(idx, dims)
			idx[dir] += offset
			c[k] = fine[flat(idx, fineDims)]
			idx[dir] -= offset
			if !advance(idx, dims) {
				break
			}
		}
		return c
	}
	return left, half(0), right, half(p)
}

// refine bisects b along dir, cycling axes, until every axis has converged
// on the current path or the path holds MaxSplits bisections.
func (m *Multivariate[T]) refine(b box, s []T, whole T, dir int, conv []bool, depth int, li int, st *Stats) T {
	n := len(b.lo)
	left, ls, right, rs := m.split(b, s, dir, li, st)
	ql := m.estimate(left, ls)
	qr := m.estimate(right, rs)
	split := m.alg.Add(ql, qr)

	width := left.hi[dir] - left.lo[dir]
	st.Splits++
	st.step(width)

	conv = append([]bool(nil), conv...)
	diff := m.alg.Mag(m.alg.Sub(whole, split))
	conv[dir] = diff < m.set.RelTol*math.Max(m.alg.Mag(whole), m.set.AbsTol)

	forced := false
	if !conv[dir] && width < m.set.MinStep {
		conv[dir] = true
		forced = true
	}

	all := true
	for _, c := range conv {
		all = all && c
	}
	capped := depth+1 >= m.set.MaxSplits
	if all || capped {
		if forced || !all {
			st.Unconverged++
		}
		return split
	}

	next := (dir + 1) % n
	return m.alg.Add(
		m.refine(left, ls, ql, next, conv, depth+1, li, st),
		m.refine(right, rs, qr, next, conv, depth+1, li, st),
	)
}
