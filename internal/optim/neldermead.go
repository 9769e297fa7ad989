package optim

import (
	"math"
	"sort"

	"github.com/san-kum/numerix/internal/equation"
)

// Nelder-Mead coefficients
const (
	nmReflect  = 1.0
	nmExpand   = 2.0
	nmContract = 0.5
	nmShrink   = 0.5
)

// NelderMeadScheme moves a simplex of n+1 vertices by reflection,
// expansion, contraction and shrinking until the vertices and their values
// agree to tolerance.
type NelderMeadScheme struct {
	field
}

func NewNelderMead(eqn equation.UnivariateEquation[float64], set Settings) *NelderMeadScheme {
	return &NelderMeadScheme{field: newField(string(NelderMead), eqn, set)}
}

type vertex struct {
	x []float64
	f float64
}

func (s *NelderMeadScheme) Minimize(x0, xLow, xHigh []float64, li int) ([]float64, Status, error) {
	s.reset()
	x, lo, hi, err := s.bounds(x0, xLow, xHigh)
	if err != nil {
		return nil, Status{}, err
	}
	x = s.sample(x, lo, hi, li)
	n := len(x)

	simplex := make([]vertex, n+1)
	simplex[0] = vertex{x: x, f: s.f(x, li)}
	for i := 0; i < n; i++ {
		v := append([]float64(nil), x...)
		h := 0.1 * math.Max(1, math.Abs(x[i]))
		if !math.IsInf(hi[i]-lo[i], 0) {
			h = 0.05 * (hi[i] - lo[i])
		}
		if v[i]+h > hi[i] {
			h = -h
		}
		v[i] += h
		clampTo(v, lo, hi)
		simplex[i+1] = vertex{x: v, f: s.f(v, li)}
	}

	// affine returns c + a*(p - c), clamped into the box.
	affine := func(c, p []float64, a float64) vertex {
		v := make([]float64, n)
		for i := range v {
			v[i] = c[i] + a*(p[i]-c[i])
		}
		clampTo(v, lo, hi)
		return vertex{x: v, f: s.f(v, li)}
	}

	converged := false
	spread := make([]float64, n)
	centroid := make([]float64, n)
	for s.st.Steps < s.set.MaxSteps {
		sort.Slice(simplex, func(i, j int) bool { return simplex[i].f < simplex[j].f })
		best, worst := simplex[0], simplex[n]

		for i := range spread {
			spread[i] = 0
			for _, v := range simplex[1:] {
				spread[i] = math.Max(spread[i], math.Abs(v.x[i]-best.x[i]))
			}
		}
		if s.ConvergedX(spread, best.x) && s.ConvergedY(worst.f-best.f, best.f) {
			converged = true
			break
		}
		s.st.Steps++

		for i := range centroid {
			centroid[i] = 0
			for _, v := range simplex[:n] {
				centroid[i] += v.x[i]
			}
			centroid[i] /= float64(n)
		}

		r := affine(centroid, worst.x, -nmReflect)
		switch {
		case r.f < best.f:
			if e := affine(centroid, r.x, nmExpand); e.f < r.f {
				simplex[n] = e
			} else {
				simplex[n] = r
			}
		case r.f < simplex[n-1].f:
			simplex[n] = r
		default:
			var c vertex
			if r.f < worst.f {
				c = affine(centroid, r.x, nmContract)
			} else {
				c = affine(centroid, worst.x, nmContract)
			}
			if c.f < math.Min(r.f, worst.f) {
				simplex[n] = c
				break
			}
			for j := 1; j <= n; j++ {
				simplex[j] = affine(best.x, simplex[j].x, nmShrink)
			}
		}
	}

	sort.Slice(simplex, func(i, j int) bool { return simplex[i].f < simplex[j].f })
	best := simplex[0].x
	return best, s.finish(converged, onBox(best, lo, hi)), nil
}
