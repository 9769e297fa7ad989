package optim

import (
	"math"
	"sort"

	"github.com/san-kum/numerix/internal/equation"
)

// ShubertPiyavskiiScheme is a global minimizer for Lipschitz functions.
// It keeps every evaluated point and always evaluates next at the minimum
// of the saw-tooth lower envelope.
type ShubertPiyavskiiScheme struct {
	scalar
	lipschitz float64
}

// NewShubertPiyavskii takes the Lipschitz constant L. With L <= 0 it is
// estimated from the steepest slope between sampled points.
func NewShubertPiyavskii(eqn equation.Equation[float64], set Settings, lipschitz float64) *ShubertPiyavskiiScheme {
	return &ShubertPiyavskiiScheme{
		scalar:    newScalar(string(ShubertPiyavskii), eqn, set),
		lipschitz: lipschitz,
	}
}

type point struct{ x, f float64 }

// DefaultLipschitzSamples is the sample count used to estimate L when
// NSamples is unset.
const DefaultLipschitzSamples = 16

func (s *ShubertPiyavskiiScheme) Minimize(x0, xLow, xHigh float64, li int) (float64, Status) {
	s.reset()
	x0, lo, hi := s.bracket(x0, xLow, xHigh)
	if hi == lo {
		return lo, s.finish(true, true)
	}

	pts := []point{{lo, s.f(lo, li)}, {hi, s.f(hi, li)}}
	if x0 > lo && x0 < hi {
		pts = append(pts, point{x0, s.f(x0, li)})
	}
	L := s.lipschitz
	if L <= 0 {
		n := s.set.NSamples
		if n <= 0 {
			n = DefaultLipschitzSamples
		}
		for j := 1; j < n; j++ {
			x := lo + float64(j)*(hi-lo)/float64(n)
			pts = append(pts, point{x, s.f(x, li)})
		}
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].x < pts[j].x })
	pts = dedupe(pts)
	if L <= 0 {
		L = 1.5 * steepest(pts)
	}

	converged := false
	for s.st.Steps < s.set.MaxSteps {
		s.st.Steps++
		best := lowest(pts)
		k, bound := envelope(pts, L)

		left, right := pts[k], pts[k+1]
		if s.ConvergedY(best.f-bound, best.f) || s.ConvergedX([]float64{right.x - left.x}, []float64{best.x}) {
			converged = true
			break
		}

		x := 0.5*(left.x+right.x) + (left.f-right.f)/(2*L)
		x = math.Min(math.Max(x, left.x), right.x)
		p := point{x, s.f(x, li)}

		pts = append(pts, point{})
		copy(pts[k+2:], pts[k+1:])
		pts[k+1] = p
	}

	best := lowest(pts)
	return best.x, s.finish(converged, false)
}

// envelope returns the interval whose saw-tooth minimum is lowest and
// that minimum.
func envelope(pts []point, L float64) (int, float64) {
	k, bound := 0, math.Inf(1)
	for i := 0; i+1 < len(pts); i++ {
		b := 0.5*(pts[i].f+pts[i+1].f) - 0.5*L*(pts[i+1].x-pts[i].x)
		if b < bound {
			k, bound = i, b
		}
	}
	return k, bound
}

func lowest(pts []point) point {
	best := pts[0]
	for _, p := range pts[1:] {
		if p.f < best.f {
			best = p
		}
	}
	return best
}

func steepest(pts []point) float64 {
	s := equation.Small
	for i := 0; i+1 < len(pts); i++ {
		dx := pts[i+1].x - pts[i].x
		if dx > 0 {
			s = math.Max(s, math.Abs(pts[i+1].f-pts[i].f)/dx)
		}
	}
	return s
}

func dedupe(pts []point) []point {
	out := pts[:1]
	for _, p := range pts[1:] {
		if p.x > out[len(out)-1].x {
			out = append(out, p)
		}
	}
	return out
}
