package integrators

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Rule is a fixed-order quadrature rule on the unit interval. Weights sum
// to one, so an estimate over [a, b] is (b-a) * sum w_i f(a + t_i (b-a)).
type Rule struct {
	Name    string
	Nodes   []float64
	Weights []float64

	// Closed rules have equally spaced nodes including both end points, so
	// every sample of a parent interval is reused when it is bisected.
	Closed bool

	// Degree is the highest polynomial degree integrated exactly.
	Degree int
}

// Newton-Cotes weights
var (
	MidpointRule = Rule{
		Name:    "midpoint",
		Nodes:   []float64{0.5},
		Weights: []float64{1},
		Degree:  1,
	}
	TrapezoidRule = Rule{
		Name:    "trapezoidal",
		Nodes:   []float64{0, 1},
		Weights: []float64{0.5, 0.5},
		Closed:  true,
		Degree:  1,
	}
	Simpson13Rule = Rule{
		Name:    "Simpson13",
		Nodes:   []float64{0, 0.5, 1},
		Weights: []float64{1.0 / 6.0, 4.0 / 6.0, 1.0 / 6.0},
		Closed:  true,
		Degree:  3,
	}
	Simpson38Rule = Rule{
		Name:    "Simpson38",
		Nodes:   []float64{0, 1.0 / 3.0, 2.0 / 3.0, 1},
		Weights: []float64{1.0 / 8.0, 3.0 / 8.0, 3.0 / 8.0, 1.0 / 8.0},
		Closed:  true,
		Degree:  3,
	}
	BooleRule = Rule{
		Name:    "Boole",
		Nodes:   []float64{0, 0.25, 0.5, 0.75, 1},
		Weights: []float64{7.0 / 90.0, 32.0 / 90.0, 12.0 / 90.0, 32.0 / 90.0, 7.0 / 90.0},
		Closed:  true,
		Degree:  5,
	}
)

// Order is the number of nodes.
func (r Rule) Order() int { return len(r.Nodes) }

// GaussLegendre returns the n-node Gauss-Legendre rule mapped to [0, 1].
// Nodes come from the eigenvalues of the Jacobi matrix (Golub-Welsch) and
// are polished with Newton iterations on P_n.
func GaussLegendre(n int) (Rule, error) {
	if n < 1 {
		return Rule{}, fmt.Errorf("integrators: Gauss-Legendre needs at least one node, got %d", n)
	}
	if n == 1 {
		return Rule{Name: "Gaussian1", Nodes: []float64{0.5}, Weights: []float64{1}, Degree: 1}, nil
	}

	jacobi := mat.NewSymDense(n, nil)
	for k := 1; k < n; k++ {
		beta := float64(k) / math.Sqrt(4*float64(k*k)-1)
		jacobi.SetSym(k-1, k, beta)
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(jacobi, false); !ok {
		return Rule{}, fmt.Errorf("integrators: Jacobi matrix factorization failed for n=%d", n)
	}
	roots := eig.Values(nil)
	sort.Float64s(roots)

	nodes := make([]float64, n)
	weights := make([]float64, n)
	for i, t := range roots {
		for iter := 0; iter < 5; iter++ {
			p, dp := legendre(n, t)
			dt := p / dp
			t -= dt
			if math.Abs(dt) < 1e-16 {
				break
			}
		}
		_, dp := legendre(n, t)
		w := 2 / ((1 - t*t) * dp * dp)

		nodes[i] = 0.5 * (t + 1)
		weights[i] = 0.5 * w
	}

	return Rule{
		Name:    fmt.Sprintf("Gaussian%d", n),
		Nodes:   nodes,
		Weights: weights,
		Degree:  2*n - 1,
	}, nil
}

// legendre evaluates P_n(t) and its derivative by the three-term recurrence.
func legendre(n int, t float64) (float64, float64) {
	p0, p1 := 1.0, t
	for k := 2; k <= n; k++ {
		p0, p1 = p1, ((2*float64(k)-1)*t*p1-float64(k-1)*p0)/float64(k)
	}
	dp := float64(n) * (t*p1 - p0) / (t*t - 1)
	return p1, dp
}
