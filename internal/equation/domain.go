package equation

import (
	"fmt"
	"math"

	"github.com/san-kum/numerix/internal/config"
)

// DefaultStep is the relative finite-difference step used when none is configured.
const DefaultStep = 1e-6

// Domain is the box of validity of an equation's inputs together with the
// per-dimension finite-difference step.
type Domain struct {
	lower []float64
	upper []float64
	step  []float64
	expr  string
}

// NewDomain builds a domain from per-dimension bounds. Reversed bounds are
// swapped so that lower <= upper always holds.
func NewDomain(lower, upper []float64) (*Domain, error) {
	if len(lower) != len(upper) {
		return nil, fmt.Errorf("%w: %d lower bounds, %d upper bounds", ErrDimension, len(lower), len(upper))
	}
	if len(lower) == 0 {
		return nil, fmt.Errorf("%w: domain needs at least one dimension", ErrDimension)
	}
	d := &Domain{
		lower: make([]float64, len(lower)),
		upper: make([]float64, len(upper)),
		step:  make([]float64, len(lower)),
	}
	for i := range lower {
		lo, hi := lower[i], upper[i]
		if lo > hi {
			lo, hi = hi, lo
		}
		d.lower[i] = lo
		d.upper[i] = hi
		d.step[i] = DefaultStep
	}
	return d, nil
}

// NewInterval is a one dimensional domain.
func NewInterval(lo, hi float64) *Domain {
	d, _ := NewDomain([]float64{lo}, []float64{hi})
	return d
}

// NewBox is an n dimensional domain with identical bounds on every axis.
func NewBox(n int, lo, hi float64) *Domain {
	lower := make([]float64, n)
	upper := make([]float64, n)
	for i := range lower {
		lower[i] = lo
		upper[i] = hi
	}
	d, _ := NewDomain(lower, upper)
	return d
}

// Unbounded is an n dimensional domain covering the whole real space.
func Unbounded(n int) *Domain {
	return NewBox(n, math.Inf(-1), math.Inf(1))
}

// DomainFromDict reads lowerLimit, upperLimit, dx and expression. Bounds may
// be scalars applied to every dimension or per-dimension lists.
func DomainFromDict(dict *config.Dict, nVar int) (*Domain, error) {
	lower := dict.Floats("lowerLimit", nVar, math.Inf(-1), "lowerBound")
	upper := dict.Floats("upperLimit", nVar, math.Inf(1), "upperBound")
	d, err := NewDomain(lower, upper)
	if err != nil {
		return nil, err
	}
	copy(d.step, dict.Floats("dx", nVar, DefaultStep, "delta"))
	d.expr = dict.String("expression", "", "expr")
	return d, nil
}

func (d *Domain) NVar() int { return len(d.lower) }

func (d *Domain) Lower(i int) float64 { return d.lower[i] }
func (d *Domain) Upper(i int) float64 { return d.upper[i] }

func (d *Domain) LowerLimits() []float64 { return append([]float64(nil), d.lower...) }
func (d *Domain) UpperLimits() []float64 { return append([]float64(nil), d.upper...) }

func (d *Domain) Step(i int) float64 { return d.step[i] }

// SetStep changes the finite-difference step of dimension i.
func (d *Domain) SetStep(i int, h float64) { d.step[i] = math.Abs(h) }

func (d *Domain) Expression() string { return d.expr }

func (d *Domain) SetExpression(expr string) *Domain {
	d.expr = expr
	return d
}

// Limit clamps every component of x into the domain, in place.
func (d *Domain) Limit(x []float64) {
	for i := range x {
		if i >= len(d.lower) {
			return
		}
		x[i] = clamp(x[i], d.lower[i], d.upper[i])
	}
}

// LimitScalar clamps x into the first dimension.
func (d *Domain) LimitScalar(x float64) float64 {
	return clamp(x, d.lower[0], d.upper[0])
}

func (d *Domain) Contains(x []float64) bool {
	for i := range x {
		if i >= len(d.lower) {
			break
		}
		if x[i] < d.lower[i] || x[i] > d.upper[i] {
			return false
		}
	}
	return true
}

// OnBoundary reports whether any component of x sits on a finite bound.
func (d *Domain) OnBoundary(x []float64) bool {
	for i := range x {
		if i >= len(d.lower) {
			break
		}
		if x[i] == d.lower[i] || x[i] == d.upper[i] {
			return true
		}
	}
	return false
}

// Delta is the absolute central-difference half width at x along dimension i.
func (d *Domain) Delta(i int, x float64) float64 {
	return d.step[i] * math.Max(1, math.Abs(x))
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
