package equation

import (
	"fmt"
	"math"
	"strings"
)

// CoefficientOwning equations expose a tunable coefficient vector.
type CoefficientOwning interface {
	NCoeffs() int
	Coeffs() []float64

	// SetCoeffs overwrites the coefficients in place.
	SetCoeffs(c []float64) error
}

// CoefficientEquation is a scalar field whose formula depends on its
// coefficients. CoeffJ returns df/dc_k at x.
type CoefficientEquation interface {
	UnivariateEquation[float64]
	CoefficientOwning
	CoeffJ(x []float64, li int) []float64
}

// LinearInCoefficients marks equations where f(x) = sum_k c_k * CoeffJ(x)_k.
// Such equations can be fitted in a single linear solve.
type LinearInCoefficients interface {
	CoefficientEquation
	LinearInCoefficients()
}

type coeffs struct {
	c []float64
}

func (c *coeffs) NCoeffs() int { return len(c.c) }

func (c *coeffs) Coeffs() []float64 { return append([]float64(nil), c.c...) }

func (c *coeffs) SetCoeffs(v []float64) error {
	if len(v) != len(c.c) {
		return fmt.Errorf("%w: want %d coefficients, got %d", ErrDimension, len(c.c), len(v))
	}
	copy(c.c, v)
	return nil
}

// Linear is y = c0 + c1*x1 + ... + cn*xn.
type Linear struct {
	coeffs
	dom *Domain
}

// NewLinear returns a linear equation over dom with zero coefficients.
func NewLinear(dom *Domain) *Linear {
	return &Linear{
		coeffs: coeffs{c: make([]float64, dom.NVar()+1)},
		dom:    dom,
	}
}

func (l *Linear) Name() string { return "linear" }
func (l *Linear) Domain() *Domain { return l.dom }

func (l *Linear) FX(x []float64, _ int) float64 {
	y := l.c[0]
	for i, xi := range x {
		y += l.c[i+1] * xi
	}
	return y
}

func (l *Linear) Gradient(x []float64, _ int) []float64 {
	return append([]float64(nil), l.c[1:]...)
}

func (l *Linear) CoeffJ(x []float64, _ int) []float64 {
	j := make([]float64, len(l.c))
	j[0] = 1
	copy(j[1:], x)
	return j
}

func (l *Linear) LinearInCoefficients() {}

func (l *Linear) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%g", l.c[0])
	for i, c := range l.c[1:] {
		fmt.Fprintf(&b, " + %g*x%d", c, i+1)
	}
	return b.String()
}

// PolynomialFit is y = c0 + c1*x + ... + cd*x^d in one variable.
type PolynomialFit struct {
	coeffs
	dom *Domain
}

func NewPolynomialFit(dom *Domain, degree int) *PolynomialFit {
	return &PolynomialFit{
		coeffs: coeffs{c: make([]float64, degree+1)},
		dom:    dom,
	}
}

func (p *PolynomialFit) Name() string { return "polynomial" }
func (p *PolynomialFit) Domain() *Domain { return p.dom }

func (p *PolynomialFit) FX(x []float64, _ int) float64 {
	return horner(p.c, x[0])
}

func (p *PolynomialFit) CoeffJ(x []float64, _ int) []float64 {
	j := make([]float64, len(p.c))
	pow := 1.0
	for k := range j {
		j[k] = pow
		pow *= x[0]
	}
	return j
}

func (p *PolynomialFit) LinearInCoefficients() {}

// Exponential is y = c0 * exp(c1 * x), nonlinear in c1.
type Exponential struct {
	coeffs
	dom *Domain
}

func NewExponential(dom *Domain, c0, c1 float64) *Exponential {
	return &Exponential{
		coeffs: coeffs{c: []float64{c0, c1}},
		dom:    dom,
	}
}

func (e *Exponential) Name() string { return "exponential" }
func (e *Exponential) Domain() *Domain { return e.dom }

func (e *Exponential) FX(x []float64, _ int) float64 {
	return e.c[0] * math.Exp(e.c[1]*x[0])
}

func (e *Exponential) CoeffJ(x []float64, _ int) []float64 {
	ex := math.Exp(e.c[1] * x[0])
	return []float64{ex, e.c[0] * x[0] * ex}
}

func horner(c []float64, x float64) float64 {
	y := 0.0
	for k := len(c) - 1; k >= 0; k-- {
		y = y*x + c[k]
	}
	return y
}
