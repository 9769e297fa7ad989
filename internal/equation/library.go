package equation

import (
	"fmt"
	"math"

	"github.com/san-kum/numerix/internal/config"
)

// Polynomial is sum_k c_k x^k with analytic derivatives up to third order.
type Polynomial struct {
	dom *Domain
	c   []float64
	d1  []float64
	d2  []float64
	d3  []float64
}

// NewPolynomial takes coefficients in ascending order of power.
func NewPolynomial(dom *Domain, c ...float64) *Polynomial {
	p := &Polynomial{dom: dom, c: append([]float64(nil), c...)}
	p.d1 = derive(p.c)
	p.d2 = derive(p.d1)
	p.d3 = derive(p.d2)
	return p
}

func derive(c []float64) []float64 {
	if len(c) <= 1 {
		return nil
	}
	d := make([]float64, len(c)-1)
	for k := 1; k < len(c); k++ {
		d[k-1] = float64(k) * c[k]
	}
	return d
}

func (p *Polynomial) Name() string { return "polynomial" }
func (p *Polynomial) Domain() *Domain { return p.dom }
func (p *Polynomial) FX(x float64, _ int) float64 { return horner(p.c, x) }
func (p *Polynomial) DFDX(x float64, _ int) float64 { return horner(p.d1, x) }
func (p *Polynomial) D2FDX2(x float64, _ int) float64 { return horner(p.d2, x) }
func (p *Polynomial) D3FDX3(x float64, _ int) float64 { return horner(p.d3, x) }

// Integral is the exact definite integral over [a, b].
func (p *Polynomial) Integral(a, b float64) float64 {
	anti := make([]float64, len(p.c)+1)
	for k, c := range p.c {
		anti[k+1] = c / float64(k+1)
	}
	return horner(anti, b) - horner(anti, a)
}

func (p *Polynomial) Degree() int { return len(p.c) - 1 }

// FunctionName identifies a library equation.
type FunctionName string

const (
	FnPolynomial FunctionName = "polynomial"
	FnQuadratic  FunctionName = "quadratic"
	FnSine       FunctionName = "sine"
	FnRunge      FunctionName = "runge"
	FnExp        FunctionName = "exp"
	FnRastrigin  FunctionName = "rastrigin"

	FnSphere     FunctionName = "sphere"
	FnRosenbrock FunctionName = "rosenbrock"
	FnHimmelblau FunctionName = "himmelblau"

	FnLinear      FunctionName = "linear"
	FnExponential FunctionName = "exponential"
)

type (
	ScalarCtor      func(dict *config.Dict) (TwiceDifferentiable[float64], error)
	FieldCtor       func(dict *config.Dict) (UnivariateEquation[float64], error)
	CoefficientCtor func(dict *config.Dict) (CoefficientEquation, error)
)

// ScalarFunctions holds the scalar-input library equations.
var ScalarFunctions = config.NewRegistry[FunctionName, ScalarCtor]("function")

// FieldFunctions holds the several-variable library equations.
var FieldFunctions = config.NewRegistry[FunctionName, FieldCtor]("field")

// CoefficientModels holds the fittable equations.
var CoefficientModels = config.NewRegistry[FunctionName, CoefficientCtor]("model")

func init() {
	ScalarFunctions.Register(FnPolynomial, func(d *config.Dict) (TwiceDifferentiable[float64], error) {
		dom, err := DomainFromDict(d, 1)
		if err != nil {
			return nil, err
		}
		c := d.FloatList("coeffs", nil, "coefficients")
		if len(c) == 0 {
			return nil, fmt.Errorf("%w: polynomial needs coeffs", config.ErrMissingKey)
		}
		return NewPolynomial(dom, c...), nil
	})
	ScalarFunctions.Register(FnQuadratic, func(d *config.Dict) (TwiceDifferentiable[float64], error) {
		dom, err := DomainFromDict(d, 1)
		if err != nil {
			return nil, err
		}
		a := d.Float("scale", 1)
		x0 := d.Float("center", 0)
		y0 := d.Float("offset", 0)
		return NewPolynomial(dom, a*x0*x0+y0, -2*a*x0, a), nil
	})
	ScalarFunctions.Register(FnSine, func(d *config.Dict) (TwiceDifferentiable[float64], error) {
		dom, err := DomainFromDict(d, 1)
		if err != nil {
			return nil, err
		}
		return NewSine(dom, d.Float("amplitude", 1), d.Float("frequency", 1), d.Float("phase", 0)), nil
	})
	ScalarFunctions.Register(FnRunge, func(d *config.Dict) (TwiceDifferentiable[float64], error) {
		dom, err := DomainFromDict(d, 1)
		if err != nil {
			return nil, err
		}
		return NewRunge(dom), nil
	})
	ScalarFunctions.Register(FnExp, func(d *config.Dict) (TwiceDifferentiable[float64], error) {
		dom, err := DomainFromDict(d, 1)
		if err != nil {
			return nil, err
		}
		k := d.Float("rate", 1)
		a := d.Float("amplitude", 1)
		return NewSmooth("exp", dom,
			func(x float64) float64 { return a * math.Exp(k*x) },
			func(x float64) float64 { return a * k * math.Exp(k*x) },
			func(x float64) float64 { return a * k * k * math.Exp(k*x) },
		), nil
	})
	ScalarFunctions.Register(FnRastrigin, func(d *config.Dict) (TwiceDifferentiable[float64], error) {
		dom, err := DomainFromDict(d, 1)
		if err != nil {
			return nil, err
		}
		return NewRastrigin(dom, d.Float("A", 10)), nil
	})

	FieldFunctions.Register(FnSphere, func(d *config.Dict) (UnivariateEquation[float64], error) {
		n := d.Int("nVar", 2)
		dom, err := DomainFromDict(d, n)
		if err != nil {
			return nil, err
		}
		return NewSphere(dom, d.Floats("center", n, 0)), nil
	})
	FieldFunctions.Register(FnRosenbrock, func(d *config.Dict) (UnivariateEquation[float64], error) {
		dom, err := DomainFromDict(d, 2)
		if err != nil {
			return nil, err
		}
		return NewRosenbrock(dom, d.Float("a", 1), d.Float("b", 100)), nil
	})
	FieldFunctions.Register(FnHimmelblau, func(d *config.Dict) (UnivariateEquation[float64], error) {
		dom, err := DomainFromDict(d, 2)
		if err != nil {
			return nil, err
		}
		return NewHimmelblau(dom), nil
	})

	CoefficientModels.Register(FnLinear, func(d *config.Dict) (CoefficientEquation, error) {
		dom, err := DomainFromDict(d, d.Int("nVar", 1))
		if err != nil {
			return nil, err
		}
		return NewLinear(dom), nil
	})
	CoefficientModels.Register(FnPolynomial, func(d *config.Dict) (CoefficientEquation, error) {
		dom, err := DomainFromDict(d, 1)
		if err != nil {
			return nil, err
		}
		return NewPolynomialFit(dom, d.Int("degree", 2)), nil
	})
	CoefficientModels.Register(FnExponential, func(d *config.Dict) (CoefficientEquation, error) {
		dom, err := DomainFromDict(d, 1)
		if err != nil {
			return nil, err
		}
		c := d.Floats("coeffs", 2, 1, "initialCoeffs")
		return NewExponential(dom, c[0], c[1]), nil
	})
}

// NewSine is a*sin(k*x + phi).
func NewSine(dom *Domain, a, k, phi float64) *Smooth[float64] {
	return NewSmooth("sine", dom,
		func(x float64) float64 { return a * math.Sin(k*x+phi) },
		func(x float64) float64 { return a * k * math.Cos(k*x+phi) },
		func(x float64) float64 { return -a * k * k * math.Sin(k*x+phi) },
	)
}

// NewRunge is 1/(1+x^2).
func NewRunge(dom *Domain) *Smooth[float64] {
	return NewSmooth("runge", dom,
		func(x float64) float64 { return 1 / (1 + x*x) },
		func(x float64) float64 {
			q := 1 + x*x
			return -2 * x / (q * q)
		},
		func(x float64) float64 {
			q := 1 + x*x
			return (6*x*x - 2) / (q * q * q)
		},
	)
}

// NewRastrigin is x^2 - A*cos(2*pi*x) + A, with many local minima and the
// global one at the origin.
func NewRastrigin(dom *Domain, a float64) *Smooth[float64] {
	w := 2 * math.Pi
	return NewSmooth("rastrigin", dom,
		func(x float64) float64 { return x*x - a*math.Cos(w*x) + a },
		func(x float64) float64 { return 2*x + a*w*math.Sin(w*x) },
		func(x float64) float64 { return 2 + a*w*w*math.Cos(w*x) },
	)
}

// NewSphere is sum (x_i - c_i)^2.
func NewSphere(dom *Domain, center []float64) *GradField[float64] {
	c := append([]float64(nil), center...)
	return NewGradField("sphere", dom,
		func(x []float64) float64 {
			s := 0.0
			for i := range x {
				d := x[i] - c[i]
				s += d * d
			}
			return s
		},
		func(x []float64) []float64 {
			g := make([]float64, len(x))
			for i := range x {
				g[i] = 2 * (x[i] - c[i])
			}
			return g
		},
	)
}

// NewRosenbrock is (a-x)^2 + b(y-x^2)^2 with its minimum at (a, a^2).
func NewRosenbrock(dom *Domain, a, b float64) *GradField[float64] {
	return NewGradField("rosenbrock", dom,
		func(x []float64) float64 {
			u := a - x[0]
			v := x[1] - x[0]*x[0]
			return u*u + b*v*v
		},
		func(x []float64) []float64 {
			v := x[1] - x[0]*x[0]
			return []float64{
				-2*(a-x[0]) - 4*b*x[0]*v,
				2 * b * v,
			}
		},
	)
}

// NewHimmelblau has four minima of value zero. It has no analytic gradient.
func NewHimmelblau(dom *Domain) *Field[float64] {
	return NewField("himmelblau", dom, func(x []float64) float64 {
		u := x[0]*x[0] + x[1] - 11
		v := x[0] + x[1]*x[1] - 7
		return u*u + v*v
	})
}
