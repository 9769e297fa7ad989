package equation

// Equation is y = f(x) for a scalar x. The index li selects the evaluation
// context when the same equation is evaluated at many unrelated points;
// stateless equations ignore it.
type Equation[T any] interface {
	Domain() *Domain
	FX(x float64, li int) T
}

// Differentiable equations provide an analytic first derivative.
type Differentiable[T any] interface {
	Equation[T]
	DFDX(x float64, li int) T
}

type TwiceDifferentiable[T any] interface {
	Differentiable[T]
	D2FDX2(x float64, li int) T
}

type ThriceDifferentiable[T any] interface {
	TwiceDifferentiable[T]
	D3FDX3(x float64, li int) T
}

// UnivariateEquation is y = f(x1..xn) with a single output per evaluation.
type UnivariateEquation[T any] interface {
	Domain() *Domain
	FX(x []float64, li int) T
}

// WithGradient supplies an analytic gradient, one T per input dimension.
type WithGradient[T any] interface {
	UnivariateEquation[T]
	Gradient(x []float64, li int) []T
}

// MultivariateEquation is y = f(x1..xn) with NEqns outputs.
type MultivariateEquation[T any] interface {
	Domain() *Domain
	NEqns() int
	FX(x []float64, li int) []T
}

// WithJacobian supplies J[i][j] = d y_i / d x_j.
type WithJacobian[T any] interface {
	MultivariateEquation[T]
	Jacobian(x []float64, li int) [][]T
}

// Named equations describe themselves in diagnostics.
type Named interface {
	Name() string
}

func nameOf(e any) string {
	if n, ok := e.(Named); ok {
		return n.Name()
	}
	return ""
}

// EvalLimited clamps x into the domain before evaluating.
func EvalLimited[T any](e Equation[T], x float64, li int) T {
	return e.FX(e.Domain().LimitScalar(x), li)
}

// DFDX returns the analytic first derivative, or a NotImplementedError when
// the equation does not provide one.
func DFDX[T any](e Equation[T], x float64, li int) (T, error) {
	if d, ok := e.(Differentiable[T]); ok {
		return d.DFDX(x, li), nil
	}
	var zero T
	return zero, &NotImplementedError{Op: "dfdx", Equation: nameOf(e)}
}

func D2FDX2[T any](e Equation[T], x float64, li int) (T, error) {
	if d, ok := e.(TwiceDifferentiable[T]); ok {
		return d.D2FDX2(x, li), nil
	}
	var zero T
	return zero, &NotImplementedError{Op: "d2fdx2", Equation: nameOf(e)}
}

func D3FDX3[T any](e Equation[T], x float64, li int) (T, error) {
	if d, ok := e.(ThriceDifferentiable[T]); ok {
		return d.D3FDX3(x, li), nil
	}
	var zero T
	return zero, &NotImplementedError{Op: "d3fdx3", Equation: nameOf(e)}
}

// Gradient returns the analytic gradient when available and a central
// finite-difference estimate otherwise.
func Gradient[T any](alg Algebra[T], e UnivariateEquation[T], x []float64, li int) []T {
	if g, ok := e.(WithGradient[T]); ok {
		return g.Gradient(x, li)
	}
	return FDGradient(alg, e, x, li)
}

// FDGradient estimates the gradient with central differences using the
// domain step. Near a bound the stencil is clamped and becomes one-sided.
func FDGradient[T any](alg Algebra[T], e UnivariateEquation[T], x []float64, li int) []T {
	dom := e.Domain()
	grad := make([]T, len(x))
	xp := make([]float64, len(x))
	xm := make([]float64, len(x))
	for i := range x {
		copy(xp, x)
		copy(xm, x)
		h := dom.Delta(i, x[i])
		xp[i] = x[i] + h
		xm[i] = x[i] - h
		dom.Limit(xp)
		dom.Limit(xm)
		width := xp[i] - xm[i]
		if width == 0 {
			grad[i] = alg.Zero()
			continue
		}
		grad[i] = alg.Scale(alg.Sub(e.FX(xp, li), e.FX(xm, li)), 1/width)
	}
	return grad
}

// Jacobian returns the analytic Jacobian when available and a central
// finite-difference estimate otherwise.
func Jacobian[T any](alg Algebra[T], e MultivariateEquation[T], x []float64, li int) [][]T {
	if j, ok := e.(WithJacobian[T]); ok {
		return j.Jacobian(x, li)
	}
	return FDJacobian(alg, e, x, li)
}

func FDJacobian[T any](alg Algebra[T], e MultivariateEquation[T], x []float64, li int) [][]T {
	dom := e.Domain()
	n := e.NEqns()
	jac := make([][]T, n)
	for i := range jac {
		jac[i] = make([]T, len(x))
	}
	xp := make([]float64, len(x))
	xm := make([]float64, len(x))
	for j := range x {
		copy(xp, x)
		copy(xm, x)
		h := dom.Delta(j, x[j])
		xp[j] = x[j] + h
		xm[j] = x[j] - h
		dom.Limit(xp)
		dom.Limit(xm)
		width := xp[j] - xm[j]
		if width == 0 {
			for i := 0; i < n; i++ {
				jac[i][j] = alg.Zero()
			}
			continue
		}
		fp := e.FX(xp, li)
		fm := e.FX(xm, li)
		for i := 0; i < n; i++ {
			jac[i][j] = alg.Scale(alg.Sub(fp[i], fm[i]), 1/width)
		}
	}
	return jac
}

// FDDerivative estimates df/dx of a scalar-input equation with central
// differences. It is only used where an estimate is explicitly acceptable.
func FDDerivative[T any](alg Algebra[T], e Equation[T], x float64, li int) T {
	dom := e.Domain()
	h := dom.Delta(0, x)
	xp := dom.LimitScalar(x + h)
	xm := dom.LimitScalar(x - h)
	if xp == xm {
		return alg.Zero()
	}
	return alg.Scale(alg.Sub(e.FX(xp, li), e.FX(xm, li)), 1/(xp-xm))
}
