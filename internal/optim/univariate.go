package optim

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/numerix/internal/config"
	"github.com/san-kum/numerix/internal/equation"
)

// Univariate minimizes (or, for root-mode bisection, zeroes) a scalar-input
// equation starting from x0 inside [xLow, xHigh].
type Univariate interface {
	Minimize(x0, xLow, xHigh float64, li int) (float64, Status)
	SetLogger(l logrus.FieldLogger)
}

type UnivariateScheme string

const (
	Bisection        UnivariateScheme = "bisection"
	GoldenRatio      UnivariateScheme = "goldenRatio"
	Fibonacci        UnivariateScheme = "Fibonacci"
	NewtonRaphson    UnivariateScheme = "NewtonRaphson"
	ShubertPiyavskii UnivariateScheme = "ShubertPiyavskii"
	StepSearch       UnivariateScheme = "stepSearch"
)

type UnivariateCtor func(eqn equation.Equation[float64], d *config.Dict) (Univariate, error)

// UnivariateSchemes is the registry of scalar-input schemes.
var UnivariateSchemes = config.NewRegistry[UnivariateScheme, UnivariateCtor]("univariate minimization scheme")

func init() {
	UnivariateSchemes.Register(Bisection, func(eqn equation.Equation[float64], d *config.Dict) (Univariate, error) {
		set, err := SettingsFromDict(d, 1)
		if err != nil {
			return nil, err
		}
		mode := Minimum
		if d.Bool("root", false) {
			mode = Root
		}
		return NewBisection(eqn, set, mode), nil
	})
	UnivariateSchemes.Register(GoldenRatio, func(eqn equation.Equation[float64], d *config.Dict) (Univariate, error) {
		set, err := SettingsFromDict(d, 1)
		if err != nil {
			return nil, err
		}
		return NewGoldenRatio(eqn, set), nil
	})
	UnivariateSchemes.Register(Fibonacci, func(eqn equation.Equation[float64], d *config.Dict) (Univariate, error) {
		set, err := SettingsFromDict(d, 1)
		if err != nil {
			return nil, err
		}
		return NewFibonacci(eqn, set), nil
	})
	UnivariateSchemes.Register(NewtonRaphson, func(eqn equation.Equation[float64], d *config.Dict) (Univariate, error) {
		set, err := SettingsFromDict(d, 1)
		if err != nil {
			return nil, err
		}
		n, err := NewNewtonRaphson(eqn, set)
		if err != nil {
			return nil, err
		}
		return n, nil
	})
	UnivariateSchemes.Register(ShubertPiyavskii, func(eqn equation.Equation[float64], d *config.Dict) (Univariate, error) {
		set, err := SettingsFromDict(d, 1)
		if err != nil {
			return nil, err
		}
		return NewShubertPiyavskii(eqn, set, d.Float("lipschitz", 0, "Lipschitz")), nil
	})
	UnivariateSchemes.Register(StepSearch, func(eqn equation.Equation[float64], d *config.Dict) (Univariate, error) {
		set, err := SettingsFromDict(d, 1)
		if err != nil {
			return nil, err
		}
		return NewStepSearch(eqn, set, d.Float("step", 0, "dx")), nil
	})
}

// UnivariateFromDict builds the scheme named by the minimizationScheme key,
// golden ratio by default.
func UnivariateFromDict(eqn equation.Equation[float64], d *config.Dict) (Univariate, error) {
	ctor, err := UnivariateSchemes.Get(d.String("minimizationScheme", string(GoldenRatio), "scheme"))
	if err != nil {
		return nil, err
	}
	return ctor(eqn, d)
}

// BisectionMode selects what bisection looks for.
type BisectionMode int

const (
	Minimum BisectionMode = iota
	Root
)

// BisectionScheme halves the bracket every step. In Root mode it keeps the
// half with the sign change; in Minimum mode it compares two points either
// side of the midpoint and keeps the lower side.
type BisectionScheme struct {
	scalar
	mode BisectionMode
}

func NewBisection(eqn equation.Equation[float64], set Settings, mode BisectionMode) *BisectionScheme {
	return &BisectionScheme{scalar: newScalar(string(Bisection), eqn, set), mode: mode}
}

func (b *BisectionScheme) Minimize(x0, xLow, xHigh float64, li int) (float64, Status) {
	b.reset()
	x0, lo, hi := b.bracket(x0, xLow, xHigh)
	if b.mode == Root {
		return b.root(x0, lo, hi, li)
	}
	_, lo, hi = b.sample(x0, lo, hi, li)

	// Points sit delta either side of the midpoint, delta a fixed share
	// of the current width.
	const share = 1e-3
	converged := false
	for b.st.Steps < b.set.MaxSteps {
		b.st.Steps++
		mid := 0.5 * (lo + hi)
		delta := share * (hi - lo)
		if b.f(mid-delta, li) < b.f(mid+delta, li) {
			hi = mid + delta
		} else {
			lo = mid - delta
		}
		b.st.Widths = append(b.st.Widths, hi-lo)
		if b.ConvergedX([]float64{hi - lo}, []float64{0.5 * (lo + hi)}) {
			converged = true
			break
		}
	}
	x := 0.5 * (lo + hi)
	return x, b.finish(converged, b.onBounds(x))
}

func (b *BisectionScheme) root(x0, lo, hi float64, li int) (float64, Status) {
	flo, fhi := b.f(lo, li), b.f(hi, li)
	if flo == 0 {
		return lo, b.finish(true, false)
	}
	if fhi == 0 {
		return hi, b.finish(true, false)
	}
	if b.set.NSamples > 0 {
		if l, h, fl, fh, ok := b.signChange(lo, hi, li); ok {
			lo, hi, flo, fhi = l, h, fl, fh
		}
	}
	if !equation.Scalar.ContainsRoot(flo, fhi) {
		// Nothing to bracket; report the end closer to zero.
		x := lo
		if math.Abs(fhi) < math.Abs(flo) {
			x = hi
		}
		return x, b.finish(false, true)
	}

	scale := math.Max(math.Abs(flo), math.Abs(fhi))
	converged := false
	mid := x0
	for b.st.Steps < b.set.MaxSteps {
		b.st.Steps++
		mid = 0.5 * (lo + hi)
		fmid := b.f(mid, li)
		if fmid == 0 {
			converged = true
			break
		}
		if equation.Scalar.ContainsRoot(flo, fmid) {
			hi, fhi = mid, fmid
		} else {
			lo, flo = mid, fmid
		}
		b.st.Widths = append(b.st.Widths, hi-lo)
		if b.ConvergedX([]float64{hi - lo}, []float64{mid}) || b.ConvergedY(fmid, scale) {
			converged = true
			break
		}
	}
	return mid, b.finish(converged, false)
}

// signChange scans NSamples cells for the first sign change.
func (b *BisectionScheme) signChange(lo, hi float64, li int) (l, h, fl, fh float64, ok bool) {
	n := b.set.NSamples
	dx := (hi - lo) / float64(n)
	l, fl = lo, b.f(lo, li)
	for j := 1; j <= n; j++ {
		h = lo + float64(j)*dx
		if j == n {
			h = hi
		}
		fh = b.f(h, li)
		if equation.Scalar.ContainsRoot(fl, fh) {
			return l, h, fl, fh, true
		}
		l, fl = h, fh
	}
	return 0, 0, 0, 0, false
}

// invPhi is 1/phi, the share of the bracket kept each step.
var invPhi = (math.Sqrt(5) - 1) / 2

// GoldenRatioScheme shrinks the bracket by 1/phi per step with one new
// evaluation per step.
type GoldenRatioScheme struct {
	scalar
}

func NewGoldenRatio(eqn equation.Equation[float64], set Settings) *GoldenRatioScheme {
	return &GoldenRatioScheme{scalar: newScalar(string(GoldenRatio), eqn, set)}
}

func (g *GoldenRatioScheme) Minimize(x0, xLow, xHigh float64, li int) (float64, Status) {
	g.reset()
	x0, a, b := g.bracket(x0, xLow, xHigh)
	_, a, b = g.sample(x0, a, b, li)

	c := b - invPhi*(b-a)
	d := a + invPhi*(b-a)
	fc, fd := g.f(c, li), g.f(d, li)

	converged := false
	for g.st.Steps < g.set.MaxSteps {
		g.st.Steps++
		if fc < fd {
			b, d, fd = d, c, fc
			c = b - invPhi*(b-a)
			fc = g.f(c, li)
		} else {
			a, c, fc = c, d, fd
			d = a + invPhi*(b-a)
			fd = g.f(d, li)
		}
		g.st.Widths = append(g.st.Widths, b-a)
		if g.ConvergedX([]float64{b - a}, []float64{0.5 * (a + b)}) {
			converged = true
			break
		}
	}

	x := c
	if fd < fc {
		x = d
	}
	return x, g.finish(converged, g.onBounds(x))
}

// FibonacciScheme places interior points at ratios of consecutive
// Fibonacci numbers. The number of steps is fixed up front by the x
// tolerance and capped by MaxSteps.
type FibonacciScheme struct {
	scalar
}

func NewFibonacci(eqn equation.Equation[float64], set Settings) *FibonacciScheme {
	return &FibonacciScheme{scalar: newScalar(string(Fibonacci), eqn, set)}
}

// fibonacci returns F_0..F_m with F_0 = F_1 = 1, where F_m is the first
// term reaching ratio or m = limit.
func fibonacci(ratio float64, limit int) []float64 {
	fib := []float64{1, 1}
	for len(fib)-1 < limit && fib[len(fib)-1] < ratio {
		fib = append(fib, fib[len(fib)-1]+fib[len(fib)-2])
	}
	return fib
}

func (s *FibonacciScheme) Minimize(x0, xLow, xHigh float64, li int) (float64, Status) {
	s.reset()
	x0, a, b := s.bracket(x0, xLow, xHigh)
	_, a, b = s.sample(x0, a, b, li)

	tol := at(s.set.XTol, 0)
	if s.set.Normalise {
		tol = math.Max(tol, at(s.set.XRelTol, 0)*math.Max(math.Abs(a), math.Abs(b)))
	}
	fib := fibonacci((b-a)/tol, s.set.MaxSteps+2)
	m := len(fib) - 1
	if m < 3 {
		x := 0.5 * (a + b)
		s.f(x, li)
		return x, s.finish(b-a < tol, s.onBounds(x))
	}

	c := a + fib[m-2]/fib[m]*(b-a)
	d := a + fib[m-1]/fib[m]*(b-a)
	fc, fd := s.f(c, li), s.f(d, li)

	for ; m > 3; m-- {
		s.st.Steps++
		if fc < fd {
			b, d, fd = d, c, fc
			c = a + fib[m-3]/fib[m-1]*(b-a)
			fc = s.f(c, li)
		} else {
			a, c, fc = c, d, fd
			d = a + fib[m-2]/fib[m-1]*(b-a)
			fd = s.f(d, li)
		}
		s.st.Widths = append(s.st.Widths, b-a)
	}

	s.st.Steps++
	if fc < fd {
		b = d
	} else {
		a = c
	}
	s.st.Widths = append(s.st.Widths, b-a)

	x := 0.5 * (a + b)
	return x, s.finish(b-a <= 2*tol, s.onBounds(x))
}
