package optim

import (
	"errors"
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/san-kum/numerix/internal/config"
	"github.com/san-kum/numerix/internal/equation"
)

func shiftedBowl() *equation.Polynomial {
	// (x-3)^2
	return equation.NewPolynomial(equation.NewInterval(-10, 10), 9, -6, 1)
}

func TestGoldenRatio_Bowl(t *testing.T) {
	g := NewGoldenRatio(shiftedBowl(), DefaultSettings(1))

	x, st := g.Minimize(0, 0, 5, 0)
	if math.Abs(x-3) > 1e-4 {
		t.Errorf("x = %v, want 3", x)
	}
	if !st.Converged() {
		t.Errorf("outcome = %v", st.Outcome)
	}
	// Two evaluations to start, then one per step.
	if st.Evaluations != st.Steps+2 {
		t.Errorf("evaluations = %d for %d steps", st.Evaluations, st.Steps)
	}
}

func TestBracketing_ShrinksAndFindsMinimum(t *testing.T) {
	skewed := equation.NewSmooth("skewed", equation.Unbounded(1),
		func(x float64) float64 { return math.Exp(x) - 2*x },
		func(x float64) float64 { return math.Exp(x) - 2 },
		func(x float64) float64 { return math.Exp(x) },
	)

	problems := []struct {
		name   string
		eqn    equation.Equation[float64]
		lo, hi float64
		xMin   float64
	}{
		{"bowl", shiftedBowl(), 0, 5, 3},
		{"skewed", skewed, -1, 3, math.Ln2},
	}
	schemes := []struct {
		name string
		new  func(equation.Equation[float64]) Univariate
	}{
		{"bisection", func(e equation.Equation[float64]) Univariate { return NewBisection(e, DefaultSettings(1), Minimum) }},
		{"goldenRatio", func(e equation.Equation[float64]) Univariate { return NewGoldenRatio(e, DefaultSettings(1)) }},
		{"Fibonacci", func(e equation.Equation[float64]) Univariate { return NewFibonacci(e, DefaultSettings(1)) }},
	}

	for _, p := range problems {
		for _, s := range schemes {
			t.Run(p.name+"/"+s.name, func(t *testing.T) {
				x, st := s.new(p.eqn).Minimize(p.lo, p.lo, p.hi, 0)
				if math.Abs(x-p.xMin) > 1e-4 {
					t.Errorf("x = %v, want %v", x, p.xMin)
				}
				if len(st.Widths) == 0 {
					t.Fatal("no bracket history")
				}
				prev := p.hi - p.lo
				for i, w := range st.Widths {
					if w >= prev {
						t.Fatalf("width %d = %v did not shrink from %v", i, w, prev)
					}
					prev = w
				}
			})
		}
	}
}

func TestBisection_Root(t *testing.T) {
	f := equation.NewPolynomial(equation.Unbounded(1), -2, 0, 1)
	b := NewBisection(f, DefaultSettings(1), Root)

	x, st := b.Minimize(1, 0, 2, 0)
	if math.Abs(x-math.Sqrt2) > 1e-5 {
		t.Errorf("root = %v, want sqrt(2)", x)
	}
	if !st.Converged() {
		t.Errorf("outcome = %v", st.Outcome)
	}
}

func TestBisection_RootSampling(t *testing.T) {
	f := equation.NewPolynomial(equation.Unbounded(1), -2, 0, 1)
	set := DefaultSettings(1)
	set.NSamples = 6
	b := NewBisection(f, set, Root)

	x, _ := b.Minimize(0, -3, 3, 0)
	if math.Abs(x+math.Sqrt2) > 1e-5 {
		t.Errorf("root = %v, want -sqrt(2)", x)
	}
}

func TestBisection_RootRelativeYTolerance(t *testing.T) {
	f := equation.NewPolynomial(equation.Unbounded(1), -300, 1000)

	tests := []struct {
		name      string
		normalise bool
		minSteps  int
		maxSteps  int
	}{
		{"relative error accepted", true, 1, 11},
		{"absolute only", false, 41, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := DefaultSettings(1)
			set.XTol = []float64{1e-15}
			set.XRelTol = []float64{1e-15}
			set.YTol = []float64{1e-15}
			set.YRelTol = []float64{1e-3}
			set.Normalise = tt.normalise
			b := NewBisection(f, set, Root)

			x, st := b.Minimize(0.5, 0, 1, 0)
			if !st.Converged() {
				t.Fatalf("outcome = %v", st.Outcome)
			}
			if st.Steps < tt.minSteps || st.Steps > tt.maxSteps {
				t.Errorf("steps = %d, want %d..%d", st.Steps, tt.minSteps, tt.maxSteps)
			}
			// |f| below 1e-3 of the bracket scale 700.
			if math.Abs(x-0.3) > 7e-4 {
				t.Errorf("root = %v, want 0.3", x)
			}
		})
	}
}

func TestBisection_NoSignChange(t *testing.T) {
	f := equation.NewPolynomial(equation.Unbounded(1), 1, 0, 1)
	b := NewBisection(f, DefaultSettings(1), Root)

	x, st := b.Minimize(0, 1, 2, 0)
	if st.Outcome != HitBounds {
		t.Errorf("outcome = %v, want %v", st.Outcome, HitBounds)
	}
	if x != 1 {
		t.Errorf("x = %v, want the end closest to zero", x)
	}
}

func TestNewtonRaphson(t *testing.T) {
	n, err := NewNewtonRaphson(shiftedBowl(), DefaultSettings(1))
	if err != nil {
		t.Fatal(err)
	}

	x, st := n.Minimize(0, -10, 10, 0)
	if math.Abs(x-3) > 1e-12 {
		t.Errorf("x = %v, want 3", x)
	}
	if st.Steps != 2 {
		t.Errorf("steps = %d, want 2", st.Steps)
	}
}

func TestNewtonRaphson_NeedsSecondDerivative(t *testing.T) {
	f := equation.NewFunc("plain", equation.Unbounded(1), func(x float64) float64 { return x * x })

	_, err := NewNewtonRaphson(f, DefaultSettings(1))
	if !errors.Is(err, equation.ErrNotImplemented) {
		t.Fatalf("expected ErrNotImplemented, got %v", err)
	}
	var nie *equation.NotImplementedError
	if !errors.As(err, &nie) || nie.Equation != "plain" {
		t.Errorf("unexpected error %v", err)
	}
}

func TestShubertPiyavskii_FindsGlobalMinimum(t *testing.T) {
	f := equation.NewRastrigin(equation.NewInterval(-5.12, 5.12), 10)
	set := DefaultSettings(1)
	set.MaxSteps = 3000
	set.YTol = []float64{1e-6}
	s := NewShubertPiyavskii(f, set, 80)

	x, _ := s.Minimize(4, -5.12, 5.12, 0)
	if math.Abs(x) > 1e-3 {
		t.Errorf("x = %v, want the global minimum at 0", x)
	}
}

func TestShubertPiyavskii_EstimatedLipschitz(t *testing.T) {
	set := DefaultSettings(1)
	set.MaxSteps = 2000
	s := NewShubertPiyavskii(shiftedBowl(), set, 0)

	x, _ := s.Minimize(0, 0, 5, 0)
	if math.Abs(x-3) > 1e-3 {
		t.Errorf("x = %v, want 3", x)
	}
}

func TestStepSearch(t *testing.T) {
	set := DefaultSettings(1)
	set.MaxSteps = 500
	s := NewStepSearch(shiftedBowl(), set, 0.5)

	x, st := s.Minimize(0, 0, 5, 0)
	if math.Abs(x-3) > 1e-4 {
		t.Errorf("x = %v, want 3", x)
	}
	if !st.Converged() {
		t.Errorf("outcome = %v", st.Outcome)
	}
}

func TestSampling_PicksGlobalWell(t *testing.T) {
	// x^4 - 2x^2 + 0.3x + 1: the left well is the deeper one.
	f := equation.NewPolynomial(equation.NewInterval(-2, 2), 1, 0.3, -2, 0, 1)
	set := DefaultSettings(1)
	set.NSamples = 8
	g := NewGoldenRatio(f, set)

	x, _ := g.Minimize(1, -2, 2, 0)
	if x >= 0 {
		t.Fatalf("x = %v landed in the shallow well", x)
	}
	if d := f.DFDX(x, 0); math.Abs(d) > 1e-3 {
		t.Errorf("f'(%v) = %v, want 0", x, d)
	}
}

func TestUnivariateFromDict(t *testing.T) {
	d := config.NewDict("minimizer", map[string]any{
		"minimizationScheme": "Fibonacci",
		"xTolerance":         1e-8,
	})
	s, err := UnivariateFromDict(shiftedBowl(), d)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*FibonacciScheme); !ok {
		t.Fatalf("got %T", s)
	}

	d.Set("minimizationScheme", "simulatedAnnealing")
	_, err = UnivariateFromDict(shiftedBowl(), d)
	var use *config.UnknownSchemeError
	if !errors.As(err, &use) {
		t.Fatalf("expected *config.UnknownSchemeError, got %v", err)
	}
	if len(use.Valid) != 6 {
		t.Errorf("valid schemes = %v", use.Valid)
	}
}

func TestDebugReportsOutcome(t *testing.T) {
	logger, hook := test.NewNullLogger()
	set := DefaultSettings(1)
	set.MaxSteps = 2
	set.Debug = true
	g := NewGoldenRatio(shiftedBowl(), set)
	g.SetLogger(logger)

	_, st := g.Minimize(0, 0, 5, 0)
	if st.Outcome != HitIterationCap {
		t.Fatalf("outcome = %v", st.Outcome)
	}
	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.WarnLevel {
		t.Fatalf("expected a warning, got %+v", entry)
	}
	if entry.Message != HitIterationCap.String() {
		t.Errorf("message = %q", entry.Message)
	}
}
