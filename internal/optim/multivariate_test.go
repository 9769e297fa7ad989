package optim

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/san-kum/numerix/internal/config"
	"github.com/san-kum/numerix/internal/equation"
)

func box(n int, lo, hi float64) ([]float64, []float64) {
	l, h := make([]float64, n), make([]float64, n)
	for i := range l {
		l[i], h[i] = lo, hi
	}
	return l, h
}

func near(t *testing.T, got, want []float64, tol float64) {
	t.Helper()
	for i := range want {
		if math.Abs(got[i]-want[i]) > tol {
			t.Errorf("x = %v, want %v", got, want)
			return
		}
	}
}

func TestGradientDescent_Sphere(t *testing.T) {
	f := equation.NewSphere(equation.Unbounded(2), []float64{1, -2})
	lo, hi := box(2, -10, 10)

	x, st, err := NewGradientDescent(f, DefaultSettings(2), 1).Minimize([]float64{4, 4}, lo, hi, 0)
	if err != nil {
		t.Fatal(err)
	}
	near(t, x, []float64{1, -2}, 1e-6)
	if !st.Converged() {
		t.Errorf("outcome = %v", st.Outcome)
	}
}

func TestGradientDescent_FiniteDifferenceGradient(t *testing.T) {
	f := equation.NewHimmelblau(equation.Unbounded(2))
	set := DefaultSettings(2)
	set.MaxSteps = 2000
	lo, hi := box(2, -5, 5)

	x, _, err := NewGradientDescent(f, set, 0.01).Minimize([]float64{1, 1}, lo, hi, 0)
	if err != nil {
		t.Fatal(err)
	}
	if v := f.FX(x, 0); v > 1e-6 {
		t.Errorf("f(%v) = %v, want ~0", x, v)
	}
}

func TestGradientDescent_StopsOnBox(t *testing.T) {
	f := equation.NewSphere(equation.Unbounded(2), []float64{5, 5})
	lo, hi := box(2, 0, 2)

	x, st, err := NewGradientDescent(f, DefaultSettings(2), 1).Minimize([]float64{0, 0}, lo, hi, 0)
	if err != nil {
		t.Fatal(err)
	}
	near(t, x, []float64{2, 2}, 1e-12)
	if !st.Converged() {
		t.Errorf("outcome = %v", st.Outcome)
	}
}

func TestNelderMead_Rosenbrock(t *testing.T) {
	f := equation.NewRosenbrock(equation.Unbounded(2), 1, 100)
	set := DefaultSettings(2)
	set.MaxSteps = 5000
	set.XTol = []float64{1e-8, 1e-8}
	set.XRelTol = []float64{1e-8, 1e-8}
	set.YTol = []float64{1e-14}
	lo, hi := box(2, -5, 5)

	x, _, err := NewNelderMead(f, set).Minimize([]float64{-1.2, 1}, lo, hi, 0)
	if err != nil {
		t.Fatal(err)
	}
	near(t, x, []float64{1, 1}, 1e-4)
}

func TestNelderMead_Himmelblau(t *testing.T) {
	f := equation.NewHimmelblau(equation.Unbounded(2))
	set := DefaultSettings(2)
	set.MaxSteps = 2000
	set.YTol = []float64{1e-14}
	lo, hi := box(2, -5, 5)

	x, _, err := NewNelderMead(f, set).Minimize([]float64{0, 0}, lo, hi, 0)
	if err != nil {
		t.Fatal(err)
	}
	if v := f.FX(x, 0); v > 1e-8 {
		t.Errorf("f(%v) = %v, want ~0", x, v)
	}
}

func TestParticleSwarm_Sphere(t *testing.T) {
	f := equation.NewSphere(equation.Unbounded(3), []float64{0.5, -1, 2})
	set := DefaultSettings(3)
	set.MaxSteps = 500
	p := DefaultSwarm()
	p.Particles = 30
	lo, hi := box(3, -5, 5)

	x, _, err := NewParticleSwarm(f, set, p).Minimize([]float64{4, 4, 4}, lo, hi, 0)
	if err != nil {
		t.Fatal(err)
	}
	near(t, x, []float64{0.5, -1, 2}, 1e-2)
}

func TestParticleSwarm_Reproducible(t *testing.T) {
	f := equation.NewHimmelblau(equation.Unbounded(2))
	lo, hi := box(2, -5, 5)
	run := func() []float64 {
		set := DefaultSettings(2)
		set.MaxSteps = 50
		x, _, err := NewParticleSwarm(f, set, DefaultSwarm()).Minimize([]float64{0, 0}, lo, hi, 0)
		if err != nil {
			t.Fatal(err)
		}
		return x
	}

	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed gave %v and %v", a, b)
		}
	}
}

func TestMultivariate_DimensionMismatch(t *testing.T) {
	f := equation.NewSphere(equation.Unbounded(2), []float64{0, 0})
	schemes := []Multivariate{
		NewGradientDescent(f, DefaultSettings(2), 1),
		NewNelderMead(f, DefaultSettings(2)),
		NewParticleSwarm(f, DefaultSettings(2), DefaultSwarm()),
	}
	for _, s := range schemes {
		_, _, err := s.Minimize([]float64{0}, []float64{-1, -1}, []float64{1, 1}, 0)
		if !errors.Is(err, equation.ErrDimension) {
			t.Errorf("%T: expected ErrDimension, got %v", s, err)
		}
	}
}

func TestMultivariateFromDict(t *testing.T) {
	f := equation.NewSphere(equation.Unbounded(2), []float64{0, 0})
	tests := []struct {
		scheme string
		want   string
	}{
		{"", "*optim.NelderMeadScheme"},
		{"gradientDescent", "*optim.GradientDescentScheme"},
		{"particleSwarm", "*optim.ParticleSwarmScheme"},
	}
	for _, tt := range tests {
		d := config.Empty("minimizer")
		if tt.scheme != "" {
			d.Set("minimizationScheme", tt.scheme)
		}
		s, err := MultivariateFromDict(f, d)
		if err != nil {
			t.Fatal(err)
		}
		if got := fmt.Sprintf("%T", s); got != tt.want {
			t.Errorf("%q built %s, want %s", tt.scheme, got, tt.want)
		}
	}
}

func TestGridSearch(t *testing.T) {
	f := equation.NewSphere(equation.Unbounded(2), []float64{0.31, 0.72})
	g := NewGridSearch([]float64{0, 0}, []float64{1, 1}, 10)

	evals := 0
	x, _ := g.Search(func(x []float64) float64 {
		evals++
		return f.FX(x, 0)
	})
	near(t, x, []float64{0.35, 0.75}, 1e-12)
	if evals != 100 {
		t.Errorf("evaluations = %d, want 100", evals)
	}
}
