package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/numerix/internal/equation"
)

func benchmarkScheme(b *testing.B, s Scheme) {
	f := equation.NewSine(equation.NewInterval(0, math.Pi), 1, 3, 0)
	set := DefaultSettings()
	set.Scheme = s
	set.RelTol = 1e-10
	integ, err := New(equation.Scalar, f, set)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		integ.Integrate(0, math.Pi, 0)
	}
}

func BenchmarkTrapezoidal(b *testing.B)      { benchmarkScheme(b, Trapezoidal) }
func BenchmarkSimpson13(b *testing.B)        { benchmarkScheme(b, Simpson13) }
func BenchmarkSimpson38(b *testing.B)        { benchmarkScheme(b, Simpson38) }
func BenchmarkBoole(b *testing.B)            { benchmarkScheme(b, Boole) }
func BenchmarkGaussian(b *testing.B)         { benchmarkScheme(b, Gaussian) }
func BenchmarkVariableGaussian(b *testing.B) { benchmarkScheme(b, VariableGaussian) }

func BenchmarkMultivariate2D(b *testing.B) {
	f := equation.NewField("bump", equation.Unbounded(2), func(x []float64) float64 {
		return math.Exp(-(x[0]*x[0] + x[1]*x[1]))
	})
	set := DefaultSettings()
	set.RelTol = 1e-8
	integ, err := NewMultivariate(equation.Scalar, f, set)
	if err != nil {
		b.Fatal(err)
	}
	lo, hi := []float64{0, 0}, []float64{1, 1}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		integ.Integrate(lo, hi, 0)
	}
}
