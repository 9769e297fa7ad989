package equation

import "math"

// Small guards denominators against division by zero.
const Small = 1e-15

// Stabilise pushes y away from zero while keeping its sign.
func Stabilise(y float64) float64 {
	if math.Abs(y) >= Small {
		return y
	}
	if y < 0 {
		return -Small
	}
	return Small
}

// RelativeError is |delta| / max(|ref|, Small).
func RelativeError(delta, ref float64) float64 {
	return math.Abs(delta) / math.Max(math.Abs(ref), Small)
}

// Algebra is the arithmetic an output type has to provide to be integrated
// or bracketed.
type Algebra[T any] interface {
	Zero() T
	Add(a, b T) T
	Sub(a, b T) T
	Scale(a T, s float64) T
	Mag(a T) float64

	// ContainsRoot reports whether a root lies between two function values.
	ContainsRoot(y0, y1 T) bool

	// Adaptive reports whether the magnitude is a usable error metric. When
	// false, integration always runs on a fixed composite grid.
	Adaptive() bool
}

type Vector [3]float64

func (v Vector) Add(o Vector) Vector {
	return Vector{v[0] + o[0], v[1] + o[1], v[2] + o[2]}
}

func (v Vector) Sub(o Vector) Vector {
	return Vector{v[0] - o[0], v[1] - o[1], v[2] - o[2]}
}

func (v Vector) Scale(s float64) Vector {
	return Vector{v[0] * s, v[1] * s, v[2] * s}
}

func (v Vector) Dot(o Vector) float64 {
	return v[0]*o[0] + v[1]*o[1] + v[2]*o[2]
}

func (v Vector) Mag() float64 {
	return math.Sqrt(v.Dot(v))
}

// Tensor is a 3x3 tensor stored row-major.
type Tensor [9]float64

func (t Tensor) Add(o Tensor) Tensor {
	var r Tensor
	for i := range t {
		r[i] = t[i] + o[i]
	}
	return r
}

func (t Tensor) Sub(o Tensor) Tensor {
	var r Tensor
	for i := range t {
		r[i] = t[i] - o[i]
	}
	return r
}

func (t Tensor) Scale(s float64) Tensor {
	var r Tensor
	for i := range t {
		r[i] = t[i] * s
	}
	return r
}

// DoubleDot is the full contraction t:o.
func (t Tensor) DoubleDot(o Tensor) float64 {
	sum := 0.0
	for i := range t {
		sum += t[i] * o[i]
	}
	return sum
}

func (t Tensor) Mag() float64 {
	return math.Sqrt(t.DoubleDot(t))
}

func (t Tensor) Trace() float64 {
	return t[0] + t[4] + t[8]
}

type ScalarAlgebra struct{}

func (ScalarAlgebra) Zero() float64 { return 0 }
func (ScalarAlgebra) Add(a, b float64) float64 { return a + b }
func (ScalarAlgebra) Sub(a, b float64) float64 { return a - b }
func (ScalarAlgebra) Scale(a, s float64) float64 { return a * s }
func (ScalarAlgebra) Mag(a float64) float64 { return math.Abs(a) }
func (ScalarAlgebra) ContainsRoot(y0, y1 float64) bool { return y0*y1 < 0 }
func (ScalarAlgebra) Adaptive() bool { return true }

type VectorAlgebra struct{}

func (VectorAlgebra) Zero() Vector { return Vector{} }
func (VectorAlgebra) Add(a, b Vector) Vector { return a.Add(b) }
func (VectorAlgebra) Sub(a, b Vector) Vector { return a.Sub(b) }
func (VectorAlgebra) Scale(a Vector, s float64) Vector { return a.Scale(s) }
func (VectorAlgebra) Mag(a Vector) float64 { return a.Mag() }
func (VectorAlgebra) Adaptive() bool { return true }

// ContainsRoot reports a sign change of the projection of one value onto
// the other.
func (VectorAlgebra) ContainsRoot(y0, y1 Vector) bool { return y0.Dot(y1) < 0 }

type TensorAlgebra struct{}

func (TensorAlgebra) Zero() Tensor { return Tensor{} }
func (TensorAlgebra) Add(a, b Tensor) Tensor { return a.Add(b) }
func (TensorAlgebra) Sub(a, b Tensor) Tensor { return a.Sub(b) }
func (TensorAlgebra) Scale(a Tensor, s float64) Tensor { return a.Scale(s) }
func (TensorAlgebra) Mag(a Tensor) float64 { return a.Mag() }
func (TensorAlgebra) ContainsRoot(y0, y1 Tensor) bool { return y0.DoubleDot(y1) < 0 }
func (TensorAlgebra) Adaptive() bool { return false }

// Scalar, Vectors and Tensors are ready-made algebra values.
var (
	Scalar  Algebra[float64] = ScalarAlgebra{}
	Vectors Algebra[Vector]  = VectorAlgebra{}
	Tensors Algebra[Tensor]  = TensorAlgebra{}
)
