package equation

// Func adapts a closure to an Equation.
type Func[T any] struct {
	name string
	dom  *Domain
	f    func(x float64, li int) T
}

func NewFunc[T any](name string, dom *Domain, f func(x float64) T) *Func[T] {
	return &Func[T]{
		name: name,
		dom:  dom,
		f:    func(x float64, _ int) T { return f(x) },
	}
}

// NewIndexedFunc keeps the evaluation index visible to the closure.
func NewIndexedFunc[T any](name string, dom *Domain, f func(x float64, li int) T) *Func[T] {
	return &Func[T]{name: name, dom: dom, f: f}
}

func (f *Func[T]) Name() string { return f.name }
func (f *Func[T]) Domain() *Domain { return f.dom }
func (f *Func[T]) FX(x float64, li int) T { return f.f(x, li) }

// Smooth is a Func with analytic first and second derivatives.
type Smooth[T any] struct {
	Func[T]
	d1 func(x float64) T
	d2 func(x float64) T
}

func NewSmooth[T any](name string, dom *Domain, f, d1, d2 func(x float64) T) *Smooth[T] {
	return &Smooth[T]{
		Func: *NewFunc(name, dom, f),
		d1:   d1,
		d2:   d2,
	}
}

func (s *Smooth[T]) DFDX(x float64, _ int) T { return s.d1(x) }
func (s *Smooth[T]) D2FDX2(x float64, _ int) T { return s.d2(x) }

// Field adapts a closure of several variables to a UnivariateEquation.
type Field[T any] struct {
	name string
	dom  *Domain
	f    func(x []float64) T
}

func NewField[T any](name string, dom *Domain, f func(x []float64) T) *Field[T] {
	return &Field[T]{name: name, dom: dom, f: f}
}

func (f *Field[T]) Name() string { return f.name }
func (f *Field[T]) Domain() *Domain { return f.dom }
func (f *Field[T]) FX(x []float64, _ int) T { return f.f(x) }

// GradField is a Field with an analytic gradient.
type GradField[T any] struct {
	Field[T]
	grad func(x []float64) []T
}

func NewGradField[T any](name string, dom *Domain, f func(x []float64) T, grad func(x []float64) []T) *GradField[T] {
	return &GradField[T]{Field: *NewField(name, dom, f), grad: grad}
}

func (g *GradField[T]) Gradient(x []float64, _ int) []T { return g.grad(x) }

// System adapts a vector-valued closure to a MultivariateEquation.
type System[T any] struct {
	name  string
	dom   *Domain
	nEqns int
	f     func(x []float64) []T
	jac   func(x []float64) [][]T
}

func NewSystem[T any](name string, dom *Domain, nEqns int, f func(x []float64) []T) *System[T] {
	return &System[T]{name: name, dom: dom, nEqns: nEqns, f: f}
}

func (s *System[T]) Name() string { return s.name }
func (s *System[T]) Domain() *Domain { return s.dom }
func (s *System[T]) NEqns() int { return s.nEqns }
func (s *System[T]) FX(x []float64, _ int) []T { return s.f(x) }

// JacSystem is a System with an analytic Jacobian.
type JacSystem[T any] struct {
	System[T]
}

func NewJacSystem[T any](name string, dom *Domain, nEqns int, f func(x []float64) []T, jac func(x []float64) [][]T) *JacSystem[T] {
	s := NewSystem(name, dom, nEqns, f)
	s.jac = jac
	return &JacSystem[T]{System: *s}
}

func (s *JacSystem[T]) Jacobian(x []float64, _ int) [][]T { return s.jac(x) }

// Line restricts a field to x0 + t*dir, t in [tLo, tHi].
type Line struct {
	field UnivariateEquation[float64]
	x0    []float64
	dir   []float64
	dom   *Domain
	buf   []float64
}

func NewLine(field UnivariateEquation[float64], x0, dir []float64, tLo, tHi float64) *Line {
	return &Line{
		field: field,
		x0:    append([]float64(nil), x0...),
		dir:   append([]float64(nil), dir...),
		dom:   NewInterval(tLo, tHi),
		buf:   make([]float64, len(x0)),
	}
}

func (l *Line) Domain() *Domain { return l.dom }

func (l *Line) FX(t float64, li int) float64 {
	l.Point(t, l.buf)
	return l.field.FX(l.buf, li)
}

// Point writes x0 + t*dir into dst, clamped into the field's domain.
func (l *Line) Point(t float64, dst []float64) []float64 {
	for i := range l.x0 {
		dst[i] = l.x0[i] + t*l.dir[i]
	}
	l.field.Domain().Limit(dst)
	return dst
}

// AsField views a scalar-input equation as a one dimensional field.
func AsField[T any](e Equation[T]) UnivariateEquation[T] {
	return &scalarField[T]{e: e}
}

type scalarField[T any] struct {
	e Equation[T]
}

func (s *scalarField[T]) Domain() *Domain { return s.e.Domain() }
func (s *scalarField[T]) FX(x []float64, li int) T { return s.e.FX(x[0], li) }

// Cached memoizes the last evaluation per index, the way a per-cell lookup
// table would. It is not safe for concurrent use.
type Cached[T any] struct {
	inner  Equation[T]
	last   map[int]cacheEntry[T]
	hits   int
	misses int
}

type cacheEntry[T any] struct {
	x float64
	y T
}

func NewCached[T any](inner Equation[T]) *Cached[T] {
	return &Cached[T]{inner: inner, last: make(map[int]cacheEntry[T])}
}

func (c *Cached[T]) Domain() *Domain { return c.inner.Domain() }

func (c *Cached[T]) FX(x float64, li int) T {
	if e, ok := c.last[li]; ok && e.x == x {
		c.hits++
		return e.y
	}
	c.misses++
	y := c.inner.FX(x, li)
	c.last[li] = cacheEntry[T]{x: x, y: y}
	return y
}

func (c *Cached[T]) Hits() int { return c.hits }
func (c *Cached[T]) Misses() int { return c.misses }

func (c *Cached[T]) Reset() {
	clear(c.last)
	c.hits, c.misses = 0, 0
}
