// Package integrators computes definite integrals of equations.
//
// A fixed-order [Rule] (midpoint, trapezoidal, Simpson 1/3 and 3/8, Boole,
// Gauss-Legendre) is applied on a composite grid of NIntervals pieces. When
// adaptivity is enabled, and the output type supports it, every piece is
// bisected until the whole and split estimates agree to
//
//	|Q_whole - Q_split| < tolerance * max(|Q_whole|, absTolerance)
//
// or the split cap or minimum step is reached. Closed rules reuse every
// parent sample when an interval is bisected.
//
// Integration never fails on tolerance; the returned [Stats] counts the
// pieces that were accepted without converging.
//
// # Example
//
//	f := equation.NewRunge(equation.NewInterval(0, 1))
//	set := integrators.DefaultSettings()
//	set.Scheme = integrators.Gaussian
//	integ, _ := integrators.New(equation.Scalar, f, set)
//	v, stats := integ.Integrate(0, 1, 0)
//
// # Thread Safety
//
// Integrators keep no state between calls; counters live in the returned
// Stats. They are safe for concurrent use when the equation is.
package integrators
