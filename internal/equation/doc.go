// Package equation defines the function abstractions consumed by the
// integrators, minimizers and least-squares fitters.
//
// Three shapes are supported:
//
//   - [Equation]: scalar input, output of type T, up to three analytic derivatives
//   - [UnivariateEquation]: vector input, one T per evaluation, gradient components
//   - [MultivariateEquation]: vector input, vector of T output, Jacobian
//
// Output types are described by an [Algebra], which supplies the arithmetic,
// the magnitude used for error estimates and the root bracketing test.
// [Scalar], [Vector] and [Tensor] algebras are provided.
//
// Every equation owns a [Domain]. Inputs are clamped into the domain with
// [Domain.Limit] before evaluation; out-of-range inputs are never an error.
//
// # Thread Safety
//
// Evaluation is logically read-only, but the finite-difference step of a
// [Domain], the coefficients of a [CoefficientEquation] and the memo table
// of [Cached] are mutated in place without locking.
package equation
