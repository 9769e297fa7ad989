// Package thermo inverts caloric equations of state for temperature.
//
// Newton.Solve is a plain Newton iteration on T for F(rho, T) = target,
// clamped after every step. Unlike the rest of the numerics it treats the
// iteration cap as fatal: a temperature that did not converge is returned
// as a *ConvergenceError carrying every iterate, after the iterates have
// been logged.
package thermo
