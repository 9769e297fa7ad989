package thermo

import (
	"errors"
	"fmt"
)

var (
	ErrMaxIterations = errors.New("thermo: Newton iteration limit exceeded")
	ErrUnknownModel  = errors.New("thermo: unknown model")
)

// ConvergenceError records a failed inversion.
type ConvergenceError struct {
	Property string
	Target   float64
	Rho      float64
	Iterates []float64
}

func (e *ConvergenceError) Error() string {
	last := 0.0
	if n := len(e.Iterates); n > 0 {
		last = e.Iterates[n-1]
	}
	return fmt.Sprintf("thermo: T(%s=%g, rho=%g) did not converge after %d iterations, last T=%g",
		e.Property, e.Target, e.Rho, len(e.Iterates), last)
}

func (e *ConvergenceError) Unwrap() error {
	return ErrMaxIterations
}
