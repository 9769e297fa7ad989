package equation

import (
	"errors"
	"fmt"
)

var (
	// ErrNotImplemented indicates an operation the concrete equation does not provide.
	ErrNotImplemented = errors.New("equation: not implemented")

	// ErrDimension indicates mismatched input, output or coefficient dimensions.
	ErrDimension = errors.New("equation: dimension mismatch")

	// ErrUnknownFunction indicates a library function name that is not registered.
	ErrUnknownFunction = errors.New("equation: unknown function")
)

// NotImplementedError names the missing operation and the equation it was
// requested from.
type NotImplementedError struct {
	Op       string
	Equation string
}

func (e *NotImplementedError) Error() string {
	if e.Equation == "" {
		return fmt.Sprintf("equation: %s not implemented", e.Op)
	}
	return fmt.Sprintf("equation: %s not implemented for %s", e.Op, e.Equation)
}

func (e *NotImplementedError) Unwrap() error {
	return ErrNotImplemented
}
