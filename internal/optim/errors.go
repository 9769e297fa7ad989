package optim

import (
	"fmt"

	"github.com/san-kum/numerix/internal/equation"
)

func dimensionError(n int, got ...int) error {
	return fmt.Errorf("%w: problem has %d variables, got start/lower/upper of length %v",
		equation.ErrDimension, n, got)
}
