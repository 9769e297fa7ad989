package optim

import (
	"math"
)

// GridSearch cuts a box into n cells per axis and evaluates the objective
// at every cell midpoint.
type GridSearch struct {
	lower, upper []float64
	cells        int
}

func NewGridSearch(lower, upper []float64, cells int) *GridSearch {
	return &GridSearch{
		lower: append([]float64(nil), lower...),
		upper: append([]float64(nil), upper...),
		cells: max(1, cells),
	}
}

// Search returns the best midpoint and its value.
func (g *GridSearch) Search(f func(x []float64) float64) ([]float64, float64) {
	best := math.Inf(1)
	var bestX []float64

	g.searchRecursive(0, make([]float64, len(g.lower)), f, &best, &bestX)

	return bestX, best
}

func (g *GridSearch) searchRecursive(
	depth int,
	current []float64,
	f func([]float64) float64,
	best *float64,
	bestX *[]float64,
) {
	if depth == len(g.lower) {
		val := f(current)
		if val < *best || *bestX == nil {
			*best = val
			*bestX = append([]float64(nil), current...)
		}
		return
	}

	h := (g.upper[depth] - g.lower[depth]) / float64(g.cells)
	for j := 0; j < g.cells; j++ {
		current[depth] = g.lower[depth] + (float64(j)+0.5)*h
		g.searchRecursive(depth+1, current, f, best, bestX)
	}
}
