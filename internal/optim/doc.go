// Package optim minimizes equations and finds roots of them.
//
// Univariate schemes take a scalar-input equation and a start point inside
// a bracket:
//
//	s, _ := optim.NewGoldenRatio(f, optim.DefaultSettings(1))
//	x, st := s.Minimize(0, 0, 5, 0)
//
// Multivariate schemes take a field and per-axis bounds. Every scheme
// returns its best estimate together with a Status; running out of steps
// is reported there and is never an error.
//
// Schemes count evaluations and, for the swarm, hold a random source, so
// one instance must not be shared between goroutines.
package optim
