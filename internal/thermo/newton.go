package thermo

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/numerix/internal/config"
	"github.com/san-kum/numerix/internal/equation"
	"github.com/san-kum/numerix/internal/logging"
)

const (
	DefaultAbsTol  = 1e-10
	DefaultRelTol  = 1e-12
	DefaultMaxIter = 100
)

// Property evaluates a state function of density and temperature in cell li.
type Property func(rho, T float64, li int) float64

// Limit clamps a temperature into the valid range of cell li.
type Limit func(T float64, li int) float64

type Settings struct {
	AbsTol  float64
	RelTol  float64
	MaxIter int
}

func DefaultSettings() Settings {
	return Settings{AbsTol: DefaultAbsTol, RelTol: DefaultRelTol, MaxIter: DefaultMaxIter}
}

// SettingsFromDict reads TAbsTolerance, TRelTolerance and maxIter.
func SettingsFromDict(d *config.Dict) Settings {
	def := DefaultSettings()
	return Settings{
		AbsTol:  d.Float("TAbsTolerance", def.AbsTol, "absTolerance"),
		RelTol:  d.Float("TRelTolerance", def.RelTol, "relTolerance"),
		MaxIter: max(1, d.Int("maxIter", def.MaxIter)),
	}
}

type Newton struct {
	set Settings
	log logrus.FieldLogger
}

func NewNewton(set Settings) *Newton {
	return &Newton{set: set, log: logging.Discard()}
}

func (n *Newton) SetLogger(l logrus.FieldLogger) { n.log = logging.OrDiscard(l) }

func (n *Newton) Settings() Settings { return n.set }

// Solve finds T with F(rho, T) = f starting from T0, iterating
// T <- limit(T - (F(T) - f) / dFdT(T)). The name labels errors and logs.
func (n *Newton) Solve(name string, f, rho, T0 float64, F, dFdT Property, limit Limit, li int) (float64, error) {
	if T, ok := n.iterate(f, rho, T0, F, dFdT, limit, li, nil); ok {
		return T, nil
	}

	iterates := make([]float64, 0, n.set.MaxIter)
	n.iterate(f, rho, T0, F, dFdT, limit, li, func(iter int, T, residual float64) {
		iterates = append(iterates, T)
		n.log.WithFields(logrus.Fields{
			"property": name,
			"target":   f,
			"rho":      rho,
			"iter":     iter,
			"T":        T,
			"residual": residual,
		}).Warn("Newton iterate")
	})

	err := &ConvergenceError{Property: name, Target: f, Rho: rho, Iterates: iterates}
	n.log.WithError(err).Error("temperature inversion failed")
	if len(iterates) == 0 {
		return T0, err
	}
	return iterates[len(iterates)-1], err
}

// iterate runs the Newton loop, reporting every iterate to trace when it
// is set.
func (n *Newton) iterate(f, rho, T0 float64, F, dFdT Property, limit Limit, li int, trace func(int, float64, float64)) (float64, bool) {
	T := limit(T0, li)
	for iter := 1; iter <= n.set.MaxIter; iter++ {
		residual := F(rho, T, li) - f
		next := limit(T-residual/equation.Stabilise(dFdT(rho, T, li)), li)
		dT := math.Abs(next - T)
		T = next
		if trace != nil {
			trace(iter, T, residual)
		}
		if dT < n.set.AbsTol || dT < n.set.RelTol*math.Abs(T) {
			return T, true
		}
	}
	return T, false
}
