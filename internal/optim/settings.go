package optim

import (
	"fmt"

	"github.com/san-kum/numerix/internal/config"
)

const (
	DefaultXTol     = 1e-6
	DefaultXRelTol  = 1e-6
	DefaultYTol     = 1e-10
	DefaultYRelTol  = 1e-10
	DefaultMaxSteps = 100
	DefaultTau      = 0.5
)

// Settings are shared by every scheme. Tolerances hold one entry per
// dimension.
type Settings struct {
	XTol    []float64
	XRelTol []float64
	YTol    []float64
	YRelTol []float64

	MaxSteps int

	// NSamples > 0 samples the bounds on a grid of NSamples cells per axis
	// before iterating and starts from the best cell.
	NSamples int

	// Normalise accepts a dimension when either its relative or absolute
	// error is small. Without it only the absolute test counts.
	Normalise bool

	// Tau is the shrink factor of line and step searches.
	Tau float64

	// Debug logs how each minimization ended.
	Debug bool
}

func DefaultSettings(n int) Settings {
	return Settings{
		XTol:      fill(n, DefaultXTol),
		XRelTol:   fill(n, DefaultXRelTol),
		YTol:      fill(1, DefaultYTol),
		YRelTol:   fill(1, DefaultYRelTol),
		MaxSteps:  DefaultMaxSteps,
		Normalise: true,
		Tau:       DefaultTau,
	}
}

// SettingsFromDict reads the tolerances for an n dimensional problem. A
// scalar tolerance applies to every dimension; a list is given per
// dimension.
func SettingsFromDict(d *config.Dict, n int) (Settings, error) {
	s := Settings{
		XTol:      d.Floats("xTolerance", n, DefaultXTol, "xTolerances"),
		XRelTol:   d.Floats("xRelTolerance", n, DefaultXRelTol, "xRelTolerances"),
		YTol:      d.Floats("yTolerance", 1, DefaultYTol, "yTolerances"),
		YRelTol:   d.Floats("yRelTolerance", 1, DefaultYRelTol, "yRelTolerances"),
		MaxSteps:  d.Int("maxSteps", DefaultMaxSteps),
		NSamples:  d.Int("nSamples", 0, "nSample"),
		Normalise: d.Bool("normaliseError", true),
		Tau:       d.Float("tau", DefaultTau),
		Debug:     d.Bool("debug", false),
	}
	if s.MaxSteps < 1 {
		return Settings{}, fmt.Errorf("optim: maxSteps must be positive, got %d", s.MaxSteps)
	}
	if s.Tau <= 0 || s.Tau >= 1 {
		return Settings{}, fmt.Errorf("optim: tau must lie in (0, 1), got %g", s.Tau)
	}
	return s, nil
}

func fill(n int, v float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = v
	}
	return s
}

// Outcome says how a minimization ended.
type Outcome int

const (
	Converged Outcome = iota
	HitIterationCap
	HitBounds
)

func (o Outcome) String() string {
	switch o {
	case Converged:
		return "converged"
	case HitIterationCap:
		return "did not converge, hit iteration cap"
	case HitBounds:
		return "did not converge, hit bounds"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Status describes a finished Minimize call.
type Status struct {
	Steps       int
	Evaluations int
	Outcome     Outcome

	// Widths holds the bracket width after each step of bracketing
	// schemes.
	Widths []float64
}

func (s Status) Converged() bool { return s.Outcome == Converged }
