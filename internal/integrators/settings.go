package integrators

import (
	"github.com/san-kum/numerix/internal/config"
)

// Scheme identifies a quadrature scheme by its configured name.
type Scheme string

const (
	Midpoint         Scheme = "midpoint"
	Trapezoidal      Scheme = "trapezoidal"
	Simpson13        Scheme = "Simpson13"
	Simpson38        Scheme = "Simpson38"
	Boole            Scheme = "Boole"
	Gaussian         Scheme = "Gaussian"
	VariableGaussian Scheme = "variableGaussian"
)

const (
	DefaultScheme     = Simpson13
	DefaultRelTol     = 1e-6
	DefaultAbsTol     = 1e-10
	DefaultMaxSplits  = 16
	DefaultNIntervals = 1
	DefaultMinStep    = 1e-12
	DefaultNodes      = 5
)

type schemeInfo struct {
	rule func(s Settings) (Rule, error)

	// pRefine schemes compare n and 2n node estimates instead of bisecting
	// for the error estimate.
	pRefine bool
}

func fixed(r Rule) schemeInfo {
	return schemeInfo{rule: func(Settings) (Rule, error) { return r, nil }}
}

// Schemes is the registry of quadrature schemes.
var Schemes = config.NewRegistry[Scheme, schemeInfo]("integrator")

func init() {
	Schemes.Register(Midpoint, fixed(MidpointRule))
	Schemes.Register(Trapezoidal, fixed(TrapezoidRule))
	Schemes.Register(Simpson13, fixed(Simpson13Rule))
	Schemes.Register(Simpson38, fixed(Simpson38Rule))
	Schemes.Register(Boole, fixed(BooleRule))
	Schemes.Register(Gaussian, schemeInfo{
		rule: func(s Settings) (Rule, error) { return GaussLegendre(s.Nodes) },
	})
	Schemes.Register(VariableGaussian, schemeInfo{
		rule:    func(s Settings) (Rule, error) { return GaussLegendre(s.Nodes) },
		pRefine: true,
	})
}

// Settings are the convergence parameters of an integrator.
type Settings struct {
	Scheme     Scheme
	RelTol     float64
	AbsTol     float64
	MaxSplits  int
	NIntervals int
	MinStep    float64
	Adaptive   bool
	Nodes      int
}

func DefaultSettings() Settings {
	return Settings{
		Scheme:     DefaultScheme,
		RelTol:     DefaultRelTol,
		AbsTol:     DefaultAbsTol,
		MaxSplits:  DefaultMaxSplits,
		NIntervals: DefaultNIntervals,
		MinStep:    DefaultMinStep,
		Adaptive:   true,
		Nodes:      DefaultNodes,
	}
}

// SettingsFromDict reads integrator, tolerance, absTolerance, maxSplits,
// nIntervals, minStep, adaptive and nNodes. Unknown scheme names fail with
// a *config.UnknownSchemeError.
func SettingsFromDict(d *config.Dict) (Settings, error) {
	def := DefaultSettings()
	scheme, err := Schemes.Parse(d.String("integrator", string(def.Scheme), "scheme"))
	if err != nil {
		return Settings{}, err
	}
	return Settings{
		Scheme:     scheme,
		RelTol:     d.Float("tolerance", def.RelTol, "relTolerance"),
		AbsTol:     d.Float("absTolerance", def.AbsTol),
		MaxSplits:  d.Int("maxSplits", def.MaxSplits),
		NIntervals: max(1, d.Int("nIntervals", def.NIntervals)),
		MinStep:    d.Float("minStep", def.MinStep),
		Adaptive:   d.Bool("adaptive", def.Adaptive),
		Nodes:      d.Int("nNodes", def.Nodes, "nodes"),
	}, nil
}
