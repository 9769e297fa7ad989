package thermo

import (
	"fmt"

	"github.com/san-kum/numerix/internal/config"
	"github.com/san-kum/numerix/internal/equation"
	"github.com/san-kum/numerix/internal/integrators"
)

// Model is a caloric equation of state: specific internal energy and
// enthalpy with their temperature derivatives.
type Model interface {
	Name() string
	E(rho, T float64, li int) float64
	H(rho, T float64, li int) float64
	Cv(rho, T float64, li int) float64
	Cp(rho, T float64, li int) float64
	Limit(T float64, li int) float64
}

// TRhoE inverts e(rho, T) = e for T.
func TRhoE(n *Newton, m Model, e, rho, T0 float64, li int) (float64, error) {
	return n.Solve("e", e, rho, T0, m.E, m.Cv, m.Limit, li)
}

// THE inverts h(rho, T) = h for T.
func THE(n *Newton, m Model, h, rho, T0 float64, li int) (float64, error) {
	return n.Solve("h", h, rho, T0, m.H, m.Cp, m.Limit, li)
}

// Range bounds the valid temperatures of a model.
type Range struct {
	TLow, THigh float64
}

func (r Range) Limit(T float64, _ int) float64 {
	return min(max(T, r.TLow), r.THigh)
}

// PolynomialCv has cv(T) = sum a_k T^k, e(T) = eRef + int_Tref^T cv dT and
// h = e + R*T, so cp = cv + R. Density does not enter.
type PolynomialCv struct {
	Range
	cv   *equation.Polynomial
	e    *equation.Polynomial
	R    float64
	TRef float64
	ERef float64
}

func NewPolynomialCv(a []float64, R, TRef, ERef float64, rng Range) *PolynomialCv {
	dom := equation.NewInterval(rng.TLow, rng.THigh)
	anti := make([]float64, len(a)+1)
	for k, c := range a {
		anti[k+1] = c / float64(k+1)
	}
	return &PolynomialCv{
		Range: rng,
		cv:    equation.NewPolynomial(dom, a...),
		e:     equation.NewPolynomial(dom, anti...),
		R:     R,
		TRef:  TRef,
		ERef:  ERef,
	}
}

func (m *PolynomialCv) Name() string { return "polynomialCv" }

func (m *PolynomialCv) E(_, T float64, li int) float64 {
	return m.ERef + m.e.FX(T, li) - m.e.FX(m.TRef, li)
}

func (m *PolynomialCv) H(rho, T float64, li int) float64 { return m.E(rho, T, li) + m.R*T }
func (m *PolynomialCv) Cv(_, T float64, li int) float64 { return m.cv.FX(T, li) }
func (m *PolynomialCv) Cp(rho, T float64, li int) float64 { return m.Cv(rho, T, li) + m.R }

// IntegratedCv takes cv(T) from any equation and integrates it numerically
// for e(T).
type IntegratedCv struct {
	Range
	cv    equation.Equation[float64]
	integ *integrators.Adaptive[float64]
	R     float64
	TRef  float64
	ERef  float64
}

func NewIntegratedCv(cv equation.Equation[float64], set integrators.Settings, R, TRef, ERef float64) (*IntegratedCv, error) {
	integ, err := integrators.New(equation.Scalar, cv, set)
	if err != nil {
		return nil, err
	}
	dom := cv.Domain()
	return &IntegratedCv{
		Range: Range{TLow: dom.Lower(0), THigh: dom.Upper(0)},
		cv:    cv,
		integ: integ,
		R:     R,
		TRef:  TRef,
		ERef:  ERef,
	}, nil
}

func (m *IntegratedCv) Name() string { return "integratedCv" }

func (m *IntegratedCv) E(_, T float64, li int) float64 {
	e, _ := m.integ.Integrate(m.TRef, T, li)
	return m.ERef + e
}

func (m *IntegratedCv) H(rho, T float64, li int) float64 { return m.E(rho, T, li) + m.R*T }
func (m *IntegratedCv) Cv(_, T float64, li int) float64 { return equation.EvalLimited(m.cv, T, li) }
func (m *IntegratedCv) Cp(rho, T float64, li int) float64 { return m.Cv(rho, T, li) + m.R }

type ModelName string

const (
	PolynomialCvModel ModelName = "polynomialCv"
	IntegratedCvModel ModelName = "integratedCv"
)

type ModelCtor func(d *config.Dict) (Model, error)

// Models is the registry of caloric models.
var Models = config.NewRegistry[ModelName, ModelCtor]("thermo model")

func init() {
	Models.Register(PolynomialCvModel, func(d *config.Dict) (Model, error) {
		a, rng, err := cvFromDict(d)
		if err != nil {
			return nil, err
		}
		return NewPolynomialCv(a, d.Float("R", 287), d.Float("Tref", 298.15), d.Float("eRef", 0), rng), nil
	})
	Models.Register(IntegratedCvModel, func(d *config.Dict) (Model, error) {
		a, rng, err := cvFromDict(d)
		if err != nil {
			return nil, err
		}
		set, err := integrators.SettingsFromDict(d.Sub("integrator"))
		if err != nil {
			return nil, err
		}
		cv := equation.NewPolynomial(equation.NewInterval(rng.TLow, rng.THigh), a...)
		m, err := NewIntegratedCv(cv, set, d.Float("R", 287), d.Float("Tref", 298.15), d.Float("eRef", 0))
		if err != nil {
			return nil, err
		}
		return m, nil
	})
}

func cvFromDict(d *config.Dict) ([]float64, Range, error) {
	a := d.FloatList("cvCoeffs", nil, "cv")
	if len(a) == 0 {
		return nil, Range{}, fmt.Errorf("%w: %s needs cvCoeffs", config.ErrMissingKey, d.Name())
	}
	rng := Range{TLow: d.Float("Tlow", 1), THigh: d.Float("Thigh", 1e4)}
	if rng.THigh < rng.TLow {
		rng.TLow, rng.THigh = rng.THigh, rng.TLow
	}
	return a, rng, nil
}

// ModelFromDict builds the model named by the model key.
func ModelFromDict(d *config.Dict) (Model, error) {
	ctor, err := Models.Get(d.String("model", string(PolynomialCvModel)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnknownModel, err)
	}
	return ctor(d)
}
