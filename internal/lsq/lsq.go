// Package lsq fits the coefficients of an equation to sampled data.
//
// Equations that are linear in their coefficients are solved in one QR
// decomposition of the design matrix built from CoeffJ rows. Everything
// else goes through Gauss-Newton iterations on the same machinery. Fits
// never fail for lack of convergence; the Result says whether the final
// update met the tolerance.
//
// A Fitter writes the solved coefficients back into the equation, so an
// equation must not be evaluated from another goroutine while it is being
// fitted.
package lsq

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/numerix/internal/config"
	"github.com/san-kum/numerix/internal/equation"
	"github.com/san-kum/numerix/internal/logging"
)

var (
	ErrSingular = errors.New("lsq: design matrix is rank deficient")
	ErrWeight   = errors.New("lsq: negative sample weight")
)

const (
	DefaultMaxSteps  = 100
	DefaultTolerance = 1e-10

	// maxHalvings bounds the step halving of one Gauss-Newton update.
	maxHalvings = 30
)

type Settings struct {
	MaxSteps  int
	Tolerance float64
}

func DefaultSettings() Settings {
	return Settings{MaxSteps: DefaultMaxSteps, Tolerance: DefaultTolerance}
}

// SettingsFromDict reads maxSteps and tolerance.
func SettingsFromDict(d *config.Dict) Settings {
	def := DefaultSettings()
	return Settings{
		MaxSteps:  max(1, d.Int("maxSteps", def.MaxSteps)),
		Tolerance: d.Float("tolerance", def.Tolerance),
	}
}

// Result describes a completed fit. Residuals are y - f(x) without weights.
type Result struct {
	Coeffs    []float64
	Residuals []float64
	R2        float64
	Steps     int
	Converged bool
}

type Fitter struct {
	set Settings
	log logrus.FieldLogger
}

func New(set Settings) *Fitter {
	return &Fitter{set: set, log: logging.Discard()}
}

func FromDict(d *config.Dict) *Fitter { return New(SettingsFromDict(d)) }

func (f *Fitter) SetLogger(l logrus.FieldLogger) { f.log = logging.OrDiscard(l) }

// FindCoeffs fits eqn to the samples (x[i], y[i]) with equal weights.
func (f *Fitter) FindCoeffs(eqn equation.CoefficientEquation, x [][]float64, y []float64, li int) (Result, error) {
	return f.FindCoeffsWeighted(eqn, x, y, nil, li)
}

// FindCoeffsWeighted minimises sum w_i (y_i - f(x_i))^2. A nil w means
// equal weights.
func (f *Fitter) FindCoeffsWeighted(eqn equation.CoefficientEquation, x [][]float64, y, w []float64, li int) (Result, error) {
	if err := check(eqn, x, y, w); err != nil {
		return Result{}, err
	}
	sw := sqrtWeights(w, len(y))

	var (
		res Result
		err error
	)
	if lin, ok := eqn.(equation.LinearInCoefficients); ok {
		res, err = f.linear(lin, x, y, sw, li)
	} else {
		res, err = f.gaussNewton(eqn, x, y, sw, li)
	}
	if err != nil {
		return Result{}, err
	}

	res.Coeffs = eqn.Coeffs()
	est := make([]float64, len(y))
	res.Residuals = make([]float64, len(y))
	for i := range y {
		est[i] = eqn.FX(x[i], li)
		res.Residuals[i] = y[i] - est[i]
	}
	res.R2 = stat.RSquaredFrom(est, y, w)

	f.log.WithFields(logrus.Fields{
		"coeffs":    res.Coeffs,
		"steps":     res.Steps,
		"converged": res.Converged,
		"r2":        res.R2,
	}).Debug("fitted coefficients")
	return res, nil
}

// FindCoeffs fits with default settings.
func FindCoeffs(eqn equation.CoefficientEquation, x [][]float64, y []float64, li int) (Result, error) {
	return New(DefaultSettings()).FindCoeffs(eqn, x, y, li)
}

func check(eqn equation.CoefficientEquation, x [][]float64, y, w []float64) error {
	if len(x) != len(y) {
		return fmt.Errorf("%w: %d sample points but %d targets", equation.ErrDimension, len(x), len(y))
	}
	if w != nil && len(w) != len(y) {
		return fmt.Errorf("%w: %d weights for %d samples", equation.ErrDimension, len(w), len(y))
	}
	n := eqn.Domain().NVar()
	for i, xi := range x {
		if len(xi) != n {
			return fmt.Errorf("%w: sample %d has %d variables, equation has %d", equation.ErrDimension, i, len(xi), n)
		}
	}
	for i, wi := range w {
		if wi < 0 {
			return fmt.Errorf("%w: w[%d] = %g", ErrWeight, i, wi)
		}
	}
	if len(y) < eqn.NCoeffs() {
		return fmt.Errorf("%w: %d samples for %d coefficients", ErrSingular, len(y), eqn.NCoeffs())
	}
	return nil
}

func sqrtWeights(w []float64, n int) []float64 {
	sw := make([]float64, n)
	for i := range sw {
		if w == nil {
			sw[i] = 1
		} else {
			sw[i] = math.Sqrt(w[i])
		}
	}
	return sw
}

// design fills the weighted coefficient Jacobian, one row per sample.
func design(eqn equation.CoefficientEquation, x [][]float64, sw []float64, li int) *mat.Dense {
	a := mat.NewDense(len(x), eqn.NCoeffs(), nil)
	for i, xi := range x {
		row := append([]float64(nil), eqn.CoeffJ(xi, li)...)
		floats.Scale(sw[i], row)
		a.SetRow(i, row)
	}
	return a
}

func solve(a *mat.Dense, b []float64) ([]float64, error) {
	var qr mat.QR
	qr.Factorize(a)

	var c mat.VecDense
	if err := qr.SolveVecTo(&c, false, mat.NewVecDense(len(b), b)); err != nil {
		var cond mat.Condition
		if errors.As(err, &cond) {
			return nil, fmt.Errorf("%w: condition number %g", ErrSingular, float64(cond))
		}
		return nil, err
	}
	return mat.Col(nil, 0, &c), nil
}

func (f *Fitter) linear(eqn equation.LinearInCoefficients, x [][]float64, y, sw []float64, li int) (Result, error) {
	b := make([]float64, len(y))
	for i := range y {
		b[i] = sw[i] * y[i]
	}
	c, err := solve(design(eqn, x, sw, li), b)
	if err != nil {
		return Result{}, err
	}
	if err := eqn.SetCoeffs(c); err != nil {
		return Result{}, err
	}
	return Result{Steps: 1, Converged: true}, nil
}

// gaussNewton linearises eqn about the current coefficients and solves for
// the update until it is small. Updates that increase the residual are
// halved.
func (f *Fitter) gaussNewton(eqn equation.CoefficientEquation, x [][]float64, y, sw []float64, li int) (Result, error) {
	c := eqn.Coeffs()
	r := make([]float64, len(y))
	ssr := residuals(eqn, x, y, sw, li, r)

	res := Result{}
	for res.Steps < f.set.MaxSteps {
		res.Steps++
		dc, err := solve(design(eqn, x, sw, li), r)
		if err != nil {
			return Result{}, err
		}

		trial := make([]float64, len(c))
		next := ssr
		for h := 0; h <= maxHalvings; h++ {
			floats.AddTo(trial, c, dc)
			if err := eqn.SetCoeffs(trial); err != nil {
				return Result{}, err
			}
			next = residuals(eqn, x, y, sw, li, r)
			if next <= ssr {
				break
			}
			floats.Scale(0.5, dc)
		}
		if next > ssr {
			// No halving helped; keep the previous coefficients.
			if err := eqn.SetCoeffs(c); err != nil {
				return Result{}, err
			}
			residuals(eqn, x, y, sw, li, r)
			res.Converged = true
			break
		}

		copy(c, trial)
		ssr = next
		if floats.Norm(dc, 2) < f.set.Tolerance*math.Max(1, floats.Norm(c, 2)) {
			res.Converged = true
			break
		}
	}

	if !res.Converged {
		f.log.WithFields(logrus.Fields{"steps": res.Steps, "ssr": ssr}).Warn("Gauss-Newton hit the step limit")
	}
	return res, nil
}

// residuals fills r with the weighted residuals and returns their sum of
// squares.
func residuals(eqn equation.CoefficientEquation, x [][]float64, y, sw []float64, li int, r []float64) float64 {
	for i := range y {
		r[i] = sw[i] * (y[i] - eqn.FX(x[i], li))
	}
	return floats.Dot(r, r)
}
