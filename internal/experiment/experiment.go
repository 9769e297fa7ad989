package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/numerix/internal/config"
	"github.com/san-kum/numerix/internal/logging"
)

// Result is the outcome of one case.
type Result struct {
	Case string
	Kind config.Kind

	// Value is the integral, the minimizer, the root, the fitted
	// coefficients or the inverted temperature.
	Value []float64

	// Objective is f at the minimizer or root, R^2 of a fit, or the
	// property residual of an inversion.
	Objective float64

	Evaluations int
	Steps       int
	Converged   bool
	Outcome     string

	// Trace is a series worth plotting: integrand samples, bracket widths
	// or fit residuals.
	Trace []float64

	Elapsed time.Duration
}

// Experiment runs one case with fresh solver instances.
type Experiment struct {
	cfg *config.Case
	log logrus.FieldLogger
}

func New(c *config.Case) *Experiment {
	return &Experiment{
		cfg: c.Clone(),
		log: logging.Discard(),
	}
}

func (e *Experiment) SetLogger(l logrus.FieldLogger) { e.log = logging.OrDiscard(l) }

func (e *Experiment) Case() *config.Case { return e.cfg }

func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	run, err := Runners.Get(string(e.cfg.Kind))
	if err != nil {
		return nil, err
	}

	log := e.log.WithFields(logrus.Fields{"case": e.cfg.Name, "kind": e.cfg.Kind})
	start := time.Now()
	res, err := run(e.cfg, log)
	if err != nil {
		return nil, fmt.Errorf("case %s: %w", e.cfg.Name, err)
	}
	res.Case = e.cfg.Name
	res.Kind = e.cfg.Kind
	res.Elapsed = time.Since(start)

	log.WithFields(logrus.Fields{
		"evaluations": res.Evaluations,
		"outcome":     res.Outcome,
		"elapsed":     res.Elapsed,
	}).Info("case finished")
	return res, nil
}
