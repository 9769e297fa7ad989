package experiment

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/numerix/internal/config"
	"github.com/san-kum/numerix/internal/logging"
)

// Batch runs independent cases concurrently. Every case builds its own
// equation and solver, so nothing is shared between goroutines.
type Batch struct {
	cases   []*config.Case
	workers int
	log     logrus.FieldLogger
}

// NewBatch limits concurrency to workers; zero or less means no limit.
func NewBatch(cases []*config.Case, workers int) *Batch {
	return &Batch{cases: cases, workers: workers, log: logging.Discard()}
}

func (b *Batch) SetLogger(l logrus.FieldLogger) { b.log = logging.OrDiscard(l) }

// Run returns results in case order. The first failing case cancels the
// rest and its error is returned.
func (b *Batch) Run(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, len(b.cases))

	g, ctx := errgroup.WithContext(ctx)
	if b.workers > 0 {
		g.SetLimit(b.workers)
	}
	for i, c := range b.cases {
		g.Go(func() error {
			e := New(c)
			e.SetLogger(b.log)
			res, err := e.Run(ctx)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
