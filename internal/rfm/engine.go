package rfm

import (
	"context"
	"time"

	"github.com/mcasillasm/RFManalisis/internal/domain"
)

const defaultWorkers = 4

// Engine runs the full scoring pipeline: validation, aggregation, quintile
// scoring and segment assignment.
type Engine struct {
	workers int
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers sets how many goroutines aggregate transactions. Values below
// one are ignored.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// New creates an Engine with the provided options.
func New(opts ...Option) *Engine {
	e := &Engine{workers: defaultWorkers}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Score validates and aggregates the transactions, then scores every
// customer against the population. The reference date anchors recency;
// transactions dated after it are rejected. Results are sorted by customer
// id, so equal inputs produce equal outputs whatever their order.
func (e *Engine) Score(ctx context.Context, txs []domain.Transaction, reference time.Time) ([]domain.ScoredCustomer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, domain.ErrEmptyInput
	}
	if err := validate(txs, reference); err != nil {
		return nil, err
	}
	metrics, err := e.aggregateSharded(ctx, txs, reference)
	if err != nil {
		return nil, err
	}
	return ScoreMetrics(metrics)
}
