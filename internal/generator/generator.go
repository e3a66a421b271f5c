package generator

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/mcasillasm/RFManalisis/internal/domain"
)

// Generator produces synthetic purchase histories. Purchase counts follow a
// Poisson distribution, each customer's mean basket is log-normal and
// individual amounts vary around that mean, so the population covers the
// whole recency/frequency/monetary space.
type Generator struct {
	cfg  Config
	rand *rand.Rand
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	if cfg.Customers <= 0 {
		cfg.Customers = DefaultConfig().Customers
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.Today.IsZero() {
		cfg.Today = DefaultConfig().Today
	}
	return &Generator{
		cfg:  cfg,
		rand: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// ReferenceDate returns the scoring anchor for generated data: the day after
// the newest possible purchase, so every transaction has recency of at least
// one day.
func (g *Generator) ReferenceDate() time.Time {
	return g.cfg.Today.AddDate(0, 0, 1)
}

// Generate synthesises the purchase histories. It respects context
// cancellation.
func (g *Generator) Generate(ctx context.Context) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	for i := 1; i <= g.cfg.Customers; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		customerID := fmt.Sprintf("C%03d", i)
		purchases := g.poisson(5)
		if purchases < 1 {
			purchases = 1
		}
		meanBasket := math.Exp(8 + g.rand.NormFloat64())

		for p := 0; p < purchases; p++ {
			daysBack := 1 + g.rand.Intn(364)
			amount := meanBasket + g.rand.NormFloat64()*meanBasket*0.5
			if amount < 100 {
				amount = 100
			}
			txs = append(txs, domain.Transaction{
				CustomerID:   customerID,
				PurchaseDate: g.cfg.Today.AddDate(0, 0, -daysBack),
				Amount:       math.Round(amount*100) / 100,
			})
		}
	}
	return txs, nil
}

// poisson draws from a Poisson distribution using Knuth's method, which is
// fine for the small lambdas used here.
func (g *Generator) poisson(lambda float64) int {
	limit := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		p *= g.rand.Float64()
		if p <= limit {
			return k
		}
		k++
	}
}
