package rfm

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/mcasillasm/RFManalisis/internal/domain"
)

// aggregateSharded partitions transactions by customer id hash so every
// worker owns a disjoint set of customers and the accumulators need no
// locking. Callers must have validated the transactions already.
func (e *Engine) aggregateSharded(ctx context.Context, txs []domain.Transaction, reference time.Time) ([]domain.CustomerMetrics, error) {
	workers := e.workers
	if workers < 1 {
		workers = 1
	}

	buckets := make([][]domain.Transaction, workers)
	for _, tx := range txs {
		idx := shardFor(tx.CustomerID, workers)
		buckets[idx] = append(buckets[idx], tx)
	}

	shards := make([]map[string]*accumulator, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			acc := make(map[string]*accumulator)
			for _, tx := range buckets[w] {
				if ctx.Err() != nil {
					return
				}
				accumulate(acc, tx)
			}
			shards[w] = acc
		}(w)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return flatten(reference, shards...), nil
}

func shardFor(customerID string, workers int) int {
	h := fnv.New32a()
	h.Write([]byte(customerID))
	return int(h.Sum32() % uint32(workers))
}
