package rfm

import (
	"sort"
	"strings"
	"time"

	"github.com/mcasillasm/RFManalisis/internal/domain"
)

// validate inspects every transaction and collects all failures instead of
// stopping at the first one.
func validate(txs []domain.Transaction, reference time.Time) error {
	var recErrs domain.RecordErrors
	for i, tx := range txs {
		switch {
		case strings.TrimSpace(tx.CustomerID) == "":
			recErrs.Append(domain.RecordError{Index: i, Reason: "customer id is required"})
		case !(tx.Amount > 0): // also rejects NaN
			recErrs.Append(domain.RecordError{Index: i, CustomerID: tx.CustomerID, Reason: "amount must be positive"})
		case tx.PurchaseDate.After(reference):
			recErrs.Append(domain.RecordError{Index: i, CustomerID: tx.CustomerID, Reason: "purchase date is after the reference date"})
		}
	}
	return recErrs.AsError()
}

type accumulator struct {
	latest time.Time
	count  int
	total  float64
}

func accumulate(acc map[string]*accumulator, tx domain.Transaction) {
	a, ok := acc[tx.CustomerID]
	if !ok {
		a = &accumulator{}
		acc[tx.CustomerID] = a
	}
	if tx.PurchaseDate.After(a.latest) {
		a.latest = tx.PurchaseDate
	}
	a.count++
	a.total += tx.Amount
}

// flatten turns one or more disjoint accumulator shards into metrics sorted
// by customer id, so downstream scoring sees the same order regardless of
// input order or shard layout.
func flatten(reference time.Time, shards ...map[string]*accumulator) []domain.CustomerMetrics {
	total := 0
	for _, s := range shards {
		total += len(s)
	}
	metrics := make([]domain.CustomerMetrics, 0, total)
	for _, s := range shards {
		for id, a := range s {
			metrics = append(metrics, domain.CustomerMetrics{
				CustomerID: id,
				Recency:    daysBetween(a.latest, reference),
				Frequency:  a.count,
				Monetary:   a.total,
			})
		}
	}
	sort.Slice(metrics, func(i, j int) bool { return metrics[i].CustomerID < metrics[j].CustomerID })
	return metrics
}

// daysBetween returns the whole days elapsed from t to reference, truncating
// partial days.
func daysBetween(t, reference time.Time) int {
	return int(reference.Sub(t) / (24 * time.Hour))
}

// Aggregate reduces raw transactions to one CustomerMetrics row per customer:
// days since the most recent purchase, purchase count and total spend. It
// returns domain.ErrEmptyInput for an empty slice and *domain.RecordErrors
// listing every invalid record when validation fails.
func Aggregate(txs []domain.Transaction, reference time.Time) ([]domain.CustomerMetrics, error) {
	if len(txs) == 0 {
		return nil, domain.ErrEmptyInput
	}
	if err := validate(txs, reference); err != nil {
		return nil, err
	}
	acc := make(map[string]*accumulator, len(txs))
	for _, tx := range txs {
		accumulate(acc, tx)
	}
	return flatten(reference, acc), nil
}
