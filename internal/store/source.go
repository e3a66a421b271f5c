package store

import (
	"context"
	"sync"

	"github.com/mcasillasm/RFManalisis/internal/domain"
)

// Source defines the minimal contract the scoring service needs to obtain
// transactions, keeping it independent of where the data lives.
type Source interface {
	Transactions(ctx context.Context) ([]domain.Transaction, error)
}

// Pinger is implemented by sources that can cheaply verify their own
// availability without loading the full dataset.
type Pinger interface {
	Ping(ctx context.Context) error
}

// MemorySource is an in-memory Source used for unit testing and for serving
// datasets that were loaded or generated up front.
type MemorySource struct {
	mu  sync.Mutex
	txs []domain.Transaction
	err error
}

// NewMemorySource creates a MemorySource holding a copy of the transactions.
func NewMemorySource(txs []domain.Transaction) *MemorySource {
	return &MemorySource{txs: append([]domain.Transaction(nil), txs...)}
}

// WithError configures the source to return the provided error on subsequent
// calls.
func (m *MemorySource) WithError(err error) *MemorySource {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// Replace swaps the stored transactions for a copy of the given ones.
func (m *MemorySource) Replace(txs []domain.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txs = append([]domain.Transaction(nil), txs...)
}

// Transactions returns a copy of the stored transactions so callers cannot
// mutate the source.
func (m *MemorySource) Transactions(ctx context.Context) ([]domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return append([]domain.Transaction(nil), m.txs...), nil
}
