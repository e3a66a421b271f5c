package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mcasillasm/RFManalisis/internal/domain"
	"github.com/mcasillasm/RFManalisis/internal/report"
	"github.com/mcasillasm/RFManalisis/internal/store"
)

// Scorer is the scoring contract required by the segmentation service.
type Scorer interface {
	Score(ctx context.Context, txs []domain.Transaction, reference time.Time) ([]domain.ScoredCustomer, error)
}

// ErrNoSnapshot is returned when results are queried before the first
// scoring run has completed.
var ErrNoSnapshot = errors.New("no scoring run has completed yet")

// SegmentationService orchestrates loading, sanitizing and scoring
// transactions, and serves the latest snapshot to queries.
type SegmentationService struct {
	source store.Source
	scorer Scorer
	nowFn  func() time.Time

	mu       sync.RWMutex
	snapshot *Snapshot
}

// NewSegmentationService constructs a SegmentationService reading from the
// given source and scoring with the given scorer.
func NewSegmentationService(source store.Source, scorer Scorer) *SegmentationService {
	return &SegmentationService{
		source: source,
		scorer: scorer,
		nowFn:  time.Now,
	}
}

// WithClock overrides the time provider (used primarily in tests).
func (s *SegmentationService) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		s.nowFn = nowFn
	}
}

// Run loads transactions from the source, scores them against the reference
// date and retains the result as the latest snapshot. A zero reference date
// defaults to the current time in UTC.
func (s *SegmentationService) Run(ctx context.Context, reference time.Time) (*Snapshot, error) {
	txs, err := s.source.Transactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}

	reference = s.resolveReference(reference)
	scored, err := s.scorer.Score(ctx, sanitizeTransactions(txs), reference)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		RunID:         uuid.New(),
		ReferenceDate: reference,
		ScoredAt:      s.nowFn().UTC(),
		Customers:     scored,
		Summary:       report.Summarize(scored),
	}
	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()
	return snap, nil
}

// Score sanitizes and scores the given transactions without touching the
// stored snapshot.
func (s *SegmentationService) Score(ctx context.Context, txs []domain.Transaction, reference time.Time) ([]domain.ScoredCustomer, error) {
	return s.scorer.Score(ctx, sanitizeTransactions(txs), s.resolveReference(reference))
}

// Snapshot returns the latest scoring result, or nil before the first run.
func (s *SegmentationService) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// ListCustomers filters the latest snapshot and returns the requested page.
func (s *SegmentationService) ListCustomers(params ListParams) (CustomersPage, error) {
	snap := s.Snapshot()
	if snap == nil {
		return CustomersPage{}, ErrNoSnapshot
	}

	filtered := params.Filter.Apply(snap.Customers)
	page, pageSize := normalizePagination(params.Page, params.PageSize)
	start := (page - 1) * pageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	end := start + pageSize
	if end > len(filtered) {
		end = len(filtered)
	}
	return CustomersPage{
		Items:      filtered[start:end],
		Pagination: buildPaginationMeta(page, pageSize, len(filtered)),
	}, nil
}

// FilteredCustomers returns every snapshot customer passing the filter,
// primarily for exports.
func (s *SegmentationService) FilteredCustomers(filter report.Filter) ([]domain.ScoredCustomer, error) {
	snap := s.Snapshot()
	if snap == nil {
		return nil, ErrNoSnapshot
	}
	return filter.Apply(snap.Customers), nil
}

// Summary returns the run metadata together with the KPI summary of the
// filtered snapshot customers. A zero filter summarizes the whole snapshot.
func (s *SegmentationService) Summary(filter report.Filter) (SummaryView, error) {
	snap := s.Snapshot()
	if snap == nil {
		return SummaryView{}, ErrNoSnapshot
	}
	return SummaryView{
		RunID:         snap.RunID,
		ReferenceDate: snap.ReferenceDate,
		ScoredAt:      snap.ScoredAt,
		Summary:       report.Summarize(filter.Apply(snap.Customers)),
	}, nil
}

// Distribution returns the segment counts of the filtered snapshot.
func (s *SegmentationService) Distribution(filter report.Filter) ([]report.SegmentCount, error) {
	snap := s.Snapshot()
	if snap == nil {
		return nil, ErrNoSnapshot
	}
	return report.SegmentDistribution(filter.Apply(snap.Customers)), nil
}

// Matrix returns the recency/frequency score matrix of the filtered snapshot.
func (s *SegmentationService) Matrix(filter report.Filter) ([5][5]int, error) {
	snap := s.Snapshot()
	if snap == nil {
		return [5][5]int{}, ErrNoSnapshot
	}
	return report.RFMatrix(filter.Apply(snap.Customers)), nil
}

// TopCustomers returns the n highest spenders of the filtered snapshot.
func (s *SegmentationService) TopCustomers(n int, filter report.Filter) ([]domain.ScoredCustomer, error) {
	snap := s.Snapshot()
	if snap == nil {
		return nil, ErrNoSnapshot
	}
	return report.TopByMonetary(filter.Apply(snap.Customers), n), nil
}

func (s *SegmentationService) resolveReference(reference time.Time) time.Time {
	if reference.IsZero() {
		return s.nowFn().UTC()
	}
	return reference.UTC()
}

func normalizePagination(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	if pageSize > 200 {
		pageSize = 200
	}
	return page, pageSize
}

func buildPaginationMeta(page, pageSize, total int) PaginationMeta {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(pageSize)))
		if total > 0 && totalPages == 0 {
			totalPages = 1
		}
	}
	return PaginationMeta{
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}
}
