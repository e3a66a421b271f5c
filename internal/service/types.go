package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/mcasillasm/RFManalisis/internal/domain"
	"github.com/mcasillasm/RFManalisis/internal/report"
)

// Snapshot is the outcome of one scoring run, kept in memory until the next
// run replaces it.
type Snapshot struct {
	RunID         uuid.UUID
	ReferenceDate time.Time
	ScoredAt      time.Time
	Customers     []domain.ScoredCustomer
	Summary       report.Summary
}

// SummaryView pairs the run metadata with the KPI summary of the (possibly
// filtered) snapshot customers.
type SummaryView struct {
	RunID         uuid.UUID
	ReferenceDate time.Time
	ScoredAt      time.Time
	Summary       report.Summary
}

// ListParams defines filters and pagination for listing scored customers.
type ListParams struct {
	Page     int
	PageSize int
	Filter   report.Filter
}

// PaginationMeta captures pagination metadata returned to API clients.
type PaginationMeta struct {
	Page       int
	PageSize   int
	TotalItems int
	TotalPages int
}

// CustomersPage represents paginated scored customers with metadata.
type CustomersPage struct {
	Items      []domain.ScoredCustomer
	Pagination PaginationMeta
}
