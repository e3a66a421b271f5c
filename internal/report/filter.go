package report

import "github.com/mcasillasm/RFManalisis/internal/domain"

// Filter narrows a scored population. Nil bounds are open, set bounds are
// inclusive, and an empty segment list keeps every segment.
type Filter struct {
	Segments    []domain.Segment
	RecencyMin  *int
	RecencyMax  *int
	MonetaryMin *float64
	MonetaryMax *float64
}

// Matches reports whether the customer passes every configured condition.
func (f Filter) Matches(c domain.ScoredCustomer) bool {
	if len(f.Segments) > 0 {
		found := false
		for _, s := range f.Segments {
			if c.Segment == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.RecencyMin != nil && c.Recency < *f.RecencyMin {
		return false
	}
	if f.RecencyMax != nil && c.Recency > *f.RecencyMax {
		return false
	}
	if f.MonetaryMin != nil && c.Monetary < *f.MonetaryMin {
		return false
	}
	if f.MonetaryMax != nil && c.Monetary > *f.MonetaryMax {
		return false
	}
	return true
}

// Apply returns the customers that pass the filter, preserving their order.
func (f Filter) Apply(customers []domain.ScoredCustomer) []domain.ScoredCustomer {
	out := make([]domain.ScoredCustomer, 0, len(customers))
	for _, c := range customers {
		if f.Matches(c) {
			out = append(out, c)
		}
	}
	return out
}
