package report

import (
	"sort"

	"github.com/mcasillasm/RFManalisis/internal/domain"
)

// Summary holds the headline figures for a scored population.
type Summary struct {
	Customers    int
	TotalRevenue float64
	AvgMonetary  float64
	AvgRecency   float64
}

// Summarize computes the headline figures for the given customers. An empty
// population yields a zero Summary.
func Summarize(customers []domain.ScoredCustomer) Summary {
	if len(customers) == 0 {
		return Summary{}
	}
	s := Summary{Customers: len(customers)}
	recency := 0
	for _, c := range customers {
		s.TotalRevenue += c.Monetary
		recency += c.Recency
	}
	s.AvgMonetary = s.TotalRevenue / float64(len(customers))
	s.AvgRecency = float64(recency) / float64(len(customers))
	return s
}

// SegmentCount pairs a segment with the number of customers assigned to it.
type SegmentCount struct {
	Segment domain.Segment
	Count   int
}

// SegmentDistribution counts customers per segment, ordered by descending
// count with ties broken by the canonical segment order. Segments without
// customers are omitted.
func SegmentDistribution(customers []domain.ScoredCustomer) []SegmentCount {
	counts := make(map[domain.Segment]int)
	for _, c := range customers {
		counts[c.Segment]++
	}
	order := make(map[domain.Segment]int)
	for i, s := range domain.Segments() {
		order[s] = i
	}
	dist := make([]SegmentCount, 0, len(counts))
	for seg, n := range counts {
		dist = append(dist, SegmentCount{Segment: seg, Count: n})
	}
	sort.Slice(dist, func(i, j int) bool {
		if dist[i].Count != dist[j].Count {
			return dist[i].Count > dist[j].Count
		}
		return order[dist[i].Segment] < order[dist[j].Segment]
	})
	return dist
}

// RFMatrix counts customers per recency/frequency score cell. Rows are
// indexed by recency score minus one, columns by frequency score minus one.
func RFMatrix(customers []domain.ScoredCustomer) [5][5]int {
	var m [5][5]int
	for _, c := range customers {
		if c.RScore < 1 || c.RScore > 5 || c.FScore < 1 || c.FScore > 5 {
			continue
		}
		m[c.RScore-1][c.FScore-1]++
	}
	return m
}

// TopByMonetary returns the n highest spenders with ties broken by customer
// id. The input slice is left untouched.
func TopByMonetary(customers []domain.ScoredCustomer, n int) []domain.ScoredCustomer {
	if n <= 0 {
		return nil
	}
	top := append([]domain.ScoredCustomer(nil), customers...)
	sort.SliceStable(top, func(i, j int) bool {
		if top[i].Monetary != top[j].Monetary {
			return top[i].Monetary > top[j].Monetary
		}
		return top[i].CustomerID < top[j].CustomerID
	})
	if n > len(top) {
		n = len(top)
	}
	return top[:n]
}
