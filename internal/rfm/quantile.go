package rfm

import (
	"math"
	"sort"

	"github.com/mcasillasm/RFManalisis/internal/domain"
)

// quantileEdges computes the six edges that split the sorted values into
// five quantile groups, interpolating linearly between order statistics.
func quantileEdges(sorted []float64) []float64 {
	edges := make([]float64, 0, 6)
	for k := 0; k <= 5; k++ {
		q := float64(k) / 5
		pos := q * float64(len(sorted)-1)
		lo := int(math.Floor(pos))
		hi := int(math.Ceil(pos))
		if lo == hi {
			edges = append(edges, sorted[lo])
			continue
		}
		edges = append(edges, sorted[lo]+(sorted[hi]-sorted[lo])*(pos-float64(lo)))
	}
	return edges
}

// collapseEdges drops duplicate edges so every remaining interval is
// non-empty. Heavily tied data can therefore yield fewer than five bins.
func collapseEdges(edges []float64) []float64 {
	out := make([]float64, 0, len(edges))
	for _, e := range edges {
		if len(out) > 0 && e == out[len(out)-1] {
			continue
		}
		out = append(out, e)
	}
	return out
}

// binIndex places v into one of the right-closed intervals described by
// edges. The first interval additionally includes its lower edge, so the
// population minimum is never left unbinned.
func binIndex(v float64, edges []float64) int {
	for i := 1; i < len(edges); i++ {
		if v <= edges[i] {
			return i - 1
		}
	}
	return len(edges) - 2
}

// valueScoresDescending bins raw values into quantile groups where a
// smaller value earns a higher score, the way recency is scored. When ties
// collapse bins, labels stay anchored at 5 for the best group; if every
// value is identical the whole population scores 5.
func valueScoresDescending(values []float64) []int {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	edges := collapseEdges(quantileEdges(sorted))
	scores := make([]int, len(values))
	if len(edges) < 2 {
		for i := range scores {
			scores[i] = 5
		}
		return scores
	}
	for i, v := range values {
		scores[i] = 5 - binIndex(v, edges)
	}
	return scores
}

// ranksFirst assigns 1-based ranks with ties broken by input order, so a
// run of equal values still receives strictly increasing ranks.
func ranksFirst(values []float64) []float64 {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })
	ranks := make([]float64, len(values))
	for pos, i := range idx {
		ranks[i] = float64(pos + 1)
	}
	return ranks
}

// rankScoresAscending bins first-come ranks rather than raw values, which
// guarantees five usable bins however tied the underlying distribution is.
// Frequency and monetary are scored this way. With populations not divisible
// by five the remainder lands in the lowest bins.
func rankScoresAscending(values []float64) []int {
	ranks := ranksFirst(values)
	sorted := make([]float64, len(values))
	for i := range sorted {
		sorted[i] = float64(i + 1)
	}
	edges := quantileEdges(sorted)
	scores := make([]int, len(values))
	for i, r := range ranks {
		scores[i] = binIndex(r, edges) + 1
	}
	return scores
}

// ScoreMetrics assigns quintile scores, the combined code and a segment to
// every aggregated customer. The population must contain at least
// domain.MinPopulation customers for the quantile split to be meaningful.
func ScoreMetrics(metrics []domain.CustomerMetrics) ([]domain.ScoredCustomer, error) {
	if len(metrics) == 0 {
		return nil, domain.ErrEmptyInput
	}
	if len(metrics) < domain.MinPopulation {
		return nil, domain.ErrInsufficientPopulation
	}

	recency := make([]float64, len(metrics))
	frequency := make([]float64, len(metrics))
	monetary := make([]float64, len(metrics))
	for i, m := range metrics {
		recency[i] = float64(m.Recency)
		frequency[i] = float64(m.Frequency)
		monetary[i] = m.Monetary
	}

	rScores := valueScoresDescending(recency)
	fScores := rankScoresAscending(frequency)
	mScores := rankScoresAscending(monetary)

	scored := make([]domain.ScoredCustomer, len(metrics))
	for i, m := range metrics {
		r, f, mo := rScores[i], fScores[i], mScores[i]
		scored[i] = domain.ScoredCustomer{
			CustomerMetrics: m,
			RScore:          r,
			FScore:          f,
			MScore:          mo,
			Code:            r*100 + f*10 + mo,
			Segment:         Classify(r, f, mo),
		}
	}
	return scored, nil
}
