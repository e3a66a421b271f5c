package rfm

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/mcasillasm/RFManalisis/internal/domain"
)

func TestQuantileEdgesInterpolation(t *testing.T) {
	edges := quantileEdges([]float64{10, 20, 30, 40, 50})
	want := []float64{10, 18, 26, 34, 42, 50}
	if len(edges) != len(want) {
		t.Fatalf("expected %d edges, got %d", len(want), len(edges))
	}
	for i := range want {
		if math.Abs(edges[i]-want[i]) > 1e-9 {
			t.Errorf("edge %d: expected %v, got %v", i, want[i], edges[i])
		}
	}
}

func TestCollapseEdges(t *testing.T) {
	got := collapseEdges([]float64{1, 1, 1, 1, 2.8, 10})
	want := []float64{1, 2.8, 10}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	got = collapseEdges([]float64{5, 5, 5, 5, 5, 5})
	if !reflect.DeepEqual(got, []float64{5}) {
		t.Fatalf("expected single edge, got %v", got)
	}
}

func TestBinIndex(t *testing.T) {
	edges := []float64{10, 18, 26, 34, 42, 50}
	cases := []struct {
		v    float64
		want int
	}{
		{10, 0}, // population minimum belongs to the first bin
		{18, 0},
		{18.5, 1},
		{34, 2},
		{42.1, 4},
		{50, 4},
	}
	for _, tc := range cases {
		if got := binIndex(tc.v, edges); got != tc.want {
			t.Errorf("binIndex(%v): expected %d, got %d", tc.v, tc.want, got)
		}
	}
}

func TestValueScoresDescendingEvenSpread(t *testing.T) {
	got := valueScoresDescending([]float64{10, 20, 30, 40, 50})
	want := []int{5, 4, 3, 2, 1}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestValueScoresDescendingTiedLow(t *testing.T) {
	// four identical low values collapse the lower edges into one bin
	got := valueScoresDescending([]float64{1, 1, 1, 1, 10})
	want := []int{5, 5, 5, 5, 4}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestValueScoresDescendingAllEqual(t *testing.T) {
	got := valueScoresDescending([]float64{7, 7, 7, 7, 7, 7})
	for i, s := range got {
		if s != 5 {
			t.Fatalf("value %d: expected score 5 for a fully tied population, got %d", i, s)
		}
	}
}

func TestRanksFirstTieBreak(t *testing.T) {
	got := ranksFirst([]float64{2, 1, 2, 1})
	want := []float64{3, 1, 4, 2}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestRankScoresAscendingDistinct(t *testing.T) {
	got := rankScoresAscending([]float64{10, 20, 30, 40, 50})
	want := []int{1, 2, 3, 4, 5}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestRankScoresAscendingRemainderInLowestBin(t *testing.T) {
	got := rankScoresAscending([]float64{3, 5, 8, 13, 21, 34})
	want := []int{1, 1, 2, 3, 4, 5}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestRankScoresAscendingAllTies(t *testing.T) {
	// fully tied values still spread across all five scores in input order
	got := rankScoresAscending([]float64{1, 1, 1, 1, 1})
	want := []int{1, 2, 3, 4, 5}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestScoreMetricsEmpty(t *testing.T) {
	_, err := ScoreMetrics(nil)
	if !errors.Is(err, domain.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestScoreMetricsInsufficientPopulation(t *testing.T) {
	metrics := []domain.CustomerMetrics{
		{CustomerID: "C001", Recency: 1, Frequency: 1, Monetary: 10},
		{CustomerID: "C002", Recency: 2, Frequency: 2, Monetary: 20},
		{CustomerID: "C003", Recency: 3, Frequency: 3, Monetary: 30},
		{CustomerID: "C004", Recency: 4, Frequency: 4, Monetary: 40},
	}
	_, err := ScoreMetrics(metrics)
	if !errors.Is(err, domain.ErrInsufficientPopulation) {
		t.Fatalf("expected ErrInsufficientPopulation, got %v", err)
	}
}

func TestScoreMetricsCodesAndSegments(t *testing.T) {
	metrics := []domain.CustomerMetrics{
		{CustomerID: "C001", Recency: 10, Frequency: 5, Monetary: 5000},
		{CustomerID: "C002", Recency: 20, Frequency: 4, Monetary: 4000},
		{CustomerID: "C003", Recency: 30, Frequency: 3, Monetary: 3000},
		{CustomerID: "C004", Recency: 40, Frequency: 2, Monetary: 2000},
		{CustomerID: "C005", Recency: 50, Frequency: 1, Monetary: 1000},
	}
	scored, err := ScoreMetrics(metrics)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantCodes := []int{555, 444, 333, 222, 111}
	wantSegments := []domain.Segment{
		domain.SegmentChampions,
		domain.SegmentChampions,
		domain.SegmentLoyal,
		domain.SegmentLost,
		domain.SegmentLost,
	}
	for i, s := range scored {
		if s.Code != wantCodes[i] {
			t.Errorf("%s: expected code %d, got %d", s.CustomerID, wantCodes[i], s.Code)
		}
		if s.Segment != wantSegments[i] {
			t.Errorf("%s: expected segment %q, got %q", s.CustomerID, wantSegments[i], s.Segment)
		}
		if s.Code != s.RScore*100+s.FScore*10+s.MScore {
			t.Errorf("%s: code %d does not match scores %d/%d/%d", s.CustomerID, s.Code, s.RScore, s.FScore, s.MScore)
		}
	}
}

func TestScoreMetricsFullyTiedPopulation(t *testing.T) {
	// tied recency collapses into a single top bin while tied frequency and
	// monetary spread over ranks in customer id order
	metrics := make([]domain.CustomerMetrics, 5)
	for i := range metrics {
		metrics[i] = domain.CustomerMetrics{
			CustomerID: string(rune('A' + i)),
			Recency:    30,
			Frequency:  1,
			Monetary:   100,
		}
	}
	scored, err := ScoreMetrics(metrics)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, s := range scored {
		if s.RScore != 5 {
			t.Errorf("%s: expected recency score 5, got %d", s.CustomerID, s.RScore)
		}
		if s.FScore != i+1 {
			t.Errorf("%s: expected frequency score %d, got %d", s.CustomerID, i+1, s.FScore)
		}
		if s.MScore != i+1 {
			t.Errorf("%s: expected monetary score %d, got %d", s.CustomerID, i+1, s.MScore)
		}
	}
}
