package rfm

import (
	"testing"

	"github.com/mcasillasm/RFManalisis/internal/domain"
)

func TestClassifyKnownTriples(t *testing.T) {
	cases := []struct {
		r, f, m int
		want    domain.Segment
	}{
		{5, 5, 5, domain.SegmentChampions},
		{4, 4, 4, domain.SegmentChampions},
		{4, 4, 3, domain.SegmentLoyal},
		{5, 3, 1, domain.SegmentLoyal},
		{3, 3, 1, domain.SegmentLoyal},
		{5, 1, 5, domain.SegmentNewPotential},
		{4, 2, 1, domain.SegmentNewPotential},
		{1, 5, 5, domain.SegmentAtRisk},
		{2, 3, 2, domain.SegmentAtRisk},
		{1, 1, 1, domain.SegmentLost},
		{2, 2, 5, domain.SegmentLost},
		{3, 1, 3, domain.SegmentHibernating},
		{3, 2, 5, domain.SegmentHibernating},
	}
	for _, tc := range cases {
		if got := Classify(tc.r, tc.f, tc.m); got != tc.want {
			t.Errorf("Classify(%d, %d, %d): expected %q, got %q", tc.r, tc.f, tc.m, tc.want, got)
		}
	}
}

// TestClassifyEveryTriple re-derives the segment for all 125 score triples
// from a flat decision table and checks the ordered rule chain agrees.
func TestClassifyEveryTriple(t *testing.T) {
	expected := func(r, f, m int) domain.Segment {
		switch {
		case r >= 4 && f >= 4 && m >= 4:
			return domain.SegmentChampions
		case r >= 3 && f >= 3:
			return domain.SegmentLoyal
		case r >= 4:
			return domain.SegmentNewPotential
		case r <= 2 && f >= 3:
			return domain.SegmentAtRisk
		case r <= 2:
			return domain.SegmentLost
		default:
			return domain.SegmentHibernating
		}
	}

	known := make(map[domain.Segment]bool)
	for _, s := range domain.Segments() {
		known[s] = true
	}

	for r := 1; r <= 5; r++ {
		for f := 1; f <= 5; f++ {
			for m := 1; m <= 5; m++ {
				got := Classify(r, f, m)
				if want := expected(r, f, m); got != want {
					t.Errorf("Classify(%d, %d, %d): expected %q, got %q", r, f, m, want, got)
				}
				if !known[got] {
					t.Errorf("Classify(%d, %d, %d) returned unknown segment %q", r, f, m, got)
				}
			}
		}
	}
}
