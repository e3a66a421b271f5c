package domain

import "strings"

// Segment names a behavioral customer segment derived from RFM scores.
type Segment string

const (
	SegmentChampions    Segment = "Champions"
	SegmentLoyal        Segment = "Loyal Customers"
	SegmentNewPotential Segment = "New / Potential"
	SegmentAtRisk       Segment = "At Risk"
	SegmentLost         Segment = "Lost"
	SegmentHibernating  Segment = "Hibernating"
)

// Segments returns all segments in their canonical display order.
func Segments() []Segment {
	return []Segment{
		SegmentChampions,
		SegmentLoyal,
		SegmentNewPotential,
		SegmentAtRisk,
		SegmentLost,
		SegmentHibernating,
	}
}

// ParseSegment resolves a case-insensitive segment name. The second
// return value reports whether the name matched a known segment.
func ParseSegment(name string) (Segment, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, s := range Segments() {
		if strings.ToLower(string(s)) == needle {
			return s, true
		}
	}
	return "", false
}
