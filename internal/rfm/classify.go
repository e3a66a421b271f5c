package rfm

import "github.com/mcasillasm/RFManalisis/internal/domain"

// rule pairs a segment with the score condition that selects it.
type rule struct {
	segment domain.Segment
	match   func(r, f, m int) bool
}

// rules are evaluated in order and the first match wins, so later rules may
// assume the earlier ones did not apply.
var rules = []rule{
	{domain.SegmentChampions, func(r, f, m int) bool { return r >= 4 && f >= 4 && m >= 4 }},
	{domain.SegmentLoyal, func(r, f, m int) bool { return r >= 3 && f >= 3 }},
	{domain.SegmentNewPotential, func(r, f, m int) bool { return r >= 4 && f <= 2 }},
	{domain.SegmentAtRisk, func(r, f, m int) bool { return r <= 2 && f >= 3 }},
	{domain.SegmentLost, func(r, f, m int) bool { return r <= 2 && f <= 2 }},
}

// Classify maps a quintile score triple to its behavioral segment. Triples
// not claimed by any rule fall through to Hibernating.
func Classify(r, f, m int) domain.Segment {
	for _, rl := range rules {
		if rl.match(r, f, m) {
			return rl.segment
		}
	}
	return domain.SegmentHibernating
}
