package analysis

import "sort"

// Recommendation is the best-payback capacity, if any capacity pays for
// itself within the battery lifetime.
type Recommendation struct {
	Best *ROISummary `json:"best,omitempty"`
}

// CostEffective reports whether a capacity was recommended.
func (r Recommendation) CostEffective() bool { return r.Best != nil }

// Capacity returns the recommended capacity.
func (r Recommendation) Capacity() (float64, bool) {
	if r.Best == nil {
		return 0, false
	}
	return r.Best.CapacityKWh, true
}

// Recommend picks the summary with the shortest finite payback. Ties go to
// the summary that comes first. If no summary has a payback, or the
// shortest one exceeds lifetimeYears, nothing is recommended.
func Recommend(summaries []ROISummary, lifetimeYears float64) Recommendation {
	best := -1
	for i, s := range summaries {
		if _, ok := s.Payback.Years(); !ok {
			continue
		}
		if best < 0 || s.Payback.Less(summaries[best].Payback) {
			best = i
		}
	}
	if best < 0 || !summaries[best].Payback.Within(lifetimeYears) {
		return Recommendation{}
	}
	s := summaries[best]
	return Recommendation{Best: &s}
}

// RankByPayback returns a copy of summaries sorted by payback, shortest
// first, with "no payback" last. Equal paybacks keep their input order.
func RankByPayback(summaries []ROISummary) []ROISummary {
	out := make([]ROISummary, len(summaries))
	copy(out, summaries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Payback.Less(out[j].Payback)
	})
	return out
}
