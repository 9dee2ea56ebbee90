package matching

import "math"

// MatchRateBasisBank marks a match rate computed against the bank ledger.
const MatchRateBasisBank = "bank"

// Summarize derives the counters of r. It is recomputed on every read so it
// always reflects manual matches.
func Summarize(r *Result) Summary {
	s := Summary{
		MatchedCount:      len(r.Matched),
		BankOnlyCount:     len(r.BankOnly),
		InternalOnlyCount: len(r.InternalOnly),
		MatchRateBasis:    MatchRateBasisBank,
	}
	for _, m := range r.Matched {
		if m.Origin == OriginManual {
			s.ManualCount++
		} else {
			s.AutomaticCount++
		}
	}
	s.TotalBank = s.MatchedCount + s.BankOnlyCount
	s.TotalInternal = s.MatchedCount + s.InternalOnlyCount
	s.MatchRate = MatchRate(s.MatchedCount, s.TotalBank)
	return s
}

// MatchRate is matched / totalBank as a percentage rounded to two places,
// or 0 for an empty bank ledger.
func MatchRate(matched, totalBank int) float64 {
	if totalBank <= 0 {
		return 0
	}
	return roundTo(float64(matched)/float64(totalBank)*100, 2)
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
