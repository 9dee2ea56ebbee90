package matching

import "time"

// CandidateIndex buckets one ledger by calendar day so that a lookup only
// visits transactions inside the date window.
type CandidateIndex struct {
	txns    []Transaction
	buckets map[int64][]int
}

// NewCandidateIndex indexes txns by day. Unmatchable transactions are not
// indexed.
func NewCandidateIndex(txns []Transaction) *CandidateIndex {
	idx := &CandidateIndex{
		txns:    txns,
		buckets: make(map[int64][]int),
	}
	for pos, t := range txns {
		if !t.Matchable() {
			continue
		}
		day := dayNumber(t.Date)
		idx.buckets[day] = append(idx.buckets[day], pos)
	}
	return idx
}

// At returns the transaction at a position returned by CandidatesFor.
func (idx *CandidateIndex) At(pos int) Transaction {
	return idx.txns[pos]
}

// CandidatesFor returns the positions of every indexed transaction dated
// within toleranceDays of txn, by ascending day and then input order.
func (idx *CandidateIndex) CandidatesFor(txn Transaction, toleranceDays int) []int {
	if !txn.Matchable() || toleranceDays < 0 {
		return nil
	}
	center := dayNumber(txn.Date)
	var out []int
	for d := center - int64(toleranceDays); d <= center+int64(toleranceDays); d++ {
		out = append(out, idx.buckets[d]...)
	}
	return out
}

func dayNumber(t time.Time) int64 {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC).Unix() / 86400
}

func daysBetween(a, b time.Time) int {
	d := dayNumber(a) - dayNumber(b)
	if d < 0 {
		d = -d
	}
	return int(d)
}
