// Package matching reconciles a bank ledger against an internal ledger.
//
// The automatic pass is a greedy sweep over scored candidates:
//
//  1. index the smaller ledger by calendar day
//  2. score every pair inside the date window; date, value and description
//     are hard gates
//  3. sort candidates by confidence, date delta, value delta and input order
//  4. commit each candidate whose two endpoints are still unmatched
//
// The sweep is deterministic for identical input but is not a maximum-weight
// assignment. Leftovers are resolved manually through Run.
package matching

import (
	"fmt"
	"sort"
)

// Engine runs the automatic matching pass. The zero value is ready to use.
type Engine struct{}

// NewEngine returns an Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Reconcile partitions bank and internal into matches and leftovers.
//
// Transactions keep their slice order as input order; Index is rewritten to
// the position among matchable transactions so ties break on the order the
// caller supplied. Transactions carrying the zero-date sentinel are reported
// in Result.Rejected and count toward no total. Nothing is computed when cfg
// is out of range or an id repeats within a side.
func (e *Engine) Reconcile(bank, internal []Transaction, cfg ToleranceConfig) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	bank, bankRejected, err := prepareSide(SideBank, bank)
	if err != nil {
		return nil, err
	}
	internal, internalRejected, err := prepareSide(SideInternal, internal)
	if err != nil {
		return nil, err
	}

	candidates := e.Candidates(bank, internal, cfg)
	sortCandidates(candidates)

	matchedBank := make(map[int]bool, len(bank))
	matchedInternal := make(map[int]bool, len(internal))
	matches := make([]Match, 0, min(len(bank), len(internal)))

	for i := range candidates {
		c := candidates[i]
		if matchedBank[c.BankIndex] || matchedInternal[c.InternalIndex] {
			continue
		}
		matchedBank[c.BankIndex] = true
		matchedInternal[c.InternalIndex] = true
		matches = append(matches, Match{
			Bank:       bank[c.BankIndex],
			Internal:   internal[c.InternalIndex],
			Confidence: c.Confidence,
			Origin:     OriginAutomatic,
			Scores:     &c,
		})
		if len(matches) == len(bank) || len(matches) == len(internal) {
			break
		}
	}

	result := &Result{
		Matched:      matches,
		BankOnly:     leftovers(bank, matchedBank),
		InternalOnly: leftovers(internal, matchedInternal),
		Rejected:     append(bankRejected, internalRejected...),
		Config:       cfg,
	}
	result.Summary = Summarize(result)
	return result, nil
}

// Candidates returns every valid candidate between the two ledgers, unsorted.
// The smaller ledger is indexed and the larger one is scanned against it.
func (e *Engine) Candidates(bank, internal []Transaction, cfg ToleranceConfig) []MatchCandidate {
	scorer := NewScorer(cfg)
	var out []MatchCandidate

	if len(bank) <= len(internal) {
		idx := NewCandidateIndex(bank)
		for _, in := range internal {
			for _, pos := range idx.CandidatesFor(in, cfg.DateToleranceDays) {
				if c, ok := scorer.Score(idx.At(pos), in); ok {
					out = append(out, c)
				}
			}
		}
		return out
	}

	idx := NewCandidateIndex(internal)
	for _, b := range bank {
		for _, pos := range idx.CandidatesFor(b, cfg.DateToleranceDays) {
			if c, ok := scorer.Score(b, idx.At(pos)); ok {
				out = append(out, c)
			}
		}
	}
	return out
}

// sortCandidates applies the total commit order. The final internal index
// key only separates candidates sharing a bank transaction and every score.
func sortCandidates(cs []MatchCandidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.DateDelta != b.DateDelta {
			return a.DateDelta < b.DateDelta
		}
		if cmp := a.ValueDelta.Cmp(b.ValueDelta); cmp != 0 {
			return cmp < 0
		}
		if a.BankIndex != b.BankIndex {
			return a.BankIndex < b.BankIndex
		}
		return a.InternalIndex < b.InternalIndex
	})
}

func prepareSide(side Side, txns []Transaction) ([]Transaction, []UnparseableRecordError, error) {
	out := make([]Transaction, 0, len(txns))
	var rejected []UnparseableRecordError
	seen := make(map[string]struct{}, len(txns))
	for i, t := range txns {
		if t.ID == "" {
			return nil, nil, &ValidationError{Field: "id", Reason: fmt.Sprintf("%s transaction at position %d has no id", side, i)}
		}
		if _, dup := seen[t.ID]; dup {
			return nil, nil, &ValidationError{Field: "id", Reason: fmt.Sprintf("duplicate %s id %q", side, t.ID)}
		}
		seen[t.ID] = struct{}{}
		if !t.Matchable() {
			rejected = append(rejected, UnparseableRecordError{Side: side, Row: i + 1, ID: t.ID, Field: "date"})
			continue
		}
		t.Side = side
		t.Index = len(out)
		if t.NormalizedDescription == "" {
			t.NormalizedDescription = Normalizer{}.Description(t.Description)
		}
		out = append(out, t)
	}
	return out, rejected, nil
}

func leftovers(txns []Transaction, matched map[int]bool) []Transaction {
	out := make([]Transaction, 0, len(txns)-len(matched))
	for _, t := range txns {
		if !matched[t.Index] {
			out = append(out, t)
		}
	}
	return out
}
