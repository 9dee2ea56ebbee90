package matching

import (
	"sync/atomic"
	"time"
)

// runState is an immutable snapshot of a run's partition. A manual match
// builds a successor and publishes it with compare-and-swap.
type runState struct {
	version         int64
	matched         []Match
	bankOnly        []Transaction
	internalOnly    []Transaction
	bankPending     map[string]int
	internalPending map[string]int
}

// Run owns the partition of one reconciliation. The automatic pass creates
// it; afterwards only manual matches change it.
type Run struct {
	ID        string
	Config    ToleranceConfig
	Rejected  []UnparseableRecordError
	CreatedAt time.Time

	knownBank     map[string]struct{}
	knownInternal map[string]struct{}
	state         atomic.Pointer[runState]
	now           func() time.Time
}

// NewRun wraps the result of an automatic pass at version 0.
func NewRun(id string, result *Result, createdAt time.Time) *Run {
	return RestoreRun(id, result, 0, createdAt)
}

// RestoreRun rebuilds a run from a stored result at the given version.
func RestoreRun(id string, result *Result, version int64, createdAt time.Time) *Run {
	r := &Run{
		ID:            id,
		Config:        result.Config,
		Rejected:      result.Rejected,
		CreatedAt:     createdAt,
		knownBank:     make(map[string]struct{}),
		knownInternal: make(map[string]struct{}),
		now:           time.Now,
	}
	for _, m := range result.Matched {
		r.knownBank[m.Bank.ID] = struct{}{}
		r.knownInternal[m.Internal.ID] = struct{}{}
	}
	for _, t := range result.BankOnly {
		r.knownBank[t.ID] = struct{}{}
	}
	for _, t := range result.InternalOnly {
		r.knownInternal[t.ID] = struct{}{}
	}

	r.state.Store(newRunState(version,
		append([]Match(nil), result.Matched...),
		append([]Transaction(nil), result.BankOnly...),
		append([]Transaction(nil), result.InternalOnly...),
	))
	return r
}

func newRunState(version int64, matched []Match, bankOnly, internalOnly []Transaction) *runState {
	s := &runState{
		version:         version,
		matched:         matched,
		bankOnly:        bankOnly,
		internalOnly:    internalOnly,
		bankPending:     make(map[string]int, len(bankOnly)),
		internalPending: make(map[string]int, len(internalOnly)),
	}
	for i, t := range bankOnly {
		s.bankPending[t.ID] = i
	}
	for i, t := range internalOnly {
		s.internalPending[t.ID] = i
	}
	return s
}

// Version increases by one with every committed manual match.
func (r *Run) Version() int64 {
	return r.state.Load().version
}

// Pending returns copies of the current leftover sets in input order.
func (r *Run) Pending() PendingSet {
	s := r.state.Load()
	return PendingSet{
		BankPending:     append([]Transaction{}, s.bankOnly...),
		InternalPending: append([]Transaction{}, s.internalOnly...),
	}
}

// Result returns a copy of the current partition with a fresh summary.
func (r *Run) Result() *Result {
	s := r.state.Load()
	res := &Result{
		RunID:        r.ID,
		Matched:      append([]Match{}, s.matched...),
		BankOnly:     append([]Transaction{}, s.bankOnly...),
		InternalOnly: append([]Transaction{}, s.internalOnly...),
		Rejected:     r.Rejected,
		Config:       r.Config,
	}
	res.Summary = Summarize(res)
	return res
}

// Summary aggregates the current partition.
func (r *Run) Summary() Summary {
	return r.Result().Summary
}

// ManualMatchProposal is a validated manual match that has not been
// published yet. Commit publishes it only if the run has not moved on.
type ManualMatchProposal struct {
	Match Match
	base  *runState
	next  *runState
}

// BaseVersion is the run version the proposal was validated against.
func (p *ManualMatchProposal) BaseVersion() int64 {
	return p.base.version
}

// ProposeManualMatch validates bankID and internalID against the current
// pending sets and prepares the successor state.
func (r *Run) ProposeManualMatch(bankID, internalID string) (*ManualMatchProposal, error) {
	cur := r.state.Load()

	bankPos, ok := cur.bankPending[bankID]
	if !ok {
		return nil, r.notPending(SideBank, bankID)
	}
	internalPos, ok := cur.internalPending[internalID]
	if !ok {
		return nil, r.notPending(SideInternal, internalID)
	}

	at := r.now().UTC()
	m := Match{
		Bank:       cur.bankOnly[bankPos],
		Internal:   cur.internalOnly[internalPos],
		Confidence: 1.0,
		Origin:     OriginManual,
		MatchedAt:  &at,
	}

	matched := make([]Match, len(cur.matched), len(cur.matched)+1)
	copy(matched, cur.matched)
	matched = append(matched, m)

	next := newRunState(cur.version+1, matched, without(cur.bankOnly, bankPos), without(cur.internalOnly, internalPos))
	return &ManualMatchProposal{Match: m, base: cur, next: next}, nil
}

// Commit publishes p. It fails with ConcurrentModificationError when another
// manual match was committed after p was proposed.
func (r *Run) Commit(p *ManualMatchProposal) error {
	if !r.state.CompareAndSwap(p.base, p.next) {
		return &ConcurrentModificationError{RunID: r.ID}
	}
	return nil
}

// ApplyManualMatch moves bankID and internalID out of the pending sets and
// appends a manual match with confidence 1.0. When it races another manual
// match it re-validates against the winner's state, so a transaction is
// never committed twice: the loser gets NotPendingError.
func (r *Run) ApplyManualMatch(bankID, internalID string) (Match, error) {
	for {
		p, err := r.ProposeManualMatch(bankID, internalID)
		if err != nil {
			return Match{}, err
		}
		if err := r.Commit(p); err == nil {
			return p.Match, nil
		}
	}
}

func (r *Run) notPending(side Side, id string) error {
	known := r.knownBank
	if side == SideInternal {
		known = r.knownInternal
	}
	if _, ok := known[id]; ok {
		return &NotPendingError{Side: side, ID: id, Reason: "already matched"}
	}
	return &NotPendingError{Side: side, ID: id, Reason: "unknown transaction"}
}

func without(txns []Transaction, pos int) []Transaction {
	out := make([]Transaction, 0, len(txns)-1)
	out = append(out, txns[:pos]...)
	return append(out, txns[pos+1:]...)
}
