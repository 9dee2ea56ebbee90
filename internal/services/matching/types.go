package matching

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side identifies which ledger a transaction came from.
type Side string

const (
	SideBank     Side = "bank"
	SideInternal Side = "internal"
)

// Origin records how a match was committed.
type Origin string

const (
	OriginAutomatic Origin = "automatic"
	OriginManual    Origin = "manual"
)

// Transaction is one normalized ledger row. It is never modified after
// BuildLedger returns it.
type Transaction struct {
	ID                    string            `json:"id"`
	Side                  Side              `json:"side"`
	Index                 int               `json:"index"`
	Date                  time.Time         `json:"date"`
	Amount                decimal.Decimal   `json:"amount"`
	Description           string            `json:"description"`
	NormalizedDescription string            `json:"-"`
	RawRow                map[string]string `json:"raw_row,omitempty"`
}

// Matchable reports whether the transaction can take part in automatic
// matching. A zero date is the unparseable sentinel.
func (t Transaction) Matchable() bool {
	return !t.Date.IsZero()
}

// MatchCandidate is a scored, tolerance-gated pairing. Candidates are
// recomputed per run and never persisted on their own.
type MatchCandidate struct {
	BankID        string          `json:"bank_id"`
	InternalID    string          `json:"internal_id"`
	BankIndex     int             `json:"-"`
	InternalIndex int             `json:"-"`
	DateDelta     int             `json:"date_delta"`
	ValueDelta    decimal.Decimal `json:"value_delta"`
	DateScore     float64         `json:"date_score"`
	ValueScore    float64         `json:"value_score"`
	Similarity    float64         `json:"similarity"`
	Confidence    float64         `json:"confidence"`
}

// Match pairs one bank transaction with one internal transaction. Scores is
// set for automatic matches, MatchedAt for manual ones.
type Match struct {
	Bank       Transaction     `json:"bank_transaction"`
	Internal   Transaction     `json:"internal_transaction"`
	Confidence float64         `json:"confidence"`
	Origin     Origin          `json:"origin"`
	Scores     *MatchCandidate `json:"scores,omitempty"`
	MatchedAt  *time.Time      `json:"matched_at,omitempty"`
}

// Summary holds the aggregate counters of a result.
//
// MatchRate is MatchedCount / TotalBank expressed as a percentage: the bank
// statement is the reference ledger. MatchRateBasis names that choice so a
// consumer never has to guess between bank-referenced and combined rates.
type Summary struct {
	TotalBank         int     `json:"total_bank"`
	TotalInternal     int     `json:"total_internal"`
	MatchedCount      int     `json:"matched_count"`
	AutomaticCount    int     `json:"automatic_count"`
	ManualCount       int     `json:"manual_count"`
	BankOnlyCount     int     `json:"bank_only_count"`
	InternalOnlyCount int     `json:"internal_only_count"`
	MatchRate         float64 `json:"match_rate"`
	MatchRateBasis    string  `json:"match_rate_basis"`
}

// Result is the partition produced by a run.
type Result struct {
	RunID        string                   `json:"run_id,omitempty"`
	Matched      []Match                  `json:"matched"`
	BankOnly     []Transaction            `json:"bank_only"`
	InternalOnly []Transaction            `json:"internal_only"`
	Rejected     []UnparseableRecordError `json:"rejected,omitempty"`
	Config       ToleranceConfig          `json:"config"`
	Summary      Summary                  `json:"summary"`
}

// PendingSet is the response of a pending query.
type PendingSet struct {
	BankPending     []Transaction `json:"bank_pending"`
	InternalPending []Transaction `json:"internal_pending"`
}
