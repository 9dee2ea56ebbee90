package matching

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// Confidence weights. They sum to 1 so confidence stays in [0,1].
const (
	DateWeight  = 0.3
	ValueWeight = 0.4
	TextWeight  = 0.3
)

// valueEpsilon keeps the value score defined when the tolerance is zero.
var valueEpsilon = decimal.New(1, -9)

// Scorer turns a bank/internal pair into a candidate under one config.
type Scorer struct {
	config ToleranceConfig
}

// NewScorer binds a scorer to cfg.
func NewScorer(cfg ToleranceConfig) Scorer {
	return Scorer{config: cfg}
}

// Score returns the candidate for the pair, or false when any hard gate
// fails: date delta, value delta or description similarity.
func (s Scorer) Score(bank, internal Transaction) (MatchCandidate, bool) {
	if !bank.Matchable() || !internal.Matchable() {
		return MatchCandidate{}, false
	}

	dateDelta := daysBetween(bank.Date, internal.Date)
	if dateDelta > s.config.DateToleranceDays {
		return MatchCandidate{}, false
	}

	valueDelta := bank.Amount.Sub(internal.Amount).Abs()
	if valueDelta.GreaterThan(s.config.ValueTolerance) {
		return MatchCandidate{}, false
	}

	similarity := TextSimilarity(bank.NormalizedDescription, internal.NormalizedDescription)
	if similarity < s.config.SimilarityThreshold {
		return MatchCandidate{}, false
	}

	dateScore := 1 - float64(dateDelta)/float64(s.config.DateToleranceDays+1)
	valueScore := 1 - valueDelta.Div(s.config.ValueTolerance.Add(valueEpsilon)).InexactFloat64()
	if valueScore < 0 {
		valueScore = 0
	}

	return MatchCandidate{
		BankID:        bank.ID,
		InternalID:    internal.ID,
		BankIndex:     bank.Index,
		InternalIndex: internal.Index,
		DateDelta:     dateDelta,
		ValueDelta:    valueDelta,
		DateScore:     dateScore,
		ValueScore:    valueScore,
		Similarity:    similarity,
		Confidence:    DateWeight*dateScore + ValueWeight*valueScore + TextWeight*similarity,
	}, true
}

// TextSimilarity compares two normalized descriptions with a token-sort
// ratio: tokens are sorted, rejoined and compared by indel edit distance.
// The result is in [0,1]; an empty side scores 0.
func TextSimilarity(a, b string) float64 {
	a, b = sortTokens(a), sortTokens(b)
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	return levenshtein.RatioForStrings([]rune(a), []rune(b), levenshtein.DefaultOptions)
}

func sortTokens(s string) string {
	fields := strings.Fields(s)
	sort.Strings(fields)
	return strings.Join(fields, " ")
}
