package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	b := func(id string) Transaction { return Transaction{ID: id} }

	res := &Result{
		Matched: []Match{
			{Bank: b("b1"), Internal: b("i1"), Origin: OriginAutomatic},
			{Bank: b("b2"), Internal: b("i2"), Origin: OriginManual},
		},
		BankOnly:     []Transaction{b("b3")},
		InternalOnly: []Transaction{b("i3"), b("i4")},
	}

	s := Summarize(res)
	assert.Equal(t, Summary{
		TotalBank:         3,
		TotalInternal:     4,
		MatchedCount:      2,
		AutomaticCount:    1,
		ManualCount:       1,
		BankOnlyCount:     1,
		InternalOnlyCount: 2,
		MatchRate:         66.67,
		MatchRateBasis:    MatchRateBasisBank,
	}, s)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(&Result{})
	assert.Equal(t, 0.0, s.MatchRate)
	assert.Equal(t, 0, s.TotalBank)
	assert.Equal(t, MatchRateBasisBank, s.MatchRateBasis)
}

func TestSummarize_OnlyInternal(t *testing.T) {
	s := Summarize(&Result{InternalOnly: []Transaction{{ID: "i1"}}})
	assert.Equal(t, 0.0, s.MatchRate)
	assert.Equal(t, 1, s.TotalInternal)
}

func TestMatchRate(t *testing.T) {
	assert.Equal(t, 0.0, MatchRate(0, 0))
	assert.Equal(t, 100.0, MatchRate(4, 4))
	assert.Equal(t, 33.33, MatchRate(1, 3))
	assert.Equal(t, 0.0, MatchRate(3, -1))
}
