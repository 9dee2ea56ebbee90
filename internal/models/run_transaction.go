package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Transaction statuses within a run
const (
	TxStatusPending = "pending"
	TxStatusMatched = "matched"
)

// RunTransaction is one ledger row of a run. ExternalID is the id the
// matching engine knows it by; Position is its input order within Side.
type RunTransaction struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	RunID           uuid.UUID       `gorm:"type:uuid;uniqueIndex:idx_run_side_ext"`
	Side            string          `gorm:"uniqueIndex:idx_run_side_ext"`
	ExternalID      string          `gorm:"uniqueIndex:idx_run_side_ext"`
	Position        int
	TransactionDate time.Time       `gorm:"column:transaction_date"`
	Description     string
	Amount          decimal.Decimal `gorm:"type:numeric(20,6)"`
	RawRow          datatypes.JSON
	Status          string `gorm:"index"`
	MatchSeq        *int
	MatchedWith     string
	MatchOrigin     string
	ConfidenceScore float64
	MatchDetails    datatypes.JSON
	MatchedAt       *time.Time
	CreatedAt       time.Time
}
