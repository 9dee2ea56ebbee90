package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Run statuses
const (
	RunStatusCompleted = "completed"
)

// ReconciliationRun is the header row of one reconciliation. Version is
// bumped by every manual match and guards concurrent writers.
type ReconciliationRun struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Profile             string    `gorm:"index"`
	Status              string
	Version             int64
	Locale              string
	DateToleranceDays   int
	ValueTolerance      decimal.Decimal `gorm:"type:numeric(20,6)"`
	SimilarityThreshold float64
	TotalBank           int
	TotalInternal       int
	MatchedCount        int
	ManualCount         int
	BankOnlyCount       int
	InternalOnlyCount   int
	MatchRate           float64
	Rejected            datatypes.JSON
	CreatedAt           time.Time `gorm:"index"`
	UpdatedAt           time.Time
}

// RunStatistics aggregates every stored run of a profile.
type RunStatistics struct {
	TotalRuns         int64   `json:"total_runs"`
	TotalTransactions int64   `json:"total_transactions"`
	AverageMatchRate  float64 `json:"average_match_rate"`
	TotalMatched      int64   `json:"total_matched"`
	TotalPending      int64   `json:"total_pending"`
}
