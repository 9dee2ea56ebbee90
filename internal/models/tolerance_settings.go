package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ToleranceSettings stores the matching tolerances of one profile.
type ToleranceSettings struct {
	Profile             string `gorm:"primaryKey"`
	DateToleranceDays   int
	ValueTolerance      decimal.Decimal `gorm:"type:numeric(20,6)"`
	SimilarityThreshold float64
	UpdatedAt           time.Time
}

func (ToleranceSettings) TableName() string {
	return "tolerance_settings"
}

// All lists every model for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&ReconciliationRun{},
		&RunTransaction{},
		&MatchAuditLog{},
		&ToleranceSettings{},
	}
}
