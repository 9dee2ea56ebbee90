package models

import (
	"time"

	"github.com/google/uuid"
)

// Audit actions
const (
	AuditActionManualMatch = "manual_match"
)

// MatchAuditLog records who changed a run and which version it produced.
type MatchAuditLog struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey"`
	RunID                 uuid.UUID `gorm:"type:uuid;index"`
	Action                string
	BankTransactionID     string
	InternalTransactionID string
	PreviousVersion       int64
	NewVersion            int64
	PerformedBy           string
	Reason                string
	CreatedAt             time.Time
}
