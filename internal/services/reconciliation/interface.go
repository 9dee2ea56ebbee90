package reconciliation

import (
	"context"

	"bank-reconciliation-backend/internal/models"
	"bank-reconciliation-backend/internal/services/matching"
)

// RunStore persists runs. The service works from memory alone when it is nil.
//
//go:generate mockgen -destination=mocks/mock_repository.go -package=mocks -source=interface.go
type RunStore interface {
	SaveRun(ctx context.Context, run *matching.Run, profile string, locale matching.Locale) error
	LoadRun(ctx context.Context, runID string) (*matching.Run, error)
	RecordManualMatch(ctx context.Context, runID string, expectedVersion int64, m matching.Match, performedBy string) error
	ListRuns(ctx context.Context, profile string, limit, offset int) ([]models.ReconciliationRun, int64, error)
	GetStatistics(ctx context.Context, profile string) (models.RunStatistics, error)
}

// SettingsStore persists tolerance settings per profile.
type SettingsStore interface {
	GetOrCreate(ctx context.Context, defaults models.ToleranceSettings) (*models.ToleranceSettings, error)
	Save(ctx context.Context, s *models.ToleranceSettings) error
}
