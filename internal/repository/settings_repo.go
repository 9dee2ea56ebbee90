package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bank-reconciliation-backend/internal/models"
)

type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetOrCreate returns the settings of defaults.Profile, storing defaults
// first when the profile has none.
func (r *SettingsRepository) GetOrCreate(ctx context.Context, defaults models.ToleranceSettings) (*models.ToleranceSettings, error) {
	var s models.ToleranceSettings
	err := r.db.WithContext(ctx).
		Where("profile = ?", defaults.Profile).
		Attrs(defaults).
		FirstOrCreate(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Save upserts s by profile.
func (r *SettingsRepository) Save(ctx context.Context, s *models.ToleranceSettings) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "profile"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"date_tolerance_days",
				"value_tolerance",
				"similarity_threshold",
				"updated_at",
			}),
		}).
		Create(s).Error
}
