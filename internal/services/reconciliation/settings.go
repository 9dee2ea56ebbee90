package reconciliation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"bank-reconciliation-backend/internal/models"
	"bank-reconciliation-backend/internal/services/matching"
)

// ToleranceOverride replaces individual stored tolerances for one request.
type ToleranceOverride struct {
	DateToleranceDays   *int             `json:"date_tolerance_days,omitempty"`
	ValueTolerance      *decimal.Decimal `json:"value_tolerance,omitempty"`
	SimilarityThreshold *float64         `json:"similarity_threshold,omitempty"`
}

func (o *ToleranceOverride) apply(cfg matching.ToleranceConfig) matching.ToleranceConfig {
	if o == nil {
		return cfg
	}
	if o.DateToleranceDays != nil {
		cfg.DateToleranceDays = *o.DateToleranceDays
	}
	if o.ValueTolerance != nil {
		cfg.ValueTolerance = *o.ValueTolerance
	}
	if o.SimilarityThreshold != nil {
		cfg.SimilarityThreshold = *o.SimilarityThreshold
	}
	return cfg
}

// SettingsService reads and writes tolerance settings per profile. Without
// a store the settings live in memory for the life of the process.
type SettingsService struct {
	store          SettingsStore
	defaults       matching.ToleranceConfig
	defaultProfile string
	logger         *slog.Logger

	mu     sync.RWMutex
	memory map[string]matching.ToleranceConfig
}

func NewSettingsService(store SettingsStore, defaults matching.ToleranceConfig, defaultProfile string, logger *slog.Logger) *SettingsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsService{
		store:          store,
		defaults:       defaults,
		defaultProfile: defaultProfile,
		logger:         logger,
		memory:         make(map[string]matching.ToleranceConfig),
	}
}

func (s *SettingsService) profile(p string) string {
	if p == "" {
		return s.defaultProfile
	}
	return p
}

// Get returns the settings of profile, creating them from the defaults on
// first use.
func (s *SettingsService) Get(ctx context.Context, profile string) (matching.ToleranceConfig, error) {
	profile = s.profile(profile)

	if s.store == nil {
		s.mu.RLock()
		cfg, ok := s.memory[profile]
		s.mu.RUnlock()
		if !ok {
			return s.defaults, nil
		}
		return cfg, nil
	}

	row, err := s.store.GetOrCreate(ctx, toSettingsModel(profile, s.defaults))
	if err != nil {
		return matching.ToleranceConfig{}, fmt.Errorf("load settings %s: %w", profile, err)
	}
	return fromSettingsModel(row), nil
}

// Update validates cfg and stores it for profile.
func (s *SettingsService) Update(ctx context.Context, profile string, cfg matching.ToleranceConfig) (matching.ToleranceConfig, error) {
	profile = s.profile(profile)
	if err := cfg.Validate(); err != nil {
		return matching.ToleranceConfig{}, err
	}

	if s.store == nil {
		s.mu.Lock()
		s.memory[profile] = cfg
		s.mu.Unlock()
	} else {
		row := toSettingsModel(profile, cfg)
		row.UpdatedAt = time.Now().UTC()
		if err := s.store.Save(ctx, &row); err != nil {
			return matching.ToleranceConfig{}, fmt.Errorf("save settings %s: %w", profile, err)
		}
	}

	s.logger.Info("tolerance settings updated",
		"profile", profile,
		"date_tolerance_days", cfg.DateToleranceDays,
		"value_tolerance", cfg.ValueTolerance.String(),
		"similarity_threshold", cfg.SimilarityThreshold,
	)
	return cfg, nil
}

// Resolve returns the stored settings of profile with override applied,
// validated as a whole.
func (s *SettingsService) Resolve(ctx context.Context, profile string, override *ToleranceOverride) (matching.ToleranceConfig, error) {
	base, err := s.Get(ctx, profile)
	if err != nil {
		return matching.ToleranceConfig{}, err
	}
	cfg := override.apply(base)
	if err := cfg.Validate(); err != nil {
		return matching.ToleranceConfig{}, err
	}
	return cfg, nil
}

func toSettingsModel(profile string, cfg matching.ToleranceConfig) models.ToleranceSettings {
	return models.ToleranceSettings{
		Profile:             profile,
		DateToleranceDays:   cfg.DateToleranceDays,
		ValueTolerance:      cfg.ValueTolerance,
		SimilarityThreshold: cfg.SimilarityThreshold,
	}
}

func fromSettingsModel(row *models.ToleranceSettings) matching.ToleranceConfig {
	return matching.ToleranceConfig{
		DateToleranceDays:   row.DateToleranceDays,
		ValueTolerance:      row.ValueTolerance,
		SimilarityThreshold: row.SimilarityThreshold,
	}
}
