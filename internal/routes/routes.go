package routes

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"bank-reconciliation-backend/internal/config"
	handler "bank-reconciliation-backend/internal/handlers"
	"bank-reconciliation-backend/internal/repository"
	"bank-reconciliation-backend/internal/services/matching"
	service "bank-reconciliation-backend/internal/services/reconciliation"
)

// RegisterRoutes wires repositories, services and handlers onto r. A nil db
// keeps runs and settings in memory.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, logger *slog.Logger) error {
	defaults, err := cfg.Matching.Tolerances()
	if err != nil {
		return err
	}

	var (
		runStore      service.RunStore
		settingsStore service.SettingsStore
	)
	if db != nil {
		runStore = repository.NewRunRepository(db)
		settingsStore = repository.NewSettingsRepository(db)
	}

	settingsService := service.NewSettingsService(settingsStore, defaults, cfg.Matching.Profile, logger)
	reconService := service.NewReconciliationService(
		matching.NewEngine(),
		runStore,
		settingsService,
		logger,
		service.Options{
			Timeout:            cfg.Matching.Timeout,
			Locale:             matching.ParseLocale(cfg.Matching.Locale),
			Profile:            cfg.Matching.Profile,
			ManualMatchRetries: cfg.Matching.ManualMatchRetries,
		},
	)

	reconHandler := handler.NewReconciliationHandler(reconService, logger)
	settingsHandler := handler.NewSettingsHandler(settingsService, logger)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "persistent": db != nil})
	})

	recon := api.Group("/reconciliations")
	recon.POST("", reconHandler.Reconcile)
	recon.GET("", reconHandler.ListRuns)
	recon.GET("/stats", reconHandler.GetStatistics)
	recon.GET("/:runId", reconHandler.GetRun)
	recon.GET("/:runId/summary", reconHandler.GetSummary)
	recon.GET("/:runId/pending", reconHandler.GetPending)
	recon.POST("/:runId/manual-match", reconHandler.ManualMatch)

	settings := api.Group("/settings")
	{
		settings.GET("", settingsHandler.GetSettings)
		settings.PUT("", settingsHandler.UpdateSettings)
	}

	return nil
}
