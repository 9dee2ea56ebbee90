package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	service "bank-reconciliation-backend/internal/services/reconciliation"
)

type SettingsHandler struct {
	service *service.SettingsService
	logger  *slog.Logger
}

func NewSettingsHandler(s *service.SettingsService, logger *slog.Logger) *SettingsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsHandler{service: s, logger: logger}
}

func (h *SettingsHandler) GetSettings(c *gin.Context) {
	cfg, err := h.service.Get(c.Request.Context(), c.Query("profile"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// UpdateSettings applies the fields present in the body on top of the stored
// settings. The result is validated as a whole.
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var body service.ToleranceOverride
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid payload")
		return
	}

	ctx := c.Request.Context()
	profile := c.Query("profile")

	cfg, err := h.service.Resolve(ctx, profile, &body)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	saved, err := h.service.Update(ctx, profile, cfg)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}
