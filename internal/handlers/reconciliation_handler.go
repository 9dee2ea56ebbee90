package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"bank-reconciliation-backend/internal/services/matching"
	service "bank-reconciliation-backend/internal/services/reconciliation"
)

type ReconciliationHandler struct {
	service *service.ReconciliationService
	logger  *slog.Logger
}

func NewReconciliationHandler(s *service.ReconciliationService, logger *slog.Logger) *ReconciliationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReconciliationHandler{service: s, logger: logger}
}

// reconcileRequest is the POST body. Mapping applies to both ledgers unless
// a side-specific mapping is given.
type reconcileRequest struct {
	Bank            []map[string]string        `json:"bank"`
	Internal        []map[string]string        `json:"internal"`
	Mapping         *matching.ColumnMapping    `json:"mapping"`
	BankMapping     *matching.ColumnMapping    `json:"bank_mapping"`
	InternalMapping *matching.ColumnMapping    `json:"internal_mapping"`
	Locale          string                     `json:"locale"`
	Profile         string                     `json:"profile"`
	Tolerances      *service.ToleranceOverride `json:"tolerances"`
}

func (r reconcileRequest) toService() service.ReconcileRequest {
	req := service.ReconcileRequest{
		Bank:            r.Bank,
		Internal:        r.Internal,
		BankMapping:     r.Mapping,
		InternalMapping: r.Mapping,
		Locale:          r.Locale,
		Profile:         r.Profile,
		Tolerances:      r.Tolerances,
	}
	if r.BankMapping != nil {
		req.BankMapping = r.BankMapping
	}
	if r.InternalMapping != nil {
		req.InternalMapping = r.InternalMapping
	}
	return req
}

type manualMatchRequest struct {
	BankID      string `json:"bank_id"`
	InternalID  string `json:"internal_id"`
	PerformedBy string `json:"performed_by"`
}

type manualMatchResponse struct {
	Match   matching.Match   `json:"match"`
	Summary matching.Summary `json:"summary"`
}

// Reconcile runs the automatic pass over the two ledgers in the body.
func (h *ReconciliationHandler) Reconcile(c *gin.Context) {
	var body reconcileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	if body.Bank == nil || body.Internal == nil {
		badRequest(c, "bank and internal ledgers are required")
		return
	}

	res, err := h.service.Reconcile(c.Request.Context(), body.toService())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *ReconciliationHandler) GetRun(c *gin.Context) {
	res, err := h.service.GetResult(c.Request.Context(), c.Param("runId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ReconciliationHandler) GetSummary(c *gin.Context) {
	s, err := h.service.Summary(c.Request.Context(), c.Param("runId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *ReconciliationHandler) GetPending(c *gin.Context) {
	p, err := h.service.Pending(c.Request.Context(), c.Param("runId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// ManualMatch pairs one pending bank transaction with one pending internal
// transaction. Losing a race returns 409.
func (h *ReconciliationHandler) ManualMatch(c *gin.Context) {
	var body manualMatchRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid payload")
		return
	}
	body.BankID = strings.TrimSpace(body.BankID)
	body.InternalID = strings.TrimSpace(body.InternalID)
	if body.BankID == "" || body.InternalID == "" {
		badRequest(c, "bank_id and internal_id are required")
		return
	}

	ctx := c.Request.Context()
	runID := c.Param("runId")

	m, err := h.service.ApplyManualMatch(ctx, runID, body.BankID, body.InternalID, body.PerformedBy)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	s, err := h.service.Summary(ctx, runID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, manualMatchResponse{Match: m, Summary: s})
}

// ListRuns returns the run history, newest first.
func (h *ReconciliationHandler) ListRuns(c *gin.Context) {
	page, err := h.service.History(
		c.Request.Context(),
		c.Query("profile"),
		intQuery(c, "limit", 0),
		intQuery(c, "offset", 0),
	)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *ReconciliationHandler) GetStatistics(c *gin.Context) {
	stats, err := h.service.Statistics(c.Request.Context(), c.Query("profile"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func intQuery(c *gin.Context, name string, def int) int {
	v := c.Query(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
