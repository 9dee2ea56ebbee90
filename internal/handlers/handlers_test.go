package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	handler "bank-reconciliation-backend/internal/handlers"
	"bank-reconciliation-backend/internal/models"
	"bank-reconciliation-backend/internal/services/matching"
	service "bank-reconciliation-backend/internal/services/reconciliation"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	settings := service.NewSettingsService(nil, matching.DefaultToleranceConfig(), "default", logger)
	recon := service.NewReconciliationService(matching.NewEngine(), nil, settings, logger, service.Options{})

	rh := handler.NewReconciliationHandler(recon, logger)
	sh := handler.NewSettingsHandler(settings, logger)

	r := gin.New()
	g := r.Group("/api/reconciliations")
	g.POST("", rh.Reconcile)
	g.GET("", rh.ListRuns)
	g.GET("/stats", rh.GetStatistics)
	g.GET("/:runId", rh.GetRun)
	g.GET("/:runId/summary", rh.GetSummary)
	g.GET("/:runId/pending", rh.GetPending)
	g.POST("/:runId/manual-match", rh.ManualMatch)
	r.GET("/api/settings", sh.GetSettings)
	r.PUT("/api/settings", sh.UpdateSettings)
	return r
}

func do(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		buf = bytes.NewBufferString(b)
	default:
		data, _ := json.Marshal(b)
		buf = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func reconcileBody() map[string]any {
	return map[string]any{
		"mapping": map[string]string{"id": "id", "date": "date", "amount": "amount", "description": "memo"},
		"bank": []map[string]string{
			{"id": "B1", "date": "2025-01-10", "amount": "100.00", "memo": "PIX Joao Silva"},
			{"id": "B2", "date": "2025-01-12", "amount": "35.90", "memo": "Tarifa pacote"},
		},
		"internal": []map[string]string{
			{"id": "I1", "date": "2025-01-11", "amount": "100.00", "memo": "Pix João Silva"},
			{"id": "I2", "date": "2025-01-15", "amount": "35.90", "memo": "Mensalidade banco"},
		},
	}
}

func createRun(t *testing.T, r *gin.Engine) matching.Result {
	t.Helper()
	rec := do(r, http.MethodPost, "/api/reconciliations", reconcileBody())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[matching.Result](t, rec)
}

func TestReconciliationHandler_ReconcileAndQuery(t *testing.T) {
	r := newRouter(t)
	res := createRun(t, r)

	require.NotEmpty(t, res.RunID)
	require.Len(t, res.Matched, 1)
	assert.Equal(t, "B1", res.Matched[0].Bank.ID)
	assert.Equal(t, matching.OriginAutomatic, res.Matched[0].Origin)
	assert.Equal(t, 50.0, res.Summary.MatchRate)
	assert.Equal(t, "bank", res.Summary.MatchRateBasis)

	rec := do(r, http.MethodGet, "/api/reconciliations/"+res.RunID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[matching.Result](t, rec)
	assert.Equal(t, res.Summary, got.Summary)

	rec = do(r, http.MethodGet, "/api/reconciliations/"+res.RunID+"/pending", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pending := decode[matching.PendingSet](t, rec)
	require.Len(t, pending.BankPending, 1)
	assert.Equal(t, "B2", pending.BankPending[0].ID)
	require.Len(t, pending.InternalPending, 1)
	assert.Equal(t, "I2", pending.InternalPending[0].ID)

	rec = do(r, http.MethodGet, "/api/reconciliations/"+res.RunID+"/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, res.Summary, decode[matching.Summary](t, rec))
}

func TestReconciliationHandler_ReconcileErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{
			name:   "malformed json",
			body:   "{",
			status: http.StatusBadRequest,
			code:   handler.ErrCodeBadRequest,
		},
		{
			name:   "missing internal ledger",
			body:   map[string]any{"bank": []map[string]string{}},
			status: http.StatusBadRequest,
			code:   handler.ErrCodeBadRequest,
		},
		{
			name: "tolerance out of range",
			body: func() map[string]any {
				b := reconcileBody()
				b["tolerances"] = map[string]any{"date_tolerance_days": 30}
				return b
			}(),
			status: http.StatusBadRequest,
			code:   handler.ErrCodeValidation,
		},
		{
			name: "duplicate id",
			body: func() map[string]any {
				b := reconcileBody()
				b["bank"] = []map[string]string{
					{"id": "B1", "date": "2025-01-10", "amount": "1", "memo": "a"},
					{"id": "B1", "date": "2025-01-10", "amount": "2", "memo": "b"},
				}
				return b
			}(),
			status: http.StatusBadRequest,
			code:   handler.ErrCodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(newRouter(t), http.MethodPost, "/api/reconciliations", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decode[handler.APIError](t, rec).Code)
		})
	}
}

func TestReconciliationHandler_ClientCanceled(t *testing.T) {
	var logs bytes.Buffer
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelInfo}))
	settings := service.NewSettingsService(nil, matching.DefaultToleranceConfig(), "default", logger)
	recon := service.NewReconciliationService(matching.NewEngine(), nil, settings, logger, service.Options{})

	r := gin.New()
	r.POST("/api/reconciliations", handler.NewReconciliationHandler(recon, logger).Reconcile)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	data, err := json.Marshal(reconcileBody())
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/reconciliations", bytes.NewReader(data)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, 499, rec.Code)
	assert.Equal(t, handler.ErrCodeCanceled, decode[handler.APIError](t, rec).Code)
	assert.NotContains(t, logs.String(), "level=ERROR")
}

func TestReconciliationHandler_UnknownRun(t *testing.T) {
	r := newRouter(t)

	for _, path := range []string{
		"/api/reconciliations/missing",
		"/api/reconciliations/missing/summary",
		"/api/reconciliations/missing/pending",
	} {
		rec := do(r, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Equal(t, handler.ErrCodeNotFound, decode[handler.APIError](t, rec).Code)
	}

	rec := do(r, http.MethodPost, "/api/reconciliations/missing/manual-match", map[string]string{
		"bank_id": "B2", "internal_id": "I2",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReconciliationHandler_ManualMatch(t *testing.T) {
	r := newRouter(t)
	res := createRun(t, r)
	path := "/api/reconciliations/" + res.RunID + "/manual-match"

	rec := do(r, http.MethodPost, path, map[string]string{"bank_id": "B2"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(r, http.MethodPost, path, map[string]string{
		"bank_id": "B2", "internal_id": "I2", "performed_by": "ana",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Match   matching.Match   `json:"match"`
		Summary matching.Summary `json:"summary"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, matching.OriginManual, body.Match.Origin)
	assert.Equal(t, 1.0, body.Match.Confidence)
	assert.NotNil(t, body.Match.MatchedAt)
	assert.Equal(t, 2, body.Summary.MatchedCount)
	assert.Equal(t, 1, body.Summary.ManualCount)
	assert.Equal(t, 100.0, body.Summary.MatchRate)

	rec = do(r, http.MethodPost, path, map[string]string{"bank_id": "B2", "internal_id": "I2"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, handler.ErrCodeNotPending, decode[handler.APIError](t, rec).Code)

	rec = do(r, http.MethodPost, path, map[string]string{"bank_id": "B9", "internal_id": "I2"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestReconciliationHandler_HistoryAndStats(t *testing.T) {
	r := newRouter(t)
	first := createRun(t, r)
	second := createRun(t, r)

	rec := do(r, http.MethodGet, "/api/reconciliations?limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[service.HistoryPage](t, rec)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 1, page.Limit)
	require.Len(t, page.Runs, 1)
	assert.Contains(t, []string{first.RunID, second.RunID}, page.Runs[0].RunID)

	rec = do(r, http.MethodGet, "/api/reconciliations?limit=abc&offset=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page = decode[service.HistoryPage](t, rec)
	assert.Equal(t, 20, page.Limit)
	assert.Empty(t, page.Runs)

	rec = do(r, http.MethodGet, "/api/reconciliations/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[models.RunStatistics](t, rec)
	assert.Equal(t, int64(2), stats.TotalRuns)
	assert.Equal(t, int64(8), stats.TotalTransactions)
	assert.Equal(t, 50.0, stats.AverageMatchRate)
	assert.Equal(t, int64(2), stats.TotalMatched)
	assert.Equal(t, int64(4), stats.TotalPending)
}

func TestSettingsHandler(t *testing.T) {
	r := newRouter(t)

	rec := do(r, http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cfg := decode[matching.ToleranceConfig](t, rec)
	assert.Equal(t, matching.DefaultToleranceConfig().DateToleranceDays, cfg.DateToleranceDays)
	assert.Equal(t, 0.70, cfg.SimilarityThreshold)

	rec = do(r, http.MethodPut, "/api/settings", map[string]any{"similarity_threshold": 0.3})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, handler.ErrCodeValidation, decode[handler.APIError](t, rec).Code)

	rec = do(r, http.MethodPut, "/api/settings", map[string]any{"date_tolerance_days": 3, "value_tolerance": "0.05"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cfg = decode[matching.ToleranceConfig](t, rec)
	assert.Equal(t, 3, cfg.DateToleranceDays)
	assert.Equal(t, "0.05", cfg.ValueTolerance.String())
	assert.Equal(t, 0.70, cfg.SimilarityThreshold)

	rec = do(r, http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, decode[matching.ToleranceConfig](t, rec).DateToleranceDays)

	rec = do(r, http.MethodGet, "/api/settings?profile=other", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[matching.ToleranceConfig](t, rec).DateToleranceDays)

	rec = do(r, http.MethodPut, "/api/settings", "not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
