package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"bank-reconciliation-backend/internal/services/matching"
	service "bank-reconciliation-backend/internal/services/reconciliation"
)

// APIError is the body of every error response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	ErrCodeNotFound               = "not_found"
	ErrCodeBadRequest             = "bad_request"
	ErrCodeValidation             = "validation_error"
	ErrCodeNotPending             = "not_pending"
	ErrCodeConcurrentModification = "concurrent_modification"
	ErrCodeTimeout                = "timeout"
	ErrCodeCanceled               = "canceled"
	ErrCodeInternalError          = "internal_error"
)

// statusClientClosedRequest is the nginx convention for a request the client
// abandoned. The body is rarely read but keeps access logs honest.
const statusClientClosedRequest = 499

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, APIError{Code: ErrCodeBadRequest, Message: message})
}

// respondError maps service and core errors to a status code and body.
// Anything unrecognized is logged and hidden behind a 500.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	var (
		ve  *matching.ValidationError
		np  *matching.NotPendingError
		cme *matching.ConcurrentModificationError
	)

	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, APIError{Code: ErrCodeValidation, Message: ve.Error()})
	case errors.Is(err, service.ErrRunNotFound):
		c.JSON(http.StatusNotFound, APIError{Code: ErrCodeNotFound, Message: "reconciliation run not found"})
	case errors.As(err, &np):
		c.JSON(http.StatusConflict, APIError{Code: ErrCodeNotPending, Message: np.Error()})
	case errors.As(err, &cme):
		c.JSON(http.StatusConflict, APIError{Code: ErrCodeConcurrentModification, Message: cme.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, APIError{Code: ErrCodeTimeout, Message: "reconciliation timed out"})
	case errors.Is(err, context.Canceled):
		logger.Debug("request canceled by client", "method", c.Request.Method, "path", c.FullPath())
		c.JSON(statusClientClosedRequest, APIError{Code: ErrCodeCanceled, Message: "request canceled"})
	default:
		logger.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, APIError{Code: ErrCodeInternalError, Message: "an internal error occurred"})
	}
}
