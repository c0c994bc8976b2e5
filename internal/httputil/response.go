// Package httputil provides HTTP utility functions for request and response handling.
package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
)

// ErrorResponse represents a structured error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// errorMapping is one row of the failure to HTTP status table.
type errorMapping struct {
	kind       error
	statusCode int
	code       string
	message    string
}

// errorTable is evaluated top to bottom; the first matching kind wins. An empty message
// means the error text is safe to return to the client.
var errorTable = []errorMapping{
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized", "Authentication is required"},
	{apperrors.ErrForbidden, http.StatusForbidden, "forbidden", "You don't have permission to access this resource"},
	{apperrors.ErrInvalidInput, http.StatusUnprocessableEntity, "invalid_input", ""},
	{apperrors.ErrNotFound, http.StatusNotFound, "not_found", "The requested resource was not found"},
	{apperrors.ErrConflict, http.StatusConflict, "conflict", "A conflict occurred with existing data"},
	{apperrors.ErrInvalidState, http.StatusConflict, "invalid_state", ""},
	{apperrors.ErrProvider, http.StatusBadGateway, "provider_error", "An upstream provider failed"},
	{apperrors.ErrRepository, http.StatusInternalServerError, "internal_error", "An internal error occurred"},
}

var defaultMapping = errorMapping{
	statusCode: http.StatusInternalServerError,
	code:       "internal_error",
	message:    "An internal error occurred",
}

// StatusFor returns the HTTP status code for err.
func StatusFor(err error) int {
	return lookup(err).statusCode
}

func lookup(err error) errorMapping {
	for _, m := range errorTable {
		if apperrors.Is(err, m.kind) {
			return m
		}
	}
	return defaultMapping
}

// HandleErrorGin maps domain errors to HTTP status codes and returns a JSON response using Gin.
func HandleErrorGin(c *gin.Context, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	m := lookup(err)
	errorResponse := ErrorResponse{Error: m.code, Message: m.message}
	if errorResponse.Message == "" {
		errorResponse.Message = err.Error()
	}

	if logger != nil {
		fields := []zap.Field{
			zap.Int("status_code", m.statusCode),
			zap.String("error_code", m.code),
			zap.Error(err),
		}
		if m.statusCode >= http.StatusInternalServerError {
			logger.Error("request failed", fields...)
		} else {
			logger.Debug("request failed", fields...)
		}
	}

	c.JSON(m.statusCode, errorResponse)
}

// HandleBadRequestGin writes a 400 Bad Request response for malformed JSON or parameters using Gin.
func HandleBadRequestGin(c *gin.Context, err error, logger *zap.Logger) {
	if logger != nil {
		logger.Warn("bad request", zap.Error(err))
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "bad_request",
		Message: err.Error(),
	})
}

// HandleValidationErrorGin writes a 422 Unprocessable Entity response for validation errors using Gin.
func HandleValidationErrorGin(c *gin.Context, err error, logger *zap.Logger) {
	if logger != nil {
		logger.Warn("validation failed", zap.Error(err))
	}

	c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation_error",
		Message: err.Error(),
	})
}
