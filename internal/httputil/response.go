// Package httputil provides HTTP utility functions for request and response handling.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/appconfig/internal/errors"
)

// ErrorResponse represents a structured error response.
// Code carries the stable machine code of coded domain errors (e.g. KEY_EXPIRED).
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// errorMapping binds a sentinel to its HTTP status and public error name.
// An empty message exposes err.Error() to the client.
type errorMapping struct {
	sentinel error
	status   int
	name     string
	message  string
}

var errorMappings = []errorMapping{
	{apperrors.ErrNotFound, http.StatusNotFound, "not_found", "The requested resource was not found"},
	{apperrors.ErrConflict, http.StatusConflict, "conflict", "A conflict occurred with existing data"},
	{apperrors.ErrInvalidInput, http.StatusUnprocessableEntity, "invalid_input", ""},
	{apperrors.ErrExpired, http.StatusGone, "expired", "The requested resource has expired"},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized", "Authentication is required"},
	{
		apperrors.ErrForbidden,
		http.StatusForbidden,
		"forbidden",
		"You don't have permission to access this resource",
	},
}

// mapError resolves the status and body of err. Unknown errors become a 500
// without details.
func mapError(err error) (int, ErrorResponse) {
	for _, m := range errorMappings {
		if !apperrors.Is(err, m.sentinel) {
			continue
		}
		message := m.message
		if message == "" {
			message = err.Error()
		}
		return m.status, ErrorResponse{Error: m.name, Message: message, Code: apperrors.CodeOf(err)}
	}
	return http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
		Code:    apperrors.CodeOf(err),
	}
}

// HandleErrorGin maps domain errors to HTTP status codes and returns a JSON response using Gin.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	statusCode, errorResponse := mapError(err)

	if logger != nil {
		logger.Error("request failed",
			slog.Int("status_code", statusCode),
			slog.String("error_code", errorResponse.Error),
			slog.String("code", errorResponse.Code),
			slog.Any("error", err),
		)
	}

	c.JSON(statusCode, errorResponse)
}

// HandleBadRequestGin writes a 400 Bad Request for malformed JSON or parameters.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	writeWarning(c, http.StatusBadRequest, "bad_request", "bad request", err, logger)
}

// HandleValidationErrorGin writes a 422 Unprocessable Entity for validation errors.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	writeWarning(c, http.StatusUnprocessableEntity, "validation_error", "validation failed", err, logger)
}

func writeWarning(c *gin.Context, status int, name, logMessage string, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn(logMessage, slog.Any("error", err))
	}
	c.JSON(status, ErrorResponse{Error: name, Message: err.Error()})
}
