package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/appconfig/internal/errors"
)

func TestHandleErrorGin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name         string
		err          error
		statusCode   int
		expectedErr  string
		expectedCode string
	}{
		{
			name:        "not found",
			err:         apperrors.Wrap(apperrors.ErrNotFound, "lookup"),
			statusCode:  http.StatusNotFound,
			expectedErr: "not_found",
		},
		{
			name:         "coded not found",
			err:          apperrors.Coded("KEY_NOT_EXIST", apperrors.ErrNotFound, "key does not exist"),
			statusCode:   http.StatusNotFound,
			expectedErr:  "not_found",
			expectedCode: "KEY_NOT_EXIST",
		},
		{
			name:         "coded expired",
			err:          apperrors.Wrap(apperrors.Coded("KEY_EXPIRED", apperrors.ErrExpired, ""), "resolve"),
			statusCode:   http.StatusGone,
			expectedErr:  "expired",
			expectedCode: "KEY_EXPIRED",
		},
		{
			name:        "conflict",
			err:         apperrors.ErrConflict,
			statusCode:  http.StatusConflict,
			expectedErr: "conflict",
		},
		{
			name:        "invalid input",
			err:         apperrors.ErrInvalidInput,
			statusCode:  http.StatusUnprocessableEntity,
			expectedErr: "invalid_input",
		},
		{
			name:        "forbidden",
			err:         apperrors.ErrForbidden,
			statusCode:  http.StatusForbidden,
			expectedErr: "forbidden",
		},
		{
			name:         "coded internal",
			err:          apperrors.Coded("KEY_GENERATE_ERROR", apperrors.ErrInternal, "store failed"),
			statusCode:   http.StatusInternalServerError,
			expectedErr:  "internal_error",
			expectedCode: "KEY_GENERATE_ERROR",
		},
		{
			name:        "unknown",
			err:         errors.New("boom"),
			statusCode:  http.StatusInternalServerError,
			expectedErr: "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			HandleErrorGin(c, tt.err, logger)

			assert.Equal(t, tt.statusCode, w.Code)

			var response ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.expectedErr, response.Error)
			assert.Equal(t, tt.expectedCode, response.Code)
		})
	}
}

func TestHandleValidationErrorGin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	HandleValidationErrorGin(c, errors.New("type: cannot be blank"), nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "validation_error")
	assert.Contains(t, w.Body.String(), "type: cannot be blank")
}

func TestHandleBadRequestGin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	HandleBadRequestGin(c, errors.New("unexpected EOF"), nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "bad_request")
}
