package http

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCORSRouter(enabled bool, origins string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	if middleware := createCORSMiddleware(enabled, origins, slog.Default()); middleware != nil {
		router.Use(middleware)
	}
	router.POST("/v1/keys", func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return router
}

func TestCreateCORSMiddleware(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		assert.Nil(t, createCORSMiddleware(false, "https://ops.example.com", slog.Default()))
	})

	t.Run("EnabledWithoutOrigins", func(t *testing.T) {
		assert.Nil(t, createCORSMiddleware(true, " , ", slog.Default()))
	})

	t.Run("Enabled", func(t *testing.T) {
		assert.NotNil(t, createCORSMiddleware(true, "https://ops.example.com", slog.Default()))
	})
}

func TestParseOrigins(t *testing.T) {
	assert.Nil(t, parseOrigins(""))
	assert.Equal(
		t,
		[]string{"https://ops.example.com", "https://admin.example.com"},
		parseOrigins(" https://ops.example.com ,,https://admin.example.com "),
	)
}

func TestCORSRequests(t *testing.T) {
	t.Run("Success_AllowedOrigin", func(t *testing.T) {
		router := newCORSRouter(true, "https://ops.example.com")

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/keys", nil)
		req.Header.Set("Origin", "https://ops.example.com")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "https://ops.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("Success_Preflight", func(t *testing.T) {
		router := newCORSRouter(true, "https://ops.example.com")

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/v1/keys", nil)
		req.Header.Set("Origin", "https://ops.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	})

	t.Run("Success_DisabledAddsNoHeaders", func(t *testing.T) {
		router := newCORSRouter(false, "https://ops.example.com")

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/keys", nil)
		req.Header.Set("Origin", "https://ops.example.com")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}
