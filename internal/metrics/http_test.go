package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	provider, err := NewProvider("http_test")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	router := gin.New()
	router.Use(HTTPMetricsMiddleware(provider.MeterProvider(), "http_test"))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/v1/keys/:type", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": []string{}})
	})
	router.POST("/v1/keys", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	})

	for _, path := range []string{"/v1/keys/billing", "/v1/keys/config-shop-prod", "/health", "/nope"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/keys", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	output := scrape(t, provider)

	t.Run("Success_RouteIsThePattern", func(t *testing.T) {
		assertMetricLine(t, output, `http_test_http_requests_total`,
			`method="GET".*path="/v1/keys/:type".*status_code="200"`, `2`)
	})

	t.Run("Success_ErrorStatusRecorded", func(t *testing.T) {
		assertMetricLine(t, output, `http_test_http_requests_total`,
			`method="POST".*path="/v1/keys".*status_code="500"`, `1`)
	})

	t.Run("Success_UnmatchedRouteIsUnknown", func(t *testing.T) {
		assertMetricLine(t, output, `http_test_http_requests_total`,
			`path="unknown".*status_code="404"`, `1`)
	})

	t.Run("Success_ProbesSkipped", func(t *testing.T) {
		assert.NotContains(t, output, `path="/health"`)
	})
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "unknown", routeLabel(""))
	assert.Equal(t, "/v1/keys/:id/verify", routeLabel("/v1/keys/:id/verify"))
}
