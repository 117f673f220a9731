package httputil_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/appconfig/internal/httputil"
)

func newQueryContext(t *testing.T, url string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	c.Request = req
	return c
}

func TestParsePagination(t *testing.T) {
	t.Run("Success_Defaults", func(t *testing.T) {
		offset, limit, err := httputil.ParsePagination(newQueryContext(t, "/"))
		require.NoError(t, err)
		assert.Equal(t, 0, offset)
		assert.Equal(t, httputil.DefaultLimit, limit)
	})

	t.Run("Success_Custom", func(t *testing.T) {
		offset, limit, err := httputil.ParsePagination(newQueryContext(t, "/?offset=10&limit=100"))
		require.NoError(t, err)
		assert.Equal(t, 10, offset)
		assert.Equal(t, httputil.MaxLimit, limit)
	})

	for _, url := range []string{"/?offset=-1", "/?offset=abc", "/?offset="} {
		t.Run("Error_Offset "+url, func(t *testing.T) {
			offset, limit, err := httputil.ParsePagination(newQueryContext(t, url))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid offset parameter")
			assert.Zero(t, offset)
			assert.Zero(t, limit)
		})
	}

	for _, url := range []string{"/?limit=0", "/?limit=101", "/?limit=xyz"} {
		t.Run("Error_Limit "+url, func(t *testing.T) {
			_, _, err := httputil.ParsePagination(newQueryContext(t, url))
			require.Error(t, err)
			assert.Equal(t, "invalid limit parameter: must be between 1 and 100", err.Error())
		})
	}
}

func TestPage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{1, 2}, httputil.Page(items, 0, 2))
	assert.Equal(t, []int{4, 5}, httputil.Page(items, 3, 10))
	assert.Empty(t, httputil.Page(items, 5, 10))
	assert.Empty(t, httputil.Page(items, 50, 10))
	assert.Empty(t, httputil.Page([]int(nil), 0, 10))
}
