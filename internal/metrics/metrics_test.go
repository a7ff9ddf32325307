package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareRecordsRequestDuration(t *testing.T) {
	gin.SetMode(gin.TestMode)

	m := New()
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/events/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/events/123", nil)
	r.ServeHTTP(w, req)

	families, err := m.Gather()
	require.NoError(t, err)

	var found bool
	for _, fam := range families {
		if fam.GetName() != "http_request_duration_second" {
			continue
		}
		found = true
		require.Len(t, fam.GetMetric(), 1)
		metric := fam.GetMetric()[0]
		assert.Equal(t, uint64(1), metric.GetHistogram().GetSampleCount())

		labels := map[string]string{}
		for _, pair := range metric.GetLabel() {
			labels[pair.GetName()] = pair.GetValue()
		}
		assert.Equal(t, "GET", labels["method"])
		assert.Equal(t, "/api/events/:id", labels["route"])
		assert.Equal(t, "200", labels["code"])
	}
	assert.True(t, found, "request duration histogram not registered")
}

func TestHandlerServesRegistry(t *testing.T) {
	gin.SetMode(gin.TestMode)

	m := New()
	r := gin.New()
	r.GET("/metrics", m.Handler())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
