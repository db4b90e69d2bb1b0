package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitIsIdempotent(t *testing.T) {
	Init("test")
	Init("test")
	assert.Equal(t, 1.0, testutil.ToFloat64(AppInfo.WithLabelValues("test")))
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "error", Outcome(errors.New("boom")))
}

func TestArea(t *testing.T) {
	tests := []struct {
		route string
		want  string
	}{
		{"/api/clothing-bins/search", "clothing-bins"},
		{"/api/jobs/:id/download", "jobs"},
		{"/api/location", "location"},
		{"/healthz", "system"},
		{"/api/", "system"},
		{"", "unmatched"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Area(tt.route), tt.route)
	}
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/api/jobs/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(Handler()))

	ok := APIRequests.WithLabelValues("jobs", "GET", "2xx")
	missing := APIRequests.WithLabelValues("unmatched", "GET", "4xx")
	beforeOK, beforeMissing := testutil.ToFloat64(ok), testutil.ToFloat64(missing)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/jobs/42", nil))
	require.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, beforeOK+1, testutil.ToFloat64(ok))
	assert.Equal(t, beforeMissing+1, testutil.ToFloat64(missing))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "binfinder_api_requests_total"))
}
