package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// API metrics, labelled by area (see Area).
var (
	APIRequests = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "API requests by area, method and status class.",
		},
		[]string{"area", "method", "class"},
	)

	APILatency = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_seconds",
			Help:      "API latency by area and route template.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5, 30},
		},
		[]string{"area", "route"},
	)

	APIInFlight = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "in_flight",
			Help:      "API requests currently being served.",
		},
	)

	RateLimited = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-client rate limiter, by area.",
		},
		[]string{"area"},
	)
)

// Area maps a route template to its API area: the segment after /api/, or
// "system" for anything outside /api and "unmatched" for unknown routes.
func Area(route string) string {
	if route == "" {
		return "unmatched"
	}
	rest, ok := strings.CutPrefix(route, "/api/")
	if !ok {
		return "system"
	}
	area, _, _ := strings.Cut(rest, "/")
	if area == "" {
		return "system"
	}
	return area
}

// statusClass folds a status code into 2xx, 4xx and so on.
func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}

// Middleware records count and latency per API area.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		APIInFlight.Inc()
		defer APIInFlight.Dec()

		c.Next()

		route := c.FullPath()
		area := Area(route)
		if route == "" {
			route = "unmatched"
		}
		APIRequests.WithLabelValues(area, c.Request.Method, statusClass(c.Writer.Status())).Inc()
		APILatency.WithLabelValues(area, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
