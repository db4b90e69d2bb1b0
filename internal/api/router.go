// Package api exposes bin lookup, search, distance, geocoding and batch
// jobs over HTTP.
package api

import (
	"net/http"

	"bin-finder/internal/api/middleware"
	"bin-finder/internal/dataset"
	"bin-finder/internal/geocoding"
	"bin-finder/internal/jobs"
	"bin-finder/internal/metrics"
	"bin-finder/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type Deps struct {
	Data      *dataset.Dataset
	Sessions  *session.Store
	Geocoder  *geocoding.Service
	Jobs      *jobs.Manager
	Logger    zerolog.Logger
	PerMinute int
	Burst     int
}

type Server struct {
	data     *dataset.Dataset
	sessions *session.Store
	geocoder *geocoding.Service
	jobs     *jobs.Manager
	logger   zerolog.Logger
}

// NewRouter wires every route onto a fresh gin engine.
func NewRouter(d Deps) *gin.Engine {
	s := &Server{
		data:     d.Data,
		sessions: d.Sessions,
		geocoder: d.Geocoder,
		jobs:     d.Jobs,
		logger:   d.Logger.With().Str("component", "api").Logger(),
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger), metrics.Middleware())

	r.GET("/healthz", s.health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	api.Use(middleware.RateLimit(d.PerMinute, d.Burst))
	api.Use(d.Sessions.Middleware()...)
	s.RegisterRoutes(api)
	return r
}

func (s *Server) RegisterRoutes(api *gin.RouterGroup) {
	bins := api.Group("/clothing-bins")
	{
		bins.GET("", s.listBins)
		bins.GET("/in-bounds", s.binsInBounds)
		bins.GET("/in-radius", s.binsInRadius)
		bins.GET("/search", s.searchBins)
		bins.GET("/search/export", s.exportSearch)
		bins.DELETE("/search", s.clearSearch)
		bins.GET("/nearest", s.nearestBins)
		bins.GET("/sorted", s.sortedBins)
		bins.GET("/:id", s.getBin)
	}

	loc := api.Group("/location")
	{
		loc.GET("", s.getLocation)
		loc.PUT("", s.setLocation)
		loc.DELETE("", s.clearLocation)
	}

	dist := api.Group("/distance")
	{
		dist.GET("", s.distance)
		dist.GET("/last", s.lastDistance)
		dist.DELETE("/last", s.clearLastDistance)
		dist.GET("/format", s.formatDistance)
	}

	geo := api.Group("/geocode")
	{
		geo.GET("/reverse", s.reverseGeocode)
		geo.GET("/history", s.geocodeHistory)
		geo.DELETE("/history", s.clearGeocodeHistory)
		geo.DELETE("/cache", s.clearGeocodeCache)
	}

	j := api.Group("/jobs")
	{
		j.POST("", s.createJob)
		j.GET("/:id", s.getJob)
		j.GET("/:id/logs", s.jobLogs)
		j.GET("/:id/download", s.downloadJob)
		j.POST("/:id/cancel", s.cancelJob)
	}
}

func (s *Server) health(c *gin.Context) {
	respond(c, http.StatusOK, gin.H{
		"bins":      s.data.Stats(),
		"geocoding": s.geocoder.Available(),
	})
}

func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Str("client", c.ClientIP()).
			Msg("request")
	}
}

// state returns the caller's session state. The session middleware always
// runs first on /api.
func state(c *gin.Context) *session.State {
	return session.FromContext(c)
}
