package api

import (
	"net/http"

	"bin-finder/internal/geocoding"

	"github.com/gin-gonic/gin"
)

type reverseQuery struct {
	Lat *float64 `form:"lat" binding:"required"`
	Lng *float64 `form:"lng" binding:"required"`
	geocoding.LookupOptions
}

func (s *Server) reverseGeocode(c *gin.Context) {
	var q reverseQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err.Error())
		return
	}

	st := state(c)
	addr, cached, err := st.Geocode.Resolve(c.Request.Context(), s.geocoder, *q.Lat, *q.Lng, q.LookupOptions)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"address":         addr,
		"cached":          cached,
		"valid":           geocoding.Valid(&addr),
		"simpleAddress":   geocoding.Simple(&addr),
		"detailedAddress": geocoding.Detailed(&addr),
	})
}

func (s *Server) geocodeHistory(c *gin.Context) {
	st := state(c)
	respond(c, http.StatusOK, gin.H{
		"data":      st.Geocode.History(),
		"current":   st.Geocode.Current(),
		"error":     st.Geocode.LastError(),
		"cacheSize": s.geocoder.CacheLen(),
	})
}

func (s *Server) clearGeocodeHistory(c *gin.Context) {
	st := state(c)
	st.Geocode.ClearHistory()
	st.Geocode.ClearError()
	respond(c, http.StatusOK, gin.H{})
}

func (s *Server) clearGeocodeCache(c *gin.Context) {
	s.geocoder.ClearCache()
	respond(c, http.StatusOK, gin.H{})
}
