package api

import (
	"net/http"

	"bin-finder/internal/geocoding"
	"bin-finder/internal/models"

	"github.com/gin-gonic/gin"
)

type locationRequest struct {
	Lat     *float64 `json:"lat" binding:"required,min=-90,max=90"`
	Lng     *float64 `json:"lng" binding:"required,min=-180,max=180"`
	Resolve bool     `json:"resolve"`
}

func (s *Server) getLocation(c *gin.Context) {
	st := state(c)
	st.Lock()
	origin, isDefault := st.Origin()
	st.Unlock()

	addr := st.Geocode.Current()
	respond(c, http.StatusOK, gin.H{
		"location":        origin,
		"isDefault":       isDefault,
		"address":         addr,
		"simpleAddress":   geocoding.Simple(addr),
		"detailedAddress": geocoding.Detailed(addr),
	})
}

// setLocation stores the caller's position. With resolve set the address
// is looked up too; a failed lookup does not undo the location.
func (s *Server) setLocation(c *gin.Context) {
	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	loc := models.Coordinate{Lat: *req.Lat, Lng: *req.Lng}

	st := state(c)
	st.Lock()
	st.SetOrigin(loc)
	st.Unlock()

	body := gin.H{"location": loc, "isDefault": false}
	if req.Resolve {
		addr, cached, err := st.Geocode.Resolve(c.Request.Context(), s.geocoder, loc.Lat, loc.Lng, geocoding.LookupOptions{})
		if err != nil {
			body["geocodeError"] = err.Error()
		} else {
			body["address"] = addr
			body["cached"] = cached
		}
	}
	respond(c, http.StatusOK, body)
}

func (s *Server) clearLocation(c *gin.Context) {
	st := state(c)
	st.Lock()
	st.ClearOrigin()
	origin, _ := st.Origin()
	st.Unlock()

	st.Geocode.ClearCurrent()
	respond(c, http.StatusOK, gin.H{"location": origin, "isDefault": true})
}
