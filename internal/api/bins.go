package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"bin-finder/internal/calculator"
	"bin-finder/internal/excel"
	"bin-finder/internal/metrics"
	"bin-finder/internal/models"
	"bin-finder/internal/search"
	"bin-finder/internal/session"

	"github.com/gin-gonic/gin"
)

type boundsQuery struct {
	SWLat *float64 `form:"swLat" binding:"required,min=-90,max=90"`
	SWLng *float64 `form:"swLng" binding:"required,min=-180,max=180"`
	NELat *float64 `form:"neLat" binding:"required,min=-90,max=90"`
	NELng *float64 `form:"neLng" binding:"required,min=-180,max=180"`
}

type radiusQuery struct {
	Lat      *float64 `form:"lat" binding:"required,min=-90,max=90"`
	Lng      *float64 `form:"lng" binding:"required,min=-180,max=180"`
	RadiusKm float64  `form:"radiusKm" binding:"omitempty,gt=0"`
	Approx   bool     `form:"approx"`
}

// originQuery overrides the session origin when both coordinates are given.
// Without them, requireLocation ignores the default origin.
type originQuery struct {
	Lat             *float64 `form:"lat"`
	Lng             *float64 `form:"lng"`
	RequireLocation bool     `form:"requireLocation"`
}

type searchResult struct {
	search.Result[models.Bin]
	DisplayAddress    string   `json:"displayAddress"`
	SecondaryAddress  string   `json:"secondaryAddress,omitempty"`
	HighlightedRoad   string   `json:"highlightedRoad,omitempty"`
	HighlightedLand   string   `json:"highlightedLandLot,omitempty"`
	Distance          *float64 `json:"distance,omitempty"`
	FormattedDistance string   `json:"formattedDistance,omitempty"`
}

func (s *Server) listBins(c *gin.Context) {
	respond(c, http.StatusOK, gin.H{"data": s.data.Bins, "stats": s.data.Stats()})
}

func (s *Server) getBin(c *gin.Context) {
	b, ok := s.data.Find(c.Param("id"))
	if !ok {
		fail(c, calculator.ErrNotFound)
		return
	}

	st := state(c)
	st.Lock()
	defer st.Unlock()

	body := gin.H{"data": b}
	if loc, ok := b.Location(); ok {
		origin, _ := st.Origin()
		if d, err := st.Distance.DistanceFromOrigin(&origin, loc.Lat, loc.Lng); err == nil {
			body["distance"] = d
			body["formattedDistance"] = calculator.FormatDistance(d)
		}
	}
	respond(c, http.StatusOK, body)
}

func (s *Server) binsInBounds(c *gin.Context) {
	var q boundsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err.Error())
		return
	}
	bins := s.data.Index.InBounds(models.Bounds{
		SW: models.Coordinate{Lat: *q.SWLat, Lng: *q.SWLng},
		NE: models.Coordinate{Lat: *q.NELat, Lng: *q.NELng},
	})
	respond(c, http.StatusOK, gin.H{"data": bins, "count": len(bins)})
}

func (s *Server) binsInRadius(c *gin.Context) {
	var q radiusQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err.Error())
		return
	}
	if q.RadiusKm == 0 {
		q.RadiusKm = 1
	}
	center := models.Coordinate{Lat: *q.Lat, Lng: *q.Lng}
	meters := q.RadiusKm * 1000

	if q.Approx {
		bins := s.data.Index.NearbyApprox(center, meters)
		respond(c, http.StatusOK, gin.H{"data": bins, "count": len(bins)})
		return
	}
	hits := s.data.Index.WithinRadius(center, meters)
	respond(c, http.StatusOK, gin.H{"data": hits, "count": len(hits)})
}

func (s *Server) searchBins(c *gin.Context) {
	query := c.Query("q")
	highlight := c.Query("highlight") != "false"

	st := state(c)
	st.Lock()
	defer st.Unlock()

	results := st.Search.Search(s.data.Bins, query)
	observeSearch(query, len(results))

	origin, _ := st.Origin()
	out := make([]searchResult, len(results))
	for i, r := range results {
		sr := searchResult{Result: r, DisplayAddress: search.DisplayAddress(r.Item)}
		if second, ok := search.SecondaryAddress(r.Item); ok {
			sr.SecondaryAddress = second
		}
		if highlight {
			sr.HighlightedRoad = st.Search.HighlightCurrent(r.Item.RoadAddress, search.KindRoad)
			sr.HighlightedLand = st.Search.HighlightCurrent(r.Item.LandLotAddress, search.KindLandLot)
		}
		if loc, ok := r.Item.Location(); ok {
			d := calculator.Haversine(origin.Lat, origin.Lng, loc.Lat, loc.Lng)
			sr.Distance = &d
			sr.FormattedDistance = calculator.FormatDistance(d)
		}
		out[i] = sr
	}

	body := gin.H{"query": st.Search.Query(), "searchMode": st.Search.SearchMode(), "data": out}
	if stats, ok := st.Search.Stats(); ok {
		body["stats"] = stats
	}
	respond(c, http.StatusOK, body)
}

func observeSearch(query string, n int) {
	switch {
	case strings.TrimSpace(query) == "":
		metrics.SearchesTotal.WithLabelValues("blank").Inc()
		return
	case n == 0:
		metrics.SearchesTotal.WithLabelValues("empty").Inc()
	default:
		metrics.SearchesTotal.WithLabelValues("hit").Inc()
	}
	metrics.SearchResults.Observe(float64(n))
}

func (s *Server) clearSearch(c *gin.Context) {
	st := state(c)
	st.Lock()
	st.Search.Clear()
	st.Unlock()
	respond(c, http.StatusOK, gin.H{})
}

// exportSearch runs the query statelessly and returns the results as a
// workbook.
func (s *Server) exportSearch(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		badRequest(c, "q is required")
		return
	}
	results := search.Rank(s.data.Bins, query)

	dir, err := os.MkdirTemp("", "binfinder-export-")
	if err != nil {
		fail(c, err)
		return
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "search.xlsx")
	if err := excel.WriteSearchResults(path, results, "검색결과"); err != nil {
		fail(c, err)
		return
	}
	c.FileAttachment(path, "search.xlsx")
}

func (s *Server) nearestBins(c *gin.Context) {
	var q originQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err.Error())
		return
	}
	k := 1
	if raw := c.Query("k"); raw != "" {
		var kq struct {
			K int `form:"k" binding:"min=1,max=100"`
		}
		if err := c.ShouldBindQuery(&kq); err != nil {
			badRequest(c, err.Error())
			return
		}
		k = kq.K
	}

	st := state(c)
	st.Lock()
	defer st.Unlock()

	origin := resolveOrigin(st, q)
	if k == 1 {
		nearest, err := calculator.FindNearest(st.Distance, s.data.Bins, models.BinLocation, origin)
		metrics.DistanceCalculationsTotal.WithLabelValues("nearest", metrics.Outcome(err)).Inc()
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, gin.H{"data": []calculator.Located[models.Bin]{nearest}, "origin": origin})
		return
	}

	if origin == nil {
		fail(c, calculator.ErrNoOrigin)
		return
	}
	if !origin.Valid() {
		fail(c, calculator.ErrInvalidCoordinate)
		return
	}
	hits := s.data.Index.Nearest(*origin, k)
	metrics.DistanceCalculationsTotal.WithLabelValues("nearest", "ok").Inc()
	respond(c, http.StatusOK, gin.H{"data": hits, "origin": origin})
}

func (s *Server) sortedBins(c *gin.Context) {
	var q originQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err.Error())
		return
	}
	ascending := c.DefaultQuery("order", "asc") != "desc"

	st := state(c)
	st.Lock()
	defer st.Unlock()

	origin := resolveOrigin(st, q)
	sorted, err := calculator.SortByDistance(st.Distance, s.data.Bins, models.BinLocation, origin, ascending)
	metrics.DistanceCalculationsTotal.WithLabelValues("sort", metrics.Outcome(err)).Inc()
	if err != nil {
		fail(c, err)
		return
	}

	body := gin.H{"data": sorted, "count": len(sorted), "policy": st.Distance.Policy().String()}
	if st.Distance.HasError() {
		body["warning"] = st.Distance.LastError()
	}
	respond(c, http.StatusOK, body)
}

func resolveOrigin(st *session.State, q originQuery) *models.Coordinate {
	if q.Lat != nil && q.Lng != nil {
		return &models.Coordinate{Lat: *q.Lat, Lng: *q.Lng}
	}
	origin, isDefault := st.Origin()
	if isDefault && q.RequireLocation {
		return nil
	}
	return &origin
}
