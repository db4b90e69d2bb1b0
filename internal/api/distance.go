package api

import (
	"net/http"

	"bin-finder/internal/calculator"
	"bin-finder/internal/metrics"

	"github.com/gin-gonic/gin"
)

// distanceQuery measures between two points, or from the session origin
// when the from point is omitted.
type distanceQuery struct {
	FromLat *float64 `form:"fromLat"`
	FromLng *float64 `form:"fromLng"`
	ToLat   *float64 `form:"toLat" binding:"required"`
	ToLng   *float64 `form:"toLng" binding:"required"`
}

type formatQuery struct {
	calculator.FormatOptions
	Meters *float64 `form:"meters"`
}

func (s *Server) distance(c *gin.Context) {
	var q distanceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err.Error())
		return
	}
	opts := calculator.DefaultFormatOptions()
	if err := c.ShouldBindQuery(&opts); err != nil {
		badRequest(c, err.Error())
		return
	}

	st := state(c)
	st.Lock()
	defer st.Unlock()

	var (
		d   float64
		err error
		op  = "pair"
	)
	if q.FromLat != nil && q.FromLng != nil {
		d, err = st.Distance.CalculateDistance(*q.FromLat, *q.FromLng, *q.ToLat, *q.ToLng)
	} else {
		op = "origin"
		origin, _ := st.Origin()
		d, err = st.Distance.DistanceFromOrigin(&origin, *q.ToLat, *q.ToLng)
	}
	metrics.DistanceCalculationsTotal.WithLabelValues(op, metrics.Outcome(err)).Inc()
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"distance": d, "formattedDistance": opts.Format(d)})
}

func (s *Server) lastDistance(c *gin.Context) {
	st := state(c)
	st.Lock()
	defer st.Unlock()

	last, ok := st.Distance.LastCalculation()
	body := gin.H{"hasResult": ok}
	if ok {
		body["result"] = last
		body["formattedDistance"] = calculator.FormatDistance(last.DistanceMeters)
	}
	if st.Distance.HasError() {
		body["error"] = st.Distance.LastError()
	}
	respond(c, http.StatusOK, body)
}

func (s *Server) clearLastDistance(c *gin.Context) {
	st := state(c)
	st.Lock()
	st.Distance.ClearLastCalculation()
	st.Distance.ClearError()
	st.Unlock()
	respond(c, http.StatusOK, gin.H{})
}

// formatDistance renders meters with the query's format options. A missing
// meters value renders the no-distance label.
func (s *Server) formatDistance(c *gin.Context) {
	q := formatQuery{FormatOptions: calculator.DefaultFormatOptions()}
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err.Error())
		return
	}
	o := q.FormatOptions
	formatted := calculator.FormatOptionalDistance(q.Meters,
		calculator.WithPrecision(o.Precision),
		calculator.WithKilometers(o.UseKilometers),
		calculator.WithKmThreshold(o.KmThreshold),
		calculator.WithUnit(o.ShowUnit),
		calculator.WithShortUnit(o.ShortUnit),
	)
	respond(c, http.StatusOK, gin.H{"formatted": formatted, "options": o})
}
