package api

import (
	"errors"
	"net/http"

	"bin-finder/internal/calculator"
	"bin-finder/internal/geocoding"
	"bin-finder/internal/jobs"

	"github.com/gin-gonic/gin"
)

func respond(c *gin.Context, status int, body gin.H) {
	body["ok"] = true
	c.JSON(status, body)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": msg})
}

func fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"ok": false, "error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, calculator.ErrInvalidCoordinate),
		errors.Is(err, calculator.ErrInvalidInput),
		errors.Is(err, geocoding.ErrInvalidCoordinate),
		errors.Is(err, jobs.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, calculator.ErrNotFound), errors.Is(err, jobs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, calculator.ErrNoOrigin):
		return http.StatusConflict
	case errors.Is(err, geocoding.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, geocoding.ErrGeocodingFailed):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
