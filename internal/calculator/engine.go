package calculator

import (
	"fmt"
	"time"

	"bin-finder/internal/models"

	"github.com/rs/zerolog"
)

// SortPolicy decides what SortByDistance does when it cannot sort at all
// (missing or invalid origin).
type SortPolicy int

const (
	// SortPassthrough returns the input in its original order without distances.
	SortPassthrough SortPolicy = iota
	// SortStrict returns the error to the caller.
	SortStrict
)

func ParseSortPolicy(s string) (SortPolicy, error) {
	switch s {
	case "", "passthrough":
		return SortPassthrough, nil
	case "strict":
		return SortStrict, nil
	}
	return SortPassthrough, fmt.Errorf("unknown sort policy %q", s)
}

func (p SortPolicy) String() string {
	if p == SortStrict {
		return "strict"
	}
	return "passthrough"
}

// Engine computes distances and keeps the last calculation and the last error
// of its owner. An Engine is not safe for concurrent use; give each consumer
// its own instance.
type Engine struct {
	logger  zerolog.Logger
	policy  SortPolicy
	now     func() time.Time
	last    *models.DistanceResult
	lastErr string
}

type EngineOption func(*Engine)

func WithSortPolicy(p SortPolicy) EngineOption {
	return func(e *Engine) { e.policy = p }
}

func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

func NewEngine(logger zerolog.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		logger: logger.With().Str("component", "distance").Logger(),
		policy: SortPassthrough,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CalculateDistance returns the great-circle distance in meters between two
// points. Identical points give exactly 0. The result is kept as the last
// calculation.
func (e *Engine) CalculateDistance(lat1, lng1, lat2, lng2 float64) (float64, error) {
	e.lastErr = ""

	from := models.Coordinate{Lat: lat1, Lng: lng1}
	to := models.Coordinate{Lat: lat2, Lng: lng2}
	if !from.Valid() || !to.Valid() {
		return 0, e.fail(fmt.Errorf("calculate distance: %w: (%v, %v) -> (%v, %v)",
			ErrInvalidCoordinate, lat1, lng1, lat2, lng2))
	}

	distance := 0.0
	if lat1 != lat2 || lng1 != lng2 {
		distance = Haversine(lat1, lng1, lat2, lng2)
	}

	e.last = &models.DistanceResult{
		From:           from,
		To:             to,
		DistanceMeters: distance,
		ComputedAt:     e.now(),
	}
	return distance, nil
}

// DistanceFromOrigin measures from origin (usually the user's current
// location) to the target point.
func (e *Engine) DistanceFromOrigin(origin *models.Coordinate, lat, lng float64) (float64, error) {
	e.lastErr = ""
	if origin == nil {
		return 0, e.fail(fmt.Errorf("distance from origin: %w", ErrNoOrigin))
	}
	if !ValidCoordinate(lat, lng) {
		return 0, e.fail(fmt.Errorf("distance from origin: %w: target (%v, %v)", ErrInvalidCoordinate, lat, lng))
	}
	return e.CalculateDistance(origin.Lat, origin.Lng, lat, lng)
}

// LastCalculation returns a copy of the most recent successful calculation.
func (e *Engine) LastCalculation() (models.DistanceResult, bool) {
	if e.last == nil {
		return models.DistanceResult{}, false
	}
	return *e.last, true
}

func (e *Engine) ClearLastCalculation() { e.last = nil }

// LastError is the message of the most recent failure, or "".
func (e *Engine) LastError() string { return e.lastErr }

func (e *Engine) HasError() bool { return e.lastErr != "" }

func (e *Engine) ClearError() { e.lastErr = "" }

func (e *Engine) Policy() SortPolicy { return e.policy }

func (e *Engine) fail(err error) error {
	e.lastErr = err.Error()
	e.logger.Debug().Err(err).Msg("distance calculation failed")
	return err
}
