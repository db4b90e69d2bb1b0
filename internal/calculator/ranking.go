package calculator

import (
	"cmp"
	"encoding/json"
	"fmt"
	"math"
	"slices"

	"bin-finder/internal/models"
)

// CoordFunc extracts a coordinate from a record. ok is false when the record
// has no usable location.
type CoordFunc[T any] func(T) (models.Coordinate, bool)

// Located is a record enriched with its distance from an origin. Index is the
// record's position in the input slice.
type Located[T any] struct {
	Item              T
	Distance          float64
	FormattedDistance string
	Index             int
}

// MarshalJSON writes an infinite distance as null.
func (l Located[T]) MarshalJSON() ([]byte, error) {
	var distance *float64
	if !math.IsInf(l.Distance, 0) && !math.IsNaN(l.Distance) {
		d := l.Distance
		distance = &d
	}
	return json.Marshal(struct {
		Item              T        `json:"item"`
		Distance          *float64 `json:"distance"`
		FormattedDistance string   `json:"formattedDistance"`
		Index             int      `json:"index"`
	}{l.Item, distance, l.FormattedDistance, l.Index})
}

// Items strips the distance enrichment.
func Items[T any](located []Located[T]) []T {
	out := make([]T, len(located))
	for i, l := range located {
		out[i] = l.Item
	}
	return out
}

// FindNearest returns the record closest to origin. Records without valid
// coordinates are skipped; on equal distances the earlier record wins.
func FindNearest[T any](e *Engine, items []T, coordOf CoordFunc[T], origin *models.Coordinate) (Located[T], error) {
	e.ClearError()

	var zero Located[T]
	if len(items) == 0 {
		return zero, e.fail(fmt.Errorf("find nearest: %w: empty location list", ErrInvalidInput))
	}
	if origin == nil {
		return zero, e.fail(fmt.Errorf("find nearest: %w", ErrNoOrigin))
	}
	if !origin.Valid() {
		return zero, e.fail(fmt.Errorf("find nearest: %w: origin (%v, %v)", ErrInvalidCoordinate, origin.Lat, origin.Lng))
	}

	best := -1
	shortest := math.Inf(1)
	for i, item := range items {
		c, ok := coordOf(item)
		if !ok || !c.Valid() {
			e.logger.Warn().Int("index", i).Float64("lat", c.Lat).Float64("lng", c.Lng).
				Msg("skipping location with invalid coordinates")
			continue
		}

		d, err := e.CalculateDistance(origin.Lat, origin.Lng, c.Lat, c.Lng)
		if err != nil {
			continue
		}
		if d < shortest {
			shortest = d
			best = i
		}
	}

	if best < 0 {
		return zero, e.fail(fmt.Errorf("find nearest: %w", ErrNotFound))
	}

	return Located[T]{
		Item:              items[best],
		Distance:          shortest,
		FormattedDistance: FormatDistance(shortest),
		Index:             best,
	}, nil
}

// SortByDistance returns the records ordered by distance from origin.
// Records without valid coordinates get an infinite distance and the
// UncomputableLabel, so they go last when ascending and first otherwise.
// Equal distances keep input order. The input slice is not modified.
//
// When origin is missing or invalid the engine's SortPolicy applies.
func SortByDistance[T any](e *Engine, items []T, coordOf CoordFunc[T], origin *models.Coordinate, ascending bool) ([]Located[T], error) {
	e.ClearError()

	var err error
	switch {
	case origin == nil:
		err = e.fail(fmt.Errorf("sort by distance: %w", ErrNoOrigin))
	case !origin.Valid():
		err = e.fail(fmt.Errorf("sort by distance: %w: origin (%v, %v)", ErrInvalidCoordinate, origin.Lat, origin.Lng))
	}
	if err != nil {
		if e.policy == SortStrict {
			return nil, err
		}
		e.logger.Warn().Err(err).Msg("returning locations unsorted")
		return unsorted(items), nil
	}

	out := make([]Located[T], len(items))
	for i, item := range items {
		out[i] = Located[T]{Item: item, Index: i, Distance: math.Inf(1), FormattedDistance: UncomputableLabel}

		c, ok := coordOf(item)
		if !ok || !c.Valid() {
			continue
		}
		d, calcErr := e.CalculateDistance(origin.Lat, origin.Lng, c.Lat, c.Lng)
		if calcErr != nil {
			continue
		}
		out[i].Distance = d
		out[i].FormattedDistance = FormatDistance(d)
	}

	slices.SortStableFunc(out, func(a, b Located[T]) int {
		if ascending {
			return cmp.Compare(a.Distance, b.Distance)
		}
		return cmp.Compare(b.Distance, a.Distance)
	})
	return out, nil
}

func unsorted[T any](items []T) []Located[T] {
	out := make([]Located[T], len(items))
	for i, item := range items {
		out[i] = Located[T]{Item: item, Index: i, Distance: math.Inf(1), FormattedDistance: NoDistanceLabel}
	}
	return out
}
