package calculator

import (
	"math"
	"testing"
	"time"

	"bin-finder/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(opts ...EngineOption) *Engine {
	return NewEngine(zerolog.Nop(), opts...)
}

func TestCalculateDistance_Identity(t *testing.T) {
	e := newTestEngine()
	for _, p := range [][2]float64{{0, 0}, {37.5665, 126.9780}, {-90, 180}, {33.1, -45.2}} {
		d, err := e.CalculateDistance(p[0], p[1], p[0], p[1])
		require.NoError(t, err)
		assert.Equal(t, 0.0, d)
	}
}

func TestCalculateDistance_Symmetry(t *testing.T) {
	e := newTestEngine()
	ab, err := e.CalculateDistance(37.5665, 126.9780, 35.1796, 129.0756)
	require.NoError(t, err)
	ba, err := e.CalculateDistance(35.1796, 129.0756, 37.5665, 126.9780)
	require.NoError(t, err)
	assert.InDelta(t, ab, ba, 1e-6)
}

func TestCalculateDistance_TriangleInequality(t *testing.T) {
	e := newTestEngine()
	points := []models.Coordinate{
		{Lat: 37.5665, Lng: 126.9780},
		{Lat: 35.1796, Lng: 129.0756},
		{Lat: 33.4996, Lng: 126.5312},
		{Lat: 38.2070, Lng: 128.5918},
	}
	dist := func(a, b models.Coordinate) float64 {
		d, err := e.CalculateDistance(a.Lat, a.Lng, b.Lat, b.Lng)
		require.NoError(t, err)
		return d
	}
	for _, a := range points {
		for _, b := range points {
			for _, c := range points {
				assert.LessOrEqual(t, dist(a, c), dist(a, b)+dist(b, c)+1e-6)
			}
		}
	}
}

func TestCalculateDistance_Antipodal(t *testing.T) {
	e := newTestEngine()
	halfCircumference := math.Pi * earthRadius
	pairs := [][4]float64{
		{10, 20, -10, -160},
		{-89.3, -180, 89.3, 0},
		{0, 0, 0, 180},
		{37.5665, 126.9780, -37.5665, -53.022},
	}
	for _, p := range pairs {
		d, err := e.CalculateDistance(p[0], p[1], p[2], p[3])
		require.NoError(t, err)
		require.False(t, math.IsNaN(d), "%v", p)
		assert.InEpsilon(t, halfCircumference, d, 1e-6, "%v", p)
	}

	last, ok := e.LastCalculation()
	require.True(t, ok)
	assert.False(t, math.IsNaN(last.DistanceMeters))
}

func TestCalculateDistance_CityHall(t *testing.T) {
	e := newTestEngine()
	d, err := e.CalculateDistance(37.5665, 126.9780, 37.5651, 126.9895)
	require.NoError(t, err)
	assert.InEpsilon(t, 1010, d, 0.05)
}

func TestCalculateDistance_InvalidCoordinate(t *testing.T) {
	e := newTestEngine()
	_, err := e.CalculateDistance(91, 0, 0, 0)
	require.ErrorIs(t, err, ErrInvalidCoordinate)
	assert.True(t, e.HasError())
	assert.Contains(t, e.LastError(), "invalid coordinate")

	_, ok := e.LastCalculation()
	assert.False(t, ok, "a failed calculation must not be recorded")

	_, err = e.CalculateDistance(0, 0, 0, math.NaN())
	require.ErrorIs(t, err, ErrInvalidCoordinate)

	e.ClearError()
	assert.False(t, e.HasError())
}

func TestCalculateDistance_RecordsLastCalculation(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	e := newTestEngine(WithClock(func() time.Time { return fixed }))

	d, err := e.CalculateDistance(37.50, 127.00, 37.60, 127.10)
	require.NoError(t, err)

	last, ok := e.LastCalculation()
	require.True(t, ok)
	assert.Equal(t, models.Coordinate{Lat: 37.50, Lng: 127.00}, last.From)
	assert.Equal(t, models.Coordinate{Lat: 37.60, Lng: 127.10}, last.To)
	assert.Equal(t, d, last.DistanceMeters)
	assert.Equal(t, fixed, last.ComputedAt)

	// a later call overwrites
	_, err = e.CalculateDistance(0, 0, 1, 1)
	require.NoError(t, err)
	last, _ = e.LastCalculation()
	assert.Equal(t, models.Coordinate{Lat: 1, Lng: 1}, last.To)

	e.ClearLastCalculation()
	_, ok = e.LastCalculation()
	assert.False(t, ok)
}

func TestDistanceFromOrigin(t *testing.T) {
	e := newTestEngine()

	_, err := e.DistanceFromOrigin(nil, 37.5, 127)
	assert.ErrorIs(t, err, ErrNoOrigin)

	origin := &models.Coordinate{Lat: 37.5665, Lng: 126.9780}
	_, err = e.DistanceFromOrigin(origin, 37.5, 200)
	assert.ErrorIs(t, err, ErrInvalidCoordinate)

	d, err := e.DistanceFromOrigin(origin, 37.5651, 126.9895)
	require.NoError(t, err)
	assert.Greater(t, d, 0.0)
	assert.False(t, e.HasError())
}

func TestEnginesDoNotShareState(t *testing.T) {
	a := newTestEngine()
	b := newTestEngine()

	_, err := a.CalculateDistance(0, 0, 1, 1)
	require.NoError(t, err)
	_, err = b.CalculateDistance(100, 0, 1, 1)
	require.Error(t, err)

	_, ok := b.LastCalculation()
	assert.False(t, ok)
	assert.False(t, a.HasError())
}

func TestParseSortPolicy(t *testing.T) {
	p, err := ParseSortPolicy("strict")
	require.NoError(t, err)
	assert.Equal(t, SortStrict, p)

	p, err = ParseSortPolicy("")
	require.NoError(t, err)
	assert.Equal(t, SortPassthrough, p)

	_, err = ParseSortPolicy("random")
	assert.Error(t, err)
}
