package calculator

import (
	"encoding/json"
	"math"
	"testing"

	"bin-finder/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type place struct {
	name     string
	lat, lng float64
}

func placeCoord(p place) (models.Coordinate, bool) {
	return models.Coordinate{Lat: p.lat, Lng: p.lng}, true
}

func names(located []Located[place]) []string {
	out := make([]string, len(located))
	for i, l := range located {
		out[i] = l.Item.name
	}
	return out
}

func TestFindNearest_FirstEntryAtOrigin(t *testing.T) {
	e := newTestEngine()
	places := []place{{"a", 37.50, 127.00}, {"b", 37.60, 127.10}}

	got, err := FindNearest(e, places, placeCoord, &models.Coordinate{Lat: 37.50, Lng: 127.00})
	require.NoError(t, err)
	assert.Equal(t, "a", got.Item.name)
	assert.Equal(t, 0.0, got.Distance)
	assert.Equal(t, 0, got.Index)
	assert.Equal(t, "1M", got.FormattedDistance)
}

func TestFindNearest_TiesKeepFirst(t *testing.T) {
	e := newTestEngine()
	places := []place{{"far", 38, 128}, {"x", 37.6, 127}, {"y", 37.6, 127}}

	got, err := FindNearest(e, places, placeCoord, &models.Coordinate{Lat: 37.5, Lng: 127})
	require.NoError(t, err)
	assert.Equal(t, "x", got.Item.name)
	assert.Equal(t, 1, got.Index)
}

func TestFindNearest_SkipsInvalid(t *testing.T) {
	e := newTestEngine()
	places := []place{{"bad", 120, 0}, {"nan", math.NaN(), 127}, {"ok", 37.7, 127.2}}

	got, err := FindNearest(e, places, placeCoord, &models.Coordinate{Lat: 37.5, Lng: 127})
	require.NoError(t, err)
	assert.Equal(t, "ok", got.Item.name)
	assert.Equal(t, 2, got.Index)
}

func TestFindNearest_Failures(t *testing.T) {
	e := newTestEngine()
	origin := &models.Coordinate{Lat: 37.5, Lng: 127}

	_, err := FindNearest(e, []place{}, placeCoord, origin)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.True(t, e.HasError())

	_, err = FindNearest(e, []place{{"a", 1, 1}}, placeCoord, nil)
	assert.ErrorIs(t, err, ErrNoOrigin)

	_, err = FindNearest(e, []place{{"a", 1, 1}}, placeCoord, &models.Coordinate{Lat: -100, Lng: 0})
	assert.ErrorIs(t, err, ErrInvalidCoordinate)

	_, err = FindNearest(e, []place{{"bad", 99, 0}, {"bad2", 0, 200}}, placeCoord, origin)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, e.LastError(), "no location found")
}

func TestFindNearest_EmptyInputCheckedBeforeOrigin(t *testing.T) {
	e := newTestEngine()
	_, err := FindNearest(e, []place{}, placeCoord, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.NotErrorIs(t, err, ErrNoOrigin)
}

func TestFindNearest_AccessorCanRejectRecord(t *testing.T) {
	e := newTestEngine()
	lat, lng := 37.51, 127.01
	bins := []models.Bin{
		{ID: "missing"},
		{ID: "ok", Latitude: &lat, Longitude: &lng},
	}

	got, err := FindNearest(e, bins, models.BinLocation, &models.Coordinate{Lat: 37.5, Lng: 127})
	require.NoError(t, err)
	assert.Equal(t, "ok", got.Item.ID)
}

func TestSortByDistance_Ascending(t *testing.T) {
	e := newTestEngine()
	places := []place{
		{"far", 38.0, 128.0},
		{"invalid", 200, 0},
		{"near", 37.51, 127.0},
		{"mid", 37.6, 127.1},
	}
	input := append([]place(nil), places...)

	got, err := SortByDistance(e, places, placeCoord, &models.Coordinate{Lat: 37.5, Lng: 127}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"near", "mid", "far", "invalid"}, names(got))
	assert.Equal(t, input, places, "input must not be reordered")

	last := got[len(got)-1]
	assert.True(t, math.IsInf(last.Distance, 1))
	assert.Equal(t, UncomputableLabel, last.FormattedDistance)
	assert.Equal(t, 1, last.Index)
}

func TestSortByDistance_Descending(t *testing.T) {
	e := newTestEngine()
	places := []place{{"near", 37.51, 127.0}, {"invalid", 0, 999}, {"far", 38.0, 128.0}}

	got, err := SortByDistance(e, places, placeCoord, &models.Coordinate{Lat: 37.5, Lng: 127}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"invalid", "far", "near"}, names(got))
}

func TestSortByDistance_StableAndIdempotent(t *testing.T) {
	e := newTestEngine()
	origin := &models.Coordinate{Lat: 37.5, Lng: 127}
	places := []place{
		{"b1", 37.6, 127}, {"a", 37.55, 127}, {"b2", 37.6, 127}, {"bad", 95, 0}, {"b3", 37.6, 127}, {"bad2", 96, 0},
	}

	first, err := SortByDistance(e, places, placeCoord, origin, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b1", "b2", "b3", "bad", "bad2"}, names(first))

	again, err := SortByDistance(e, Items(first), placeCoord, origin, true)
	require.NoError(t, err)
	assert.Equal(t, names(first), names(again))
}

func TestSortByDistance_ZeroDistanceStaysFirst(t *testing.T) {
	e := newTestEngine()
	places := []place{{"other", 37.6, 127}, {"here", 37.5, 127}}

	got, err := SortByDistance(e, places, placeCoord, &models.Coordinate{Lat: 37.5, Lng: 127}, true)
	require.NoError(t, err)
	assert.Equal(t, "here", got[0].Item.name)
	assert.Equal(t, 0.0, got[0].Distance)
}

func TestSortByDistance_NoOriginPassthrough(t *testing.T) {
	e := newTestEngine()
	places := []place{{"z", 38, 128}, {"a", 37.5, 127}}

	got, err := SortByDistance(e, places, placeCoord, nil, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "a"}, names(got))
	assert.True(t, e.HasError())
	assert.Equal(t, NoDistanceLabel, got[0].FormattedDistance)
}

func TestSortByDistance_NoOriginStrict(t *testing.T) {
	e := newTestEngine(WithSortPolicy(SortStrict))

	got, err := SortByDistance(e, []place{{"a", 1, 1}}, placeCoord, nil, true)
	assert.ErrorIs(t, err, ErrNoOrigin)
	assert.Nil(t, got)

	_, err = SortByDistance(e, []place{{"a", 1, 1}}, placeCoord, &models.Coordinate{Lat: 100}, true)
	assert.ErrorIs(t, err, ErrInvalidCoordinate)
}

func TestSortByDistance_Empty(t *testing.T) {
	e := newTestEngine()
	got, err := SortByDistance(e, nil, placeCoord, &models.Coordinate{Lat: 1, Lng: 1}, true)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLocated_MarshalJSON(t *testing.T) {
	inf := Located[string]{Item: "x", Distance: math.Inf(1), FormattedDistance: UncomputableLabel, Index: 3}
	b, err := json.Marshal(inf)
	require.NoError(t, err)
	assert.JSONEq(t, `{"item":"x","distance":null,"formattedDistance":"거리 계산 불가","index":3}`, string(b))

	ok := Located[string]{Item: "y", Distance: 12.5, FormattedDistance: "13M"}
	b, err = json.Marshal(ok)
	require.NoError(t, err)
	assert.JSONEq(t, `{"item":"y","distance":12.5,"formattedDistance":"13M","index":0}`, string(b))
}
