package spatial

import (
	"testing"

	"bin-finder/internal/calculator"
	"bin-finder/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bin(id string, lat, lng float64) models.Bin {
	return models.Bin{ID: id, RoadAddress: id + "로", Latitude: &lat, Longitude: &lng}
}

var cityHall = models.Coordinate{Lat: 37.5665, Lng: 126.9780}

func fixture() []models.Bin {
	return []models.Bin{
		bin("far", 35.1796, 129.0756),
		bin("near", 37.5670, 126.9785),
		{ID: "nocoord", RoadAddress: "없음"},
		bin("mid", 37.5700, 126.9820),
		bin("gangnam", 37.4979, 127.0276),
	}
}

func ids(bins []models.Bin) []string {
	out := make([]string, len(bins))
	for i, b := range bins {
		out[i] = b.ID
	}
	return out
}

func hitIDs(hits []Hit) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.Bin.ID
	}
	return out
}

func TestNewIndexSkipsMissingCoordinates(t *testing.T) {
	ix := NewIndex(fixture())
	assert.Equal(t, 4, ix.Len())

	empty := NewIndex(nil)
	assert.Zero(t, empty.Len())
	assert.Empty(t, empty.Nearest(cityHall, 3))
	assert.Empty(t, empty.WithinRadius(cityHall, 1000))
}

func TestInBounds(t *testing.T) {
	ix := NewIndex(fixture())

	got := ix.InBounds(models.Bounds{
		SW: models.Coordinate{Lat: 37.56, Lng: 126.97},
		NE: models.Coordinate{Lat: 37.58, Lng: 126.99},
	})
	assert.Equal(t, []string{"near", "mid"}, ids(got))

	inverted := ix.InBounds(models.Bounds{
		SW: models.Coordinate{Lat: 37.58, Lng: 126.99},
		NE: models.Coordinate{Lat: 37.56, Lng: 126.97},
	})
	assert.Empty(t, inverted)
}

func TestWithinRadius(t *testing.T) {
	ix := NewIndex(fixture())

	hits := ix.WithinRadius(cityHall, 1000)
	require.Equal(t, []string{"near", "mid"}, hitIDs(hits))
	for _, h := range hits {
		c, _ := h.Bin.Location()
		assert.InDelta(t, calculator.Haversine(cityHall.Lat, cityHall.Lng, c.Lat, c.Lng), h.Distance, 1e-6)
		assert.LessOrEqual(t, h.Distance, 1000.0)
	}

	assert.Equal(t, []string{"near", "mid", "gangnam"}, hitIDs(ix.WithinRadius(cityHall, 20000)))
	assert.Len(t, ix.WithinRadius(cityHall, 500000), 4)
	assert.Nil(t, ix.WithinRadius(cityHall, -1))
	assert.Nil(t, ix.WithinRadius(models.Coordinate{Lat: 91}, 100))
}

func TestNearest(t *testing.T) {
	ix := NewIndex(fixture())

	hits := ix.Nearest(cityHall, 2)
	assert.Equal(t, []string{"near", "mid"}, hitIDs(hits))
	assert.Less(t, hits[0].Distance, hits[1].Distance)

	all := ix.Nearest(cityHall, 10)
	assert.Equal(t, []string{"near", "mid", "gangnam", "far"}, hitIDs(all))

	fromBusan := ix.Nearest(models.Coordinate{Lat: 35.18, Lng: 129.07}, 1)
	require.Len(t, fromBusan, 1)
	assert.Equal(t, "far", fromBusan[0].Bin.ID)

	assert.Nil(t, ix.Nearest(cityHall, 0))
}

func TestNearbyApprox(t *testing.T) {
	ix := NewIndex(fixture())
	assert.Equal(t, []string{"near", "mid"}, ids(ix.NearbyApprox(cityHall, 1000)))
}

func TestRadiusBoundsContainsCircle(t *testing.T) {
	box := RadiusBounds(cityHall, 1000)
	assert.True(t, box.Contains(cityHall))
	assert.InDelta(t, 1000, calculator.Haversine(cityHall.Lat, cityHall.Lng, box.NE.Lat, cityHall.Lng), 1)
	assert.InDelta(t, 1000, calculator.Haversine(cityHall.Lat, cityHall.Lng, cityHall.Lat, box.NE.Lng), 1)

	polar := RadiusBounds(models.Coordinate{Lat: 89.999, Lng: 0}, 1000)
	assert.Equal(t, 90.0, polar.NE.Lat)
	assert.Equal(t, -180.0, polar.SW.Lng)
}
