package calculator

import (
	"context"
	"testing"

	"bin-finder/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bin(id string, lat, lng float64) models.Bin {
	return models.Bin{ID: id, RoadAddress: "road " + id, Latitude: &lat, Longitude: &lng}
}

func origin(id string, lat, lng float64) models.Origin {
	return models.Origin{ID: id, Name: "origin " + id, Loc: models.Coordinate{Lat: lat, Lng: lng}}
}

func TestComputeNearest(t *testing.T) {
	bins := []models.Bin{
		bin("seoul", 37.5665, 126.9780),
		bin("busan", 35.1796, 129.0756),
		{ID: "nowhere"},
	}
	origins := []models.Origin{
		origin("1", 37.56, 126.97),
		origin("2", 35.10, 129.00),
		origin("3", 37.57, 126.98),
	}

	var logs []string
	var lastProgress int
	rows, err := ComputeNearest(context.Background(), origins, bins, 2,
		func(current, total int, _ string) { lastProgress = current },
		func(msg string) { logs = append(logs, msg) })
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "seoul", rows[0].BinID)
	assert.Equal(t, "busan", rows[1].BinID)
	assert.Equal(t, "seoul", rows[2].BinID)
	assert.Equal(t, "1", rows[0].OriginID)
	assert.Equal(t, "road busan", rows[1].BinAddress)
	assert.Equal(t, 3, lastProgress)
	assert.NotEmpty(t, logs)
}

func TestComputeNearest_EmptyInput(t *testing.T) {
	_, err := ComputeNearest(context.Background(), nil, []models.Bin{bin("a", 1, 1)}, 1, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ComputeNearest(context.Background(), []models.Origin{origin("1", 1, 1)}, []models.Bin{{ID: "x"}}, 1, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestComputeNearest_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ComputeNearest(ctx, []models.Origin{origin("1", 1, 1)}, []models.Bin{bin("a", 1, 1)}, 1, nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestComputeRadius(t *testing.T) {
	bins := []models.Bin{
		bin("a", 37.5000, 127.0000),
		bin("b", 37.5050, 127.0000),
		bin("far", 38.0, 128.0),
	}
	origins := []models.Origin{origin("1", 37.5, 127.0), origin("2", 33.0, 126.0)}

	rows, err := ComputeRadius(context.Background(), origins, bins, 1000, 4, nil, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0].BinID)
	assert.Equal(t, 0, rows[0].Distance)
	assert.Equal(t, "b", rows[1].BinID)
	assert.InDelta(t, 556, rows[1].Distance, 2)

	_, err = ComputeRadius(context.Background(), origins, bins, 0, 1, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
