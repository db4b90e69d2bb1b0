package excel

import (
	"path/filepath"
	"testing"

	"bin-finder/internal/models"
	"bin-finder/internal/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func ptr(v float64) *float64 { return &v }

func TestParseCoord(t *testing.T) {
	v, err := parseCoord(" 37,5665 ")
	require.NoError(t, err)
	assert.Equal(t, 37.5665, v)

	_, err = parseCoord("")
	assert.Error(t, err)
	_, err = parseCoord("abc")
	assert.Error(t, err)
}

func TestBinsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bins.xlsx")
	bins := []models.Bin{
		{ID: "1", Name: "시청앞", RoadAddress: "서울특별시 중구 세종대로 110", Latitude: ptr(37.5665), Longitude: ptr(126.978)},
		{ID: "2", LandLotAddress: "서울특별시 강남구 역삼동 1"},
	}
	require.NoError(t, WriteBins(path, bins, "bins"))

	f, err := OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	got, err := ReadBins(f, "")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, bins[0].RoadAddress, got[0].RoadAddress)
	require.NotNil(t, got[0].Latitude)
	assert.Equal(t, 37.5665, *got[0].Latitude)
	assert.Nil(t, got[1].Latitude)
	assert.Equal(t, "서울특별시 강남구 역삼동 1", got[1].LandLotAddress)
}

func TestReadOriginsSkipsInvalidRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "origins.xlsx")
	f := excelize.NewFile()
	rows := [][]interface{}{
		{"ID", "Name", "Lat", "Lng"},
		{"o1", "first", "37.5665", "126.9780"},
		{"o2", "no coords", "", ""},
		{"o3", "out of range", "123", "126"},
		{"o4", "comma", "35,1796", "129,0756"},
	}
	for i, r := range rows {
		c, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, f.SetSheetRow("Sheet1", c, &r))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	in, err := OpenFile(path)
	require.NoError(t, err)
	defer in.Close()

	origins, err := ReadOrigins(in, "Sheet1")
	require.NoError(t, err)
	require.Len(t, origins, 2)
	assert.Equal(t, "o1", origins[0].ID)
	assert.Equal(t, 2, origins[0].RowIndex)
	assert.Equal(t, "o4", origins[1].ID)
	assert.Equal(t, 129.0756, origins[1].Loc.Lng)
}

func TestWriteResultAndSearchResults(t *testing.T) {
	dir := t.TempDir()

	resPath := filepath.Join(dir, "result.xlsx")
	require.NoError(t, WriteResult(resPath, []models.ResultRow{
		{OriginID: "o1", BinID: "b1", BinAddress: "세종대로", Distance: 120},
	}, "Result"))

	f, err := OpenFile(resPath)
	require.NoError(t, err)
	rows, err := f.GetRows("Result")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "거리 (m)", rows[0][8])
	assert.Equal(t, "120", rows[1][8])
	require.NoError(t, f.Close())

	searchPath := filepath.Join(dir, "search.xlsx")
	results := []search.Result[models.Bin]{
		{Item: models.Bin{ID: "b1", RoadAddress: "강남대로"}, SearchScore: 100, MatchedBy: search.MatchRoad},
	}
	require.NoError(t, WriteSearchResults(searchPath, results, ""))

	f, err = OpenFile(searchPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err = f.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "100", rows[1][6])
	assert.Equal(t, string(search.MatchRoad), rows[1][7])
}
