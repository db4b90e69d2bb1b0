package excel

import (
	"fmt"
	"strconv"
	"strings"

	"bin-finder/internal/models"
	"bin-finder/internal/search"

	"github.com/xuri/excelize/v2"
)

// Column layouts, zero based. Row 1 is always a header.
const (
	binColID = iota
	binColName
	binColRoad
	binColLandLot
	binColLat
	binColLng
)

const (
	originColID = iota
	originColName
	originColLat
	originColLng
)

func parseCoord(val string) (float64, error) {
	// some exports use a decimal comma
	val = strings.TrimSpace(strings.ReplaceAll(val, ",", "."))
	if val == "" {
		return 0, fmt.Errorf("empty")
	}
	return strconv.ParseFloat(val, 64)
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func OpenFile(filename string) (*excelize.File, error) {
	return excelize.OpenFile(filename)
}

// SheetName resolves an empty name to the workbook's first sheet.
func SheetName(f *excelize.File, name string) string {
	if name != "" {
		return name
	}
	return f.GetSheetName(0)
}

// ReadBins reads bins from columns ID, name, road address, land-lot address,
// latitude and longitude. Coordinates that do not parse are left nil so the
// bin stays searchable by address.
func ReadBins(f *excelize.File, sheetName string) ([]models.Bin, error) {
	rows, err := f.GetRows(SheetName(f, sheetName))
	if err != nil {
		return nil, err
	}

	var bins []models.Bin
	for i, row := range rows {
		if i == 0 {
			continue
		}
		b := models.Bin{
			ID:             cell(row, binColID),
			Name:           cell(row, binColName),
			RoadAddress:    cell(row, binColRoad),
			LandLotAddress: cell(row, binColLandLot),
		}
		if b.ID == "" && b.RoadAddress == "" && b.LandLotAddress == "" {
			continue
		}
		if b.ID == "" {
			b.ID = fmt.Sprintf("row-%d", i+1)
		}

		lat, err1 := parseCoord(cell(row, binColLat))
		lng, err2 := parseCoord(cell(row, binColLng))
		if err1 == nil && err2 == nil {
			b.Latitude, b.Longitude = &lat, &lng
		}
		bins = append(bins, b)
	}
	return bins, nil
}

// ReadOrigins reads batch origins. Rows without a valid coordinate are
// skipped.
func ReadOrigins(f *excelize.File, sheetName string) ([]models.Origin, error) {
	rows, err := f.GetRows(SheetName(f, sheetName))
	if err != nil {
		return nil, err
	}

	var origins []models.Origin
	for i, row := range rows {
		if i == 0 {
			continue
		}

		lat, err1 := parseCoord(cell(row, originColLat))
		lng, err2 := parseCoord(cell(row, originColLng))
		if err1 != nil || err2 != nil {
			continue
		}
		loc := models.Coordinate{Lat: lat, Lng: lng}
		if !loc.Valid() {
			continue
		}

		origins = append(origins, models.Origin{
			ID:       cell(row, originColID),
			Name:     cell(row, originColName),
			Loc:      loc,
			RowIndex: i + 1,
		})
	}
	return origins, nil
}

var resultHeaders = []interface{}{
	"출발지 ID", "출발지 이름", "출발지 위도", "출발지 경도",
	"수거함 ID", "수거함 주소", "수거함 위도", "수거함 경도",
	"거리 (m)",
}

// WriteResult writes batch rows with a stream writer.
func WriteResult(path string, data []models.ResultRow, sheetName string) error {
	return writeSheet(path, sheetName, resultHeaders, len(data), func(i int) []interface{} {
		r := data[i]
		return []interface{}{
			r.OriginID, r.OriginName, r.OriginLat, r.OriginLng,
			r.BinID, r.BinAddress, r.BinLat, r.BinLng,
			r.Distance,
		}
	})
}

var searchHeaders = []interface{}{
	"ID", "이름", "도로명 주소", "지번 주소", "위도", "경도", "점수", "일치",
}

// WriteSearchResults exports ranked search results.
func WriteSearchResults(path string, results []search.Result[models.Bin], sheetName string) error {
	return writeSheet(path, sheetName, searchHeaders, len(results), func(i int) []interface{} {
		r := results[i]
		return []interface{}{
			r.Item.ID, r.Item.Name, r.Item.RoadAddress, r.Item.LandLotAddress,
			optional(r.Item.Latitude), optional(r.Item.Longitude),
			r.SearchScore, string(r.MatchedBy),
		}
	})
}

var binHeaders = []interface{}{"ID", "이름", "도로명 주소", "지번 주소", "위도", "경도"}

// WriteBins writes bins in the layout ReadBins expects.
func WriteBins(path string, bins []models.Bin, sheetName string) error {
	return writeSheet(path, sheetName, binHeaders, len(bins), func(i int) []interface{} {
		b := bins[i]
		return []interface{}{
			b.ID, b.Name, b.RoadAddress, b.LandLotAddress,
			optional(b.Latitude), optional(b.Longitude),
		}
	})
}

func optional(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func writeSheet(path, sheetName string, headers []interface{}, n int, row func(int) []interface{}) error {
	if sheetName == "" {
		sheetName = "Sheet1"
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return err
	}
	if err := sw.SetRow("A1", headers); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, row(i)); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}

	f.SetActiveSheet(index)
	if sheetName != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}
