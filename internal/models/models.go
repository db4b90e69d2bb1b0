package models

import (
	"math"
	"time"
)

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether both components are finite and inside the
// latitude/longitude ranges.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lng, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// Bounds is a south-west / north-east rectangle.
type Bounds struct {
	SW Coordinate `json:"sw"`
	NE Coordinate `json:"ne"`
}

func (b Bounds) Contains(c Coordinate) bool {
	return c.Lat >= b.SW.Lat && c.Lat <= b.NE.Lat && c.Lng >= b.SW.Lng && c.Lng <= b.NE.Lng
}

// Bin is a single clothing collection point.
type Bin struct {
	ID             string   `json:"id"`
	Name           string   `json:"name,omitempty"`
	RoadAddress    string   `json:"roadAddress,omitempty"`
	LandLotAddress string   `json:"landLotAddress,omitempty"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
}

func (b Bin) Road() string    { return b.RoadAddress }
func (b Bin) LandLot() string { return b.LandLotAddress }

// Location returns the bin's coordinate; ok is false when either field is
// missing or out of range.
func (b Bin) Location() (Coordinate, bool) {
	if b.Latitude == nil || b.Longitude == nil {
		return Coordinate{}, false
	}
	c := Coordinate{Lat: *b.Latitude, Lng: *b.Longitude}
	return c, c.Valid()
}

// BinLocation adapts Bin.Location to the accessor shape used by the
// distance engine.
func BinLocation(b Bin) (Coordinate, bool) { return b.Location() }

// DistanceResult is the record kept for the most recent distance calculation.
type DistanceResult struct {
	From           Coordinate `json:"from"`
	To             Coordinate `json:"to"`
	DistanceMeters float64    `json:"distanceMeters"`
	ComputedAt     time.Time  `json:"computedAt"`
}

// Origin is a named point read from a batch input sheet.
type Origin struct {
	ID       string
	Name     string
	Loc      Coordinate
	RowIndex int
}

type ResultRow struct {
	OriginID   string
	OriginName string
	OriginLat  float64
	OriginLng  float64
	BinID      string
	BinAddress string
	BinLat     float64
	BinLng     float64
	Distance   int
}
