package calculator

import (
	"math"

	"bin-finder/internal/models"
)

const earthRadius = 6371000.0 // meters

// metersPerDegree is the flat-earth length of one degree used by the
// approximate distance.
const metersPerDegree = 111000.0

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// ValidCoordinate reports whether lat/lng are finite and within range.
func ValidCoordinate(lat, lng float64) bool {
	return models.Coordinate{Lat: lat, Lng: lng}.Valid()
}

// Haversine computes the distance between two points in meters
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := toRadians(lat1)
	lat2Rad := toRadians(lat2)

	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	// Rounding can push a just past 1 for antipodal points.
	a = math.Min(1, math.Max(0, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

// ApproximateDistance is a planar equirectangular estimate in meters. It is
// meant for filtering and coarse ordering, not for display. ok is false when
// either coordinate is invalid.
func ApproximateDistance(lat1, lng1, lat2, lng2 float64) (float64, bool) {
	if !ValidCoordinate(lat1, lng1) || !ValidCoordinate(lat2, lng2) {
		return 0, false
	}

	avgLat := toRadians((lat1 + lat2) / 2)
	dy := math.Abs(lat2-lat1) * metersPerDegree
	dx := math.Abs(lng2-lng1) * metersPerDegree * math.Cos(avgLat)

	return math.Hypot(dx, dy), true
}
