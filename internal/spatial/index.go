// Package spatial indexes bins by location for bounding-box, radius and
// k-nearest queries.
package spatial

import (
	"cmp"
	"math"
	"slices"

	"bin-finder/internal/calculator"
	"bin-finder/internal/models"

	"github.com/dhconnelly/rtreego"
	"gonum.org/v1/gonum/spatial/kdtree"
)

const (
	earthRadius = 6371000.0
	pointTol    = 1e-9
)

// Hit is a bin with its distance in meters from a query point.
type Hit struct {
	Bin               models.Bin `json:"bin"`
	Distance          float64    `json:"distance"`
	FormattedDistance string     `json:"formattedDistance"`
}

type binItem struct {
	index int
	rect  rtreego.Rect
}

func (b *binItem) Bounds() rtreego.Rect { return b.rect }

// Index is an immutable spatial index over the bins that have usable
// coordinates. Bins without coordinates are kept out of every query.
type Index struct {
	bins  []models.Bin
	locs  []models.Coordinate
	rtree *rtreego.Rtree
	kd    *kdtree.Tree
}

func NewIndex(bins []models.Bin) *Index {
	ix := &Index{rtree: rtreego.NewTree(2, 25, 50)}

	var pts unitPoints
	for _, b := range bins {
		c, ok := b.Location()
		if !ok {
			continue
		}
		i := len(ix.bins)
		ix.bins = append(ix.bins, b)
		ix.locs = append(ix.locs, c)
		ix.rtree.Insert(&binItem{index: i, rect: rtreego.Point{c.Lng, c.Lat}.ToRect(pointTol)})
		pts = append(pts, toUnit(c, i))
	}

	if len(pts) > 0 {
		ix.kd = kdtree.New(pts, false)
	}
	return ix
}

// Len is the number of indexed bins.
func (ix *Index) Len() int { return len(ix.bins) }

// InBounds returns the bins inside b, in load order.
func (ix *Index) InBounds(b models.Bounds) []models.Bin {
	idx := ix.searchRect(b.SW.Lat, b.SW.Lng, b.NE.Lat, b.NE.Lng)
	out := make([]models.Bin, 0, len(idx))
	for _, i := range idx {
		if b.Contains(ix.locs[i]) {
			out = append(out, ix.bins[i])
		}
	}
	return out
}

// WithinRadius returns the bins no further than meters from center, nearest
// first. The R-tree narrows candidates to the bounding box of the circle and
// the haversine distance decides.
func (ix *Index) WithinRadius(center models.Coordinate, meters float64) []Hit {
	if !center.Valid() || meters < 0 || math.IsNaN(meters) {
		return nil
	}

	box := RadiusBounds(center, meters)
	var hits []Hit
	for _, i := range ix.searchRect(box.SW.Lat, box.SW.Lng, box.NE.Lat, box.NE.Lng) {
		c := ix.locs[i]
		d := calculator.Haversine(center.Lat, center.Lng, c.Lat, c.Lng)
		if d <= meters {
			hits = append(hits, hit(ix.bins[i], d))
		}
	}
	sortHits(hits)
	return hits
}

// NearbyApprox filters with the planar approximation instead of haversine.
// It keeps load order.
func (ix *Index) NearbyApprox(center models.Coordinate, meters float64) []models.Bin {
	var out []models.Bin
	for i, c := range ix.locs {
		if d, ok := calculator.ApproximateDistance(center.Lat, center.Lng, c.Lat, c.Lng); ok && d <= meters {
			out = append(out, ix.bins[i])
		}
	}
	return out
}

// Nearest returns up to k bins closest to center, nearest first.
func (ix *Index) Nearest(center models.Coordinate, k int) []Hit {
	if ix.kd == nil || k <= 0 || !center.Valid() {
		return nil
	}

	keep := kdtree.NewNKeeper(k)
	ix.kd.NearestSet(keep, toUnit(center, -1))

	hits := make([]Hit, 0, k)
	for _, cd := range keep.Heap {
		if cd.Comparable == nil {
			continue
		}
		p := cd.Comparable.(unitPoint)
		c := ix.locs[p.index]
		hits = append(hits, hit(ix.bins[p.index], calculator.Haversine(center.Lat, center.Lng, c.Lat, c.Lng)))
	}
	sortHits(hits)
	return hits
}

func (ix *Index) searchRect(minLat, minLng, maxLat, maxLng float64) []int {
	if ix.Len() == 0 || minLat > maxLat || minLng > maxLng {
		return nil
	}
	rect, err := rtreego.NewRect(
		rtreego.Point{minLng - pointTol, minLat - pointTol},
		[]float64{maxLng - minLng + 2*pointTol, maxLat - minLat + 2*pointTol},
	)
	if err != nil {
		return nil
	}

	found := ix.rtree.SearchIntersect(rect)
	idx := make([]int, len(found))
	for i, s := range found {
		idx[i] = s.(*binItem).index
	}
	slices.Sort(idx)
	return idx
}

// RadiusBounds is the smallest latitude/longitude box containing the circle
// of the given radius around center.
func RadiusBounds(center models.Coordinate, meters float64) models.Bounds {
	angular := meters / earthRadius
	dLat := angular * 180 / math.Pi

	minLat := math.Max(center.Lat-dLat, -90)
	maxLat := math.Min(center.Lat+dLat, 90)

	minLng, maxLng := -180.0, 180.0
	if minLat > -90 && maxLat < 90 {
		ratio := math.Sin(angular) / math.Cos(center.Lat*math.Pi/180)
		if ratio < 1 {
			dLng := math.Asin(ratio) * 180 / math.Pi
			// a box crossing the antimeridian falls back to every longitude
			if center.Lng-dLng >= -180 && center.Lng+dLng <= 180 {
				minLng, maxLng = center.Lng-dLng, center.Lng+dLng
			}
		}
	}

	return models.Bounds{
		SW: models.Coordinate{Lat: minLat, Lng: minLng},
		NE: models.Coordinate{Lat: maxLat, Lng: maxLng},
	}
}

func hit(b models.Bin, d float64) Hit {
	return Hit{Bin: b, Distance: d, FormattedDistance: calculator.FormatDistance(d)}
}

func sortHits(hits []Hit) {
	slices.SortStableFunc(hits, func(a, b Hit) int { return cmp.Compare(a.Distance, b.Distance) })
}
