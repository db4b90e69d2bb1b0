package spatial

import (
	"math"

	"bin-finder/internal/models"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// unitPoint is a location on the unit sphere. Squared chord length orders
// points the same way as great-circle distance.
type unitPoint struct {
	xyz   [3]float64
	index int
}

func toUnit(c models.Coordinate, index int) unitPoint {
	lat := c.Lat * math.Pi / 180
	lng := c.Lng * math.Pi / 180
	return unitPoint{
		xyz: [3]float64{
			math.Cos(lat) * math.Cos(lng),
			math.Cos(lat) * math.Sin(lng),
			math.Sin(lat),
		},
		index: index,
	}
}

func (p unitPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(unitPoint)
	return p.xyz[d] - q.xyz[d]
}

func (p unitPoint) Dims() int { return 3 }

func (p unitPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(unitPoint)
	var sum float64
	for i := range p.xyz {
		d := p.xyz[i] - q.xyz[i]
		sum += d * d
	}
	return sum
}

type unitPoints []unitPoint

func (p unitPoints) Index(i int) kdtree.Comparable { return p[i] }
func (p unitPoints) Len() int                      { return len(p) }
func (p unitPoints) Slice(start, end int) kdtree.Interface {
	return p[start:end]
}

func (p unitPoints) Pivot(d kdtree.Dim) int {
	pl := plane{points: p, dim: d}
	return kdtree.Partition(pl, kdtree.MedianOfMedians(pl))
}

// plane sorts points along one dimension for partitioning.
type plane struct {
	points unitPoints
	dim    kdtree.Dim
}

func (p plane) Len() int { return len(p.points) }
func (p plane) Less(i, j int) bool {
	return p.points[i].xyz[p.dim] < p.points[j].xyz[p.dim]
}
func (p plane) Swap(i, j int) { p.points[i], p.points[j] = p.points[j], p.points[i] }
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	return plane{points: p.points[start:end], dim: p.dim}
}
