package layout

import (
	"gonum.org/v1/gonum/spatial/kdtree"
)

// ledPoint is one LED position with its slice index, stored in the k-d tree
// so Nearest can recover which LED matched.
type ledPoint struct {
	x, y float64
	idx  int
}

func (p ledPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(ledPoint)
	switch d {
	case 0:
		return p.x - q.x
	case 1:
		return p.y - q.y
	default:
		panic("layout: illegal dimension")
	}
}

func (p ledPoint) Dims() int { return 2 }

func (p ledPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(ledPoint)
	dx, dy := p.x-q.x, p.y-q.y
	return dx*dx + dy*dy
}

type ledPoints []ledPoint

func (p ledPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p ledPoints) Len() int                              { return len(p) }
func (p ledPoints) Pivot(d kdtree.Dim) int                { return plane{ledPoints: p, Dim: d}.Pivot() }
func (p ledPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// plane is a sorting helper for building the tree on one dimension.
type plane struct {
	kdtree.Dim
	ledPoints
}

func (p plane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.ledPoints[i].x < p.ledPoints[j].x
	case 1:
		return p.ledPoints[i].y < p.ledPoints[j].y
	default:
		panic("layout: illegal dimension")
	}
}

func (p plane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }

func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.ledPoints = p.ledPoints[start:end]
	return p
}

func (p plane) Swap(i, j int) {
	p.ledPoints[i], p.ledPoints[j] = p.ledPoints[j], p.ledPoints[i]
}

// Index answers nearest-LED queries over a fixed set of normalized
// positions. Build is O(N log N), queries are O(log N) on average — the
// mapper issues one query per source-image pixel, which for a modest photo
// is tens of thousands of lookups.
type Index struct {
	tree *kdtree.Tree
	n    int
}

// NewIndex builds an Index over positions. Fails with ErrInvalidInput if
// positions is empty or contains a non-finite coordinate.
func NewIndex(positions []Position) (*Index, error) {
	if err := validate(positions); err != nil {
		return nil, err
	}
	pts := make(ledPoints, len(positions))
	for i, p := range positions {
		pts[i] = ledPoint{x: p.X, y: p.Y, idx: i}
	}
	return &Index{
		tree: kdtree.New(pts, true),
		n:    len(positions),
	}, nil
}

// Len reports the number of indexed LEDs.
func (ix *Index) Len() int { return ix.n }

// Nearest returns the index of the LED closest to (x, y) under Euclidean
// distance. Results are deterministic for a fixed position set; ties resolve
// to whichever point the tree visits first.
func (ix *Index) Nearest(x, y float64) int {
	got, _ := ix.tree.Nearest(ledPoint{x: x, y: y, idx: -1})
	return got.(ledPoint).idx
}
