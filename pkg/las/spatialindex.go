package las

import (
	"context"

	"github.com/go-laslib/laslib/internal/spatial"
)

// SpatialIndex is the public facade over internal/spatial.Quadtree: a
// quadtree over point extents paired with per-leaf IntervalStores,
// supporting rectangle/circle/tile window queries (spec §4.6).
type SpatialIndex struct {
	tree *spatial.Quadtree
}

// NewSpatialIndex builds an empty index over the given bounding
// rectangle with split threshold T (0 selects the spec default 1000).
func NewSpatialIndex(minX, minY, maxX, maxY float64, threshold int) *SpatialIndex {
	return &SpatialIndex{tree: spatial.NewQuadtree(minX, minY, maxX, maxY, threshold)}
}

// Insert records one point's (x, y, pointIndex) triple.
func (s *SpatialIndex) Insert(x, y float64, pointIndex int64) {
	s.tree.Insert(x, y, pointIndex)
}

// Complete runs the eviction + interval-merge completion pass.
func (s *SpatialIndex) Complete(minPoints, maxIntervals int) {
	s.tree.Complete(minPoints, maxIntervals)
}

// Window is a query shape: exactly one of the rectangle/circle/tile
// field groups should be populated.
type Window struct {
	Kind string // "rectangle", "circle", "tile"
	MinX, MinY, MaxX, MaxY float64
	CX, CY, R              float64
}

// NewRectangleWindow, NewCircleWindow, NewTileWindow build the three
// window shapes spec §4.6 names.
func NewRectangleWindow(minX, minY, maxX, maxY float64) Window {
	return Window{Kind: "rectangle", MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
}
func NewCircleWindow(cx, cy, r float64) Window {
	return Window{Kind: "circle", CX: cx, CY: cy, R: r}
}
func NewTileWindow(llx, lly, size float64) Window {
	return Window{Kind: "tile", MinX: llx, MinY: lly, MaxX: llx + size, MaxY: lly + size}
}

// Contains reports whether (x, y) falls inside w, for the pipeline's
// per-point refinement pass after seeking to a candidate interval.
func (w Window) Contains(x, y float64) bool {
	switch w.Kind {
	case "circle":
		dx, dy := x-w.CX, y-w.CY
		return dx*dx+dy*dy <= w.R*w.R
	default:
		return x >= w.MinX && x <= w.MaxX && y >= w.MinY && y <= w.MaxY
	}
}

// GetIntervals returns the ascending, merged union of point-index
// intervals for every leaf cell the window could intersect (spec
// §4.6's query contract).
func (s *SpatialIndex) GetIntervals(w Window) []spatial.Interval {
	var stores []*spatial.IntervalStore
	switch w.Kind {
	case "circle":
		stores = s.tree.IntersectCircle(w.CX, w.CY, w.R)
	default:
		stores = s.tree.IntersectRectangle(w.MinX, w.MinY, w.MaxX, w.MaxY)
	}
	return spatial.MergeUnion(stores)
}

// QueryWindow executes w against an already-open PointReader: it
// computes the candidate intervals, seeks/reads each one, and yields
// only the points that refine inside w exactly. When the reader has no
// Seek support the caller should fall back to a full linear scan with
// w.Contains itself.
func (s *SpatialIndex) QueryWindow(r PointReader, w Window, emit func(p *Point) error) error {
	intervals := s.GetIntervals(w)
	q := r.Header().Quantizer
	var p Point
	for _, iv := range intervals {
		if err := r.Seek(iv.Start); err != nil {
			return err
		}
		for idx := iv.Start; idx <= iv.End; idx++ {
			ok, err := r.ReadPoint(context.Background(), &p)
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			if w.Contains(p.GetX(q), p.GetY(q)) {
				if err := emit(&p); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
