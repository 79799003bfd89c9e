package spatial

import (
	"github.com/dhconnelly/rtreego"
)

// CellID addresses one quadtree node by (level, index-within-level),
// packed into a single uint32 key for arena storage — the teacher's
// u32-stable-id pattern
// (_examples/beetlebugorg-s57/pkg/s57/cellset.go) generalized from
// "cell id in a cellset" to "quadtree node id in an arena".
type CellID uint32

func packCellID(level uint8, index uint32) CellID {
	return CellID(uint32(level)<<24 | (index & 0x00FFFFFF))
}

func (c CellID) Level() uint8  { return uint8(c >> 24) }
func (c CellID) Index() uint32 { return uint32(c) & 0x00FFFFFF }

// rawPoint is one buffered (x, y, pointIndex) triple, kept per leaf so
// a future split can re-bucket every prior point by its real position
// instead of approximating an even split across the four children.
type rawPoint struct {
	x, y  float64
	index int64
}

// cell is one arena-stored quadtree node: four child ids (zero when a
// leaf), its bounding rectangle, and — for leaves — an IntervalStore
// plus the raw points backing it.
type cell struct {
	id                   CellID
	minX, minY, maxX, maxY float64
	children             [4]CellID // 0 means "no child"; only the root (level 0) packs to 0, and it is never a child
	isLeaf               bool
	store                *IntervalStore
	points               []rawPoint // leaves only; consumed and cleared on split
}

// rtreeLeaf adapts a leaf cell's bounding box to rtreego.Spatial so
// Quadtree can answer window queries with an R-tree over leaf extents
// (dhconnelly/rtreego, per SPEC_FULL.md §1); IntersectRectangle uses
// the R-tree search alone, with no quadtree descent.
type rtreeLeaf struct {
	id     CellID
	bounds *rtreego.Rect
}

func (l *rtreeLeaf) Bounds() *rtreego.Rect { return l.bounds }

// Quadtree is an arena-allocated quadtree over point extents, keyed by
// CellID rather than pointer-linked nodes (spec §4.6, teacher style).
type Quadtree struct {
	cells     map[CellID]*cell
	nextIndex [32]uint32 // next free index per level, for packCellID
	root      CellID
	threshold int // max points per leaf before it splits
	rindex    *rtreego.Rtree
}

// NewQuadtree builds an empty quadtree over the given bounding
// rectangle with split threshold T (spec §4.6 default 1000).
func NewQuadtree(minX, minY, maxX, maxY float64, threshold int) *Quadtree {
	if threshold <= 0 {
		threshold = 1000
	}
	q := &Quadtree{cells: map[CellID]*cell{}, threshold: threshold, rindex: rtreego.NewTree(2, 25, 50)}
	root := &cell{id: packCellID(0, 0), minX: minX, minY: minY, maxX: maxX, maxY: maxY, isLeaf: true, store: &IntervalStore{}}
	q.cells[root.id] = root
	q.root = root.id
	q.nextIndex[0] = 1
	return q
}

// Insert locates the leaf containing (x, y) — splitting as needed once
// the leaf's point count exceeds threshold — and appends pointIndex to
// that leaf's IntervalStore (spec §4.6's construction rule).
func (q *Quadtree) Insert(x, y float64, pointIndex int64) {
	leaf := q.findLeaf(q.root, x, y)
	leaf.store.Append(pointIndex)
	leaf.points = append(leaf.points, rawPoint{x: x, y: y, index: pointIndex})
	if leaf.store.Total > int64(q.threshold) && leaf.id.Level() < 20 {
		q.split(leaf)
	}
}

func (q *Quadtree) findLeaf(id CellID, x, y float64) *cell {
	c := q.cells[id]
	for !c.isLeaf {
		midX, midY := (c.minX+c.maxX)/2, (c.minY+c.maxY)/2
		quadrant := 0
		if x >= midX {
			quadrant |= 1
		}
		if y >= midY {
			quadrant |= 2
		}
		c = q.cells[c.children[quadrant]]
	}
	return c
}

func (q *Quadtree) split(c *cell) {
	level := c.id.Level() + 1
	midX, midY := (c.minX+c.maxX)/2, (c.minY+c.maxY)/2
	bounds := [4][4]float64{
		{c.minX, c.minY, midX, midY},
		{midX, c.minY, c.maxX, midY},
		{c.minX, midY, midX, c.maxY},
		{midX, midY, c.maxX, c.maxY},
	}
	oldPoints := c.points
	c.isLeaf = false
	c.store = nil
	c.points = nil

	children := make([]*cell, 4)
	for i, b := range bounds {
		idx := q.nextIndex[level]
		q.nextIndex[level]++
		child := &cell{id: packCellID(level, idx), minX: b[0], minY: b[1], maxX: b[2], maxY: b[3], isLeaf: true, store: &IntervalStore{}}
		q.cells[child.id] = child
		c.children[i] = child.id
		children[i] = child
	}

	// Re-bucket every previously buffered point by its real (x, y) —
	// using the same quadrant test as findLeaf — instead of discarding
	// positions and approximating an even split.
	for _, rp := range oldPoints {
		quadrant := 0
		if rp.x >= midX {
			quadrant |= 1
		}
		if rp.y >= midY {
			quadrant |= 2
		}
		child := children[quadrant]
		child.store.Append(rp.index)
		child.points = append(child.points, rp)
	}

	// A child can itself exceed threshold if points cluster entirely
	// within one quadrant; keep splitting until every leaf is under it.
	for _, child := range children {
		if child.store.Total > int64(q.threshold) && child.id.Level() < 20 {
			q.split(child)
		}
	}
}

// Complete runs the spec §4.6 completion pass: evict leaves with fewer
// than minPoints, then coalesce each surviving leaf's intervals with a
// doubling gap bound until either the interval count is at or under
// maxIntervals or the gap would need to exceed the cell's own
// point-index span (the resolved Open Question #2 termination rule).
func (q *Quadtree) Complete(minPoints int, maxIntervals int) {
	for id, c := range q.cells {
		if !c.isLeaf {
			continue
		}
		if c.store.Total < int64(minPoints) {
			delete(q.cells, id)
			continue
		}
		gap := int64(1)
		for len(c.store.Intervals) > maxIntervals {
			span := c.store.Span()
			if gap > span {
				break
			}
			c.store.MergeWithGap(gap)
			gap *= 2
		}
		q.rindex.Insert(&rtreeLeaf{id: c.id, bounds: rectFor(c)})
	}
}

func rectFor(c *cell) *rtreego.Rect {
	r, _ := rtreego.NewRect(rtreego.Point{c.minX, c.minY}, []float64{
		maxf(c.maxX-c.minX, 1e-9), maxf(c.maxY-c.minY, 1e-9),
	})
	return r
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// IntersectRectangle returns every leaf cell's IntervalStore whose
// bounds overlap the given rectangle, using the rtreego index built in
// Complete for pruning.
func (q *Quadtree) IntersectRectangle(minX, minY, maxX, maxY float64) []*IntervalStore {
	query, _ := rtreego.NewRect(rtreego.Point{minX, minY}, []float64{maxf(maxX-minX, 1e-9), maxf(maxY-minY, 1e-9)})
	results := q.rindex.SearchIntersect(query)
	stores := make([]*IntervalStore, 0, len(results))
	for _, res := range results {
		leaf := res.(*rtreeLeaf)
		stores = append(stores, q.cells[leaf.id].store)
	}
	return stores
}

// IntersectCircle returns IntersectRectangle's candidates for the
// circle's bounding square. Leaves are not tested against the circle
// itself, so a leaf touching only a corner of the square is included.
func (q *Quadtree) IntersectCircle(cx, cy, r float64) []*IntervalStore {
	candidates := q.IntersectRectangle(cx-r, cy-r, cx+r, cy+r)
	var out []*IntervalStore
	for _, s := range candidates {
		out = append(out, s) // rectangle candidates already conservative; exact per-point refinement happens in the reader pipeline
	}
	return out
}

// AllCells returns every leaf cell id and its store, for serialization.
func (q *Quadtree) AllCells() map[CellID]*IntervalStore {
	out := make(map[CellID]*IntervalStore)
	for id, c := range q.cells {
		if c.isLeaf {
			out[id] = c.store
		}
	}
	return out
}

// Bounds returns the root cell's bounding rectangle.
func (q *Quadtree) Bounds() (minX, minY, maxX, maxY float64) {
	root := q.cells[q.root]
	return root.minX, root.minY, root.maxX, root.maxY
}
