package spatial

import "testing"

func TestQuadtreeInsertSplitsAtThreshold(t *testing.T) {
	q := NewQuadtree(0, 0, 100, 100, 2)
	// Three points in the same quadrant exceed threshold 2, forcing a split.
	// They stay together through six nested splits (0-100, 0-50, 0-25,
	// 0-12.5, 6.25-12.5, 9.375-12.5) until (10,10) parts from the other
	// two, so the tree ends with 1 + 6*3 = 19 leaves.
	q.Insert(10, 10, 0)
	q.Insert(11, 11, 1)
	q.Insert(12, 12, 2)

	if q.cells[q.root].isLeaf {
		t.Fatal("root should no longer be a leaf after exceeding the split threshold")
	}
	var leaves int
	for _, c := range q.cells {
		if c.isLeaf {
			leaves++
		}
	}
	if leaves != 19 {
		t.Errorf("leaf count = %d, want 19 (six nested quadtree splits)", leaves)
	}
}

func TestQuadtreeCompleteEvictsSparseLeaf(t *testing.T) {
	q := NewQuadtree(0, 0, 100, 100, 1000)
	q.Insert(10, 10, 0)

	// The single leaf's Total (1) is below minPoints (2), so it must be
	// evicted entirely and no longer answer window queries.
	q.Complete(2, 100)

	stores := q.IntersectRectangle(0, 0, 100, 100)
	if len(stores) != 0 {
		t.Errorf("IntersectRectangle found %d leaves, want 0 (sole leaf evicted below minPoints)", len(stores))
	}
}

func TestQuadtreeCompleteKeepsLeafAtMinPoints(t *testing.T) {
	q := NewQuadtree(0, 0, 100, 100, 1000)
	q.Insert(10, 10, 0)
	q.Insert(11, 11, 1)

	q.Complete(2, 100)

	stores := q.IntersectRectangle(0, 0, 100, 100)
	if len(stores) != 1 || stores[0].Total != 2 {
		t.Errorf("expected one surviving leaf with Total=2, got %+v", stores)
	}
}

func TestQuadtreeSplitRebucketsPointsByRealPosition(t *testing.T) {
	q := NewQuadtree(0, 0, 100, 100, 2)
	// One point per quadrant; the third insert pushes Total to 3 > 2 and
	// forces an immediate split, the fourth lands directly in its leaf.
	q.Insert(10, 10, 100) // lower-left
	q.Insert(90, 10, 200) // lower-right
	q.Insert(10, 90, 300) // upper-left
	q.Insert(90, 90, 400) // upper-right

	q.Complete(1, 100)

	for _, tc := range []struct {
		name                   string
		minX, minY, maxX, maxY float64
		wantIndex              int64
	}{
		{"lower-left", 0, 0, 50, 50, 100},
		{"lower-right", 50, 0, 100, 50, 200},
		{"upper-left", 0, 50, 50, 100, 300},
		{"upper-right", 50, 50, 100, 100, 400},
	} {
		stores := q.IntersectRectangle(tc.minX, tc.minY, tc.maxX, tc.maxY)
		if len(stores) != 1 {
			t.Fatalf("%s: IntersectRectangle found %d leaves, want 1", tc.name, len(stores))
		}
		if stores[0].Total != 1 || len(stores[0].Intervals) != 1 || stores[0].Intervals[0].Start != tc.wantIndex {
			t.Errorf("%s: leaf contents = %+v, want exactly point index %d (not an averaged count)", tc.name, stores[0], tc.wantIndex)
		}
	}
}

func TestQuadtreeIntersectRectangleFindsInsertedPoint(t *testing.T) {
	q := NewQuadtree(0, 0, 100, 100, 1000)
	q.Insert(25, 25, 42)
	q.Complete(1, 100)

	stores := q.IntersectRectangle(0, 0, 50, 50)
	if len(stores) != 1 {
		t.Fatalf("IntersectRectangle found %d leaves, want 1", len(stores))
	}
	if stores[0].Total != 1 || stores[0].Intervals[0].Start != 42 {
		t.Errorf("unexpected interval store contents: %+v", stores[0])
	}

	// A query rectangle fully outside the tree's own bounds must miss,
	// regardless of where points landed inside it.
	empty := q.IntersectRectangle(200, 200, 300, 300)
	if len(empty) != 0 {
		t.Errorf("IntersectRectangle outside the tree bounds found %d leaves, want 0", len(empty))
	}
}
