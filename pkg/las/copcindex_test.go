package las

import "testing"

func TestCOPCIndexQueryFiltersByDepthAndBounds(t *testing.T) {
	idx := NewCOPCIndex(0, 0, 0, 100, 100, 100, 100)
	idx.AddNode(COPCNode{Depth: 0, X: 0, Y: 0, Z: 0, Offset: 0, ByteSize: 10, PointCount: 5})
	idx.AddNode(COPCNode{Depth: 1, X: 0, Y: 0, Z: 0, Offset: 10, ByteSize: 20, PointCount: 3})
	idx.AddNode(COPCNode{Depth: 1, X: 1, Y: 1, Z: 1, Offset: 30, ByteSize: 20, PointCount: 3})

	// maxDepth 0 should only return the root node.
	rootOnly := idx.Query(0, 0, 0, 0, 100, 100, 100, StreamByDepth)
	if len(rootOnly) != 1 || rootOnly[0].Depth != 0 {
		t.Fatalf("maxDepth=0 query = %+v, want just the root node", rootOnly)
	}

	// A box inside the lower-left octant at depth 1 should miss the
	// (1,1,1) child. Bounds are inclusive, so the box stops short of 50,
	// where that child's voxel begins.
	lowerOctant := idx.Query(1, 0, 0, 0, 40, 40, 40, StreamByDepth)
	for _, n := range lowerOctant {
		if n.Depth == 1 && (n.X != 0 || n.Y != 0 || n.Z != 0) {
			t.Errorf("lower-octant query unexpectedly matched node %+v", n)
		}
	}

	all := idx.Query(1, 0, 0, 0, 100, 100, 100, StreamByDepth)
	if len(all) != 3 {
		t.Errorf("full-bounds depth<=1 query returned %d nodes, want 3", len(all))
	}
	// Depth ordering: root must stream before its children.
	if all[0].Depth != 0 {
		t.Errorf("first streamed node depth = %d, want 0 (root streams first)", all[0].Depth)
	}
}

func TestCOPCIndexMaxDepthForResolution(t *testing.T) {
	idx := NewCOPCIndex(0, 0, 0, 100, 100, 100, 100)
	// root spacing 100; halving 4 times gives 6.25 <= 10.
	if d := idx.MaxDepthForResolution(10); d != 4 {
		t.Errorf("MaxDepthForResolution(10) = %d, want 4", d)
	}
	if d := idx.MaxDepthForResolution(200); d != 0 {
		t.Errorf("MaxDepthForResolution(200) = %d, want 0 (root already coarser)", d)
	}
}
