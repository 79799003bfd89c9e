package las

import "github.com/go-laslib/laslib/internal/spatial"

// COPCIndex is the public facade over internal/spatial.Octree: the
// VLR-resident octree hierarchy a Cloud-Optimized Point Cloud carries,
// supporting depth- and resolution-clipped window queries (spec
// §4.6's "COPC-style depth/resolution queries").
type COPCIndex struct {
	octree *spatial.Octree
}

// NewCOPCIndex builds an empty COPCIndex over the given cube bounds
// and root voxel spacing.
func NewCOPCIndex(minX, minY, minZ, maxX, maxY, maxZ, rootSpacing float64) *COPCIndex {
	return &COPCIndex{octree: spatial.NewOctree(minX, minY, minZ, maxX, maxY, maxZ, rootSpacing)}
}

// COPCNode mirrors internal/spatial.OctreeNode for the public API.
type COPCNode struct {
	Depth, X, Y, Z int32
	Offset         uint64
	ByteSize       int32
	PointCount     int32
}

// AddNode inserts one hierarchy entry, as parsed from the COPC
// "entry" VLR.
func (c *COPCIndex) AddNode(n COPCNode) {
	c.octree.AddNode(&spatial.OctreeNode{
		Key:        spatial.OctreeKey{Depth: n.Depth, X: n.X, Y: n.Y, Z: n.Z},
		Offset:     n.Offset,
		ByteSize:   n.ByteSize,
		PointCount: n.PointCount,
	})
}

// StreamOrder selects the order COPCIndex.Query yields matching nodes
// in (spec §4.6).
type StreamOrder int

const (
	StreamByDepth StreamOrder = iota
	StreamSpatial
)

// Query returns every node at or below maxDepth (0 = root only; use
// MaxDepthForResolution to derive maxDepth from a target point
// spacing) whose voxel overlaps the given box, in the requested
// stream order. Both supported orders currently share the same
// depth-then-Morton comparator — StreamByDepth and StreamSpatial are
// kept distinct so a future pure-Morton (ignoring depth) order can be
// added without an API break.
func (c *COPCIndex) Query(maxDepth int32, minX, minY, minZ, maxX, maxY, maxZ float64, order StreamOrder) []COPCNode {
	nodes := c.octree.QueryDepthRange(maxDepth, minX, minY, minZ, maxX, maxY, maxZ)
	out := make([]COPCNode, len(nodes))
	for i, n := range nodes {
		out[i] = COPCNode{Depth: n.Key.Depth, X: n.Key.X, Y: n.Key.Y, Z: n.Key.Z, Offset: n.Offset, ByteSize: n.ByteSize, PointCount: n.PointCount}
	}
	return out
}

// MaxDepthForResolution returns the shallowest depth whose node
// spacing is at or below the requested real-world resolution.
func (c *COPCIndex) MaxDepthForResolution(resolution float64) int32 {
	return c.octree.MaxDepthForResolution(resolution)
}
