package spatial

import "sort"

// OctreeKey identifies a COPC node by (depth, x, y, z) per the COPC
// specification's VoxelKey, grounded on spec §4.6's "COPC-style
// depth/resolution queries for compressed files".
type OctreeKey struct {
	Depth      int32
	X, Y, Z    int32
}

// OctreeNode is one VLR-resident COPC hierarchy entry: the byte range
// of its chunk in the LAZ point data, and how many points it holds.
type OctreeNode struct {
	Key          OctreeKey
	Offset       uint64
	ByteSize     int32
	PointCount   int32
}

// Octree is the in-memory COPC node hierarchy, keyed by OctreeKey for
// O(1) child lookup without pointer-linked tree nodes (same arena
// style as Quadtree).
type Octree struct {
	Nodes map[OctreeKey]*OctreeNode
	RootSpacing float64
	MinX, MinY, MinZ, MaxX, MaxY, MaxZ float64
}

// NewOctree builds an empty Octree over the given cube bounds with the
// given root-level voxel spacing.
func NewOctree(minX, minY, minZ, maxX, maxY, maxZ, rootSpacing float64) *Octree {
	return &Octree{Nodes: map[OctreeKey]*OctreeNode{}, RootSpacing: rootSpacing,
		MinX: minX, MinY: minY, MinZ: minZ, MaxX: maxX, MaxY: maxY, MaxZ: maxZ}
}

// AddNode inserts or replaces a node.
func (o *Octree) AddNode(n *OctreeNode) { o.Nodes[n.Key] = n }

// Children returns the up-to-8 child keys of key (depth+1 octants).
func (k OctreeKey) Children() []OctreeKey {
	out := make([]OctreeKey, 0, 8)
	for dx := int32(0); dx < 2; dx++ {
		for dy := int32(0); dy < 2; dy++ {
			for dz := int32(0); dz < 2; dz++ {
				out = append(out, OctreeKey{Depth: k.Depth + 1, X: k.X*2 + dx, Y: k.Y*2 + dy, Z: k.Z*2 + dz})
			}
		}
	}
	return out
}

// Bounds returns key's voxel bounding box within o.
func (o *Octree) Bounds(k OctreeKey) (minX, minY, minZ, maxX, maxY, maxZ float64) {
	cells := float64(int64(1) << uint(k.Depth))
	sx := (o.MaxX - o.MinX) / cells
	sy := (o.MaxY - o.MinY) / cells
	sz := (o.MaxZ - o.MinZ) / cells
	minX = o.MinX + float64(k.X)*sx
	minY = o.MinY + float64(k.Y)*sy
	minZ = o.MinZ + float64(k.Z)*sz
	return minX, minY, minZ, minX + sx, minY + sy, minZ + sz
}

// Resolution returns the node spacing at depth d: RootSpacing / 2^d,
// used to translate a requested real-world resolution into a maximum
// depth.
func (o *Octree) Resolution(depth int32) float64 {
	return o.RootSpacing / float64(int64(1)<<uint(depth))
}

// MaxDepthForResolution returns the smallest depth whose node spacing
// is at or below the requested resolution.
func (o *Octree) MaxDepthForResolution(resolution float64) int32 {
	var d int32
	for o.Resolution(d) > resolution && d < 32 {
		d++
	}
	return d
}

// QueryDepthRange returns every node at depth <= maxDepth whose voxel
// overlaps the given 3D box, ordered by depth then Morton-style
// (x,y,z) key for deterministic streaming (spec §4.6's "stream
// ordering by-depth" option).
func (o *Octree) QueryDepthRange(maxDepth int32, minX, minY, minZ, maxX, maxY, maxZ float64) []*OctreeNode {
	var out []*OctreeNode
	for key, n := range o.Nodes {
		if key.Depth > maxDepth {
			continue
		}
		nMinX, nMinY, nMinZ, nMaxX, nMaxY, nMaxZ := o.Bounds(key)
		if nMaxX < minX || nMinX > maxX || nMaxY < minY || nMinY > maxY || nMaxZ < minZ || nMinZ > maxZ {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key.Depth != out[j].Key.Depth {
			return out[i].Key.Depth < out[j].Key.Depth
		}
		return mortonCode(out[i].Key) < mortonCode(out[j].Key)
	})
	return out
}

// mortonCode interleaves the three voxel coordinates into a single
// sortable key, giving spatially-local streaming order (COPC's
// "spatial" stream ordering option).
func mortonCode(k OctreeKey) uint64 {
	spread := func(v int32) uint64 {
		x := uint64(uint32(v)) & 0x1FFFFF
		x = (x | x<<32) & 0x1F00000000FFFF
		x = (x | x<<16) & 0x1F0000FF0000FF
		x = (x | x<<8) & 0x100F00F00F00F00F
		x = (x | x<<4) & 0x10C30C30C30C30C3
		x = (x | x<<2) & 0x1249249249249249
		return x
	}
	return spread(k.X) | spread(k.Y)<<1 | spread(k.Z)<<2
}
