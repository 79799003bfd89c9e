// Package spatial implements the quadtree + interval-store spatial
// index (pkg/las.SpatialIndex) and the COPC octree (pkg/las.COPCIndex),
// grounded on
// _examples/beetlebugorg-s57/pkg/s57/cellset.go's arena-allocated,
// u32-id cell bookkeeping style (no pointer-linked tree nodes) and on
// dhconnelly/rtreego for bounding-box pruning (SPEC_FULL.md §1).
package spatial

// Interval is an inclusive [Start, End] run of point indices.
type Interval struct {
	Start, End int64
}

// IntervalStore holds one leaf cell's ascending, non-overlapping,
// auto-coalescing point-index intervals (spec §4.6).
type IntervalStore struct {
	Intervals []Interval
	Total     int64 // count of points ever inserted into this cell
	Full      int64 // count covered by the (possibly merged) intervals
}

// Append adds pointIndex to the store, extending the last interval
// when it is contiguous (pointIndex == last.End+1), else starting a
// new one. Point indices must arrive in non-decreasing order (the
// construction pass inserts in point-stream order).
func (s *IntervalStore) Append(pointIndex int64) {
	s.Total++
	if n := len(s.Intervals); n > 0 && s.Intervals[n-1].End+1 == pointIndex {
		s.Intervals[n-1].End = pointIndex
	} else {
		s.Intervals = append(s.Intervals, Interval{Start: pointIndex, End: pointIndex})
	}
	s.Full++
}

// MergeWithGap coalesces adjacent intervals separated by a gap of at
// most maxGap point indices, recomputing Full as the new covered
// count. Used by the completion pass's doubling-gap loop.
func (s *IntervalStore) MergeWithGap(maxGap int64) {
	if len(s.Intervals) < 2 {
		return
	}
	merged := make([]Interval, 0, len(s.Intervals))
	cur := s.Intervals[0]
	for _, iv := range s.Intervals[1:] {
		if iv.Start-cur.End-1 <= maxGap {
			if iv.End > cur.End {
				cur.End = iv.End
			}
		} else {
			merged = append(merged, cur)
			cur = iv
		}
	}
	merged = append(merged, cur)
	s.Intervals = merged
	var full int64
	for _, iv := range s.Intervals {
		full += iv.End - iv.Start + 1
	}
	s.Full = full
}

// Span returns the covered index range (min Start, max End), used by
// the merge-termination bailout (gap must not need to exceed this).
func (s *IntervalStore) Span() int64 {
	if len(s.Intervals) == 0 {
		return 0
	}
	return s.Intervals[len(s.Intervals)-1].End - s.Intervals[0].Start + 1
}

// MergeUnion returns, as a slice, the ascending union of several cells'
// intervals, merging adjacent/overlapping runs across cells — used by
// SpatialIndex.GetIntervals when a query marks more than one cell.
func MergeUnion(stores []*IntervalStore) []Interval {
	var all []Interval
	for _, s := range stores {
		all = append(all, s.Intervals...)
	}
	if len(all) == 0 {
		return nil
	}
	// Insertion sort is adequate here: each store's own intervals are
	// already ascending, and the number of marked cells in a typical
	// window query is small.
	for i := 1; i < len(all); i++ {
		for j := i; j > 0 && all[j-1].Start > all[j].Start; j-- {
			all[j-1], all[j] = all[j], all[j-1]
		}
	}
	merged := []Interval{all[0]}
	for _, iv := range all[1:] {
		last := &merged[len(merged)-1]
		if iv.Start <= last.End+1 {
			if iv.End > last.End {
				last.End = iv.End
			}
		} else {
			merged = append(merged, iv)
		}
	}
	return merged
}
