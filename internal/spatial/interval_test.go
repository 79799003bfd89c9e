package spatial

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestIntervalStoreAppendCoalescesContiguous(t *testing.T) {
	var s IntervalStore
	for _, i := range []int64{0, 1, 2, 5, 6, 10} {
		s.Append(i)
	}
	want := []Interval{{0, 2}, {5, 6}, {10, 10}}
	if diff := cmp.Diff(want, s.Intervals); diff != "" {
		t.Errorf("Intervals mismatch (-want +got):\n%s", diff)
	}
	if s.Total != 6 {
		t.Errorf("Total = %d, want 6", s.Total)
	}
	if s.Full != 6 {
		t.Errorf("Full = %d, want 6", s.Full)
	}
}

func TestIntervalStoreMergeWithGap(t *testing.T) {
	s := IntervalStore{Intervals: []Interval{{0, 2}, {5, 6}, {10, 10}}}
	s.MergeWithGap(2) // gap of 2 bridges [0,2]-[5,6] (gap=2) but not [5,6]-[10,10] (gap=3)
	want := []Interval{{0, 6}, {10, 10}}
	if diff := cmp.Diff(want, s.Intervals); diff != "" {
		t.Errorf("Intervals mismatch after MergeWithGap(2) (-want +got):\n%s", diff)
	}

	s.MergeWithGap(3)
	want = []Interval{{0, 10}}
	if diff := cmp.Diff(want, s.Intervals); diff != "" {
		t.Errorf("Intervals mismatch after MergeWithGap(3) (-want +got):\n%s", diff)
	}
	if s.Full != 11 {
		t.Errorf("Full = %d, want 11", s.Full)
	}
}

func TestIntervalStoreSpan(t *testing.T) {
	s := IntervalStore{Intervals: []Interval{{3, 5}, {10, 20}}}
	if got := s.Span(); got != 18 {
		t.Errorf("Span() = %d, want 18", got)
	}
	var empty IntervalStore
	if got := empty.Span(); got != 0 {
		t.Errorf("Span() of empty store = %d, want 0", got)
	}
}

func TestMergeUnionAcrossCells(t *testing.T) {
	a := &IntervalStore{Intervals: []Interval{{0, 2}, {10, 12}}}
	b := &IntervalStore{Intervals: []Interval{{3, 4}, {20, 21}}}
	got := MergeUnion([]*IntervalStore{a, b})
	want := []Interval{{0, 4}, {10, 12}, {20, 21}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("MergeUnion mismatch (-want +got):\n%s", diff)
	}
}
