package las

import (
	"context"
	"testing"
)

// fakeReader is a minimal in-memory PointReader for pipeline layer tests.
type fakeReader struct {
	header *Header
	points []Point
	index  int
	closed bool
}

func newFakeReader(points []Point) *fakeReader {
	h := DefaultHeader()
	return &fakeReader{header: h, points: points}
}

func (r *fakeReader) Header() *Header { return r.header }

func (r *fakeReader) ReadPoint(ctx context.Context, p *Point) (bool, error) {
	if r.index >= len(r.points) {
		return false, nil
	}
	*p = r.points[r.index]
	r.index++
	return true, nil
}

func (r *fakeReader) Seek(i int64) error { r.index = int(i); return nil }
func (r *fakeReader) Close() error       { r.closed = true; return nil }

func TestStoredReaderMaterializesAndSkipsDeleted(t *testing.T) {
	inner := newFakeReader([]Point{
		{Intensity: 1},
		{Intensity: 2, Deleted: true},
		{Intensity: 3},
	})
	sr := newStoredReader(inner)
	if !inner.closed {
		t.Error("storedReader should close its inner reader once fully materialized")
	}

	ctx := context.Background()
	var got []uint16
	var p Point
	for {
		ok, err := sr.ReadPoint(ctx, &p)
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			break
		}
		got = append(got, p.Intensity)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("intensities read = %v, want [1 3] (deleted point skipped)", got)
	}
}

func TestStoredReaderSeekResets(t *testing.T) {
	inner := newFakeReader([]Point{{Intensity: 10}, {Intensity: 20}})
	sr := newStoredReader(inner)
	var p Point
	sr.ReadPoint(context.Background(), &p)
	sr.ReadPoint(context.Background(), &p)
	if err := sr.Seek(0); err != nil {
		t.Fatal(err)
	}
	ok, err := sr.ReadPoint(context.Background(), &p)
	if err != nil || !ok || p.Intensity != 10 {
		t.Errorf("after Seek(0), first point intensity = %d, want 10", p.Intensity)
	}
}

func TestFilteredTransformedReaderDropsThenTransforms(t *testing.T) {
	p1 := &Point{}
	p1.SetClassification(2)
	p2 := &Point{}
	p2.SetClassification(9)

	inner := newFakeReader([]Point{*p1, *p2})
	filters := &FilterChain{}
	filters.Add(NewKeepClassificationCriterion(9, 9))
	transforms := &TransformChain{}
	transforms.Add(NewClassifyAsOp(42))

	r := newFilteredTransformedReader(inner, filters, transforms)
	var got Point
	ok, err := r.ReadPoint(context.Background(), &got)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected the class-9 point to survive the filter")
	}
	if got.GetClassification() != 42 {
		t.Errorf("surviving point classification = %d, want 42 (post-transform)", got.GetClassification())
	}

	ok, err = r.ReadPoint(context.Background(), &got)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected no more points after the class-2 point was dropped")
	}
}

func TestMergedReaderConcatenatesSources(t *testing.T) {
	a := newFakeReader([]Point{{Intensity: 1}, {Intensity: 2}})
	b := newFakeReader([]Point{{Intensity: 3}})
	r := newMergedReader([]PointReader{a, b})

	var got []uint16
	var p Point
	ctx := context.Background()
	for {
		ok, err := r.ReadPoint(ctx, &p)
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			break
		}
		got = append(got, p.Intensity)
	}
	if len(got) != 3 || got[2] != 3 {
		t.Errorf("merged intensities = %v, want [1 2 3]", got)
	}

	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	if !a.closed || !b.closed {
		t.Error("mergedReader.Close() should close every source")
	}
}

func TestRescaleReoffsetReaderReprojectsCoordinates(t *testing.T) {
	srcQ := NewQuantizer(0.01, 0.01, 0.01, 0, 0, 0)
	inner := newFakeReader(nil)
	inner.header.Quantizer = srcQ
	p := &Point{}
	p.SetX(123.45, srcQ)
	inner.points = []Point{*p}

	targetQ := NewQuantizer(0.001, 0.001, 0.001, 0, 0, 0)
	r := newRescaleReoffsetReader(inner, targetQ)

	var got Point
	ok, err := r.ReadPoint(context.Background(), &got)
	if err != nil || !ok {
		t.Fatal(err)
	}
	if x := got.GetX(targetQ); x < 123.4 || x > 123.5 {
		t.Errorf("GetX() under target quantizer = %v, want ~123.45", x)
	}
	if r.Header().Quantizer != targetQ {
		t.Error("rescaleReoffsetReader.Header() should report the target quantizer")
	}
}
