package las

import (
	"context"
	"testing"
)

func TestWriterReaderRoundTripFormat0(t *testing.T) {
	stream := NewMemoryStream(nil)
	h := DefaultHeader()
	h.PointDataFormat = 0
	h.PointDataRecordLength = 20
	h.VersionMinor = 2
	h.HeaderSize = legacyHeaderSize

	w, err := NewWriter(stream, WriterOptions{Header: h, Logger: NopLogger})
	if err != nil {
		t.Fatal(err)
	}

	q := h.Quantizer
	for i, xyz := range [][3]float64{{10, 20, 5}, {11, 21, 6}, {-3, 4, 1}} {
		p := &Point{}
		p.SetX(xyz[0], q)
		p.SetY(xyz[1], q)
		p.SetZ(xyz[2], q)
		p.SetReturns(1, 1)
		p.Intensity = uint16(100 + i)
		if err := w.WritePoint(context.Background(), p); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	stream.Seek(0, 0)
	r, err := NewLASReader(stream)
	if err != nil {
		t.Fatal(err)
	}
	if r.Header().PointCount() != 3 {
		t.Fatalf("PointCount() = %d, want 3", r.Header().PointCount())
	}
	if r.Header().MaxX < 10.99 || r.Header().MaxX > 11.01 {
		t.Errorf("header MaxX = %v, want ~11", r.Header().MaxX)
	}
	if r.Header().MinY < 3.99 || r.Header().MinY > 4.01 {
		t.Errorf("header MinY = %v, want ~4", r.Header().MinY)
	}

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
	if len(got) != 3 || got[0] != 100 || got[2] != 102 {
		t.Errorf("intensities read back = %v, want [100 101 102]", got)
	}
}
