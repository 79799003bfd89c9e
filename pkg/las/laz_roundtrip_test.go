package las_test

import (
	"context"
	"testing"

	"github.com/go-laslib/laslib/pkg/las"

	// Anchors both the item codec and the chunk-backend registrations
	// this package cannot reach directly.
	_ "github.com/go-laslib/laslib/internal/codec"
)

func writeCompressed(t *testing.T, backend las.ChunkBackendID, chunkSize uint32, points [][3]float64) *las.MemoryStream {
	t.Helper()
	stream := las.NewMemoryStream(nil)
	h := las.DefaultHeader()
	if h.LASzip == nil {
		h.LASzip = &las.LASzipVLR{}
	}
	h.LASzip.ChunkSize = chunkSize

	w, err := las.NewWriter(stream, las.WriterOptions{Header: h, Logger: las.NopLogger, Compress: backend})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	q := h.Quantizer
	ctx := context.Background()
	for i, xyz := range points {
		p := &las.Point{}
		p.SetX(xyz[0], q)
		p.SetY(xyz[1], q)
		p.SetZ(xyz[2], q)
		p.SetReturns(1, 1)
		p.Intensity = uint16(1000 + i)
		if err := w.WritePoint(ctx, p); err != nil {
			t.Fatalf("WritePoint(%d): %v", i, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return stream
}

func readAllCompressed(t *testing.T, stream *las.MemoryStream) (*las.Header, []uint16) {
	t.Helper()
	stream.Seek(0, 0)
	r, err := las.NewLASReader(stream)
	if err != nil {
		t.Fatalf("NewLASReader: %v", err)
	}
	if r.Header().LASzip == nil {
		t.Fatal("reader header has no LASzip VLR; file was not recognized as compressed")
	}
	var got []uint16
	var p las.Point
	ctx := context.Background()
	for {
		ok, err := r.ReadPoint(ctx, &p)
		if err != nil {
			t.Fatalf("ReadPoint: %v", err)
		}
		if !ok {
			break
		}
		got = append(got, p.Intensity)
	}
	return r.Header(), got
}

func TestLAZDeflateRoundTripAcrossMultipleChunks(t *testing.T) {
	var points [][3]float64
	for i := 0; i < 25; i++ {
		points = append(points, [3]float64{float64(i), float64(i) * 2, float64(i) % 5})
	}
	// chunkSize=10 forces three chunks (10, 10, 5) from 25 points.
	stream := writeCompressed(t, las.ChunkBackendDeflate, 10, points)

	h, got := readAllCompressed(t, stream)
	if h.PointCount() != 25 {
		t.Fatalf("PointCount() = %d, want 25", h.PointCount())
	}
	if len(got) != 25 {
		t.Fatalf("read back %d points, want 25", len(got))
	}
	for i, v := range got {
		if v != uint16(1000+i) {
			t.Errorf("point %d intensity = %d, want %d", i, v, 1000+i)
		}
	}
}

func TestLAZLZ4RoundTripSingleChunk(t *testing.T) {
	points := [][3]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}
	stream := writeCompressed(t, las.ChunkBackendLZ4, 1000, points)

	h, got := readAllCompressed(t, stream)
	if h.PointCount() != 3 {
		t.Fatalf("PointCount() = %d, want 3", h.PointCount())
	}
	if len(got) != 3 || got[0] != 1000 || got[2] != 1002 {
		t.Errorf("intensities read back = %v, want [1000 1001 1002]", got)
	}
}

func TestLAZSeekJumpsToCorrectChunk(t *testing.T) {
	var points [][3]float64
	for i := 0; i < 12; i++ {
		points = append(points, [3]float64{float64(i), float64(i), float64(i)})
	}
	stream := writeCompressed(t, las.ChunkBackendDeflate, 5, points) // chunks of 5,5,2

	stream.Seek(0, 0)
	r, err := las.NewLASReader(stream)
	if err != nil {
		t.Fatalf("NewLASReader: %v", err)
	}
	if err := r.Seek(11); err != nil {
		t.Fatalf("Seek(11): %v", err)
	}
	var p las.Point
	ok, err := r.ReadPoint(context.Background(), &p)
	if err != nil || !ok {
		t.Fatalf("ReadPoint after Seek(11): ok=%v err=%v", ok, err)
	}
	if p.Intensity != 1011 {
		t.Errorf("point after Seek(11) has intensity %d, want 1011", p.Intensity)
	}
}
