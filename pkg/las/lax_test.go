package las

import (
	"testing"

	"github.com/go-laslib/laslib/internal/spatial"
)

func TestLAXWriteReadRoundTrip(t *testing.T) {
	idx := NewSpatialIndex(0, 0, 100, 100, 1000)
	idx.Insert(10, 10, 0)
	idx.Insert(11, 11, 1)
	idx.Insert(90, 90, 2)
	idx.Complete(1, 100)

	stream := NewMemoryStream(nil)
	if err := WriteLAX(stream, idx); err != nil {
		t.Fatal(err)
	}

	stream.Seek(0, 0)
	cells, err := ReadLAX(stream)
	if err != nil {
		t.Fatal(err)
	}

	var total int64
	for _, c := range cells {
		total += c.Total
	}
	if total != 3 {
		t.Errorf("total points across all LAX cells = %d, want 3", total)
	}
}

func TestReadLAXRejectsCorruptedChecksum(t *testing.T) {
	idx := NewSpatialIndex(0, 0, 100, 100, 1000)
	idx.Insert(5, 5, 0)
	idx.Complete(1, 100)

	stream := NewMemoryStream(nil)
	if err := WriteLAX(stream, idx); err != nil {
		t.Fatal(err)
	}
	corrupted := append([]byte(nil), stream.Bytes()...)
	corrupted[len(corrupted)-1] ^= 0xFF // flip a bit in the trailing checksum

	if _, err := ReadLAX(NewMemoryStream(corrupted)); err == nil {
		t.Fatal("expected a checksum-mismatch error for a corrupted trailer")
	}
}

func TestReadLAXRejectsBadMagic(t *testing.T) {
	if _, err := ReadLAX(NewMemoryStream([]byte("NOPE0000"))); err == nil {
		t.Fatal("expected an error for a missing LASX magic")
	}
}

var _ = spatial.Interval{} // keeps internal/spatial imported for IntervalStore-shaped assertions above
