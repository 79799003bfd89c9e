package las

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestBINReaderParsesV1FixedRecords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "points.bin")

	buf := make([]byte, 8+2*20)
	WriteU16(buf[0:2], 1, LittleEndian) // version 1 -> 20-byte records
	WriteU32(buf[4:8], 2, LittleEndian) // point count

	rec0 := buf[8:28]
	WriteU32(rec0[0:4], 1000, LittleEndian)
	WriteU32(rec0[4:8], 2000, LittleEndian)
	WriteU32(rec0[8:12], 300, LittleEndian)
	rec0[12] = 5 // classification
	rec0[13] = 1 // return number
	WriteU16(rec0[14:16], 777, LittleEndian)

	rec1 := buf[28:48]
	WriteU32(rec1[0:4], 1100, LittleEndian)
	WriteU32(rec1[4:8], 2100, LittleEndian)
	WriteU32(rec1[8:12], 310, LittleEndian)

	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := OpenBINReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	var p Point
	ok, err := r.ReadPoint(context.Background(), &p)
	if err != nil || !ok {
		t.Fatal(err)
	}
	if p.X != 1000 || p.Y != 2000 || p.Z != 300 {
		t.Errorf("first record coords = (%d,%d,%d), want (1000,2000,300)", p.X, p.Y, p.Z)
	}
	if p.Classification != 5 || p.Intensity != 777 {
		t.Errorf("first record classification/intensity = %d/%d, want 5/777", p.Classification, p.Intensity)
	}

	ok, err = r.ReadPoint(context.Background(), &p)
	if err != nil || !ok {
		t.Fatal(err)
	}
	if p.X != 1100 {
		t.Errorf("second record X = %d, want 1100", p.X)
	}

	ok, err = r.ReadPoint(context.Background(), &p)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected EOF after the declared point count (2)")
	}
}
