package las

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestTextReaderReadsPlainXYZ(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "points.txt")
	content := "1.0 2.0 3.0\n4.5 5.5 6.5\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := OpenTextReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	var got [][3]float64
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
		q := r.Header().Quantizer
		got = append(got, [3]float64{p.GetX(q), p.GetY(q), p.GetZ(q, nil)})
	}
	if len(got) != 2 {
		t.Fatalf("read %d points, want 2", len(got))
	}
	if got[1][0] < 4.49 || got[1][0] > 4.51 {
		t.Errorf("second point X = %v, want ~4.5", got[1][0])
	}
}

func TestTextReaderPTSCountLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "points.pts")
	content := "2\n1.0 2.0 3.0 100\n4.0 5.0 6.0 200\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := OpenTextReaderWithParseString(path, "xyzi")
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if r.Header().PTSProvenance == nil {
		t.Fatal("expected PTSProvenance to be populated for a .pts file")
	}
	if r.Header().LegacyNumberOfPointRecords != 2 {
		t.Errorf("LegacyNumberOfPointRecords = %d, want 2", r.Header().LegacyNumberOfPointRecords)
	}

	var p Point
	ok, err := r.ReadPoint(context.Background(), &p)
	if err != nil || !ok {
		t.Fatal(err)
	}
	if p.Intensity != 100 {
		t.Errorf("first point intensity = %d, want 100", p.Intensity)
	}
}

func TestCompileParseStringExpandsTriplesAndDigits(t *testing.T) {
	actions := compileParseString("xyz0(HSV)")
	if len(actions) != 1+1+1+1+3 {
		t.Fatalf("compiled %d actions for 'xyz0(HSV)', want 7", len(actions))
	}
	if actions[3].kind != 'E' || actions[3].extraIndex != 0 {
		t.Errorf("digit column action = %+v, want kind E index 0", actions[3])
	}
	if actions[4].kind != 'T' || actions[4].triple != "HSV" {
		t.Errorf("triple column action = %+v, want kind T triple HSV", actions[4])
	}
}
