package las_test

import (
	"testing"

	"github.com/go-laslib/laslib/pkg/las"

	// Anchors the item codec registration the internal test package
	// cannot reach directly (internal/codec imports pkg/las, so
	// pkg/las itself must never import internal/codec back).
	_ "github.com/go-laslib/laslib/internal/codec"
)

func TestPointCodecRoundTripFormat0(t *testing.T) {
	schema, err := las.SchemaForPointFormat(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	codec, err := las.NewPointCodec(schema, las.SelectAll)
	if err != nil {
		t.Fatal(err)
	}

	want := &las.Point{X: 12345, Y: -6789, Z: 4321, Intensity: 500, UserData: 7, PointSourceID: 42}
	want.SetReturns(2, 3)
	want.SetClassification(5)
	want.SetScanAngle(-12.0)

	record := make([]byte, schema.RecordLength())
	if err := codec.Encode(record, want); err != nil {
		t.Fatal(err)
	}

	got := &las.Point{}
	if err := codec.Decode(record, got); err != nil {
		t.Fatal(err)
	}

	if got.X != want.X || got.Y != want.Y || got.Z != want.Z {
		t.Errorf("coordinates: got (%d,%d,%d), want (%d,%d,%d)", got.X, got.Y, got.Z, want.X, want.Y, want.Z)
	}
	if got.GetClassification() != want.GetClassification() {
		t.Errorf("classification: got %d, want %d", got.GetClassification(), want.GetClassification())
	}
	if got.GetReturnNumber() != want.GetReturnNumber() || got.GetNumberOfReturns() != want.GetNumberOfReturns() {
		t.Errorf("returns: got (%d,%d), want (%d,%d)", got.GetReturnNumber(), got.GetNumberOfReturns(), want.GetReturnNumber(), want.GetNumberOfReturns())
	}
	if got.ScanAngleRank != want.ScanAngleRank {
		t.Errorf("scan angle rank: got %d, want %d", got.ScanAngleRank, want.ScanAngleRank)
	}
}

func TestPointCodecRoundTripFormat7ExtendedWithRGB(t *testing.T) {
	schema, err := las.SchemaForPointFormat(7, 0)
	if err != nil {
		t.Fatal(err)
	}
	codec, err := las.NewPointCodec(schema, las.SelectAll)
	if err != nil {
		t.Fatal(err)
	}

	want := &las.Point{Extended: true, X: 100, Y: 200, Z: 300, Intensity: 999, RGB: [3]uint16{1000, 2000, 3000}}
	want.SetReturns(9, 9) // exercises the >7-returns, last-return legacy mapping
	want.SetClassification(40)

	record := make([]byte, schema.RecordLength())
	if err := codec.Encode(record, want); err != nil {
		t.Fatal(err)
	}

	got := &las.Point{}
	if err := codec.Decode(record, got); err != nil {
		t.Fatal(err)
	}
	if !got.Extended {
		t.Fatal("decoded point should be marked Extended for a format-7 schema")
	}
	if got.RGB != want.RGB {
		t.Errorf("RGB: got %v, want %v", got.RGB, want.RGB)
	}
	if got.GetClassification() != 40 {
		t.Errorf("classification: got %d, want 40", got.GetClassification())
	}
	if got.Classification != 0 {
		t.Errorf("legacy classification shadow: got %d, want 0 (>=32 collapses)", got.Classification)
	}
	if got.GetReturnNumber() != 9 || got.GetNumberOfReturns() != 9 {
		t.Errorf("extended returns: got (%d,%d), want (9,9)", got.GetReturnNumber(), got.GetNumberOfReturns())
	}
	if got.ReturnNumber != 7 || got.NumberOfReturns != 7 {
		t.Errorf("legacy return shadow: got (%d,%d), want (7,7) per the last-return-of->7 rule", got.ReturnNumber, got.NumberOfReturns)
	}
}
