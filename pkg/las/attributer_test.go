package las

import "testing"

func TestAttributerOffsetsAndReadWriteFloat(t *testing.T) {
	a := &Attributer{}
	a.AddAttribute(ExtraBytesDescriptor{
		Name:     "intensity_norm",
		DataType: FlattenExtraBytesType(EBTypeF32, 1),
	})
	a.AddAttribute(ExtraBytesDescriptor{
		Name:     "return_ratio",
		DataType: FlattenExtraBytesType(EBTypeU16, 1),
		Options:  1 << 3, // scale present
		Scale:    [3]float64{0.0001},
	})

	if a.TotalSize() != 4+2 {
		t.Fatalf("TotalSize() = %d, want 6", a.TotalSize())
	}
	if a.Offset(1) != 4 {
		t.Errorf("Offset(1) = %d, want 4", a.Offset(1))
	}

	blob := make([]byte, a.TotalSize())
	if err := a.WriteFloatDim(blob, 0, 0, 3.5); err != nil {
		t.Fatal(err)
	}
	if err := a.WriteFloatDim(blob, 1, 0, 0.25); err != nil {
		t.Fatal(err)
	}

	got0, err := a.ReadFloat(blob, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got0 != 3.5 {
		t.Errorf("attribute 0 round trip = %v, want 3.5", got0)
	}

	got1, err := a.ReadFloat(blob, 1)
	if err != nil {
		t.Fatal(err)
	}
	if diff := got1 - 0.25; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("scaled attribute 1 round trip = %v, want ~0.25", got1)
	}
}

func TestExtraBytesTypeFlattenSplitRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		base ExtraBytesType
		dim  int
	}{
		{EBTypeU8, 1}, {EBTypeI32, 2}, {EBTypeF64, 3},
	} {
		flat := FlattenExtraBytesType(tc.base, tc.dim)
		base, dim := SplitExtraBytesType(flat)
		if base != tc.base || dim != tc.dim {
			t.Errorf("FlattenExtraBytesType(%v,%d)=%d -> SplitExtraBytesType = (%v,%d)", tc.base, tc.dim, flat, base, dim)
		}
	}
}

func TestIndexByName(t *testing.T) {
	a := &Attributer{}
	a.AddAttribute(ExtraBytesDescriptor{Name: "foo", DataType: FlattenExtraBytesType(EBTypeU8, 1)})
	a.AddAttribute(ExtraBytesDescriptor{Name: "bar", DataType: FlattenExtraBytesType(EBTypeU8, 1)})
	if a.IndexByName("bar") != 1 {
		t.Errorf("IndexByName(bar) = %d, want 1", a.IndexByName("bar"))
	}
	if a.IndexByName("missing") != -1 {
		t.Errorf("IndexByName(missing) = %d, want -1", a.IndexByName("missing"))
	}
}
