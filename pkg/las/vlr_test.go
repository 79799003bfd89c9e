package las

import "testing"

func TestGeoKeysVLRRoundTrip(t *testing.T) {
	want := GeoKeysVLR{
		KeyDirectoryVersion: 1, KeyRevision: 1, MinorRevision: 0,
		Keys: []GeoKeyEntry{
			{KeyID: 1024, TIFFTagLocation: 0, Count: 1, ValueOffset: 1},
			{KeyID: 3072, TIFFTagLocation: 0, Count: 1, ValueOffset: 26912},
		},
	}
	encoded := EncodeGeoKeysVLR(want)
	got, err := ParseGeoKeysVLR(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if got.NumberOfKeys != uint16(len(want.Keys)) {
		t.Errorf("NumberOfKeys = %d, want %d", got.NumberOfKeys, len(want.Keys))
	}
	if len(got.Keys) != len(want.Keys) {
		t.Fatalf("Keys length = %d, want %d", len(got.Keys), len(want.Keys))
	}
	for i := range want.Keys {
		if got.Keys[i] != want.Keys[i] {
			t.Errorf("Keys[%d] = %+v, want %+v", i, got.Keys[i], want.Keys[i])
		}
	}
}

func TestParseGeoKeysVLRRejectsTruncatedHeader(t *testing.T) {
	if _, err := ParseGeoKeysVLR([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected a FormatError for a header shorter than 8 bytes")
	}
}

func TestExtraBytesVLRRoundTrip(t *testing.T) {
	want := ExtraBytesVLR{
		Descriptors: []ExtraBytesDescriptor{
			{
				Name:        "echo_ratio",
				DataType:    FlattenExtraBytesType(EBTypeF32, 1),
				Description: "first/last echo energy ratio",
			},
			{
				Name:     "deviation",
				DataType: FlattenExtraBytesType(EBTypeU16, 1),
				Options:  1<<3 | 1<<4, // scale + offset
				Scale:    [3]float64{0.01},
				Offset:   [3]float64{0},
			},
		},
	}
	encoded := EncodeExtraBytesVLR(want)
	if len(encoded) != 2*extraBytesDescriptorSize {
		t.Fatalf("encoded length = %d, want %d", len(encoded), 2*extraBytesDescriptorSize)
	}

	got, err := ParseExtraBytesVLR(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Descriptors) != 2 {
		t.Fatalf("Descriptors length = %d, want 2", len(got.Descriptors))
	}
	if got.Descriptors[0].Name != "echo_ratio" || got.Descriptors[0].Description != "first/last echo energy ratio" {
		t.Errorf("descriptor 0 = %+v", got.Descriptors[0])
	}
	if got.Descriptors[1].Scale[0] != 0.01 {
		t.Errorf("descriptor 1 scale = %v, want 0.01", got.Descriptors[1].Scale[0])
	}
}

func TestParseExtraBytesVLRRejectsBadSize(t *testing.T) {
	if _, err := ParseExtraBytesVLR(make([]byte, 10)); err == nil {
		t.Fatal("expected an error for a size not a multiple of 192")
	}
}

func TestParseLASzipVLR(t *testing.T) {
	data := make([]byte, 34+4*2)
	data[0] = 2 // compressor
	WriteU16(data[2:4], 0, LittleEndian)
	data[4], data[5] = 3, 0
	WriteU32(data[8:12], 0, LittleEndian)
	WriteU32(data[12:16], 50000, LittleEndian)
	WriteU16(data[32:34], 2, LittleEndian)
	WriteU16(data[34:36], 6, LittleEndian) // item kind: POINT10
	WriteU16(data[36:38], 2, LittleEndian) // item version
	WriteU16(data[38:40], 8, LittleEndian) // item kind: RGB12
	WriteU16(data[40:42], 2, LittleEndian)

	v, err := ParseLASzipVLR(data)
	if err != nil {
		t.Fatal(err)
	}
	if v.Compressor != 2 || v.ChunkSize != 50000 {
		t.Errorf("Compressor/ChunkSize = %d/%d, want 2/50000", v.Compressor, v.ChunkSize)
	}
	if len(v.Items) != 2 || v.Items[0].Kind != 6 || v.Items[1].Kind != 8 {
		t.Errorf("Items = %+v", v.Items)
	}
}

func TestParseLASzipVLRRejectsShortHeader(t *testing.T) {
	if _, err := ParseLASzipVLR(make([]byte, 10)); err == nil {
		t.Fatal("expected an error for a header shorter than 34 bytes")
	}
}
