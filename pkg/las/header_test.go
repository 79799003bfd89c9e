package las

import "testing"

func TestDefaultHeaderSchema(t *testing.T) {
	h := DefaultHeader()
	schema, err := h.Schema()
	if err != nil {
		t.Fatal(err)
	}
	if schema.RecordLength() != int(h.PointDataRecordLength) {
		t.Errorf("schema record length = %d, want %d", schema.RecordLength(), h.PointDataRecordLength)
	}
}

func TestHeaderSchemaRejectsTooShortRecordLength(t *testing.T) {
	h := DefaultHeader()
	h.PointDataRecordLength = 5 // shorter than format 6 requires
	if _, err := h.Schema(); err == nil {
		t.Fatal("expected a FormatError for a record length shorter than the format needs")
	}
}

func TestHeaderPointCountPrefersExtendedOn14(t *testing.T) {
	h := DefaultHeader()
	h.LegacyNumberOfPointRecords = 100
	h.NumberOfPointRecords = 5000
	if got := h.PointCount(); got != 5000 {
		t.Errorf("PointCount() = %d, want 5000 (extended count wins on 1.4)", got)
	}
}

func TestHeaderPointCountFallsBackWhenExtendedZero(t *testing.T) {
	h := DefaultHeader()
	h.LegacyNumberOfPointRecords = 100
	h.NumberOfPointRecords = 0
	if got := h.PointCount(); got != 100 {
		t.Errorf("PointCount() = %d, want 100 (fallback to legacy count)", got)
	}
}

func TestHeaderPointCountLegacyOnOlderVersion(t *testing.T) {
	h := DefaultHeader()
	h.VersionMinor = 2
	h.LegacyNumberOfPointRecords = 42
	h.NumberOfPointRecords = 999
	if got := h.PointCount(); got != 42 {
		t.Errorf("PointCount() = %d, want 42 (pre-1.4 headers never read the 64-bit count)", got)
	}
}

func TestIndexVLRsPopulatesGeoKeysAndExtraBytes(t *testing.T) {
	h := DefaultHeader()
	geo := GeoKeysVLR{KeyDirectoryVersion: 1, KeyRevision: 1, MinorRevision: 0, Keys: []GeoKeyEntry{{KeyID: 1024, Count: 1, ValueOffset: 1}}}
	eb := ExtraBytesVLR{Descriptors: []ExtraBytesDescriptor{{Name: "amp", DataType: FlattenExtraBytesType(EBTypeF32, 1)}}}

	h.VLRs = []VLR{
		{UserID: vlrUserIDLASF_Projection, RecordID: vlrRecordIDGeoKeys, Data: EncodeGeoKeysVLR(geo)},
		{UserID: vlrUserIDLASF_Spec, RecordID: vlrRecordIDExtraBytes, Data: EncodeExtraBytesVLR(eb)},
	}

	if err := h.indexVLRs(); err != nil {
		t.Fatal(err)
	}
	if h.GeoKeys == nil || len(h.GeoKeys.Keys) != 1 {
		t.Fatalf("GeoKeys not indexed: %+v", h.GeoKeys)
	}
	if h.Attributer == nil || len(h.Attributer.Descriptors) != 1 || h.Attributer.Descriptors[0].Name != "amp" {
		t.Fatalf("Attributer not indexed: %+v", h.Attributer)
	}
}
