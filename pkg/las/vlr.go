package las

// VLR is a raw variable length record as it appears between the
// header and the point data (or, as an EVLR, after the point data).
type VLR struct {
	Reserved  uint16
	UserID    string // 16 bytes on disk
	RecordID  uint16
	Data      []byte
	Description string // 32 bytes on disk
}

// Well-known VLR (UserID, RecordID) pairs this package gives typed
// shadow access to.
const (
	vlrUserIDLASF_Projection = "LASF_Projection"
	vlrUserIDLASF_Spec       = "LASF_Spec"
	vlrUserIDLAStools        = "LAStools"

	vlrRecordIDGeoKeys        = 34735
	vlrRecordIDGeoDoubles     = 34736
	vlrRecordIDGeoASCII       = 34737
	vlrRecordIDWKTCoordSys    = 2112
	vlrRecordIDExtraBytes     = 4
	vlrRecordIDLASzip         = 22204
	vlrRecordIDLASTiling      = 10
	vlrRecordIDLASOriginal    = 4099
)

// GeoKeysVLR shadows a GeoTIFF GeoKeyDirectoryTag VLR (key id 34735).
type GeoKeysVLR struct {
	KeyDirectoryVersion, KeyRevision, MinorRevision, NumberOfKeys uint16
	Keys []GeoKeyEntry
}

// GeoKeyEntry is one 4-uint16 GeoTIFF key record.
type GeoKeyEntry struct {
	KeyID, TIFFTagLocation, Count, ValueOffset uint16
}

// ParseGeoKeysVLR decodes a raw VLR's Data as a GeoKeyDirectoryTag.
func ParseGeoKeysVLR(data []byte) (GeoKeysVLR, error) {
	if len(data) < 8 {
		return GeoKeysVLR{}, &FormatError{Reason: "GeoKeys VLR shorter than header"}
	}
	g := GeoKeysVLR{
		KeyDirectoryVersion: ReadU16(data[0:2], LittleEndian),
		KeyRevision:         ReadU16(data[2:4], LittleEndian),
		MinorRevision:       ReadU16(data[4:6], LittleEndian),
		NumberOfKeys:        ReadU16(data[6:8], LittleEndian),
	}
	off := 8
	for i := 0; i < int(g.NumberOfKeys); i++ {
		if off+8 > len(data) {
			return g, &FormatError{Reason: "GeoKeys VLR truncated key list"}
		}
		g.Keys = append(g.Keys, GeoKeyEntry{
			KeyID:           ReadU16(data[off:off+2], LittleEndian),
			TIFFTagLocation: ReadU16(data[off+2:off+4], LittleEndian),
			Count:           ReadU16(data[off+4:off+6], LittleEndian),
			ValueOffset:     ReadU16(data[off+6:off+8], LittleEndian),
		})
		off += 8
	}
	return g, nil
}

// EncodeGeoKeysVLR is the inverse of ParseGeoKeysVLR.
func EncodeGeoKeysVLR(g GeoKeysVLR) []byte {
	buf := make([]byte, 8+8*len(g.Keys))
	WriteU16(buf[0:2], g.KeyDirectoryVersion, LittleEndian)
	WriteU16(buf[2:4], g.KeyRevision, LittleEndian)
	WriteU16(buf[4:6], g.MinorRevision, LittleEndian)
	WriteU16(buf[6:8], uint16(len(g.Keys)), LittleEndian)
	off := 8
	for _, k := range g.Keys {
		WriteU16(buf[off:off+2], k.KeyID, LittleEndian)
		WriteU16(buf[off+2:off+4], k.TIFFTagLocation, LittleEndian)
		WriteU16(buf[off+4:off+6], k.Count, LittleEndian)
		WriteU16(buf[off+6:off+8], k.ValueOffset, LittleEndian)
		off += 8
	}
	return buf
}

// ExtraBytesVLR is LASF_Spec/4: an array of 192-byte extra-bytes
// descriptor structures, one per attribute.
type ExtraBytesVLR struct {
	Descriptors []ExtraBytesDescriptor
}

const extraBytesDescriptorSize = 192

// ParseExtraBytesVLR decodes a raw LASF_Spec/4 VLR payload.
func ParseExtraBytesVLR(data []byte) (ExtraBytesVLR, error) {
	if len(data)%extraBytesDescriptorSize != 0 {
		return ExtraBytesVLR{}, &FormatError{Reason: "extra bytes VLR size not a multiple of 192"}
	}
	var v ExtraBytesVLR
	for off := 0; off+extraBytesDescriptorSize <= len(data); off += extraBytesDescriptorSize {
		rec := data[off : off+extraBytesDescriptorSize]
		d := ExtraBytesDescriptor{
			Reserved: ReadU16(rec[0:2], LittleEndian),
			DataType: rec[2],
			Options:  rec[3],
			Name:     ReadFixedString(rec[4:36]),
		}
		base, _ := SplitExtraBytesType(d.DataType)
		scalarSize := baseTypeSizes[base]
		readTriple := func(at int) [3]ExtraBytesValue {
			var out [3]ExtraBytesValue
			for dim := 0; dim < 3; dim++ {
				out[dim] = ExtraBytesValue{Kind: base, F: decodeScalar(base, rec[at+dim*8:at+dim*8+scalarSize])}
			}
			return out
		}
		if d.HasNoData() {
			d.NoData = readTriple(40)
		}
		if d.HasMin() {
			d.Min = readTriple(64)
		}
		if d.HasMax() {
			d.Max = readTriple(88)
		}
		if d.HasScale() {
			for dim := 0; dim < 3; dim++ {
				d.Scale[dim] = ReadF64(rec[112+dim*8:120+dim*8], LittleEndian)
			}
		}
		if d.HasOffset() {
			for dim := 0; dim < 3; dim++ {
				d.Offset[dim] = ReadF64(rec[136+dim*8:144+dim*8], LittleEndian)
			}
		}
		d.Description = ReadFixedString(rec[160:192])
		v.Descriptors = append(v.Descriptors, d)
	}
	return v, nil
}

// EncodeExtraBytesVLR is the inverse of ParseExtraBytesVLR.
func EncodeExtraBytesVLR(v ExtraBytesVLR) []byte {
	buf := make([]byte, extraBytesDescriptorSize*len(v.Descriptors))
	for i, d := range v.Descriptors {
		rec := buf[i*extraBytesDescriptorSize : (i+1)*extraBytesDescriptorSize]
		WriteU16(rec[0:2], d.Reserved, LittleEndian)
		rec[2] = d.DataType
		rec[3] = d.Options
		WriteFixedString(rec[4:36], d.Name)
		base, _ := SplitExtraBytesType(d.DataType)
		scalarSize := baseTypeSizes[base]
		writeTriple := func(at int, vals [3]ExtraBytesValue) {
			for dim := 0; dim < 3; dim++ {
				encodeScalar(base, rec[at+dim*8:at+dim*8+scalarSize], vals[dim].F)
			}
		}
		if d.HasNoData() {
			writeTriple(40, d.NoData)
		}
		if d.HasMin() {
			writeTriple(64, d.Min)
		}
		if d.HasMax() {
			writeTriple(88, d.Max)
		}
		if d.HasScale() {
			for dim := 0; dim < 3; dim++ {
				WriteF64(rec[112+dim*8:120+dim*8], d.Scale[dim], LittleEndian)
			}
		}
		if d.HasOffset() {
			for dim := 0; dim < 3; dim++ {
				WriteF64(rec[136+dim*8:144+dim*8], d.Offset[dim], LittleEndian)
			}
		}
		WriteFixedString(rec[160:192], d.Description)
	}
	return buf
}

// LASzipVLR shadows the laszip.org/22204 VLR describing the LAZ
// compression layout (item kind/version/size triples per chunk).
type LASzipVLR struct {
	Compressor                byte
	CoderID                   uint16
	VersionMajor, VersionMinor byte
	VersionRevision           uint16
	Options                   uint32
	ChunkSize                 uint32
	NumberOfSpecialEVLRs      int64
	OffsetToSpecialEVLRs      int64
	Items                     []LASzipItemEntry
}

// LASzipItemEntry is one (kind, version) compression-item descriptor.
type LASzipItemEntry struct {
	Kind    uint16
	Version uint16
}

// ParseLASzipVLR decodes a laszip.org/22204 VLR payload.
func ParseLASzipVLR(data []byte) (LASzipVLR, error) {
	if len(data) < 34 {
		return LASzipVLR{}, &FormatError{Reason: "LASzip VLR shorter than fixed header"}
	}
	v := LASzipVLR{
		Compressor:           data[0],
		CoderID:              ReadU16(data[2:4], LittleEndian),
		VersionMajor:         data[4],
		VersionMinor:         data[5],
		VersionRevision:      ReadU16(data[6:8], LittleEndian),
		Options:              ReadU32(data[8:12], LittleEndian),
		ChunkSize:            ReadU32(data[12:16], LittleEndian),
		NumberOfSpecialEVLRs: int64(ReadU64(data[16:24], LittleEndian)),
		OffsetToSpecialEVLRs: int64(ReadU64(data[24:32], LittleEndian)),
	}
	numItems := int(ReadU16(data[32:34], LittleEndian))
	off := 34
	for i := 0; i < numItems; i++ {
		if off+4 > len(data) {
			return v, &FormatError{Reason: "LASzip VLR truncated item list"}
		}
		v.Items = append(v.Items, LASzipItemEntry{
			Kind:    ReadU16(data[off:off+2], LittleEndian),
			Version: ReadU16(data[off+2:off+4], LittleEndian),
		})
		off += 4
	}
	return v, nil
}

// SerializeLASzipVLR encodes v back into the laszip.org/22204 VLR
// payload ParseLASzipVLR reads, for the writer's compressed path.
func SerializeLASzipVLR(v LASzipVLR) []byte {
	data := make([]byte, 34+4*len(v.Items))
	data[0] = v.Compressor
	WriteU16(data[2:4], v.CoderID, LittleEndian)
	data[4] = v.VersionMajor
	data[5] = v.VersionMinor
	WriteU16(data[6:8], v.VersionRevision, LittleEndian)
	WriteU32(data[8:12], v.Options, LittleEndian)
	WriteU32(data[12:16], v.ChunkSize, LittleEndian)
	WriteU64(data[16:24], uint64(v.NumberOfSpecialEVLRs), LittleEndian)
	WriteU64(data[24:32], uint64(v.OffsetToSpecialEVLRs), LittleEndian)
	WriteU16(data[32:34], uint16(len(v.Items)), LittleEndian)
	off := 34
	for _, it := range v.Items {
		WriteU16(data[off:off+2], it.Kind, LittleEndian)
		WriteU16(data[off+2:off+4], it.Version, LittleEndian)
		off += 4
	}
	return data
}

// newLASzipVLRRecord wraps a serialized LASzipVLR payload in the VLR
// envelope the header/VLR list expects, keyed the same
// (UserID, RecordID) pair indexVLRs looks for.
func newLASzipVLRRecord(v LASzipVLR) VLR {
	return VLR{
		UserID:      "laszip encoded",
		RecordID:    vlrRecordIDLASzip,
		Data:        SerializeLASzipVLR(v),
		Description: "http://laszip.org",
	}
}

// lasZipItemKind maps a schema ItemKind to the real LASzip item type
// id, for descriptive fidelity in the emitted VLR (decoding here never
// dispatches per item — the chunk codec treats an encoded record as
// one opaque blob — so this table only documents compatibility).
func lasZipItemKind(k ItemKind) uint16 {
	switch k {
	case ItemPoint10:
		return 6
	case ItemGPSTime11:
		return 7
	case ItemRGB12:
		return 8
	case ItemWavepacket13:
		return 9
	case ItemPoint14:
		return 10
	case ItemRGB14:
		return 11
	case ItemRGBNIR14:
		return 12
	case ItemByte14:
		return 14
	default: // ItemByte
		return 0
	}
}

// LASTilingVLR shadows LAStools/10 (COPC-adjacent per-tile bookkeeping).
type LASTilingVLR struct {
	Level, LevelIndex, Implicit uint32
	MinX, MaxX, MinY, MaxY float32
}

// LASOriginalVLR shadows LAStools/4099 (original header snapshot
// preserved by `-keep_lastiling`-style reprocessing workflows).
type LASOriginalVLR struct {
	NumberOfPointRecords uint64
	PointDataRecordLength uint16
	MinX, MaxX, MinY, MaxY, MinZ, MaxZ float64
}

// PTSProvenanceVLR and PTXProvenanceVLR restore the provenance fields
// that the legacy PTS/PTX text readers attach to a file when no native
// VLR framing exists in the source, grounded on
// original_source/LASlib/src/lasreader_txt.cpp's header synthesis.
type PTSProvenanceVLR struct {
	SourcePath string
	ColumnSpec string
}

type PTXProvenanceVLR struct {
	SourcePath string
	Pose       [16]float64 // row-major 4x4 transform, identity if absent
}
