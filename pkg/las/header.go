package las

import "fmt"

// Header is the in-memory form of the LAS public header block plus its
// attached VLR/EVLR lists and the typed shadow values this package
// decodes eagerly from them (GeoKeys, extra bytes, LASzip).
type Header struct {
	FileSignature            string
	FileSourceID              uint16
	GlobalEncoding            uint16
	ProjectID                 [16]byte // GUID, left opaque
	VersionMajor, VersionMinor byte
	SystemIdentifier          string
	GeneratingSoftware        string
	FileCreationDayOfYear     uint16
	FileCreationYear          uint16
	HeaderSize                uint16
	OffsetToPointData         uint32
	NumberOfVLRs              uint32
	PointDataFormat           byte
	PointDataRecordLength     uint16
	LegacyNumberOfPointRecords uint32
	LegacyNumberOfPointsByReturn [5]uint32
	Quantizer                 Quantizer
	MaxX, MinX, MaxY, MinY, MaxZ, MinZ float64

	// LAS 1.3+
	StartOfWaveformDataPacketRecord uint64
	// LAS 1.4+
	StartOfFirstEVLR   uint64
	NumberOfEVLRs      uint32
	NumberOfPointRecords uint64
	NumberOfPointsByReturn [15]uint64

	VLRs  []VLR
	EVLRs []VLR

	Attributer *Attributer

	// Typed shadow values. GeoKeys and LASzip are populated from
	// VLRs/EVLRs when present. LASTiling and LASOriginal are not filled
	// in from a file's VLRs; they stay nil unless a caller sets them.
	// PTSProvenance and PTXProvenance are set by the text reader.
	GeoKeys        *GeoKeysVLR
	LASzip         *LASzipVLR
	LASTiling      *LASTilingVLR
	LASOriginal    *LASOriginalVLR
	PTSProvenance  *PTSProvenanceVLR
	PTXProvenance  *PTXProvenanceVLR
}

// Schema returns this header's point schema, derived from
// PointDataFormat and the extra bytes width implied by
// PointDataRecordLength.
func (h *Header) Schema() (PointSchema, error) {
	base, err := SchemaForPointFormat(h.PointDataFormat, 0)
	if err != nil {
		return PointSchema{}, err
	}
	extra := int(h.PointDataRecordLength) - base.RecordLength()
	if extra < 0 {
		return PointSchema{}, &FormatError{Reason: fmt.Sprintf(
			"point data record length %d shorter than format %d requires (%d)",
			h.PointDataRecordLength, h.PointDataFormat, base.RecordLength())}
	}
	return SchemaForPointFormat(h.PointDataFormat, extra)
}

// PointCount returns the authoritative point count: the LAS 1.4
// 64-bit field when the header is new enough to carry it and it is
// non-zero, else the legacy 32-bit field (spec §4, "legacy count wins
// only when the extended count is absent").
func (h *Header) PointCount() uint64 {
	if h.VersionMinor >= 4 && h.NumberOfPointRecords != 0 {
		return h.NumberOfPointRecords
	}
	return uint64(h.LegacyNumberOfPointRecords)
}

// indexVLRs scans h.VLRs/h.EVLRs and populates the typed shadow
// fields. Called by the LAS reader after header + VLR parsing.
func (h *Header) indexVLRs() error {
	index := func(v VLR) error {
		switch {
		case v.UserID == vlrUserIDLASF_Projection && v.RecordID == vlrRecordIDGeoKeys:
			g, err := ParseGeoKeysVLR(v.Data)
			if err != nil {
				return err
			}
			h.GeoKeys = &g
		case v.UserID == vlrUserIDLASF_Spec && v.RecordID == vlrRecordIDExtraBytes:
			eb, err := ParseExtraBytesVLR(v.Data)
			if err != nil {
				return err
			}
			a := &Attributer{Descriptors: eb.Descriptors}
			a.Rebuild()
			h.Attributer = a
		case v.UserID == "laszip encoded" && v.RecordID == vlrRecordIDLASzip:
			lz, err := ParseLASzipVLR(v.Data)
			if err != nil {
				return err
			}
			h.LASzip = &lz
		}
		return nil
	}
	for _, v := range h.VLRs {
		if err := index(v); err != nil {
			return err
		}
	}
	for _, v := range h.EVLRs {
		if err := index(v); err != nil {
			return err
		}
	}
	return nil
}

// DefaultHeader returns a LAS 1.4, point format 6 header with 0.001
// scale factors, zero offsets and no VLRs, the baseline a Writer starts from absent
// explicit WriterOptions overrides.
func DefaultHeader() *Header {
	return &Header{
		FileSignature:  "LASF",
		VersionMajor:   1,
		VersionMinor:   4,
		HeaderSize:     375,
		PointDataFormat: 6,
		PointDataRecordLength: 30,
		Quantizer:      NewQuantizer(0.001, 0.001, 0.001, 0, 0, 0),
	}
}
