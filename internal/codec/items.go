// Package codec implements the item-level encode/decode routines the
// public pkg/las.PointCodec facade is built on: fixed-width binary
// layouts for each PointSchema item kind, grounded on
// original_source/LASlib/src/lasreaditemcompressed*.cpp's uncompressed
// item layouts and on the teacher's field-walking decode loop style
// (_examples/beetlebugorg-s57/internal/parser/parser.go).
package codec

import "github.com/go-laslib/laslib/pkg/las"

// DecodePoint10 unpacks a 20-byte legacy point record into p. p.X/Y/Z,
// Intensity and the legacy flag/classification/scan-angle fields are
// populated; p.Extended is left false.
func DecodePoint10(b []byte, p *las.Point) {
	p.X = int32(las.ReadU32(b[0:4], las.LittleEndian))
	p.Y = int32(las.ReadU32(b[4:8], las.LittleEndian))
	p.Z = int32(las.ReadU32(b[8:12], las.LittleEndian))
	p.Intensity = las.ReadU16(b[12:14], las.LittleEndian)

	flags := b[14]
	p.ReturnNumber = flags & 0x07
	p.NumberOfReturns = (flags >> 3) & 0x07
	p.ScanDirection = (flags >> 6) & 0x01
	p.EdgeOfFlightLine = (flags >> 7) & 0x01

	cls := b[15]
	p.Classification = cls & 0x1F
	p.Synthetic = cls&0x20 != 0
	p.KeyPoint = cls&0x40 != 0
	p.Withheld = cls&0x80 != 0

	p.ScanAngleRank = int8(b[16])
	p.UserData = b[17]
	p.PointSourceID = las.ReadU16(b[18:20], las.LittleEndian)
	p.Extended = false
}

// EncodePoint10 is the inverse of DecodePoint10, reading from the
// legacy view (callers must have called p.SyncLegacyFromExtended first
// if p.Extended is true and authoritative).
func EncodePoint10(b []byte, p *las.Point) {
	las.WriteU32(b[0:4], uint32(p.X), las.LittleEndian)
	las.WriteU32(b[4:8], uint32(p.Y), las.LittleEndian)
	las.WriteU32(b[8:12], uint32(p.Z), las.LittleEndian)
	las.WriteU16(b[12:14], p.Intensity, las.LittleEndian)

	flags := (p.ReturnNumber & 0x07) | ((p.NumberOfReturns & 0x07) << 3) |
		((p.ScanDirection & 0x01) << 6) | ((p.EdgeOfFlightLine & 0x01) << 7)
	b[14] = flags

	cls := p.Classification & 0x1F
	if p.Synthetic {
		cls |= 0x20
	}
	if p.KeyPoint {
		cls |= 0x40
	}
	if p.Withheld {
		cls |= 0x80
	}
	b[15] = cls

	b[16] = byte(p.ScanAngleRank)
	b[17] = p.UserData
	las.WriteU16(b[18:20], p.PointSourceID, las.LittleEndian)
}

// DecodePoint14 unpacks a 30-byte extended point record into p.
func DecodePoint14(b []byte, p *las.Point) {
	p.X = int32(las.ReadU32(b[0:4], las.LittleEndian))
	p.Y = int32(las.ReadU32(b[4:8], las.LittleEndian))
	p.Z = int32(las.ReadU32(b[8:12], las.LittleEndian))
	p.Intensity = las.ReadU16(b[12:14], las.LittleEndian)

	rnnr := b[14]
	p.ExtReturnNumber = rnnr & 0x0F
	p.ExtNumberOfReturns = (rnnr >> 4) & 0x0F

	flags := b[15]
	p.ExtClassificationFlags = flags & 0x0F
	p.ExtScannerChannel = (flags >> 4) & 0x03
	p.ScanDirection = (flags >> 6) & 0x01
	p.EdgeOfFlightLine = (flags >> 7) & 0x01

	p.ExtClassification = b[16]
	p.UserData = b[17]
	p.ExtScanAngle = int16(las.ReadU16(b[18:20], las.LittleEndian))
	p.PointSourceID = las.ReadU16(b[20:22], las.LittleEndian)
	p.GPSTime = las.ReadF64(b[22:30], las.LittleEndian)
	p.Extended = true
}

// EncodePoint14 is the inverse of DecodePoint14.
func EncodePoint14(b []byte, p *las.Point) {
	las.WriteU32(b[0:4], uint32(p.X), las.LittleEndian)
	las.WriteU32(b[4:8], uint32(p.Y), las.LittleEndian)
	las.WriteU32(b[8:12], uint32(p.Z), las.LittleEndian)
	las.WriteU16(b[12:14], p.Intensity, las.LittleEndian)

	b[14] = (p.ExtReturnNumber & 0x0F) | ((p.ExtNumberOfReturns & 0x0F) << 4)
	b[15] = (p.ExtClassificationFlags & 0x0F) | ((p.ExtScannerChannel & 0x03) << 4) |
		((p.ScanDirection & 0x01) << 6) | ((p.EdgeOfFlightLine & 0x01) << 7)

	b[16] = p.ExtClassification
	b[17] = p.UserData
	las.WriteU16(b[18:20], uint16(p.ExtScanAngle), las.LittleEndian)
	las.WriteU16(b[20:22], p.PointSourceID, las.LittleEndian)
	las.WriteF64(b[22:30], p.GPSTime, las.LittleEndian)
}

func DecodeGPSTime(b []byte, p *las.Point) { p.GPSTime = las.ReadF64(b[0:8], las.LittleEndian) }
func EncodeGPSTime(b []byte, p *las.Point) { las.WriteF64(b[0:8], p.GPSTime, las.LittleEndian) }

func DecodeRGB(b []byte, p *las.Point) {
	p.RGB[0] = las.ReadU16(b[0:2], las.LittleEndian)
	p.RGB[1] = las.ReadU16(b[2:4], las.LittleEndian)
	p.RGB[2] = las.ReadU16(b[4:6], las.LittleEndian)
}

func EncodeRGB(b []byte, p *las.Point) {
	las.WriteU16(b[0:2], p.RGB[0], las.LittleEndian)
	las.WriteU16(b[2:4], p.RGB[1], las.LittleEndian)
	las.WriteU16(b[4:6], p.RGB[2], las.LittleEndian)
}

func DecodeRGBNIR(b []byte, p *las.Point) {
	DecodeRGB(b[0:6], p)
	p.NIR = las.ReadU16(b[6:8], las.LittleEndian)
}

func EncodeRGBNIR(b []byte, p *las.Point) {
	EncodeRGB(b[0:6], p)
	las.WriteU16(b[6:8], p.NIR, las.LittleEndian)
}

func DecodeWavepacket(b []byte, p *las.Point) {
	w := &las.WavepacketRecord{
		Index:    b[0],
		Offset:   las.ReadU64(b[1:9], las.LittleEndian),
		Size:     las.ReadU32(b[9:13], las.LittleEndian),
		Location: las.ReadF32(b[13:17], las.LittleEndian),
		Xt:       las.ReadF32(b[17:21], las.LittleEndian),
		Yt:       las.ReadF32(b[21:25], las.LittleEndian),
		Zt:       las.ReadF32(b[25:29], las.LittleEndian),
	}
	p.Wavepacket = w
}

func EncodeWavepacket(b []byte, p *las.Point) {
	w := p.Wavepacket
	if w == nil {
		w = &las.WavepacketRecord{}
	}
	b[0] = w.Index
	las.WriteU64(b[1:9], w.Offset, las.LittleEndian)
	las.WriteU32(b[9:13], w.Size, las.LittleEndian)
	las.WriteF32(b[13:17], w.Location, las.LittleEndian)
	las.WriteF32(b[17:21], w.Xt, las.LittleEndian)
	las.WriteF32(b[21:25], w.Yt, las.LittleEndian)
	las.WriteF32(b[25:29], w.Zt, las.LittleEndian)
}

func DecodeExtraBytes(b []byte, p *las.Point) { p.ExtraBytes = append([]byte(nil), b...) }

func EncodeExtraBytes(b []byte, p *las.Point) {
	n := copy(b, p.ExtraBytes)
	for ; n < len(b); n++ {
		b[n] = 0
	}
}
