package las

import "math"

// WavepacketRecord is the fixed 29-byte wavepacket pointer attached to
// a point (LAS >= 1.3).
type WavepacketRecord struct {
	Index    byte
	Offset   uint64
	Size     uint32
	Location float32
	Xt, Yt, Zt float32
}

// Point is the uniform in-memory point every concrete Reader produces
// and every Writer consumes. It carries both the legacy and the
// extended field sets directly as named fields — no field-pointer
// indirection, per spec §9's explicit instruction not to carry the
// original's "point[i] = &field" trick over.
type Point struct {
	X, Y, Z   int32
	Intensity uint16

	// Legacy flag block (point formats 0-5).
	ReturnNumber     uint8 // 3 bits
	NumberOfReturns  uint8 // 3 bits
	ScanDirection    uint8 // 1 bit
	EdgeOfFlightLine uint8 // 1 bit
	Classification   uint8 // 5 bits (0-31)
	Synthetic        bool
	KeyPoint         bool
	Withheld         bool
	ScanAngleRank    int8

	// Extended fields (point formats 6-10). These are authoritative
	// whenever the schema is extended; the legacy fields above become a
	// lossy view, kept in sync by SyncLegacyFromExtended/
	// SyncExtendedFromLegacy (the codec's Decode calls the former, and
	// Writer.WritePoint the latter for legacy-only points).
	Extended                 bool
	ExtReturnNumber          uint8 // 4 bits
	ExtNumberOfReturns       uint8 // 4 bits
	ExtClassificationFlags   uint8 // 4 bits: synthetic, keypoint, withheld, overlap
	ExtScannerChannel        uint8 // 2 bits
	ExtClassification        uint8 // 8 bits (0-255)
	ExtScanAngle             int16 // units of 0.006 degrees

	UserData     uint8
	PointSourceID uint16
	GPSTime      float64

	RGB [3]uint16
	NIR uint16

	Wavepacket *WavepacketRecord

	ExtraBytes []byte

	// Deleted is in-memory only and is never persisted in the point
	// record; it is how FilterChain/TransformChain-unaware consumers
	// (the stored-reader two-pass path) can mark a point as dropped
	// without shrinking a backing slice mid-iteration.
	Deleted bool
}

// Extended classification flag bits (spec §3: "4-bit flag set,
// including overlap as bit 3").
const (
	ExtFlagSynthetic = 1 << 0
	ExtFlagKeyPoint  = 1 << 1
	ExtFlagWithheld  = 1 << 2
	ExtFlagOverlap   = 1 << 3
)

// scanAngleUnit is the extended scan-angle quantization step (degrees
// per LSB), spec §3/§4.1.
const scanAngleUnit = 0.006

// GetClassification returns the classification value a caller should
// treat as authoritative: the extended field when the point carries
// extended fields (values >= 32 are only meaningful there), else the
// legacy 5-bit field.
func (p *Point) GetClassification() uint8 {
	if p.Extended {
		return p.ExtClassification
	}
	return p.Classification
}

// SetClassification sets classification on whichever side is
// authoritative, keeping the other side in sync per spec §3's
// "classification and extended_classification agree for values 0-31;
// for >=32 only the extended field is meaningful and the legacy value
// is zero" invariant.
func (p *Point) SetClassification(v uint8) {
	p.ExtClassification = v
	if v <= 31 {
		p.Classification = v
	} else {
		p.Classification = 0
	}
}

// GetReturnNumber/GetNumberOfReturns return the authoritative return
// counters for whichever side is populated.
func (p *Point) GetReturnNumber() uint8 {
	if p.Extended {
		return p.ExtReturnNumber
	}
	return p.ReturnNumber
}

func (p *Point) GetNumberOfReturns() uint8 {
	if p.Extended {
		return p.ExtNumberOfReturns
	}
	return p.NumberOfReturns
}

// SetReturns sets both return_number and number_of_returns, clamping
// return_number <= number_of_returns per the semantic invariant of
// spec §3 ("the codec enforces clamping on set, not on read").
func (p *Point) SetReturns(returnNumber, numberOfReturns uint8) {
	if returnNumber > numberOfReturns && numberOfReturns > 0 {
		returnNumber = numberOfReturns
	}
	if p.Extended {
		p.ExtReturnNumber = returnNumber
		p.ExtNumberOfReturns = numberOfReturns
		legacyRN, legacyNOR := ReturnsToLegacy(returnNumber, numberOfReturns)
		p.ReturnNumber, p.NumberOfReturns = legacyRN, legacyNOR
	} else {
		p.ReturnNumber = returnNumber
		p.NumberOfReturns = numberOfReturns
	}
}

// GetScanAngle returns the scan angle in degrees, from whichever side
// is authoritative.
func (p *Point) GetScanAngle() float64 {
	if p.Extended {
		return float64(p.ExtScanAngle) * scanAngleUnit
	}
	return float64(p.ScanAngleRank)
}

// SetScanAngle sets the scan angle in degrees on whichever side is
// authoritative, syncing the other.
func (p *Point) SetScanAngle(degrees float64) {
	if p.Extended {
		p.ExtScanAngle = quantizeScanAngle(degrees)
		p.ScanAngleRank = ScanAngleToLegacyRank(p.ExtScanAngle)
	} else {
		p.ScanAngleRank = clampI8(roundHalfAwayFromZero(degrees))
		p.ExtScanAngle = ScanAngleToExtended(p.ScanAngleRank)
	}
}

func quantizeScanAngle(degrees float64) int16 {
	v := roundHalfAwayFromZero(degrees / scanAngleUnit)
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

func clampI8(v float64) int8 {
	if v > 127 {
		return 127
	}
	if v < -128 {
		return -128
	}
	return int8(v)
}

// GetX/GetY/GetZ recover the real-world coordinates from the raw
// quantized fields via q. GetZ additionally honors Quantizer's
// Z-from-attribute configuration: when set, Z is recovered from the
// named extra-bytes attribute and the raw Z field is re-quantized from
// that value (spec §3).
func (p *Point) GetX(q Quantizer) float64 { return q.ToX(p.X) }
func (p *Point) GetY(q Quantizer) float64 { return q.ToY(p.Y) }

func (p *Point) GetZ(q Quantizer, a *Attributer) float64 {
	if q.ZFromAttribute >= 0 && a != nil && q.ZFromAttribute < len(a.Descriptors) {
		if z, err := a.ReadFloat(p.ExtraBytes, q.ZFromAttribute); err == nil {
			raw, overflow := ClampInt32(q.FromZ(z))
			_ = overflow
			p.Z = raw
			return z
		}
	}
	return q.ToZ(p.Z)
}

// SetX/SetY/SetZ quantize a real-world coordinate into the raw field,
// reporting whether the value overflowed the representable int32
// range (the TransformChain uses this to maintain its per-operation
// overflow counters; the codec ignores it since raw assignment is
// assumed pre-validated).
func (p *Point) SetX(real float64, q Quantizer) bool {
	raw, overflow := ClampInt32(q.FromX(real))
	p.X = raw
	return overflow
}

func (p *Point) SetY(real float64, q Quantizer) bool {
	raw, overflow := ClampInt32(q.FromY(real))
	p.Y = raw
	return overflow
}

func (p *Point) SetZ(real float64, q Quantizer) bool {
	raw, overflow := ClampInt32(q.FromZ(real))
	p.Z = raw
	return overflow
}

// SyncLegacyFromExtended recomputes every legacy-view field from the
// extended fields, per the §4.1 decode-time mapping rules. Called by
// the codec after decoding a POINT14 record.
func (p *Point) SyncLegacyFromExtended() {
	p.ReturnNumber, p.NumberOfReturns = ReturnsToLegacy(p.ExtReturnNumber, p.ExtNumberOfReturns)
	p.Classification = ClassificationToLegacy(p.ExtClassification)
	p.Synthetic = p.ExtClassificationFlags&ExtFlagSynthetic != 0
	p.KeyPoint = p.ExtClassificationFlags&ExtFlagKeyPoint != 0
	p.Withheld = p.ExtClassificationFlags&ExtFlagWithheld != 0
	p.ScanAngleRank = ScanAngleToLegacyRank(p.ExtScanAngle)
}

// SyncExtendedFromLegacy promotes the legacy fields into the extended
// ones, preserving any extended-only state (classification >= 32)
// already present. Writer.WritePoint calls it before encoding into an
// extended schema a point that was only ever populated on the legacy
// side; the codec's Encode does not.
func (p *Point) SyncExtendedFromLegacy() {
	p.ExtReturnNumber, p.ExtNumberOfReturns = ReturnsToExtended(p.ReturnNumber, p.NumberOfReturns)
	if p.ExtClassification < 32 {
		p.ExtClassification = p.Classification
	}
	var flags uint8
	if p.Synthetic {
		flags |= ExtFlagSynthetic
	}
	if p.KeyPoint {
		flags |= ExtFlagKeyPoint
	}
	if p.Withheld {
		flags |= ExtFlagWithheld
	}
	p.ExtClassificationFlags = (p.ExtClassificationFlags &^ 0x7) | flags
	p.ExtScanAngle = ScanAngleToExtended(p.ScanAngleRank)
}
