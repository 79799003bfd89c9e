package las

import "math"

// Quantizer is the per-axis integer<->double affine mapping declared in
// the header: x = ScaleX*X + OffsetX (and similarly y/z).
//
// ZFromAttribute, when >= 0, names an index into the Attributer's
// descriptor list from which Z should be recovered instead of from the
// raw integer Z field; this is a single file-wide setting.
type Quantizer struct {
	ScaleX, ScaleY, ScaleZ    float64
	OffsetX, OffsetY, OffsetZ float64
	ZFromAttribute            int
}

// NewQuantizer returns a Quantizer with the given scale/offset and no
// Z-from-attribute source.
func NewQuantizer(scaleX, scaleY, scaleZ, offsetX, offsetY, offsetZ float64) Quantizer {
	return Quantizer{
		ScaleX: scaleX, ScaleY: scaleY, ScaleZ: scaleZ,
		OffsetX: offsetX, OffsetY: offsetY, OffsetZ: offsetZ,
		ZFromAttribute: -1,
	}
}

// roundHalfAwayFromZero rounds to the nearest integer, ties away from
// zero. math.Round already implements exactly this for both positive
// and negative inputs (it is not "round half to even"), so it is used
// directly rather than hand-rolled — do not replace this with
// math.RoundToEven, which would violate the spec's rounding rule.
func roundHalfAwayFromZero(v float64) float64 {
	return math.Round(v)
}

// ToX/ToY/ToZ convert a raw quantized integer to its real-world double.
func (q Quantizer) ToX(raw int32) float64 { return float64(raw)*q.ScaleX + q.OffsetX }
func (q Quantizer) ToY(raw int32) float64 { return float64(raw)*q.ScaleY + q.OffsetY }
func (q Quantizer) ToZ(raw int32) float64 { return float64(raw)*q.ScaleZ + q.OffsetZ }

// FromX/FromY/FromZ convert a real-world double back to its quantized
// integer, rounding half-away-from-zero. The result is not clamped to
// int32 range here — callers that need overflow detection (the
// TransformChain) compare against math.MinInt32/MaxInt32 themselves.
func (q Quantizer) FromX(real float64) int64 { return int64(roundHalfAwayFromZero((real - q.OffsetX) / q.ScaleX)) }
func (q Quantizer) FromY(real float64) int64 { return int64(roundHalfAwayFromZero((real - q.OffsetY) / q.ScaleY)) }
func (q Quantizer) FromZ(real float64) int64 { return int64(roundHalfAwayFromZero((real - q.OffsetZ) / q.ScaleZ)) }

// ClampInt32 saturates a wide integer to the representable int32 range,
// reporting whether saturation occurred. Shared by the quantizer and by
// TransformChain's coordinate operations.
func ClampInt32(v int64) (int32, bool) {
	if v > math.MaxInt32 {
		return math.MaxInt32, true
	}
	if v < math.MinInt32 {
		return math.MinInt32, true
	}
	return int32(v), false
}
