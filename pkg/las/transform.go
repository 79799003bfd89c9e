package las

import "fmt"

// CoordinateMask names which of {X,Y,Z,intensity} an Operation can
// mutate; the TransformChain publishes the OR of every installed
// operation's mask so a selective-decompression reader can skip
// decoding sub-streams nothing downstream touches (spec §4.4).
type CoordinateMask uint8

const (
	AffectsX CoordinateMask = 1 << iota
	AffectsY
	AffectsZ
	AffectsIntensity
)

// Operation is one TransformChain mutator.
type Operation interface {
	Name() string
	Mask() CoordinateMask
	Apply(p *Point, q Quantizer)
	OverflowCount() uint64
}

// TransformChain is an ordered vector of Operation, applied to every
// surviving point in order (spec §4.4).
type TransformChain struct {
	ops []Operation
}

// Add appends an operation.
func (c *TransformChain) Add(op Operation) { c.ops = append(c.ops, op) }

// Apply runs every operation against p in order.
func (c *TransformChain) Apply(p *Point, q Quantizer) {
	for _, op := range c.ops {
		op.Apply(p, q)
	}
}

// Mask returns the OR of every operation's CoordinateMask.
func (c *TransformChain) Mask() CoordinateMask {
	var m CoordinateMask
	for _, op := range c.ops {
		m |= op.Mask()
	}
	return m
}

// OverflowCounts returns a name->count map of each operation's
// saturation counter, for end-of-run reporting (spec §7's "operation
// saturation... counted per-operation, surfaced at close time").
func (c *TransformChain) OverflowCounts() map[string]uint64 {
	out := make(map[string]uint64, len(c.ops))
	for _, op := range c.ops {
		out[op.Name()] = op.OverflowCount()
	}
	return out
}

// baseOp gives every concrete operation its overflow counter plumbing
// so individual operation types only implement Name/Mask/Apply.
type baseOp struct {
	overflow uint64
}

func (b *baseOp) OverflowCount() uint64 { return b.overflow }

// --- Coordinate translate/scale/clamp ---

type translateOp struct {
	baseOp
	axis  byte
	delta float64
}

func (o *translateOp) Name() string         { return fmt.Sprintf("translate_%c", o.axis) }
func (o *translateOp) Mask() CoordinateMask { return axisMask(o.axis) }
func (o *translateOp) Apply(p *Point, q Quantizer) {
	applyAxis(p, q, o.axis, func(v float64) float64 { return v + o.delta }, &o.overflow)
}

// NewTranslateXOp, Y, Z build `-translate_x/y/z` operations.
func NewTranslateXOp(delta float64) Operation { return &translateOp{axis: 'x', delta: delta} }
func NewTranslateYOp(delta float64) Operation { return &translateOp{axis: 'y', delta: delta} }
func NewTranslateZOp(delta float64) Operation { return &translateOp{axis: 'z', delta: delta} }

type scaleOp struct {
	baseOp
	axis   byte
	factor float64
}

func (o *scaleOp) Name() string         { return fmt.Sprintf("scale_%c", o.axis) }
func (o *scaleOp) Mask() CoordinateMask { return axisMask(o.axis) }
func (o *scaleOp) Apply(p *Point, q Quantizer) {
	applyAxis(p, q, o.axis, func(v float64) float64 { return v * o.factor }, &o.overflow)
}

// NewScaleXOp, Y, Z build `-scale_x/y/z` operations.
func NewScaleXOp(factor float64) Operation { return &scaleOp{axis: 'x', factor: factor} }
func NewScaleYOp(factor float64) Operation { return &scaleOp{axis: 'y', factor: factor} }
func NewScaleZOp(factor float64) Operation { return &scaleOp{axis: 'z', factor: factor} }

type clampOp struct {
	baseOp
	axis     byte
	min, max float64
}

func (o *clampOp) Name() string         { return fmt.Sprintf("clamp_%c", o.axis) }
func (o *clampOp) Mask() CoordinateMask { return axisMask(o.axis) }
func (o *clampOp) Apply(p *Point, q Quantizer) {
	applyAxis(p, q, o.axis, func(v float64) float64 {
		if v < o.min {
			return o.min
		}
		if v > o.max {
			return o.max
		}
		return v
	}, &o.overflow)
}

// NewClampXOp, Y, Z build `-clamp_x/y/z` operations.
func NewClampXOp(min, max float64) Operation { return &clampOp{axis: 'x', min: min, max: max} }
func NewClampYOp(min, max float64) Operation { return &clampOp{axis: 'y', min: min, max: max} }
func NewClampZOp(min, max float64) Operation { return &clampOp{axis: 'z', min: min, max: max} }

func axisMask(axis byte) CoordinateMask {
	switch axis {
	case 'x':
		return AffectsX
	case 'y':
		return AffectsY
	case 'z':
		return AffectsZ
	default:
		return 0
	}
}

func applyAxis(p *Point, q Quantizer, axis byte, f func(float64) float64, overflow *uint64) {
	var overflowed bool
	switch axis {
	case 'x':
		overflowed = p.SetX(f(p.GetX(q)), q)
	case 'y':
		overflowed = p.SetY(f(p.GetY(q)), q)
	case 'z':
		overflowed = p.SetZ(f(p.GetZ(q, nil)), q)
	}
	if overflowed {
		*overflow++
	}
}

// --- Intensity ---

type scaleIntensityOp struct {
	baseOp
	factor float64
}

func (o *scaleIntensityOp) Name() string         { return "scale_intensity" }
func (o *scaleIntensityOp) Mask() CoordinateMask { return AffectsIntensity }
func (o *scaleIntensityOp) Apply(p *Point, q Quantizer) {
	v := float64(p.Intensity) * o.factor
	if v > 65535 {
		v = 65535
		o.overflow++
	}
	if v < 0 {
		v = 0
		o.overflow++
	}
	p.Intensity = uint16(v)
}

// NewScaleIntensityOp builds `-scale_intensity factor`.
func NewScaleIntensityOp(factor float64) Operation { return &scaleIntensityOp{factor: factor} }

type translateIntensityOp struct {
	baseOp
	delta float64
}

func (o *translateIntensityOp) Name() string         { return "translate_intensity" }
func (o *translateIntensityOp) Mask() CoordinateMask { return AffectsIntensity }
func (o *translateIntensityOp) Apply(p *Point, q Quantizer) {
	v := float64(p.Intensity) + o.delta
	if v > 65535 {
		v = 65535
		o.overflow++
	}
	if v < 0 {
		v = 0
		o.overflow++
	}
	p.Intensity = uint16(v)
}

// NewTranslateIntensityOp builds `-translate_intensity delta`.
func NewTranslateIntensityOp(delta float64) Operation { return &translateIntensityOp{delta: delta} }

// --- Classification / set / change ---

type setClassificationOp struct {
	baseOp
	value uint8
}

func (o *setClassificationOp) Name() string             { return "classify_as" }
func (o *setClassificationOp) Mask() CoordinateMask      { return 0 }
func (o *setClassificationOp) Apply(p *Point, q Quantizer) { p.SetClassification(o.value) }

// NewClassifyAsOp builds `-classify_as value`.
func NewClassifyAsOp(value uint8) Operation { return &setClassificationOp{value: value} }

type changeClassificationOp struct {
	baseOp
	from, to uint8
}

func (o *changeClassificationOp) Name() string        { return "change_classification_from_to" }
func (o *changeClassificationOp) Mask() CoordinateMask { return 0 }
func (o *changeClassificationOp) Apply(p *Point, q Quantizer) {
	if p.GetClassification() == o.from {
		p.SetClassification(o.to)
	}
}

// NewChangeClassificationFromToOp builds `-change_classification_from_to from to`.
func NewChangeClassificationFromToOp(from, to uint8) Operation {
	return &changeClassificationOp{from: from, to: to}
}

// --- User data / point source ---

type setUserDataOp struct {
	baseOp
	value uint8
}

func (o *setUserDataOp) Name() string             { return "set_user_data" }
func (o *setUserDataOp) Mask() CoordinateMask      { return 0 }
func (o *setUserDataOp) Apply(p *Point, q Quantizer) { p.UserData = o.value }

// NewSetUserDataOp builds `-set_user_data value`.
func NewSetUserDataOp(value uint8) Operation { return &setUserDataOp{value: value} }

type changeUserDataOp struct {
	baseOp
	from, to uint8
}

func (o *changeUserDataOp) Name() string        { return "change_user_data_from_to" }
func (o *changeUserDataOp) Mask() CoordinateMask { return 0 }
func (o *changeUserDataOp) Apply(p *Point, q Quantizer) {
	if p.UserData == o.from {
		p.UserData = o.to
	}
}

// NewChangeUserDataFromToOp builds `-change_user_data_from_to from to`.
func NewChangeUserDataFromToOp(from, to uint8) Operation {
	return &changeUserDataOp{from: from, to: to}
}

type copyUserDataIntoPointSourceOp struct{ baseOp }

func (o *copyUserDataIntoPointSourceOp) Name() string        { return "copy_user_data_into_point_source" }
func (o *copyUserDataIntoPointSourceOp) Mask() CoordinateMask { return 0 }
func (o *copyUserDataIntoPointSourceOp) Apply(p *Point, q Quantizer) {
	p.PointSourceID = uint16(p.UserData)
}

// NewCopyUserDataIntoPointSourceOp builds `-copy_user_data_into_point_source`.
func NewCopyUserDataIntoPointSourceOp() Operation { return &copyUserDataIntoPointSourceOp{} }

type binZIntoPointSourceOp struct {
	baseOp
	binSize float64
}

func (o *binZIntoPointSourceOp) Name() string        { return "bin_Z_into_point_source" }
func (o *binZIntoPointSourceOp) Mask() CoordinateMask { return 0 }
func (o *binZIntoPointSourceOp) Apply(p *Point, q Quantizer) {
	bin := p.GetZ(q, nil) / o.binSize
	p.PointSourceID = saturateU16(bin, &o.overflow)
}

// NewBinZIntoPointSourceOp builds `-bin_Z_into_point_source bin_size`.
func NewBinZIntoPointSourceOp(binSize float64) Operation {
	return &binZIntoPointSourceOp{binSize: binSize}
}

type binAbsScanAngleIntoPointSourceOp struct {
	baseOp
	binSize float64
}

func (o *binAbsScanAngleIntoPointSourceOp) Name() string        { return "bin_abs_scan_angle_into_point_source" }
func (o *binAbsScanAngleIntoPointSourceOp) Mask() CoordinateMask { return 0 }
func (o *binAbsScanAngleIntoPointSourceOp) Apply(p *Point, q Quantizer) {
	angle := p.GetScanAngle()
	if angle < 0 {
		angle = -angle
	}
	bin := angle / o.binSize
	p.PointSourceID = saturateU16(bin, &o.overflow)
}

// NewBinAbsScanAngleIntoPointSourceOp builds `-bin_abs_scan_angle_into_point_source bin_size`.
func NewBinAbsScanAngleIntoPointSourceOp(binSize float64) Operation {
	return &binAbsScanAngleIntoPointSourceOp{binSize: binSize}
}

func saturateU16(v float64, overflow *uint64) uint16 {
	if v > 65535 {
		*overflow++
		return 65535
	}
	if v < 0 {
		*overflow++
		return 0
	}
	return uint16(v)
}

// --- Returns ---

type setReturnsOp struct {
	baseOp
	returnNumber, numberOfReturns uint8
}

func (o *setReturnsOp) Name() string        { return "set_return_number" }
func (o *setReturnsOp) Mask() CoordinateMask { return 0 }
func (o *setReturnsOp) Apply(p *Point, q Quantizer) {
	p.SetReturns(o.returnNumber, o.numberOfReturns)
}

// NewSetReturnsOp builds `-set_return_number n` / `-set_number_of_returns n`
// combined, matching the Point accessor's joint semantics.
func NewSetReturnsOp(returnNumber, numberOfReturns uint8) Operation {
	return &setReturnsOp{returnNumber: returnNumber, numberOfReturns: numberOfReturns}
}

type repairZeroReturnsOp struct{ baseOp }

func (o *repairZeroReturnsOp) Name() string        { return "repair_zero_returns" }
func (o *repairZeroReturnsOp) Mask() CoordinateMask { return 0 }
func (o *repairZeroReturnsOp) Apply(p *Point, q Quantizer) {
	rn, nor := p.GetReturnNumber(), p.GetNumberOfReturns()
	if rn == 0 {
		rn = 1
	}
	if nor == 0 {
		nor = 1
	}
	p.SetReturns(rn, nor)
}

// NewRepairZeroReturnsOp builds `-repair_zero_returns`.
func NewRepairZeroReturnsOp() Operation { return &repairZeroReturnsOp{} }

// --- GPS time ---

const (
	gpsWeekSeconds       = 604800.0
	gpsAdjustedOffset    = 1000000000.0
)

type translateGPSTimeOp struct {
	baseOp
	delta float64
}

func (o *translateGPSTimeOp) Name() string        { return "translate_gps_time" }
func (o *translateGPSTimeOp) Mask() CoordinateMask { return 0 }
func (o *translateGPSTimeOp) Apply(p *Point, q Quantizer) { p.GPSTime += o.delta }

// NewTranslateGPSTimeOp builds `-translate_gps_time delta`.
func NewTranslateGPSTimeOp(delta float64) Operation { return &translateGPSTimeOp{delta: delta} }

type adjustedToWeekOp struct{ baseOp }

func (o *adjustedToWeekOp) Name() string        { return "adjusted_to_week" }
func (o *adjustedToWeekOp) Mask() CoordinateMask { return 0 }
func (o *adjustedToWeekOp) Apply(p *Point, q Quantizer) {
	adjusted := p.GPSTime + gpsAdjustedOffset
	p.GPSTime = adjusted - float64(int64(adjusted/gpsWeekSeconds))*gpsWeekSeconds
}

// NewAdjustedToWeekOp builds `-adjusted_to_week`.
func NewAdjustedToWeekOp() Operation { return &adjustedToWeekOp{} }

type weekToAdjustedOp struct {
	baseOp
	week int
}

func (o *weekToAdjustedOp) Name() string        { return "week_to_adjusted" }
func (o *weekToAdjustedOp) Mask() CoordinateMask { return 0 }
func (o *weekToAdjustedOp) Apply(p *Point, q Quantizer) {
	p.GPSTime = float64(o.week)*gpsWeekSeconds + p.GPSTime - gpsAdjustedOffset
}

// NewWeekToAdjustedOp builds `-week_to_adjusted week`.
func NewWeekToAdjustedOp(week int) Operation { return &weekToAdjustedOp{week: week} }

// --- RGB ---

type scaleRGBOp struct {
	baseOp
	up bool // true: U8->U16 (x256); false: U16->U8 (/256)
}

func (o *scaleRGBOp) Name() string {
	if o.up {
		return "scale_rgb_up"
	}
	return "scale_rgb_down"
}
func (o *scaleRGBOp) Mask() CoordinateMask { return 0 }
func (o *scaleRGBOp) Apply(p *Point, q Quantizer) {
	for i := range p.RGB {
		if o.up {
			p.RGB[i] = p.RGB[i] * 256
		} else {
			p.RGB[i] = p.RGB[i] / 256
		}
	}
}

// NewScaleRGBUpOp / NewScaleRGBDownOp build `-scale_rgb_up` /
// `-scale_rgb_down`.
func NewScaleRGBUpOp() Operation   { return &scaleRGBOp{up: true} }
func NewScaleRGBDownOp() Operation { return &scaleRGBOp{up: false} }

type switchRGBOp struct {
	baseOp
	a, b int
}

func (o *switchRGBOp) Name() string        { return fmt.Sprintf("switch_%c_%c", "xyz"[o.a], "xyz"[o.b]) }
func (o *switchRGBOp) Mask() CoordinateMask { return 0 }
func (o *switchRGBOp) Apply(p *Point, q Quantizer) {
	p.RGB[o.a], p.RGB[o.b] = p.RGB[o.b], p.RGB[o.a]
}

// NewSwitchXYOp, NewSwitchXZOp, NewSwitchYZOp build `-switch_x_y`,
// `-switch_x_z`, `-switch_y_z` (spec §4.4 RGB channel swaps).
func NewSwitchXYOp() Operation { return &switchRGBOp{a: 0, b: 1} }
func NewSwitchXZOp() Operation { return &switchRGBOp{a: 0, b: 2} }
func NewSwitchYZOp() Operation { return &switchRGBOp{a: 1, b: 2} }

type flipWaveformDirectionOp struct{ baseOp }

func (o *flipWaveformDirectionOp) Name() string        { return "flip_waveform_direction" }
func (o *flipWaveformDirectionOp) Mask() CoordinateMask { return 0 }
func (o *flipWaveformDirectionOp) Apply(p *Point, q Quantizer) {
	if p.Wavepacket != nil {
		p.Wavepacket.Xt = -p.Wavepacket.Xt
		p.Wavepacket.Yt = -p.Wavepacket.Yt
		p.Wavepacket.Zt = -p.Wavepacket.Zt
	}
}

// NewFlipWaveformDirectionOp builds `-flip_waveform_direction`.
func NewFlipWaveformDirectionOp() Operation { return &flipWaveformDirectionOp{} }

// FilteredChain wraps a TransformChain so each operation only applies
// to points a FilterChain would keep, for `-transform_filtered`-style
// conditional application.
type FilteredChain struct {
	chain  *TransformChain
	filter *FilterChain
}

// NewFilteredChain builds a FilteredChain.
func NewFilteredChain(chain *TransformChain, filter *FilterChain) *FilteredChain {
	return &FilteredChain{chain: chain, filter: filter}
}

// Apply runs chain against p only if filter does not drop p.
func (f *FilteredChain) Apply(p *Point, q Quantizer) {
	if f.filter != nil && f.filter.Drop(p) {
		return
	}
	f.chain.Apply(p, q)
}
