package las

import "fmt"

// ExtraBytesType is the 1-byte type code for an extra-bytes attribute,
// before dimension is folded in (spec §3).
type ExtraBytesType byte

const (
	EBTypeUndocumented ExtraBytesType = 0
	EBTypeU8           ExtraBytesType = 1
	EBTypeI8           ExtraBytesType = 2
	EBTypeU16          ExtraBytesType = 3
	EBTypeI16          ExtraBytesType = 4
	EBTypeU32          ExtraBytesType = 5
	EBTypeI32          ExtraBytesType = 6
	EBTypeU64          ExtraBytesType = 7
	EBTypeI64          ExtraBytesType = 8
	EBTypeF32          ExtraBytesType = 9
	EBTypeF64          ExtraBytesType = 10
)

// baseTypeSizes gives the byte width of one scalar of each base type.
var baseTypeSizes = map[ExtraBytesType]int{
	EBTypeU8: 1, EBTypeI8: 1,
	EBTypeU16: 2, EBTypeI16: 2,
	EBTypeU32: 4, EBTypeI32: 4,
	EBTypeU64: 8, EBTypeI64: 8,
	EBTypeF32: 4, EBTypeF64: 8,
}

// FlattenExtraBytesType folds a base type and dimension (1, 2 or 3)
// into the single on-disk data_type byte per spec §3:
// 10*(dim-1) + type + 1, with the "+1" because 0 means undocumented.
func FlattenExtraBytesType(base ExtraBytesType, dim int) byte {
	return byte(10*(dim-1) + int(base))
}

// SplitExtraBytesType is the inverse of FlattenExtraBytesType.
func SplitExtraBytesType(dataType byte) (base ExtraBytesType, dim int) {
	if dataType == 0 {
		return EBTypeUndocumented, 1
	}
	v := int(dataType) - 1
	dim = v/10 + 1
	base = ExtraBytesType(v%10 + 1)
	return base, dim
}

// ExtraBytesValue is a tagged union over the scalar kinds an extra-bytes
// no_data/min/max triple can hold — expressed as a Go struct with an
// active-kind tag (Kind mirrors ExtraBytesType) rather than the raw
// 24-byte union the original C++ uses, per spec §9's guidance to not
// carry pointer/union tricks over.
type ExtraBytesValue struct {
	Kind ExtraBytesType
	U    uint64
	I    int64
	F    float64
}

// ExtraBytesDescriptor describes one named extra-bytes attribute, as
// carried by the "LASF_Spec"/4 VLR (array of 192-byte structures).
type ExtraBytesDescriptor struct {
	Reserved    uint16
	DataType    byte
	Options     byte // bit0=no_data present, bit1=min present, bit2=max present, bit3=scale present, bit4=offset present
	Name        string
	Description string
	NoData      [3]ExtraBytesValue
	Min         [3]ExtraBytesValue
	Max         [3]ExtraBytesValue
	Scale       [3]float64
	Offset      [3]float64
}

// Dimension returns 1, 2 or 3 based on DataType.
func (d ExtraBytesDescriptor) Dimension() int {
	_, dim := SplitExtraBytesType(d.DataType)
	return dim
}

// Size returns the total byte width of this attribute (Dimension() *
// per-scalar width), or 0 for an undocumented/raw descriptor whose size
// comes from Options's "bytes" sub-field instead (options bit 5 family;
// not modeled here since no observed producer uses it).
func (d ExtraBytesDescriptor) Size() int {
	base, dim := SplitExtraBytesType(d.DataType)
	return baseTypeSizes[base] * dim
}

const (
	ebOptionNoData = 1 << 0
	ebOptionMin    = 1 << 1
	ebOptionMax    = 1 << 2
	ebOptionScale  = 1 << 3
	ebOptionOffset = 1 << 4
)

// HasNoData, HasMin, HasMax, HasScale, HasOffset report which optional
// per-dimension fields are populated, per the Options bitmask.
func (d ExtraBytesDescriptor) HasNoData() bool { return d.Options&ebOptionNoData != 0 }
func (d ExtraBytesDescriptor) HasMin() bool     { return d.Options&ebOptionMin != 0 }
func (d ExtraBytesDescriptor) HasMax() bool     { return d.Options&ebOptionMax != 0 }
func (d ExtraBytesDescriptor) HasScale() bool   { return d.Options&ebOptionScale != 0 }
func (d ExtraBytesDescriptor) HasOffset() bool  { return d.Options&ebOptionOffset != 0 }

// Attributer holds the ordered extra-bytes attribute descriptors for a
// file, plus the parallel byte-offset/size bookkeeping needed to locate
// each attribute inside a point's extra-bytes blob.
type Attributer struct {
	Descriptors []ExtraBytesDescriptor

	byteOffsets []int
	byteSizes   []int
}

// Rebuild recomputes byte offsets and sizes from Descriptors. Callers
// must call this after mutating Descriptors directly.
func (a *Attributer) Rebuild() {
	a.byteOffsets = make([]int, len(a.Descriptors))
	a.byteSizes = make([]int, len(a.Descriptors))
	offset := 0
	for i, d := range a.Descriptors {
		size := d.Size()
		a.byteOffsets[i] = offset
		a.byteSizes[i] = size
		offset += size
	}
}

// TotalSize returns the total extra-bytes blob size in bytes.
func (a *Attributer) TotalSize() int {
	total := 0
	for _, s := range a.byteSizes {
		total += s
	}
	return total
}

// Offset and Size return the byte offset/size of attribute i inside the
// extra-bytes blob. Rebuild must have been called since the last
// mutation of Descriptors.
func (a *Attributer) Offset(i int) int { return a.byteOffsets[i] }
func (a *Attributer) Size(i int) int   { return a.byteSizes[i] }

// IndexByName returns the descriptor index with the given name, or -1.
func (a *Attributer) IndexByName(name string) int {
	for i, d := range a.Descriptors {
		if d.Name == name {
			return i
		}
	}
	return -1
}

// AddAttribute appends a descriptor and rebuilds offsets.
func (a *Attributer) AddAttribute(d ExtraBytesDescriptor) {
	a.Descriptors = append(a.Descriptors, d)
	a.Rebuild()
}

// ReadFloat reads attribute i out of an extra-bytes blob as a float64,
// applying the descriptor's scale/offset (dimension 0 component only;
// callers needing the other components use ReadFloatDim).
func (a *Attributer) ReadFloat(blob []byte, i int) (float64, error) {
	return a.ReadFloatDim(blob, i, 0)
}

// ReadFloatDim reads dimension dim (0-based) of attribute i.
func (a *Attributer) ReadFloatDim(blob []byte, i int, dim int) (float64, error) {
	if i < 0 || i >= len(a.Descriptors) {
		return 0, fmt.Errorf("attributer: index %d out of range", i)
	}
	d := a.Descriptors[i]
	base, dimCount := SplitExtraBytesType(d.DataType)
	if dim < 0 || dim >= dimCount {
		return 0, fmt.Errorf("attributer: dimension %d out of range for %q", dim, d.Name)
	}
	scalarSize := baseTypeSizes[base]
	off := a.byteOffsets[i] + dim*scalarSize
	if off+scalarSize > len(blob) {
		return 0, fmt.Errorf("attributer: blob too short for attribute %q", d.Name)
	}
	raw := decodeScalar(base, blob[off:off+scalarSize])
	scale := 1.0
	offset := 0.0
	if d.HasScale() {
		scale = d.Scale[dim]
	}
	if d.HasOffset() {
		offset = d.Offset[dim]
	}
	return raw*scale + offset, nil
}

// WriteFloatDim writes dimension dim of attribute i, applying the
// inverse of the descriptor's scale/offset.
func (a *Attributer) WriteFloatDim(blob []byte, i int, dim int, value float64) error {
	if i < 0 || i >= len(a.Descriptors) {
		return fmt.Errorf("attributer: index %d out of range", i)
	}
	d := a.Descriptors[i]
	base, dimCount := SplitExtraBytesType(d.DataType)
	if dim < 0 || dim >= dimCount {
		return fmt.Errorf("attributer: dimension %d out of range for %q", dim, d.Name)
	}
	scale := 1.0
	offset := 0.0
	if d.HasScale() {
		scale = d.Scale[dim]
	}
	if d.HasOffset() {
		offset = d.Offset[dim]
	}
	raw := (value - offset) / scale
	scalarSize := baseTypeSizes[base]
	off := a.byteOffsets[i] + dim*scalarSize
	if off+scalarSize > len(blob) {
		return fmt.Errorf("attributer: blob too short for attribute %q", d.Name)
	}
	encodeScalar(base, blob[off:off+scalarSize], raw)
	return nil
}

func decodeScalar(base ExtraBytesType, b []byte) float64 {
	switch base {
	case EBTypeU8:
		return float64(b[0])
	case EBTypeI8:
		return float64(int8(b[0]))
	case EBTypeU16:
		return float64(ReadU16(b, LittleEndian))
	case EBTypeI16:
		return float64(ReadI16(b, LittleEndian))
	case EBTypeU32:
		return float64(ReadU32(b, LittleEndian))
	case EBTypeI32:
		return float64(ReadI32(b, LittleEndian))
	case EBTypeU64:
		return float64(ReadU64(b, LittleEndian))
	case EBTypeI64:
		return float64(int64(ReadU64(b, LittleEndian)))
	case EBTypeF32:
		return float64(ReadF32(b, LittleEndian))
	case EBTypeF64:
		return ReadF64(b, LittleEndian)
	default:
		return 0
	}
}

func encodeScalar(base ExtraBytesType, b []byte, v float64) {
	switch base {
	case EBTypeU8:
		b[0] = byte(v)
	case EBTypeI8:
		b[0] = byte(int8(v))
	case EBTypeU16:
		WriteU16(b, uint16(v), LittleEndian)
	case EBTypeI16:
		WriteI16(b, int16(v), LittleEndian)
	case EBTypeU32:
		WriteU32(b, uint32(v), LittleEndian)
	case EBTypeI32:
		WriteI32(b, int32(v), LittleEndian)
	case EBTypeU64:
		WriteU64(b, uint64(v), LittleEndian)
	case EBTypeI64:
		WriteU64(b, uint64(int64(v)), LittleEndian)
	case EBTypeF32:
		WriteF32(b, float32(v), LittleEndian)
	case EBTypeF64:
		WriteF64(b, v, LittleEndian)
	}
}
