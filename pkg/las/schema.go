package las

import "fmt"

// ItemKind identifies one of the on-disk item layouts a PointSchema can
// be built from (spec §3, §4.1).
type ItemKind int

const (
	ItemPoint10 ItemKind = iota
	ItemPoint14
	ItemGPSTime11
	ItemRGB12
	ItemRGB14
	ItemRGBNIR14
	ItemWavepacket13
	ItemWavepacket14
	ItemByte
	ItemByte14
)

func (k ItemKind) String() string {
	switch k {
	case ItemPoint10:
		return "POINT10"
	case ItemPoint14:
		return "POINT14"
	case ItemGPSTime11:
		return "GPSTIME11"
	case ItemRGB12:
		return "RGB12"
	case ItemRGB14:
		return "RGB14"
	case ItemRGBNIR14:
		return "RGBNIR14"
	case ItemWavepacket13:
		return "WAVEPACKET13"
	case ItemWavepacket14:
		return "WAVEPACKET14"
	case ItemByte:
		return "BYTE"
	case ItemByte14:
		return "BYTE14"
	default:
		return "UNKNOWN"
	}
}

// Item is one entry of a PointSchema: a kind plus its on-disk size. BYTE
// items carry a variable Size (the extra-bytes blob length); every other
// kind has a fixed size.
type Item struct {
	Kind ItemKind
	Size int
}

// fixedSizes gives the byte-exact on-disk size for every item kind that
// isn't the variable-length BYTE/BYTE14 extra-bytes blob.
var fixedSizes = map[ItemKind]int{
	ItemPoint10:      20,
	ItemPoint14:      30,
	ItemGPSTime11:    8,
	ItemRGB12:        6,
	ItemRGB14:        6,
	ItemRGBNIR14:     8,
	ItemWavepacket13: 29,
	ItemWavepacket14: 29,
}

// PointSchema is the ordered list of items making up one on-disk point
// record for a chosen point format.
type PointSchema struct {
	Items []Item
}

// RecordLength returns the sum of all item sizes, i.e. the on-disk
// length of one point record under this schema.
func (s PointSchema) RecordLength() int {
	total := 0
	for _, it := range s.Items {
		total += it.Size
	}
	return total
}

// Has reports whether the schema contains an item of the given kind.
func (s PointSchema) Has(kind ItemKind) bool {
	for _, it := range s.Items {
		if it.Kind == kind {
			return true
		}
	}
	return false
}

// IsExtended reports whether this schema uses the LAS 1.4 extended
// point structure (POINT14) rather than the legacy one (POINT10).
func (s PointSchema) IsExtended() bool {
	return s.Has(ItemPoint14)
}

// SchemaForPointFormat builds the canonical item list for LAS point
// data record formats 0-10 (ASPRS LAS 1.4 R15 Table 8), appending a
// BYTE item for extra bytes when numExtraBytes > 0.
func SchemaForPointFormat(format byte, numExtraBytes int) (PointSchema, error) {
	var items []Item
	switch format {
	case 0:
		items = []Item{{ItemPoint10, fixedSizes[ItemPoint10]}}
	case 1:
		items = []Item{{ItemPoint10, fixedSizes[ItemPoint10]}, {ItemGPSTime11, fixedSizes[ItemGPSTime11]}}
	case 2:
		items = []Item{{ItemPoint10, fixedSizes[ItemPoint10]}, {ItemRGB12, fixedSizes[ItemRGB12]}}
	case 3:
		items = []Item{{ItemPoint10, fixedSizes[ItemPoint10]}, {ItemGPSTime11, fixedSizes[ItemGPSTime11]}, {ItemRGB12, fixedSizes[ItemRGB12]}}
	case 4:
		items = []Item{{ItemPoint10, fixedSizes[ItemPoint10]}, {ItemGPSTime11, fixedSizes[ItemGPSTime11]}, {ItemWavepacket13, fixedSizes[ItemWavepacket13]}}
	case 5:
		items = []Item{{ItemPoint10, fixedSizes[ItemPoint10]}, {ItemGPSTime11, fixedSizes[ItemGPSTime11]}, {ItemRGB12, fixedSizes[ItemRGB12]}, {ItemWavepacket13, fixedSizes[ItemWavepacket13]}}
	case 6:
		items = []Item{{ItemPoint14, fixedSizes[ItemPoint14]}}
	case 7:
		items = []Item{{ItemPoint14, fixedSizes[ItemPoint14]}, {ItemRGB14, fixedSizes[ItemRGB14]}}
	case 8:
		items = []Item{{ItemPoint14, fixedSizes[ItemPoint14]}, {ItemRGBNIR14, fixedSizes[ItemRGBNIR14]}}
	case 9:
		items = []Item{{ItemPoint14, fixedSizes[ItemPoint14]}, {ItemWavepacket14, fixedSizes[ItemWavepacket14]}}
	case 10:
		items = []Item{{ItemPoint14, fixedSizes[ItemPoint14]}, {ItemRGBNIR14, fixedSizes[ItemRGBNIR14]}, {ItemWavepacket14, fixedSizes[ItemWavepacket14]}}
	default:
		return PointSchema{}, &FormatError{Reason: fmt.Sprintf("unsupported point data format %d", format)}
	}
	if numExtraBytes > 0 {
		kind := ItemByte
		if format >= 6 {
			kind = ItemByte14
		}
		items = append(items, Item{kind, numExtraBytes})
	}
	return PointSchema{Items: items}, nil
}

// PointFormatForSchema returns the minimal point format id compatible
// with the given schema's non-BYTE items; used when a writer needs to
// stamp Header.PointDataFormat from an assembled schema.
func PointFormatForSchema(s PointSchema) (byte, error) {
	hasGPS, hasRGB, hasNIR, hasWave := s.Has(ItemGPSTime11), s.Has(ItemRGB12) || s.Has(ItemRGB14), s.Has(ItemRGBNIR14), s.Has(ItemWavepacket13) || s.Has(ItemWavepacket14)
	if s.IsExtended() {
		switch {
		case hasNIR && hasWave:
			return 10, nil
		case hasWave:
			return 9, nil
		case hasNIR:
			return 8, nil
		case hasRGB:
			return 7, nil
		default:
			return 6, nil
		}
	}
	switch {
	case hasRGB && hasWave:
		return 5, nil
	case hasWave:
		return 4, nil
	case hasRGB && hasGPS:
		return 3, nil
	case hasRGB:
		return 2, nil
	case hasGPS:
		return 1, nil
	default:
		return 0, nil
	}
}
