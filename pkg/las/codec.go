package las

import "fmt"

// SelectiveMask bits name which coordinate-affecting fields a reader
// is allowed to skip decompressing, mirroring the upstream "selective
// decompression" feature. PointCodec stores the mask it is built with,
// but Decode and Encode do not consult it: every item in the schema is
// always decoded and encoded.
type SelectiveMask uint32

const (
	SelectXYZ SelectiveMask = 1 << iota
	SelectIntensity
	SelectReturns
	SelectFlags
	SelectClassification
	SelectScanAngle
	SelectUserData
	SelectPointSourceID
	SelectGPSTime
	SelectRGB
	SelectNIR
	SelectWavepacket
	SelectExtraBytes

	SelectAll = SelectXYZ | SelectIntensity | SelectReturns | SelectFlags |
		SelectClassification | SelectScanAngle | SelectUserData |
		SelectPointSourceID | SelectGPSTime | SelectRGB | SelectNIR |
		SelectWavepacket | SelectExtraBytes
)

// itemCodec is the per-item decode/encode function pair a PointCodec
// dispatches to for each schema Item, implemented in
// internal/codec/items.go. Kept as a function-pointer table here
// rather than importing internal/codec directly into every call site,
// so PointCodec stays the single place that knows the mapping from
// ItemKind to codec routine.
type itemCodecFuncs struct {
	decode func(b []byte, p *Point)
	encode func(b []byte, p *Point)
}

// PointCodec decodes/encodes one point record at a time between its
// on-disk byte layout (per Schema) and the uniform Point struct. It is
// deliberately format-agnostic: the LAS concrete reader/writer use it
// for uncompressed point data; the LAZ path additionally wraps raw
// item bytes through an ItemCompressor/ItemDecompressor chunk codec
// (internal/codec/compressed.go) before/after this layer.
type PointCodec struct {
	Schema PointSchema
	funcs  []itemCodecFuncs
	Mask   SelectiveMask
}

// itemRegistry is populated by RegisterItemCodec (called from
// internal/codec's init in registry.go) to avoid an import cycle between pkg/las and
// internal/codec, which itself imports pkg/las for the Point type.
var itemRegistry = map[ItemKind]itemCodecFuncs{}

// RegisterItemCodec installs the decode/encode pair internal/codec
// provides for one ItemKind. internal/codec's init() calls this once
// per kind it implements.
func RegisterItemCodec(kind ItemKind, decode, encode func(b []byte, p *Point)) {
	itemRegistry[kind] = itemCodecFuncs{decode: decode, encode: encode}
}

// NewPointCodec builds a PointCodec for schema, selecting only the
// registered item kinds the schema actually uses.
func NewPointCodec(schema PointSchema, mask SelectiveMask) (*PointCodec, error) {
	c := &PointCodec{Schema: schema, Mask: mask}
	for _, it := range schema.Items {
		f, ok := itemRegistry[it.Kind]
		if !ok {
			return nil, &FormatError{Reason: fmt.Sprintf("codec: no registered handler for item kind %s", it.Kind)}
		}
		c.funcs = append(c.funcs, f)
	}
	return c, nil
}

// Decode unpacks one raw record (length Schema.RecordLength()) into p.
// p.Extended is set by the POINT10/POINT14 item decoder and then
// SyncLegacyFromExtended is called so both views are valid on return.
func (c *PointCodec) Decode(record []byte, p *Point) error {
	if len(record) < c.Schema.RecordLength() {
		return &FormatError{Reason: "point record shorter than schema requires"}
	}
	off := 0
	for i, it := range c.Schema.Items {
		c.funcs[i].decode(record[off:off+it.Size], p)
		off += it.Size
	}
	if p.Extended {
		p.SyncLegacyFromExtended()
	}
	return nil
}

// Encode is the inverse of Decode: it packs p into record (which must
// be at least Schema.RecordLength() bytes). If the schema is extended
// and p was only ever populated on the legacy side, callers should
// call p.SyncExtendedFromLegacy() first; Encode does not do this
// implicitly so that a caller explicitly promoting a point controls
// when the (lossy) legacy->extended widening happens.
func (c *PointCodec) Encode(record []byte, p *Point) error {
	if len(record) < c.Schema.RecordLength() {
		return &FormatError{Reason: "destination buffer shorter than schema requires"}
	}
	off := 0
	for i, it := range c.Schema.Items {
		c.funcs[i].encode(record[off:off+it.Size], p)
		off += it.Size
	}
	return nil
}
