package las

import "context"

// ESRI shapefile shape type codes this reader understands (point
// geometries only — the spec's point-stream contract has no
// analog for polygon/polyline shapefiles).
const (
	shpTypePoint   = 1
	shpTypePointZ  = 11
	shpTypePointM  = 21
)

// shpReader streams point records out of an ESRI .shp file (the main
// file only; .shx/.dbf sidecars are not consulted since the spec's
// point stream carries no attribute-table concept beyond extra
// bytes).
type shpReader struct {
	stream ByteStream
	header *Header
	shapeType int32
	fileLen   int64 // in bytes, per the 16-bit-word field doubled
	index     int64
}

// OpenSHPReader opens path and parses the 100-byte shapefile header.
func OpenSHPReader(path string) (*shpReader, error) {
	s, err := OpenFileStream(path)
	if err != nil {
		return nil, err
	}
	hdr := make([]byte, 100)
	if _, err := readFull(s, hdr); err != nil {
		return nil, err
	}
	// File code and file length are big-endian; everything from byte
	// 28 on (shape type, bbox) is little-endian, per the ESRI shapefile
	// technical spec.
	if ReadU32(bigEndianView(hdr[0:4]), LittleEndian) != 9994 {
		return nil, &FormatError{Path: path, Reason: "missing ESRI shapefile file code 9994"}
	}
	fileLenWords := ReadU32(bigEndianView(hdr[24:28]), LittleEndian)
	shapeType := int32(ReadU32(hdr[32:36], LittleEndian))
	minX := ReadF64(hdr[36:44], LittleEndian)
	minY := ReadF64(hdr[44:52], LittleEndian)
	maxX := ReadF64(hdr[52:60], LittleEndian)
	maxY := ReadF64(hdr[60:68], LittleEndian)

	h := DefaultHeader()
	h.VersionMajor, h.VersionMinor = 1, 2
	h.PointDataFormat = 0
	h.MinX, h.MaxX, h.MinY, h.MaxY = minX, maxX, minY, maxY
	h.Quantizer = NewQuantizer(0.001, 0.001, 0.001, 0, 0, 0)

	return &shpReader{stream: s, header: h, shapeType: shapeType, fileLen: int64(fileLenWords) * 2}, nil
}

// bigEndianView re-reads a big-endian 4-byte field as if it were
// little-endian bytes by reversing it, so the shared ReadU32 helper
// (always little-endian-or-explicit) can be reused for the
// shapefile's mixed-endian header without a third helper variant.
func bigEndianView(b []byte) []byte {
	out := make([]byte, len(b))
	for i := range b {
		out[i] = b[len(b)-1-i]
	}
	return out
}

func (r *shpReader) Header() *Header { return r.header }

func (r *shpReader) ReadPoint(ctx context.Context, p *Point) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	recHdr := make([]byte, 8)
	n, err := readFull(r.stream, recHdr)
	if err != nil || n < 8 {
		return false, nil
	}
	contentWords := ReadU32(bigEndianView(recHdr[4:8]), LittleEndian)
	content := make([]byte, int64(contentWords)*2)
	if _, err := readFull(r.stream, content); err != nil {
		return false, err
	}
	shapeType := int32(ReadU32(content[0:4], LittleEndian))
	x := ReadF64(content[4:12], LittleEndian)
	y := ReadF64(content[12:20], LittleEndian)
	var z float64
	if shapeType == shpTypePointZ && len(content) >= 28 {
		z = ReadF64(content[20:28], LittleEndian)
	}
	p.SetX(x, r.header.Quantizer)
	p.SetY(y, r.header.Quantizer)
	p.SetZ(z, r.header.Quantizer)
	r.index++
	return true, nil
}

func (r *shpReader) Seek(i int64) error {
	return &ConfigError{Token: "seek", Reason: "shp reader does not support random access without a .shx index"}
}

func (r *shpReader) Close() error { return r.stream.Close() }
