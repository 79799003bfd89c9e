package las

import "context"

// qfitReader reads NASA Airborne Topographic Mapper QFIT binary
// records: a leading 4-byte big-endian word giving the record byte
// length (typically 40, 44 or 56 depending on the instrument revision),
// followed by big-endian int32 fields scaled by fixed per-field
// factors (time ms, lat/lon in 1e-6 degrees, elevation in mm).
type qfitReader struct {
	stream     ByteStream
	header     *Header
	recordLen  int32
	numFields  int
	index      int64
}

// OpenQFITReader opens path and determines the record length from the
// first 4-byte word, per the QFIT convention of self-describing record
// size.
func OpenQFITReader(path string) (*qfitReader, error) {
	s, err := OpenFileStream(path)
	if err != nil {
		return nil, err
	}
	lenBuf := make([]byte, 4)
	if _, err := readFull(s, lenBuf); err != nil {
		return nil, err
	}
	recordLen := int32(ReadU32(bigEndianView(lenBuf), LittleEndian))
	if recordLen <= 0 || recordLen%4 != 0 {
		return nil, &FormatError{Path: path, Reason: "implausible QFIT record length"}
	}
	if _, err := s.Seek(0, 0); err != nil {
		return nil, err
	}
	h := DefaultHeader()
	h.VersionMajor, h.VersionMinor = 1, 2
	h.PointDataFormat = 1
	h.Quantizer = NewQuantizer(1e-6, 1e-6, 0.001, 0, 0, 0)
	return &qfitReader{stream: s, header: h, recordLen: recordLen, numFields: int(recordLen / 4)}, nil
}

func (r *qfitReader) Header() *Header { return r.header }

func (r *qfitReader) ReadPoint(ctx context.Context, p *Point) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	buf := make([]byte, r.recordLen)
	n, err := readFull(r.stream, buf)
	if err != nil {
		return false, err
	}
	if n < int(r.recordLen) {
		return false, nil
	}
	field := func(i int) int32 {
		return int32(ReadU32(bigEndianView(buf[i*4:i*4+4]), LittleEndian))
	}
	// Field layout 1: time(ms), latitude(1e-6 deg), longitude(1e-6 deg),
	// elevation(mm) — the common subset shared by every QFIT revision.
	timeMs := field(0)
	lat := field(1)
	lon := field(2)
	elevMm := field(3)
	p.GPSTime = float64(timeMs) / 1000.0
	p.SetX(float64(lon)*1e-6, r.header.Quantizer)
	p.SetY(float64(lat)*1e-6, r.header.Quantizer)
	p.SetZ(float64(elevMm)/1000.0, r.header.Quantizer)
	r.index++
	return true, nil
}

func (r *qfitReader) Seek(i int64) error {
	if _, err := r.stream.Seek(i*int64(r.recordLen), 0); err != nil {
		return err
	}
	r.index = i
	return nil
}

func (r *qfitReader) Close() error { return r.stream.Close() }
