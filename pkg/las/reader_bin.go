package las

import (
	"context"
	"io"
)

// binReader reads the Terrasolid ".bin" point format: an 8-byte
// header (uint16 version, 2 unused bytes, uint32 point count) followed by
// fixed-width binary point records. Scoped per DESIGN.md to the
// common v1/v2 layout (x,y,z,code,echo,intensity as int32/int16
// fields); vendor-specific extension fields beyond that are not
// modeled.
type binReader struct {
	stream  ByteStream
	header  *Header
	version int16
	count   int64
	index   int64
	recordSize int
}

// OpenBINReader opens a Terrasolid BIN file.
func OpenBINReader(path string) (*binReader, error) {
	s, err := OpenFileStream(path)
	if err != nil {
		return nil, err
	}
	hdr := make([]byte, 4)
	if _, err := readFull(s, hdr); err != nil {
		return nil, err
	}
	version := int16(ReadU16(hdr[0:2], LittleEndian))
	recordSize := 20
	if version >= 2 {
		recordSize = 24
	}
	countBuf := make([]byte, 4)
	if _, err := readFull(s, countBuf); err != nil {
		return nil, err
	}
	count := int64(ReadU32(countBuf, LittleEndian))

	h := DefaultHeader()
	h.VersionMajor, h.VersionMinor = 1, 2
	h.PointDataFormat = 0
	h.LegacyNumberOfPointRecords = uint32(count)
	h.Quantizer = NewQuantizer(0.01, 0.01, 0.01, 0, 0, 0)

	return &binReader{stream: s, header: h, version: version, count: count, recordSize: recordSize}, nil
}

func (r *binReader) Header() *Header { return r.header }

func (r *binReader) ReadPoint(ctx context.Context, p *Point) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if r.index >= r.count {
		return false, nil
	}
	buf := make([]byte, r.recordSize)
	n, err := readFull(r.stream, buf)
	if err != nil && err != io.EOF {
		return false, err
	}
	if n < r.recordSize {
		return false, nil // EOF before declared count: warning-level in the host logger, truncate here
	}
	p.X = int32(ReadU32(buf[0:4], LittleEndian))
	p.Y = int32(ReadU32(buf[4:8], LittleEndian))
	p.Z = int32(ReadU32(buf[8:12], LittleEndian))
	p.Classification = buf[12]
	p.ReturnNumber = buf[13]
	p.Intensity = ReadU16(buf[14:16], LittleEndian)
	r.index++
	return true, nil
}

func (r *binReader) Seek(i int64) error {
	if _, err := r.stream.Seek(8+i*int64(r.recordSize), 0); err != nil {
		return err
	}
	r.index = i
	return nil
}

func (r *binReader) Close() error { return r.stream.Close() }
