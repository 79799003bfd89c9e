package las

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

const legacyHeaderSize = 227 // LAS 1.0-1.2 fixed header size, before 1.3's waveform field

// lasReader is the concrete reader for native .las/.laz files. LAZ
// files are distinguished by the LASzip VLR found during header
// parsing, not by extension, matching how upstream LAStools sniffs
// compression.
type lasReader struct {
	stream ByteStream
	header *Header
	codec  *PointCodec
	index  int64
	recordBuf []byte
	compressed bool

	// LAZ chunk-compressed read state (spec §6/§9), populated by
	// setupCompressed when header.LASzip is present.
	chunkBackend      ChunkBackendID
	chunkSize         int
	chunkByteSizes    []uint32
	firstChunkOffset  int64
	curChunk          int
	curChunkIndex     int
	chunkDecompressor ChunkDecompressor
}

// OpenLASReader opens a .las or .laz file for sequential reading.
func OpenLASReader(path string) (*lasReader, error) {
	s, err := OpenFileStream(path)
	if err != nil {
		return nil, err
	}
	return NewLASReader(s)
}

// NewLASReader parses the header/VLRs from an already-open stream and
// prepares a PointCodec for the point data that follows.
func NewLASReader(s ByteStream) (*lasReader, error) {
	h, err := parseHeader(s)
	if err != nil {
		return nil, err
	}
	schema, err := h.Schema()
	if err != nil {
		return nil, err
	}
	codec, err := NewPointCodec(schema, SelectAll)
	if err != nil {
		return nil, err
	}
	r := &lasReader{
		stream: s,
		header: h,
		codec:  codec,
		recordBuf: make([]byte, schema.RecordLength()),
	}
	if h.LASzip != nil {
		r.compressed = true
		if err := r.setupCompressed(); err != nil {
			return nil, err
		}
		return r, nil
	}
	if _, err := s.Seek(int64(h.OffsetToPointData), 0); err != nil {
		return nil, err
	}
	return r, nil
}

// setupCompressed reads the chunk table trailer a LAZ-flagged lasReader
// needs before it can serve any point: the 8-byte absolute offset of
// the table stored right after the header/VLR block, then the table
// itself (chunk count + one compressed byte length per chunk), then
// positions the stream at the first chunk and primes its decompressor.
func (r *lasReader) setupCompressed() error {
	h := r.header
	r.chunkBackend = ChunkBackendID(h.LASzip.Compressor)
	r.chunkSize = int(h.LASzip.ChunkSize)
	if r.chunkSize == 0 {
		r.chunkSize = defaultChunkSize
	}
	if _, err := r.stream.Seek(int64(h.OffsetToPointData), 0); err != nil {
		return err
	}
	offsetBuf := make([]byte, 8)
	if _, err := readFull(r.stream, offsetBuf); err != nil {
		return err
	}
	tableOffset := int64(ReadU64(offsetBuf, LittleEndian))
	r.firstChunkOffset = int64(h.OffsetToPointData) + 8

	if _, err := r.stream.Seek(tableOffset, 0); err != nil {
		return err
	}
	countBuf := make([]byte, 4)
	if _, err := readFull(r.stream, countBuf); err != nil {
		return err
	}
	numChunks := int(ReadU32(countBuf, LittleEndian))
	r.chunkByteSizes = make([]uint32, numChunks)
	sizesBuf := make([]byte, 4*numChunks)
	if numChunks > 0 {
		if _, err := readFull(r.stream, sizesBuf); err != nil {
			return err
		}
	}
	for i := 0; i < numChunks; i++ {
		r.chunkByteSizes[i] = ReadU32(sizesBuf[4*i:4*i+4], LittleEndian)
	}
	if numChunks == 0 {
		return nil
	}
	return r.initChunk(0)
}

// pointsInChunk reports how many points chunk idx holds: chunkSize for
// every chunk but the last, which may be shorter.
func (r *lasReader) pointsInChunk(idx int) int {
	if idx < len(r.chunkByteSizes)-1 {
		return r.chunkSize
	}
	total := int(r.header.PointCount())
	return total - r.chunkSize*(len(r.chunkByteSizes)-1)
}

// initChunk seeks to chunk idx's compressed bytes and primes a fresh
// decompressor bounded to exactly that chunk's byte length, so reading
// past the chunk's own points never runs into the next chunk's data.
func (r *lasReader) initChunk(idx int) error {
	if idx >= len(r.chunkByteSizes) {
		return &FormatError{Reason: "laz chunk index out of range"}
	}
	offset := r.firstChunkOffset
	for i := 0; i < idx; i++ {
		offset += int64(r.chunkByteSizes[i])
	}
	if _, err := r.stream.Seek(offset, 0); err != nil {
		return err
	}
	dec, err := NewChunkDecompressor(r.chunkBackend)
	if err != nil {
		return err
	}
	limited := io.LimitReader(r.stream, int64(r.chunkByteSizes[idx]))
	if err := dec.Init(limited); err != nil {
		return err
	}
	r.chunkDecompressor = dec
	r.curChunk = idx
	r.curChunkIndex = 0
	return nil
}

func (r *lasReader) Header() *Header { return r.header }

func (r *lasReader) ReadPoint(ctx context.Context, p *Point) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if uint64(r.index) >= r.header.PointCount() {
		return false, nil
	}
	if r.compressed {
		if r.curChunkIndex >= r.pointsInChunk(r.curChunk) {
			if err := r.initChunk(r.curChunk + 1); err != nil {
				return false, err
			}
		}
		if err := r.chunkDecompressor.DecodeItem(r.recordBuf); err != nil {
			return false, err
		}
		r.curChunkIndex++
	} else {
		n, err := readFull(r.stream, r.recordBuf)
		if err != nil {
			return false, err
		}
		if n < len(r.recordBuf) {
			return false, &FormatError{Reason: "truncated point record"}
		}
	}
	if err := r.codec.Decode(r.recordBuf, p); err != nil {
		return false, &PointDecodeError{Index: r.index, Reason: err.Error(), Severity: SeverityFatal}
	}
	r.index++
	return true, nil
}

func (r *lasReader) Seek(i int64) error {
	if r.compressed {
		chunk := int(i) / r.chunkSize
		target := int(i) % r.chunkSize
		if err := r.initChunk(chunk); err != nil {
			return err
		}
		for r.curChunkIndex < target {
			if err := r.chunkDecompressor.DecodeItem(r.recordBuf); err != nil {
				return err
			}
			r.curChunkIndex++
		}
		r.index = i
		return nil
	}
	off := int64(r.header.OffsetToPointData) + i*int64(r.codec.Schema.RecordLength())
	if _, err := r.stream.Seek(off, 0); err != nil {
		return err
	}
	r.index = i
	return nil
}

func (r *lasReader) Close() error { return r.stream.Close() }

func readFull(s ByteStream, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := s.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			break
		}
	}
	return total, nil
}

// parseHeader decodes the public header block and attached VLRs/EVLRs
// from the start of s, grounded on original_source/LASlib/src/
// lasheader.hpp's field-by-field layout and
// _examples/beetlebugorg-s57/internal/parser/parser.go's
// read-fixed-fields-then-walk-records structure.
func parseHeader(s ByteStream) (*Header, error) {
	if _, err := s.Seek(0, 0); err != nil {
		return nil, err
	}
	fixed := make([]byte, legacyHeaderSize)
	if _, err := readFull(s, fixed); err != nil {
		return nil, err
	}
	h := &Header{}
	h.FileSignature = string(fixed[0:4])
	if h.FileSignature != "LASF" {
		return nil, &FormatError{Reason: "missing LASF file signature"}
	}
	h.FileSourceID = ReadU16(fixed[4:6], LittleEndian)
	h.GlobalEncoding = ReadU16(fixed[6:8], LittleEndian)
	copy(h.ProjectID[:], fixed[8:24])
	h.VersionMajor = fixed[24]
	h.VersionMinor = fixed[25]
	h.SystemIdentifier = ReadFixedString(fixed[26:58])
	h.GeneratingSoftware = ReadFixedString(fixed[58:90])
	h.FileCreationDayOfYear = ReadU16(fixed[90:92], LittleEndian)
	h.FileCreationYear = ReadU16(fixed[92:94], LittleEndian)
	h.HeaderSize = ReadU16(fixed[94:96], LittleEndian)
	h.OffsetToPointData = ReadU32(fixed[96:100], LittleEndian)
	h.NumberOfVLRs = ReadU32(fixed[100:104], LittleEndian)
	h.PointDataFormat = fixed[104] & 0x7F // high bit marks compressed in some writers; LASzip VLR is authoritative
	h.PointDataRecordLength = ReadU16(fixed[105:107], LittleEndian)
	h.LegacyNumberOfPointRecords = ReadU32(fixed[107:111], LittleEndian)
	for i := 0; i < 5; i++ {
		h.LegacyNumberOfPointsByReturn[i] = ReadU32(fixed[111+4*i:115+4*i], LittleEndian)
	}
	scaleX := ReadF64(fixed[131:139], LittleEndian)
	scaleY := ReadF64(fixed[139:147], LittleEndian)
	scaleZ := ReadF64(fixed[147:155], LittleEndian)
	offX := ReadF64(fixed[155:163], LittleEndian)
	offY := ReadF64(fixed[163:171], LittleEndian)
	offZ := ReadF64(fixed[171:179], LittleEndian)
	h.Quantizer = NewQuantizer(scaleX, scaleY, scaleZ, offX, offY, offZ)
	h.MaxX = ReadF64(fixed[179:187], LittleEndian)
	h.MinX = ReadF64(fixed[187:195], LittleEndian)
	h.MaxY = ReadF64(fixed[195:203], LittleEndian)
	h.MinY = ReadF64(fixed[203:211], LittleEndian)
	h.MaxZ = ReadF64(fixed[211:219], LittleEndian)
	h.MinZ = ReadF64(fixed[219:227], LittleEndian)

	if h.VersionMinor >= 3 && int(h.HeaderSize) > legacyHeaderSize {
		extra := make([]byte, 8)
		if _, err := readFull(s, extra); err != nil {
			return nil, err
		}
		h.StartOfWaveformDataPacketRecord = ReadU64(extra, LittleEndian)
	}
	if h.VersionMinor >= 4 {
		rest := int(h.HeaderSize) - legacyHeaderSize - 8
		if rest > 0 {
			b := make([]byte, rest)
			if _, err := readFull(s, b); err != nil {
				return nil, err
			}
			h.StartOfFirstEVLR = ReadU64(b[0:8], LittleEndian)
			h.NumberOfEVLRs = ReadU32(b[8:12], LittleEndian)
			h.NumberOfPointRecords = ReadU64(b[12:20], LittleEndian)
			for i := 0; i < 15; i++ {
				h.NumberOfPointsByReturn[i] = ReadU64(b[20+8*i:28+8*i], LittleEndian)
			}
		}
	}

	for i := uint32(0); i < h.NumberOfVLRs; i++ {
		v, err := readVLRRecord(s)
		if err != nil {
			return nil, err
		}
		h.VLRs = append(h.VLRs, v)
	}

	if h.StartOfFirstEVLR != 0 {
		if _, err := s.Seek(int64(h.StartOfFirstEVLR), 0); err != nil {
			return nil, err
		}
		for i := uint32(0); i < h.NumberOfEVLRs; i++ {
			v, err := readEVLRRecord(s)
			if err != nil {
				return nil, err
			}
			h.EVLRs = append(h.EVLRs, v)
		}
	}

	if err := h.indexVLRs(); err != nil {
		return nil, err
	}
	return h, nil
}

func readVLRRecord(s ByteStream) (VLR, error) {
	hdr := make([]byte, 54)
	if _, err := readFull(s, hdr); err != nil {
		return VLR{}, err
	}
	v := VLR{
		Reserved:    ReadU16(hdr[0:2], LittleEndian),
		UserID:      ReadFixedString(hdr[2:18]),
		RecordID:    ReadU16(hdr[18:20], LittleEndian),
		Description: ReadFixedString(hdr[22:54]),
	}
	length := ReadU16(hdr[20:22], LittleEndian)
	v.Data = make([]byte, length)
	if _, err := readFull(s, v.Data); err != nil {
		return VLR{}, err
	}
	return v, nil
}

func readEVLRRecord(s ByteStream) (VLR, error) {
	hdr := make([]byte, 60)
	if _, err := readFull(s, hdr); err != nil {
		return VLR{}, err
	}
	v := VLR{
		Reserved:    ReadU16(hdr[0:2], LittleEndian),
		UserID:      ReadFixedString(hdr[2:18]),
		RecordID:    ReadU16(hdr[18:20], LittleEndian),
		Description: ReadFixedString(hdr[28:60]),
	}
	length := ReadU64(hdr[20:28], LittleEndian)
	v.Data = make([]byte, length)
	if _, err := readFull(s, v.Data); err != nil {
		return VLR{}, err
	}
	return v, nil
}

// openConcreteReader dispatches to the right format reader by file
// extension (spec §2's supported-formats list).
func openConcreteReader(path string) (PointReader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".las", ".laz":
		return OpenLASReader(path)
	case ".bin":
		return OpenBINReader(path)
	case ".shp":
		return OpenSHPReader(path)
	case ".qi":
		return OpenQFITReader(path)
	case ".asc", ".bil", ".dtm":
		return OpenRasterReader(path)
	case ".txt", ".pts", ".ptx":
		return OpenTextReader(path)
	default:
		return nil, &FormatError{Path: path, Reason: fmt.Sprintf("unrecognized file extension %q", filepath.Ext(path))}
	}
}
