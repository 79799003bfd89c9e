package las

import (
	"bytes"
	"context"
	"io"
)

// WriterOptions configures NewWriter, mirroring ReaderOptions'
// Default*Options() pattern.
type WriterOptions struct {
	Header *Header // if nil, DefaultHeader() is used
	Logger Logger

	// Compress selects the LAZ chunk backend. ChunkBackendNone (the
	// zero value) writes a plain uncompressed .las point stream. Any
	// other value emits a LASzipVLR and writes chunked, compressed
	// point data (spec §6/§15).
	Compress ChunkBackendID
}

// DefaultWriterOptions returns a LAS 1.4 / point format 6 writer
// configuration with no logger.
func DefaultWriterOptions() WriterOptions {
	return WriterOptions{Header: DefaultHeader(), Logger: NopLogger}
}

// Writer sequentially encodes points to a ByteStream as a .las file,
// or as a chunk-compressed LAZ file when WriterOptions.Compress selects
// a backend: header + VLRs are buffered and patched at
// Close once the point count and bounding box are known, matching how
// a single-pass streaming writer must defer those header fields.
type Writer struct {
	stream ByteStream
	header *Header
	codec  *PointCodec
	count  uint64
	countByReturn [15]uint64
	minX, minY, minZ, maxX, maxY, maxZ float64
	haveBounds bool
	logger Logger
	overflow map[string]uint64

	// LAZ chunk-compressed output (spec §6/§15). compress is
	// ChunkBackendNone for a plain .las write; the rest are only
	// populated when it isn't.
	compress                 ChunkBackendID
	chunkSize                int
	chunkTablePlaceholderPos int64
	chunkByteSizes           []uint32
	chunkBuf                 *bytes.Buffer
	chunkCompressor          ChunkCompressor
	pointsInChunk            int
}

// NewWriter prepares stream for writing: it reserves space for the
// header/VLRs (written provisionally, then rewritten at Close with
// final counts) and builds the PointCodec for the configured schema.
func NewWriter(stream ByteStream, opts WriterOptions) (*Writer, error) {
	h := opts.Header
	if h == nil {
		h = DefaultHeader()
	}
	schema, err := h.Schema()
	if err != nil {
		return nil, err
	}
	codec, err := NewPointCodec(schema, SelectAll)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = NopLogger
	}
	w := &Writer{stream: stream, header: h, codec: codec, logger: logger, overflow: map[string]uint64{}, compress: opts.Compress}
	if w.compress != ChunkBackendNone {
		if h.LASzip == nil {
			items := make([]LASzipItemEntry, len(schema.Items))
			for i, it := range schema.Items {
				items[i] = LASzipItemEntry{Kind: lasZipItemKind(it.Kind), Version: 1}
			}
			h.LASzip = &LASzipVLR{ChunkSize: defaultChunkSize, Items: items}
		}
		if h.LASzip.ChunkSize == 0 {
			h.LASzip.ChunkSize = defaultChunkSize
		}
		h.LASzip.Compressor = byte(w.compress)
		h.VLRs = append(h.VLRs, newLASzipVLRRecord(*h.LASzip))
		w.chunkSize = int(h.LASzip.ChunkSize)
	}
	if err := w.writeHeaderPlaceholder(); err != nil {
		return nil, err
	}
	if w.compress != ChunkBackendNone {
		if err := w.beginChunkTable(); err != nil {
			return nil, err
		}
		if err := w.startChunk(); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// beginChunkTable writes the 8-byte chunk-table-offset placeholder at
// the very start of the point data section (immediately after
// OffsetToPointData) and remembers its position so Close can patch it
// once the real table has been written.
func (w *Writer) beginChunkTable() error {
	pos, err := w.stream.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	w.chunkTablePlaceholderPos = pos
	_, err = w.stream.Write(make([]byte, 8))
	return err
}

// startChunk begins a new chunk: a fresh compressor instance writing
// into a scratch buffer, since each chunk is an independently framed
// compressed stream (no shared compressor state across the chunk
// boundary, matching FlushChunk/ResetChunk's "externally driven chunk
// boundary" contract).
func (w *Writer) startChunk() error {
	c, err := NewChunkCompressor(w.compress)
	if err != nil {
		return err
	}
	w.chunkBuf = &bytes.Buffer{}
	if err := c.Init(w.chunkBuf); err != nil {
		return err
	}
	w.chunkCompressor = c
	w.pointsInChunk = 0
	return nil
}

// flushChunk closes out the current chunk's compressed stream and
// copies it to the real output, recording its byte length for the
// trailing chunk table.
func (w *Writer) flushChunk() error {
	if w.chunkCompressor == nil || w.pointsInChunk == 0 {
		return nil
	}
	if err := w.chunkCompressor.FlushChunk(); err != nil {
		return err
	}
	if _, err := w.stream.Write(w.chunkBuf.Bytes()); err != nil {
		return err
	}
	w.chunkByteSizes = append(w.chunkByteSizes, uint32(w.chunkBuf.Len()))
	return nil
}

func (w *Writer) writeHeaderPlaceholder() error {
	h := w.header
	h.OffsetToPointData = uint32(legacyHeaderSize)
	if h.VersionMinor >= 3 {
		h.OffsetToPointData += 8
	}
	if h.VersionMinor >= 4 {
		h.OffsetToPointData += 140
	}
	for _, v := range h.VLRs {
		h.OffsetToPointData += uint32(54 + len(v.Data))
	}
	h.NumberOfVLRs = uint32(len(h.VLRs))
	h.PointDataRecordLength = uint16(w.codec.Schema.RecordLength())

	if err := writeHeaderFixed(w.stream, h); err != nil {
		return err
	}
	for _, v := range h.VLRs {
		if err := writeVLRRecord(w.stream, v); err != nil {
			return err
		}
	}
	_, err := w.stream.Seek(int64(h.OffsetToPointData), 0)
	return err
}

// WritePoint encodes p and accumulates the running bounding box,
// point count, and per-return histogram the final header needs.
func (w *Writer) WritePoint(ctx context.Context, p *Point) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if w.header.Schema_IsExtended() && !p.Extended {
		p.SyncExtendedFromLegacy()
	}
	record := make([]byte, w.codec.Schema.RecordLength())
	if err := w.codec.Encode(record, p); err != nil {
		return err
	}
	if w.compress != ChunkBackendNone {
		if err := w.chunkCompressor.EncodeItem(record); err != nil {
			return err
		}
		w.pointsInChunk++
		if w.pointsInChunk >= w.chunkSize {
			if err := w.flushChunk(); err != nil {
				return err
			}
			if err := w.startChunk(); err != nil {
				return err
			}
		}
	} else {
		if _, err := w.stream.Write(record); err != nil {
			return err
		}
	}
	x, y, z := p.GetX(w.header.Quantizer), p.GetY(w.header.Quantizer), p.GetZ(w.header.Quantizer, w.header.Attributer)
	if !w.haveBounds {
		w.minX, w.maxX, w.minY, w.maxY, w.minZ, w.maxZ = x, x, y, y, z, z
		w.haveBounds = true
	} else {
		w.minX, w.maxX = minf(w.minX, x), maxf2(w.maxX, x)
		w.minY, w.maxY = minf(w.minY, y), maxf2(w.maxY, y)
		w.minZ, w.maxZ = minf(w.minZ, z), maxf2(w.maxZ, z)
	}
	w.count++
	rn := p.GetReturnNumber()
	if rn >= 1 && int(rn) <= len(w.countByReturn) {
		w.countByReturn[rn-1]++
	}
	return nil
}

// RecordOverflow lets a TransformChain user merge its operation
// overflow counters into the writer's close-time report (spec §7).
func (w *Writer) RecordOverflow(counts map[string]uint64) {
	for k, v := range counts {
		w.overflow[k] += v
	}
}

// Close finalizes the header with the accumulated counts/bounds and
// flushes the underlying stream.
func (w *Writer) Close() error {
	h := w.header
	if w.compress != ChunkBackendNone {
		if err := w.flushChunk(); err != nil {
			return err
		}
		if err := w.writeChunkTable(); err != nil {
			return err
		}
	}
	h.LegacyNumberOfPointRecords = uint32(w.count)
	if w.count > 0xFFFFFFFF {
		h.LegacyNumberOfPointRecords = 0
	}
	h.NumberOfPointRecords = w.count
	for i := range w.countByReturn {
		h.NumberOfPointsByReturn[i] = w.countByReturn[i]
		if i < 5 {
			h.LegacyNumberOfPointsByReturn[i] = uint32(w.countByReturn[i])
		}
	}
	h.MinX, h.MaxX, h.MinY, h.MaxY, h.MinZ, h.MaxZ = w.minX, w.maxX, w.minY, w.maxY, w.minZ, w.maxZ

	if _, err := w.stream.Seek(0, 0); err != nil {
		return err
	}
	if err := writeHeaderFixed(w.stream, h); err != nil {
		return err
	}
	for k, v := range w.overflow {
		if v > 0 {
			w.logger.Logf(LevelWarning, "operation %q saturated %d times", k, v)
		}
	}
	return w.stream.Close()
}

// writeChunkTable appends the trailing chunk table (chunk count +
// one uint32 compressed byte length per chunk) after the last chunk's
// data, then patches the 8-byte placeholder beginChunkTable wrote with
// this table's absolute file offset — the "written as a placeholder at
// open time and overwritten at Close" pattern SPEC_FULL.md's writer
// section calls for, generalized from the teacher's VLR
// replace-in-place to this fixed-size trailer slot.
func (w *Writer) writeChunkTable() error {
	tablePos, err := w.stream.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	table := make([]byte, 4+4*len(w.chunkByteSizes))
	WriteU32(table[0:4], uint32(len(w.chunkByteSizes)), LittleEndian)
	for i, sz := range w.chunkByteSizes {
		WriteU32(table[4+4*i:8+4*i], sz, LittleEndian)
	}
	if _, err := w.stream.Write(table); err != nil {
		return err
	}
	if _, err := w.stream.Seek(w.chunkTablePlaceholderPos, 0); err != nil {
		return err
	}
	offset := make([]byte, 8)
	WriteU64(offset, uint64(tablePos), LittleEndian)
	_, err = w.stream.Write(offset)
	return err
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
func maxf2(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Schema_IsExtended reports whether h's point format uses POINT14.
// Named with the underscore to read distinctly from PointSchema's own
// IsExtended method at Writer call sites.
func (h *Header) Schema_IsExtended() bool {
	return h.PointDataFormat >= 6
}

func writeHeaderFixed(s ByteStream, h *Header) error {
	buf := make([]byte, legacyHeaderSize)
	copy(buf[0:4], "LASF")
	WriteU16(buf[4:6], h.FileSourceID, LittleEndian)
	WriteU16(buf[6:8], h.GlobalEncoding, LittleEndian)
	copy(buf[8:24], h.ProjectID[:])
	buf[24] = h.VersionMajor
	buf[25] = h.VersionMinor
	WriteFixedString(buf[26:58], h.SystemIdentifier)
	WriteFixedString(buf[58:90], h.GeneratingSoftware)
	WriteU16(buf[90:92], h.FileCreationDayOfYear, LittleEndian)
	WriteU16(buf[92:94], h.FileCreationYear, LittleEndian)
	WriteU16(buf[94:96], h.HeaderSize, LittleEndian)
	WriteU32(buf[96:100], h.OffsetToPointData, LittleEndian)
	WriteU32(buf[100:104], h.NumberOfVLRs, LittleEndian)
	buf[104] = h.PointDataFormat
	WriteU16(buf[105:107], h.PointDataRecordLength, LittleEndian)
	WriteU32(buf[107:111], h.LegacyNumberOfPointRecords, LittleEndian)
	for i := 0; i < 5; i++ {
		WriteU32(buf[111+4*i:115+4*i], h.LegacyNumberOfPointsByReturn[i], LittleEndian)
	}
	WriteF64(buf[131:139], h.Quantizer.ScaleX, LittleEndian)
	WriteF64(buf[139:147], h.Quantizer.ScaleY, LittleEndian)
	WriteF64(buf[147:155], h.Quantizer.ScaleZ, LittleEndian)
	WriteF64(buf[155:163], h.Quantizer.OffsetX, LittleEndian)
	WriteF64(buf[163:171], h.Quantizer.OffsetY, LittleEndian)
	WriteF64(buf[171:179], h.Quantizer.OffsetZ, LittleEndian)
	WriteF64(buf[179:187], h.MaxX, LittleEndian)
	WriteF64(buf[187:195], h.MinX, LittleEndian)
	WriteF64(buf[195:203], h.MaxY, LittleEndian)
	WriteF64(buf[203:211], h.MinY, LittleEndian)
	WriteF64(buf[211:219], h.MaxZ, LittleEndian)
	WriteF64(buf[219:227], h.MinZ, LittleEndian)
	if _, err := s.Write(buf); err != nil {
		return err
	}

	if h.VersionMinor >= 3 {
		extra := make([]byte, 8)
		WriteU64(extra, h.StartOfWaveformDataPacketRecord, LittleEndian)
		if _, err := s.Write(extra); err != nil {
			return err
		}
	}
	if h.VersionMinor >= 4 {
		rest := make([]byte, 140)
		WriteU64(rest[0:8], h.StartOfFirstEVLR, LittleEndian)
		WriteU32(rest[8:12], h.NumberOfEVLRs, LittleEndian)
		WriteU64(rest[12:20], h.NumberOfPointRecords, LittleEndian)
		for i := 0; i < 15; i++ {
			WriteU64(rest[20+8*i:28+8*i], h.NumberOfPointsByReturn[i], LittleEndian)
		}
		if _, err := s.Write(rest); err != nil {
			return err
		}
	}
	return nil
}

func writeVLRRecord(s ByteStream, v VLR) error {
	hdr := make([]byte, 54)
	WriteU16(hdr[0:2], v.Reserved, LittleEndian)
	WriteFixedString(hdr[2:18], v.UserID)
	WriteU16(hdr[18:20], v.RecordID, LittleEndian)
	WriteU16(hdr[20:22], uint16(len(v.Data)), LittleEndian)
	WriteFixedString(hdr[22:54], v.Description)
	if _, err := s.Write(hdr); err != nil {
		return err
	}
	_, err := s.Write(v.Data)
	return err
}
