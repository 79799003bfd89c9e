package las

import (
	"fmt"
	"io"
)

// ChunkCompressor frames one chunk's worth of raw point-record bytes
// through a general-purpose entropy coder. This is the same external
// contract internal/codec.ItemCompressor exposes for individual schema
// items, lifted one level up: here a whole record (every item
// concatenated) is the unit EncodeItem buffers, and FlushChunk closes
// out one LAZ-style chunk boundary. Declared in pkg/las rather than
// imported from internal/codec so reader_las.go/writer.go can use it
// without creating the import cycle internal/codec -> pkg/las already
// rules out the other direction.
type ChunkCompressor interface {
	Init(w io.Writer) error
	EncodeItem(raw []byte) error
	FlushChunk() error
	ResetChunk()
}

// ChunkDecompressor is the decode-side counterpart of ChunkCompressor.
type ChunkDecompressor interface {
	Init(r io.Reader) error
	DecodeItem(raw []byte) error
	ResetChunk()
}

// ChunkBackendID names which general-purpose coder a LAZ-style chunk
// was written with. Stored in LASzipVLR.Compressor in place of the
// real LASzip compressor id (0/1/2/3 for none/pointwise/chunked/
// layered range coding) since the range coder itself is out of scope
// (spec Non-goals) — see DESIGN.md for the convention this repurposes.
type ChunkBackendID uint8

const (
	ChunkBackendNone ChunkBackendID = iota
	ChunkBackendDeflate
	ChunkBackendLZ4
)

type chunkBackendFuncs struct {
	newCompressor   func() ChunkCompressor
	newDecompressor func() ChunkDecompressor
}

// chunkBackendRegistry is populated by internal/codec's init(), mirroring
// itemRegistry's cycle-avoidance pattern in codec.go.
var chunkBackendRegistry = map[ChunkBackendID]chunkBackendFuncs{}

// RegisterChunkBackend installs the compressor/decompressor factory pair
// internal/codec provides for one ChunkBackendID.
func RegisterChunkBackend(id ChunkBackendID, newCompressor func() ChunkCompressor, newDecompressor func() ChunkDecompressor) {
	chunkBackendRegistry[id] = chunkBackendFuncs{newCompressor: newCompressor, newDecompressor: newDecompressor}
}

// NewChunkCompressor builds a fresh compressor for backend id. A new
// instance is required per chunk since each chunk frames an
// independent compressed stream.
func NewChunkCompressor(id ChunkBackendID) (ChunkCompressor, error) {
	f, ok := chunkBackendRegistry[id]
	if !ok {
		return nil, &FormatError{Reason: fmt.Sprintf("codec: no registered chunk backend %d", id)}
	}
	return f.newCompressor(), nil
}

// NewChunkDecompressor builds a fresh decompressor for backend id.
func NewChunkDecompressor(id ChunkBackendID) (ChunkDecompressor, error) {
	f, ok := chunkBackendRegistry[id]
	if !ok {
		return nil, &FormatError{Reason: fmt.Sprintf("codec: no registered chunk backend %d", id)}
	}
	return f.newDecompressor(), nil
}

// defaultChunkSize is the points-per-chunk used when a WriterOptions
// requests compression without naming an explicit LASzipVLR.ChunkSize,
// matching upstream LAStools' default.
const defaultChunkSize = 50000
