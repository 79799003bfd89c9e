package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/pierrec/lz4/v4"
)

// ItemCompressor is the external contract a LAZ chunk codec must
// satisfy: the real LASzip format uses range/arithmetic coding with
// per-field context models, which is explicitly out of scope (spec
// Non-goals). This package stands that contract up with real
// general-purpose entropy coders instead, selected per
// SPEC_FULL.md §1's domain-stack table.
type ItemCompressor interface {
	Init(w io.Writer) error
	EncodeItem(raw []byte) error
	FlushChunk() error
	ResetChunk()
}

// ItemDecompressor is the decode-side counterpart of ItemCompressor.
type ItemDecompressor interface {
	Init(r io.Reader) error
	DecodeItem(raw []byte) error
	ResetChunk()
}

// Backend selects which general-purpose coder a compressed chunk uses.
type Backend int

const (
	BackendDeflate Backend = iota
	BackendLZ4
)

// deflateCompressor buffers one chunk's raw item bytes and DEFLATEs
// them as a unit on FlushChunk, via klauspost/compress/flate (chosen
// in SPEC_FULL.md §1 over stdlib compress/flate for its faster
// encoder and BestSpeed-tuned writer reuse, matching how the pack's
// arloliu-mebo repo uses it for its own point-stream chunks).
type deflateCompressor struct {
	w   io.Writer
	fw  *flate.Writer
	buf bytes.Buffer
}

func NewDeflateCompressor() *deflateCompressor { return &deflateCompressor{} }

func (c *deflateCompressor) Init(w io.Writer) error {
	c.w = w
	fw, err := flate.NewWriter(w, flate.BestSpeed)
	if err != nil {
		return err
	}
	c.fw = fw
	return nil
}

func (c *deflateCompressor) EncodeItem(raw []byte) error {
	_, err := c.buf.Write(raw)
	return err
}

func (c *deflateCompressor) FlushChunk() error {
	if _, err := c.fw.Write(c.buf.Bytes()); err != nil {
		return err
	}
	if err := c.fw.Flush(); err != nil {
		return err
	}
	c.buf.Reset()
	return nil
}

func (c *deflateCompressor) ResetChunk() { c.buf.Reset() }

type deflateDecompressor struct {
	fr io.ReadCloser
}

func NewDeflateDecompressor() *deflateDecompressor { return &deflateDecompressor{} }

func (c *deflateDecompressor) Init(r io.Reader) error {
	c.fr = flate.NewReader(r)
	return nil
}

func (c *deflateDecompressor) DecodeItem(raw []byte) error {
	_, err := io.ReadFull(c.fr, raw)
	return err
}

func (c *deflateDecompressor) ResetChunk() {}

// lz4Compressor is the alternate chunk backend, selected by
// WriterOptions.Compress = ChunkBackendLZ4 and recorded in the LASzip
// VLR's compressor byte (not part of the real LASzip grammar, a
// SPEC_FULL.md-added knob exercising pierrec/lz4/v4).
type lz4Compressor struct {
	zw  *lz4.Writer
	buf bytes.Buffer
}

func NewLZ4Compressor() *lz4Compressor { return &lz4Compressor{} }

func (c *lz4Compressor) Init(w io.Writer) error {
	c.zw = lz4.NewWriter(w)
	return nil
}

func (c *lz4Compressor) EncodeItem(raw []byte) error {
	_, err := c.buf.Write(raw)
	return err
}

func (c *lz4Compressor) FlushChunk() error {
	if _, err := c.zw.Write(c.buf.Bytes()); err != nil {
		return err
	}
	if err := c.zw.Flush(); err != nil {
		return err
	}
	c.buf.Reset()
	return nil
}

func (c *lz4Compressor) ResetChunk() { c.buf.Reset() }

type lz4Decompressor struct {
	zr *lz4.Reader
}

func NewLZ4Decompressor() *lz4Decompressor { return &lz4Decompressor{} }

func (c *lz4Decompressor) Init(r io.Reader) error {
	c.zr = lz4.NewReader(r)
	return nil
}

func (c *lz4Decompressor) DecodeItem(raw []byte) error {
	_, err := io.ReadFull(c.zr, raw)
	return err
}

func (c *lz4Decompressor) ResetChunk() {}

// NewCompressor and NewDecompressor select a backend by id. Nothing in
// this module calls them: pkg/las's reader and writer reach the
// backends through the constructors registry.go installs with
// RegisterChunkBackend.
func NewCompressor(b Backend) (ItemCompressor, error) {
	switch b {
	case BackendDeflate:
		return NewDeflateCompressor(), nil
	case BackendLZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, fmt.Errorf("codec: unknown compression backend %d", b)
	}
}

func NewDecompressor(b Backend) (ItemDecompressor, error) {
	switch b {
	case BackendDeflate:
		return NewDeflateDecompressor(), nil
	case BackendLZ4:
		return NewLZ4Decompressor(), nil
	default:
		return nil, fmt.Errorf("codec: unknown compression backend %d", b)
	}
}
