package codec

import "github.com/go-laslib/laslib/pkg/las"

// init wires this package's per-item decode/encode functions into
// pkg/las.PointCodec's registry. Living here (rather than pkg/las
// importing internal/codec, which would create a cycle since this
// package imports pkg/las for the Point type) keeps the dependency
// direction pointing one way: internal/codec -> pkg/las.
func init() {
	las.RegisterItemCodec(las.ItemPoint10, DecodePoint10, EncodePoint10)
	las.RegisterItemCodec(las.ItemPoint14, DecodePoint14, EncodePoint14)
	las.RegisterItemCodec(las.ItemGPSTime11, DecodeGPSTime, EncodeGPSTime)
	las.RegisterItemCodec(las.ItemRGB12, DecodeRGB, EncodeRGB)
	las.RegisterItemCodec(las.ItemRGB14, DecodeRGB, EncodeRGB)
	las.RegisterItemCodec(las.ItemRGBNIR14, DecodeRGBNIR, EncodeRGBNIR)
	las.RegisterItemCodec(las.ItemWavepacket13, DecodeWavepacket, EncodeWavepacket)
	las.RegisterItemCodec(las.ItemWavepacket14, DecodeWavepacket, EncodeWavepacket)
	las.RegisterItemCodec(las.ItemByte, DecodeExtraBytes, EncodeExtraBytes)
	las.RegisterItemCodec(las.ItemByte14, DecodeExtraBytes, EncodeExtraBytes)

	// Chunk-level LAZ backends: same cycle-avoidance reason as above.
	// reader_las.go/writer.go reach these through pkg/las.NewChunk*
	// rather than importing this package directly.
	las.RegisterChunkBackend(las.ChunkBackendDeflate,
		func() las.ChunkCompressor { return NewDeflateCompressor() },
		func() las.ChunkDecompressor { return NewDeflateDecompressor() })
	las.RegisterChunkBackend(las.ChunkBackendLZ4,
		func() las.ChunkCompressor { return NewLZ4Compressor() },
		func() las.ChunkDecompressor { return NewLZ4Decompressor() })
}
