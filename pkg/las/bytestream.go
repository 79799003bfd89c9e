package las

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// ByteOrder selects little- or big-endian scalar encoding. The on-disk
// LAS/LAZ format is always little-endian; ByteStream also offers the
// big-endian variants so the codec can support big-endian hosts without
// duplicating its call sites.
type ByteOrder int

const (
	LittleEndian ByteOrder = iota
	BigEndian
)

func (o ByteOrder) binary() binary.ByteOrder {
	if o == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// ByteStream is the abstract sequential/seekable byte source/sink every
// concrete Reader and Writer is built on. It intentionally says nothing
// about files vs. memory vs. network — FileStream and MemoryStream are
// the two concrete implementations the core uses, but hosts may supply
// their own.
type ByteStream interface {
	io.ReadWriteSeeker
	io.Closer
	// Len returns the total stream length in bytes.
	Len() (int64, error)
}

// FileStream adapts *os.File to ByteStream.
type FileStream struct {
	f *os.File
}

// OpenFileStream opens path for reading.
func OpenFileStream(path string) (*FileStream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &FileStream{f: f}, nil
}

// CreateFileStream creates (truncating) path for writing.
func CreateFileStream(path string) (*FileStream, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &FileStream{f: f}, nil
}

func (s *FileStream) Read(p []byte) (int, error)  { return s.f.Read(p) }
func (s *FileStream) Write(p []byte) (int, error) { return s.f.Write(p) }
func (s *FileStream) Close() error                { return s.f.Close() }

func (s *FileStream) Seek(offset int64, whence int) (int64, error) {
	return s.f.Seek(offset, whence)
}

func (s *FileStream) Len() (int64, error) {
	info, err := s.f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// MemoryStream adapts a growable in-memory buffer to ByteStream, used
// by the "stored" reader wrapper and by tests that want round trips
// without touching disk.
type MemoryStream struct {
	buf []byte
	pos int64
}

// NewMemoryStream wraps an existing byte slice (copied) for reading, or
// pass nil to start an empty stream for writing.
func NewMemoryStream(initial []byte) *MemoryStream {
	buf := make([]byte, len(initial))
	copy(buf, initial)
	return &MemoryStream{buf: buf}
}

func (s *MemoryStream) Read(p []byte) (int, error) {
	if s.pos >= int64(len(s.buf)) {
		return 0, io.EOF
	}
	n := copy(p, s.buf[s.pos:])
	s.pos += int64(n)
	return n, nil
}

func (s *MemoryStream) Write(p []byte) (int, error) {
	end := s.pos + int64(len(p))
	if end > int64(len(s.buf)) {
		grown := make([]byte, end)
		copy(grown, s.buf)
		s.buf = grown
	}
	n := copy(s.buf[s.pos:end], p)
	s.pos = end
	return n, nil
}

func (s *MemoryStream) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = s.pos
	case io.SeekEnd:
		base = int64(len(s.buf))
	default:
		return 0, fmt.Errorf("bytestream: invalid whence %d", whence)
	}
	newPos := base + offset
	if newPos < 0 {
		return 0, fmt.Errorf("bytestream: negative seek position")
	}
	s.pos = newPos
	return s.pos, nil
}

func (s *MemoryStream) Close() error   { return nil }
func (s *MemoryStream) Len() (int64, error) { return int64(len(s.buf)), nil }

// Bytes returns the current contents (not a copy).
func (s *MemoryStream) Bytes() []byte { return s.buf }

// Scalar helpers. These generalize the per-scalar
// binary.LittleEndian.UintN(buf[a:b]) slicing pattern seen throughout
// the example readers into reusable, order-parameterized functions.

func ReadU16(b []byte, order ByteOrder) uint16 { return order.binary().Uint16(b) }
func ReadU32(b []byte, order ByteOrder) uint32 { return order.binary().Uint32(b) }
func ReadU64(b []byte, order ByteOrder) uint64 { return order.binary().Uint64(b) }
func ReadI8(b []byte) int8                     { return int8(b[0]) }
func ReadI16(b []byte, order ByteOrder) int16   { return int16(order.binary().Uint16(b)) }
func ReadI32(b []byte, order ByteOrder) int32   { return int32(order.binary().Uint32(b)) }

func ReadF32(b []byte, order ByteOrder) float32 {
	return math.Float32frombits(order.binary().Uint32(b))
}

func ReadF64(b []byte, order ByteOrder) float64 {
	return math.Float64frombits(order.binary().Uint64(b))
}

func WriteU16(b []byte, v uint16, order ByteOrder) { order.binary().PutUint16(b, v) }
func WriteU32(b []byte, v uint32, order ByteOrder) { order.binary().PutUint32(b, v) }
func WriteU64(b []byte, v uint64, order ByteOrder) { order.binary().PutUint64(b, v) }
func WriteI8(b []byte, v int8)                     { b[0] = byte(v) }
func WriteI16(b []byte, v int16, order ByteOrder)   { order.binary().PutUint16(b, uint16(v)) }
func WriteI32(b []byte, v int32, order ByteOrder)   { order.binary().PutUint32(b, uint32(v)) }

func WriteF32(b []byte, v float32, order ByteOrder) {
	order.binary().PutUint32(b, math.Float32bits(v))
}

func WriteF64(b []byte, v float64, order ByteOrder) {
	order.binary().PutUint64(b, math.Float64bits(v))
}

// ReadFixedString reads an n-byte field and trims trailing NUL padding,
// matching the "32 characters, trimmed" convention used throughout the
// header.
func ReadFixedString(b []byte) string {
	i := bytes.IndexByte(b, 0)
	if i < 0 {
		i = len(b)
	}
	return string(b[:i])
}

// WriteFixedString writes s into an n-byte field, NUL-padding (and
// truncating) to fit exactly.
func WriteFixedString(b []byte, s string) {
	for i := range b {
		b[i] = 0
	}
	copy(b, s)
}
