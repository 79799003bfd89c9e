package las

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// rasterReader turns a regular elevation grid (ESRI ASCII grid .asc,
// or a raw binary grid .bil/.dtm read as float32 rows) into a point
// stream, one point per non-nodata cell, ordered row-major from the
// grid's northwest corner. Scoped per DESIGN.md to single-band
// elevation grids; multi-band BIL imagery and DTM's optional
// compressed-run header extension are not modeled.
type rasterReader struct {
	header  *Header
	values  []float64
	ncols, nrows int
	cellSize     float64
	xllCorner, yllCorner float64
	nodata  float64
	index   int
}

// OpenRasterReader dispatches on extension between the ASCII grid
// parser and the raw binary grid reader.
func OpenRasterReader(path string) (*rasterReader, error) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".asc"):
		return openASCGrid(path)
	default:
		return openBinaryGrid(path)
	}
}

func openASCGrid(path string) (*rasterReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := &rasterReader{nodata: -9999}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 1024*1024), 1024*1024)

	readKeyValue := func(line string) (string, float64, error) {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return "", 0, fmt.Errorf("malformed ASC grid header line %q", line)
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		return strings.ToLower(fields[0]), v, err
	}

	for i := 0; i < 6; i++ {
		if !sc.Scan() {
			return nil, &FormatError{Path: path, Reason: "ASC grid header truncated"}
		}
		key, v, err := readKeyValue(sc.Text())
		if err != nil {
			return nil, &FormatError{Path: path, Reason: err.Error()}
		}
		switch key {
		case "ncols":
			r.ncols = int(v)
		case "nrows":
			r.nrows = int(v)
		case "xllcorner":
			r.xllCorner = v
		case "yllcorner":
			r.yllCorner = v
		case "cellsize":
			r.cellSize = v
		case "nodata_value":
			r.nodata = v
		}
	}

	r.values = make([]float64, 0, r.ncols*r.nrows)
	for sc.Scan() {
		for _, tok := range strings.Fields(sc.Text()) {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, &FormatError{Path: path, Reason: "non-numeric ASC grid cell value"}
			}
			r.values = append(r.values, v)
		}
	}

	h := DefaultHeader()
	h.VersionMajor, h.VersionMinor = 1, 2
	h.PointDataFormat = 0
	h.Quantizer = NewQuantizer(0.001, 0.001, 0.001, 0, 0, 0)
	h.MinX, h.MaxX = r.xllCorner, r.xllCorner+float64(r.ncols)*r.cellSize
	h.MinY, h.MaxY = r.yllCorner, r.yllCorner+float64(r.nrows)*r.cellSize
	r.header = h
	return r, nil
}

// openBinaryGrid reads a raw little-endian float32 grid (.bil/.dtm).
// No sidecar (".hdr"/".dmw") is read: the grid always gets unit cells
// at the origin, and the whole file is treated as a single row.
func openBinaryGrid(path string) (*rasterReader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r := &rasterReader{nodata: -9999, cellSize: 1, ncols: len(data) / 4, nrows: 1}
	for i := 0; i+4 <= len(data); i += 4 {
		r.values = append(r.values, float64(ReadF32(data[i:i+4], LittleEndian)))
	}
	h := DefaultHeader()
	h.VersionMajor, h.VersionMinor = 1, 2
	h.Quantizer = NewQuantizer(0.001, 0.001, 0.001, 0, 0, 0)
	r.header = h
	return r, nil
}

func (r *rasterReader) Header() *Header { return r.header }

func (r *rasterReader) ReadPoint(ctx context.Context, p *Point) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	for r.index < len(r.values) {
		v := r.values[r.index]
		row := r.index / r.ncols
		col := r.index % r.ncols
		r.index++
		if v == r.nodata {
			continue
		}
		x := r.xllCorner + (float64(col)+0.5)*r.cellSize
		y := r.yllCorner + (float64(r.nrows-row)-0.5)*r.cellSize
		p.SetX(x, r.header.Quantizer)
		p.SetY(y, r.header.Quantizer)
		p.SetZ(v, r.header.Quantizer)
		return true, nil
	}
	return false, nil
}

func (r *rasterReader) Seek(i int64) error {
	if i < 0 || i > int64(len(r.values)) {
		return &ConfigError{Token: "seek", Reason: "index out of range"}
	}
	r.index = int(i)
	return nil
}

func (r *rasterReader) Close() error { return nil }
