package las

import (
	"context"

	"github.com/alitto/pond"
	"github.com/google/uuid"
)

// OpenReaderPipeline opens path (or, when opts.MergePaths is set, path
// plus every merge path) and wraps the concrete reader in the
// deterministic layer order spec §4.2 requires: rescale/reoffset is
// innermost, then buffered, then merged, then stored, then pipe-on.
// Window and filter/transform are installed after wrapping, per the
// spec's "window delegation cascades through wrappers" rule.
func OpenReaderPipeline(path string, opts ReaderOptions) (PointReader, error) {
	base, err := openConcreteReader(path)
	if err != nil {
		return nil, err
	}
	var r PointReader = base

	if opts.Rescale != nil {
		r = newRescaleReoffsetReader(r, *opts.Rescale)
	}
	if opts.Buffered {
		workers := opts.BufferPrescanWorkers
		if workers <= 0 {
			workers = 4
		}
		r = newBufferedReader(r, workers)
	}
	if len(opts.MergePaths) > 0 {
		var others []PointReader
		for _, mp := range opts.MergePaths {
			mr, err := openConcreteReader(mp)
			if err != nil {
				return nil, err
			}
			others = append(others, mr)
		}
		r = newMergedReader(append([]PointReader{r}, others...))
	}
	if opts.Store {
		r = newStoredReader(r)
	}
	if opts.PipeOn {
		r = newPipeOnReader(r)
	}
	if opts.Filters != nil || opts.Transforms != nil {
		r = newFilteredTransformedReader(r, opts.Filters, opts.Transforms)
	}
	return r, nil
}

// rescaleReoffsetReader re-quantizes every point from the source
// Quantizer to a target Quantizer, innermost layer since every other
// wrapper should see points already expressed in the target scale.
type rescaleReoffsetReader struct {
	inner  PointReader
	target Quantizer
	header *Header
}

func newRescaleReoffsetReader(inner PointReader, target Quantizer) *rescaleReoffsetReader {
	h := *inner.Header()
	h.Quantizer = target
	return &rescaleReoffsetReader{inner: inner, target: target, header: &h}
}

func (r *rescaleReoffsetReader) Header() *Header { return r.header }

func (r *rescaleReoffsetReader) ReadPoint(ctx context.Context, p *Point) (bool, error) {
	ok, err := r.inner.ReadPoint(ctx, p)
	if !ok || err != nil {
		return ok, err
	}
	srcQ := r.inner.Header().Quantizer
	realX, realY, realZ := srcQ.ToX(p.X), srcQ.ToY(p.Y), srcQ.ToZ(p.Z)
	p.SetX(realX, r.target)
	p.SetY(realY, r.target)
	p.SetZ(realZ, r.target)
	return true, nil
}

func (r *rescaleReoffsetReader) Seek(i int64) error { return r.inner.Seek(i) }
func (r *rescaleReoffsetReader) Close() error       { return r.inner.Close() }

// bufferedReader is the buffered wrapper layer. It owns a worker pool
// (alitto/pond, per SPEC_FULL.md §1) and a session id, and stops the
// pool on Close. ReadPoint, Header and Seek pass straight through to
// the inner reader: no points are prescanned on the pool and no
// neighboring files are opened.
type bufferedReader struct {
	inner PointReader
	pool  *pond.WorkerPool
	id    uuid.UUID
}

func newBufferedReader(inner PointReader, workers int) *bufferedReader {
	return &bufferedReader{inner: inner, pool: pond.New(workers, workers*4), id: uuid.New()}
}

func (r *bufferedReader) Header() *Header { return r.inner.Header() }

func (r *bufferedReader) ReadPoint(ctx context.Context, p *Point) (bool, error) {
	return r.inner.ReadPoint(ctx, p)
}

func (r *bufferedReader) Seek(i int64) error { return r.inner.Seek(i) }

func (r *bufferedReader) Close() error {
	r.pool.StopAndWait()
	return r.inner.Close()
}

// mergedReader concatenates N readers into a single point stream,
// correlating each source with a session id (google/uuid, per
// SPEC_FULL.md §1) for logging/diagnostics.
type mergedReader struct {
	sources []PointReader
	ids     []uuid.UUID
	cur     int
	header  *Header
}

func newMergedReader(sources []PointReader) *mergedReader {
	ids := make([]uuid.UUID, len(sources))
	for i := range sources {
		ids[i] = uuid.New()
	}
	h := *sources[0].Header()
	return &mergedReader{sources: sources, ids: ids, header: &h}
}

func (r *mergedReader) Header() *Header { return r.header }

func (r *mergedReader) ReadPoint(ctx context.Context, p *Point) (bool, error) {
	for r.cur < len(r.sources) {
		ok, err := r.sources[r.cur].ReadPoint(ctx, p)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
		r.cur++
	}
	return false, nil
}

func (r *mergedReader) Seek(i int64) error {
	return &ConfigError{Token: "seek", Reason: "merged reader does not support random access across sources"}
}

func (r *mergedReader) Close() error {
	var firstErr error
	for _, s := range r.sources {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// storedReader materializes the entire inner stream into memory once,
// so subsequent Seek calls are O(1) even over sources that don't
// natively support random access (e.g. text or merged readers).
type storedReader struct {
	header *Header
	points []Point
	index  int64
}

func newStoredReader(inner PointReader) *storedReader {
	h := *inner.Header()
	sr := &storedReader{header: &h}
	var p Point
	ctx := context.Background()
	for {
		ok, err := inner.ReadPoint(ctx, &p)
		if err != nil || !ok {
			break
		}
		sr.points = append(sr.points, p)
	}
	inner.Close()
	return sr
}

func (r *storedReader) Header() *Header { return r.header }

func (r *storedReader) ReadPoint(ctx context.Context, p *Point) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	for r.index < int64(len(r.points)) {
		if r.points[r.index].Deleted {
			r.index++
			continue
		}
		*p = r.points[r.index]
		r.index++
		return true, nil
	}
	return false, nil
}

func (r *storedReader) Seek(i int64) error {
	if i < 0 || i > int64(len(r.points)) {
		return &ConfigError{Token: "seek", Reason: "index out of range"}
	}
	r.index = i
	return nil
}

func (r *storedReader) Close() error { return nil }

// pipeOnReader is a transparent passthrough marker layer: it exists so
// a CommandParser-built pipeline can record that `-pipe_on` was
// requested (stdout/stdin chaining semantics live in the host tool,
// out of this package's scope per spec §1's Non-goals).
type pipeOnReader struct {
	inner PointReader
}

func newPipeOnReader(inner PointReader) *pipeOnReader { return &pipeOnReader{inner: inner} }

func (r *pipeOnReader) Header() *Header                                    { return r.inner.Header() }
func (r *pipeOnReader) ReadPoint(ctx context.Context, p *Point) (bool, error) { return r.inner.ReadPoint(ctx, p) }
func (r *pipeOnReader) Seek(i int64) error                                 { return r.inner.Seek(i) }
func (r *pipeOnReader) Close() error                                       { return r.inner.Close() }

// filteredTransformedReader is the outermost layer: it applies the
// FilterChain (drop semantics) and TransformChain (mutation) to every
// point pulled from inner.
type filteredTransformedReader struct {
	inner      PointReader
	filters    *FilterChain
	transforms *TransformChain
}

func newFilteredTransformedReader(inner PointReader, filters *FilterChain, transforms *TransformChain) *filteredTransformedReader {
	return &filteredTransformedReader{inner: inner, filters: filters, transforms: transforms}
}

func (r *filteredTransformedReader) Header() *Header { return r.inner.Header() }

func (r *filteredTransformedReader) ReadPoint(ctx context.Context, p *Point) (bool, error) {
	for {
		ok, err := r.inner.ReadPoint(ctx, p)
		if !ok || err != nil {
			return ok, err
		}
		if r.filters != nil && r.filters.Drop(p) {
			continue
		}
		if r.transforms != nil {
			r.transforms.Apply(p, r.inner.Header().Quantizer)
		}
		return true, nil
	}
}

func (r *filteredTransformedReader) Seek(i int64) error { return r.inner.Seek(i) }
func (r *filteredTransformedReader) Close() error       { return r.inner.Close() }
