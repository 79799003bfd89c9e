package las

import "context"

// PointReader is the capability interface every concrete format
// reader and every ReaderPipeline wrapper layer implements. Modeled on
// _examples/beetlebugorg-s57/internal/parser/reader.go's narrow
// streaming-decode interface, generalized from "next chart feature" to
// "next point".
type PointReader interface {
	// Header returns the file-level header this reader produced (or
	// synthesized, for legacy formats with no native header).
	Header() *Header
	// ReadPoint decodes the next point into p, returning false (nil
	// error) at end of stream.
	ReadPoint(ctx context.Context, p *Point) (bool, error)
	// Seek repositions to point index i (0-based), when the
	// underlying source supports random access; returns ConfigError
	// otherwise.
	Seek(i int64) error
	// Close releases the underlying ByteStream and any resources the
	// wrapper layer owns.
	Close() error
}

// ReaderOptions configures OpenReaderPipeline. DefaultReaderOptions
// mirrors the teacher's Default*Options() constructor pattern
// (_examples/beetlebugorg-s57/pkg/s57/options.go).
type ReaderOptions struct {
	// Rescale/Reoffset, when non-nil, install the rescale/reoffset
	// wrapper layer with the given target Quantizer.
	Rescale  *Quantizer
	Buffered bool
	BufferPrescanWorkers int
	// MergePaths, when non-empty, opens each path as an additional
	// source and merges them into a single point stream (the merged
	// reader layer).
	MergePaths []string
	Store       bool
	PipeOn      bool
	Filters     *FilterChain
	Transforms  *TransformChain
	Logger      Logger
}

// DefaultReaderOptions returns the no-op configuration: a plain
// concrete reader with no wrapper layers installed.
func DefaultReaderOptions() ReaderOptions {
	return ReaderOptions{
		BufferPrescanWorkers: 4,
		Logger:               NopLogger,
	}
}

// OpenReader opens path with a concrete format reader chosen by file
// extension, with no pipeline wrapper layers. Most callers want
// OpenReaderPipeline instead.
func OpenReader(path string) (PointReader, error) {
	return openConcreteReader(path)
}
