package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/nnsearch/codec"
	"github.com/hupe1980/nnsearch/resource"
)

// ErrUnknownFormat is returned by Load for an unrecognized file extension.
var ErrUnknownFormat = errors.New("dataset: unknown format")

// Compression identifies a stream compression.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZstd
	CompressionLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return "none"
	}
}

// SplitCompression returns the compression indicated by path's extension and
// path with that extension removed.
func SplitCompression(path string) (string, Compression) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".gz", ".gzip":
		return strings.TrimSuffix(path, filepath.Ext(path)), CompressionGzip
	case ".zst", ".zstd":
		return strings.TrimSuffix(path, filepath.Ext(path)), CompressionZstd
	case ".lz4":
		return strings.TrimSuffix(path, filepath.Ext(path)), CompressionLZ4
	default:
		return path, CompressionNone
	}
}

type readCloser struct {
	io.Reader
	closers []func() error
}

func (rc *readCloser) Close() error {
	var errs []error
	for _, c := range rc.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// Decompress wraps r in a decompressor for c. Closing the result releases
// the decompressor but not r.
func Decompress(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case CompressionNone:
		return io.NopCloser(r), nil
	case CompressionGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("dataset: gzip: %w", err)
		}
		return zr, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("dataset: zstd: %w", err)
		}
		return dec.IOReadCloser(), nil
	case CompressionLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("dataset: unsupported compression %d", c)
	}
}

// Open opens path for reading, decompressing by extension.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	_, c := SplitCompression(path)
	dr, err := Decompress(f, c)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	return &readCloser{Reader: dr, closers: []func() error{dr.Close, f.Close}}, nil
}

// Options configures Load.
type Options struct {
	// Codec decodes JSON Lines. Defaults to codec.Default.
	Codec codec.Codec

	// CSV configures CSV and TSV parsing.
	CSV CSVOptions

	// Table, IDColumn and VectorColumn select the SQLite source.
	Table        string
	IDColumn     string
	VectorColumn string

	// Controller paces file reads. Nil reads at full speed.
	Controller *resource.Controller
}

// DefaultOptions contains the default Load options.
var DefaultOptions = Options{
	Codec:        codec.Default,
	CSV:          DefaultCSVOptions,
	Table:        "vectors",
	IDColumn:     "id",
	VectorColumn: "embedding",
}

// Load reads a dataset from path. The format follows the extension left
// after removing any compression suffix: .csv, .tsv, .jsonl/.ndjson,
// .arrows (Arrow IPC stream), .parquet or .db/.sqlite/.sqlite3. Parquet and
// SQLite files need random access and cannot be compressed.
func Load(ctx context.Context, path string, optFns ...func(o *Options)) (*Dataset, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	inner, c := SplitCompression(path)
	ext := strings.ToLower(filepath.Ext(inner))

	switch ext {
	case ".db", ".sqlite", ".sqlite3":
		if c != CompressionNone {
			return nil, fmt.Errorf("%w: compressed sqlite file %s", ErrUnknownFormat, path)
		}
		return loadSQLite(ctx, path, opts)
	case ".parquet":
		if c != CompressionNone {
			return nil, fmt.Errorf("%w: compressed parquet file %s", ErrUnknownFormat, path)
		}
		return loadParquet(path)
	case ".csv", ".tsv", ".jsonl", ".ndjson", ".arrows":
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}

	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	r := io.Reader(rc)
	if opts.Controller != nil {
		r = resource.NewRateLimitedReader(ctx, rc, opts.Controller)
	}

	switch ext {
	case ".csv":
		return ReadCSV(r, opts.CSV)
	case ".tsv":
		csvOpts := opts.CSV
		csvOpts.Comma = '\t'
		return ReadCSV(r, csvOpts)
	case ".arrows":
		return ReadArrow(r)
	default:
		return ReadJSONL(r, opts.Codec)
	}
}

func loadParquet(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return ReadParquet(f, st.Size())
}

func loadSQLite(ctx context.Context, path string, opts Options) (*Dataset, error) {
	// Opening a missing path would create an empty database.
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	db, err := OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return ReadSQLite(ctx, db, opts.Table, opts.IDColumn, opts.VectorColumn)
}
