package pointio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/banshee-data/perpl/internal/relpos"
)

// ErrUnsupportedFormat is returned for file extensions no reader handles.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Format names an output encoding for feature tables.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

// ParseFormat validates an output format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatParquet:
		return FormatParquet, nil
	default:
		return "", fmt.Errorf("%w: %q (want csv or parquet)", ErrUnsupportedFormat, s)
	}
}

// ReadFile reads a point table, choosing the reader from the file extension:
// .csv, .txt, .npy or .parquet, each optionally followed by .gz.
func ReadFile(path string) (Table, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return Table{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	name := strings.ToLower(filepath.Base(path))
	var r io.Reader = f
	compressed := strings.HasSuffix(name, ".gz")
	if compressed {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return Table{}, fmt.Errorf("failed to open gzip stream in %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
		name = strings.TrimSuffix(name, ".gz")
	}

	var t Table
	switch filepath.Ext(name) {
	case ".csv", ".txt":
		t, err = ReadCSV(r)
	case ".npy":
		t, err = ReadNPY(r)
	case ".parquet":
		t, err = readParquetStream(f, r, compressed)
	default:
		return Table{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}
	if err != nil {
		return Table{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return t, nil
}

// readParquetStream reads from the file directly when it is uncompressed,
// otherwise buffers the decompressed stream to get random access.
func readParquetStream(f *os.File, r io.Reader, compressed bool) (Table, error) {
	if !compressed {
		info, err := f.Stat()
		if err != nil {
			return Table{}, err
		}
		return ReadParquet(f, info.Size())
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return Table{}, err
	}
	return ReadParquet(bytes.NewReader(data), int64(len(data)))
}

// WriteFeatures writes table to path in the given format, creating parent
// directories as needed.
func WriteFeatures(path string, table relpos.FeatureTable, format Format) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	switch format {
	case FormatParquet:
		return WriteFeaturesParquet(f, table)
	case FormatCSV, "":
		return WriteCSV(f, table.Columns(), table.Rows())
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}
