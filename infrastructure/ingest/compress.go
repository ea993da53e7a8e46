package ingest

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies how a source stream is compressed.
type Compression string

// Supported compressions.
const (
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
	CompressionLZ4  Compression = "lz4"
)

var compressionExtensions = map[string]Compression{
	".gz":   CompressionGzip,
	".gzip": CompressionGzip,
	".zst":  CompressionZstd,
	".zstd": CompressionZstd,
	".lz4":  CompressionLZ4,
}

// ParseCompression parses a compression name. The empty string is none.
func ParseCompression(s string) (Compression, error) {
	switch c := Compression(strings.ToLower(strings.TrimSpace(s))); c {
	case "", CompressionNone:
		return CompressionNone, nil
	case CompressionGzip, CompressionZstd, CompressionLZ4:
		return c, nil
	case "zst":
		return CompressionZstd, nil
	default:
		return "", fmt.Errorf("%w: compression %q", ErrUnknownFormat, s)
	}
}

// CompressionFromName detects compression from a file or object name and
// returns the name with the compression extension removed.
func CompressionFromName(name string) (Compression, string) {
	ext := strings.ToLower(path.Ext(name))
	if c, ok := compressionExtensions[ext]; ok {
		return c, strings.TrimSuffix(name, path.Ext(name))
	}
	return CompressionNone, name
}

// Decompress wraps r with a reader that undoes c. Closing the returned
// reader releases decoder resources but does not close r.
func Decompress(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case "", CompressionNone:
		return io.NopCloser(r), nil
	case CompressionGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("open gzip stream: %w", err)
		}
		return zr, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("open zstd stream: %w", err)
		}
		return dec.IOReadCloser(), nil
	case CompressionLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("%w: compression %q", ErrUnknownFormat, c)
	}
}
