// Package ingest provides dataset sources: local files, object storage
// and SQL queries, decoded from CSV or JSON lines.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/helixml/minimodel/domain/dataset"
)

// Errors returned while resolving a source.
var (
	ErrUnknownFormat = errors.New("ingest: unknown format")
	ErrUnknownSource = errors.New("ingest: unknown source type")
)

// Format identifies the encoding of a tabular stream.
type Format string

// Supported formats.
const (
	FormatCSV   Format = "csv"
	FormatJSONL Format = "jsonl"
)

var formatExtensions = map[string]Format{
	".csv":    FormatCSV,
	".tsv":    FormatCSV,
	".jsonl":  FormatJSONL,
	".ndjson": FormatJSONL,
	".json":   FormatJSONL,
}

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSONL:
		return f, nil
	case "ndjson", "json":
		return FormatJSONL, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FormatFromName detects the format from a file or object name, ignoring any
// compression extension.
func FormatFromName(name string) (Format, error) {
	_, stripped := CompressionFromName(name)
	ext := strings.ToLower(path.Ext(stripped))
	if f, ok := formatExtensions[ext]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: cannot tell format of %q", ErrUnknownFormat, name)
}

// Option configures how a source decodes its stream.
type Option func(*decodeOptions)

type decodeOptions struct {
	format      Format
	compression Compression
	schema      Schema
	delimiter   rune
}

// WithFormat sets the format instead of detecting it from the name.
func WithFormat(f Format) Option {
	return func(o *decodeOptions) { o.format = f }
}

// WithCompression sets the compression instead of detecting it from the name.
func WithCompression(c Compression) Option {
	return func(o *decodeOptions) { o.compression = c }
}

// WithSchema declares column types.
func WithSchema(s Schema) Option {
	return func(o *decodeOptions) { o.schema = s }
}

// WithDelimiter sets the CSV field delimiter. The default is a comma, or a
// tab for .tsv names.
func WithDelimiter(r rune) Option {
	return func(o *decodeOptions) { o.delimiter = r }
}

func newDecodeOptions(opts []Option) decodeOptions {
	var o decodeOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Read decodes a complete dataset from r. The name is used to detect the
// format and compression when options leave them unset.
func Read(r io.Reader, name string, opts ...Option) (dataset.Dataset, error) {
	return newDecodeOptions(opts).read(r, name)
}

func (o decodeOptions) read(r io.Reader, name string) (dataset.Dataset, error) {
	compression := o.compression
	if compression == "" {
		compression, _ = CompressionFromName(name)
	}
	format := o.format
	if format == "" {
		f, err := FormatFromName(name)
		if err != nil {
			return dataset.Dataset{}, err
		}
		format = f
	}

	stream, err := Decompress(r, compression)
	if err != nil {
		return dataset.Dataset{}, err
	}
	defer func() { _ = stream.Close() }()

	switch format {
	case FormatCSV:
		delimiter := o.delimiter
		if delimiter == 0 {
			delimiter = ','
			if _, stripped := CompressionFromName(name); strings.EqualFold(path.Ext(stripped), ".tsv") {
				delimiter = '\t'
			}
		}
		return DecodeCSV(stream, delimiter, o.schema)
	case FormatJSONL:
		return DecodeJSONL(stream, o.schema)
	default:
		return dataset.Dataset{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
