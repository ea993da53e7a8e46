package ingest

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const peopleCSV = "id,name\n1,Alice\n2,\n3,Bob\n"

func compressBytes(t *testing.T, c Compression, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	var w io.WriteCloser
	switch c {
	case CompressionGzip:
		w = gzip.NewWriter(&buf)
	case CompressionZstd:
		enc, err := zstd.NewWriter(&buf)
		require.NoError(t, err)
		w = enc
	case CompressionLZ4:
		w = lz4.NewWriter(&buf)
	default:
		return data
	}
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestFileSource_DetectsCompression(t *testing.T) {
	tests := []struct {
		file        string
		compression Compression
	}{
		{file: "people.csv", compression: CompressionNone},
		{file: "people.csv.gz", compression: CompressionGzip},
		{file: "people.csv.zst", compression: CompressionZstd},
		{file: "people.csv.lz4", compression: CompressionLZ4},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			path := writeFile(t, tt.file, compressBytes(t, tt.compression, []byte(peopleCSV)))

			d, err := NewFileSource(path).Ingest(context.Background())
			require.NoError(t, err)

			assert.Equal(t, 3, d.Rows())
			assert.Equal(t, []string{"name"}, d.TextColumns())
			names, _ := d.Column("name")
			assert.Equal(t, []any{"Alice", nil, "Bob"}, names.Values())
		})
	}
}

func TestFileSource_JSONL(t *testing.T) {
	path := writeFile(t, "rows.ndjson", []byte(`{"a":1}`+"\n"+`{"a":2}`+"\n"))
	d, err := NewFileSource(path).Ingest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, d.Rows())
}

func TestFileSource_TSV(t *testing.T) {
	path := writeFile(t, "rows.tsv", []byte("a\tb\n1\tx\n"))
	d, err := NewFileSource(path).Ingest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, d.ColumnNames())
}

func TestFileSource_ExplicitFormat(t *testing.T) {
	path := writeFile(t, "export.dat", compressBytes(t, CompressionGzip, []byte(peopleCSV)))

	_, err := NewFileSource(path).Ingest(context.Background())
	require.ErrorIs(t, err, ErrUnknownFormat)

	d, err := NewFileSource(path, WithFormat(FormatCSV), WithCompression(CompressionGzip)).Ingest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, d.Rows())
}

func TestFileSource_Missing(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "nope.csv")).Ingest(context.Background())
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileSource_CorruptCompression(t *testing.T) {
	path := writeFile(t, "people.csv.gz", []byte(peopleCSV))
	_, err := NewFileSource(path).Ingest(context.Background())
	require.Error(t, err)
}

func TestParseFormatAndCompression(t *testing.T) {
	f, err := ParseFormat("NDJSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSONL, f)

	_, err = ParseFormat("parquet")
	require.ErrorIs(t, err, ErrUnknownFormat)

	c, err := ParseCompression("zst")
	require.NoError(t, err)
	assert.Equal(t, CompressionZstd, c)

	c, err = ParseCompression("")
	require.NoError(t, err)
	assert.Equal(t, CompressionNone, c)

	_, err = ParseCompression("bzip2")
	require.ErrorIs(t, err, ErrUnknownFormat)

	c, stripped := CompressionFromName("data/x.jsonl.zst")
	assert.Equal(t, CompressionZstd, c)
	assert.Equal(t, "data/x.jsonl", stripped)
}
