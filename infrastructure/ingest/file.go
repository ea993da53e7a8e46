package ingest

import (
	"context"
	"fmt"
	"os"

	"github.com/helixml/minimodel/domain/dataset"
	"github.com/helixml/minimodel/domain/pipeline"
)

// FileSource loads a dataset from a local file.
type FileSource struct {
	path string
	opts decodeOptions
}

// NewFileSource creates a FileSource for path. Format and compression are
// detected from the file name unless set by options.
func NewFileSource(path string, opts ...Option) *FileSource {
	return &FileSource{path: path, opts: newDecodeOptions(opts)}
}

// Path returns the source file path.
func (s *FileSource) Path() string { return s.path }

// Ingest reads and decodes the whole file.
func (s *FileSource) Ingest(ctx context.Context) (dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return dataset.Dataset{}, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return dataset.Dataset{}, fmt.Errorf("open source file: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := s.opts.read(f, s.path)
	if err != nil {
		return dataset.Dataset{}, fmt.Errorf("load %s: %w", s.path, err)
	}
	return data, nil
}

var _ pipeline.Ingester = (*FileSource)(nil)
