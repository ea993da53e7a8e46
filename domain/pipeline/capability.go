// Package pipeline defines the capabilities the batch embedding processor is
// assembled from: a dataset source, a text embedder and a database sink.
package pipeline

import (
	"context"

	"github.com/helixml/minimodel/domain/dataset"
)

// Ingester provides the complete dataset for a run.
type Ingester interface {
	Ingest(ctx context.Context) (dataset.Dataset, error)
}

// Embedder maps a single text value to its embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) (dataset.EmbeddingVector, error)
}

// Sink opens connections to the destination store.
type Sink interface {
	Connect(ctx context.Context) (Connection, error)
}

// Connection is an open handle to the destination store.
type Connection interface {
	// Append adds every row of data to table. Existing rows are never
	// modified.
	Append(ctx context.Context, table string, data dataset.Dataset) error

	// Close releases the handle.
	Close() error
}

// IngestFunc adapts a function to the Ingester interface.
type IngestFunc func(ctx context.Context) (dataset.Dataset, error)

// Ingest calls f.
func (f IngestFunc) Ingest(ctx context.Context) (dataset.Dataset, error) { return f(ctx) }

// EmbedFunc adapts a function to the Embedder interface.
type EmbedFunc func(ctx context.Context, text string) (dataset.EmbeddingVector, error)

// Embed calls f.
func (f EmbedFunc) Embed(ctx context.Context, text string) (dataset.EmbeddingVector, error) {
	return f(ctx, text)
}

// ConnectFunc adapts a function to the Sink interface.
type ConnectFunc func(ctx context.Context) (Connection, error)

// Connect calls f.
func (f ConnectFunc) Connect(ctx context.Context) (Connection, error) { return f(ctx) }

var (
	_ Ingester = IngestFunc(nil)
	_ Embedder = EmbedFunc(nil)
	_ Sink     = ConnectFunc(nil)
)
