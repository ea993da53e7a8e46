package provider

import (
	"context"
	"fmt"

	"github.com/helixml/minimodel/domain/dataset"
	"github.com/helixml/minimodel/domain/pipeline"
)

// TextEmbedder adapts a batch Embedder to the single-text capability the
// processor calls once per non-null cell.
type TextEmbedder struct {
	embedder Embedder
}

// NewTextEmbedder wraps embedder.
func NewTextEmbedder(embedder Embedder) *TextEmbedder {
	return &TextEmbedder{embedder: embedder}
}

// Embed returns the vector for a single text.
func (t *TextEmbedder) Embed(ctx context.Context, text string) (dataset.EmbeddingVector, error) {
	resp, err := t.embedder.Embed(ctx, NewEmbeddingRequest([]string{text}))
	if err != nil {
		return nil, err
	}
	embeddings := resp.Embeddings()
	if len(embeddings) != 1 {
		return nil, fmt.Errorf("%w: got %d vectors for 1 text", ErrEmbeddingCountMismatch, len(embeddings))
	}
	return dataset.EmbeddingVector(embeddings[0]), nil
}

var _ pipeline.Embedder = (*TextEmbedder)(nil)
