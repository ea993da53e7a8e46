package provider

import (
	"context"
	"fmt"

	"github.com/helixml/minimodel/domain/dataset"
	"github.com/helixml/minimodel/domain/pipeline"
	"golang.org/x/time/rate"
)

// RateLimited caps the rate of calls to an embedder. Calls wait for a token;
// nothing is retried.
type RateLimited struct {
	next    pipeline.Embedder
	limiter *rate.Limiter
}

// NewRateLimited allows perSecond calls per second to next with the given
// burst. A non-positive perSecond disables limiting.
func NewRateLimited(next pipeline.Embedder, perSecond float64, burst int) *RateLimited {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{next: next, limiter: rate.NewLimiter(limit, burst)}
}

// Embed waits for the limiter, then calls the wrapped embedder.
func (r *RateLimited) Embed(ctx context.Context, text string) (dataset.EmbeddingVector, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		// Wait fails early when the next token lies past the deadline.
		if _, ok := ctx.Deadline(); ok {
			return nil, fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
		}
		return nil, err
	}
	return r.next.Embed(ctx, text)
}

var _ pipeline.Embedder = (*RateLimited)(nil)
