package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultEmbeddingModel is used when no model is configured.
const DefaultEmbeddingModel = "text-embedding-3-small"

// errUpstreamProviderFailure indicates the API returned HTTP 200 but the
// response body contained an error instead of embedding data. Routing
// providers such as OpenRouter do this when every upstream provider fails.
var errUpstreamProviderFailure = errors.New("upstream provider failure")

// OpenAIProvider generates embeddings through an OpenAI-compatible API.
// Failed requests are reported, never retried.
type OpenAIProvider struct {
	client         *openai.Client
	embeddingModel string
	dimensions     int
}

// OpenAIOption is a functional option for OpenAIProvider.
type OpenAIOption func(*OpenAIProvider)

// WithEmbeddingModel sets the embedding model.
func WithEmbeddingModel(model string) OpenAIOption {
	return func(p *OpenAIProvider) {
		if model != "" {
			p.embeddingModel = model
		}
	}
}

// WithDimensions requests vectors of n dimensions from models that support
// shortening.
func WithDimensions(n int) OpenAIOption {
	return func(p *OpenAIProvider) { p.dimensions = n }
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(apiKey string, opts ...OpenAIOption) *OpenAIProvider {
	p := &OpenAIProvider{
		client:         openai.NewClient(apiKey),
		embeddingModel: DefaultEmbeddingModel,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// OpenAIConfig holds configuration for OpenAI provider.
type OpenAIConfig struct {
	APIKey         string
	BaseURL        string
	EmbeddingModel string
	Dimensions     int
	Timeout        time.Duration
}

// NewOpenAIProviderFromConfig creates a provider from configuration.
func NewOpenAIProviderFromConfig(cfg OpenAIConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)

	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	if cfg.Timeout > 0 {
		config.HTTPClient = &http.Client{
			Timeout: cfg.Timeout,
		}
	}

	embeddingModel := cfg.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel
	}

	return &OpenAIProvider{
		client:         openai.NewClientWithConfig(config),
		embeddingModel: embeddingModel,
		dimensions:     cfg.Dimensions,
	}
}

// Model returns the embedding model name.
func (p *OpenAIProvider) Model() string { return p.embeddingModel }

// Close is a no-op for the OpenAI provider.
func (p *OpenAIProvider) Close() error {
	return nil
}

// Embed generates embeddings for the given texts in a single API call.
func (p *OpenAIProvider) Embed(ctx context.Context, req EmbeddingRequest) (EmbeddingResponse, error) {
	texts := req.Texts()
	if len(texts) == 0 {
		return NewEmbeddingResponse([][]float64{}, NewUsage(0, 0)), nil
	}

	if err := ctx.Err(); err != nil {
		return EmbeddingResponse{}, err
	}

	openaiReq := openai.EmbeddingRequest{
		Model:      openai.EmbeddingModel(p.embeddingModel),
		Input:      texts,
		Dimensions: p.dimensions,
	}

	resp, err := p.client.CreateEmbeddings(ctx, openaiReq)
	if err != nil {
		return EmbeddingResponse{}, p.wrapError("embedding", err)
	}

	// go-openai parses an HTTP 200 error body as an empty response: zero
	// data, no model and zero usage means the upstream is down.
	if len(resp.Data) == 0 && string(resp.Model) == "" && resp.Usage.TotalTokens == 0 {
		return EmbeddingResponse{}, p.wrapError("embedding", fmt.Errorf(
			"%w: provider returned HTTP 200 with no embedding data, no model, and zero usage",
			errUpstreamProviderFailure,
		))
	}
	if len(resp.Data) != len(texts) {
		return EmbeddingResponse{}, p.wrapError("embedding",
			fmt.Errorf("%w: got %d vectors for %d texts", ErrEmbeddingCountMismatch, len(resp.Data), len(texts)))
	}

	embeddings := make([][]float64, len(resp.Data))
	for _, data := range resp.Data {
		if data.Index < 0 || data.Index >= len(embeddings) {
			return EmbeddingResponse{}, p.wrapError("embedding",
				fmt.Errorf("%w: vector index %d out of range", ErrEmbeddingCountMismatch, data.Index))
		}
		vec := make([]float64, len(data.Embedding))
		for j, v := range data.Embedding {
			vec[j] = float64(v)
		}
		embeddings[data.Index] = vec
	}

	usage := NewUsage(resp.Usage.PromptTokens, resp.Usage.TotalTokens)
	return NewEmbeddingResponse(embeddings, usage), nil
}

// wrapError wraps an OpenAI error into a ProviderError.
func (p *OpenAIProvider) wrapError(operation string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return NewProviderError(operation, apiErr.HTTPStatusCode, apiErr.Message, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return NewProviderError(operation, reqErr.HTTPStatusCode, reqErr.Error(), err)
	}

	return NewProviderError(operation, 0, err.Error(), err)
}

var _ Embedder = (*OpenAIProvider)(nil)
