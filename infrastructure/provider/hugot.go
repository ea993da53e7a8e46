package provider

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
)

const hugotBatchMax = 10

// DefaultHugotModel is the HuggingFace repository downloaded when none is named.
const DefaultHugotModel = "sentence-transformers/all-MiniLM-L6-v2"

// ortSingleton holds the process-wide ONNX Runtime session and pipeline.
// ORT only allows one active session per process, so all HugotEmbedding
// instances must share it. The mutex serializes both initialization and
// inference (ORT is not thread-safe).
var ortSingleton struct {
	session  *hugot.Session
	pipeline *pipelines.FeatureExtractionPipeline
	mu       sync.Mutex
	ready    bool
}

// HugotEmbedding provides local embedding generation with a sentence
// transformer model exported to ONNX, run through hugot.
//
// The model is a subdirectory of modelDir containing tokenizer.json and the
// ONNX weights. All instances share a single ONNX Runtime session.
type HugotEmbedding struct {
	modelDir string
}

// NewHugotEmbedding creates a HugotEmbedding that looks for model files in modelDir.
func NewHugotEmbedding(modelDir string) *HugotEmbedding {
	return &HugotEmbedding{modelDir: modelDir}
}

// Available reports whether a usable model is present in modelDir.
func (h *HugotEmbedding) Available() bool {
	_, err := h.diskModelPath()
	return err == nil
}

func (h *HugotEmbedding) initialize() error {
	ortSingleton.mu.Lock()
	defer ortSingleton.mu.Unlock()

	if ortSingleton.ready {
		return nil
	}

	modelPath, err := h.diskModelPath()
	if err != nil {
		return err
	}

	session, err := newHugotSession(h.modelDir)
	if err != nil {
		return fmt.Errorf("create hugot session: %w", err)
	}

	config := hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "minimodel-embeddings",
		Options: []hugot.FeatureExtractionOption{
			pipelines.WithNormalization(),
		},
	}
	pipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		_ = session.Destroy()
		return fmt.Errorf("create feature extraction pipeline: %w", err)
	}

	ortSingleton.session = session
	ortSingleton.pipeline = pipeline
	ortSingleton.ready = true
	return nil
}

// diskModelPath looks for a model subdirectory containing tokenizer.json
// inside modelDir.
func (h *HugotEmbedding) diskModelPath() (string, error) {
	entries, err := os.ReadDir(h.modelDir)
	if err != nil {
		return "", fmt.Errorf("read model directory %s: %w", h.modelDir, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		candidate := filepath.Join(h.modelDir, entry.Name())
		if _, statErr := os.Stat(filepath.Join(candidate, "tokenizer.json")); statErr == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no model subdirectory with tokenizer.json found in %s", h.modelDir)
}

// DownloadHugotModel fetches the ONNX export of the HuggingFace model repo
// into a subdirectory of modelDir and returns its path. A model that is
// already present is not downloaded again.
func DownloadHugotModel(repo, modelDir string) (string, error) {
	if repo == "" {
		repo = DefaultHugotModel
	}
	if err := os.MkdirAll(modelDir, 0o755); err != nil {
		return "", fmt.Errorf("create model directory: %w", err)
	}

	existing := NewHugotEmbedding(modelDir)
	if path, err := existing.diskModelPath(); err == nil {
		return path, nil
	}

	opts := hugot.NewDownloadOptions()
	opts.OnnxFilePath = "onnx/model.onnx"
	path, err := hugot.DownloadModel(repo, modelDir, opts)
	if err != nil {
		return "", fmt.Errorf("download model %s: %w", repo, err)
	}
	return path, nil
}

// Capacity returns the maximum number of texts per Embed call.
func (h *HugotEmbedding) Capacity() int { return hugotBatchMax }

// Embed generates embeddings for the given texts using the local model.
// The number of texts must not exceed Capacity().
func (h *HugotEmbedding) Embed(ctx context.Context, req EmbeddingRequest) (EmbeddingResponse, error) {
	texts := req.Texts()
	if len(texts) == 0 {
		return NewEmbeddingResponse([][]float64{}, NewUsage(0, 0)), nil
	}

	if len(texts) > hugotBatchMax {
		return EmbeddingResponse{}, fmt.Errorf("embed: %d texts exceeds capacity %d", len(texts), hugotBatchMax)
	}

	if err := ctx.Err(); err != nil {
		return EmbeddingResponse{}, err
	}

	if err := h.initialize(); err != nil {
		return EmbeddingResponse{}, fmt.Errorf("initialize hugot: %w", err)
	}

	ortSingleton.mu.Lock()
	defer ortSingleton.mu.Unlock()

	result, err := ortSingleton.pipeline.RunPipeline(texts)
	if err != nil {
		return EmbeddingResponse{}, fmt.Errorf("run embedding pipeline: %w", err)
	}

	embeddings := make([][]float64, len(result.Embeddings))
	for i, vec32 := range result.Embeddings {
		vec64 := make([]float64, len(vec32))
		for j, v := range vec32 {
			vec64[j] = float64(v)
		}
		embeddings[i] = vec64
	}

	return NewEmbeddingResponse(embeddings, NewUsage(0, 0)), nil
}

// Close is a no-op. The ONNX Runtime session is process-global and shared
// across all HugotEmbedding instances; it is cleaned up when the process exits.
func (h *HugotEmbedding) Close() error {
	return nil
}

var _ Embedder = (*HugotEmbedding)(nil)
