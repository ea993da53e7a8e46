// Package v1 implements the version 1 HTTP API.
package v1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/helixml/minimodel/application/service"
	"github.com/helixml/minimodel/domain/pipeline"
	"github.com/helixml/minimodel/infrastructure/api/middleware"
	"github.com/helixml/minimodel/infrastructure/api/v1/dto"
)

// Runner runs the pipeline once. batchSize 0 means the runner's default.
type Runner interface {
	Run(ctx context.Context, batchSize int) (service.Report, error)
	BatchSize() int
}

// ProcessRouter handles processing endpoints.
type ProcessRouter struct {
	runner Runner
	logger *slog.Logger
}

// NewProcessRouter creates a new ProcessRouter.
func NewProcessRouter(runner Runner, logger *slog.Logger) *ProcessRouter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessRouter{
		runner: runner,
		logger: logger,
	}
}

// Routes returns the chi router for processing endpoints.
func (r *ProcessRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", r.Process)

	return router
}

// Process handles POST /api/v1/process. The run happens within the request;
// the response carries its report.
func (r *ProcessRouter) Process(w http.ResponseWriter, req *http.Request) {
	var body dto.ProcessRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		middleware.WriteError(w, req, http.StatusBadRequest,
			middleware.ErrorBody{Kind: "invalid_request"}, fmt.Errorf("decode request: %w", err), r.logger)
		return
	}

	batchSize := body.BatchSize
	if batchSize == 0 {
		batchSize = r.runner.BatchSize()
	}

	report, err := r.runner.Run(req.Context(), batchSize)
	if err != nil {
		status, kind := classify(err)
		errBody := middleware.ErrorBody{Kind: kind}
		if report.RunID != "" {
			resp := toResponse(report, batchSize)
			errBody.Report = &resp
		}
		middleware.WriteError(w, req, status, errBody, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, toResponse(report, batchSize))
}

func toResponse(report service.Report, batchSize int) dto.ProcessResponse {
	textColumns := report.TextColumns
	if textColumns == nil {
		textColumns = []string{}
	}
	return dto.ProcessResponse{
		RunID:       report.RunID,
		Rows:        report.Rows,
		Batches:     report.Batches,
		BatchSize:   batchSize,
		TextColumns: textColumns,
		Embeddings:  report.Embeddings,
	}
}

// classify maps a run error to a status code and an error kind.
func classify(err error) (int, string) {
	var (
		ingestErr  *pipeline.IngestionError
		embedErr   *pipeline.EmbeddingError
		connectErr *pipeline.ConnectivityError
	)

	switch {
	case errors.Is(err, pipeline.ErrInvalidBatchSize):
		return http.StatusBadRequest, "invalid_batch_size"
	case errors.Is(err, service.ErrClientClosed):
		return http.StatusServiceUnavailable, "closed"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "cancelled"
	case errors.As(err, &ingestErr):
		return http.StatusBadGateway, "ingestion"
	case errors.As(err, &embedErr):
		return http.StatusBadGateway, "embedding"
	case errors.As(err, &connectErr):
		return http.StatusBadGateway, "connectivity"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
