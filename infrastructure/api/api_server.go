package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/helixml/minimodel/infrastructure/api/middleware"
	v1 "github.com/helixml/minimodel/infrastructure/api/v1"
)

// APIServer provides an HTTP API that triggers processing runs.
type APIServer struct {
	runner  v1.Runner
	logger  *slog.Logger
	origins []string
}

// APIServerOption configures an APIServer.
type APIServerOption func(*APIServer)

// WithAllowedOrigins enables CORS for the given browser origins.
func WithAllowedOrigins(origins ...string) APIServerOption {
	return func(a *APIServer) { a.origins = origins }
}

// NewAPIServer creates a new APIServer wired to runner, typically a
// *minimodel.Client.
func NewAPIServer(runner v1.Runner, logger *slog.Logger, opts ...APIServerOption) *APIServer {
	if logger == nil {
		logger = slog.Default()
	}
	a := &APIServer{
		runner: runner,
		logger: logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Mount wires the health and v1 routes onto router.
func (a *APIServer) Mount(router chi.Router) {
	if len(a.origins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: a.origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
			ExposedHeaders: []string{"X-Request-Id"},
			MaxAge:         300,
		}))
	}

	router.Get("/healthz", healthHandler)
	router.Get("/health", healthHandler)

	router.Route("/api/v1", func(r chi.Router) {
		r.Mount("/process", v1.NewProcessRouter(a.runner, a.logger).Routes())
	})
}

// ListenAndServe serves the API on addr until ctx is cancelled.
func (a *APIServer) ListenAndServe(ctx context.Context, addr string) error {
	server := NewServer(addr, a.logger)
	a.Mount(server.Router())
	return server.Serve(ctx)
}

// Handler returns the API as an http.Handler with the standard middleware,
// for use with custom servers and tests.
func (a *APIServer) Handler() http.Handler {
	server := NewServer("", a.logger)
	a.Mount(server.Router())
	return server.Router()
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
