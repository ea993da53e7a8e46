package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Status    int    `json:"status"`
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Report    any    `json:"report,omitempty"`
}

// WriteJSON writes a JSON response.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError logs err and writes it as an ErrorBody with the given status.
func WriteError(w http.ResponseWriter, r *http.Request, status int, body ErrorBody, err error, logger *slog.Logger) {
	body.Status = status
	body.RequestID = middleware.GetReqID(r.Context())
	if body.Message == "" && err != nil {
		body.Message = err.Error()
	}

	if logger != nil {
		logger.ErrorContext(r.Context(), "request error",
			"request_id", body.RequestID,
			"status", status,
			"kind", body.Kind,
			"error", err,
			"path", r.URL.Path,
		)
	}

	WriteJSON(w, status, body)
}
