// Package dto holds the request and response bodies of the v1 API.
package dto

// ProcessRequest is the body of POST /api/v1/process. A missing or zero
// batch size uses the server's default.
type ProcessRequest struct {
	BatchSize int `json:"batch_size"`
}

// ProcessResponse is the body of a successful run.
type ProcessResponse struct {
	RunID       string   `json:"run_id"`
	Rows        int      `json:"rows"`
	Batches     int      `json:"batches"`
	BatchSize   int      `json:"batch_size"`
	TextColumns []string `json:"text_columns"`
	Embeddings  int      `json:"embeddings"`
}
