package pipeline

import (
	"errors"
	"fmt"
)

// Contract violations.
var (
	// ErrInvalidBatchSize indicates a batch size that is not positive.
	ErrInvalidBatchSize = errors.New("batch size must be positive")

	// ErrNilCapability indicates a processor built without one of its capabilities.
	ErrNilCapability = errors.New("nil capability")
)

// IngestionError reports that the dataset could not be obtained.
type IngestionError struct {
	Err error
}

// Error implements the error interface.
func (e *IngestionError) Error() string {
	return "ingest dataset: " + e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e *IngestionError) Unwrap() error { return e.Err }

// EmbeddingError reports that a text value could not be embedded.
type EmbeddingError struct {
	Column string
	Row    int
	Err    error
}

// Error implements the error interface.
func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embed %s row %d: %v", e.Column, e.Row, e.Err)
}

// Unwrap returns the underlying cause.
func (e *EmbeddingError) Unwrap() error { return e.Err }

// Connectivity operations.
const (
	OpConnect = "connect"
	OpAppend  = "append"
)

// ConnectivityError reports that the destination was unreachable or rejected
// a write. Batch is zero for connect failures.
type ConnectivityError struct {
	Op    string
	Batch int
	Err   error
}

// Error implements the error interface.
func (e *ConnectivityError) Error() string {
	if e.Batch > 0 {
		return fmt.Sprintf("%s batch %d: %v", e.Op, e.Batch, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ConnectivityError) Unwrap() error { return e.Err }
