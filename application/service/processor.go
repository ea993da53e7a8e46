// Package service provides application layer services that orchestrate domain operations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/helixml/minimodel/domain/dataset"
	"github.com/helixml/minimodel/domain/pipeline"
	"github.com/helixml/minimodel/internal/log"
)

// DefaultBatchSize is the number of rows per batch when none is given.
const DefaultBatchSize = 500

// ProcessedTable is the destination table every batch is appended to.
const ProcessedTable = "minimodel_processed"

// Report summarises a completed run.
type Report struct {
	RunID       string   `json:"run_id"`
	Rows        int      `json:"rows"`
	Batches     int      `json:"batches"`
	TextColumns []string `json:"text_columns"`
	Embeddings  int      `json:"embeddings"`
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithLogger sets the logger informational events are written to.
func WithLogger(logger *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithVerbose controls whether informational events are emitted.
func WithVerbose(verbose bool) ProcessorOption {
	return func(p *Processor) { p.verbose = verbose }
}

// Processor streams a dataset through the embedder into the sink in
// fixed-size batches. It keeps no state between runs.
type Processor struct {
	ingester pipeline.Ingester
	embedder pipeline.Embedder
	sink     pipeline.Sink
	logger   *slog.Logger
	verbose  bool
}

// NewProcessor creates a Processor from its three capabilities.
func NewProcessor(ingester pipeline.Ingester, embedder pipeline.Embedder, sink pipeline.Sink, opts ...ProcessorOption) (*Processor, error) {
	switch {
	case ingester == nil:
		return nil, fmt.Errorf("NewProcessor: %w: ingester", pipeline.ErrNilCapability)
	case embedder == nil:
		return nil, fmt.Errorf("NewProcessor: %w: embedder", pipeline.ErrNilCapability)
	case sink == nil:
		return nil, fmt.Errorf("NewProcessor: %w: sink", pipeline.ErrNilCapability)
	}

	p := &Processor{
		ingester: ingester,
		embedder: embedder,
		sink:     sink,
		logger:   slog.Default(),
		verbose:  true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Process runs the pipeline once: ingest, detect text columns, then embed and
// append each batch of at most batchSize rows to ProcessedTable.
func (p *Processor) Process(ctx context.Context, batchSize int) error {
	_, err := p.Run(ctx, batchSize)
	return err
}

// Run is Process that also reports what was written.
//
// All embeddings of a batch are computed before any of it is written, so an
// embedding failure never leaves a partial batch behind. Batches written
// before a failure stay written.
func (p *Processor) Run(ctx context.Context, batchSize int) (report Report, err error) {
	if batchSize <= 0 {
		return Report{}, fmt.Errorf("%w: got %d", pipeline.ErrInvalidBatchSize, batchSize)
	}

	report.RunID = uuid.NewString()
	ctx = log.WithRunID(ctx, report.RunID)
	logger := p.eventLogger().With(slog.String("run_id", report.RunID))

	logger.Info("processing data")

	data, err := p.ingester.Ingest(ctx)
	if err != nil {
		return report, &pipeline.IngestionError{Err: err}
	}

	textColumns := data.TextColumns()
	report.Rows = data.Rows()
	report.TextColumns = textColumns
	logger.Info("ingested data",
		slog.Int("rows", data.Rows()),
		slog.Int("columns", data.Width()),
		slog.Any("text_columns", textColumns),
	)

	for _, name := range textColumns {
		target := dataset.EmbeddingColumnName(name)
		if _, exists := data.Column(target); exists {
			return report, &pipeline.IngestionError{
				Err: fmt.Errorf("%w: %s already exists for text column %s", dataset.ErrDuplicateColumn, target, name),
			}
		}
	}

	conn, err := p.sink.Connect(ctx)
	if err != nil {
		return report, &pipeline.ConnectivityError{Op: pipeline.OpConnect, Err: err}
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close connection: %w", closeErr))
		}
	}()

	logger.Info(fmt.Sprintf("proceeding with %d batches", dataset.BatchCount(data.Rows(), batchSize)))

	for _, batch := range data.Batches(batchSize) {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		embedded, count, err := p.embedBatch(ctx, batch, textColumns)
		if err != nil {
			return report, err
		}

		if err := conn.Append(ctx, ProcessedTable, embedded.Data()); err != nil {
			return report, &pipeline.ConnectivityError{Op: pipeline.OpAppend, Batch: batch.Index(), Err: err}
		}

		report.Batches++
		report.Embeddings += count
		logger.Info(fmt.Sprintf("processed and persisted batch %d", batch.Index()),
			slog.Int("rows", batch.Rows()),
			slog.Int("embeddings", count),
		)
	}

	logger.Info("processed data successfully",
		slog.Int("batches", report.Batches),
		slog.Int("embeddings", report.Embeddings),
	)
	return report, nil
}

// embedBatch computes one vector per non-null text cell of the batch and
// returns the batch with the embedding columns appended.
func (p *Processor) embedBatch(ctx context.Context, batch dataset.Batch, textColumns []string) (dataset.Batch, int, error) {
	data := batch.Data()
	vectors := make([][]dataset.EmbeddingVector, len(textColumns))
	count := 0

	for i, name := range textColumns {
		col, _ := data.Column(name)
		vectors[i] = make([]dataset.EmbeddingVector, col.Len())

		for row := range col.Len() {
			if col.IsNull(row) {
				continue
			}
			text, ok := col.Value(row).(string)
			if !ok {
				text = fmt.Sprint(col.Value(row))
			}
			vec, err := p.embedder.Embed(ctx, text)
			if err != nil {
				return dataset.Batch{}, 0, &pipeline.EmbeddingError{Column: name, Row: batch.Offset() + row, Err: err}
			}
			vectors[i][row] = vec
			count++
		}
	}

	embedded, err := batch.WithEmbeddings(textColumns, vectors)
	if err != nil {
		return dataset.Batch{}, 0, err
	}
	return embedded, count, nil
}

func (p *Processor) eventLogger() *slog.Logger {
	if !p.verbose {
		return slog.New(slog.DiscardHandler)
	}
	return p.logger
}
