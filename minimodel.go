// Package minimodel feeds tabular data into a relational table in fixed-size
// batches, adding an embedding vector column for every text column.
//
// Basic usage:
//
//	client, err := minimodel.New(
//	    minimodel.WithSQLite(".minimodel/minimodel.db"),
//	    minimodel.WithOpenAI(os.Getenv("OPENAI_API_KEY")),
//	    minimodel.WithManifest("source.yaml"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	report, err := client.Run(ctx, 500)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(report.Rows, report.Batches)
//
// The destination table minimodel_processed must already exist; Client.Schema
// prints a statement that creates it.
package minimodel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/helixml/minimodel/application/service"
	"github.com/helixml/minimodel/domain/pipeline"
	"github.com/helixml/minimodel/infrastructure/ingest"
	"github.com/helixml/minimodel/infrastructure/persistence"
	"github.com/helixml/minimodel/infrastructure/provider"
	"github.com/helixml/minimodel/internal/config"
	"github.com/helixml/minimodel/internal/database"
)

// Report summarises a completed run.
type Report = service.Report

// Client runs the batch embedding pipeline against one source, one embedder
// and one destination database. Runs are independent; a Client may run
// repeatedly and from several goroutines.
type Client struct {
	processor *service.Processor
	ingester  pipeline.Ingester
	embedder  pipeline.Embedder
	dbURL     string
	batchSize int

	closers []io.Closer
	logger  *slog.Logger
	closed  atomic.Bool
	mu      sync.Mutex
}

// New creates a Client with the given options. A database and a dataset
// source are required. Without an embedding provider the local model in
// {dataDir}/models is used.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.dbURL == "" {
		return nil, ErrNoDatabase
	}
	if _, err := database.DialectFromURL(cfg.dbURL); err != nil {
		return nil, fmt.Errorf("database url: %w", err)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	ingester, err := buildIngester(cfg, logger)
	if err != nil {
		return nil, err
	}

	embedder, closers, err := buildEmbedder(cfg, logger)
	if err != nil {
		return nil, err
	}
	closers = append(closers, cfg.closers...)

	sink := persistence.NewSink(cfg.dbURL, logger)

	processor, err := service.NewProcessor(ingester, embedder, sink,
		service.WithLogger(logger),
		service.WithVerbose(cfg.verbose),
	)
	if err != nil {
		return nil, errors.Join(err, closeAll(closers))
	}

	return &Client{
		processor: processor,
		ingester:  ingester,
		embedder:  embedder,
		dbURL:     cfg.dbURL,
		batchSize: cfg.batchSize,
		closers:   closers,
		logger:    logger,
	}, nil
}

// Process runs the pipeline once with batches of at most batchSize rows.
// A batchSize of 0 uses the client's default.
func (c *Client) Process(ctx context.Context, batchSize int) error {
	_, err := c.Run(ctx, batchSize)
	return err
}

// Run is Process that also reports what was written.
func (c *Client) Run(ctx context.Context, batchSize int) (Report, error) {
	if c.closed.Load() {
		return Report{}, ErrClientClosed
	}
	if batchSize == 0 {
		batchSize = c.batchSize
	}
	return c.processor.Run(ctx, batchSize)
}

// BatchSize returns the batch size used when a run asks for 0.
func (c *Client) BatchSize() int {
	return c.batchSize
}

// Schema ingests the source and returns a CREATE TABLE statement for the
// destination table in the destination database's dialect. On PostgreSQL a
// dimensions of 0 is resolved by embedding one probe text.
func (c *Client) Schema(ctx context.Context, dimensions int) (string, error) {
	if c.closed.Load() {
		return "", ErrClientClosed
	}

	dialect, err := database.DialectFromURL(c.dbURL)
	if err != nil {
		return "", err
	}

	data, err := c.ingester.Ingest(ctx)
	if err != nil {
		return "", &pipeline.IngestionError{Err: err}
	}

	if dialect == database.DialectPostgres && dimensions == 0 && len(data.TextColumns()) > 0 {
		probe, err := c.embedder.Embed(ctx, "dimension probe")
		if err != nil {
			return "", fmt.Errorf("probe embedding dimension: %w", err)
		}
		dimensions = len(probe)
	}

	return persistence.CreateTableSQL(dialect, service.ProcessedTable, data, dimensions)
}

// Close releases the embedding provider and any registered resources.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClientClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := closeAll(c.closers); err != nil {
		c.logger.Error("failed to close resource", slog.Any("error", err))
		return err
	}
	return nil
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

func buildIngester(cfg *clientConfig, logger *slog.Logger) (pipeline.Ingester, error) {
	if cfg.ingester != nil {
		return cfg.ingester, nil
	}
	if cfg.manifestPath == "" {
		return nil, ErrNoSource
	}
	manifest, err := ingest.LoadManifest(cfg.manifestPath)
	if err != nil {
		return nil, err
	}
	ingester, err := manifest.Ingester(cfg.objectStore, logger)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", cfg.manifestPath, err)
	}
	return ingester, nil
}

// buildEmbedder resolves the single-text embedder and the resources it owns.
func buildEmbedder(cfg *clientConfig, logger *slog.Logger) (pipeline.Embedder, []io.Closer, error) {
	var closers []io.Closer

	embedder := cfg.embedder
	if embedder == nil {
		p := cfg.embeddingProvider
		if p == nil {
			modelDir := cfg.modelDir
			if modelDir == "" {
				modelDir = filepath.Join(cfg.dataDir, config.DefaultModelSubdir)
			}
			hugot := provider.NewHugotEmbedding(modelDir)
			if !hugot.Available() {
				return nil, nil, fmt.Errorf("%w: no model in %s", ErrNoEmbedder, modelDir)
			}
			logger.Info("local embedding model enabled",
				slog.String("model_dir", modelDir),
				slog.String("backend", provider.HugotBackend),
			)
			p = hugot
		}
		if closer, ok := p.(io.Closer); ok {
			closers = append(closers, closer)
		}
		embedder = provider.NewTextEmbedder(p)
	}

	if cfg.requestsPerSecond > 0 {
		embedder = provider.NewRateLimited(embedder, cfg.requestsPerSecond, cfg.burst)
	}
	return embedder, closers, nil
}

func closeAll(closers []io.Closer) error {
	var errs []error
	for _, closer := range closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
