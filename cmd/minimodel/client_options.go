package main

import (
	"log/slog"

	"github.com/helixml/minimodel"
	"github.com/helixml/minimodel/infrastructure/ingest"
	"github.com/helixml/minimodel/infrastructure/provider"
	"github.com/helixml/minimodel/internal/config"
)

// clientOptions returns the minimodel.Option slice derived from AppConfig:
// destination database, dataset source, object store credentials and the
// embedding provider.
func clientOptions(cfg config.AppConfig, logger *slog.Logger) []minimodel.Option {
	opts := []minimodel.Option{
		minimodel.WithDatabaseURL(cfg.DBURL()),
		minimodel.WithDataDir(cfg.DataDir()),
		minimodel.WithModelDir(cfg.ModelDir()),
		minimodel.WithBatchSize(cfg.BatchSize()),
		minimodel.WithVerbose(cfg.Verbose()),
		minimodel.WithLogger(logger),
	}

	if manifest := cfg.SourceManifest(); manifest != "" {
		opts = append(opts, minimodel.WithManifest(manifest))
	}

	if store := cfg.ObjectStore(); store.IsConfigured() {
		opts = append(opts, minimodel.WithObjectStore(ingest.ObjectStoreConfig{
			Endpoint:  store.Endpoint(),
			AccessKey: store.AccessKey(),
			SecretKey: store.SecretKey(),
			Region:    store.Region(),
			UseSSL:    store.UseSSL(),
		}))
	}

	return append(opts, embeddingOptions(cfg)...)
}

// embeddingOptions returns the options for the OpenAI-compatible embedding
// endpoint when it is configured. Without them the client falls back to the
// local model in the data directory.
func embeddingOptions(cfg config.AppConfig) []minimodel.Option {
	endpoint := cfg.EmbeddingEndpoint()
	if endpoint == nil || !endpoint.IsConfigured() {
		return nil
	}

	opts := []minimodel.Option{
		minimodel.WithOpenAIConfig(provider.OpenAIConfig{
			APIKey:         endpoint.APIKey(),
			BaseURL:        endpoint.BaseURL(),
			EmbeddingModel: endpoint.Model(),
			Dimensions:     endpoint.Dimensions(),
			Timeout:        endpoint.Timeout(),
		}),
	}
	if rps := endpoint.RequestsPerSecond(); rps > 0 {
		opts = append(opts, minimodel.WithEmbeddingRateLimit(rps, 1))
	}
	return opts
}

// runFlags are the flags shared by every command that builds a client.
type runFlags struct {
	envFile   string
	source    string
	dbURL     string
	batchSize int
	quiet     bool
}

// applyOverrides applies command line flag overrides to the config.
func (f runFlags) applyOverrides(cfg config.AppConfig) config.AppConfig {
	var opts []config.AppConfigOption

	if f.source != "" {
		opts = append(opts, config.WithSourceManifest(f.source))
	}
	if f.dbURL != "" {
		opts = append(opts, config.WithDBURL(f.dbURL))
	}
	if f.batchSize != 0 {
		opts = append(opts, config.WithBatchSize(f.batchSize))
	}
	if f.quiet {
		opts = append(opts, config.WithVerbose(false))
	}

	return cfg.Apply(opts...)
}
