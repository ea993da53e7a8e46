package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/helixml/minimodel"
	"github.com/helixml/minimodel/internal/config"
	"github.com/helixml/minimodel/internal/log"
)

const configHelp = `Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. Command line flags

Environment variables:
  DATA_DIR                     Data directory (default: ~/.minimodel)
  DB_URL                       Database URL (default: sqlite:///{data_dir}/minimodel.db)
  LOG_LEVEL                    Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT                   Log format: pretty, json (default: pretty)
  VERBOSE                      Log processing progress (default: true)
  BATCH_SIZE                   Rows per batch (default: 500)
  SOURCE_MANIFEST              YAML manifest describing the dataset source

  EMBEDDING_ENDPOINT_*         OpenAI-compatible embedding service
    BASE_URL                   Base URL (e.g., https://api.openai.com/v1)
    MODEL                      Model identifier (e.g., text-embedding-3-small)
    API_KEY                    API key for authentication
    TIMEOUT                    Request timeout in seconds (default: 60)
    DIMENSIONS                 Requested vector dimensions
    REQUESTS_PER_SECOND        Rate limit, 0 for none

  OBJECT_STORE_*               MinIO/S3 credentials for object sources
    ENDPOINT, ACCESS_KEY, SECRET_KEY, REGION, USE_SSL (default: true)

Without EMBEDDING_ENDPOINT_MODEL the local model in {data_dir}/models is used.`

func addRunFlags(cmd *cobra.Command, f *runFlags) {
	cmd.Flags().StringVar(&f.envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&f.source, "source", "", "Path to the source manifest (overrides SOURCE_MANIFEST)")
	cmd.Flags().StringVar(&f.dbURL, "db-url", "", "Destination database URL (overrides DB_URL)")
	cmd.Flags().IntVar(&f.batchSize, "batch-size", 0, "Rows per batch (default: 500)")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "Do not log processing progress")
}

// loadRunConfig loads the configuration and applies the flag overrides.
func loadRunConfig(f runFlags) (config.AppConfig, error) {
	cfg, err := loadConfig(f.envFile)
	if err != nil {
		return config.AppConfig{}, err
	}
	return f.applyOverrides(cfg), nil
}

// openClient builds a client and its logger from cfg.
func openClient(cfg config.AppConfig) (*minimodel.Client, *slog.Logger, error) {
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, nil, fmt.Errorf("create data directory: %w", err)
	}

	logger := log.NewLogger(cfg)
	slogger := logger.Slog()

	attrs := append([]slog.Attr{slog.String("version", version)}, cfg.LogAttrs()...)
	slogger.LogAttrs(context.Background(), slog.LevelDebug, "configuration", attrs...)

	client, err := minimodel.New(clientOptions(cfg, slogger)...)
	if err != nil {
		return nil, nil, fmt.Errorf("create minimodel client: %w", err)
	}
	return client, slogger, nil
}

func processCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Run the pipeline once",
		Long: `Ingest the dataset, embed its text columns and append it to
minimodel_processed in batches. The report is printed as JSON on stdout.

` + configHelp,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := loadRunConfig(flags)
			if err != nil {
				return err
			}
			client, logger, err := openClient(cfg)
			if err != nil {
				return err
			}
			defer closeClient(client, logger)

			report, err := client.Run(ctx, 0)
			if err != nil {
				return fmt.Errorf("process: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}

	addRunFlags(cmd, &flags)

	return cmd
}

func closeClient(client *minimodel.Client, logger *slog.Logger) {
	if err := client.Close(); err != nil {
		logger.Error("failed to close minimodel client", slog.Any("error", err))
	}
}
