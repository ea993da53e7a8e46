package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/helixml/minimodel/infrastructure/api"
	"github.com/helixml/minimodel/internal/config"
)

func serveCmd() *cobra.Command {
	var (
		flags runFlags
		host  string
		port  int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server. POST /api/v1/process runs the pipeline and
returns its report; GET /healthz reports liveness.

  HOST                         Server host to bind to (default: 0.0.0.0)
  PORT                         Server port to listen on (default: 8080)
  CORS_ALLOWED_ORIGINS         Comma-separated browser origins allowed to call the API

` + configHelp,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := loadRunConfig(flags)
			if err != nil {
				return err
			}
			cfg = applyServeOverrides(cfg, host, port)
			addr := cfg.Addr()

			client, logger, err := openClient(cfg)
			if err != nil {
				return err
			}
			defer closeClient(client, logger)

			logger.Info("starting minimodel", slog.String("version", version), slog.String("addr", addr))

			if err := api.NewAPIServer(client, logger, api.WithAllowedOrigins(cfg.CORSAllowedOrigins()...)).ListenAndServe(ctx, addr); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}

	addRunFlags(cmd, &flags)
	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 8080)")

	return cmd
}

// applyServeOverrides applies command line flag overrides to the config.
func applyServeOverrides(cfg config.AppConfig, host string, port int) config.AppConfig {
	var opts []config.AppConfigOption

	if host != "" {
		opts = append(opts, config.WithHost(host))
	}
	if port != 0 {
		opts = append(opts, config.WithPort(port))
	}

	return cfg.Apply(opts...)
}
