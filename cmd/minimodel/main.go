// Package main is the entry point for the minimodel CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/helixml/minimodel/internal/config"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "minimodel",
		Short: "Batch embedding pipeline",
		Long: `minimodel reads a tabular dataset, embeds every text column and appends the
rows with their embedding vectors to the minimodel_processed table.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(processCmd())
	cmd.AddCommand(schemaCmd())
	cmd.AddCommand(serveCmd())
	cmd.AddCommand(modelCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

// loadConfig loads configuration from .env file and environment variables.
func loadConfig(envFile string) (config.AppConfig, error) {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
