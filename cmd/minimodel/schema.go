package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func schemaCmd() *cobra.Command {
	var (
		flags      runFlags
		dimensions int
	)

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the CREATE TABLE statement for the destination table",
		Long: `Ingest the dataset and print a CREATE TABLE statement for minimodel_processed
in the destination database's dialect. The statement is not executed.

On PostgreSQL the vector dimension comes from --dimensions, or from embedding
one probe text when it is 0.

` + configHelp,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadRunConfig(flags)
			if err != nil {
				return err
			}
			client, logger, err := openClient(cfg)
			if err != nil {
				return err
			}
			defer closeClient(client, logger)

			ddl, err := client.Schema(cmd.Context(), dimensions)
			if err != nil {
				return fmt.Errorf("schema: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), ddl)
			return err
		},
	}

	addRunFlags(cmd, &flags)
	cmd.Flags().IntVar(&dimensions, "dimensions", 0, "Vector dimension for PostgreSQL (default: probe the embedder)")

	return cmd
}
