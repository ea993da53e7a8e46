package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/helixml/minimodel/infrastructure/provider"
)

func modelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Manage the local embedding model",
	}

	cmd.AddCommand(modelDownloadCmd())

	return cmd
}

func modelDownloadCmd() *cobra.Command {
	var (
		envFile string
		dir     string
	)

	cmd := &cobra.Command{
		Use:   "download [repo]",
		Short: "Download a HuggingFace sentence transformer for local embedding",
		Long: `Download the ONNX export of a HuggingFace model into {data_dir}/models, where
process, schema and serve look for it when no EMBEDDING_ENDPOINT_MODEL is set.

The default model is ` + provider.DefaultHugotModel + `.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				cfg, err := loadConfig(envFile)
				if err != nil {
					return err
				}
				dir = cfg.ModelDir()
			}

			repo := provider.DefaultHugotModel
			if len(args) == 1 {
				repo = args[0]
			}

			path, err := provider.DownloadHugotModel(repo, dir)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Model available at %s\n", path)
			return err
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&dir, "dir", "", "Destination directory (default: {data_dir}/models)")

	return cmd
}
