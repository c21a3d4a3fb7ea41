package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/phenotab/phenotab/pipeline"
)

func newRunCommand(opts *rootOptions) *cobra.Command {
	var (
		outputDir string
		watch     bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline once, or continuously with --watch",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if outputDir != "" {
				cfg.Output.Dir = outputDir
			}

			runner, err := pipeline.NewRunner(cfg, slog.Default())
			if err != nil {
				return err
			}
			defer runner.Close()

			if watch {
				return runner.Watch(cmd.Context(), 0)
			}
			_, err = runner.Run(cmd.Context())
			return err
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "override the output directory")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "watch source directories and re-run on change")
	return cmd
}
