// Package commands provides the phenotab command-line interface.
package commands

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phenotab/phenotab/config"
)

// Version is the binary version, overridable at link time.
var Version = "0.1.0"

type rootOptions struct {
	configPath string
	logLevel   string
}

// NewRootCommand builds the phenotab command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "phenotab",
		Short: "Compile semantically annotated cohort tables into phenotype records",
		Long: `Phenotab reads delimited cohort tables whose columns carry semantic
annotations, resolves the annotated values against ontology term sources,
and compiles one normalized clinical phenotype record per subject.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging(opts.logLevel)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file path (default: phenotab.yaml, searched upward)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newCheckCommand(opts))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("phenotab version %s\n", Version)
		},
	})
	return cmd
}

func configureLogging(levelName string) {
	level := slog.LevelInfo
	switch strings.ToLower(levelName) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

func loadConfig(opts *rootOptions) (*config.Config, error) {
	return config.NewLoader(slog.Default()).Load(opts.configPath)
}
