package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phenotab/phenotab/extract"
)

// newCheckCommand validates a configuration without running the pipeline:
// the config itself, the table context registry, and whether every source
// pattern matches at least one file.
func newCheckCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and source patterns",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			contexts, err := cfg.TableContexts()
			if err != nil {
				return err
			}

			var problems []string
			for _, src := range cfg.Sources {
				if _, ok := contexts[src.TableContext]; !ok {
					problems = append(problems, fmt.Sprintf("source %q references unknown table context %q", src.Pattern, src.TableContext))
					continue
				}
				files, err := extract.Source{Pattern: src.Pattern, TableContext: src.TableContext}.Discover(cfg.BaseDir)
				if err != nil {
					problems = append(problems, err.Error())
					continue
				}
				if len(files) == 0 {
					problems = append(problems, fmt.Sprintf("source %q matches no files", src.Pattern))
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "source %q: %d file(s), table context %q\n", src.Pattern, len(files), src.TableContext)
			}

			if len(problems) > 0 {
				for _, p := range problems {
					fmt.Fprintf(cmd.ErrOrStderr(), "problem: %s\n", p)
				}
				return fmt.Errorf("configuration check failed with %d problem(s)", len(problems))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "configuration ok: cohort %q, %d table context(s), output %q\n",
				cfg.Cohort.Name, len(contexts), cfg.Output.Dir)
			return nil
		},
	}
}
