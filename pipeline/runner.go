// Package pipeline wires the run end to end: extract source tables, collect
// facts per subject, build records, and write them out.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phenotab/phenotab/collect"
	"github.com/phenotab/phenotab/config"
	"github.com/phenotab/phenotab/extract"
	"github.com/phenotab/phenotab/genetics"
	"github.com/phenotab/phenotab/ontology"
	"github.com/phenotab/phenotab/output"
	"github.com/phenotab/phenotab/record"
	"github.com/phenotab/phenotab/tabular"
)

// Runner executes pipeline runs for one configuration. It owns the shared
// run infrastructure: term libraries, gene and variant services, the query
// cache, and the output writer.
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger

	contexts  map[string]*tabular.TableContext
	libraries record.Libraries
	genes     genetics.GeneService
	variants  genetics.VariantService
	cache     *ontology.QueryCache
	broker    *collect.Broker
	writer    *output.Writer
}

// Summary describes one completed run.
type Summary struct {
	RunID    string
	Tables   int
	Subjects int
	Duration time.Duration
}

// NewRunner materializes the configuration. The returned runner can execute
// any number of runs; Close releases the query cache.
func NewRunner(cfg *config.Config, logger *slog.Logger) (*Runner, error) {
	if logger == nil {
		logger = slog.Default()
	}

	contexts, err := cfg.TableContexts()
	if err != nil {
		return nil, err
	}
	for _, src := range cfg.Sources {
		if _, ok := contexts[src.TableContext]; !ok {
			return nil, fmt.Errorf("source %q references unknown table context %q", src.Pattern, src.TableContext)
		}
	}

	r := &Runner{
		cfg:      cfg,
		logger:   logger,
		contexts: contexts,
		broker:   collect.NewBroker(logger),
		writer:   output.NewWriter(cfg.ResolvePath(cfg.Output.Dir), logger),
	}

	if cfg.Terms.CachePath != "" {
		cache, err := ontology.OpenQueryCache(cfg.ResolvePath(cfg.Terms.CachePath))
		if err != nil {
			return nil, err
		}
		r.cache = cache
	}

	if r.libraries, err = buildLibraries(cfg, r.cache, logger); err != nil {
		r.Close()
		return nil, err
	}
	if r.genes, r.variants, err = buildGenetics(cfg); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

// Close releases the runner's resources.
func (r *Runner) Close() error {
	if r.cache != nil {
		return r.cache.Close()
	}
	return nil
}

// Run executes one complete pipeline run.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	runID := uuid.New().String()
	start := time.Now()
	logger := r.logger.With(slog.String("run_id", runID))
	logger.Info("run started",
		slog.String("cohort", r.cfg.Cohort.Name),
		slog.Int("sources", len(r.cfg.Sources)))

	var cdfs []*tabular.ContextualizedFrame
	for _, src := range r.cfg.Sources {
		delim, err := src.DelimiterRune()
		if err != nil {
			return Summary{}, err
		}
		files, err := extract.Source{Pattern: src.Pattern, TableContext: src.TableContext}.Discover(r.cfg.BaseDir)
		if err != nil {
			return Summary{}, err
		}
		if len(files) == 0 {
			logger.Warn("source matched no files", slog.String("pattern", src.Pattern))
			continue
		}
		for _, path := range files {
			cdf, err := extract.LoadTable(path, delim, r.contexts[src.TableContext])
			if err != nil {
				return Summary{}, err
			}
			tablesProcessed.Inc()
			logger.Debug("table loaded",
				slog.String("path", path),
				slog.Int("rows", cdf.Frame().Height()),
				slog.Int("columns", cdf.Frame().Width()))
			cdfs = append(cdfs, cdf)
		}
	}

	builder := record.NewBuilder(record.BuilderConfig{
		CohortName:     r.cfg.Cohort.Name,
		CreatedBy:      r.cfg.Cohort.CreatedBy,
		SubmittedBy:    r.cfg.Cohort.SubmittedBy,
		Libraries:      r.libraries,
		Genes:          r.genes,
		Variants:       r.variants,
		CrossCheckGene: r.cfg.Genetics.CrossCheckGeneEnabled(),
		Logger:         logger,
	})
	recs, err := r.broker.Process(ctx, builder, cdfs)
	if err != nil {
		collectErrors.Inc()
		return Summary{}, err
	}
	subjectsBuilt.Add(float64(len(recs)))

	written, err := r.writer.WriteAll(recs)
	if err != nil {
		return Summary{}, err
	}

	duration := time.Since(start)
	runDuration.Observe(duration.Seconds())
	logger.Info("run finished",
		slog.Int("tables", len(cdfs)),
		slog.Int("subjects", written),
		slog.Duration("duration", duration))
	return Summary{RunID: runID, Tables: len(cdfs), Subjects: written, Duration: duration}, nil
}

func buildLibraries(cfg *config.Config, cache *ontology.QueryCache, logger *slog.Logger) (record.Libraries, error) {
	build := func(role string) (*ontology.Library, error) {
		specs := cfg.Terms.Libraries[role]
		if len(specs) == 0 {
			return nil, nil
		}
		sources := make([]ontology.TermSource, 0, len(specs))
		for _, spec := range specs {
			if spec.File != "" {
				dict, err := ontology.BiDictFromFile(spec.Prefix, spec.Version, cfg.ResolvePath(spec.File))
				if err != nil {
					return nil, fmt.Errorf("library %q: %w", role, err)
				}
				sources = append(sources, dict)
				continue
			}
			remote, err := ontology.NewRemoteSource(ontology.RemoteSourceConfig{
				Name:     role + ":" + strings.ToLower(spec.Prefix),
				Prefix:   spec.Prefix,
				Ontology: spec.Ontology,
				BaseURL:  spec.Remote,
				Version:  spec.Version,
				Timeout:  spec.Timeout,
				Cache:    cache,
			}, logger)
			if err != nil {
				return nil, fmt.Errorf("library %q: %w", role, err)
			}
			sources = append(sources, remote)
		}
		return ontology.NewLibrary(role, sources...), nil
	}

	var libs record.Libraries
	var err error
	if libs.Phenotypes, err = build(config.RolePhenotypes); err != nil {
		return record.Libraries{}, err
	}
	if libs.Diseases, err = build(config.RoleDiseases); err != nil {
		return record.Libraries{}, err
	}
	if libs.Assays, err = build(config.RoleAssays); err != nil {
		return record.Libraries{}, err
	}
	if libs.Units, err = build(config.RoleUnits); err != nil {
		return record.Libraries{}, err
	}
	if libs.Procedures, err = build(config.RoleProcedures); err != nil {
		return record.Libraries{}, err
	}
	if libs.Anatomy, err = build(config.RoleAnatomy); err != nil {
		return record.Libraries{}, err
	}
	if libs.Qualitative, err = build(config.RoleQualitative); err != nil {
		return record.Libraries{}, err
	}
	return libs, nil
}

// buildGenetics picks the configured gene and variant services. Local tables
// take priority over remote endpoints; leaving both unset leaves the service
// nil, which the builder reports only when a table actually needs it.
func buildGenetics(cfg *config.Config) (genetics.GeneService, genetics.VariantService, error) {
	var genes genetics.GeneService
	var variants genetics.VariantService

	switch {
	case cfg.Genetics.GeneTable != "":
		table, err := genetics.GeneTableFromFile(cfg.ResolvePath(cfg.Genetics.GeneTable))
		if err != nil {
			return nil, nil, err
		}
		genes = table
	case cfg.Genetics.HGNCEndpoint != "":
		client, err := genetics.NewHGNCClient(cfg.Genetics.HGNCEndpoint, cfg.Genetics.Timeout)
		if err != nil {
			return nil, nil, err
		}
		genes = client
	}

	switch {
	case cfg.Genetics.VariantTable != "":
		table, err := genetics.VariantTableFromFile(cfg.ResolvePath(cfg.Genetics.VariantTable))
		if err != nil {
			return nil, nil, err
		}
		variants = table
	case cfg.Genetics.VariantEndpoint != "":
		client, err := genetics.NewVariantClient(cfg.Genetics.VariantEndpoint, cfg.Genetics.Timeout)
		if err != nil {
			return nil, nil, err
		}
		variants = client
	}
	return genes, variants, nil
}
