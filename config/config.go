// Package config provides configuration loading and management for phenotab.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/phenotab/phenotab/tabular"
)

// Config represents the complete phenotab configuration.
type Config struct {
	Cohort   CohortConfig   `yaml:"cohort"`
	Sources  []SourceConfig `yaml:"sources"`
	Tables   TablesConfig   `yaml:"tables"`
	Terms    TermsConfig    `yaml:"terms"`
	Genetics GeneticsConfig `yaml:"genetics"`
	Output   OutputConfig   `yaml:"output"`

	// BaseDir anchors relative paths and source patterns. The loader sets it
	// to the directory of the config file.
	BaseDir string `yaml:"-"`
}

// CohortConfig identifies the cohort and the people behind a run.
type CohortConfig struct {
	// Name prefixes every generated record id.
	Name string `yaml:"name"`
	// CreatedBy and SubmittedBy are stamped into record metadata.
	CreatedBy   string `yaml:"created_by"`
	SubmittedBy string `yaml:"submitted_by"`
}

// SourceConfig is one input: a file glob bound to a named table context.
type SourceConfig struct {
	// Pattern is a doublestar glob over table files.
	Pattern string `yaml:"pattern"`
	// TableContext names the table context the matched files bind to.
	TableContext string `yaml:"table_context"`
	// Delimiter overrides the field separator: "," or "tab". Empty means
	// infer from the file extension.
	Delimiter string `yaml:"delimiter"`
}

// DelimiterRune parses the configured delimiter. Zero means infer.
func (s SourceConfig) DelimiterRune() (rune, error) {
	switch s.Delimiter {
	case "":
		return 0, nil
	case "tab", "\t":
		return '\t', nil
	default:
		runes := []rune(s.Delimiter)
		if len(runes) != 1 {
			return 0, fmt.Errorf("delimiter must be a single character or \"tab\", got %q", s.Delimiter)
		}
		return runes[0], nil
	}
}

// TablesConfig supplies the table contexts, inline and from files.
type TablesConfig struct {
	// ContextFiles are YAML files, each holding one table context.
	ContextFiles []string `yaml:"context_files"`
	// Contexts are table contexts declared inline.
	Contexts []*tabular.TableContext `yaml:"contexts"`
}

// Library roles a term source can be configured under.
const (
	RolePhenotypes  = "phenotypes"
	RoleDiseases    = "diseases"
	RoleAssays      = "assays"
	RoleUnits       = "units"
	RoleProcedures  = "procedures"
	RoleAnatomy     = "anatomy"
	RoleQualitative = "qualitative"
)

var knownRoles = map[string]struct{}{
	RolePhenotypes: {}, RoleDiseases: {}, RoleAssays: {}, RoleUnits: {},
	RoleProcedures: {}, RoleAnatomy: {}, RoleQualitative: {},
}

// TermsConfig configures the term libraries.
type TermsConfig struct {
	// CachePath is the on-disk query cache for remote sources; empty
	// disables disk caching.
	CachePath string `yaml:"cache_path"`
	// Libraries maps a library role to its ordered term sources.
	Libraries map[string][]TermSourceConfig `yaml:"libraries"`
}

// TermSourceConfig is one term source: either a local dictionary file or a
// remote search endpoint. Exactly one of File and Remote must be set.
type TermSourceConfig struct {
	// File is a local id-to-label dictionary (.tsv or .json).
	File string `yaml:"file"`
	// Prefix is the CURIE prefix the source serves, e.g. "HP".
	Prefix string `yaml:"prefix"`
	// Version is stamped on resource references; empty means "latest".
	Version string `yaml:"version"`
	// Remote is the base URL of an OLS-style search endpoint.
	Remote string `yaml:"remote"`
	// Ontology is the endpoint's ontology identifier, e.g. "hp".
	Ontology string `yaml:"ontology"`
	// Timeout bounds each remote request.
	Timeout time.Duration `yaml:"timeout"`
}

// GeneticsConfig configures gene and variant resolution.
type GeneticsConfig struct {
	// GeneTable is a local symbol-to-id TSV; takes priority over the HGNC
	// endpoint when both are set.
	GeneTable string `yaml:"gene_table"`
	// VariantTable is a local validated-variant TSV manifest.
	VariantTable string `yaml:"variant_table"`
	// HGNCEndpoint is the HGNC REST base URL.
	HGNCEndpoint string `yaml:"hgnc_endpoint"`
	// VariantEndpoint is the variant validator base URL.
	VariantEndpoint string `yaml:"variant_endpoint"`
	// CrossCheckGene rejects variants whose validated gene differs from the
	// gene declared alongside them. A pointer so an explicit false in an
	// overlay survives merging; nil means the default (enabled).
	CrossCheckGene *bool `yaml:"cross_check_gene"`
	// Timeout bounds each remote request.
	Timeout time.Duration `yaml:"timeout"`
}

// OutputConfig configures where records land.
type OutputConfig struct {
	// Dir is the output directory for record JSON files.
	Dir string `yaml:"dir"`
}

// CrossCheckGeneEnabled reports the effective cross-check setting.
func (g GeneticsConfig) CrossCheckGeneEnabled() bool {
	return g.CrossCheckGene == nil || *g.CrossCheckGene
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	crossCheck := true
	return &Config{
		Genetics: GeneticsConfig{
			CrossCheckGene: &crossCheck,
			Timeout:        30 * time.Second,
		},
		Output: OutputConfig{
			Dir: "records",
		},
	}
}

// Validate checks that the configuration is complete enough to run.
func (c *Config) Validate() error {
	if c.Cohort.Name == "" {
		return fmt.Errorf("cohort.name is required")
	}
	if len(c.Sources) == 0 {
		return fmt.Errorf("at least one source is required")
	}
	for i, src := range c.Sources {
		if src.Pattern == "" {
			return fmt.Errorf("sources[%d]: pattern is required", i)
		}
		if src.TableContext == "" {
			return fmt.Errorf("sources[%d]: table_context is required", i)
		}
		if _, err := src.DelimiterRune(); err != nil {
			return fmt.Errorf("sources[%d]: %w", i, err)
		}
	}
	for role, sources := range c.Terms.Libraries {
		if _, ok := knownRoles[role]; !ok {
			return fmt.Errorf("terms.libraries: unknown library role %q", role)
		}
		for i, src := range sources {
			if (src.File == "") == (src.Remote == "") {
				return fmt.Errorf("terms.libraries.%s[%d]: exactly one of file and remote must be set", role, i)
			}
			if src.Prefix == "" {
				return fmt.Errorf("terms.libraries.%s[%d]: prefix is required", role, i)
			}
		}
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir is required")
	}
	return nil
}

// TableContexts collects the inline and file-based table contexts into a
// registry keyed by table name. Context file paths resolve against BaseDir.
func (c *Config) TableContexts() (map[string]*tabular.TableContext, error) {
	registry := make(map[string]*tabular.TableContext)
	add := func(tc *tabular.TableContext, origin string) error {
		if tc.Name == "" {
			return fmt.Errorf("%s: table context has no name", origin)
		}
		if _, dup := registry[tc.Name]; dup {
			return fmt.Errorf("%s: duplicate table context %q", origin, tc.Name)
		}
		registry[tc.Name] = tc
		return nil
	}

	for _, tc := range c.Tables.Contexts {
		if err := add(tc, "tables.contexts"); err != nil {
			return nil, err
		}
	}
	for _, file := range c.Tables.ContextFiles {
		path := c.ResolvePath(file)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read table context: %w", err)
		}
		var tc tabular.TableContext
		if err := yaml.Unmarshal(data, &tc); err != nil {
			return nil, fmt.Errorf("parse table context %s: %w", path, err)
		}
		if err := add(&tc, path); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// ResolvePath anchors a relative path at BaseDir.
func (c *Config) ResolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) || c.BaseDir == "" {
		return path
	}
	return filepath.Join(c.BaseDir, path)
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	config.BaseDir = filepath.Dir(path)
	return &config, nil
}

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Merge merges another config into this one. Non-zero values of other take
// precedence.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Cohort.Name != "" {
		c.Cohort.Name = other.Cohort.Name
	}
	if other.Cohort.CreatedBy != "" {
		c.Cohort.CreatedBy = other.Cohort.CreatedBy
	}
	if other.Cohort.SubmittedBy != "" {
		c.Cohort.SubmittedBy = other.Cohort.SubmittedBy
	}

	if len(other.Sources) > 0 {
		c.Sources = other.Sources
	}
	if len(other.Tables.ContextFiles) > 0 {
		c.Tables.ContextFiles = other.Tables.ContextFiles
	}
	if len(other.Tables.Contexts) > 0 {
		c.Tables.Contexts = other.Tables.Contexts
	}

	if other.Terms.CachePath != "" {
		c.Terms.CachePath = other.Terms.CachePath
	}
	if len(other.Terms.Libraries) > 0 {
		c.Terms.Libraries = other.Terms.Libraries
	}

	if other.Genetics.GeneTable != "" {
		c.Genetics.GeneTable = other.Genetics.GeneTable
	}
	if other.Genetics.VariantTable != "" {
		c.Genetics.VariantTable = other.Genetics.VariantTable
	}
	if other.Genetics.HGNCEndpoint != "" {
		c.Genetics.HGNCEndpoint = other.Genetics.HGNCEndpoint
	}
	if other.Genetics.VariantEndpoint != "" {
		c.Genetics.VariantEndpoint = other.Genetics.VariantEndpoint
	}
	if other.Genetics.CrossCheckGene != nil {
		c.Genetics.CrossCheckGene = other.Genetics.CrossCheckGene
	}
	if other.Genetics.Timeout != 0 {
		c.Genetics.Timeout = other.Genetics.Timeout
	}

	if other.Output.Dir != "" {
		c.Output.Dir = other.Output.Dir
	}
	if other.BaseDir != "" {
		c.BaseDir = other.BaseDir
	}
}
