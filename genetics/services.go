package genetics

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// ErrGeneNotFound is returned when a gene query resolves to nothing.
var ErrGeneNotFound = errors.New("gene not found")

// ErrVariantNotFound is returned when a variant cannot be validated.
var ErrVariantNotFound = errors.New("variant not found")

// GeneService resolves an HGNC symbol or id to a gene.
type GeneService interface {
	ResolveGene(ctx context.Context, query string) (Gene, error)
}

// VariantService validates an HGVS expression and returns the structured
// variant it denotes.
type VariantService interface {
	ValidateVariant(ctx context.Context, hgvs string) (Variant, error)
}

var hgvsPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*(\.\d+)?:[cgmnopr]\.\S+$`)

// CheckHgvsSyntax rejects strings that are not even shaped like an HGVS
// expression, before any service round-trip.
func CheckHgvsSyntax(s string) error {
	if !hgvsPattern.MatchString(strings.TrimSpace(s)) {
		return fmt.Errorf("malformed HGVS expression %q", s)
	}
	return nil
}

// GeneTable is a file-backed GeneService. It resolves both symbols and HGNC
// ids, case-insensitively for symbols.
type GeneTable struct {
	bySymbol map[string]Gene
	byID     map[string]Gene
}

// NewGeneTable builds a table from resolved genes.
func NewGeneTable(genes []Gene) *GeneTable {
	t := &GeneTable{
		bySymbol: make(map[string]Gene, len(genes)),
		byID:     make(map[string]Gene, len(genes)),
	}
	for _, g := range genes {
		t.bySymbol[strings.ToUpper(g.Symbol)] = g
		t.byID[g.ID] = g
	}
	return t
}

// GeneTableFromTSV reads a two-column symbol<TAB>hgnc_id file.
func GeneTableFromTSV(r io.Reader) (*GeneTable, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.Comment = '#'
	cr.FieldsPerRecord = 2
	var genes []Gene
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read gene table: %w", err)
		}
		genes = append(genes, Gene{Symbol: strings.TrimSpace(rec[0]), ID: strings.TrimSpace(rec[1])})
	}
	return NewGeneTable(genes), nil
}

// GeneTableFromFile loads a gene table from disk.
func GeneTableFromFile(path string) (*GeneTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gene table: %w", err)
	}
	defer f.Close()
	return GeneTableFromTSV(f)
}

// ResolveGene implements GeneService.
func (t *GeneTable) ResolveGene(_ context.Context, query string) (Gene, error) {
	q := strings.TrimSpace(query)
	if g, ok := t.byID[q]; ok {
		return g, nil
	}
	if g, ok := t.bySymbol[strings.ToUpper(q)]; ok {
		return g, nil
	}
	return Gene{}, fmt.Errorf("%w: %q", ErrGeneNotFound, query)
}

// VariantTable is a file-backed VariantService for offline runs and tests.
type VariantTable struct {
	byHgvs map[string]Variant
}

// NewVariantTable builds a table from validated variants.
func NewVariantTable(variants []Variant) *VariantTable {
	t := &VariantTable{byHgvs: make(map[string]Variant, len(variants))}
	for _, v := range variants {
		t.byHgvs[v.Hgvs] = v
	}
	return t
}

// VariantTableFromTSV reads a manifest with columns
// hgvs<TAB>gene_symbol<TAB>hgnc_id<TAB>chromosome.
func VariantTableFromTSV(r io.Reader) (*VariantTable, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.Comment = '#'
	cr.FieldsPerRecord = 4
	var variants []Variant
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read variant manifest: %w", err)
		}
		hgvs := strings.TrimSpace(rec[0])
		variants = append(variants, Variant{
			ID:         hgvs,
			Hgvs:       hgvs,
			Gene:       Gene{Symbol: strings.TrimSpace(rec[1]), ID: strings.TrimSpace(rec[2])},
			Chromosome: ParseChromosome(rec[3]),
		})
	}
	return NewVariantTable(variants), nil
}

// VariantTableFromFile loads a variant manifest from disk.
func VariantTableFromFile(path string) (*VariantTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open variant manifest: %w", err)
	}
	defer f.Close()
	return VariantTableFromTSV(f)
}

// ValidateVariant implements VariantService.
func (t *VariantTable) ValidateVariant(_ context.Context, hgvs string) (Variant, error) {
	if err := CheckHgvsSyntax(hgvs); err != nil {
		return Variant{}, err
	}
	if v, ok := t.byHgvs[strings.TrimSpace(hgvs)]; ok {
		return v, nil
	}
	return Variant{}, fmt.Errorf("%w: %q", ErrVariantNotFound, hgvs)
}
