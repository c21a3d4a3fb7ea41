package genetics

import "fmt"

// GeneVariantKind classifies the genotype facts one table row can assert.
type GeneVariantKind int

const (
	// GeneVariantNone is a row with neither gene nor variant cells.
	GeneVariantNone GeneVariantKind = iota
	// CausativeGene is a gene implicated without a concrete variant.
	CausativeGene
	// HeterozygousVariant is a single variant on one allele.
	HeterozygousVariant
	// HomozygousVariant is the same variant on both alleles.
	HomozygousVariant
	// CompoundHeterozygousPair is two distinct variants, one per allele.
	CompoundHeterozygousPair
)

func (k GeneVariantKind) String() string {
	switch k {
	case GeneVariantNone:
		return "none"
	case CausativeGene:
		return "causative_gene"
	case HeterozygousVariant:
		return "heterozygous_variant"
	case HomozygousVariant:
		return "homozygous_variant"
	case CompoundHeterozygousPair:
		return "compound_heterozygous_pair"
	default:
		return "unknown"
	}
}

// GeneVariantData is the genotype assertion extracted from one row: an
// optional gene plus zero, one, or two HGVS expressions.
type GeneVariantData struct {
	Kind     GeneVariantKind
	Gene     string
	Variants []string
}

// GeneVariantDataFrom classifies the non-null gene and variant cells of a
// row. Supported shapes: nothing; one gene; up to one gene with one variant;
// up to one gene with two variants (identical expressions collapse to a
// homozygous variant). Anything else is an error.
func GeneVariantDataFrom(genes, variants []string) (GeneVariantData, error) {
	if len(genes) > 1 {
		return GeneVariantData{}, fmt.Errorf("row declares %d genes, at most one is supported", len(genes))
	}
	gene := ""
	if len(genes) == 1 {
		gene = genes[0]
	}

	switch len(variants) {
	case 0:
		if gene == "" {
			return GeneVariantData{Kind: GeneVariantNone}, nil
		}
		return GeneVariantData{Kind: CausativeGene, Gene: gene}, nil
	case 1:
		return GeneVariantData{Kind: HeterozygousVariant, Gene: gene, Variants: variants}, nil
	case 2:
		if variants[0] == variants[1] {
			return GeneVariantData{Kind: HomozygousVariant, Gene: gene, Variants: variants[:1]}, nil
		}
		return GeneVariantData{Kind: CompoundHeterozygousPair, Gene: gene, Variants: variants}, nil
	default:
		return GeneVariantData{}, fmt.Errorf("row declares %d variants, at most two are supported", len(variants))
	}
}

// IsNone reports whether the row asserted nothing.
func (d GeneVariantData) IsNone() bool { return d.Kind == GeneVariantNone }

// AlleleCount returns the number of alleles each variant of the assertion
// occupies: two for a homozygous variant, one otherwise.
func (d GeneVariantData) AlleleCount() int {
	if d.Kind == HomozygousVariant {
		return 2
	}
	return 1
}
