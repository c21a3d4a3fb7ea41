// Package genetics models genes, variants, allelic state, and the zygosity
// rules used when interpreting cohort genotype columns.
package genetics

import (
	"fmt"
	"strings"
)

// ChromosomalSex is the karyotypic sex used for zygosity decisions.
type ChromosomalSex int

const (
	SexUnknown ChromosomalSex = iota
	// SexXY is karyotypic male.
	SexXY
	// SexXX is karyotypic female.
	SexXX
)

func (s ChromosomalSex) String() string {
	switch s {
	case SexXY:
		return "XY"
	case SexXX:
		return "XX"
	default:
		return "unknown"
	}
}

// ParseChromosomalSex maps a phenotypic sex spelling to karyotypic sex.
// Unrecognized spellings map to unknown.
func ParseChromosomalSex(s string) ChromosomalSex {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "MALE", "M", "XY":
		return SexXY
	case "FEMALE", "F", "XX":
		return SexXX
	default:
		return SexUnknown
	}
}

// Chromosome is a normalized chromosome name: "1".."22", "X", "Y", "MT", or
// empty when unknown.
type Chromosome string

const (
	ChromosomeX  Chromosome = "X"
	ChromosomeY  Chromosome = "Y"
	ChromosomeMT Chromosome = "MT"
)

// ParseChromosome normalizes a chromosome spelling ("chrX", "x", "chrM").
func ParseChromosome(s string) Chromosome {
	v := strings.ToUpper(strings.TrimSpace(s))
	v = strings.TrimPrefix(v, "CHR")
	if v == "M" {
		v = "MT"
	}
	return Chromosome(v)
}

// IsX reports whether the chromosome is X.
func (c Chromosome) IsX() bool { return c == ChromosomeX }

// IsY reports whether the chromosome is Y.
func (c Chromosome) IsY() bool { return c == ChromosomeY }

// Gene is a resolved gene: HGNC symbol plus HGNC id.
type Gene struct {
	Symbol string `json:"symbol"`
	ID     string `json:"id"`
}

// Variant is a validated sequence variant.
type Variant struct {
	// ID is a stable identifier for the variant, assigned by the validator.
	ID string `json:"id"`
	// Hgvs is the normalized HGVS expression.
	Hgvs string `json:"hgvs"`
	// Gene is the gene the variant falls in, when known.
	Gene Gene `json:"gene"`
	// Chromosome locates the variant for zygosity decisions.
	Chromosome Chromosome `json:"chromosome"`
}

// GeneMismatchError reports a variant whose gene differs from the gene
// declared alongside it in the source table.
type GeneMismatchError struct {
	Hgvs     string
	Declared string
	Actual   string
}

func (e *GeneMismatchError) Error() string {
	return fmt.Sprintf("variant %q belongs to gene %q, but the table declares %q", e.Hgvs, e.Actual, e.Declared)
}
