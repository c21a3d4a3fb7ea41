package genetics

import (
	"fmt"

	"github.com/phenotab/phenotab/ontology"
)

// GENO allelic state classes.
var (
	Hemizygous          = ontology.NewClass("GENO:0000134", "hemizygous")
	Heterozygous        = ontology.NewClass("GENO:0000135", "heterozygous")
	Homozygous          = ontology.NewClass("GENO:0000136", "homozygous")
	UnspecifiedZygosity = ontology.NewClass("GENO:0000137", "unspecified zygosity")
)

// ContradictoryAllelicDataError reports an allele count that is impossible
// for the subject's sex and the variant's chromosome.
type ContradictoryAllelicDataError struct {
	Sex         ChromosomalSex
	AlleleCount int
	Chromosome  Chromosome
}

func (e *ContradictoryAllelicDataError) Error() string {
	return fmt.Sprintf("contradictory allelic data: %d allele(s) on chromosome %s for %s subject",
		e.AlleleCount, e.Chromosome, e.Sex)
}

// Zygosity decides the GENO allelic state for a variant given the subject's
// karyotypic sex, the number of alleles the variant occupies, and the
// variant's chromosome.
//
// Non-sex chromosomes (including an unknown chromosome) ignore sex: one
// allele is heterozygous, two are homozygous. On X, an XY subject has a
// single copy, so one allele is hemizygous and two are a contradiction; an
// XX subject follows the autosomal rule. On Y, only XY subjects can carry a
// variant at all: one allele is hemizygous, anything else a contradiction.
// When the subject's sex is unknown, X- and Y-linked calls cannot be made
// and resolve to the unspecified zygosity class.
func Zygosity(sex ChromosomalSex, alleleCount int, chrom Chromosome) (ontology.Class, error) {
	if alleleCount != 1 && alleleCount != 2 {
		return ontology.Class{}, &ContradictoryAllelicDataError{Sex: sex, AlleleCount: alleleCount, Chromosome: chrom}
	}

	switch {
	case chrom.IsX():
		switch sex {
		case SexXY:
			if alleleCount == 1 {
				return Hemizygous, nil
			}
			return ontology.Class{}, &ContradictoryAllelicDataError{Sex: sex, AlleleCount: alleleCount, Chromosome: chrom}
		case SexXX:
			if alleleCount == 1 {
				return Heterozygous, nil
			}
			return Homozygous, nil
		default:
			return UnspecifiedZygosity, nil
		}

	case chrom.IsY():
		switch sex {
		case SexXY:
			if alleleCount == 1 {
				return Hemizygous, nil
			}
			return ontology.Class{}, &ContradictoryAllelicDataError{Sex: sex, AlleleCount: alleleCount, Chromosome: chrom}
		case SexXX:
			return ontology.Class{}, &ContradictoryAllelicDataError{Sex: sex, AlleleCount: alleleCount, Chromosome: chrom}
		default:
			return UnspecifiedZygosity, nil
		}

	default:
		if alleleCount == 1 {
			return Heterozygous, nil
		}
		return Homozygous, nil
	}
}
