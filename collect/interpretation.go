package collect

import (
	"context"
	"fmt"

	"github.com/phenotab/phenotab/genetics"
	"github.com/phenotab/phenotab/record"
	"github.com/phenotab/phenotab/semantic"
	"github.com/phenotab/phenotab/tabular"
)

// Interpretation collects genomic interpretations: disease columns with
// row-aligned gene and variant columns in the same building block. Each row
// yields at most one genotype assertion for the row's disease.
type Interpretation struct{}

func (Interpretation) Name() string { return "interpretation" }

func (Interpretation) Collect(ctx context.Context, b *record.Builder, frames []*tabular.ContextualizedFrame, subjectID string) error {
	for _, f := range frames {
		diseaseCols := f.FilterColumns().WhereDataContext(tabular.Is(semantic.DiseaseLabelOrID)).Collect()
		if len(diseaseCols) == 0 {
			continue
		}
		sex := subjectSex(b, f, subjectID)

		for _, dc := range diseaseCols {
			blockID := dc.Context.BuildingBlockID
			if blockID == "" {
				continue
			}
			geneCols := f.FilterColumns().
				WhereBuildingBlock(tabular.Is(blockID)).
				WhereDataContext(tabular.Is(semantic.HgncSymbolOrID)).
				WhereHeaderContext(tabular.IsNone[semantic.Context]()).
				Collect()
			variantCols := f.FilterColumns().
				WhereBuildingBlock(tabular.Is(blockID)).
				WhereDataContext(tabular.Is(semantic.Hgvs)).
				WhereHeaderContext(tabular.IsNone[semantic.Context]()).
				Collect()
			if len(geneCols) == 0 && len(variantCols) == 0 {
				continue
			}

			for row := 0; row < dc.Column.Len(); row++ {
				disease := dc.Column.StringAt(row)
				if disease == nil {
					continue
				}
				var genes, variants []string
				for _, gc := range geneCols {
					if v := gc.Column.StringAt(row); v != nil {
						genes = append(genes, *v)
					}
				}
				for _, vc := range variantCols {
					if v := vc.Column.StringAt(row); v != nil {
						variants = append(variants, *v)
					}
				}
				data, err := genetics.GeneVariantDataFrom(genes, variants)
				if err != nil {
					return fmt.Errorf("table %q: row %d: %w", f.Name(), row, err)
				}
				if data.IsNone() {
					continue
				}
				if err := b.UpsertInterpretation(ctx, subjectID, *disease, data, sex); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// subjectSex prefers the sex column of the frame at hand and falls back to
// whatever the builder recorded from earlier collectors.
func subjectSex(b *record.Builder, f *tabular.ContextualizedFrame, subjectID string) genetics.ChromosomalSex {
	if v, err := f.SingleValue(semantic.SubjectSex, semantic.None); err == nil && v != nil {
		return genetics.ParseChromosomalSex(*v)
	}
	return genetics.ParseChromosomalSex(string(b.SexOf(subjectID)))
}
