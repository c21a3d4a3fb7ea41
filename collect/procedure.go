package collect

import (
	"context"

	"github.com/phenotab/phenotab/record"
	"github.com/phenotab/phenotab/semantic"
	"github.com/phenotab/phenotab/tabular"
)

// MedicalProcedure collects performed procedures row-wise, with body site
// and time of procedure from linked columns in the same building block.
type MedicalProcedure struct{}

func (MedicalProcedure) Name() string { return "medical_procedure" }

func (MedicalProcedure) Collect(ctx context.Context, b *record.Builder, frames []*tabular.ContextualizedFrame, subjectID string) error {
	for _, f := range frames {
		for _, oc := range f.FilterColumns().WhereDataContext(tabular.Is(semantic.ProcedureLabelOrID)).Collect() {
			blockID := oc.Context.BuildingBlockID
			siteCol, _, err := f.LinkedColumn(blockID, []semantic.Context{semantic.ProcedureBodySite})
			if err != nil {
				return err
			}
			for row := 0; row < oc.Column.Len(); row++ {
				code := oc.Column.StringAt(row)
				if code == nil {
					continue
				}
				var bodySite *string
				if siteCol != nil {
					bodySite = siteCol.StringAt(row)
				}
				performed, err := linkedTime(f, blockID, semantic.TimeOfProcedureVariants, row)
				if err != nil {
					return err
				}
				if err := b.InsertProcedure(ctx, subjectID, *code, bodySite, performed); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
