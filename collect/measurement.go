package collect

import (
	"context"

	"github.com/phenotab/phenotab/record"
	"github.com/phenotab/phenotab/semantic"
	"github.com/phenotab/phenotab/tabular"
)

// QuantitativeMeasurement collects numeric assay results. The assay and unit
// ids come from the descriptor's measurement parameters; reference range
// bounds and observation time come from row-aligned linked columns.
type QuantitativeMeasurement struct{}

func (QuantitativeMeasurement) Name() string { return "quantitative_measurement" }

func (QuantitativeMeasurement) Collect(ctx context.Context, b *record.Builder, frames []*tabular.ContextualizedFrame, subjectID string) error {
	for _, f := range frames {
		cols := f.FilterColumns().WhereDataContextKind(tabular.Is(semantic.KindQuantitativeMeasurement)).Collect()
		for _, oc := range cols {
			assayID := oc.Context.DataContext.AssayID
			unitID := oc.Context.DataContext.UnitOntologyID
			blockID := oc.Context.BuildingBlockID

			lowCol, _, err := f.LinkedColumn(blockID, []semantic.Context{semantic.ReferenceRangeStart})
			if err != nil {
				return err
			}
			highCol, _, err := f.LinkedColumn(blockID, []semantic.Context{semantic.ReferenceRangeEnd})
			if err != nil {
				return err
			}

			for row := 0; row < oc.Column.Len(); row++ {
				value, err := oc.Column.FloatAt(row)
				if err != nil {
					return err
				}
				if value == nil {
					continue
				}
				var refLow, refHigh *float64
				if lowCol != nil {
					if refLow, err = lowCol.FloatAt(row); err != nil {
						return err
					}
				}
				if highCol != nil {
					if refHigh, err = highCol.FloatAt(row); err != nil {
						return err
					}
				}
				observed, err := linkedTime(f, blockID, semantic.OnsetVariants, row)
				if err != nil {
					return err
				}
				if err := b.InsertQuantitativeMeasurement(ctx, subjectID, assayID, unitID, *value, refLow, refHigh, observed); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// QualitativeMeasurement collects categorical assay results.
type QualitativeMeasurement struct{}

func (QualitativeMeasurement) Name() string { return "qualitative_measurement" }

func (QualitativeMeasurement) Collect(ctx context.Context, b *record.Builder, frames []*tabular.ContextualizedFrame, subjectID string) error {
	for _, f := range frames {
		cols := f.FilterColumns().WhereDataContextKind(tabular.Is(semantic.KindQualitativeMeasurement)).Collect()
		for _, oc := range cols {
			assayID := oc.Context.DataContext.AssayID
			for row := 0; row < oc.Column.Len(); row++ {
				value := oc.Column.StringAt(row)
				if value == nil {
					continue
				}
				observed, err := linkedTime(f, oc.Context.BuildingBlockID, semantic.OnsetVariants, row)
				if err != nil {
					return err
				}
				if err := b.InsertQualitativeMeasurement(ctx, subjectID, assayID, *value, observed); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
