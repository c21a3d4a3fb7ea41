package collect

import (
	"context"

	"github.com/phenotab/phenotab/record"
	"github.com/phenotab/phenotab/semantic"
	"github.com/phenotab/phenotab/tabular"
)

// Disease collects diagnosed diseases row-wise, with onset from the
// building-block-linked onset column.
type Disease struct{}

func (Disease) Name() string { return "disease" }

func (Disease) Collect(ctx context.Context, b *record.Builder, frames []*tabular.ContextualizedFrame, subjectID string) error {
	for _, f := range frames {
		for _, dc := range f.FilterColumns().WhereDataContext(tabular.Is(semantic.DiseaseLabelOrID)).Collect() {
			for row := 0; row < dc.Column.Len(); row++ {
				term := dc.Column.StringAt(row)
				if term == nil {
					continue
				}
				onset, err := linkedTime(f, dc.Context.BuildingBlockID, semantic.OnsetVariants, row)
				if err != nil {
					return err
				}
				if err := b.InsertDisease(ctx, subjectID, *term, onset); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
