package collect

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/phenotab/phenotab/record"
	"github.com/phenotab/phenotab/semantic"
	"github.com/phenotab/phenotab/tabular"
)

// HpoInCells collects phenotypes from columns whose cells hold phenotype
// labels or ids, one observation per non-null cell. Onset comes from the
// row-aligned onset column of the descriptor's building block.
type HpoInCells struct{}

func (HpoInCells) Name() string { return "hpo_in_cells" }

func (HpoInCells) Collect(ctx context.Context, b *record.Builder, frames []*tabular.ContextualizedFrame, subjectID string) error {
	for _, f := range frames {
		for _, oc := range f.FilterColumns().WhereDataContext(tabular.Is(semantic.HpoLabelOrID)).Collect() {
			for row := 0; row < oc.Column.Len(); row++ {
				term := oc.Column.StringAt(row)
				if term == nil {
					continue
				}
				onset, err := linkedTime(f, oc.Context.BuildingBlockID, semantic.OnsetVariants, row)
				if err != nil {
					return err
				}
				if err := b.UpsertPhenotypicFeature(ctx, subjectID, *term, false, onset, ""); err != nil {
					return err
				}
			}
		}

		// Delimited multi-term cells carry no onset: the cell-level link to a
		// time column would be ambiguous across the listed terms.
		for _, oc := range f.FilterColumns().WhereDataContext(tabular.Is(semantic.MultiHpoID)).Collect() {
			for row := 0; row < oc.Column.Len(); row++ {
				cell := oc.Column.StringAt(row)
				if cell == nil {
					continue
				}
				for _, term := range splitMultiTerms(*cell) {
					if err := b.UpsertPhenotypicFeature(ctx, subjectID, term, false, nil, ""); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

func splitMultiTerms(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ';' || r == ',' || r == '|'
	})
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// HpoInHeader collects phenotypes encoded in column headers: the header
// carries the term (optionally suffixed "#blockID") and the cells carry the
// per-row observation status. The rows of one subject must agree; a subject
// whose rows disagree on status or onset is a data defect.
type HpoInHeader struct {
	Logger *slog.Logger
}

func (HpoInHeader) Name() string { return "hpo_in_header" }

func (h HpoInHeader) Collect(ctx context.Context, b *record.Builder, frames []*tabular.ContextualizedFrame, subjectID string) error {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}

	for _, f := range frames {
		cols := f.FilterColumns().
			WhereHeaderContext(tabular.Is(semantic.HpoLabelOrID)).
			WhereDataContext(tabular.Is(semantic.ObservationStatus)).
			Collect()
		for _, oc := range cols {
			code, headerBlock := SplitHeaderCode(oc.Column.Name)
			blockID := oc.Context.BuildingBlockID
			if headerBlock != "" {
				blockID = headerBlock
			}

			var onsetCol *tabular.Column
			var onsetType semantic.TimeElementType
			if col, owner, err := f.LinkedColumn(blockID, semantic.OnsetVariants); err != nil {
				return err
			} else if col != nil {
				onsetCol = col
				onsetType, _ = semantic.TimeTypeOf(owner.DataContext)
			}

			type observation struct {
				status   *bool
				onsetRaw *string
			}
			seen := make(map[string]struct{})
			var distinct []observation
			for row := 0; row < oc.Column.Len(); row++ {
				status, err := oc.Column.BoolAt(row)
				if err != nil {
					return err
				}
				var onsetRaw *string
				if onsetCol != nil {
					onsetRaw = onsetCol.StringAt(row)
				}
				if status == nil && onsetRaw == nil {
					continue
				}
				key := observationKey(status, onsetRaw)
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				distinct = append(distinct, observation{status: status, onsetRaw: onsetRaw})
			}

			switch len(distinct) {
			case 0:
				continue
			case 1:
				obs := distinct[0]
				if obs.status == nil {
					logger.Warn("phenotype onset without observation status",
						slog.String("table", f.Name()),
						slog.String("subject", subjectID),
						slog.String("column", oc.Column.Name))
					continue
				}
				var onset *record.TimeElement
				if obs.onsetRaw != nil {
					var err error
					onset, err = record.TimeElementFrom(onsetType, *obs.onsetRaw)
					if err != nil {
						return err
					}
				}
				if err := b.UpsertPhenotypicFeature(ctx, subjectID, code, !*obs.status, onset, ""); err != nil {
					return err
				}
			default:
				return &AmbiguousPhenotypeError{Table: f.Name(), Subject: subjectID, Column: oc.Column.Name}
			}
		}
	}
	return nil
}

func observationKey(status *bool, onsetRaw *string) string {
	var sb strings.Builder
	if status == nil {
		sb.WriteString("s:nil")
	} else {
		sb.WriteString("s:" + strconv.FormatBool(*status))
	}
	sb.WriteByte('\n')
	if onsetRaw == nil {
		sb.WriteString("o:nil")
	} else {
		sb.WriteString("o:" + *onsetRaw)
	}
	return sb.String()
}
