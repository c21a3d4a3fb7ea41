package collect

import (
	"strings"

	"github.com/phenotab/phenotab/record"
	"github.com/phenotab/phenotab/semantic"
	"github.com/phenotab/phenotab/tabular"
)

// SplitHeaderCode splits a header of the form "code#blockID" into the term
// code and the building block id. A header without '#' has no block id.
func SplitHeaderCode(header string) (code, blockID string) {
	if i := strings.IndexByte(header, '#'); i >= 0 {
		return header[:i], header[i+1:]
	}
	return header, ""
}

// linkedTime reads the time element for one row from the building block's
// linked time column, if any. The variants list fixes lookup priority.
func linkedTime(cdf *tabular.ContextualizedFrame, blockID string, variants []semantic.Context, row int) (*record.TimeElement, error) {
	col, owner, err := cdf.LinkedColumn(blockID, variants)
	if err != nil {
		return nil, err
	}
	if col == nil {
		return nil, nil
	}
	raw := col.StringAt(row)
	if raw == nil {
		return nil, nil
	}
	tt, _ := semantic.TimeTypeOf(owner.DataContext)
	return record.TimeElementFrom(tt, *raw)
}

// singleValue resolves a subject-level single-multiplicity value across the
// subject's whole slice list. Two tables disagreeing on the value is a
// cardinality error, never a last-write-wins.
func singleValue(frames []*tabular.ContextualizedFrame, subjectID string, dataCtx semantic.Context) (*string, error) {
	var found *string
	for _, f := range frames {
		v, err := f.SingleValue(dataCtx, semantic.None)
		if err != nil {
			return nil, err
		}
		switch {
		case v == nil:
		case found == nil:
			found = v
		case *found != *v:
			return nil, &tabular.ExpectedSingleValueError{
				Table:         f.Name(),
				Subject:       subjectID,
				DataContext:   dataCtx,
				HeaderContext: semantic.None,
				Values:        []string{*found, *v},
			}
		}
	}
	return found, nil
}

// singleTime resolves a subject-level time element across all frames: the
// first variant context with a value wins, so an age column in any table
// shadows date columns everywhere.
func singleTime(frames []*tabular.ContextualizedFrame, subjectID string, variants []semantic.Context) (*record.TimeElement, error) {
	for _, c := range variants {
		v, err := singleValue(frames, subjectID, c)
		if err != nil {
			return nil, err
		}
		if v == nil {
			continue
		}
		tt, _ := semantic.TimeTypeOf(c)
		return record.TimeElementFrom(tt, *v)
	}
	return nil, nil
}
