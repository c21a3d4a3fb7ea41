package tabular

import (
	"fmt"
	"sort"

	"github.com/phenotab/phenotab/semantic"
)

// ContextualizedFrame binds a frame to its table context. Construction and
// every mutation validate the structural invariants:
//
//  1. each physical column is claimed by at most one series context;
//  2. exactly one series context declares data context subject_id, and it
//     resolves to exactly one column;
//  3. the subject-id column has no missing values;
//  4. every series context matches at least one column.
type ContextualizedFrame struct {
	tc    *TableContext
	frame Frame

	owners     map[string]*SeriesContext
	subjectCol string
}

// NewContextualizedFrame validates and binds a frame to its context.
func NewContextualizedFrame(tc *TableContext, frame Frame) (*ContextualizedFrame, error) {
	c := &ContextualizedFrame{tc: tc, frame: frame}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *ContextualizedFrame) validate() error {
	names := c.frame.ColumnNames()
	owners := make(map[string]*SeriesContext, len(names))
	claims := make(map[string]int, len(names))

	for _, sc := range c.tc.SeriesContexts {
		matched, err := sc.Identifier.Match(names)
		if err != nil {
			return fmt.Errorf("table %q: %w", c.tc.Name, err)
		}
		if len(matched) == 0 {
			return &DanglingContextError{Table: c.tc.Name, Identifier: sc.Identifier.String()}
		}
		for _, name := range matched {
			claims[name]++
			owners[name] = sc
		}
	}

	var duplicates []string
	for name, n := range claims {
		if n > 1 {
			duplicates = append(duplicates, name)
		}
	}
	if len(duplicates) > 0 {
		sort.Strings(duplicates)
		return &DuplicateOwnershipError{Table: c.tc.Name, Duplicates: duplicates}
	}

	var subjectDescriptors int
	var subjectCols []string
	for _, sc := range c.tc.SeriesContexts {
		if sc.DataContext != semantic.SubjectID {
			continue
		}
		subjectDescriptors++
		matched, _ := sc.Identifier.Match(names)
		subjectCols = append(subjectCols, matched...)
	}
	if subjectDescriptors != 1 {
		return &SubjectColumnError{
			Table:  c.tc.Name,
			Reason: fmt.Sprintf("expected exactly one subject_id series context, found %d", subjectDescriptors),
		}
	}
	if len(subjectCols) != 1 {
		return &SubjectColumnError{
			Table:  c.tc.Name,
			Reason: fmt.Sprintf("subject_id series context must resolve to exactly one column, found %d", len(subjectCols)),
		}
	}
	col, _ := c.frame.Column(subjectCols[0])
	if col.HasNulls() {
		return &SubjectColumnError{
			Table:  c.tc.Name,
			Reason: fmt.Sprintf("subject id column %q contains missing values", col.Name),
		}
	}

	c.owners = owners
	c.subjectCol = col.Name
	return nil
}

// Name returns the table name.
func (c *ContextualizedFrame) Name() string { return c.tc.Name }

// Frame returns the underlying frame.
func (c *ContextualizedFrame) Frame() Frame { return c.frame }

// TableContext returns the bound table context.
func (c *ContextualizedFrame) TableContext() *TableContext { return c.tc }

// Clone returns a deep copy that can be mutated independently.
func (c *ContextualizedFrame) Clone() *ContextualizedFrame {
	out, err := NewContextualizedFrame(c.tc.Clone(), c.frame.Clone())
	if err != nil {
		// The source already passed validation and cloning is structural.
		panic(fmt.Sprintf("clone of validated frame failed validation: %v", err))
	}
	return out
}

// OwnerOf returns the series context claiming the named column, or nil.
func (c *ContextualizedFrame) OwnerOf(name string) *SeriesContext {
	return c.owners[name]
}

// ColumnsFor returns the physical columns a descriptor claims, in table
// order.
func (c *ContextualizedFrame) ColumnsFor(sc *SeriesContext) []Column {
	matched, err := sc.Identifier.Match(c.frame.ColumnNames())
	if err != nil {
		return nil
	}
	cols := make([]Column, 0, len(matched))
	for _, name := range matched {
		col, _ := c.frame.Column(name)
		cols = append(cols, col)
	}
	return cols
}

// SubjectColumn returns the subject-id column.
func (c *ContextualizedFrame) SubjectColumn() Column {
	col, _ := c.frame.Column(c.subjectCol)
	return col
}

// SubjectIDs returns the distinct subject ids in first-appearance order.
func (c *ContextualizedFrame) SubjectIDs() []string {
	return c.SubjectColumn().UniqueValues()
}

// SingleValue returns the unique non-null value across every column whose
// descriptor carries the given data and header contexts. No matching value
// returns nil; several distinct values is an error.
func (c *ContextualizedFrame) SingleValue(dataCtx, headerCtx semantic.Context) (*string, error) {
	seen := make(map[string]struct{})
	var values []string
	for _, col := range c.frame.Columns() {
		sc := c.owners[col.Name]
		if sc == nil || sc.DataContext != dataCtx || sc.HeaderContext != headerCtx {
			continue
		}
		for _, v := range col.UniqueValues() {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			values = append(values, v)
		}
	}
	switch len(values) {
	case 0:
		return nil, nil
	case 1:
		return &values[0], nil
	default:
		subject := ""
		if ids := c.SubjectIDs(); len(ids) > 0 {
			subject = ids[0]
		}
		return nil, &ExpectedSingleValueError{
			Table:         c.tc.Name,
			Subject:       subject,
			DataContext:   dataCtx,
			HeaderContext: headerCtx,
			Values:        values,
		}
	}
}

// LinkedColumn returns the single column in the given building block whose
// header context is none and whose data context is one of dataCtxs, together
// with its descriptor. No match returns nils; more than one match is an
// error. Columns whose descriptor lists blockID among its sub-blocks count
// as members of the block.
func (c *ContextualizedFrame) LinkedColumn(blockID string, dataCtxs []semantic.Context) (*Column, *SeriesContext, error) {
	if blockID == "" {
		return nil, nil, nil
	}
	inBlock := func(sc *SeriesContext) bool {
		if sc.BuildingBlockID == blockID {
			return true
		}
		for _, sub := range sc.SubBlocks {
			if sub == blockID {
				return true
			}
		}
		return false
	}
	var (
		found      []Column
		foundOwner []*SeriesContext
	)
	for _, col := range c.frame.Columns() {
		sc := c.owners[col.Name]
		if sc == nil || !inBlock(sc) || !sc.HeaderContext.IsNone() {
			continue
		}
		for _, ctx := range dataCtxs {
			if sc.DataContext == ctx {
				found = append(found, col)
				foundOwner = append(foundOwner, sc)
				break
			}
		}
	}
	switch len(found) {
	case 0:
		return nil, nil, nil
	case 1:
		return &found[0], foundOwner[0], nil
	default:
		names := make([]string, len(found))
		for i, col := range found {
			names[i] = col.Name
		}
		return nil, nil, &MultipleLinkedColumnsError{
			Table:    c.tc.Name,
			BlockID:  blockID,
			Contexts: dataCtxs,
			Columns:  names,
		}
	}
}
