package tabular

import (
	"fmt"

	"github.com/phenotab/phenotab/semantic"
)

// Mutator batches structural edits to a contextualized frame. Edits apply
// eagerly to a working copy; Build re-runs validation once if anything
// changed and returns the result. The first failing edit sticks and is
// reported by Build.
type Mutator struct {
	cdf   *ContextualizedFrame
	dirty bool
	err   error
}

// Mutate starts an edit batch on a copy of the frame. The receiver is left
// untouched.
func (c *ContextualizedFrame) Mutate() *Mutator {
	return &Mutator{cdf: c.Clone()}
}

func (m *Mutator) fail(err error) *Mutator {
	if m.err == nil {
		m.err = err
	}
	return m
}

// AddColumn appends a column together with its descriptor. Every column
// added through the mutator must be claimed by a descriptor.
func (m *Mutator) AddColumn(col Column, sc *SeriesContext) *Mutator {
	return m.InsertColumn(m.cdf.frame.Width(), col, sc)
}

// InsertColumn inserts a column at a physical position together with its
// descriptor.
func (m *Mutator) InsertColumn(at int, col Column, sc *SeriesContext) *Mutator {
	if m.err != nil {
		return m
	}
	if sc == nil {
		return m.fail(fmt.Errorf("table %q: column %q added without a series context", m.cdf.tc.Name, col.Name))
	}
	frame, err := m.cdf.frame.WithColumnAt(at, col)
	if err != nil {
		return m.fail(fmt.Errorf("table %q: %w", m.cdf.tc.Name, err))
	}
	m.cdf.frame = frame
	m.cdf.tc.SeriesContexts = append(m.cdf.tc.SeriesContexts, sc)
	m.dirty = true
	return m
}

// AddColumns appends several columns, each with its descriptor.
func (m *Mutator) AddColumns(cols []Column, scs []*SeriesContext) *Mutator {
	if m.err != nil {
		return m
	}
	if len(cols) != len(scs) {
		return m.fail(fmt.Errorf("table %q: %d columns with %d series contexts", m.cdf.tc.Name, len(cols), len(scs)))
	}
	for i := range cols {
		m.AddColumn(cols[i], scs[i])
	}
	return m
}

// ReplaceColumn swaps the named column for a new one, keeping its physical
// position. Descriptors are untouched; a rename that leaves a descriptor
// dangling fails validation at Build.
func (m *Mutator) ReplaceColumn(name string, col Column) *Mutator {
	if m.err != nil {
		return m
	}
	frame, err := m.cdf.frame.WithReplacedColumn(name, col)
	if err != nil {
		return m.fail(fmt.Errorf("table %q: %w", m.cdf.tc.Name, err))
	}
	m.cdf.frame = frame
	m.dirty = true
	return m
}

// Cast normalizes the named column to the given dtype.
func (m *Mutator) Cast(name string, dt DType) *Mutator {
	if m.err != nil {
		return m
	}
	col, ok := m.cdf.frame.Column(name)
	if !ok {
		return m.fail(fmt.Errorf("table %q: no column named %q", m.cdf.tc.Name, name))
	}
	cast, err := col.Cast(dt)
	if err != nil {
		return m.fail(fmt.Errorf("table %q: %w", m.cdf.tc.Name, err))
	}
	return m.ReplaceColumn(name, cast)
}

// DropSeriesContext removes a descriptor and every column it claims.
func (m *Mutator) DropSeriesContext(sc *SeriesContext) *Mutator {
	if m.err != nil {
		return m
	}
	matched, err := sc.Identifier.Match(m.cdf.frame.ColumnNames())
	if err != nil {
		return m.fail(fmt.Errorf("table %q: %w", m.cdf.tc.Name, err))
	}
	m.cdf.frame = m.cdf.frame.WithoutColumns(matched...)
	m.removeDescriptors(func(cand *SeriesContext) bool { return cand.Identifier.Equal(sc.Identifier) })
	m.dirty = true
	return m
}

// DropWithDataContext removes every descriptor carrying the given data
// context along with the columns those descriptors claim.
func (m *Mutator) DropWithDataContext(ctx semantic.Context) *Mutator {
	if m.err != nil {
		return m
	}
	names := m.cdf.frame.ColumnNames()
	var dropCols []string
	for _, sc := range m.cdf.tc.SeriesContexts {
		if sc.DataContext != ctx {
			continue
		}
		matched, err := sc.Identifier.Match(names)
		if err != nil {
			return m.fail(fmt.Errorf("table %q: %w", m.cdf.tc.Name, err))
		}
		dropCols = append(dropCols, matched...)
	}
	m.cdf.frame = m.cdf.frame.WithoutColumns(dropCols...)
	m.removeDescriptors(func(sc *SeriesContext) bool { return sc.DataContext == ctx })
	m.dirty = true
	return m
}

// DropNullColumns removes every all-null column, then removes descriptors
// left matching no remaining column. Descriptors that still match at least
// one column survive.
func (m *Mutator) DropNullColumns() *Mutator {
	if m.err != nil {
		return m
	}
	var dropCols []string
	for _, col := range m.cdf.frame.Columns() {
		if col.AllNull() {
			dropCols = append(dropCols, col.Name)
		}
	}
	if len(dropCols) == 0 {
		return m
	}
	m.cdf.frame = m.cdf.frame.WithoutColumns(dropCols...)
	remaining := m.cdf.frame.ColumnNames()
	m.removeDescriptors(func(sc *SeriesContext) bool {
		matched, err := sc.Identifier.Match(remaining)
		return err == nil && len(matched) == 0
	})
	m.dirty = true
	return m
}

func (m *Mutator) removeDescriptors(drop func(*SeriesContext) bool) {
	kept := m.cdf.tc.SeriesContexts[:0]
	for _, sc := range m.cdf.tc.SeriesContexts {
		if !drop(sc) {
			kept = append(kept, sc)
		}
	}
	m.cdf.tc.SeriesContexts = kept
}

// Build validates the edited frame and returns it.
func (m *Mutator) Build() (*ContextualizedFrame, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.dirty {
		if err := m.cdf.validate(); err != nil {
			return nil, err
		}
	}
	return m.cdf, nil
}
