package tabular

import "github.com/phenotab/phenotab/semantic"

type filterOp int

const (
	opIs filterOp = iota
	opIsNot
	opIsSome
	opIsNone
)

// Filter is a single predicate over an optional field value.
type Filter[T any] struct {
	op    filterOp
	value T
}

// Is matches a present value equal to v.
func Is[T any](v T) Filter[T] { return Filter[T]{op: opIs, value: v} }

// IsNot matches a present value different from v.
func IsNot[T any](v T) Filter[T] { return Filter[T]{op: opIsNot, value: v} }

// IsSome matches any present value.
func IsSome[T any]() Filter[T] { return Filter[T]{op: opIsSome} }

// IsNone matches an absent value.
func IsNone[T any]() Filter[T] { return Filter[T]{op: opIsNone} }

func matchOpt[T comparable](f Filter[T], v *T) bool {
	switch f.op {
	case opIs:
		return v != nil && *v == f.value
	case opIsNot:
		return v != nil && *v != f.value
	case opIsSome:
		return v != nil
	case opIsNone:
		return v == nil
	}
	return false
}

// matchContext treats the none context as absence, so IsSome/IsNone work on
// context-valued fields which always hold a value.
func matchContext(f Filter[semantic.Context], v semantic.Context) bool {
	switch f.op {
	case opIs:
		return v == f.value || (f.value.IsNone() && v.IsNone())
	case opIsNot:
		return !(v == f.value || (f.value.IsNone() && v.IsNone()))
	case opIsSome:
		return !v.IsNone()
	case opIsNone:
		return v.IsNone()
	}
	return false
}

func matchKind(f Filter[semantic.Kind], v semantic.Kind) bool {
	if v == "" {
		v = semantic.KindNone
	}
	switch f.op {
	case opIs:
		return v == f.value
	case opIsNot:
		return v != f.value
	case opIsSome:
		return v != semantic.KindNone
	case opIsNone:
		return v == semantic.KindNone
	}
	return false
}

func matchIdentifier(f Filter[Identifier], v Identifier) bool {
	switch f.op {
	case opIs:
		return v.Equal(f.value)
	case opIsNot:
		return !v.Equal(f.value)
	case opIsSome:
		return true
	case opIsNone:
		return false
	}
	return false
}

// descriptorPredicates accumulates per-field filters. Filters on the same
// field are OR-combined; distinct fields are AND-combined.
type descriptorPredicates struct {
	identifier  []Filter[Identifier]
	block       []Filter[string]
	header      []Filter[semantic.Context]
	data        []Filter[semantic.Context]
	dataKind    []Filter[semantic.Kind]
	fillMissing []Filter[CellValue]
}

func anyOf[T any](filters []T, match func(T) bool) bool {
	if len(filters) == 0 {
		return true
	}
	for _, f := range filters {
		if match(f) {
			return true
		}
	}
	return false
}

func (p *descriptorPredicates) matches(sc *SeriesContext) bool {
	if !anyOf(p.identifier, func(f Filter[Identifier]) bool { return matchIdentifier(f, sc.Identifier) }) {
		return false
	}
	if !anyOf(p.block, func(f Filter[string]) bool {
		var v *string
		if sc.BuildingBlockID != "" {
			v = &sc.BuildingBlockID
		}
		return matchOpt(f, v)
	}) {
		return false
	}
	if !anyOf(p.header, func(f Filter[semantic.Context]) bool { return matchContext(f, sc.HeaderContext) }) {
		return false
	}
	if !anyOf(p.data, func(f Filter[semantic.Context]) bool { return matchContext(f, sc.DataContext) }) {
		return false
	}
	if !anyOf(p.dataKind, func(f Filter[semantic.Kind]) bool { return matchKind(f, sc.DataContext.EraseKind()) }) {
		return false
	}
	if !anyOf(p.fillMissing, func(f Filter[CellValue]) bool { return matchOpt(f, sc.FillMissing) }) {
		return false
	}
	return true
}

// SeriesContextFilter selects series contexts of a contextualized frame.
// Collect preserves table-context order; an empty result is valid.
type SeriesContextFilter struct {
	cdf   *ContextualizedFrame
	preds descriptorPredicates
}

// FilterSeriesContexts starts a descriptor query.
func (c *ContextualizedFrame) FilterSeriesContexts() *SeriesContextFilter {
	return &SeriesContextFilter{cdf: c}
}

// WhereIdentifier adds an identifier filter.
func (f *SeriesContextFilter) WhereIdentifier(flt Filter[Identifier]) *SeriesContextFilter {
	f.preds.identifier = append(f.preds.identifier, flt)
	return f
}

// WhereBuildingBlock adds a building-block filter.
func (f *SeriesContextFilter) WhereBuildingBlock(flt Filter[string]) *SeriesContextFilter {
	f.preds.block = append(f.preds.block, flt)
	return f
}

// WhereHeaderContext adds a header-context filter.
func (f *SeriesContextFilter) WhereHeaderContext(flt Filter[semantic.Context]) *SeriesContextFilter {
	f.preds.header = append(f.preds.header, flt)
	return f
}

// WhereDataContext adds a data-context filter.
func (f *SeriesContextFilter) WhereDataContext(flt Filter[semantic.Context]) *SeriesContextFilter {
	f.preds.data = append(f.preds.data, flt)
	return f
}

// WhereDataContextKind adds a parameter-erased data-context filter.
func (f *SeriesContextFilter) WhereDataContextKind(flt Filter[semantic.Kind]) *SeriesContextFilter {
	f.preds.dataKind = append(f.preds.dataKind, flt)
	return f
}

// WhereFillMissing adds a fill-value filter.
func (f *SeriesContextFilter) WhereFillMissing(flt Filter[CellValue]) *SeriesContextFilter {
	f.preds.fillMissing = append(f.preds.fillMissing, flt)
	return f
}

// Collect returns the matching series contexts in declaration order.
func (f *SeriesContextFilter) Collect() []*SeriesContext {
	var out []*SeriesContext
	for _, sc := range f.cdf.tc.SeriesContexts {
		if f.preds.matches(sc) {
			out = append(out, sc)
		}
	}
	return out
}

// OwnedColumn pairs a physical column with the descriptor claiming it.
type OwnedColumn struct {
	Column  Column
	Context *SeriesContext
}

// ColumnFilter selects physical columns via their descriptors. Collect
// preserves physical column order; unclaimed columns never match.
type ColumnFilter struct {
	cdf    *ContextualizedFrame
	preds  descriptorPredicates
	dtypes []Filter[DType]
}

// FilterColumns starts a column query.
func (c *ContextualizedFrame) FilterColumns() *ColumnFilter {
	return &ColumnFilter{cdf: c}
}

// WhereIdentifier adds an identifier filter.
func (f *ColumnFilter) WhereIdentifier(flt Filter[Identifier]) *ColumnFilter {
	f.preds.identifier = append(f.preds.identifier, flt)
	return f
}

// WhereBuildingBlock adds a building-block filter.
func (f *ColumnFilter) WhereBuildingBlock(flt Filter[string]) *ColumnFilter {
	f.preds.block = append(f.preds.block, flt)
	return f
}

// WhereHeaderContext adds a header-context filter.
func (f *ColumnFilter) WhereHeaderContext(flt Filter[semantic.Context]) *ColumnFilter {
	f.preds.header = append(f.preds.header, flt)
	return f
}

// WhereDataContext adds a data-context filter.
func (f *ColumnFilter) WhereDataContext(flt Filter[semantic.Context]) *ColumnFilter {
	f.preds.data = append(f.preds.data, flt)
	return f
}

// WhereDataContextKind adds a parameter-erased data-context filter.
func (f *ColumnFilter) WhereDataContextKind(flt Filter[semantic.Kind]) *ColumnFilter {
	f.preds.dataKind = append(f.preds.dataKind, flt)
	return f
}

// WhereFillMissing adds a fill-value filter.
func (f *ColumnFilter) WhereFillMissing(flt Filter[CellValue]) *ColumnFilter {
	f.preds.fillMissing = append(f.preds.fillMissing, flt)
	return f
}

// WhereDType adds an inferred-dtype filter on the physical column.
func (f *ColumnFilter) WhereDType(flt Filter[DType]) *ColumnFilter {
	f.dtypes = append(f.dtypes, flt)
	return f
}

// Collect returns the matching columns with their descriptors, in physical
// order.
func (f *ColumnFilter) Collect() []OwnedColumn {
	var out []OwnedColumn
	for _, col := range f.cdf.frame.Columns() {
		sc := f.cdf.owners[col.Name]
		if sc == nil || !f.preds.matches(sc) {
			continue
		}
		dt := col.DType()
		if !anyOf(f.dtypes, func(flt Filter[DType]) bool { return matchOpt(flt, &dt) }) {
			continue
		}
		out = append(out, OwnedColumn{Column: col, Context: sc})
	}
	return out
}
