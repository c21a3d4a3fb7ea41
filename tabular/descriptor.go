package tabular

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/phenotab/phenotab/semantic"
)

// Identifier names the physical column(s) a series context describes.
// A name identifier matches the column with exactly that name if one exists,
// otherwise it is compiled as a regular expression and matches every column
// whose name it matches. The regex is unanchored, so a pattern that occurs
// anywhere in a column name matches it; anchor with ^ and $ to require a
// full-name match. A multi identifier matches columns by membership in an
// explicit name list.
type Identifier struct {
	name  string
	multi []string
}

// NewIdentifier returns a name identifier (exact match first, regex second).
func NewIdentifier(pattern string) Identifier {
	return Identifier{name: pattern}
}

// NewMultiIdentifier returns a membership identifier over explicit names.
func NewMultiIdentifier(names ...string) Identifier {
	return Identifier{multi: names}
}

// IsMulti reports whether the identifier is a membership list.
func (id Identifier) IsMulti() bool { return id.multi != nil }

func (id Identifier) String() string {
	if id.IsMulti() {
		return "[" + strings.Join(id.multi, ", ") + "]"
	}
	return id.name
}

// Equal reports identifier equality.
func (id Identifier) Equal(other Identifier) bool {
	if id.IsMulti() != other.IsMulti() {
		return false
	}
	if !id.IsMulti() {
		return id.name == other.name
	}
	if len(id.multi) != len(other.multi) {
		return false
	}
	for i := range id.multi {
		if id.multi[i] != other.multi[i] {
			return false
		}
	}
	return true
}

// Match returns the column names the identifier selects, in the order given.
func (id Identifier) Match(names []string) ([]string, error) {
	if id.IsMulti() {
		member := make(map[string]struct{}, len(id.multi))
		for _, n := range id.multi {
			member[n] = struct{}{}
		}
		var out []string
		for _, n := range names {
			if _, ok := member[n]; ok {
				out = append(out, n)
			}
		}
		return out, nil
	}
	for _, n := range names {
		if n == id.name {
			return []string{n}, nil
		}
	}
	re, err := regexp.Compile(id.name)
	if err != nil {
		return nil, fmt.Errorf("identifier %q is neither a column name nor a valid pattern: %w", id.name, err)
	}
	var out []string
	for _, n := range names {
		if re.MatchString(n) {
			out = append(out, n)
		}
	}
	return out, nil
}

// UnmarshalYAML accepts a scalar (name/pattern) or a sequence (multi).
func (id *Identifier) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		*id = NewIdentifier(s)
		return nil
	case yaml.SequenceNode:
		var names []string
		if err := value.Decode(&names); err != nil {
			return err
		}
		*id = NewMultiIdentifier(names...)
		return nil
	default:
		return fmt.Errorf("identifier must be a string or a list of strings")
	}
}

// MarshalYAML emits the spelling accepted by UnmarshalYAML.
func (id Identifier) MarshalYAML() (any, error) {
	if id.IsMulti() {
		return id.multi, nil
	}
	return id.name, nil
}

// CellValue is a typed literal used as a fill value for missing cells.
type CellValue struct {
	dtype DType
	s     string
	i     int64
	f     float64
	b     bool
}

// StringValue returns a string literal.
func StringValue(v string) CellValue { return CellValue{dtype: DTypeString, s: v} }

// IntValue returns an integer literal.
func IntValue(v int64) CellValue { return CellValue{dtype: DTypeInt, i: v} }

// FloatValue returns a float literal.
func FloatValue(v float64) CellValue { return CellValue{dtype: DTypeFloat, f: v} }

// BoolValue returns a boolean literal.
func BoolValue(v bool) CellValue { return CellValue{dtype: DTypeBool, b: v} }

// DType returns the literal's type.
func (v CellValue) DType() DType { return v.dtype }

// Cell renders the literal as a cell.
func (v CellValue) Cell() Cell { return NewCell(v.String()) }

func (v CellValue) String() string {
	switch v.dtype {
	case DTypeInt:
		return strconv.FormatInt(v.i, 10)
	case DTypeFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case DTypeBool:
		return strconv.FormatBool(v.b)
	default:
		return v.s
	}
}

// UnmarshalYAML infers the literal type from the YAML scalar tag.
func (v *CellValue) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("fill value must be a scalar")
	}
	switch value.Tag {
	case "!!int":
		var n int64
		if err := value.Decode(&n); err != nil {
			return err
		}
		*v = IntValue(n)
	case "!!float":
		var f float64
		if err := value.Decode(&f); err != nil {
			return err
		}
		*v = FloatValue(f)
	case "!!bool":
		var b bool
		if err := value.Decode(&b); err != nil {
			return err
		}
		*v = BoolValue(b)
	default:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		*v = StringValue(s)
	}
	return nil
}

// MarshalYAML emits the typed literal.
func (v CellValue) MarshalYAML() (any, error) {
	switch v.dtype {
	case DTypeInt:
		return v.i, nil
	case DTypeFloat:
		return v.f, nil
	case DTypeBool:
		return v.b, nil
	default:
		return v.s, nil
	}
}

// AliasMap rewrites raw cell values to canonical ones before collection.
// A nil target nulls the cell out. Values absent from the map pass through
// unchanged. After rewriting, the column is cast to OutputDType.
type AliasMap struct {
	Aliases     map[string]*string `yaml:"aliases"`
	OutputDType DType              `yaml:"output_dtype"`
}

// Apply rewrites and casts a column.
func (m AliasMap) Apply(col Column) (Column, error) {
	if m.Aliases == nil && m.OutputDType == "" {
		return col, nil
	}
	cells := make([]Cell, col.Len())
	for i, cell := range col.Cells() {
		if cell.IsNull() {
			cells[i] = cell
			continue
		}
		raw, _ := cell.Value()
		target, mapped := m.Aliases[raw]
		switch {
		case !mapped:
			cells[i] = cell
		case target == nil:
			cells[i] = NullCell()
		default:
			cells[i] = NewCell(*target)
		}
	}
	out := NewColumn(col.Name, cells)
	if m.OutputDType == "" {
		return out, nil
	}
	return out.Cast(m.OutputDType)
}

// SeriesContext describes one or more physical columns: which columns it
// claims, what the header and the data mean, optional preprocessing, and the
// building block linking row-aligned columns together.
type SeriesContext struct {
	Identifier      Identifier       `yaml:"identifier"`
	HeaderContext   semantic.Context `yaml:"header_context,omitempty"`
	DataContext     semantic.Context `yaml:"data_context,omitempty"`
	FillMissing     *CellValue       `yaml:"fill_missing,omitempty"`
	AliasMap        *AliasMap        `yaml:"alias_map,omitempty"`
	BuildingBlockID string           `yaml:"building_block_id,omitempty"`
	SubBlocks       []string         `yaml:"sub_blocks,omitempty"`
}

// NewSeriesContext returns a descriptor for the given identifier with both
// contexts set to none.
func NewSeriesContext(id Identifier) *SeriesContext {
	return &SeriesContext{
		Identifier:    id,
		HeaderContext: semantic.None,
		DataContext:   semantic.None,
	}
}

// WithHeaderContext sets the header context.
func (sc *SeriesContext) WithHeaderContext(c semantic.Context) *SeriesContext {
	sc.HeaderContext = c
	return sc
}

// WithDataContext sets the data context.
func (sc *SeriesContext) WithDataContext(c semantic.Context) *SeriesContext {
	sc.DataContext = c
	return sc
}

// WithBuildingBlockID sets the building block id.
func (sc *SeriesContext) WithBuildingBlockID(id string) *SeriesContext {
	sc.BuildingBlockID = id
	return sc
}

// WithSubBlocks sets the sub-block ids.
func (sc *SeriesContext) WithSubBlocks(ids ...string) *SeriesContext {
	sc.SubBlocks = ids
	return sc
}

// WithFillMissing sets the fill value for missing cells.
func (sc *SeriesContext) WithFillMissing(v CellValue) *SeriesContext {
	sc.FillMissing = &v
	return sc
}

// WithAliasMap sets the alias map.
func (sc *SeriesContext) WithAliasMap(m AliasMap) *SeriesContext {
	sc.AliasMap = &m
	return sc
}

// UnmarshalYAML decodes a descriptor, normalizing absent contexts to none.
func (sc *SeriesContext) UnmarshalYAML(value *yaml.Node) error {
	type plain SeriesContext
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	if p.HeaderContext.Kind == "" {
		p.HeaderContext = semantic.None
	}
	if p.DataContext.Kind == "" {
		p.DataContext = semantic.None
	}
	if p.AliasMap != nil && p.AliasMap.OutputDType != "" {
		if _, err := ParseDType(string(p.AliasMap.OutputDType)); err != nil {
			return err
		}
	}
	*sc = SeriesContext(p)
	return nil
}

// Clone returns a deep copy of the descriptor.
func (sc *SeriesContext) Clone() *SeriesContext {
	out := *sc
	if sc.FillMissing != nil {
		v := *sc.FillMissing
		out.FillMissing = &v
	}
	if sc.AliasMap != nil {
		m := AliasMap{OutputDType: sc.AliasMap.OutputDType}
		if sc.AliasMap.Aliases != nil {
			m.Aliases = make(map[string]*string, len(sc.AliasMap.Aliases))
			for k, v := range sc.AliasMap.Aliases {
				if v == nil {
					m.Aliases[k] = nil
				} else {
					t := *v
					m.Aliases[k] = &t
				}
			}
		}
		out.AliasMap = &m
	}
	if sc.SubBlocks != nil {
		out.SubBlocks = append([]string(nil), sc.SubBlocks...)
	}
	if sc.Identifier.multi != nil {
		out.Identifier.multi = append([]string(nil), sc.Identifier.multi...)
	}
	return &out
}

// TableContext names a table and lists its column descriptors.
type TableContext struct {
	Name           string           `yaml:"name"`
	SeriesContexts []*SeriesContext `yaml:"series_contexts"`
}

// NewTableContext builds a table context.
func NewTableContext(name string, scs ...*SeriesContext) *TableContext {
	return &TableContext{Name: name, SeriesContexts: scs}
}

// Clone returns a deep copy of the table context.
func (tc *TableContext) Clone() *TableContext {
	scs := make([]*SeriesContext, len(tc.SeriesContexts))
	for i, sc := range tc.SeriesContexts {
		scs[i] = sc.Clone()
	}
	return &TableContext{Name: tc.Name, SeriesContexts: scs}
}
