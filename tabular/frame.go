// Package tabular provides the in-memory table model: nullable string cells,
// named columns, frames, and the contextualized frame that binds a frame to
// its declared semantic descriptors.
package tabular

import (
	"fmt"
	"strconv"
	"strings"
)

// Cell is a nullable string value. All source data enters as text; typed
// reads parse on access.
type Cell struct {
	value string
	valid bool
}

// NewCell returns a non-null cell holding v.
func NewCell(v string) Cell {
	return Cell{value: v, valid: true}
}

// NullCell returns the null cell.
func NullCell() Cell {
	return Cell{}
}

// IsNull reports whether the cell is null.
func (c Cell) IsNull() bool {
	return !c.valid
}

// Value returns the cell text and whether it is non-null.
func (c Cell) Value() (string, bool) {
	return c.value, c.valid
}

func (c Cell) String() string {
	if !c.valid {
		return "null"
	}
	return c.value
}

// DType is the inferred value type of a column.
type DType string

const (
	DTypeString DType = "string"
	DTypeInt    DType = "int"
	DTypeFloat  DType = "float"
	DTypeBool   DType = "bool"
	// DTypeNull is the type of a column with no non-null cells.
	DTypeNull DType = "null"
)

// ParseDType validates a dtype spelling as used in YAML alias maps.
func ParseDType(s string) (DType, error) {
	switch DType(s) {
	case DTypeString, DTypeInt, DTypeFloat, DTypeBool:
		return DType(s), nil
	default:
		return "", fmt.Errorf("unknown dtype %q", s)
	}
}

// Column is a named, ordered list of cells.
type Column struct {
	Name  string
	cells []Cell
}

// NewColumn builds a column from cells.
func NewColumn(name string, cells []Cell) Column {
	return Column{Name: name, cells: cells}
}

// NewStringColumn builds a column of non-null string cells.
func NewStringColumn(name string, values []string) Column {
	cells := make([]Cell, len(values))
	for i, v := range values {
		cells[i] = NewCell(v)
	}
	return Column{Name: name, cells: cells}
}

// NewOptColumn builds a column from optional strings; nil entries are null.
func NewOptColumn(name string, values []*string) Column {
	cells := make([]Cell, len(values))
	for i, v := range values {
		if v == nil {
			cells[i] = NullCell()
		} else {
			cells[i] = NewCell(*v)
		}
	}
	return Column{Name: name, cells: cells}
}

// Len returns the number of cells.
func (c Column) Len() int { return len(c.cells) }

// Cells returns the backing cells. Callers must not mutate the result.
func (c Column) Cells() []Cell { return c.cells }

// At returns the cell at row i.
func (c Column) At(i int) Cell { return c.cells[i] }

// StringAt returns the text at row i, or nil for a null cell.
func (c Column) StringAt(i int) *string {
	if c.cells[i].IsNull() {
		return nil
	}
	v := c.cells[i].value
	return &v
}

// BoolAt parses the cell at row i as a boolean, nil for null.
func (c Column) BoolAt(i int) (*bool, error) {
	s := c.StringAt(i)
	if s == nil {
		return nil, nil
	}
	b, err := parseBool(*s)
	if err != nil {
		return nil, fmt.Errorf("column %q row %d: %w", c.Name, i, err)
	}
	return &b, nil
}

// FloatAt parses the cell at row i as a float, nil for null.
func (c Column) FloatAt(i int) (*float64, error) {
	s := c.StringAt(i)
	if s == nil {
		return nil, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(*s), 64)
	if err != nil {
		return nil, fmt.Errorf("column %q row %d: not a number: %q", c.Name, i, *s)
	}
	return &f, nil
}

// IntAt parses the cell at row i as an integer, nil for null.
func (c Column) IntAt(i int) (*int64, error) {
	s := c.StringAt(i)
	if s == nil {
		return nil, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(*s), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("column %q row %d: not an integer: %q", c.Name, i, *s)
	}
	return &n, nil
}

// HasNulls reports whether any cell is null.
func (c Column) HasNulls() bool {
	for _, cell := range c.cells {
		if cell.IsNull() {
			return true
		}
	}
	return false
}

// AllNull reports whether every cell is null (true for an empty column).
func (c Column) AllNull() bool {
	for _, cell := range c.cells {
		if !cell.IsNull() {
			return false
		}
	}
	return true
}

// UniqueValues returns the distinct non-null values in first-seen order.
func (c Column) UniqueValues() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, cell := range c.cells {
		if cell.IsNull() {
			continue
		}
		if _, ok := seen[cell.value]; ok {
			continue
		}
		seen[cell.value] = struct{}{}
		out = append(out, cell.value)
	}
	return out
}

// Take returns a column containing the given rows, in order.
func (c Column) Take(rows []int) Column {
	cells := make([]Cell, len(rows))
	for i, r := range rows {
		cells[i] = c.cells[r]
	}
	return Column{Name: c.Name, cells: cells}
}

// Rename returns a copy of the column under a new name.
func (c Column) Rename(name string) Column {
	return Column{Name: name, cells: c.cells}
}

// DType infers the column's value type from its non-null cells: bool if all
// parse as booleans, then int, then float, else string.
func (c Column) DType() DType {
	sawValue := false
	isBool, isInt, isFloat := true, true, true
	for _, cell := range c.cells {
		if cell.IsNull() {
			continue
		}
		sawValue = true
		v := strings.TrimSpace(cell.value)
		if isBool {
			if _, err := parseBool(v); err != nil {
				isBool = false
			}
		}
		if isInt {
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				isFloat = false
			}
		}
	}
	switch {
	case !sawValue:
		return DTypeNull
	case isBool:
		return DTypeBool
	case isInt:
		return DTypeInt
	case isFloat:
		return DTypeFloat
	default:
		return DTypeString
	}
}

// Cast normalizes every non-null cell to the canonical spelling of the
// target dtype, erroring on cells that do not parse.
func (c Column) Cast(dt DType) (Column, error) {
	cells := make([]Cell, len(c.cells))
	for i, cell := range c.cells {
		if cell.IsNull() {
			cells[i] = cell
			continue
		}
		v := strings.TrimSpace(cell.value)
		switch dt {
		case DTypeString:
			cells[i] = NewCell(cell.value)
		case DTypeBool:
			b, err := parseBool(v)
			if err != nil {
				return Column{}, fmt.Errorf("cast column %q to bool: row %d: %w", c.Name, i, err)
			}
			cells[i] = NewCell(strconv.FormatBool(b))
		case DTypeInt:
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return Column{}, fmt.Errorf("cast column %q to int: row %d: %q", c.Name, i, cell.value)
			}
			cells[i] = NewCell(strconv.FormatInt(n, 10))
		case DTypeFloat:
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return Column{}, fmt.Errorf("cast column %q to float: row %d: %q", c.Name, i, cell.value)
			}
			cells[i] = NewCell(strconv.FormatFloat(f, 'g', -1, 64))
		default:
			return Column{}, fmt.Errorf("cast column %q: unsupported dtype %q", c.Name, dt)
		}
	}
	return Column{Name: c.Name, cells: cells}, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "y", "1":
		return true, nil
	case "false", "f", "no", "n", "0":
		return false, nil
	default:
		return false, fmt.Errorf("not a boolean: %q", s)
	}
}

// Frame is an ordered collection of equal-length columns with unique names.
type Frame struct {
	columns []Column
}

// NewFrame builds a frame, enforcing unique names and equal column lengths.
func NewFrame(columns ...Column) (Frame, error) {
	seen := make(map[string]struct{}, len(columns))
	height := -1
	for _, col := range columns {
		if _, dup := seen[col.Name]; dup {
			return Frame{}, fmt.Errorf("duplicate column name %q", col.Name)
		}
		seen[col.Name] = struct{}{}
		if height == -1 {
			height = col.Len()
		} else if col.Len() != height {
			return Frame{}, fmt.Errorf("column %q has %d rows, want %d", col.Name, col.Len(), height)
		}
	}
	return Frame{columns: columns}, nil
}

// Width returns the number of columns.
func (f Frame) Width() int { return len(f.columns) }

// Height returns the number of rows (0 for an empty frame).
func (f Frame) Height() int {
	if len(f.columns) == 0 {
		return 0
	}
	return f.columns[0].Len()
}

// Columns returns the columns in physical order.
func (f Frame) Columns() []Column { return f.columns }

// ColumnNames returns the column names in physical order.
func (f Frame) ColumnNames() []string {
	names := make([]string, len(f.columns))
	for i, c := range f.columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the column with the given name.
func (f Frame) Column(name string) (Column, bool) {
	for _, c := range f.columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// HasColumn reports whether a column with the given name exists.
func (f Frame) HasColumn(name string) bool {
	_, ok := f.Column(name)
	return ok
}

// Take returns a frame containing the given rows of every column, in order.
func (f Frame) Take(rows []int) Frame {
	cols := make([]Column, len(f.columns))
	for i, c := range f.columns {
		cols[i] = c.Take(rows)
	}
	return Frame{columns: cols}
}

// Clone returns a structural copy of the frame. Cells are immutable, so the
// copy shares cell storage.
func (f Frame) Clone() Frame {
	cols := make([]Column, len(f.columns))
	copy(cols, f.columns)
	return Frame{columns: cols}
}

// WithColumnAt returns a frame with col inserted at physical position at.
func (f Frame) WithColumnAt(at int, col Column) (Frame, error) {
	if f.HasColumn(col.Name) {
		return Frame{}, fmt.Errorf("duplicate column name %q", col.Name)
	}
	if len(f.columns) > 0 && col.Len() != f.Height() {
		return Frame{}, fmt.Errorf("column %q has %d rows, want %d", col.Name, col.Len(), f.Height())
	}
	if at < 0 || at > len(f.columns) {
		return Frame{}, fmt.Errorf("insert position %d out of range", at)
	}
	cols := make([]Column, 0, len(f.columns)+1)
	cols = append(cols, f.columns[:at]...)
	cols = append(cols, col)
	cols = append(cols, f.columns[at:]...)
	return Frame{columns: cols}, nil
}

// WithReplacedColumn returns a frame with the named column replaced in
// place. The replacement keeps the physical position but may change name.
func (f Frame) WithReplacedColumn(name string, col Column) (Frame, error) {
	if col.Name != name && f.HasColumn(col.Name) {
		return Frame{}, fmt.Errorf("duplicate column name %q", col.Name)
	}
	if col.Len() != f.Height() {
		return Frame{}, fmt.Errorf("column %q has %d rows, want %d", col.Name, col.Len(), f.Height())
	}
	cols := make([]Column, len(f.columns))
	copy(cols, f.columns)
	for i, c := range cols {
		if c.Name == name {
			cols[i] = col
			return Frame{columns: cols}, nil
		}
	}
	return Frame{}, fmt.Errorf("no column named %q", name)
}

// WithoutColumns returns a frame with the named columns removed. Unknown
// names are ignored.
func (f Frame) WithoutColumns(names ...string) Frame {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	var cols []Column
	for _, c := range f.columns {
		if _, gone := drop[c.Name]; !gone {
			cols = append(cols, c)
		}
	}
	return Frame{columns: cols}
}
