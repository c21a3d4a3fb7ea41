// Package extract loads source tables from disk and prepares them for
// contextualization: glob discovery, delimited-file parsing, and the
// per-column preprocessing declared in table contexts.
package extract

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/phenotab/phenotab/tabular"
)

// Source is one configured input: a glob over table files bound to a named
// table context.
type Source struct {
	// Pattern is a doublestar glob, relative to the run's base directory
	// unless absolute.
	Pattern string `yaml:"pattern"`
	// TableContext names the table context the matched files bind to.
	TableContext string `yaml:"table_context"`
	// Delimiter overrides the field separator; zero means infer from the
	// file extension.
	Delimiter rune `yaml:"-"`
}

// Discover expands the source pattern. Matches are sorted so runs are
// deterministic regardless of filesystem order.
func (s Source) Discover(baseDir string) ([]string, error) {
	pattern := s.Pattern
	if baseDir != "" && !filepath.IsAbs(pattern) {
		pattern = filepath.Join(baseDir, pattern)
	}
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("source pattern %q: %w", s.Pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// DelimiterForPath infers the field separator from the file extension.
func DelimiterForPath(path string) rune {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv", ".tab":
		return '\t'
	default:
		return ','
	}
}

// ReadFrame parses a delimited table. The first row is the header; every
// data row must have the same field count. Empty cells are null.
func ReadFrame(r io.Reader, comma rune) (tabular.Frame, error) {
	cr := csv.NewReader(r)
	if comma != 0 {
		cr.Comma = comma
	}
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return tabular.Frame{}, fmt.Errorf("parse table: %w", err)
	}
	if len(records) == 0 {
		return tabular.Frame{}, fmt.Errorf("parse table: missing header row")
	}

	header := records[0]
	rows := records[1:]
	cols := make([]tabular.Column, len(header))
	for j, name := range header {
		cells := make([]tabular.Cell, len(rows))
		for i, row := range rows {
			if v := strings.TrimSpace(row[j]); v != "" {
				cells[i] = tabular.NewCell(v)
			} else {
				cells[i] = tabular.NullCell()
			}
		}
		cols[j] = tabular.NewColumn(strings.TrimSpace(name), cells)
	}
	return tabular.NewFrame(cols...)
}

// ReadFile parses a table file, inferring the delimiter from the extension
// when none is given.
func ReadFile(path string, delimiter rune) (tabular.Frame, error) {
	if delimiter == 0 {
		delimiter = DelimiterForPath(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return tabular.Frame{}, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()

	frame, err := ReadFrame(f, delimiter)
	if err != nil {
		return tabular.Frame{}, fmt.Errorf("%s: %w", path, err)
	}
	return frame, nil
}

// Preprocess applies each descriptor's fill-missing value and alias map to
// the columns it claims and returns the rewritten frame. Descriptors that
// match nothing are left for contextualization to report.
func Preprocess(tc *tabular.TableContext, frame tabular.Frame) (tabular.Frame, error) {
	names := frame.ColumnNames()
	out := frame
	for _, sc := range tc.SeriesContexts {
		if sc.FillMissing == nil && sc.AliasMap == nil {
			continue
		}
		matched, err := sc.Identifier.Match(names)
		if err != nil {
			return tabular.Frame{}, fmt.Errorf("table %q: %w", tc.Name, err)
		}
		for _, name := range matched {
			col, _ := out.Column(name)
			if sc.FillMissing != nil {
				col = fillMissing(col, *sc.FillMissing)
			}
			if sc.AliasMap != nil {
				if col, err = sc.AliasMap.Apply(col); err != nil {
					return tabular.Frame{}, fmt.Errorf("table %q: %w", tc.Name, err)
				}
			}
			if out, err = out.WithReplacedColumn(name, col); err != nil {
				return tabular.Frame{}, fmt.Errorf("table %q: %w", tc.Name, err)
			}
		}
	}
	return out, nil
}

func fillMissing(col tabular.Column, v tabular.CellValue) tabular.Column {
	cells := make([]tabular.Cell, col.Len())
	for i := 0; i < col.Len(); i++ {
		if col.At(i).IsNull() {
			cells[i] = v.Cell()
		} else {
			cells[i] = col.At(i)
		}
	}
	return tabular.NewColumn(col.Name, cells)
}

// LoadTable reads, preprocesses, and contextualizes one table file. The
// table context is cloned per file so per-run mutation stays independent.
func LoadTable(path string, delimiter rune, tc *tabular.TableContext) (*tabular.ContextualizedFrame, error) {
	frame, err := ReadFile(path, delimiter)
	if err != nil {
		return nil, err
	}
	pre, err := Preprocess(tc, frame)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cdf, err := tabular.NewContextualizedFrame(tc.Clone(), pre)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cdf, nil
}
