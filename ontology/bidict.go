package ontology

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// BiDict is an in-memory bidirectional term dictionary for a single
// resource: id → label and label → id. Label lookups are case-insensitive.
type BiDict struct {
	prefix  string
	version string

	idToLabel map[string]string
	labelToID map[string]string
}

// NewBiDict builds a dictionary from an id → label mapping. The prefix names
// the resource the ids belong to; version may be empty.
func NewBiDict(prefix, version string, terms map[string]string) *BiDict {
	d := &BiDict{
		prefix:    prefix,
		version:   version,
		idToLabel: make(map[string]string, len(terms)),
		labelToID: make(map[string]string, len(terms)),
	}
	for id, label := range terms {
		d.idToLabel[id] = label
		d.labelToID[strings.ToLower(label)] = id
	}
	return d
}

// Name identifies the source in logs and errors.
func (d *BiDict) Name() string {
	return fmt.Sprintf("bidict:%s", strings.ToLower(d.prefix))
}

// Len returns the number of terms.
func (d *BiDict) Len() int { return len(d.idToLabel) }

// Resolve implements TermSource. CURIE-shaped queries with the dictionary's
// prefix resolve id → label; everything else resolves label → id.
func (d *BiDict) Resolve(_ context.Context, query string) (Class, ResourceRef, error) {
	ref := NewResourceRef(d.prefix, d.version)
	switch DirectionFor(query, d.prefix) {
	case IDToLabel:
		if label, ok := d.idToLabel[query]; ok {
			return NewClass(query, label), ref, nil
		}
	case LabelToID:
		if id, ok := d.labelToID[strings.ToLower(query)]; ok {
			return NewClass(id, d.idToLabel[id]), ref, nil
		}
	}
	return Class{}, ResourceRef{}, ErrTermNotFound
}

// BiDictFromTSV reads a two-column id<TAB>label file. Lines starting with
// '#' are skipped.
func BiDictFromTSV(prefix, version string, r io.Reader) (*BiDict, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.Comment = '#'
	cr.FieldsPerRecord = 2
	cr.LazyQuotes = true

	terms := make(map[string]string)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read term file: %w", err)
		}
		terms[strings.TrimSpace(rec[0])] = strings.TrimSpace(rec[1])
	}
	return NewBiDict(prefix, version, terms), nil
}

// BiDictFromJSON reads a {"id": "label", ...} object.
func BiDictFromJSON(prefix, version string, r io.Reader) (*BiDict, error) {
	var terms map[string]string
	if err := json.NewDecoder(r).Decode(&terms); err != nil {
		return nil, fmt.Errorf("read term file: %w", err)
	}
	return NewBiDict(prefix, version, terms), nil
}

// BiDictFromFile loads a dictionary from a .tsv or .json term file.
func BiDictFromFile(prefix, version, path string) (*BiDict, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open term file: %w", err)
	}
	defer f.Close()

	if strings.HasSuffix(strings.ToLower(path), ".json") {
		return BiDictFromJSON(prefix, version, f)
	}
	return BiDictFromTSV(prefix, version, f)
}
