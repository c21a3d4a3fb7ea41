// Package output writes finished records to disk, one JSON document per
// subject.
package output

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/phenotab/phenotab/record"
)

// Writer writes records into a directory as <entity-id>.json files.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates a writer for the given directory. The directory is
// created on first write.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{dir: dir, logger: logger}
}

// Dir returns the output directory.
func (w *Writer) Dir() string { return w.dir }

// WriteAll writes every record and returns the number written.
func (w *Writer) WriteAll(recs []record.Record) (int, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return 0, fmt.Errorf("create output directory: %w", err)
	}
	for i, rec := range recs {
		if err := w.write(rec); err != nil {
			return i, err
		}
	}
	return len(recs), nil
}

// write marshals one record and lands it atomically: the document is staged
// in a temp file and renamed into place, so readers never observe a partial
// record.
func (w *Writer) write(rec record.Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record %q: %w", rec.ID, err)
	}
	data = append(data, '\n')

	final := filepath.Join(w.dir, rec.ID+".json")
	tmp, err := os.CreateTemp(w.dir, "."+rec.ID+".*.tmp")
	if err != nil {
		return fmt.Errorf("stage record %q: %w", rec.ID, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("stage record %q: %w", rec.ID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("stage record %q: %w", rec.ID, err)
	}
	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write record %q: %w", rec.ID, err)
	}

	w.logger.Debug("record written",
		slog.String("record", rec.ID),
		slog.String("path", final))
	return nil
}
