// Package report writes the run artifacts: JSON reports, CSV extracts, and
// per-stage error files.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"encoding/json/v2"

	"github.com/Mit17092001/Stripe-migration-plan/internal/domain"
)

// WriteJSON writes v as a JSON document, via temp file and rename so readers
// never observe a partial report.
func WriteJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer os.Remove(tmpPath)

	if err := json.MarshalWrite(f, v); err != nil {
		f.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// ReadJSON reads a JSON document into v.
func ReadJSON(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := json.UnmarshalRead(f, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// WriteCSV writes a CSV extract with the given header.
func WriteCSV(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return f.Close()
}

// WriteErrors persists a stage's error collection as a JSON array. Nothing is
// written when the run had no errors; the returned path is empty in that case.
func WriteErrors(dir, stage, runID string, errs []domain.MigrationError) (string, error) {
	if len(errs) == 0 {
		return "", nil
	}

	path := filepath.Join(dir, fmt.Sprintf("errors_%s_%s.json", stage, runID))
	if err := WriteJSON(path, errs); err != nil {
		return "", err
	}
	return path, nil
}
