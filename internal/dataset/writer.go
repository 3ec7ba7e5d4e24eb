package dataset

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gcastro-vish/llm-fake-news-detector/internal/models"
)

// Columns appended after the source columns
const (
	TrueLabelColumn     = "true_label"
	PredictionColumn    = "PREDICTION"
	JustificationColumn = "JUSTIFICATION"
	ErrorColumn         = "error"
)

// Header returns the union of source columns in first-seen order followed by
// the evaluation columns. The error column is present only if some call failed.
func Header(records []models.EvaluationRecord) []string {
	columns, failed := sourceColumns(records)

	header := append(columns, TrueLabelColumn, PredictionColumn, JustificationColumn)
	if failed {
		header = append(header, ErrorColumn)
	}
	return header
}

func sourceColumns(records []models.EvaluationRecord) ([]string, bool) {
	seen := make(map[string]bool)
	var columns []string
	failed := false

	for _, rec := range records {
		for _, col := range rec.Row.Columns {
			if isDerived(col) {
				continue
			}
			if !seen[col] {
				seen[col] = true
				columns = append(columns, col)
			}
		}
		if rec.Outcome.Failed() {
			failed = true
		}
	}
	return columns, failed
}

// isDerived reports whether a source column is replaced by an evaluation column
func isDerived(col string) bool {
	switch col {
	case TrueLabelColumn, PredictionColumn, JustificationColumn, ErrorColumn:
		return true
	}
	return false
}

// WriteRecords rewrites path with every record, all fields quoted
func WriteRecords(path string, records []models.EvaluationRecord) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	columns, withError := sourceColumns(records)

	w := bufio.NewWriter(file)
	if err := writeQuoted(w, Header(records)); err != nil {
		return err
	}

	for _, rec := range records {
		fields := make([]string, 0, len(columns)+4)
		for _, col := range columns {
			fields = append(fields, rec.Row.Get(col))
		}

		fields = append(fields, strconv.Itoa(int(rec.Row.TrueLabel)))
		if v := rec.Outcome.Verdict; v != nil {
			fields = append(fields, strconv.Itoa(v.Prediction), v.Justification)
		} else {
			fields = append(fields, "", "")
		}
		if withError {
			fields = append(fields, rec.Outcome.Error)
		}

		if err := writeQuoted(w, fields); err != nil {
			return err
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return file.Close()
}

// writeQuoted writes one CSV line with every field quoted.
// encoding/csv only quotes fields that need it.
func writeQuoted(w *bufio.Writer, fields []string) error {
	for i, field := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
		}
		if _, err := w.WriteString(`"` + strings.ReplaceAll(field, `"`, `""`) + `"`); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
	}
	if _, err := w.WriteString("\r\n"); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
