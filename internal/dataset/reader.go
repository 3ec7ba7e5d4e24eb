package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gcastro-vish/llm-fake-news-detector/internal/models"
)

// ReadRows loads a labeled dataset. The first line is a header; headline and
// article are the first two columns of every data row.
func ReadRows(path string, label models.Label) ([]models.Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s dataset: %w", label, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s dataset %s is empty", label, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s header: %w", label, err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("%s dataset %s: header needs at least headline and article columns, got %d", label, path, len(header))
	}

	var rows []models.Row
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s dataset: %w", label, err)
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("%s dataset %s line %d: expected at least 2 fields, got %d", label, path, line, len(record))
		}

		rows = append(rows, models.Row{
			Columns:   header,
			Values:    record,
			TrueLabel: label,
		})
	}

	return rows, nil
}

// ReadTable reads a CSV file back as a header and its data rows
func ReadTable(path string) ([]string, [][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}

	return records[0], records[1:], nil
}
