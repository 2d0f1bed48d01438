package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/lingesh369/tradelens/backend/src/models"
)

// ErrEmptyFile signals a CSV with a header but no data rows, or no content
// at all. The import aborts before any row is processed.
var ErrEmptyFile = errors.New("CSV file contains no data rows")

// ReadCSV parses file as UTF-8, comma-delimited CSV with the first row as
// header. It returns the ordered header list and up to limit data rows keyed
// by header name; limit <= 0 reads everything. Rows shorter than the header
// leave the missing cells empty; longer rows drop the overflow cells.
func ReadCSV(file io.Reader, limit int) (*models.CSVPreview, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	headers := make([]string, len(header))
	copy(headers, header)

	var rows []models.RawRow
	for limit <= 0 || len(rows) < limit {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV records: %w", err)
		}
		row := make(models.RawRow, len(headers))
		for i, h := range headers {
			if i < len(record) {
				row[h] = record[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	return &models.CSVPreview{Headers: headers, Rows: rows}, nil
}
