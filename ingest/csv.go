package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// ParseReviews reads an uploaded CSV of reviews and returns the review texts
// in file order. The first row is treated as a header and skipped; the first
// column of each remaining row is the review text; blank rows are dropped.
// LazyQuotes and variable field counts keep hand-exported spreadsheets from
// failing the whole upload.
func ParseReviews(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var texts []string
	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", rowNum+1, err)
		}
		rowNum++

		// Skip CSV header
		if rowNum == 1 {
			continue
		}
		if len(row) == 0 {
			continue
		}
		text := strings.TrimSpace(row[0])
		if text == "" {
			continue
		}
		texts = append(texts, text)
	}
	return texts, nil
}
