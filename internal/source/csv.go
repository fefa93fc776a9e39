package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// CSVImporter turns a table export (attendance, action items) into a titled
// bullet list, one bullet per row with "Header: value" pairs.
type CSVImporter struct{}

func (p *CSVImporter) Format() string { return "csv" }

func (p *CSVImporter) Import(r io.Reader, filename string) (string, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse csv: %w", err)
	}

	title := strings.TrimSuffix(filename, filepath.Ext(filename))
	lines := []string{"# " + title}
	if len(records) == 0 {
		return lines[0] + "\n", nil
	}

	// First row is headers.
	headers := records[0]
	for _, row := range records[1:] {
		var pairs []string
		for j, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			if j < len(headers) && strings.TrimSpace(headers[j]) != "" {
				pairs = append(pairs, strings.TrimSpace(headers[j])+": "+cell)
			} else {
				pairs = append(pairs, cell)
			}
		}
		if len(pairs) > 0 {
			lines = append(lines, "- "+strings.Join(pairs, ", "))
		}
	}
	return strings.Join(lines, "\n") + "\n", nil
}
