package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/clearpath/assistant/internal/models"
)

// CSVLoader handles CSV files. Rows render as "header: value" lines and
// are grouped into pages so large tables chunk independently. Each page
// carries a row-range heading for retrieval context.
type CSVLoader struct{}

const csvBatchSize = 20

func (l *CSVLoader) Load(r io.Reader, filename string) (models.Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return models.Document{}, fmt.Errorf("parse csv: %w", err)
	}

	doc := models.Document{Name: filename}
	if len(records) < 2 {
		return doc, nil
	}

	// First row is headers.
	headers := records[0]
	dataRows := records[1:]

	sections := make([]*section, 0, len(dataRows)/csvBatchSize+1)
	for i := 0; i < len(dataRows); i += csvBatchSize {
		end := i + csvBatchSize
		if end > len(dataRows) {
			end = len(dataRows)
		}

		sec := &section{
			// 1-indexed rows counting the header line.
			heading: fmt.Sprintf("Rows %d-%d", i+2, end+1),
			level:   3,
		}
		var text strings.Builder
		for _, row := range dataRows[i:end] {
			for j, cell := range row {
				if j < len(headers) {
					text.WriteString(headers[j] + ": " + cell)
				} else {
					text.WriteString(cell)
				}
				if j < len(row)-1 {
					text.WriteString(", ")
				}
			}
			text.WriteString("\n")
		}
		appendBody(sec, text.String())
		sections = append(sections, sec)
	}

	doc.Pages = sectionsToPages(sections)
	return doc, nil
}
