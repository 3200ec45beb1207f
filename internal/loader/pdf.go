package loader

import (
	"fmt"
	"io"
	"os"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/clearpath/assistant/internal/models"
)

// PDFLoader handles PDF files. Font sizes come straight from the page
// content stream, so real heading weights drive header detection.
type PDFLoader struct{}

func (l *PDFLoader) Load(r io.Reader, filename string) (models.Document, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "clearpath-pdf-*.pdf")
	if err != nil {
		return models.Document{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return models.Document{}, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	f, reader, err := pdflib.Open(tmpPath)
	if err != nil {
		return models.Document{}, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	doc := models.Document{Name: filename}
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		doc.Pages = append(doc.Pages, models.Page{
			Number: len(doc.Pages) + 1,
			Text:   text,
			Runs:   pageRuns(page),
		})
	}
	return doc, nil
}

// pageRuns merges the page's positioned text items into runs, joining
// consecutive items that share a baseline and font size.
func pageRuns(page pdflib.Page) []models.Run {
	items := page.Content().Text
	var runs []models.Run
	var cur strings.Builder
	var curSize, curY float64

	flush := func() {
		text := strings.TrimSpace(cur.String())
		if text != "" {
			runs = append(runs, models.Run{Text: text, FontSize: curSize})
		}
		cur.Reset()
	}

	for _, item := range items {
		if cur.Len() > 0 && (item.FontSize != curSize || item.Y != curY) {
			flush()
		}
		if cur.Len() == 0 {
			curSize = item.FontSize
			curY = item.Y
		}
		cur.WriteString(item.S)
	}
	flush()
	return runs
}
