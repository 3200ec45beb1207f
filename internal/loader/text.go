package loader

import (
	"bufio"
	"io"
	"strings"

	"github.com/clearpath/assistant/internal/models"
)

// TextLoader handles plain text files. The whole file becomes one
// headerless page; paragraph structure survives in the text itself.
type TextLoader struct{}

func (l *TextLoader) Load(r io.Reader, filename string) (models.Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}
	if err := scanner.Err(); err != nil {
		return models.Document{}, err
	}

	doc := models.Document{Name: filename}
	text := strings.Join(paragraphs, "\n\n")
	if strings.TrimSpace(text) == "" {
		return doc, nil
	}
	doc.Pages = []models.Page{{
		Number: 1,
		Text:   text,
		Runs:   []models.Run{{Text: text, FontSize: sizeBody}},
	}}
	return doc, nil
}
