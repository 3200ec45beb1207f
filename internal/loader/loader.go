// Package loader converts source files into documents with per-run font
// sizes. PDFs carry real sizes; heading-structured formats (markdown,
// html, docx) synthesize sizes for their heading levels so a single
// size-based header detector serves every format.
package loader

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/clearpath/assistant/internal/models"
)

// Synthetic font sizes for heading levels. They sit inside the bands
// the header detector expects: body at or below 12, then increasing
// weight per level.
const (
	sizeBody = 11.0
	sizeH3   = 13.0
	sizeH2   = 16.0
	sizeH1   = 20.0
)

func headingSize(level int) float64 {
	switch level {
	case 1:
		return sizeH1
	case 2:
		return sizeH2
	default:
		return sizeH3
	}
}

// Loader converts raw file bytes into a document.
type Loader interface {
	Load(r io.Reader, filename string) (models.Document, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate loader for a filename.
func ForFile(filename string) (Loader, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextLoader{}, nil
	case ".md", ".markdown":
		return &MarkdownLoader{}, nil
	case ".csv":
		return &CSVLoader{}, nil
	case ".html", ".htm":
		return &HTMLLoader{}, nil
	case ".pdf":
		return &PDFLoader{}, nil
	case ".docx":
		return &DOCXLoader{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// LoadFile loads a single document from disk.
func LoadFile(path string) (models.Document, error) {
	name := filepath.Base(path)
	l, err := ForFile(name)
	if err != nil {
		return models.Document{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return models.Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return l.Load(f, name)
}

// LoadDir loads every supported file directly under dir, sorted by
// filename. Unsupported files are skipped.
func LoadDir(dir string) ([]models.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !IsSupportedExtension(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	docs := make([]models.Document, 0, len(names))
	for _, name := range names {
		doc, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// section is a heading plus the body text that follows it, used by the
// structured-format loaders to build pages.
type section struct {
	heading string
	level   int // 0 means no heading
	body    strings.Builder
}

// sectionsToPages renders one page per section so heading context
// applies to exactly the text beneath it.
func sectionsToPages(sections []*section) []models.Page {
	pages := make([]models.Page, 0, len(sections))
	for _, sec := range sections {
		body := strings.TrimSpace(sec.body.String())
		if sec.heading == "" && body == "" {
			continue
		}

		var runs []models.Run
		var text strings.Builder
		if sec.heading != "" {
			runs = append(runs, models.Run{Text: sec.heading, FontSize: headingSize(sec.level)})
			text.WriteString(sec.heading)
		}
		if body != "" {
			runs = append(runs, models.Run{Text: body, FontSize: sizeBody})
			if text.Len() > 0 {
				text.WriteString("\n\n")
			}
			text.WriteString(body)
		}

		pages = append(pages, models.Page{
			Number: len(pages) + 1,
			Text:   text.String(),
			Runs:   runs,
		})
	}
	return pages
}

func appendBody(sec *section, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if sec.body.Len() > 0 {
		sec.body.WriteString("\n\n")
	}
	sec.body.WriteString(text)
}
