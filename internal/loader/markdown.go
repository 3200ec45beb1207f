package loader

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/clearpath/assistant/internal/models"
)

// MarkdownLoader handles Markdown files using goldmark. Each heading
// starts a new page so its context applies to the text beneath it.
type MarkdownLoader struct{}

func (l *MarkdownLoader) Load(r io.Reader, filename string) (models.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return models.Document{}, err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	root := md.Parser().Parse(reader)

	sections := []*section{{}}
	current := func() *section { return sections[len(sections)-1] }

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			sections = append(sections, &section{
				heading: string(node.Text(src)),
				level:   node.Level,
			})
		default:
			appendBody(current(), extractText(n, src))
		}
	}

	return models.Document{
		Name:  filename,
		Pages: sectionsToPages(sections),
	}, nil
}

// extractText gets the text content of a goldmark AST node.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	// Also handle inline children.
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			buf.WriteString(extractText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
