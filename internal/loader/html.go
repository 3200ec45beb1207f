package loader

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/clearpath/assistant/internal/models"
)

// HTMLLoader handles HTML files. Heading tags start new pages with
// synthetic font sizes; script, style, and chrome elements are skipped.
type HTMLLoader struct{}

func (l *HTMLLoader) Load(r io.Reader, filename string) (models.Document, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return models.Document{}, fmt.Errorf("parse html: %w", err)
	}

	sections := []*section{{}}
	current := func() *section { return sections[len(sections)-1] }

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				sections = append(sections, &section{
					heading: textContent(n),
					level:   level,
				})
				return
			}

			switch n.Data {
			case "script", "style", "nav", "footer", "header":
				return
			case "p", "li", "td", "blockquote", "pre":
				appendBody(current(), textContent(n))
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}

	return models.Document{
		Name:  filename,
		Pages: sectionsToPages(sections),
	}, nil
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
