// Package source turns external document formats into chunkable
// Documents. The retrieval core never parses source files itself; it
// only sees the Documents produced here.
package source

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/toc"

	"github.com/marram/ragcore/internal/chunk"
)

// Markdown splits markdown sources into one Document per H1/H2
// section, carrying the section heading path in metadata. Splitting at
// section boundaries before token-window chunking keeps retrieved
// chunks from straddling unrelated sections.
type Markdown struct {
	parser goldmark.Markdown
}

// NewMarkdown creates a markdown section splitter backed by goldmark.
func NewMarkdown() *Markdown {
	md := goldmark.New(
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)
	return &Markdown{parser: md}
}

// Documents splits src into per-section Documents. Each section's text
// is prefixed with its heading path ("Installation > Prerequisites")
// so embeddings keep the section context. A source with no headings
// becomes a single Document.
func (m *Markdown) Documents(path string, src []byte) ([]chunk.Document, error) {
	reader := text.NewReader(src)
	root := m.parser.Parser().Parse(reader)

	tree, err := toc.Inspect(root, src,
		toc.MinDepth(1),   // Include H1
		toc.MaxDepth(2),   // Split at H1 and H2 only
		toc.Compact(true), // Remove empty items
	)
	if err != nil {
		return nil, fmt.Errorf("inspect TOC: %w", err)
	}

	if len(tree.Items) == 0 {
		return []chunk.Document{
			{
				ID:       path,
				Text:     strings.TrimSpace(string(src)),
				Metadata: map[string]string{"path": path},
			},
		}, nil
	}

	var docs []chunk.Document
	m.collectSections(root, src, path, tree.Items, nil, &docs)
	return docs, nil
}

// collectSections walks TOC items recursively, emitting one Document
// per section with its heading path.
func (m *Markdown) collectSections(root ast.Node, src []byte, path string, items toc.Items, ancestors []string, docs *[]chunk.Document) {
	for i, item := range items {
		titles := append(append([]string{}, ancestors...), string(item.Title))
		section := strings.Join(titles, " > ")

		heading := findHeadingByID(root, string(item.ID))
		if heading == nil {
			continue
		}

		start := heading.Lines().At(0)
		var end text.Segment

		switch {
		case len(item.Items) > 0:
			// A section with subsections keeps only its preamble;
			// the subsections become their own documents.
			if child := findHeadingByID(root, string(item.Items[0].ID)); child != nil {
				end = child.Lines().At(0)
			}
		case i+1 < len(items):
			if next := findHeadingByID(root, string(items[i+1].ID)); next != nil {
				end = next.Lines().At(0)
			}
		default:
			// Last leaf at this level: the section runs until the
			// next heading of the same or higher level, or EOF.
			end = nextHeadingBoundary(root, heading, heading.(*ast.Heading).Level)
		}

		body := sectionText(src, start, end)
		*docs = append(*docs, chunk.Document{
			ID:   fmt.Sprintf("%s#%d", path, len(*docs)),
			Text: fmt.Sprintf("%s\n\n%s", section, body),
			Metadata: map[string]string{
				"path":    path,
				"section": section,
			},
		})

		if len(item.Items) > 0 {
			m.collectSections(root, src, path, item.Items, titles, docs)
		}
	}
}

// findHeadingByID locates a heading node by its auto-generated ID.
func findHeadingByID(node ast.Node, id string) ast.Node {
	var found ast.Node
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering && n.Kind() == ast.KindHeading {
			headingID, ok := n.AttributeString("id")
			if ok && string(headingID.([]byte)) == id {
				found = n
				return ast.WalkStop, nil
			}
		}
		return ast.WalkContinue, nil
	})
	return found
}

// nextHeadingBoundary finds the first heading after current with the
// same or higher level. Returns a zero segment if none exists.
func nextHeadingBoundary(root ast.Node, current ast.Node, currentLevel int) text.Segment {
	var next ast.Node
	foundCurrent := false

	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if n.Kind() != ast.KindHeading {
			return ast.WalkContinue, nil
		}

		if !foundCurrent {
			if n == current {
				foundCurrent = true
			}
			return ast.WalkContinue, nil
		}

		if n.(*ast.Heading).Level <= currentLevel {
			next = n
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})

	if next != nil {
		return next.Lines().At(0)
	}
	return text.Segment{}
}

// sectionText extracts the text between two line segments. A zero end
// segment extracts to EOF.
func sectionText(src []byte, start, end text.Segment) string {
	if end.Start == 0 && end.Stop == 0 {
		return strings.TrimSpace(string(src[start.Start:]))
	}
	return strings.TrimSpace(string(src[start.Start:end.Start]))
}
