package source

import (
	"strings"
	"testing"
	"testing/fstest"
)

// TestMarkdownDocuments_SplitsAtHeaders verifies H1/H2 sections become
// separate documents with heading-path metadata.
func TestMarkdownDocuments_SplitsAtHeaders(t *testing.T) {
	input := `# Getting Started

Introduction text here.

## Installation

Install steps here.

## Configuration

Config details here.
`

	md := NewMarkdown()
	docs, err := md.Documents("guide.md", []byte(input))
	if err != nil {
		t.Fatalf("Documents failed: %v", err)
	}

	// Expect 3 documents: H1, H1>H2 Installation, H1>H2 Configuration.
	if len(docs) != 3 {
		t.Fatalf("Expected 3 documents, got %d", len(docs))
	}

	expectedSections := []string{
		"Getting Started",
		"Getting Started > Installation",
		"Getting Started > Configuration",
	}
	for i, want := range expectedSections {
		if got := docs[i].Metadata["section"]; got != want {
			t.Errorf("Doc %d section: expected %q, got %q", i, want, got)
		}
		if got := docs[i].Metadata["path"]; got != "guide.md" {
			t.Errorf("Doc %d path: expected guide.md, got %q", i, got)
		}
	}

	if !strings.Contains(docs[1].Text, "Install steps here") {
		t.Errorf("Installation doc missing its content")
	}
	if strings.Contains(docs[0].Text, "Install steps here") {
		t.Errorf("H1 doc should not contain the H2 section body")
	}
}

// TestMarkdownDocuments_SectionPrefix verifies each document's text
// starts with its heading path for embedding context.
func TestMarkdownDocuments_SectionPrefix(t *testing.T) {
	input := `# Title

Some content.

## Section

Section content.
`

	md := NewMarkdown()
	docs, err := md.Documents("doc.md", []byte(input))
	if err != nil {
		t.Fatalf("Documents failed: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("Expected 2 documents, got %d", len(docs))
	}

	if !strings.HasPrefix(docs[1].Text, "Title > Section\n\n") {
		t.Errorf("Doc text doesn't start with heading path: %q", docs[1].Text[:40])
	}
	if !strings.Contains(docs[1].Text, "Section content") {
		t.Errorf("Doc text missing section body")
	}
}

// TestMarkdownDocuments_NoHeaders verifies a headerless source becomes
// a single document.
func TestMarkdownDocuments_NoHeaders(t *testing.T) {
	input := `This is a document with no headers.

Just plain text content.
`

	md := NewMarkdown()
	docs, err := md.Documents("plain.md", []byte(input))
	if err != nil {
		t.Fatalf("Documents failed: %v", err)
	}

	if len(docs) != 1 {
		t.Fatalf("Expected 1 document, got %d", len(docs))
	}
	if docs[0].ID != "plain.md" {
		t.Errorf("Doc ID = %q, want plain.md", docs[0].ID)
	}
	if _, ok := docs[0].Metadata["section"]; ok {
		t.Errorf("Headerless doc should have no section metadata")
	}
	if !strings.Contains(docs[0].Text, "This is a document") {
		t.Errorf("Doc missing expected content")
	}
}

// TestMarkdownDocuments_UniqueIDs verifies section documents get
// distinct ids derived from the path.
func TestMarkdownDocuments_UniqueIDs(t *testing.T) {
	input := `# One

a

# Two

b
`

	md := NewMarkdown()
	docs, err := md.Documents("multi.md", []byte(input))
	if err != nil {
		t.Fatalf("Documents failed: %v", err)
	}

	seen := make(map[string]bool)
	for _, doc := range docs {
		if seen[doc.ID] {
			t.Errorf("Duplicate document id %q", doc.ID)
		}
		seen[doc.ID] = true
		if !strings.HasPrefix(doc.ID, "multi.md#") {
			t.Errorf("Doc id %q not derived from path", doc.ID)
		}
	}
}

// TestFromFS verifies directory loading picks up markdown files and
// skips everything else.
func TestFromFS(t *testing.T) {
	fsys := fstest.MapFS{
		"intro.md":        {Data: []byte("# Intro\n\nHello.\n")},
		"guide/setup.md":  {Data: []byte("# Setup\n\nSteps.\n")},
		"guide/image.png": {Data: []byte{0x89, 0x50}},
		"notes.txt":       {Data: []byte("not markdown")},
	}

	docs, err := FromFS(fsys, ".")
	if err != nil {
		t.Fatalf("FromFS failed: %v", err)
	}

	if len(docs) != 2 {
		t.Fatalf("Expected 2 documents, got %d", len(docs))
	}

	paths := make(map[string]bool)
	for _, doc := range docs {
		paths[doc.Metadata["path"]] = true
	}
	if !paths["intro.md"] || !paths["guide/setup.md"] {
		t.Errorf("Unexpected document paths: %v", paths)
	}
}
