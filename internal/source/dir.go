package source

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/marram/ragcore/internal/chunk"
)

// FromDir loads every markdown file under root into per-section
// Documents.
func FromDir(root string) ([]chunk.Document, error) {
	return FromFS(os.DirFS(root), ".")
}

// FromFS walks fsys from root, splitting each .md file into section
// Documents. Non-markdown files are skipped.
func FromFS(fsys fs.FS, root string) ([]chunk.Document, error) {
	md := NewMarkdown()
	var docs []chunk.Document

	err := fs.WalkDir(fsys, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}

		src, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}

		sections, err := md.Documents(rel, src)
		if err != nil {
			return fmt.Errorf("splitting %s: %w", path, err)
		}
		docs = append(docs, sections...)
		return nil
	})

	return docs, err
}
