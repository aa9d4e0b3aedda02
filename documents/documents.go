package documents

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tmc/langchaingo/documentloaders"
)

const Extension = ".txt"

type Document struct {
	// Name is the file name, including the extension.
	Name    string
	Path    string
	Content string
}

// List returns the paths of the plain-text files in dir, in directory order.
// Subdirectories are not searched. A directory that can't be read is treated
// as empty.
func List(dir string) (paths []string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), Extension) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	return paths
}

// Stem returns the lower-cased file name without its extension.
func Stem(path string) string {
	name := filepath.Base(path)
	return strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
}

// Load reads the full content of the document at path.
func Load(ctx context.Context, path string) (doc Document, err error) {
	f, err := os.Open(path)
	if err != nil {
		return doc, fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()
	pages, err := documentloaders.NewText(f).Load(ctx)
	if err != nil {
		return doc, fmt.Errorf("failed to read document %s: %w", path, err)
	}
	var sb strings.Builder
	for _, page := range pages {
		sb.WriteString(page.PageContent)
	}
	return Document{
		Name:    filepath.Base(path),
		Path:    path,
		Content: sb.String(),
	}, nil
}

// LoadAll loads every path in order, stopping at the first failure.
func LoadAll(ctx context.Context, paths []string) (docs []Document, err error) {
	docs = make([]Document, 0, len(paths))
	for _, path := range paths {
		doc, err := Load(ctx, path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Names returns the file names of docs.
func Names(docs []Document) []string {
	names := make([]string, len(docs))
	for i, doc := range docs {
		names[i] = doc.Name
	}
	return names
}
