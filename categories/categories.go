package categories

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Table maps category names and their aliases to directories under Root.
type Table struct {
	Root    string
	Default string
	// Aliases maps a lower-cased alias to a directory name relative to Root.
	Aliases map[string]string
}

// Default returns the built-in category table rooted at root.
func Default(root string) Table {
	return Table{
		Root:    root,
		Default: "invoices",
		Aliases: map[string]string{
			"invoices":             "invoices",
			"contracts":            "employment-contracts",
			"employment-contracts": "employment-contracts",
			"support":              "customer-support",
			"customer-support":     "customer-support",
			"knowledge":            "knowledge-base",
			"knowledge-base":       "knowledge-base",
		},
	}
}

// Dir returns the directory for the named category. Unknown or empty names
// resolve to the default category.
func (t Table) Dir(name string) string {
	dir, ok := t.Aliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		dir = t.Default
	}
	return filepath.Join(t.Root, dir)
}

var ErrNotFound = errors.New("category folder not found")

// Open resolves the category and checks that its directory exists.
func (t Table) Open(name string) (dir string, err error) {
	dir = t.Dir(name)
	fi, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return dir, fmt.Errorf("%w: %s", ErrNotFound, dir)
		}
		return dir, fmt.Errorf("failed to stat category folder %s: %w", dir, err)
	}
	if !fi.IsDir() {
		return dir, fmt.Errorf("%w: %s is not a directory", ErrNotFound, dir)
	}
	return dir, nil
}

type fileFormat struct {
	Default    string              `yaml:"default"`
	Categories map[string][]string `yaml:"categories"`
}

// LoadFromFile reads a YAML category table. Each category lists its aliases;
// the category name itself is always an alias.
func LoadFromFile(root, name string) (t Table, err error) {
	f, err := os.Open(name)
	if err != nil {
		return t, err
	}
	defer f.Close()
	var ff fileFormat
	if err = yaml.NewDecoder(f).Decode(&ff); err != nil {
		return t, fmt.Errorf("failed to decode categories file %s: %w", name, err)
	}
	if ff.Default == "" {
		return t, fmt.Errorf("categories file %s: default category not set", name)
	}
	t = Table{
		Root:    root,
		Default: ff.Default,
		Aliases: make(map[string]string),
	}
	for dir, aliases := range ff.Categories {
		t.Aliases[strings.ToLower(dir)] = dir
		for _, alias := range aliases {
			t.Aliases[strings.ToLower(alias)] = dir
		}
	}
	return t, nil
}
