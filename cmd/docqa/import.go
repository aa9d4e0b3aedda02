package main

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/a-h/docqa/categories"
	"github.com/a-h/docqa/documents"
	"github.com/pluja/pocketbase"
	"github.com/tmc/langchaingo/documentloaders"
	"gopkg.in/yaml.v3"
)

type ImportCommand struct {
	PocketbaseURL  string `help:"The URL of the Pocketbase server." env:"POCKETBASE_URL" default:"http://localhost:8080"`
	Collection     string `help:"The name of the collection to export from." env:"COLLECTION" default:"invoices"`
	Expand         string `help:"The fields to expand." env:"EXPAND" default:""`
	Files          string `help:"Comma separated list of fields that contain Pocketbase file references." env:"FILES" default:""`
	NameField      string `help:"The record field used as the document file name. Query text is matched against file names." env:"NAME_FIELD" default:"id"`
	DataDir        string `help:"The directory containing one sub-directory per category." env:"DATA_DIR" default:"data"`
	CategoriesFile string `help:"A YAML file mapping categories and aliases to directories." env:"CATEGORIES_FILE" default:""`
	Category       string `help:"The category to import the documents into." env:"CATEGORY" default:"invoices"`
	DryRun         bool   `help:"Do not actually write the documents." env:"DRY_RUN" default:"false"`
	LogLevel       string `help:"The log level to use." env:"LOG_LEVEL" default:"info"`
}

func (c ImportCommand) Run(ctx context.Context) (err error) {
	log := getLogger(c.LogLevel)

	table := categories.Default(c.DataDir)
	if c.CategoriesFile != "" {
		if table, err = categories.LoadFromFile(c.DataDir, c.CategoriesFile); err != nil {
			return fmt.Errorf("failed to load categories: %w", err)
		}
	}
	dir := table.Dir(c.Category)
	if !c.DryRun {
		if err = os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create category directory: %w", err)
		}
	}

	pbe := NewPocketbaseExporter(c.PocketbaseURL, pocketbase.NewClient(c.PocketbaseURL), c.Collection, c.Expand, c.Files, c.NameField)
	for doc := range pbe.Export(ctx) {
		path := filepath.Join(dir, doc.Name+documents.Extension)
		log.Info("importing document", slog.String("id", doc.ID), slog.String("path", path))
		if c.DryRun {
			log.Info("skipping document import in dry run mode", slog.String("path", path))
			continue
		}
		if err = os.WriteFile(path, []byte(doc.Text), 0o644); err != nil {
			return fmt.Errorf("failed to write document: %w", err)
		}
	}
	return pbe.Error
}

func NewPocketbaseExporter(baseURL string, client *pocketbase.Client, collection, expand, files, nameField string) *PocketbaseExporter {
	return &PocketbaseExporter{
		baseURL:    baseURL,
		client:     client,
		collection: collection,
		expand:     expand,
		files:      strings.Split(files, ","),
		nameField:  nameField,
		PageSize:   10,
		Error:      nil,
	}
}

type PocketbaseExporter struct {
	// baseURL for downloading files, e.g. http://localhost:8090
	baseURL    string
	client     *pocketbase.Client
	collection string
	expand     string
	files      []string
	nameField  string
	PageSize   int
	Error      error
}

func (p *PocketbaseExporter) Export(ctx context.Context) iter.Seq[ExportedDocument] {
	var page int
	return func(yield func(ExportedDocument) bool) {
		for {
			if ctx.Err() != nil {
				return
			}
			if p.Error != nil {
				return
			}
			page++
			response, err := p.client.List(p.collection, pocketbase.ParamsList{
				Page:   page,
				Size:   p.PageSize,
				Sort:   "-created",
				Expand: p.expand,
			})
			if err != nil {
				p.Error = err
				return
			}
			if len(response.Items) == 0 {
				return
			}
			for _, item := range response.Items {
				if !yield(p.createDocument(ctx, item)) {
					return
				}
			}
		}
	}
}

type ExportedDocument struct {
	ID string
	// Name is the file name without the extension.
	Name string
	Text string
}

var unsafeFileNameChars = regexp.MustCompile(`[^a-z0-9_.-]+`)

// fileName converts a record value to a lower-case file stem.
func fileName(value, defaultValue string) string {
	name := unsafeFileNameChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(value)), "_")
	name = strings.Trim(name, "_.")
	if name == "" {
		return defaultValue
	}
	return name
}

func (p *PocketbaseExporter) createDocument(ctx context.Context, item map[string]any) (ed ExportedDocument) {
	ed.ID, _ = item["id"].(string)
	name, _ := item[p.nameField].(string)
	ed.Name = fileName(name, fileName(ed.ID, "untitled"))
	recursivelyApplyExpandedFields(item)
	recursivelyRemoveKeys(item, []string{"id", "collectionId", "collectionName", "created", "updated"})

	sb := new(strings.Builder)
	_ = yaml.NewEncoder(sb).Encode(item)

	for _, fileFieldName := range p.files {
		if ctx.Err() != nil {
			return
		}
		fileNames, fileNamesFieldExists := item[fileFieldName].([]any)
		if !fileNamesFieldExists || len(fileNames) == 0 {
			continue
		}
		for _, fn := range fileNames {
			fn, ok := fn.(string)
			if !ok {
				p.Error = fmt.Errorf("file name is not a string")
				continue
			}
			if !strings.EqualFold(filepath.Ext(fn), ".pdf") {
				continue
			}
			fileText, err := p.getPDFText(ctx, p.collection, ed.ID, fn)
			if err != nil {
				p.Error = fmt.Errorf("failed to get file text: %w", err)
				continue
			}
			sb.WriteString(fileText)
		}
	}

	ed.Text = sb.String()

	return
}

func (p *PocketbaseExporter) getPDFText(ctx context.Context, collection, id, filename string) (string, error) {
	downloadURL, err := createURL(p.baseURL, "api", "files", collection, id, filename)
	if err != nil {
		return "", fmt.Errorf("failed to create download URL: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create download request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download file: unexpected status %d", resp.StatusCode)
	}

	pdfFile, err := os.CreateTemp("", "docqa-import-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer pdfFile.Close()
	defer os.Remove(pdfFile.Name())

	fileSize, err := io.Copy(pdfFile, resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	pdf := documentloaders.NewPDF(pdfFile, fileSize)
	docs, err := pdf.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load PDF: %w", err)
	}

	var sb strings.Builder
	for _, doc := range docs {
		sb.WriteString(doc.PageContent)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func createURL(baseURL string, pathSegments ...string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse baseURL: %w", err)
	}
	u.Path = strings.Join(pathSegments, "/")
	return u.String(), nil
}

// applyExpandedFields replaces relation IDs with the records Pocketbase
// returned under "expand".
func applyExpandedFields(data map[string]any) (changed bool) {
	for key, value := range data {
		switch value := value.(type) {
		case map[string]any:
			if key != "expand" {
				changed = applyExpandedFields(value) || changed
				continue
			}
			for parentKey := range data {
				if expandedValue, found := value[parentKey]; found && parentKey != "expand" {
					data[parentKey] = expandedValue
				}
			}
			delete(data, "expand")
			changed = true
		case []any:
			for _, item := range value {
				if itemMap, isMap := item.(map[string]any); isMap {
					changed = applyExpandedFields(itemMap) || changed
				}
			}
		}
	}
	return changed
}

func recursivelyApplyExpandedFields(data map[string]any) {
	for applyExpandedFields(data) {
	}
}

// recursivelyRemoveKeys removes keys, and any empty values, from nested maps.
func recursivelyRemoveKeys(item any, keys []string) {
	switch item := item.(type) {
	case map[string]any:
		for _, key := range keys {
			delete(item, key)
		}
		for k, v := range item {
			recursivelyRemoveKeys(v, keys)
			if isEmpty(v) {
				delete(item, k)
			}
		}
	case []any:
		for _, value := range item {
			recursivelyRemoveKeys(value, keys)
		}
	}
}

func isEmpty(v any) bool {
	switch v := v.(type) {
	case map[string]any:
		return len(v) == 0
	case []any:
		return len(v) == 0
	case string:
		return v == ""
	}
	return false
}
