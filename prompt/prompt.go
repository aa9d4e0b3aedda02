package prompt

import (
	"fmt"
	"sort"

	"github.com/a-h/docqa/documents"
	"github.com/tmc/langchaingo/prompts"
)

// Preset is a versioned preamble and document label for one use case.
type Preset struct {
	Name     string
	Preamble string
	// Label is written before each document's file name.
	Label string
}

const invoiceQAPreamble = `You are a precise invoice processor. Answer using ONLY the provided data.
Be concise. Cite sources (file names) when possible. Never invent values that are not in the documents.

For extraction/summary questions return JSON like:
{
  "answer": "brief summary or extracted value",
  "sources": ["inv_001.txt", ...],
  "details": { ... optional fields ... }
}`

const invoiceCalculatorPreamble = `You are an invoice calculator. Use ONLY the figures in the provided documents.
Show each line item you used, then the computed result. If a figure is missing, say so instead of guessing.
Cite the file name of every document a figure came from.

Return JSON like:
{
  "answer": "the computed result with its currency",
  "calculation": [{"source": "inv_001.txt", "description": "...", "amount": 0.0}],
  "sources": ["inv_001.txt", ...]
}`

var presets = map[string]Preset{
	"invoice-qa": {
		Name:     "invoice-qa",
		Preamble: invoiceQAPreamble,
		Label:    "Invoice",
	},
	"invoice-calculator": {
		Name:     "invoice-calculator",
		Preamble: invoiceCalculatorPreamble,
		Label:    "Invoice",
	},
}

const DefaultPreset = "invoice-qa"

// Lookup returns the named built-in preset.
func Lookup(name string) (p Preset, ok bool) {
	p, ok = presets[name]
	return p, ok
}

// Names returns the built-in preset names, sorted.
func Names() (names []string) {
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

const template = `{{.preamble}}

Documents:
{{range .documents}}
--- {{$.label}}: {{.Name}} ---
{{.Content}}
{{end}}
Question: {{.question}}

Respond with JSON only.`

func New(preset Preset) Builder {
	return Builder{
		preset:   preset,
		template: prompts.NewPromptTemplate(template, []string{"preamble", "label", "documents", "question"}),
	}
}

type Builder struct {
	preset   Preset
	template prompts.PromptTemplate
}

func (b Builder) Preset() Preset {
	return b.preset
}

// Build renders the preamble, every document in full, and the question.
func (b Builder) Build(docs []documents.Document, query string) (string, error) {
	s, err := b.template.Format(map[string]any{
		"preamble":  b.preset.Preamble,
		"label":     b.preset.Label,
		"documents": docs,
		"question":  query,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return s, nil
}
