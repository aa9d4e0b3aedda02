package prompt

import (
	"strings"
	"testing"

	"github.com/a-h/docqa/documents"
	"github.com/google/go-cmp/cmp"
)

func TestBuild(t *testing.T) {
	p, ok := Lookup(DefaultPreset)
	if !ok {
		t.Fatalf("default preset %q not found", DefaultPreset)
	}
	docs := []documents.Document{
		{Name: "inv_001.txt", Content: "Total: 120.00 EUR"},
		{Name: "inv_002.txt", Content: "Total: 80.00 EUR"},
	}
	actual, err := New(p).Build(docs, "what is the total on inv_001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := p.Preamble + `

Documents:

--- Invoice: inv_001.txt ---
Total: 120.00 EUR

--- Invoice: inv_002.txt ---
Total: 80.00 EUR

Question: what is the total on inv_001

Respond with JSON only.`
	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Error(diff)
	}
}

func TestBuildContainsEveryDocument(t *testing.T) {
	docs := []documents.Document{
		{Name: "a.txt", Content: "alpha {{not a template}}"},
		{Name: "b.txt", Content: "beta"},
		{Name: "c.txt", Content: "gamma"},
	}
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			p, _ := Lookup(name)
			actual, err := New(p).Build(docs, "question?")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, doc := range docs {
				if !strings.Contains(actual, "--- Invoice: "+doc.Name+" ---\n"+doc.Content+"\n") {
					t.Errorf("document %q missing from prompt:\n%s", doc.Name, actual)
				}
			}
			if !strings.HasPrefix(actual, p.Preamble) {
				t.Error("expected prompt to start with the preamble")
			}
		})
	}
}

func TestBuildCustomPreset(t *testing.T) {
	p := Preset{Name: "contracts", Preamble: "You read contracts.", Label: "Contract"}
	actual, err := New(p).Build([]documents.Document{{Name: "jane.txt", Content: "Salary: 10"}}, "What is Jane paid?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(actual, "--- Contract: jane.txt ---") {
		t.Errorf("expected custom label, got:\n%s", actual)
	}
}

func TestNames(t *testing.T) {
	if diff := cmp.Diff([]string{"invoice-calculator", "invoice-qa"}, Names()); diff != "" {
		t.Error(diff)
	}
}
