package normalize

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected any
	}{
		{
			name:     "non-JSON text is wrapped",
			raw:      "hello",
			expected: map[string]any{"raw": "hello"},
		},
		{
			name:     "empty text is wrapped",
			raw:      "",
			expected: map[string]any{"raw": ""},
		},
		{
			name:     "truncated JSON is wrapped",
			raw:      `{"answer": "12`,
			expected: map[string]any{"raw": `{"answer": "12`},
		},
		{
			name: "JSON objects are returned as-is",
			raw:  `{"answer": "120.00 EUR", "sources": ["inv_001.txt"]}`,
			expected: map[string]any{
				"answer":  "120.00 EUR",
				"sources": []any{"inv_001.txt"},
			},
		},
		{
			name:     "surrounding whitespace is ignored",
			raw:      "\n  [1, 2]\n",
			expected: []any{1.0, 2.0},
		},
		{
			name:     "JSON strings are valid answers",
			raw:      `"just a string"`,
			expected: "just a string",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var actual any
			if err := json.Unmarshal(Normalize(tt.raw), &actual); err != nil {
				t.Fatalf("normalized value is not JSON: %v", err)
			}
			if diff := cmp.Diff(tt.expected, actual); diff != "" {
				t.Error(diff)
			}
		})
	}
}

func TestNormalizeHello(t *testing.T) {
	actual := string(Normalize("hello"))
	if actual != `{"raw":"hello"}` {
		t.Errorf(`expected {"raw":"hello"}, got %s`, actual)
	}
}

func TestNormalizePreservesNumbers(t *testing.T) {
	raw := `{"total":12345678901234567890}`
	if actual := string(Normalize(raw)); actual != raw {
		t.Errorf("expected %s, got %s", raw, actual)
	}
}
