package main

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/a-h/docqa/models"
	"github.com/google/go-cmp/cmp"
)

func TestEntriesFor(t *testing.T) {
	tests := []struct {
		name     string
		answered answered
		expected []entry
	}{
		{
			name: "answers are pretty printed with their sources",
			answered: answered{
				Question: "total on inv_001?",
				Response: models.QueryPostResponse{
					Answer:    json.RawMessage(`{"answer":"120.00 EUR"}`),
					UsedFiles: []string{"inv_001.txt", "inv_002.txt"},
				},
			},
			expected: []entry{
				{Type: entryTypeAnswer, Content: "{\n  \"answer\": \"120.00 EUR\"\n}"},
				{Type: entryTypeSources, Content: "inv_001.txt, inv_002.txt"},
			},
		},
		{
			name: "server errors are shown with the files that were used",
			answered: answered{
				Response: models.QueryPostResponse{
					UsedFiles: []string{"inv_001.txt"},
					Error:     "generation backend error 500: model not loaded",
				},
				Err: errors.New("query failed with status 502"),
			},
			expected: []entry{
				{Type: entryTypeError, Content: "generation backend error 500: model not loaded"},
				{Type: entryTypeSources, Content: "inv_001.txt"},
			},
		},
		{
			name: "transport errors are shown",
			answered: answered{
				Err: errors.New("connection refused"),
			},
			expected: []entry{
				{Type: entryTypeError, Content: "connection refused"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.expected, entriesFor(tt.answered)); diff != "" {
				t.Error(diff)
			}
		})
	}
}

func TestResolvePending(t *testing.T) {
	m := askModel{
		entries: []entry{
			{Type: entryTypeQuestion, Content: "first"},
			{Type: entryTypePending, Content: "Reading documents..."},
			{Type: entryTypeQuestion, Content: "second"},
			{Type: entryTypePending, Content: "Reading documents..."},
		},
	}
	actual := m.resolvePending(answered{
		Question: "first",
		Response: models.QueryPostResponse{Answer: json.RawMessage(`"one"`)},
	})
	expected := []entry{
		{Type: entryTypeQuestion, Content: "first"},
		{Type: entryTypeAnswer, Content: `"one"`},
		{Type: entryTypeQuestion, Content: "second"},
		{Type: entryTypePending, Content: "Reading documents..."},
	}
	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Error(diff)
	}
}
