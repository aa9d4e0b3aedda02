package models

import "encoding/json"

type QueryPostRequest struct {
	// Query is the question to answer.
	Query string `json:"query"`

	// Category selects the document directory. Unknown or empty
	// categories use the default category.
	Category string `json:"category,omitempty"`
}

type QueryPostResponse struct {
	// Answer is the model's JSON output, or {"raw": "..."} if the model
	// didn't return valid JSON.
	Answer json.RawMessage `json:"answer,omitempty"`

	// UsedFiles are the names of the documents given to the model.
	UsedFiles []string `json:"used_files"`

	Error string `json:"error,omitempty"`
}
