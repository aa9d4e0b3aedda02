package normalize

import (
	"encoding/json"
	"strings"
)

// Normalize returns raw unchanged if it is valid JSON. Otherwise, it returns
// {"raw": raw}, so the result is always a JSON value.
func Normalize(raw string) json.RawMessage {
	trimmed := strings.TrimSpace(raw)
	if trimmed != "" && json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed)
	}
	wrapped, _ := json.Marshal(Fallback{Raw: raw})
	return wrapped
}

type Fallback struct {
	Raw string `json:"raw"`
}
