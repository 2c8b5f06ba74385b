package parser

import (
	"encoding/json"
	"fmt"
	"strings"
)

// modelOutput is the decoded shape of a model response. The summary block
// is accepted but unused.
type modelOutput struct {
	Summary      json.RawMessage    `json:"summary"`
	Transactions []modelTransaction `json:"transactions"`
}

type modelTransaction struct {
	Date        *string `json:"date"`
	Merchant    *string `json:"merchant"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Currency    *string `json:"currency"`
}

// decodeModelOutput enforces the JSON-only contract: the response must be a
// single JSON object matching the output schema. Code fences are stripped
// before decoding since models add them despite instructions.
func decodeModelOutput(model, raw string) (*modelOutput, error) {
	text := stripCodeFences(raw)

	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, &MalformedOutputError{Model: model, Raw: raw, Err: fmt.Errorf("not valid JSON: %w", err)}
	}
	if err := schema().Validate(v); err != nil {
		return nil, &MalformedOutputError{Model: model, Raw: raw, Err: fmt.Errorf("schema violation: %w", err)}
	}

	var out modelOutput
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, &MalformedOutputError{Model: model, Raw: raw, Err: err}
	}
	return &out, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
