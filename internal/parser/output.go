package parser

import (
	"encoding/json"
	"fmt"

	"meibo/internal/port"
)

// llmOutput models the JSON object every provider prompt asks for.
type llmOutput struct {
	DocumentType string            `json:"document_type"`
	Fields       map[string]string `json:"fields"`
	Confidence   map[string]string `json:"confidence"`
}

// DecodeOutput salvages and decodes the extraction JSON from raw LLM text and
// applies field post-processing.
func DecodeOutput(text, model string) (*port.ParseOutput, error) {
	raw, err := ExtractJSON(text)
	if err != nil {
		return nil, fmt.Errorf("%w (raw: %s)", err, truncate(text, 500))
	}

	var out llmOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decoding LLM JSON output: %w (raw: %s)", err, truncate(text, 500))
	}
	if out.Fields == nil {
		out.Fields = map[string]string{}
	}
	PostProcess(out.Fields)

	return &port.ParseOutput{
		Fields:       out.Fields,
		Confidence:   out.Confidence,
		DocumentType: out.DocumentType,
		ModelUsed:    model,
	}, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
