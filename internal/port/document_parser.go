package port

import (
	"context"
)

// ParseInput carries the data needed for scan extraction.
type ParseInput struct {
	FileBytes   []byte
	ContentType string
	SourceFile  string
}

// ParseOutput contains the structured result from an LLM parser. Fields and
// Confidence are keyed by schema field name; unknown keys are dropped and
// unknown confidence labels demoted downstream.
type ParseOutput struct {
	Fields       map[string]string
	Confidence   map[string]string
	DocumentType string
	ModelUsed    string
}

// DocumentParser abstracts LLM-based scan extraction.
type DocumentParser interface {
	Parse(ctx context.Context, input ParseInput) (*ParseOutput, error)
}
