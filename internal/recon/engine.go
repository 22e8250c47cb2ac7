// Package recon implements the reconciliation engine: confidence scoring,
// two-stage identity matching and merging of per-document extraction records,
// and application of human review outcomes. All logic is pure and synchronous;
// callers own the session and drive it once per user action.
package recon

import "meibo/internal/domain"

// Engine binds the reconciliation logic to a field schema.
type Engine struct {
	schema *domain.FieldSchema
}

// New creates an Engine over the given schema.
func New(schema *domain.FieldSchema) *Engine {
	return &Engine{schema: schema}
}

// Schema returns the schema the engine operates on.
func (e *Engine) Schema() *domain.FieldSchema {
	return e.schema
}
